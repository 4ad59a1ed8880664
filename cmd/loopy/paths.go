package main

import (
	"os"
	"path/filepath"
	"strings"
)

const envLoopyOutDir = "LOOPY_OUT_DIR"

// stdinIsTTY is a small seam for tests.
var stdinIsTTY = isTTY

// resolveOutPath places a relative output path under LOOPY_OUT_DIR, then the
// configured out_dir, then the working directory. Absolute paths are kept.
// The parent directory is created.
func resolveOutPath(path, cfgDir string) (string, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if !filepath.IsAbs(path) {
		dir := strings.TrimSpace(os.Getenv(envLoopyOutDir))
		if dir == "" {
			dir = strings.TrimSpace(cfgDir)
		}
		if dir != "" {
			path = filepath.Join(dir, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

func isTTY() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
