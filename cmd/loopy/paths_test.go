package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveOutPath(t *testing.T) {
	t.Run("absolute path is kept", func(t *testing.T) {
		t.Setenv(envLoopyOutDir, t.TempDir())
		want := filepath.Join(t.TempDir(), "nested", "disp.png")
		got, err := resolveOutPath(want, "ignored")
		if err != nil {
			t.Fatalf("resolveOutPath returned error: %v", err)
		}
		if got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
		if _, err := os.Stat(filepath.Dir(got)); err != nil {
			t.Fatalf("expected output directory to exist: %v", err)
		}
	})

	t.Run("env dir wins over config", func(t *testing.T) {
		envDir := filepath.Join(t.TempDir(), "maps")
		t.Setenv(envLoopyOutDir, envDir)
		got, err := resolveOutPath("disp.png", t.TempDir())
		if err != nil {
			t.Fatalf("resolveOutPath returned error: %v", err)
		}
		if want := filepath.Join(envDir, "disp.png"); got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})

	t.Run("config dir used without env", func(t *testing.T) {
		t.Setenv(envLoopyOutDir, "")
		cfgDir := filepath.Join(t.TempDir(), "cfg-out")
		got, err := resolveOutPath("sub/disp.png", cfgDir)
		if err != nil {
			t.Fatalf("resolveOutPath returned error: %v", err)
		}
		if want := filepath.Join(cfgDir, "sub", "disp.png"); got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
		if _, err := os.Stat(filepath.Join(cfgDir, "sub")); err != nil {
			t.Fatalf("expected output directory to exist: %v", err)
		}
	})

	t.Run("relative path without dirs stays relative", func(t *testing.T) {
		t.Setenv(envLoopyOutDir, "")
		got, err := resolveOutPath(" disp.png ", "")
		if err != nil {
			t.Fatalf("resolveOutPath returned error: %v", err)
		}
		if got != "disp.png" {
			t.Fatalf("unexpected output path: got %q", got)
		}
	})
}
