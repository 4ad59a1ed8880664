package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loopy/internal/logger"
	"github.com/samcharles93/loopy/internal/stereo"
)

func synthCmd() *cli.Command {
	var (
		outDir        string
		width, height int64
		shift, seed   int64
	)

	return &cli.Command{
		Name:  "synth",
		Usage: "Write a synthetic stereo pair with a known uniform shift",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out-dir",
				Usage:       "directory for left.png and right.png",
				Value:       ".",
				Destination: &outDir,
			},
			&cli.Int64Flag{Name: "width", Value: 64, Destination: &width},
			&cli.Int64Flag{Name: "height", Value: 48, Destination: &height},
			&cli.Int64Flag{
				Name:        "shift",
				Usage:       "horizontal displacement of the right image, in pixels",
				Value:       1,
				Destination: &shift,
			},
			&cli.Int64Flag{Name: "seed", Value: 1, Destination: &seed},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if width < 1 || height < 1 {
				return fmt.Errorf("invalid size %dx%d", width, height)
			}
			if shift < 0 || shift >= width {
				return fmt.Errorf("--shift must be in [0,%d), got %d", width, shift)
			}
			left, right := stereo.Shifted(int(width), int(height), int(shift), seed)
			for name, img := range map[string]*stereo.Image{"left.png": left, "right.png": right} {
				path, err := resolveOutPath(filepath.Join(outDir, name), loaded.OutDir)
				if err != nil {
					return err
				}
				if err := stereo.SavePNG(path, img); err != nil {
					return err
				}
				logger.FromContext(ctx).Info("wrote image", "path", path)
			}
			return nil
		},
	}
}
