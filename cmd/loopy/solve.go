package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loopy/internal/logger"
	"github.com/samcharles93/loopy/internal/render"
	"github.com/samcharles93/loopy/internal/solver"
	"github.com/samcharles93/loopy/internal/stereo"
)

func solveCmd() *cli.Command {
	var (
		jsonOut       string
		smoothnessOut string
	)

	flags := append(pairFlags(), modelFlags()...)
	flags = append(flags, outputFlags("disparity.png")...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "sweeps",
			Aliases:     []string{"n"},
			Usage:       "number of full sweeps (right, up, left, down)",
			Value:       5,
			Destination: &sweeps,
		},
		&cli.StringFlag{
			Name:        "json",
			Usage:       "also write decoded labels as JSON (- for stdout)",
			Destination: &jsonOut,
		},
		&cli.StringFlag{
			Name:        "smoothness-out",
			Usage:       "write the smoothness table as a heatmap PNG",
			Destination: &smoothnessOut,
		},
	)

	return &cli.Command{
		Name:  "solve",
		Usage: "Estimate a disparity map for a stereo pair",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			p := problemFromFlags(cmd)
			if sweeps < 0 {
				return fmt.Errorf("--sweeps must be non-negative, got %d", sweeps)
			}

			left, right, err := stereo.LoadPair(leftPath, rightPath, scale)
			if err != nil {
				return err
			}
			p.Left, p.Right = left, right
			log.Info("loaded pair", "width", left.W, "height", left.H, "beliefs", p.NumBeliefs)

			session, err := solver.NewSession(p)
			if err != nil {
				return err
			}
			stats, err := session.Advance(ctx, int(sweeps), nil)
			if err != nil {
				return err
			}
			k := session.Problem().NumBeliefs
			log.Info("solved", "sweeps", stats.Sweeps, "duration", stats.Duration, "sweeps_per_sec", stats.SweepsPerSec)

			labels := session.Labels()
			path, err := writeMap(outPath, render.DisparityImage(labels, left.H, left.W, k))
			if err != nil {
				return err
			}
			log.Info("wrote disparity map", "path", path)

			if smoothnessOut != "" {
				path, err := writeMap(smoothnessOut, render.Heatmap(session.Grid().Smoothness()))
				if err != nil {
					return err
				}
				log.Info("wrote smoothness heatmap", "path", path)
			}

			if jsonOut != "" {
				doc := render.NewLabels(labels, left.H, left.W, k, session.Sweeps())
				if err := writeLabels(jsonOut, doc); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// writeMap resolves path, applies --upscale and writes img as PNG.
func writeMap(path string, img image.Image) (string, error) {
	resolved, err := resolveOutPath(path, loaded.OutDir)
	if err != nil {
		return "", err
	}
	if upscale > 1 {
		img = render.Upscale(img, int(upscale))
	}
	if err := render.WritePNG(resolved, img); err != nil {
		return "", err
	}
	return resolved, nil
}

func writeLabels(path string, labels render.Labels) error {
	if path == "-" {
		return render.WriteJSON(os.Stdout, labels)
	}
	resolved, err := resolveOutPath(path, loaded.OutDir)
	if err != nil {
		return err
	}
	f, err := os.Create(resolved)
	if err != nil {
		return err
	}
	if err := render.WriteJSON(f, labels); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
