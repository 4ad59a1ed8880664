package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loopy/internal/logger"
	"github.com/samcharles93/loopy/internal/render"
	"github.com/samcharles93/loopy/internal/solver"
	"github.com/samcharles93/loopy/internal/stereo"
)

func interactiveCmd() *cli.Command {
	var smoothnessOut string

	flags := append(pairFlags(), modelFlags()...)
	flags = append(flags, outputFlags("disparity.png")...)
	flags = append(flags, &cli.StringFlag{
		Name:        "smoothness-out",
		Usage:       "smoothness heatmap PNG",
		Value:       "smoothness.png",
		Destination: &smoothnessOut,
	})

	return &cli.Command{
		Name:  "interactive",
		Usage: "Run sweeps on demand, rewriting the disparity map after each",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			p := problemFromFlags(cmd)

			left, right, err := stereo.LoadPair(leftPath, rightPath, scale)
			if err != nil {
				return err
			}
			p.Left, p.Right = left, right

			session, err := solver.NewSession(p)
			if err != nil {
				return err
			}
			heat := render.Heatmap(session.Grid().Smoothness())
			path, err := writeMap(smoothnessOut, heat)
			if err != nil {
				return err
			}
			log.Info("wrote smoothness heatmap", "path", path)

			show := func(labels []int) error {
				disp := render.DisparityImage(labels, left.H, left.W, session.Problem().NumBeliefs)
				_, err := writeMap(outPath, disp)
				return err
			}
			if err := show(session.Labels()); err != nil {
				return err
			}
			log.Info("wrote initial disparity map", "path", outPath)

			return runInteractive(ctx, session, readPromptLine, os.Stderr, show)
		},
	}
}

type promptFunc func(prompt string, out io.Writer) (string, error)

// runInteractive asks how many sweeps to run, runs them calling show after
// each, and repeats until the answer is empty, "q", or input ends.
func runInteractive(ctx context.Context, s *solver.Session, prompt promptFunc, out io.Writer, show func([]int) error) error {
	question := "how many iterations? "
	for {
		answer, err := prompt(question, out)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" || answer == "q" {
			return nil
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 0 {
			_, _ = fmt.Fprintf(out, "not a sweep count: %q\n", answer)
			continue
		}

		stats, err := s.Advance(ctx, n, func(sweep int, labels []int) error {
			_, _ = fmt.Fprintf(out, "sweep %d\n", sweep)
			return show(labels)
		})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%d sweeps in %s, %d total\n", stats.Sweeps, stats.Duration.Round(time.Millisecond), s.Sweeps())
		question = "how many more? "
	}
}
