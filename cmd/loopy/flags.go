package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loopy/internal/solver"
)

var (
	leftPath   string
	rightPath  string
	numBeliefs int64
	sweeps     int64
	sigma      float64
	floor      float64
	workers    int64
	scale      float64
	outPath    string
	upscale    int64

	logLevel  string
	logFormat string
	debug     bool

	loaded Config
)

func pairFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "left",
			Aliases:     []string{"l"},
			Usage:       "left (reference) image",
			Required:    true,
			Destination: &leftPath,
		},
		&cli.StringFlag{
			Name:        "right",
			Aliases:     []string{"r"},
			Usage:       "right image, same size as left",
			Required:    true,
			Destination: &rightPath,
		},
		&cli.Float64Flag{
			Name:        "scale",
			Usage:       "resize both images by this factor before matching",
			Value:       1,
			Destination: &scale,
		},
	}
}

func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "beliefs",
			Aliases:     []string{"k", "num-beliefs"},
			Usage:       "number of candidate displacements",
			Value:       solver.DefaultNumBeliefs,
			Destination: &numBeliefs,
		},
		&cli.Float64Flag{
			Name:        "sigma",
			Usage:       "width of the smoothness kernel, in displacement steps",
			Value:       solver.DefaultSigma,
			Destination: &sigma,
		},
		&cli.Float64Flag{
			Name:        "floor",
			Usage:       "minimum smoothness between any two displacements",
			Value:       solver.DefaultFloor,
			Destination: &floor,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "goroutines per direction update",
			Value:       1,
			Destination: &workers,
		},
	}
}

func outputFlags(defaultOut string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "disparity map PNG",
			Value:       defaultOut,
			Destination: &outPath,
		},
		&cli.Int64Flag{
			Name:        "upscale",
			Usage:       "integer zoom applied to written maps",
			Value:       1,
			Destination: &upscale,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// problemFromFlags applies config defaults and builds the solver problem for
// an already loaded pair.
func problemFromFlags(cmd *cli.Command) solver.Problem {
	applyModelConfig(cmd, loaded)
	return solver.Problem{
		NumBeliefs: int(numBeliefs),
		Sigma:      sigma,
		Floor:      &floor,
		Workers:    int(workers),
	}
}
