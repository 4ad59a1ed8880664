package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/loopy/internal/api"
	"github.com/samcharles93/loopy/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr          string
		readTimeout   time.Duration
		maxConcurrent int64
		maxSweeps     int64
		storeLimit    int64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the solve API",
		Flags: append(modelFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "sweeps",
				Usage:       "sweeps run when a request does not say",
				Value:       5,
				Destination: &sweeps,
			},
			&cli.Int64Flag{
				Name:        "max-sweeps",
				Usage:       "largest sweep count a request may ask for",
				Value:       int64(api.DefaultLimits().MaxSweeps),
				Destination: &maxSweeps,
			},
			&cli.Int64Flag{
				Name:        "max-concurrent",
				Usage:       "solves allowed to run at once",
				Value:       int64(api.DefaultLimits().MaxConcurrent),
				Destination: &maxConcurrent,
			},
			&cli.Int64Flag{
				Name:        "store-limit",
				Usage:       "finished solves kept in memory",
				Value:       64,
				Destination: &storeLimit,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, loaded, &addr)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			limits := api.DefaultLimits()
			limits.MaxSweeps = int(maxSweeps)
			limits.MaxConcurrent = int(maxConcurrent)
			server := api.NewServer(api.Config{
				Limits:        limits,
				DefaultSweeps: int(sweeps),
				Workers:       int(workers),
				StoreLimit:    int(storeLimit),
			}, log)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
