package api

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/loopy/internal/logger"
	"github.com/samcharles93/loopy/internal/mrf"
	"github.com/samcharles93/loopy/internal/render"
	"github.com/samcharles93/loopy/internal/solver"
	"github.com/samcharles93/loopy/internal/stereo"
)

// Limits bound the work a single request may ask for.
type Limits struct {
	MaxPixels     int
	MaxBeliefs    int
	MaxSweeps     int
	MaxConcurrent int
}

func DefaultLimits() Limits {
	return Limits{
		MaxPixels:     1 << 20,
		MaxBeliefs:    64,
		MaxSweeps:     100,
		MaxConcurrent: 2,
	}
}

type Config struct {
	Limits        Limits
	DefaultSweeps int
	Workers       int
	StoreLimit    int
}

type Server struct {
	store   *SolveStore
	metrics *Metrics
	log     logger.Logger
	cfg     Config
	slots   chan struct{}
	clock   func() time.Time
}

func NewServer(cfg Config, log logger.Logger) *Server {
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	if cfg.Limits.MaxConcurrent < 1 {
		cfg.Limits.MaxConcurrent = 1
	}
	if cfg.DefaultSweeps <= 0 {
		cfg.DefaultSweeps = 5
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store:   NewSolveStore(cfg.StoreLimit),
		metrics: NewMetrics(),
		log:     log,
		cfg:     cfg,
		slots:   make(chan struct{}, cfg.Limits.MaxConcurrent),
		clock:   time.Now,
	}
}

func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/solves", s.handleCreateSolve)
	e.GET("/v1/solves/:id", s.handleGetSolve)
	e.GET("/v1/solves/:id/disparity.png", s.handleDisparityPNG)
	e.DELETE("/v1/solves/:id", s.handleDeleteSolve)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	e.GET("/healthz", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) handleCreateSolve(c *echo.Context) error {
	req, err := decodeJSON[SolveRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err)
	}
	problem, sweeps, err := s.problemFor(&req)
	if err != nil {
		return writeBadRequest(c, err)
	}

	ctx := c.Request().Context()
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return writeError(c, http.StatusServiceUnavailable, "server_error", "request cancelled while queued", "")
	}
	defer func() { <-s.slots }()

	s.metrics.inFlight.Inc()
	start := s.clock()
	res, err := solver.Solve(logger.WithContext(ctx, s.log), problem, sweeps, s.metrics)
	s.metrics.inFlight.Dec()
	if err != nil {
		s.metrics.observeSolve("error", time.Since(start))
		s.log.Warn("solve failed", "error", err)
		switch {
		case errors.Is(err, stereo.ErrSizeMismatch):
			return writeBadRequest(c, err)
		case errors.Is(err, mrf.ErrNumericFault):
			return writeError(c, http.StatusUnprocessableEntity, "numeric_error", err.Error(), "")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return writeError(c, http.StatusServiceUnavailable, "server_error", err.Error(), "")
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
	s.metrics.observeSolve("completed", time.Since(start))

	resp := SolveResponse{
		ID:         newSolveID(),
		Object:     "solve",
		CreatedAt:  start.Unix(),
		Status:     "completed",
		Width:      res.Width,
		Height:     res.Height,
		NumBeliefs: res.NumBeliefs,
		Sweeps:     res.Stats.Sweeps,
		DurationMS: float64(res.Stats.Duration.Microseconds()) / 1000,
		Labels:     labelRows(res.Labels, res.Height, res.Width),
	}
	s.store.Save(resp, res.Labels)
	s.log.Info("solve stored", "id", resp.ID, "width", resp.Width, "height", resp.Height, "sweeps", resp.Sweeps)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) problemFor(req *SolveRequest) (solver.Problem, int, error) {
	lim := s.cfg.Limits
	p := solver.Problem{
		NumBeliefs: req.NumBeliefs,
		Sigma:      req.Sigma,
		Floor:      req.Floor,
		Workers:    s.cfg.Workers,
	}
	if p.NumBeliefs == 0 {
		p.NumBeliefs = solver.DefaultNumBeliefs
	}
	if p.NumBeliefs < 1 || p.NumBeliefs > lim.MaxBeliefs {
		return p, 0, newInvalidRequest("num_beliefs", "must be in [1, %d]", lim.MaxBeliefs)
	}
	sweeps := s.cfg.DefaultSweeps
	if req.Sweeps != nil {
		sweeps = *req.Sweeps
	}
	if sweeps < 0 || sweeps > lim.MaxSweeps {
		return p, 0, newInvalidRequest("sweeps", "must be in [0, %d]", lim.MaxSweeps)
	}

	hasPair := req.Left != "" || req.Right != ""
	switch {
	case hasPair && req.Synthetic != nil:
		return p, 0, newInvalidRequest("synthetic", "cannot be combined with left/right")
	case req.Synthetic != nil:
		syn := req.Synthetic
		if syn.Width < 1 || syn.Height < 1 {
			return p, 0, newInvalidRequest("synthetic", "width and height must be positive")
		}
		if syn.Shift < 0 || syn.Shift >= syn.Width {
			return p, 0, newInvalidRequest("synthetic", "shift must be in [0, %d)", syn.Width)
		}
		if !fitsPixels(syn.Width, syn.Height, lim.MaxPixels) {
			return p, 0, newInvalidRequest("synthetic", "image exceeds %d pixels", lim.MaxPixels)
		}
		p.Left, p.Right = stereo.Shifted(syn.Width, syn.Height, syn.Shift, syn.Seed)
	case req.Left != "" && req.Right != "":
		// Scaling only shrinks, so the header check bounds the decoded size.
		if req.Scale < 0 || req.Scale > 1 {
			return p, 0, newInvalidRequest("scale", "must be in [0, 1]")
		}
		left, err := decodeImageParam("left", req.Left, lim.MaxPixels)
		if err != nil {
			return p, 0, err
		}
		right, err := decodeImageParam("right", req.Right, lim.MaxPixels)
		if err != nil {
			return p, 0, err
		}
		p.Left, p.Right = left.Scaled(req.Scale), right.Scaled(req.Scale)
	default:
		return p, 0, newInvalidRequest("", "left and right images, or synthetic, are required")
	}
	return p, sweeps, nil
}

func (s *Server) handleGetSolve(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "solve not found")
	}
	return c.JSON(http.StatusOK, rec.Response)
}

func (s *Server) handleDisparityPNG(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "solve not found")
	}
	r := rec.Response
	var buf bytes.Buffer
	if err := png.Encode(&buf, render.DisparityImage(rec.Labels, r.Height, r.Width, r.NumBeliefs)); err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleDeleteSolve(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "solve not found")
	}
	return c.JSON(http.StatusOK, DeleteSolveResponse{
		ID:      id,
		Object:  "solve",
		Deleted: true,
	})
}
