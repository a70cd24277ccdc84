// Package server exposes the prediction and report operations over HTTP
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	salesforecaster "github.com/aouyang1/go-salesforecaster"
	"github.com/aouyang1/go-salesforecaster/sales"
)

// FormField is the multipart field carrying the uploaded sales file
const FormField = "file"

// Service is the work done for each upload
type Service interface {
	Predict(ctx context.Context, table *sales.Table) (*salesforecaster.Prediction, error)
	Report(ctx context.Context, table *sales.Table) (*salesforecaster.Report, error)
}

type Options struct {
	Addr         string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StaticDir    string
}

func NewDefaultOptions() *Options {
	return &Options{
		Addr:         ":8000",
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		StaticDir:    "static",
	}
}

type Server struct {
	opt     *Options
	svc     Service
	app     *fiber.App
	metrics *Metrics
	logger  *slog.Logger
}

// New builds the fiber app with its middleware and routes. If no options are provided a default
// is used.
func New(opt *Options, svc Service, logger *slog.Logger) *Server {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opt:     opt,
		svc:     svc,
		metrics: NewMetrics(),
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "salesinsight",
		BodyLimit:             opt.BodyLimit,
		ReadTimeout:           opt.ReadTimeout,
		WriteTimeout:          opt.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(s.requestLogger)
	s.app.Use(recover.New())

	s.app.Post("/predict", s.handlePredict)
	s.app.Post("/report", s.handleReport)
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/metrics", s.metrics.Handler())
	if opt.StaticDir != "" {
		s.app.Static("/static", opt.StaticDir)
	}
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the app is shut down
func (s *Server) Listen() error {
	s.logger.Info("listening", "addr", s.opt.Addr, "static_dir", s.opt.StaticDir)
	return s.app.Listen(s.opt.Addr)
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// requestLogger resolves handler errors into responses so the final status is known, then logs
// and counts the request
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	if chainErr := c.Next(); chainErr != nil {
		if err := errorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
		s.logger.Debug("request error", "path", c.Path(), "error", chainErr)
	}

	// fiber reuses the request buffers once the handler returns, label values must be copies
	status := c.Response().StatusCode()
	route := strings.Clone(c.Route().Path)
	method := strings.Clone(c.Method())
	s.metrics.observeRequest(route, method, status)

	level := slog.LevelInfo
	switch {
	case status >= fiber.StatusInternalServerError:
		level = slog.LevelError
	case status >= fiber.StatusBadRequest:
		level = slog.LevelWarn
	}
	s.logger.Log(c.UserContext(), level, "request",
		"method", method, "path", c.Path(), "route", route,
		"status", status, "latency", time.Since(start))
	return nil
}

func (s *Server) readUpload(c *fiber.Ctx) (*sales.Table, error) {
	fh, err := c.FormFile(FormField)
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrBadUpload, ErrNoFile)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w, unable to open %s, %w", ErrBadUpload, fh.Filename, err)
	}
	defer f.Close()

	table, err := sales.Read(fh.Filename, f, sales.DefaultSchema())
	if err != nil {
		return nil, fmt.Errorf("%w, %w", ErrBadUpload, err)
	}
	s.metrics.rowsTotal.Add(float64(table.Len()))
	return table, nil
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	table, err := s.readUpload(c)
	if err != nil {
		return err
	}

	start := time.Now()
	p, err := s.svc.Predict(c.UserContext(), table)
	s.metrics.duration.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	s.metrics.skipped.Add(float64(p.Skipped()))
	return c.JSON(p)
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	table, err := s.readUpload(c)
	if err != nil {
		return err
	}

	start := time.Now()
	r, err := s.svc.Report(c.UserContext(), table)
	s.metrics.duration.WithLabelValues("report").Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"html": r.HTML})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
