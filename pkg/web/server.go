// Package web serves the ergonomics HTTP API, the comparison viewers'
// websocket and the live-analysis websocket.
package web

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/teslashibe/go-moto-ergo/internal/log"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/comparison"
	"github.com/teslashibe/go-moto-ergo/pkg/hub"
	"github.com/teslashibe/go-moto-ergo/pkg/live"
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Analyzer     *analysis.Analyzer
	Store        comparison.Store
	DefaultStyle comfort.RidingStyle
	Version      string
	Debug        bool
}

// Server is the ergonomics web service
type Server struct {
	app      *fiber.App
	analyzer *analysis.Analyzer
	store    comparison.Store
	style    comfort.RidingStyle
	version  string

	// Viewers of saved comparisons, one room per comparison ID
	viewers *hub.Hub
	live    *live.Server
}

// NewServer wires the routes. Call Start (or use App with app.Test).
func NewServer(opts Options) *Server {
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.New(nil, nil)
	}
	if opts.Store == nil {
		opts.Store = comparison.NewMemoryStore()
	}
	if opts.DefaultStyle == "" {
		opts.DefaultStyle = comfort.DefaultStyle
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		analyzer: opts.Analyzer,
		store:    opts.Store,
		style:    opts.DefaultStyle,
		version:  opts.Version,
		viewers:  hub.New("comparisons"),
		live:     live.NewServer(opts.Analyzer),
	}
	s.live.SetDefaultStyle(opts.DefaultStyle)

	app := fiber.New(fiber.Config{
		AppName:               "moto-ergo",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if opts.Debug {
		app.Use(logger.New())
	}

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/tire", s.handleTire)
	api.Get("/zones", s.handleZones)
	api.Get("/rider/estimate", s.handleRiderEstimate)
	api.Post("/analyze", s.handleAnalyze)

	comparisons := api.Group("/comparisons")
	comparisons.Get("/", s.handleListComparisons)
	comparisons.Post("/", s.handleCreateComparison)
	comparisons.Get("/:id", s.handleGetComparison)
	comparisons.Put("/:id", s.handleUpdateComparison)
	comparisons.Delete("/:id", s.handleDeleteComparison)
	comparisons.Get("/:id/report", s.handleComparisonReport)
	comparisons.Get("/:id/overlay.png", s.handleComparisonOverlay)

	app.Get("/ws/comparisons/:id", s.viewers.Handler())
	s.live.RegisterRoutes(app)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the viewer hub and serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the viewer hub and serves HTTP on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	go s.viewers.Run()
	log.Info("web server listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and disconnects viewers
func (s *Server) Shutdown(ctx context.Context) error {
	s.viewers.Stop()
	return s.app.ShutdownWithContext(ctx)
}
