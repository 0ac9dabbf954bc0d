// ergo-server: HTTP and websocket service for motorcycle ergonomics
// comparisons.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-moto-ergo/internal/config"
	"github.com/teslashibe/go-moto-ergo/internal/log"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
	"github.com/teslashibe/go-moto-ergo/pkg/comparison"
	"github.com/teslashibe/go-moto-ergo/pkg/web"
)

var (
	version  = "1.0.0"
	port     = flag.Int("port", config.DefaultPort, "HTTP server port (env PORT)")
	data     = flag.String("data", "", "comparison store file, empty for in-memory (env ERGO_DATA)")
	zones    = flag.String("zones", "", "YAML comfort zone table (env ERGO_ZONES_FILE)")
	style    = flag.String("style", "", "default riding style (env ERGO_RIDING_STYLE)")
	logLevel = flag.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	debug    = flag.Bool("debug", false, "Enable request logging")
	shoulder = flag.Float64("shoulder-offset", ergonomics.DefaultShoulderOffsetRatio, "shoulder offset as a share of torso length (env ERGO_SHOULDER_OFFSET_RATIO)")
)

// overrides returns only the flags given on the command line.
func overrides() config.Overrides {
	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			o.Port = port
		case "data":
			o.DataPath = data
		case "zones":
			o.ZonesFile = zones
		case "style":
			o.RidingStyle = style
		case "log-level":
			o.LogLevel = logLevel
		case "shoulder-offset":
			o.ShoulderOffsetRatio = shoulder
		}
	})
	return o
}

func main() {
	flag.Parse()

	cfg, err := config.LoadWithOverrides(overrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	table, err := cfg.Zones()
	if err != nil {
		log.Error("failed to load comfort zones", "file", cfg.ZonesFile, "error", err)
		os.Exit(1)
	}

	calc, err := cfg.Calculator()
	if err != nil {
		log.Error("invalid angle settings", "error", err)
		os.Exit(1)
	}

	var store comparison.Store
	if cfg.DataPath == "" {
		store = comparison.NewMemoryStore()
	} else {
		js, err := comparison.NewJSONStore(cfg.DataPath)
		if err != nil {
			log.Error("failed to open comparison store", "path", cfg.DataPath, "error", err)
			os.Exit(1)
		}
		store = js
	}

	srv := web.NewServer(web.Options{
		Analyzer:     analysis.New(calc, table),
		Store:        store,
		DefaultStyle: cfg.RidingStyle,
		Version:      version,
		Debug:        *debug,
	})

	go func() {
		log.Info("starting ergo-server",
			"version", version,
			"addr", cfg.Addr(),
			"store", cfg.DataPath,
			"comparisons", store.Count(),
			"style", cfg.RidingStyle,
		)
		if err := srv.Start(cfg.Addr()); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
