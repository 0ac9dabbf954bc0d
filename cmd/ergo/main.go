// ergo: analyse a rider/bike comparison from a JSON file.
//
//	ergo [-server URL] [-style sport] [-json] [-png out.png] input.json
//
// Use "-" to read the input from stdin.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/teslashibe/go-moto-ergo/internal/config"
	"github.com/teslashibe/go-moto-ergo/internal/log"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/ergonomics"
	"github.com/teslashibe/go-moto-ergo/pkg/client"
	"github.com/teslashibe/go-moto-ergo/pkg/render"
)

var (
	server  = flag.String("server", "", "analyse on a running ergo-server instead of locally")
	style   = flag.String("style", "", "riding style when the input names none (env ERGO_RIDING_STYLE)")
	zones   = flag.String("zones", "", "YAML comfort zone table (env ERGO_ZONES_FILE)")
	asJSON  = flag.Bool("json", false, "print the full report as JSON")
	pngPath = flag.String("png", "", "write an overlay PNG to this path")
	width   = flag.Int("width", render.DefaultWidth, "overlay width in pixels")
	height  = flag.Int("height", render.DefaultHeight, "overlay height in pixels")
	timeout = flag.Duration("timeout", 30*time.Second, "server request timeout")

	shoulder = flag.Float64("shoulder-offset", ergonomics.DefaultShoulderOffsetRatio, "shoulder offset as a share of torso length (env ERGO_SHOULDER_OFFSET_RATIO)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] input.json\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, out io.Writer) error {
	var o config.Overrides
	if *style != "" {
		o.RidingStyle = style
	}
	if *zones != "" {
		o.ZonesFile = zones
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "shoulder-offset" {
			o.ShoulderOffsetRatio = shoulder
		}
	})
	cfg, err := config.LoadWithOverrides(o)
	if err != nil {
		return err
	}
	log.Init(cfg.LogLevel)

	in, err := readInput(path)
	if err != nil {
		return err
	}
	if in.RidingStyle == "" {
		in.RidingStyle = cfg.RidingStyle
	}

	var report analysis.Report
	if *server != "" {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		report, err = client.New(*server).Analyze(ctx, in)
		if err != nil {
			return err
		}
	} else {
		table, err := cfg.Zones()
		if err != nil {
			return err
		}
		calc, err := cfg.Calculator()
		if err != nil {
			return err
		}
		report = analysis.New(calc, table).Analyze(in)
	}

	if *pngPath != "" {
		if err := writePNG(*pngPath, report); err != nil {
			return err
		}
		log.Debug("wrote overlay", "path", *pngPath)
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

func readInput(path string) (analysis.Input, error) {
	var in analysis.Input
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return in, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return in, fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	return in, in.Validate()
}

func writePNG(path string, r analysis.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create overlay: %w", err)
	}
	if err := render.WritePNG(f, r, *width, *height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
