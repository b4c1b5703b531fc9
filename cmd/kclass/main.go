package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kclass/internal/config"
	"kclass/internal/input"
	"kclass/internal/kmeans"
	"kclass/internal/monitoring"
	"kclass/internal/palette"
	"kclass/internal/render"
	"kclass/internal/sim"
)

func main() {
	cfgFlags := config.RegisterFlags(flag.CommandLine)
	frameWidth := flag.Int("frame-width", 1200, "Raster width in pixels")
	frameHeight := flag.Int("frame-height", 900, "Raster height in pixels")
	pngDir := flag.String("png-dir", "", "Directory for PNG frame snapshots (disabled if empty)")
	pngEvery := flag.Uint64("png-every", 60, "Save a PNG snapshot every N ticks")
	plotDir := flag.String("plot-dir", "", "Directory for scatter plot snapshots (disabled if empty)")
	plotEvery := flag.Uint64("plot-every", 300, "Save a scatter plot every N ticks")
	jsonlPath := flag.String("jsonl", "", "Write every tick as a JSON line to this file (- for stdout)")
	keys := flag.Bool("keys", true, "Read r (reset) and q (quit) commands from stdin; EOF quits")
	trace := flag.Bool("trace", false, "Log every tick loop state transition")
	paletteHex := flag.String("palette", "", "Comma separated cluster colors, e.g. #ff0000,#00ff00 (default built-in palette)")
	neutralHex := flag.String("neutral", "", "Color of unassigned samples (default #9acd32)")

	flag.Parse()

	cfg, err := cfgFlags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	params, err := cfg.SimParams()
	if err != nil {
		log.Fatalf("Error building simulation parameters: %v", err)
	}

	// Create a context that can be canceled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle termination signals
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Println("Received termination signal, shutting down...")
		cancel()
	}()

	pal, err := palette.Resolve(*paletteHex, *neutralHex, cfg.CentroidCount)
	if err != nil {
		log.Fatalf("Error building palette: %v", err)
	}
	if pal.Len() < cfg.CentroidCount {
		log.Printf("Palette has %d colors for %d centroids, colors will repeat", pal.Len(), cfg.CentroidCount)
	}
	sinks := render.Multi{}
	if *pngDir != "" {
		s, err := render.NewPNGSink(*pngDir, *pngEvery, render.NewRaster(*frameWidth, *frameHeight, params.Domain, pal))
		if err != nil {
			log.Fatalf("Error setting up PNG snapshots: %v", err)
		}
		sinks = append(sinks, s)
	}
	if *plotDir != "" {
		s, err := render.NewPlotSink(*plotDir, *plotEvery, params.Domain, pal)
		if err != nil {
			log.Fatalf("Error setting up plots: %v", err)
		}
		sinks = append(sinks, s)
	}
	if *jsonlPath != "" {
		w, closeFn, err := openOutput(*jsonlPath)
		if err != nil {
			log.Fatalf("Error opening %s: %v", *jsonlPath, err)
		}
		defer closeFn()
		sinks = append(sinks, render.NewJSONSink(w))
	}

	// The exit event is raised by "q" on stdin or by a signal; the context
	// source turns cancellation into an exit at the next tick boundary.
	in := input.NewMulti(input.NewContext(ctx))
	if *keys {
		in.Add(input.NewLines(ctx, os.Stdin))
	}

	var opts []sim.Option
	if *trace {
		opts = append(opts, sim.WithObserver(func(from, to sim.State) {
			monitoring.Logf("state %s -> %s", from, to)
		}))
	}

	simulation, err := sim.New(params, kmeans.NewRandom(cfg.Seed), in, sinks, opts...)
	if err != nil {
		log.Fatalf("Error starting simulation: %v", err)
	}

	log.Printf("Starting k-means with %d samples, %d centroids, seed %d (r + enter resets, q quits)",
		cfg.SampleCount, cfg.CentroidCount, cfg.Seed)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()

	// Run on a background context: exit arrives through the input source so
	// the last tick always completes.
	start := time.Now()
	if err := simulation.Run(context.Background(), ticker.C); err != nil {
		log.Fatalf("Simulation stopped: %v", err)
	}
	log.Printf("Simulation finished after %d ticks in %.2f seconds", simulation.TickCount(), time.Since(start).Seconds())
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
