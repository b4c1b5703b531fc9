package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kclass/internal/config"
	"kclass/internal/ffmpeg"
	"kclass/internal/input"
	"kclass/internal/kmeans"
	"kclass/internal/palette"
	"kclass/internal/render"
	"kclass/internal/sim"
)

func main() {
	cfgFlags := config.RegisterFlags(flag.CommandLine)
	output := flag.String("output", "kclass.mp4", "Video file to write")
	duration := flag.String("duration", "00:00:20", "Length of the video (seconds or HH:MM:SS)")
	resetEvery := flag.Int("reset-every", 0, "Reset the simulation every N ticks (0 never)")
	frameWidth := flag.Int("frame-width", 1200, "Frame width in pixels")
	frameHeight := flag.Int("frame-height", 900, "Frame height in pixels")
	codec := flag.String("codec", "", "ffmpeg video codec (default libx264)")
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

	seconds, err := ffmpeg.ParseTimeString(*duration)
	if err != nil || seconds <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid duration %q\n", *duration)
		os.Exit(1)
	}
	ticks := int(math.Ceil(seconds * float64(cfg.FPS)))

	params, err := cfg.SimParams()
	if err != nil {
		log.Fatalf("Error building simulation parameters: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Println("Received termination signal, finishing video...")
		cancel()
	}()

	encoder, err := ffmpeg.NewEncoder(context.Background(), ffmpeg.EncoderOptions{
		Output: *output,
		Width:  *frameWidth,
		Height: *frameHeight,
		FPS:    cfg.FPS,
		Codec:  *codec,
	})
	if err != nil {
		log.Fatalf("Error creating FFmpeg process: %v", err)
	}

	pal, err := palette.Resolve(*paletteHex, *neutralHex, cfg.CentroidCount)
	if err != nil {
		log.Fatalf("Error building palette: %v", err)
	}
	if pal.Len() < cfg.CentroidCount {
		log.Printf("Palette has %d colors for %d centroids, colors will repeat", pal.Len(), cfg.CentroidCount)
	}
	sink := render.NewVideoSink(render.NewRaster(*frameWidth, *frameHeight, params.Domain, pal), encoder)
	in := input.NewMulti(
		&input.Schedule{ResetEvery: *resetEvery, ExitAfter: ticks + 1},
		input.NewContext(ctx),
	)

	simulation, err := sim.New(params, kmeans.NewRandom(cfg.Seed), in, sink)
	if err != nil {
		log.Fatalf("Error starting simulation: %v", err)
	}

	log.Printf("Rendering %d ticks (%.2fs at %dfps) to %s", ticks, seconds, cfg.FPS, *output)
	start := time.Now()
	for {
		err := simulation.Tick(context.Background())
		if errors.Is(err, sim.ErrExit) {
			break
		}
		if err != nil {
			log.Printf("Simulation stopped: %v", err)
			break
		}
		if n := simulation.TickCount(); n%100 == 0 {
			log.Printf("Rendered %d frames...", n)
		}
	}

	if err := encoder.Close(); err != nil {
		log.Fatalf("Error finishing video: %v", err)
	}
	log.Printf("Rendered %d frames in %.2f seconds", encoder.Frames(), time.Since(start).Seconds())

	if w, h, fps, err := ffmpeg.GetVideoInfo(context.Background(), *output); err != nil {
		log.Printf("Warning: could not probe %s: %v", *output, err)
	} else {
		log.Printf("Video dimensions: %dx%d, Frame rate: %.3ffps", w, h, fps)
	}
}
