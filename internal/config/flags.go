package config

import "flag"

// Flags binds command line overrides for a Config.
type Flags struct {
	fs   *flag.FlagSet
	path *string

	samples, centroids       *int
	width, height            *float64
	distribution             *string
	centerX, centerY, radius *float64
	threshold                *uint
	parkX, parkY             *float64
	seed                     *uint64
	workers, chunkSize, fps  *int
	diagnostics              *uint64
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	return &Flags{
		fs:           fs,
		path:         fs.String("config", "", "Path to a JSON config file"),
		samples:      fs.Int("samples", d.SampleCount, "Number of samples"),
		centroids:    fs.Int("centroids", d.CentroidCount, "Number of centroids (at least 1)"),
		width:        fs.Float64("width", float64(d.DomainWidth), "Domain width"),
		height:       fs.Float64("height", float64(d.DomainHeight), "Domain height"),
		distribution: fs.String("distribution", d.Distribution.Kind, "Sample distribution: uniform or cluster"),
		centerX:      fs.Float64("center-x", 0, "Cluster distribution center x"),
		centerY:      fs.Float64("center-y", 0, "Cluster distribution center y"),
		radius:       fs.Float64("radius", 100, "Cluster distribution radius"),
		threshold:    fs.Uint("threshold", uint(d.StagnationThreshold), "Idle ticks before an empty centroid is parked"),
		parkX:        fs.Float64("park-x", float64(d.ParkX), "Parked centroid x"),
		parkY:        fs.Float64("park-y", float64(d.ParkY), "Parked centroid y"),
		seed:         fs.Uint64("seed", 0, "Random seed (0 picks one from the clock)"),
		workers:      fs.Int("workers", d.Workers, "Assignment workers (0 uses every CPU)"),
		chunkSize:    fs.Int("chunk-size", d.ChunkSize, "Samples per assignment chunk"),
		fps:          fs.Int("fps", d.FPS, "Ticks per second"),
		diagnostics:  fs.Uint64("diagnostics", 0, "Log diagnostics every N ticks (0 disables)"),
	}
}

// Resolve loads the config file, if any, applies explicitly set flags and
// validates the result. Call it after fs.Parse.
func (f *Flags) Resolve() (*Config, error) {
	cfg := Default()
	if *f.path != "" {
		loaded, err := Load(*f.path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "samples":
			cfg.SampleCount = *f.samples
		case "centroids":
			cfg.CentroidCount = *f.centroids
		case "width":
			cfg.DomainWidth = float32(*f.width)
		case "height":
			cfg.DomainHeight = float32(*f.height)
		case "distribution":
			cfg.Distribution.Kind = *f.distribution
		case "center-x":
			cfg.Distribution.CenterX = float32(*f.centerX)
		case "center-y":
			cfg.Distribution.CenterY = float32(*f.centerY)
		case "radius":
			cfg.Distribution.Radius = float32(*f.radius)
		case "threshold":
			cfg.StagnationThreshold = uint32(*f.threshold)
		case "park-x":
			cfg.ParkX = float32(*f.parkX)
		case "park-y":
			cfg.ParkY = float32(*f.parkY)
		case "seed":
			cfg.Seed = *f.seed
		case "workers":
			cfg.Workers = *f.workers
		case "chunk-size":
			cfg.ChunkSize = *f.chunkSize
		case "fps":
			cfg.FPS = *f.fps
		case "diagnostics":
			cfg.DiagnosticsEvery = *f.diagnostics
		}
	})

	// A cluster picked on the command line without a radius gets the flag default.
	if cfg.Distribution.Kind == "cluster" && cfg.Distribution.Radius == 0 {
		cfg.Distribution.Radius = float32(*f.radius)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
