package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kclass/internal/kmeans"
	"kclass/internal/sim"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DistributionConfig selects the sample distribution.
type DistributionConfig struct {
	// Kind is "uniform" or "cluster".
	Kind    string  `json:"kind"`
	CenterX float32 `json:"center_x,omitempty"`
	CenterY float32 `json:"center_y,omitempty"`
	Radius  float32 `json:"radius,omitempty"`
}

// Config is read once at startup and never changes afterwards.
type Config struct {
	SampleCount   int                `json:"sample_count"`
	CentroidCount int                `json:"centroid_count"`
	DomainWidth   float32            `json:"domain_width"`
	DomainHeight  float32            `json:"domain_height"`
	Distribution  DistributionConfig `json:"distribution"`

	// Idle policy
	StagnationThreshold uint32  `json:"stagnation_threshold"`
	ParkX               float32 `json:"park_x"`
	ParkY               float32 `json:"park_y"`

	// Seed 0 asks the caller to pick a time based seed.
	Seed uint64 `json:"seed"`

	Workers          int    `json:"workers"`
	ChunkSize        int    `json:"chunk_size"`
	FPS              int    `json:"fps"`
	DiagnosticsEvery uint64 `json:"diagnostics_every"`
}

// Default is an 800x600 spawn box inside a 1200x900 window, with 2000
// samples and 8 means.
func Default() *Config {
	policy := kmeans.DefaultIdlePolicy()
	return &Config{
		SampleCount:         2000,
		CentroidCount:       8,
		DomainWidth:         800,
		DomainHeight:        600,
		Distribution:        DistributionConfig{Kind: "uniform"},
		StagnationThreshold: policy.StagnationThreshold,
		ParkX:               policy.Park.X,
		ParkY:               policy.Park.Y,
		Workers:             1,
		ChunkSize:           512,
		FPS:                 60,
	}
}

// Load reads a JSON config file on top of Default. Omitted fields keep
// their default values.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	switch {
	case c.CentroidCount < 1:
		return fmt.Errorf("%w: centroid_count must be at least 1, got %d", ErrInvalid, c.CentroidCount)
	case c.SampleCount < 0:
		return fmt.Errorf("%w: sample_count must not be negative, got %d", ErrInvalid, c.SampleCount)
	case c.DomainWidth <= 0 || c.DomainHeight <= 0:
		return fmt.Errorf("%w: domain must have positive size, got %gx%g", ErrInvalid, c.DomainWidth, c.DomainHeight)
	case c.StagnationThreshold < 1:
		return fmt.Errorf("%w: stagnation_threshold must be at least 1", ErrInvalid)
	case c.Workers < 0 || c.ChunkSize < 0:
		return fmt.Errorf("%w: workers and chunk_size must not be negative", ErrInvalid)
	case c.FPS < 1:
		return fmt.Errorf("%w: fps must be at least 1, got %d", ErrInvalid, c.FPS)
	}
	if _, err := c.distribution(); err != nil {
		return err
	}
	return nil
}

func (c *Config) distribution() (kmeans.Distribution, error) {
	switch c.Distribution.Kind {
	case "", "uniform":
		return kmeans.Distribution{Kind: kmeans.Uniform}, nil
	case "cluster":
		if c.Distribution.Radius < 0 {
			return kmeans.Distribution{}, fmt.Errorf("%w: cluster radius must not be negative", ErrInvalid)
		}
		return kmeans.Distribution{
			Kind:   kmeans.Cluster,
			Center: kmeans.Point{X: c.Distribution.CenterX, Y: c.Distribution.CenterY},
			Radius: c.Distribution.Radius,
		}, nil
	default:
		return kmeans.Distribution{}, fmt.Errorf("%w: unknown distribution %q", ErrInvalid, c.Distribution.Kind)
	}
}

func (c *Config) Domain() kmeans.Domain {
	return kmeans.Domain{Width: c.DomainWidth, Height: c.DomainHeight}
}

// SimParams validates c and converts it to simulation parameters.
func (c *Config) SimParams() (sim.Params, error) {
	if err := c.Validate(); err != nil {
		return sim.Params{}, err
	}
	dist, _ := c.distribution()
	return sim.Params{
		SampleCount:   c.SampleCount,
		CentroidCount: c.CentroidCount,
		Domain:        c.Domain(),
		Distribution:  dist,
		Policy: kmeans.IdlePolicy{
			StagnationThreshold: c.StagnationThreshold,
			Park:                kmeans.Point{X: c.ParkX, Y: c.ParkY},
		},
		Workers:          c.Workers,
		ChunkSize:        c.ChunkSize,
		DiagnosticsEvery: c.DiagnosticsEvery,
	}, nil
}
