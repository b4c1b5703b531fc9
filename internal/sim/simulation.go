package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kclass/internal/kmeans"
	"kclass/internal/monitoring"
	"kclass/internal/worker"
)

// ErrExit is returned by Tick once an exit event has been consumed.
var ErrExit = errors.New("simulation exited")

// Params are the fixed simulation parameters.
type Params struct {
	SampleCount   int
	CentroidCount int
	Domain        kmeans.Domain
	Distribution  kmeans.Distribution
	Policy        kmeans.IdlePolicy

	// Workers > 1 spreads the assignment scan over a worker pool.
	Workers   int
	ChunkSize int

	// DiagnosticsEvery logs clustering diagnostics every n ticks. 0 disables.
	DiagnosticsEvery uint64
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithObserver registers a state transition hook.
func WithObserver(o StateObserver) Option {
	return func(s *Simulation) { s.observer = o }
}

// Simulation owns the sample and centroid sets and advances them one tick
// at a time. It is not safe for concurrent use.
type Simulation struct {
	params Params
	rng    kmeans.Random
	input  InputSource
	sink   RenderSink
	pool   *worker.Pool

	samples     []kmeans.Sample
	centroids   []kmeans.Centroid
	assignments []int
	counts      []int
	diag        kmeans.Diagnostics

	state       State
	tick        uint64
	exitPending bool
	observer    StateObserver
}

// New validates p and generates the initial state. A nil input or sink is
// replaced by a no-op.
func New(p Params, rng kmeans.Random, input InputSource, sink RenderSink, opts ...Option) (*Simulation, error) {
	if p.SampleCount < 0 {
		return nil, fmt.Errorf("sample count must not be negative, got %d", p.SampleCount)
	}
	if p.Domain.Width <= 0 || p.Domain.Height <= 0 {
		return nil, fmt.Errorf("domain must have positive size, got %gx%g", p.Domain.Width, p.Domain.Height)
	}
	if p.Policy.StagnationThreshold < 1 {
		return nil, fmt.Errorf("stagnation threshold must be at least 1, got %d", p.Policy.StagnationThreshold)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if input == nil {
		input = nopInput{}
	}
	if sink == nil {
		sink = nopSink{}
	}

	s := &Simulation{
		params: p,
		rng:    rng,
		input:  input,
		sink:   sink,
	}
	if p.Workers > 1 {
		s.pool = worker.NewPool(p.Workers)
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset regenerates samples and centroids from the configured parameters,
// clearing all idle counters.
func (s *Simulation) Reset() error {
	centroids, err := kmeans.GenerateCentroids(s.params.CentroidCount, s.params.Domain, s.rng)
	if err != nil {
		return fmt.Errorf("error generating centroids: %w", err)
	}
	s.samples = kmeans.GenerateSamples(s.params.SampleCount, s.params.Distribution, s.params.Domain, s.rng)
	s.centroids = centroids
	s.assignments = nil
	s.counts = nil
	return nil
}

// Tick runs one frame: poll input, then either reset or assign and update,
// then publish to the sink. After an exit event it returns ErrExit. An exit
// polled together with a reset terminates on the following tick.
func (s *Simulation) Tick(ctx context.Context) error {
	if s.state == Terminated {
		return ErrExit
	}
	if s.exitPending {
		s.transition(Terminated)
		return ErrExit
	}

	ev := s.input.Poll()
	switch {
	case ev.Reset:
		s.exitPending = ev.Exit
		s.tick++
		s.transition(Resetting)
		if err := s.Reset(); err != nil {
			s.transition(Terminated)
			return err
		}
		monitoring.Logf("tick %d: reset %d samples and %d centroids", s.tick, len(s.samples), len(s.centroids))
		s.transition(Publishing)
		s.publish()
		s.transition(Idle)
		return nil
	case ev.Exit:
		s.transition(Terminated)
		return ErrExit
	}

	s.tick++
	s.transition(Assigning)
	assignments, err := s.assign(ctx)
	if err != nil {
		s.transition(Terminated)
		return err
	}

	s.transition(Updating)
	counts, err := kmeans.Update(s.samples, s.centroids, assignments, s.params.Domain, s.params.Policy, s.rng)
	if err != nil {
		s.transition(Terminated)
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}
	s.assignments = assignments
	s.counts = counts

	s.transition(Publishing)
	s.publish()

	if n := s.params.DiagnosticsEvery; n > 0 && s.tick%n == 0 {
		s.diag = kmeans.Diagnose(s.samples, s.centroids, s.assignments, s.counts)
		monitoring.Logf("tick %d: inertia=%.1f mean_size=%.1f stddev=%.1f empty=%d parked=%d",
			s.tick, s.diag.Inertia, s.diag.MeanClusterSize, s.diag.ClusterSizeStdDev, s.diag.Empty, s.diag.Parked)
	}

	s.transition(Idle)
	return nil
}

// Run ticks once per value received from frames until an exit event,
// ctx cancellation, or frames being closed. Cancellation is only observed
// between ticks.
func (s *Simulation) Run(ctx context.Context, frames <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			if err := s.Tick(ctx); err != nil {
				if errors.Is(err, ErrExit) {
					return nil
				}
				return err
			}
		}
	}
}

func (s *Simulation) assign(ctx context.Context) ([]int, error) {
	if s.pool == nil {
		return kmeans.Assign(s.samples, s.centroids), nil
	}
	// A tick always completes, so the scan ignores cancellation.
	return kmeans.AssignParallel(context.WithoutCancel(ctx), s.pool, s.params.ChunkSize, s.samples, s.centroids)
}

// publish sends every entity to the sink. Samples carry their assigned
// centroid as color key, or none right after a reset.
func (s *Simulation) publish() {
	s.sink.Begin(s.tick)
	for i, smp := range s.samples {
		u := Update{Kind: SampleEntity, Index: i, Position: smp.Position}
		if s.assignments != nil {
			key := s.assignments[i]
			u.Color = &key
		}
		s.sink.Publish(u)
	}
	for i, c := range s.centroids {
		key := i
		s.sink.Publish(Update{Kind: CentroidEntity, Index: i, Position: c.Position, Color: &key})
	}
	if err := s.sink.End(); err != nil {
		monitoring.Logf("tick %d: render sink error: %v", s.tick, err)
	}
}

func (s *Simulation) transition(to State) {
	from := s.state
	s.state = to
	if s.observer != nil {
		s.observer(from, to)
	}
}

// State returns the current loop state.
func (s *Simulation) State() State { return s.state }

// TickCount returns the number of completed ticks, resets included.
func (s *Simulation) TickCount() uint64 { return s.tick }

// Samples returns a copy of the sample set.
func (s *Simulation) Samples() []kmeans.Sample {
	return append([]kmeans.Sample(nil), s.samples...)
}

// Centroids returns a copy of the centroid set.
func (s *Simulation) Centroids() []kmeans.Centroid {
	return append([]kmeans.Centroid(nil), s.centroids...)
}

// Assignments returns a copy of the most recent assignment, or nil if the
// last tick was a reset.
func (s *Simulation) Assignments() []int {
	if s.assignments == nil {
		return nil
	}
	return append([]int(nil), s.assignments...)
}

// Diagnostics returns the most recently logged diagnostics.
func (s *Simulation) Diagnostics() kmeans.Diagnostics { return s.diag }

// SetState replaces samples and centroids, for driving scripted scenarios.
// The slices are copied.
func (s *Simulation) SetState(samples []kmeans.Sample, centroids []kmeans.Centroid) error {
	if len(centroids) == 0 {
		return kmeans.ErrNoCentroids
	}
	s.samples = append([]kmeans.Sample(nil), samples...)
	s.centroids = append([]kmeans.Centroid(nil), centroids...)
	s.assignments = nil
	s.counts = nil
	return nil
}
