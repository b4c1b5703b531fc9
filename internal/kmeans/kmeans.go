package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"

	"kclass/internal/worker"
)

var (
	// ErrNoCentroids is returned when a centroid set of size zero is requested.
	ErrNoCentroids = errors.New("at least one centroid is required")
	// ErrInvariant marks a broken precondition between assignment and update.
	ErrInvariant = errors.New("kmeans invariant violated")
)

// DefaultStagnationThreshold is the number of idle ticks before a centroid parks.
const DefaultStagnationThreshold = 50

// IdlePolicy controls what happens to a centroid that received no samples.
type IdlePolicy struct {
	// StagnationThreshold is the idle tick count at which reseeding stops.
	StagnationThreshold uint32
	// Park is where a stagnant centroid is held until it wins a sample again.
	Park Point
}

// DefaultIdlePolicy parks at the center of a 1920x1080 reference rectangle,
// whatever the configured domain is.
func DefaultIdlePolicy() IdlePolicy {
	return IdlePolicy{
		StagnationThreshold: DefaultStagnationThreshold,
		Park:                Point{X: 1920.0 / 2.0, Y: 1080.0 / 2.0},
	}
}

// Assign maps every sample to the index of its nearest centroid.
// Ties go to the lowest index. centroids must not be empty.
func Assign(samples []Sample, centroids []Centroid) []int {
	if len(centroids) == 0 {
		panic(fmt.Errorf("%w: assign with no centroids", ErrInvariant))
	}
	assignments := make([]int, len(samples))
	assignRange(samples, centroids, assignments, worker.Range{Start: 0, End: len(samples)})
	return assignments
}

// AssignParallel computes the same mapping as Assign, scanning contiguous
// chunks of samples on pool. Each sample's result is independent of the
// chunking, so the output matches Assign exactly.
func AssignParallel(ctx context.Context, pool *worker.Pool, chunkSize int, samples []Sample, centroids []Centroid) ([]int, error) {
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: assign with no centroids", ErrInvariant)
	}
	assignments := make([]int, len(samples))
	ranges := worker.ChunkRange(len(samples), chunkSize)
	err := pool.Run(ctx, ranges, func(_ context.Context, r worker.Range) error {
		assignRange(samples, centroids, assignments, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error assigning samples: %w", err)
	}
	return assignments, nil
}

// assignRange fills assignments[r.Start:r.End]. Concurrent calls must use
// disjoint ranges.
func assignRange(samples []Sample, centroids []Centroid, assignments []int, r worker.Range) {
	for i := r.Start; i < r.End; i++ {
		assignments[i] = nearestCenter(samples[i].Position, centroids)
	}
}

func nearestCenter(p Point, centroids []Centroid) int {
	best := 0
	minDist := float32(math.MaxFloat32)
	for i, c := range centroids {
		d := p.Dist(c.Position)
		if d < minDist {
			minDist = d
			best = i
		}
	}
	return best
}

// Update moves every centroid to the mean of its assigned samples. Centroids
// without samples are reseeded inside domain until they have been idle for
// policy.StagnationThreshold ticks, after which they stay at policy.Park.
//
// It returns the number of samples assigned to each centroid.
func Update(samples []Sample, centroids []Centroid, assignments []int, domain Domain, policy IdlePolicy, rng Random) ([]int, error) {
	if len(assignments) != len(samples) {
		return nil, fmt.Errorf("%w: %d assignments for %d samples", ErrInvariant, len(assignments), len(samples))
	}

	sums := make([]Point, len(centroids))
	counts := make([]int, len(centroids))
	for i, a := range assignments {
		if a < 0 || a >= len(centroids) {
			return nil, fmt.Errorf("%w: sample %d assigned to centroid %d of %d", ErrInvariant, i, a, len(centroids))
		}
		sums[a].X += samples[i].Position.X
		sums[a].Y += samples[i].Position.Y
		counts[a]++
	}

	for i := range centroids {
		c := &centroids[i]
		if counts[i] > 0 {
			n := float32(counts[i])
			c.Position = Point{X: sums[i].X / n, Y: sums[i].Y / n}
			c.IdleTicks = 0
			c.Parked = false
			continue
		}

		if c.IdleTicks < policy.StagnationThreshold {
			c.Position = uniformIn(domain, rng)
			c.IdleTicks++
			c.Parked = false
		} else {
			c.Position = policy.Park
			c.Parked = true
		}
	}

	return counts, nil
}
