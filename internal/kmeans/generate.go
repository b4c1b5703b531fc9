package kmeans

import (
	"fmt"
	"math"
)

type Sample struct {
	Position Point
}

// Centroid is the moving center of one cluster.
type Centroid struct {
	Position Point
	// IdleTicks counts consecutive ticks without an assigned sample.
	IdleTicks uint32
	// Parked is set while the centroid sits at the idle policy's park position.
	Parked bool
}

// DistributionKind selects how samples are spread over the domain.
type DistributionKind int

const (
	Uniform DistributionKind = iota
	Cluster
)

func (k DistributionKind) String() string {
	switch k {
	case Uniform:
		return "uniform"
	case Cluster:
		return "cluster"
	default:
		return fmt.Sprintf("DistributionKind(%d)", int(k))
	}
}

// Distribution describes sample placement. Center and Radius are only used
// by Cluster.
type Distribution struct {
	Kind   DistributionKind
	Center Point
	Radius float32
}

// GenerateSamples builds count samples according to dist.
//
// Cluster samples take a uniform angle and a uniform radial fraction, which
// biases them towards the center. Points falling outside the domain are
// redrawn, falling back to clamping after a bounded number of attempts.
func GenerateSamples(count int, dist Distribution, domain Domain, rng Random) []Sample {
	samples := make([]Sample, 0, max(count, 0))
	for i := 0; i < count; i++ {
		var p Point
		switch dist.Kind {
		case Cluster:
			p = clusterPoint(dist, domain, rng)
		default:
			p = uniformIn(domain, rng)
		}
		samples = append(samples, Sample{Position: p})
	}
	return samples
}

const maxClusterAttempts = 100

func clusterPoint(dist Distribution, domain Domain, rng Random) Point {
	var p Point
	for attempt := 0; attempt < maxClusterAttempts; attempt++ {
		angle := float64(rng.Float32()) * 2 * math.Pi
		r := float64(rng.Float32() * dist.Radius)
		p = Point{
			X: dist.Center.X + float32(r*math.Cos(angle)),
			Y: dist.Center.Y + float32(r*math.Sin(angle)),
		}
		if domain.Contains(p) {
			return p
		}
	}
	return domain.Clamp(p)
}

// GenerateCentroids places k centroids uniformly in the domain with cleared
// idle counters. k must be at least 1.
func GenerateCentroids(k int, domain Domain, rng Random) ([]Centroid, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoCentroids, k)
	}
	centroids := make([]Centroid, k)
	for i := range centroids {
		centroids[i] = Centroid{Position: uniformIn(domain, rng)}
	}
	return centroids, nil
}
