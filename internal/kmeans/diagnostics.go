package kmeans

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Diagnostics summarises one tick of clustering.
type Diagnostics struct {
	// Inertia is the sum of squared distances from samples to their centroid.
	Inertia float64 `json:"inertia"`
	// MeanClusterSize and ClusterSizeStdDev describe the spread of counts.
	MeanClusterSize   float64 `json:"mean_cluster_size"`
	ClusterSizeStdDev float64 `json:"cluster_size_stddev"`
	Empty             int     `json:"empty"`
	Parked            int     `json:"parked"`
}

// Diagnose computes Diagnostics for the current centroids. counts is the
// per-centroid sample count returned by Update.
func Diagnose(samples []Sample, centroids []Centroid, assignments []int, counts []int) Diagnostics {
	var d Diagnostics

	sq := make([]float64, 0, len(samples))
	for i, a := range assignments {
		if a < 0 || a >= len(centroids) || i >= len(samples) {
			continue
		}
		dist := float64(samples[i].Position.Dist(centroids[a].Position))
		sq = append(sq, dist*dist)
	}
	d.Inertia = floats.Sum(sq)

	sizes := make([]float64, len(counts))
	for i, n := range counts {
		sizes[i] = float64(n)
		if n == 0 {
			d.Empty++
		}
	}
	if len(sizes) > 1 {
		d.MeanClusterSize, d.ClusterSizeStdDev = stat.MeanStdDev(sizes, nil)
	} else if len(sizes) == 1 {
		d.MeanClusterSize = sizes[0]
	}

	for _, c := range centroids {
		if c.Parked {
			d.Parked++
		}
	}
	return d
}
