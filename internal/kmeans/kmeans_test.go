package kmeans

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kclass/internal/worker"
)

// seqRandom replays vals in a loop.
type seqRandom struct {
	vals []float32
	i    int
}

func (s *seqRandom) Float32() float32 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func samplesAt(pts ...Point) []Sample {
	out := make([]Sample, len(pts))
	for i, p := range pts {
		out[i] = Sample{Position: p}
	}
	return out
}

func centroidsAt(pts ...Point) []Centroid {
	out := make([]Centroid, len(pts))
	for i, p := range pts {
		out[i] = Centroid{Position: p}
	}
	return out
}

var box20 = Domain{Width: 20, Height: 20}

func TestAssignAndUpdate_TwoClusters(t *testing.T) {
	samples := samplesAt(Point{-6, 0}, Point{-4, 0}, Point{4, 0}, Point{6, 0})
	centroids := centroidsAt(Point{-5, 0}, Point{5, 0})

	assignments := Assign(samples, centroids)
	if diff := cmp.Diff([]int{0, 0, 1, 1}, assignments); diff != "" {
		t.Fatalf("assignment mismatch (-want +got):\n%s", diff)
	}

	counts, err := Update(samples, centroids, assignments, box20, DefaultIdlePolicy(), NewRandom(1))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, counts)
	assert.Equal(t, Point{-5, 0}, centroids[0].Position)
	assert.Equal(t, Point{5, 0}, centroids[1].Position)
	assert.Zero(t, centroids[0].IdleTicks)
	assert.Zero(t, centroids[1].IdleTicks)
}

func TestAssignAndUpdate_EmptyCluster(t *testing.T) {
	samples := samplesAt(Point{6, 0}, Point{6, 0}, Point{6, 0}, Point{6, 0})
	centroids := centroidsAt(Point{-5, 0}, Point{5, 0})

	assignments := Assign(samples, centroids)
	assert.Equal(t, []int{1, 1, 1, 1}, assignments)

	rng := &seqRandom{vals: []float32{0.25, 0.75}}
	_, err := Update(samples, centroids, assignments, box20, DefaultIdlePolicy(), rng)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), centroids[0].IdleTicks)
	assert.Equal(t, Point{-5, 5}, centroids[0].Position)
	assert.True(t, box20.Contains(centroids[0].Position))
	assert.False(t, centroids[0].Parked)

	assert.Equal(t, Point{6, 0}, centroids[1].Position)
	assert.Zero(t, centroids[1].IdleTicks)
}

func TestAssign_TieGoesToLowestIndex(t *testing.T) {
	samples := samplesAt(Point{0, 0})

	assert.Equal(t, []int{0}, Assign(samples, centroidsAt(Point{-1, 0}, Point{1, 0})))
	assert.Equal(t, []int{1}, Assign(samples, centroidsAt(Point{3, 0}, Point{0, 1}, Point{1, 0}, Point{0, -1})))
}

func TestAssign_NearestProperty(t *testing.T) {
	rng := NewRandom(42)
	domain := Domain{Width: 800, Height: 600}
	samples := GenerateSamples(500, Distribution{Kind: Uniform}, domain, rng)
	centroids, err := GenerateCentroids(7, domain, rng)
	require.NoError(t, err)

	assignments := Assign(samples, centroids)
	require.Len(t, assignments, len(samples))
	for i, a := range assignments {
		require.GreaterOrEqual(t, a, 0)
		require.Less(t, a, len(centroids))
		best := samples[i].Position.Dist(centroids[a].Position)
		for j, c := range centroids {
			d := samples[i].Position.Dist(c.Position)
			assert.LessOrEqual(t, best, d)
			if d == best {
				assert.LessOrEqual(t, a, j, "tie must resolve to lowest index")
			}
		}
	}
}

func TestAssign_NoCentroidsPanics(t *testing.T) {
	assert.Panics(t, func() { Assign(samplesAt(Point{}), nil) })
}

func TestAssignParallel_MatchesSerial(t *testing.T) {
	rng := NewRandom(7)
	domain := Domain{Width: 800, Height: 600}
	samples := GenerateSamples(2000, Distribution{Kind: Uniform}, domain, rng)
	centroids, err := GenerateCentroids(8, domain, rng)
	require.NoError(t, err)

	want := Assign(samples, centroids)
	for _, tc := range []struct{ workers, chunk int }{{1, 100}, {4, 1}, {4, 37}, {8, 0}, {3, 5000}} {
		got, err := AssignParallel(context.Background(), worker.NewPool(tc.workers), tc.chunk, samples, centroids)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d chunk=%d", tc.workers, tc.chunk)
	}

	_, err = AssignParallel(context.Background(), worker.NewPool(2), 10, samples, nil)
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestUpdate_MeanOfAssigned(t *testing.T) {
	samples := samplesAt(Point{1, 2}, Point{3, 4}, Point{5, 9}, Point{-8, -8})
	centroids := centroidsAt(Point{2, 3}, Point{-7, -7})

	assignments := Assign(samples, centroids)
	assert.Equal(t, []int{0, 0, 0, 1}, assignments)

	_, err := Update(samples, centroids, assignments, box20, DefaultIdlePolicy(), NewRandom(3))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, centroids[0].Position.X, 1e-5)
	assert.InDelta(t, 5.0, centroids[0].Position.Y, 1e-5)
	assert.Equal(t, Point{-8, -8}, centroids[1].Position)
}

func TestUpdate_IdleReseedThenPark(t *testing.T) {
	// The reseed source always lands near the (+10, +10) corner, far from the samples.
	rng := &seqRandom{vals: []float32{0.99}}
	policy := IdlePolicy{StagnationThreshold: 3, Park: Point{X: 960, Y: 540}}
	samples := samplesAt(Point{-9, -9}, Point{-8, -9})
	centroids := centroidsAt(Point{-9, -8}, Point{9, 9})

	for tick := 1; tick <= 3; tick++ {
		_, err := Update(samples, centroids, Assign(samples, centroids), box20, policy, rng)
		require.NoError(t, err)
		assert.Equal(t, uint32(tick), centroids[1].IdleTicks)
		assert.False(t, centroids[1].Parked)
		assert.True(t, box20.Contains(centroids[1].Position))
		assert.Zero(t, centroids[0].IdleTicks)
	}

	for tick := 0; tick < 5; tick++ {
		_, err := Update(samples, centroids, Assign(samples, centroids), box20, policy, rng)
		require.NoError(t, err)
		assert.Equal(t, uint32(3), centroids[1].IdleTicks)
		assert.True(t, centroids[1].Parked)
		assert.Equal(t, policy.Park, centroids[1].Position)
	}

	// A sample next to the park position releases it.
	samples = append(samples, Sample{Position: Point{X: 950, Y: 530}})
	_, err := Update(samples, centroids, Assign(samples, centroids), box20, policy, rng)
	require.NoError(t, err)
	assert.Zero(t, centroids[1].IdleTicks)
	assert.False(t, centroids[1].Parked)
	assert.Equal(t, Point{X: 950, Y: 530}, centroids[1].Position)
}

func TestUpdate_Invariants(t *testing.T) {
	samples := samplesAt(Point{0, 0}, Point{1, 1})
	centroids := centroidsAt(Point{0, 0})

	_, err := Update(samples, centroids, []int{0}, box20, DefaultIdlePolicy(), NewRandom(1))
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = Update(samples, centroids, []int{0, 1}, box20, DefaultIdlePolicy(), NewRandom(1))
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = Update(samples, centroids, []int{0, -1}, box20, DefaultIdlePolicy(), NewRandom(1))
	assert.ErrorIs(t, err, ErrInvariant)
}

func TestGenerateCentroids(t *testing.T) {
	_, err := GenerateCentroids(0, box20, NewRandom(1))
	assert.ErrorIs(t, err, ErrNoCentroids)

	centroids, err := GenerateCentroids(13, box20, NewRandom(1))
	require.NoError(t, err)
	assert.Len(t, centroids, 13)
	for _, c := range centroids {
		assert.True(t, box20.Contains(c.Position))
		assert.Zero(t, c.IdleTicks)
		assert.False(t, c.Parked)
	}
}

func TestGenerateSamples(t *testing.T) {
	assert.Empty(t, GenerateSamples(0, Distribution{}, box20, NewRandom(1)))

	domain := Domain{Width: 800, Height: 600}
	uniform := GenerateSamples(1000, Distribution{Kind: Uniform}, domain, NewRandom(2))
	require.Len(t, uniform, 1000)
	for _, s := range uniform {
		assert.True(t, domain.Contains(s.Position))
	}

	center := Point{X: 100, Y: -50}
	dist := Distribution{Kind: Cluster, Center: center, Radius: 80}
	clustered := GenerateSamples(1000, dist, domain, NewRandom(3))
	require.Len(t, clustered, 1000)
	for _, s := range clustered {
		assert.True(t, domain.Contains(s.Position))
		assert.Less(t, s.Position.Dist(center), float32(80.001))
	}
}

func TestGenerateSamples_ClusterOverhangIsRedrawn(t *testing.T) {
	center := Point{X: 8, Y: 8}
	dist := Distribution{Kind: Cluster, Center: center, Radius: 10}
	for _, s := range GenerateSamples(2000, dist, box20, NewRandom(4)) {
		require.True(t, box20.Contains(s.Position))
		assert.Less(t, s.Position.Dist(center), float32(10.001))
		// Clamping would pile samples up on the edges.
		assert.NotEqual(t, float32(10), s.Position.X)
		assert.NotEqual(t, float32(10), s.Position.Y)
	}
}

func TestGenerateSamples_ClusterDiscOutsideDomainIsClamped(t *testing.T) {
	dist := Distribution{Kind: Cluster, Center: Point{X: 100, Y: 100}, Radius: 5}
	for _, s := range GenerateSamples(20, dist, box20, NewRandom(5)) {
		assert.True(t, box20.Contains(s.Position))
	}
}

func TestGenerateSamples_ClusterIsCenterBiased(t *testing.T) {
	// A uniform radial fraction puts half the samples inside R/2. An
	// area-uniform disc would put a quarter there.
	const radius = 100
	dist := Distribution{Kind: Cluster, Radius: radius}
	samples := GenerateSamples(4000, dist, Domain{Width: 800, Height: 600}, NewRandom(6))

	inner := 0
	for _, s := range samples {
		if s.Position.Dist(Point{}) < radius/2 {
			inner++
		}
	}
	assert.InDelta(t, 0.5, float64(inner)/float64(len(samples)), 0.05)
}

func TestGenerateSamples_Reproducible(t *testing.T) {
	a := GenerateSamples(50, Distribution{Kind: Uniform}, box20, NewRandom(99))
	b := GenerateSamples(50, Distribution{Kind: Uniform}, box20, NewRandom(99))
	assert.Equal(t, a, b)
}

func TestDiagnose(t *testing.T) {
	samples := samplesAt(Point{-6, 0}, Point{-4, 0}, Point{4, 0}, Point{6, 0})
	centroids := centroidsAt(Point{-5, 0}, Point{5, 0}, Point{960, 540})
	centroids[2].Parked = true
	assignments := []int{0, 0, 1, 1}

	d := Diagnose(samples, centroids, assignments, []int{2, 2, 0})
	assert.InDelta(t, 4.0, d.Inertia, 1e-9)
	assert.InDelta(t, 4.0/3.0, d.MeanClusterSize, 1e-9)
	assert.Equal(t, 1, d.Empty)
	assert.Equal(t, 1, d.Parked)
	assert.Positive(t, d.ClusterSizeStdDev)
}
