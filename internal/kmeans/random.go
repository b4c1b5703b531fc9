package kmeans

import "math/rand/v2"

// Random is the uniform source used for generation and reseeding.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	// Float32 returns a value in [0, 1).
	Float32() float32
}

// NewRandom returns a reproducible PCG-backed source for seed.
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniformIn draws a point uniformly from the domain box.
func uniformIn(d Domain, rng Random) Point {
	return d.Clamp(Point{
		X: (rng.Float32() - 0.5) * d.Width,
		Y: (rng.Float32() - 0.5) * d.Height,
	})
}
