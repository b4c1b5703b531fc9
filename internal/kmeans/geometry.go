package kmeans

import "math"

// Point is a position in simulation space.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) Dist(q Point) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}

// Domain is the box [-Width/2, Width/2] x [-Height/2, Height/2] that every
// generated position lies in.
type Domain struct {
	Width  float32
	Height float32
}

// Contains reports whether p lies inside the domain box (edges included).
func (d Domain) Contains(p Point) bool {
	hw, hh := d.Width/2, d.Height/2
	return p.X >= -hw && p.X <= hw && p.Y >= -hh && p.Y <= hh
}

// Clamp moves p onto the nearest point of the domain box.
func (d Domain) Clamp(p Point) Point {
	hw, hh := d.Width/2, d.Height/2
	return Point{
		X: min(max(p.X, -hw), hw),
		Y: min(max(p.Y, -hh), hh),
	}
}
