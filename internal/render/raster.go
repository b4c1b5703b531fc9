package render

import (
	"image"
	"image/color"
	"image/draw"

	"kclass/internal/kmeans"
	"kclass/internal/palette"
	"kclass/internal/sim"
)

const (
	sampleSize   = 3
	centroidSize = 9
)

// Raster draws each published tick into an RGBA image covering the domain.
type Raster struct {
	width   int
	height  int
	domain  kmeans.Domain
	palette *palette.Palette

	tick    uint64
	updates []sim.Update
	img     *image.RGBA
}

// NewRaster creates a width x height pixel raster over domain.
func NewRaster(width, height int, domain kmeans.Domain, pal *palette.Palette) *Raster {
	return &Raster{
		width:   width,
		height:  height,
		domain:  domain,
		palette: pal,
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

func (r *Raster) Begin(tick uint64) {
	r.tick = tick
	r.updates = r.updates[:0]
}

func (r *Raster) Publish(u sim.Update) {
	r.updates = append(r.updates, u)
}

// End implements sim.RenderSink by drawing the buffered tick.
func (r *Raster) End() error {
	r.draw()
	return nil
}

func (r *Raster) draw() {
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{C: r.palette.Background()}, image.Point{}, draw.Src)

	// Centroids are drawn last so they stay visible over their samples.
	for _, kind := range []sim.EntityKind{sim.SampleEntity, sim.CentroidEntity} {
		size := sampleSize
		if kind == sim.CentroidEntity {
			size = centroidSize
		}
		for _, u := range r.updates {
			if u.Kind != kind {
				continue
			}
			x, y, ok := r.ToPixel(u.Position)
			if !ok {
				continue
			}
			r.square(x, y, size, r.palette.Key(u.Color))
		}
	}
}

func (r *Raster) square(cx, cy, size int, c color.RGBA) {
	half := size / 2
	rect := image.Rect(cx-half, cy-half, cx-half+size, cy-half+size).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// ToPixel maps a domain position to raster coordinates, with y pointing
// down. ok is false for positions outside the image, such as a parked
// centroid.
func (r *Raster) ToPixel(p kmeans.Point) (x, y int, ok bool) {
	fx := (float64(p.X) + float64(r.domain.Width)/2) / float64(r.domain.Width) * float64(r.width)
	fy := (float64(r.domain.Height)/2 - float64(p.Y)) / float64(r.domain.Height) * float64(r.height)
	x, y = int(fx), int(fy)
	if fx < 0 || fy < 0 || x >= r.width || y >= r.height {
		return x, y, false
	}
	return x, y, true
}

func (r *Raster) Tick() uint64 {
	return r.tick
}

// Image returns the current frame. It is overwritten by the next End.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

// RGB24 copies the frame into buf as packed rgb24, growing buf if needed.
func (r *Raster) RGB24(buf []byte) []byte {
	need := r.width * r.height * 3
	if cap(buf) < need {
		buf = make([]byte, need)
	}
	buf = buf[:need]
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			src := r.img.PixOffset(x, y)
			idx := (y*r.width + x) * 3
			buf[idx] = r.img.Pix[src]
			buf[idx+1] = r.img.Pix[src+1]
			buf[idx+2] = r.img.Pix[src+2]
		}
	}
	return buf
}
