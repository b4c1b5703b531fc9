package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"kclass/internal/kmeans"
	"kclass/internal/palette"
	"kclass/internal/sim"
)

// PlotSink renders a scatter plot of every n-th tick with gonum/plot.
// Samples are grouped by color key, so each cluster is its own series.
type PlotSink struct {
	dir     string
	every   uint64
	domain  kmeans.Domain
	palette *palette.Palette
	width   vg.Length
	height  vg.Length

	tick      uint64
	clusters  map[int]plotter.XYs
	neutral   plotter.XYs
	centroids map[int]plotter.XY
	saved     []string
}

// NewPlotSink writes plot_NNNNNN.png files to dir every n ticks.
func NewPlotSink(dir string, every uint64, domain kmeans.Domain, pal *palette.Palette) (*PlotSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &PlotSink{
		dir:     dir,
		every:   max(every, 1),
		domain:  domain,
		palette: pal,
		width:   8 * vg.Inch,
		height:  6 * vg.Inch,
	}, nil
}

func (s *PlotSink) Begin(tick uint64) {
	s.tick = tick
	s.clusters = make(map[int]plotter.XYs)
	s.neutral = s.neutral[:0]
	s.centroids = make(map[int]plotter.XY)
}

func (s *PlotSink) Publish(u sim.Update) {
	if s.tick%s.every != 0 {
		return
	}
	xy := plotter.XY{X: float64(u.Position.X), Y: float64(u.Position.Y)}
	switch {
	case u.Kind == sim.CentroidEntity:
		s.centroids[u.Index] = xy
	case u.Color == nil:
		s.neutral = append(s.neutral, xy)
	default:
		s.clusters[*u.Color] = append(s.clusters[*u.Color], xy)
	}
}

func (s *PlotSink) End() error {
	if s.tick%s.every != 0 {
		return nil
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("k-means tick %d", s.tick)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.BackgroundColor = s.palette.Background()
	p.X.Min, p.X.Max = -float64(s.domain.Width)/2, float64(s.domain.Width)/2
	p.Y.Min, p.Y.Max = -float64(s.domain.Height)/2, float64(s.domain.Height)/2

	if len(s.neutral) > 0 {
		if err := addScatter(p, s.neutral, s.palette.Neutral(), vg.Points(1.5), draw.CircleGlyph{}); err != nil {
			return err
		}
	}
	for key, pts := range s.clusters {
		if err := addScatter(p, pts, s.palette.Color(key), vg.Points(1.5), draw.CircleGlyph{}); err != nil {
			return err
		}
	}
	for idx, xy := range s.centroids {
		// Parked centroids lie outside the axes and are left out.
		if !s.domain.Contains(kmeans.Point{X: float32(xy.X), Y: float32(xy.Y)}) {
			continue
		}
		if err := addScatter(p, plotter.XYs{xy}, s.palette.Color(idx), vg.Points(5), draw.CrossGlyph{}); err != nil {
			return err
		}
	}

	file := filepath.Join(s.dir, fmt.Sprintf("plot_%06d.png", s.tick))
	if err := p.Save(s.width, s.height, file); err != nil {
		return fmt.Errorf("failed to save %s: %w", file, err)
	}
	s.saved = append(s.saved, file)
	return nil
}

func (s *PlotSink) Saved() []string {
	return append([]string(nil), s.saved...)
}

func addScatter(p *plot.Plot, pts plotter.XYs, c color.Color, radius vg.Length, shape draw.GlyphDrawer) error {
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = radius
	sc.GlyphStyle.Shape = shape
	p.Add(sc)
	return nil
}
