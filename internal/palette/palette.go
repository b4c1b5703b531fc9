package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// baseHex is the fixed color order used for the first clusters.
var baseHex = []string{
	"#0000ff", // blue
	"#ff1493", // pink
	"#ffff00", // yellow
	"#00ff00", // green
	"#808080", // gray
	"#800080", // purple
	"#f0f8ff", // alice blue
	"#ff00ff", // fuchsia
	"#800000", // maroon
	"#00ffff", // cyan
	"#ee82ee", // violet
	"#ff0000", // red
	"#faebd7", // antique white
}

const (
	neutralHex    = "#9acd32" // yellow green
	backgroundHex = "#030033"
)

// Palette maps centroid indices to display colors.
type Palette struct {
	colors     []colorful.Color
	neutral    colorful.Color
	background colorful.Color
}

// Default returns a palette with at least k colors. The first colors are the
// fixed base set. Additional colors are spaced evenly in HCL hue.
func Default(k int) *Palette {
	p := &Palette{
		neutral:    mustHex(neutralHex),
		background: mustHex(backgroundHex),
	}
	for _, h := range baseHex {
		p.colors = append(p.colors, mustHex(h))
	}
	if extra := k - len(p.colors); extra > 0 {
		for i := 0; i < extra; i++ {
			hue := 360.0 * float64(i) / float64(extra)
			p.colors = append(p.colors, colorful.Hcl(hue, 0.6, 0.65).Clamped())
		}
	}
	return p
}

// New builds a palette from hex strings such as "#ff8800".
func New(hexColors []string, neutral string) (*Palette, error) {
	if len(hexColors) == 0 {
		return nil, fmt.Errorf("palette needs at least one color")
	}
	p := &Palette{background: mustHex(backgroundHex)}
	for _, h := range hexColors {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("error parsing palette color %q: %w", h, err)
		}
		p.colors = append(p.colors, c)
	}
	n, err := colorful.Hex(neutral)
	if err != nil {
		return nil, fmt.Errorf("error parsing neutral color %q: %w", neutral, err)
	}
	p.neutral = n
	return p, nil
}

// Resolve builds the palette for k clusters from a comma separated hex list
// and a neutral hex color. Either may be empty to keep the default.
func Resolve(hexList, neutral string, k int) (*Palette, error) {
	def := Default(k)
	if hexList == "" && neutral == "" {
		return def, nil
	}
	var colors []string
	if hexList == "" {
		for i := 0; i < def.Len(); i++ {
			colors = append(colors, def.Hex(i))
		}
	} else {
		for _, h := range strings.Split(hexList, ",") {
			colors = append(colors, strings.TrimSpace(h))
		}
	}
	if neutral == "" {
		neutral = neutralHex
	}
	return New(colors, neutral)
}

// Len returns the number of distinct cluster colors.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Color returns the color for centroid index i. Indices past the end wrap.
func (p *Palette) Color(i int) color.RGBA {
	if i < 0 {
		return toRGBA(p.neutral)
	}
	return toRGBA(p.colors[i%len(p.colors)])
}

// Key resolves an optional color key: nil means the neutral sample color.
func (p *Palette) Key(key *int) color.RGBA {
	if key == nil {
		return p.Neutral()
	}
	return p.Color(*key)
}

// Neutral is the color of samples that have not been assigned yet.
func (p *Palette) Neutral() color.RGBA {
	return toRGBA(p.neutral)
}

// Background is the clear color behind all entities.
func (p *Palette) Background() color.RGBA {
	return toRGBA(p.background)
}

// Hex returns the hex form of the color for index i.
func (p *Palette) Hex(i int) string {
	if i < 0 {
		return p.neutral.Hex()
	}
	return p.colors[i%len(p.colors)].Hex()
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
