package render

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kclass/internal/kmeans"
	"kclass/internal/palette"
	"kclass/internal/sim"
)

var box20 = kmeans.Domain{Width: 20, Height: 20}

func intp(v int) *int { return &v }

func publishFixture(s sim.RenderSink, tick uint64) {
	s.Begin(tick)
	s.Publish(sim.Update{Kind: sim.SampleEntity, Index: 0, Position: kmeans.Point{X: 0, Y: 0}, Color: intp(1)})
	s.Publish(sim.Update{Kind: sim.SampleEntity, Index: 1, Position: kmeans.Point{X: -5, Y: -5}})
	s.Publish(sim.Update{Kind: sim.CentroidEntity, Index: 0, Position: kmeans.Point{X: 5, Y: 5}, Color: intp(0)})
	s.Publish(sim.Update{Kind: sim.CentroidEntity, Index: 1, Position: kmeans.Point{X: 960, Y: 540}, Color: intp(1)})
}

func TestRaster_ToPixel(t *testing.T) {
	r := NewRaster(20, 20, box20, palette.Default(2))

	x, y, ok := r.ToPixel(kmeans.Point{X: 0, Y: 0})
	assert.True(t, ok)
	assert.Equal(t, 10, x)
	assert.Equal(t, 10, y)

	x, y, ok = r.ToPixel(kmeans.Point{X: 5, Y: 5})
	assert.True(t, ok)
	assert.Equal(t, 15, x)
	assert.Equal(t, 5, y)

	_, _, ok = r.ToPixel(kmeans.Point{X: 960, Y: 540})
	assert.False(t, ok)
	_, _, ok = r.ToPixel(kmeans.Point{X: -10.5, Y: 0})
	assert.False(t, ok)
}

func TestRaster_Draw(t *testing.T) {
	pal := palette.Default(2)
	r := NewRaster(20, 20, box20, pal)
	publishFixture(r, 1)
	require.NoError(t, r.End())

	img := r.Image()
	assert.Equal(t, pal.Color(1), img.RGBAAt(10, 10), "assigned sample")
	assert.Equal(t, pal.Neutral(), img.RGBAAt(5, 15), "neutral sample")
	assert.Equal(t, pal.Color(0), img.RGBAAt(15, 5), "centroid")
	assert.Equal(t, pal.Background(), img.RGBAAt(0, 0))
	assert.Equal(t, uint64(1), r.Tick())

	buf := r.RGB24(nil)
	require.Len(t, buf, 20*20*3)
	idx := (10*20 + 10) * 3
	c := pal.Color(1)
	assert.Equal(t, []byte{c.R, c.G, c.B}, buf[idx:idx+3])
}

func TestPNGSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	s, err := NewPNGSink(dir, 2, NewRaster(20, 20, box20, palette.Default(2)))
	require.NoError(t, err)

	for tick := uint64(1); tick <= 4; tick++ {
		publishFixture(s, tick)
		require.NoError(t, s.End())
	}
	assert.Equal(t, 2, s.Saved())
	assert.FileExists(t, filepath.Join(dir, "frame_000002.png"))
	assert.FileExists(t, filepath.Join(dir, "frame_000004.png"))
	assert.NoFileExists(t, filepath.Join(dir, "frame_000003.png"))
}

type captureFrames struct {
	frames [][]byte
	err    error
}

func (c *captureFrames) WriteFrame(frame []byte) error {
	c.frames = append(c.frames, append([]byte(nil), frame...))
	return c.err
}

func TestVideoSink(t *testing.T) {
	out := &captureFrames{}
	s := NewVideoSink(NewRaster(8, 6, box20, palette.Default(2)), out)
	publishFixture(s, 1)
	require.NoError(t, s.End())
	publishFixture(s, 2)
	require.NoError(t, s.End())

	require.Len(t, out.frames, 2)
	assert.Len(t, out.frames[0], 8*6*3)

	out.err = errors.New("pipe closed")
	publishFixture(s, 3)
	assert.Error(t, s.End())
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)
	publishFixture(s, 7)
	require.NoError(t, s.End())
	publishFixture(s, 8)
	require.NoError(t, s.End())

	sc := bufio.NewScanner(&buf)
	var frames []FrameRecord
	for sc.Scan() {
		var f FrameRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &f))
		frames = append(frames, f)
	}
	require.Len(t, frames, 2)
	assert.Equal(t, uint64(7), frames[0].Tick)
	require.Len(t, frames[0].Samples, 2)
	require.Len(t, frames[0].Centroids, 2)
	assert.Equal(t, 1, *frames[0].Samples[0].Color)
	assert.Nil(t, frames[0].Samples[1].Color)
	assert.Equal(t, float32(960), frames[0].Centroids[1].X)
}

type failingSink struct{ sim.RenderSink }

func (failingSink) End() error { return errors.New("failed") }

func TestMulti(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaster(20, 20, box20, palette.Default(2))
	m := Multi{r, NewJSONSink(&buf)}
	publishFixture(m, 3)
	require.NoError(t, m.End())
	assert.Equal(t, uint64(3), r.Tick())
	assert.NotZero(t, buf.Len())

	m = Multi{r, failingSink{RenderSink: r}}
	publishFixture(m, 4)
	assert.Error(t, m.End())
}

func TestPlotSink(t *testing.T) {
	dir := t.TempDir()
	s, err := NewPlotSink(dir, 2, box20, palette.Default(2))
	require.NoError(t, err)

	publishFixture(s, 1)
	require.NoError(t, s.End())
	assert.Empty(t, s.Saved())

	publishFixture(s, 2)
	require.NoError(t, s.End())
	saved := s.Saved()
	require.Len(t, saved, 1)
	info, err := os.Stat(saved[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
