package render

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink saves every n-th raster frame as frame_NNNNNN.png in a directory.
type PNGSink struct {
	*Raster
	dir   string
	every uint64
	saved int
}

// NewPNGSink creates dir if needed. every <= 1 saves every frame.
func NewPNGSink(dir string, every uint64, raster *Raster) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}
	return &PNGSink{Raster: raster, dir: dir, every: max(every, 1)}, nil
}

// End draws the frame and writes it when the tick is due.
func (s *PNGSink) End() error {
	if err := s.Raster.End(); err != nil {
		return err
	}
	if s.Tick()%s.every != 0 {
		return nil
	}
	return s.save()
}

func (s *PNGSink) save() error {
	name := fmt.Sprintf("frame_%06d.png", s.Tick())
	file, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("error creating image file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, s.Image()); err != nil {
		return fmt.Errorf("error encoding %s: %w", name, err)
	}
	s.saved++
	return nil
}

// Saved returns how many frames were written.
func (s *PNGSink) Saved() int {
	return s.saved
}
