package render

import (
	"encoding/json"
	"fmt"
	"io"

	"kclass/internal/sim"
)

type EntityRecord struct {
	Index int     `json:"i"`
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Color *int    `json:"c,omitempty"`
}

// FrameRecord is the JSON line written for each tick.
type FrameRecord struct {
	Tick      uint64         `json:"tick"`
	Samples   []EntityRecord `json:"samples"`
	Centroids []EntityRecord `json:"centroids"`
}

// JSONSink writes one FrameRecord per tick as a JSON line.
type JSONSink struct {
	enc   *json.Encoder
	frame FrameRecord
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Begin(tick uint64) {
	s.frame = FrameRecord{Tick: tick, Samples: []EntityRecord{}, Centroids: []EntityRecord{}}
}

func (s *JSONSink) Publish(u sim.Update) {
	rec := EntityRecord{Index: u.Index, X: u.Position.X, Y: u.Position.Y, Color: u.Color}
	if u.Kind == sim.CentroidEntity {
		s.frame.Centroids = append(s.frame.Centroids, rec)
	} else {
		s.frame.Samples = append(s.frame.Samples, rec)
	}
}

func (s *JSONSink) End() error {
	if err := s.enc.Encode(s.frame); err != nil {
		return fmt.Errorf("error encoding tick %d: %w", s.frame.Tick, err)
	}
	return nil
}
