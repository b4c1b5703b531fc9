package render

import (
	"errors"

	"kclass/internal/sim"
)

// Multi fans every update out to several sinks.
type Multi []sim.RenderSink

func (m Multi) Begin(tick uint64) {
	for _, s := range m {
		s.Begin(tick)
	}
}

func (m Multi) Publish(u sim.Update) {
	for _, s := range m {
		s.Publish(u)
	}
}

// End ends every sink and joins their errors.
func (m Multi) End() error {
	var errs []error
	for _, s := range m {
		if err := s.End(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
