package sim

import (
	"fmt"

	"kclass/internal/kmeans"
)

// EntityKind tells a render sink what an Update refers to.
type EntityKind int

const (
	SampleEntity EntityKind = iota
	CentroidEntity
)

func (k EntityKind) String() string {
	switch k {
	case SampleEntity:
		return "sample"
	case CentroidEntity:
		return "centroid"
	default:
		return fmt.Sprintf("EntityKind(%d)", int(k))
	}
}

// Update is one entity's published state for a tick.
type Update struct {
	Kind     EntityKind
	Index    int
	Position kmeans.Point
	// Color is a palette key (a centroid index). nil means the neutral
	// sample color.
	Color *int
}

// RenderSink receives every entity once per tick between Begin and End.
type RenderSink interface {
	Begin(tick uint64)
	Publish(u Update)
	End() error
}

// Events are the edge-triggered inputs seen by one poll.
type Events struct {
	Reset bool
	Exit  bool
}

// InputSource is polled once at the start of every tick. Delivered events
// are not delivered again.
type InputSource interface {
	Poll() Events
}

type nopSink struct{}

func (nopSink) Begin(uint64)   {}
func (nopSink) Publish(Update) {}
func (nopSink) End() error     { return nil }

type nopInput struct{}

func (nopInput) Poll() Events { return Events{} }
