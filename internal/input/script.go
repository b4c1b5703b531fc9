package input

import "kclass/internal/sim"

// Script replays a fixed event per poll, then reports nothing.
type Script struct {
	events []sim.Events
	polls  int
}

// NewScript returns a source that yields events[i] on the i-th poll.
func NewScript(events ...sim.Events) *Script {
	return &Script{events: events}
}

func (s *Script) Poll() sim.Events {
	i := s.polls
	s.polls++
	if i < len(s.events) {
		return s.events[i]
	}
	return sim.Events{}
}

// Schedule raises a reset every ResetEvery polls and an exit on poll
// ExitAfter. Zero disables either one.
type Schedule struct {
	ResetEvery int
	ExitAfter  int
	polls      int
}

func (s *Schedule) Poll() sim.Events {
	s.polls++
	var ev sim.Events
	if s.ResetEvery > 0 && s.polls%s.ResetEvery == 0 {
		ev.Reset = true
	}
	if s.ExitAfter > 0 && s.polls >= s.ExitAfter {
		ev.Exit = true
	}
	return ev
}

// Multi merges several sources. Every source is polled on each call. An
// exit that arrives together with a reset is held back for the next poll.
type Multi struct {
	sources     []sim.InputSource
	pendingExit bool
}

func NewMulti(sources ...sim.InputSource) *Multi {
	return &Multi{sources: sources}
}

func (m *Multi) Add(src sim.InputSource) {
	m.sources = append(m.sources, src)
}

func (m *Multi) Poll() sim.Events {
	ev := sim.Events{Exit: m.pendingExit}
	m.pendingExit = false
	for _, src := range m.sources {
		e := src.Poll()
		ev.Reset = ev.Reset || e.Reset
		ev.Exit = ev.Exit || e.Exit
	}
	if ev.Reset && ev.Exit {
		m.pendingExit = true
		ev.Exit = false
	}
	return ev
}
