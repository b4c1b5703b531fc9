package input

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"kclass/internal/monitoring"
	"kclass/internal/sim"
)

// Lines turns line-oriented text (a terminal, a pipe) into events.
// "r" resets, "q", "quit", "esc" and end of input exit. Each line queues
// one event and Poll hands them out one at a time, in order.
type Lines struct {
	mu      sync.Mutex
	pending []sim.Events
	done    chan struct{}
}

// NewLines starts reading r. Reading stops at EOF or when ctx is done.
func NewLines(ctx context.Context, r io.Reader) *Lines {
	l := &Lines{done: make(chan struct{})}
	go l.read(ctx, r)
	return l
}

func (l *Lines) read(ctx context.Context, r io.Reader) {
	defer close(l.done)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "r", "reset":
			l.raise(sim.Events{Reset: true})
		case "q", "quit", "exit", "esc":
			l.raise(sim.Events{Exit: true})
			return
		case "":
		default:
			monitoring.Logf("unknown command %q (use r to reset, q to quit)", scanner.Text())
		}
	}
	if err := scanner.Err(); err != nil {
		monitoring.Logf("Error reading input: %v", err)
	}
	l.raise(sim.Events{Exit: true})
}

func (l *Lines) raise(ev sim.Events) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, ev)
}

// Poll implements sim.InputSource.
func (l *Lines) Poll() sim.Events {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return sim.Events{}
	}
	ev := l.pending[0]
	l.pending = l.pending[1:]
	return ev
}

// Done is closed once the reader goroutine has stopped.
func (l *Lines) Done() <-chan struct{} {
	return l.done
}

// Context raises a single exit event once ctx is done.
type Context struct {
	ctx  context.Context
	sent bool
}

// NewContext returns a source that exits when ctx is cancelled.
func NewContext(ctx context.Context) *Context {
	return &Context{ctx: ctx}
}

// Poll implements sim.InputSource.
func (c *Context) Poll() sim.Events {
	if c.sent || c.ctx.Err() == nil {
		return sim.Events{}
	}
	c.sent = true
	return sim.Events{Exit: true}
}
