// Package history keeps a bounded, in-memory log of recent [rplcore.Event]s,
// the same role internal/querylog's ring buffer plays for DNS queries: a
// fixed-size window a diagnostics endpoint can dump without unbounded
// memory growth.
package history

import (
	"github.com/lowpan/rplcore"
	"github.com/lowpan/rplcore/internal/aghalg"
)

// DefaultSize is the number of events kept when a harness doesn't configure
// one explicitly.
const DefaultSize = 256

// Log is an [rplcore.EventSink] that retains the most recent events in a
// ring buffer and forwards every event to Next unchanged.
type Log struct {
	Next rplcore.EventSink

	buf *aghalg.RingBuffer[rplcore.Event]
}

// New returns a Log retaining the last size events. size must be greater
// than zero; callers wanting the default window should use [DefaultSize].
func New(size uint) (l *Log) {
	return &Log{buf: aghalg.NewRingBuffer[rplcore.Event](size)}
}

var _ rplcore.EventSink = (*Log)(nil)

// Notify implements the [rplcore.EventSink] interface for *Log.
func (l *Log) Notify(e rplcore.Event) {
	l.buf.Append(e)

	if l.Next != nil {
		l.Next.Notify(e)
	}
}

// Recent returns the retained events, oldest first.
func (l *Log) Recent() (events []rplcore.Event) {
	events = make([]rplcore.Event, 0, l.buf.Len())
	l.buf.Range(func(e rplcore.Event) bool {
		events = append(events, e)
		return true
	})

	return events
}
