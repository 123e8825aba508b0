package history_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/lowpan/rplcore/internal/history"
	"github.com/stretchr/testify/assert"
)

func TestLogRecent(t *testing.T) {
	l := history.New(2)

	var forwarded []rplcore.Event
	l.Next = recorderSink(func(e rplcore.Event) { forwarded = append(forwarded, e) })

	l.Notify(rplcore.Event{Kind: rplcore.EventParentChanged, Instance: 1})
	l.Notify(rplcore.Event{Kind: rplcore.EventDAOTrigger, Instance: 2})
	l.Notify(rplcore.Event{Kind: rplcore.EventRouteLoop, Instance: 3})

	got := l.Recent()
	assert.Len(t, got, 2)
	assert.Equal(t, rplcore.EventDAOTrigger, got[0].Kind)
	assert.Equal(t, rplcore.EventRouteLoop, got[1].Kind)

	assert.Len(t, forwarded, 3, "every event must still reach Next")
}

type recorderSink func(rplcore.Event)

func (f recorderSink) Notify(e rplcore.Event) { f(e) }
