package metrics

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestEventSinkNotify(t *testing.T) {
	ParentChangesTotal.Reset()
	DAOFailuresTotal.Reset()

	before := testutil.ToFloat64(RouteLoopsTotal)

	var forwarded []rplcore.Event
	sink := EventSink{Next: recorderSink(func(e rplcore.Event) {
		forwarded = append(forwarded, e)
	})}

	sink.Notify(rplcore.Event{Kind: rplcore.EventRouteLoop})
	sink.Notify(rplcore.Event{Kind: rplcore.EventParentChanged, Instance: 1})
	sink.Notify(rplcore.Event{Kind: rplcore.EventParentChanged, Instance: 1})
	sink.Notify(rplcore.Event{Kind: rplcore.EventDAOTrigger, Instance: 2})

	if v := testutil.ToFloat64(RouteLoopsTotal); v != before+1 {
		t.Errorf("expected route loop counter to increment by 1, got %f (was %f)", v, before)
	}

	if v := testutil.ToFloat64(ParentChangesTotal.WithLabelValues("1")); v != 2 {
		t.Errorf("expected 2 parent changes for instance 1, got %f", v)
	}

	if v := testutil.ToFloat64(DAOFailuresTotal.WithLabelValues("2")); v != 1 {
		t.Errorf("expected 1 DAO failure for instance 2, got %f", v)
	}

	if len(forwarded) != 4 {
		t.Errorf("expected every event forwarded to Next, got %d", len(forwarded))
	}
}

func TestRegister(t *testing.T) {
	registry := prometheus.NewRegistry()

	Register(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when registering metrics twice")
		}
	}()
	Register(registry)
}

type recorderSink func(rplcore.Event)

func (f recorderSink) Notify(e rplcore.Event) { f(e) }
