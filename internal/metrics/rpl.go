// Package metrics exposes Prometheus counters for the events an
// [rplcore.Domain] raises, and an [rplcore.EventSink] that drives them.
package metrics

import (
	"strconv"

	"github.com/lowpan/rplcore"
	"github.com/prometheus/client_golang/prometheus"
)

// RouteLoopsTotal counts packets dropped for a detected routing loop: a
// source-routing loop (spec.md Scenario C) or a repeated hop-by-hop rank
// error.
var RouteLoopsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "rpl_route_loops_total",
	Help: "Total number of routing loops (source-routing or hop-by-hop rank error) detected and dropped.",
})

// LocalRepairStartsTotal counts transitions into local repair.
var LocalRepairStartsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "rpl_local_repair_starts_total",
	Help: "Total number of times an Instance entered local repair.",
})

// LocalRepairNoMoreDISTotal counts exhaustion of the repair DIS budget.
var LocalRepairNoMoreDISTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "rpl_local_repair_no_more_dis_total",
	Help: "Total number of times an Instance exhausted its repair DIS budget.",
})

// ParentChangesTotal counts preferred-parent changes, by Instance ID.
var ParentChangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "rpl_parent_changes_total",
	Help: "Total number of preferred-parent changes, by instance.",
}, []string{"instance"})

// DAOFailuresTotal counts DAO retry-budget exhaustion, by Instance ID.
var DAOFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "rpl_dao_failures_total",
	Help: "Total number of DAO transmissions that exhausted their retry budget.",
}, []string{"instance"})

// TargetsDisconnectedTotal counts DAO targets that lost a valid source
// route.
var TargetsDisconnectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "rpl_targets_disconnected_total",
	Help: "Total number of DAO targets that lost a valid source route.",
})

// Register registers every RPL metric with registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		RouteLoopsTotal,
		LocalRepairStartsTotal,
		LocalRepairNoMoreDISTotal,
		ParentChangesTotal,
		DAOFailuresTotal,
		TargetsDisconnectedTotal,
	)
}

// EventSink is an [rplcore.EventSink] that drives the package's counters
// from a Domain's event stream, then forwards to an optional next sink
// (e.g. a log-based one) so metrics collection never replaces observability
// the caller already has wired up.
type EventSink struct {
	Next rplcore.EventSink
}

var _ rplcore.EventSink = EventSink{}

// Notify implements the [rplcore.EventSink] interface for EventSink.
func (s EventSink) Notify(e rplcore.Event) {
	switch e.Kind {
	case rplcore.EventRouteLoop:
		RouteLoopsTotal.Inc()
	case rplcore.EventLocalRepairStart:
		LocalRepairStartsTotal.Inc()
	case rplcore.EventLocalRepairNoMoreDIS:
		LocalRepairNoMoreDISTotal.Inc()
	case rplcore.EventParentChanged:
		ParentChangesTotal.WithLabelValues(instanceLabel(e.Instance)).Inc()
	case rplcore.EventDAOTrigger:
		DAOFailuresTotal.WithLabelValues(instanceLabel(e.Instance)).Inc()
	case rplcore.EventTargetDisconnected:
		TargetsDisconnectedTotal.Inc()
	}

	if s.Next != nil {
		s.Next.Notify(e)
	}
}

func instanceLabel(id rplcore.InstanceID) string {
	return strconv.Itoa(int(id))
}
