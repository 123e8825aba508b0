package rplcore

import "github.com/google/uuid"

// EventKind enumerates the event callbacks the core emits towards the
// transport (spec.md §6).
type EventKind uint8

// EventKind values.
const (
	EventLocalRepairStart EventKind = iota
	EventLocalRepairNoMoreDIS
	EventParentChanged
	EventDAOTrigger
	EventTargetDisconnected
	EventRouteLoop
	EventAddressRegistrationDue
)

// String implements fmt.Stringer for EventKind.
func (k EventKind) String() string {
	switch k {
	case EventLocalRepairStart:
		return "LOCAL_REPAIR_START"
	case EventLocalRepairNoMoreDIS:
		return "LOCAL_REPAIR_NO_MORE_DIS"
	case EventParentChanged:
		return "PARENT_CHANGED"
	case EventDAOTrigger:
		return "DAO_TRIGGER"
	case EventTargetDisconnected:
		return "TARGET_DISCONNECTED"
	case EventRouteLoop:
		return "ROUTELOOP"
	case EventAddressRegistrationDue:
		return "ADDRESS_REGISTRATION_DUE"
	default:
		return "UNKNOWN"
	}
}

// Event is a single occurrence reported to an [EventSink]. Episode
// correlates the events of one logical repair or DAO-trigger episode so a
// transport-side observer can join them without re-deriving the
// relationship from timing alone.
type Event struct {
	Kind     EventKind
	Instance InstanceID
	Dodag    DodagID
	Episode  uuid.UUID
}

// EventSink receives the core's event callbacks (spec.md §6).
type EventSink interface {
	Notify(e Event)
}

// NopEventSink discards every event; it is the default when a Domain is
// constructed without an explicit sink.
type NopEventSink struct{}

// Notify implements the [EventSink] interface for NopEventSink.
func (NopEventSink) Notify(Event) {}

// newEpisode allocates a fresh correlation id for a repair or DAO-trigger
// episode.
func newEpisode() uuid.UUID { return uuid.New() }
