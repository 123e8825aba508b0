package rplcore

import "github.com/AdguardTeam/golibs/errors"

// Error taxonomy (spec.md §7). Every fallible entry point returns one of
// these, wrapped with context via fmt.Errorf("%w") or errors.Annotate.
const (
	// ErrOutOfMemory is returned when an allocator-backed adapter returns
	// null; the triggering operation aborts atomically and the caller may
	// retry.
	ErrOutOfMemory errors.Error = "rplcore: out of memory"

	// ErrBadParameter is returned when a caller-visible precondition is
	// violated, e.g. an unknown instance or an invalid policy combination.
	ErrBadParameter errors.Error = "rplcore: bad parameter"

	// ErrNotFound is returned on a lookup miss for an instance, DODAG, or
	// target.
	ErrNotFound errors.Error = "rplcore: not found"

	// ErrInconsistentState is returned when a received wire datum violates a
	// protocol invariant. It is counted in a per-domain statistic and
	// triggers a local DIO inconsistency where appropriate.
	ErrInconsistentState errors.Error = "rplcore: inconsistent state"

	// ErrRouteLoop is returned when a route loop is detected during SRH
	// processing or hop-by-hop forwarding.
	ErrRouteLoop errors.Error = "rplcore: route loop detected"

	// ErrUnreachable is returned when SRH policy or next-hop link rejection
	// makes a destination unreachable.
	ErrUnreachable errors.Error = "rplcore: destination unreachable"

	// ErrTimerNotFired is a benign error: the operation is deferred to a
	// later tick.
	ErrTimerNotFired errors.Error = "rplcore: timer not fired"

	// ErrBusy is a benign error: the operation could not proceed this tick
	// and should be retried.
	ErrBusy errors.Error = "rplcore: busy"
)
