package rplcore

import (
	"bytes"
	"time"

	"github.com/lowpan/rplcore/internal/aghalg"
)

// RepairState is the local-repair state machine of spec.md §4.4.3.
type RepairState uint8

// RepairState values.
const (
	RepairNormal RepairState = iota
	RepairRepairing
)

// MembershipState is the DODAG membership state machine of spec.md §4.4.3.
type MembershipState uint8

// MembershipState values.
const (
	MembershipNotJoined MembershipState = iota
	MembershipJoined
	MembershipPoisoning
	MembershipLeft
)

// targetKey identifies a DAOTarget by its (prefix, prefix_len) pair.
type targetKey struct {
	addr [16]byte
	bits int
}

// Instance is an RPL Instance (spec.md §3), identified by an 8-bit
// instance_id. It owns its DODAGs, candidate Neighbours, and DAO Targets.
type Instance struct {
	ID InstanceID

	dodags     map[DodagID]*DODAG
	neighbours *NeighbourList

	// targets is kept in a sorted map rather than a plain map so that
	// [Instance.Targets] and DAO/source-route encoding iterate targets in a
	// stable (addr, prefix_len) order instead of Go's randomized map order.
	targets *aghalg.SortedMap[targetKey, *DAOTarget]

	// CurrentVersion is a weak reference into one of dodags' Versions.
	CurrentVersion *DodagVersion
	CurrentRank    Rank

	DTSN        SequenceCounter
	DAOSequence SequenceCounter

	DIOTrickle *Trickle

	RepairState RepairState
	Membership  MembershipState

	LastDAOTrigger time.Time
	SRHErrorCount  uint16

	PendingNeighbourConfirmation bool

	OF ObjectiveFunction

	PoisonCount     uint8
	RepairDISCount  uint8
	RepairBackoffS  uint16

	// ParentSelectionDelayTicks counts down (in fast, 100ms ticks) to a
	// scheduled parent-selection run; 0 means none pending.
	ParentSelectionDelayTicks uint32

	// RepairDISTimerTicks counts down to the next repair DIS transmission.
	RepairDISTimerTicks uint32

	// NewConfigAdvertisementCount counts remaining multicast DIOs that must
	// carry the DODAG config after a change (spec.md §4.4.1 step 4,
	// §4.4.4).
	NewConfigAdvertisementCount uint8

	// DAO is the single in-flight-DAO state machine (spec.md §4.5.2).
	DAO *DAOOutbound

	// MonotonicTicks is the free-running 100ms counter used for age
	// comparisons (spec.md §5).
	MonotonicTicks uint64

	// LastAddrRegistration is when this node last (re)registered its own
	// address with its preferred parent; it drives the refresh interval
	// named by policy.address_registration_timeout_min.
	LastAddrRegistration time.Time

	// lastSlowTick is when TickSlow last ran for this Instance, used to
	// compute real elapsed time for lifetime/expiry aging instead of
	// assuming an exact 1Hz cadence.
	lastSlowTick time.Time
}

// NewInstance constructs an empty Instance, owned by its Domain.
func NewInstance(id InstanceID) *Instance {
	return &Instance{
		ID:          id,
		dodags:      make(map[DodagID]*DODAG),
		neighbours:  NewNeighbourList(),
		targets:     aghalg.NewSortedMapFunc[targetKey, *DAOTarget](compareTargetKeys),
		DTSN:        NewSequenceCounter(),
		DAOSequence: NewSequenceCounter(),
		DAO:         &DAOOutbound{},
	}
}

// Dodag looks up an owned DODAG by ID.
func (inst *Instance) Dodag(id DodagID) *DODAG { return inst.dodags[id] }

// UpsertDodag returns the DODAG with the given ID, creating it lazily.
func (inst *Instance) UpsertDodag(id DodagID) (d *DODAG, created bool) {
	if d, ok := inst.dodags[id]; ok {
		return d, false
	}
	d = NewDODAG(id)
	inst.dodags[id] = d
	return d, true
}

// Neighbours returns the Instance's candidate-list manager.
func (inst *Instance) Neighbours() *NeighbourList { return inst.neighbours }

// Dodags returns every DODAG currently owned by the Instance.
func (inst *Instance) Dodags() []*DODAG {
	out := make([]*DODAG, 0, len(inst.dodags))
	for _, d := range inst.dodags {
		out = append(out, d)
	}
	return out
}

// PurgeInactiveDodags implements spec.md §3's "purged after no-activity
// timeout when not in use": every non-root DODAG that isn't the current
// DodagVersion's and hasn't seen a DIO in timeoutS seconds is dropped. A
// zero timeoutS disables the purge.
func (inst *Instance) PurgeInactiveDodags(now time.Time, timeoutS uint32) (purged int) {
	if timeoutS == 0 {
		return 0
	}

	timeout := time.Duration(timeoutS) * time.Second
	for id, d := range inst.dodags {
		if d.Root || d.Used {
			continue
		}
		if inst.CurrentVersion != nil && inst.CurrentVersion.Dodag == d {
			continue
		}
		if d.LastActivity.IsZero() || now.Sub(d.LastActivity) < timeout {
			continue
		}

		delete(inst.dodags, id)
		purged++
	}
	return purged
}

// AddressRegistrationDue reports whether policy.address_registration_timeout_min
// has elapsed since this node's own address was last registered with its
// preferred parent, so the transport knows to re-send its registration.
func (inst *Instance) AddressRegistrationDue(now time.Time, p *Policy) (due bool) {
	if p.AddressRegistrationTimeoutMin == 0 {
		return false
	}

	timeout := time.Duration(p.AddressRegistrationTimeoutMin) * time.Minute
	return inst.LastAddrRegistration.IsZero() || now.Sub(inst.LastAddrRegistration) >= timeout
}

// MarkAddressRegistered records a (re)registration attempt, restarting the
// refresh interval [Instance.AddressRegistrationDue] checks against.
func (inst *Instance) MarkAddressRegistered(now time.Time) {
	inst.LastAddrRegistration = now
}

// slowTickElapsedS returns the real elapsed time, in whole seconds, since
// the previous TickSlow call for this Instance, defaulting to 1s on the
// first call so aging behaves sanely before a baseline exists.
func (inst *Instance) slowTickElapsedS(now time.Time) (elapsedS uint32) {
	if inst.lastSlowTick.IsZero() {
		inst.lastSlowTick = now
		return 1
	}

	elapsed := now.Sub(inst.lastSlowTick)
	inst.lastSlowTick = now

	if elapsed <= 0 {
		return 0
	}
	if secs := elapsed.Seconds(); secs < float64(^uint32(0)) {
		return uint32(secs)
	}
	return ^uint32(0)
}

// Empty reports whether the Instance has no DODAGs and no neighbours and
// is therefore eligible for purge (spec.md §3).
func (inst *Instance) Empty() bool {
	return len(inst.dodags) == 0 && inst.neighbours.Len() == 0
}

// newTargetKey builds a targetKey from a prefix and length.
func newTargetKey(addr [16]byte, bits int) targetKey { return targetKey{addr: addr, bits: bits} }

// compareTargetKeys orders targetKeys by address then prefix length, giving
// [Instance.Targets] and DAO/source-route encoding a deterministic order.
func compareTargetKeys(a, b targetKey) int {
	if c := bytes.Compare(a.addr[:], b.addr[:]); c != 0 {
		return c
	}
	return a.bits - b.bits
}

// Target looks up a DAOTarget by (prefix, prefix_len).
func (inst *Instance) Target(addr [16]byte, bits int) *DAOTarget {
	t, _ := inst.targets.Get(newTargetKey(addr, bits))
	return t
}

// Targets returns every owned DAOTarget, sorted by (prefix, prefix_len); the
// returned slice is a fresh copy safe for the caller to retain.
func (inst *Instance) Targets() []*DAOTarget {
	out := make([]*DAOTarget, 0, inst.targetCount())
	inst.targets.Range(func(_ targetKey, t *DAOTarget) bool {
		out = append(out, t)
		return true
	})
	return out
}

// targetCount reports how many targets are currently owned.
func (inst *Instance) targetCount() (n int) {
	inst.targets.Range(func(targetKey, *DAOTarget) bool {
		n++
		return true
	})
	return n
}

// putTarget inserts or overwrites a DAOTarget.
func (inst *Instance) putTarget(t *DAOTarget) {
	inst.targets.Set(newTargetKey(t.Addr, t.PrefixLen), t)
}

// deleteTarget removes a DAOTarget.
func (inst *Instance) deleteTarget(addr [16]byte, bits int) {
	inst.targets.Del(newTargetKey(addr, bits))
}

// EnterRepair transitions to RepairRepairing and arms the exponential DIS
// back-off described in spec.md §4.4.3, returning false if repair was
// already in progress.
func (inst *Instance) EnterRepair(p *Policy) (entered bool) {
	if inst.RepairState == RepairRepairing {
		return false
	}
	inst.RepairState = RepairRepairing
	inst.RepairDISCount = 0
	inst.RepairBackoffS = p.RepairInitialDISDelayS
	inst.RepairDISTimerTicks = uint32(p.RepairInitialDISDelayS) * 10

	return true
}

// ExitRepair transitions back to RepairNormal on the first successful
// parent selection.
func (inst *Instance) ExitRepair() { inst.RepairState = RepairNormal }

// RepairTick advances the repair back-off by one fast tick. It reports
// whether a DIS should be transmitted now, and whether the repair-DIS
// budget has just been exhausted (LOCAL_REPAIR_NO_MORE_DIS).
func (inst *Instance) RepairTick(p *Policy) (sendDIS, noMoreDIS bool) {
	if inst.RepairState != RepairRepairing {
		return false, false
	}
	if inst.RepairDISTimerTicks == 0 {
		return false, false
	}

	inst.RepairDISTimerTicks--
	if inst.RepairDISTimerTicks != 0 {
		return false, false
	}

	if inst.RepairDISCount >= p.RepairDISCount {
		return false, true
	}

	inst.RepairDISCount++
	sendDIS = true

	inst.RepairBackoffS *= 2
	if inst.RepairBackoffS > p.RepairMaximumDISIntervalS {
		inst.RepairBackoffS = p.RepairMaximumDISIntervalS
	}
	inst.RepairDISTimerTicks = uint32(inst.RepairBackoffS) * 10

	return sendDIS, false
}

// BeginPoisoning transitions to MembershipPoisoning, arming
// policy.RepairPoisonCount outbound INFINITE-rank DIOs.
func (inst *Instance) BeginPoisoning(p *Policy) {
	inst.Membership = MembershipPoisoning
	inst.PoisonCount = p.RepairPoisonCount
	inst.CurrentRank = RankInfinite
}

// PoisonTick consumes one pending poison DIO, returning true while more
// remain to be sent and transitioning to MembershipNotJoined once
// exhausted.
func (inst *Instance) PoisonTick() (sendPoisonDIO bool) {
	if inst.Membership != MembershipPoisoning {
		return false
	}
	if inst.PoisonCount == 0 {
		inst.Membership = MembershipNotJoined
		return false
	}
	inst.PoisonCount--
	return true
}
