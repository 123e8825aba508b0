package rplcore

// rplMaxFinalRtrAdvertisements is RPL_MAX_FINAL_RTR_ADVERTISEMENTS: a
// No-Path target (lifetime 0) stays in the target list for this many
// TickSlow calls before it is removed. TickSlow does not itself schedule a
// DAO for it.
const rplMaxFinalRtrAdvertisements = 3

// DAOTransit is one (transit, path_control, cost) edge a non-storing root
// keeps per DAOTarget, used by the source-route computation of §4.5.5.
type DAOTransit struct {
	Addr        NeighbourID
	PathControl uint8
	Cost        uint16
}

// DAOTarget is a (prefix, prefix_len) the Instance advertises downward
// (spec.md §3).
type DAOTarget struct {
	Addr      [16]byte
	PrefixLen int

	PathSequence SequenceCounter
	PathControl  uint8

	ResponseWaitTicks uint32
	Lifetime          uint32

	External  bool
	Published bool
	Own       bool
	Connected bool

	Descriptor    uint32
	HasDescriptor bool

	TriggerConfirmation bool
	ActiveConfirmation  bool

	NeedSeqInc bool

	// Storing-mode (and non-storing non-root) per-path-control-bit DAO
	// progress.
	PCAssigning uint8
	PCAssigned  uint8
	PCToRetry   uint8

	// Transit graph fields, read by a non-storing root's source-route
	// computation.
	Transits []DAOTransit
	Children []NeighbourID

	// noPathRetransmissions counts the TickSlow calls a No-Path target has
	// waited through; the target is removed once it reaches
	// rplMaxFinalRtrAdvertisements.
	noPathRetransmissions uint8
}

// PublishOwnAddress implements spec.md §4.5.1: publishing an own address
// creates a target (address, 128, own=true, published=true,
// lifetime=infinite).
func (inst *Instance) PublishOwnAddress(addr [16]byte) *DAOTarget {
	t := inst.Target(addr, 128)
	if t == nil {
		t = &DAOTarget{
			Addr:         addr,
			PrefixLen:    128,
			Own:          true,
			Published:    true,
			Lifetime:     0,
			PathSequence: NewSequenceCounter(),
		}
		inst.putTarget(t)
	}
	return t
}

// PublishTarget publishes a non-own host route with an explicit lifetime.
func (inst *Instance) PublishTarget(addr [16]byte, bits int, lifetimeS uint32) *DAOTarget {
	t := inst.Target(addr, bits)
	if t == nil {
		t = &DAOTarget{
			Addr:         addr,
			PrefixLen:    bits,
			Published:    true,
			Lifetime:     lifetimeS,
			PathSequence: NewSequenceCounter(),
		}
		inst.putTarget(t)
		return t
	}
	t.Lifetime = lifetimeS
	return t
}

// ReceiveDAO implements the non-root half of spec.md §4.5.1: a DAO target
// is created or refreshed with the advertised lifetime and path control. A
// lifetime of 0 is a "No-Path DAO" and removes the route.
//
// haveTransit, transit, and transitCost carry the DAO's Transit Information
// option, if present: the sender that is (addr, bits)'s next hop towards
// itself, and the cost of that hop. Whenever haveTransit is set the edge is
// recorded in the target's transit list, which [Instance.ComputeSourceRoute]
// walks to build source routes; the Instance's mode of operation and root
// role are not checked, so a storing node or non-storing non-root records
// it too.
func (inst *Instance) ReceiveDAO(
	addr [16]byte,
	bits int,
	sequence SequenceCounter,
	pathControl uint8,
	lifetimeS uint32,
	haveTransit bool,
	transit NeighbourID,
	transitCost uint16,
) (err error) {
	if lifetimeS == 0 {
		inst.deleteTarget(addr, bits)
		return nil
	}

	t := inst.Target(addr, bits)
	if t == nil {
		t = &DAOTarget{Addr: addr, PrefixLen: bits}
		inst.putTarget(t)
	}

	t.PathSequence = sequence
	t.PathControl = pathControl
	t.Lifetime = lifetimeS
	t.Connected = true

	if haveTransit {
		t.upsertTransit(transit, pathControl, transitCost)
	}

	return nil
}

// upsertTransit inserts or refreshes a non-storing root's (transit,
// path_control, cost) edge for t, keyed by the transit's address.
func (t *DAOTarget) upsertTransit(transit NeighbourID, pathControl uint8, cost uint16) {
	for i, tr := range t.Transits {
		if tr.Addr == transit {
			t.Transits[i].PathControl = pathControl
			t.Transits[i].Cost = cost
			return
		}
	}
	t.Transits = append(t.Transits, DAOTransit{Addr: transit, PathControl: pathControl, Cost: cost})
}

// MarkNoPath schedules t for withdrawal: lifetime is set to zero, and
// TickSlow removes the target after rplMaxFinalRtrAdvertisements further
// calls. No DAO is scheduled here; the No-Path is carried only by a DAO
// that is sent for another reason within that window.
func (inst *Instance) MarkNoPath(t *DAOTarget) {
	t.Lifetime = 0
	t.noPathRetransmissions = 0
}

// NoPathDAOComplete counts one more slow tick of t's withdrawal and reports
// whether rplMaxFinalRtrAdvertisements of them have now passed, so that the
// target can be finally removed.
func (t *DAOTarget) NoPathDAOComplete() (done bool) {
	t.noPathRetransmissions++
	return t.noPathRetransmissions >= rplMaxFinalRtrAdvertisements
}

// DAOOutbound is the single in-flight-DAO state machine an Instance
// maintains (spec.md §4.5.2): at most one DAO is ever outstanding per
// Instance, retried up to policy.DAORetryCount times before failure is
// declared.
type DAOOutbound struct {
	InFlight bool

	Sequence SequenceCounter
	Attempt  int8

	DelayTicks   uint32
	AckWaitTicks uint32
}

// ScheduleDAO arms the delay-DAO timer, per spec.md §4.5.2: the core waits
// for pending_neighbour_confirmation to clear before encoding and sending.
func (o *DAOOutbound) ScheduleDAO(delayTicks uint32) {
	o.DelayTicks = delayTicks
}

// initialAckWaitTicks implements the neighbour-cache-informed formula of
// spec.md §4.5.2: when the downstream interface's retrans_timer exceeds
// 2000ms, the wait is 2 * retrans_timer / 100 (100ms ticks), saturating at
// 0xFFFF; otherwise the policy default applies.
func initialAckWaitTicks(p *Policy, retransTimerMS uint32, haveRetransTimer bool) (ticks uint32) {
	if haveRetransTimer && retransTimerMS > 2000 {
		ticks = 2 * retransTimerMS / 100
		if ticks > 0xFFFF {
			ticks = 0xFFFF
		}
		return ticks
	}
	return uint32(p.InitialDAOAckWaitMS) / 100
}

// DAOTick advances the outbound DAO state machine by one fast (100ms)
// tick. It reports whether a DAO should be (re)transmitted this tick, and
// whether the retry budget has just been exhausted (declared failure).
func (inst *Instance) DAOTick(o *DAOOutbound, p *Policy, retransTimerMS uint32, haveRetransTimer bool) (transmit, failed bool) {
	if o.DelayTicks > 0 {
		o.DelayTicks--
		if o.DelayTicks > 0 || inst.PendingNeighbourConfirmation {
			return false, false
		}

		o.InFlight = true
		o.Attempt = 0
		o.Sequence = inst.DAOSequence
		o.AckWaitTicks = initialAckWaitTicks(p, retransTimerMS, haveRetransTimer)

		return true, false
	}

	if !o.InFlight {
		return false, false
	}

	if o.AckWaitTicks > 0 {
		o.AckWaitTicks--
		return false, false
	}

	if o.Attempt >= int8(p.DAORetryCount) {
		o.InFlight = false
		return false, true
	}

	o.Attempt++
	o.AckWaitTicks = initialAckWaitTicks(p, retransTimerMS, haveRetransTimer)

	return true, false
}

// ReceiveDAOAck implements spec.md §4.5.2: a DAO-ACK whose sequence matches
// the in-flight DAO clears the in-flight state; with status 0 it marks
// every advertised path-control bit pc_assigning -> pc_assigned, and a
// failure ACK schedules those bits into pc_to_retry instead. Only the
// sequence is matched: the ACK's source and interface are not checked.
func (inst *Instance) ReceiveDAOAck(o *DAOOutbound, sequence SequenceCounter, status uint8) (matched bool) {
	if !o.InFlight || sequence != o.Sequence {
		return false
	}

	o.InFlight = false

	inst.targets.Range(func(_ targetKey, t *DAOTarget) bool {
		if status == 0 {
			t.PCAssigned |= t.PCAssigning
			t.PCAssigning = 0
		} else {
			t.PCToRetry |= t.PCAssigning
			t.PCAssigning = 0
		}
		return true
	})

	return true
}
