package rplcore

import (
	"net/netip"
	"sort"
	"time"
)

// Neighbour is a candidate next-hop within an Instance (spec.md §3).
// Neighbours weakly reference a DodagVersion: the pointer may go stale if
// the version is retired while this Neighbour has not yet been
// re-evaluated by parent selection, which is expected and tolerated.
type Neighbour struct {
	Addr        NeighbourID
	InterfaceID int

	// GlobalAddr is the neighbour's registered global address, if any.
	GlobalAddr netip.Addr

	// Version is a weak reference; Version.Retired may be true if the
	// DodagVersion has since been pruned.
	Version *DodagVersion

	Rank Rank

	DodagParent    bool
	WasDodagParent bool

	// DodagPref is the preference level, 0 = best, used to derive path
	// control bit assignment (§4.5.3). It is a local parent-set slot
	// assigned by parent selection, not the neighbour's advertised
	// preference — see AdvertisedPref for that.
	DodagPref uint8

	// AdvertisedPref is the neighbour's own advertised DODAG preference
	// (0..7), decoded from the last DIO's g_mop_prf byte (RFC 6550
	// §6.3.1). This, not DodagPref, is what an ObjectiveFunction's
	// Candidate.DAGPreference must carry.
	AdvertisedPref uint8

	DAOPathControl    uint8
	OldDAOPathControl uint8

	DTSN SequenceCounter

	DIOTimestamp time.Time

	Confirmed       bool
	Considered      bool
	AddrRegFailures uint8
}

// Candidate projects a Neighbour into the view an ObjectiveFunction
// consumes, pairing it with a freshly read link metric and the DODAG's
// grounded state. DAGPreference and AddrRegFailures come from the
// neighbour's own advertised/accumulated state, not the caller.
func (n *Neighbour) Candidate(linkMetricFP8 uint16, grounded bool) Candidate {
	return Candidate{
		ID:              n.Addr,
		Rank:            n.Rank,
		LinkMetricFP8:   linkMetricFP8,
		Grounded:        grounded,
		DAGPreference:   n.AdvertisedPref,
		DTSN:            n.DTSN,
		AddrRegFailures: n.AddrRegFailures,
	}
}

// RegisterAddressResult records the outcome of an address-registration
// attempt (6LoWPAN-ND ARO status, out of this core's scope beyond counting
// it) with this neighbour, per policy.max_addr_reg_failures: a success
// resets the streak, a failure extends it towards the threshold that makes
// NeighbourAcceptable reject the neighbour as a parent candidate.
func (n *Neighbour) RegisterAddressResult(success bool) {
	if success {
		n.AddrRegFailures = 0
		return
	}
	n.AddrRegFailures++
}

// NeighbourList maintains the candidate-list ordering invariant of spec.md
// §8 property 1: DODAG parents occupy a contiguous prefix ordered by
// non-decreasing DodagPref, non-parents follow in arbitrary stable order.
type NeighbourList struct {
	items []*Neighbour
}

// NewNeighbourList returns an empty NeighbourList.
func NewNeighbourList() *NeighbourList { return &NeighbourList{} }

// Add appends n to the list. Reorder must be called before the ordering
// invariant is relied upon.
func (l *NeighbourList) Add(n *Neighbour) { l.items = append(l.items, n) }

// Remove deletes the neighbour with the given address, if present.
func (l *NeighbourList) Remove(addr NeighbourID) {
	for i, n := range l.items {
		if n.Addr == addr {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// Find returns the neighbour with the given address, or nil.
func (l *NeighbourList) Find(addr NeighbourID) *Neighbour {
	for _, n := range l.items {
		if n.Addr == addr {
			return n
		}
	}
	return nil
}

// All returns the list's neighbours in their current order. The returned
// slice MUST NOT be mutated by the caller.
func (l *NeighbourList) All() []*Neighbour { return l.items }

// Len reports the number of neighbours.
func (l *NeighbourList) Len() int { return len(l.items) }

// Reorder restores the ordering invariant: DODAG parents first, sorted by
// ascending DodagPref (0 = best), non-parents after in their relative
// order. It is called once per parent-selection pass, after
// ObjectiveFunction.ParentSelection has set DodagParent/DodagPref on the
// affected neighbours.
func (l *NeighbourList) Reorder() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if a.DodagParent != b.DodagParent {
			return a.DodagParent
		}
		if a.DodagParent && b.DodagParent {
			return a.DodagPref < b.DodagPref
		}
		return false
	})
}

// Parents returns the contiguous prefix of current DODAG parents, in
// preference order (best first).
func (l *NeighbourList) Parents() []*Neighbour {
	for i, n := range l.items {
		if !n.DodagParent {
			return l.items[:i]
		}
	}
	return l.items
}

// BeginParentSelection implements the pre-selection snapshot step of
// spec.md §4.4.2: every neighbour's dodag_parent is saved to
// was_dodag_parent and cleared, dao_path_control is rotated into
// old_dao_path_control and cleared, and considered is set.
func (l *NeighbourList) BeginParentSelection() {
	for _, n := range l.items {
		n.WasDodagParent = n.DodagParent
		n.DodagParent = false
		n.OldDAOPathControl = n.DAOPathControl
		n.DAOPathControl = 0
		n.Considered = true
	}
}

// LostParents returns neighbours that were a DODAG parent before the
// current selection pass but are not afterwards — the set whose system
// routes must be withdrawn (spec.md §4.4.2).
func (l *NeighbourList) LostParents() (lost []*Neighbour) {
	for _, n := range l.items {
		if n.WasDodagParent && !n.DodagParent {
			lost = append(lost, n)
		}
	}
	return lost
}
