package rplcore

import "net/netip"

// NeighbourID identifies a neighbour by its link-local IPv6 address, which
// is stable for the lifetime of a link regardless of which DODAG or
// Instance the neighbour is being considered for.
type NeighbourID = netip.Addr

// InstanceID is an RPLInstanceID (RFC 6550 §5.1): the low 7 bits select a
// value, the high bit distinguishes locally- from globally-defined
// instances.
type InstanceID uint8

// Local reports whether id was allocated from the local instance space.
func (id InstanceID) Local() bool { return id&0x80 != 0 }

// DodagID is a DODAGID: the root's IPv6 address.
type DodagID = netip.Addr

// Candidate is the view of a neighbour that an [ObjectiveFunction] needs in
// order to run parent and path selection (spec.md §4.3).
type Candidate struct {
	// ID is the neighbour's link-local address.
	ID NeighbourID

	// Rank is the neighbour's own, already-computed Rank.
	Rank Rank

	// LinkMetricFP8 is the measured link ETX to this neighbour, fixed-point
	// times 256 (0x100 == ETX 1.0).
	LinkMetricFP8 uint16

	// Grounded reports whether the neighbour's DODAG is grounded (RFC 6550
	// §6.3.1 'G' bit).
	Grounded bool

	// DAGPreference is the neighbour's advertised DODAG preference, 0..7,
	// decoded from g_mop_prf.
	DAGPreference uint8

	// DTSN is the neighbour's last-advertised Destination Advertisement
	// Trigger Sequence Number.
	DTSN SequenceCounter

	// AddrRegFailures counts the neighbour's consecutive failed address
	// registrations; an ObjectiveFunction's NeighbourAcceptable rejects a
	// neighbour once this reaches policy.MaxAddrRegFailures.
	AddrRegFailures uint8
}

// DodagConfig holds a DODAG Configuration option's fields (RFC 6550 §6.7.6),
// the values every member of a DODAG must agree on.
type DodagConfig struct {
	Authentication     bool
	PathControlSize    uint8
	DIOIntervalDoubl   uint8
	DIOIntervalMin     uint8
	DIORedundancy      uint8
	MaxRankIncrease    uint16
	MinHopRankIncrease uint16
	ObjectiveCodePoint uint16
	DefaultLifetime    uint8
	LifetimeUnit       uint16
}

// ObjectiveFunction implements the Objective Function abstraction of RFC
// 6550 §14 / RFC 6552: it selects a preferred parent and backup set from a
// candidate neighbour set and computes this node's own Rank (spec.md §4.3).
type ObjectiveFunction interface {
	// OCP is this function's Objective Code Point.
	OCP() uint16

	// NeighbourAcceptable reports whether c may be considered a candidate
	// parent at all, independent of any other candidate.
	NeighbourAcceptable(c Candidate, p *Policy) (ok bool)

	// ParentSelection chooses a preferred parent and an ordered backup set
	// from candidates. current, if non-nil, is the presently preferred
	// parent and is given precedence in ties per the function's hysteresis
	// rule. Returns preferred == nil if no acceptable candidate exists.
	ParentSelection(candidates []Candidate, current *NeighbourID, p *Policy) (preferred *Candidate, backups []Candidate)

	// PathCost computes this node's Rank given the chosen preferred parent.
	PathCost(preferred Candidate, minHopRankIncrease uint16, p *Policy) (rank Rank)
}

var objectiveFunctions = map[uint16]ObjectiveFunction{}

// RegisterObjectiveFunction makes an [ObjectiveFunction] available under its
// OCP for DODAGs that advertise it. It is called from init in the files
// defining OF0 and MRHOF, following the registration idiom used throughout
// the Go standard library (image.RegisterFormat, database/sql.Register).
func RegisterObjectiveFunction(of ObjectiveFunction) {
	objectiveFunctions[of.OCP()] = of
}

// objectiveFunctionFor looks up a registered ObjectiveFunction by OCP.
func objectiveFunctionFor(ocp uint16) (of ObjectiveFunction, ok bool) {
	of, ok = objectiveFunctions[ocp]
	return of, ok
}

// ObjectiveFunctionFor looks up a registered ObjectiveFunction by its
// Objective Code Point (RFC 6550 §6.7.6).
func ObjectiveFunctionFor(ocp uint16) (of ObjectiveFunction, ok bool) {
	return objectiveFunctionFor(ocp)
}

// PrefixAdvertiser is called back whenever the Domain adopts or retires a
// prefix, so the transport can reflect it into the IPv6 stack's address
// configuration (spec.md §3 "prefix-advertisement callback").
type PrefixAdvertiser interface {
	AdvertisePrefix(instance InstanceID, dodag DodagID, p Prefix, added bool)
}

// Domain is the process-wide container: it owns every Instance, and holds
// the Policy, the prefix-advertisement callback, and the "force leaf" flag
// (spec.md §3).
type Domain struct {
	Policy *Policy

	instances map[InstanceID]*Instance

	PrefixAdvertiser PrefixAdvertiser

	// ForceLeaf prevents this node from ever becoming a parent, regardless
	// of what any Instance's topology would otherwise allow.
	ForceLeaf bool

	Adapter Adapter
	Events  EventSink
}

// NewDomain constructs a Domain with the given Policy. adapter and events
// may be nil; a nil adapter falls back to [Empty], a nil events sink to
// [NopEventSink].
func NewDomain(policy *Policy, adapter Adapter, events EventSink) *Domain {
	if policy == nil {
		policy = NewPolicy()
	}
	if adapter == nil {
		adapter = Empty{}
	}
	if events == nil {
		events = NopEventSink{}
	}

	return &Domain{
		Policy:    policy,
		instances: make(map[InstanceID]*Instance),
		Adapter:   adapter,
		Events:    events,
	}
}

// Instance looks up an owned Instance by ID.
func (dom *Domain) Instance(id InstanceID) *Instance { return dom.instances[id] }

// Instances returns every owned Instance.
func (dom *Domain) Instances() []*Instance {
	out := make([]*Instance, 0, len(dom.instances))
	for _, inst := range dom.instances {
		out = append(out, inst)
	}
	return out
}

// UpsertInstance returns the Instance with the given ID, creating it
// lazily on first acceptable DIO or by root configuration (spec.md §3).
func (dom *Domain) UpsertInstance(id InstanceID) (inst *Instance, created bool) {
	if inst, ok := dom.instances[id]; ok {
		return inst, false
	}
	inst = NewInstance(id)
	dom.instances[id] = inst
	return inst, true
}

// PurgeEmptyInstances removes every Instance with no DODAGs and no
// neighbours, one at a time, so the caller can amortise the work across
// ticks per spec.md §5.
func (dom *Domain) PurgeEmptyInstances(budget int) (purged int) {
	for id, inst := range dom.instances {
		if purged >= budget {
			break
		}
		if inst.Empty() {
			delete(dom.instances, id)
			purged++
		}
	}
	return purged
}
