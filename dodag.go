package rplcore

import (
	"net/netip"
	"time"
)

// RouteSource tags the origin of an installed system route, per the
// taxonomy the adapter's route table must recognise (spec.md §6).
type RouteSource uint8

// Route sources.
const (
	RouteSourceRPLDIO RouteSource = iota
	RouteSourceRPLInstance
	RouteSourceRPLRoot
	RouteSourceRPLDAO
	RouteSourceRPLDAOSR
	RouteSourceRPLSRH
	RouteSourceRPLFwdError
	RouteSourceARO
	RouteSourceRADV
)

// Prefix is an advertised on-link or off-link prefix, adopted from a DIO's
// Prefix Information option with RPL-specific aging.
type Prefix struct {
	Addr            netip.Prefix
	OnLink          bool
	Autonomous      bool
	PreferredExpiry uint32 // remaining seconds, counted down by AgePrefixes; 0 = infinite.
	ValidExpiry     uint32
}

// Route is an advertised Route Information Option entry, redistributed as
// a RouteSourceRPLDIO system route through every current parent.
type Route struct {
	Prefix    netip.Prefix
	Preferred uint8 // 0..3, per RFC 4191.
	Lifetime  uint32
}

// DodagVersion is one generation of a DODAG's topology, identified within
// the DODAG by a lollipop version_number (spec.md §3).
type DodagVersion struct {
	Dodag *DODAG

	VersionNumber SequenceCounter

	LowestAdvertisedRank Rank
	LastAdvertisedRank   Rank

	// HardRankLimit is derived from the DODAG config's MaxRankIncrease. It is
	// stored only: parent selection does not compare a node's computed rank
	// against it.
	HardRankLimit Rank

	GreedinessRankLimit Rank

	// Retired is set once a newer version supersedes this one; Neighbours
	// may still weakly reference a retired version until re-evaluated.
	Retired bool
}

// DODAG is the per-Instance topology rooted at a border router, identified
// by a 128-bit DodagID (spec.md §3).
type DODAG struct {
	ID DodagID

	// Versions is ordered newest-first; see spec.md §8 property 3.
	Versions []*DodagVersion

	Prefixes []Prefix
	Routes   []Route

	Config *DodagConfig

	TrickleParams TrickleParams

	// Grounded is RFC 6550 §6.3.1's 'G' bit, decoded from the most recently
	// received DIO's packed Grounded/MOP/Prf byte.
	Grounded bool

	// LastActivity is stamped on every accepted DIO naming this DODAG; it
	// drives the no-activity purge of spec.md §3.
	LastActivity time.Time

	Root        bool
	WasRoot     bool
	Leaf        bool
	HaveConfig  bool
	Used        bool
}

// NewDODAG constructs an empty DODAG, owned by the caller's Instance.
func NewDODAG(id DodagID) *DODAG {
	return &DODAG{ID: id}
}

// CurrentVersion returns the newest (first) DodagVersion, or nil if none
// exists yet.
func (d *DODAG) CurrentVersion() *DodagVersion {
	if len(d.Versions) == 0 {
		return nil
	}
	return d.Versions[0]
}

// FindVersion looks up a DodagVersion by its version number.
func (d *DODAG) FindVersion(number SequenceCounter) *DodagVersion {
	for _, v := range d.Versions {
		if v.VersionNumber == number {
			return v
		}
	}
	return nil
}

// UpsertVersion inserts a new DodagVersion if number is newer than every
// existing one, preserving the newest-first invariant (spec.md §8 property
// 3) and retiring (but not yet deleting — deletion happens once no
// neighbour references it) every version older than the new current one. A
// number that is not newer than the current version is inserted, already
// retired, at its place in that order.
func (d *DODAG) UpsertVersion(number SequenceCounter, hardRankLimit, greedinessLimit Rank) *DodagVersion {
	if v := d.FindVersion(number); v != nil {
		return v
	}

	v := &DodagVersion{
		Dodag:                d,
		VersionNumber:        number,
		HardRankLimit:        hardRankLimit,
		GreedinessRankLimit:  greedinessLimit,
		LowestAdvertisedRank: RankInfinite,
	}

	current := d.CurrentVersion()
	if current == nil || number.Compare(current.VersionNumber) == CmpGreater {
		for _, old := range d.Versions {
			old.Retired = true
		}
		d.Versions = append([]*DodagVersion{v}, d.Versions...)
	} else {
		v.Retired = true
		i := len(d.Versions)
		for j, old := range d.Versions {
			if number.Compare(old.VersionNumber) == CmpGreater {
				i = j
				break
			}
		}
		d.Versions = append(d.Versions, nil)
		copy(d.Versions[i+1:], d.Versions[i:])
		d.Versions[i] = v
	}

	return v
}

// AgePrefixes implements spec.md §3's prefix lifetime aging: each Prefix's
// non-infinite (nonzero) Preferred/Valid expiry counts down by the real
// elapsed time since the last slow tick; a prefix whose valid lifetime
// reaches zero is dropped, matching RFC 4861 §6.3.4.
func (d *DODAG) AgePrefixes(elapsedS uint32) {
	kept := d.Prefixes[:0:0]
	for _, pfx := range d.Prefixes {
		if pfx.PreferredExpiry > 0 {
			pfx.PreferredExpiry = subSaturateU32(pfx.PreferredExpiry, elapsedS)
		}
		if pfx.ValidExpiry > 0 {
			pfx.ValidExpiry = subSaturateU32(pfx.ValidExpiry, elapsedS)
			if pfx.ValidExpiry == 0 {
				continue
			}
		}
		kept = append(kept, pfx)
	}
	d.Prefixes = kept
}

// subSaturateU32 subtracts delta from v, floored at 0.
func subSaturateU32(v, delta uint32) uint32 {
	if delta >= v {
		return 0
	}
	return v - delta
}

// PruneRetiredVersions removes every retired DodagVersion that no live
// neighbour in referenced references, given the live set by reference
// equality.
func (d *DODAG) PruneRetiredVersions(referenced func(*DodagVersion) bool) {
	kept := d.Versions[:0:0]
	for _, v := range d.Versions {
		if v.Retired && !referenced(v) {
			continue
		}
		kept = append(kept, v)
	}
	d.Versions = kept
}
