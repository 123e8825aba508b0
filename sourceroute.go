package rplcore

import (
	"net/netip"
	"sort"
)

// addrToKey converts an address to the [16]byte key DAOTargets are stored
// under; IPv4-mapped or shorter forms are never produced by this core, so
// As16 is always safe.
func addrToKey(a netip.Addr) [16]byte { return a.As16() }

// SourceRouteCache is the last-computed-path cache a non-storing root keeps
// per spec.md §4.5.5: reused if the next query matches. It is cleared only
// by an explicit [SourceRouteCache.Invalidate] call; nothing in this package
// calls it, so a DAO-graph change or SRH error does not clear it by itself.
type SourceRouteCache struct {
	valid     bool
	target    [16]byte
	bits      int
	finalDest NeighbourID
	hops      []NeighbourID
}

// Invalidate clears the cache, so the next query recomputes the route.
func (c *SourceRouteCache) Invalidate() { *c = SourceRouteCache{} }

// SortTransits orders t's transit list so the first entry is the chosen
// predecessor: lowest cost first (spec.md §4.5.5 "sorting each target's
// transit list").
func (t *DAOTarget) SortTransits() {
	sort.SliceStable(t.Transits, func(i, j int) bool {
		return t.Transits[i].Cost < t.Transits[j].Cost
	})
}

// ComputeSourceRoute implements the non-storing root source-route
// computation of spec.md §4.5.5: a topological walk from target back to
// root over the transit graph, reversed into root-to-target order. A
// transit address seen twice is a loop and fails the whole computation,
// marking the target disconnected.
func (inst *Instance) ComputeSourceRoute(finalDest NeighbourID, targetAddr [16]byte, bits int, cache *SourceRouteCache) (hops []NeighbourID, err error) {
	if cache.valid && cache.finalDest == finalDest && cache.target == targetAddr && cache.bits == bits {
		return cache.hops, nil
	}

	target := inst.Target(targetAddr, bits)
	if target == nil {
		return nil, ErrNotFound
	}

	seen := make(map[NeighbourID]bool)
	cur := target

	for len(cur.Transits) > 0 {
		cur.SortTransits()
		transit := cur.Transits[0]

		if seen[transit.Addr] {
			target.Connected = false
			return nil, ErrRouteLoop
		}
		seen[transit.Addr] = true

		hops = append(hops, transit.Addr)

		next := inst.Target(addrToKey(transit.Addr), 128)
		if next == nil {
			break
		}
		cur = next
	}

	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}

	*cache = SourceRouteCache{
		valid:     true,
		target:    targetAddr,
		bits:      bits,
		finalDest: finalDest,
		hops:      hops,
	}

	return hops, nil
}
