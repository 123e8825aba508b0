package rplcore

import "net/netip"

// ipv6RouteDefaultMetric is the base metric a default route through a
// DODAG parent is installed with; the parent's preference (0..3) is added
// to it (spec.md §4.4.2).
const ipv6RouteDefaultMetric = 1024

var defaultPrefix = netip.MustParsePrefix("::/0")

// buildCandidates projects every considered Neighbour into a Candidate,
// reading its link ETX through the adapter.
func buildCandidates(dom *Domain, inst *Instance, dodag *DODAG) []Candidate {
	nl := inst.neighbours
	out := make([]Candidate, 0, nl.Len())

	for _, n := range nl.All() {
		etx, ok := dom.Adapter.ReadETX(n.InterfaceID, n.Addr)
		if !ok {
			etx = 0 // no ETX service for this link.
		}

		grounded := dodag != nil && dodag.Grounded
		out = append(out, n.Candidate(etx, grounded))
	}

	return out
}

// previousPreferredParent returns the address of whichever Neighbour was
// the preferred parent before this selection pass began, if any.
func previousPreferredParent(nl *NeighbourList) (id *NeighbourID) {
	for _, n := range nl.All() {
		if n.WasDodagParent && n.DodagPref == 0 {
			addr := n.Addr
			return &addr
		}
	}
	return nil
}

// RunParentSelection implements the protocol orchestration of spec.md
// §4.4.2: snapshot the candidate list, delegate to the active Objective
// Function, atomically update the Instance's current Rank/Version,
// reinstall system routes, and finally prune candidates the OF no longer
// considers acceptable.
func (dom *Domain) RunParentSelection(inst *Instance, dodag *DODAG) {
	nl := inst.neighbours
	nl.BeginParentSelection()

	of := inst.OF
	if of == nil {
		of, _ = ObjectiveFunctionFor(0)
	}

	candidates := buildCandidates(dom, inst, dodag)
	previous := previousPreferredParent(nl)

	preferred, backups := of.ParentSelection(candidates, previous, dom.Policy)

	var preferredChanged bool

	if preferred == nil {
		inst.CurrentRank = RankInfinite

		hadParent := previous != nil
		if hadParent {
			if inst.EnterRepair(dom.Policy) {
				dom.Events.Notify(Event{Kind: EventLocalRepairStart, Instance: inst.ID})
			}
		}
		inst.BeginPoisoning(dom.Policy)

		preferredChanged = hadParent
	} else {
		prefN := nl.Find(preferred.ID)
		if prefN != nil {
			prefN.DodagParent = true
			prefN.DodagPref = 0
		}

		for i, b := range backups {
			if bn := nl.Find(b.ID); bn != nil {
				bn.DodagParent = true
				bn.DodagPref = uint8(i + 1)
			}
		}

		minHop := uint16(256)
		if dodag != nil && dodag.Config != nil {
			minHop = dodag.Config.MinHopRankIncrease
		}

		inst.CurrentRank = of.PathCost(*preferred, minHop, dom.Policy)
		if prefN != nil {
			inst.CurrentVersion = prefN.Version
		}
		inst.ExitRepair()

		ConvertDodagPreferencesToDAOPathControl(nl.Parents())

		preferredChanged = previous == nil || *previous != preferred.ID
	}

	nl.Reorder()

	dom.reinstallRoutes(inst, dodag, nl)

	if preferredChanged {
		dom.Events.Notify(Event{Kind: EventParentChanged, Instance: inst.ID})
	}

	for _, n := range append([]*Neighbour(nil), nl.All()...) {
		etx, ok := dom.Adapter.ReadETX(n.InterfaceID, n.Addr)
		if !ok {
			etx = 0 // no ETX service for this link.
		}
		grounded := dodag != nil && dodag.Grounded
		if !of.NeighbourAcceptable(n.Candidate(etx, grounded), dom.Policy) {
			nl.Remove(n.Addr)
		}
	}
}

// reinstallRoutes implements spec.md §4.4.2's route-installation rules:
// withdraw routes through parents just lost, then reinstall a default
// route, a /128 route to the DODAGID, and a route for every advertised RIO
// through every current parent.
func (dom *Domain) reinstallRoutes(inst *Instance, dodag *DODAG, nl *NeighbourList) {
	for range nl.LostParents() {
		_ = dom.Adapter.DeleteRouteByInfo(RouteSourceRPLInstance, uint32(inst.ID))
		_ = dom.Adapter.DeleteRouteByInfo(RouteSourceRPLDIO, uint32(inst.ID))
		_ = dom.Adapter.DeleteRouteByInfo(RouteSourceRPLRoot, uint32(inst.ID))
	}

	if dodag == nil {
		return
	}

	for _, parent := range nl.Parents() {
		pref := parent.DodagPref
		if pref > 3 {
			pref = 3
		}
		metric := uint16(ipv6RouteDefaultMetric) + uint16(pref)

		_ = dom.Adapter.AddRoute(
			defaultPrefix, parent.InterfaceID, parent.Addr,
			RouteSourceRPLInstance, uint32(inst.ID), 0, metric,
		)

		_ = dom.Adapter.AddRoute(
			netip.PrefixFrom(dodag.ID, 128), parent.InterfaceID, parent.Addr,
			RouteSourceRPLRoot, uint32(inst.ID), 0, 0,
		)

		for _, route := range dodag.Routes {
			_ = dom.Adapter.AddRoute(
				route.Prefix, parent.InterfaceID, parent.Addr,
				RouteSourceRPLDIO, uint32(inst.ID), route.Lifetime, uint16(route.Preferred),
			)
		}
	}
}
