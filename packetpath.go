package rplcore

import "net/netip"

// ForwardDownwardNoRoute implements the Domain-level orchestration around
// [Instance.HandleNoRoute] (spec.md §4.6.3): a storing node with no DAO
// route for a downward packet redirects it to the predecessor with
// Forwarding-Error set; an upward no-route at a non-root node instead raises
// a Trickle inconsistency on the owning Instance's DIO timer.
func (dom *Domain) ForwardDownwardNoRoute(
	inst *Instance,
	opt *RPLOption,
	predecessor NeighbourID,
	havePredecessor bool,
	isRoot bool,
) (requeueTo NeighbourID, requeue bool) {
	requeueTo, requeue, upwardInconsistency := inst.HandleNoRoute(opt, predecessor, havePredecessor, isRoot)

	if upwardInconsistency && inst.DIOTrickle != nil {
		inst.DIOTrickle.Inconsistent()
	}

	return requeueTo, requeue
}

// CheckHopByHopLoop implements the Domain-level orchestration around
// [Instance.CheckLoop] (spec.md §4.6.2): on the second Rank-Error
// violation it notifies EventRouteLoop and raises a Trickle inconsistency
// on the owning Instance's DIO timer before telling the caller to drop the
// packet.
func (dom *Domain) CheckHopByHopLoop(inst *Instance, opt *RPLOption) (drop bool) {
	drop = inst.CheckLoop(opt)
	if !drop {
		return false
	}

	dom.Events.Notify(Event{Kind: EventRouteLoop, Instance: inst.ID})
	if inst.DIOTrickle != nil {
		inst.DIOTrickle.Inconsistent()
	}

	return true
}

// ProcessSourceRoutedHop implements the Domain-level orchestration around
// [ProcessSourceRoutingHeader]: on a detected loop it emits an
// EventRouteLoop and the caller's ICMPv6 Parameter Problem via the Adapter;
// otherwise it returns the next hop for the transport to forward to.
func (dom *Domain) ProcessSourceRoutedHop(
	inst *Instance,
	srh *SourceRoutingHeader,
	dst netip.Addr,
	ifaceID int,
	localAddrs func(netip.Addr) bool,
	pkt []byte,
	linkETXFP8 uint16,
) (newDst netip.Addr, err error) {
	newDst, pointer, err := ProcessSourceRoutingHeader(srh, dst, ifaceID, localAddrs, dom.Policy, linkETXFP8)
	if err == nil {
		return newDst, nil
	}

	switch {
	case err == ErrRouteLoop:
		dom.Events.Notify(Event{Kind: EventRouteLoop, Instance: inst.ID})
		_ = dom.Adapter.SendParameterProblem(pkt, pointer)
	case err == ErrBadParameter:
		_ = dom.Adapter.SendParameterProblem(pkt, pointer)
	case err == ErrUnreachable:
		_ = dom.Adapter.SendDestUnreachable(pkt)
	}

	return netip.Addr{}, err
}
