package rplcore

// HandleNoRoute implements spec.md §4.6.3: downward forwarding that finds
// no route is redirected back to the predecessor (the packet's link-layer
// source) with the Forwarding-Error bit set and a synthetic
// RouteSourceRPLFwdError route; requeue reports that redirection path.
// Upward no-route at a non-root node is instead a RPL routing problem and
// must raise a DIO inconsistency on the Instance.
func (inst *Instance) HandleNoRoute(
	opt *RPLOption,
	predecessor NeighbourID,
	havePredecessor bool,
	isRoot bool,
) (requeueTo NeighbourID, requeue bool, upwardInconsistency bool) {
	if !opt.Down {
		if !isRoot {
			return NeighbourID{}, false, true
		}
		return NeighbourID{}, false, false
	}

	if !havePredecessor {
		return NeighbourID{}, false, false
	}

	opt.ForwardingError = true

	return predecessor, true, false
}

// HandleForwardingError implements the predecessor side of spec.md §4.6.3:
// on receiving a packet with F=1, the predecessor deletes its own DAO /
// DAO-SR entry for the destination and clears the bit before attempting to
// forward again.
//
// This implements the "delete" behaviour named as the right default by
// spec.md §9's first open question: the reference this core is modelled on
// computes the matching entry but leaves the deletion behind a disabled
// branch, with the decision under review upstream.
func (inst *Instance) HandleForwardingError(opt *RPLOption, destAddr [16]byte) {
	inst.deleteTarget(destAddr, 128)
	opt.ForwardingError = false
}
