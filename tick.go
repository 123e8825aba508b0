package rplcore

import (
	"net/netip"
	"time"
)

// TickFast implements the core's 100ms tick stream (spec.md §5): it drives
// Trickle, DAO retransmission, delayed parent selection, and local-repair
// DIS back-off. The core bounds per-tick work by deferring parent
// selection to a later tick via ParentSelectionDelayTicks rather than
// running it synchronously from message receipt.
func (dom *Domain) TickFast(now time.Time) {
	for _, inst := range dom.Instances() {
		inst.MonotonicTicks++

		dodag := dom.dominantDodag(inst)

		suppressDIO := dom.Policy.ParentConfirmationRequested && inst.PendingNeighbourConfirmation
		if inst.DIOTrickle != nil && inst.DIOTrickle.TrickleTick() && !suppressDIO {
			_ = dom.Adapter.SendDIO(inst.ID, dodagID(dodag), netip.Addr{}, inst.NewConfigAdvertisementCount > 0)
			if inst.NewConfigAdvertisementCount > 0 {
				inst.NewConfigAdvertisementCount--
			}
		}

		if inst.ParentSelectionDelayTicks > 0 {
			inst.ParentSelectionDelayTicks--
			if inst.ParentSelectionDelayTicks == 0 {
				dom.RunParentSelection(inst, dodag)
			}
		}

		if sendDIS, noMoreDIS := inst.RepairTick(dom.Policy); sendDIS {
			_ = dom.Adapter.SendDIS(inst.ID, 0, netip.Addr{})
		} else if noMoreDIS {
			dom.Events.Notify(Event{Kind: EventLocalRepairNoMoreDIS, Instance: inst.ID})
		}

		if inst.PoisonTick() {
			_ = dom.Adapter.SendDIO(inst.ID, dodagID(dodag), netip.Addr{}, false)
		}

		if inst.DAO != nil {
			retransMS, haveRetrans := uint32(0), false
			if preferred := firstParent(inst); preferred != nil {
				retransMS, haveRetrans = dom.Adapter.RetransTimerMS(preferred.InterfaceID, preferred.Addr)
			}

			transmit, failed := inst.DAOTick(inst.DAO, dom.Policy, retransMS, haveRetrans)
			if transmit {
				if preferred := firstParent(inst); preferred != nil {
					_ = dom.Adapter.SendDAO(inst.ID, preferred.Addr, inst.DAO.Sequence)
				}
			}
			if failed {
				inst.DTSN = inst.DTSN.Increment()
				dom.Events.Notify(Event{Kind: EventDAOTrigger, Instance: inst.ID})
				if inst.DIOTrickle != nil {
					inst.DIOTrickle.Inconsistent()
				}
			}
		}
	}
}

// TickSlow implements the core's 1s tick stream (spec.md §5): route and
// prefix lifetime aging, DODAG no-activity purge, and address
// registration refresh. now is compared against the real-time stamps on
// DODAGs ([DODAG.LastActivity]) and Instances
// ([Instance.LastAddrRegistration]), and elapsed wall-clock time (rather
// than an assumed exact 1Hz cadence) drives target and prefix lifetime
// countdowns.
func (dom *Domain) TickSlow(now time.Time) {
	for _, inst := range dom.Instances() {
		elapsedS := inst.slowTickElapsedS(now)

		for _, t := range inst.Targets() {
			if t.Lifetime == 0 && !t.Own {
				if t.NoPathDAOComplete() {
					inst.deleteTarget(t.Addr, t.PrefixLen)
				}
				continue
			}
			if t.Lifetime > 0 && !t.Own {
				t.Lifetime = subSaturateU32(t.Lifetime, elapsedS)
			}
		}

		for _, d := range inst.Dodags() {
			d.AgePrefixes(elapsedS)
		}

		inst.PurgeInactiveDodags(now, dom.Policy.DodagNoActivityTimeoutS)

		if inst.AddressRegistrationDue(now, dom.Policy) {
			if preferred := firstParent(inst); preferred != nil {
				dom.Events.Notify(Event{Kind: EventAddressRegistrationDue, Instance: inst.ID})
				inst.MarkAddressRegistered(now)
			}
		}
	}

	dom.PurgeEmptyInstances(1)
}

// Advance adds ticks to every Instance's MonotonicTicks, the free-running
// process-monotonic counter of spec.md §5. It is not independent of
// TickFast: TickFast adds one to the same counter on each call.
func (dom *Domain) Advance(ticks uint64) {
	for _, inst := range dom.Instances() {
		inst.MonotonicTicks += ticks
	}
}

// dominantDodag returns the DODAG belonging to the Instance's current
// DodagVersion, or nil if the Instance has none yet.
func (dom *Domain) dominantDodag(inst *Instance) *DODAG {
	if inst.CurrentVersion == nil {
		return nil
	}
	return inst.CurrentVersion.Dodag
}

func dodagID(d *DODAG) DodagID {
	if d == nil {
		return DodagID{}
	}
	return d.ID
}

func firstParent(inst *Instance) *Neighbour {
	parents := inst.neighbours.Parents()
	if len(parents) == 0 {
		return nil
	}
	return parents[0]
}
