package rplcore

import "sort"

// mrhofETX maps a raw, possibly-absent link metric (fixed-point x256, 0
// meaning "no ETX service available") to MRHOF's working ETX in RFC 6551
// form (x128): "no ETX service" is charged a good default of 128 (ETX
// 1.0), a link explicitly reporting 0xFFFF is infinite, and any other value
// is halved to convert x256 to x128. There is no separate
// "unknown"/not-yet-probed class: such a link is charged by the value it
// reports, like any other.
func mrhofETX(linkMetricFP8 uint16) (etx uint16) {
	switch linkMetricFP8 {
	case 0:
		return 128 // no ETX service: assume a good link.
	case 0xFFFF:
		return uint16(RankInfinite)
	default:
		return linkMetricFP8 >> 1
	}
}

// objectiveFunctionMRHOF implements MRHOF (RFC 6719), OCP 1: a cumulative
// path-ETX metric with parent-switch hysteresis.
type objectiveFunctionMRHOF struct{}

func newMRHOF() *objectiveFunctionMRHOF { return &objectiveFunctionMRHOF{} }

var _ ObjectiveFunction = (*objectiveFunctionMRHOF)(nil)

// OCP implements the [ObjectiveFunction] interface for
// *objectiveFunctionMRHOF.
func (*objectiveFunctionMRHOF) OCP() uint16 { return 1 }

// NeighbourAcceptable implements the [ObjectiveFunction] interface for
// *objectiveFunctionMRHOF: a candidate is rejected outright once its link
// metric reaches the configured ceiling, or once it has accumulated too
// many address-registration failures.
func (*objectiveFunctionMRHOF) NeighbourAcceptable(c Candidate, p *Policy) (ok bool) {
	if c.Rank == RankInfinite {
		return false
	}
	if mrhofETX(c.LinkMetricFP8) > p.MRHOFMaxLinkMetricFP8 {
		return false
	}
	if p.MaxAddrRegFailures > 0 && c.AddrRegFailures >= p.MaxAddrRegFailures {
		return false
	}
	return true
}

// pathCostOf returns the cumulative path ETX to the root through c: the
// neighbour's own path cost (carried as its Rank, under MRHOF) plus the
// ETX of the link to it.
func (*objectiveFunctionMRHOF) pathCostOf(c Candidate) (cost uint32) {
	return uint32(c.Rank) + uint32(mrhofETX(c.LinkMetricFP8))
}

// ParentSelection implements the [ObjectiveFunction] interface for
// *objectiveFunctionMRHOF: candidates are ordered by cumulative path cost,
// but the current preferred parent is kept unless some other candidate
// beats it by more than ParentSwitchThreshold, per RFC 6719 §3.3.
func (o *objectiveFunctionMRHOF) ParentSelection(
	candidates []Candidate,
	current *NeighbourID,
	p *Policy,
) (preferred *Candidate, backups []Candidate) {
	acceptable := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if o.NeighbourAcceptable(c, p) {
			acceptable = append(acceptable, c)
		}
	}

	if len(acceptable) == 0 {
		return nil, nil
	}

	sort.SliceStable(acceptable, func(i, j int) bool {
		return o.pathCostOf(acceptable[i]) < o.pathCostOf(acceptable[j])
	})

	best := acceptable[0]

	if current != nil {
		for _, c := range acceptable {
			if c.ID != *current {
				continue
			}
			bestCost, curCost := o.pathCostOf(best), o.pathCostOf(c)
			if c.ID != best.ID && curCost <= bestCost+uint32(p.MRHOFParentSwitchThresholdFP8) {
				best = c
			}
			break
		}
	}

	stretchLimit := o.pathCostOf(best) + uint32(p.MRHOFMaxRankStretchForExtraParents)

	budget := int(p.MRHOFParentSetSize) - 1
	if budget < 0 {
		budget = 0
	}

	for _, c := range acceptable {
		if len(backups) >= budget {
			break
		}
		if c.ID == best.ID {
			continue
		}
		if o.pathCostOf(c) > stretchLimit {
			continue
		}
		backups = append(backups, c)
	}

	return &best, backups
}

// PathCost implements the [ObjectiveFunction] interface for
// *objectiveFunctionMRHOF: this node's Rank is the cumulative path ETX
// through the preferred parent, mapped into the DODAG's rank space via
// minHopRankIncrease so it remains comparable to other Objective Functions'
// Ranks within the same DODAG.
func (o *objectiveFunctionMRHOF) PathCost(preferred Candidate, minHopRankIncrease uint16, p *Policy) (rank Rank) {
	cost := o.pathCostOf(preferred)
	if cost >= uint32(RankInfinite) {
		return RankInfinite
	}

	next := RankNextLevel(preferred.Rank, minHopRankIncrease)
	if Rank(cost) < next {
		return next
	}

	return Rank(cost)
}

func init() {
	RegisterObjectiveFunction(newMRHOF())
}
