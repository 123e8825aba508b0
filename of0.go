package rplcore

import "sort"

// of0StepTable maps a measured link ETX (fixed-point x256) to an integer
// "step count" in 1..10, following the zero-indexed thresholds of the
// nanostack OF0 reference implementation: a near-perfect link (ETX <= 1.0)
// costs a single step, while a link at or beyond the last threshold is
// charged the maximum of 10 steps.
var of0StepTable = [...]uint16{
	0x100, 0x108, 0x110, 0x120, 0x140, 0x180, 0x200, 0x400, 0xFFFE, 0xFFFF,
}

// of0SuitableStepOfRank is the step count assigned to a link with no
// measured ETX, matching the reference's SUITABLE_STEP_OF_RANK.
const of0SuitableStepOfRank = 8

func of0StepFromETX(linkMetricFP8 uint16) (step uint16) {
	if linkMetricFP8 == 0 {
		return of0SuitableStepOfRank
	}
	for i, threshold := range of0StepTable {
		if linkMetricFP8 <= threshold {
			return uint16(i + 1)
		}
	}
	return uint16(len(of0StepTable))
}

// objectiveFunction0 implements OF0 (RFC 6552), OCP 0: the simplest
// Objective Function, whose Rank computation is a per-hop step count rather
// than a cumulative path metric.
type objectiveFunction0 struct{}

func newOF0() *objectiveFunction0 { return &objectiveFunction0{} }

var _ ObjectiveFunction = (*objectiveFunction0)(nil)

// OCP implements the [ObjectiveFunction] interface for *objectiveFunction0.
func (*objectiveFunction0) OCP() uint16 { return 0 }

// NeighbourAcceptable implements the [ObjectiveFunction] interface for
// *objectiveFunction0: a candidate is rejected if its Rank is infinite, if
// its link step reaches the unreachable range (step > SUITABLE_STEP_OF_RANK,
// spec.md §4.3.1), or if it has accumulated too many address-registration
// failures.
func (*objectiveFunction0) NeighbourAcceptable(c Candidate, p *Policy) (ok bool) {
	if c.Rank == RankInfinite {
		return false
	}
	if of0StepFromETX(c.LinkMetricFP8) > of0SuitableStepOfRank {
		return false
	}
	if p.MaxAddrRegFailures > 0 && c.AddrRegFailures >= p.MaxAddrRegFailures {
		return false
	}
	return true
}

// ParentSelection implements the [ObjectiveFunction] interface for
// *objectiveFunction0, following the reference's candidate ladder: lower
// Rank wins, ties broken by lower step count, then by DAG preference, then
// by keeping the current preferred parent to avoid unnecessary churn.
func (o *objectiveFunction0) ParentSelection(
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
		return o.less(acceptable[i], acceptable[j], current, p)
	})

	best := acceptable[0]
	stretchLimit := AddRank(best.Rank, p.OF0StretchOfRank)

	backupBudget := int(p.OF0MaxBackupSuccessors)
	for _, c := range acceptable[1:] {
		if len(backups) >= backupBudget {
			break
		}
		if c.ID == best.ID {
			continue
		}
		if c.Rank > stretchLimit {
			continue
		}
		backups = append(backups, c)
	}

	return &best, backups
}

// less implements the candidate ordering used by ParentSelection.
func (o *objectiveFunction0) less(a, b Candidate, current *NeighbourID, p *Policy) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}

	stepA, stepB := of0StepFromETX(a.LinkMetricFP8), of0StepFromETX(b.LinkMetricFP8)
	if stepA != stepB {
		return stepA < stepB
	}

	if p.OF0DodagPreferenceSupersedesGrounded {
		if a.DAGPreference != b.DAGPreference {
			return a.DAGPreference > b.DAGPreference
		}
		if a.Grounded != b.Grounded {
			return a.Grounded
		}
	} else {
		if a.Grounded != b.Grounded {
			return a.Grounded
		}
		if a.DAGPreference != b.DAGPreference {
			return a.DAGPreference > b.DAGPreference
		}
	}

	if current != nil {
		if a.ID == *current {
			return true
		}
		if b.ID == *current {
			return false
		}
	}

	return a.ID.Compare(b.ID) < 0
}

// PathCost implements the [ObjectiveFunction] interface for
// *objectiveFunction0: Rank increase through a neighbour is
// `rank_factor * step * min_hop_rank_increase` (spec.md §4.3.1), added to
// the neighbour's own Rank.
func (*objectiveFunction0) PathCost(preferred Candidate, minHopRankIncrease uint16, p *Policy) (rank Rank) {
	step := uint32(of0StepFromETX(preferred.LinkMetricFP8))
	increase := step * uint32(p.OF0RankFactor) * uint32(minHopRankIncrease)
	if increase >= uint32(RankInfinite) {
		return RankInfinite
	}

	return AddRank(preferred.Rank, uint16(increase))
}

func init() {
	RegisterObjectiveFunction(newOF0())
}
