package rplcore

import (
	"fmt"
	"math/rand/v2"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/validate"
)

// Policy is the process-wide, configurable set of thresholds, timeouts, and
// predicates consulted by every other component (spec.md §4.2). A zero
// Policy is not valid; use [NewPolicy] to get one with defaults applied.
type Policy struct {
	// randUint16 returns a uniform value in [0,0xFFFF]; overridden in tests
	// for deterministic stochastic link gating (§4.6.6).
	randUint16 func() uint16

	// ParentConfirmationRequested suppresses Trickle-driven DIO transmission
	// while the Instance's PendingNeighbourConfirmation is set, that is until
	// address registration with a parent completes.
	ParentConfirmationRequested bool

	// DAORetryCount is the number of DAO retransmissions before declaring
	// failure.
	DAORetryCount int8

	// InitialDAOAckWaitMS is the base DAO-ACK timeout, inflated by the
	// neighbour's retransmission timer when known (§4.5.2).
	InitialDAOAckWaitMS uint16

	// DIOValidityPeriodFP8 is a fixed-point (×256) multiple of Imax beyond
	// which a neighbour's DIO is considered stale.
	DIOValidityPeriodFP8 uint16

	// MulticastConfigMinAdvertisementCount is how many multicast DIOs after
	// a config change must carry the config option.
	MulticastConfigMinAdvertisementCount uint8

	// MRHOFParentSetSize bounds the MRHOF parent set (default 3).
	MRHOFParentSetSize uint8

	// AddressRegistrationTimeoutMin is the per-address registration refresh
	// interval.
	AddressRegistrationTimeoutMin uint16

	// ETXFullForwardFP8 is the ETX (×256) at or below which a link forwards
	// unconditionally.
	ETXFullForwardFP8 uint16

	// ETXFullDropFP8 is the ETX (×256) at or above which a link drops
	// unconditionally. Must be >= ETXFullForwardFP8.
	ETXFullDropFP8 uint16

	// ParentSelectionPeriodS is the periodic parent-selection interval
	// (default 600s).
	ParentSelectionPeriodS uint16

	// ETXHysteresisFP8 is the ETX (×256) change hysteresis that triggers a
	// parent-selection re-run (default 0.5 -> 0x80).
	ETXHysteresisFP8 uint16

	// DIOParentSelectionDelayS is the delay, after an accepted DIO, before
	// parent selection runs (§4.4.1 step 6).
	DIOParentSelectionDelayS uint16

	// ETXChangeParentSelectionDelayS is the delay after an ETX change before
	// parent selection re-runs.
	ETXChangeParentSelectionDelayS uint16

	// OF0StretchOfRank is the additional rank OF0 may take to accommodate
	// backup parents.
	OF0StretchOfRank uint16

	// OF0RankFactor is OF0's rank multiplier, 1..4.
	OF0RankFactor uint8

	// OF0DodagPreferenceSupersedesGrounded controls OF0's tie-break order.
	OF0DodagPreferenceSupersedesGrounded bool

	// OF0MaxBackupSuccessors bounds OF0's backup-parent budget.
	OF0MaxBackupSuccessors uint8

	// MRHOFMaxLinkMetricFP8 is MRHOF's neighbour-acceptance threshold
	// (default 512 -> ETX 4.0).
	MRHOFMaxLinkMetricFP8 uint16

	// MRHOFParentSwitchThresholdFP8 is the hysteresis MRHOF applies before
	// switching preferred parent.
	MRHOFParentSwitchThresholdFP8 uint16

	// MRHOFMaxRankStretchForExtraParents bounds the rank MRHOF may stretch
	// to accommodate extra parents (default 64).
	MRHOFMaxRankStretchForExtraParents uint16

	// RepairInitialDISDelayS is the initial DIS back-off delay during local
	// repair.
	RepairInitialDISDelayS uint16

	// RepairMaximumDISIntervalS caps the doubled DIS back-off interval.
	RepairMaximumDISIntervalS uint16

	// RepairDISCount is how many DIS messages are sent during repair before
	// LOCAL_REPAIR_NO_MORE_DIS is raised.
	RepairDISCount uint8

	// RepairPoisonCount is how many INFINITE-rank DIOs are sent while
	// poisoning a DODAG membership.
	RepairPoisonCount uint8

	// ForceTunnelToBR forces tunnelling to the root regardless of the final
	// destination.
	ForceTunnelToBR bool

	// HopLimitOnTunnel bounds the number of SRH hops synthesised when
	// tunnelling (RFC 6554 §4.1).
	HopLimitOnTunnel uint8

	// SRHMaxHops bounds the total length of a synthesised source route
	// (testable property 7, spec.md §8).
	SRHMaxHops uint8

	// MaxAddrRegFailures is the number of consecutive failed address
	// registrations with a candidate parent at which OF0 and MRHOF treat it as
	// unacceptable (supplemented feature, SPEC_FULL.md). A successful
	// registration ([Neighbour.RegisterAddressResult]) resets the count and
	// makes the candidate acceptable again.
	MaxAddrRegFailures uint8

	// DodagNoActivityTimeoutS is how long a non-root, not-current DODAG may
	// go without a DIO before [Instance.PurgeInactiveDodags] drops it
	// (spec.md §3 "purged after no-activity timeout when not in use"). Zero
	// disables the purge.
	DodagNoActivityTimeoutS uint32
}

// type check
var _ validate.Interface = (*Policy)(nil)

// NewPolicy returns a Policy populated with the defaults named throughout
// spec.md §4.2.
func NewPolicy() (p *Policy) {
	return &Policy{
		randUint16:                           func() uint16 { return uint16(rand.IntN(1 << 16)) },
		DAORetryCount:                        3,
		InitialDAOAckWaitMS:                  2000,
		DIOValidityPeriodFP8:                 384, // 1.5 * 256
		MulticastConfigMinAdvertisementCount: 3,
		MRHOFParentSetSize:                   3,
		AddressRegistrationTimeoutMin:        60,
		ETXFullForwardFP8:                    0x180, // ETX 1.5
		ETXFullDropFP8:                       0x600, // ETX 6.0
		ParentSelectionPeriodS:               600,
		ETXHysteresisFP8:                     0x80, // ETX 0.5
		DIOParentSelectionDelayS:             1,
		ETXChangeParentSelectionDelayS:       1,
		OF0StretchOfRank:                     0,
		OF0RankFactor:                        1,
		OF0MaxBackupSuccessors:               2,
		MRHOFMaxLinkMetricFP8:                512,
		MRHOFParentSwitchThresholdFP8:        192,
		MRHOFMaxRankStretchForExtraParents:   64,
		RepairInitialDISDelayS:               15,
		RepairMaximumDISIntervalS:            60,
		RepairDISCount:                       3,
		RepairPoisonCount:                    3,
		HopLimitOnTunnel:                     64,
		SRHMaxHops:                           32,
		MaxAddrRegFailures:                   3,
		DodagNoActivityTimeoutS:              3600,
	}
}

// Validate implements the [validate.Interface] interface for *Policy.
func (p *Policy) Validate() (err error) {
	if p == nil {
		return errors.ErrNoValue
	}

	errs := []error{
		validate.NotNegative("DAORetryCount", p.DAORetryCount),
		validate.Positive("MRHOFParentSetSize", p.MRHOFParentSetSize),
		validate.Positive("OF0RankFactor", p.OF0RankFactor),
	}

	if p.OF0RankFactor < 1 || p.OF0RankFactor > 4 {
		errs = append(errs, fmt.Errorf("OF0RankFactor: %w: must be 1..4", errors.ErrOutOfRange))
	}

	if p.ETXFullForwardFP8 > p.ETXFullDropFP8 {
		errs = append(errs, fmt.Errorf(
			"ETXFullForwardFP8 %d > ETXFullDropFP8 %d: %w",
			p.ETXFullForwardFP8, p.ETXFullDropFP8, errors.ErrOutOfRange,
		))
	}

	return errors.Join(errs...)
}

// SetETXThresholds sets the stochastic-gating ETX thresholds (§4.6.6),
// enforcing the invariant checked at this setter: forward <= drop.
func (p *Policy) SetETXThresholds(forwardFP8, dropFP8 uint16) (err error) {
	if forwardFP8 > dropFP8 {
		return fmt.Errorf("%w: etx_full_forward_fp8 %d > etx_full_drop_fp8 %d", ErrBadParameter, forwardFP8, dropFP8)
	}

	p.ETXFullForwardFP8 = forwardFP8
	p.ETXFullDropFP8 = dropFP8

	return nil
}

// JoinInstance reports whether the core should accept membership of the
// given Instance, first contact via a DIO naming instanceID/dodagID.
func (p *Policy) JoinInstance(instanceID uint8, dodagID [16]byte) (ok bool) {
	return true
}

// JoinDodag reports whether the core should accept membership of a DODAG
// advertising the given g_mop_prf byte.
func (p *Policy) JoinDodag(gMopPrf uint8, instanceID uint8, dodagID [16]byte) (ok bool) {
	return true
}

// JoinConfig enforces the config-level join invariants named in spec.md §3:
// authentication must be false, and min_hop_rank_increase must be nonzero.
// leafOnly reports whether the DODAG should be joined in forced-leaf mode
// (e.g. because its Objective Function is unrecognised).
func (p *Policy) JoinConfig(conf *DodagConfig) (ok bool, leafOnly bool) {
	if conf == nil {
		return false, false
	}
	if conf.Authentication {
		return false, false
	}
	if conf.MinHopRankIncrease == 0 {
		return false, false
	}

	_, known := objectiveFunctionFor(conf.ObjectiveCodePoint)

	return true, !known
}

// RequestDAOAcks reports whether DAOs for the given Mode of Operation should
// request an ACK.
func (p *Policy) RequestDAOAcks(mop uint8) (ok bool) {
	return true
}

// ModifyDownwardCostToRootNeighbour applies an ETX-weighted adjustment to a
// downward route's metric towards a root-adjacent neighbour (§4.2).
func (p *Policy) ModifyDownwardCostToRootNeighbour(etxFP8 uint16, cost uint16) (adjusted uint16) {
	if etxFP8 <= 0x100 {
		return cost
	}
	extra := uint32(etxFP8-0x100) / 0x100
	return uint16(minU32(uint32(cost)+extra, uint32(RankInfinite)))
}

// DAOTriggerAfterSRHError reports whether a source-routing error should
// increment DTSN, per §4.5.4: errors exceed 2x the target count since the
// last trigger.
func (p *Policy) DAOTriggerAfterSRHError(errorsSinceLastTrigger uint16, targetCount int) (ok bool) {
	return int(errorsSinceLastTrigger) > 2*targetCount
}

// SRHNextHopInterface implements the stochastic link-gating predicate of
// §4.6.6: forward unconditionally at or below ETXFullForwardFP8, drop
// unconditionally at or above ETXFullDropFP8, and otherwise drop with a
// probability linear in between.
func (p *Policy) SRHNextHopInterface(linkETXFP8 uint16) (accept bool) {
	switch {
	case linkETXFP8 >= p.ETXFullDropFP8:
		return false
	case linkETXFP8 <= p.ETXFullForwardFP8:
		return true
	}

	span := uint32(p.ETXFullDropFP8 - p.ETXFullForwardFP8)
	numerator := uint32(linkETXFP8-p.ETXFullForwardFP8) * 25600
	dropThreshold := numerator / span

	draw := uint32(p.randUint16Value()) % 25600

	return draw >= dropThreshold
}

// SetRandSource overrides the draw used by [Policy.SRHNextHopInterface]'s
// stochastic link gating, for deterministic tests.
func (p *Policy) SetRandSource(f func() uint16) {
	p.randUint16 = f
}

func (p *Policy) randUint16Value() uint16 {
	if p.randUint16 == nil {
		return uint16(rand.IntN(1 << 16))
	}
	return p.randUint16()
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
