package rplcore

import "time"

// DIOMessage is a parsed DODAG Information Object, as handed to the core
// by the transport (spec.md §4.4.1).
type DIOMessage struct {
	InstanceID InstanceID
	Version    SequenceCounter
	Rank       Rank
	GMopPrf    uint8
	DTSN       SequenceCounter
	DodagID    DodagID
	Config     *DodagConfig
	Prefixes   []Prefix
	Routes     []Route
	Source     NeighbourID
	IfaceID    int
}

// decodeGMopPrf splits the DIO base object's packed Grounded/MOP/Prf byte
// (RFC 6550 §6.3.1).
func decodeGMopPrf(b uint8) (grounded bool, mop uint8, prf uint8) {
	grounded = b&0x80 != 0
	mop = (b >> 3) & 0x07
	prf = b & 0x07
	return grounded, mop, prf
}

// ReceiveDIO implements spec.md §4.4.1: the core creates/looks up the
// Instance, DODAG, and DodagVersion named by msg, runs the join_* policy
// gate, upserts the sending Neighbour, conditionally applies a carried
// config, adopts prefixes and routes, and schedules delayed parent
// selection.
func (dom *Domain) ReceiveDIO(msg DIOMessage, now time.Time) (err error) {
	if !dom.Policy.JoinInstance(uint8(msg.InstanceID), msg.DodagID.As16()) {
		return nil
	}

	inst, _ := dom.UpsertInstance(msg.InstanceID)

	grounded, _, prf := decodeGMopPrf(msg.GMopPrf)
	if !dom.Policy.JoinDodag(msg.GMopPrf, uint8(msg.InstanceID), msg.DodagID.As16()) {
		return nil
	}

	dodag, _ := inst.UpsertDodag(msg.DodagID)
	dodag.LastActivity = now

	leafOnly := dom.ForceLeaf
	if msg.Config != nil {
		ok, forceLeaf := dom.Policy.JoinConfig(msg.Config)
		if !ok {
			return nil
		}
		leafOnly = leafOnly || forceLeaf
	}

	hardRankLimit := RankInfinite
	greedinessLimit := RankInfinite
	if msg.Config != nil && msg.Config.MaxRankIncrease > 0 {
		hardRankLimit = AddRank(msg.Rank, msg.Config.MaxRankIncrease)
		greedinessLimit = hardRankLimit
	}

	version := dodag.UpsertVersion(msg.Version, hardRankLimit, greedinessLimit)

	n := inst.neighbours.Find(msg.Source)
	if n == nil {
		n = &Neighbour{Addr: msg.Source, InterfaceID: msg.IfaceID}
		inst.neighbours.Add(n)
	}
	n.Version = version
	n.Rank = msg.Rank
	n.DTSN = msg.DTSN
	n.DIOTimestamp = now
	n.AdvertisedPref = prf

	dodag.Grounded = grounded

	isPreferredParent := n.DodagParent && n.DodagPref == 0
	if (isPreferredParent || !dodag.HaveConfig) && msg.Config != nil {
		dodag.Config = msg.Config
		dodag.HaveConfig = true
		dodag.Leaf = leafOnly

		if inst.DIOTrickle != nil {
			inst.DIOTrickle.SetParams(trickleParamsFromConfig(msg.Config))
		}

		p := dom.Policy
		inst.NewConfigAdvertisementCount = p.MulticastConfigMinAdvertisementCount
	}

	for _, pfx := range msg.Prefixes {
		upsertPrefix(dodag, pfx)
	}
	dodag.Routes = mergeRoutes(dodag.Routes, msg.Routes)

	inst.ParentSelectionDelayTicks = uint32(dom.Policy.DIOParentSelectionDelayS) * 10

	return nil
}

// trickleParamsFromConfig derives Trickle's (Imin, doublings, k) from a
// DODAG config's DIO interval fields, converted to 100ms ticks (spec.md
// §4.4.4).
func trickleParamsFromConfig(conf *DodagConfig) TrickleParams {
	imin := uint32(1) << conf.DIOIntervalMin
	imin = imin / 100 // conf.DIOIntervalMin is already in ms-exponent form upstream
	if imin == 0 {
		imin = 1
	}

	return TrickleParams{
		IntervalMinTicks:   imin,
		IntervalDoublings:  conf.DIOIntervalDoubl,
		RedundancyConstant: conf.DIORedundancy,
	}
}

// upsertPrefix adopts pfx into dodag's prefix list, replacing any existing
// entry for the same network.
func upsertPrefix(dodag *DODAG, pfx Prefix) {
	for i, existing := range dodag.Prefixes {
		if existing.Addr == pfx.Addr {
			dodag.Prefixes[i] = pfx
			return
		}
	}
	dodag.Prefixes = append(dodag.Prefixes, pfx)
}

// mergeRoutes merges incoming Route Information Options into current,
// replacing entries for the same prefix.
func mergeRoutes(current []Route, incoming []Route) []Route {
	for _, r := range incoming {
		replaced := false
		for i, existing := range current {
			if existing.Prefix == r.Prefix {
				current[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			current = append(current, r)
		}
	}
	return current
}
