package rplcore

// RPLOption is the 4-byte Hop-by-Hop RPL option carried on every packet
// forwarded over a RPL route (spec.md §6 wire diagram):
//
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|O|R|F|0 0 0 0 0|   InstanceID  |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|          SenderRank (16)      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type RPLOption struct {
	Down            bool
	RankError       bool
	ForwardingError bool
	InstanceID      InstanceID
	SenderRank      uint16
}

// Encode packs opt into its 4-byte wire form.
func (opt RPLOption) Encode() (wire [4]byte) {
	var flags uint8
	if opt.Down {
		flags |= 0x80
	}
	if opt.RankError {
		flags |= 0x40
	}
	if opt.ForwardingError {
		flags |= 0x20
	}

	wire[0] = flags
	wire[1] = uint8(opt.InstanceID)
	wire[2] = uint8(opt.SenderRank >> 8)
	wire[3] = uint8(opt.SenderRank)

	return wire
}

// DecodeRPLOption parses a 4-byte wire form.
func DecodeRPLOption(wire [4]byte) (opt RPLOption) {
	opt.Down = wire[0]&0x80 != 0
	opt.RankError = wire[0]&0x40 != 0
	opt.ForwardingError = wire[0]&0x20 != 0
	opt.InstanceID = InstanceID(wire[1])
	opt.SenderRank = uint16(wire[2])<<8 | uint16(wire[3])

	return opt
}

// InsertOption builds the outgoing RPLOption for a packet transmitted over
// one of this Instance's routes (spec.md §4.6.1). versionDiscontinuity
// marks an upward packet crossing a DODAG-Version boundary, which forces
// SenderRank to INFINITE regardless of our own current rank.
func (inst *Instance) InsertOption(down, versionDiscontinuity bool) (opt RPLOption) {
	opt.Down = down
	opt.InstanceID = inst.ID

	if versionDiscontinuity && !down {
		opt.SenderRank = uint16(RankInfinite)
		return opt
	}

	minHopRankIncrease := uint16(256)
	if inst.CurrentVersion != nil && inst.CurrentVersion.Dodag != nil && inst.CurrentVersion.Dodag.Config != nil {
		minHopRankIncrease = inst.CurrentVersion.Dodag.Config.MinHopRankIncrease
	}

	opt.SenderRank = DAGRank(inst.CurrentRank, minHopRankIncrease)

	return opt
}

// CheckLoop implements the forwarding loop-detection rule of spec.md
// §4.6.2: compare the option's SenderRank to our current rank's DAGRank.
// The expected direction is Less for a Down-flagged packet, Greater for
// Up; equal is itself an inconsistency (it would hide a sibling loop).
//
// On a first violation the Rank-Error bit is set and the packet proceeds;
// on a second violation (Rank-Error already set) the packet must be
// dropped and a route-loop counted.
func (inst *Instance) CheckLoop(opt *RPLOption) (drop bool) {
	minHopRankIncrease := uint16(256)
	if inst.CurrentVersion != nil && inst.CurrentVersion.Dodag != nil && inst.CurrentVersion.Dodag.Config != nil {
		minHopRankIncrease = inst.CurrentVersion.Dodag.Config.MinHopRankIncrease
	}

	cmp := CompareDAGRank(opt.SenderRank, inst.CurrentRank, minHopRankIncrease)

	var consistent bool
	if opt.Down {
		consistent = cmp == CmpLess
	} else {
		consistent = cmp == CmpGreater
	}

	if consistent {
		return false
	}

	if opt.RankError {
		return true
	}

	opt.RankError = true
	return false
}
