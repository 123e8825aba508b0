package rplcore

import "net/netip"

// SourceRoutingHeader is the in-memory form of an RFC 6554 Routing Type 3
// header (spec.md §6 wire diagram). Addresses holds every hop after the
// first, which is instead carried in the IPv6 destination field.
type SourceRoutingHeader struct {
	SegmentsLeft uint8
	CmprI        uint8
	CmprE        uint8
	Addresses    []netip.Addr
}

func commonPrefixLen(a, b netip.Addr) (n uint8) {
	ab, bb := a.As16(), b.As16()
	for i := 0; i < 16; i++ {
		if ab[i] != bb[i] {
			return uint8(i)
		}
	}
	return 16
}

// commonPrefixAmong returns the longest prefix (in bytes) shared by every
// address in addrs.
func commonPrefixAmong(addrs []netip.Addr) (n uint8) {
	if len(addrs) < 2 {
		return 0
	}
	n = 16
	for i := 1; i < len(addrs); i++ {
		if c := commonPrefixLen(addrs[0], addrs[i]); c < n {
			n = c
		}
	}
	return n
}

// BuildSourceRoutingHeader implements spec.md §4.6.4: compute the
// intermediate hop list via [Instance.ComputeSourceRoute], choose
// compression parameters, and truncate to hopLimit when tunnelling (RFC
// 6554 §4.1). A nil header with a nil error means "no SRH required": the
// path is a single hop and the caller falls back to the HbH option alone
// (spec.md §8 boundary behaviour).
func (inst *Instance) BuildSourceRoutingHeader(
	finalDest NeighbourID,
	targetAddr [16]byte,
	bits int,
	hopLimit uint8,
	tunnelling bool,
	p *Policy,
	cache *SourceRouteCache,
) (srh *SourceRoutingHeader, firstHop netip.Addr, err error) {
	hops, err := inst.ComputeSourceRoute(finalDest, targetAddr, bits, cache)
	if err != nil {
		return nil, netip.Addr{}, err
	}

	full := make([]netip.Addr, 0, len(hops)+1)
	full = append(full, hops...)
	full = append(full, finalDest)

	if tunnelling && len(full) > int(hopLimit) {
		full = full[:hopLimit]
	}

	if len(full) > int(p.SRHMaxHops) {
		return nil, netip.Addr{}, ErrUnreachable
	}

	if len(full) == 0 {
		return nil, netip.Addr{}, nil
	}

	firstHop = full[0]
	remaining := full[1:]

	if len(remaining) == 0 {
		// Single-hop non-storing path: no SRH required.
		return nil, firstHop, nil
	}

	cmprI := commonPrefixAmong(remaining[:len(remaining)-1])

	var cmprE uint8
	if len(remaining) >= 2 {
		cmprE = commonPrefixLen(remaining[len(remaining)-2], remaining[len(remaining)-1])
	} else {
		cmprE = commonPrefixLen(firstHop, remaining[0])
	}

	// Conservative open-question decision (spec.md §9): keep cmprE <= cmprI.
	if cmprE > cmprI {
		cmprE = cmprI
	}

	return &SourceRoutingHeader{
		SegmentsLeft: uint8(len(remaining)),
		CmprI:        cmprI,
		CmprE:        cmprE,
		Addresses:    append([]netip.Addr(nil), remaining...),
	}, firstHop, nil
}

// ProcessSourceRoutingHeader implements spec.md §4.6.5 (RFC 6554 §4.2):
// validates segments_left, decrements it, swaps the IPv6 destination with
// the indexed address, detects self-loops on this interface, and consults
// the link-gating policy. errPointer is meaningful when err is
// ErrBadParameter or ErrRouteLoop, giving the byte offset for an ICMPv6
// Parameter Problem (8+i for a loop, i being the swapped address's index).
func ProcessSourceRoutingHeader(
	srh *SourceRoutingHeader,
	dst netip.Addr,
	ifaceID int,
	localAddrs func(netip.Addr) bool,
	p *Policy,
	linkETXFP8 uint16,
) (newDst netip.Addr, errPointer uint32, err error) {
	if int(srh.SegmentsLeft) > len(srh.Addresses) {
		return netip.Addr{}, 3, ErrBadParameter
	}

	if srh.SegmentsLeft == 0 {
		return dst, 0, nil
	}

	srh.SegmentsLeft--
	i := len(srh.Addresses) - 1 - int(srh.SegmentsLeft)
	if i < 0 || i >= len(srh.Addresses) {
		return netip.Addr{}, 3, ErrBadParameter
	}

	next := srh.Addresses[i]
	srh.Addresses[i] = dst

	localCount := 0
	for j := i; j < len(srh.Addresses); j++ {
		if localAddrs(srh.Addresses[j]) {
			localCount++
			if localCount > 1 {
				return netip.Addr{}, uint32(8 + i), ErrRouteLoop
			}
		}
	}

	if !p.SRHNextHopInterface(linkETXFP8) {
		return netip.Addr{}, 0, ErrUnreachable
	}

	return next, 0, nil
}
