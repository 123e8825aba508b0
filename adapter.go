package rplcore

import "net/netip"

// Adapter is the external-collaborator surface the core consumes from the
// surrounding IPv6 stack (spec.md §6): neighbour cache, ETX service, route
// table, and ICMPv6 emission. The core never holds these resources
// directly so that the transport can implement them however its platform
// requires (a fixed-pool allocator, a netlink-backed route table, etc).
type Adapter interface {
	// Reachable probes the neighbour cache for (ifaceID, addr).
	Reachable(ifaceID int, addr netip.Addr) (ok bool)

	// RetransTimerMS reads the neighbour cache's retransmission timer, used
	// to inflate the DAO-ACK wait (spec.md §4.5.2).
	RetransTimerMS(ifaceID int, addr netip.Addr) (ms uint32, ok bool)

	// ReadETX reads the link-quality service for (ifaceID, addr), in 8.8
	// fixed-point; ok is false when there is no ETX service for this link.
	ReadETX(ifaceID int, addr netip.Addr) (etxFP8 uint16, ok bool)

	// AddRoute installs or refreshes a system route.
	AddRoute(prefix netip.Prefix, ifaceID int, nextHop netip.Addr, source RouteSource, info uint32, lifetime uint32, metric uint16) (err error)

	// DeleteRouteByInfo removes every route carrying the given
	// (source, info) tag.
	DeleteRouteByInfo(source RouteSource, info uint32) (err error)

	// SendParameterProblem emits an ICMPv6 Parameter Problem for pkt,
	// pointing at byte offset pointer (spec.md §4.6.5).
	SendParameterProblem(pkt []byte, pointer uint32) (err error)

	// SendDestUnreachable emits an ICMPv6 Destination Unreachable /
	// Source Route Error for pkt (spec.md §4.6.5).
	SendDestUnreachable(pkt []byte) (err error)

	// SendDIO transmits a DIO; unicastTo is the zero Addr for a multicast
	// transmission.
	SendDIO(instance InstanceID, dodag DodagID, unicastTo netip.Addr, carryConfig bool) (err error)

	// SendDIS transmits a DODAG Information Solicitation.
	SendDIS(instance InstanceID, ifaceID int, unicastTo netip.Addr) (err error)

	// SendDAO transmits a DAO encoding the given Instance's current target
	// list towards nextHop.
	SendDAO(instance InstanceID, nextHop netip.Addr, sequence SequenceCounter) (err error)
}

// Empty is a no-op [Adapter], useful for tests and for standalone
// simulation harnesses that don't drive a real IPv6 stack. It follows the
// zero-value no-op adapter idiom used elsewhere in the ecosystem (e.g.
// arpdb.Empty, dhcpsvc.Empty).
type Empty struct{}

// type check
var _ Adapter = Empty{}

// Reachable implements the [Adapter] interface for Empty.
func (Empty) Reachable(_ int, _ netip.Addr) (ok bool) { return true }

// RetransTimerMS implements the [Adapter] interface for Empty.
func (Empty) RetransTimerMS(_ int, _ netip.Addr) (ms uint32, ok bool) { return 0, false }

// ReadETX implements the [Adapter] interface for Empty.
func (Empty) ReadETX(_ int, _ netip.Addr) (etxFP8 uint16, ok bool) { return 0, false }

// AddRoute implements the [Adapter] interface for Empty.
func (Empty) AddRoute(
	_ netip.Prefix,
	_ int,
	_ netip.Addr,
	_ RouteSource,
	_ uint32,
	_ uint32,
	_ uint16,
) (err error) {
	return nil
}

// DeleteRouteByInfo implements the [Adapter] interface for Empty.
func (Empty) DeleteRouteByInfo(_ RouteSource, _ uint32) (err error) { return nil }

// SendParameterProblem implements the [Adapter] interface for Empty.
func (Empty) SendParameterProblem(_ []byte, _ uint32) (err error) { return nil }

// SendDestUnreachable implements the [Adapter] interface for Empty.
func (Empty) SendDestUnreachable(_ []byte) (err error) { return nil }

// SendDIO implements the [Adapter] interface for Empty.
func (Empty) SendDIO(_ InstanceID, _ DodagID, _ netip.Addr, _ bool) (err error) { return nil }

// SendDIS implements the [Adapter] interface for Empty.
func (Empty) SendDIS(_ InstanceID, _ int, _ netip.Addr) (err error) { return nil }

// SendDAO implements the [Adapter] interface for Empty.
func (Empty) SendDAO(_ InstanceID, _ netip.Addr, _ SequenceCounter) (err error) { return nil }
