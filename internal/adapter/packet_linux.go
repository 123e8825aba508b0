//go:build linux

package adapter

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lowpan/rplcore"
	"github.com/mdlayher/ethernet"
	"github.com/mdlayher/packet"
)

// controlSocket sends RPL ICMPv6 control messages (DIS/DIO/DAO) as
// raw link-layer frames, following the same raw AF_PACKET send path
// internal/dhcpd's conn_linux.go uses for unicasting DHCPOFFER/DHCPACK to a
// not-yet-configured client.
type controlSocket struct {
	conn   net.PacketConn
	iface  *net.Interface
	srcIP  netip.Addr
	srcMAC net.HardwareAddr
}

func newControlSocket(iface *net.Interface, srcIP netip.Addr) (cs *controlSocket, err error) {
	conn, err := packet.Listen(iface, packet.Raw, int(ethernet.EtherTypeIPv6), nil)
	if err != nil {
		return nil, fmt.Errorf("opening raw ipv6 socket on %s: %w", iface.Name, err)
	}

	return &controlSocket{
		conn:   conn,
		iface:  iface,
		srcIP:  srcIP,
		srcMAC: iface.HardwareAddr,
	}, nil
}

func (cs *controlSocket) Close() (err error) { return cs.conn.Close() }

// icmpv6RPLControl is the ICMPv6 type carrying RPL control messages
// (RFC 6550 §6), with codes for DIS (0x00), DIO (0x01), DAO (0x02), and
// DAO-ACK (0x03).
const icmpv6RPLControl = 155

// sendControl builds an Ethernet/IPv6/ICMPv6 frame carrying an RPL control
// message body and either broadcasts it to the link-local all-RPL-nodes
// multicast group or unicasts it to dst, depending on whether dst is valid.
func (cs *controlSocket) sendControl(code uint8, body []byte, dst netip.Addr) (err error) {
	dstIP := net.ParseIP("ff02::1a")
	dstMAC := net.HardwareAddr{0x33, 0x33, 0x00, 0x00, 0x00, 0x1a}
	if dst.IsValid() {
		dstIP = net.IP(dst.AsSlice())
		dstMAC = nil // resolved by the neighbour cache in a full implementation.
	}

	ip6 := &layers.IPv6{
		Version:    6,
		HopLimit:   255,
		NextHeader: layers.IPProtocolICMPv6,
		SrcIP:      net.IP(cs.srcIP.AsSlice()),
		DstIP:      dstIP,
	}
	icmp := &layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(icmpv6RPLControl, code),
	}
	_ = icmp.SetNetworkLayerForChecksum(ip6)

	eth := &layers.Ethernet{
		SrcMAC:       cs.srcMAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv6,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	err = gopacket.SerializeLayers(buf, opts, eth, ip6, icmp, gopacket.Payload(body))
	if err != nil {
		return fmt.Errorf("serializing rpl control frame: %w", err)
	}

	addr := &packet.Addr{HardwareAddr: dstMAC}
	if addr.HardwareAddr == nil {
		addr.HardwareAddr = net.HardwareAddr{0x33, 0x33, 0x00, 0x00, 0x00, 0x1a}
	}

	_, err = cs.conn.WriteTo(buf.Bytes(), addr)
	if err != nil {
		return fmt.Errorf("writing rpl control frame: %w", err)
	}

	return nil
}

// SendDIS implements [rplcore.Adapter].
func (cs *controlSocket) SendDIS(_ rplcore.InstanceID, _ int, unicastTo netip.Addr) (err error) {
	return cs.sendControl(0x00, nil, unicastTo)
}

// SendDIO implements [rplcore.Adapter]. carryConfig is a placeholder for the
// caller's decision to include the DODAG Configuration option; the reference
// adapter always sends the minimal base DIO body since it doesn't track
// Policy state itself.
func (cs *controlSocket) SendDIO(
	_ rplcore.InstanceID,
	_ rplcore.DodagID,
	unicastTo netip.Addr,
	_ bool,
) (err error) {
	return cs.sendControl(0x01, nil, unicastTo)
}

// SendDAO implements [rplcore.Adapter].
func (cs *controlSocket) SendDAO(_ rplcore.InstanceID, nextHop netip.Addr, _ rplcore.SequenceCounter) (err error) {
	return cs.sendControl(0x02, nil, nextHop)
}

// SendParameterProblem implements [rplcore.Adapter] by emitting an ICMPv6
// Parameter Problem pointing at the byte offset that failed validation
// (spec.md §4.6.5 / RFC 6554 §4.2).
func (cs *controlSocket) SendParameterProblem(pkt []byte, pointer uint32) (err error) {
	icmp := &layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeParameterProblem, 0),
	}
	return cs.sendRawICMPError(icmp, pointer, pkt)
}

// SendDestUnreachable implements [rplcore.Adapter].
func (cs *controlSocket) SendDestUnreachable(pkt []byte) (err error) {
	icmp := &layers.ICMPv6{
		TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeDestinationUnreachable, 0),
	}
	return cs.sendRawICMPError(icmp, 0, pkt)
}

func (cs *controlSocket) sendRawICMPError(icmp *layers.ICMPv6, pointer uint32, original []byte) (err error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: false}

	body := make([]byte, 4+len(original))
	body[0] = byte(pointer >> 24)
	body[1] = byte(pointer >> 16)
	body[2] = byte(pointer >> 8)
	body[3] = byte(pointer)
	copy(body[4:], original)

	err = gopacket.SerializeLayers(buf, opts, icmp, gopacket.Payload(body))
	if err != nil {
		return fmt.Errorf("serializing icmpv6 error: %w", err)
	}

	_, err = cs.conn.WriteTo(buf.Bytes(), &packet.Addr{HardwareAddr: cs.srcMAC})
	if err != nil {
		return fmt.Errorf("writing icmpv6 error: %w", err)
	}

	return nil
}
