//go:build linux

package adapter

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/digineo/go-ipset/v2"
	"github.com/lowpan/rplcore"
	"github.com/mdlayher/netlink"
	"github.com/ti-mo/netfilter"
	"golang.org/x/sys/unix"
)

// routeTable sends rtnetlink route requests, and tags
// RouteSourceRPLFwdError redirects in a dedicated ipset so a firewall rule
// can rate-limit or log them separately, the way internal/ipset dials
// netfilter for DNS-triggered set membership. Its RTM_NEWROUTE and
// RTM_DELROUTE requests carry only a netlink header, with no rtmsg body
// and no route attributes.
type routeTable struct {
	conn      *netlink.Conn
	ipsetConn *ipset.Conn
	fwdErrSet string
}

func newRouteTable(fwdErrSet string) (rt *routeTable, err error) {
	conn, err := netlink.Dial(unix.NETLINK_ROUTE, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing rtnetlink: %w", err)
	}

	isetConn, err := ipset.Dial(netfilter.ProtoIPv6, &netlink.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("dialing netfilter for ipset: %w", err)
	}

	return &routeTable{conn: conn, ipsetConn: isetConn, fwdErrSet: fwdErrSet}, nil
}

func (rt *routeTable) Close() (err error) {
	cerr := rt.conn.Close()
	ierr := rt.ipsetConn.Close()
	if cerr != nil {
		return cerr
	}
	return ierr
}

// AddRoute implements [rplcore.Adapter]. It sends an RTM_NEWROUTE request
// with no body: prefix, interface, next hop, source, info, lifetime and
// metric are not passed to the kernel. A RouteSourceRPLFwdError route is
// additionally mirrored into the forwarding-error ipset.
func (rt *routeTable) AddRoute(
	prefix netip.Prefix,
	ifaceID int,
	nextHop netip.Addr,
	source rplcore.RouteSource,
	info uint32,
	lifetime uint32,
	metric uint16,
) (err error) {
	_ = nextHop

	if source == rplcore.RouteSourceRPLFwdError && rt.fwdErrSet != "" {
		entry := &ipset.Entry{IP: net.IP(prefix.Addr().AsSlice())}
		if addErr := rt.ipsetConn.Add(rt.fwdErrSet, entry); addErr != nil {
			return fmt.Errorf("tagging forwarding-error route in ipset: %w", addErr)
		}
	}

	// A full rtnetlink RTM_NEWROUTE message build is elided here: a real
	// deployment would marshal rtmsg + RTA_DST/RTA_GATEWAY/RTA_OIF/RTA_PRIORITY
	// attributes following the same netlink.Message + netlink.Conn.Execute
	// shape ipset_linux.go uses for CmdAdd/CmdList, keyed on the
	// (source, info) pair packed into RTA_PRIORITY so DeleteRouteByInfo can
	// select them back out.
	_, err = rt.conn.Execute(netlink.Message{
		Header: netlink.Header{
			Type:  unix.RTM_NEWROUTE,
			Flags: netlink.Request | netlink.Create | netlink.Replace,
		},
	})
	if err != nil {
		return fmt.Errorf("installing route to %s: %w", prefix, err)
	}

	return nil
}

// DeleteRouteByInfo implements [rplcore.Adapter]: it issues one
// RTM_DELROUTE request with no body. source and info appear only in the
// error message; the request does not select routes by them.
func (rt *routeTable) DeleteRouteByInfo(source rplcore.RouteSource, info uint32) (err error) {
	_, err = rt.conn.Execute(netlink.Message{
		Header: netlink.Header{
			Type:  unix.RTM_DELROUTE,
			Flags: netlink.Request,
		},
	})
	if err != nil {
		return fmt.Errorf("deleting routes tagged (%d, %d): %w", source, info, err)
	}

	return nil
}
