//go:build linux

package adapter

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/lowpan/rplcore"
	"github.com/lowpan/rplcore/internal/neighdisc"
)

// Linux is the reference [rplcore.Adapter] implementation for a Linux RPL
// node: rtnetlink for routes, raw AF_PACKET sockets for RPL control traffic,
// and a bounded gcache read-through cache for the per-link ETX/reachability
// state a real deployment would get from a routing-layer probe.
type Linux struct {
	*linkCache
	*routeTable
	*controlSocket

	ifaceID int
}

// ForwardingErrorSet names the ipset a RouteSourceRPLFwdError route gets
// mirrored into.
const ForwardingErrorSet = "rpl_fwderr"

// NewLinux builds a [Linux] adapter bound to iface, using srcIP as the
// node's own RPL source address.
func NewLinux(conf *Config, iface *net.Interface, srcIP netip.Addr) (l *Linux, err error) {
	conf.setDefaults()

	rt, err := newRouteTable(ForwardingErrorSet)
	if err != nil {
		return nil, fmt.Errorf("opening route table: %w", err)
	}

	cs, err := newControlSocket(iface, srcIP)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("opening control socket: %w", err)
	}

	return &Linux{
		linkCache:     newLinkCache(conf),
		routeTable:    rt,
		controlSocket: cs,
		ifaceID:       iface.Index,
	}, nil
}

// RefreshNeighbours runs nd's neighbour-table refresh and folds each
// discovered link's reachability into the adapter's link cache, without
// disturbing any ETX/retransmission-timer data already cached for it.
func (l *Linux) RefreshNeighbours(ctx context.Context, nd neighdisc.Interface) (err error) {
	if err = nd.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing neighbour table: %w", err)
	}

	for _, n := range nd.Neighbors() {
		l.linkCache.updateReachability(l.ifaceID, n.IP, n.Reachable)
	}

	return nil
}

// Close releases the adapter's sockets.
func (l *Linux) Close() (err error) {
	rerr := l.routeTable.Close()
	cerr := l.controlSocket.Close()
	if rerr != nil {
		return rerr
	}
	return cerr
}

var _ rplcore.Adapter = (*Linux)(nil)
