//go:build !linux

package adapter

import (
	"context"
	"net"
	"net/netip"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/lowpan/rplcore"
	"github.com/lowpan/rplcore/internal/neighdisc"
)

// Linux is unavailable outside Linux: rtnetlink, netfilter, and AF_PACKET
// raw sockets are all Linux-specific, the same constraint internal/ipset
// and internal/arpdb's OS-gated implementations carry. It embeds
// [rplcore.Empty] purely so the type still satisfies [rplcore.Adapter] on
// every platform this package builds on; [NewLinux] never actually returns
// one.
type Linux struct {
	rplcore.Empty
}

// NewLinux always fails on non-Linux platforms.
func NewLinux(_ *Config, _ *net.Interface, _ netip.Addr) (l *Linux, err error) {
	return nil, errors.Error("adapter: linux adapter unsupported on this platform")
}

func (*Linux) Close() (err error) { return nil }

// RefreshNeighbours is unreachable: [NewLinux] never returns a non-nil
// *Linux on this platform. It exists so callers built with the same source
// on every platform don't need a build-tagged call site.
func (*Linux) RefreshNeighbours(context.Context, neighdisc.Interface) (err error) { return nil }

var _ rplcore.Adapter = (*Linux)(nil)
