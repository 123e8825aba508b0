// Package adapter provides reference, OS-facing implementations of
// [rplcore.Adapter] for use by standalone RPL harnesses. The core package
// never imports this one; it exists to show one real way of wiring the
// neighbour cache, route table, and packet transport a production node
// would need, the way internal/arpdb and internal/ipset do for AdGuard
// Home's DNS server.
package adapter

import (
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/bluele/gcache"
)

// linkKey identifies one (interface, neighbour) link for cache lookups.
type linkKey struct {
	ifaceID int
	addr    netip.Addr
}

// linkInfo is the cached state associated with a link.
type linkInfo struct {
	etxFP8     uint16
	retransMS  uint32
	reachable  bool
	lastUpdate time.Time
}

// Config configures a [Linux] adapter.
type Config struct {
	// Logger receives diagnostic messages. Must not be nil.
	Logger *slog.Logger

	// LinkCacheSize bounds the number of (interface, neighbour) entries
	// kept in the ETX/reachability cache.
	LinkCacheSize int

	// LinkCacheTTL expires a cached link entry that hasn't been refreshed.
	LinkCacheTTL time.Duration
}

// setDefaults fills zero-valued Config fields with the values the standalone
// harness ships with.
func (c *Config) setDefaults() {
	if c.LinkCacheSize <= 0 {
		c.LinkCacheSize = 4096
	}
	if c.LinkCacheTTL <= 0 {
		c.LinkCacheTTL = 5 * time.Minute
	}
}

// linkCache is the read-through cache shared by every OS-specific adapter:
// a bounded LRU of per-link ETX/reachability state, refreshed out-of-band by
// whatever collects it (netlink neighbour events, a link-quality probe).
type linkCache struct {
	mu    sync.Mutex
	cache gcache.Cache
}

func newLinkCache(conf *Config) *linkCache {
	builder := gcache.New(conf.LinkCacheSize).LRU().Expiration(conf.LinkCacheTTL)

	if conf.Logger != nil {
		builder = builder.EvictedFunc(func(key, _ interface{}) {
			lk := key.(linkKey)
			conf.Logger.Debug("adapter: link cache entry expired", "iface", lk.ifaceID, "addr", lk.addr)
		})
	}

	return &linkCache{cache: builder.Build()}
}

// update installs or refreshes the cached state for (ifaceID, addr).
func (lc *linkCache) update(ifaceID int, addr netip.Addr, etxFP8 uint16, retransMS uint32, reachable bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	_ = lc.cache.Set(linkKey{ifaceID, addr}, linkInfo{
		etxFP8:     etxFP8,
		retransMS:  retransMS,
		reachable:  reachable,
		lastUpdate: time.Now(),
	})
}

// updateReachability folds a freshly observed reachability state into the
// cache, preserving any ETX/retransmission-timer data already cached for
// the link instead of overwriting it with zero values.
func (lc *linkCache) updateReachability(ifaceID int, addr netip.Addr, reachable bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	key := linkKey{ifaceID, addr}

	info := linkInfo{}
	if v, err := lc.cache.Get(key); err == nil {
		info = v.(linkInfo)
	}

	info.reachable = reachable
	info.lastUpdate = time.Now()

	_ = lc.cache.Set(key, info)
}

func (lc *linkCache) get(ifaceID int, addr netip.Addr) (info linkInfo, ok bool) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	v, err := lc.cache.Get(linkKey{ifaceID, addr})
	if err != nil {
		return linkInfo{}, false
	}

	return v.(linkInfo), true
}

// Reachable implements [rplcore.Adapter] for *linkCache-backed adapters.
func (lc *linkCache) Reachable(ifaceID int, addr netip.Addr) (ok bool) {
	info, found := lc.get(ifaceID, addr)
	return found && info.reachable
}

// RetransTimerMS implements [rplcore.Adapter] for *linkCache-backed
// adapters.
func (lc *linkCache) RetransTimerMS(ifaceID int, addr netip.Addr) (ms uint32, ok bool) {
	info, found := lc.get(ifaceID, addr)
	if !found {
		return 0, false
	}
	return info.retransMS, true
}

// ReadETX implements [rplcore.Adapter] for *linkCache-backed adapters.
func (lc *linkCache) ReadETX(ifaceID int, addr netip.Addr) (etxFP8 uint16, ok bool) {
	info, found := lc.get(ifaceID, addr)
	if !found {
		return 0, false
	}
	return info.etxFP8, true
}

var _ interface {
	Reachable(int, netip.Addr) bool
	RetransTimerMS(int, netip.Addr) (uint32, bool)
	ReadETX(int, netip.Addr) (uint16, bool)
} = (*linkCache)(nil)
