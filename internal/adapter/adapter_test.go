package adapter

import (
	"net/netip"
	"testing"
	"time"
)

func TestConfigSetDefaults(t *testing.T) {
	var conf Config
	conf.setDefaults()

	if conf.LinkCacheSize <= 0 {
		t.Errorf("expected a positive default LinkCacheSize, got %d", conf.LinkCacheSize)
	}
	if conf.LinkCacheTTL <= 0 {
		t.Errorf("expected a positive default LinkCacheTTL, got %s", conf.LinkCacheTTL)
	}
}

func TestLinkCacheMissIsNotOK(t *testing.T) {
	lc := newLinkCache(&Config{LinkCacheSize: 8, LinkCacheTTL: time.Minute})

	addr := netip.MustParseAddr("fe80::1")

	if _, ok := lc.get(1, addr); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	if lc.Reachable(1, addr) {
		t.Fatal("expected an unreachable result on an empty cache")
	}
	if _, ok := lc.ReadETX(1, addr); ok {
		t.Fatal("expected no ETX on an empty cache")
	}
}

func TestLinkCacheUpdateThenRead(t *testing.T) {
	lc := newLinkCache(&Config{LinkCacheSize: 8, LinkCacheTTL: time.Minute})

	addr := netip.MustParseAddr("fe80::1")
	lc.update(1, addr, 0x180, 1500, true)

	if !lc.Reachable(1, addr) {
		t.Fatal("expected the updated link to be reachable")
	}

	etx, ok := lc.ReadETX(1, addr)
	if !ok || etx != 0x180 {
		t.Errorf("expected etx 0x180, got %#x (ok=%v)", etx, ok)
	}

	ms, ok := lc.RetransTimerMS(1, addr)
	if !ok || ms != 1500 {
		t.Errorf("expected retrans timer 1500, got %d (ok=%v)", ms, ok)
	}

	// A different interface ID on the same address must miss.
	if lc.Reachable(2, addr) {
		t.Fatal("expected the link on a different interface to miss")
	}
}
