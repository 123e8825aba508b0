// Command rplsim is a standalone harness that runs an [rplcore.Domain]
// against either a real Linux adapter or the no-op [rplcore.Empty], driving
// its tick streams from wall-clock timers until interrupted.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdguardTeam/golibs/log"
	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/lowpan/rplcore"
	"github.com/lowpan/rplcore/internal/adapter"
	"github.com/lowpan/rplcore/internal/history"
	"github.com/lowpan/rplcore/internal/metrics"
	"github.com/lowpan/rplcore/internal/neighdisc"
	"github.com/lowpan/rplcore/internal/prometheus"
)

// neighbourRefreshInterval is how often the harness refreshes its IPv6
// neighbour table to feed link reachability into the adapter's cache.
const neighbourRefreshInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("rplsim: %s", err)
	}

	registry := promclient.NewRegistry()
	metrics.Register(registry)

	recent := history.New(history.DefaultSize)
	recent.Next = loggingSink{}

	a, linuxAdapter := buildAdapter(cfg)
	dom := rplcore.NewDomain(cfg.Policy, a, metrics.EventSink{Next: recent})
	dom.ForceLeaf = cfg.ForceLeaf

	promServer := prometheus.Create(cfg.Prometheus, registry)
	promServer.Start()

	runTicks(dom, linuxAdapter)
}

// loggingSink is an [rplcore.EventSink] that writes every event through
// golibs/log, the same "always log, metrics are additive" chain
// internal/metrics.EventSink is built to support.
type loggingSink struct{}

func (loggingSink) Notify(e rplcore.Event) {
	log.Info("rplsim: event %s instance=%d dodag=%s episode=%s", e.Kind, e.Instance, e.Dodag, e.Episode)
}

// buildAdapter returns the Linux adapter when cfg names an interface, or the
// no-op adapter otherwise. It also returns the concrete *adapter.Linux, or
// nil, so runTicks can drive its neighbour-table refresh separately from
// the rplcore.Adapter interface.
func buildAdapter(cfg *simConfig) (a rplcore.Adapter, linuxAdapter *adapter.Linux) {
	if cfg.Iface == "" {
		return rplcore.Empty{}, nil
	}

	iface, err := net.InterfaceByName(cfg.Iface)
	if err != nil {
		log.Fatalf("rplsim: looking up interface %s: %s", cfg.Iface, err)
	}

	srcIP, err := netip.ParseAddr(cfg.SourceAddr)
	if err != nil {
		log.Fatalf("rplsim: parsing source_addr %q: %s", cfg.SourceAddr, err)
	}

	l, err := adapter.NewLinux(&adapter.Config{Logger: slog.Default()}, iface, srcIP)
	if err != nil {
		log.Fatalf("rplsim: opening linux adapter on %s: %s", cfg.Iface, err)
	}

	return l, l
}

// runTicks drives dom's three tick streams (spec.md §5) from wall-clock
// timers until SIGINT/SIGTERM, mirroring the signal-driven run loop
// dhcpd/standalone/main.go and dnsforward/standalone/standalone.go use. When
// linuxAdapter is non-nil its IPv6 neighbour table is refreshed on the same
// loop.
func runTicks(dom *rplcore.Domain, linuxAdapter *adapter.Linux) {
	fast := time.NewTicker(100 * time.Millisecond)
	defer fast.Stop()

	slow := time.NewTicker(time.Second)
	defer slow.Stop()

	neigh := time.NewTicker(neighbourRefreshInterval)
	defer neigh.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var ticks uint64

	log.Info("rplsim: running")
	for {
		select {
		case now := <-fast.C:
			dom.TickFast(now)
			dom.Advance(1)
			ticks++
		case now := <-slow.C:
			dom.TickSlow(now)
		case <-neigh.C:
			if linuxAdapter == nil {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), neighbourRefreshInterval)
			if err := linuxAdapter.RefreshNeighbours(ctx, neighdisc.New()); err != nil {
				log.Error("rplsim: refreshing neighbours: %s", err)
			}
			cancel()
		case <-sig:
			log.Info("rplsim: shutting down after %d ticks", ticks)
			return
		}
	}
}
