package prometheus_test

import (
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/lowpan/rplcore/internal/prometheus"
)

func TestCreateDisabled(t *testing.T) {
	registry := promclient.NewRegistry()

	s := prometheus.Create(prometheus.Config{Enabled: false}, registry)
	if s == nil {
		t.Fatal("expected a non-nil Server even when disabled")
	}

	// Start must be a safe no-op: no listener, no panic.
	s.Start()
}

func TestCreateEnabled(t *testing.T) {
	registry := promclient.NewRegistry()

	s := prometheus.Create(prometheus.Config{
		Enabled:  true,
		BindHost: "127.0.0.1",
		BindPort: 0,
	}, registry)
	if s == nil {
		t.Fatal("expected a non-nil Server")
	}
}
