package main

import (
	"testing"

	"github.com/lowpan/rplcore"
)

func TestBuildAdapterFallsBackToEmpty(t *testing.T) {
	cfg := defaultConfig()

	a, linuxAdapter := buildAdapter(cfg)
	if _, ok := a.(rplcore.Empty); !ok {
		t.Errorf("expected rplcore.Empty with no iface configured, got %T", a)
	}
	if linuxAdapter != nil {
		t.Errorf("expected nil linuxAdapter with no iface configured, got %v", linuxAdapter)
	}
}
