package main

import (
	"fmt"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/lowpan/rplcore"
	"github.com/lowpan/rplcore/internal/prometheus"
	"gopkg.in/yaml.v3"
)

// simConfig is the standalone harness's on-disk configuration, following
// the same flat, inline-embedded YAML shape internal/home/config.go uses
// for AdGuard Home's top-level settings.
type simConfig struct {
	// Iface is the network interface to send/receive RPL control traffic
	// on. Empty runs with the no-op [rplcore.Empty] adapter instead of a
	// real Linux adapter.
	Iface string `yaml:"iface"`

	// SourceAddr is this node's own RPL source address.
	SourceAddr string `yaml:"source_addr"`

	// ForceLeaf mirrors [rplcore.Domain.ForceLeaf].
	ForceLeaf bool `yaml:"force_leaf"`

	Policy     *rplcore.Policy   `yaml:"policy"`
	Prometheus prometheus.Config `yaml:"prometheus"`
}

// defaultConfig returns a simConfig with [rplcore.NewPolicy]'s defaults and
// the metrics server disabled.
func defaultConfig() *simConfig {
	return &simConfig{
		Policy: rplcore.NewPolicy(),
	}
}

// loadConfig reads and validates a simConfig from path. An empty path
// returns defaultConfig() unchanged.
func loadConfig(path string) (cfg *simConfig, err error) {
	cfg = defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Policy == nil {
		return nil, errors.Error("config: policy section must not be empty")
	}

	if err = cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}

	return cfg, nil
}
