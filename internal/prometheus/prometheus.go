// Package prometheus exposes an RPL domain's metrics registry over HTTP.
package prometheus

import (
	"net"
	"net/http"
	"strconv"

	"github.com/AdguardTeam/golibs/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics HTTP server.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	BindHost string `yaml:"bind_host"`
	BindPort int    `yaml:"bind_port"`
}

// Server serves a Prometheus registry's metrics over HTTP. Unlike a
// package-global-registry server, Server is handed an already-populated
// *prometheus.Registry (internal/metrics.Register's target), so the set of
// exposed metrics is the caller's decision, not a package-init side effect.
type Server struct {
	conf Config
	mux  *http.ServeMux
}

// Create builds a Server for registry. If conf.Enabled is false, Start is a
// no-op.
func Create(conf Config, registry *prometheus.Registry) (s *Server) {
	s = &Server{conf: conf}
	if !conf.Enabled {
		return s
	}

	s.mux = http.NewServeMux()
	s.mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return s
}

// Start runs the HTTP server in the background. It does nothing if the
// server isn't enabled.
func (s *Server) Start() {
	if !s.conf.Enabled {
		return
	}

	addr := net.JoinHostPort(s.conf.BindHost, strconv.Itoa(s.conf.BindPort))
	go func() {
		if err := http.ListenAndServe(addr, s.mux); err != nil {
			log.Error("prometheus: serving metrics on %s: %s", addr, err)
		}
	}()
}
