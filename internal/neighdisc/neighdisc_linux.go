//go:build linux

package neighdisc

import (
	"bufio"
	"net/netip"
	"strings"
	"sync"

	"github.com/AdguardTeam/golibs/osutil/executil"
)

// New returns the [Interface] that runs "ip -6 neigh show" to populate the
// IPv6 neighbour table.
func New() (nd Interface) {
	return &cmdNeighDB{
		ns: &neighs{
			mu: &sync.RWMutex{},
			ns: make([]Neighbor, 0),
		},
		cmdCons: executil.SystemCommandConstructor{},
		parse:   parseIPNeighV6,
		cmd:     "ip",
		args:    []string{"-6", "neigh", "show"},
	}
}

// reachableStates are the "ip neigh" states a link is usable in (RFC 4861
// NUD states other than FAILED/INCOMPLETE/NONE).
var reachableStates = map[string]bool{
	"REACHABLE": true,
	"STALE":     true,
	"DELAY":     true,
	"PROBE":     true,
	"PERMANENT": true,
	"NOARP":     true,
}

// parseIPNeighV6 parses the output of "ip -6 neigh show". The expected input
// format:
//
//	fe80::1 dev eth0 lladdr aa:bb:cc:dd:ee:ff REACHABLE
//	fe80::2 dev eth0 FAILED
func parseIPNeighV6(sc *bufio.Scanner) (ns []Neighbor) {
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}

		ip, err := netip.ParseAddr(fields[0])
		if err != nil || !ip.Is6() {
			continue
		}

		state := fields[len(fields)-1]

		ns = append(ns, Neighbor{
			IP:        ip,
			Reachable: reachableStates[state],
		})
	}

	return ns
}
