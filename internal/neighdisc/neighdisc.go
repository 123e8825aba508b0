// Package neighdisc discovers IPv6 link-layer neighbours by shelling out to
// the host's neighbour table command, the same pattern internal/arpdb uses
// for IPv4 ARP, adapted to feed link reachability into an RPL adapter's
// cache instead of a DNS client-identification table.
package neighdisc

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/netip"
	"sync"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/ioutil"
	"github.com/AdguardTeam/golibs/osutil/executil"
)

// maxOutputSize bounds how much of a neighbour-table command's output is
// read, mirroring internal/aghos.MaxCmdOutputSize.
const maxOutputSize = 64 * 1024

// Neighbor is an IPv6 address paired with the link-layer state the kernel
// last observed for it.
type Neighbor struct {
	// IP is the neighbour's IPv6 address.
	IP netip.Addr

	// Reachable reports whether the kernel's neighbour cache considers the
	// entry usable (REACHABLE, STALE, DELAY, PROBE, or PERMANENT), as
	// opposed to FAILED or INCOMPLETE.
	Reachable bool
}

// Interface stores and refreshes the IPv6 neighbour table.
type Interface interface {
	// Refresh updates the stored data. It must be safe for concurrent use.
	Refresh(ctx context.Context) (err error)

	// Neighbors returns the last set of data reported by the kernel. Both
	// the method and its result must be safe for concurrent use.
	Neighbors() (ns []Neighbor)
}

// Empty is the [Interface] implementation that does nothing; it is used on
// platforms without a known neighbour-table command.
type Empty struct{}

// type check
var _ Interface = Empty{}

// Refresh implements the [Interface] interface for Empty.
func (Empty) Refresh(context.Context) (err error) { return nil }

// Neighbors implements the [Interface] interface for Empty.
func (Empty) Neighbors() (ns []Neighbor) { return nil }

// neighs is the concurrency-safe storage shared by [Interface]
// implementations.
type neighs struct {
	mu *sync.RWMutex
	ns []Neighbor
}

func (n *neighs) clone() (cloned []Neighbor) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return append([]Neighbor(nil), n.ns...)
}

func (n *neighs) reset(with []Neighbor) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.ns = with
}

// cmdNeighDB is the [Interface] implementation that parses the output of a
// neighbour-table command.
type cmdNeighDB struct {
	ns      *neighs
	cmdCons executil.CommandConstructor
	parse   func(sc *bufio.Scanner) (ns []Neighbor)
	cmd     string
	args    []string
}

// type check
var _ Interface = (*cmdNeighDB)(nil)

// Refresh implements the [Interface] interface for *cmdNeighDB.
func (nd *cmdNeighDB) Refresh(ctx context.Context) (err error) {
	defer func() { err = errors.Annotate(err, "cmd neighdisc: %w") }()

	stdout := &bytes.Buffer{}
	runErr := executil.Run(ctx, nd.cmdCons, &executil.CommandConfig{
		Path:   nd.cmd,
		Args:   nd.args,
		Stdout: ioutil.NewTruncatedWriter(stdout, maxOutputSize),
		Stderr: &bytes.Buffer{},
	})
	if runErr != nil {
		if _, ok := executil.ExitCodeFromError(runErr); !ok {
			return fmt.Errorf("running command: %w", runErr)
		}
	}

	sc := bufio.NewScanner(stdout)
	nd.ns.reset(nd.parse(sc))

	return sc.Err()
}

// Neighbors implements the [Interface] interface for *cmdNeighDB.
func (nd *cmdNeighDB) Neighbors() (ns []Neighbor) { return nd.ns.clone() }
