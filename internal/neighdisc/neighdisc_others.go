//go:build !linux

package neighdisc

// New returns [Empty] on platforms without a recognized neighbour-table
// command, matching internal/arpdb's per-OS coverage decision.
func New() (nd Interface) { return Empty{} }
