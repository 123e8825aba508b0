// Package rplcore implements the control- and data-plane core of RPL, the
// IPv6 Routing Protocol for Low-Power and Lossy Networks (RFC 6550): DODAG
// construction and maintenance, parent selection via a pluggable Objective
// Function, downward route advertisement through DAO targets, and the
// per-packet hop-by-hop option and source-routing header handling needed
// to detect loops and source-route from a non-storing root.
//
// The package is single-threaded and cooperative: a Domain owns all state,
// and the caller drives it via TickFast/TickSlow and the Receive* methods,
// serialising calls itself.
package rplcore
