package rplcore

import "math/rand/v2"

// trickleMaxTicks bounds a Trickle interval so that IntervalMinTicks <<
// IntervalDoublings cannot overflow the 100ms-tick counters used elsewhere
// in the core.
const trickleMaxTicks = 1 << 20

// TrickleParams holds a Trickle timer's three RFC 6206 parameters, all
// expressed in 100ms ticks to match the core's fast tick stream (spec.md
// §4.4.4, §5).
type TrickleParams struct {
	IntervalMinTicks   uint32
	IntervalDoublings  uint8
	RedundancyConstant uint8
}

// intervalMax returns Imax in ticks, saturating at trickleMaxTicks.
func (p TrickleParams) intervalMax() uint32 {
	max := p.IntervalMinTicks
	for i := uint8(0); i < p.IntervalDoublings; i++ {
		if max >= trickleMaxTicks {
			return trickleMaxTicks
		}
		max <<= 1
	}
	if max > trickleMaxTicks {
		return trickleMaxTicks
	}
	return max
}

// Trickle implements the RFC 6206 Trickle algorithm driving DIO
// transmission (spec.md §4.4.4): a doubling interval with a random
// transmission point and a redundancy-suppressed consistency counter.
type Trickle struct {
	params TrickleParams

	interval uint32
	elapsed  uint32
	fireAt   uint32
	counter  uint8

	randUint32 func(n uint32) uint32
}

// NewTrickle returns a Trickle timer reset to its minimum interval.
func NewTrickle(params TrickleParams) *Trickle {
	t := &Trickle{
		params:     params,
		randUint32: func(n uint32) uint32 { return uint32(rand.Int64N(int64(n))) },
	}
	t.resetInterval(params.IntervalMinTicks)
	return t
}

// SetParams updates the timer's parameters and restarts it at Imin, as
// happens when a DODAG config change is applied (spec.md §4.4.1 step 4).
func (t *Trickle) SetParams(params TrickleParams) {
	t.params = params
	t.resetInterval(params.IntervalMinTicks)
}

func (t *Trickle) resetInterval(interval uint32) {
	if interval == 0 {
		interval = 1
	}
	t.interval = interval
	t.elapsed = 0
	t.counter = 0
	t.fireAt = interval/2 + t.randUint32(interval/2+1)
}

// Consistent records a DIO that did not change topology (§4.4.1): it
// increments the consistency counter c.
func (t *Trickle) Consistent() { t.counter++ }

// Inconsistent implements RFC 6206 §4.2: if the current interval is
// already at Imin, nothing happens; otherwise the timer resets to Imin.
func (t *Trickle) Inconsistent() {
	if t.interval > t.params.IntervalMinTicks {
		t.resetInterval(t.params.IntervalMinTicks)
	}
}

// TrickleTick advances the timer by one fast tick (100ms). It returns
// shouldTransmit = true at most once per interval, when elapsed reaches the
// random firing point and the redundancy constant k has not been exceeded
// by the consistency counter (k=0 disables suppression).
func (t *Trickle) TrickleTick() (shouldTransmit bool) {
	t.elapsed++

	if t.elapsed == t.fireAt {
		if t.params.RedundancyConstant == 0 || t.counter < t.params.RedundancyConstant {
			shouldTransmit = true
		}
	}

	if t.elapsed >= t.interval {
		next := t.interval * 2
		if max := t.params.intervalMax(); next > max {
			next = max
		}
		t.resetInterval(next)
	}

	return shouldTransmit
}
