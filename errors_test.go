package rplcore_test

import (
	"fmt"
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
)

func TestErrorsWrapAndUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("instance 30: %w", rplcore.ErrNotFound)

	assert.ErrorIs(t, wrapped, rplcore.ErrNotFound)
	assert.NotErrorIs(t, wrapped, rplcore.ErrBadParameter)
}

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{
		rplcore.ErrOutOfMemory,
		rplcore.ErrBadParameter,
		rplcore.ErrNotFound,
		rplcore.ErrInconsistentState,
		rplcore.ErrRouteLoop,
		rplcore.ErrUnreachable,
		rplcore.ErrTimerNotFired,
		rplcore.ErrBusy,
	}

	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}
