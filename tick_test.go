package rplcore_test

import (
	"testing"
	"time"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickFastAdvancesMonotonicCounterAndDAO(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	inst, _ := dom.UpsertInstance(1)
	inst.DAO.ScheduleDAO(1)

	dom.TickFast(time.Now())

	assert.EqualValues(t, 1, inst.MonotonicTicks)
	assert.True(t, inst.DAO.InFlight)
}

func TestTickSlowAgesTargetLifetimeToZero(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	inst, _ := dom.UpsertInstance(1)

	key := addr(t, "2001:db8::1").As16()
	target := inst.PublishTarget(key, 128, 1)
	target.Own = false

	dom.TickSlow(time.Now())
	require.NotNil(t, inst.Target(key, 128))
	assert.EqualValues(t, 0, inst.Target(key, 128).Lifetime)
}

func TestTickSlowPurgesEmptyInstances(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	dom.UpsertInstance(1)

	dom.TickSlow(time.Now())

	assert.Nil(t, dom.Instance(1))
}

func TestAdvanceBumpsEveryInstance(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	a, _ := dom.UpsertInstance(1)
	b, _ := dom.UpsertInstance(2)

	dom.Advance(5)

	assert.EqualValues(t, 5, a.MonotonicTicks)
	assert.EqualValues(t, 5, b.MonotonicTicks)
}
