package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceEmptyAfterTargetsButNoNeighboursOrDodags(t *testing.T) {
	inst := rplcore.NewInstance(1)
	assert.True(t, inst.Empty())

	inst.PublishTarget(addr(t, "2001:db8::1").As16(), 128, 3600)
	assert.True(t, inst.Empty(), "targets alone don't count toward non-emptiness")

	_, created := inst.UpsertDodag(addr(t, "2001:db8::f"))
	require.True(t, created)
	assert.False(t, inst.Empty())
}

func TestUpsertDodagIsIdempotent(t *testing.T) {
	inst := rplcore.NewInstance(1)
	id := addr(t, "2001:db8::1")

	d1, created1 := inst.UpsertDodag(id)
	d2, created2 := inst.UpsertDodag(id)

	assert.True(t, created1)
	assert.False(t, created2)
	assert.Same(t, d1, d2)
}

func TestEnterRepairArmsBackoffAndRejectsReentry(t *testing.T) {
	inst := rplcore.NewInstance(1)
	p := rplcore.NewPolicy()

	assert.True(t, inst.EnterRepair(p))
	assert.False(t, inst.EnterRepair(p), "already repairing")
	assert.Equal(t, rplcore.RepairRepairing, inst.RepairState)
}

func TestRepairTickExhaustsAndReportsNoMoreDIS(t *testing.T) {
	inst := rplcore.NewInstance(1)
	p := rplcore.NewPolicy()
	p.RepairInitialDISDelayS = 1
	p.RepairDISCount = 2
	p.RepairMaximumDISIntervalS = 60

	inst.EnterRepair(p)

	sawDIS := 0
	noMore := false
	for i := 0; i < 1000 && !noMore; i++ {
		sendDIS, n := inst.RepairTick(p)
		if sendDIS {
			sawDIS++
		}
		noMore = n
	}

	assert.EqualValues(t, 2, sawDIS)
	assert.True(t, noMore)
}

func TestBeginPoisoningSetsInfiniteRankAndDrainsCount(t *testing.T) {
	inst := rplcore.NewInstance(1)
	p := rplcore.NewPolicy()
	p.RepairPoisonCount = 2

	inst.BeginPoisoning(p)
	assert.EqualValues(t, rplcore.RankInfinite, inst.CurrentRank)
	assert.Equal(t, rplcore.MembershipPoisoning, inst.Membership)

	assert.True(t, inst.PoisonTick())
	assert.True(t, inst.PoisonTick())
	assert.False(t, inst.PoisonTick())
	assert.Equal(t, rplcore.MembershipNotJoined, inst.Membership)
}
