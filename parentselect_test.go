package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParentSelectionPicksPreferredAndOrdersList(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	inst, _ := dom.UpsertInstance(1)
	dodag, _ := inst.UpsertDodag(addr(t, "2001:db8::1"))
	dodag.Config = &rplcore.DodagConfig{MinHopRankIncrease: 256, ObjectiveCodePoint: 0}
	dodag.HaveConfig = true

	good := &rplcore.Neighbour{Addr: addr(t, "fe80::1"), Rank: 256}
	worse := &rplcore.Neighbour{Addr: addr(t, "fe80::2"), Rank: 512}
	inst.Neighbours().Add(good)
	inst.Neighbours().Add(worse)

	dom.RunParentSelection(inst, dodag)

	parents := inst.Neighbours().Parents()
	require.NotEmpty(t, parents)
	assert.Equal(t, good.Addr, parents[0].Addr)
	assert.EqualValues(t, 0, parents[0].DodagPref)
}

func TestRunParentSelectionWithNoCandidatesEntersRepair(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	inst, _ := dom.UpsertInstance(1)
	dodag, _ := inst.UpsertDodag(addr(t, "2001:db8::1"))

	n := &rplcore.Neighbour{Addr: addr(t, "fe80::1"), WasDodagParent: true, DodagParent: true, DodagPref: 0, Rank: rplcore.RankInfinite}
	inst.Neighbours().Add(n)
	n.WasDodagParent = true

	dom.RunParentSelection(inst, dodag)

	assert.EqualValues(t, rplcore.RankInfinite, inst.CurrentRank)
}
