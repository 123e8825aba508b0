package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSourceRouteWalksTransitGraph(t *testing.T) {
	inst := rplcore.NewInstance(1)

	root := addr(t, "2001:db8::1")
	mid := addr(t, "2001:db8::2")
	leaf := addr(t, "2001:db8::3")

	leafKey := leaf.As16()
	midKey := mid.As16()

	leafTarget := inst.PublishTarget(leafKey, 128, 3600)
	leafTarget.Transits = []rplcore.DAOTransit{{Addr: mid, Cost: 1}}

	midTarget := inst.PublishTarget(midKey, 128, 3600)
	midTarget.Transits = []rplcore.DAOTransit{{Addr: root, Cost: 1}}

	cache := &rplcore.SourceRouteCache{}
	hops, err := inst.ComputeSourceRoute(leaf, leafKey, 128, cache)
	require.NoError(t, err)

	require.Len(t, hops, 2)
	assert.Equal(t, root, hops[0])
	assert.Equal(t, mid, hops[1])
}

func TestComputeSourceRouteDetectsLoop(t *testing.T) {
	inst := rplcore.NewInstance(1)

	a := addr(t, "2001:db8::a")
	b := addr(t, "2001:db8::b")

	aKey, bKey := a.As16(), b.As16()

	aTarget := inst.PublishTarget(aKey, 128, 3600)
	aTarget.Transits = []rplcore.DAOTransit{{Addr: b, Cost: 1}}

	bTarget := inst.PublishTarget(bKey, 128, 3600)
	bTarget.Transits = []rplcore.DAOTransit{{Addr: a, Cost: 1}}

	cache := &rplcore.SourceRouteCache{}
	_, err := inst.ComputeSourceRoute(a, aKey, 128, cache)

	assert.ErrorIs(t, err, rplcore.ErrRouteLoop)
}

func TestComputeSourceRouteCachesResult(t *testing.T) {
	inst := rplcore.NewInstance(1)

	root := addr(t, "2001:db8::1")
	leaf := addr(t, "2001:db8::2")
	leafKey := leaf.As16()

	target := inst.PublishTarget(leafKey, 128, 3600)
	target.Transits = []rplcore.DAOTransit{{Addr: root, Cost: 1}}

	cache := &rplcore.SourceRouteCache{}
	first, err := inst.ComputeSourceRoute(leaf, leafKey, 128, cache)
	require.NoError(t, err)

	target.Transits = nil // mutate graph; cached result should still be returned
	second, err := inst.ComputeSourceRoute(leaf, leafKey, 128, cache)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
