package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
)

func TestNeighbourListReorderInvariant(t *testing.T) {
	l := rplcore.NewNeighbourList()
	a := &rplcore.Neighbour{Addr: addr(t, "fe80::1"), DodagParent: true, DodagPref: 1}
	b := &rplcore.Neighbour{Addr: addr(t, "fe80::2"), DodagParent: true, DodagPref: 0}
	c := &rplcore.Neighbour{Addr: addr(t, "fe80::3")}

	l.Add(a)
	l.Add(b)
	l.Add(c)
	l.Reorder()

	all := l.All()
	assert.Equal(t, b.Addr, all[0].Addr)
	assert.Equal(t, a.Addr, all[1].Addr)
	assert.Equal(t, c.Addr, all[2].Addr)

	parents := l.Parents()
	assert.Len(t, parents, 2)
}

func TestNeighbourListBeginParentSelectionSnapshots(t *testing.T) {
	l := rplcore.NewNeighbourList()
	n := &rplcore.Neighbour{Addr: addr(t, "fe80::1"), DodagParent: true, DAOPathControl: 0xC0}
	l.Add(n)

	l.BeginParentSelection()

	assert.True(t, n.WasDodagParent)
	assert.False(t, n.DodagParent)
	assert.EqualValues(t, 0xC0, n.OldDAOPathControl)
	assert.Zero(t, n.DAOPathControl)
	assert.True(t, n.Considered)
}

func TestNeighbourListLostParents(t *testing.T) {
	l := rplcore.NewNeighbourList()
	n := &rplcore.Neighbour{Addr: addr(t, "fe80::1"), WasDodagParent: true, DodagParent: false}
	l.Add(n)

	lost := l.LostParents()
	assert.Len(t, lost, 1)
	assert.Equal(t, n.Addr, lost[0].Addr)
}
