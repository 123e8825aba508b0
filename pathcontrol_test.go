package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
)

func TestConvertDodagPreferencesToDAOPathControl(t *testing.T) {
	preferred := &rplcore.Neighbour{Addr: addr(t, "fe80::1"), DodagPref: 0}
	backup := &rplcore.Neighbour{Addr: addr(t, "fe80::2"), DodagPref: 1}

	rplcore.ConvertDodagPreferencesToDAOPathControl([]*rplcore.Neighbour{preferred, backup})

	assert.EqualValues(t, 0xC0, preferred.DAOPathControl)
	assert.EqualValues(t, 0x30, backup.DAOPathControl)
}

func TestWithdrawnPathControlBits(t *testing.T) {
	n := &rplcore.Neighbour{OldDAOPathControl: 0xF0, DAOPathControl: 0xC0}

	assert.EqualValues(t, 0x30, rplcore.WithdrawnPathControlBits(n))
}
