package rplcore_test

import (
	"testing"
	"time"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveDIOCreatesInstanceDodagAndNeighbour(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)

	dodagID := addr(t, "2001:db8::1")
	source := addr(t, "fe80::1")

	msg := rplcore.DIOMessage{
		InstanceID: 1,
		Version:    10,
		Rank:       512,
		DodagID:    dodagID,
		DTSN:       1,
		Source:     source,
		IfaceID:    2,
		Config: &rplcore.DodagConfig{
			MinHopRankIncrease: 256,
			ObjectiveCodePoint: 0,
		},
	}

	require.NoError(t, dom.ReceiveDIO(msg, time.Now()))

	inst := dom.Instance(1)
	require.NotNil(t, inst)

	dodag := inst.Dodag(dodagID)
	require.NotNil(t, dodag)
	assert.True(t, dodag.HaveConfig)

	n := inst.Neighbours().Find(source)
	require.NotNil(t, n)
	assert.EqualValues(t, 512, n.Rank)
}

func TestReceiveDIORejectsUnacceptableConfig(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)

	msg := rplcore.DIOMessage{
		InstanceID: 1,
		Version:    10,
		Rank:       512,
		DodagID:    addr(t, "2001:db8::1"),
		Source:     addr(t, "fe80::1"),
		Config: &rplcore.DodagConfig{
			MinHopRankIncrease: 0, // invalid per spec.md boundary behaviour
		},
	}

	require.NoError(t, dom.ReceiveDIO(msg, time.Now()))

	inst := dom.Instance(1)
	if inst != nil {
		assert.Nil(t, inst.Dodag(msg.DodagID).Config)
	}
}

func TestReceiveDIOSchedulesParentSelection(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)
	dom.Policy.DIOParentSelectionDelayS = 2

	msg := rplcore.DIOMessage{
		InstanceID: 1,
		Version:    10,
		Rank:       512,
		DodagID:    addr(t, "2001:db8::1"),
		Source:     addr(t, "fe80::1"),
	}

	require.NoError(t, dom.ReceiveDIO(msg, time.Now()))

	inst := dom.Instance(1)
	require.NotNil(t, inst)
	assert.EqualValues(t, 20, inst.ParentSelectionDelayTicks)
}
