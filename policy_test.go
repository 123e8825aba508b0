package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyValidates(t *testing.T) {
	p := rplcore.NewPolicy()
	require.NoError(t, p.Validate())
}

func TestPolicyValidateRejectsInvertedETXThresholds(t *testing.T) {
	p := rplcore.NewPolicy()
	p.ETXFullForwardFP8 = 0x600
	p.ETXFullDropFP8 = 0x100

	assert.Error(t, p.Validate())
}

func TestPolicySetETXThresholdsRejectsInverted(t *testing.T) {
	p := rplcore.NewPolicy()
	err := p.SetETXThresholds(0x600, 0x100)

	assert.ErrorIs(t, err, rplcore.ErrBadParameter)
}

func TestPolicyJoinConfigRejectsAuthentication(t *testing.T) {
	p := rplcore.NewPolicy()
	conf := &rplcore.DodagConfig{Authentication: true, MinHopRankIncrease: 256}

	ok, _ := p.JoinConfig(conf)
	assert.False(t, ok)
}

func TestPolicyJoinConfigRejectsZeroMinHopRankIncrease(t *testing.T) {
	p := rplcore.NewPolicy()
	conf := &rplcore.DodagConfig{MinHopRankIncrease: 0}

	ok, _ := p.JoinConfig(conf)
	assert.False(t, ok)
}

func TestPolicyJoinConfigForcesLeafOnUnknownOCP(t *testing.T) {
	p := rplcore.NewPolicy()
	conf := &rplcore.DodagConfig{MinHopRankIncrease: 256, ObjectiveCodePoint: 0xBEEF}

	ok, leafOnly := p.JoinConfig(conf)
	assert.True(t, ok)
	assert.True(t, leafOnly)
}

func TestPolicyJoinConfigFullMemberOnKnownOCP(t *testing.T) {
	p := rplcore.NewPolicy()
	conf := &rplcore.DodagConfig{MinHopRankIncrease: 256, ObjectiveCodePoint: 1}

	ok, leafOnly := p.JoinConfig(conf)
	assert.True(t, ok)
	assert.False(t, leafOnly)
}

func TestPolicySRHNextHopInterfaceForwardsBelowThreshold(t *testing.T) {
	p := rplcore.NewPolicy()
	assert.True(t, p.SRHNextHopInterface(p.ETXFullForwardFP8))
}

func TestPolicySRHNextHopInterfaceDropsAboveCeiling(t *testing.T) {
	p := rplcore.NewPolicy()
	assert.False(t, p.SRHNextHopInterface(p.ETXFullDropFP8))
}

func TestPolicyDAOTriggerAfterSRHError(t *testing.T) {
	p := rplcore.NewPolicy()
	assert.False(t, p.DAOTriggerAfterSRHError(2, 3))
	assert.True(t, p.DAOTriggerAfterSRHError(7, 3))
}
