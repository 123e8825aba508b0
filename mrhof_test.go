package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMRHOFParentSelectionPrefersLowestPathCost(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(1)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	cheap := addr(t, "fe80::1")
	costly := addr(t, "fe80::2")

	candidates := []rplcore.Candidate{
		{ID: costly, Rank: 512, LinkMetricFP8: 0x100},
		{ID: cheap, Rank: 256, LinkMetricFP8: 0x100},
	}

	preferred, _ := of.ParentSelection(candidates, nil, p)
	require.NotNil(t, preferred)
	assert.Equal(t, cheap, preferred.ID)
}

func TestMRHOFHysteresisKeepsCurrentParent(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(1)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	p.MRHOFParentSwitchThresholdFP8 = 192

	current := addr(t, "fe80::1")
	other := addr(t, "fe80::2")

	candidates := []rplcore.Candidate{
		{ID: current, Rank: 300, LinkMetricFP8: 0x100},
		{ID: other, Rank: 256, LinkMetricFP8: 0x100},
	}

	preferred, _ := of.ParentSelection(candidates, &current, p)
	require.NotNil(t, preferred)
	assert.Equal(t, current, preferred.ID)
}

func TestMRHOFRejectsLinksAboveCeiling(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(1)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	candidates := []rplcore.Candidate{
		{ID: addr(t, "fe80::1"), Rank: 256, LinkMetricFP8: 0xFFFF},
	}

	preferred, backups := of.ParentSelection(candidates, nil, p)
	assert.Nil(t, preferred)
	assert.Empty(t, backups)
}
