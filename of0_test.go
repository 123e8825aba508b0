package rplcore_test

import (
	"net/netip"
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOF0ParentSelectionPicksLowestRank(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(0)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	a := addr(t, "fe80::1")
	b := addr(t, "fe80::2")

	candidates := []rplcore.Candidate{
		{ID: a, Rank: 512, LinkMetricFP8: 0x100},
		{ID: b, Rank: 256, LinkMetricFP8: 0x100},
	}

	preferred, _ := of.ParentSelection(candidates, nil, p)
	require.NotNil(t, preferred)
	assert.Equal(t, b, preferred.ID)
}

func TestOF0ParentSelectionNoAcceptableCandidates(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(0)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	candidates := []rplcore.Candidate{
		{ID: addr(t, "fe80::1"), Rank: rplcore.RankInfinite},
	}

	preferred, backups := of.ParentSelection(candidates, nil, p)
	assert.Nil(t, preferred)
	assert.Empty(t, backups)
}

func TestOF0NeighbourAcceptableRejectsUnreachableLink(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(0)
	require.True(t, ok)

	p := rplcore.NewPolicy()

	// Finite Rank, but an ETX of 0xFFFF ("not associated") puts the link's
	// step of rank at 10, past SUITABLE_STEP_OF_RANK (8).
	c := rplcore.Candidate{Rank: 256, LinkMetricFP8: 0xFFFF}
	assert.False(t, of.NeighbourAcceptable(c, p))
}

func TestOF0NeighbourAcceptableRejectsTooManyAddrRegFailures(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(0)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	p.MaxAddrRegFailures = 2

	c := rplcore.Candidate{Rank: 256, LinkMetricFP8: 0x100, AddrRegFailures: 2}
	assert.False(t, of.NeighbourAcceptable(c, p))
}

func TestOF0PathCostAdvancesRank(t *testing.T) {
	of, ok := rplcore.ObjectiveFunctionFor(0)
	require.True(t, ok)

	p := rplcore.NewPolicy()
	rank := of.PathCost(rplcore.Candidate{Rank: 256, LinkMetricFP8: 0x100}, 256, p)
	assert.Greater(t, uint16(rank), uint16(256))
}

func addr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return a
}
