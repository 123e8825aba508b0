package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDODAGUpsertVersionOrdersNewestFirst(t *testing.T) {
	d := rplcore.NewDODAG(addr(t, "2001:db8::1"))

	d.UpsertVersion(10, 1000, 1000)
	d.UpsertVersion(20, 1000, 1000)

	require.Len(t, d.Versions, 2)
	assert.EqualValues(t, 20, d.Versions[0].VersionNumber)
	assert.EqualValues(t, 10, d.Versions[1].VersionNumber)
	assert.True(t, d.Versions[1].Retired)
	assert.False(t, d.Versions[0].Retired)
}

func TestDODAGUpsertVersionIsIdempotent(t *testing.T) {
	d := rplcore.NewDODAG(addr(t, "2001:db8::1"))

	v1 := d.UpsertVersion(10, 1000, 1000)
	v2 := d.UpsertVersion(10, 1000, 1000)

	assert.Same(t, v1, v2)
}

func TestDODAGPruneRetiredVersions(t *testing.T) {
	d := rplcore.NewDODAG(addr(t, "2001:db8::1"))

	d.UpsertVersion(10, 1000, 1000)
	d.UpsertVersion(20, 1000, 1000)

	d.PruneRetiredVersions(func(*rplcore.DodagVersion) bool { return false })

	assert.Len(t, d.Versions, 1)
	assert.EqualValues(t, 20, d.Versions[0].VersionNumber)
}
