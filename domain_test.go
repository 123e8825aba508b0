package rplcore_test

import (
	"testing"

	"github.com/lowpan/rplcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainAppliesDefaults(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)

	require.NotNil(t, dom.Policy)
	require.NotNil(t, dom.Adapter)
	require.NotNil(t, dom.Events)
}

func TestUpsertInstanceIsIdempotent(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)

	i1, created1 := dom.UpsertInstance(1)
	i2, created2 := dom.UpsertInstance(1)

	assert.True(t, created1)
	assert.False(t, created2)
	assert.Same(t, i1, i2)
}

func TestPurgeEmptyInstancesRespectsBudget(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)

	dom.UpsertInstance(1)
	dom.UpsertInstance(2)
	dom.UpsertInstance(3)

	purged := dom.PurgeEmptyInstances(2)

	assert.Equal(t, 2, purged)
	assert.Len(t, dom.Instances(), 1)
}

func TestPurgeEmptyInstancesSkipsNonEmpty(t *testing.T) {
	dom := rplcore.NewDomain(nil, nil, nil)

	inst, _ := dom.UpsertInstance(1)
	inst.UpsertDodag(addr(t, "2001:db8::1"))

	dom.UpsertInstance(2)

	purged := dom.PurgeEmptyInstances(10)

	assert.Equal(t, 1, purged)
	assert.NotNil(t, dom.Instance(1))
	assert.Nil(t, dom.Instance(2))
}
