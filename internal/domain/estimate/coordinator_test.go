package estimate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorAppliesCurrentGeneration(t *testing.T) {
	c := NewCoordinator()
	gen := c.Begin()

	fields := paycalcMap("federalIncomeTax", "120")
	assert.True(t, c.Apply(gen, fields))

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "120", latest["federalIncomeTax"].String())
}

func TestCoordinatorDiscardsStaleResult(t *testing.T) {
	c := NewCoordinator()
	stale := c.Begin()
	current := c.Begin()

	assert.False(t, c.Apply(stale, paycalcMap("federalIncomeTax", "999")))
	_, ok := c.Latest()
	assert.False(t, ok)

	assert.True(t, c.Apply(current, paycalcMap("federalIncomeTax", "100")))
	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "100", latest["federalIncomeTax"].String())
}

func TestCoordinatorStaleResultNeverOverwritesNewer(t *testing.T) {
	c := NewCoordinator()
	first := c.Begin()
	second := c.Begin()

	require.True(t, c.Apply(second, paycalcMap("federalIncomeTax", "100")))
	assert.False(t, c.Apply(first, paycalcMap("federalIncomeTax", "999")))

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "100", latest["federalIncomeTax"].String())
}

func TestCoordinatorBeginInvalidatesPublished(t *testing.T) {
	c := NewCoordinator()
	gen := c.Begin()
	require.True(t, c.Apply(gen, paycalcMap("federalIncomeTax", "100")))

	c.Begin()
	_, ok := c.Latest()
	assert.False(t, ok)
}

func TestRegistryIsolatesWorkers(t *testing.T) {
	r := NewRegistry()
	a := r.For("w-1")
	b := r.For("w-2")

	assert.NotSame(t, a, b)
	assert.Same(t, a, r.For("w-1"))

	genA := a.Begin()
	b.Begin()
	assert.True(t, a.Apply(genA, paycalcMap("federalIncomeTax", "10")))
	_, ok := b.Latest()
	assert.False(t, ok)
}

func TestRegistryEvictsIdleCoordinators(t *testing.T) {
	r := NewRegistry()
	first := r.For("w-1")

	// A recent handout survives the sweep.
	assert.Equal(t, 0, r.Evict(time.Hour))
	assert.Same(t, first, r.For("w-1"))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, r.Evict(time.Millisecond))
	assert.NotSame(t, first, r.For("w-1"))
}

func TestRegistryEvictKeepsActiveWorkers(t *testing.T) {
	r := NewRegistry()
	r.For("w-stale")
	time.Sleep(100 * time.Millisecond)
	active := r.For("w-active")

	assert.Equal(t, 1, r.Evict(50*time.Millisecond))
	assert.Same(t, active, r.For("w-active"))
}

func paycalcMap(field, amount string) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{field: decimal.RequireFromString(amount)}
}
