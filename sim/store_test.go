package sim_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DeityZeke/simcore/sim"
)

// Common test component types
type Position struct {
	X, Y, Z float64
}

type Velocity struct {
	DX, DY, DZ float64
}

type Health struct {
	Current int
	Max     int
}

type Tag string

func newTestRegistry() *sim.ComponentRegistry {
	registry := sim.NewComponentRegistry()
	sim.RegisterComponent[Position](registry)
	sim.RegisterComponent[Velocity](registry)
	sim.RegisterComponent[Health](registry)
	sim.RegisterComponent[Tag](registry)
	return registry
}

func TestEntityEncoding(t *testing.T) {
	tests := []struct {
		generation uint32
		index      uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("generation=%d,index=%d", tt.generation, tt.index), func(t *testing.T) {
			e := sim.NewEntity(tt.generation, tt.index)
			assert.Equal(t, tt.generation, e.Generation())
			assert.Equal(t, tt.index, e.Index())
		})
	}
}

func TestCreateEntity(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	e := store.Create(Position{X: 1, Y: 2, Z: 3}, Velocity{DX: 0.5})
	assert.NotEqual(t, sim.NoEntity, e)
	assert.True(t, store.Alive(e))
	assert.Equal(t, 1, store.Len())

	pos := sim.GetComponent[Position](store, e)
	assert.NotNil(t, pos)
	assert.Equal(t, 1.0, pos.X)

	vel := sim.GetComponent[Velocity](store, e)
	assert.NotNil(t, vel)
	assert.Equal(t, 0.5, vel.DX)

	// component the entity was not created with
	assert.Nil(t, sim.GetComponent[Health](store, e))
}

func TestDestroyStaleHandleIsNoOp(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	a := store.Create(Position{X: 1})
	store.Destroy(a)
	assert.False(t, store.Alive(a))

	// destroying again must not corrupt anything
	store.Destroy(a)
	assert.Equal(t, 0, store.Len())

	b := store.Create(Position{X: 2})
	// stale destroy of a must not kill the recycled slot's new occupant
	store.Destroy(a)
	assert.True(t, store.Alive(b))
	assert.Equal(t, 1, store.Len())
}

func TestIndexReuseBumpsGeneration(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	a := store.Create(Position{X: 1})
	store.Destroy(a)

	b := store.Create(Position{X: 2})
	assert.Equal(t, a.Index(), b.Index())
	assert.Greater(t, b.Generation(), a.Generation())
	assert.NotEqual(t, a, b)

	// the stale handle observes nothing
	assert.False(t, store.Alive(a))
	assert.Nil(t, sim.GetComponent[Position](store, a))

	pos := sim.GetComponent[Position](store, b)
	assert.NotNil(t, pos)
	assert.Equal(t, 2.0, pos.X)
}

func TestDestroyClearsComponents(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	a := store.Create(Position{X: 9}, Health{Current: 50, Max: 100})
	store.Destroy(a)

	// the recycled slot must not leak the old occupant's components
	b := store.Create(Position{X: 1})
	assert.Equal(t, a.Index(), b.Index())
	assert.Nil(t, sim.GetComponent[Health](store, b))
}

func TestSetComponent(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	e := store.Create(Position{X: 1})
	sim.SetComponent(store, e, Health{Current: 10, Max: 10})

	h := sim.GetComponent[Health](store, e)
	assert.NotNil(t, h)
	assert.Equal(t, 10, h.Current)

	// stale handle: silent no-op
	store.Destroy(e)
	sim.SetComponent(store, e, Health{Current: 99, Max: 99})
	assert.Nil(t, sim.GetComponent[Health](store, e))
}

func TestEachVisitsLiveEntities(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	a := store.Create(Position{})
	b := store.Create(Position{})
	c := store.Create(Position{})
	store.Destroy(b)

	var seen []sim.Entity
	store.Each(func(e sim.Entity) { seen = append(seen, e) })
	assert.Equal(t, []sim.Entity{a, c}, seen)
}

func TestUnregisteredComponentPanics(t *testing.T) {
	store := sim.NewEntityStore(newTestRegistry())

	type Unregistered struct{ V int }
	assert.Panics(t, func() {
		store.Create(Unregistered{V: 1})
	})
}
