package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DeityZeke/simcore/sim"
)

type scoreEvent struct{ Points int }
type levelEvent struct{ Level int }

func TestEventBus(t *testing.T) {
	t.Run("publish with no subscribers is a no-op", func(t *testing.T) {
		bus := sim.NewEventBus()
		sim.Publish(bus, scoreEvent{Points: 10})
	})

	t.Run("handlers receive published events in order", func(t *testing.T) {
		bus := sim.NewEventBus()

		var order []int
		sim.Subscribe(bus, func(e scoreEvent) { order = append(order, e.Points) })
		sim.Subscribe(bus, func(e scoreEvent) { order = append(order, e.Points*2) })

		sim.Publish(bus, scoreEvent{Points: 5})
		assert.Equal(t, []int{5, 10}, order)
	})

	t.Run("events dispatch by type", func(t *testing.T) {
		bus := sim.NewEventBus()

		scores := 0
		levels := 0
		sim.Subscribe(bus, func(scoreEvent) { scores++ })
		sim.Subscribe(bus, func(levelEvent) { levels++ })

		sim.Publish(bus, scoreEvent{})
		sim.Publish(bus, scoreEvent{})
		sim.Publish(bus, levelEvent{})

		assert.Equal(t, 2, scores)
		assert.Equal(t, 1, levels)
	})

	t.Run("cancel removes only the cancelled handler", func(t *testing.T) {
		bus := sim.NewEventBus()

		first := 0
		second := 0
		sub := sim.Subscribe(bus, func(scoreEvent) { first++ })
		sim.Subscribe(bus, func(scoreEvent) { second++ })

		sim.Publish(bus, scoreEvent{})
		sub.Cancel()
		sim.Publish(bus, scoreEvent{})

		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
	})

	t.Run("cancel twice is harmless", func(t *testing.T) {
		bus := sim.NewEventBus()
		sub := sim.Subscribe(bus, func(scoreEvent) {})
		sub.Cancel()
		sub.Cancel()
		sim.Publish(bus, scoreEvent{})
	})

	t.Run("instances are isolated", func(t *testing.T) {
		a := sim.NewEventBus()
		b := sim.NewEventBus()

		got := 0
		sim.Subscribe(a, func(scoreEvent) { got++ })
		sim.Publish(b, scoreEvent{Points: 1})
		assert.Equal(t, 0, got)

		sim.Publish(a, scoreEvent{Points: 1})
		assert.Equal(t, 1, got)
	})
}

func TestEntityMovedWindow(t *testing.T) {
	ev := sim.EntityMoved{
		Entities: []sim.Entity{1, 2, 3, 4, 5},
		Offset:   1,
		Count:    3,
	}
	assert.Equal(t, []sim.Entity{2, 3, 4}, ev.Moved())
}
