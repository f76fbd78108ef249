// Package world composes the simulation core: entity storage, the batched
// tick scheduler, the chunk index and the terrain edit pipeline, wired
// through one event bus and one configuration.
package world

import (
	"iter"

	"github.com/rs/zerolog"

	"github.com/DeityZeke/simcore/config"
	"github.com/DeityZeke/simcore/sim"
	"github.com/DeityZeke/simcore/terrain"
)

// Position is an entity's world-space position.
type Position struct {
	X, Y, Z float64
}

// ChunkRef caches an entity's chunk assignment so membership can be
// re-validated with a local point-in-box test instead of a spatial query.
type ChunkRef struct {
	Loc    terrain.Location
	Bounds terrain.AABB
	Valid  bool
}

// World owns one simulation instance.
type World struct {
	Registry  *sim.ComponentRegistry
	Store     *sim.EntityStore
	Events    *sim.EventBus
	Pool      *sim.WorkerPool
	Scheduler *sim.Scheduler
	Chunks    *terrain.Index
	Edits     *terrain.EditQueue

	// PositionType and ChunkRefType are pre-registered for footprints.
	PositionType sim.ComponentType
	ChunkRefType sim.ComponentType

	cfg     config.Config
	log     zerolog.Logger
	tick    uint64
	moveSub sim.Subscription
}

// NewWorld wires a simulation instance from configuration. The logger is
// shared by all components; pass zerolog.Nop() for a silent core.
func NewWorld(cfg config.Config, log zerolog.Logger) *World {
	w := &World{
		Registry: sim.NewComponentRegistry(),
		Events:   sim.NewEventBus(),
		Chunks:   terrain.NewIndex(),
		cfg:      cfg,
		log:      log,
	}
	w.PositionType = sim.RegisterComponent[Position](w.Registry)
	w.ChunkRefType = sim.RegisterComponent[ChunkRef](w.Registry)

	w.Store = sim.NewEntityStore(w.Registry)
	w.Pool = sim.NewWorkerPool(cfg.Scheduler.Workers)
	w.Scheduler = sim.NewScheduler(w.Store, w.Pool, w.Events)
	w.Scheduler.SetLogger(log.With().Str("component", "scheduler").Logger())
	w.Chunks.SetLogger(log.With().Str("component", "chunks").Logger())

	w.Edits = terrain.NewEditQueue(w.Chunks, cfg.Terrain.EditsPerTick)
	w.Edits.SetLogger(log.With().Str("component", "edits").Logger())

	w.moveSub = sim.Subscribe(w.Events, w.onEntitiesMoved)

	log.Info().
		Int("workers", w.Pool.Size()).
		Int("edits_per_tick", cfg.Terrain.EditsPerTick).
		Msg("world created")
	return w
}

// onEntitiesMoved re-validates the cached chunk membership of every moved
// entity with a point-in-box test and queues a reassignment when it fails.
// The queue is applied on the orchestrating goroutine during Tick; a motion
// system never mutates chunk ownership inline.
func (w *World) onEntitiesMoved(ev sim.EntityMoved) {
	for _, e := range ev.Moved() {
		pos := sim.GetComponent[Position](w.Store, e)
		ref := sim.GetComponent[ChunkRef](w.Store, e)
		if pos == nil || ref == nil {
			continue
		}
		p := terrain.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
		if ref.Valid && ref.Bounds.Contains(p) {
			continue
		}
		var from *terrain.Location
		if ref.Valid {
			loc := ref.Loc
			from = &loc
		}
		w.Chunks.QueueReassign(terrain.EntityHandle(e), from, terrain.LocationOf(p))
	}
}

// Tick runs one simulation step: the scheduler's batched systems, then the
// chunk reassignment drain, then the bounded terrain edit drain. The host
// calls this once per frame with elapsed seconds.
func (w *World) Tick(dt float64) {
	w.tick++
	w.Chunks.AdvanceTick(w.tick)

	w.Scheduler.Tick(dt)

	for _, move := range w.Chunks.DrainReassignments() {
		e := sim.Entity(move.Entity)
		if ref := sim.GetComponent[ChunkRef](w.Store, e); ref != nil {
			ref.Loc = move.To
			ref.Bounds = terrain.BoundsOf(move.To)
			ref.Valid = true
		}
	}

	w.Edits.Drain(w.tick)
}

// TickCount returns the number of completed world ticks.
func (w *World) TickCount() uint64 {
	return w.tick
}

// EnumerateChunks iterates chunk records for presentation consumers, which
// pull locations and handles each refresh cycle.
func (w *World) EnumerateChunks() iter.Seq2[terrain.Location, *terrain.Chunk] {
	return w.Chunks.All()
}

// ChunkWorldBounds derives the world-space box of a chunk location.
func (w *World) ChunkWorldBounds(loc terrain.Location) terrain.AABB {
	return terrain.BoundsOf(loc)
}

// Close releases the worker pool and detaches event handlers.
func (w *World) Close() {
	w.moveSub.Cancel()
	w.Pool.Close()
}
