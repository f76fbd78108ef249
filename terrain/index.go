package terrain

import (
	"iter"
	"sync"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// EntityHandle is an opaque entity identity as seen by the terrain layer.
type EntityHandle uint64

// Reassignment moves an entity's chunk membership. From is nil for an
// entity that had no previous chunk.
type Reassignment struct {
	Entity EntityHandle
	From   *Location
	To     Location
}

// Index owns the mapping from grid locations to chunk records. It tracks
// lifecycle state, occupancy, dirtiness and last-access ticks; lifecycle
// transitions themselves are driven by an external streaming policy.
//
// Structural mutation happens on the orchestrating goroutine only. The one
// exception is QueueReassign, which systems may call from worker goroutines;
// queued moves are applied later by DrainReassignments.
type Index struct {
	chunks *intmap.Map[uint64, *Chunk]
	// Insertion order, kept for deterministic enumeration.
	order []Location

	pendingMu sync.Mutex
	pending   []Reassignment

	log  zerolog.Logger
	tick uint64
}

// NewIndex creates an empty chunk index. Logging is disabled until
// SetLogger is called.
func NewIndex() *Index {
	return &Index{
		chunks: intmap.New[uint64, *Chunk](256),
		log:    zerolog.Nop(),
	}
}

// SetLogger installs a logger for lifecycle and drain events.
func (x *Index) SetLogger(log zerolog.Logger) {
	x.log = log
}

// AdvanceTick sets the current tick used to stamp last-access times.
func (x *Index) AdvanceTick(tick uint64) {
	x.tick = tick
}

// Len returns the number of chunk records.
func (x *Index) Len() int {
	return x.chunks.Len()
}

// Get returns the chunk record at the location, updating its last-access
// tick.
func (x *Index) Get(loc Location) (*Chunk, bool) {
	c, ok := x.chunks.Get(loc.Key())
	if ok {
		c.lastAccess = x.tick
	}
	return c, ok
}

// Create installs a new record in PendingLoad for the streaming policy to
// fill. It errors when a record already exists: at most one chunk per
// location.
func (x *Index) Create(loc Location) (*Chunk, error) {
	if _, exists := x.chunks.Get(loc.Key()); exists {
		return nil, eris.Errorf("chunk %v already exists", loc)
	}
	c := x.install(loc)
	c.state = StatePendingLoad
	return c, nil
}

// GetOrCreate returns the record at the location, synthesizing an Active,
// generated chunk when none exists. Used by the edit pipeline, which may
// touch terrain the streaming policy never loaded.
func (x *Index) GetOrCreate(loc Location) *Chunk {
	if c, ok := x.chunks.Get(loc.Key()); ok {
		c.lastAccess = x.tick
		return c
	}
	c := x.install(loc)
	c.state = StateActive
	c.generated = true
	return c
}

func (x *Index) install(loc Location) *Chunk {
	c := &Chunk{Loc: loc, lastAccess: x.tick}
	x.chunks.Put(loc.Key(), c)
	x.order = append(x.order, loc)
	return c
}

// legalTransitions is the lifecycle machine: PendingLoad -> Loading ->
// Active -> Rendering (optional, presentation-only) -> PendingUnload ->
// Unloading -> Inactive.
var legalTransitions = map[State][]State{
	StatePendingLoad:   {StateLoading},
	StateLoading:       {StateActive},
	StateActive:        {StateRendering, StatePendingUnload},
	StateRendering:     {StateActive, StatePendingUnload},
	StatePendingUnload: {StateUnloading},
	StateUnloading:     {StateInactive},
	StateInactive:      {},
}

// Transition moves a chunk to a new lifecycle state, erroring on unknown
// locations and illegal jumps.
func (x *Index) Transition(loc Location, to State) error {
	c, ok := x.chunks.Get(loc.Key())
	if !ok {
		return eris.Errorf("chunk %v not found", loc)
	}
	for _, legal := range legalTransitions[c.state] {
		if legal == to {
			c.state = to
			c.lastAccess = x.tick
			x.log.Debug().
				Str("chunk", c.state.String()).
				Int32("x", loc.X).Int32("z", loc.Z).Int32("y", loc.Y).
				Msg("chunk state transition")
			return nil
		}
	}
	return eris.Errorf("illegal chunk transition %s -> %s at %v", c.state, to, loc)
}

// Remove deletes a chunk record. Only terminal (Inactive) records may be
// removed.
func (x *Index) Remove(loc Location) error {
	c, ok := x.chunks.Get(loc.Key())
	if !ok {
		return eris.Errorf("chunk %v not found", loc)
	}
	if c.state != StateInactive {
		return eris.Errorf("chunk %v is %s, not inactive", loc, c.state)
	}
	x.chunks.Del(loc.Key())
	for i, o := range x.order {
		if o == loc {
			x.order = append(x.order[:i], x.order[i+1:]...)
			break
		}
	}
	return nil
}

// All iterates chunk records in insertion order. Presentation consumers pull
// locations and bounds from here each refresh cycle; nothing is pushed.
func (x *Index) All() iter.Seq2[Location, *Chunk] {
	return func(yield func(Location, *Chunk) bool) {
		for _, loc := range x.order {
			c, ok := x.chunks.Get(loc.Key())
			if !ok {
				continue
			}
			if !yield(loc, c) {
				return
			}
		}
	}
}

// EvictionCandidates returns up to max locations ordered by least recent
// access, restricted to states the streaming policy may unload from.
func (x *Index) EvictionCandidates(max int) []Location {
	type candidate struct {
		loc    Location
		access uint64
	}
	var candidates []candidate
	for _, loc := range x.order {
		c, ok := x.chunks.Get(loc.Key())
		if !ok {
			continue
		}
		if c.state == StateActive || c.state == StateInactive {
			candidates = append(candidates, candidate{loc, c.lastAccess})
		}
	}
	// insertion sort; candidate lists are small
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].access < candidates[j-1].access; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	locs := make([]Location, len(candidates))
	for i, c := range candidates {
		locs[i] = c.loc
	}
	return locs
}

// QueueReassign queues a chunk-membership move instead of mutating
// occupancy inline. Safe to call from worker goroutines; a movement system
// whose write-set does not cover chunk ownership must never apply the move
// itself.
func (x *Index) QueueReassign(entity EntityHandle, from *Location, to Location) {
	x.pendingMu.Lock()
	x.pending = append(x.pending, Reassignment{Entity: entity, From: from, To: to})
	x.pendingMu.Unlock()
}

// PendingReassignments returns the number of queued moves.
func (x *Index) PendingReassignments() int {
	x.pendingMu.Lock()
	defer x.pendingMu.Unlock()
	return len(x.pending)
}

// DrainReassignments applies every queued move on the calling goroutine:
// the old chunk's occupancy is decremented, the new chunk's incremented, and
// both are flagged dirty when their occupancy changed. The applied moves are
// returned so callers can refresh cached assignments.
func (x *Index) DrainReassignments() []Reassignment {
	x.pendingMu.Lock()
	moves := x.pending
	x.pending = nil
	x.pendingMu.Unlock()

	for _, m := range moves {
		if m.From != nil {
			if old, ok := x.chunks.Get(m.From.Key()); ok {
				old.occupancy--
				old.dirty = true
				old.lastAccess = x.tick
			}
		}
		c := x.GetOrCreate(m.To)
		c.occupancy++
		c.dirty = true
	}
	return moves
}
