package terrain

import (
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// EditKind selects the terrain edit primitive.
type EditKind uint8

const (
	// EditSetTile replaces the whole tile.
	EditSetTile EditKind = iota
	// EditAdjustHeight applies a signed delta to the tile height.
	EditAdjustHeight
	// EditChangeMaterial replaces the tile's material id.
	EditChangeMaterial
)

// Falloff maps normalized distance from a brush center to an edit-strength
// multiplier. All kinds yield 1 at distance 0 and 0 at distance 1.
type Falloff uint8

const (
	FalloffLinear Falloff = iota
	FalloffSmooth
	FalloffSharp
)

// Strength evaluates the falloff curve at normalized distance d in [0,1].
func (f Falloff) Strength(d float64) float64 {
	switch f {
	case FalloffSmooth:
		return (math.Cos(d*math.Pi) + 1) / 2
	case FalloffSharp:
		return (1 - d) * (1 - d)
	default:
		return 1 - d
	}
}

func (f Falloff) String() string {
	switch f {
	case FalloffSmooth:
		return "smooth"
	case FalloffSharp:
		return "sharp"
	}
	return "linear"
}

// TileModification is one queued terrain edit. It is created when queued and
// consumed when applied; nothing retains it afterwards.
type TileModification struct {
	Pos      Vec3
	Kind     EditKind
	Tile     Tile  // EditSetTile payload
	Delta    int   // EditAdjustHeight payload
	Material uint8 // EditChangeMaterial payload
}

// DefaultEditsPerTick is the drain cap used when none is configured.
const DefaultEditsPerTick = 100

// EditQueue accepts terrain edit requests and applies a bounded number of
// them per tick. Enqueue operations are fire-and-forget and safe from any
// goroutine; completion is observable only through the dirty-chunk set after
// the next drain. Excess edits stay queued rather than being applied
// unboundedly in one frame.
type EditQueue struct {
	mu      sync.Mutex
	pending []TileModification

	index   *Index
	perTick int
	dirty   map[Location]struct{}
	log     zerolog.Logger
}

// NewEditQueue creates an edit queue draining into the given index. The
// index may be wired later with SetIndex; draining without one discards the
// queue with a single warning. A non-positive cap falls back to
// DefaultEditsPerTick.
func NewEditQueue(index *Index, editsPerTick int) *EditQueue {
	if editsPerTick <= 0 {
		editsPerTick = DefaultEditsPerTick
	}
	return &EditQueue{
		index:   index,
		perTick: editsPerTick,
		dirty:   make(map[Location]struct{}),
		log:     zerolog.Nop(),
	}
}

// SetLogger installs a logger for drain warnings.
func (q *EditQueue) SetLogger(log zerolog.Logger) {
	q.log = log
}

// SetIndex wires the chunk index the queue drains into.
func (q *EditQueue) SetIndex(index *Index) {
	q.index = index
}

// QueueSetTile queues a whole-tile replacement at a world position.
func (q *EditQueue) QueueSetTile(pos Vec3, tile Tile) {
	q.enqueue(TileModification{Pos: pos, Kind: EditSetTile, Tile: tile})
}

// QueueHeightAdjustment queues a signed height delta at a world position.
func (q *EditQueue) QueueHeightAdjustment(pos Vec3, delta int) {
	q.enqueue(TileModification{Pos: pos, Kind: EditAdjustHeight, Delta: delta})
}

// QueueMaterialChange queues a material replacement at a world position.
func (q *EditQueue) QueueMaterialChange(pos Vec3, material uint8) {
	q.enqueue(TileModification{Pos: pos, Kind: EditChangeMaterial, Material: material})
}

func (q *EditQueue) enqueue(m TileModification) {
	q.mu.Lock()
	q.pending = append(q.pending, m)
	q.mu.Unlock()
}

// ApplyHeightBrush queues height adjustments for every tile whose cell
// center lies within radius world units of center. Each tile's delta is the
// requested delta scaled by the falloff strength at its normalized distance
// and rounded; tiles whose scaled delta rounds to zero are skipped.
func (q *EditQueue) ApplyHeightBrush(center Vec3, radius float64, delta int, falloff Falloff) {
	if radius <= 0 || delta == 0 {
		return
	}
	minGX := floorDiv(center.X-radius, TileSize)
	maxGX := floorDiv(center.X+radius, TileSize)
	minGZ := floorDiv(center.Z-radius, TileSize)
	maxGZ := floorDiv(center.Z+radius, TileSize)

	for gz := minGZ; gz <= maxGZ; gz++ {
		for gx := minGX; gx <= maxGX; gx++ {
			cx := (float64(gx) + 0.5) * TileSize
			cz := (float64(gz) + 0.5) * TileSize
			dx := cx - center.X
			dz := cz - center.Z
			dist := math.Sqrt(dx*dx + dz*dz)
			if dist > radius {
				continue
			}
			strength := falloff.Strength(dist / radius)
			scaled := int(math.Round(float64(delta) * strength))
			if scaled == 0 {
				continue
			}
			q.QueueHeightAdjustment(Vec3{X: cx, Y: center.Y, Z: cz}, scaled)
		}
	}
}

// Pending returns the number of queued edits.
func (q *EditQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain applies at most the per-tick cap of queued edits and returns how
// many committed. Invalid or unresolvable edits are dropped without side
// effects and do not count toward the cap's committed total, but they do
// consume queue slots. Call only from the orchestrating goroutine.
func (q *EditQueue) Drain(tick uint64) int {
	q.mu.Lock()
	if q.index == nil {
		// Configuration gap: nothing to apply edits to. Discard the whole
		// queue with one warning instead of failing per item.
		dropped := len(q.pending)
		q.pending = nil
		q.mu.Unlock()
		if dropped > 0 {
			q.log.Warn().
				Int("dropped", dropped).
				Msg("terrain edits discarded: no chunk index wired")
		}
		return 0
	}

	n := len(q.pending)
	if n > q.perTick {
		n = q.perTick
	}
	batch := q.pending[:n]
	q.pending = q.pending[n:]
	if len(q.pending) == 0 {
		q.pending = nil
	}
	q.mu.Unlock()

	committed := 0
	for i := range batch {
		if q.apply(&batch[i], tick) {
			committed++
		}
	}
	return committed
}

// apply resolves and commits one edit. The edit mutates a copy of the tile
// and commits only if validation passes.
func (q *EditQueue) apply(m *TileModification, tick uint64) bool {
	loc, tx, tz, ok := resolve(m.Pos)
	if !ok {
		return false
	}

	// validate before touching the index so a dropped edit never
	// synthesizes a chunk
	switch m.Kind {
	case EditSetTile:
		if m.Tile.Material > MaxMaterialID {
			return false
		}
	case EditChangeMaterial:
		if m.Material > MaxMaterialID {
			return false
		}
	case EditAdjustHeight:
	default:
		return false
	}

	chunk := q.index.GetOrCreate(loc)
	tile := *chunk.Tile(tx, tz)

	switch m.Kind {
	case EditSetTile:
		tile = m.Tile
	case EditAdjustHeight:
		h := int(tile.Height) + m.Delta
		if h > math.MaxInt8 {
			h = math.MaxInt8
		} else if h < math.MinInt8 {
			h = math.MinInt8
		}
		tile.Height = int8(h)
	case EditChangeMaterial:
		tile.Material = m.Material
	}

	*chunk.Tile(tx, tz) = tile
	chunk.dirty = true
	chunk.lastAccess = tick
	q.dirty[loc] = struct{}{}
	return true
}

// resolve maps a world position to its chunk location and local tile
// coordinates. Positions outside the valid layer range fail.
func resolve(pos Vec3) (Location, int, int, bool) {
	loc := LocationOf(pos)
	if loc.Y < MinLayer || loc.Y > MaxLayer {
		return Location{}, 0, 0, false
	}
	gx := floorDiv(pos.X, TileSize)
	gz := floorDiv(pos.Z, TileSize)
	tx := int(gx - int64(loc.X)*TilesPerSide)
	tz := int(gz - int64(loc.Z)*TilesPerSide)
	return loc, tx, tz, true
}

// DirtyCount returns the number of chunks dirtied since the last consume.
func (q *EditQueue) DirtyCount() int {
	return len(q.dirty)
}

// ConsumeDirty returns the deduplicated set of chunks dirtied by committed
// edits and resets it.
func (q *EditQueue) ConsumeDirty() []Location {
	if len(q.dirty) == 0 {
		return nil
	}
	locs := make([]Location, 0, len(q.dirty))
	for loc := range q.dirty {
		locs = append(locs, loc)
	}
	clear(q.dirty)
	return locs
}
