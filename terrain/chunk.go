// Package terrain maintains the chunked spatial index of the world: chunk
// lifecycle, occupancy, integrity hashing, and the bounded terrain-edit
// pipeline.
package terrain

// Pick ONE pack/index scheme and never change it after persistence or
// networking depends on it. Chunks are 32x32 tile columns per vertical
// layer; the local index is x | z<<5.

const (
	// TilesPerSide is the tile grid edge length of one chunk.
	TilesPerSide = 32
	// TileSize is the world-unit edge length of one tile.
	TileSize = 1.0
	// LayerHeight is the world-unit height of one vertical layer.
	LayerHeight = 16.0

	// MinLayer and MaxLayer bound the vertical layer range. Positions that
	// resolve outside it are rejected.
	MinLayer = -8
	MaxLayer = 7

	// MaxMaterialID is the highest valid material id. Edits carrying a
	// larger id are dropped.
	MaxMaterialID = 250

	// ChunkSize is the world-unit edge length of one chunk in X/Z.
	ChunkSize = TilesPerSide * TileSize

	shiftZ    = 5
	mask5     = 31
	tileCount = TilesPerSide * TilesPerSide
)

// Location identifies a chunk on the 3D grid. X/Z form the horizontal grid,
// Y is the vertical layer index.
type Location struct {
	X, Z, Y int32
}

// Key packs the location into a single map key. X and Z use 24 bits each
// (world bounded to ±8M chunks per axis), Y uses 16.
func (l Location) Key() uint64 {
	return uint64(uint32(l.X)&0xFFFFFF)<<40 |
		uint64(uint32(l.Z)&0xFFFFFF)<<16 |
		uint64(uint16(l.Y))
}

// Vec3 is a world-space position.
type Vec3 struct {
	X, Y, Z float64
}

// AABB is an axis-aligned box in world coordinates. Min is inclusive,
// Max exclusive, so adjacent chunk bounds tile the world without overlap.
type AABB struct {
	Min, Max Vec3
}

// Contains reports whether the point lies inside the box.
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

// BoundsOf derives the world-space box of a chunk location. The derivation
// is deterministic: the same location always yields the same box.
func BoundsOf(l Location) AABB {
	return AABB{
		Min: Vec3{
			X: float64(l.X) * ChunkSize,
			Y: float64(l.Y) * LayerHeight,
			Z: float64(l.Z) * ChunkSize,
		},
		Max: Vec3{
			X: float64(l.X+1) * ChunkSize,
			Y: float64(l.Y+1) * LayerHeight,
			Z: float64(l.Z+1) * ChunkSize,
		},
	}
}

// LocationOf resolves a world position to its owning chunk location.
func LocationOf(p Vec3) Location {
	return Location{
		X: int32(floorDiv(p.X, ChunkSize)),
		Z: int32(floorDiv(p.Z, ChunkSize)),
		Y: int32(floorDiv(p.Y, LayerHeight)),
	}
}

func floorDiv(v, size float64) int64 {
	q := v / size
	i := int64(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

// State is the chunk lifecycle state.
type State uint8

const (
	StatePendingLoad State = iota
	StateLoading
	StateActive
	StateRendering
	StatePendingUnload
	StateUnloading
	// StateInactive is terminal; the record is eligible for removal.
	StateInactive
)

func (s State) String() string {
	switch s {
	case StatePendingLoad:
		return "pending-load"
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateRendering:
		return "rendering"
	case StatePendingUnload:
		return "pending-unload"
	case StateUnloading:
		return "unloading"
	case StateInactive:
		return "inactive"
	}
	return "unknown"
}

// Tile is one column cell of a chunk.
type Tile struct {
	Ground   uint8
	Material uint8
	Height   int8
}

// StaticInstance is a sparse static object anchored to a chunk, hashed
// separately from the tile grid.
type StaticInstance struct {
	Kind uint16
	X, Z uint8 // local 0..31
	Seed uint32
}

// Chunk is the authoritative record for one grid cell of the world.
type Chunk struct {
	Loc Location

	state      State
	occupancy  int
	lastAccess uint64
	dirty      bool
	generated  bool

	tiles   [tileCount]Tile
	statics []StaticInstance
}

// tileIdx converts local (x,z) (0..31) to a linear tile index.
func tileIdx(x, z int) int {
	return x | z<<shiftZ
}

// Tile returns a pointer to the tile at local coordinates.
func (c *Chunk) Tile(x, z int) *Tile {
	return &c.tiles[tileIdx(x&mask5, z&mask5)]
}

// State returns the lifecycle state.
func (c *Chunk) State() State { return c.state }

// Occupancy returns the number of entities currently assigned to the chunk.
func (c *Chunk) Occupancy() int { return c.occupancy }

// LastAccess returns the tick the chunk was last touched, the signal used
// for least-recently-used eviction ordering.
func (c *Chunk) LastAccess() uint64 { return c.lastAccess }

// Dirty reports whether the chunk content changed since ClearDirty.
func (c *Chunk) Dirty() bool { return c.dirty }

// ClearDirty resets the dirty flag, typically after a downstream consumer
// observed the chunk.
func (c *Chunk) ClearDirty() { c.dirty = false }

// Generated reports whether the chunk was synthesized rather than loaded.
func (c *Chunk) Generated() bool { return c.generated }

// Statics returns the chunk's static object sidecar.
func (c *Chunk) Statics() []StaticInstance { return c.statics }

// AddStatic appends a static object and marks the chunk dirty.
func (c *Chunk) AddStatic(s StaticInstance) {
	c.statics = append(c.statics, s)
	c.dirty = true
}
