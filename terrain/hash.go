package terrain

// Integrity hashing detects content drift between two copies of a chunk
// without a full comparison. All hashes are FNV-1a style folds: seed with
// the offset basis, xor each input in, multiply by the prime. Keep the
// constants stable across versions; persisted hashes depend on them.

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// ChunkHash carries the terrain hash, the statics hash and their
// deterministic combination.
type ChunkHash struct {
	Terrain  uint64
	Statics  uint64
	Combined uint64
}

func fold(h, v uint64) uint64 {
	h ^= v
	h *= fnvPrime64
	return h
}

// TerrainHash folds the full tile grid into a 64-bit hash.
func TerrainHash(c *Chunk) uint64 {
	var h uint64 = fnvOffset64
	for i := range c.tiles {
		t := &c.tiles[i]
		h = fold(h, uint64(t.Ground))
		h = fold(h, uint64(t.Material))
		h = fold(h, uint64(uint8(t.Height)))
	}
	return h
}

// StaticsHash folds the static object sidecar into a 64-bit hash.
func StaticsHash(c *Chunk) uint64 {
	var h uint64 = fnvOffset64
	for _, s := range c.statics {
		h = fold(h, uint64(s.Kind))
		h = fold(h, uint64(s.X))
		h = fold(h, uint64(s.Z))
		h = fold(h, uint64(s.Seed))
	}
	return h
}

// CombineHashes mixes the terrain and statics hashes into one value.
// Changing either input changes the combination.
func CombineHashes(terrain, statics uint64) uint64 {
	var h uint64 = fnvOffset64
	h = fold(h, terrain)
	h = fold(h, statics)
	return h
}

// HashChunk computes all three hashes for a chunk.
func HashChunk(c *Chunk) ChunkHash {
	th := TerrainHash(c)
	sh := StaticsHash(c)
	return ChunkHash{
		Terrain:  th,
		Statics:  sh,
		Combined: CombineHashes(th, sh),
	}
}
