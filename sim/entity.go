package sim

// Entity encodes both the generation (upper 32 bits) and the slot index (lower 32 bits).
// Two live entities never share an index; a destroyed index has its generation
// bumped before reuse, so stale handles compare unequal to the new occupant.
type Entity uint64

// NoEntity is the zero handle. Generations start at 1, so it never refers to a live entity.
const NoEntity Entity = 0

// NewEntity creates an Entity from a generation and a slot index.
func NewEntity(generation uint32, index uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the generation from the entity handle.
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the slot index from the entity handle.
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}
