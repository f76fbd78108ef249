package sim

import "reflect"

// MaxComponentTypes is the number of distinct component types a single
// registry can hold. Footprint masks are sized to match.
const MaxComponentTypes = 256

// ComponentType identifies a registered component type within one registry.
// It doubles as the bit position inside a footprint mask.
type ComponentType uint8

// ComponentRegistry manages component type registration for one simulation
// instance. Each EntityStore has its own registry, allowing multiple
// independent simulations to coexist without interference.
type ComponentRegistry struct {
	ids       map[reflect.Type]ComponentType
	names     []string
	factories []func() iComponentStore
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		ids: make(map[reflect.Type]ComponentType),
	}
}

// RegisterComponent registers a new component type and returns its identifier.
// This must be called for each component type before it can be used in a
// footprint or installed on an entity.
func RegisterComponent[T any](r *ComponentRegistry) ComponentType {
	t := reflect.TypeFor[T]()
	if id, ok := r.ids[t]; ok {
		return id
	}
	if len(r.names) >= MaxComponentTypes {
		panic("sim: too many component types")
	}
	id := ComponentType(len(r.names))
	r.ids[t] = id
	r.names = append(r.names, t.String())
	r.factories = append(r.factories, func() iComponentStore {
		return &componentStore[T]{}
	})
	return id
}

// TypeID returns the identifier for a registered component type.
// The second return value is false if the type was never registered.
func TypeID[T any](r *ComponentRegistry) (ComponentType, bool) {
	id, ok := r.ids[reflect.TypeFor[T]()]
	return id, ok
}

// Name returns the registered name for a component type identifier.
func (r *ComponentRegistry) Name(id ComponentType) string {
	if int(id) >= len(r.names) {
		return "<unregistered>"
	}
	return r.names[id]
}

// Count returns the number of registered component types.
func (r *ComponentRegistry) Count() int {
	return len(r.names)
}

func (r *ComponentRegistry) idOf(t reflect.Type) (ComponentType, bool) {
	id, ok := r.ids[t]
	return id, ok
}

func (r *ComponentRegistry) newStore(id ComponentType) iComponentStore {
	return r.factories[id]()
}

// iComponentStore is a type-erased dense store for one component type,
// addressed by entity slot index.
type iComponentStore interface {
	Set(index int, item any)
	Get(index int) any
	Remove(index int)
	Has(index int) bool
}

const componentBlockSize = 64

// componentStore keeps components of type T in fixed-size blocks addressed
// by entity slot index. Slots are stable; destroying an entity clears its
// slot without moving anything else.
type componentStore[T any] struct {
	blocks [][componentBlockSize]T
	filled [][componentBlockSize]bool
}

func (cs *componentStore[T]) grow(blockIdx int) {
	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, [componentBlockSize]T{})
		cs.filled = append(cs.filled, [componentBlockSize]bool{})
	}
}

// Set installs a component value at the given slot index.
func (cs *componentStore[T]) Set(index int, item any) {
	var concrete T
	if ptr, ok := item.(*T); ok {
		concrete = *ptr
	} else if val, ok := item.(T); ok {
		concrete = val
	} else {
		return
	}

	blockIdx := index / componentBlockSize
	slotIdx := index % componentBlockSize
	cs.grow(blockIdx)

	cs.blocks[blockIdx][slotIdx] = concrete
	cs.filled[blockIdx][slotIdx] = true
}

// Get returns a pointer to the component at the given slot index, or nil.
func (cs *componentStore[T]) Get(index int) any {
	if index < 0 {
		return nil
	}
	blockIdx := index / componentBlockSize
	slotIdx := index % componentBlockSize
	if blockIdx >= len(cs.blocks) || !cs.filled[blockIdx][slotIdx] {
		return nil
	}
	return &cs.blocks[blockIdx][slotIdx]
}

// Remove clears the slot at the given index.
func (cs *componentStore[T]) Remove(index int) {
	if index < 0 {
		return
	}
	blockIdx := index / componentBlockSize
	slotIdx := index % componentBlockSize
	if blockIdx >= len(cs.blocks) {
		return
	}
	if cs.filled[blockIdx][slotIdx] {
		var zero T
		cs.blocks[blockIdx][slotIdx] = zero
		cs.filled[blockIdx][slotIdx] = false
	}
}

// Has reports whether a component exists at the given slot index.
func (cs *componentStore[T]) Has(index int) bool {
	if index < 0 {
		return false
	}
	blockIdx := index / componentBlockSize
	slotIdx := index % componentBlockSize
	if blockIdx >= len(cs.blocks) {
		return false
	}
	return cs.filled[blockIdx][slotIdx]
}
