package sim

import "reflect"

// EntityStore owns entity identities and per-type component data.
// Slot indices are recycled through a free list; generations guarantee
// stale handles never alias a recycled slot's new occupant.
type EntityStore struct {
	registry    *ComponentRegistry
	stores      []iComponentStore // indexed by ComponentType, created lazily
	generations []uint32
	alive       []bool
	free        []uint32
	count       int
}

// NewEntityStore creates a new entity store backed by the given registry.
func NewEntityStore(registry *ComponentRegistry) *EntityStore {
	return &EntityStore{
		registry: registry,
		stores:   make([]iComponentStore, MaxComponentTypes),
	}
}

// Registry returns the component registry backing this store.
func (s *EntityStore) Registry() *ComponentRegistry {
	return s.registry
}

// Create allocates or recycles a slot index and installs the given component
// values. The handle is returned only after every component is in place, so
// no partially-composed entity is ever observable.
func (s *EntityStore) Create(components ...any) Entity {
	if len(components) == 0 {
		panic("cannot create entity without components")
	}

	var index uint32
	if n := len(s.free); n > 0 {
		index = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		index = uint32(len(s.generations))
		s.generations = append(s.generations, 1)
		s.alive = append(s.alive, false)
	}

	for _, comp := range components {
		s.storeFor(comp).Set(int(index), comp)
	}
	s.alive[index] = true
	s.count++
	return NewEntity(s.generations[index], index)
}

// Destroy releases the entity's slot and clears its components.
// Stale handles are a silent no-op. The generation is bumped here, before
// the index can be reused, so the old handle is dead immediately.
func (s *EntityStore) Destroy(e Entity) {
	index := e.Index()
	if !s.validHandle(e) {
		return
	}
	for _, store := range s.stores {
		if store != nil {
			store.Remove(int(index))
		}
	}
	s.generations[index]++
	s.alive[index] = false
	s.free = append(s.free, index)
	s.count--
}

// Alive reports whether the handle refers to a live entity.
func (s *EntityStore) Alive(e Entity) bool {
	return s.validHandle(e)
}

// Len returns the number of live entities.
func (s *EntityStore) Len() int {
	return s.count
}

// Each calls fn for every live entity in slot order.
func (s *EntityStore) Each(fn func(Entity)) {
	for i, live := range s.alive {
		if live {
			fn(NewEntity(s.generations[i], uint32(i)))
		}
	}
}

// Has reports whether a live entity carries a component of the given type.
func (s *EntityStore) Has(e Entity, t ComponentType) bool {
	if !s.validHandle(e) {
		return false
	}
	store := s.stores[t]
	return store != nil && store.Has(int(e.Index()))
}

func (s *EntityStore) validHandle(e Entity) bool {
	index := e.Index()
	if int(index) >= len(s.generations) {
		return false
	}
	return s.alive[index] && s.generations[index] == e.Generation()
}

func (s *EntityStore) storeFor(comp any) iComponentStore {
	t := reflect.TypeOf(comp)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	id, ok := s.registry.idOf(t)
	if !ok {
		panic("component type " + t.String() + " not registered")
	}
	if s.stores[id] == nil {
		s.stores[id] = s.registry.newStore(id)
	}
	return s.stores[id]
}

// GetComponent returns a pointer to the entity's component of type T, or nil
// if the handle is stale or the component is absent. Mutation through the
// returned pointer is only safe within the caller's declared write-set.
func GetComponent[T any](s *EntityStore, e Entity) *T {
	if !s.validHandle(e) {
		return nil
	}
	id, ok := s.registry.idOf(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	store := s.stores[id]
	if store == nil {
		return nil
	}
	ptr := store.Get(int(e.Index()))
	if ptr == nil {
		return nil
	}
	return ptr.(*T)
}

// SetComponent installs or replaces a component on a live entity.
// Stale handles are a silent no-op.
func SetComponent[T any](s *EntityStore, e Entity, value T) {
	if !s.validHandle(e) {
		return
	}
	s.storeFor(value).Set(int(e.Index()), value)
}
