package sim

// EntityMoved is published once per motion-system run with the slice of
// entities whose positions changed, so consumers can detect boundary
// crossings without scanning the whole population every tick. The slice is
// shared; handlers must not retain or mutate it.
type EntityMoved struct {
	Entities []Entity
	Offset   int
	Count    int
}

// Moved returns the affected sub-slice.
func (ev EntityMoved) Moved() []Entity {
	return ev.Entities[ev.Offset : ev.Offset+ev.Count]
}
