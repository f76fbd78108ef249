package sim

// footprintMask represents a set of up to 256 component type IDs.
// Each bit corresponds to a ComponentType.
type footprintMask [4]uint64

func (m *footprintMask) set(bit ComponentType) {
	i := bit >> 6
	o := bit & 63
	m[i] |= uint64(1) << uint64(o)
}

// intersects reports whether any bit is set in both masks.
func (m footprintMask) intersects(other footprintMask) bool {
	return (m[0]&other[0])|(m[1]&other[1])|(m[2]&other[2])|(m[3]&other[3]) != 0
}

func maskOf(types []ComponentType) footprintMask {
	var m footprintMask
	for _, t := range types {
		m.set(t)
	}
	return m
}

// Footprint declares the component types a system reads and writes.
// Two systems may share a batch only if neither writes what the other
// reads or writes. Read/read overlap is allowed.
type Footprint struct {
	Reads  []ComponentType
	Writes []ComponentType
}

func (f Footprint) readMask() footprintMask  { return maskOf(f.Reads) }
func (f Footprint) writeMask() footprintMask { return maskOf(f.Writes) }
