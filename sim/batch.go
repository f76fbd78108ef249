package sim

// buildBatches partitions the due systems into ordered batches such that any
// two systems sharing a batch have disjoint write/write and write/read
// footprints. Read/read overlap is allowed.
//
// Systems are processed in registration order and placed greedily into the
// first batch with no conflict, opening a new batch when none qualifies.
// The result is deterministic for a fixed input order, which keeps execution
// traces reproducible.
func buildBatches(due []*scheduledSystem) [][]*scheduledSystem {
	var batches [][]*scheduledSystem
	for _, sys := range due {
		placed := false
		for i := range batches {
			if !conflictsWithBatch(sys, batches[i]) {
				batches[i] = append(batches[i], sys)
				placed = true
				break
			}
		}
		if !placed {
			batches = append(batches, []*scheduledSystem{sys})
		}
	}
	return batches
}

func conflictsWithBatch(sys *scheduledSystem, batch []*scheduledSystem) bool {
	for _, member := range batch {
		if systemsConflict(sys, member) {
			return true
		}
	}
	return false
}

// systemsConflict reports whether two systems may not run concurrently:
// overlapping writes, or either one writing what the other reads.
func systemsConflict(a, b *scheduledSystem) bool {
	return a.writeMask.intersects(b.writeMask) ||
		a.writeMask.intersects(b.readMask) ||
		b.writeMask.intersects(a.readMask)
}
