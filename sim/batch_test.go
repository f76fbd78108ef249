package sim_test

import (
	"math/rand"
	"testing"

	"github.com/DeityZeke/simcore/sim"
)

// recordingSystem records nothing; batching is observed via LastBatches.
type recordingSystem struct{}

func (recordingSystem) Execute(*sim.Frame) {}

func newBatchFixture() (*sim.Scheduler, *sim.WorkerPool, *sim.ComponentRegistry) {
	registry := newTestRegistry()
	store := sim.NewEntityStore(registry)
	pool := sim.NewWorkerPool(2)
	sched := sim.NewScheduler(store, pool, sim.NewEventBus())
	return sched, pool, registry
}

func TestBatchingSeparatesWriteConflicts(t *testing.T) {
	sched, pool, registry := newBatchFixture()
	defer pool.Close()

	posType, _ := sim.TypeID[Position](registry)
	velType, _ := sim.TypeID[Velocity](registry)
	healthType, _ := sim.TypeID[Health](registry)

	// A and B write the same component: different batches.
	sched.Register(recordingSystem{}, sim.SystemConfig{
		Name:      "A",
		Footprint: sim.Footprint{Writes: []sim.ComponentType{posType}},
	})
	sched.Register(recordingSystem{}, sim.SystemConfig{
		Name:      "B",
		Footprint: sim.Footprint{Writes: []sim.ComponentType{posType}},
	})
	// C reads what A writes: conflicts with A's batch, joins B's? No - C
	// also conflicts with nothing in B's batch, so first-fit places it there.
	sched.Register(recordingSystem{}, sim.SystemConfig{
		Name:      "C",
		Footprint: sim.Footprint{Reads: []sim.ComponentType{posType}, Writes: []sim.ComponentType{velType}},
	})
	// D touches only Health: fits the first batch.
	sched.Register(recordingSystem{}, sim.SystemConfig{
		Name:      "D",
		Footprint: sim.Footprint{Writes: []sim.ComponentType{healthType}},
	})

	sched.Tick(0.016)

	batches := sched.LastBatches()
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d: %v", len(batches), batches)
	}
	assertBatch(t, batches[0], "A", "D")
	assertBatch(t, batches[1], "B", "C")
}

func TestBatchingAllowsReadReadOverlap(t *testing.T) {
	sched, pool, registry := newBatchFixture()
	defer pool.Close()

	posType, _ := sim.TypeID[Position](registry)
	velType, _ := sim.TypeID[Velocity](registry)
	healthType, _ := sim.TypeID[Health](registry)

	sched.Register(recordingSystem{}, sim.SystemConfig{
		Name:      "ReaderA",
		Footprint: sim.Footprint{Reads: []sim.ComponentType{posType}, Writes: []sim.ComponentType{velType}},
	})
	sched.Register(recordingSystem{}, sim.SystemConfig{
		Name:      "ReaderB",
		Footprint: sim.Footprint{Reads: []sim.ComponentType{posType}, Writes: []sim.ComponentType{healthType}},
	})

	sched.Tick(0.016)

	batches := sched.LastBatches()
	if len(batches) != 1 {
		t.Fatalf("expected shared-read systems in one batch, got %v", batches)
	}
	assertBatch(t, batches[0], "ReaderA", "ReaderB")
}

// TestBatchingDisjointnessProperty checks the core invariant over randomized
// footprints: within any batch, no write/write or write/read overlap in
// either direction.
func TestBatchingDisjointnessProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		sched, pool, registry := newBatchFixture()

		posType, _ := sim.TypeID[Position](registry)
		velType, _ := sim.TypeID[Velocity](registry)
		healthType, _ := sim.TypeID[Health](registry)
		tagType, _ := sim.TypeID[Tag](registry)
		types := []sim.ComponentType{posType, velType, healthType, tagType}

		footprints := make(map[string]sim.Footprint)
		for i := 0; i < 12; i++ {
			var fp sim.Footprint
			for _, ct := range types {
				switch rng.Intn(3) {
				case 0:
					fp.Reads = append(fp.Reads, ct)
				case 1:
					fp.Writes = append(fp.Writes, ct)
				}
			}
			name := string(rune('a' + i))
			footprints[name] = fp
			sched.Register(recordingSystem{}, sim.SystemConfig{Name: name, Footprint: fp})
		}

		sched.Tick(0.016)

		for _, batch := range sched.LastBatches() {
			for i := 0; i < len(batch); i++ {
				for j := i + 1; j < len(batch); j++ {
					a, b := footprints[batch[i]], footprints[batch[j]]
					if overlaps(a.Writes, b.Writes) {
						t.Fatalf("trial %d: %s and %s share a write in one batch", trial, batch[i], batch[j])
					}
					if overlaps(a.Writes, b.Reads) || overlaps(b.Writes, a.Reads) {
						t.Fatalf("trial %d: %s and %s have a write/read conflict in one batch", trial, batch[i], batch[j])
					}
				}
			}
		}
		pool.Close()
	}
}

func TestBatchingIsDeterministic(t *testing.T) {
	build := func() [][]string {
		sched, pool, registry := newBatchFixture()
		defer pool.Close()

		posType, _ := sim.TypeID[Position](registry)
		velType, _ := sim.TypeID[Velocity](registry)
		healthType, _ := sim.TypeID[Health](registry)

		configs := []sim.SystemConfig{
			{Name: "move", Footprint: sim.Footprint{Reads: []sim.ComponentType{velType}, Writes: []sim.ComponentType{posType}}},
			{Name: "damage", Footprint: sim.Footprint{Writes: []sim.ComponentType{healthType}}},
			{Name: "knockback", Footprint: sim.Footprint{Writes: []sim.ComponentType{posType, velType}}},
			{Name: "regen", Footprint: sim.Footprint{Writes: []sim.ComponentType{healthType}}},
		}
		for _, cfg := range configs {
			sched.Register(recordingSystem{}, cfg)
		}
		sched.Tick(0.016)
		return sched.LastBatches()
	}

	first := build()
	for i := 0; i < 5; i++ {
		next := build()
		if len(next) != len(first) {
			t.Fatalf("batch count changed between identical runs: %v vs %v", first, next)
		}
		for b := range next {
			if len(next[b]) != len(first[b]) {
				t.Fatalf("batch %d changed between identical runs: %v vs %v", b, first, next)
			}
			for s := range next[b] {
				if next[b][s] != first[b][s] {
					t.Fatalf("batch assignment changed between identical runs: %v vs %v", first, next)
				}
			}
		}
	}
}

func assertBatch(t *testing.T, batch []string, want ...string) {
	t.Helper()
	if len(batch) != len(want) {
		t.Fatalf("expected batch %v, got %v", want, batch)
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Fatalf("expected batch %v, got %v", want, batch)
		}
	}
}

func overlaps(a, b []sim.ComponentType) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
