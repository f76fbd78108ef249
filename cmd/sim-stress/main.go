package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/DeityZeke/simcore/config"
	"github.com/DeityZeke/simcore/sim"
	"github.com/DeityZeke/simcore/terrain"
	"github.com/DeityZeke/simcore/world"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The number of wandering entities to create.")
	workers := flag.Int("workers", 0, "Worker pool size; 0 uses one per CPU.")
	systemCount := flag.Int("systems", 24, "The number of synthetic systems to register.")
	editsPerTick := flag.Int("edits-per-tick", 100, "Terrain edit drain cap per tick.")
	editRate := flag.Int("edit-rate", 200, "Terrain edits queued per tick.")
	seed := flag.Int64("seed", 1, "Seed for footprints, positions and edits.")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Default()
	cfg.Scheduler.Workers = *workers
	cfg.Terrain.EditsPerTick = *editsPerTick

	w := world.NewWorld(cfg, log)
	defer w.Close()

	rng := rand.New(rand.NewSource(*seed))
	extraTypes := registerStressComponents(w)
	entities := spawnWanderers(w, rng, *entityCount)
	registerStressSystems(w, rng, *systemCount, extraTypes, entities)

	report := &Report{
		Duration: *duration,
		Entities: *entityCount,
		Systems:  *systemCount,
		Workers:  w.Pool.Size(),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info().
		Int("entities", *entityCount).
		Int("systems", *systemCount).
		Dur("duration", *duration).
		Msg("stress run starting")

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrame := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			dt := time.Since(lastFrame).Seconds()
			lastFrame = time.Now()

			floodEdits(w, rng, *editRate)

			tickStart := time.Now()
			w.Tick(dt)
			report.TickTime.Samples = append(report.TickTime.Samples, time.Since(tickStart))
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalTicks = w.TickCount()
	report.ChunkCount = w.Chunks.Len()
	report.BatchCount = len(w.Scheduler.LastBatches())
	report.TickTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	fmt.Println("\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to generate report")
	}
	fmt.Println("--- End of Report ---")
}

// stress components pad the footprint space so batching has something to
// chew on
type statA struct{ V float64 }
type statB struct{ V float64 }
type statC struct{ V float64 }
type statD struct{ V float64 }

func registerStressComponents(w *world.World) []sim.ComponentType {
	return []sim.ComponentType{
		sim.RegisterComponent[statA](w.Registry),
		sim.RegisterComponent[statB](w.Registry),
		sim.RegisterComponent[statC](w.Registry),
		sim.RegisterComponent[statD](w.Registry),
	}
}

func spawnWanderers(w *world.World, rng *rand.Rand, count int) []sim.Entity {
	entities := make([]sim.Entity, count)
	for i := range entities {
		entities[i] = w.Store.Create(
			world.Position{
				X: rng.Float64()*512 - 256,
				Y: rng.Float64() * 8,
				Z: rng.Float64()*512 - 256,
			},
			world.ChunkRef{},
			statA{}, statB{}, statC{}, statD{},
		)
	}
	return entities
}

// wanderSystem moves every entity by a random step and publishes the moved
// set so chunk membership stays current.
type wanderSystem struct {
	entities []sim.Entity
	rng      *rand.Rand
}

func (s *wanderSystem) Execute(frame *sim.Frame) {
	for _, e := range s.entities {
		pos := sim.GetComponent[world.Position](frame.Store, e)
		pos.X += (s.rng.Float64() - 0.5) * 4 * frame.DeltaTime
		pos.Z += (s.rng.Float64() - 0.5) * 4 * frame.DeltaTime
	}
	sim.Publish(frame.Events, sim.EntityMoved{
		Entities: s.entities,
		Count:    len(s.entities),
	})
}

// churnSystem burns a little CPU against its footprint's component.
type churnSystem struct {
	entities []sim.Entity
	work     func(store *sim.EntityStore, e sim.Entity)
}

func (s *churnSystem) Execute(frame *sim.Frame) {
	for _, e := range s.entities {
		s.work(frame.Store, e)
	}
}

func registerStressSystems(w *world.World, rng *rand.Rand, count int, types []sim.ComponentType, entities []sim.Entity) {
	w.Scheduler.Register(
		&wanderSystem{entities: entities, rng: rand.New(rand.NewSource(rng.Int63()))},
		sim.SystemConfig{
			Name: "wander",
			// the moved-event handler reads cached chunk refs inline
			Footprint: sim.Footprint{
				Reads:  []sim.ComponentType{w.ChunkRefType},
				Writes: []sim.ComponentType{w.PositionType},
			},
		},
	)

	workers := []func(store *sim.EntityStore, e sim.Entity){
		func(store *sim.EntityStore, e sim.Entity) { sim.GetComponent[statA](store, e).V += 0.25 },
		func(store *sim.EntityStore, e sim.Entity) { sim.GetComponent[statB](store, e).V *= 1.001 },
		func(store *sim.EntityStore, e sim.Entity) { sim.GetComponent[statC](store, e).V -= 0.125 },
		func(store *sim.EntityStore, e sim.Entity) { sim.GetComponent[statD](store, e).V += 1 },
	}
	cadences := []sim.Cadence{sim.CadenceEveryTick, sim.CadenceEveryTick, sim.Cadence20Hz, sim.Cadence10Hz}

	for i := 0; i < count; i++ {
		slot := rng.Intn(len(types))
		w.Scheduler.Register(
			&churnSystem{entities: entities, work: workers[slot]},
			sim.SystemConfig{
				Name:      fmt.Sprintf("churn-%02d", i),
				Cadence:   cadences[rng.Intn(len(cadences))],
				Footprint: sim.Footprint{Writes: []sim.ComponentType{types[slot]}},
			},
		)
	}
}

func floodEdits(w *world.World, rng *rand.Rand, perTick int) {
	for i := 0; i < perTick; i++ {
		pos := terrain.Vec3{
			X: rng.Float64()*512 - 256,
			Y: rng.Float64() * 8,
			Z: rng.Float64()*512 - 256,
		}
		switch rng.Intn(3) {
		case 0:
			w.Edits.QueueHeightAdjustment(pos, rng.Intn(11)-5)
		case 1:
			w.Edits.QueueMaterialChange(pos, uint8(rng.Intn(terrain.MaxMaterialID+1)))
		default:
			w.Edits.QueueSetTile(pos, terrain.Tile{
				Ground:   uint8(rng.Intn(8)),
				Material: uint8(rng.Intn(terrain.MaxMaterialID + 1)),
				Height:   int8(rng.Intn(32) - 16),
			})
		}
	}
}
