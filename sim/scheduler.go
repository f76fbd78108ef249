package sim

import (
	"reflect"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Cadence        Cadence
	Enabled        bool
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type scheduledSystem struct {
	system  System
	name    string
	cadence Cadence

	reads     []ComponentType
	writes    []ComponentType
	readMask  footprintMask
	writeMask footprintMask

	enabled     bool
	accumulator float64
	manualDue   bool

	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// A scheduled system only ever appears in one batch per tick, so updating
// its own stats from a worker goroutine is race-free.
func (s *scheduledSystem) run(frame *Frame) {
	start := time.Now()
	s.system.Execute(frame)
	duration := time.Since(start)

	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration
	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

// Scheduler holds the registered systems and runs them each tick in
// conflict-free parallel batches on a fixed worker pool.
type Scheduler struct {
	store   *EntityStore
	pool    *WorkerPool
	events  *EventBus
	log     zerolog.Logger
	systems []*scheduledSystem

	tickCount   uint64
	lastBatches [][]string
}

// NewScheduler creates a scheduler over the given store, pool and event bus.
// Logging is disabled until SetLogger is called.
func NewScheduler(store *EntityStore, pool *WorkerPool, events *EventBus) *Scheduler {
	return &Scheduler{
		store:  store,
		pool:   pool,
		events: events,
		log:    zerolog.Nop(),
	}
}

// SetLogger installs a logger for registration and failure events.
func (s *Scheduler) SetLogger(log zerolog.Logger) {
	s.log = log
}

// Register adds a system with its declared footprint and cadence.
// Registration order is the order batches are built in.
func (s *Scheduler) Register(system System, cfg SystemConfig) {
	name := cfg.Name
	if name == "" {
		t := reflect.TypeOf(system)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		name = t.Name()
	}

	s.systems = append(s.systems, &scheduledSystem{
		system:      system,
		name:        name,
		cadence:     cfg.Cadence,
		reads:       cfg.Footprint.Reads,
		writes:      cfg.Footprint.Writes,
		readMask:    cfg.Footprint.readMask(),
		writeMask:   cfg.Footprint.writeMask(),
		enabled:     true,
		minDuration: time.Duration(1<<63 - 1),
	})

	s.log.Debug().
		Str("system", name).
		Str("cadence", cfg.Cadence.String()).
		Int("reads", len(cfg.Footprint.Reads)).
		Int("writes", len(cfg.Footprint.Writes)).
		Msg("system registered")
}

// SetEnabled toggles a system by name. Disabled systems are skipped without
// their accumulator being advanced or reset. Returns false if no system with
// that name is registered.
func (s *Scheduler) SetEnabled(name string, enabled bool) bool {
	sys := s.byName(name)
	if sys == nil {
		return false
	}
	sys.enabled = enabled
	return true
}

// Trigger marks a system due for the next tick. This is the only way a
// manual-cadence system ever runs. Returns false if no system with that name
// is registered.
func (s *Scheduler) Trigger(name string) bool {
	sys := s.byName(name)
	if sys == nil {
		return false
	}
	sys.manualDue = true
	return true
}

func (s *Scheduler) byName(name string) *scheduledSystem {
	for _, sys := range s.systems {
		if sys.name == name {
			return sys
		}
	}
	return nil
}

// dueSystems advances accumulators by dt and returns the systems due this
// tick, in registration order. An accumulator that meets its period is reset
// to zero; carried-over error is deliberately discarded so drift never
// compounds into a burst of deferred runs.
func (s *Scheduler) dueSystems(dt float64) []*scheduledSystem {
	var due []*scheduledSystem
	for _, sys := range s.systems {
		if !sys.enabled {
			continue
		}
		if sys.manualDue {
			sys.manualDue = false
			due = append(due, sys)
			continue
		}
		switch sys.cadence {
		case CadenceEveryTick:
			due = append(due, sys)
		case CadenceManual:
			// only runs via Trigger
		default:
			sys.accumulator += dt
			if sys.accumulator >= sys.cadence.period() {
				sys.accumulator = 0
				due = append(due, sys)
			}
		}
	}
	return due
}

// Tick runs one simulation step: selects due systems, partitions them into
// conflict-free batches, executes the batches in order with a barrier
// between them, then commits the frame's structural commands. A failing
// system is skipped and logged; the tick always completes.
func (s *Scheduler) Tick(dt float64) {
	s.tickCount++
	frame := newFrame(dt, s.store, s.events)

	due := s.dueSystems(dt)
	batches := buildBatches(due)

	s.lastBatches = s.lastBatches[:0]
	for _, batch := range batches {
		names := make([]string, len(batch))
		for i, sys := range batch {
			names[i] = sys.name
		}
		s.lastBatches = append(s.lastBatches, names)

		err := s.pool.ParallelFor(len(batch), func(i int) {
			batch[i].run(frame)
		})
		if err != nil {
			s.log.Warn().
				Err(err).
				Strs("batch", names).
				Uint64("tick", s.tickCount).
				Msg("system failed during batch execution")
		}
	}

	frame.Commands.Apply(s.store)
}

// TickCount returns the number of completed ticks.
func (s *Scheduler) TickCount() uint64 {
	return s.tickCount
}

// LastBatches returns the batch layout of the most recent tick as system
// names, in execution order.
func (s *Scheduler) LastBatches() [][]string {
	return s.lastBatches
}

// Stats returns statistics about system execution.
func (s *Scheduler) Stats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, sys := range s.systems {
		avgDuration := time.Duration(0)
		if sys.executionCount > 0 {
			avgDuration = sys.totalDuration / time.Duration(sys.executionCount)
		}
		stats.Systems[i] = SystemStats{
			Name:           sys.name,
			Cadence:        sys.cadence,
			Enabled:        sys.enabled,
			ExecutionCount: sys.executionCount,
			MinDuration:    sys.minDuration,
			MaxDuration:    sys.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   sys.lastDuration,
			TotalDuration:  sys.totalDuration,
		}
		totalExecs += sys.executionCount
	}
	stats.TotalExecutions = totalExecs
	return stats
}
