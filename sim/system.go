package sim

import "math"

// System represents one unit of per-tick update logic. User-defined systems
// implement this interface; custom state fields persist between frames.
// A system must confine its component access to the footprint it declared
// at registration.
type System interface {
	Execute(frame *Frame)
}

// Cadence selects how often a system becomes due to run.
type Cadence uint8

const (
	// CadenceEveryTick runs on every scheduler tick.
	CadenceEveryTick Cadence = iota
	// Cadence20Hz runs roughly twenty times per second.
	Cadence20Hz
	// Cadence10Hz runs roughly ten times per second.
	Cadence10Hz
	// Cadence1Hz runs roughly once per second.
	Cadence1Hz
	// CadenceSlow runs roughly once every five seconds.
	CadenceSlow
	// CadenceManual never becomes due on its own; see Scheduler.Trigger.
	CadenceManual
)

// period returns the cadence period in seconds. EveryTick is zero so any
// elapsed time makes the system due; Manual is unreachable by accumulation.
func (c Cadence) period() float64 {
	switch c {
	case CadenceEveryTick:
		return 0
	case Cadence20Hz:
		return 0.05
	case Cadence10Hz:
		return 0.1
	case Cadence1Hz:
		return 1.0
	case CadenceSlow:
		return 5.0
	default:
		return math.Inf(1)
	}
}

func (c Cadence) String() string {
	switch c {
	case CadenceEveryTick:
		return "every-tick"
	case Cadence20Hz:
		return "20hz"
	case Cadence10Hz:
		return "10hz"
	case Cadence1Hz:
		return "1hz"
	case CadenceSlow:
		return "slow"
	case CadenceManual:
		return "manual"
	}
	return "unknown"
}

// SystemConfig describes a system at registration time.
type SystemConfig struct {
	// Name identifies the system in stats, logs and Trigger calls.
	// Derived from the concrete type when empty.
	Name string
	// Footprint declares the component types the system reads and writes.
	Footprint Footprint
	// Cadence selects the execution frequency. Defaults to every tick.
	Cadence Cadence
}

// Frame carries per-tick context into system execution.
type Frame struct {
	DeltaTime float64
	Commands  *CommandBuffer
	Store     *EntityStore
	Events    *EventBus
}

func newFrame(dt float64, store *EntityStore, events *EventBus) *Frame {
	return &Frame{
		DeltaTime: dt,
		Commands:  NewCommandBuffer(),
		Store:     store,
		Events:    events,
	}
}
