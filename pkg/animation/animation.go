package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// Animation is a schedulable unit: one of the drivers ([TimingAnimation],
// [SpringAnimation], [DecayAnimation]) or combinators ([SequenceAnimation],
// [ParallelAnimation], [DelayAnimation], [LoopAnimation]).
//
// The set is closed: the lifecycle methods are unexported, so only this
// package can add kinds, and the scheduler drives every kind through the
// same advance step.
type Animation interface {
	// State returns the current lifecycle state.
	State() RunState
	// Reset returns the animation (and its children) to Idle so it can be
	// started again. A running animation is cancelled first.
	Reset()

	// validate checks configuration before anything is started.
	validate(d *Defaults) error
	// begin transitions to Running and claims any driven values.
	begin(s *Scheduler)
	// advance moves the animation to time now.
	advance(now time.Time) error
	// stop cancels the animation and any running descendants.
	stop()
	// reconcile ends a running combinator whose children were cancelled
	// by another writer since the last advance.
	reconcile()
	// rewind returns to Idle for another loop iteration, keeping captured
	// start values; restore writes those start values back first.
	rewind(restore bool)
}

// Defaults holds engine-wide parameters used when a config leaves a field zero.
type Defaults struct {
	// TimingEasing is used by timing animations without an Easing.
	TimingEasing Curve

	// Tension and Friction are the default spring parameterization.
	Tension  float64
	Friction float64
	// RestDisplacementThreshold is the distance from the goal treated as settled.
	RestDisplacementThreshold float64
	// RestSpeedThreshold is the speed (units per second) treated as settled.
	RestSpeedThreshold float64
	// SettleSteps is how many consecutive 1ms integration steps must be
	// settled before a spring finishes.
	SettleSteps int
	// MaxFrameDelta caps the time integrated for a single tick.
	MaxFrameDelta time.Duration

	// Deceleration is the per-millisecond velocity factor for decay.
	Deceleration float64
	// VelocityThreshold (units per millisecond) finishes a decay.
	VelocityThreshold float64
}

// DefaultDefaults returns the engine defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		TimingEasing:              EaseInOut,
		Tension:                   40,
		Friction:                  7,
		RestDisplacementThreshold: 0.001,
		RestSpeedThreshold:        0.001,
		SettleSteps:               16,
		MaxFrameDelta:             64 * time.Millisecond,
		Deceleration:              0.998,
		VelocityThreshold:         0.001,
	}
}

// Validate reports the first invalid default.
func (d *Defaults) Validate() error {
	switch {
	case d.TimingEasing == nil:
		return errors.Configf("TimingEasing", "must not be nil")
	case d.RestDisplacementThreshold <= 0:
		return errors.Configf("RestDisplacementThreshold", "must be > 0, got %v", d.RestDisplacementThreshold)
	case d.RestSpeedThreshold <= 0:
		return errors.Configf("RestSpeedThreshold", "must be > 0, got %v", d.RestSpeedThreshold)
	case d.SettleSteps < 1:
		return errors.Configf("SettleSteps", "must be >= 1, got %d", d.SettleSteps)
	case d.MaxFrameDelta <= 0:
		return errors.Configf("MaxFrameDelta", "must be > 0, got %v", d.MaxFrameDelta)
	case d.Deceleration <= 0 || d.Deceleration >= 1:
		return errors.Configf("Deceleration", "must be in (0, 1), got %v", d.Deceleration)
	case d.VelocityThreshold <= 0:
		return errors.Configf("VelocityThreshold", "must be > 0, got %v", d.VelocityThreshold)
	}
	if _, err := resolveSpring(SpringConfig{Tension: d.Tension, Friction: d.Friction}, d); err != nil {
		return err
	}
	return checkCurve("TimingEasing", d.TimingEasing)
}

// driver holds the state shared by Timing, Spring and Decay.
type driver struct {
	state  RunState
	target *Value
	sched  *Scheduler

	origin    float64
	hasOrigin bool
	from      float64

	timed bool
	t0    time.Time
}

func (d *driver) State() RunState { return d.state }

// beginOn claims the value for self and then captures the start position,
// so a previous writer has settled the value before it is read.
func (d *driver) beginOn(s *Scheduler, self writer) {
	d.sched = s
	d.state = Running
	d.timed = false
	d.target.claim(self)
	if !d.hasOrigin {
		d.origin = d.target.value
		d.hasOrigin = true
	}
	d.from = d.target.value
}

// elapsed returns time since the first advance, starting the clock if needed.
func (d *driver) elapsed(now time.Time) time.Duration {
	if !d.timed {
		d.timed = true
		d.t0 = now
	}
	return now.Sub(d.t0)
}

func (d *driver) commit(n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("driver produced non-finite value %v", n)
	}
	d.sched.commit(d.target, n)
	return nil
}

func (d *driver) finish(self writer) {
	d.state = Finished
	d.target.release(self)
}

func (d *driver) cancel(self writer) {
	if d.state != Running {
		return
	}
	d.state = Cancelled
	d.target.release(self)
}

// lose cancels the driver after another writer took its value, and lets
// the scheduler end the affected root right away.
func (d *driver) lose(self writer) {
	if d.state != Running {
		return
	}
	d.cancel(self)
	if d.sched != nil {
		d.sched.preempted()
	}
}

func (d *driver) reconcile() {}

func (d *driver) reset(self writer) {
	d.cancel(self)
	d.state = Idle
	d.hasOrigin = false
	d.timed = false
}

func (d *driver) rewindTo(self writer, restore bool) {
	d.cancel(self)
	if restore && d.hasOrigin && d.sched != nil {
		d.sched.commit(d.target, d.origin)
	}
	d.state = Idle
	d.timed = false
}

func checkTarget(v *Value) error {
	if v == nil {
		return errors.Configf("Value", "driver has no target value")
	}
	return nil
}

func checkFinite(field string, n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return errors.Configf(field, "must be finite, got %v", n)
	}
	return nil
}
