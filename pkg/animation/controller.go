package animation

import (
	"fmt"
	"math"
	"time"
)

// AnimationStatus is where an [AnimationController] is in its sweep.
//
//	            Forward / Fling(v >= 0)
//	Dismissed ───────────────────────────► Completed
//	    ▲                                      │
//	    └──────────────────────────────────────┘
//	            Reverse / Fling(v < 0)
//
// A controller at rest sits at Dismissed (lower bound) or Completed (upper
// bound). Forward and Reverse report the direction of the current sweep, and
// are kept when a sweep is stopped between the bounds.
type AnimationStatus int

const (
	// AnimationDismissed means the controller rests at its lower bound.
	AnimationDismissed AnimationStatus = iota
	// AnimationForward means the controller is moving toward its upper bound.
	AnimationForward
	// AnimationReverse means the controller is moving toward its lower bound.
	AnimationReverse
	// AnimationCompleted means the controller rests at its upper bound.
	AnimationCompleted
)

func (s AnimationStatus) String() string {
	switch s {
	case AnimationDismissed:
		return "dismissed"
	case AnimationForward:
		return "forward"
	case AnimationReverse:
		return "reverse"
	case AnimationCompleted:
		return "completed"
	default:
		return fmt.Sprintf("AnimationStatus(%d)", int(s))
	}
}

// flingStiffness is the stiffness of the critically damped spring used by
// Fling, with unit mass.
const flingStiffness = 500

// AnimationController sweeps a [Value] between LowerBound and UpperBound on
// a [Scheduler]. Each sweep is a single root animation: a Timing for
// Forward, Reverse and AnimateTo, a Spring for Fling, and a Loop for Repeat.
// Starting a sweep stops the previous one.
//
// Map the value onto other ranges or types with [Interpolate] or a [Tween].
// Call Dispose when done.
type AnimationController struct {
	// Duration is the length of a sweep from LowerBound to UpperBound.
	// Shorter distances take the same time.
	Duration time.Duration
	// Curve eases timing sweeps. Nil is linear.
	Curve Curve
	// LowerBound and UpperBound default to 0 and 1.
	LowerBound float64
	UpperBound float64

	sched  *Scheduler
	value  *Value
	status AnimationStatus
	anim   Animation
	run    RunID

	statusListeners []statusListener
	nextListenerID  int
}

type statusListener struct {
	id int
	fn func(AnimationStatus)
}

// NewAnimationController creates a controller at its lower bound whose
// sweeps run on s.
func NewAnimationController(s *Scheduler, duration time.Duration) *AnimationController {
	return &AnimationController{
		Duration:   duration,
		Curve:      LinearCurve,
		LowerBound: 0,
		UpperBound: 1,
		sched:      s,
		value:      NewValue(0),
		status:     AnimationDismissed,
	}
}

// Value returns the current value.
func (c *AnimationController) Value() float64 { return c.value.Value() }

// Animated returns the driven value, for interpolation and arithmetic nodes.
func (c *AnimationController) Animated() *Value { return c.value }

// Forward sweeps to UpperBound.
func (c *AnimationController) Forward() error {
	return c.animateTo(c.UpperBound, AnimationForward)
}

// Reverse sweeps to LowerBound.
func (c *AnimationController) Reverse() error {
	return c.animateTo(c.LowerBound, AnimationReverse)
}

// AnimateTo sweeps to target. The direction follows the sign of the move.
func (c *AnimationController) AnimateTo(target float64) error {
	if target > c.value.Value() {
		return c.animateTo(target, AnimationForward)
	}
	return c.animateTo(target, AnimationReverse)
}

func (c *AnimationController) animateTo(target float64, direction AnimationStatus) error {
	c.Stop()
	if c.Duration <= 0 || c.value.Value() == target {
		c.value.SetValue(target)
		c.settle()
		return nil
	}
	return c.start(Timing(c.value, TimingConfig{To: target, Duration: c.Duration, Easing: c.curve()}), direction)
}

// Fling settles on UpperBound when velocity >= 0 and on LowerBound
// otherwise, using a critically damped spring that starts at velocity
// (units per millisecond) and never overshoots the bound.
func (c *AnimationController) Fling(velocity float64) error {
	target, direction := c.UpperBound, AnimationForward
	if velocity < 0 {
		target, direction = c.LowerBound, AnimationReverse
	}
	c.Stop()
	return c.start(Spring(c.value, SpringConfig{
		To:                target,
		Velocity:          velocity,
		Stiffness:         flingStiffness,
		Damping:           2 * math.Sqrt(flingStiffness),
		Mass:              1,
		OvershootClamping: true,
	}), direction)
}

// Repeat sweeps from LowerBound to UpperBound until stopped. With reverse
// set, every other sweep runs back down instead of jumping to LowerBound.
// The status stays AnimationForward while repeating.
func (c *AnimationController) Repeat(reverse bool) error {
	c.Stop()
	if c.Duration <= 0 {
		return c.animateTo(c.UpperBound, AnimationForward)
	}
	c.value.SetValue(c.LowerBound)
	up := Timing(c.value, TimingConfig{To: c.UpperBound, Duration: c.Duration, Easing: c.curve()})
	var loop *LoopAnimation
	if reverse {
		down := Timing(c.value, TimingConfig{To: c.LowerBound, Duration: c.Duration, Easing: c.curve()})
		loop = LoopWith(Sequence(up, down), LoopConfig{Iterations: -1, SkipReset: true})
	} else {
		loop = Loop(up, -1)
	}
	return c.start(loop, AnimationForward)
}

func (c *AnimationController) curve() Curve {
	if c.Curve == nil {
		return LinearCurve
	}
	return c.Curve
}

func (c *AnimationController) start(anim Animation, direction AnimationStatus) error {
	id, err := c.sched.Start(anim, func(res Result) {
		if c.anim != anim {
			return
		}
		c.anim = nil
		c.run = ""
		if res.Finished {
			c.settle()
		}
	})
	if err != nil {
		return err
	}
	c.anim = anim
	c.run = id
	c.setStatus(direction)
	return nil
}

// settle moves the status to a bound the value has reached.
func (c *AnimationController) settle() {
	switch v := c.value.Value(); {
	case v <= c.LowerBound:
		c.setStatus(AnimationDismissed)
	case v >= c.UpperBound:
		c.setStatus(AnimationCompleted)
	}
}

// Reset stops any sweep and jumps to LowerBound.
func (c *AnimationController) Reset() {
	c.Stop()
	c.value.SetValue(c.LowerBound)
	c.setStatus(AnimationDismissed)
}

// Stop freezes the value where it is. The status keeps the sweep direction.
func (c *AnimationController) Stop() {
	if c.anim == nil {
		return
	}
	run := c.run
	c.anim = nil
	c.run = ""
	c.sched.StopRun(run)
}

// Status returns the current status.
func (c *AnimationController) Status() AnimationStatus { return c.status }

// IsAnimating reports whether a sweep is scheduled.
func (c *AnimationController) IsAnimating() bool { return c.anim != nil }

// IsCompleted reports whether the controller rests at UpperBound.
func (c *AnimationController) IsCompleted() bool { return c.status == AnimationCompleted }

// IsDismissed reports whether the controller rests at LowerBound.
func (c *AnimationController) IsDismissed() bool { return c.status == AnimationDismissed }

// AddListener calls fn after every committed value change and returns a
// function that removes it.
func (c *AnimationController) AddListener(fn func()) func() {
	return c.value.AddListener(func(float64) { fn() })
}

// AddStatusListener calls fn on every status change, in registration order,
// and returns a function that removes it.
func (c *AnimationController) AddStatusListener(fn func(AnimationStatus)) func() {
	id := c.nextListenerID
	c.nextListenerID++
	c.statusListeners = append(c.statusListeners, statusListener{id: id, fn: fn})
	return func() {
		for i, l := range c.statusListeners {
			if l.id == id {
				c.statusListeners = append(c.statusListeners[:i:i], c.statusListeners[i+1:]...)
				return
			}
		}
	}
}

func (c *AnimationController) setStatus(status AnimationStatus) {
	if c.status == status {
		return
	}
	c.status = status
	for _, l := range append([]statusListener(nil), c.statusListeners...) {
		l.fn(status)
	}
}

// Dispose stops the controller and drops every listener.
func (c *AnimationController) Dispose() {
	c.Stop()
	c.value.listeners = nil
	c.statusListeners = nil
}
