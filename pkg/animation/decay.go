package animation

import (
	"math"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// DecayConfig configures a [DecayAnimation].
type DecayConfig struct {
	// Velocity is the initial velocity in units per millisecond.
	Velocity float64
	// Deceleration is the fraction of velocity kept per millisecond, in (0, 1).
	// Zero uses the scheduler default.
	Deceleration float64
	// VelocityThreshold overrides the scheduler default when > 0.
	VelocityThreshold float64
}

// DecayAnimation coasts a value with exponentially decaying velocity, as
// after a fling. With t in milliseconds:
//
//	v(t) = v0 * d^t
//	x(t) = x0 + v0 * (d^t - 1) / ln(d)
//
// The position is the exact integral of the velocity, so frame timing has no
// effect on the trajectory. Finishes once |v| falls below the threshold.
type DecayAnimation struct {
	driver
	cfg       DecayConfig
	decel     float64
	threshold float64
	velocity  float64
}

// Decay creates a decay animation driving v.
func Decay(v *Value, cfg DecayConfig) *DecayAnimation {
	a := &DecayAnimation{cfg: cfg}
	a.target = v
	return a
}

// Config returns the animation's configuration.
func (a *DecayAnimation) Config() DecayConfig { return a.cfg }

// Velocity returns the velocity at the last advance in units per millisecond.
func (a *DecayAnimation) Velocity() float64 { return a.velocity }

func (a *DecayAnimation) validate(d *Defaults) error {
	if err := checkTarget(a.target); err != nil {
		return err
	}
	if err := checkFinite("Velocity", a.cfg.Velocity); err != nil {
		return err
	}
	a.decel = a.cfg.Deceleration
	if a.decel == 0 {
		a.decel = d.Deceleration
	}
	if math.IsNaN(a.decel) || a.decel <= 0 || a.decel >= 1 {
		return errors.Configf("Deceleration", "must be in (0, 1), got %v", a.decel)
	}
	if a.cfg.VelocityThreshold < 0 {
		return errors.Configf("VelocityThreshold", "must be >= 0, got %v", a.cfg.VelocityThreshold)
	}
	a.threshold = a.cfg.VelocityThreshold
	if a.threshold == 0 {
		a.threshold = d.VelocityThreshold
	}
	return nil
}

func (a *DecayAnimation) begin(s *Scheduler) {
	if a.decel == 0 {
		_ = a.validate(&s.defaults)
	}
	a.beginOn(s, a)
	a.velocity = a.cfg.Velocity
}

func (a *DecayAnimation) advance(now time.Time) error {
	t := float64(a.elapsed(now)) / float64(time.Millisecond)
	k := math.Pow(a.decel, t)
	a.velocity = a.cfg.Velocity * k
	x := a.from + a.cfg.Velocity*(k-1)/math.Log(a.decel)
	if err := a.commit(x); err != nil {
		return err
	}
	if math.Abs(a.velocity) < a.threshold {
		a.finish(a)
	}
	return nil
}

func (a *DecayAnimation) preempt()            { a.lose(a) }
func (a *DecayAnimation) stop()               { a.cancel(a) }
func (a *DecayAnimation) rewind(restore bool) { a.rewindTo(a, restore) }

// Reset cancels the animation if running and returns it to Idle.
func (a *DecayAnimation) Reset() { a.reset(a) }
