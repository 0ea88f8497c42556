package animation

import (
	"math"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// SpringConfig configures a [SpringAnimation].
//
// A spring is described by exactly one of three parameter groups:
//
//   - Tension and Friction, the Origami parameters. Used when no group is set.
//   - Speed and Bounciness, converted to tension and friction.
//   - Stiffness, Damping and Mass, the physical model itself.
//
// Zero fields within the chosen group take their defaults. Setting fields
// from more than one group is a configuration error.
type SpringConfig struct {
	// To is the goal value.
	To float64
	// Velocity is the initial velocity in units per millisecond.
	Velocity float64

	Tension  float64
	Friction float64

	Speed      float64
	Bounciness float64

	Stiffness float64
	Damping   float64
	Mass      float64

	// OvershootClamping finishes the spring the first time it reaches To.
	OvershootClamping bool
	// RestDisplacementThreshold overrides the scheduler default when > 0.
	RestDisplacementThreshold float64
	// RestSpeedThreshold (units per second) overrides the scheduler default when > 0.
	RestSpeedThreshold float64
}

// Physical defaults used when only part of the stiffness group is set.
const (
	DefaultStiffness = 100.0
	DefaultDamping   = 10.0
	DefaultMass      = 1.0

	DefaultSpeed      = 12.0
	DefaultBounciness = 8.0
)

type springParams struct {
	stiffness float64
	damping   float64
	mass      float64
}

// StiffnessFromTension converts an Origami tension to stiffness.
func StiffnessFromTension(tension float64) float64 {
	return (tension-30)*3.62 + 194
}

// DampingFromFriction converts an Origami friction to damping.
func DampingFromFriction(friction float64) float64 {
	return (friction-8)*3 + 25
}

// bouncyToOrigami maps speed and bounciness onto tension and friction using
// the Rebound curve fit.
func bouncyToOrigami(speed, bounciness float64) (tension, friction float64) {
	normalize := func(v, start, end float64) float64 { return (v - start) / (end - start) }
	project := func(n, start, end float64) float64 { return start + n*(end-start) }
	quadOut := func(t, start, end float64) float64 {
		t = 2*t - t*t
		return t*end + (1-t)*start
	}
	noBounce := func(t float64) float64 {
		switch {
		case t <= 18:
			return 0.0007*t*t*t - 0.031*t*t + 0.64*t + 1.28
		case t <= 44:
			return 0.000044*t*t*t - 0.006*t*t + 0.36*t + 2
		default:
			return 0.00000045*t*t*t - 0.000332*t*t + 0.1078*t + 5.84
		}
	}

	b := project(normalize(bounciness/1.7, 0, 20), 0, 0.8)
	s := normalize(speed/1.7, 0, 20)
	tension = project(s, 0.5, 200)
	friction = quadOut(b, noBounce(tension), 0.01)
	return tension, friction
}

// CheckSpring reports whether cfg resolves to a convergent spring under d,
// without starting anything.
func (d *Defaults) CheckSpring(cfg SpringConfig) error {
	_, err := resolveSpring(cfg, d)
	return err
}

func resolveSpring(cfg SpringConfig, d *Defaults) (springParams, error) {
	origami := cfg.Tension != 0 || cfg.Friction != 0
	bouncy := cfg.Speed != 0 || cfg.Bounciness != 0
	physical := cfg.Stiffness != 0 || cfg.Damping != 0 || cfg.Mass != 0
	groups := 0
	for _, set := range []bool{origami, bouncy, physical} {
		if set {
			groups++
		}
	}
	if groups > 1 {
		return springParams{}, errors.Configf("SpringConfig",
			"set only one of tension/friction, speed/bounciness or stiffness/damping/mass")
	}

	var p springParams
	switch {
	case physical:
		p = springParams{stiffness: cfg.Stiffness, damping: cfg.Damping, mass: cfg.Mass}
		if p.stiffness == 0 {
			p.stiffness = DefaultStiffness
		}
		if p.damping == 0 {
			p.damping = DefaultDamping
		}
		if p.mass == 0 {
			p.mass = DefaultMass
		}
	case bouncy:
		speed, bounciness := cfg.Speed, cfg.Bounciness
		if speed == 0 {
			speed = DefaultSpeed
		}
		if bounciness == 0 {
			bounciness = DefaultBounciness
		}
		if speed < 0 || bounciness < 0 {
			return springParams{}, errors.Configf("SpringConfig", "speed and bounciness must be >= 0")
		}
		t, f := bouncyToOrigami(speed, bounciness)
		p = springParams{stiffness: StiffnessFromTension(t), damping: DampingFromFriction(f), mass: 1}
	default:
		tension, friction := cfg.Tension, cfg.Friction
		if !origami {
			tension, friction = d.Tension, d.Friction
		}
		p = springParams{stiffness: StiffnessFromTension(tension), damping: DampingFromFriction(friction), mass: 1}
	}

	for _, f := range []struct {
		name string
		v    float64
	}{{"Stiffness", p.stiffness}, {"Damping", p.damping}, {"Mass", p.mass}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return springParams{}, errors.Configf(f.name, "resolved to %v, spring would not converge", f.v)
		}
	}
	return p, nil
}

const springStep = time.Millisecond

// SpringAnimation drives a value towards To with a damped harmonic oscillator.
//
// The oscillator is integrated in fixed 1ms steps regardless of frame timing,
// so the same start state produces the same trajectory at any frame rate.
// It finishes only after displacement and speed have stayed under their rest
// thresholds for SettleSteps consecutive steps, then snaps to To.
type SpringAnimation struct {
	driver
	cfg SpringConfig

	params      springParams
	restDisp    float64
	restSpeed   float64
	settleSteps int
	maxDelta    time.Duration

	x, v    float64 // position, velocity in units per second
	last    time.Time
	acc     time.Duration
	settled int
}

// Spring creates a spring animation driving v.
func Spring(v *Value, cfg SpringConfig) *SpringAnimation {
	a := &SpringAnimation{cfg: cfg}
	a.target = v
	return a
}

// Config returns the animation's configuration.
func (a *SpringAnimation) Config() SpringConfig { return a.cfg }

// Velocity returns the current velocity in units per millisecond.
func (a *SpringAnimation) Velocity() float64 { return a.v / 1000 }

// Params returns the stiffness, damping and mass the configuration resolved
// to. Valid after the animation has been started.
func (a *SpringAnimation) Params() (stiffness, damping, mass float64) {
	return a.params.stiffness, a.params.damping, a.params.mass
}

func (a *SpringAnimation) validate(d *Defaults) error {
	if err := checkTarget(a.target); err != nil {
		return err
	}
	if err := checkFinite("To", a.cfg.To); err != nil {
		return err
	}
	if err := checkFinite("Velocity", a.cfg.Velocity); err != nil {
		return err
	}
	if a.cfg.RestDisplacementThreshold < 0 || a.cfg.RestSpeedThreshold < 0 {
		return errors.Configf("RestThreshold", "must be >= 0")
	}
	p, err := resolveSpring(a.cfg, d)
	if err != nil {
		return err
	}
	a.params = p
	a.restDisp = a.cfg.RestDisplacementThreshold
	if a.restDisp == 0 {
		a.restDisp = d.RestDisplacementThreshold
	}
	a.restSpeed = a.cfg.RestSpeedThreshold
	if a.restSpeed == 0 {
		a.restSpeed = d.RestSpeedThreshold
	}
	a.settleSteps = d.SettleSteps
	a.maxDelta = d.MaxFrameDelta
	return nil
}

func (a *SpringAnimation) begin(s *Scheduler) {
	if a.params.mass == 0 {
		_ = a.validate(&s.defaults)
	}
	a.beginOn(s, a)
	a.x = a.from
	a.v = a.cfg.Velocity * 1000
	a.acc = 0
	a.settled = 0
}

func (a *SpringAnimation) advance(now time.Time) error {
	if !a.timed {
		a.elapsed(now)
		a.last = now
		return a.commit(a.x)
	}
	dt := now.Sub(a.last)
	a.last = now
	if dt > a.maxDelta {
		dt = a.maxDelta
	}
	if dt > 0 {
		a.acc += dt
	}
	for a.acc >= springStep {
		a.acc -= springStep
		if a.step() {
			if err := a.commit(a.cfg.To); err != nil {
				return err
			}
			a.finish(a)
			return nil
		}
	}
	return a.commit(a.x)
}

// step integrates one millisecond and reports whether the spring is done.
func (a *SpringAnimation) step() bool {
	const h = float64(springStep) / float64(time.Second)
	prev := a.x
	to := a.cfg.To
	accel := (-a.params.stiffness*(a.x-to) - a.params.damping*a.v) / a.params.mass
	a.v += accel * h
	a.x += a.v * h

	if math.IsNaN(a.x) || math.IsInf(a.x, 0) {
		return false
	}
	if a.cfg.OvershootClamping && a.from != to {
		if (prev < to && a.x >= to) || (prev > to && a.x <= to) {
			return true
		}
	}
	if math.Abs(a.x-to) < a.restDisp && math.Abs(a.v) < a.restSpeed {
		a.settled++
	} else {
		a.settled = 0
	}
	return a.settled >= a.settleSteps
}

func (a *SpringAnimation) preempt()            { a.lose(a) }
func (a *SpringAnimation) stop()               { a.cancel(a) }
func (a *SpringAnimation) rewind(restore bool) { a.rewindTo(a, restore) }

// Reset cancels the animation if running and returns it to Idle.
func (a *SpringAnimation) Reset() { a.reset(a) }
