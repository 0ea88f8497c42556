package animation

import (
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// TimingConfig configures a [TimingAnimation].
type TimingConfig struct {
	// To is the goal value.
	To float64
	// Duration is the length of the animation after Delay. Must be > 0.
	Duration time.Duration
	// Easing shapes progress. Nil uses the scheduler's default easing.
	Easing Curve
	// Delay holds the start value for this long before progress begins.
	Delay time.Duration
}

// TimingAnimation moves a value to a goal over a fixed duration:
//
//	value(t) = from + (To - from) * Easing(t / Duration)
//
// where from is the value when the animation begins. The value is exactly To
// once Duration has elapsed.
type TimingAnimation struct {
	driver
	cfg    TimingConfig
	easing Curve
}

// Timing creates a timing animation driving v.
func Timing(v *Value, cfg TimingConfig) *TimingAnimation {
	a := &TimingAnimation{cfg: cfg}
	a.target = v
	return a
}

// Config returns the animation's configuration.
func (a *TimingAnimation) Config() TimingConfig { return a.cfg }

func (a *TimingAnimation) validate(d *Defaults) error {
	if err := checkTarget(a.target); err != nil {
		return err
	}
	if err := checkFinite("To", a.cfg.To); err != nil {
		return err
	}
	if a.cfg.Duration <= 0 {
		return errors.Configf("Duration", "must be > 0, got %v", a.cfg.Duration)
	}
	if a.cfg.Delay < 0 {
		return errors.Configf("Delay", "must be >= 0, got %v", a.cfg.Delay)
	}
	a.easing = a.cfg.Easing
	if a.easing == nil {
		a.easing = d.TimingEasing
	}
	return checkCurve("Easing", a.easing)
}

func (a *TimingAnimation) begin(s *Scheduler) {
	if a.easing == nil {
		a.easing = s.defaults.TimingEasing
	}
	a.beginOn(s, a)
}

func (a *TimingAnimation) advance(now time.Time) error {
	el := a.elapsed(now) - a.cfg.Delay
	if el < 0 {
		return nil
	}
	if el >= a.cfg.Duration {
		if err := a.commit(a.cfg.To); err != nil {
			return err
		}
		a.finish(a)
		return nil
	}
	p := float64(el) / float64(a.cfg.Duration)
	return a.commit(a.from + (a.cfg.To-a.from)*a.easing(p))
}

func (a *TimingAnimation) preempt()            { a.lose(a) }
func (a *TimingAnimation) stop()               { a.cancel(a) }
func (a *TimingAnimation) rewind(restore bool) { a.rewindTo(a, restore) }

// Reset cancels the animation if running and returns it to Idle.
func (a *TimingAnimation) Reset() { a.reset(a) }
