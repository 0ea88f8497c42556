package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/gestures"
)

// DefaultFrameInterval is the clock step of one pumped frame.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: animations did not settle")

// MotionTester drives a scheduler and a gesture responder from a fake clock.
// It installs the clock as the animation package clock, so pointer events
// without explicit timestamps are stamped with fake time.
type MotionTester struct {
	clock     *FakeClock
	prevClock animation.Clock
	sched     *animation.Scheduler
	responder *gestures.Responder
	frame     time.Duration
	pointers  map[int64]animation.Point
	nextID    int64
}

// NewMotionTester creates a tester with engine defaults and an empty policy.
// Call Cleanup() when done, or use NewMotionTesterWithT() instead.
func NewMotionTester() *MotionTester {
	return NewMotionTesterWith(animation.DefaultDefaults(), gestures.Policy{})
}

// NewMotionTesterWith creates a tester with explicit defaults and policy.
func NewMotionTesterWith(d animation.Defaults, p gestures.Policy) *MotionTester {
	clk := NewFakeClock()
	t := &MotionTester{
		clock:     clk,
		sched:     animation.NewScheduler(animation.WithClock(clk), animation.WithDefaults(d)),
		responder: gestures.NewResponder(p),
		frame:     DefaultFrameInterval,
		pointers:  make(map[int64]animation.Point),
	}
	t.prevClock = animation.SetClock(clk)
	return t
}

// NewMotionTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewMotionTesterWithT(t *testing.T) *MotionTester {
	tester := NewMotionTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup cancels pointers that are still down, stops everything still
// scheduled, and restores the package clock.
func (t *MotionTester) Cleanup() {
	for _, id := range t.responder.Active() {
		_ = t.responder.PointerCancel(id)
	}
	t.pointers = make(map[int64]animation.Point)
	t.sched.StopAll()
	animation.SetClock(t.prevClock)
}

// Clock returns the tester's fake clock.
func (t *MotionTester) Clock() *FakeClock { return t.clock }

// Scheduler returns the scheduler driven by Pump.
func (t *MotionTester) Scheduler() *animation.Scheduler { return t.sched }

// Responder returns the responder used by the gesture helpers.
func (t *MotionTester) Responder() *gestures.Responder { return t.responder }

// SetFrameInterval sets how far each pumped frame advances the clock.
func (t *MotionTester) SetFrameInterval(d time.Duration) {
	if d > 0 {
		t.frame = d
	}
}

// Start schedules anim, failing on configuration errors.
func (t *MotionTester) Start(anim animation.Animation, onComplete func(animation.Result)) (animation.RunID, error) {
	return t.sched.Start(anim, onComplete)
}

// Pump ticks the scheduler once at the current fake time.
func (t *MotionTester) Pump() error {
	return t.sched.Pump()
}

// PumpFrames runs n frames. Each frame ticks at the current time and then
// advances the clock by the frame interval.
func (t *MotionTester) PumpFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := t.Pump(); err != nil {
			return err
		}
		t.clock.Advance(t.frame)
	}
	return nil
}

// PumpAndSettle runs frames until nothing is scheduled or the timeout is
// reached. Returns ErrSettleTimeout if the animations do not settle within
// timeout.
func (t *MotionTester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed <= timeout {
		if err := t.Pump(); err != nil {
			return err
		}
		if t.sched.Idle() {
			return nil
		}
		t.clock.Advance(t.frame)
		elapsed += t.frame
	}
	return ErrSettleTimeout
}
