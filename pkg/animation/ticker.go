// Package animation provides an animated-value graph: numeric values driven
// over time by timing, spring and decay animations, composed with sequences,
// parallel groups and loops, and read through interpolations.
//
// # Core Components
//
//   - [Value] and [ValueXY]: mutable numbers with ordered listeners and an
//     offset for gesture-relative motion.
//
//   - [Interpolate], [InterpolateColor], [InterpolateString]: read-only
//     values derived from a source through piecewise ranges.
//
//   - [Timing], [Spring], [Decay]: drivers that move one value toward a goal.
//
//   - [Sequence], [Parallel], [Stagger], [Delay], [Loop]: combinators.
//
//   - [Scheduler]: advances running animations once per tick. [FrameLoop]
//     drives a scheduler from a real-time ticker.
//
// # Basic Usage
//
//	s := animation.NewScheduler()
//	opacity := animation.NewValue(0)
//	fade := animation.Timing(opacity, animation.TimingConfig{
//	    To:       1,
//	    Duration: 300 * time.Millisecond,
//	    Easing:   animation.EaseOut,
//	})
//	s.Start(fade, func(res animation.Result) {
//	    fmt.Println("faded in:", res.Finished)
//	})
//
//	// Once per frame, from the host render loop:
//	s.Tick(now)
//	draw(opacity.Value())
package animation

import (
	"context"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

// DefaultFrameInterval is the frame interval used by FrameLoop when none is set.
const DefaultFrameInterval = time.Second / 60

// FrameLoop ticks a Scheduler at a fixed interval.
//
// It is the real-time counterpart of calling [Scheduler.Tick] from a host
// render loop. Each tick uses the scheduler's clock, so a fake clock still
// controls animation time.
type FrameLoop struct {
	// Scheduler is the scheduler to drive. Required.
	Scheduler *Scheduler
	// Interval is the time between frames (default DefaultFrameInterval).
	Interval time.Duration
	// OnFrame runs after each tick, typically to render.
	OnFrame func(now time.Time)
	// StopWhenIdle makes Run return once nothing is scheduled.
	StopWhenIdle bool
}

// Run ticks until ctx is cancelled (returning ctx.Err()), or until the
// scheduler becomes idle when StopWhenIdle is set.
func (l *FrameLoop) Run(ctx context.Context) error {
	if l.Scheduler == nil {
		return errors.Configf("Scheduler", "frame loop has no scheduler")
	}
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if l.StopWhenIdle && l.Scheduler.Idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := l.Scheduler.Clock().Now()
			if err := l.Scheduler.Tick(now); err != nil {
				return err
			}
			if l.OnFrame != nil {
				l.OnFrame(now)
			}
		}
	}
}
