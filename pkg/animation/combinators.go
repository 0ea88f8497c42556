package animation

import (
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

func validateChildren(field string, children []Animation, d *Defaults) error {
	for i, c := range children {
		if c == nil {
			return errors.Configf(field, "child %d is nil", i)
		}
		if err := c.validate(d); err != nil {
			return err
		}
	}
	return nil
}

// DelayAnimation does nothing for a fixed duration. It is used to space out
// the children of a [SequenceAnimation].
type DelayAnimation struct {
	state    RunState
	duration time.Duration
	timed    bool
	t0       time.Time
}

// Delay creates an animation that finishes after d.
func Delay(d time.Duration) *DelayAnimation {
	return &DelayAnimation{duration: d}
}

func (a *DelayAnimation) State() RunState { return a.state }

func (a *DelayAnimation) validate(*Defaults) error {
	if a.duration < 0 {
		return errors.Configf("Delay", "must be >= 0, got %v", a.duration)
	}
	return nil
}

func (a *DelayAnimation) begin(*Scheduler) {
	a.state = Running
	a.timed = false
}

func (a *DelayAnimation) advance(now time.Time) error {
	if !a.timed {
		a.timed = true
		a.t0 = now
	}
	if now.Sub(a.t0) >= a.duration {
		a.state = Finished
	}
	return nil
}

func (a *DelayAnimation) stop() {
	if a.state == Running {
		a.state = Cancelled
	}
}

func (a *DelayAnimation) reconcile() {}

func (a *DelayAnimation) rewind(bool) {
	a.state = Idle
	a.timed = false
}

// Reset returns the delay to Idle.
func (a *DelayAnimation) Reset() { a.rewind(false) }

// SequenceAnimation runs its children one after another. Exactly one child
// is Running at a time. When a child finishes, the next begins in the same
// tick. If a child is cancelled the sequence is cancelled.
type SequenceAnimation struct {
	state    RunState
	children []Animation
	current  int
	sched    *Scheduler
}

// Sequence creates a sequence of animations.
func Sequence(anims ...Animation) *SequenceAnimation {
	return &SequenceAnimation{children: anims}
}

func (a *SequenceAnimation) State() RunState { return a.state }

// Current returns the index of the active child.
func (a *SequenceAnimation) Current() int { return a.current }

func (a *SequenceAnimation) validate(d *Defaults) error {
	return validateChildren("Sequence", a.children, d)
}

func (a *SequenceAnimation) begin(s *Scheduler) {
	a.sched = s
	a.state = Running
	a.current = 0
	if len(a.children) == 0 {
		a.state = Finished
		return
	}
	a.children[0].begin(s)
}

func (a *SequenceAnimation) advance(now time.Time) error {
	for a.current < len(a.children) {
		c := a.children[a.current]
		if c.State() == Running {
			if err := c.advance(now); err != nil {
				return err
			}
		}
		switch c.State() {
		case Running:
			return nil
		case Finished:
			a.current++
			if a.current == len(a.children) {
				a.state = Finished
				return nil
			}
			a.children[a.current].begin(a.sched)
		default:
			a.state = Cancelled
			return nil
		}
	}
	return nil
}

func (a *SequenceAnimation) reconcile() {
	if a.state != Running || a.current >= len(a.children) {
		return
	}
	c := a.children[a.current]
	c.reconcile()
	if c.State() == Cancelled {
		a.state = Cancelled
	}
}

// stop cancels the active child only; later children never begin.
func (a *SequenceAnimation) stop() {
	if a.state != Running {
		return
	}
	a.state = Cancelled
	if a.current < len(a.children) {
		a.children[a.current].stop()
	}
}

func (a *SequenceAnimation) rewind(restore bool) {
	a.stop()
	for i := len(a.children) - 1; i >= 0; i-- {
		a.children[i].rewind(restore)
	}
	a.state = Idle
	a.current = 0
}

// Reset cancels the sequence if running and resets every child.
func (a *SequenceAnimation) Reset() {
	a.stop()
	for _, c := range a.children {
		c.Reset()
	}
	a.state = Idle
	a.current = 0
}

// ParallelConfig configures a [ParallelAnimation].
type ParallelConfig struct {
	// StopTogether stops the remaining children as soon as one child is
	// cancelled. By default children run to their own completion.
	StopTogether bool
}

// ParallelAnimation begins all children at once and ends when every child has
// ended. It finishes only if every child finished; otherwise it is cancelled.
type ParallelAnimation struct {
	state    RunState
	children []Animation
	cfg      ParallelConfig
}

// Parallel creates a parallel group with default configuration.
func Parallel(anims ...Animation) *ParallelAnimation {
	return &ParallelAnimation{children: anims}
}

// ParallelWith creates a parallel group with cfg.
func ParallelWith(cfg ParallelConfig, anims ...Animation) *ParallelAnimation {
	return &ParallelAnimation{children: anims, cfg: cfg}
}

// Stagger starts anims in parallel, offsetting child i by i*delay.
func Stagger(delay time.Duration, anims ...Animation) *ParallelAnimation {
	children := make([]Animation, len(anims))
	for i, a := range anims {
		if i == 0 {
			children[i] = a
			continue
		}
		children[i] = Sequence(Delay(time.Duration(i)*delay), a)
	}
	return &ParallelAnimation{children: children}
}

func (a *ParallelAnimation) State() RunState { return a.state }

// Running returns how many children are currently running.
func (a *ParallelAnimation) Running() int {
	n := 0
	for _, c := range a.children {
		if c.State() == Running {
			n++
		}
	}
	return n
}

func (a *ParallelAnimation) validate(d *Defaults) error {
	return validateChildren("Parallel", a.children, d)
}

func (a *ParallelAnimation) begin(s *Scheduler) {
	a.state = Running
	if len(a.children) == 0 {
		a.state = Finished
		return
	}
	for _, c := range a.children {
		c.begin(s)
	}
}

func (a *ParallelAnimation) advance(now time.Time) error {
	running, cancelled := 0, false
	for _, c := range a.children {
		if c.State() == Running {
			if err := c.advance(now); err != nil {
				return err
			}
		}
		switch c.State() {
		case Running:
			running++
		case Finished:
		default:
			cancelled = true
		}
	}
	if cancelled && a.cfg.StopTogether {
		a.stop()
		return nil
	}
	if running == 0 {
		if cancelled {
			a.state = Cancelled
		} else {
			a.state = Finished
		}
	}
	return nil
}

func (a *ParallelAnimation) reconcile() {
	if a.state != Running {
		return
	}
	running, cancelled := 0, false
	for _, c := range a.children {
		c.reconcile()
		switch c.State() {
		case Running:
			running++
		case Cancelled:
			cancelled = true
		}
	}
	switch {
	case cancelled && a.cfg.StopTogether:
		a.stop()
	case cancelled && running == 0:
		a.state = Cancelled
	}
}

func (a *ParallelAnimation) stop() {
	if a.state != Running {
		return
	}
	a.state = Cancelled
	for _, c := range a.children {
		if c.State() == Running {
			c.stop()
		}
	}
}

func (a *ParallelAnimation) rewind(restore bool) {
	a.stop()
	for i := len(a.children) - 1; i >= 0; i-- {
		a.children[i].rewind(restore)
	}
	a.state = Idle
}

// Reset cancels the group if running and resets every child.
func (a *ParallelAnimation) Reset() {
	a.stop()
	for _, c := range a.children {
		c.Reset()
	}
	a.state = Idle
}

// LoopConfig configures a [LoopAnimation].
type LoopConfig struct {
	// Iterations is how many times the child runs. Negative loops forever;
	// zero finishes immediately.
	Iterations int
	// SkipReset starts each iteration from where the previous one ended
	// instead of restoring the child's start values.
	SkipReset bool
}

// LoopAnimation restarts its child each time it finishes. A forever loop
// never finishes; stopping it is the only way out.
//
// At most one restart happens per tick.
type LoopAnimation struct {
	state     RunState
	child     Animation
	cfg       LoopConfig
	iteration int
	sched     *Scheduler
}

// Loop repeats child the given number of times (negative for forever).
func Loop(child Animation, iterations int) *LoopAnimation {
	return &LoopAnimation{child: child, cfg: LoopConfig{Iterations: iterations}}
}

// LoopWith repeats child according to cfg.
func LoopWith(child Animation, cfg LoopConfig) *LoopAnimation {
	return &LoopAnimation{child: child, cfg: cfg}
}

func (a *LoopAnimation) State() RunState { return a.state }

// Iteration returns the number of completed iterations.
func (a *LoopAnimation) Iteration() int { return a.iteration }

func (a *LoopAnimation) validate(d *Defaults) error {
	if a.child == nil {
		return errors.Configf("Loop", "child is nil")
	}
	return a.child.validate(d)
}

func (a *LoopAnimation) begin(s *Scheduler) {
	a.sched = s
	a.state = Running
	a.iteration = 0
	if a.cfg.Iterations == 0 {
		a.state = Finished
		return
	}
	a.child.begin(s)
}

func (a *LoopAnimation) advance(now time.Time) error {
	if a.child.State() == Running {
		if err := a.child.advance(now); err != nil {
			return err
		}
	}
	switch a.child.State() {
	case Running:
		return nil
	case Finished:
		a.iteration++
		if a.cfg.Iterations > 0 && a.iteration >= a.cfg.Iterations {
			a.state = Finished
			return nil
		}
		a.child.rewind(!a.cfg.SkipReset)
		a.child.begin(a.sched)
		return a.child.advance(now)
	default:
		a.state = Cancelled
		return nil
	}
}

func (a *LoopAnimation) reconcile() {
	if a.state != Running {
		return
	}
	a.child.reconcile()
	if a.child.State() == Cancelled {
		a.state = Cancelled
	}
}

func (a *LoopAnimation) stop() {
	if a.state != Running {
		return
	}
	a.state = Cancelled
	a.child.stop()
}

func (a *LoopAnimation) rewind(restore bool) {
	a.stop()
	a.child.rewind(restore)
	a.state = Idle
	a.iteration = 0
}

// Reset cancels the loop if running and resets the child.
func (a *LoopAnimation) Reset() {
	a.stop()
	a.child.Reset()
	a.state = Idle
	a.iteration = 0
}
