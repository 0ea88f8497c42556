package animation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/motion/pkg/errors"
)

// RunID identifies one started animation on a [Scheduler].
type RunID string

type run struct {
	id         RunID
	anim       Animation
	onComplete func(Result)
	active     bool
	stopped    bool
	err        error
}

// Scheduler owns the running top-level animations and advances them once
// per tick.
//
// Ticks are strictly sequential. Within a tick every root is advanced in
// start order before any value listener runs, so listeners always observe a
// fully committed frame. Animations started while a tick is in progress
// (for example from a listener) begin at the next tick. Roots that finished
// or were cancelled are removed at the end of the tick and their completion
// callbacks run exactly once.
//
// A Scheduler is not safe for concurrent use; drive it from one goroutine,
// such as a [FrameLoop].
type Scheduler struct {
	clock       Clock
	defaults    Defaults
	defaultsErr error

	runs     map[RunID]*run
	byAnim   map[Animation]*run
	order    []*run
	dirty    []*Value
	ticking  bool
	starting bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock used by Pump. The default reads the package clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDefaults replaces the engine defaults. Invalid defaults make every
// Start fail with the validation error.
func WithDefaults(d Defaults) Option {
	return func(s *Scheduler) { s.defaults = d }
}

// NewScheduler creates an empty scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    packageClock{},
		defaults: DefaultDefaults(),
		runs:     make(map[RunID]*run),
		byAnim:   make(map[Animation]*run),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaults.TimingEasing == nil {
		s.defaults.TimingEasing = EaseInOut
	}
	s.defaultsErr = s.defaults.Validate()
	return s
}

// Defaults returns the engine defaults in use.
func (s *Scheduler) Defaults() Defaults { return s.defaults }

// Clock returns the scheduler's clock.
func (s *Scheduler) Clock() Clock { return s.clock }

// Start validates anim and schedules it as a root. onComplete, if non-nil,
// is called exactly once when the root finishes, is stopped or fails.
//
// Configuration problems are returned as a *errors.MotionError wrapping an
// *errors.ConfigError. Starting an animation that is not Idle (still running,
// or finished without [Animation.Reset]) wraps an *errors.StateError.
func (s *Scheduler) Start(anim Animation, onComplete func(Result)) (RunID, error) {
	const op = "animation.Scheduler.Start"
	if anim == nil {
		return "", &errors.MotionError{Op: op, Kind: errors.KindConfig, Err: errors.Configf("Animation", "must not be nil")}
	}
	if s.defaultsErr != nil {
		return "", &errors.MotionError{Op: op, Kind: errors.KindConfig, Err: s.defaultsErr}
	}
	if _, ok := s.byAnim[anim]; ok {
		return "", &errors.MotionError{Op: op, Kind: errors.KindState, Err: &errors.StateError{
			Op: op, State: anim.State().String(), Reason: "already scheduled",
		}}
	}
	if st := anim.State(); st != Idle {
		reason := "call Reset before starting again"
		if st == Running {
			reason = "already running"
		}
		return "", &errors.MotionError{Op: op, Kind: errors.KindState, Err: &errors.StateError{
			Op: op, State: st.String(), Reason: reason,
		}}
	}
	if err := anim.validate(&s.defaults); err != nil {
		return "", &errors.MotionError{Op: op, Kind: errors.KindConfig, Err: err}
	}

	r := &run{id: RunID(uuid.NewString()), anim: anim, onComplete: onComplete}
	s.runs[r.id] = r
	s.byAnim[anim] = r
	s.order = append(s.order, r)
	if s.ticking {
		return r.id, nil
	}
	starting := s.starting
	s.starting = true
	s.activate(r)
	s.starting = starting
	if starting {
		return r.id, nil
	}
	s.reconcile()
	s.sweep()
	return r.id, nil
}

// Stop cancels a scheduled animation. The completion callback reports
// Finished == false. Stopping an animation that is not scheduled as a root
// cancels it in place.
func (s *Scheduler) Stop(anim Animation) {
	if anim == nil {
		return
	}
	r, ok := s.byAnim[anim]
	if !ok {
		anim.stop()
		return
	}
	s.cancel(r)
}

// StopRun cancels the run with the given id, if it is still scheduled.
func (s *Scheduler) StopRun(id RunID) {
	if r, ok := s.runs[id]; ok {
		s.cancel(r)
	}
}

func (s *Scheduler) cancel(r *run) {
	if r.active {
		r.anim.stop()
	} else {
		r.stopped = true
	}
	if !s.ticking {
		s.sweep()
	}
}

// StopAll cancels every scheduled root in start order.
func (s *Scheduler) StopAll() {
	for _, r := range append([]*run(nil), s.order...) {
		if _, ok := s.runs[r.id]; ok {
			s.cancel(r)
		}
	}
}

// preempted is called when a driver lost its value to another writer.
// Outside a tick the roots it belonged to end, and report, immediately.
func (s *Scheduler) preempted() {
	if s.ticking || s.starting {
		return
	}
	s.reconcile()
	s.sweep()
}

func (s *Scheduler) reconcile() {
	for _, r := range s.order {
		if r.active && r.anim.State() == Running {
			r.anim.reconcile()
		}
	}
}

// Running returns the number of scheduled roots, including those waiting for
// the next tick.
func (s *Scheduler) Running() int { return len(s.order) }

// Idle reports whether nothing is scheduled.
func (s *Scheduler) Idle() bool { return len(s.order) == 0 }

// IsRunning reports whether the run is still scheduled.
func (s *Scheduler) IsRunning(id RunID) bool {
	_, ok := s.runs[id]
	return ok
}

// Pump ticks at the scheduler clock's current time.
func (s *Scheduler) Pump() error {
	return s.Tick(s.clock.Now())
}

// Tick advances every running root to now, notifies listeners of changed
// values, and then removes ended roots. Calling Tick from inside a tick (for
// example from a listener) returns a *errors.StateError.
func (s *Scheduler) Tick(now time.Time) error {
	const op = "animation.Scheduler.Tick"
	if s.ticking {
		return &errors.StateError{Op: op, State: "ticking", Reason: "Tick is not reentrant"}
	}
	s.ticking = true

	roots := append([]*run(nil), s.order...)
	for _, r := range roots {
		if !r.active && !r.stopped {
			s.activate(r)
		}
	}
	for _, r := range roots {
		if r.active && r.anim.State() == Running {
			s.advanceRoot(r, now)
		}
	}
	s.flush()

	s.ticking = false
	s.reconcile()
	s.sweep()
	return nil
}

func (s *Scheduler) activate(r *run) {
	r.active = true
	func() {
		defer errors.RecoverWithCallback("animation.Scheduler.Start", func(p any) {
			r.err = &errors.MotionError{
				Op:   "animation.Scheduler.Start",
				Kind: errors.KindPanic,
				Err:  fmt.Errorf("panic: %v", p),
				Run:  string(r.id),
			}
			r.anim.stop()
		})
		r.anim.begin(s)
	}()
}

func (s *Scheduler) advanceRoot(r *run, now time.Time) {
	const op = "animation.Scheduler.Tick"
	var failure *errors.MotionError
	func() {
		defer errors.RecoverWithCallback(op, func(p any) {
			failure = &errors.MotionError{
				Op:         op,
				Kind:       errors.KindPanic,
				Err:        fmt.Errorf("panic: %v", p),
				Run:        string(r.id),
				StackTrace: errors.CaptureStack(),
			}
		})
		if err := r.anim.advance(now); err != nil {
			failure = &errors.MotionError{Op: op, Kind: errors.KindTick, Err: err, Run: string(r.id)}
			errors.Report(failure)
		}
	}()
	if failure != nil {
		r.err = failure
		r.anim.stop()
	}
}

// commit writes a driver result. Inside a tick, notification is deferred
// until every root has advanced.
func (s *Scheduler) commit(v *Value, n float64) {
	if v.value == n {
		return
	}
	v.value = n
	if !s.ticking {
		v.notify()
		if v.pair != nil {
			v.pair.notify()
		}
		return
	}
	if !v.dirty {
		v.dirty = true
		s.dirty = append(s.dirty, v)
	}
}

func (s *Scheduler) flush() {
	dirty := s.dirty
	s.dirty = nil
	var pairs []*ValueXY
	for _, v := range dirty {
		v.dirty = false
		if p := v.pair; p != nil && !p.dirty {
			p.dirty = true
			pairs = append(pairs, p)
		}
	}
	for _, v := range dirty {
		notifySafely(v.notify)
	}
	for _, p := range pairs {
		p.dirty = false
		notifySafely(p.notify)
	}
}

func notifySafely(fn func()) {
	defer errors.Recover("animation.Value.notify")
	fn()
}

// sweep removes ended roots and then runs their completion callbacks.
func (s *Scheduler) sweep() {
	type ended struct {
		r   *run
		res Result
	}
	var done []ended
	kept := make([]*run, 0, len(s.order))
	for _, r := range s.order {
		switch {
		case r.stopped:
			done = append(done, ended{r, Result{Err: r.err}})
		case r.active && r.anim.State() != Running:
			done = append(done, ended{r, Result{Finished: r.err == nil && r.anim.State() == Finished, Err: r.err}})
		default:
			kept = append(kept, r)
		}
	}
	if len(done) == 0 {
		return
	}
	s.order = kept
	for _, e := range done {
		delete(s.runs, e.r.id)
		if s.byAnim[e.r.anim] == e.r {
			delete(s.byAnim, e.r.anim)
		}
	}
	for _, e := range done {
		if e.r.onComplete != nil {
			complete(e.r.onComplete, e.res)
		}
	}
}

func complete(fn func(Result), res Result) {
	defer errors.Recover("animation.Scheduler.complete")
	fn(res)
}
