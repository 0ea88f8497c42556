package animation

import (
	stderrors "errors"
	"math"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

func TestScheduler_SecondDriverPreemptsFirst(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	recA, recB := &resultRecorder{}, &resultRecorder{}
	a := linear(v, 1, 1000)
	mustStart(t, s, a, recA.done)
	mustTick(t, s, 0)
	mustTick(t, s, 500)

	b := linear(v, 2, 100)
	mustStart(t, s, b, recB.done)

	if a.State() != Cancelled {
		t.Errorf("first driver %v, want Cancelled", a.State())
	}
	if len(recA.results) != 1 || recA.last().Finished {
		t.Errorf("first driver should report cancelled once, got %+v", recA.results)
	}
	if v.Value() != 0.5 {
		t.Errorf("cancelled driver must freeze the value, got %v", v.Value())
	}

	mustTick(t, s, 600)
	mustTick(t, s, 700)
	if !recB.last().Finished || v.Value() != 2 {
		t.Errorf("second driver should finish at 2, got %+v value %v", recB.results, v.Value())
	}
	if len(recA.results) != 1 {
		t.Errorf("first completion must fire exactly once, got %d", len(recA.results))
	}
}

func TestScheduler_StartDuringTickIsDeferred(t *testing.T) {
	s := NewScheduler()
	v, w := NewValue(0), NewValue(0)
	follow := linear(w, 1, 100)
	started := false
	v.AddListener(func(float64) {
		if started {
			return
		}
		started = true
		if _, err := s.Start(follow, nil); err != nil {
			t.Errorf("Start from listener: %v", err)
		}
		if follow.State() != Idle {
			t.Errorf("animation started inside a tick must wait, got %v", follow.State())
		}
	})
	mustStart(t, s, linear(v, 1, 1000), nil)
	mustTick(t, s, 0)
	mustTick(t, s, 100)

	if !started {
		t.Fatal("listener did not run")
	}
	if s.Running() != 2 {
		t.Errorf("expected 2 scheduled, got %d", s.Running())
	}
	if follow.State() != Idle {
		t.Errorf("expected deferred start, got %v", follow.State())
	}

	mustTick(t, s, 150)
	if follow.State() != Running || w.Value() != 0 {
		t.Errorf("expected follow-up running at 0, got %v at %v", follow.State(), w.Value())
	}
	mustTick(t, s, 250)
	if follow.State() != Finished || w.Value() != 1 {
		t.Errorf("expected follow-up finished at 1, got %v at %v", follow.State(), w.Value())
	}
}

func TestScheduler_NestedTickIsStateError(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	var nested error
	v.AddListener(func(float64) {
		nested = s.Tick(at(1))
	})
	mustStart(t, s, linear(v, 1, 100), nil)
	mustTick(t, s, 0)
	mustTick(t, s, 50)

	var stateErr *errors.StateError
	if !stderrors.As(nested, &stateErr) {
		t.Errorf("expected StateError, got %v", nested)
	}
}

func TestScheduler_PanicAbortsOnlyThatRoot(t *testing.T) {
	h := captureErrors(t)
	s := NewScheduler()
	bad, good := NewValue(0), NewValue(0)
	panicky := func(p float64) float64 {
		if p > 0 && p < 1 {
			panic("boom")
		}
		return p
	}
	recBad, recGood := &resultRecorder{}, &resultRecorder{}
	mustStart(t, s, Timing(bad, TimingConfig{To: 1, Duration: time.Second, Easing: panicky}), recBad.done)
	mustStart(t, s, linear(good, 1, 1000), recGood.done)

	mustTick(t, s, 0)
	mustTick(t, s, 500)

	if len(recBad.results) != 1 {
		t.Fatalf("expected failing root to complete once, got %d", len(recBad.results))
	}
	res := recBad.last()
	var motionErr *errors.MotionError
	if res.Finished || !stderrors.As(res.Err, &motionErr) || motionErr.Kind != errors.KindPanic {
		t.Errorf("expected panic failure, got %+v", res)
	}
	if len(h.panics) != 1 {
		t.Errorf("expected panic to be reported once, got %d", len(h.panics))
	}
	if bad.Value() != 0 {
		t.Errorf("failed root must leave the last committed value, got %v", bad.Value())
	}
	if good.Value() != 0.5 {
		t.Errorf("other roots must keep ticking, got %v", good.Value())
	}

	mustTick(t, s, 1000)
	if !recGood.last().Finished {
		t.Errorf("expected healthy root to finish, got %+v", recGood.results)
	}
}

func TestScheduler_NonFiniteValueAbortsRoot(t *testing.T) {
	h := captureErrors(t)
	s := NewScheduler()
	v := NewValue(0)
	nan := func(p float64) float64 {
		if p > 0 && p < 1 {
			return math.NaN()
		}
		return p
	}
	rec := &resultRecorder{}
	mustStart(t, s, Timing(v, TimingConfig{To: 1, Duration: time.Second, Easing: nan}), rec.done)
	mustTick(t, s, 0)
	mustTick(t, s, 100)

	var motionErr *errors.MotionError
	if !stderrors.As(rec.last().Err, &motionErr) || motionErr.Kind != errors.KindTick {
		t.Errorf("expected tick failure, got %+v", rec.results)
	}
	if motionErr != nil && motionErr.Run == "" {
		t.Error("expected run id on the failure")
	}
	if len(h.errs) != 1 {
		t.Errorf("expected one reported error, got %d", len(h.errs))
	}
	if v.Value() != 0 {
		t.Errorf("value must not take a non-finite result, got %v", v.Value())
	}
}

func TestScheduler_StartStateErrors(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	anim := linear(v, 1, 100)
	mustStart(t, s, anim, nil)

	_, err := s.Start(anim, nil)
	var stateErr *errors.StateError
	if !stderrors.As(err, &stateErr) {
		t.Fatalf("expected StateError restarting a running animation, got %v", err)
	}

	mustTick(t, s, 0)
	mustTick(t, s, 100)
	_, err = s.Start(anim, nil)
	if !stderrors.As(err, &stateErr) || stateErr.State != "finished" {
		t.Fatalf("expected StateError restarting a finished animation, got %v", err)
	}

	anim.Reset()
	if _, err := s.Start(anim, nil); err != nil {
		t.Errorf("expected restart after Reset, got %v", err)
	}

	if _, err := s.Start(nil, nil); err == nil {
		t.Error("expected error starting nil")
	}
}

func TestScheduler_StopPendingRun(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	anim := linear(v, 1, 100)
	rec := &resultRecorder{}
	var id RunID
	trigger := NewValue(0)
	trigger.AddListener(func(float64) {
		if id == "" {
			id, _ = s.Start(anim, rec.done)
			s.StopRun(id)
		}
	})
	mustStart(t, s, linear(trigger, 1, 100), nil)
	mustTick(t, s, 0)
	mustTick(t, s, 50)

	if id == "" {
		t.Fatal("listener did not start the run")
	}
	if s.IsRunning(id) {
		t.Error("stopped pending run must be removed")
	}
	if anim.State() != Idle {
		t.Errorf("pending run must never begin, got %v", anim.State())
	}
	if len(rec.results) != 1 || rec.last().Finished {
		t.Errorf("expected one cancelled result, got %+v", rec.results)
	}
}

func TestScheduler_StopRun(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	rec := &resultRecorder{}
	id := mustStart(t, s, linear(v, 1, 100), rec.done)
	if !s.IsRunning(id) {
		t.Fatal("expected run to be scheduled")
	}
	mustTick(t, s, 0)
	s.StopRun(id)
	if s.IsRunning(id) || !s.Idle() {
		t.Error("expected run removed")
	}
	if len(rec.results) != 1 || rec.last().Finished {
		t.Errorf("expected one cancelled result, got %+v", rec.results)
	}
	s.StopRun(id)
	if len(rec.results) != 1 {
		t.Error("stopping twice must not complete twice")
	}
}

func TestScheduler_ValueXYCommitsAtomically(t *testing.T) {
	s := NewScheduler()
	xy := NewValueXY(0, 0)
	var torn []Point
	xy.X.AddListener(func(x float64) {
		if y := xy.Y.Value(); y != 2*x {
			torn = append(torn, Point{X: x, Y: y})
		}
	})
	pairCalls := 0
	xy.AddListener(func(Point) { pairCalls++ })

	mustStart(t, s, Parallel(linear(xy.X, 10, 100), linear(xy.Y, 20, 100)), nil)
	for ms := 0; ms <= 100; ms += 10 {
		mustTick(t, s, ms)
	}

	if len(torn) != 0 {
		t.Errorf("listeners observed half-updated pairs: %v", torn)
	}
	if pairCalls != 10 {
		t.Errorf("expected one pair notification per changed tick, got %d", pairCalls)
	}
}

func TestScheduler_Pump(t *testing.T) {
	clk := &manualClock{now: epoch}
	s := NewScheduler(WithClock(clk))
	v := NewValue(0)
	mustStart(t, s, linear(v, 1, 100), nil)

	for i := 0; i < 3; i++ {
		if err := s.Pump(); err != nil {
			t.Fatal(err)
		}
		clk.now = clk.now.Add(50 * time.Millisecond)
	}
	if v.Value() != 1 || !s.Idle() {
		t.Errorf("expected finished at 1, got %v (running %d)", v.Value(), s.Running())
	}
}

func TestScheduler_WithDefaults(t *testing.T) {
	d := DefaultDefaults()
	d.TimingEasing = LinearCurve
	s := NewScheduler(WithDefaults(d))
	v := NewValue(0)
	mustStart(t, s, Timing(v, TimingConfig{To: 1, Duration: time.Second}), nil)
	mustTick(t, s, 0)
	mustTick(t, s, 250)
	if v.Value() != 0.25 {
		t.Errorf("expected linear default easing, got %v", v.Value())
	}
}

func TestScheduler_InvalidDefaultsFailStart(t *testing.T) {
	s := NewScheduler(WithDefaults(Defaults{Tension: 40, Friction: 7}))
	v := NewValue(0)
	_, err := s.Start(Spring(v, SpringConfig{To: 1}), nil)

	var cfgErr *errors.ConfigError
	if !stderrors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Field != "RestDisplacementThreshold" {
		t.Errorf("expected RestDisplacementThreshold, got %q", cfgErr.Field)
	}
	if !s.Idle() || v.IsAnimating() {
		t.Error("a rejected start must not schedule or claim anything")
	}
}

func TestScheduler_SetValueEndsRootImmediately(t *testing.T) {
	tests := []struct {
		name  string
		build func(v *Value) Animation
	}{
		{"driver", func(v *Value) Animation { return linear(v, 1, 100) }},
		{"sequence", func(v *Value) Animation { return Sequence(linear(v, 1, 100), linear(NewValue(0), 1, 100)) }},
		{"parallel", func(v *Value) Animation { return Parallel(linear(v, 1, 100)) }},
		{"loop", func(v *Value) Animation { return Loop(linear(v, 1, 100), -1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler()
			v := NewValue(0)
			anim := tt.build(v)
			rec := &resultRecorder{}
			mustStart(t, s, anim, rec.done)
			mustTick(t, s, 0)
			mustTick(t, s, 50)

			v.SetValue(7)
			if len(rec.results) != 1 || rec.last().Finished {
				t.Fatalf("expected one cancelled result right after SetValue, got %+v", rec.results)
			}
			if !s.Idle() {
				t.Errorf("expected no scheduled roots, got %d", s.Running())
			}
			if anim.State() != Cancelled {
				t.Errorf("expected Cancelled, got %v", anim.State())
			}

			mustTick(t, s, 60)
			if len(rec.results) != 1 || v.Value() != 7 {
				t.Errorf("expected no further callbacks and value 7, got %+v value %v", rec.results, v.Value())
			}
		})
	}
}

func TestScheduler_StopAll(t *testing.T) {
	s := NewScheduler()
	rec := &resultRecorder{}
	mustStart(t, s, linear(NewValue(0), 1, 100), rec.done)
	mustTick(t, s, 0)
	mustStart(t, s, linear(NewValue(0), 1, 100), rec.done)

	s.StopAll()
	if !s.Idle() {
		t.Errorf("expected idle, got %d running", s.Running())
	}
	if len(rec.results) != 2 || rec.results[0].Finished || rec.results[1].Finished {
		t.Errorf("expected two cancelled results, got %+v", rec.results)
	}
}

func TestDefaults_Validate(t *testing.T) {
	base := DefaultDefaults()
	if err := base.Validate(); err != nil {
		t.Fatalf("DefaultDefaults invalid: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Defaults)
	}{
		{"nil easing", func(d *Defaults) { d.TimingEasing = nil }},
		{"zero settle steps", func(d *Defaults) { d.SettleSteps = 0 }},
		{"deceleration one", func(d *Defaults) { d.Deceleration = 1 }},
		{"negative threshold", func(d *Defaults) { d.VelocityThreshold = -1 }},
		{"non-convergent friction", func(d *Defaults) { d.Friction = -20 }},
		{"zero frame delta", func(d *Defaults) { d.MaxFrameDelta = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDefaults()
			tt.mutate(&d)
			var cfgErr *errors.ConfigError
			if err := d.Validate(); !stderrors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}
