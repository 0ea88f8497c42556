package animation

import (
	"reflect"
	"testing"
	"time"
)

func TestAnimationController_ForwardReverse(t *testing.T) {
	s := NewScheduler()
	c := NewAnimationController(s, 100*time.Millisecond)
	var statuses []AnimationStatus
	c.AddStatusListener(func(st AnimationStatus) { statuses = append(statuses, st) })

	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	if !c.IsAnimating() {
		t.Error("expected animating after Forward")
	}
	mustTick(t, s, 0)
	mustTick(t, s, 50)
	if got := c.Value(); got != 0.5 {
		t.Errorf("expected 0.5 halfway, got %v", got)
	}
	mustTick(t, s, 100)
	if !c.IsCompleted() || c.IsAnimating() {
		t.Errorf("expected completed, status %v animating %v", c.Status(), c.IsAnimating())
	}

	if err := c.Reverse(); err != nil {
		t.Fatal(err)
	}
	mustTick(t, s, 200)
	mustTick(t, s, 300)
	if !c.IsDismissed() || c.Value() != 0 {
		t.Errorf("expected dismissed at 0, status %v value %v", c.Status(), c.Value())
	}

	want := []AnimationStatus{AnimationForward, AnimationCompleted, AnimationReverse, AnimationDismissed}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("expected statuses %v, got %v", want, statuses)
	}
}

func TestAnimationController_ZeroDuration(t *testing.T) {
	s := NewScheduler()
	c := NewAnimationController(s, 0)
	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	if c.Value() != 1 || !c.IsCompleted() {
		t.Errorf("expected immediate completion, value %v status %v", c.Value(), c.Status())
	}
	if !s.Idle() {
		t.Error("zero duration must not schedule an animation")
	}
}

func TestAnimationController_StopAndReset(t *testing.T) {
	s := NewScheduler()
	c := NewAnimationController(s, 100*time.Millisecond)
	ticks := 0
	c.AddListener(func() { ticks++ })

	if err := c.AnimateTo(0.8); err != nil {
		t.Fatal(err)
	}
	mustTick(t, s, 0)
	mustTick(t, s, 50)
	c.Stop()
	if c.IsAnimating() || !s.Idle() {
		t.Error("expected Stop to cancel the run")
	}
	if got := c.Value(); got != 0.4 {
		t.Errorf("expected value frozen at 0.4, got %v", got)
	}
	if c.Status() != AnimationForward {
		t.Errorf("stopping mid-flight keeps the direction, got %v", c.Status())
	}

	c.Reset()
	if c.Value() != 0 || !c.IsDismissed() {
		t.Errorf("expected reset to lower bound, value %v status %v", c.Value(), c.Status())
	}
	if ticks != 2 {
		t.Errorf("expected 2 value notifications, got %d", ticks)
	}
}

func TestAnimationController_RetargetMidFlight(t *testing.T) {
	s := NewScheduler()
	c := NewAnimationController(s, 100*time.Millisecond)
	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	mustTick(t, s, 0)
	mustTick(t, s, 50)
	if err := c.Reverse(); err != nil {
		t.Fatal(err)
	}
	if s.Running() != 1 {
		t.Errorf("expected one run after retarget, got %d", s.Running())
	}
	mustTick(t, s, 60)
	mustTick(t, s, 110)
	if got := c.Value(); got != 0.25 {
		t.Errorf("expected reverse from 0.5 at halfway, got %v", got)
	}
}

func TestAnimationStatus_String(t *testing.T) {
	tests := []struct {
		status AnimationStatus
		want   string
	}{
		{AnimationDismissed, "dismissed"},
		{AnimationForward, "forward"},
		{AnimationReverse, "reverse"},
		{AnimationCompleted, "completed"},
		{AnimationStatus(9), "AnimationStatus(9)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestAnimationController_Fling(t *testing.T) {
	s := NewScheduler()
	c := NewAnimationController(s, 300*time.Millisecond)
	var statuses []AnimationStatus
	c.AddStatusListener(func(st AnimationStatus) { statuses = append(statuses, st) })

	if err := c.Fling(0.005); err != nil {
		t.Fatal(err)
	}
	for ms := 0; ms <= 2000 && c.IsAnimating(); ms += 16 {
		mustTick(t, s, ms)
		if v := c.Value(); v < 0 || v > 1 {
			t.Fatalf("fling left the bounds: %v at %dms", v, ms)
		}
	}
	if c.Value() != 1 || !c.IsCompleted() {
		t.Fatalf("expected completed at 1, value %v status %v", c.Value(), c.Status())
	}

	if err := c.Fling(-0.005); err != nil {
		t.Fatal(err)
	}
	for ms := 3000; ms <= 5000 && c.IsAnimating(); ms += 16 {
		mustTick(t, s, ms)
	}
	if c.Value() != 0 || !c.IsDismissed() {
		t.Errorf("expected dismissed at 0, value %v status %v", c.Value(), c.Status())
	}

	want := []AnimationStatus{AnimationForward, AnimationCompleted, AnimationReverse, AnimationDismissed}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("expected statuses %v, got %v", want, statuses)
	}
}

func TestAnimationController_Repeat(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		s := NewScheduler()
		c := NewAnimationController(s, 100*time.Millisecond)
		if err := c.Repeat(reverse); err != nil {
			t.Fatal(err)
		}
		mustTick(t, s, 0)
		mustTick(t, s, 50)
		if got := c.Value(); got != 0.5 {
			t.Errorf("reverse=%v: expected 0.5 halfway through the first sweep, got %v", reverse, got)
		}
		for ms := 66; ms <= 1000; ms += 16 {
			mustTick(t, s, ms)
			if v := c.Value(); v < 0 || v > 1 {
				t.Fatalf("reverse=%v: value left the bounds: %v", reverse, v)
			}
		}
		if !c.IsAnimating() || c.Status() != AnimationForward {
			t.Errorf("reverse=%v: expected a running forward repeat, status %v", reverse, c.Status())
		}

		c.Stop()
		if c.IsAnimating() || !s.Idle() {
			t.Errorf("reverse=%v: expected Stop to end the repeat", reverse)
		}
	}
}

func TestAnimationController_StatusListenerOrder(t *testing.T) {
	s := NewScheduler()
	c := NewAnimationController(s, 0)
	var order []string
	c.AddStatusListener(func(AnimationStatus) { order = append(order, "a") })
	remove := c.AddStatusListener(func(AnimationStatus) { order = append(order, "b") })
	c.AddStatusListener(func(AnimationStatus) { order = append(order, "c") })

	if err := c.Forward(); err != nil {
		t.Fatal(err)
	}
	remove()
	c.Reset()

	want := []string{"a", "b", "c", "a", "c"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}
