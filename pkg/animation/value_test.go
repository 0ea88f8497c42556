package animation

import (
	"testing"
	"time"
)

func TestValue_SetValueNotifiesInOrder(t *testing.T) {
	v := NewValue(0)
	var calls []string
	v.AddListener(func(n float64) { calls = append(calls, "a") })
	v.AddListener(func(n float64) { calls = append(calls, "b") })
	v.AddListener(func(n float64) {
		if n != 5 {
			t.Errorf("listener saw %v, want 5", n)
		}
		calls = append(calls, "c")
	})

	v.SetValue(5)

	if len(calls) != 3 || calls[0] != "a" || calls[1] != "b" || calls[2] != "c" {
		t.Errorf("expected [a b c], got %v", calls)
	}
	if v.Value() != 5 {
		t.Errorf("expected 5, got %v", v.Value())
	}
}

func TestValue_Unsubscribe(t *testing.T) {
	v := NewValue(0)
	count := 0
	var remove func()
	remove = v.AddListener(func(float64) {
		count++
		remove()
	})
	other := 0
	v.AddListener(func(float64) { other++ })

	v.SetValue(1)
	v.SetValue(2)

	if count != 1 {
		t.Errorf("expected self-removing listener to run once, ran %d times", count)
	}
	if other != 2 {
		t.Errorf("expected remaining listener to run twice, ran %d times", other)
	}
	if v.ListenerCount() != 1 {
		t.Errorf("expected 1 listener, got %d", v.ListenerCount())
	}
}

func TestValue_IDsAreUnique(t *testing.T) {
	a, b := NewValue(0), NewValue(0)
	if a.ID() == b.ID() {
		t.Errorf("expected distinct ids, both %d", a.ID())
	}
}

func TestValue_Offset(t *testing.T) {
	v := NewValue(10)
	v.ExtractOffset()
	if v.Raw() != 0 || v.Offset() != 10 || v.Value() != 10 {
		t.Fatalf("after ExtractOffset: raw=%v offset=%v value=%v", v.Raw(), v.Offset(), v.Value())
	}

	v.SetValue(5)
	if v.Value() != 15 {
		t.Errorf("expected 15 with offset, got %v", v.Value())
	}

	v.FlattenOffset()
	if v.Raw() != 15 || v.Offset() != 0 || v.Value() != 15 {
		t.Errorf("after FlattenOffset: raw=%v offset=%v value=%v", v.Raw(), v.Offset(), v.Value())
	}
}

func TestValueXY_SetValueCommitsBothBeforeNotifying(t *testing.T) {
	xy := NewValueXY(0, 0)
	var seen []Point
	xy.X.AddListener(func(x float64) {
		seen = append(seen, Point{X: x, Y: xy.Y.Value()})
	})
	pairCalls := 0
	xy.AddListener(func(p Point) {
		pairCalls++
		if p.X != 3 || p.Y != 4 {
			t.Errorf("pair listener saw %+v, want {3 4}", p)
		}
	})

	xy.SetValue(3, 4)

	if len(seen) != 1 || seen[0] != (Point{X: 3, Y: 4}) {
		t.Errorf("X listener saw %v, want [{3 4}]", seen)
	}
	if pairCalls != 1 {
		t.Errorf("expected pair listener once, got %d", pairCalls)
	}
}

func TestValueXY_Offset(t *testing.T) {
	xy := NewValueXY(10, 20)
	xy.ExtractOffset()
	xy.SetValue(1, 2)
	if got := xy.Value(); got != (Point{X: 11, Y: 22}) {
		t.Errorf("expected {11 22}, got %+v", got)
	}
	xy.FlattenOffset()
	if xy.X.Offset() != 0 || xy.Y.Offset() != 0 {
		t.Errorf("expected offsets cleared, got %v %v", xy.X.Offset(), xy.Y.Offset())
	}
	if got := xy.Value(); got != (Point{X: 11, Y: 22}) {
		t.Errorf("expected {11 22} after flatten, got %+v", got)
	}
}

func TestValue_SetValueStopsDriver(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	rec := &resultRecorder{}
	anim := Timing(v, TimingConfig{To: 1, Duration: time.Second, Easing: LinearCurve})
	mustStart(t, s, anim, rec.done)
	mustTick(t, s, 0)
	mustTick(t, s, 500)

	v.SetValue(10)
	if anim.State() != Cancelled {
		t.Fatalf("expected driver cancelled, got %v", anim.State())
	}
	if v.IsAnimating() {
		t.Error("expected value to have no writer")
	}

	mustTick(t, s, 600)
	if v.Value() != 10 {
		t.Errorf("expected value to stay 10, got %v", v.Value())
	}
	if len(rec.results) != 1 || rec.last().Finished {
		t.Errorf("expected one cancelled result, got %+v", rec.results)
	}
}

func TestTween_Transform(t *testing.T) {
	v := NewValue(0.25)
	tw := TweenFloat64(0, 200)
	if got := tw.Transform(v); got != 50 {
		t.Errorf("expected 50, got %v", got)
	}
	pt := TweenPoint(Point{}, Point{X: 100, Y: 40}).Evaluate(0.5)
	if pt != (Point{X: 50, Y: 20}) {
		t.Errorf("expected {50 20}, got %+v", pt)
	}
}

func TestClaim_Writes(t *testing.T) {
	xy := NewValueXY(0, 0)
	var seen []Point
	xy.AddListener(func(p Point) { seen = append(seen, p) })

	c := xy.Claim(nil)
	if !c.SetXY(3, 4) || !c.Set(xy.X, 5) {
		t.Fatal("a held claim must write")
	}
	if c.Set(NewValue(0), 1) {
		t.Error("a claim must not write values it does not hold")
	}
	if len(seen) != 2 || seen[0] != (Point{X: 3, Y: 4}) || seen[1] != (Point{X: 5, Y: 4}) {
		t.Errorf("unexpected pair notifications %v", seen)
	}

	c.Release()
	if c.Held() || xy.X.IsAnimating() || xy.Y.IsAnimating() {
		t.Error("Release must drop both components")
	}
	if c.SetXY(0, 0) {
		t.Error("a released claim must not write")
	}
}

func TestClaim_Lost(t *testing.T) {
	tests := []struct {
		name string
		take func(t *testing.T, xy *ValueXY)
	}{
		{"driver", func(t *testing.T, xy *ValueXY) { mustStart(t, NewScheduler(), linear(xy.Y, 1, 100), nil) }},
		{"claim", func(_ *testing.T, xy *ValueXY) { xy.X.Claim(nil) }},
		{"SetValue", func(_ *testing.T, xy *ValueXY) { xy.Y.SetValue(9) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xy := NewValueXY(1, 2)
			lost := 0
			c := xy.Claim(func() { lost++ })
			tt.take(t, xy)

			if c.Held() || lost != 1 {
				t.Fatalf("expected the claim lost once, held %v lost %d", c.Held(), lost)
			}
			if c.SetXY(7, 7) {
				t.Error("a lost claim must not write")
			}
			if xy.X.writer == c || xy.Y.writer == c {
				t.Error("a lost claim must release both components")
			}
		})
	}
}

func TestClaim_PreemptsDriver(t *testing.T) {
	s := NewScheduler()
	v := NewValue(0)
	rec := &resultRecorder{}
	anim := linear(v, 1, 100)
	mustStart(t, s, anim, rec.done)
	mustTick(t, s, 0)
	mustTick(t, s, 50)

	c := v.Claim(nil)
	if anim.State() != Cancelled || len(rec.results) != 1 || !s.Idle() {
		t.Errorf("expected the driver cancelled and reported at once, got %v %+v", anim.State(), rec.results)
	}
	if !c.Held() || !v.IsAnimating() {
		t.Error("expected the claim to own the value")
	}
}
