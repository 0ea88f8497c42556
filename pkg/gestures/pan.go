package gestures

import (
	"math"

	"github.com/go-drift/motion/pkg/animation"
)

// Axis restricts which components a pan writes.
type Axis int

const (
	// AxisBoth follows the pointer on both axes.
	AxisBoth Axis = iota
	// AxisX follows horizontal motion only.
	AxisX
	// AxisY follows vertical motion only.
	AxisY
)

// ReleaseMode selects what a pan does when the pointer lifts.
type ReleaseMode int

const (
	// ReleaseStay leaves the value where the pointer left it.
	ReleaseStay ReleaseMode = iota
	// ReleaseSpringBack springs the value to PanConfig.Home with the release velocity.
	ReleaseSpringBack
	// ReleaseDecay coasts the value with the release velocity.
	ReleaseDecay
)

// PanConfig configures [PanXY].
type PanConfig struct {
	// Name labels the handler in diagnostics.
	Name string
	// Axis limits the drag direction.
	Axis Axis
	// Slop is the distance the pointer must travel before the pan claims a
	// move. Zero claims on pointer-down.
	Slop float64
	// Capture claims on the capture walk, ahead of descendants.
	Capture bool
	// Release selects the release behaviour. Spring and decay need Scheduler.
	Release ReleaseMode
	// Scheduler runs the release animation.
	Scheduler *animation.Scheduler
	// Home is the spring-back target.
	Home animation.Point
	// Spring tunes the spring-back. To and Velocity are set per axis.
	Spring animation.SpringConfig
	// Decay tunes the coast. Velocity is set per axis.
	Decay animation.DecayConfig
	// Yield grants termination requests from other handlers.
	Yield bool
	// OnRelease runs after the release animation is started.
	OnRelease func(GestureState)
	// OnSettled receives the result of the release animation.
	OnSettled func(animation.Result)
}

// PanXY registers a handler that drags xy.
//
// On grant the pan claims the components it writes, which stops their
// drivers, and moves their position into the offset, so moves write the
// cumulative delta while the visible position stays continuous. On release
// or termination the offset is flattened back into the value before any
// release animation starts.
//
// The claim is per pointer. When a driver starts on a dragged component,
// SetValue is called on it, or another pointer is granted on the same
// pan, the earlier pointer stops writing and its offset is flattened. It
// keeps the sequence but no longer moves or settles the value.
func PanXY(r *Responder, xy *animation.ValueXY, cfg PanConfig) *Handle {
	move := Predicate(func(g GestureState) bool {
		return distance(cfg.Axis, g) >= cfg.Slop
	})
	var start Predicate
	if cfg.Slop <= 0 {
		start = func(GestureState) bool { return true }
	}
	hc := HandlerConfig{Name: cfg.Name}
	if cfg.Capture {
		hc.OnStartShouldSetResponderCapture = start
		hc.OnMoveShouldSetResponderCapture = move
	} else {
		hc.OnStartShouldSetResponder = start
		hc.OnMoveShouldSetResponder = move
	}

	dragged := axisValues(cfg.Axis, xy)
	flatten := func() {
		for _, v := range dragged {
			v.FlattenOffset()
		}
	}
	claims := make(map[int64]*animation.Claim)

	// finish ends the pointer's claim and reports whether it still held
	// the value.
	finish := func(id int64) bool {
		c := claims[id]
		delete(claims, id)
		if c == nil || !c.Held() {
			return false
		}
		c.Release()
		flatten()
		return true
	}

	hc.OnGrant = func(g GestureState) {
		if len(dragged) == 2 {
			claims[g.PointerID] = xy.Claim(flatten)
		} else {
			claims[g.PointerID] = dragged[0].Claim(flatten)
		}
		for _, v := range dragged {
			v.ExtractOffset()
		}
	}
	hc.OnMove = func(g GestureState) {
		c := claims[g.PointerID]
		if c == nil {
			return
		}
		switch cfg.Axis {
		case AxisX:
			c.Set(xy.X, g.DX)
		case AxisY:
			c.Set(xy.Y, g.DY)
		default:
			c.SetXY(g.DX, g.DY)
		}
	}
	hc.OnRelease = func(g GestureState) {
		if finish(g.PointerID) {
			settle(xy, cfg, g)
		}
		if cfg.OnRelease != nil {
			cfg.OnRelease(g)
		}
	}
	hc.OnTerminate = func(g GestureState) {
		finish(g.PointerID)
	}
	hc.OnTerminationRequest = func(GestureState) bool { return cfg.Yield }
	return r.Register(hc)
}

func axisValues(axis Axis, xy *animation.ValueXY) []*animation.Value {
	switch axis {
	case AxisX:
		return []*animation.Value{xy.X}
	case AxisY:
		return []*animation.Value{xy.Y}
	default:
		return []*animation.Value{xy.X, xy.Y}
	}
}

func distance(axis Axis, g GestureState) float64 {
	switch axis {
	case AxisX:
		return math.Abs(g.DX)
	case AxisY:
		return math.Abs(g.DY)
	default:
		return math.Hypot(g.DX, g.DY)
	}
}

func settle(xy *animation.ValueXY, cfg PanConfig, g GestureState) {
	if cfg.Scheduler == nil || cfg.Release == ReleaseStay {
		return
	}
	var anims []animation.Animation
	add := func(v *animation.Value, home, velocity float64) {
		switch cfg.Release {
		case ReleaseSpringBack:
			sc := cfg.Spring
			sc.To = home
			sc.Velocity = velocity
			anims = append(anims, animation.Spring(v, sc))
		case ReleaseDecay:
			dc := cfg.Decay
			dc.Velocity = velocity
			anims = append(anims, animation.Decay(v, dc))
		}
	}
	if cfg.Axis != AxisY {
		add(xy.X, cfg.Home.X, g.VX)
	}
	if cfg.Axis != AxisX {
		add(xy.Y, cfg.Home.Y, g.VY)
	}
	if _, err := cfg.Scheduler.Start(animation.Parallel(anims...), cfg.OnSettled); err != nil && cfg.OnSettled != nil {
		cfg.OnSettled(animation.Result{Err: err})
	}
}
