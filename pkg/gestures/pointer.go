// Package gestures negotiates exclusive ownership of pointer sequences among
// competing handlers and streams move and release deltas to the owner.
//
// The host performs hit testing and passes the candidate handlers for a
// pointer-down, innermost first. The [Responder] then runs a two-phase walk:
// capture predicates root to leaf, then bubble predicates leaf to root. The
// first handler answering yes becomes the owner and receives every later
// move and the final release for that pointer. Each pointer id is negotiated
// independently, so multi-touch sequences never interfere.
//
// [PanXY] binds a handler to an [animation.ValueXY] for the common drag,
// release and settle pattern.
package gestures

import (
	"fmt"
	"time"
)

// PointerPhase describes the pointer event type.
type PointerPhase int

const (
	// PointerPhaseDown starts a sequence.
	PointerPhaseDown PointerPhase = iota
	// PointerPhaseMove reports a new position.
	PointerPhaseMove
	// PointerPhaseUp ends a sequence normally.
	PointerPhaseUp
	// PointerPhaseCancel ends a sequence by force.
	PointerPhaseCancel
)

func (p PointerPhase) String() string {
	switch p {
	case PointerPhaseDown:
		return "down"
	case PointerPhaseMove:
		return "move"
	case PointerPhaseUp:
		return "up"
	case PointerPhaseCancel:
		return "cancel"
	default:
		return fmt.Sprintf("PointerPhase(%d)", int(p))
	}
}

// PointerEvent is a raw pointer event in logical coordinates.
type PointerEvent struct {
	PointerID int64
	X, Y      float64
	Phase     PointerPhase
	// Time is when the event occurred. Zero means the animation package clock.
	Time time.Time
}

// Phase is the negotiation state of one pointer sequence.
type Phase int

const (
	// PhaseIdle means the sequence is active but its owner released it.
	PhaseIdle Phase = iota
	// PhaseNegotiating means no handler has claimed the sequence yet.
	PhaseNegotiating
	// PhaseClaimed means one handler exclusively owns the sequence.
	PhaseClaimed
	// PhaseTerminated means the sequence ended and accepts no more events.
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseNegotiating:
		return "negotiating"
	case PhaseClaimed:
		return "claimed"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// GestureState is the accumulated motion of a pointer sequence, passed to
// every predicate and callback.
type GestureState struct {
	PointerID int64
	// X0, Y0 is where the pointer went down.
	X0, Y0 float64
	// MoveX, MoveY is the latest position.
	MoveX, MoveY float64
	// DX, DY is the cumulative distance since the pointer went down.
	DX, DY float64
	// MoveDX, MoveDY is the distance covered by the latest event.
	MoveDX, MoveDY float64
	// VX, VY is the latest velocity in units per millisecond.
	VX, VY float64
	// Timestamp is the time of the latest event.
	Timestamp time.Time
}

// update folds a new position into the state.
func (g *GestureState) update(x, y float64, at time.Time) {
	g.MoveDX = x - g.MoveX
	g.MoveDY = y - g.MoveY
	if dt := at.Sub(g.Timestamp); dt > 0 {
		ms := float64(dt) / float64(time.Millisecond)
		g.VX = g.MoveDX / ms
		g.VY = g.MoveDY / ms
	}
	g.MoveX, g.MoveY = x, y
	g.DX = x - g.X0
	g.DY = y - g.Y0
	g.Timestamp = at
}
