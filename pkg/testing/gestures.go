package testing

import (
	"fmt"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/gestures"
)

// flingSteps is the number of moves a Fling emits to build velocity.
const flingSteps = 10

func (t *MotionTester) allocPointerID() int64 {
	t.nextID++
	return t.nextID
}

// Down sends a pointer-down at pos and returns the new pointer id.
// candidates are ordered innermost first.
func (t *MotionTester) Down(pos animation.Point, candidates ...*gestures.Handle) (int64, error) {
	id := t.allocPointerID()
	if err := t.SendPointer(gestures.PointerPhaseDown, id, pos, candidates...); err != nil {
		return 0, err
	}
	return id, nil
}

// MoveTo sends a pointer-move for id.
func (t *MotionTester) MoveTo(id int64, pos animation.Point) error {
	return t.SendPointer(gestures.PointerPhaseMove, id, pos)
}

// Up sends a pointer-up for id.
func (t *MotionTester) Up(id int64, pos animation.Point) error {
	return t.SendPointer(gestures.PointerPhaseUp, id, pos)
}

// Cancel sends a pointer-cancel for id at its last position.
func (t *MotionTester) Cancel(id int64) error {
	return t.SendPointer(gestures.PointerPhaseCancel, id, t.pointers[id])
}

// SendPointer sends one event stamped with the fake clock.
func (t *MotionTester) SendPointer(phase gestures.PointerPhase, id int64, pos animation.Point, candidates ...*gestures.Handle) error {
	ev := gestures.PointerEvent{
		PointerID: id,
		X:         pos.X,
		Y:         pos.Y,
		Phase:     phase,
		Time:      t.clock.Now(),
	}
	if err := t.responder.HandlePointer(ev, candidates); err != nil {
		return err
	}
	switch phase {
	case gestures.PointerPhaseUp, gestures.PointerPhaseCancel:
		delete(t.pointers, id)
	default:
		t.pointers[id] = pos
	}
	return nil
}

// Drag presses at start, moves by delta one frame later, and releases one
// frame after that. Frames are pumped between events.
func (t *MotionTester) Drag(start, delta animation.Point, candidates ...*gestures.Handle) error {
	id, err := t.Down(start, candidates...)
	if err != nil {
		return fmt.Errorf("Drag: %w", err)
	}
	end := animation.Point{X: start.X + delta.X, Y: start.Y + delta.Y}
	if err := t.PumpFrames(1); err != nil {
		return err
	}
	if err := t.MoveTo(id, end); err != nil {
		return fmt.Errorf("Drag: %w", err)
	}
	if err := t.PumpFrames(1); err != nil {
		return err
	}
	return t.Up(id, end)
}

// Fling presses at start and moves by delta in evenly spaced frames before
// releasing, so the release velocity is delta divided by the elapsed frames.
func (t *MotionTester) Fling(start, delta animation.Point, candidates ...*gestures.Handle) error {
	id, err := t.Down(start, candidates...)
	if err != nil {
		return fmt.Errorf("Fling: %w", err)
	}

	var end animation.Point
	for i := 1; i <= flingSteps; i++ {
		frac := float64(i) / float64(flingSteps)
		end = animation.Point{X: start.X + delta.X*frac, Y: start.Y + delta.Y*frac}
		if err := t.PumpFrames(1); err != nil {
			return err
		}
		// The last step is the release itself.
		if i == flingSteps {
			break
		}
		if err := t.MoveTo(id, end); err != nil {
			return fmt.Errorf("Fling: %w", err)
		}
	}
	return t.Up(id, end)
}
