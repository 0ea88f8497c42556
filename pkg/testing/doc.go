// Package testing provides deterministic test helpers for the motion engine.
//
// # Quick Start
//
// Create a tester, start animations, and pump frames on a fake clock:
//
//	func TestFadeIn(t *testing.T) {
//	    tester := motiontest.NewMotionTesterWithT(t)
//	    opacity := animation.NewValue(0)
//	    tester.Start(animation.Timing(opacity, animation.TimingConfig{
//	        To: 1, Duration: 300 * time.Millisecond,
//	    }), nil)
//
//	    if err := tester.PumpAndSettle(time.Second); err != nil {
//	        t.Fatal(err)
//	    }
//	    if opacity.Value() != 1 {
//	        t.Errorf("expected 1, got %v", opacity.Value())
//	    }
//	}
//
// # Gesture Simulation
//
// Drag and Fling send pointer sequences through the tester's responder,
// pumping one frame between events:
//
//	pan := gestures.PanXY(tester.Responder(), xy, gestures.PanConfig{})
//	tester.Drag(animation.Point{}, animation.Point{X: 40}, pan)
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import motiontest "github.com/go-drift/motion/pkg/testing"
package testing
