package animation

import (
	"math"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/errors"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// at returns the tick time ms milliseconds after epoch.
func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func mustStart(t *testing.T, s *Scheduler, anim Animation, onComplete func(Result)) RunID {
	t.Helper()
	id, err := s.Start(anim, onComplete)
	if err != nil {
		t.Fatalf("Start: unexpected error: %v", err)
	}
	return id
}

func mustTick(t *testing.T, s *Scheduler, ms int) {
	t.Helper()
	if err := s.Tick(at(ms)); err != nil {
		t.Fatalf("Tick(%d): unexpected error: %v", ms, err)
	}
}

// resultRecorder counts completion callbacks.
type resultRecorder struct {
	results []Result
}

func (r *resultRecorder) done(res Result) { r.results = append(r.results, res) }

func (r *resultRecorder) last() Result {
	if len(r.results) == 0 {
		return Result{}
	}
	return r.results[len(r.results)-1]
}

type recordingHandler struct {
	errs   []*errors.MotionError
	panics []*errors.PanicError
}

func (h *recordingHandler) HandleError(err *errors.MotionError) { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandlePanic(err *errors.PanicError)  { h.panics = append(h.panics, err) }

// captureErrors routes reported errors to a recorder for the test's duration.
func captureErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	old := errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(old) })
	return h
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
