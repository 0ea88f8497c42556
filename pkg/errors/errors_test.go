package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

func TestMotionErrorString(t *testing.T) {
	err := &MotionError{
		Op:   "animation.Scheduler.Start",
		Kind: KindConfig,
		Err:  &ConfigError{Field: "Duration", Reason: "must be positive"},
	}
	got := err.Error()
	want := "animation.Scheduler.Start [config]: invalid configuration: Duration: must be positive"
	if got != want {
		t.Errorf("MotionError.Error() = %q, want %q", got, want)
	}
}

func TestMotionErrorWithRun(t *testing.T) {
	err := &MotionError{
		Op:   "animation.Scheduler.Tick",
		Kind: KindTick,
		Run:  "abc",
		Err:  stderrors.New("value is NaN"),
	}
	if !strings.Contains(err.Error(), "run=abc") {
		t.Errorf("error string %q should contain run id", err.Error())
	}
}

func TestMotionErrorUnwrap(t *testing.T) {
	cfg := &ConfigError{Field: "InputRange", Reason: "not increasing"}
	err := &MotionError{Op: "op", Kind: KindConfig, Err: cfg}

	var target *ConfigError
	if !stderrors.As(err, &target) {
		t.Fatal("expected errors.As to find ConfigError")
	}
	if target.Field != "InputRange" {
		t.Errorf("Field = %q, want InputRange", target.Field)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindConfig, "config"},
		{KindState, "state"},
		{KindTick, "tick"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestConfigErrorString(t *testing.T) {
	if got := (&ConfigError{Reason: "bad"}).Error(); got != "invalid configuration: bad" {
		t.Errorf("got %q", got)
	}
	if got := Configf("Mass", "must be > 0, got %v", -1).Error(); got != "invalid configuration: Mass: must be > 0, got -1" {
		t.Errorf("got %q", got)
	}
}

func TestStateErrorString(t *testing.T) {
	err := &StateError{Op: "Start", State: "finished", Reason: "call Reset first"}
	want := "Start: invalid in state finished: call Reset first"
	if got := err.Error(); got != want {
		t.Errorf("StateError.Error() = %q, want %q", got, want)
	}
	err = &StateError{Op: "PointerMove", State: "terminated"}
	if got := err.Error(); got != "PointerMove: invalid in state terminated" {
		t.Errorf("got %q", got)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got := err.Error(); got != "panic: test panic" {
		t.Errorf("PanicError.Error() = %q", got)
	}
	err.Op = "animation.Scheduler.Tick"
	if got := err.Error(); got != "panic in animation.Scheduler.Tick: test panic" {
		t.Errorf("PanicError.Error() = %q", got)
	}
}

func TestReport(t *testing.T) {
	var captured *MotionError
	old := SetHandler(HandlerFuncs{Error: func(err *MotionError) { captured = err }})
	defer SetHandler(old)

	Report(&MotionError{Op: "test.op", Kind: KindTick, Err: stderrors.New("boom")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	old := SetHandler(HandlerFuncs{Panic: func(err *PanicError) { captured = err }})
	defer SetHandler(old)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
	if !strings.Contains(captured.StackTrace, "TestRecover") {
		t.Errorf("stack should start at the panicking test, got:\n%s", captured.StackTrace)
	}
	if strings.Contains(captured.StackTrace, ownPackage+"Recover\n") {
		t.Errorf("stack should omit Recover itself, got:\n%s", captured.StackTrace)
	}
}

func TestRecoverWithCallback(t *testing.T) {
	old := SetHandler(HandlerFuncs{})
	defer SetHandler(old)

	var got any
	func() {
		defer RecoverWithCallback("test.cb", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback received %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.HasPrefix(stack, "github.com/go-drift/motion/pkg/errors.TestCaptureStack") {
		t.Errorf("stack should start at the caller, got:\n%s", stack)
	}
	if strings.Contains(stack, "\nruntime.") {
		t.Errorf("stack should omit runtime frames, got:\n%s", stack)
	}
}

func TestSetHandler(t *testing.T) {
	h := &HandlerFuncs{}
	old := SetHandler(h)
	if Handler() != ErrorHandler(h) {
		t.Errorf("Handler() = %T, want HandlerFuncs", Handler())
	}
	if prev := SetHandler(nil); prev != ErrorHandler(h) {
		t.Errorf("SetHandler returned %T, want the installed handler", prev)
	}
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should restore LogHandler, got %T", Handler())
	}
	SetHandler(old)
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}
	h.HandleError(&MotionError{Op: "animation.Scheduler.Tick", Kind: KindTick, Err: stderrors.New("nan")})
	if got := buf.String(); got != "[motion error] animation.Scheduler.Tick: nan\n" {
		t.Errorf("unexpected log line %q", got)
	}

	buf.Reset()
	h.Verbose = true
	h.HandleError(&MotionError{Op: "op", Kind: KindState, Run: "r1", Err: stderrors.New("x"), StackTrace: "frames"})
	out := buf.String()
	for _, want := range []string{"[state]", "run=r1", "Stack trace:"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output %q missing %q", out, want)
		}
	}

	buf.Reset()
	h.HandlePanic(&PanicError{Value: "oops"})
	if !strings.HasPrefix(buf.String(), "[motion panic] oops") {
		t.Errorf("unexpected panic line %q", buf.String())
	}
}
