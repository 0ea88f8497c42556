package gestures

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// Policy tunes how ownership disputes are resolved.
type Policy struct {
	// DenyBlocking forces an owner to release whenever another handler asks,
	// ignoring its OnTerminationRequest answer.
	DenyBlocking bool
}

// Predicate answers whether a handler wants the sequence.
type Predicate func(GestureState) bool

// HandlerConfig holds the predicates and callbacks of one handler. All
// fields are optional; a nil predicate answers no.
type HandlerConfig struct {
	// Name labels the handler in diagnostics.
	Name string

	OnStartShouldSetResponder        Predicate
	OnStartShouldSetResponderCapture Predicate
	OnMoveShouldSetResponder         Predicate
	OnMoveShouldSetResponderCapture  Predicate

	// OnGrant runs when the handler becomes the owner.
	OnGrant func(GestureState)
	// OnReject runs when the handler asked for the sequence but the owner
	// refused to release it.
	OnReject func(GestureState)
	// OnMove runs for each move while the handler owns the sequence.
	OnMove func(GestureState)
	// OnRelease runs when the pointer lifts while the handler owns the sequence.
	OnRelease func(GestureState)
	// OnTerminationRequest is asked whether the owner gives up the sequence
	// to another handler. Nil grants.
	OnTerminationRequest Predicate
	// OnTerminate runs when ownership is taken away or the sequence is
	// cancelled. When nil, OnRelease runs instead.
	OnTerminate func(GestureState)
}

// Handle is a registered handler. The host attaches it to a region of its
// UI tree and lists it among the candidates of pointer-downs in that region.
type Handle struct {
	r       *Responder
	cfg     HandlerConfig
	removed bool
}

// Name returns the handler's diagnostic label.
func (h *Handle) Name() string { return h.cfg.Name }

// Remove unregisters the handler. Sequences it owns lose their owner and
// the handler receives OnTerminate.
func (h *Handle) Remove() {
	if h.removed {
		return
	}
	h.removed = true
	h.r.detach(h)
}

type sequence struct {
	phase      Phase
	owner      *Handle
	candidates []*Handle
	state      GestureState
}

// Responder tracks active pointer sequences and their owners.
//
// Events are processed to completion one at a time. A Responder is not safe
// for concurrent use.
type Responder struct {
	policy Policy
	active map[int64]*sequence
}

// NewResponder creates a responder with the given policy.
func NewResponder(p Policy) *Responder {
	return &Responder{policy: p, active: make(map[int64]*sequence)}
}

// Policy returns the dispute policy.
func (r *Responder) Policy() Policy { return r.policy }

// Register creates a handle for cfg.
func (r *Responder) Register(cfg HandlerConfig) *Handle {
	return &Handle{r: r, cfg: cfg}
}

// HandlePointer dispatches ev by phase. candidates is only read for
// pointer-downs.
func (r *Responder) HandlePointer(ev PointerEvent, candidates []*Handle) error {
	switch ev.Phase {
	case PointerPhaseDown:
		return r.PointerDown(ev, candidates)
	case PointerPhaseMove:
		return r.PointerMove(ev)
	case PointerPhaseUp:
		return r.PointerUp(ev)
	case PointerPhaseCancel:
		return r.PointerCancel(ev.PointerID)
	default:
		return &errors.MotionError{
			Op:   "gestures.Responder.HandlePointer",
			Kind: errors.KindConfig,
			Err:  errors.Configf("Phase", "unknown pointer phase %v", ev.Phase),
		}
	}
}

// PointerDown opens a sequence for ev.PointerID and negotiates an owner
// among candidates, which are ordered innermost first. A sequence that no
// handler claims stays open and unclaimed until the pointer lifts.
func (r *Responder) PointerDown(ev PointerEvent, candidates []*Handle) error {
	const op = "gestures.Responder.PointerDown"
	if seq, ok := r.active[ev.PointerID]; ok {
		return stateError(op, seq.phase, fmt.Sprintf("pointer %d is already down", ev.PointerID))
	}

	at := eventTime(ev)
	seq := &sequence{
		phase: PhaseNegotiating,
		state: GestureState{
			PointerID: ev.PointerID,
			X0:        ev.X,
			Y0:        ev.Y,
			MoveX:     ev.X,
			MoveY:     ev.Y,
			Timestamp: at,
		},
	}
	for _, h := range candidates {
		if h != nil && !h.removed && h.r == r {
			seq.candidates = append(seq.candidates, h)
		}
	}
	r.active[ev.PointerID] = seq

	if h := r.negotiate(seq, seq.candidates, startPredicates); h != nil {
		r.grant(seq, h)
	}
	return nil
}

// PointerMove updates the sequence and delivers the move to its owner.
//
// An unclaimed sequence re-runs the move predicates of every candidate. A
// claimed sequence asks the owner's ancestors; a yes turns into a
// termination request against the owner.
func (r *Responder) PointerMove(ev PointerEvent) error {
	seq, err := r.lookup("gestures.Responder.PointerMove", ev.PointerID)
	if err != nil {
		return err
	}
	seq.state.update(ev.X, ev.Y, eventTime(ev))

	if seq.owner == nil {
		if h := r.negotiate(seq, seq.candidates, movePredicates); h != nil {
			r.grant(seq, h)
		}
	} else if idx := slices.Index(seq.candidates, seq.owner); idx >= 0 {
		ancestors := seq.candidates[idx+1:]
		if h := r.negotiate(seq, ancestors, movePredicates); h != nil {
			r.transfer(seq, h)
		}
	}

	if seq.owner != nil {
		invoke("gestures.Handle.OnMove", seq.owner.cfg.OnMove, seq.state)
	}
	return nil
}

// PointerUp delivers the final state to the owner and ends the sequence.
func (r *Responder) PointerUp(ev PointerEvent) error {
	seq, err := r.lookup("gestures.Responder.PointerUp", ev.PointerID)
	if err != nil {
		return err
	}
	seq.state.update(ev.X, ev.Y, eventTime(ev))
	r.end(ev.PointerID, seq)
	if seq.owner != nil {
		invoke("gestures.Handle.OnRelease", seq.owner.cfg.OnRelease, seq.state)
	}
	return nil
}

// PointerCancel forcibly ends the sequence. The owner receives OnTerminate.
func (r *Responder) PointerCancel(pointerID int64) error {
	seq, err := r.lookup("gestures.Responder.PointerCancel", pointerID)
	if err != nil {
		return err
	}
	r.end(pointerID, seq)
	if seq.owner != nil {
		terminate(seq.owner, seq.state)
	}
	return nil
}

// RequestTermination asks the owner of pointerID to give up the sequence.
// With a non-nil requester, ownership moves to it when granted; with a nil
// requester the sequence returns to PhaseIdle. It reports whether the owner
// released the sequence.
func (r *Responder) RequestTermination(pointerID int64, requester *Handle) (bool, error) {
	const op = "gestures.Responder.RequestTermination"
	seq, err := r.lookup(op, pointerID)
	if err != nil {
		return false, err
	}
	if requester != nil && (requester.removed || requester.r != r) {
		return false, stateError(op, seq.phase, "requester is not registered with this responder")
	}
	if seq.owner == nil {
		if requester == nil {
			return true, nil
		}
		r.grant(seq, requester)
		return true, nil
	}
	if seq.owner == requester {
		return true, nil
	}
	return r.transfer(seq, requester), nil
}

// Owner returns the handle owning pointerID, or nil.
func (r *Responder) Owner(pointerID int64) *Handle {
	if seq, ok := r.active[pointerID]; ok {
		return seq.owner
	}
	return nil
}

// Phase returns the negotiation state of pointerID. Unknown pointers report
// PhaseTerminated.
func (r *Responder) Phase(pointerID int64) Phase {
	if seq, ok := r.active[pointerID]; ok {
		return seq.phase
	}
	return PhaseTerminated
}

// State returns the gesture state of an active pointer.
func (r *Responder) State(pointerID int64) (GestureState, bool) {
	seq, ok := r.active[pointerID]
	if !ok {
		return GestureState{}, false
	}
	return seq.state, true
}

// Active returns the ids of active pointers in ascending order.
func (r *Responder) Active() []int64 {
	ids := make([]int64, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type predicateSet int

const (
	startPredicates predicateSet = iota
	movePredicates
)

func (h *Handle) predicates(set predicateSet) (capture, bubble Predicate) {
	if set == startPredicates {
		return h.cfg.OnStartShouldSetResponderCapture, h.cfg.OnStartShouldSetResponder
	}
	return h.cfg.OnMoveShouldSetResponderCapture, h.cfg.OnMoveShouldSetResponder
}

// negotiate runs the capture walk (last to first) and then the bubble walk
// (first to last) over handlers, returning the first handler to answer yes.
func (r *Responder) negotiate(seq *sequence, handlers []*Handle, set predicateSet) *Handle {
	for i := len(handlers) - 1; i >= 0; i-- {
		capture, _ := handlers[i].predicates(set)
		if ask(capture, seq.state) {
			return handlers[i]
		}
	}
	for _, h := range handlers {
		_, bubble := h.predicates(set)
		if ask(bubble, seq.state) {
			return h
		}
	}
	return nil
}

func (r *Responder) grant(seq *sequence, h *Handle) {
	seq.owner = h
	seq.phase = PhaseClaimed
	invoke("gestures.Handle.OnGrant", h.cfg.OnGrant, seq.state)
}

// transfer asks the owner to release in favour of requester (nil releases
// to PhaseIdle) and reports whether it did.
func (r *Responder) transfer(seq *sequence, requester *Handle) bool {
	owner := seq.owner
	release := r.policy.DenyBlocking || owner.cfg.OnTerminationRequest == nil ||
		ask(owner.cfg.OnTerminationRequest, seq.state)
	if !release {
		if requester != nil {
			invoke("gestures.Handle.OnReject", requester.cfg.OnReject, seq.state)
		}
		return false
	}
	seq.owner = nil
	seq.phase = PhaseIdle
	terminate(owner, seq.state)
	if requester != nil {
		r.grant(seq, requester)
	}
	return true
}

func (r *Responder) end(pointerID int64, seq *sequence) {
	seq.phase = PhaseTerminated
	delete(r.active, pointerID)
}

// detach drops h from every active sequence.
func (r *Responder) detach(h *Handle) {
	for _, id := range r.Active() {
		seq := r.active[id]
		seq.candidates = slices.DeleteFunc(seq.candidates, func(c *Handle) bool { return c == h })
		if seq.owner == h {
			seq.owner = nil
			seq.phase = PhaseIdle
			terminate(h, seq.state)
		}
	}
}

func (r *Responder) lookup(op string, pointerID int64) (*sequence, error) {
	seq, ok := r.active[pointerID]
	if !ok {
		return nil, stateError(op, PhaseTerminated, fmt.Sprintf("no active sequence for pointer %d", pointerID))
	}
	return seq, nil
}

func stateError(op string, phase Phase, reason string) error {
	return &errors.MotionError{
		Op:   op,
		Kind: errors.KindState,
		Err:  &errors.StateError{Op: op, State: phase.String(), Reason: reason},
	}
}

func eventTime(ev PointerEvent) time.Time {
	if ev.Time.IsZero() {
		return animation.Now()
	}
	return ev.Time
}

func terminate(h *Handle, g GestureState) {
	if h.cfg.OnTerminate != nil {
		invoke("gestures.Handle.OnTerminate", h.cfg.OnTerminate, g)
		return
	}
	invoke("gestures.Handle.OnRelease", h.cfg.OnRelease, g)
}

// ask evaluates a predicate. A panicking predicate answers no.
func ask(p Predicate, g GestureState) (yes bool) {
	if p == nil {
		return false
	}
	defer errors.Recover("gestures.Predicate")
	return p(g)
}

func invoke(op string, fn func(GestureState), g GestureState) {
	if fn == nil {
		return
	}
	defer errors.Recover(op)
	fn(g)
}
