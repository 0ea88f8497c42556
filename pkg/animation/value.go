package animation

import "sync/atomic"

// Source is anything that yields a current number: a [Value], an
// [Interpolation], or an arithmetic node such as [Add]. Sinks read it once
// per frame. Reading a Value, an Interpolation or an arithmetic node has no
// side effects; [DiffClampNode] is the exception and tracks its last read.
type Source interface {
	Value() float64
}

// writer is implemented by drivers and claims that can own a Value for
// writing.
type writer interface {
	preempt()
}

var nextValueID atomic.Uint64

type valueListener struct {
	id int
	fn func(float64)
}

// Value is a mutable scalar node driven over time and observed by listeners.
//
// The number a reader sees is the raw value plus the offset. Drivers animate
// the raw value; the offset lets gesture code make motion relative to where
// a drag began (see [Value.ExtractOffset] and [Value.FlattenOffset]).
//
// At most one writer, a driver or a [Claim], writes a Value at a time.
// Starting another driver on it, claiming it, or calling SetValue cancels
// the current writer.
type Value struct {
	id        uint64
	value     float64
	offset    float64
	listeners []valueListener
	nextID    int
	writer    writer
	pair      *ValueXY
	dirty     bool
}

// NewValue creates a Value holding initial.
func NewValue(initial float64) *Value {
	return &Value{id: nextValueID.Add(1), value: initial}
}

// ID returns the identity of the value, unique within the process.
func (v *Value) ID() uint64 { return v.id }

// Value returns the current number including the offset.
func (v *Value) Value() float64 { return v.value + v.offset }

// Raw returns the current number without the offset.
func (v *Value) Raw() float64 { return v.value }

// Offset returns the current offset.
func (v *Value) Offset() float64 { return v.offset }

// SetValue stops any driver writing the value, overwrites it, and
// synchronously notifies listeners in registration order.
func (v *Value) SetValue(n float64) {
	v.StopAnimation()
	v.value = n
	v.notify()
	if v.pair != nil {
		v.pair.notify()
	}
}

// SetOffset sets a number added on top of the raw value when read.
func (v *Value) SetOffset(offset float64) {
	v.offset = offset
	v.notify()
}

// FlattenOffset merges the offset into the raw value and resets the offset to zero.
// The visible number does not change.
func (v *Value) FlattenOffset() {
	v.value += v.offset
	v.offset = 0
}

// ExtractOffset moves the raw value into the offset and resets the raw value
// to zero. The visible number does not change.
func (v *Value) ExtractOffset() {
	v.offset += v.value
	v.value = 0
}

// StopAnimation cancels the driver currently writing the value, if any,
// and returns the value it was frozen at.
func (v *Value) StopAnimation() float64 {
	if w := v.writer; w != nil {
		v.writer = nil
		w.preempt()
	}
	return v.Value()
}

// IsAnimating reports whether a running driver or a claim currently owns
// the value.
func (v *Value) IsAnimating() bool { return v.writer != nil }

// AddListener registers fn to be called with the visible number after every
// change. Listeners run in registration order. Returns an unsubscribe function.
func (v *Value) AddListener(fn func(float64)) func() {
	id := v.nextID
	v.nextID++
	v.listeners = append(v.listeners, valueListener{id: id, fn: fn})
	return func() {
		for i, l := range v.listeners {
			if l.id == id {
				v.listeners = append(v.listeners[:i:i], v.listeners[i+1:]...)
				return
			}
		}
	}
}

// Interpolate derives a numeric interpolation from this value.
func (v *Value) Interpolate(cfg InterpolationConfig) (*Interpolation, error) {
	return Interpolate(v, cfg)
}

// ListenerCount returns the number of registered listeners.
func (v *Value) ListenerCount() int { return len(v.listeners) }

func (v *Value) notify() {
	if len(v.listeners) == 0 {
		return
	}
	current := v.Value()
	// Copy so listeners may unsubscribe while being notified.
	listeners := append([]valueListener(nil), v.listeners...)
	for _, l := range listeners {
		l.fn(current)
	}
}

// claim makes w the exclusive writer, cancelling a previous one.
func (v *Value) claim(w writer) {
	if prev := v.writer; prev != nil && prev != w {
		v.writer = nil
		prev.preempt()
	}
	v.writer = w
}

// release drops w as the writer if it still owns the value.
func (v *Value) release(w writer) {
	if v.writer == w {
		v.writer = nil
	}
}

// Claim is a writer that is not a driver, such as a gesture sequence. It
// owns its values until released, or until a driver starts on one of them,
// another claim takes one, or SetValue is called on one. Losing any value
// loses the whole claim.
type Claim struct {
	values []*Value
	pair   *ValueXY
	held   bool
	onLost func()
}

// Claim takes v for writing and cancels its current writer. onLost, if
// non-nil, runs once if the claim is taken away.
func (v *Value) Claim(onLost func()) *Claim {
	return newClaim(nil, onLost, v)
}

// Claim takes both components for writing. See [Value.Claim].
func (xy *ValueXY) Claim(onLost func()) *Claim {
	return newClaim(xy, onLost, xy.X, xy.Y)
}

func newClaim(pair *ValueXY, onLost func(), values ...*Value) *Claim {
	c := &Claim{values: values, pair: pair, held: true, onLost: onLost}
	for _, v := range values {
		v.claim(c)
	}
	if !c.held {
		// Taken away while claiming, by a completion callback of a
		// cancelled driver.
		for _, v := range values {
			v.release(c)
		}
	}
	return c
}

// Held reports whether the claim still owns its values.
func (c *Claim) Held() bool { return c.held }

// Set writes n to v and notifies its listeners. It writes nothing and
// returns false once the claim is lost or if v is not one of its values.
func (c *Claim) Set(v *Value, n float64) bool {
	if !c.held || v.writer != c {
		return false
	}
	v.value = n
	v.notify()
	if v.pair != nil {
		v.pair.notify()
	}
	return true
}

// SetXY writes both components of a claimed pair and notifies like
// [ValueXY.SetValue]. It returns false for a lost claim or a claim on a
// single Value.
func (c *Claim) SetXY(x, y float64) bool {
	xy := c.pair
	if !c.held || xy == nil {
		return false
	}
	xy.X.value = x
	xy.Y.value = y
	xy.X.notify()
	xy.Y.notify()
	xy.notify()
	return true
}

// Release gives the values up without running onLost.
func (c *Claim) Release() {
	if !c.held {
		return
	}
	c.held = false
	for _, v := range c.values {
		v.release(c)
	}
}

func (c *Claim) preempt() {
	if !c.held {
		return
	}
	c.Release()
	if c.onLost != nil {
		c.onLost()
	}
}

// Point is a pair of coordinates.
type Point struct {
	X, Y float64
}

// ValueXY is two Values sharing a lifecycle, used for positions.
//
// SetValue commits both components before any listener of either runs, and
// the scheduler applies the same rule to driver writes within a tick, so no
// listener observes a half-updated pair.
type ValueXY struct {
	X *Value
	Y *Value

	listeners []valueXYListener
	nextID    int
	dirty     bool
}

type valueXYListener struct {
	id int
	fn func(Point)
}

// NewValueXY creates a pair of values.
func NewValueXY(x, y float64) *ValueXY {
	xy := &ValueXY{X: NewValue(x), Y: NewValue(y)}
	xy.X.pair = xy
	xy.Y.pair = xy
	return xy
}

// Value returns the visible pair.
func (xy *ValueXY) Value() Point {
	return Point{X: xy.X.Value(), Y: xy.Y.Value()}
}

// SetValue stops drivers on both components, commits both numbers, and
// then notifies component listeners followed by pair listeners.
func (xy *ValueXY) SetValue(x, y float64) {
	xy.X.StopAnimation()
	xy.Y.StopAnimation()
	xy.X.value = x
	xy.Y.value = y
	xy.X.notify()
	xy.Y.notify()
	xy.notify()
}

// SetOffset sets both offsets.
func (xy *ValueXY) SetOffset(x, y float64) {
	xy.X.offset = x
	xy.Y.offset = y
	xy.X.notify()
	xy.Y.notify()
	xy.notify()
}

// FlattenOffset merges both offsets into the raw values.
func (xy *ValueXY) FlattenOffset() {
	xy.X.FlattenOffset()
	xy.Y.FlattenOffset()
}

// ExtractOffset moves both raw values into the offsets.
func (xy *ValueXY) ExtractOffset() {
	xy.X.ExtractOffset()
	xy.Y.ExtractOffset()
}

// StopAnimation cancels drivers on both components and returns the frozen pair.
func (xy *ValueXY) StopAnimation() Point {
	return Point{X: xy.X.StopAnimation(), Y: xy.Y.StopAnimation()}
}

// AddListener registers fn to be called once per committed change of the pair.
// Returns an unsubscribe function.
func (xy *ValueXY) AddListener(fn func(Point)) func() {
	id := xy.nextID
	xy.nextID++
	xy.listeners = append(xy.listeners, valueXYListener{id: id, fn: fn})
	return func() {
		for i, l := range xy.listeners {
			if l.id == id {
				xy.listeners = append(xy.listeners[:i:i], xy.listeners[i+1:]...)
				return
			}
		}
	}
}

func (xy *ValueXY) notify() {
	if len(xy.listeners) == 0 {
		return
	}
	current := xy.Value()
	listeners := append([]valueXYListener(nil), xy.listeners...)
	for _, l := range listeners {
		l.fn(current)
	}
}
