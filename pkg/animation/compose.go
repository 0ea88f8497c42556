package animation

import "math"

// Derived is a read-only Source computed from other sources on every read.
type Derived struct {
	fn func() float64
}

// Value returns the current derived number.
func (d *Derived) Value() float64 { return d.fn() }

// Interpolate derives a numeric interpolation from this node.
func (d *Derived) Interpolate(cfg InterpolationConfig) (*Interpolation, error) {
	return Interpolate(d, cfg)
}

// Add returns a + b.
func Add(a, b Source) *Derived {
	return &Derived{fn: func() float64 { return a.Value() + b.Value() }}
}

// Subtract returns a - b.
func Subtract(a, b Source) *Derived {
	return &Derived{fn: func() float64 { return a.Value() - b.Value() }}
}

// Multiply returns a * b.
func Multiply(a, b Source) *Derived {
	return &Derived{fn: func() float64 { return a.Value() * b.Value() }}
}

// Divide returns a / b, or 0 while b is 0.
func Divide(a, b Source) *Derived {
	return &Derived{fn: func() float64 {
		den := b.Value()
		if den == 0 {
			return 0
		}
		return a.Value() / den
	}}
}

// Modulo returns the non-negative remainder of a divided by m.
func Modulo(a Source, m float64) *Derived {
	return &Derived{fn: func() float64 {
		if m == 0 {
			return 0
		}
		r := math.Mod(a.Value(), m)
		if r < 0 {
			r += math.Abs(m)
		}
		return r
	}}
}

// Constant wraps a fixed number as a Source.
type Constant float64

// Value returns the constant.
func (c Constant) Value() float64 { return float64(c) }

// DiffClampNode follows changes of its source but keeps the accumulated
// result within [Min, Max]. A header that hides while scrolling down and
// reappears on any upward scroll is the typical use.
type DiffClampNode struct {
	src      Source
	min, max float64
	last     float64
	value    float64
	primed   bool
}

// DiffClamp creates a DiffClampNode.
func DiffClamp(src Source, min, max float64) *DiffClampNode {
	return &DiffClampNode{src: src, min: min, max: max}
}

// Value applies the change since the previous read and clamps the result.
// The first read clamps the source's current value.
func (d *DiffClampNode) Value() float64 {
	cur := d.src.Value()
	if !d.primed {
		d.primed = true
		d.last = cur
		d.value = math.Min(math.Max(cur, d.min), d.max)
		return d.value
	}
	diff := cur - d.last
	d.last = cur
	d.value = math.Min(math.Max(d.value+diff, d.min), d.max)
	return d.value
}
