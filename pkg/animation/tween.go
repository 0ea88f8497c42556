package animation

// Tween interpolates between Begin and End values based on progress.
//
// Tween is the single-segment building block behind [Interpolate]. Use it
// directly when a plain 0-1 source (such as an [AnimationController]) should
// map onto another value or type.
//
// See ExampleTween and ExampleTween_customType for usage patterns.
type Tween[T any] struct {
	// Begin is the starting value (when t = 0).
	Begin T
	// End is the ending value (when t = 1).
	End T
	// Lerp linearly interpolates between Begin and End. Receives the begin value,
	// end value, and progress t. Returns the interpolated value.
	Lerp func(a, b T, t float64) T
}

// Evaluate returns the interpolated value at t.
func (tw *Tween[T]) Evaluate(t float64) T {
	if tw.Lerp == nil {
		return tw.End
	}
	return tw.Lerp(tw.Begin, tw.End, t)
}

// Transform returns the interpolated value using the source's current number.
func (tw *Tween[T]) Transform(src Source) T {
	return tw.Evaluate(src.Value())
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

// LerpPoint linearly interpolates between two points.
func LerpPoint(a, b Point, t float64) Point {
	return Point{
		X: LerpFloat64(a.X, b.X, t),
		Y: LerpFloat64(a.Y, b.Y, t),
	}
}

// LerpColor interpolates each channel (R, G, B, A) independently and
// rounds the result to integer channel values.
func LerpColor(a, b Color, t float64) Color {
	aR, aG, aB, aA := a.Channels()
	bR, bG, bB, bA := b.Channels()

	r := channelByte(LerpFloat64(float64(aR), float64(bR), t))
	g := channelByte(LerpFloat64(float64(aG), float64(bG), t))
	b8 := channelByte(LerpFloat64(float64(aB), float64(bB), t))
	alpha := channelByte(LerpFloat64(float64(aA), float64(bA), t))

	return RGBA8(r, g, b8, alpha)
}

// TweenFloat64 creates a tween for float64 values.
func TweenFloat64(begin, end float64) *Tween[float64] {
	return &Tween[float64]{
		Begin: begin,
		End:   end,
		Lerp:  LerpFloat64,
	}
}

// TweenPoint creates a tween for Point values.
func TweenPoint(begin, end Point) *Tween[Point] {
	return &Tween[Point]{
		Begin: begin,
		End:   end,
		Lerp:  LerpPoint,
	}
}

// TweenColor creates a tween for Color values.
func TweenColor(begin, end Color) *Tween[Color] {
	return &Tween[Color]{
		Begin: begin,
		End:   end,
		Lerp:  LerpColor,
	}
}
