package animation

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/go-drift/motion/pkg/errors"
)

func TestInterpolate_Numeric(t *testing.T) {
	v := NewValue(0)
	ip, err := Interpolate(v, InterpolationConfig{
		InputRange:  []float64{0, 1, 2},
		OutputRange: []float64{0, 10, 0},
	})
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}

	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{0.5, 5},
		{1, 10},
		{1.5, 5},
		{2, 0},
	}
	for _, tt := range tests {
		v.SetValue(tt.in)
		if got := ip.Value(); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("at %v: got %v, want %v", tt.in, got, tt.want)
		}
	}
	if v.Value() != 2 {
		t.Errorf("interpolation must not change its source, got %v", v.Value())
	}
}

func TestInterpolate_Extrapolation(t *testing.T) {
	tests := []struct {
		name   string
		policy Extrapolate
		in     float64
		want   float64
	}{
		{"extend right", ExtrapolateExtend, 2, 200},
		{"clamp right", ExtrapolateClamp, 2, 100},
		{"identity right", ExtrapolateIdentity, 2, 2},
		{"extend left", ExtrapolateExtend, -1, -100},
		{"clamp left", ExtrapolateClamp, -1, 0},
		{"identity left", ExtrapolateIdentity, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, err := Interpolate(Constant(0), InterpolationConfig{
				InputRange:       []float64{0, 1},
				OutputRange:      []float64{0, 100},
				ExtrapolateLeft:  tt.policy,
				ExtrapolateRight: tt.policy,
			})
			if err != nil {
				t.Fatalf("Interpolate: %v", err)
			}
			if got := ip.At(tt.in); !approxEqual(got, tt.want, 1e-12) {
				t.Errorf("At(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInterpolate_ContinuousAtBreakpoints(t *testing.T) {
	input := []float64{-10, 0, 3, 7.5, 100}
	output := []float64{5, -5, 20, 20, 0}
	for _, easing := range []Curve{nil, EaseInOut, Out(Quad)} {
		ip, err := Interpolate(Constant(0), InterpolationConfig{
			InputRange:  input,
			OutputRange: output,
			Easing:      easing,
		})
		if err != nil {
			t.Fatalf("Interpolate: %v", err)
		}
		for i, x := range input {
			if got := ip.At(x); !approxEqual(got, output[i], 1e-9) {
				t.Errorf("At(%v) = %v, want %v", x, got, output[i])
			}
			const eps = 1e-9
			left, right := ip.At(x-eps), ip.At(x+eps)
			if !approxEqual(left, right, 1e-5) {
				t.Errorf("discontinuity at %v: left %v, right %v", x, left, right)
			}
		}
	}
}

func TestInterpolate_MonotonicWithinSegments(t *testing.T) {
	input := []float64{0, 1, 4, 5}
	output := []float64{0, 100, -50, -50}
	ip, err := Interpolate(Constant(0), InterpolationConfig{
		InputRange:  input,
		OutputRange: output,
		Easing:      EaseInOut,
	})
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	for seg := 0; seg < len(input)-1; seg++ {
		dir := math.Copysign(1, output[seg+1]-output[seg])
		flat := output[seg+1] == output[seg]
		prev := ip.At(input[seg])
		for i := 1; i <= 100; i++ {
			x := input[seg] + (input[seg+1]-input[seg])*float64(i)/100
			cur := ip.At(x)
			if flat {
				if cur != output[seg] {
					t.Errorf("flat segment %d: At(%v) = %v", seg, x, cur)
				}
				continue
			}
			if (cur-prev)*dir < -1e-12 {
				t.Errorf("segment %d not monotonic at %v: %v after %v", seg, x, cur, prev)
			}
			prev = cur
		}
	}
}

func TestInterpolate_Chain(t *testing.T) {
	v := NewValue(0.5)
	first, err := v.Interpolate(InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0, 10}})
	if err != nil {
		t.Fatal(err)
	}
	second, err := first.Interpolate(InterpolationConfig{InputRange: []float64{0, 10}, OutputRange: []float64{100, 200}})
	if err != nil {
		t.Fatal(err)
	}
	if got := second.Value(); got != 150 {
		t.Errorf("expected 150, got %v", got)
	}
}

func TestInterpolate_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  InterpolationConfig
	}{
		{"single breakpoint", InterpolationConfig{InputRange: []float64{0}, OutputRange: []float64{0}}},
		{"length mismatch", InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0, 1, 2}}},
		{"identical breakpoints", InterpolationConfig{InputRange: []float64{0, 1, 1}, OutputRange: []float64{0, 1, 2}}},
		{"decreasing", InterpolationConfig{InputRange: []float64{1, 0}, OutputRange: []float64{0, 1}}},
		{"nan input", InterpolationConfig{InputRange: []float64{0, math.NaN()}, OutputRange: []float64{0, 1}}},
		{"infinite output", InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0, math.Inf(1)}}},
		{"bad easing", InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0, 1}, Easing: func(t float64) float64 { return t / 2 }}},
		{"unknown policy", InterpolationConfig{InputRange: []float64{0, 1}, OutputRange: []float64{0, 1}, ExtrapolateLeft: Extrapolate(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpolate(Constant(0), tt.cfg)
			var cfgErr *errors.ConfigError
			if !stderrors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %v", err)
			}
		})
	}
}

func TestInterpolateColor(t *testing.T) {
	v := NewValue(0.5)
	ci, err := InterpolateColor(v, ColorInterpolationConfig{
		InputRange:  []float64{0, 1},
		OutputRange: []Color{RGB(0, 0, 0), RGBA8(255, 255, 255, 0)},
	})
	if err != nil {
		t.Fatalf("InterpolateColor: %v", err)
	}
	if got, want := ci.Value(), RGBA8(128, 128, 128, 128); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInterpolateColor_RejectsIdentity(t *testing.T) {
	_, err := InterpolateColor(Constant(0), ColorInterpolationConfig{
		InputRange:       []float64{0, 1},
		OutputRange:      []Color{ColorBlack, ColorWhite},
		ExtrapolateRight: ExtrapolateIdentity,
	})
	var cfgErr *errors.ConfigError
	if !stderrors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestInterpolateString(t *testing.T) {
	tests := []struct {
		name   string
		output []string
		in     float64
		want   string
	}{
		{"degrees", []string{"0deg", "360deg"}, 0.25, "90deg"},
		{"percent", []string{"0%", "100%"}, 0.5, "50%"},
		{"several numbers", []string{"translate(0px, 10px)", "translate(100px, 20px)"}, 0.5, "translate(50px, 15px)"},
		{"negative", []string{"-10px", "10px"}, 0.75, "5px"},
		{"named colors", []string{"red", "rgb(0, 200, 0)"}, 0.5, "rgba(128, 100, 0, 1)"},
		{"hex to named", []string{"#000000", "purple"}, 0.5, "rgba(64, 0, 64, 1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si, err := InterpolateString(NewValue(tt.in), StringInterpolationConfig{
				InputRange:  []float64{0, 1},
				OutputRange: tt.output,
			})
			if err != nil {
				t.Fatalf("InterpolateString: %v", err)
			}
			if got := si.Value(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInterpolateString_TemplateMismatch(t *testing.T) {
	tests := [][]string{
		{"0deg", "1rad"},
		{"0 0", "1"},
		{"red", "10px"},
	}
	for _, output := range tests {
		_, err := InterpolateString(Constant(0), StringInterpolationConfig{
			InputRange:  []float64{0, 1},
			OutputRange: output,
		})
		var cfgErr *errors.ConfigError
		if !stderrors.As(err, &cfgErr) {
			t.Errorf("%q: expected ConfigError, got %v", output, err)
		}
	}
}
