package animation

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-drift/motion/pkg/errors"
)

// Extrapolate controls how inputs outside the input range are mapped.
type Extrapolate int

const (
	// ExtrapolateExtend continues the first or last segment linearly.
	ExtrapolateExtend Extrapolate = iota
	// ExtrapolateClamp holds the first or last output.
	ExtrapolateClamp
	// ExtrapolateIdentity returns the input unchanged. Numeric outputs only.
	ExtrapolateIdentity
)

func (e Extrapolate) String() string {
	switch e {
	case ExtrapolateExtend:
		return "extend"
	case ExtrapolateClamp:
		return "clamp"
	case ExtrapolateIdentity:
		return "identity"
	default:
		return "Extrapolate(" + strconv.Itoa(int(e)) + ")"
	}
}

// InterpolationConfig maps a numeric input range onto a numeric output range.
type InterpolationConfig struct {
	// InputRange holds strictly increasing breakpoints.
	InputRange []float64
	// OutputRange holds one output per input breakpoint.
	OutputRange []float64
	// Easing shapes progress within each segment. Nil means linear.
	Easing Curve
	// ExtrapolateLeft applies below the first breakpoint.
	ExtrapolateLeft Extrapolate
	// ExtrapolateRight applies above the last breakpoint.
	ExtrapolateRight Extrapolate
}

// ColorInterpolationConfig maps a numeric input range onto colors.
type ColorInterpolationConfig struct {
	InputRange       []float64
	OutputRange      []Color
	Easing           Curve
	ExtrapolateLeft  Extrapolate
	ExtrapolateRight Extrapolate
}

// StringInterpolationConfig maps a numeric input range onto strings that
// share a template, such as "0deg" to "360deg" or "10%" to "100%", or onto
// color strings ("red", "#000000", "rgb(0, 200, 0)").
type StringInterpolationConfig struct {
	InputRange       []float64
	OutputRange      []string
	Easing           Curve
	ExtrapolateLeft  Extrapolate
	ExtrapolateRight Extrapolate
}

// segmentLocator finds the bracketing segment for an input.
type segmentLocator struct {
	input       []float64
	easing      Curve
	left, right Extrapolate
}

func newLocator(input []float64, outputs int, easing Curve, left, right Extrapolate, numeric bool) (segmentLocator, error) {
	if len(input) < 2 {
		return segmentLocator{}, errors.Configf("InputRange", "needs at least 2 breakpoints, got %d", len(input))
	}
	if len(input) != outputs {
		return segmentLocator{}, errors.Configf("OutputRange", "length %d does not match InputRange length %d", outputs, len(input))
	}
	for i, x := range input {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return segmentLocator{}, errors.Configf("InputRange", "breakpoint %d is not finite", i)
		}
		if i > 0 && x <= input[i-1] {
			if x == input[i-1] {
				return segmentLocator{}, errors.Configf("InputRange", "breakpoints %d and %d are identical (%v)", i-1, i, x)
			}
			return segmentLocator{}, errors.Configf("InputRange", "must be strictly increasing, %v follows %v", x, input[i-1])
		}
	}
	for _, e := range []Extrapolate{left, right} {
		if e < ExtrapolateExtend || e > ExtrapolateIdentity {
			return segmentLocator{}, errors.Configf("Extrapolate", "unknown policy %d", int(e))
		}
		if e == ExtrapolateIdentity && !numeric {
			return segmentLocator{}, errors.Configf("Extrapolate", "identity requires numeric outputs")
		}
	}
	if easing != nil {
		if err := checkCurve("Easing", easing); err != nil {
			return segmentLocator{}, err
		}
	}
	return segmentLocator{
		input:  append([]float64(nil), input...),
		easing: easing,
		left:   left,
		right:  right,
	}, nil
}

// locate returns the segment index and eased progress within it. identity
// is true when the extrapolation policy asks for the raw input.
func (l *segmentLocator) locate(x float64) (seg int, t float64, identity bool) {
	n := len(l.input)
	switch {
	case x < l.input[0]:
		seg = 0
		switch l.left {
		case ExtrapolateIdentity:
			return 0, 0, true
		case ExtrapolateClamp:
			return 0, 0, false
		}
	case x > l.input[n-1]:
		seg = n - 2
		switch l.right {
		case ExtrapolateIdentity:
			return seg, 0, true
		case ExtrapolateClamp:
			return seg, 1, false
		}
	default:
		seg = sort.Search(n, func(i int) bool { return l.input[i] > x }) - 1
		if seg > n-2 {
			seg = n - 2
		}
		if seg < 0 {
			seg = 0
		}
	}
	lo, hi := l.input[seg], l.input[seg+1]
	t = (x - lo) / (hi - lo)
	if l.easing != nil {
		t = l.easing(t)
	}
	return seg, t, false
}

// Interpolation is a read-only numeric value derived from a source. It is
// recomputed on every read and never mutates the source.
type Interpolation struct {
	src    Source
	loc    segmentLocator
	output []float64
}

// Interpolate derives a numeric value from src through piecewise-linear ranges.
func Interpolate(src Source, cfg InterpolationConfig) (*Interpolation, error) {
	loc, err := newLocator(cfg.InputRange, len(cfg.OutputRange), cfg.Easing, cfg.ExtrapolateLeft, cfg.ExtrapolateRight, true)
	if err != nil {
		return nil, err
	}
	for i, y := range cfg.OutputRange {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, errors.Configf("OutputRange", "output %d is not finite", i)
		}
	}
	return &Interpolation{src: src, loc: loc, output: append([]float64(nil), cfg.OutputRange...)}, nil
}

// Value returns the interpolated number for the source's current value.
func (ip *Interpolation) Value() float64 {
	return ip.At(ip.src.Value())
}

// At evaluates the interpolation for an arbitrary input.
func (ip *Interpolation) At(x float64) float64 {
	seg, t, identity := ip.loc.locate(x)
	if identity {
		return x
	}
	return LerpFloat64(ip.output[seg], ip.output[seg+1], t)
}

// Interpolate chains another interpolation on top of this one.
func (ip *Interpolation) Interpolate(cfg InterpolationConfig) (*Interpolation, error) {
	return Interpolate(ip, cfg)
}

// ColorInterpolation is a read-only color derived from a source.
type ColorInterpolation struct {
	src    Source
	loc    segmentLocator
	output []Color
}

// InterpolateColor derives a color from src, interpolating each channel
// independently and rounding to integer channel values.
func InterpolateColor(src Source, cfg ColorInterpolationConfig) (*ColorInterpolation, error) {
	loc, err := newLocator(cfg.InputRange, len(cfg.OutputRange), cfg.Easing, cfg.ExtrapolateLeft, cfg.ExtrapolateRight, false)
	if err != nil {
		return nil, err
	}
	return &ColorInterpolation{src: src, loc: loc, output: append([]Color(nil), cfg.OutputRange...)}, nil
}

// Value returns the color for the source's current value.
func (ci *ColorInterpolation) Value() Color {
	return ci.At(ci.src.Value())
}

// At evaluates the interpolation for an arbitrary input.
func (ci *ColorInterpolation) At(x float64) Color {
	seg, t, _ := ci.loc.locate(x)
	return LerpColor(ci.output[seg], ci.output[seg+1], t)
}

var numberPattern = regexp.MustCompile(`[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// stringTemplate is an output string split into literal text and numbers.
type stringTemplate struct {
	literals []string // len(numbers)+1
	numbers  []float64
}

func parseTemplate(s string) stringTemplate {
	var tpl stringTemplate
	last := 0
	for _, loc := range numberPattern.FindAllStringIndex(s, -1) {
		n, err := strconv.ParseFloat(s[loc[0]:loc[1]], 64)
		if err != nil {
			continue
		}
		tpl.literals = append(tpl.literals, s[last:loc[0]])
		tpl.numbers = append(tpl.numbers, n)
		last = loc[1]
	}
	tpl.literals = append(tpl.literals, s[last:])
	return tpl
}

// StringInterpolation is a read-only string derived from a source.
type StringInterpolation struct {
	src       Source
	loc       segmentLocator
	colors    []Color
	templates []stringTemplate
}

// InterpolateString derives a string from src. When every output parses as
// a color the result is a color rendered as "rgba(r, g, b, a)". Otherwise all
// outputs must share one template (identical text around the same count of
// numbers), and each number is interpolated independently.
func InterpolateString(src Source, cfg StringInterpolationConfig) (*StringInterpolation, error) {
	loc, err := newLocator(cfg.InputRange, len(cfg.OutputRange), cfg.Easing, cfg.ExtrapolateLeft, cfg.ExtrapolateRight, false)
	if err != nil {
		return nil, err
	}
	si := &StringInterpolation{src: src, loc: loc}

	colors := make([]Color, 0, len(cfg.OutputRange))
	for _, out := range cfg.OutputRange {
		c, err := ParseColor(out)
		if err != nil {
			colors = nil
			break
		}
		colors = append(colors, c)
	}
	if colors != nil {
		si.colors = colors
		return si, nil
	}

	for i, out := range cfg.OutputRange {
		tpl := parseTemplate(out)
		if i > 0 {
			first := si.templates[0]
			if len(tpl.numbers) != len(first.numbers) {
				return nil, errors.Configf("OutputRange", "%q has %d numbers, %q has %d", out, len(tpl.numbers), cfg.OutputRange[0], len(first.numbers))
			}
			for j := range tpl.literals {
				if tpl.literals[j] != first.literals[j] {
					return nil, errors.Configf("OutputRange", "%q does not match template of %q", out, cfg.OutputRange[0])
				}
			}
		}
		si.templates = append(si.templates, tpl)
	}
	return si, nil
}

// Value returns the string for the source's current value.
func (si *StringInterpolation) Value() string {
	return si.At(si.src.Value())
}

// At evaluates the interpolation for an arbitrary input.
func (si *StringInterpolation) At(x float64) string {
	seg, t, _ := si.loc.locate(x)
	if si.colors != nil {
		return LerpColor(si.colors[seg], si.colors[seg+1], t).String()
	}
	a, b := si.templates[seg], si.templates[seg+1]
	var sb strings.Builder
	for i, n := range a.numbers {
		sb.WriteString(a.literals[i])
		v := LerpFloat64(n, b.numbers[i], t)
		sb.WriteString(strconv.FormatFloat(roundForDisplay(v), 'f', -1, 64))
	}
	sb.WriteString(a.literals[len(a.literals)-1])
	return sb.String()
}

// roundForDisplay trims float noise such as 0.30000000000000004.
func roundForDisplay(v float64) float64 {
	const scale = 1e9
	return math.Round(v*scale) / scale
}
