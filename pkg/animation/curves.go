package animation

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tanema/gween/ease"

	"github.com/go-drift/motion/pkg/errors"
)

// Curve transforms linear progress in [0, 1] into eased progress.
//
// Every shipped curve maps 0 to 0 and 1 to 1. Base curves are "in" shaped
// (slow start); wrap them with [Out] or [InOut] to reflect them. Set
// [TimingConfig].Easing to apply one to a timing animation.
//
// Standard curves: [LinearCurve], [Quad], [Cubic], [Sine], [Circle], [Back],
// [Bounce], [Elastic], and the CSS curves [Ease], [EaseIn], [EaseOut],
// [EaseInOut]. Use [CubicBezier] to create custom curves matching CSS
// cubic-bezier(), or [ParseEasing] to build one from a name.
type Curve func(float64) float64

// LinearCurve returns linear progress (no easing).
func LinearCurve(t float64) float64 {
	return t
}

// Quad is t².
func Quad(t float64) float64 { return t * t }

// Cubic is t³.
func Cubic(t float64) float64 { return t * t * t }

// Poly returns t^n.
func Poly(n float64) Curve {
	return func(t float64) float64 { return math.Pow(t, n) }
}

// Penner curves from gween. The Bounce base is the classic bouncing-ball
// shape, which settles at the end.
var (
	Sine    = fromPenner(ease.InSine)
	Circle  = fromPenner(ease.InCirc)
	Back    = fromPenner(ease.InBack)
	Bounce  = fromPenner(ease.OutBounce)
	Elastic = fromPenner(ease.InElastic)
)

// fromPenner adapts a Penner (t, begin, change, duration) function.
func fromPenner(fn ease.TweenFunc) Curve {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// In runs a curve forwards. It exists for symmetry with Out and InOut.
func In(e Curve) Curve { return e }

// Out reflects a curve: out(e)(t) = 1 - e(1-t).
func Out(e Curve) Curve {
	return func(t float64) float64 { return 1 - e(1-t) }
}

// InOut makes a curve symmetric: the first half runs e, the second half runs
// its reflection.
func InOut(e Curve) Curve {
	return func(t float64) float64 {
		if t < 0.5 {
			return e(t*2) / 2
		}
		return 1 - e((1-t)*2)/2
	}
}

// Step0 jumps to 1 for any positive progress.
func Step0(t float64) float64 {
	if t > 0 {
		return 1
	}
	return 0
}

// Step1 jumps to 1 only at the end.
func Step1(t float64) float64 {
	if t >= 1 {
		return 1
	}
	return 0
}

// Ease is a standard cubic bezier curve for general-purpose easing.
// Equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates. Use for elements exiting the screen.
// Equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.4, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates. Use for elements entering the screen.
// Equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.2, 1.0)

// EaseInOut starts and ends slowly with acceleration in the middle.
// Equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.4, 0.0, 0.2, 1.0)

// CubicBezier returns a cubic-bezier easing function matching CSS cubic-bezier().
// The parameters define the two control points (x1,y1) and (x2,y2) of the curve.
// The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Curve {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Fallback to bisection to guarantee a stable solution in [0,1].
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// curveEndpointTolerance absorbs float32 rounding in the Penner curves.
const curveEndpointTolerance = 1e-4

// checkCurve rejects curves that do not map 0 to 0 and 1 to 1.
func checkCurve(field string, e Curve) error {
	if e == nil {
		return errors.Configf(field, "easing is nil")
	}
	start, end := e(0), e(1)
	if math.IsNaN(start) || math.Abs(start) > curveEndpointTolerance {
		return errors.Configf(field, "easing must map 0 to 0, got %v", start)
	}
	if math.IsNaN(end) || math.Abs(end-1) > curveEndpointTolerance {
		return errors.Configf(field, "easing must map 1 to 1, got %v", end)
	}
	return nil
}

var namedCurves = map[string]Curve{
	"linear":    LinearCurve,
	"quad":      Quad,
	"cubic":     Cubic,
	"sine":      Sine,
	"circle":    Circle,
	"back":      Back,
	"bounce":    Bounce,
	"elastic":   Elastic,
	"ease":      Ease,
	"easein":    EaseIn,
	"easeout":   EaseOut,
	"easeinout": EaseInOut,
	"step0":     Step0,
	"step1":     Step1,
}

// EasingNames lists the base names accepted by ParseEasing.
func EasingNames() []string {
	names := make([]string, 0, len(namedCurves))
	for name := range namedCurves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseEasing builds a curve from a textual description. It accepts a base
// name (see EasingNames), "poly(n)", "bezier(x1, y1, x2, y2)", and the
// wrappers "in(...)", "out(...)" and "inout(...)", nested freely:
//
//	out(quad)
//	inout(bounce)
//	in(poly(4))
//
// Unknown names, empty wrappers and curves that do not map 0 to 0 and 1 to 1
// are reported as a ConfigError.
func ParseEasing(s string) (Curve, error) {
	e, err := parseEasing(strings.ToLower(strings.ReplaceAll(s, " ", "")))
	if err != nil {
		return nil, err
	}
	if err := checkCurve("Easing", e); err != nil {
		return nil, err
	}
	return e, nil
}

func parseEasing(s string) (Curve, error) {
	if s == "" {
		return nil, errors.Configf("Easing", "invalid easing composition: empty expression")
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if e, ok := namedCurves[s]; ok {
			return e, nil
		}
		return nil, errors.Configf("Easing", "unknown easing %q", s)
	}
	if !strings.HasSuffix(s, ")") {
		return nil, errors.Configf("Easing", "invalid easing composition %q: unbalanced parentheses", s)
	}
	name, arg := s[:open], s[open+1:len(s)-1]
	switch name {
	case "in", "out", "inout":
		inner, err := parseEasing(arg)
		if err != nil {
			return nil, err
		}
		switch name {
		case "out":
			return Out(inner), nil
		case "inout":
			return InOut(inner), nil
		}
		return In(inner), nil
	case "poly":
		n, err := strconv.ParseFloat(arg, 64)
		if err != nil || n <= 0 {
			return nil, errors.Configf("Easing", "poly exponent must be a positive number, got %q", arg)
		}
		return Poly(n), nil
	case "bezier":
		parts := strings.Split(arg, ",")
		if len(parts) != 4 {
			return nil, errors.Configf("Easing", "bezier needs 4 control values, got %d", len(parts))
		}
		var p [4]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, errors.Configf("Easing", "bad bezier control value %q", part)
			}
			p[i] = v
		}
		return CubicBezier(p[0], p[1], p[2], p[3]), nil
	}
	return nil, errors.Configf("Easing", "invalid easing composition: unknown wrapper %q", name)
}
