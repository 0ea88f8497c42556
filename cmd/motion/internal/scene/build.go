package scene

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/motion/cmd/motion/internal/suggest"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/config"
)

// MaxLength bounds scenes that set no length.
const MaxLength = time.Minute

// Simulation is a scene bound to live values, ready to run.
type Simulation struct {
	Root   animation.Animation
	Frame  time.Duration
	Length time.Duration

	resolved *config.Resolved
	values   map[string]*animation.Value
	columns  []column
}

type column struct {
	name  string
	value func() string
}

// Value returns the named scene value.
func (s *Simulation) Value(name string) (*animation.Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Columns lists the printed column names in order.
func (s *Simulation) Columns() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.name
	}
	return names
}

// Build creates the values, interpolations and animation tree of sc. Spring
// presets and the default frame come from r; a nil r uses the engine defaults.
func Build(sc *Scene, r *config.Resolved) (*Simulation, error) {
	if r == nil {
		var err error
		if r, err = config.Resolve(nil); err != nil {
			return nil, err
		}
	}
	if len(sc.Values) == 0 {
		return nil, fmt.Errorf("values: scene declares no values")
	}

	sim := &Simulation{
		Frame:    sc.Frame,
		Length:   sc.Length,
		resolved: r,
		values:   make(map[string]*animation.Value, len(sc.Values)),
	}
	if sim.Frame == 0 {
		sim.Frame = r.Frame
	}
	if sim.Frame < 0 {
		return nil, fmt.Errorf("frame: must be > 0, got %v", sim.Frame)
	}
	if sim.Length < 0 {
		return nil, fmt.Errorf("length: must be >= 0, got %v", sim.Length)
	}

	available := make(map[string]column)
	for name, initial := range sc.Values {
		v := animation.NewValue(initial)
		sim.values[name] = v
		available[name] = column{name: name, value: func() string { return formatFloat(v.Value()) }}
	}
	for name, m := range sc.Interpolations {
		if _, dup := available[name]; dup {
			return nil, fmt.Errorf("interpolations.%s: name already used by a value", name)
		}
		col, err := sim.mapping(name, m)
		if err != nil {
			return nil, fmt.Errorf("interpolations.%s: %w", name, err)
		}
		available[name] = col
	}

	names := sc.Columns
	if len(names) == 0 {
		names = sortedKeys(available)
	}
	for _, name := range names {
		col, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("columns: unknown column %q%s", name, suggest.Hint(name, sortedKeys(available)))
		}
		sim.columns = append(sim.columns, col)
	}

	root, err := sim.node("animation", &sc.Animation)
	if err != nil {
		return nil, err
	}
	sim.Root = root
	return sim, nil
}

func (s *Simulation) value(path, name string) (*animation.Value, error) {
	v, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("%s: unknown value %q%s", path, name, suggest.Hint(name, s.valueNames()))
	}
	return v, nil
}

func (s *Simulation) valueNames() []string { return sortedKeys(s.values) }

func (s *Simulation) node(path string, n *Node) (animation.Animation, error) {
	kind, err := n.kind()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	path += "." + kind

	switch kind {
	case "timing":
		t := n.Timing
		v, err := s.value(path, t.Value)
		if err != nil {
			return nil, err
		}
		cfg := animation.TimingConfig{To: t.To, Duration: t.Duration, Delay: t.Delay}
		if t.Easing != "" {
			if cfg.Easing, err = animation.ParseEasing(t.Easing); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		return animation.Timing(v, cfg), nil

	case "spring":
		sp := n.Spring
		v, err := s.value(path, sp.Value)
		if err != nil {
			return nil, err
		}
		cfg := animation.SpringConfig{
			Tension:           sp.Tension,
			Friction:          sp.Friction,
			Speed:             sp.Speed,
			Bounciness:        sp.Bounciness,
			Stiffness:         sp.Stiffness,
			Damping:           sp.Damping,
			Mass:              sp.Mass,
			OvershootClamping: sp.OvershootClamping,
		}
		if sp.Preset != "" {
			preset, ok := s.resolved.Spring(sp.Preset)
			if !ok {
				return nil, fmt.Errorf("%s: unknown spring preset %q%s", path, sp.Preset, suggest.Hint(sp.Preset, s.resolved.SpringNames()))
			}
			cfg = preset
			cfg.OvershootClamping = cfg.OvershootClamping || sp.OvershootClamping
		}
		cfg.To = sp.To
		cfg.Velocity = sp.Velocity
		return animation.Spring(v, cfg), nil

	case "decay":
		d := n.Decay
		v, err := s.value(path, d.Value)
		if err != nil {
			return nil, err
		}
		return animation.Decay(v, animation.DecayConfig{Velocity: d.Velocity, Deceleration: d.Deceleration}), nil

	case "delay":
		return animation.Delay(*n.Delay), nil

	case "sequence":
		children, err := s.nodes(path, n.Sequence)
		if err != nil {
			return nil, err
		}
		return animation.Sequence(children...), nil

	case "parallel":
		children, err := s.nodes(path, n.Parallel)
		if err != nil {
			return nil, err
		}
		return animation.ParallelWith(animation.ParallelConfig{StopTogether: n.StopTogether}, children...), nil

	case "stagger":
		children, err := s.nodes(path+".animations", n.Stagger.Animations)
		if err != nil {
			return nil, err
		}
		return animation.Stagger(n.Stagger.Each, children...), nil

	case "loop":
		child, err := s.node(path+".animation", &n.Loop.Animation)
		if err != nil {
			return nil, err
		}
		return animation.LoopWith(child, animation.LoopConfig{
			Iterations: n.Loop.Iterations,
			SkipReset:  n.Loop.SkipReset,
		}), nil
	}
	return nil, fmt.Errorf("%s: unsupported node", path)
}

func (s *Simulation) nodes(path string, ns []Node) ([]animation.Animation, error) {
	out := make([]animation.Animation, 0, len(ns))
	for i := range ns {
		a, err := s.node(fmt.Sprintf("%s[%d]", path, i), &ns[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Simulation) mapping(name string, m Mapping) (column, error) {
	src, ok := s.values[m.From]
	if !ok {
		return column{}, fmt.Errorf("unknown value %q%s", m.From, suggest.Hint(m.From, s.valueNames()))
	}
	var (
		easing animation.Curve
		err    error
	)
	if m.Easing != "" {
		if easing, err = animation.ParseEasing(m.Easing); err != nil {
			return column{}, err
		}
	}
	left, err := parseExtrapolate(m.ExtrapolateLeft, m.Extrapolate)
	if err != nil {
		return column{}, err
	}
	right, err := parseExtrapolate(m.ExtrapolateRight, m.Extrapolate)
	if err != nil {
		return column{}, err
	}

	if numbers, ok := parseNumbers(m.Output); ok {
		ip, err := animation.Interpolate(src, animation.InterpolationConfig{
			InputRange:       m.Input,
			OutputRange:      numbers,
			Easing:           easing,
			ExtrapolateLeft:  left,
			ExtrapolateRight: right,
		})
		if err != nil {
			return column{}, err
		}
		return column{name: name, value: func() string { return formatFloat(ip.Value()) }}, nil
	}

	si, err := animation.InterpolateString(src, animation.StringInterpolationConfig{
		InputRange:       m.Input,
		OutputRange:      m.Output,
		Easing:           easing,
		ExtrapolateLeft:  left,
		ExtrapolateRight: right,
	})
	if err != nil {
		return column{}, err
	}
	return column{name: name, value: si.Value}, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseExtrapolate(side, both string) (animation.Extrapolate, error) {
	s := side
	if s == "" {
		s = both
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "extend":
		return animation.ExtrapolateExtend, nil
	case "clamp":
		return animation.ExtrapolateClamp, nil
	case "identity":
		return animation.ExtrapolateIdentity, nil
	}
	return 0, fmt.Errorf("unknown extrapolation %q (want extend, clamp or identity)", s)
}

func parseNumbers(ss []string) ([]float64, bool) {
	out := make([]float64, len(ss))
	for i, s := range ss {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
