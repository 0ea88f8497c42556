// Package scene reads scripted animation scenes for the motion CLI.
//
// A scene names some animated values, optional interpolations derived from
// them, and one animation tree:
//
//	frame: 16ms
//	length: 1s
//	values:
//	  x: 0
//	  opacity: 0
//	interpolations:
//	  rotate: {from: x, input: [0, 100], output: ["0deg", "360deg"]}
//	animation:
//	  sequence:
//	    - delay: 100ms
//	    - parallel:
//	        - timing: {value: opacity, to: 1, duration: 300ms, easing: out(cubic)}
//	        - spring: {value: x, to: 100, preset: gentle}
//
// Each animation node sets exactly one of its keys.
package scene

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scene is a parsed scene file.
type Scene struct {
	// Frame is the simulated frame step. Zero uses the configured frame.
	Frame time.Duration `yaml:"frame,omitempty"`
	// Length stops the simulation after this much time. Zero runs until the
	// animation ends or MaxLength elapses.
	Length time.Duration `yaml:"length,omitempty"`

	Values         map[string]float64 `yaml:"values"`
	Interpolations map[string]Mapping `yaml:"interpolations,omitempty"`
	// Columns selects and orders the printed columns. Empty prints every
	// value and interpolation in name order.
	Columns   []string `yaml:"columns,omitempty"`
	Animation Node     `yaml:"animation"`
}

// Node is one animation in the tree.
type Node struct {
	Timing       *TimingNode    `yaml:"timing,omitempty"`
	Spring       *SpringNode    `yaml:"spring,omitempty"`
	Decay        *DecayNode     `yaml:"decay,omitempty"`
	Delay        *time.Duration `yaml:"delay,omitempty"`
	Sequence     []Node         `yaml:"sequence,omitempty"`
	Parallel     []Node         `yaml:"parallel,omitempty"`
	StopTogether bool           `yaml:"stopTogether,omitempty"`
	Stagger      *StaggerNode   `yaml:"stagger,omitempty"`
	Loop         *LoopNode      `yaml:"loop,omitempty"`
}

// TimingNode drives a value over a fixed duration.
type TimingNode struct {
	Value    string        `yaml:"value"`
	To       float64       `yaml:"to"`
	Duration time.Duration `yaml:"duration"`
	Easing   string        `yaml:"easing,omitempty"`
	Delay    time.Duration `yaml:"delay,omitempty"`
}

// SpringNode drives a value with a spring. Preset names a spring from
// motion.yaml; explicit parameters are used when Preset is empty.
type SpringNode struct {
	Value             string  `yaml:"value"`
	To                float64 `yaml:"to"`
	Velocity          float64 `yaml:"velocity,omitempty"`
	Preset            string  `yaml:"preset,omitempty"`
	Tension           float64 `yaml:"tension,omitempty"`
	Friction          float64 `yaml:"friction,omitempty"`
	Speed             float64 `yaml:"speed,omitempty"`
	Bounciness        float64 `yaml:"bounciness,omitempty"`
	Stiffness         float64 `yaml:"stiffness,omitempty"`
	Damping           float64 `yaml:"damping,omitempty"`
	Mass              float64 `yaml:"mass,omitempty"`
	OvershootClamping bool    `yaml:"overshootClamping,omitempty"`
}

// DecayNode coasts a value from an initial velocity in units per ms.
type DecayNode struct {
	Value        string  `yaml:"value"`
	Velocity     float64 `yaml:"velocity"`
	Deceleration float64 `yaml:"deceleration,omitempty"`
}

// StaggerNode starts its animations Each apart.
type StaggerNode struct {
	Each       time.Duration `yaml:"each"`
	Animations []Node        `yaml:"animations"`
}

// LoopNode repeats an animation. Iterations < 0 loops until stopped.
type LoopNode struct {
	Iterations int  `yaml:"iterations"`
	SkipReset  bool `yaml:"skipReset,omitempty"`
	Animation  Node `yaml:"animation"`
}

// Mapping derives a column from a value through an interpolation. When every
// output parses as a number the result is numeric, otherwise the outputs are
// treated as a string template ("0deg", "#ff0000", "rgb(0, 0, 0)").
type Mapping struct {
	From   string    `yaml:"from"`
	Input  []float64 `yaml:"input"`
	Output []string  `yaml:"output"`
	Easing string    `yaml:"easing,omitempty"`
	// Extrapolate sets both sides; Left and Right override it.
	Extrapolate      string `yaml:"extrapolate,omitempty"`
	ExtrapolateLeft  string `yaml:"extrapolateLeft,omitempty"`
	ExtrapolateRight string `yaml:"extrapolateRight,omitempty"`
}

// Load reads and parses the scene at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return sc, nil
}

// Parse decodes a scene document. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty scene")
		}
		return nil, err
	}
	return &sc, nil
}

// kind names the single key set on n, or reports how many were set.
func (n *Node) kind() (string, error) {
	var kinds []string
	if n.Timing != nil {
		kinds = append(kinds, "timing")
	}
	if n.Spring != nil {
		kinds = append(kinds, "spring")
	}
	if n.Decay != nil {
		kinds = append(kinds, "decay")
	}
	if n.Delay != nil {
		kinds = append(kinds, "delay")
	}
	if n.Sequence != nil {
		kinds = append(kinds, "sequence")
	}
	if n.Parallel != nil {
		kinds = append(kinds, "parallel")
	}
	if n.Stagger != nil {
		kinds = append(kinds, "stagger")
	}
	if n.Loop != nil {
		kinds = append(kinds, "loop")
	}
	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("empty animation node")
	case 1:
		if n.StopTogether && kinds[0] != "parallel" {
			return "", fmt.Errorf("stopTogether only applies to parallel")
		}
		return kinds[0], nil
	default:
		return "", fmt.Errorf("animation node sets %v, want exactly one", kinds)
	}
}
