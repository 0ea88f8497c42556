// Package config loads the optional motion.yaml file that tunes engine
// defaults, gesture policy and named spring presets.
//
//	version: v1.0.0
//	frame: 16ms
//	timing: {easing: easeInOut}
//	spring: {tension: 40, friction: 7, restDisplacement: 0.001, restSpeed: 0.001, settleSteps: 16, maxFrameDelta: 64ms}
//	decay: {deceleration: 0.998, velocityThreshold: 0.001}
//	gestures: {denyBlocking: false}
//	springs:
//	  gentle: {tension: 120, friction: 14}
//
// Every field is optional. Zero values keep the engine defaults.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/gestures"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "motion.yaml"

// SchemaVersion is the newest configuration schema this package reads.
// Files declaring another major version are rejected.
const SchemaVersion = "v1.0.0"

// Config represents the optional motion.yaml configuration.
type Config struct {
	Version  string                  `yaml:"version,omitempty"`
	Frame    time.Duration           `yaml:"frame,omitempty"`
	Timing   TimingConfig            `yaml:"timing"`
	Spring   SpringConfig            `yaml:"spring"`
	Decay    DecayConfig             `yaml:"decay"`
	Gestures GesturesConfig          `yaml:"gestures"`
	Springs  map[string]SpringPreset `yaml:"springs,omitempty"`
}

// TimingConfig holds timing defaults.
type TimingConfig struct {
	// Easing is any expression accepted by animation.ParseEasing.
	Easing string `yaml:"easing,omitempty"`
}

// SpringConfig holds spring defaults.
type SpringConfig struct {
	Tension          float64       `yaml:"tension,omitempty"`
	Friction         float64       `yaml:"friction,omitempty"`
	RestDisplacement float64       `yaml:"restDisplacement,omitempty"`
	RestSpeed        float64       `yaml:"restSpeed,omitempty"`
	SettleSteps      int           `yaml:"settleSteps,omitempty"`
	MaxFrameDelta    time.Duration `yaml:"maxFrameDelta,omitempty"`
}

// DecayConfig holds decay defaults.
type DecayConfig struct {
	Deceleration      float64 `yaml:"deceleration,omitempty"`
	VelocityThreshold float64 `yaml:"velocityThreshold,omitempty"`
}

// GesturesConfig holds the responder policy.
type GesturesConfig struct {
	DenyBlocking bool `yaml:"denyBlocking,omitempty"`
}

// SpringPreset is a named spring parameterization. Use one group only:
// tension/friction, speed/bounciness, or stiffness/damping/mass.
type SpringPreset struct {
	Tension           float64 `yaml:"tension,omitempty"`
	Friction          float64 `yaml:"friction,omitempty"`
	Speed             float64 `yaml:"speed,omitempty"`
	Bounciness        float64 `yaml:"bounciness,omitempty"`
	Stiffness         float64 `yaml:"stiffness,omitempty"`
	Damping           float64 `yaml:"damping,omitempty"`
	Mass              float64 `yaml:"mass,omitempty"`
	OvershootClamping bool    `yaml:"overshootClamping,omitempty"`
}

// SpringConfig converts the preset to a driver configuration with no goal.
func (p SpringPreset) SpringConfig() animation.SpringConfig {
	return animation.SpringConfig{
		Tension:           p.Tension,
		Friction:          p.Friction,
		Speed:             p.Speed,
		Bounciness:        p.Bounciness,
		Stiffness:         p.Stiffness,
		Damping:           p.Damping,
		Mass:              p.Mass,
		OvershootClamping: p.OvershootClamping,
	}
}

// Resolved contains validated configuration values ready for the engine.
type Resolved struct {
	// Path is the file the values came from, empty for built-in defaults.
	Path     string
	Version  string
	Frame    time.Duration
	Defaults animation.Defaults
	Policy   gestures.Policy

	springs map[string]animation.SpringConfig
}

// Spring returns the named preset.
func (r *Resolved) Spring(name string) (animation.SpringConfig, bool) {
	cfg, ok := r.springs[name]
	return cfg, ok
}

// SpringNames lists preset names in sorted order.
func (r *Resolved) SpringNames() []string {
	names := make([]string, 0, len(r.springs))
	for name := range r.springs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scheduler creates a scheduler using the resolved defaults.
func (r *Resolved) Scheduler(opts ...animation.Option) *animation.Scheduler {
	return animation.NewScheduler(append([]animation.Option{animation.WithDefaults(r.Defaults)}, opts...)...)
}

// Responder creates a gesture responder using the resolved policy.
func (r *Resolved) Responder() *gestures.Responder {
	return gestures.NewResponder(r.Policy)
}

// LoadOptional reads motion.yaml from dir if present. A missing file yields
// an empty Config.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if stderrors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, err
	}
	return &cfg, nil
}

// Resolve validates cfg and applies it over the engine defaults. A nil cfg
// resolves to the defaults. Invalid values are reported as *errors.ConfigError.
func Resolve(cfg *Config) (*Resolved, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = SchemaVersion
	}
	if !semver.IsValid(version) {
		return nil, errors.Configf("version", "%q is not a semantic version", version)
	}
	if semver.Major(version) != semver.Major(SchemaVersion) {
		return nil, errors.Configf("version", "unsupported schema %s, this build reads %s", version, semver.Major(SchemaVersion))
	}

	frame := cfg.Frame
	if frame == 0 {
		frame = animation.DefaultFrameInterval
	}
	if frame < 0 {
		return nil, errors.Configf("frame", "must be > 0, got %v", frame)
	}

	d := animation.DefaultDefaults()
	if e := strings.TrimSpace(cfg.Timing.Easing); e != "" {
		curve, err := animation.ParseEasing(e)
		if err != nil {
			return nil, err
		}
		d.TimingEasing = curve
	}
	override(&d.Tension, cfg.Spring.Tension)
	override(&d.Friction, cfg.Spring.Friction)
	override(&d.RestDisplacementThreshold, cfg.Spring.RestDisplacement)
	override(&d.RestSpeedThreshold, cfg.Spring.RestSpeed)
	override(&d.SettleSteps, cfg.Spring.SettleSteps)
	override(&d.MaxFrameDelta, cfg.Spring.MaxFrameDelta)
	override(&d.Deceleration, cfg.Decay.Deceleration)
	override(&d.VelocityThreshold, cfg.Decay.VelocityThreshold)
	if err := d.Validate(); err != nil {
		return nil, err
	}

	springs := make(map[string]animation.SpringConfig, len(cfg.Springs))
	for name, preset := range cfg.Springs {
		sc := preset.SpringConfig()
		if err := d.CheckSpring(sc); err != nil {
			return nil, errors.Configf("springs."+name, "%v", err)
		}
		springs[name] = sc
	}

	return &Resolved{
		Version:  version,
		Frame:    frame,
		Defaults: d,
		Policy:   gestures.Policy{DenyBlocking: cfg.Gestures.DenyBlocking},
		springs:  springs,
	}, nil
}

// ResolveDir loads motion.yaml from dir (if present) and resolves it.
func ResolveDir(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	r, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(filepath.Join(dir, FileName)); statErr == nil {
		r.Path = filepath.Join(dir, FileName)
	}
	return r, nil
}

func override[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
