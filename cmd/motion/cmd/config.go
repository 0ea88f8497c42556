package cmd

import (
	"fmt"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show the resolved configuration",
		Long: `Show the engine defaults, gesture policy and spring presets resolved
from motion.yaml in the given directory (default: current directory).

Invalid files are reported with the offending field.`,
		Usage: "motion config [dir]",
		Run:   runConfig,
	})
}

func runConfig(args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	r, err := config.ResolveDir(dir)
	if err != nil {
		return err
	}

	source := r.Path
	if source == "" {
		source = "(built-in defaults)"
	}
	d := r.Defaults
	fmt.Fprintf(stdout, "Source:   %s\n", source)
	fmt.Fprintf(stdout, "Version:  %s\n", r.Version)
	fmt.Fprintf(stdout, "Frame:    %v\n", r.Frame)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Spring:")
	fmt.Fprintf(stdout, "  tension %g, friction %g\n", d.Tension, d.Friction)
	fmt.Fprintf(stdout, "  rest displacement %g, rest speed %g\n", d.RestDisplacementThreshold, d.RestSpeedThreshold)
	fmt.Fprintf(stdout, "  settle steps %d, max frame delta %v\n", d.SettleSteps, d.MaxFrameDelta)
	fmt.Fprintln(stdout, "Decay:")
	fmt.Fprintf(stdout, "  deceleration %g, velocity threshold %g\n", d.Deceleration, d.VelocityThreshold)
	fmt.Fprintln(stdout, "Gestures:")
	fmt.Fprintf(stdout, "  deny blocking %v\n", r.Policy.DenyBlocking)

	names := r.SpringNames()
	if len(names) == 0 {
		return nil
	}
	fmt.Fprintln(stdout, "Presets:")
	for _, name := range names {
		sc, _ := r.Spring(name)
		fmt.Fprintf(stdout, "  %-12s %s\n", name, describeSpring(sc))
	}
	return nil
}

func describeSpring(sc animation.SpringConfig) string {
	var s string
	switch {
	case sc.Speed != 0 || sc.Bounciness != 0:
		s = fmt.Sprintf("speed %g, bounciness %g", sc.Speed, sc.Bounciness)
	case sc.Stiffness != 0 || sc.Damping != 0 || sc.Mass != 0:
		s = fmt.Sprintf("stiffness %g, damping %g, mass %g", sc.Stiffness, sc.Damping, sc.Mass)
	default:
		s = fmt.Sprintf("tension %g, friction %g", sc.Tension, sc.Friction)
	}
	if sc.OvershootClamping {
		s += ", clamped"
	}
	return s
}
