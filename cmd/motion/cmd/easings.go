package cmd

import (
	"fmt"
	"strings"

	"github.com/go-drift/motion/cmd/motion/internal/suggest"
	"github.com/go-drift/motion/pkg/animation"
)

// easingSamples are the progress points printed for an expression.
var easingSamples = []float64{0, 0.25, 0.5, 0.75, 1}

func init() {
	RegisterCommand(&Command{
		Name:  "easings",
		Short: "List or sample easing curves",
		Long: `List the easing names accepted in scenes and motion.yaml, or sample
easing expressions.

Names combine with poly(n), bezier(x1, y1, x2, y2) and the wrappers in(...),
out(...) and inout(...), nested freely.`,
		Usage: "motion easings [expression...]",
		Run:   runEasings,
	})
}

func runEasings(args []string) error {
	if len(args) == 0 {
		for _, name := range animation.EasingNames() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	for _, expr := range args {
		curve, err := animation.ParseEasing(expr)
		if err != nil {
			return fmt.Errorf("%s: %w%s", expr, err, easingHint(expr))
		}
		samples := make([]string, len(easingSamples))
		for i, t := range easingSamples {
			samples[i] = fmt.Sprintf("%.3f", curve(t))
		}
		fmt.Fprintf(stdout, "%-24s %s\n", expr, strings.Join(samples, " "))
	}
	return nil
}

// easingHint suggests a base name for a bare, unknown name.
func easingHint(expr string) string {
	if strings.ContainsAny(expr, "()") {
		return ""
	}
	return suggest.Hint(strings.ReplaceAll(expr, " ", ""), animation.EasingNames())
}
