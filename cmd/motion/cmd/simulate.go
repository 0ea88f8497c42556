package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-drift/motion/cmd/motion/internal/scene"
	"github.com/go-drift/motion/pkg/config"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Run a scene and print a frame table",
		Long: `Run a scripted animation scene on a simulated clock.

The scene is ticked once per frame starting at t=0 and the value of every
column is printed after each tick. Without a length the run ends on the
first frame where nothing is animating.

Engine defaults and spring presets come from motion.yaml next to the scene,
or from the file given with --config.

Flags:
  --config FILE   Read configuration from FILE
  --plain         Print tab-separated rows instead of a table`,
		Usage: "motion simulate <scene.yaml> [--config FILE] [--plain]",
		Run:   runSimulate,
	})
}

type simulateOptions struct {
	config string
	plain  bool
}

func parseSimulateArgs(args []string) ([]string, simulateOptions, error) {
	opts := simulateOptions{}
	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--plain":
			opts.plain = true
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, opts, fmt.Errorf("--config requires a file path")
			}
			opts.config = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			opts.config = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "--"):
			return nil, opts, fmt.Errorf("unknown flag %s", arg)
		default:
			filtered = append(filtered, arg)
		}
	}
	return filtered, opts, nil
}

func runSimulate(args []string) error {
	args, opts, err := parseSimulateArgs(args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: motion simulate <scene.yaml> [--config FILE] [--plain]")
	}
	path := args[0]

	resolved, err := resolveConfig(opts.config, filepath.Dir(path))
	if err != nil {
		return err
	}
	sc, err := scene.Load(path)
	if err != nil {
		return err
	}
	sim, err := scene.Build(sc, resolved)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	rep, err := sim.Run()
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := rep.Render(stdout, opts.plain); err != nil {
		return err
	}
	if rep.Result.Err != nil {
		return rep.Result.Err
	}
	return nil
}

// resolveConfig loads file when set, otherwise the optional motion.yaml in dir.
func resolveConfig(file, dir string) (*config.Resolved, error) {
	if file == "" {
		return config.ResolveDir(dir)
	}
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	r, err := config.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	r.Path = file
	return r, nil
}
