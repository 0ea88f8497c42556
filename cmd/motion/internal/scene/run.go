package scene

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/go-drift/motion/pkg/animation"
)

// epoch anchors simulated frame times. Drivers only see differences.
var epoch = time.Unix(0, 0)

// Report is the outcome of a simulation.
type Report struct {
	Header []string
	Rows   [][]string
	// Result is what the root's completion callback received. A root still
	// running when the simulation ends is stopped and reports Finished false.
	Result animation.Result
	// Truncated is set when a scene without a length hit MaxLength.
	Truncated bool
}

// Run ticks the scene on a fresh scheduler one frame at a time, starting at
// zero, and records every column after each tick. Without a length it stops
// on the first frame where nothing is scheduled.
func (s *Simulation) Run() (*Report, error) {
	sched := s.resolved.Scheduler()

	var result *animation.Result
	if _, err := sched.Start(s.Root, func(r animation.Result) { result = &r }); err != nil {
		return nil, err
	}

	rep := &Report{Header: append([]string{"t(ms)"}, s.Columns()...)}
	limit := s.Length
	if limit == 0 {
		limit = MaxLength
	}
	for elapsed := time.Duration(0); elapsed <= limit; elapsed += s.Frame {
		if err := sched.Tick(epoch.Add(elapsed)); err != nil {
			return nil, err
		}
		rep.Rows = append(rep.Rows, s.row(elapsed))
		if s.Length == 0 && sched.Idle() {
			break
		}
	}

	if !sched.Idle() {
		rep.Truncated = s.Length == 0
		sched.Stop(s.Root)
	}
	if result != nil {
		rep.Result = *result
	}
	return rep, nil
}

func (s *Simulation) row(elapsed time.Duration) []string {
	row := make([]string, 0, len(s.columns)+1)
	row = append(row, strconv.FormatInt(elapsed.Milliseconds(), 10))
	for _, c := range s.columns {
		row = append(row, c.value())
	}
	return row
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// Render writes the frame table. plain writes tab-separated lines instead of
// a bordered table.
func (r *Report) Render(w io.Writer, plain bool) error {
	if plain {
		lines := make([]string, 0, len(r.Rows)+1)
		lines = append(lines, strings.Join(r.Header, "\t"))
		for _, row := range r.Rows {
			lines = append(lines, strings.Join(row, "\t"))
		}
		if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
			return err
		}
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers(r.Header...).
			Rows(r.Rows...)
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}

// Summary describes how the run ended.
func (r *Report) Summary() string {
	frames := fmt.Sprintf("%d frames", len(r.Rows))
	switch {
	case r.Result.Err != nil:
		return fmt.Sprintf("%s, failed: %v", frames, r.Result.Err)
	case r.Truncated:
		return fmt.Sprintf("%s, stopped after %v", frames, MaxLength)
	case r.Result.Finished:
		return frames + ", finished"
	default:
		return frames + ", cancelled"
	}
}
