package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

func init() {
	RegisterCommand(&Command{
		Name:  "scrub",
		Short: "Print values at given timeline progress",
		Long: `Set the scene timeline to each progress value in turn, as a scroll
position would, and print the resulting property values as CSV.

Progress runs from 0 (start) to 1 (end, including repeats). An
infinitely repeating timeline is scrubbed within its first iteration.
Call steps fire when a scrub crosses them, so scrubbing backwards and
forwards behaves like dragging a playhead.

Usage:
  choreo scrub intro.yaml 0 0.25 0.5 0.75 1`,
		Usage: "choreo scrub <scene.yaml> <progress>...",
		Run:   runScrub,
	})
}

func runScrub(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("scene file and at least one progress value are required\n\nUsage: choreo scrub <scene.yaml> <progress>...")
	}
	progress := make([]float64, 0, len(args)-1)
	for _, arg := range args[1:] {
		p, err := strconv.ParseFloat(arg, 64)
		if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("progress must be a number between 0 and 1, got %q", arg)
		}
		progress = append(progress, p)
	}
	return scrub(stdout, args[0], progress)
}

func scrub(w io.Writer, path string, progress []float64) error {
	s, err := openScene(path)
	if err != nil {
		return err
	}
	defer s.close()

	tl := s.built.Timeline
	tl.Pause()
	rows := make([]row, 0, len(progress))
	for _, p := range progress {
		if tl.Repeat() < 0 {
			tl.SetProgress(p, false)
		} else {
			tl.SetTotalProgress(p, false)
		}
		rows = append(rows, s.sample(formatNumber(p)))
	}
	return s.writeTable(w, "progress", rows)
}
