package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

func init() {
	RegisterCommand(&Command{
		Name:  "play",
		Short: "Sample a scene frame by frame",
		Long: `Play a scene on a simulated clock and print every target property
as CSV, one row per frame.

The frame rate comes from --fps, then the scene's engine.fps, then
play.fps in choreo.yaml, then 60. Without --duration the whole timeline
is played; an infinitely repeating timeline plays one iteration.

Usage:
  choreo play intro.yaml                  # Full timeline at the default rate
  choreo play intro.yaml --fps 10         # Ten samples per second
  choreo play intro.yaml --duration 0.5   # Only the first half second`,
		Usage: "choreo play <scene.yaml> [--fps N] [--duration S]",
		Run:   runPlay,
	})
}

type playOptions struct {
	path     string
	fps      int
	duration float64
}

func runPlay(args []string) error {
	opts, err := parsePlayArgs(args)
	if err != nil {
		return err
	}
	return play(stdout, opts)
}

func parsePlayArgs(args []string) (playOptions, error) {
	var opts playOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			if opts.path != "" {
				return opts, fmt.Errorf("unexpected argument %q", arg)
			}
			opts.path = arg
			continue
		}
		name, value, err := flagValue(args, &i)
		if err != nil {
			return opts, err
		}
		switch name {
		case "--fps":
			fps, err := strconv.Atoi(value)
			if err != nil || fps <= 0 {
				return opts, fmt.Errorf("--fps must be a positive integer, got %q", value)
			}
			opts.fps = fps
		case "--duration":
			d, err := strconv.ParseFloat(value, 64)
			if err != nil || d <= 0 || math.IsInf(d, 0) {
				return opts, fmt.Errorf("--duration must be a positive number of seconds, got %q", value)
			}
			opts.duration = d
		default:
			return opts, fmt.Errorf("unknown flag %q", name)
		}
	}
	if opts.path == "" {
		return opts, fmt.Errorf("scene file is required\n\nUsage: choreo play <scene.yaml> [--fps N] [--duration S]")
	}
	return opts, nil
}

func play(w io.Writer, opts playOptions) error {
	s, err := openScene(opts.path)
	if err != nil {
		return err
	}
	defer s.close()

	fps := opts.fps
	if fps == 0 {
		fps = s.scene.Engine.FPS
	}
	if fps == 0 {
		fps = s.cfg.FPS
	}
	total := opts.duration
	if total == 0 {
		total = s.cfg.Duration
	}
	if total == 0 {
		total = s.length()
	}

	// The last frame is clamped to total, so the run ends exactly on the
	// timeline's end.
	frames := int(math.Ceil(total*float64(fps) - 1e-9))
	s.tester.Tick()
	rows := []row{s.sample(formatNumber(0))}
	for i := 1; i <= frames; i++ {
		at := min(float64(i)/float64(fps), total)
		s.tester.PumpTo(at)
		rows = append(rows, s.sample(formatNumber(at)))
	}
	return s.writeTable(w, "t", rows)
}
