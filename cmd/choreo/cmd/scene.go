package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-drift/choreo/cmd/choreo/internal/config"
	choreoerrors "github.com/go-drift/choreo/pkg/errors"
	"github.com/go-drift/choreo/pkg/scene"
	choreotest "github.com/go-drift/choreo/pkg/testing"
)

// session is one scene built on a simulated clock.
type session struct {
	cfg    *config.Resolved
	scene  *scene.Scene
	tester *choreotest.EngineTester
	built  *scene.Built
}

// openScene loads path, resolves the project settings around it and builds
// the scene timeline. Call close when done.
func openScene(path string) (*session, error) {
	root, err := config.FindProjectRoot(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}

	tester := choreotest.NewEngineTester(s.EngineOptions()...)
	built, err := s.Build(tester.Engine())
	if err != nil {
		tester.Cleanup()
		return nil, err
	}
	return &session{cfg: cfg, scene: s, tester: tester, built: built}, nil
}

// close forwards the warnings collected during the run to the global handler
// and releases the engine.
func (s *session) close() {
	for _, w := range s.tester.Warnings().Warnings() {
		choreoerrors.Report(w)
	}
	s.tester.Cleanup()
}

// length is the playable length of the scene timeline. An infinitely
// repeating timeline plays one iteration.
func (s *session) length() float64 {
	tl := s.built.Timeline
	if tl.Repeat() < 0 {
		return tl.Duration()
	}
	return tl.TotalDuration()
}

// row is one sample of every field, labelled by its first column.
type row struct {
	label  string
	values map[string]string
}

func (s *session) sample(label string) row {
	r := row{label: label, values: make(map[string]string)}
	for _, f := range s.built.Fields() {
		r.values[f.String()] = s.built.Format(f)
	}
	return r
}

// writeTable prints rows as CSV. The field set is taken at the end so that
// properties created by tweens mid-run get a column.
func (s *session) writeTable(w io.Writer, first string, rows []row) error {
	fields := s.built.Fields()
	cw := csv.NewWriter(w)
	header := []string{first}
	for _, f := range fields {
		header = append(header, f.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.label}
		for _, f := range fields {
			record = append(record, r.values[f.String()])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatNumber rounds to four decimals.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4+0, 'f', -1, 64)
}

// flagValue reads the value of a "--name value" or "--name=value" flag at
// args[*i], advancing *i past a separate value.
func flagValue(args []string, i *int) (name, value string, err error) {
	name, value, ok := strings.Cut(args[*i], "=")
	if ok {
		return name, value, nil
	}
	if *i+1 >= len(args) {
		return name, "", fmt.Errorf("%s requires a value", name)
	}
	*i++
	return name, args[*i], nil
}
