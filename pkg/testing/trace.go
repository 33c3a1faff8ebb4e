package testing

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/choreo/pkg/animation"
)

// UpdateTracesEnv names the environment variable that makes MatchesFile
// rewrite golden files instead of comparing against them.
const UpdateTracesEnv = "CHOREO_UPDATE_TRACES"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Trace is a sequence of property samples over an animation's lifetime.
type Trace struct {
	Samples []Sample `yaml:"samples"`
}

// Sample holds the probed values at one total time.
type Sample struct {
	Time   float64           `yaml:"t"`
	Values map[string]string `yaml:"values"`
}

// Probe reads the values to record for one sample.
type Probe func() map[string]string

// ProbeRecorders probes every property of each recorder, keyed "name.prop".
func ProbeRecorders(targets map[string]*Recorder) Probe {
	return func() map[string]string {
		out := make(map[string]string)
		for name, r := range targets {
			for _, prop := range r.Props() {
				out[name+"."+prop] = formatSample(r.Value(prop))
			}
		}
		return out
	}
}

// formatSample prints numbers with at most four decimals so traces stay
// stable across platforms.
func formatSample(v animation.Value) string {
	if v.IsString() {
		return v.Text()
	}
	return strconv.FormatFloat(math.Round(v.Number()*1e4)/1e4+0, 'f', -1, 64)
}

// CaptureTrace scrubs a from 0 to its total duration in steps of step
// seconds, calling probe after each render. The last sample always lands on
// the end. Callbacks are suppressed while scrubbing. An infinitely repeating
// animation is traced over its first cycle.
func CaptureTrace(a animation.Animation, step float64, probe Probe) *Trace {
	total := a.TotalDuration()
	if a.Repeat() < 0 {
		total = a.Duration()
	}
	tr := &Trace{}
	if step <= 0 {
		step = total
	}
	for i := 0; ; i++ {
		at := float64(i) * step
		if at > total || step == 0 {
			at = total
		}
		a.SetTotalTime(at, true)
		tr.Add(at, probe())
		if at >= total {
			return tr
		}
	}
}

// Add appends a sample, rounding t to a microsecond.
func (t *Trace) Add(at float64, values map[string]string) {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(at, 'f', 6, 64), 64)
	t.Samples = append(t.Samples, Sample{Time: rounded, Values: values})
}

// Keys returns every probed key across all samples, sorted.
func (t *Trace) Keys() []string {
	seen := make(map[string]bool)
	for _, s := range t.Samples {
		for k := range s.Values {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MatchesFile compares this trace against a golden file. On mismatch it
// reports a diff and instructions for updating. When CHOREO_UPDATE_TRACES=1
// is set, the file is silently updated instead.
func (t *Trace) MatchesFile(tb TestingT, path string) {
	tb.Helper()

	if os.Getenv(UpdateTracesEnv) == "1" {
		if err := t.UpdateFile(path); err != nil {
			tb.Fatalf("failed to update trace: %v", err)
		}
		return
	}

	expected, err := loadTrace(path)
	if err != nil {
		if os.IsNotExist(err) {
			tb.Fatalf("trace file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateTracesEnv, tb.Name())
			return
		}
		tb.Fatalf("failed to load trace: %v", err)
		return
	}

	if diff := t.Diff(expected); diff != "" {
		tb.Errorf("trace mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateTracesEnv, tb.Name())
	}
}

// UpdateFile writes this trace to the given path, creating directories
// as needed.
func (t *Trace) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalTrace(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this trace and other. Returns
// empty string if equal.
func (t *Trace) Diff(other *Trace) string {
	a, _ := marshalTrace(t)
	b, _ := marshalTrace(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(b), string(a))
}

func loadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tr Trace
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("invalid trace YAML: %w", err)
	}
	return &tr, nil
}

func marshalTrace(t *Trace) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lineDiff produces a simple line-oriented diff.
func lineDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")

	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e != a {
			if i < len(expectedLines) {
				fmt.Fprintf(&buf, "-%s\n", e)
			}
			if i < len(actualLines) {
				fmt.Fprintf(&buf, "+%s\n", a)
			}
		}
	}

	return buf.String()
}
