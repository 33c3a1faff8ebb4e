package scene

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/choreo/pkg/errors"
)

const basicScene = `
version: "1.0"
engine:
  fps: 60
  lagThreshold: 250ms
  adjustedLag: 20ms
  defaults:
    ease: none
targets:
  box: {x: 0, opacity: 1}
  dot: {y: 0}
timeline:
  id: intro
  steps:
    - to: box
      props: {x: 100}
      duration: 1
    - label: fade
    - to: [box, dot]
      at: "fade+=0.5"
      props: {opacity: 0, y: 10}
      duration: 0.5
    - call: done
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(basicScene))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Timeline.ID != "intro" || len(s.Timeline.Steps) != 4 {
		t.Errorf("timeline = %+v", s.Timeline)
	}
	if got := s.Timeline.Steps[2].To; len(got) != 2 || got[1] != "dot" {
		t.Errorf("target list = %v, want [box dot]", got)
	}
	if _, ok := s.Targets["box"]["x"].(float64); !ok {
		t.Errorf("integer target value not normalized: %T", s.Targets["box"]["x"])
	}
	names := s.TargetNames()
	if len(names) != 2 || names[0] != "box" {
		t.Errorf("TargetNames() = %v", names)
	}
	if got := len(s.EngineOptions()); got != 3 {
		t.Errorf("EngineOptions() returned %d options, want 3", got)
	}
}

func TestStepKind(t *testing.T) {
	tests := []struct {
		step Step
		want string
	}{
		{Step{To: TargetList{"a"}}, "to"},
		{Step{From: TargetList{"a"}}, "from"},
		{Step{FromTo: TargetList{"a"}}, "fromTo"},
		{Step{Set: TargetList{"a"}}, "set"},
		{Step{Label: "l"}, "label"},
		{Step{Call: "c"}, "call"},
		{Step{}, ""},
		{Step{To: TargetList{"a"}, Label: "l"}, ""},
	}
	for _, tt := range tests {
		if got := tt.step.Kind(); got != tt.want {
			t.Errorf("Kind() of %+v = %q, want %q", tt.step, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing version", "targets: {}\ntimeline: {steps: []}", "version is required"},
		{"newer minor", "version: 1.2.0\ntimeline: {steps: []}", "not supported"},
		{"other major", "version: 2.0.0\ntimeline: {steps: []}", "not supported"},
		{"bad version", "version: one\ntimeline: {steps: []}", "invalid version"},
		{"unknown key", "version: 1.0\ntimelime: {}", "failed to parse"},
		{"no kind", "version: 1.0\ntimeline: {steps: [{props: {x: 1}}]}", "exactly one of"},
		{"two kinds", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, call: c, props: {x: 1}}]}", "exactly one of"},
		{"unknown target", "version: 1.0\ntimeline: {steps: [{to: ghost, props: {x: 1}}]}", `unknown target "ghost"`},
		{"no props", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a}]}", "needs props"},
		{"bad position", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, at: \"=1\", props: {x: 1}}]}", "steps[0]"},
		{"bad ease", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, ease: wobble, props: {x: 1}}]}", "steps[0]"},
		{"bad overwrite", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, overwrite: some, props: {x: 1}}]}", "overwrite"},
		{"bad stagger", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, stagger: {from: middle}, props: {x: 1}}]}", "stagger origin"},
		{"bad grid", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, stagger: {grid: [1]}, props: {x: 1}}]}", "grid"},
		{"bad keyframe", "version: 1.0\ntargets: {a: {x: 0}}\ntimeline: {steps: [{to: a, keyframes: [{label: k}]}]}", "keyframes take props"},
		{"bad lag", "version: 1.0\nengine: {lagThreshold: soon}\ntimeline: {steps: []}", "engine.lagThreshold"},
		{"bad targets", "version: 1.0\ntimeline: {steps: [{to: {a: 1}, props: {x: 1}}]}", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse() error = nil, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want it to mention %q", err, tt.want)
			}
			var w *errors.Warning
			if !stderrors.As(err, &w) || w.Kind != errors.KindConfig {
				t.Errorf("Parse() error kind = %v, want config warning", err)
			}
		})
	}
}

func TestVersionPrefix(t *testing.T) {
	for _, v := range []string{"1.0", "v1.0.0", "1.1.0", "v1"} {
		if err := checkVersion(v); err != nil {
			t.Errorf("checkVersion(%q) = %v", v, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intro.yaml")
	if err := os.WriteFile(path, []byte(basicScene), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Timeline.ID != "intro" {
		t.Errorf("Load() timeline id = %q", s.Timeline.ID)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
