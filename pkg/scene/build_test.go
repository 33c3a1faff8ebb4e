package scene

import (
	"testing"
	"time"

	"github.com/go-drift/choreo/pkg/animation"
	choreotest "github.com/go-drift/choreo/pkg/testing"
)

func buildScene(t *testing.T, src string) (*Built, *choreotest.EngineTester) {
	t.Helper()
	s, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tester := choreotest.NewEngineTesterWithT(t, s.EngineOptions()...)
	b, err := s.Build(tester.Engine())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return b, tester
}

func TestBuildTimeline(t *testing.T) {
	b, _ := buildScene(t, basicScene)
	tl := b.Timeline

	if tl.ID() != "intro" {
		t.Errorf("ID() = %q, want intro", tl.ID())
	}
	if at, ok := tl.LabelTime("fade"); !ok || at != 1 {
		t.Errorf("LabelTime(fade) = %v, %v, want 1", at, ok)
	}
	if d := tl.Duration(); d != 2 {
		t.Errorf("Duration() = %v, want 2", d)
	}

	tl.Pause()
	tl.Seek(animation.At(0.5), false)
	if got := b.Targets["box"]["x"]; got != 50.0 {
		t.Errorf("box.x at 0.5 = %v, want 50", got)
	}
	tl.Seek(animation.At(1.75), false)
	if got := b.Format(Field{"dot", "y"}); got != "5" {
		t.Errorf("dot.y at 1.75 = %s, want 5", got)
	}
}

func TestBuildCalls(t *testing.T) {
	b, tester := buildScene(t, basicScene)
	var seen []string
	b.OnCall = func(name string) { seen = append(seen, name) }

	if err := tester.PumpAndSettle(5 * time.Second); err != nil {
		t.Fatalf("PumpAndSettle() error = %v", err)
	}
	if calls := b.Calls(); len(calls) != 1 || calls[0] != "done" {
		t.Errorf("Calls() = %v, want [done]", calls)
	}
	if len(seen) != 1 {
		t.Errorf("OnCall ran %d times, want 1", len(seen))
	}
	if got := b.Format(Field{"box", "opacity"}); got != "0" {
		t.Errorf("box.opacity at end = %s, want 0", got)
	}
}

func TestBuildFields(t *testing.T) {
	b, _ := buildScene(t, basicScene)
	fields := b.Fields()
	want := []string{"box.opacity", "box.x", "dot.y"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i, f := range fields {
		if f.String() != want[i] {
			t.Errorf("Fields()[%d] = %s, want %s", i, f, want[i])
		}
	}
}

func TestBuildIsRepeatable(t *testing.T) {
	s, err := Parse([]byte(basicScene))
	if err != nil {
		t.Fatal(err)
	}
	tester := choreotest.NewEngineTesterWithT(t)
	first, _ := s.Build(tester.Engine())
	second, _ := s.Build(tester.Engine())

	first.Timeline.SetProgress(1, true)
	if second.Targets["box"]["x"] != 0.0 {
		t.Errorf("builds share target maps")
	}
	if s.Targets["box"]["x"] != 0.0 {
		t.Errorf("build mutated the parsed scene")
	}
}

func TestBuildStaggerAndFromTo(t *testing.T) {
	b, _ := buildScene(t, `
version: "1.1"
targets:
  a: {x: 0}
  b: {x: 0}
  c: {x: 0}
timeline:
  paused: true
  defaults: {ease: none, duration: 1}
  steps:
    - to: [a, b, c]
      props: {x: 1}
      stagger: {each: 0.5}
    - fromTo: a
      start: {x: 10}
      props: {x: 20}
      overwrite: none
    - set: c
      props: {x: -1}
`)
	tl := b.Timeline
	if d := tl.Duration(); d != 3 {
		t.Errorf("Duration() = %v, want 3", d)
	}
	tl.Seek(animation.At(1.5), false)
	if got := b.Format(Field{"b", "x"}); got != "1" {
		t.Errorf("b.x at 1.5 = %s, want 1", got)
	}
	tl.Seek(animation.At(2.5), false)
	if got := b.Format(Field{"a", "x"}); got != "15" {
		t.Errorf("a.x at 2.5 = %s, want 15", got)
	}
	tl.Seek(animation.At(3), false)
	if got := b.Format(Field{"c", "x"}); got != "-1" {
		t.Errorf("c.x at the end = %s, want -1", got)
	}
}

func TestBuildKeyframes(t *testing.T) {
	b, _ := buildScene(t, `
version: "1.0"
targets:
  box: {x: 0}
timeline:
  paused: true
  steps:
    - to: box
      keyframes:
        - {props: {x: 10}, duration: 1, ease: none}
        - {props: {x: 30}, duration: 1, ease: none}
`)
	tl := b.Timeline
	if d := tl.Duration(); d != 2 {
		t.Errorf("Duration() = %v, want 2", d)
	}
	tl.Seek(animation.At(1.5), false)
	if got := b.Format(Field{"box", "x"}); got != "20" {
		t.Errorf("box.x at 1.5 = %s, want 20", got)
	}
}

func TestBuildTargetNames(t *testing.T) {
	b, _ := buildScene(t, basicScene)
	children := b.Timeline.Children(false, true, false)
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3", len(children))
	}
	tw := children[1].(*animation.Tween)
	var names []string
	for _, raw := range tw.Targets() {
		names = append(names, b.TargetName(raw))
	}
	if len(names) != 2 || names[0] != "box" || names[1] != "dot" {
		t.Errorf("target names = %v, want [box dot]", names)
	}
	if kind, _ := tw.Data().(string); kind != "to" {
		t.Errorf("Data() = %v, want to", tw.Data())
	}
	if got := b.TargetName(map[string]any{"x": 0.0}); got != "" {
		t.Errorf("TargetName(foreign map) = %q, want empty", got)
	}
}
