package animation

import "testing"

func TestAutoOverwriteSplicesSharedProperty(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	interrupted := 0
	first := h.engine.To(obj, Vars{
		Props:       Props{"x": 100},
		Duration:    1,
		OnInterrupt: func(Animation, ...any) { interrupted++ },
	})
	h.step(0.2)
	second := h.engine.To(obj, Vars{Props: Props{"x": 0}, Duration: 1})
	h.step(0.1)

	if first.PropertyCount() != 0 || second.PropertyCount() != 1 {
		t.Errorf("property counts = %d, %d, want 0, 1", first.PropertyCount(), second.PropertyCount())
	}
	if first.Parent() != nil || interrupted != 1 {
		t.Errorf("emptied tween not killed: parent=%v interrupted=%d", first.Parent(), interrupted)
	}
	if n := len(h.engine.GetTweensOf(obj, true)); n != 1 {
		t.Errorf("active tweens = %d, want 1", n)
	}
}

func TestAutoOverwriteKeepsOtherProperties(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	first := h.engine.To(obj, Vars{Props: Props{"x": 100, "y": 100}, Duration: 1})
	h.step(0.2)
	h.engine.To(obj, Vars{Props: Props{"x": 0}, Duration: 1})
	h.step(0.1)

	if first.Animates(obj, "x") || !first.Animates(obj, "y") {
		t.Errorf("first animates x=%v y=%v, want false true", first.Animates(obj, "x"), first.Animates(obj, "y"))
	}
	if first.Parent() == nil {
		t.Errorf("partially overwritten tween was killed")
	}
}

func TestOverwriteAllKillsAtCreation(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	first := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1})
	h.engine.To(obj, Vars{Props: Props{"y": 100}, Duration: 1, Overwrite: OverwriteAll})
	if first.Parent() != nil {
		t.Errorf("OverwriteAll left the earlier tween attached")
	}
}

func TestOverwriteNone(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	first := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1, Overwrite: OverwriteNone})
	h.step(0.2)
	second := h.engine.To(obj, Vars{Props: Props{"x": 0}, Duration: 1, Overwrite: OverwriteNone})
	h.step(0.1)
	if first.PropertyCount() != 1 || second.PropertyCount() != 1 {
		t.Errorf("property counts = %d, %d, want 1, 1", first.PropertyCount(), second.PropertyCount())
	}
}

func TestKillTargetsProperty(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100, "y": 100}, Duration: 1, Ease: "none"})
	tw.SetProgress(0.5, false)
	tw.KillTargets(obj, "x")

	tw.SetProgress(1, false)
	if obj["x"] != 50 || obj["y"] != 100 {
		t.Errorf("after killing x: %v", obj)
	}
}

func TestKillTargetsBeforeInit(t *testing.T) {
	h := newHarness(t)
	a := map[string]float64{"x": 0}
	b := map[string]float64{"x": 0}
	tw := h.engine.To([]any{a, b}, Vars{Props: Props{"x": 10}, Duration: 1})
	tw.KillTargets(a)
	tw.SetProgress(1, false)
	if a["x"] != 0 || b["x"] != 10 {
		t.Errorf("a=%v b=%v, want 0 and 10", a["x"], b["x"])
	}
}

func TestKillTweensOf(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	other := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 1, "y": 1}, Duration: 1})
	keep := h.engine.To(other, Vars{Props: Props{"x": 1}, Duration: 1})
	h.step(0.1)

	h.engine.KillTweensOf(obj, "y")
	if tw.Animates(obj, "y") || !tw.Animates(obj, "x") {
		t.Errorf("KillTweensOf(y) removed the wrong property")
	}
	h.engine.KillTweensOf(obj)
	if tw.Parent() != nil || keep.Parent() == nil {
		t.Errorf("KillTweensOf(obj) touched the wrong tweens")
	}
	// Targets without tweens are a no-op.
	h.engine.KillTweensOf(map[string]float64{})
}

func TestKillStaggeredTarget(t *testing.T) {
	h := newHarness(t)
	targets := []any{map[string]float64{"x": 0}, map[string]float64{"x": 0}, map[string]float64{"x": 0}}
	tw := h.engine.To(targets, Vars{Props: Props{"x": 1}, Duration: 1, Stagger: &Stagger{Each: 0.5}})
	tw.KillTargets(targets[2])
	if n := len(tw.Nested().Children(false, true, false)); n != 2 {
		t.Errorf("children after kill = %d, want 2", n)
	}
	if !approx(tw.Duration(), 1.5) {
		t.Errorf("Duration() = %v, want 1.5", tw.Duration())
	}
}
