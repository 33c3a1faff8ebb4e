package animation

import (
	"math"
	"testing"

	"github.com/go-drift/choreo/pkg/errors"
)

func TestTweenLinearMidpoint(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1, Ease: "none"})

	h.step(0.5)
	if obj["x"] != 50 {
		t.Errorf("x = %v, want 50", obj["x"])
	}
	h.step(0.6)
	if obj["x"] != 100 {
		t.Errorf("x after end = %v, want 100", obj["x"])
	}
}

func TestTweenDefaults(t *testing.T) {
	h := newHarness(t)
	tw := h.engine.To(map[string]float64{}, Vars{Props: Props{"x": 1}})
	if tw.Duration() != DefaultDuration {
		t.Errorf("Duration() = %v, want %v", tw.Duration(), DefaultDuration)
	}
	tw.SetProgress(0.5, true)
	want := DefaultEase(0.5)
	if !approx(tw.Ratio(), want) {
		t.Errorf("Ratio() = %v, want %v", tw.Ratio(), want)
	}
}

func TestTotalDurationFormula(t *testing.T) {
	tests := []struct {
		dur, delay float64
		repeat     int
		want       float64
	}{
		{1, 0, 0, 1},
		{1, 0, 2, 3},
		{1, 0.5, 2, 4},
		{0.25, 0.1, 3, 1.3},
	}
	h := newHarness(t)
	for _, tt := range tests {
		tw := h.engine.To(map[string]float64{}, Vars{
			Props:       Props{"x": 1},
			Duration:    tt.dur,
			Repeat:      tt.repeat,
			RepeatDelay: tt.delay,
		})
		if got := tw.TotalDuration(); !approx(got, tt.want) {
			t.Errorf("TotalDuration(d=%v r=%d rd=%v) = %v, want %v", tt.dur, tt.repeat, tt.delay, got, tt.want)
		}
	}
}

func TestInfiniteRepeat(t *testing.T) {
	h := newHarness(t)
	tw := h.engine.To(map[string]float64{}, Vars{Props: Props{"x": 1}, Duration: 1, Repeat: -1})
	if tw.TotalDuration() != InfiniteDuration {
		t.Errorf("TotalDuration() = %v, want %v", tw.TotalDuration(), InfiniteDuration)
	}
}

func TestRepeatIteration(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1, Repeat: 2, Ease: "none"})

	tw.SetTotalTime(2.5, false)
	if !approx(tw.Time(), 0.5) {
		t.Errorf("Time() = %v, want 0.5", tw.Time())
	}
	if tw.Iteration() != 2 {
		t.Errorf("Iteration() = %d, want 2", tw.Iteration())
	}
	if obj["x"] != 50 {
		t.Errorf("x = %v, want 50", obj["x"])
	}
}

func TestSetProgressIsIdempotent(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 2, Ease: "power2.inOut"})

	for _, p := range []float64{0.3, 0.7, 0.1, 1, 0} {
		tw.SetProgress(p, false)
		first := obj["x"]
		tw.SetProgress(p, false)
		if obj["x"] != first {
			t.Errorf("SetProgress(%v) twice: %v then %v", p, first, obj["x"])
		}
	}
}

func TestSeekThenTime(t *testing.T) {
	h := newHarness(t)
	tw := h.engine.To(map[string]float64{"x": 0}, Vars{Props: Props{"x": 1}, Duration: 1})
	for _, at := range []float64{0, 0.25, 0.5, 0.999, 1} {
		tw.Seek(At(at), false)
		if !approx(tw.Time(), at) {
			t.Errorf("Seek(%v): Time() = %v", at, tw.Time())
		}
	}
}

func TestTimeScaleKeepsValue(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1, Ease: "none"})

	h.step(0.5)
	before := obj["x"]
	tw.SetTimeScale(2)
	if obj["x"] != before {
		t.Errorf("x changed on SetTimeScale: %v -> %v", before, obj["x"])
	}
	h.step(0.1)
	if !approx(obj["x"], 70) {
		t.Errorf("x after doubled step = %v, want 70", obj["x"])
	}
}

func TestYoyoSymmetry(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1, Repeat: 1, Yoyo: true, Ease: "power2.in"})

	for _, at := range []float64{0.1, 0.3, 0.5, 0.8} {
		tw.SetTotalTime(at, true)
		forward := obj["x"]
		tw.SetTotalTime(2-at, true)
		back := obj["x"]
		if !approx(forward, back) {
			t.Errorf("t=%v: forward %v, backward %v", at, forward, back)
		}
	}
}

func TestFromRendersImmediately(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	h.engine.From(obj, Vars{Props: Props{"x": 100}, Duration: 1, Ease: "none"})
	if obj["x"] != 100 {
		t.Errorf("x after From = %v, want 100", obj["x"])
	}
	h.step(0.25)
	if obj["x"] != 75 {
		t.Errorf("x at 0.25 = %v, want 75", obj["x"])
	}
}

func TestFromTo(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 500}
	tw := h.engine.FromTo(obj, Props{"x": 10}, Vars{Props: Props{"x": 20}, Duration: 1, Ease: "none"})
	if obj["x"] != 10 {
		t.Errorf("x after FromTo = %v, want 10", obj["x"])
	}
	tw.SetProgress(0.5, false)
	if obj["x"] != 15 {
		t.Errorf("x at 0.5 = %v, want 15", obj["x"])
	}
}

func TestSetAppliesImmediately(t *testing.T) {
	h := newHarness(t)
	obj := map[string]any{"label": "a", "n": 1}
	h.engine.Set(obj, Vars{Props: Props{"label": "b", "n": 7}})
	if obj["label"] != "b" || obj["n"] != 7 {
		t.Errorf("after Set: %v", obj)
	}
}

func TestRelativeValues(t *testing.T) {
	tests := []struct {
		start float64
		end   string
		want  float64
	}{
		{10, "+=5", 15},
		{10, "-=5", 5},
		{10, "*=3", 30},
		{10, "/=4", 2.5},
	}
	h := newHarness(t)
	for _, tt := range tests {
		obj := map[string]float64{"x": tt.start}
		tw := h.engine.To(obj, Vars{Props: Props{"x": tt.end}, Duration: 1})
		tw.SetProgress(1, false)
		if obj["x"] != tt.want {
			t.Errorf("%v %s = %v, want %v", tt.start, tt.end, obj["x"], tt.want)
		}
	}
}

func TestUnitAndCompoundValues(t *testing.T) {
	tests := []struct {
		name       string
		start, end any
		want       string
	}{
		{"px rounds", "10px", "21px", "16px"},
		{"deg", "0deg", "45deg", "22.5deg"},
		{"unit from number", 0.0, "50%", "25%"},
		{"compound", "translate(0px, 10px)", "translate(10px, 20px)", "translate(5px, 15px)"},
		{"hex color", "#000", "#ffffff", "rgba(128,128,128,1)"},
		{"named color", "black", "white", "rgba(128,128,128,1)"},
		{"alpha", "rgba(0,0,0,0)", "rgba(0,0,0,1)", "rgba(0,0,0,0.5)"},
	}
	h := newHarness(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := map[string]any{"v": tt.start}
			tw := h.engine.To(obj, Vars{Props: Props{"v": tt.end}, Duration: 1, Ease: "none"})
			tw.SetProgress(0.5, false)
			if obj["v"] != tt.want {
				t.Errorf("v = %v, want %v", obj["v"], tt.want)
			}
		})
	}
}

func TestMismatchedStringsSwitchAtEnd(t *testing.T) {
	h := newHarness(t)
	obj := map[string]any{"mode": "idle"}
	tw := h.engine.To(obj, Vars{Props: Props{"mode": "run"}, Duration: 1})
	tw.SetProgress(0.99, false)
	if obj["mode"] != "idle" {
		t.Errorf("mode at 0.99 = %v, want idle", obj["mode"])
	}
	tw.SetProgress(1, false)
	if obj["mode"] != "run" {
		t.Errorf("mode at 1 = %v, want run", obj["mode"])
	}
}

func TestSnapAndModifiers(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	tw := h.engine.To(obj, Vars{
		Props:    Props{"x": 100, "y": 100},
		Duration: 1,
		Ease:     "none",
		Snap:     map[string]float64{"x": 20},
		Modifiers: map[string]Modifier{
			"y": func(v Value, _ any) Value { return NumberValue(v.Number() * 2) },
		},
	})
	tw.SetProgress(0.45, false)
	if obj["x"] != 40 {
		t.Errorf("snapped x = %v, want 40", obj["x"])
	}
	if obj["y"] != 90 {
		t.Errorf("modified y = %v, want 90", obj["y"])
	}
}

func TestFunctionValues(t *testing.T) {
	h := newHarness(t)
	a := map[string]float64{"x": 0}
	b := map[string]float64{"x": 0}
	tw := h.engine.To([]any{a, b}, Vars{
		Props: Props{"x": FuncValue(func(i int, _ any, targets []any) any {
			return float64((i + 1) * 10 * len(targets))
		})},
		Duration: 1,
	})
	tw.SetProgress(1, false)
	if a["x"] != 20 || b["x"] != 40 {
		t.Errorf("x = %v, %v, want 20, 40", a["x"], b["x"])
	}
}

func TestStructTargets(t *testing.T) {
	type rotation struct{ Y float64 }
	type sprite struct {
		X        float64
		Alpha    float64 `anim:"opacity"`
		Frame    int
		Rotation rotation
	}
	h := newHarness(t)
	s := &sprite{Alpha: 1}
	tw := h.engine.To(s, Vars{
		Props:    Props{"x": 10, "opacity": 0, "frame": 9, "Rotation.Y": 90},
		Duration: 1,
		Ease:     "none",
	})
	tw.SetProgress(0.5, false)
	if s.X != 5 || s.Alpha != 0.5 || s.Frame != 5 || s.Rotation.Y != 45 {
		t.Errorf("sprite = %+v", *s)
	}
}

func TestCallbacks(t *testing.T) {
	h := newHarness(t)
	var starts, updates, completes int
	var got []any
	h.engine.To(map[string]float64{"x": 0}, Vars{
		Props:            Props{"x": 1},
		Duration:         1,
		OnStart:          func(Animation, ...any) { starts++ },
		OnUpdate:         func(Animation, ...any) { updates++ },
		OnComplete:       func(_ Animation, params ...any) { completes++; got = params },
		OnCompleteParams: []any{"done", 3},
	})
	h.step(0.5)
	h.step(0.6)
	h.step(0.5)
	if starts != 1 || completes != 1 || updates != 2 {
		t.Errorf("starts=%d updates=%d completes=%d, want 1 2 1", starts, updates, completes)
	}
	if len(got) != 2 || got[0] != "done" || got[1] != 3 {
		t.Errorf("complete params = %v", got)
	}
}

func TestPanickingCallbackIsReported(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	h.engine.To(obj, Vars{
		Props:    Props{"x": 100},
		Duration: 1,
		Ease:     "none",
		OnStart:  func(Animation, ...any) { panic("boom") },
	})
	h.step(0.5)
	if len(h.warnings.Panics()) != 1 {
		t.Fatalf("panics = %d, want 1", len(h.warnings.Panics()))
	}
	if obj["x"] != 50 {
		t.Errorf("x = %v, want 50 after recovered panic", obj["x"])
	}
}

func TestDelayedCall(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.engine.DelayedCall(0.5, func(_ Animation, params ...any) { calls += params[0].(int) }, 2)
	h.step(0.3)
	if calls != 0 {
		t.Fatalf("called early")
	}
	h.step(0.3)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPauseAndResume(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1, Ease: "none"})
	h.step(0.2)
	tw.Pause()
	h.step(0.5)
	if obj["x"] != 20 {
		t.Errorf("x while paused = %v, want 20", obj["x"])
	}
	if tw.State() != StatePaused {
		t.Errorf("State() = %v, want paused", tw.State())
	}
	tw.Resume()
	h.step(0.3)
	if !approx(obj["x"], 50) {
		t.Errorf("x after resume = %v, want 50", obj["x"])
	}
}

func TestReverse(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	reversed := 0
	tw := h.engine.To(obj, Vars{
		Props:             Props{"x": 100},
		Duration:          1,
		Ease:              "none",
		OnReverseComplete: func(Animation, ...any) { reversed++ },
	})
	h.step(0.5)
	tw.Reverse()
	h.step(0.25)
	if !approx(obj["x"], 25) {
		t.Errorf("x = %v, want 25", obj["x"])
	}
	h.step(0.5)
	if obj["x"] != 0 || reversed != 1 {
		t.Errorf("x = %v reversed = %d, want 0 and 1", obj["x"], reversed)
	}
	if tw.State() != StateReverseComplete {
		t.Errorf("State() = %v, want reverse-complete", tw.State())
	}
}

func TestRevertRestoresOriginals(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 3}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 100}, Duration: 1})
	tw.SetProgress(0.7, false)
	tw.Revert()
	if obj["x"] != 3 {
		t.Errorf("x after Revert = %v, want 3", obj["x"])
	}
	if tw.Parent() != nil {
		t.Errorf("reverted tween still attached")
	}
}

func TestInvalidateResamples(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": "+=10"}, Duration: 1, Ease: "none"})
	tw.SetProgress(1, false)
	tw.Invalidate()
	tw.Restart(false, false)
	tw.SetProgress(1, false)
	if obj["x"] != 20 {
		t.Errorf("x after invalidate = %v, want 20", obj["x"])
	}
}

func TestKeyframes(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": 0, "y": 0}
	tw := h.engine.To(obj, Vars{Keyframes: []Vars{
		{Props: Props{"x": 100}, Duration: 1},
		{Props: Props{"y": 50}, Duration: 0.5},
	}})
	if !approx(tw.Duration(), 1.5) {
		t.Fatalf("Duration() = %v, want 1.5", tw.Duration())
	}
	tw.SetTotalTime(0.5, false)
	if obj["x"] != 50 || obj["y"] != 0 {
		t.Errorf("at 0.5: %v", obj)
	}
	tw.SetTotalTime(1.25, false)
	if obj["x"] != 100 || obj["y"] != 25 {
		t.Errorf("at 1.25: %v", obj)
	}
}

func TestMissingTargetWarns(t *testing.T) {
	h := newHarness(t)
	h.engine.To(nil, Vars{Props: Props{"x": 1}})
	if h.warnings.Count(errors.KindMissingTarget) == 0 {
		t.Errorf("no missing-target warning")
	}

	quiet := newHarness(t, WithNullTargetWarn(false))
	quiet.engine.To(nil, Vars{Props: Props{"x": 1}})
	if quiet.warnings.Count(errors.KindMissingTarget) != 0 {
		t.Errorf("warned with WithNullTargetWarn(false)")
	}
}

func TestUnknownEaseFallsBack(t *testing.T) {
	h := newHarness(t)
	tw := h.engine.To(map[string]float64{"x": 0}, Vars{Props: Props{"x": 1}, Duration: 1, Ease: "wobble"})
	tw.SetProgress(0.5, false)
	if h.warnings.Count(errors.KindUnknownEase) != 1 {
		t.Errorf("unknown ease warnings = %d, want 1", h.warnings.Count(errors.KindUnknownEase))
	}
	if !approx(tw.Ratio(), DefaultEase(0.5)) {
		t.Errorf("Ratio() = %v, want default ease", tw.Ratio())
	}
}

func TestNaNStartIsReported(t *testing.T) {
	h := newHarness(t)
	obj := map[string]float64{"x": math.NaN()}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 10}, Duration: 1, Ease: "none"})
	tw.SetProgress(0.5, false)
	if obj["x"] != 5 {
		t.Errorf("x = %v, want 5 from a zero start", obj["x"])
	}
	if n := h.warnings.Count(errors.KindInterpolation); n != 1 {
		t.Errorf("interpolation warnings = %d, want 1", n)
	}
}
