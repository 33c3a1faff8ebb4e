package animation

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/choreo/pkg/errors"
)

func TestParseEase(t *testing.T) {
	tests := []struct {
		name string
		at   float64
		want float64
	}{
		{"none", 0.3, 0.3},
		{"linear", 0.3, 0.3},
		{"power0.in", 0.3, 0.3},
		{"power1.in", 0.5, 0.25},
		{"power1", 0.5, 0.75},
		{"quad.out", 0.5, 0.75},
		{"power2.in", 0.5, 0.125},
		{"cubic.in", 0.5, 0.125},
		{"power2.inOut", 0.5, 0.5},
		{"power3.in", 0.5, 0.0625},
		{"Power4.In", 0.5, 0.03125},
		{"sine.inOut", 0.5, 0.5},
		{"steps(4)", 0.3, 0.25},
		{"steps(4)", 1, 1},
		{"cubic-bezier(0, 0, 1, 1)", 0.4, 0.4},
		{"back.out(1.7)", 1, 1},
		{"elastic.out(1, 0.3)", 1, 1},
		{"bounce.out", 1, 1},
		{"circ.in", 1, 1},
		{"ease-in-out", 0.5, 0.5},
		{"spring(6, 0.5)", 0, 0},
		{"spring", 1, 1},
		{"", 0.5, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ParseEase(tt.name)
			if err != nil {
				t.Fatalf("ParseEase(%q) error = %v", tt.name, err)
			}
			if got := fn(tt.at); !approx(got, tt.want) {
				t.Errorf("ParseEase(%q)(%v) = %v, want %v", tt.name, tt.at, got, tt.want)
			}
		})
	}
}

func TestParseEaseUnknown(t *testing.T) {
	for _, name := range []string{"wobble", "power1.sideways", "steps(1, 2)", "cubic-bezier(1)", "back.out(x)"} {
		t.Run(name, func(t *testing.T) {
			fn, err := ParseEase(name)
			var w *errors.Warning
			if !stderrors.As(err, &w) || w.Kind != errors.KindUnknownEase {
				t.Fatalf("ParseEase(%q) error = %v, want an unknown-ease warning", name, err)
			}
			if fn(0.5) != DefaultEase(0.5) {
				t.Errorf("ParseEase(%q) did not fall back to the default ease", name)
			}
		})
	}
}

func TestEaseRegistryCustom(t *testing.T) {
	var r EaseRegistry
	half := func(float64) float64 { return 0.5 }
	r.Register("Half", half)
	fn, err := r.Parse("half")
	if err != nil || fn(0.1) != 0.5 {
		t.Errorf("custom ease not resolved: err=%v", err)
	}
	r.Register("power1.out", half)
	if fn, _ := r.Parse("power1.out"); fn(0.1) != 0.5 {
		t.Errorf("custom ease did not take precedence over a built-in name")
	}
}

func TestEngineRegisterEase(t *testing.T) {
	h := newHarness(t)
	h.engine.RegisterEase("jump", Steps(1))
	obj := map[string]float64{"x": 0}
	tw := h.engine.To(obj, Vars{Props: Props{"x": 10}, Duration: 1, Ease: "jump"})
	tw.SetProgress(0.9, false)
	if obj["x"] != 0 {
		t.Errorf("x = %v, want 0 before the step", obj["x"])
	}
	if h.warnings.Count(errors.KindUnknownEase) != 0 {
		t.Errorf("registered ease reported as unknown")
	}
}

func TestEaseEndpoints(t *testing.T) {
	names := []string{"power1.inOut", "back.inOut", "bounce.inOut", "circ.out", "elastic.out(1.2, 0.4)", "spring(10, 1)"}
	for _, name := range names {
		fn, err := ParseEase(name)
		if err != nil {
			t.Fatalf("ParseEase(%q) error = %v", name, err)
		}
		if !approx(fn(0), 0) || !approx(fn(1), 1) {
			t.Errorf("%s: f(0)=%v f(1)=%v, want 0 and 1", name, fn(0), fn(1))
		}
	}
}

func TestInvertAndMirror(t *testing.T) {
	in, out, inOut := Power(1)
	inv := Invert(out)
	mir := Mirror(in)
	for _, p := range []float64{0, 0.2, 0.5, 0.8, 1} {
		if !approx(inv(p), in(p)) {
			t.Errorf("Invert(out)(%v) = %v, want %v", p, inv(p), in(p))
		}
		if !approx(mir(p), inOut(p)) {
			t.Errorf("Mirror(in)(%v) = %v, want %v", p, mir(p), inOut(p))
		}
	}
}

func TestSpringEaseOvershoots(t *testing.T) {
	fn := SpringEase(8, 0.2)
	peak := 0.0
	for i := range 100 {
		peak = max(peak, fn(float64(i)/100))
	}
	if peak <= 1 {
		t.Errorf("underdamped spring peak = %v, want > 1", peak)
	}
}
