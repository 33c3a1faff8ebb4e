package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/choreo/pkg/animation"
	choreoerrors "github.com/go-drift/choreo/pkg/errors"
)

func TestNewEngineTester_Defaults(t *testing.T) {
	tester := NewEngineTesterWithT(t)

	if tester.Engine() == nil {
		t.Fatal("expected engine to be set")
	}
	if tester.clock == nil {
		t.Fatal("expected fake clock to be set")
	}
	if tester.Warnings() == nil {
		t.Fatal("expected warnings handler to be set")
	}
}

func TestPump_AdvancesTweens(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	box := NewRecorder(map[string]any{"x": 0})
	tester.Engine().To(box, animation.Vars{
		Props:    animation.Props{"x": 100},
		Duration: 1,
		Ease:     "none",
	})

	tester.Pump(500 * time.Millisecond)
	if got := box.Number("x"); got != 50 {
		t.Errorf("expected x 50 at half time, got %v", got)
	}

	tester.Pump(time.Second)
	if got := box.Number("x"); got != 100 {
		t.Errorf("expected x 100 after the end, got %v", got)
	}
}

func TestPumpFrames(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	start := tester.Clock().Now()

	tester.PumpFrames(3)
	if got := tester.Clock().Now().Sub(start); got != 3*FrameDuration {
		t.Errorf("expected clock advanced by %v, got %v", 3*FrameDuration, got)
	}
	if got := tester.Engine().Ticker().Frame(); got != 3 {
		t.Errorf("expected 3 frames, got %d", got)
	}
}

func TestPumpAndSettle_Completes(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	box := NewRecorder(map[string]any{"x": 0})
	completed := false
	tester.Engine().To(box, animation.Vars{
		Props:      animation.Props{"x": 10},
		Duration:   0.1,
		OnComplete: func(animation.Animation, ...any) { completed = true },
	})

	if err := tester.PumpAndSettle(time.Second); err != nil {
		t.Fatalf("expected settle, got: %v", err)
	}
	if !completed || box.Number("x") != 10 {
		t.Errorf("expected completed tween at 10, got completed=%v x=%v", completed, box.Number("x"))
	}
}

func TestPumpAndSettle_Timeout(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	box := NewRecorder(map[string]any{"x": 0})
	tester.Engine().To(box, animation.Vars{
		Props:    animation.Props{"x": 10},
		Duration: 0.1,
		Repeat:   -1,
	})

	err := tester.PumpAndSettle(200 * time.Millisecond)
	if !errors.Is(err, ErrSettleTimeout) {
		t.Errorf("expected ErrSettleTimeout, got %v", err)
	}
}

func TestPumpAndSettle_IgnoresPaused(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	box := NewRecorder(map[string]any{"x": 0})
	tester.Engine().To(box, animation.Vars{
		Props:    animation.Props{"x": 10},
		Duration: 5,
		Paused:   true,
	})

	if err := tester.PumpAndSettle(100 * time.Millisecond); err != nil {
		t.Errorf("expected paused tween not to block settling, got %v", err)
	}
}

func TestWarningsCollected(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	tester.Engine().To(nil, animation.Vars{Props: animation.Props{"x": 1}})

	if got := tester.Warnings().Count(choreoerrors.KindMissingTarget); got != 1 {
		t.Errorf("expected 1 missing-target warning, got %d", got)
	}
}

func TestCleanup_KillsAnimations(t *testing.T) {
	tester := NewEngineTester()
	box := NewRecorder(map[string]any{"x": 0})
	tester.Engine().To(box, animation.Vars{Props: animation.Props{"x": 10}, Duration: 1})

	tester.Cleanup()
	if tester.Engine().IsTweening(box) {
		t.Error("expected no tweens after Cleanup")
	}
}
