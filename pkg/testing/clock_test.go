package testing

import (
	"testing"
	"time"

	"github.com/go-drift/choreo/pkg/animation"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	elapsed := clk.Now().Sub(start)

	if elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestFakeClock_DrivesTicker(t *testing.T) {
	clk := NewFakeClock()
	ticker := animation.NewTicker(animation.WithTickerClock(clk))
	ticker.LagSmoothing(0, 0)

	clk.Advance(250 * time.Millisecond)
	ticker.Tick()
	if got := ticker.Time(); got != 0.25 {
		t.Errorf("expected ticker time 0.25, got %v", got)
	}
}

func TestEngineTester_Clock(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	clk := tester.Clock()

	if clk == nil {
		t.Fatal("expected non-nil clock")
	}

	start := clk.Now()
	clk.Advance(500 * time.Millisecond)
	if clk.Now().Sub(start) != 500*time.Millisecond {
		t.Error("clock advancement not reflected")
	}
	tester.Tick()
	if got := tester.Engine().Ticker().Time(); got != 0.5 {
		t.Errorf("expected engine time 0.5, got %v", got)
	}
}

func TestFakeClock_Seconds(t *testing.T) {
	clk := NewFakeClock()
	clk.AdvanceSeconds(1.0 / 3)
	if got := clk.Elapsed(); got != 333333333*time.Nanosecond {
		t.Errorf("Elapsed() = %v, want 333.333333ms", got)
	}
	clk.Advance(-time.Second)
	if got := clk.Elapsed(); got >= 0 {
		t.Errorf("Elapsed() after moving back = %v, want negative", got)
	}
}

func TestEngineTester_PumpTo(t *testing.T) {
	tester := NewEngineTesterWithT(t)
	tester.PumpTo(0.75)
	if got := tester.Engine().Ticker().Time(); got != 0.75 {
		t.Errorf("ticker time = %v, want 0.75", got)
	}
	frame := tester.Engine().Ticker().Frame()
	tester.PumpTo(0.5)
	if got := tester.Clock().Elapsed(); got != 750*time.Millisecond {
		t.Errorf("PumpTo(past) moved the clock to %v", got)
	}
	if got := tester.Engine().Ticker().Frame(); got != frame+1 {
		t.Errorf("frame = %d, want %d", got, frame+1)
	}
}
