package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/choreo/pkg/animation"
	choreoerrors "github.com/go-drift/choreo/pkg/errors"
)

// FrameDuration is the frame step used by PumpFrames and PumpAndSettle.
const FrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: animations did not settle")

// EngineTester drives an engine frame by frame on a fake clock. Warnings
// reported by the engine are collected instead of logged.
type EngineTester struct {
	engine   *animation.Engine
	clock    *FakeClock
	warnings *choreoerrors.CollectingHandler
}

// NewEngineTester creates a tester. Options are applied after the tester's
// own clock, handler and lag settings, so they can override them.
// Call Cleanup() when done, or use NewEngineTesterWithT() instead.
func NewEngineTester(opts ...animation.Option) *EngineTester {
	clk := NewFakeClock()
	warnings := &choreoerrors.CollectingHandler{}
	base := []animation.Option{
		animation.WithClock(clk),
		animation.WithHandler(warnings),
		animation.WithLagSmoothing(0, 0),
	}
	return &EngineTester{
		engine:   animation.NewEngine(append(base, opts...)...),
		clock:    clk,
		warnings: warnings,
	}
}

// NewEngineTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewEngineTesterWithT(t testing.TB, opts ...animation.Option) *EngineTester {
	tester := NewEngineTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup kills every animation still attached to the engine.
func (t *EngineTester) Cleanup() {
	t.engine.Root().Clear(true)
}

// Engine returns the engine under test.
func (t *EngineTester) Engine() *animation.Engine {
	return t.engine
}

// Clock returns the fake clock for advancing time in tests.
func (t *EngineTester) Clock() *FakeClock {
	return t.clock
}

// Warnings returns the handler collecting engine warnings and panics.
func (t *EngineTester) Warnings() *choreoerrors.CollectingHandler {
	return t.warnings
}

// Tick dispatches one frame without advancing the clock.
func (t *EngineTester) Tick() {
	t.engine.Ticker().Tick()
}

// Pump advances the clock by d and dispatches one frame.
func (t *EngineTester) Pump(d time.Duration) {
	t.clock.Advance(d)
	t.Tick()
}

// PumpTo moves the clock to s seconds after Epoch and dispatches one frame.
// A time already passed dispatches without moving the clock.
func (t *EngineTester) PumpTo(s float64) {
	if d := seconds(s) - t.clock.Elapsed(); d > 0 {
		t.clock.Advance(d)
	}
	t.Tick()
}

// PumpFrames dispatches n frames of FrameDuration each.
func (t *EngineTester) PumpFrames(n int) {
	for range n {
		t.Pump(FrameDuration)
	}
}

// PumpAndSettle runs frames until no animation is left playing or the
// timeout is reached. Each frame advances the fake clock by FrameDuration.
// Returns ErrSettleTimeout if the engine does not settle within timeout.
func (t *EngineTester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed < timeout {
		t.Tick()
		if !t.needsWork() {
			return nil
		}
		t.clock.Advance(FrameDuration)
		elapsed += FrameDuration
	}
	return ErrSettleTimeout
}

// needsWork reports whether any animation on the root is still running.
// Paused and frozen animations do not hold the engine awake.
func (t *EngineTester) needsWork() bool {
	for _, child := range t.engine.Root().Children(false, true, true) {
		if !child.Paused() && child.TimeScale() != 0 {
			return true
		}
	}
	return false
}
