package animation

import (
	"math"
	"testing"
	"time"

	"github.com/go-drift/choreo/pkg/errors"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

type harness struct {
	t        *testing.T
	engine   *Engine
	clock    *stepClock
	warnings *errors.CollectingHandler
}

// newHarness builds an engine on a manual clock with lag smoothing off, so
// every step lands exactly on the requested time.
func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := &errors.CollectingHandler{}
	base := []Option{WithClock(clk), WithHandler(h), WithLagSmoothing(0, 0)}
	return &harness{t: t, engine: NewEngine(append(base, opts...)...), clock: clk, warnings: h}
}

// step advances the clock by seconds and ticks once.
func (h *harness) step(seconds float64) {
	h.clock.now = h.clock.now.Add(time.Duration(math.Round(seconds * float64(time.Second))))
	h.engine.Ticker().Tick()
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
