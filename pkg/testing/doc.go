// Package testing provides deterministic test tooling for choreo engines.
//
// # Quick Start
//
// Create a tester, add animations, and pump frames:
//
//	func TestSlide(t *testing.T) {
//	    tester := choreotest.NewEngineTesterWithT(t)
//	    box := choreotest.NewRecorder(map[string]any{"x": 0})
//	    tester.Engine().To(box, animation.Vars{Props: animation.Props{"x": 100}, Duration: 1})
//
//	    tester.Pump(500 * time.Millisecond)
//	    if box.Number("x") <= 0 {
//	        t.Error("expected x to move")
//	    }
//	}
//
// # Trace Testing
//
// Sample an animation over its whole duration and compare with a golden file:
//
//	trace := choreotest.CaptureTrace(tl, 0.1, choreotest.ProbeRecorders(targets))
//	trace.MatchesFile(t, "testdata/intro.trace.yaml")
//
// Update traces with:
//
//	CHOREO_UPDATE_TRACES=1 go test ./...
//
// # Time Control
//
// The tester's engine runs on a [FakeClock] with lag smoothing disabled, so
// every pump advances animations by exactly the requested time:
//
//	tester.Clock().Advance(100 * time.Millisecond)
//	tester.Tick()
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import choreotest "github.com/go-drift/choreo/pkg/testing"
package testing
