package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogHandler is a Handler that logs warnings to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out overrides the destination; nil means os.Stderr.
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// HandleWarning logs a Warning.
func (h *LogHandler) HandleWarning(w *Warning) {
	if w == nil {
		return
	}
	out := h.out()
	if h.Verbose {
		fmt.Fprintf(out, "[choreo warning] %s\n", w.Error())
		if w.StackTrace != "" {
			fmt.Fprintf(out, "Stack trace:\n%s\n", w.StackTrace)
		}
	} else {
		fmt.Fprintf(out, "[choreo warning] %s: %v\n", w.Op, w.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	out := h.out()
	if err.Op != "" {
		fmt.Fprintf(out, "[choreo panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(out, "[choreo panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(out, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// CollectingHandler records everything it receives. It is meant for tests and
// for tools that print a summary after a run. Safe for concurrent use.
type CollectingHandler struct {
	mu       sync.Mutex
	warnings []*Warning
	panics   []*PanicError
}

// HandleWarning records w.
func (h *CollectingHandler) HandleWarning(w *Warning) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = append(h.warnings, w)
}

// HandlePanic records err.
func (h *CollectingHandler) HandlePanic(err *PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

// Warnings returns a copy of the recorded warnings.
func (h *CollectingHandler) Warnings() []*Warning {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Warning(nil), h.warnings...)
}

// Panics returns a copy of the recorded panics.
func (h *CollectingHandler) Panics() []*PanicError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*PanicError(nil), h.panics...)
}

// Count returns how many warnings of kind were recorded.
func (h *CollectingHandler) Count(kind Kind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, w := range h.warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards everything recorded so far.
func (h *CollectingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = nil
	h.panics = nil
}
