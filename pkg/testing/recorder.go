package testing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-drift/choreo/pkg/animation"
)

// Record is one Set call observed by a Recorder.
type Record struct {
	Prop  string
	Value animation.Value
}

// Recorder is an animation target that keeps its properties in memory and
// logs every write. Properties that were never set read as 0.
// All methods are safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	values  map[string]animation.Value
	records []Record
}

// NewRecorder returns a Recorder holding initial. Values may be numbers,
// strings or animation.Value.
func NewRecorder(initial map[string]any) *Recorder {
	r := &Recorder{values: make(map[string]animation.Value, len(initial))}
	for prop, raw := range initial {
		r.values[prop] = toValue(raw)
	}
	return r
}

func toValue(raw any) animation.Value {
	switch v := raw.(type) {
	case animation.Value:
		return v
	case string:
		return animation.StringValue(v)
	case float64:
		return animation.NumberValue(v)
	case float32:
		return animation.NumberValue(float64(v))
	case int:
		return animation.NumberValue(float64(v))
	case int64:
		return animation.NumberValue(float64(v))
	}
	return animation.StringValue(fmt.Sprint(raw))
}

// Get implements animation.Target.
func (r *Recorder) Get(prop string) (animation.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[prop]
	if !ok {
		return animation.NumberValue(0), true
	}
	return v, true
}

// Set implements animation.Target.
func (r *Recorder) Set(prop string, v animation.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = make(map[string]animation.Value)
	}
	r.values[prop] = v
	r.records = append(r.records, Record{Prop: prop, Value: v})
}

// Value returns the current value of prop.
func (r *Recorder) Value(prop string) animation.Value {
	v, _ := r.Get(prop)
	return v
}

// Number returns the current numeric value of prop.
func (r *Recorder) Number(prop string) float64 {
	return r.Value(prop).Number()
}

// Text returns the current value of prop as text.
func (r *Recorder) Text(prop string) string {
	return r.Value(prop).Text()
}

// Props returns the names of every known property, sorted.
func (r *Recorder) Props() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns every write in order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.records...)
}

// Sets returns the values written to prop, in order.
func (r *Recorder) Sets(prop string) []animation.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []animation.Value
	for _, rec := range r.records {
		if rec.Prop == prop {
			out = append(out, rec.Value)
		}
	}
	return out
}

// Reset forgets recorded writes but keeps current values.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
