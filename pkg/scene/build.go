package scene

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-drift/choreo/pkg/animation"
)

// Built is a scene turned into a live timeline.
type Built struct {
	Scene    *Scene
	Timeline *animation.Timeline
	// Targets holds the live property maps, keyed by target name. They are
	// fresh copies, so a scene can be built any number of times.
	Targets map[string]map[string]any

	// OnCall, when set, runs whenever a call step fires.
	OnCall func(name string)

	calls []string
}

// Field names one property of one target.
type Field struct {
	Target string
	Prop   string
}

// String returns "target.prop".
func (f Field) String() string { return f.Target + "." + f.Prop }

// Build creates the scene timeline on e. The timeline is appended to the
// engine root like any other.
func (s *Scene) Build(e *animation.Engine) (*Built, error) {
	b := &Built{Scene: s, Targets: make(map[string]map[string]any, len(s.Targets))}
	for name, props := range s.Targets {
		live := make(map[string]any, len(props))
		for k, v := range props {
			live[k] = v
		}
		b.Targets[name] = live
	}

	tc := s.Timeline
	b.Timeline = e.Timeline(animation.Vars{
		ID:          tc.ID,
		Repeat:      tc.Repeat,
		RepeatDelay: tc.RepeatDelay,
		Yoyo:        tc.Yoyo,
		Paused:      tc.Paused,
		Defaults:    tc.Defaults.vars(),
	})

	for i := range tc.Steps {
		if err := b.addStep(&tc.Steps[i]); err != nil {
			b.Timeline.Kill()
			return nil, configError("scene.Build", fmt.Errorf("steps[%d]: %w", i, err))
		}
	}
	return b, nil
}

func (d DefaultsConfig) vars() *animation.Vars {
	if d.Duration == 0 && d.Ease == "" {
		return nil
	}
	return &animation.Vars{Duration: d.Duration, Ease: d.Ease}
}

func (b *Built) addStep(st *Step) error {
	tl := b.Timeline
	pos := animation.Pos(st.At)
	switch st.Kind() {
	case "label":
		tl.AddLabel(st.Label, pos)
		return nil
	case "call":
		name := st.Call
		tl.Call(func(animation.Animation, ...any) { b.fire(name) }, pos)
		return nil
	}

	targets := make([]any, 0, len(st.Targets()))
	for _, name := range st.Targets() {
		t, ok := b.Targets[name]
		if !ok {
			return fmt.Errorf("unknown target %q", name)
		}
		targets = append(targets, t)
	}
	vars, err := stepVars(st)
	if err != nil {
		return err
	}

	switch st.Kind() {
	case "to":
		tl.To(targets, vars, pos)
	case "from":
		tl.From(targets, vars, pos)
	case "fromTo":
		tl.FromTo(targets, animation.Props(st.Start), vars, pos)
	case "set":
		tl.Set(targets, vars, pos)
	default:
		return fmt.Errorf("step has no kind")
	}
	return nil
}

func stepVars(st *Step) (animation.Vars, error) {
	overwrite, err := parseOverwrite(st.Overwrite)
	if err != nil {
		return animation.Vars{}, err
	}
	v := animation.Vars{
		ID:          st.ID,
		Data:        st.Kind(),
		Props:       animation.Props(st.Props),
		Duration:    st.Duration,
		Delay:       st.Delay,
		Ease:        st.Ease,
		Repeat:      st.Repeat,
		RepeatDelay: st.RepeatDelay,
		Yoyo:        st.Yoyo,
		Overwrite:   overwrite,
		Snap:        st.Snap,
	}
	if sc := st.Stagger; sc != nil {
		from, err := parseStaggerFrom(sc.From)
		if err != nil {
			return animation.Vars{}, err
		}
		v.Stagger = &animation.Stagger{
			Each:        sc.Each,
			Amount:      sc.Amount,
			From:        from,
			Axis:        sc.Axis,
			Ease:        sc.Ease,
			Repeat:      sc.Repeat,
			RepeatDelay: sc.RepeatDelay,
			Yoyo:        sc.Yoyo,
		}
		if len(sc.Grid) == 2 {
			v.Stagger.Grid = [2]int{sc.Grid[0], sc.Grid[1]}
		}
	}
	for i := range st.Keyframes {
		kf := &st.Keyframes[i]
		v.Keyframes = append(v.Keyframes, animation.Vars{
			Props:    animation.Props(kf.Props),
			Duration: kf.Duration,
			Delay:    kf.Delay,
			Ease:     kf.Ease,
		})
	}
	return v, nil
}

func (b *Built) fire(name string) {
	b.calls = append(b.calls, name)
	if b.OnCall != nil {
		b.OnCall(name)
	}
}

// Calls returns the names of the call steps fired so far, in order.
func (b *Built) Calls() []string {
	return append([]string(nil), b.calls...)
}

// Fields lists every property of every target, sorted by target then
// property. Properties added by tweens are included.
func (b *Built) Fields() []Field {
	var fields []Field
	for name, props := range b.Targets {
		for prop := range props {
			fields = append(fields, Field{Target: name, Prop: prop})
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Target != fields[j].Target {
			return fields[i].Target < fields[j].Target
		}
		return fields[i].Prop < fields[j].Prop
	})
	return fields
}

// TargetName returns the scene name of a live target, or "" when raw is not
// one of b's targets.
func (b *Built) TargetName(raw any) string {
	m, ok := raw.(map[string]any)
	if !ok {
		return ""
	}
	p := reflect.ValueOf(m).UnsafePointer()
	for name, t := range b.Targets {
		if reflect.ValueOf(t).UnsafePointer() == p {
			return name
		}
	}
	return ""
}

// Format returns the current value of f, with numbers rounded to four
// decimals.
func (b *Built) Format(f Field) string {
	switch v := b.Targets[f.Target][f.Prop].(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(math.Round(v*1e4)/1e4+0, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
