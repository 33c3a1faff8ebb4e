package animation

// Default values applied when Vars leaves a field at its zero value.
const (
	DefaultDuration = 0.5
)

// Toggle is a tri-state switch whose zero value defers to the default.
type Toggle uint8

const (
	// ToggleDefault uses the contextual default.
	ToggleDefault Toggle = iota
	// On forces the behavior on.
	On
	// Off forces the behavior off.
	Off
)

func (t Toggle) enabled(def bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	}
	return def
}

// Overwrite selects how a tween resolves conflicts with other tweens of the
// same targets.
type Overwrite uint8

const (
	// OverwriteDefault inherits the timeline or engine default, which is
	// OverwriteAuto unless configured otherwise.
	OverwriteDefault Overwrite = iota
	// OverwriteAuto removes only the conflicting properties of tweens that
	// are running when this one starts.
	OverwriteAuto
	// OverwriteNone leaves other tweens alone.
	OverwriteNone
	// OverwriteAll kills every other tween of the same targets as soon as
	// this one is created.
	OverwriteAll
)

func (o Overwrite) String() string {
	switch o {
	case OverwriteAuto:
		return "auto"
	case OverwriteNone:
		return "none"
	case OverwriteAll:
		return "all"
	}
	return "default"
}

// Callback is an animation event handler. It receives the animation that
// fired it and the matching *Params slice.
type Callback func(a Animation, params ...any)

// FuncValue computes a property value per target. i is the target's index in
// targets.
type FuncValue func(i int, target any, targets []any) any

// Modifier rewrites a computed value right before it is set on the target.
type Modifier func(v Value, target any) Value

// Props maps property names to values. A value may be a number, a string
// ("10px", "+=50", "rgb(255,0,0)", "translate(10px, 20px)"), a [Value] or a
// [FuncValue].
type Props map[string]any

// Vars configures a tween or timeline. Zero fields mean "use the default":
// a zero Duration is DefaultDuration (use Set for zero-length tweens), a zero
// TimeScale is 1, an empty Ease is the engine default.
//
// Fields left at their zero value are filled from the parent timeline's
// Defaults, then from the engine defaults.
type Vars struct {
	ID   string
	Data any

	Props Props

	Duration    float64
	Delay       float64
	Ease        string
	EaseFunc    Ease
	Repeat      int
	RepeatDelay float64
	Yoyo        bool
	TimeScale   float64
	Paused      bool
	Reversed    bool

	ImmediateRender Toggle
	Overwrite       Overwrite
	RepeatRefresh   bool

	Stagger   *Stagger
	Keyframes []Vars

	Snap      map[string]float64
	AutoRound Toggle
	Modifiers map[string]Modifier

	OnStart                 Callback
	OnStartParams           []any
	OnUpdate                Callback
	OnUpdateParams          []any
	OnComplete              Callback
	OnCompleteParams        []any
	OnRepeat                Callback
	OnRepeatParams          []any
	OnReverseComplete       Callback
	OnReverseCompleteParams []any
	OnInterrupt             Callback
	OnInterruptParams       []any

	// Timeline-only fields.
	SmoothChildTiming  bool
	AutoRemoveChildren bool
	Defaults           *Vars
}

// inherit fills zero fields of v from d.
func (v Vars) inherit(d *Vars) Vars {
	if d == nil {
		return v
	}
	if v.Duration == 0 {
		v.Duration = d.Duration
	}
	if v.Ease == "" && v.EaseFunc == nil {
		v.Ease, v.EaseFunc = d.Ease, d.EaseFunc
	}
	if v.Repeat == 0 {
		v.Repeat = d.Repeat
	}
	if v.RepeatDelay == 0 {
		v.RepeatDelay = d.RepeatDelay
	}
	v.Yoyo = v.Yoyo || d.Yoyo
	if v.Overwrite == OverwriteDefault {
		v.Overwrite = d.Overwrite
	}
	if v.ImmediateRender == ToggleDefault {
		v.ImmediateRender = d.ImmediateRender
	}
	if v.AutoRound == ToggleDefault {
		v.AutoRound = d.AutoRound
	}
	if v.Snap == nil {
		v.Snap = d.Snap
	}
	if v.Modifiers == nil {
		v.Modifiers = d.Modifiers
	}
	return v
}

// withoutChildConfig drops what a staggered or keyframed parent keeps for
// itself when it creates its nested children.
func (v Vars) withoutChildConfig() Vars {
	v.ID = ""
	v.Stagger = nil
	v.Keyframes = nil
	v.Delay = 0
	v.Repeat, v.RepeatDelay, v.Yoyo, v.RepeatRefresh = 0, 0, false, false
	v.Paused, v.Reversed = false, false
	v.TimeScale = 0
	v.OnStart, v.OnUpdate, v.OnComplete, v.OnRepeat = nil, nil, nil, nil
	v.OnReverseComplete, v.OnInterrupt = nil, nil
	v.OnStartParams, v.OnUpdateParams, v.OnCompleteParams = nil, nil, nil
	v.OnRepeatParams, v.OnReverseCompleteParams, v.OnInterruptParams = nil, nil, nil
	return v
}
