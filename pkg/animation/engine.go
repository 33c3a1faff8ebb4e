package animation

import (
	"time"

	"github.com/go-drift/choreo/pkg/errors"
)

const defaultAutoSleep = 120

// Engine owns a ticker and the root timeline every top-level animation is
// added to. All engine state belongs to the goroutine that ticks it.
type Engine struct {
	ticker   *Ticker
	root     *Timeline
	handler  errors.Handler
	eases    EaseRegistry
	adapters []Adapter
	defaults Vars

	autoSleep      int
	nextGC         int
	nullTargetWarn bool

	// overwriting is the tween currently resolving overwrites; it is never
	// killed by its own scan.
	overwriting *Tween
}

type config struct {
	clock          Clock
	scheduler      FrameScheduler
	handler        errors.Handler
	autoSleep      int
	lagThreshold   time.Duration
	adjustedLag    time.Duration
	lagSet         bool
	fps            int
	defaults       Vars
	nullTargetWarn bool
}

// Option configures an Engine.
type Option func(*config)

// WithClock sets the time source of the engine ticker.
func WithClock(c Clock) Option {
	return func(cfg *config) { cfg.clock = c }
}

// WithFrameScheduler drives the ticker from a host frame primitive.
func WithFrameScheduler(s FrameScheduler) Option {
	return func(cfg *config) { cfg.scheduler = s }
}

// WithHandler routes engine warnings and callback panics to h instead of the
// global handler.
func WithHandler(h errors.Handler) Option {
	return func(cfg *config) { cfg.handler = h }
}

// WithAutoSleep sets how many frames pass between checks for an idle root.
// An idle engine puts its ticker to sleep; zero disables sleeping.
func WithAutoSleep(frames int) Option {
	return func(cfg *config) { cfg.autoSleep = max(0, frames) }
}

// WithLagSmoothing configures the ticker's lag smoothing. A zero threshold
// disables it.
func WithLagSmoothing(threshold, adjustedLag time.Duration) Option {
	return func(cfg *config) {
		cfg.lagThreshold, cfg.adjustedLag, cfg.lagSet = threshold, adjustedLag, true
	}
}

// WithFPS caps the frame rate of scheduled frames.
func WithFPS(fps int) Option {
	return func(cfg *config) { cfg.fps = fps }
}

// WithDefaults sets vars every tween inherits for fields it leaves unset.
func WithDefaults(v Vars) Option {
	return func(cfg *config) { cfg.defaults = v }
}

// WithNullTargetWarn toggles warnings for missing or unadaptable targets.
func WithNullTargetWarn(warn bool) Option {
	return func(cfg *config) { cfg.nullTargetWarn = warn }
}

// NewEngine creates an engine with a running root timeline.
func NewEngine(opts ...Option) *Engine {
	cfg := config{
		clock:          SystemClock{},
		autoSleep:      defaultAutoSleep,
		nullTargetWarn: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	tickerOpts := []TickerOption{WithTickerClock(cfg.clock)}
	if cfg.scheduler != nil {
		tickerOpts = append(tickerOpts, WithTickerScheduler(cfg.scheduler))
	}
	e := &Engine{
		ticker:         NewTicker(tickerOpts...),
		handler:        cfg.handler,
		autoSleep:      cfg.autoSleep,
		nullTargetWarn: cfg.nullTargetWarn,
	}
	if cfg.lagSet {
		e.ticker.LagSmoothing(cfg.lagThreshold, cfg.adjustedLag)
	}
	if cfg.fps > 0 {
		e.ticker.FPS(cfg.fps)
	}
	e.defaults = cfg.defaults.inherit(&Vars{Ease: DefaultEaseName, Overwrite: OverwriteAuto})

	e.root = newTimeline(e, Vars{
		ID:                 "root",
		SmoothChildTiming:  true,
		AutoRemoveChildren: true,
		Defaults:           &e.defaults,
	})
	e.root.root = true
	e.root.sort = false
	e.nextGC = e.autoSleep
	e.ticker.AddPriority(e.updateRoot)
	return e
}

func (e *Engine) updateRoot(now, _ float64, frame int) {
	if e.root.ts != 0 {
		e.root.render(parentToChildTotalTime(now, &e.root.core), false, false)
	}
	if e.autoSleep == 0 || frame < e.nextGC {
		return
	}
	e.nextGC = frame + e.autoSleep
	if e.ticker.Len() > 1 {
		return
	}
	for _, child := range e.root.children.Values() {
		if child.base().ts != 0 {
			return
		}
	}
	e.ticker.Sleep()
}

func (e *Engine) wake() {
	if e.ticker != nil {
		e.ticker.Wake()
	}
}

// Ticker returns the engine clock.
func (e *Engine) Ticker() *Ticker { return e.ticker }

// Root returns the timeline top-level animations are placed on.
func (e *Engine) Root() *Timeline { return e.root }

// Defaults returns the vars every tween inherits from the root.
func (e *Engine) Defaults() *Vars { return &e.defaults }

// Handler returns the warning handler, nil meaning the global one.
func (e *Engine) Handler() errors.Handler { return e.handler }

// To tweens targets from their current values to vars.Props.
func (e *Engine) To(targets any, vars Vars) *Tween {
	return newTween(e, targets, vars, kindTo, nil, nil, Position{})
}

// From tweens targets from vars.Props to their current values.
func (e *Engine) From(targets any, vars Vars) *Tween {
	return newTween(e, targets, vars, kindFrom, nil, nil, Position{})
}

// FromTo tweens targets from from to vars.Props.
func (e *Engine) FromTo(targets any, from Props, vars Vars) *Tween {
	return newTween(e, targets, vars, kindFromTo, from, nil, Position{})
}

// Set applies vars.Props immediately.
func (e *Engine) Set(targets any, vars Vars) *Tween {
	return newTween(e, targets, vars, kindSet, nil, nil, Position{})
}

// DelayedCall calls fn after delay seconds of root time.
func (e *Engine) DelayedCall(delay float64, fn Callback, params ...any) *Tween {
	return newTween(e, nil, Vars{
		Delay:                   delay,
		ImmediateRender:         Off,
		Overwrite:               OverwriteNone,
		OnComplete:              fn,
		OnCompleteParams:        params,
		OnReverseComplete:       fn,
		OnReverseCompleteParams: params,
	}, kindCall, nil, nil, Position{})
}

// Timeline creates a timeline at the end of the root.
func (e *Engine) Timeline(vars Vars) *Timeline {
	tl := newTimeline(e, vars)
	addToTimeline(e.root, tl, Position{}, false)
	if vars.Reversed {
		tl.Reverse()
	}
	if vars.Paused {
		tl.SetPaused(true)
	}
	return tl
}

// GetByID finds an animation below the root by id.
func (e *Engine) GetByID(id string) Animation { return e.root.GetByID(id) }

// GetTweensOf returns the tweens animating any of targets.
func (e *Engine) GetTweensOf(targets any, onlyActive bool) []*Tween {
	return e.root.GetTweensOf(targets, onlyActive)
}

// KillTweensOf kills the given properties of every tween of targets, or the
// whole tweens when props is empty.
func (e *Engine) KillTweensOf(targets any, props ...string) {
	e.root.KillTweensOf(targets, props...)
}

// IsTweening reports whether any active tween animates targets.
func (e *Engine) IsTweening(targets any) bool {
	return len(e.root.GetTweensOf(targets, true)) > 0
}

// ExportRoot moves every root child into a new timeline, which takes their
// place on the root. Delayed calls stay on the root unless
// includeDelayedCalls is set.
func (e *Engine) ExportRoot(vars Vars, includeDelayedCalls bool) *Timeline {
	vars.SmoothChildTiming = true
	tl := newTimeline(e, vars)
	tl.time, tl.tTime = e.root.time, e.root.time
	for _, child := range e.root.children.Values() {
		if t, ok := child.(*Tween); ok && t.kind == kindCall && !includeDelayedCalls {
			continue
		}
		c := child.base()
		addToTimeline(tl, child, At(c.start-c.delay), false)
	}
	addToTimeline(e.root, tl, At(0), false)
	return tl
}

// RegisterEase adds a named ease for this engine's tweens.
func (e *Engine) RegisterEase(name string, fn Ease) { e.eases.Register(name, fn) }

// RegisterAdapter adds a target adapter tried before the built-in ones.
func (e *Engine) RegisterAdapter(a Adapter) { e.adapters = append(e.adapters, a) }

// ParseEase resolves name against this engine's eases.
func (e *Engine) ParseEase(name string) (Ease, error) { return e.eases.Parse(name) }

func (e *Engine) adapt(raw any) (Target, bool) {
	if raw == nil {
		return nil, false
	}
	for _, a := range e.adapters {
		if t, ok := a(raw); ok {
			return t, true
		}
	}
	if tl, ok := raw.(*Timeline); ok {
		return timelineTarget{tl}, true
	}
	return adaptBuiltin(raw)
}

// easeFor picks fn, otherwise parses name, reporting unknown names on c.
func (e *Engine) easeFor(fn Ease, name string, c *core) Ease {
	if fn != nil {
		return fn
	}
	if name == "" {
		return DefaultEase
	}
	ease, err := e.eases.Parse(name)
	if err != nil {
		c.report(errors.KindUnknownEase, "animation.ParseEase", err, "", nil)
	}
	return ease
}
