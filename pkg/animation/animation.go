package animation

import (
	"math"

	"github.com/go-drift/choreo/pkg/animation/internal/arena"
	"github.com/go-drift/choreo/pkg/errors"
)

const (
	// Epsilon is the smallest time step the engine distinguishes. Totals
	// within Epsilon of an edge snap to that edge, and it doubles as the
	// "just before zero" marker that keeps callbacks direction aware.
	Epsilon = 1e-8

	// InfiniteDuration stands in for the total duration of an infinitely
	// repeating animation so arithmetic never meets +Inf.
	InfiniteDuration = 1e10

	// timePrecision is the grid time arithmetic is rounded to, which keeps
	// accumulated float error from landing a playhead just off a boundary.
	timePrecision = 1e7

	bigNum = 1e8
)

// State is a coarse summary of where an animation's playhead is.
type State int

const (
	// StateInitial is before the first render or parked at the start.
	StateInitial State = iota
	// StateActive is between the start and the end.
	StateActive
	// StatePaused means the animation is paused.
	StatePaused
	// StateComplete means the playhead reached the end moving forward.
	StateComplete
	// StateReverseComplete means the playhead reached the start moving
	// backward.
	StateReverseComplete
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateComplete:
		return "complete"
	case StateReverseComplete:
		return "reverse-complete"
	default:
		return "unknown"
	}
}

// Animation is the time state machine shared by tweens and timelines. Every
// setter funnels through SetTotalTime, which renders immediately.
//
// Setters that take suppressEvents skip callbacks when it is true.
type Animation interface {
	ID() string
	Data() any
	Parent() *Timeline

	Time() float64
	SetTime(t float64, suppressEvents bool)
	TotalTime() float64
	SetTotalTime(t float64, suppressEvents bool)
	Progress() float64
	SetProgress(p float64, suppressEvents bool)
	TotalProgress() float64
	SetTotalProgress(p float64, suppressEvents bool)
	Iteration() int
	SetIteration(i int, suppressEvents bool)
	Seek(pos Position, suppressEvents bool)
	RawTime(wrapRepeats bool) float64
	GlobalTime(local float64) float64

	Play()
	Pause()
	Resume()
	Reverse()
	Restart(includeDelay, suppressEvents bool)

	TimeScale() float64
	SetTimeScale(ts float64)
	Paused() bool
	SetPaused(paused bool)
	Reversed() bool
	SetReversed(reversed bool)
	Delay() float64
	SetDelay(d float64)
	Duration() float64
	SetDuration(d float64)
	TotalDuration() float64
	SetTotalDuration(d float64)
	StartTime() float64
	SetStartTime(t float64)
	EndTime(includeRepeats bool) float64
	Repeat() int
	SetRepeat(n int)
	RepeatDelay() float64
	SetRepeatDelay(d float64)
	Yoyo() bool
	SetYoyo(yoyo bool)

	IsActive() bool
	State() State
	Kill()
	Invalidate()
	Revert()

	base() *core
}

// node is implemented by *Tween and *Timeline.
type node interface {
	Animation
	render(totalTime float64, suppressEvents, force bool)
	resolve(pos Position, child Animation) float64
}

// core holds the time state common to tweens and timelines. Times are in
// seconds; start and end are in parent time, everything else is local.
type core struct {
	self   node
	engine *Engine
	vars   Vars

	// parent is the timeline currently holding this node. dp keeps the last
	// one after removal so a restarted animation can re-attach. A nested
	// timeline has no parent and its owning tween as dp.
	parent *Timeline
	dp     node
	nested bool
	h      arena.Handle

	start, end float64
	delay      float64
	dur, tDur  float64
	time       float64
	tTime      float64
	pTime      float64
	zTime      float64
	ts, rts    float64
	repeat     int
	rDelay     float64
	yoyo       bool
	ps         bool
	act        bool
	initted    bool
	dirty      bool
	lock       int
	ratio      float64
}

func (c *core) base() *core { return c }

func (c *core) init(self node, e *Engine, vars Vars) {
	c.self = self
	c.engine = e
	c.vars = vars
	c.delay = vars.Delay
	c.repeat = vars.Repeat
	if c.repeat != 0 {
		c.rDelay = vars.RepeatDelay
		c.yoyo = vars.Yoyo
	}
	c.ts, c.rts = 1, 1
	if vars.TimeScale != 0 {
		c.ts, c.rts = vars.TimeScale, vars.TimeScale
	}
	c.zTime = -Epsilon
	setDuration(c, vars.Duration, true, true)
	e.wake()
}

func roundPrecise(v float64) float64 {
	r := math.Round(v*timePrecision) / timePrecision
	if math.IsNaN(r) {
		return 0
	}
	return r + 0
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// animationCycle returns the zero-based repeat cycle at tTime. Landing
// exactly on a boundary counts as the end of the previous cycle.
func animationCycle(tTime, cycle float64) int {
	if cycle <= 0 {
		return 0
	}
	t := roundPrecise(tTime / cycle)
	whole := math.Floor(t)
	if t != 0 && whole == t {
		return int(whole) - 1
	}
	return int(whole)
}

// up is the animation one level above: the holding timeline, or the owning
// tween of a nested timeline.
func (c *core) up() node {
	if c.parent != nil {
		return c.parent
	}
	if c.nested {
		return c.dp
	}
	return nil
}

// rawParent is the holding timeline or, after removal, the last one.
func (c *core) rawParent() node {
	if c.parent != nil {
		return c.parent
	}
	return c.dp
}

func (c *core) totalDur() float64 {
	if c.dirty {
		return c.self.TotalDuration()
	}
	return c.tDur
}

func parentToChildTotalTime(parentTime float64, c *core) float64 {
	t := (parentTime - c.start) * c.ts
	if c.ts < 0 {
		t += c.totalDur()
	}
	return t
}

func setEnd(c *core) {
	ts := math.Abs(c.ts)
	if ts == 0 {
		ts = math.Abs(c.rts)
	}
	if ts == 0 {
		ts = Epsilon
	}
	span := c.tDur / ts
	if math.IsNaN(span) || math.IsInf(span, 0) {
		span = 0
	}
	c.end = roundPrecise(c.start + span)
}

// alignPlayhead moves the start time so the parent playhead lands on
// totalTime, which keeps smooth-timed parents continuous.
func alignPlayhead(c *core, totalTime float64) {
	tl, ok := c.dp.(*Timeline)
	if !ok || !tl.smoothChildTiming || c.ts == 0 {
		return
	}
	if c.ts > 0 {
		c.start = roundPrecise(tl.time - totalTime/c.ts)
	} else {
		c.start = roundPrecise(tl.time - (c.totalDur()-totalTime)/-c.ts)
	}
	setEnd(c)
	if !tl.dirty {
		uncache(tl, c)
	}
}

// uncache flags a and its ancestors for a duration recount when child could
// change a's extent.
func uncache(a node, child *core) {
	if a == nil {
		return
	}
	ab := a.base()
	if child != nil && child.end <= ab.dur && child.start >= 0 {
		return
	}
	for x := a; x != nil; x = x.base().up() {
		x.base().dirty = true
	}
}

func recacheAncestors(c *core) {
	p := c.up()
	for p != nil && p.base().up() != nil {
		p.base().dirty = true
		p.TotalDuration()
		p = p.base().up()
	}
}

func setDuration(c *core, duration float64, skipUncache, leavePlayhead bool) {
	dur := roundPrecise(duration)
	var totalProgress float64
	if c.tDur != 0 {
		totalProgress = c.tTime / c.tDur
	}
	if totalProgress != 0 && !leavePlayhead && c.dur != 0 {
		c.time *= dur / c.dur
	}
	c.dur = dur
	switch {
	case c.repeat == 0:
		c.tDur = dur
	case c.repeat < 0:
		c.tDur = InfiniteDuration
	default:
		c.tDur = roundPrecise(dur*float64(c.repeat+1) + c.rDelay*float64(c.repeat))
	}
	if totalProgress > 0 && !leavePlayhead {
		c.tTime = c.tDur * totalProgress
		alignPlayhead(c, c.tTime)
	}
	if c.parent != nil {
		setEnd(c)
	}
	if !skipUncache && c.parent != nil {
		uncache(c.parent, c)
	}
}

func (c *core) cycle() float64 {
	return c.self.Duration() + c.rDelay
}

func (c *core) elapsedCycleDuration() float64 {
	if c.repeat == 0 {
		return 0
	}
	cycle := c.cycle()
	return float64(animationCycle(c.tTime, cycle)) * cycle
}

// ID returns the id from Vars.
func (c *core) ID() string { return c.vars.ID }

// Data returns the data from Vars.
func (c *core) Data() any { return c.vars.Data }

// Parent returns the timeline holding the animation, or nil once it was
// removed or when it is nested inside a tween.
func (c *core) Parent() *Timeline { return c.parent }

// Time returns the local playhead within the current repeat cycle.
func (c *core) Time() float64 { return c.time }

// SetTime moves the playhead within the current repeat cycle.
func (c *core) SetTime(t float64, suppressEvents bool) {
	c.SetTotalTime(math.Min(c.self.TotalDuration(), t+c.elapsedCycleDuration()), suppressEvents)
}

// TotalTime returns the playhead including repeats and repeat delays.
func (c *core) TotalTime() float64 { return c.tTime }

// SetTotalTime moves the playhead and renders. When the parent uses smooth
// child timing the start time shifts instead of the parent's playhead, and an
// animation that was auto-removed is put back.
func (c *core) SetTotalTime(t float64, suppressEvents bool) {
	c.engine.wake()
	if tl, ok := c.dp.(*Timeline); ok && tl.smoothChildTiming && c.ts != 0 {
		alignPlayhead(c, t)
		if tl.dp != nil && tl.parent == nil {
			postAddChecks(tl, c)
		}
		for p := tl; p != nil && p.parent != nil; p = p.parent {
			var want float64
			if p.ts >= 0 {
				want = p.start + p.tTime/p.ts
			} else {
				want = p.start + (p.TotalDuration()-p.tTime)/-p.ts
			}
			if p.parent.time != want {
				p.SetTotalTime(p.tTime, true)
			}
		}
		if c.parent == nil && tl.autoRemoveChildren &&
			((c.ts > 0 && t < c.tDur) || (c.ts < 0 && t > 0) || (c.tDur == 0 && t == 0)) {
			addToTimeline(tl, c.self, At(c.start-c.delay), false)
		}
	}
	if c.tTime != t || (c.dur == 0 && !suppressEvents) ||
		(c.initted && math.Abs(c.zTime) == Epsilon) || (t == 0 && !c.initted) {
		if c.ts == 0 {
			c.pTime = t
		}
		c.self.render(t, suppressEvents, false)
	}
}

// Progress returns the playhead within the current cycle as 0..1.
func (c *core) Progress() float64 {
	if d := c.self.Duration(); d > 0 {
		return math.Min(1, c.time/d)
	}
	if c.RawTime(false) > 0 {
		return 1
	}
	return 0
}

// SetProgress moves to progress p of the current cycle. On a yoyo cycle that
// runs backward, p still measures from the cycle's start.
func (c *core) SetProgress(p float64, suppressEvents bool) {
	if c.yoyo && c.Iteration()&1 == 1 {
		p = 1 - p
	}
	c.SetTotalTime(c.self.Duration()*p+c.elapsedCycleDuration(), suppressEvents)
}

// TotalProgress returns the playhead over the whole animation as 0..1.
func (c *core) TotalProgress() float64 {
	if d := c.self.TotalDuration(); d > 0 {
		return math.Min(1, c.tTime/d)
	}
	if c.RawTime(false) >= 0 && c.initted {
		return 1
	}
	return 0
}

// SetTotalProgress moves to progress p of the whole animation.
func (c *core) SetTotalProgress(p float64, suppressEvents bool) {
	c.SetTotalTime(c.self.TotalDuration()*p, suppressEvents)
}

// Iteration returns the zero-based repeat cycle.
func (c *core) Iteration() int {
	if c.repeat == 0 {
		return 0
	}
	return animationCycle(c.tTime, c.cycle())
}

// SetIteration jumps to the same local time in cycle i.
func (c *core) SetIteration(i int, suppressEvents bool) {
	c.SetTotalTime(c.time+float64(i)*c.cycle(), suppressEvents)
}

// Seek moves the playhead to pos. Timelines resolve labels; tweens accept
// absolute and end-relative positions.
func (c *core) Seek(pos Position, suppressEvents bool) {
	c.SetTotalTime(c.self.resolve(pos, nil), suppressEvents)
}

// RawTime returns the local total time implied by the parent's playhead,
// which differs from TotalTime while the animation has not rendered yet.
func (c *core) RawTime(wrapRepeats bool) float64 {
	p := c.rawParent()
	if p == nil {
		return c.tTime
	}
	if wrapRepeats && (c.ts == 0 || (c.repeat != 0 && c.time != 0 && c.TotalProgress() < 1)) {
		return math.Mod(c.tTime, c.dur+c.rDelay)
	}
	if c.ts == 0 {
		return c.tTime
	}
	return parentToChildTotalTime(p.RawTime(wrapRepeats), c)
}

// GlobalTime converts a local total time into engine root time.
func (c *core) GlobalTime(local float64) float64 {
	t := local
	for a := node(c.self); a != nil; a = a.base().dp {
		b := a.base()
		ts := math.Abs(b.ts)
		if ts == 0 {
			ts = 1
		}
		t = b.start + t/ts
	}
	return t
}

// Play resumes forward playback.
func (c *core) Play() {
	c.SetReversed(false)
	c.SetPaused(false)
}

// Pause stops the playhead.
func (c *core) Pause() { c.SetPaused(true) }

// Resume unpauses without changing direction.
func (c *core) Resume() { c.SetPaused(false) }

// Reverse plays backward from the current position.
func (c *core) Reverse() {
	c.SetReversed(true)
	c.SetPaused(false)
}

// Restart plays from the beginning, optionally honoring the delay again.
func (c *core) Restart(includeDelay, suppressEvents bool) {
	c.Play()
	t := 0.0
	if includeDelay {
		t = -c.delay
	}
	c.SetTotalTime(t, suppressEvents)
	if c.dur == 0 {
		c.zTime = -Epsilon
	}
}

// TimeScale returns the playback rate; negative while reversed.
func (c *core) TimeScale() float64 {
	if c.rts == -Epsilon {
		return 0
	}
	return c.rts
}

// SetTimeScale changes the playback rate without moving the rendered value.
func (c *core) SetTimeScale(v float64) {
	if c.rts == v {
		return
	}
	tTime := c.tTime
	if p := c.up(); p != nil && c.ts != 0 {
		tTime = parentToChildTotalTime(p.base().time, c)
	}
	c.rts = v
	if c.ps || v == -Epsilon {
		c.ts = 0
	} else {
		c.ts = c.rts
	}
	c.SetTotalTime(clamp(-math.Abs(c.delay), c.self.TotalDuration(), tTime), true)
	setEnd(c)
	recacheAncestors(c)
}

// Paused reports whether the animation is paused.
func (c *core) Paused() bool { return c.ps }

// SetPaused pauses or resumes.
func (c *core) SetPaused(paused bool) {
	if c.ps == paused {
		return
	}
	c.ps = paused
	if paused {
		c.pTime = c.tTime
		if c.pTime == 0 {
			c.pTime = math.Max(-c.delay, c.RawTime(false))
		}
		c.ts = 0
		c.act = false
		return
	}
	c.engine.wake()
	c.ts = c.rts
	t := c.tTime
	if t == 0 {
		t = c.pTime
	}
	if c.parent != nil && !c.parent.smoothChildTiming {
		t = c.RawTime(false)
	}
	suppress := false
	if c.Progress() == 1 && math.Abs(c.zTime) != Epsilon {
		c.tTime -= Epsilon
		suppress = c.tTime != 0
	}
	c.SetTotalTime(t, suppress)
}

// Reversed reports whether playback runs backward.
func (c *core) Reversed() bool { return c.rts < 0 }

// SetReversed flips the direction, keeping the timescale magnitude.
func (c *core) SetReversed(reversed bool) {
	if reversed == c.Reversed() {
		return
	}
	ts := -c.rts
	if ts == 0 {
		if reversed {
			ts = -Epsilon
		}
	}
	c.SetTimeScale(ts)
}

// Delay returns the delay before the first cycle.
func (c *core) Delay() float64 { return c.delay }

// SetDelay changes the delay. Under a smooth-timed parent the start time
// moves with it.
func (c *core) SetDelay(d float64) {
	if c.parent != nil && c.parent.smoothChildTiming {
		c.SetStartTime(c.start + d - c.delay)
	}
	c.delay = d
}

// Duration returns the length of one cycle.
func (c *core) Duration() float64 {
	c.self.TotalDuration()
	return c.dur
}

// SetDuration changes the length of one cycle.
func (c *core) SetDuration(d float64) {
	if c.repeat > 0 {
		d += (d + c.rDelay) * float64(c.repeat)
	}
	c.self.SetTotalDuration(d)
}

// TotalDuration returns the length including repeats.
func (c *core) TotalDuration() float64 { return c.tDur }

// SetTotalDuration changes the cycle length so that the total matches d.
func (c *core) SetTotalDuration(d float64) {
	c.dirty = false
	if c.repeat < 0 {
		setDuration(c, d, false, false)
		return
	}
	setDuration(c, (d-float64(c.repeat)*c.rDelay)/float64(c.repeat+1), false, false)
}

// StartTime returns the start in parent time.
func (c *core) StartTime() float64 { return c.start }

// SetStartTime moves the animation within its parent, re-sorting it.
func (c *core) SetStartTime(t float64) {
	c.start = t
	tl, _ := c.rawParent().(*Timeline)
	if tl != nil && (tl.sort || c.parent == nil) {
		addToTimeline(tl, c.self, At(t-c.delay), false)
	}
}

// EndTime returns the end in parent time.
func (c *core) EndTime(includeRepeats bool) float64 {
	d := c.self.Duration()
	if includeRepeats {
		d = c.self.TotalDuration()
	}
	ts := math.Abs(c.ts)
	if ts == 0 {
		ts = 1
	}
	return c.start + d/ts
}

// Repeat returns the repeat count; -1 repeats forever.
func (c *core) Repeat() int { return c.repeat }

// SetRepeat changes the repeat count.
func (c *core) SetRepeat(n int) {
	c.repeat = n
	c.updateTotalDuration()
}

// RepeatDelay returns the pause between cycles.
func (c *core) RepeatDelay() float64 { return c.rDelay }

// SetRepeatDelay changes the pause between cycles.
func (c *core) SetRepeatDelay(d float64) {
	c.rDelay = d
	c.updateTotalDuration()
}

func (c *core) updateTotalDuration() {
	if tl, ok := c.self.(*Timeline); ok {
		uncache(tl, nil)
		return
	}
	setDuration(c, c.dur, false, false)
}

// Yoyo reports whether odd cycles run backward.
func (c *core) Yoyo() bool { return c.yoyo }

// SetYoyo toggles yoyo.
func (c *core) SetYoyo(yoyo bool) { c.yoyo = yoyo }

// IsActive reports whether the parent playhead is inside this animation and
// nothing above it is paused.
func (c *core) IsActive() bool {
	p := c.rawParent()
	if p == nil {
		return true
	}
	if c.ts == 0 || !c.initted || !p.IsActive() {
		return false
	}
	raw := p.RawTime(true)
	return raw >= c.start && raw < c.EndTime(true)-Epsilon
}

// State summarizes the playhead position.
func (c *core) State() State {
	switch {
	case c.ps:
		return StatePaused
	case !c.initted:
		return StateInitial
	case c.tTime >= c.tDur && (c.tDur > 0 || c.ratio == 1) && c.rts >= 0:
		return StateComplete
	case c.tTime <= 0 && c.rts < 0:
		return StateReverseComplete
	case c.tTime <= 0:
		return StateInitial
	case c.tTime >= c.tDur:
		return StateComplete
	default:
		return StateActive
	}
}

// Kill removes the animation from its parent. Callers holding it can still
// restart it.
func (c *core) Kill() { interrupt(c) }

// Invalidate forgets recorded start values so the next render samples the
// targets again.
func (c *core) Invalidate() {
	c.initted = false
	c.act = false
	c.zTime = -Epsilon
}

// interrupt detaches c and fires OnInterrupt when it had not finished.
func interrupt(c *core) {
	removeFromParent(c, false)
	if c.Progress() < 1 {
		c.fire(eventInterrupt)
	}
}

// removeFromParent detaches c. With onlyIfAutoRemove it only does so when
// the parent removes finished children.
func removeFromParent(c *core, onlyIfAutoRemove bool) {
	if c.parent != nil && (!onlyIfAutoRemove || c.parent.autoRemoveChildren) {
		c.parent.Remove(c.self)
	}
	c.act = false
}

type event uint8

const (
	eventStart event = iota
	eventUpdate
	eventComplete
	eventRepeat
	eventReverseComplete
	eventInterrupt
)

var eventOps = [...]string{
	eventStart:           "animation.OnStart",
	eventUpdate:          "animation.OnUpdate",
	eventComplete:        "animation.OnComplete",
	eventRepeat:          "animation.OnRepeat",
	eventReverseComplete: "animation.OnReverseComplete",
	eventInterrupt:       "animation.OnInterrupt",
}

func (c *core) handlers(ev event) (Callback, []any) {
	v := &c.vars
	switch ev {
	case eventStart:
		return v.OnStart, v.OnStartParams
	case eventUpdate:
		return v.OnUpdate, v.OnUpdateParams
	case eventComplete:
		return v.OnComplete, v.OnCompleteParams
	case eventRepeat:
		return v.OnRepeat, v.OnRepeatParams
	case eventReverseComplete:
		return v.OnReverseComplete, v.OnReverseCompleteParams
	case eventInterrupt:
		return v.OnInterrupt, v.OnInterruptParams
	}
	return nil, nil
}

// fire calls the callback for ev. A panicking callback is reported and the
// frame goes on.
func (c *core) fire(ev event) {
	cb, params := c.handlers(ev)
	if cb == nil {
		return
	}
	errors.Guard(c.engine.handler, eventOps[ev], func() {
		cb(c.self, params...)
	})
}

func (c *core) report(kind errors.Kind, op string, err error, prop string, target any) {
	w, ok := err.(*errors.Warning)
	if !ok {
		w = &errors.Warning{Op: op, Kind: kind, Err: err}
	}
	if w.ID == "" {
		w.ID = c.vars.ID
	}
	if w.Property == "" {
		w.Property = prop
	}
	if w.Target == nil {
		w.Target = target
	}
	errors.ReportTo(c.engine.handler, w)
}
