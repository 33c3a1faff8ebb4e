package animation

import (
	"fmt"
	"math"

	"github.com/go-drift/choreo/pkg/animation/internal/arena"
	"github.com/go-drift/choreo/pkg/errors"
)

type tweenKind uint8

const (
	kindTo tweenKind = iota
	kindFrom
	kindFromTo
	kindSet
	kindCall
)

// killSet records properties killed before the tween initialized, so they
// are dropped again once its property list is built.
type killSet struct {
	all   bool
	props map[string]bool
}

// Tween drives properties of one or more targets from a start to an end value.
// Property interpolations are built lazily on the first render.
type Tween struct {
	core

	kind      tweenKind
	targets   []any
	bound     []Target
	fromProps Props
	ease      Ease
	overwrite Overwrite

	pts    arena.List[*propTween]
	lookup []map[string]arena.Handle
	op     []*killSet

	// timeline holds the children of a staggered or keyframed tween.
	timeline *Timeline
}

func newTween(e *Engine, targets any, vars Vars, kind tweenKind, from Props, parent *Timeline, pos Position) *Tween {
	if parent == nil {
		parent = e.root
	}
	keyframed := len(vars.Keyframes) > 0
	userDuration, userEase, userEaseFunc := vars.Duration, vars.Ease, vars.EaseFunc
	vars = inheritDefaults(vars, parent)
	if keyframed {
		vars.Duration, vars.Ease, vars.EaseFunc = userDuration, userEase, userEaseFunc
	}
	switch {
	case kind == kindSet || kind == kindCall:
		vars.Duration = 0
	case vars.Duration == 0 && !keyframed:
		vars.Duration = DefaultDuration
	}

	t := &Tween{kind: kind, fromProps: from}
	t.init(t, e, vars)
	t.overwrite = vars.Overwrite
	if t.overwrite == OverwriteDefault {
		t.overwrite = OverwriteAuto
	}

	if kind != kindCall {
		t.targets = toTargets(targets)
		t.bound = make([]Target, len(t.targets))
		for i, raw := range t.targets {
			tgt, ok := e.adapt(raw)
			if !ok {
				if e.nullTargetWarn {
					t.report(errors.KindMissingTarget, "animation.Tween",
						fmt.Errorf("target %T not found or not animatable", raw), "", raw)
				}
				continue
			}
			t.bound[i] = tgt
		}
		if len(t.targets) == 0 && e.nullTargetWarn {
			t.report(errors.KindMissingTarget, "animation.Tween", fmt.Errorf("no targets"), "", nil)
		}
	}

	if (vars.Stagger != nil && len(t.targets) > 1) || keyframed {
		t.buildNested(parent)
	}

	if t.overwrite == OverwriteAll && len(t.targets) > 0 {
		prev := e.overwriting
		e.overwriting = t
		e.root.killTweensOf(t.targets, nil, killAny, 0)
		e.overwriting = prev
	}

	addToTimeline(parent, t, pos, false)
	if vars.Reversed {
		t.Reverse()
	}
	if vars.Paused {
		t.SetPaused(true)
	}

	immediate := vars.ImmediateRender.enabled(kind == kindFrom || kind == kindFromTo)
	if immediate || (t.dur == 0 && !keyframed && vars.ImmediateRender != Off &&
		t.start == roundPrecise(parent.time) && noPausedAncestors(t) && !parent.nested) {
		t.tTime = -Epsilon
		t.render(math.Max(0, -t.delay), false, false)
	}
	return t
}

// inheritDefaults fills vars from the Defaults of every ancestor, nearest
// first, ending with the engine defaults on the root.
func inheritDefaults(vars Vars, parent *Timeline) Vars {
	if parent == nil {
		return vars
	}
	for p := node(parent); p != nil; p = p.base().up() {
		vars = vars.inherit(p.base().vars.Defaults)
	}
	return vars
}

func noPausedAncestors(a node) bool {
	for ; a != nil; a = a.base().up() {
		if a.base().ts == 0 {
			return false
		}
	}
	return true
}

// buildNested creates the nested timeline of a staggered or keyframed tween.
func (t *Tween) buildNested(parent *Timeline) {
	e := t.engine
	defaults := t.vars.Defaults
	if len(t.vars.Keyframes) > 0 {
		d := Vars{Ease: "none"}
		if defaults != nil {
			d = *defaults
			if d.Ease == "" && d.EaseFunc == nil {
				d.Ease = "none"
			}
		}
		defaults = &d
	}
	tl := newTimeline(e, Vars{Defaults: defaults})
	tl.nested = true
	tl.dp = t
	t.timeline = tl

	if s := t.vars.Stagger; s != nil && len(t.targets) > 1 {
		child := t.vars.withoutChildConfig()
		child.Repeat, child.RepeatDelay, child.Yoyo = s.Repeat, s.RepeatDelay, s.Yoyo
		child.Overwrite = OverwriteNone
		var ease Ease
		if s.Ease != "" {
			ease = e.easeFor(nil, s.Ease, &t.core)
		}
		offsets := s.offsets(len(t.targets), ease)
		for i, target := range t.targets {
			newTween(e, target, child, t.kind, t.fromProps, tl, At(offsets[i]))
		}
		tl.ease = LinearCurve
		if d := tl.Duration(); d != 0 {
			t.SetDuration(d)
		} else {
			t.timeline = nil
		}
		return
	}

	name := t.vars.Ease
	if name == "" && t.vars.EaseFunc == nil {
		name = "none"
	}
	tl.ease = e.easeFor(t.vars.EaseFunc, name, &t.core)
	for _, kf := range t.vars.Keyframes {
		kf.Overwrite = OverwriteNone
		if len(kf.Props) == 0 && kf.Duration == 0 {
			continue
		}
		newTween(e, t.targets, kf, kindTo, nil, tl, Pos(">"))
	}
	if t.vars.Duration == 0 {
		t.SetDuration(tl.Duration())
	}
}

// fullTargets is the target list function-based values index into. Children
// of a stagger see the whole list.
func (t *Tween) fullTargets() []any {
	if tl, ok := t.dp.(*Timeline); ok && tl.nested {
		if owner, ok := tl.dp.(*Tween); ok {
			return owner.targets
		}
	}
	return t.targets
}

func indexOfTarget(list []any, target any) int {
	for i, x := range list {
		if sameTarget(x, target) {
			return i
		}
	}
	return 0
}

// Targets returns the tween's targets.
func (t *Tween) Targets() []any {
	return append([]any(nil), t.targets...)
}

// Ratio returns the eased progress of the last render.
func (t *Tween) Ratio() float64 { return t.ratio }

// Nested returns the internal timeline of a staggered or keyframed tween.
func (t *Tween) Nested() *Timeline { return t.timeline }

// Animates reports whether the tween currently drives prop on target.
func (t *Tween) Animates(target any, prop string) bool {
	if t.timeline != nil {
		for _, child := range t.timeline.Children(true, true, false) {
			if child.(*Tween).Animates(target, prop) {
				return true
			}
		}
		return false
	}
	for i, raw := range t.targets {
		if !sameTarget(raw, target) || i >= len(t.lookup) {
			continue
		}
		if _, ok := t.lookup[i][prop]; ok {
			return true
		}
	}
	return false
}

// PropertyCount returns the number of live property interpolations.
func (t *Tween) PropertyCount() int {
	if t.timeline != nil {
		n := 0
		for _, child := range t.timeline.Children(true, true, false) {
			n += child.(*Tween).PropertyCount()
		}
		return n
	}
	return t.pts.Len()
}

// Invalidate drops the recorded start values; the next render samples the
// targets again.
func (t *Tween) Invalidate() {
	t.pts.Clear()
	t.lookup = nil
	t.op = nil
	t.ratio = 0
	if t.timeline != nil {
		t.timeline.Invalidate()
	}
	t.core.Invalidate()
}

// Revert restores every property to its value before the tween first
// rendered and kills the tween.
func (t *Tween) Revert() {
	t.restore()
	t.Kill()
}

func (t *Tween) restore() {
	if t.timeline != nil {
		t.timeline.revertChildren()
		return
	}
	vals := t.pts.Values()
	for i := len(vals) - 1; i >= 0; i-- {
		vals[i].restore()
	}
}

// resolve handles positions on a tween, which has no labels.
func (t *Tween) resolve(pos Position, _ Animation) float64 {
	if pos.err != nil {
		t.report(errors.KindPosition, "animation.Tween.Seek", pos.err, "", nil)
		return t.dur
	}
	switch pos.Kind {
	case PosAbsolute:
		return pos.Offset
	case PosEnd:
		return t.dur
	case PosRelativeToEnd:
		if pos.Percent {
			return t.dur + pos.Offset*t.tDur/100
		}
		return t.dur + pos.Offset
	}
	t.report(errors.KindPosition, "animation.Tween.Seek",
		fmt.Errorf("position %q needs a timeline", pos), "", nil)
	return t.dur
}

// initTween builds the property list and resolves overwrites. It reports
// false when the tween was overwritten away.
func (t *Tween) initTween(time float64) bool {
	e := t.engine
	if t.timeline != nil {
		t.ease = LinearCurve
	} else {
		t.ease = e.easeFor(t.vars.EaseFunc, t.vars.Ease, &t.core)
	}
	overwritten := false

	switch {
	case t.timeline == nil:
		t.pts.Clear()
		t.lookup = make([]map[string]arena.Handle, len(t.targets))
		props := sortedKeys(t.vars.Props)
		for i, raw := range t.targets {
			lookup := make(map[string]arena.Handle, len(props))
			t.lookup[i] = lookup
			tgt := t.bound[i]
			if tgt == nil {
				continue
			}
			for _, p := range props {
				fromRaw, hasFrom := t.fromProps[p]
				if pt := t.newPropTween(i, raw, tgt, p, t.vars.Props[p], fromRaw, hasFrom); pt != nil {
					lookup[p] = t.pts.PushBack(pt)
				}
			}
			if i < len(t.op) && t.op[i] != nil {
				ks := t.op[i]
				var names []string
				if !ks.all {
					names = sortedKeys(ks.props)
				}
				t.kill([]any{raw}, names)
			}
			if t.overwrite == OverwriteAuto && t.pts.Len() > 0 && len(lookup) > 0 {
				prev := e.overwriting
				e.overwriting = t
				e.root.killTweensOf([]any{raw}, sortedKeys(lookup), killAtTime, t.GlobalTime(time))
				overwritten = overwritten || t.parent == nil
				e.overwriting = prev
			}
		}
	case t.overwrite == OverwriteAuto && len(t.vars.Keyframes) == 0:
		prev := e.overwriting
		e.overwriting = t
		e.root.killTweensOf(t.targets, sortedKeys(t.vars.Props), killAtTime, t.GlobalTime(time))
		overwritten = t.parent == nil
		e.overwriting = prev
	}

	t.initted = (t.op == nil || t.pts.Len() > 0) && !overwritten
	if len(t.vars.Keyframes) > 0 && time <= 0 && t.timeline != nil {
		t.timeline.render(bigNum, true, true)
	}
	return t.initted
}

func (t *Tween) render(totalTime float64, suppressEvents, force bool) {
	prevTime := t.time
	tDur, dur := t.tDur, t.dur
	negative := totalTime < 0
	tTime := totalTime
	switch {
	case totalTime > tDur-Epsilon && !negative:
		tTime = tDur
	case totalTime < Epsilon:
		tTime = 0
	}

	if dur == 0 {
		t.renderZeroDuration(totalTime, suppressEvents, force)
		return
	}
	if tTime == t.tTime && totalTime != 0 && !force && (t.initted || t.tTime == 0) {
		return
	}

	time := tTime
	iteration, prevIteration := 0, 0
	isYoyo := false
	if t.repeat != 0 {
		cycle := dur + t.rDelay
		time = roundPrecise(math.Mod(tTime, cycle))
		if tTime == tDur {
			iteration = t.repeat
			time = dur
		} else {
			exact := roundPrecise(tTime / cycle)
			iteration = int(exact)
			if iteration != 0 && float64(iteration) == exact {
				time = dur
				iteration--
			}
			if time > dur {
				time = dur
			}
		}
		isYoyo = t.yoyo && iteration&1 == 1
		if isYoyo {
			time = dur - time
		}
		prevIteration = animationCycle(t.tTime, cycle)
		if time == prevTime && !force && t.initted && iteration == prevIteration {
			t.tTime = tTime
			return
		}
		if iteration != prevIteration && t.vars.RepeatRefresh && !isYoyo && t.lock == 0 && time != cycle && t.initted {
			t.lock = 1
			force = true
			t.render(roundPrecise(cycle*float64(iteration)), true, false)
			t.Invalidate()
			t.lock = 0
		}
	}

	if !t.initted {
		at := time
		if negative {
			at = totalTime
		}
		if !t.initTween(at) {
			t.tTime = 0
			return
		}
		if prevTime != t.time && !(force && t.vars.RepeatRefresh && iteration != prevIteration) {
			return
		}
		if dur != t.dur {
			t.render(totalTime, suppressEvents, force)
			return
		}
	}

	t.tTime = tTime
	t.time = time
	if !t.act && t.ts != 0 {
		t.act = true
	}
	t.ratio = t.easeAt(time / dur)

	if time != 0 && prevTime == 0 && !suppressEvents && iteration == 0 {
		t.fire(eventStart)
		if t.tTime != tTime {
			return
		}
	}

	t.renderProps(t.ratio)
	if tl := t.timeline; tl != nil {
		at := totalTime
		if !negative {
			at = tl.dur * tl.ease(time/t.dur)
		}
		tl.render(at, suppressEvents, force)
	}
	if !suppressEvents {
		t.fire(eventUpdate)
	}
	if t.repeat != 0 && iteration != prevIteration && !suppressEvents && t.parent != nil {
		t.fire(eventRepeat)
	}
	if (tTime == t.tDur || tTime == 0) && t.tTime == tTime {
		if (totalTime != 0 || dur == 0) && ((tTime == t.tDur && t.ts > 0) || (tTime == 0 && t.ts < 0)) {
			removeFromParent(&t.core, true)
		}
		if !suppressEvents && !(negative && prevTime == 0) && (tTime != 0 || prevTime != 0 || isYoyo) {
			if tTime == tDur {
				t.fire(eventComplete)
			} else {
				t.fire(eventReverseComplete)
			}
		}
	}
}

// easeAt maps linear progress through the ease. The edges are exact so
// discrete values switch precisely at the end.
func (t *Tween) easeAt(p float64) float64 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	case t.ease == nil:
		return p
	}
	return t.ease(p)
}

func (t *Tween) renderProps(ratio float64) {
	for h := t.pts.Front(); !h.IsZero(); h = t.pts.Next(h) {
		pt, _ := t.pts.Get(h)
		pt.render(ratio)
	}
}

// renderZeroDuration handles tweens without duration, which jump between
// their start and end state depending on the direction of travel.
func (t *Tween) renderZeroDuration(totalTime float64, suppressEvents, force bool) {
	prevRatio := t.ratio
	ratio := 1.0
	if totalTime < 0 || (totalTime == 0 && ((t.start == 0 && parentPlayheadBeforeStart(t.parent)) ||
		t.ts < 0 || (t.dp != nil && t.dp.base().ts < 0))) {
		ratio = 0
	}
	tTime := 0.0
	if t.rDelay != 0 && t.repeat != 0 {
		tTime = clamp(0, t.tDur, totalTime)
		iteration := animationCycle(tTime, t.rDelay)
		if t.yoyo && iteration&1 == 1 {
			ratio = 1 - ratio
		}
		if iteration != animationCycle(t.tTime, t.rDelay) {
			prevRatio = 1 - ratio
			if t.vars.RepeatRefresh && t.initted {
				t.Invalidate()
			}
		}
	}

	if ratio == prevRatio && !force && t.zTime != Epsilon && !(totalTime == 0 && t.zTime != 0) {
		if t.zTime == 0 {
			t.zTime = totalTime
		}
		return
	}
	if !t.initted && !t.initTween(totalTime) {
		return
	}
	prevZ := t.zTime
	switch {
	case totalTime != 0:
		t.zTime = totalTime
	case suppressEvents:
		t.zTime = Epsilon
	default:
		t.zTime = 0
	}
	if !suppressEvents {
		suppressEvents = totalTime != 0 && prevZ == 0
	}
	t.ratio = ratio
	t.time = 0
	t.tTime = tTime
	t.renderProps(ratio)
	if tl := t.timeline; tl != nil {
		tl.render(ratio*tl.dur, suppressEvents, true)
	}
	if !suppressEvents {
		t.fire(eventUpdate)
	}
	if tTime != 0 && t.repeat != 0 && !suppressEvents && t.parent != nil {
		t.fire(eventRepeat)
	}
	if (totalTime >= t.tDur || totalTime < 0) && t.ratio == ratio {
		if ratio != 0 {
			removeFromParent(&t.core, true)
		}
		if !suppressEvents {
			if ratio != 0 {
				t.fire(eventComplete)
			} else {
				t.fire(eventReverseComplete)
			}
		}
	}
}

func parentPlayheadBeforeStart(tl *Timeline) bool {
	for ; tl != nil; tl = tl.parent {
		if tl.ts == 0 || !tl.initted || tl.lock != 0 {
			return false
		}
		if tl.RawTime(false) < 0 {
			return true
		}
	}
	return false
}
