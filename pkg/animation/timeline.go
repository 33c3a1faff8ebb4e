package animation

import (
	"math"
	"sort"

	"github.com/go-drift/choreo/pkg/animation/internal/arena"
	"github.com/go-drift/choreo/pkg/errors"
)

// Timeline is a container that places child animations on a shared time
// axis. Children are kept sorted by start time; equal starts keep insertion
// order.
type Timeline struct {
	core

	children arena.List[node]
	labels   map[string]float64
	recent   node
	sort     bool
	root     bool
	ease     Ease

	smoothChildTiming  bool
	autoRemoveChildren bool
}

func newTimeline(e *Engine, vars Vars) *Timeline {
	tl := &Timeline{
		labels:             make(map[string]float64),
		sort:               true,
		ease:               LinearCurve,
		smoothChildTiming:  vars.SmoothChildTiming,
		autoRemoveChildren: vars.AutoRemoveChildren,
	}
	vars.Duration = 0
	tl.init(tl, e, vars)
	return tl
}

// Defaults returns the vars children created through the helpers inherit.
func (tl *Timeline) Defaults() *Vars { return tl.vars.Defaults }

// SmoothChildTiming reports whether moving a child's playhead shifts its
// start time instead of jumping.
func (tl *Timeline) SmoothChildTiming() bool { return tl.smoothChildTiming }

// SetSmoothChildTiming toggles smooth child timing.
func (tl *Timeline) SetSmoothChildTiming(v bool) { tl.smoothChildTiming = v }

// AutoRemoveChildren reports whether finished children are detached.
func (tl *Timeline) AutoRemoveChildren() bool { return tl.autoRemoveChildren }

// SetAutoRemoveChildren toggles removal of finished children.
func (tl *Timeline) SetAutoRemoveChildren(v bool) { tl.autoRemoveChildren = v }

// Add inserts child at pos. A child already held elsewhere moves here.
func (tl *Timeline) Add(child Animation, pos Position) {
	n, ok := child.(node)
	if !ok || n == node(tl) {
		return
	}
	addToTimeline(tl, n, pos, false)
}

// To creates a tween from the targets' current values to vars.Props and
// adds it at pos.
func (tl *Timeline) To(targets any, vars Vars, pos Position) *Tween {
	return newTween(tl.engine, targets, vars, kindTo, nil, tl, pos)
}

// From creates a tween from vars.Props to the targets' current values.
func (tl *Timeline) From(targets any, vars Vars, pos Position) *Tween {
	return newTween(tl.engine, targets, vars, kindFrom, nil, tl, pos)
}

// FromTo creates a tween from from to vars.Props.
func (tl *Timeline) FromTo(targets any, from Props, vars Vars, pos Position) *Tween {
	return newTween(tl.engine, targets, vars, kindFromTo, from, tl, pos)
}

// Set creates a zero-duration tween that applies vars.Props at pos.
func (tl *Timeline) Set(targets any, vars Vars, pos Position) *Tween {
	return newTween(tl.engine, targets, vars, kindSet, nil, tl, pos)
}

// Call schedules fn at pos. It fires moving forward and backward.
func (tl *Timeline) Call(fn Callback, pos Position, params ...any) *Tween {
	t := tl.engine.DelayedCall(0, fn, params...)
	addToTimeline(tl, t, pos, false)
	return t
}

// AddLabel records name at pos.
func (tl *Timeline) AddLabel(name string, pos Position) {
	tl.labels[name] = tl.resolve(pos, nil)
}

// RemoveLabel deletes name.
func (tl *Timeline) RemoveLabel(name string) {
	delete(tl.labels, name)
}

// LabelTime returns the time of a label.
func (tl *Timeline) LabelTime(name string) (float64, bool) {
	t, ok := tl.labels[name]
	return t, ok
}

// Labels returns a copy of the label table.
func (tl *Timeline) Labels() map[string]float64 {
	out := make(map[string]float64, len(tl.labels))
	for k, v := range tl.labels {
		out[k] = v
	}
	return out
}

// CurrentLabel returns the closest label at or before the playhead.
func (tl *Timeline) CurrentLabel() string {
	return tl.labelInDirection(tl.time+Epsilon, true)
}

// NextLabel returns the closest label after the playhead.
func (tl *Timeline) NextLabel() string {
	return tl.labelInDirection(tl.time, false)
}

// PreviousLabel returns the closest label before the playhead.
func (tl *Timeline) PreviousLabel() string {
	return tl.labelInDirection(tl.time, true)
}

func (tl *Timeline) labelInDirection(from float64, backward bool) string {
	best, label := bigNum, ""
	for name, at := range tl.labels {
		d := at - from
		if d == 0 || (d < 0) != backward {
			continue
		}
		d = math.Abs(d)
		if d < best || (d == best && name < label) {
			best, label = d, name
		}
	}
	return label
}

// Recent returns the most recently added child.
func (tl *Timeline) Recent() Animation {
	if tl.recent == nil {
		return nil
	}
	return tl.recent
}

// Remove detaches child if tl holds it.
func (tl *Timeline) Remove(child Animation) {
	c := child.base()
	if c.parent != tl {
		return
	}
	tl.children.Remove(c.h)
	c.h = arena.Handle{}
	c.parent = nil
	if tl.recent == c.self {
		tl.recent = nil
		if last, ok := tl.children.Get(tl.children.Back()); ok {
			tl.recent = last
		}
	}
	uncache(tl, nil)
}

// Clear removes every child and, with labels, every label.
func (tl *Timeline) Clear(labels bool) {
	for _, child := range tl.children.Values() {
		tl.Remove(child)
	}
	if tl.dp != nil {
		tl.time, tl.tTime, tl.pTime = 0, 0, 0
	}
	if labels {
		tl.labels = make(map[string]float64)
	}
	uncache(tl, nil)
}

// Children lists direct children, or all descendants with nested. tweens and
// timelines filter by kind.
func (tl *Timeline) Children(nested, tweens, timelines bool) []Animation {
	var out []Animation
	for _, child := range tl.children.Values() {
		switch c := child.(type) {
		case *Tween:
			if tweens {
				out = append(out, c)
			}
		case *Timeline:
			if timelines {
				out = append(out, c)
			}
			if nested {
				out = append(out, c.Children(true, tweens, timelines)...)
			}
		}
	}
	return out
}

// GetByID finds a descendant by id.
func (tl *Timeline) GetByID(id string) Animation {
	for _, child := range tl.children.Values() {
		if child.ID() == id {
			return child
		}
		if sub, ok := child.(*Timeline); ok {
			if found := sub.GetByID(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// ShiftChildren moves every child starting at or after ignoreBefore by
// amount, and the labels too when adjustLabels is set.
func (tl *Timeline) ShiftChildren(amount float64, adjustLabels bool, ignoreBefore float64) {
	for _, child := range tl.children.Values() {
		c := child.base()
		if c.start >= ignoreBefore {
			c.start += amount
			c.end += amount
		}
	}
	if adjustLabels {
		for name, at := range tl.labels {
			if at >= ignoreBefore {
				tl.labels[name] = at + amount
			}
		}
	}
	uncache(tl, nil)
}

// TotalDuration returns the end of the last child including repeats,
// recounting lazily after structural changes. Children starting before zero
// shift everything so all starts are non-negative.
func (tl *Timeline) TotalDuration() float64 {
	if !tl.dirty {
		return tl.tDur
	}
	maxEnd, prevStart := 0.0, bigNum
	for h := tl.children.Back(); !h.IsZero(); {
		child, _ := tl.children.Get(h)
		prev := tl.children.Prev(h)
		c := child.base()
		if c.dirty {
			child.TotalDuration()
		}
		start := c.start
		if start > prevStart && tl.sort && c.ts != 0 && tl.lock == 0 {
			tl.lock = 1
			addToTimeline(tl, child, At(start-c.delay), true)
			tl.lock = 0
		} else {
			prevStart = start
		}
		if start < 0 && c.ts != 0 {
			maxEnd -= start
			if (tl.parent == nil && tl.dp == nil) || (tl.parent != nil && tl.parent.smoothChildTiming) {
				if tl.ts != 0 {
					tl.start += start / tl.ts
				}
				tl.time -= start
				tl.tTime -= start
			}
			tl.ShiftChildren(-start, false, math.Inf(-1))
			prevStart = 0
		}
		if c.end > maxEnd && c.ts != 0 {
			maxEnd = c.end
		}
		h = prev
	}
	d := maxEnd
	if tl.root && tl.time > maxEnd {
		d = tl.time
	}
	setDuration(&tl.core, d, true, true)
	tl.dirty = false
	return tl.tDur
}

// SetTotalDuration scales the timescale so the timeline lasts d.
func (tl *Timeline) SetTotalDuration(d float64) {
	if d == 0 {
		return
	}
	total := tl.TotalDuration()
	if tl.repeat < 0 {
		total = tl.Duration()
	}
	if tl.Reversed() {
		d = -d
	}
	tl.SetTimeScale(total / d)
}

// Invalidate invalidates every child as well.
func (tl *Timeline) Invalidate() {
	for _, child := range tl.children.Values() {
		child.Invalidate()
	}
	tl.core.Invalidate()
}

// Revert restores the targets of every descendant tween and kills tl.
func (tl *Timeline) Revert() {
	tl.revertChildren()
	tl.Kill()
}

func (tl *Timeline) revertChildren() {
	vals := tl.children.Values()
	for i := len(vals) - 1; i >= 0; i-- {
		switch c := vals[i].(type) {
		case *Tween:
			c.restore()
		case *Timeline:
			c.revertChildren()
		}
	}
}

// TweenTo creates a tween on the engine root that scrubs tl's own time to
// pos. tl is paused when the driver starts. A zero vars.Duration derives the
// duration from the distance at tl's timescale.
func (tl *Timeline) TweenTo(pos Position, vars Vars) *Tween {
	return tl.tweenTo(tl.resolve(pos, nil), nil, vars)
}

// TweenFromTo is TweenTo starting from from instead of the current time.
func (tl *Timeline) TweenFromTo(from, to Position, vars Vars) *Tween {
	start := tl.resolve(from, nil)
	return tl.tweenTo(tl.resolve(to, nil), &start, vars)
}

func (tl *Timeline) tweenTo(endTime float64, startAt *float64, vars Vars) *Tween {
	span := func() float64 {
		from := tl.time
		if startAt != nil {
			from = *startAt
		}
		ts := math.Abs(tl.TimeScale())
		if ts == 0 {
			ts = 1
		}
		return math.Abs(endTime-from) / ts
	}
	explicit := vars.Duration
	if vars.Ease == "" && vars.EaseFunc == nil {
		vars.Ease = "none"
	}
	if vars.ImmediateRender == ToggleDefault {
		vars.ImmediateRender = Off
	}
	vars.Overwrite = OverwriteAuto
	vars.Props = Props{"time": endTime}
	vars.Duration = explicit
	if vars.Duration == 0 {
		vars.Duration = span()
		if vars.Duration == 0 {
			vars.Duration = Epsilon
		}
	}

	var t *Tween
	initted := false
	userStart, userParams := vars.OnStart, vars.OnStartParams
	vars.OnStartParams = nil
	vars.OnStart = func(Animation, ...any) {
		tl.Pause()
		if !initted {
			d := explicit
			if d == 0 {
				d = span()
			}
			if t.dur != roundPrecise(d) {
				setDuration(&t.core, d, false, true)
				t.render(t.time, true, true)
			}
			initted = true
		}
		if userStart != nil {
			userStart(t, userParams...)
		}
	}

	if startAt != nil {
		t = newTween(tl.engine, tl, vars, kindFromTo, Props{"time": *startAt}, nil, Position{})
	} else {
		t = newTween(tl.engine, tl, vars, kindTo, nil, nil, Position{})
	}
	return t
}

// timelineTarget exposes a timeline's time as the "time" property, which is
// what TweenTo animates.
type timelineTarget struct{ tl *Timeline }

func (t timelineTarget) Get(prop string) (Value, bool) {
	switch prop {
	case "time":
		return NumberValue(t.tl.Time()), true
	case "progress":
		return NumberValue(t.tl.Progress()), true
	case "totalTime":
		return NumberValue(t.tl.TotalTime()), true
	case "timeScale":
		return NumberValue(t.tl.TimeScale()), true
	}
	return Value{}, false
}

func (t timelineTarget) Set(prop string, v Value) {
	switch prop {
	case "time":
		t.tl.SetTime(v.Number(), false)
	case "progress":
		t.tl.SetProgress(v.Number(), false)
	case "totalTime":
		t.tl.SetTotalTime(v.Number(), false)
	case "timeScale":
		t.tl.SetTimeScale(v.Number())
	}
}

// resolve turns pos into a local time. Unknown labels are created at the end.
func (tl *Timeline) resolve(pos Position, child Animation) float64 {
	if pos.err != nil {
		tl.report(errors.KindPosition, "animation.Timeline.Add", pos.err, "", nil)
		pos = Position{}
	}
	if pos.Kind == PosAbsolute {
		return pos.Offset
	}
	d := tl.Duration()
	clipped := d
	if d >= bigNum {
		clipped = 0
		if tl.recent != nil {
			clipped = tl.recent.EndTime(false)
		}
	}
	percentOf := func(a Animation) float64 {
		if a == nil {
			return 0
		}
		return pos.Offset * a.TotalDuration() / 100
	}
	offset := func(anchor Animation) float64 {
		if !pos.Percent {
			return pos.Offset
		}
		if pos.OfChild {
			return percentOf(child)
		}
		return percentOf(anchor)
	}

	switch pos.Kind {
	case PosRelativeToEnd:
		return clipped + offset(child)
	case PosLabel:
		at, ok := tl.labels[pos.Label]
		if !ok {
			at = clipped
			tl.labels[pos.Label] = at
		}
		return at + offset(child)
	case PosPrevStart, PosPrevEnd:
		if tl.recent == nil {
			return offset(nil)
		}
		r := tl.recent
		anchor := r.StartTime()
		if pos.Kind == PosPrevEnd {
			anchor = r.EndTime(r.Repeat() >= 0)
		}
		return anchor + offset(r)
	}
	return clipped
}

// addToTimeline links child into tl at pos, sorted by start time.
func addToTimeline(tl *Timeline, child node, pos Position, skipChecks bool) {
	c := child.base()
	if c.parent != nil {
		removeFromParent(c, false)
	}
	var at float64
	switch {
	case pos.Kind == PosAbsolute:
		at = pos.Offset
	case tl.root && pos.Kind == PosEnd && pos.err == nil:
		at = tl.time
	default:
		at = tl.resolve(pos, child)
	}
	c.start = roundPrecise(at + c.delay)
	span := 0.0
	if ts := math.Abs(child.TimeScale()); ts != 0 {
		span = child.TotalDuration() / ts
	}
	c.end = roundPrecise(c.start + span)

	prev := tl.children.Back()
	if tl.sort {
		for !prev.IsZero() {
			p, _ := tl.children.Get(prev)
			if p.base().start <= c.start {
				break
			}
			prev = tl.children.Prev(prev)
		}
	}
	if prev.IsZero() {
		c.h = tl.children.PushFront(child)
	} else {
		c.h = tl.children.InsertAfter(prev, child)
	}
	c.parent = tl
	c.dp = tl
	c.nested = false
	tl.recent = child

	if !skipChecks {
		postAddChecks(tl, c)
	}
	if tl.ts < 0 {
		alignPlayhead(&tl.core, tl.tTime)
	}
}

// postAddChecks renders a child that lands behind the playhead and extends
// an already finished timeline to cover it.
func postAddChecks(tl *Timeline, c *core) {
	_, isTimeline := c.self.(*Timeline)
	if c.time != 0 || (c.dur == 0 && c.initted) || (c.start < tl.time && (c.dur != 0 || !isTimeline)) {
		t := parentToChildTotalTime(tl.RawTime(false), c)
		if c.dur == 0 || clamp(0, c.self.TotalDuration(), t)-c.tTime > Epsilon {
			c.self.render(t, true, false)
		}
	}
	uncache(tl, c)
	if tl.dp != nil && tl.initted && tl.time >= tl.dur && tl.ts != 0 {
		old := tl.dur
		if old < tl.Duration() {
			for x := tl; x != nil && x.dp != nil; {
				if x.RawTime(false) >= 0 {
					x.SetTotalTime(x.tTime, false)
				}
				next, ok := x.dp.(*Timeline)
				if !ok {
					break
				}
				x = next
			}
		}
		tl.zTime = -Epsilon
	}
}

func (tl *Timeline) renderChild(child node, at float64, suppressEvents, force bool) {
	c := child.base()
	if c.ts > 0 {
		child.render((at-c.start)*c.ts, suppressEvents, force)
		return
	}
	child.render(c.totalDur()+(at-c.start)*c.ts, suppressEvents, force)
}

func (tl *Timeline) render(totalTime float64, suppressEvents, force bool) {
	prevTime := tl.time
	tDur := tl.totalDur()
	dur := tl.dur
	tTime := 0.0
	if totalTime > 0 {
		tTime = roundPrecise(totalTime)
	}
	crossingStart := (tl.zTime < 0) != (totalTime < 0) && (tl.initted || dur == 0)
	if !tl.root && tTime > tDur && totalTime >= 0 {
		tTime = tDur
	}
	if tTime == tl.tTime && !force && !crossingStart {
		return
	}

	if prevTime != tl.time && dur != 0 {
		tTime += tl.time - prevTime
		totalTime += tl.time - prevTime
	}
	time := tTime
	prevStart := tl.start
	timeScale := tl.ts
	prevPaused := timeScale == 0
	iteration := 0
	if crossingStart {
		if dur == 0 {
			prevTime = tl.zTime
		}
		if totalTime != 0 || !suppressEvents {
			tl.zTime = totalTime
		}
	}

	if tl.repeat != 0 {
		yoyo := tl.yoyo
		cycle := dur + tl.rDelay
		time = roundPrecise(math.Mod(tTime, cycle))
		if tTime == tDur {
			iteration = tl.repeat
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
		prevIteration := animationCycle(tl.tTime, cycle)
		if prevTime == 0 && tl.tTime != 0 && prevIteration != iteration &&
			tl.tTime-float64(prevIteration)*cycle-tl.dur <= 0 {
			prevIteration = iteration
		}
		isYoyo := false
		if yoyo && iteration&1 == 1 {
			time = dur - time
			isYoyo = true
		}
		if iteration != prevIteration && tl.lock == 0 {
			rewinding := yoyo && prevIteration&1 == 1
			doesWrap := rewinding == (yoyo && iteration&1 == 1)
			if iteration < prevIteration {
				rewinding = !rewinding
			}
			switch {
			case rewinding:
				prevTime = 0
			case math.Mod(tTime, dur) != 0:
				prevTime = dur
			default:
				prevTime = tTime
			}
			tl.lock = 1
			edge := prevTime
			if edge == 0 && !isYoyo {
				edge = roundPrecise(float64(iteration) * cycle)
			}
			tl.render(edge, suppressEvents, dur == 0)
			tl.lock = 0
			tl.tTime = tTime
			if !suppressEvents && tl.parent != nil {
				tl.fire(eventRepeat)
			}
			if tl.vars.RepeatRefresh && !isYoyo {
				tl.Invalidate()
				tl.lock = 1
			}
			if (prevTime != 0 && prevTime != tl.time) || prevPaused != (tl.ts == 0) ||
				(tl.vars.OnRepeat != nil && tl.parent == nil && !tl.act) {
				return
			}
			dur = tl.dur
			tDur = tl.tDur
			if doesWrap {
				tl.lock = 2
				if rewinding {
					prevTime = dur
				} else {
					prevTime = -0.0001
				}
				tl.render(prevTime, true, false)
				if tl.vars.RepeatRefresh && !isYoyo {
					tl.Invalidate()
				}
			}
			tl.lock = 0
			if tl.ts == 0 && !prevPaused {
				return
			}
		}
	}

	tl.tTime = tTime
	tl.time = time
	tl.act = timeScale == 0
	if !tl.initted {
		tl.initted = true
		tl.zTime = totalTime
		prevTime = 0
	}
	if prevTime == 0 && time != 0 && !suppressEvents && iteration == 0 {
		tl.fire(eventStart)
		if tl.tTime != tTime {
			return
		}
	}

	if time >= prevTime && totalTime >= 0 {
		var buf [8]arena.Handle
		snap := tl.handles(buf[:0], true)
		for h := tl.children.Front(); !h.IsZero(); {
			child, ok := tl.children.Get(h)
			if !ok {
				break
			}
			next := tl.children.Next(h)
			c := child.base()
			if (c.act || time >= c.start) && c.ts != 0 {
				tl.renderChild(child, time, suppressEvents, force)
				if time != tl.time || (tl.ts == 0 && !prevPaused) {
					if !next.IsZero() {
						tl.zTime = -Epsilon
						tTime += tl.zTime
					}
					break
				}
			}
			h = tl.resume(h, next, snap, true)
		}
	} else {
		adjusted := time
		if totalTime < 0 {
			adjusted = totalTime
		}
		var buf [8]arena.Handle
		snap := tl.handles(buf[:0], false)
		for h := tl.children.Back(); !h.IsZero(); {
			child, ok := tl.children.Get(h)
			if !ok {
				break
			}
			prev := tl.children.Prev(h)
			c := child.base()
			if (c.act || adjusted <= c.end) && c.ts != 0 {
				tl.renderChild(child, adjusted, suppressEvents, force)
				if time != tl.time || (tl.ts == 0 && !prevPaused) {
					if !prev.IsZero() {
						if adjusted != 0 {
							tl.zTime = -Epsilon
						} else {
							tl.zTime = Epsilon
						}
						tTime += tl.zTime
					}
					break
				}
			}
			h = tl.resume(h, prev, snap, false)
		}
	}

	if !suppressEvents {
		tl.fire(eventUpdate)
	}
	if (tTime == tDur && tl.tTime >= tl.TotalDuration()) || (tTime == 0 && prevTime != 0) {
		if (prevStart == tl.start || math.Abs(timeScale) != math.Abs(tl.ts)) && tl.lock == 0 {
			if (totalTime != 0 || dur == 0) && ((tTime == tDur && tl.ts > 0) || (tTime == 0 && tl.ts < 0)) {
				removeFromParent(&tl.core, true)
			}
			if !suppressEvents && !(totalTime < 0 && prevTime == 0) && (tTime != 0 || prevTime != 0 || tDur == 0) {
				if tTime == tDur && totalTime >= 0 {
					tl.fire(eventComplete)
				} else {
					tl.fire(eventReverseComplete)
				}
			}
		}
	}
}

// handles appends the child handles to dst in walk order.
func (tl *Timeline) handles(dst []arena.Handle, forward bool) []arena.Handle {
	if forward {
		for h := tl.children.Front(); !h.IsZero(); h = tl.children.Next(h) {
			dst = append(dst, h)
		}
		return dst
	}
	for h := tl.children.Back(); !h.IsZero(); h = tl.children.Prev(h) {
		dst = append(dst, h)
	}
	return dst
}

// resume picks the child to render after h. next is the neighbour h had
// before it rendered; callbacks may have removed it since. A stale next is
// replaced by h's current neighbour, or when h is gone too, by the first
// live handle after h in snap.
func (tl *Timeline) resume(h, next arena.Handle, snap []arena.Handle, forward bool) arena.Handle {
	if next.IsZero() || tl.children.Valid(next) {
		return next
	}
	if tl.children.Valid(h) {
		if forward {
			return tl.children.Next(h)
		}
		return tl.children.Prev(h)
	}
	for i, s := range snap {
		if s != h {
			continue
		}
		for _, r := range snap[i+1:] {
			if tl.children.Valid(r) {
				return r
			}
		}
		break
	}
	return arena.Handle{}
}

// sortedKeys returns the keys of m in order so property lists build
// deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
