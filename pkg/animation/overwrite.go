package animation

import "github.com/go-drift/choreo/pkg/animation/internal/arena"

type killMode uint8

const (
	// killAny matches every tween of the targets.
	killAny killMode = iota
	// killActive matches tweens whose playhead is inside them.
	killActive
	// killAtTime matches initialized tweens spanning a global time.
	killAtTime
)

// GetTweensOf returns the tweens below tl animating any of targets. With
// onlyActive only tweens currently playing are returned.
func (tl *Timeline) GetTweensOf(targets any, onlyActive bool) []*Tween {
	mode := killAny
	if onlyActive {
		mode = killActive
	}
	return tl.tweensOf(toTargets(targets), mode, 0)
}

func (tl *Timeline) tweensOf(targets []any, mode killMode, at float64) []*Tween {
	var out []*Tween
	for h := tl.children.Front(); !h.IsZero(); h = tl.children.Next(h) {
		child, _ := tl.children.Get(h)
		switch c := child.(type) {
		case *Tween:
			if c.matches(targets, mode, at) {
				out = append(out, c)
			}
		case *Timeline:
			out = append(out, c.tweensOf(targets, mode, at)...)
		}
	}
	return out
}

func (t *Tween) matches(targets []any, mode killMode, at float64) bool {
	if !containsAnyTarget(t.targets, targets) {
		return false
	}
	switch mode {
	case killActive:
		return t.IsActive()
	case killAtTime:
		if o := t.engine.overwriting; o != nil && (!t.initted || t.ts == 0) {
			return false
		}
		return t.GlobalTime(0) <= at && t.GlobalTime(t.TotalDuration()) > at
	}
	return true
}

// KillTweensOf kills the given properties of every tween of targets below
// tl. With no props whole tweens are killed.
func (tl *Timeline) KillTweensOf(targets any, props ...string) {
	tl.killTweensOf(toTargets(targets), props, killAny, 0)
}

func (tl *Timeline) killTweensOf(targets []any, props []string, mode killMode, at float64) {
	tweens := tl.tweensOf(targets, mode, at)
	for i := len(tweens) - 1; i >= 0; i-- {
		if tweens[i] != tl.engine.overwriting {
			tweens[i].kill(targets, props)
		}
	}
}

// KillTargets stops the tween animating props of targets while leaving the
// rest running. Nil targets means all of them; no props means every
// property. A tween left with nothing to animate is killed.
func (t *Tween) KillTargets(targets any, props ...string) {
	var list []any
	if targets != nil {
		list = toTargets(targets)
	}
	t.kill(list, props)
}

func (t *Tween) kill(targets []any, props []string) {
	all := len(props) == 0
	if targets == nil && all {
		t.pts.Clear()
		interrupt(&t.core)
		return
	}
	if tl := t.timeline; tl != nil {
		before := tl.TotalDuration()
		mode := killAny
		if o := t.engine.overwriting; o != nil && o.overwrite != OverwriteAll {
			mode = killActive
		}
		if targets == nil {
			targets = t.targets
		}
		tl.killTweensOf(targets, props, mode, 0)
		if tl.children.Len() == 0 {
			interrupt(&t.core)
		}
		if after := tl.TotalDuration(); t.parent != nil && before != after && before != 0 {
			setDuration(&t.core, t.dur*after/before, false, true)
		}
		return
	}

	killing := targets
	if killing == nil {
		killing = t.targets
	}
	if all && sameTargets(t.targets, killing) {
		t.pts.Clear()
		interrupt(&t.core)
		return
	}
	hadPts := t.pts.Len() > 0
	if t.op == nil {
		t.op = make([]*killSet, len(t.targets))
	}
	for i := len(t.targets) - 1; i >= 0; i-- {
		if !containsTarget(killing, t.targets[i]) {
			continue
		}
		var lookup map[string]arena.Handle
		if i < len(t.lookup) {
			lookup = t.lookup[i]
		}
		names := props
		if all {
			t.op[i] = &killSet{all: true}
			names = sortedKeys(lookup)
		} else if t.op[i] == nil {
			t.op[i] = &killSet{props: make(map[string]bool)}
		}
		for _, p := range names {
			if h, ok := lookup[p]; ok {
				t.pts.Remove(h)
				delete(lookup, p)
			}
			if !t.op[i].all {
				t.op[i].props[p] = true
			}
		}
	}
	if t.initted && t.pts.Len() == 0 && hadPts {
		interrupt(&t.core)
	}
}
