package animation

import (
	"math"
	"math/rand/v2"
)

// StaggerFrom names the element a stagger radiates from. Non-negative
// values are element indexes.
type StaggerFrom int

const (
	StaggerStart  StaggerFrom = 0
	StaggerCenter StaggerFrom = -1
	StaggerEnd    StaggerFrom = -2
	StaggerEdges  StaggerFrom = -3
	StaggerRandom StaggerFrom = -4
)

// StaggerIndex radiates from element i.
func StaggerIndex(i int) StaggerFrom { return StaggerFrom(i) }

// Stagger offsets the start of each target of a multi-target tween.
//
// Each is the delay between consecutive targets; Amount, when set, is the
// total spread divided among them instead. Grid lays targets out as
// {rows, cols} so distances are measured in two dimensions, optionally along
// one Axis ("x" or "y"). Ease redistributes the offsets. Repeat, RepeatDelay
// and Yoyo apply to every child tween rather than the whole group.
type Stagger struct {
	Each   float64
	Amount float64
	From   StaggerFrom
	Grid   [2]int
	Axis   string
	Ease   string

	Repeat      int
	RepeatDelay float64
	Yoyo        bool
}

// offsets returns the start offset of each of n targets. ease is the
// resolved distribution ease for s.Ease, nil meaning linear.
func (s *Stagger) offsets(n int, ease Ease) []float64 {
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	wrap := int(bigNum)
	if s.Grid[1] > 0 {
		wrap = s.Grid[1]
	}
	ratios := s.From < 0 && s.From != StaggerRandom
	var ratio float64
	switch s.From {
	case StaggerCenter, StaggerEdges:
		ratio = 0.5
	case StaggerEnd:
		ratio = 1
	}

	var originX, originY float64
	if ratios {
		originX = float64(min(wrap, n))*ratio - 0.5
		if wrap != int(bigNum) {
			originY = float64(n)*ratio/float64(wrap) - 0.5
		}
	} else if s.From > 0 {
		originX = float64(int(s.From) % wrap)
		if wrap != int(bigNum) {
			originY = float64(int(s.From) / wrap)
		}
	}

	dist := make([]float64, n)
	lo, hi := math.Inf(1), 0.0
	for j := range n {
		x := float64(j%wrap) - originX
		y := originY - float64(j/wrap)
		var d float64
		switch s.Axis {
		case "x":
			d = math.Abs(x)
		case "y":
			d = math.Abs(y)
		default:
			d = math.Sqrt(x*x + y*y)
		}
		dist[j] = d
		hi = math.Max(hi, d)
		lo = math.Min(lo, d)
	}
	if s.From == StaggerRandom {
		rand.Shuffle(n, func(i, j int) { dist[i], dist[j] = dist[j], dist[i] })
	}

	span := s.Amount
	if span == 0 {
		var steps float64
		switch {
		case wrap > n:
			steps = float64(n - 1)
		case s.Axis == "y":
			steps = float64(n) / float64(wrap)
		case s.Axis == "x":
			steps = float64(wrap)
		default:
			steps = math.Max(float64(wrap), float64(n)/float64(wrap))
		}
		span = s.Each * steps
	}
	if s.From == StaggerEdges {
		span = -span
	}
	base := 0.0
	if span < 0 {
		base = -span
	}

	if ease != nil && span < 0 {
		ease = Invert(ease)
	}
	width := hi - lo
	for j, d := range dist {
		l := 0.0
		if width > 0 {
			l = (d - lo) / width
		}
		if ease != nil {
			l = ease(l)
		}
		out[j] = roundPrecise(base + l*span)
	}
	return out
}
