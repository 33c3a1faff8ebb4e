package animation

import (
	"strconv"
	"strings"

	"github.com/go-drift/choreo/pkg/errors"
)

// PositionKind tags a Position.
type PositionKind uint8

const (
	// PosEnd appends at the end of the timeline. It is the zero value.
	PosEnd PositionKind = iota
	// PosAbsolute places at a fixed time.
	PosAbsolute
	// PosLabel places at a label plus an offset.
	PosLabel
	// PosRelativeToEnd offsets from the end of the timeline ("+=1", "-=0.5").
	PosRelativeToEnd
	// PosPrevStart offsets from the start of the most recently added child ("<").
	PosPrevStart
	// PosPrevEnd offsets from the end of the most recently added child (">").
	PosPrevEnd
)

// Position says where a child goes on a timeline.
type Position struct {
	Kind   PositionKind
	Offset float64
	Label  string
	// Percent makes Offset a percentage of a total duration: the inserted
	// child's when OfChild is set, the anchor child's otherwise.
	Percent bool
	OfChild bool

	err error
}

// At returns an absolute position.
func At(t float64) Position {
	return Position{Kind: PosAbsolute, Offset: t}
}

// AtLabel returns the position of label plus offset seconds.
func AtLabel(label string, offset float64) Position {
	return Position{Kind: PosLabel, Label: label, Offset: offset}
}

// Pos parses s and keeps any error with the result. Timelines report the
// error when they resolve the position and append at the end instead.
func Pos(s string) Position {
	p, err := ParsePosition(s)
	p.err = err
	return p
}

// Err returns the parse error recorded by Pos.
func (p Position) Err() error { return p.err }

// ParsePosition parses the position grammar:
//
//	"1.5"          absolute time
//	"+=1" "-=0.5"  relative to the timeline end, "+=50%" of the inserted child
//	"<" ">"        start or end of the most recently added child
//	"<0.5" ">-25%" the same with an offset, "<+=50%" percent of the inserted child
//	"intro"        a label; unknown labels are created at the end
//	"intro+=1"     a label with an offset
//
// The empty string is PosEnd. A malformed string returns PosEnd and a
// KindPosition warning.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Position{}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return At(f), nil
	}

	switch s[0] {
	case '<', '>':
		p := Position{Kind: PosPrevStart}
		if s[0] == '>' {
			p.Kind = PosPrevEnd
		}
		rest := s[1:]
		if strings.Contains(rest, "=") {
			p.OfChild = true
			rest = strings.Replace(rest, "=", "", 1)
		}
		if rest == "" {
			return p, nil
		}
		off, pct, ok := parseOffset(rest)
		if !ok {
			return Position{}, positionError(s)
		}
		p.Offset, p.Percent = off, pct
		return p, nil
	}

	i := strings.IndexByte(s, '=')
	if i < 0 {
		return AtLabel(s, 0), nil
	}
	if i < 1 || (s[i-1] != '+' && s[i-1] != '-') {
		return Position{}, positionError(s)
	}
	off, pct, ok := parseOffset(s[i-1:i] + s[i+1:])
	if !ok {
		return Position{}, positionError(s)
	}
	label := strings.TrimSpace(s[:i-1])
	if label == "" {
		return Position{Kind: PosRelativeToEnd, Offset: off, Percent: pct, OfChild: pct}, nil
	}
	return Position{Kind: PosLabel, Label: label, Offset: off, Percent: pct, OfChild: pct}, nil
}

func parseOffset(s string) (off float64, percent bool, ok bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSuffix(s, "%")
	}
	f, err := strconv.ParseFloat(strings.Join(strings.Fields(s), ""), 64)
	if err != nil {
		return 0, false, false
	}
	return f, percent, true
}

func positionError(s string) error {
	return &errors.Warning{
		Op:   "animation.ParsePosition",
		Kind: errors.KindPosition,
		Err:  &errors.ParseError{Input: s, DataType: "position"},
	}
}

func (p Position) String() string {
	num := func(f float64) string {
		s := formatNumber(f)
		if p.Percent {
			s += "%"
		}
		return s
	}
	signed := func(f float64) string {
		if f < 0 {
			return "-=" + num(-f)
		}
		return "+=" + num(f)
	}
	switch p.Kind {
	case PosAbsolute:
		return formatNumber(p.Offset)
	case PosLabel:
		if p.Offset == 0 {
			return p.Label
		}
		return p.Label + signed(p.Offset)
	case PosRelativeToEnd:
		return signed(p.Offset)
	case PosPrevStart, PosPrevEnd:
		anchor := "<"
		if p.Kind == PosPrevEnd {
			anchor = ">"
		}
		if p.Offset == 0 && !p.OfChild {
			return anchor
		}
		if p.OfChild {
			return anchor + signed(p.Offset)
		}
		return anchor + num(p.Offset)
	}
	return ""
}
