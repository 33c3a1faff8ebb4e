package animation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	numberExp   = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
	unitExp     = regexp.MustCompile(`^[a-zA-Z%]*$`)
	colorExp    = regexp.MustCompile(`#(?:[0-9a-fA-F]{3,4}){1,2}\b|(?i:(?:rgb|hsl)a?)\([^)]*\)`)
	wordExp     = regexp.MustCompile(`\b[a-zA-Z]+\b`)
	rgbaGroupEx = regexp.MustCompile(`rgba\([^)]*\)`)
)

// relOp is the operator of a relative value such as "+=10".
type relOp byte

const (
	relNone relOp = 0
	relAdd  relOp = '+'
	relSub  relOp = '-'
	relMul  relOp = '*'
	relDiv  relOp = '/'
)

// splitRelative strips a leading "+=", "-=", "*=" or "/=".
func splitRelative(s string) (relOp, string) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[1] == '=' {
		switch s[0] {
		case '+', '-', '*', '/':
			return relOp(s[0]), strings.TrimSpace(s[2:])
		}
	}
	return relNone, s
}

func (op relOp) apply(base, n float64) float64 {
	switch op {
	case relAdd:
		return base + n
	case relSub:
		return base - n
	case relMul:
		return base * n
	case relDiv:
		if n == 0 {
			return base
		}
		return base / n
	}
	return n
}

// splitUnit parses a number with an optional unit suffix ("10px", "-45deg",
// "50%"). ok is false when s is anything else.
func splitUnit(s string) (f float64, unit string, ok bool) {
	s = strings.TrimSpace(s)
	loc := numberExp.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return 0, "", false
	}
	unit = strings.TrimSpace(s[loc[1]:])
	if !unitExp.MatchString(unit) {
		return 0, "", false
	}
	f, err := strconv.ParseFloat(s[:loc[1]], 64)
	if err != nil {
		return 0, "", false
	}
	return f, unit, true
}

func roundTo(f, precision float64) float64 {
	return math.Round(f*precision) / precision
}

// formatRounded prints f with at most four decimals.
func formatRounded(f float64) string {
	return formatNumber(roundTo(f, 1e4) + 0)
}

// hasColor reports whether s contains a color literal.
func hasColor(s string) bool {
	if colorExp.MatchString(s) {
		return true
	}
	for _, w := range wordExp.FindAllString(s, -1) {
		if isColorName(w) {
			return true
		}
	}
	return false
}

func isColorName(w string) bool {
	w = strings.ToLower(w)
	if w == "transparent" {
		return true
	}
	_, ok := colornames.Map[w]
	return ok
}

// normalizeColors rewrites every color literal in s as rgba(r,g,b,a) with
// integer channels, so two colors interpolate channel by channel.
func normalizeColors(s string) string {
	s = colorExp.ReplaceAllStringFunc(s, func(tok string) string {
		if c, ok := parseColor(tok); ok {
			return c
		}
		return tok
	})
	return wordExp.ReplaceAllStringFunc(s, func(w string) string {
		if c, ok := parseColor(w); ok {
			return c
		}
		return w
	})
}

func rgbaString(r, g, b uint8, a float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, formatRounded(a))
}

// parseColor converts one color token to rgba(). It accepts #rgb, #rgba,
// #rrggbb, #rrggbbaa, rgb(), rgba(), hsl(), hsla(), CSS names and
// "transparent".
func parseColor(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	lower := strings.ToLower(tok)
	switch {
	case lower == "transparent":
		return "rgba(0,0,0,0)", true
	case strings.HasPrefix(lower, "#"):
		return parseHexColor(lower)
	case strings.HasPrefix(lower, "rgb"), strings.HasPrefix(lower, "hsl"):
		return parseFuncColor(lower)
	}
	if c, ok := colornames.Map[lower]; ok {
		return rgbaString(c.R, c.G, c.B, float64(c.A)/255), true
	}
	return "", false
}

func parseHexColor(s string) (string, bool) {
	switch len(s) {
	case 4, 7:
		c, err := colorful.Hex(s)
		if err != nil {
			return "", false
		}
		r, g, b := c.RGB255()
		return rgbaString(r, g, b, 1), true
	case 5, 9:
		step := (len(s) - 1) / 4
		var ch [4]uint8
		for i := range ch {
			part := s[1+i*step : 1+(i+1)*step]
			if step == 1 {
				part += part
			}
			n, err := strconv.ParseUint(part, 16, 8)
			if err != nil {
				return "", false
			}
			ch[i] = uint8(n)
		}
		return rgbaString(ch[0], ch[1], ch[2], float64(ch[3])/255), true
	}
	return "", false
}

func parseFuncColor(s string) (string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", false
	}
	name := s[:open]
	inner := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : len(s)-1])
	fields := strings.Fields(inner)
	if len(fields) < 3 || len(fields) > 4 {
		return "", false
	}
	var args [4]float64
	args[3] = 1
	for i, f := range fields {
		pct := strings.HasSuffix(f, "%")
		n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(f, "%"), "deg"), 64)
		if err != nil {
			return "", false
		}
		switch {
		case pct && i == 3:
			n /= 100
		case pct && strings.HasPrefix(name, "rgb"):
			n *= 2.55
		case pct:
			n /= 100
		}
		args[i] = n
	}
	a := math.Max(0, math.Min(1, args[3]))
	if strings.HasPrefix(name, "hsl") {
		r, g, b := colorful.Hsl(args[0], args[1], args[2]).Clamped().RGB255()
		return rgbaString(r, g, b, a), true
	}
	return rgbaString(channel(args[0]), channel(args[1]), channel(args[2]), a), true
}

func channel(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}

// segment is one numeric run of a compound string together with the literal
// text that precedes it.
type segment struct {
	lit   string
	start float64
	delta float64
	round bool
}

type compound struct {
	segs []segment
	tail string
}

// parseNumbers splits s into the numbers it contains and the literals around
// them. round marks the r, g and b channels of rgba() groups.
func parseNumbers(s string) (nums []float64, lits []string, round []bool) {
	groups := rgbaGroupEx.FindAllStringIndex(s, -1)
	last := 0
	for _, loc := range numberExp.FindAllStringIndex(s, -1) {
		f, err := strconv.ParseFloat(s[loc[0]:loc[1]], 64)
		if err != nil {
			continue
		}
		lits = append(lits, s[last:loc[0]])
		nums = append(nums, f)
		round = append(round, inColorChannel(s, groups, loc[0]))
		last = loc[1]
	}
	lits = append(lits, s[last:])
	return nums, lits, round
}

func inColorChannel(s string, groups [][]int, at int) bool {
	for _, g := range groups {
		if at > g[0] && at < g[1] {
			return strings.Count(s[g[0]:at], ",") < 3
		}
	}
	return false
}

// newCompound decomposes start and end once. It reports false when their
// numeric shapes differ, in which case the value is switched discretely.
func newCompound(start, end string) (*compound, bool) {
	sNums, _, _ := parseNumbers(start)
	eNums, eLits, eRound := parseNumbers(end)
	if len(sNums) != len(eNums) || len(eNums) == 0 {
		return nil, false
	}
	c := &compound{segs: make([]segment, len(eNums)), tail: eLits[len(eLits)-1]}
	for i := range eNums {
		c.segs[i] = segment{
			lit:   eLits[i],
			start: sNums[i],
			delta: eNums[i] - sNums[i],
			round: eRound[i],
		}
	}
	return c, true
}

func (c *compound) render(ratio float64) string {
	var sb strings.Builder
	for _, seg := range c.segs {
		sb.WriteString(seg.lit)
		v := seg.start + seg.delta*ratio
		if seg.round {
			sb.WriteString(formatNumber(math.Round(v) + 0))
		} else {
			sb.WriteString(formatRounded(v))
		}
	}
	sb.WriteString(c.tail)
	return sb.String()
}
