package animation

import (
	"strconv"
	"strings"

	"github.com/fogleman/ease"

	"github.com/go-drift/choreo/pkg/errors"
)

// DefaultEaseName is the ease used when a tween names none.
const DefaultEaseName = "power1.out"

// DefaultEase is the function behind DefaultEaseName.
var DefaultEase Ease = ease.OutQuad

type easeFamily struct {
	in, out, inOut Ease
}

var easeFamilies = map[string]easeFamily{
	"power0":  {LinearCurve, LinearCurve, LinearCurve},
	"power1":  {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"power2":  {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"power3":  {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"power4":  {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"sine":    {ease.InSine, ease.OutSine, ease.InOutSine},
	"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
	"circ":    {ease.InCirc, ease.OutCirc, ease.InOutCirc},
	"back":    {ease.InBack, ease.OutBack, ease.InOutBack},
	"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
	"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
}

var easeAliases = map[string]string{
	"quad":   "power1",
	"cubic":  "power2",
	"quart":  "power3",
	"quint":  "power4",
	"strong": "power4",
	"linear": "power0",
	"none":   "power0",
}

var cssEases = map[string]Ease{
	"ease":        CSSEase,
	"ease-in":     EaseIn,
	"ease-out":    EaseOut,
	"ease-in-out": EaseInOut,
}

// EaseRegistry resolves ease names. The zero value knows the built-in names;
// Register adds custom ones, which take precedence.
type EaseRegistry struct {
	custom map[string]Ease
}

// Register adds or replaces a named ease. Names are case-insensitive.
func (r *EaseRegistry) Register(name string, fn Ease) {
	if r.custom == nil {
		r.custom = make(map[string]Ease)
	}
	r.custom[strings.ToLower(strings.TrimSpace(name))] = fn
}

// Parse resolves name to an ease. Unknown names return DefaultEase together
// with a KindUnknownEase warning, so callers can log and carry on.
//
// Recognised forms: "none", "linear", "power0".."power4" and their aliases
// quad, cubic, quart, quint and strong, sine, expo, circ, back, elastic,
// bounce, each with an optional ".in", ".out" or ".inOut" suffix (".out" when
// omitted); "back.out(1.7)", "elastic.out(1, 0.3)", "steps(5)",
// "cubic-bezier(x1, y1, x2, y2)", "spring(frequency, damping)" and the CSS
// keywords ease, ease-in, ease-out and ease-in-out.
func (r *EaseRegistry) Parse(name string) (Ease, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return DefaultEase, nil
	}
	if fn, ok := r.custom[key]; ok {
		return fn, nil
	}
	if fn, ok := cssEases[key]; ok {
		return fn, nil
	}

	base, args, err := splitEaseArgs(key)
	if err != nil {
		return DefaultEase, unknownEase(name, err)
	}
	if fn, ok := r.custom[base]; ok && args == nil {
		return fn, nil
	}

	switch base {
	case "steps":
		if len(args) != 1 {
			return DefaultEase, unknownEase(name, nil)
		}
		return Steps(int(args[0])), nil
	case "cubic-bezier":
		if len(args) != 4 {
			return DefaultEase, unknownEase(name, nil)
		}
		return CubicBezier(args[0], args[1], args[2], args[3]), nil
	case "spring":
		freq, damp := defaultSpringFrequency, defaultSpringDamping
		if len(args) > 0 {
			freq = args[0]
		}
		if len(args) > 1 {
			damp = args[1]
		}
		return SpringEase(freq, damp), nil
	}

	family, variant, _ := strings.Cut(base, ".")
	if alias, ok := easeAliases[family]; ok {
		family = alias
	}
	fam, ok := easeFamilies[family]
	if !ok {
		return DefaultEase, unknownEase(name, nil)
	}

	if args != nil {
		if out, ok := parameterizedOut(family, args); ok {
			return pickVariant(easeFamily{in: Invert(out), out: out, inOut: Mirror(Invert(out))}, variant, name)
		}
	}
	return pickVariant(fam, variant, name)
}

func pickVariant(fam easeFamily, variant, name string) (Ease, error) {
	switch variant {
	case "", "out", "easeout":
		return fam.out, nil
	case "in", "easein":
		return fam.in, nil
	case "inout", "easeinout":
		return fam.inOut, nil
	default:
		return DefaultEase, unknownEase(name, nil)
	}
}

func parameterizedOut(family string, args []float64) (Ease, bool) {
	switch family {
	case "back":
		overshoot := 1.70158
		if len(args) > 0 {
			overshoot = args[0]
		}
		return BackOut(overshoot), true
	case "elastic":
		amp, period := 1.0, 0.3
		if len(args) > 0 {
			amp = args[0]
		}
		if len(args) > 1 {
			period = args[1]
		}
		return ElasticOut(amp, period), true
	}
	return nil, false
}

func splitEaseArgs(key string) (string, []float64, error) {
	open := strings.IndexByte(key, '(')
	if open < 0 {
		return key, nil, nil
	}
	if !strings.HasSuffix(key, ")") {
		return "", nil, &errors.ParseError{Input: key, DataType: "ease"}
	}
	base := strings.TrimSpace(key[:open])
	inner := strings.TrimSpace(key[open+1 : len(key)-1])
	args := []float64{}
	if inner == "" {
		return base, args, nil
	}
	for _, part := range strings.Split(inner, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, &errors.ParseError{Input: key, DataType: "ease"}
		}
		args = append(args, f)
	}
	return base, args, nil
}

func unknownEase(name string, cause error) error {
	if cause == nil {
		cause = &errors.ParseError{Input: name, DataType: "ease"}
	}
	return &errors.Warning{Op: "animation.ParseEase", Kind: errors.KindUnknownEase, Err: cause}
}

var builtinEases EaseRegistry

// ParseEase resolves a built-in ease name. See [EaseRegistry.Parse].
func ParseEase(name string) (Ease, error) {
	return builtinEases.Parse(name)
}
