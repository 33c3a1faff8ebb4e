package animation

import (
	"fmt"
	"math"

	"github.com/go-drift/choreo/pkg/errors"
)

// propTween interpolates one property of one target. Strings are decomposed
// when the tween initializes, so rendering never parses.
type propTween struct {
	prop   string
	target int
	set    func(Value)
	orig   Value

	start, delta, end float64
	unit              string
	asString          bool
	round             bool
	snap              float64

	compound   *compound
	startValue Value
	endValue   Value
	discrete   bool

	modifier func(Value) Value
}

func (pt *propTween) render(ratio float64) {
	var v Value
	switch {
	case pt.discrete:
		if ratio == 1 {
			v = pt.endValue
		} else {
			v = pt.startValue
		}
	case pt.compound != nil:
		switch ratio {
		case 0:
			v = pt.startValue
		case 1:
			v = pt.endValue
		default:
			v = StringValue(pt.compound.render(ratio))
		}
	default:
		x := pt.start + pt.delta*ratio
		if ratio == 1 {
			x = pt.end
		}
		switch {
		case pt.snap > 0:
			x = math.Round(x/pt.snap) * pt.snap
		case pt.round:
			x = math.Round(x)
		case pt.asString:
			x = roundTo(x, 1e4)
		default:
			x = roundTo(x, 1e6)
		}
		x += 0
		if pt.asString {
			v = StringValue(formatNumber(x) + pt.unit)
		} else {
			v = NumberValue(x)
		}
	}
	if pt.modifier != nil {
		v = pt.modifier(v)
	}
	pt.set(v)
}

func (pt *propTween) restore() {
	pt.set(pt.orig)
}

// toValue converts a raw property value.
func toValue(raw any) (Value, bool) {
	switch x := raw.(type) {
	case Value:
		return x, true
	case string:
		return StringValue(x), true
	case fmt.Stringer:
		return StringValue(x.String()), true
	}
	if f, ok := toFloat(raw); ok {
		return NumberValue(f), true
	}
	return Value{}, false
}

// resolveFunc evaluates function-based values against their target.
func resolveFunc(raw any, i int, target any, targets []any) any {
	switch fn := raw.(type) {
	case FuncValue:
		return fn(i, target, targets)
	case func(int, any, []any) any:
		return fn(i, target, targets)
	}
	return raw
}

// resolveRelative applies "+=", "-=", "*=" and "/=" against base. Values
// that are not relative come back unchanged.
func resolveRelative(v Value, base Value) Value {
	if !v.IsString() {
		return v
	}
	op, rest := splitRelative(v.Text())
	if op == relNone {
		return v
	}
	f, unit, ok := splitUnit(rest)
	if !ok {
		return v
	}
	b, bUnit, bOk := numericParts(base)
	if !bOk {
		return v
	}
	n := op.apply(b, f)
	if unit == "" {
		unit = bUnit
	}
	if unit == "" && !base.IsString() {
		return NumberValue(n)
	}
	return StringValue(formatNumber(n) + unit)
}

func numericParts(v Value) (float64, string, bool) {
	if !v.IsString() {
		return v.num, "", true
	}
	return splitUnit(v.Text())
}

// newPropTween builds the interpolation of prop on the tween's i-th target.
// It returns nil after reporting a warning when the property cannot be
// animated.
func (t *Tween) newPropTween(i int, raw any, tgt Target, prop string, endRaw any, fromRaw any, hasFrom bool) *propTween {
	targets := t.fullTargets()
	idx := i
	if len(targets) != len(t.targets) {
		idx = indexOfTarget(targets, raw)
	}
	endRaw = resolveFunc(endRaw, idx, raw, targets)
	endVal, ok := toValue(endRaw)
	if !ok {
		t.report(errors.KindInterpolation, "animation.Tween.init",
			fmt.Errorf("unsupported value %T", endRaw), prop, raw)
		return nil
	}
	cur, ok := tgt.Get(prop)
	if !ok {
		t.report(errors.KindProperty, "animation.Tween.init",
			fmt.Errorf("target has no property %q", prop), prop, raw)
		return nil
	}

	var startVal Value
	switch t.kind {
	case kindFrom:
		startVal = resolveRelative(endVal, cur)
		endVal = cur
	case kindFromTo:
		startVal = cur
		if hasFrom {
			fromVal, ok := toValue(resolveFunc(fromRaw, idx, raw, targets))
			if ok {
				startVal = resolveRelative(fromVal, cur)
			}
		}
		endVal = resolveRelative(endVal, startVal)
	default:
		startVal = cur
		endVal = resolveRelative(endVal, cur)
	}

	pt := &propTween{prop: prop, target: i, orig: cur, startValue: startVal, endValue: endVal}
	if b, ok := tgt.(SetterBinder); ok {
		pt.set, ok = b.Bind(prop)
		if !ok {
			t.report(errors.KindProperty, "animation.Tween.init",
				fmt.Errorf("property %q is not settable", prop), prop, raw)
			return nil
		}
	} else {
		pt.set = func(v Value) { tgt.Set(prop, v) }
	}
	if m := t.vars.Modifiers[prop]; m != nil {
		pt.modifier = func(v Value) Value { return m(v, raw) }
	}
	t.plan(pt, raw)
	return pt
}

// plan decides how pt interpolates between its start and end values.
func (t *Tween) plan(pt *propTween, raw any) {
	s, e := pt.startValue, pt.endValue
	sNum, sUnit, sOk := numericParts(s)
	eNum, eUnit, eOk := numericParts(e)

	if sOk && eOk {
		if math.IsNaN(sNum) {
			t.report(errors.KindInterpolation, "animation.Tween.init", fmt.Errorf("start value is NaN"), pt.prop, raw)
			sNum = 0
		}
		if math.IsNaN(eNum) {
			t.report(errors.KindInterpolation, "animation.Tween.init", fmt.Errorf("end value is NaN"), pt.prop, raw)
			eNum = sNum
		}
		unit := eUnit
		if unit == "" {
			unit = sUnit
		}
		pt.start, pt.end, pt.delta = sNum, eNum, eNum-sNum
		pt.unit = unit
		pt.asString = unit != "" || s.IsString() || e.IsString()
		pt.round = t.vars.AutoRound.enabled(unit == "px")
		pt.snap = t.vars.Snap[pt.prop]
		return
	}

	st, et := s.Text(), e.Text()
	if hasColor(st) || hasColor(et) {
		st, et = normalizeColors(st), normalizeColors(et)
	}
	if c, ok := newCompound(st, et); ok {
		pt.compound = c
		pt.startValue, pt.endValue = StringValue(st), StringValue(et)
		return
	}
	pt.discrete = true
}
