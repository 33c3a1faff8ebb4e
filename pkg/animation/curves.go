package animation

import "math"

// Ease maps linear progress in [0, 1] to eased progress. Most eases return 0
// at 0 and 1 at 1; back and elastic eases overshoot in between.
//
// Standard CSS curves: [LinearCurve], [CSSEase], [EaseIn], [EaseOut], [EaseInOut].
// Use [CubicBezier] to create custom curves matching CSS cubic-bezier(), or
// [ParseEase] to look one up by name.
type Ease func(float64) float64

// LinearCurve returns linear progress (no easing).
func LinearCurve(t float64) float64 {
	return t
}

// CSSEase is a standard cubic bezier curve for general-purpose easing.
// Equivalent to CSS ease.
var CSSEase = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates. Equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.42, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates. Equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.58, 1.0)

// EaseInOut starts and ends slowly. Equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.42, 0.0, 0.58, 1.0)

// CubicBezier returns a cubic-bezier easing function matching CSS cubic-bezier().
// The parameters define the two control points (x1,y1) and (x2,y2) of the curve.
// The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) Ease {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Fallback to bisection to guarantee a stable solution in [0,1].
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// Steps returns a stepped ease that jumps n times, like CSS steps(n, end).
func Steps(n int) Ease {
	if n < 1 {
		n = 1
	}
	steps := float64(n)
	return func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		return math.Floor(t*steps) / steps
	}
}

// Power returns the in, out and in-out eases of t^(power+1). Power 0 is linear.
func Power(power float64) (in, out, inOut Ease) {
	exp := power + 1
	in = func(t float64) float64 { return math.Pow(t, exp) }
	out = func(t float64) float64 { return 1 - math.Pow(1-t, exp) }
	inOut = func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(t*2, exp) / 2
		}
		return 1 - math.Pow((1-t)*2, exp)/2
	}
	return in, out, inOut
}

// BackOut returns an ease that overshoots its end by an amount controlled by
// overshoot (1.70158 is the classic value).
func BackOut(overshoot float64) Ease {
	return func(t float64) float64 {
		t--
		return t*t*((overshoot+1)*t+overshoot) + 1
	}
}

// ElasticOut returns a spring-like ease that oscillates past its end.
// Amplitude below 1 is clamped to 1; period is in progress units (0.3 typical).
func ElasticOut(amplitude, period float64) Ease {
	if amplitude < 1 {
		amplitude = 1
	}
	if period <= 0 {
		period = 0.3
	}
	shift := period / (2 * math.Pi) * math.Asin(1/amplitude)
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return amplitude*math.Pow(2, -10*t)*math.Sin((t-shift)*(2*math.Pi)/period) + 1
	}
}

// Invert turns an out ease into the matching in ease and vice versa.
func Invert(e Ease) Ease {
	return func(t float64) float64 { return 1 - e(1-t) }
}

// Mirror builds an in-out ease from an in ease.
func Mirror(in Ease) Ease {
	return func(t float64) float64 {
		if t < 0.5 {
			return in(t*2) / 2
		}
		return 1 - in((1-t)*2)/2
	}
}
