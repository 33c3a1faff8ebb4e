package animation

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	defaultSpringFrequency = 6.0
	defaultSpringDamping   = 0.5

	springFPS       = 120
	springMaxFrames = springFPS * 10
	springRest      = 1e-4
)

// SpringEase returns an ease that follows a damped spring released at 0 and
// settling at 1. The spring is simulated once and sampled; the ease's unit
// interval spans the time the spring takes to come to rest, so a tween's
// duration controls how long the settle takes.
//
// frequency is the angular frequency, damping the damping ratio (below 1
// bounces, 1 is critically damped).
func SpringEase(frequency, damping float64) Ease {
	if frequency <= 0 {
		frequency = defaultSpringFrequency
	}
	if damping <= 0 {
		damping = defaultSpringDamping
	}
	spring := harmonica.NewSpring(harmonica.FPS(springFPS), frequency, damping)

	samples := []float64{0}
	pos, vel := 0.0, 0.0
	for range springMaxFrames {
		pos, vel = spring.Update(pos, vel, 1)
		samples = append(samples, pos)
		if math.Abs(pos-1) < springRest && math.Abs(vel) < springRest {
			break
		}
	}
	samples[len(samples)-1] = 1
	last := float64(len(samples) - 1)

	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		x := t * last
		i := int(x)
		frac := x - float64(i)
		return samples[i] + (samples[i+1]-samples[i])*frac
	}
}
