package animation_test

import (
	"fmt"

	"github.com/go-drift/choreo/pkg/animation"
)

// This example tweens a property and seeks to the middle.
func ExampleEngine_To() {
	engine := animation.NewEngine()
	box := map[string]float64{"x": 0}

	tween := engine.To(box, animation.Vars{
		Props:    animation.Props{"x": 100},
		Duration: 1,
		Ease:     "none",
	})
	tween.Seek(animation.At(0.5), false)

	fmt.Println(box["x"])
	// Output: 50
}

// This example sequences two tweens with a gap between them.
func ExampleTimeline() {
	engine := animation.NewEngine()
	a := map[string]float64{"x": 0}
	b := map[string]float64{"x": 0}

	tl := engine.Timeline(animation.Vars{Paused: true})
	tl.To(a, animation.Vars{Props: animation.Props{"x": 1}, Duration: 1}, animation.Pos(""))
	second := tl.To(b, animation.Vars{Props: animation.Props{"x": 1}, Duration: 1}, animation.Pos("+=0.5"))

	fmt.Println(second.StartTime(), tl.Duration())
	// Output: 1.5 2.5
}

// This example looks up an ease by name.
func ExampleParseEase() {
	ease, err := animation.ParseEase("power2.in")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(ease(0.5))
	// Output: 0.125
}

// This example stops one property of a running tween.
func ExampleTween_KillTargets() {
	engine := animation.NewEngine()
	box := map[string]float64{"x": 0, "y": 0}

	tween := engine.To(box, animation.Vars{Props: animation.Props{"x": 10, "y": 10}, Duration: 1})
	tween.SetProgress(0.5, false)
	tween.KillTargets(box, "x")

	fmt.Println(tween.Animates(box, "x"), tween.Animates(box, "y"))
	// Output: false true
}

// This example spreads the starts of three tweens.
func ExampleStagger() {
	engine := animation.NewEngine()
	dots := []any{
		map[string]float64{"y": 0},
		map[string]float64{"y": 0},
		map[string]float64{"y": 0},
	}

	tween := engine.To(dots, animation.Vars{
		Props:    animation.Props{"y": 10},
		Duration: 1,
		Stagger:  &animation.Stagger{Each: 0.2},
	})
	for _, child := range tween.Nested().Children(false, true, false) {
		fmt.Println(child.StartTime())
	}
	// Output:
	// 0
	// 0.2
	// 0.4
}

// This example drives a ticker by hand from a host frame loop.
func ExampleTicker_Tick() {
	ticker := animation.NewTicker()
	ticker.Add(func(_, delta float64, frame int) {
		fmt.Println("frame", frame, delta >= 0)
	})
	ticker.Tick()
	// Output: frame 1 true
}
