// Package animation schedules property animations on a shared time axis.
//
// # Core Components
//
// The animation system consists of several key components:
//
//   - [Engine]: Owns a [Ticker] and the root [Timeline]. Every top-level tween
//     and timeline is added to the root, which renders once per frame.
//
//   - [Tween]: Drives one or more properties of one or more targets from start
//     to end values over a duration, with delay, repeat, yoyo and easing.
//
//   - [Timeline]: Positions child animations with [Position] values such as
//     "+=0.5", "<" or "intro+=1" and plays them as one.
//
//   - [Ease]: Maps linear progress to eased progress. [ParseEase] understands
//     names like "power2.inOut", "back.out(1.7)" and "steps(4)".
//
//   - [Target]: The get/set capability a tween writes through. Maps, *float64,
//     structs and [PropertyFuncs] are adapted automatically.
//
// # Basic Usage
//
// Create an engine, add animations, and drive the ticker from a frame loop:
//
//	e := animation.NewEngine()
//	box := map[string]float64{"x": 0}
//	tl := e.Timeline(animation.Vars{})
//	tl.To(box, animation.Vars{Props: animation.Props{"x": 100}, Duration: 1}, animation.Position{})
//	tl.To(box, animation.Vars{Props: animation.Props{"x": 0}, Duration: 0.5}, animation.Pos("+=0.25"))
//
//	// Once per frame
//	e.Ticker().Tick()
//
// Without a host frame loop, [Ticker.Run] paces frames itself until its
// context is cancelled.
//
// # Warnings
//
// Bad input never stops playback. Missing targets, unknown eases and malformed
// positions are reported to the engine's warning handler and the animation
// carries on with a safe fallback.
package animation

import (
	"context"
	"sync"
	"time"
)

const (
	defaultLagThreshold = 500 * time.Millisecond
	defaultAdjustedLag  = 33 * time.Millisecond
	defaultFPS          = 240
	// fallbackInterval paces Run when no FPS was configured explicitly.
	fallbackInterval = 16 * time.Millisecond
	// minFrameStep is how far the next frame is pushed when a frame overran
	// the whole gap.
	minFrameStep = 4 * time.Millisecond
)

// TickFunc receives the ticker time and the delta since the previous frame,
// both in seconds, and the frame number.
type TickFunc func(time, delta float64, frame int)

// Listener is an object subscribed to a Ticker. Listeners are deduplicated
// by identity, so adding the same listener twice has no effect.
type Listener interface {
	Tick(time, delta float64, frame int)
}

// ListenerID identifies a subscription returned by [Ticker.Add].
type ListenerID uint64

// FrameScheduler is a host frame primitive, such as a display-link or a game
// loop, that calls fn once on its next frame. Frames must be delivered on the
// goroutine that owns the engine.
type FrameScheduler interface {
	RequestFrame(fn func())
}

type subscription struct {
	id       ListenerID
	fn       TickFunc
	listener Listener
	removed  bool
}

// Ticker is the engine clock. Each Tick measures the time since the previous
// one, smooths outlier gaps, and calls every subscriber in registration order.
//
// A Ticker never ticks by itself: either the host calls [Ticker.Tick] from its
// own frame loop, a [FrameScheduler] delivers frames while the ticker is
// awake, or [Ticker.Run] paces frames with a timer on the calling goroutine.
// Subscriber registration is safe from any goroutine; subscribers always run
// on the goroutine that ticks.
type Ticker struct {
	mu        sync.Mutex
	clock     Clock
	scheduler FrameScheduler
	subs      []*subscription
	nextID    ListenerID
	queue     []func()

	startTime  time.Time
	lastUpdate time.Time
	nextTime   time.Duration
	gap        time.Duration
	fpsSet     bool

	lagThreshold time.Duration
	adjustedLag  time.Duration

	time  float64
	delta float64
	frame int

	awake     bool
	requested bool
	wakeCh    chan struct{}
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithTickerClock sets the time source.
func WithTickerClock(c Clock) TickerOption {
	return func(t *Ticker) { t.clock = c }
}

// WithTickerScheduler sets the host frame primitive used while awake.
func WithTickerScheduler(s FrameScheduler) TickerOption {
	return func(t *Ticker) { t.scheduler = s }
}

// NewTicker creates a sleeping ticker whose time starts at zero now.
func NewTicker(opts ...TickerOption) *Ticker {
	t := &Ticker{
		clock:        SystemClock{},
		lagThreshold: defaultLagThreshold,
		adjustedLag:  defaultAdjustedLag,
		wakeCh:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.gap = time.Second / defaultFPS
	now := t.clock.Now()
	t.startTime = now
	t.lastUpdate = now
	t.nextTime = t.gap
	return t
}

// Add subscribes fn and returns an id for [Ticker.Remove]. Every call is a
// separate subscription; use [Ticker.AddListener] to subscribe a value once.
func (t *Ticker) Add(fn TickFunc) ListenerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.subs = append(t.subs, &subscription{id: t.nextID, fn: fn})
	return t.nextID
}

// AddPriority subscribes fn ahead of every existing subscriber.
func (t *Ticker) AddPriority(fn TickFunc) ListenerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.subs = append([]*subscription{{id: t.nextID, fn: fn}}, t.subs...)
	return t.nextID
}

// Remove unsubscribes id. It reports whether the id was subscribed.
func (t *Ticker) Remove(id ListenerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			s.removed = true
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return true
		}
	}
	return false
}

// AddListener subscribes l unless it is already subscribed.
func (t *Ticker) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		if s.listener == l {
			return
		}
	}
	t.nextID++
	t.subs = append(t.subs, &subscription{id: t.nextID, listener: l})
}

// RemoveListener unsubscribes l.
func (t *Ticker) RemoveListener(l Listener) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.listener == l {
			s.removed = true
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of subscribers.
func (t *Ticker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Dispatch queues fn to run on the ticking goroutine at the start of the next
// frame. It is the way to mutate animations from other goroutines.
func (t *Ticker) Dispatch(fn func()) {
	t.mu.Lock()
	t.queue = append(t.queue, fn)
	t.mu.Unlock()
	t.Wake()
}

// Time returns the seconds elapsed on the ticker, excluding smoothed lag.
func (t *Ticker) Time() float64 { return t.time }

// Delta returns the seconds between the last two frames.
func (t *Ticker) Delta() float64 { return t.delta }

// Frame returns the number of frames dispatched so far.
func (t *Ticker) Frame() int { return t.frame }

// DeltaRatio returns the last delta relative to a nominal frame at fps
// (60 when fps <= 0).
func (t *Ticker) DeltaRatio(fps float64) float64 {
	if fps <= 0 {
		fps = 60
	}
	return t.delta * fps
}

// LagSmoothing configures outlier clamping. A gap longer than threshold is
// treated as if only adjustedLag had passed. A threshold <= 0 disables it.
func (t *Ticker) LagSmoothing(threshold, adjustedLag time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if threshold <= 0 {
		threshold = 1<<63 - 1
	}
	if adjustedLag <= 0 {
		adjustedLag = defaultAdjustedLag
	}
	t.lagThreshold = threshold
	t.adjustedLag = min(adjustedLag, threshold)
}

// FPS caps the dispatch rate of scheduled and timer-driven frames. Manual
// ticks always dispatch. A value <= 0 restores the default.
func (t *Ticker) FPS(fps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fpsSet = fps > 0
	if fps <= 0 {
		fps = defaultFPS
	}
	t.gap = time.Second / time.Duration(fps)
	t.nextTime = t.lastUpdate.Sub(t.startTime) + t.gap
}

// Tick advances the clock and dispatches one frame to every subscriber.
func (t *Ticker) Tick() {
	t.tick(true)
}

func (t *Ticker) tick(manual bool) {
	t.mu.Lock()
	now := t.clock.Now()
	elapsed := now.Sub(t.lastUpdate)
	if elapsed > t.lagThreshold || elapsed < 0 {
		t.startTime = t.startTime.Add(elapsed - t.adjustedLag)
	}
	t.lastUpdate = now
	current := t.lastUpdate.Sub(t.startTime)
	overlap := current - t.nextTime
	if overlap <= 0 && !manual {
		t.mu.Unlock()
		return
	}

	t.frame++
	seconds := current.Seconds()
	t.delta = max(0, seconds-t.time)
	t.time = seconds
	step := t.gap - overlap
	if overlap >= t.gap {
		step = minFrameStep
	}
	t.nextTime += overlap + step

	queued := t.queue
	t.queue = nil
	subs := append([]*subscription(nil), t.subs...)
	tm, delta, frame := t.time, t.delta, t.frame
	t.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
	for _, s := range subs {
		if s.removed {
			continue
		}
		if s.fn != nil {
			s.fn(tm, delta, frame)
		} else if s.listener != nil {
			s.listener.Tick(tm, delta, frame)
		}
	}
}

// Awake reports whether the ticker is scheduling frames.
func (t *Ticker) Awake() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.awake
}

// Wake starts scheduling frames. With a FrameScheduler the next frame is
// requested immediately; otherwise a blocked [Ticker.Run] resumes. Waking an
// awake ticker is a no-op.
func (t *Ticker) Wake() {
	t.mu.Lock()
	wasAwake := t.awake
	t.awake = true
	t.mu.Unlock()
	if wasAwake {
		return
	}
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
	t.requestFrame()
}

// Sleep stops scheduling frames until the next Wake.
func (t *Ticker) Sleep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.awake = false
}

func (t *Ticker) requestFrame() {
	t.mu.Lock()
	s := t.scheduler
	if s == nil || t.requested || !t.awake {
		t.mu.Unlock()
		return
	}
	t.requested = true
	t.mu.Unlock()
	s.RequestFrame(t.onFrame)
}

func (t *Ticker) onFrame() {
	t.mu.Lock()
	t.requested = false
	awake := t.awake
	t.mu.Unlock()
	if !awake {
		return
	}
	t.tick(false)
	t.requestFrame()
}

// Run paces frames with a timer on the calling goroutine until ctx is done.
// It is the fallback for hosts without a FrameScheduler. While the ticker
// sleeps, Run blocks until Wake.
func (t *Ticker) Run(ctx context.Context) error {
	t.mu.Lock()
	interval := fallbackInterval
	if t.fpsSet {
		interval = t.gap
	}
	t.mu.Unlock()

	timer := time.NewTicker(interval)
	defer timer.Stop()
	for {
		if !t.Awake() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.wakeCh:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			t.tick(false)
		}
	}
}
