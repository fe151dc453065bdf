package anim

import (
	"math"
	"time"
)

// DefaultDuration is the default counter transition length.
const DefaultDuration = 800 * time.Millisecond

// counter is one in-flight numeric transition.
type counter struct {
	start    int
	target   int
	easing   string
	startAt  time.Time
	duration time.Duration
	done     bool
}

// Animator runs concurrent counter animations keyed by counter identity.
// Starting an animation for an id that is already mid-flight cancels and
// replaces the prior one, so two timelines never fight over one display.
type Animator struct {
	counters map[string]*counter
	now      func() time.Time
}

// NewAnimator creates an empty animator.
func NewAnimator() *Animator {
	return &Animator{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Start begins animating the counter with the given id from its current
// displayed value (or from, if it has none) to target over duration.
// An easing name from the registry selects the curve; unknown names run linear.
func (a *Animator) Start(id string, from, target int, duration time.Duration, easing string) {
	if duration <= 0 {
		duration = DefaultDuration
	}

	// Cancel-and-replace: resume from the currently displayed value so the
	// counter doesn't jump backwards when re-triggered mid-flight.
	if existing, ok := a.counters[id]; ok && !existing.done {
		from = a.valueOf(existing)
	}

	if from == target {
		a.counters[id] = &counter{start: from, target: target, done: true, startAt: a.now(), duration: duration, easing: easing}
		return
	}

	a.counters[id] = &counter{
		start:    from,
		target:   target,
		easing:   easing,
		startAt:  a.now(),
		duration: duration,
	}
}

// Value returns the current displayed value for a counter id.
// The second return value is false if the id has never been animated.
func (a *Animator) Value(id string) (int, bool) {
	c, ok := a.counters[id]
	if !ok {
		return 0, false
	}
	return a.valueOf(c), true
}

// Step advances all animations to the current frame and returns the ids that
// completed on this frame, for one-shot completion effects. On the final
// frame the displayed value is forced to the exact target, so rounding drift
// can never leave a wrong terminal number.
func (a *Animator) Step() []string {
	var completed []string
	for id, c := range a.counters {
		if c.done {
			continue
		}
		if a.now().Sub(c.startAt) >= c.duration {
			c.done = true
			completed = append(completed, id)
		}
	}
	return completed
}

// Active reports whether any animation is still in flight.
func (a *Animator) Active() bool {
	for _, c := range a.counters {
		if !c.done {
			return true
		}
	}
	return false
}

// Cancel stops the animation for an id, snapping it to its target.
func (a *Animator) Cancel(id string) {
	if c, ok := a.counters[id]; ok {
		c.done = true
	}
}

// CancelAll stops every animation, snapping each to its target.
func (a *Animator) CancelAll() {
	for _, c := range a.counters {
		c.done = true
	}
}

// valueOf samples the displayed value for a counter at the current time.
func (a *Animator) valueOf(c *counter) int {
	if c.done {
		return c.target
	}
	elapsed := a.now().Sub(c.startAt)
	if elapsed >= c.duration {
		return c.target
	}
	progress := float64(elapsed) / float64(c.duration)
	eased := Apply(progress, c.easing)
	return int(math.Round(float64(c.start) + float64(c.target-c.start)*eased))
}
