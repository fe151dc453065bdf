package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyClampsProgress(t *testing.T) {
	assert.Equal(t, 0.0, Apply(-0.5, "linear"))
	assert.Equal(t, 1.0, Apply(1.5, "linear"))
}

func TestApplyUnknownNameIsLinear(t *testing.T) {
	assert.InDelta(t, 0.4, Apply(0.4, "wobble"), 0.001)
}

func TestEasingBoundaries(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, Apply(0, name), 0.001, "%s at 0", name)
			assert.InDelta(t, 1.0, Apply(1, name), 0.001, "%s at 1", name)
		})
	}
}

func TestEaseInOutMidpoint(t *testing.T) {
	assert.InDelta(t, 0.5, Apply(0.5, "easeInOut"), 0.001)
}

func TestCounterReachesExactTarget(t *testing.T) {
	a := NewAnimator()
	now := time.Now()
	a.now = func() time.Time { return now }

	// Animating from 10 to 0 must end at exactly 0 after the duration,
	// regardless of intermediate rounding.
	a.Start("ai", 10, 0, time.Second, "easeOut")

	now = now.Add(400 * time.Millisecond)
	mid, ok := a.Value("ai")
	require.True(t, ok)
	assert.Greater(t, mid, 0)
	assert.Less(t, mid, 10)

	now = now.Add(700 * time.Millisecond)
	completed := a.Step()
	assert.Equal(t, []string{"ai"}, completed)

	final, ok := a.Value("ai")
	require.True(t, ok)
	assert.Equal(t, 0, final)
}

func TestCompletionFiredOnce(t *testing.T) {
	a := NewAnimator()
	now := time.Now()
	a.now = func() time.Time { return now }

	a.Start("total", 0, 5, 100*time.Millisecond, "linear")
	now = now.Add(150 * time.Millisecond)

	assert.Len(t, a.Step(), 1)
	assert.Empty(t, a.Step(), "completion effect is one-shot")
}

func TestRetriggerCancelsAndReplaces(t *testing.T) {
	a := NewAnimator()
	now := time.Now()
	a.now = func() time.Time { return now }

	a.Start("tabs", 0, 100, time.Second, "linear")
	now = now.Add(500 * time.Millisecond)

	displayed, _ := a.Value("tabs")
	assert.Equal(t, 50, displayed)

	// Re-triggering mid-flight replaces the prior animation and resumes
	// from the displayed value.
	a.Start("tabs", 0, 10, time.Second, "linear")

	v, _ := a.Value("tabs")
	assert.Equal(t, 50, v, "replacement starts from the displayed value")

	now = now.Add(time.Second)
	a.Step()
	v, _ = a.Value("tabs")
	assert.Equal(t, 10, v)
}

func TestStartWithEqualValuesCompletesImmediately(t *testing.T) {
	a := NewAnimator()

	a.Start("mem", 7, 7, time.Second, "linear")
	v, ok := a.Value("mem")
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.False(t, a.Active())
}

func TestCancelSnapsToTarget(t *testing.T) {
	a := NewAnimator()
	now := time.Now()
	a.now = func() time.Time { return now }

	a.Start("x", 0, 10, time.Second, "linear")
	a.Start("y", 0, 20, time.Second, "linear")
	assert.True(t, a.Active())

	a.Cancel("x")
	v, _ := a.Value("x")
	assert.Equal(t, 10, v)
	assert.True(t, a.Active(), "other animations keep running")

	a.CancelAll()
	assert.False(t, a.Active())
	v, _ = a.Value("y")
	assert.Equal(t, 20, v)
}

func TestUnknownCounter(t *testing.T) {
	a := NewAnimator()
	_, ok := a.Value("nope")
	assert.False(t, ok)
}
