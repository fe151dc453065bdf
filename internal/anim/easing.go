// Package anim provides easing functions and frame-driven counter animations
// for the dashboard's numeric displays.
package anim

import "math"

// Easing maps progress in [0,1] to eased progress in [0,1].
type Easing func(progress float64) float64

// easings is the registry of named easing functions.
var easings = map[string]Easing{
	"linear":      func(p float64) float64 { return p },
	"easeIn":      func(p float64) float64 { return p * p },
	"easeOut":     func(p float64) float64 { return p * (2 - p) },
	"easeInOut":   easeInOut,
	"easeOutCubic": func(p float64) float64 { return 1 - math.Pow(1-p, 3) },
	"bounce":      bounce,
}

func easeInOut(p float64) float64 {
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}

func bounce(p float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case p < 1/d1:
		return n1 * p * p
	case p < 2/d1:
		p -= 1.5 / d1
		return n1*p*p + 0.75
	case p < 2.5/d1:
		p -= 2.25 / d1
		return n1*p*p + 0.9375
	default:
		p -= 2.625 / d1
		return n1*p*p + 0.984375
	}
}

// Apply runs the named easing function over progress clamped to [0,1].
// Unknown names fall back to linear pass-through.
func Apply(progress float64, name string) float64 {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	if fn, ok := easings[name]; ok {
		return fn(progress)
	}
	return progress
}

// Names returns the registered easing names. Order is not specified.
func Names() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	return names
}
