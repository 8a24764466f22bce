// Package sky manages the transient animated entities of the scene: chat
// emote groups that rise out of the sea, cross the view and sink again, and
// the clouds above them.
package sky

import "github.com/plus3/emotesky/config"

// MotionKind selects how the registry advances an entity each frame.
type MotionKind uint8

const (
	// EmoteDrift moves by Velocity*dt, expires on the clock and eases its
	// vertical offset over its lifetime.
	EmoteDrift MotionKind = iota
	// CloudDrift moves a fixed Rate per frame along X and expires once past ExitX.
	CloudDrift
	// CloudRadial never moves on its own; its CloudRing rotates instead.
	CloudRadial

	numMotionKinds
)

func (k MotionKind) String() string {
	switch k {
	case EmoteDrift:
		return "emote"
	case CloudDrift:
		return "drift-cloud"
	case CloudRadial:
		return "radial-cloud"
	default:
		return "unknown"
	}
}

// Easing maps lifetime progress to a vertical offset in three bands: a
// quadratic rise below Low, a flat Plateau between Low and High and a
// quadratic fall above High. At p=0 and p=1 the offset is Plateau-Depth.
type Easing struct {
	Low     float64
	High    float64
	Plateau float64
	Depth   float64
}

// EasingFrom reads the easing bands out of the emote configuration.
func EasingFrom(cfg config.EmoteConfig) Easing {
	return Easing{
		Low:     cfg.EaseLow,
		High:    cfg.EaseHigh,
		Plateau: cfg.EasePlateau,
		Depth:   cfg.EaseDepth,
	}
}

// Eval returns the offset for progress p. p is clamped to [0, 1].
func (e Easing) Eval(p float64) float64 {
	p = min(max(p, 0), 1)

	switch {
	case p < e.Low:
		t := (e.Low - p) / e.Low
		return e.Plateau - e.Depth*t*t
	case p > e.High:
		t := (p - e.High) / (1 - e.High)
		return e.Plateau - e.Depth*t*t
	default:
		return e.Plateau
	}
}

// Motion is the motion profile of an entity. Only the fields of its Kind are used.
type Motion struct {
	Kind MotionKind

	// EmoteDrift
	Easing Easing

	// CloudDrift
	Rate  float32
	ExitX float32
}

func EmoteMotion(easing Easing) Motion {
	return Motion{Kind: EmoteDrift, Easing: easing}
}

// DriftMotion moves rate units per frame toward exitX, which must lie in the
// direction of travel.
func DriftMotion(rate, exitX float32) Motion {
	return Motion{Kind: CloudDrift, Rate: rate, ExitX: exitX}
}

func RadialMotion() Motion {
	return Motion{Kind: CloudRadial}
}
