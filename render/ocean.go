package render

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Palette of the scene.
var (
	SkyTop     = color.RGBA{0x4f, 0x9d, 0xde, 0xff}
	SkyHorizon = color.RGBA{0xe8, 0xf4, 0xff, 0xff}
	Ocean      = color.RGBA{0x57, 0xbe, 0xff, 0xff}
	OceanDeep  = color.RGBA{0x1d, 0x6f, 0xa8, 0xff}
	Sand       = color.RGBA{0xe9, 0xd8, 0xa6, 0xff}
	Palm       = color.RGBA{0x2e, 0x8b, 0x57, 0xff}
	CloudLight = color.RGBA{0xff, 0xff, 0xff, 0xff}
	CloudShade = color.RGBA{0xbb, 0xbb, 0xbb, 0xff}
	Fog        = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

const (
	fogNear = 1
	fogFar  = 80
)

// The island sits on the horizon to the right of the view.
var (
	IslandCenter = mgl32.Vec3{14, 0, -45}
	IslandRadius = float32(6)
)

// Swell is the height of the ocean surface at (x, z) after t seconds.
// It is a sum of a few travelling sine waves with an amplitude below 0.35.
func Swell(x, z, t float64) float64 {
	return 0.15*math.Sin(0.35*x+0.9*t) +
		0.1*math.Sin(0.5*z-0.7*t) +
		0.07*math.Sin(0.8*(x+z)+1.6*t)
}

// FogAmount is the fraction of fog colour at distance d, from 0 at fogNear
// to 1 at fogFar.
func FogAmount(d float64) float64 {
	return min(max((d-fogNear)/(fogFar-fogNear), 0), 1)
}

// Mix linearly interpolates between a and b.
func Mix(a, b color.RGBA, t float64) color.RGBA {
	t = min(max(t, 0), 1)
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B), lerp(a.A, b.A)}
}

// Shade scales the brightness of c by f in [0, 1].
func Shade(c color.RGBA, f float64) color.RGBA {
	return Mix(color.RGBA{0, 0, 0, c.A}, c, f)
}

// SkyAt returns the sky colour at screen row y for a horizon at row horizon.
func SkyAt(y, horizon float32) color.RGBA {
	if horizon <= 0 {
		return SkyHorizon
	}
	return Mix(SkyTop, SkyHorizon, float64(y/horizon))
}

// OceanAt returns the ocean colour of a surface point at distance d with
// swell height h.
func OceanAt(d, h float64) color.RGBA {
	c := Mix(OceanDeep, Ocean, 0.6+h)
	return Mix(c, Fog, FogAmount(d)*0.8)
}
