package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/sky"
)

// WorldPuff is a cloud puff placed in the world.
type WorldPuff struct {
	Center mgl32.Vec3
	Radius float32
	Shade  float32
}

// CloudPuffs places the puffs of shape around cloud e. Puffs are scaled by
// e.Scale, turned by e.Yaw and, for ring members, by the ring angle.
func CloudPuffs(e *sky.Entity, shape assets.CloudShape) []WorldPuff {
	origin := e.WorldPosition()
	turn := mgl32.Rotate3DY(e.Yaw)

	puffs := make([]WorldPuff, len(shape.Puffs))
	for i, p := range shape.Puffs {
		offset := turn.Mul3x1(mgl32.Vec3{p.X, p.Y, p.Z}.Mul(e.Scale))
		if e.Ring != nil {
			offset = e.Ring.Transform(offset)
		}
		puffs[i] = WorldPuff{
			Center: origin.Add(offset),
			Radius: p.Radius * e.Scale,
			Shade:  p.Shade,
		}
	}
	return puffs
}

// SpriteCenters lays the sprites of an emote group out in a row centred on
// the group position, spacing world units apart.
func SpriteCenters(e *sky.Entity, spacing float32) []mgl32.Vec3 {
	origin := e.WorldPosition()
	n := len(e.Sprites)

	centers := make([]mgl32.Vec3, n)
	for i := range centers {
		dx := (float32(i) - float32(n-1)/2) * spacing * e.Scale
		centers[i] = origin.Add(mgl32.Vec3{dx, 0, 0})
	}
	return centers
}

// Emerged returns the fraction of a sprite of world height size centred on
// center that shows above the sea after t seconds, measured from its top.
// A sprite whose edges or surface point cannot be projected counts as fully
// emerged.
func Emerged(cam *Camera, center mgl32.Vec3, size float32, seconds float64) float32 {
	half := mgl32.Vec3{0, size / 2, 0}
	top, okTop := cam.Project(center.Add(half))
	bottom, okBottom := cam.Project(center.Sub(half))
	swell := Swell(float64(center.X()), float64(center.Z()), seconds)
	surface, okSurface := cam.Project(mgl32.Vec3{center.X(), float32(swell), center.Z()})
	if !okTop || !okBottom || !okSurface || bottom.Y <= top.Y {
		return 1
	}
	return min(max((surface.Y-top.Y)/(bottom.Y-top.Y), 0), 1)
}
