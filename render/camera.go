package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	nearPlane = 0.1
	farPlane  = 1000
)

// Camera is a perspective camera at a fixed eye position looking down -Z.
// It implements sky.Viewport.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3

	fov    float32
	width  int
	height int

	view     mgl32.Mat4
	viewProj mgl32.Mat4
	focal    float32
}

// NewCamera creates a camera with a vertical field of view of fovDegrees
// for a width x height screen.
func NewCamera(fovDegrees float64, width, height int) *Camera {
	c := &Camera{
		Eye:    mgl32.Vec3{0, 2, 0},
		Target: mgl32.Vec3{0, 2, -1},
		fov:    mgl32.DegToRad(float32(fovDegrees)),
	}
	c.Resize(width, height)
	return c
}

// Resize updates the projection for a new screen size. Sizes below one
// pixel are raised to one.
func (c *Camera) Resize(width, height int) {
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.update()
}

// LookAt moves the camera.
func (c *Camera) LookAt(eye, target mgl32.Vec3) {
	c.Eye = eye
	c.Target = target
	c.update()
}

func (c *Camera) update() {
	c.view = mgl32.LookAtV(c.Eye, c.Target, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(c.fov, float32(c.Aspect()), nearPlane, farPlane)
	c.viewProj = proj.Mul4(c.view)
	c.focal = float32(c.height) / 2 / float32(math.Tan(float64(c.fov)/2))
}

func (c *Camera) Size() (int, int) {
	return c.width, c.height
}

// Focal is the distance to the image plane in pixels.
func (c *Camera) Focal() float32 {
	return c.focal
}

// Aspect is width over height.
func (c *Camera) Aspect() float64 {
	return float64(c.width) / float64(c.height)
}

// Projection is where a world point lands on screen.
type Projection struct {
	X, Y float32
	// Distance is the depth in front of the camera, in world units.
	Distance float32
	// PixelsPerUnit converts world sizes at this depth into pixels.
	PixelsPerUnit float32
}

// Project maps a world point to screen pixels. It returns false for points
// behind the camera or outside the depth range.
func (c *Camera) Project(p mgl32.Vec3) (Projection, bool) {
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= nearPlane {
		return Projection{}, false
	}

	ndc := clip.Vec3().Mul(1 / w)
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return Projection{}, false
	}

	distance := -c.view.Mul4x1(p.Vec4(1)).Z()
	return Projection{
		X:             (ndc.X() + 1) / 2 * float32(c.width),
		Y:             (1 - ndc.Y()) / 2 * float32(c.height),
		Distance:      distance,
		PixelsPerUnit: c.focal / distance,
	}, true
}

// Horizon returns the screen row of the horizon.
func (c *Camera) Horizon() float32 {
	dir := c.Target.Sub(c.Eye).Normalize()
	far := c.Eye.Add(mgl32.Vec3{dir.X(), 0, dir.Z()}.Normalize().Mul(farPlane * 0.9))
	far[1] = c.Eye.Y()
	if proj, ok := c.Project(far); ok {
		return proj.Y
	}
	return float32(c.height) / 2
}

// Visible reports whether a projected point of the given pixel radius
// overlaps the screen.
func (c *Camera) Visible(p Projection, radius float32) bool {
	return p.X+radius >= 0 && p.X-radius <= float32(c.width) &&
		p.Y+radius >= 0 && p.Y-radius <= float32(c.height)
}
