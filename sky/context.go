package sky

import (
	"math/rand/v2"

	"github.com/plus3/emotesky/ecs"
	"github.com/sirupsen/logrus"
)

// Viewport reports the shape of the visible area. Spawners read it only at
// spawn time.
type Viewport interface {
	Aspect() float64
}

// FixedViewport is a Viewport with a constant aspect ratio.
type FixedViewport float64

func (v FixedViewport) Aspect() float64 {
	return float64(v)
}

// Context carries the collaborators shared by spawners and systems.
type Context struct {
	Registry *Registry
	Clock    ecs.Clock
	Rand     *rand.Rand
	Viewport Viewport
	Log      *logrus.Entry
}

// NewContext builds a Context with a registry reporting to boundary and a
// PCG random source seeded with seed.
func NewContext(boundary Boundary, clock ecs.Clock, viewport Viewport, seed uint64, log *logrus.Entry) *Context {
	return &Context{
		Registry: NewRegistry(boundary, log.WithField("component", "registry")),
		Clock:    clock,
		Rand:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Viewport: viewport,
		Log:      log,
	}
}

// uniform returns a value uniformly distributed between a and b, in either order.
func (c *Context) uniform(a, b float64) float64 {
	return a + (b-a)*c.Rand.Float64()
}
