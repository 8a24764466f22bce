package sky

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/assets"
	"github.com/plus3/emotesky/config"
	"github.com/plus3/emotesky/ecs"
	"github.com/sirupsen/logrus"
)

// CloudRing rotates a group of clouds around the vertical axis through the viewer.
type CloudRing struct {
	// Angle is the current rotation in radians.
	Angle float64
	// AngularVelocity is in radians per second; positive turns clockwise
	// seen from above.
	AngularVelocity float64
}

func (r *CloudRing) Execute(frame *ecs.UpdateFrame) {
	r.Angle = math.Mod(r.Angle-r.AngularVelocity*frame.DeltaTime, 2*math.Pi)
}

// Transform converts a ring-local position into world space.
func (r *CloudRing) Transform(local mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Rotate3DY(float32(r.Angle)).Mul3x1(local)
}

// RadialAngle returns the direction of cloud i of n. With u in [0, 1) the
// result lies in [2πi/n, 2π(i+1)/n), so every slice of the ring gets one cloud.
func RadialAngle(i, n int, u float64) float64 {
	return 2 * math.Pi * (float64(i) + u) / float64(n)
}

// RadialScale is MinScale + ScaleRange*u², favouring small clouds.
func RadialScale(cfg config.RadialConfig, u float64) float64 {
	return cfg.MinScale + cfg.ScaleRange*u*u
}

// RadialCloudSpawner places a ring of clouds once every cloud shape has
// finished loading.
type RadialCloudSpawner struct {
	ctx    *Context
	cfg    config.RadialConfig
	ring   *CloudRing
	shapes *assets.Slots[assets.CloudShape]
	done   bool
}

func NewRadialCloudSpawner(ctx *Context, cfg config.RadialConfig, ring *CloudRing, shapes *assets.Slots[assets.CloudShape]) *RadialCloudSpawner {
	return &RadialCloudSpawner{
		ctx:    ctx,
		cfg:    cfg,
		ring:   ring,
		shapes: shapes,
	}
}

// Done reports whether the ring has been placed.
func (s *RadialCloudSpawner) Done() bool {
	return s.done
}

func (s *RadialCloudSpawner) Execute(frame *ecs.UpdateFrame) {
	if s.done || !s.shapes.AllSettled() {
		return
	}
	s.done = true

	if len(s.shapes.Loaded()) == 0 {
		s.ctx.Log.Warn("No cloud shapes loaded, sky stays clear")
		return
	}

	spawned := 0
	for i := range s.cfg.Count {
		if s.spawn(i, frame.Now) {
			spawned++
		}
	}
	s.ctx.Log.WithField("clouds", spawned).Info("Cloud ring placed")
}

func (s *RadialCloudSpawner) spawn(i int, now time.Duration) bool {
	rng := s.ctx.Rand
	shape, _, ok := s.shapes.Sample(rng)
	if !ok {
		return false
	}

	angle := RadialAngle(i, s.cfg.Count, rng.Float64())
	radius := s.ctx.uniform(s.cfg.RadiusMin, s.cfg.RadiusMax)

	var height float64
	if rng.Float64() < 0.5 {
		height = s.ctx.uniform(s.cfg.LowMin, s.cfg.LowMax)
	} else {
		height = s.ctx.uniform(s.cfg.HighMin, s.cfg.HighMax)
	}

	s.ctx.Registry.Add(&Entity{
		Position: mgl32.Vec3{
			float32(math.Sin(angle) * radius),
			float32(height),
			float32(math.Cos(angle) * radius),
		},
		CreatedAt: now,
		Lifespan:  Forever,
		Motion:    RadialMotion(),
		Scale:     float32(RadialScale(s.cfg, rng.Float64())),
		Yaw:       float32(rng.Float64() * 2 * math.Pi),
		Cloud:     shape,
		Ring:      s.ring,
	})
	return true
}

// DriftStartX is the X just outside the left edge of the view at depth z.
func DriftStartX(aspect, z float64, cfg config.DriftConfig) float64 {
	return -(aspect * math.Abs(z) * cfg.EdgeFactor) - cfg.Margin
}

// DriftCloudSpawner releases a cloud every Interval that crosses the view
// from left to right and is removed on the far side.
type DriftCloudSpawner struct {
	ctx    *Context
	cfg    config.DriftConfig
	shapes *assets.Slots[assets.CloudShape]

	next    time.Duration
	started bool
}

func NewDriftCloudSpawner(ctx *Context, cfg config.DriftConfig, shapes *assets.Slots[assets.CloudShape]) *DriftCloudSpawner {
	return &DriftCloudSpawner{
		ctx:    ctx,
		cfg:    cfg,
		shapes: shapes,
	}
}

func (s *DriftCloudSpawner) Execute(frame *ecs.UpdateFrame) {
	if !s.started {
		s.started = true
		s.next = frame.Now + s.cfg.Interval
		return
	}

	if frame.Now >= s.next {
		s.next = frame.Now + s.cfg.Interval
		s.Spawn(frame.Now)
	}
}

// Spawn releases one cloud now. It returns nil without spawning when no
// cloud shape has loaded yet.
func (s *DriftCloudSpawner) Spawn(now time.Duration) *Entity {
	shape, cloud, ok := s.shapes.Sample(s.ctx.Rand)
	if !ok {
		return nil
	}

	z := s.ctx.uniform(s.cfg.DepthMin, s.cfg.DepthMax)
	// The whole cloud starts and ends outside the view.
	startX := DriftStartX(s.ctx.Viewport.Aspect(), z, s.cfg) - float64(cloud.Extent())*s.cfg.Scale

	e := &Entity{
		Position: mgl32.Vec3{
			float32(startX),
			float32(s.ctx.uniform(s.cfg.HeightMin, s.cfg.HeightMax)),
			float32(z),
		},
		CreatedAt: now,
		Lifespan:  Forever,
		Motion:    DriftMotion(float32(s.cfg.Rate), float32(-startX)),
		Scale:     float32(s.cfg.Scale),
		Yaw:       float32(s.ctx.Rand.Float64() * 2 * math.Pi),
		Cloud:     shape,
	}
	s.ctx.Registry.Add(e)

	s.ctx.Log.WithFields(logrus.Fields{
		"cloud": shape,
		"z":     z,
	}).Debug("Cloud released")
	return e
}
