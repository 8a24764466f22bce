package sky

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/ecs"
)

const (
	// MinLifespan is the shortest lifespan an entity can be given.
	MinLifespan = 100 * time.Millisecond
	// MinVelocity is the slowest an emote group may travel, in units per second.
	MinVelocity = 0.05
	// Forever is the lifespan of entities that only expire on a condition.
	Forever = time.Duration(math.MaxInt64)
)

// Sprite is a renderable emote image.
type Sprite struct {
	ID   string
	Name string
}

// Entity is one animated object of the scene.
type Entity struct {
	Id ecs.EntityId

	Position mgl32.Vec3
	Velocity mgl32.Vec3

	CreatedAt time.Duration
	Lifespan  time.Duration
	Motion    Motion

	// Offset is the eased vertical displacement of emote groups.
	Offset float32
	Scale  float32
	Yaw    float32

	Sprites []Sprite
	// Cloud indexes the cloud shape slots for cloud kinds.
	Cloud int
	// Ring is set for members of a rotating cloud ring; Position is then ring-local.
	Ring *CloudRing

	expired    bool
	registered bool
}

// Progress returns the fraction of the lifespan elapsed at now.
// It is 0 at CreatedAt and 1 at CreatedAt+Lifespan.
func (e *Entity) Progress(now time.Duration) float64 {
	if e.Lifespan <= 0 {
		return 1
	}
	return float64(now-e.CreatedAt) / float64(e.Lifespan)
}

// Expired reports whether the entity should be removed at now.
func (e *Entity) Expired(now time.Duration) bool {
	if e.Motion.Kind == EmoteDrift {
		return now-e.CreatedAt > e.Lifespan
	}
	return e.expired
}

// MarkExpired flags a condition-based entity for removal on the next tick.
func (e *Entity) MarkExpired() {
	e.expired = true
}

// Registered reports whether the entity currently belongs to a registry.
func (e *Entity) Registered() bool {
	return e.registered
}

// WorldPosition returns the position the entity should be drawn at,
// including its eased offset and ring rotation.
func (e *Entity) WorldPosition() mgl32.Vec3 {
	pos := e.Position
	pos[1] += e.Offset
	if e.Ring != nil {
		pos = e.Ring.Transform(pos)
	}
	return pos
}

func (e *Entity) integrate(dt float64) {
	switch e.Motion.Kind {
	case EmoteDrift:
		e.Position = e.Position.Add(e.Velocity.Mul(float32(dt)))
	case CloudDrift:
		e.Position[0] += e.Motion.Rate
		if (e.Motion.Rate > 0 && e.Position[0] > e.Motion.ExitX) ||
			(e.Motion.Rate < 0 && e.Position[0] < e.Motion.ExitX) {
			e.expired = true
		}
	}
}

func (e *Entity) update(now time.Duration) {
	if e.Motion.Kind == EmoteDrift {
		e.Offset = float32(e.Motion.Easing.Eval(e.Progress(now)))
	}
}
