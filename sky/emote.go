package sky

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/emotesky/config"
	"github.com/plus3/emotesky/ecs"
)

// EmoteParams are the randomized inputs of one emote group.
type EmoteParams struct {
	Depth    float64
	StartX   float64
	Velocity float64
	Jitter   float64
}

// EmoteSpawner turns batches of chat emotes into drifting emote groups.
// Enqueue may be called from any goroutine; spawning happens when the
// spawner runs as a system on the frame goroutine.
type EmoteSpawner struct {
	ctx     *Context
	cfg     config.EmoteConfig
	easing  Easing
	pending chan []Sprite
	onSpawn func(e *Entity)
}

func NewEmoteSpawner(ctx *Context, cfg config.EmoteConfig) *EmoteSpawner {
	return &EmoteSpawner{
		ctx:     ctx,
		cfg:     cfg,
		easing:  EasingFrom(cfg),
		pending: make(chan []Sprite, max(cfg.QueueSize, 1)),
	}
}

// OnSpawn registers fn to be called for every spawned group.
func (s *EmoteSpawner) OnSpawn(fn func(e *Entity)) {
	s.onSpawn = fn
}

// Enqueue queues a batch for the next frame. Empty batches are ignored.
// It never blocks: when the queue is full the batch is dropped and false returned.
func (s *EmoteSpawner) Enqueue(batch []Sprite) bool {
	if len(batch) == 0 {
		return false
	}
	select {
	case s.pending <- batch:
		return true
	default:
		s.ctx.Log.WithField("emotes", len(batch)).Warn("Emote queue full, dropping batch")
		return false
	}
}

// Pending returns the number of batches waiting for the next frame.
func (s *EmoteSpawner) Pending() int {
	return len(s.pending)
}

// Execute spawns every pending batch.
func (s *EmoteSpawner) Execute(frame *ecs.UpdateFrame) {
	for {
		select {
		case batch := <-s.pending:
			s.Spawn(batch, frame.Now)
		default:
			return
		}
	}
}

// Spawn creates one emote group for batch at now with freshly rolled parameters.
func (s *EmoteSpawner) Spawn(batch []Sprite, now time.Duration) *Entity {
	if len(batch) == 0 {
		return nil
	}

	e := NewEmote(batch, s.Roll(), s.cfg, s.easing, now)
	s.ctx.Registry.Add(e)
	if s.onSpawn != nil {
		s.onSpawn(e)
	}
	return e
}

// Roll draws the randomized parameters of a new group.
func (s *EmoteSpawner) Roll() EmoteParams {
	z := s.ctx.uniform(s.cfg.DepthNear, s.cfg.DepthFar)
	lateral := s.ctx.uniform(s.cfg.LateralScaleMin, s.cfg.LateralScaleMax)
	return EmoteParams{
		Depth:    z,
		StartX:   s.cfg.LateralSlope * z * lateral,
		Velocity: s.ctx.uniform(s.cfg.VelocityMin, s.cfg.VelocityMax),
		Jitter:   s.ctx.uniform(s.cfg.LifespanJitterMin, s.cfg.LifespanJitterMax),
	}
}

// NewEmote builds an emote group that travels left to right from p.StartX
// to the mirrored exit and lives exactly as long as the crossing takes,
// scaled by the configured lifespan factor and p.Jitter. A positive
// p.StartX is mirrored onto the left side.
func NewEmote(batch []Sprite, p EmoteParams, cfg config.EmoteConfig, easing Easing, now time.Duration) *Entity {
	v := max(math.Abs(p.Velocity), MinVelocity)
	startX := -math.Abs(p.StartX)
	exitX := -startX

	return &Entity{
		Position:  mgl32.Vec3{float32(startX), float32(cfg.BaseY), float32(p.Depth)},
		Velocity:  mgl32.Vec3{float32(v), 0, 0},
		CreatedAt: now,
		Lifespan:  EmoteLifespan(startX, exitX, v, cfg.LifespanScale*p.Jitter),
		Motion:    EmoteMotion(easing),
		Offset:    float32(easing.Eval(0)),
		Scale:     float32(cfg.Size),
		Sprites:   append([]Sprite(nil), batch...),
	}
}

// EmoteLifespan is the time needed to cover startX to exitX at velocity v,
// multiplied by scale. The result is never below MinLifespan.
func EmoteLifespan(startX, exitX, v, scale float64) time.Duration {
	v = max(math.Abs(v), MinVelocity)
	seconds := math.Abs(exitX-startX) / v * scale
	if seconds >= Forever.Seconds() {
		return Forever
	}
	lifespan := time.Duration(seconds * float64(time.Second))
	if math.IsNaN(seconds) || lifespan < MinLifespan {
		return MinLifespan
	}
	return lifespan
}
