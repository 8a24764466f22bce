package sky_test

import (
	"io"
	"time"

	"github.com/plus3/emotesky/config"
	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/sky"
	"github.com/sirupsen/logrus"
)

const ms = time.Millisecond

func quietLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// recorder is a Boundary that remembers scene membership.
type recorder struct {
	added   []ecs.EntityId
	removed []ecs.EntityId
	live    map[ecs.EntityId]*sky.Entity
}

func newRecorder() *recorder {
	return &recorder{live: make(map[ecs.EntityId]*sky.Entity)}
}

func (r *recorder) AddToScene(e *sky.Entity) {
	r.added = append(r.added, e.Id)
	r.live[e.Id] = e
}

func (r *recorder) RemoveFromScene(e *sky.Entity) {
	r.removed = append(r.removed, e.Id)
	delete(r.live, e.Id)
}

func newTestContext(seed uint64) (*sky.Context, *recorder, *ecs.ManualClock) {
	rec := newRecorder()
	clock := &ecs.ManualClock{}
	ctx := sky.NewContext(rec, clock, sky.FixedViewport(16.0/9.0), seed, quietLog())
	return ctx, rec, clock
}

// timed returns an emote entity created at createdAt that expires at expiresAt.
func timed(createdAt, expiresAt time.Duration) *sky.Entity {
	return &sky.Entity{
		CreatedAt: createdAt,
		Lifespan:  expiresAt - createdAt,
		Motion:    sky.EmoteMotion(sky.EasingFrom(config.Default().Emotes)),
	}
}

func frame(now time.Duration, dt float64) *ecs.UpdateFrame {
	return &ecs.UpdateFrame{Now: now, DeltaTime: dt, Commands: &ecs.Commands{}}
}
