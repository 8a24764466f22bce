package ecs_test

import (
	"testing"

	"github.com/plus3/emotesky/ecs"
	"github.com/stretchr/testify/assert"
)

type testDespawnSystem struct {
	entityToDespawn ecs.EntityId
	sawDuringFrame  bool
	movers          *ecs.Registry[Mover]
}

func (s *testDespawnSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Despawn(s.entityToDespawn)
	s.sawDuringFrame = s.movers.Has(s.entityToDespawn)
}

type testDeferSystem struct {
	log *[]string
}

func (s *testDeferSystem) Execute(frame *ecs.UpdateFrame) {
	frame.Commands.Defer(func() {
		*s.log = append(*s.log, "deferred")
	})
	*s.log = append(*s.log, "executed")
}

func TestCommandsDespawn(t *testing.T) {
	movers, ids := newMoverRegistry(Mover{}, Mover{})
	scheduler := ecs.NewScheduler(&ecs.ManualClock{}, moverStore{movers})

	system := &testDespawnSystem{entityToDespawn: ids[0], movers: movers}
	scheduler.Register(system)

	scheduler.Step()

	if !system.sawDuringFrame {
		t.Error("expected entity to stay registered until the frame is flushed")
	}
	if movers.Has(ids[0]) {
		t.Error("expected entity to be despawned after flush")
	}
	if !movers.Has(ids[1]) {
		t.Error("expected other entity to survive")
	}

	// Despawning an id that is already gone is a no-op.
	scheduler.Step()
	assert.Equal(t, 1, movers.Len())
}

func TestCommandsDuplicateDespawn(t *testing.T) {
	movers, ids := newMoverRegistry(Mover{})

	calls := 0
	target := countingDespawner{inner: moverStore{movers}, calls: &calls}

	scheduler := ecs.NewScheduler(&ecs.ManualClock{}, target)
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		frame.Commands.Despawn(ids[0])
		frame.Commands.Despawn(ids[0])
	}))

	scheduler.Step()

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, movers.Len())
}

type countingDespawner struct {
	inner ecs.Despawner
	calls *int
}

func (c countingDespawner) Despawn(id ecs.EntityId) bool {
	*c.calls++
	return c.inner.Despawn(id)
}

func TestCommandsDefer(t *testing.T) {
	var log []string
	scheduler := ecs.NewScheduler(&ecs.ManualClock{}, nil)
	scheduler.Register(&testDeferSystem{log: &log})
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		log = append(log, "second system")
		assert.Equal(t, 1, frame.Commands.Len())
	}))

	scheduler.Step()

	assert.Equal(t, []string{"executed", "second system", "deferred"}, log)

	log = nil
	scheduler.Step()
	assert.Equal(t, []string{"executed", "second system", "deferred"}, log, "buffer should be reset between frames")
}

func TestCommandsNilTarget(t *testing.T) {
	movers, ids := newMoverRegistry(Mover{})
	scheduler := ecs.NewScheduler(&ecs.ManualClock{}, nil)
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		frame.Commands.Despawn(ids[0])
	}))

	assert.NotPanics(t, scheduler.Step)
	assert.Equal(t, 1, movers.Len())
}
