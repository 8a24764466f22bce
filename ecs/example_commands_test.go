package ecs_test

import (
	"fmt"
	"time"

	"github.com/plus3/emotesky/ecs"
)

type ExpirySystem struct {
	Movers *ecs.Registry[Mover]
}

func (s *ExpirySystem) Execute(frame *ecs.UpdateFrame) {
	expired := 0
	for id, m := range s.Movers.Iter() {
		m.TTL -= frame.DeltaTime
		if m.TTL <= 0 {
			frame.Commands.Despawn(id)
			expired++
		}
	}
	if expired > 0 {
		fmt.Printf("Queued %d expired movers\n", expired)
	}
}

// ExampleCommands demonstrates deferring despawns while a system iterates a
// registry. The scheduler flushes the buffer into its despawner after every
// system has run.
func ExampleCommands() {
	movers, _ := newMoverRegistry(
		Mover{TTL: 0.5},
		Mover{TTL: 2},
		Mover{TTL: 0.25},
	)

	clock := &ecs.ManualClock{}
	scheduler := ecs.NewScheduler(clock, moverStore{movers})
	scheduler.Register(&ExpirySystem{Movers: movers})
	scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		frame.Commands.Defer(func() {
			fmt.Printf("Live movers: %d\n", movers.Len())
		})
	}))

	scheduler.Once(0)
	clock.Advance(time.Second)
	scheduler.Once(clock.Now())

	// Output:
	// Live movers: 3
	// Queued 2 expired movers
	// Live movers: 1
}
