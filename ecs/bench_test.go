package ecs_test

import (
	"testing"
	"time"

	"github.com/plus3/emotesky/ecs"
)

func BenchmarkRegistryAdd(b *testing.B) {
	registry := ecs.NewRegistry[Mover](b.N)
	var serials ecs.Serials

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		registry.Add(serials.Next(kindMover), &Mover{TTL: 1})
	}
}

func BenchmarkRegistryGet(b *testing.B) {
	movers := make([]Mover, 1000)
	registry, ids := newMoverRegistry(movers...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = registry.Get(ids[i%len(ids)])
	}
}

func BenchmarkRegistryIter(b *testing.B) {
	movers := make([]Mover, 1000)
	for i := range movers {
		movers[i].DX = 1
	}
	registry, _ := newMoverRegistry(movers...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for m := range registry.Values() {
			m.X += m.DX
		}
	}
}

// BenchmarkRegistryChurn adds and sweeps entities at a steady population,
// the pattern of a scene where things keep spawning and expiring.
func BenchmarkRegistryChurn(b *testing.B) {
	registry := ecs.NewRegistry[Mover](256)
	var serials ecs.Serials
	for range 200 {
		registry.Add(serials.Next(kindMover), &Mover{TTL: 1})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range 10 {
			registry.Add(serials.Next(kindMover), &Mover{TTL: 1})
		}
		n := 0
		registry.Sweep(func(ecs.EntityId, *Mover) bool {
			n++
			return n > 10
		})
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	movers := make([]Mover, 500)
	registry, _ := newMoverRegistry(movers...)

	clock := &ecs.ManualClock{}
	scheduler := ecs.NewScheduler(clock, moverStore{registry})
	for range 5 {
		scheduler.Register(ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
			for m := range registry.Values() {
				m.X += m.DX * float32(frame.DeltaTime)
			}
		}))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clock.Advance(time.Second / 60)
		scheduler.Step()
	}
}
