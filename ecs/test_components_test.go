package ecs_test

import "github.com/plus3/emotesky/ecs"

// Common test entity types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Mover struct {
	Position
	Velocity
	TTL float64
}

const (
	kindMover uint32 = iota + 1
	kindMarker
)

func newMoverRegistry(movers ...Mover) (*ecs.Registry[Mover], []ecs.EntityId) {
	registry := ecs.NewRegistry[Mover](len(movers))
	var serials ecs.Serials
	ids := make([]ecs.EntityId, 0, len(movers))
	for i := range movers {
		id := serials.Next(kindMover)
		m := movers[i]
		registry.Add(id, &m)
		ids = append(ids, id)
	}
	return registry, ids
}

// moverStore adapts a registry to the Despawner interface.
type moverStore struct {
	*ecs.Registry[Mover]
}

func (s moverStore) Despawn(id ecs.EntityId) bool {
	_, ok := s.Remove(id)
	return ok
}
