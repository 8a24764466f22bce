package ecs_test

import (
	"fmt"
	"testing"

	"github.com/plus3/emotesky/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	kind := uint32(12345)
	serial := uint32(67890)

	entityId := ecs.NewEntityId(kind, serial)

	assert.Equal(t, kind, entityId.Kind())
	assert.Equal(t, serial, entityId.Serial())
}

func TestEntityIdEdgeCases(t *testing.T) {
	tests := []struct {
		kind   uint32
		serial uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("kind=%d,serial=%d", tt.kind, tt.serial), func(t *testing.T) {
			entityId := ecs.NewEntityId(tt.kind, tt.serial)
			assert.Equal(t, tt.kind, entityId.Kind())
			assert.Equal(t, tt.serial, entityId.Serial())
		})
	}
}

func TestSerials(t *testing.T) {
	var serials ecs.Serials

	a := serials.Next(kindMover)
	b := serials.Next(kindMover)
	c := serials.Next(kindMarker)

	assert.NotEqual(t, ecs.EntityId(0), a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, uint32(1), a.Serial())
	assert.Equal(t, uint32(2), b.Serial())
	assert.Equal(t, uint32(1), c.Serial())
	assert.Equal(t, kindMarker, c.Kind())
}

func TestRegistryAddAndGet(t *testing.T) {
	registry, ids := newMoverRegistry(
		Mover{Position: Position{X: 1}},
		Mover{Position: Position{X: 2}},
	)

	assert.Equal(t, 2, registry.Len())
	require.NotNil(t, registry.Get(ids[0]))
	assert.Equal(t, float32(1), registry.Get(ids[0]).X)
	assert.Equal(t, float32(2), registry.Get(ids[1]).X)
	assert.True(t, registry.Has(ids[1]))
	assert.Nil(t, registry.Get(ecs.NewEntityId(kindMover, 99)))
}

func TestRegistryDuplicateAddPanics(t *testing.T) {
	registry, ids := newMoverRegistry(Mover{})

	assert.Panics(t, func() {
		registry.Add(ids[0], &Mover{})
	})
	assert.Panics(t, func() {
		registry.Add(ecs.NewEntityId(kindMover, 7), nil)
	})
}

func TestRegistryInsertionOrder(t *testing.T) {
	registry, ids := newMoverRegistry(
		Mover{Position: Position{X: 1}},
		Mover{Position: Position{X: 2}},
		Mover{Position: Position{X: 3}},
	)

	var seen []ecs.EntityId
	for id := range registry.Iter() {
		seen = append(seen, id)
	}
	assert.Equal(t, ids, seen)

	var xs []float32
	for m := range registry.Values() {
		xs = append(xs, m.X)
	}
	assert.Equal(t, []float32{1, 2, 3}, xs)
}

func TestRegistryRemove(t *testing.T) {
	registry, ids := newMoverRegistry(
		Mover{Position: Position{X: 1}},
		Mover{Position: Position{X: 2}},
		Mover{Position: Position{X: 3}},
	)

	removed, ok := registry.Remove(ids[1])
	require.True(t, ok)
	assert.Equal(t, float32(2), removed.X)
	assert.False(t, registry.Has(ids[1]))

	_, ok = registry.Remove(ids[1])
	assert.False(t, ok)

	var xs []float32
	for m := range registry.Values() {
		xs = append(xs, m.X)
	}
	assert.Equal(t, []float32{1, 3}, xs)
}

func TestRegistrySweep(t *testing.T) {
	t.Run("visits backward and removes in place", func(t *testing.T) {
		registry, ids := newMoverRegistry(
			Mover{TTL: 1},
			Mover{TTL: 0},
			Mover{TTL: 2},
			Mover{TTL: 0},
		)

		var visited []ecs.EntityId
		registry.Sweep(func(id ecs.EntityId, m *Mover) bool {
			visited = append(visited, id)
			return m.TTL > 0
		})

		assert.Equal(t, []ecs.EntityId{ids[3], ids[2], ids[1], ids[0]}, visited)
		assert.Equal(t, 2, registry.Len())
		assert.False(t, registry.Has(ids[1]))
		assert.False(t, registry.Has(ids[3]))

		var remaining []ecs.EntityId
		for id := range registry.Iter() {
			remaining = append(remaining, id)
		}
		assert.Equal(t, []ecs.EntityId{ids[0], ids[2]}, remaining)
	})

	t.Run("keeping everything changes nothing", func(t *testing.T) {
		registry, ids := newMoverRegistry(Mover{}, Mover{})
		registry.Sweep(func(ecs.EntityId, *Mover) bool { return true })
		assert.Equal(t, 2, registry.Len())
		assert.True(t, registry.Has(ids[0]))
	})

	t.Run("empty registry", func(t *testing.T) {
		registry := ecs.NewRegistry[Mover](0)
		calls := 0
		registry.Sweep(func(ecs.EntityId, *Mover) bool {
			calls++
			return false
		})
		assert.Equal(t, 0, calls)
	})
}

func TestRegistryClear(t *testing.T) {
	registry, ids := newMoverRegistry(Mover{}, Mover{})
	registry.Clear()

	assert.Equal(t, 0, registry.Len())
	assert.False(t, registry.Has(ids[0]))

	registry.Add(ids[0], &Mover{})
	assert.Equal(t, 1, registry.Len())
}
