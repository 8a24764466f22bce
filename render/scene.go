// Package render holds the renderer-independent half of drawing the sky:
// the set of live scene nodes, the camera and the ocean surface.
package render

import (
	"slices"

	"github.com/plus3/emotesky/ecs"
	"github.com/plus3/emotesky/sky"
)

// Scene is the set of entities currently on stage, in the order they were
// added. It implements sky.Boundary. Scene is not safe for concurrent use.
type Scene struct {
	nodes []*sky.Entity
	index map[ecs.EntityId]int

	onAdd    []func(e *sky.Entity)
	onRemove []func(e *sky.Entity)
}

func NewScene() *Scene {
	return &Scene{index: make(map[ecs.EntityId]int)}
}

// OnAdd registers fn to be called for each entity entering the scene.
func (s *Scene) OnAdd(fn func(e *sky.Entity)) {
	s.onAdd = append(s.onAdd, fn)
}

// OnRemove registers fn to be called for each entity leaving the scene.
func (s *Scene) OnRemove(fn func(e *sky.Entity)) {
	s.onRemove = append(s.onRemove, fn)
}

func (s *Scene) AddToScene(e *sky.Entity) {
	if _, ok := s.index[e.Id]; ok {
		panic("entity already in scene")
	}
	s.index[e.Id] = len(s.nodes)
	s.nodes = append(s.nodes, e)

	for _, fn := range s.onAdd {
		fn(e)
	}
}

func (s *Scene) RemoveFromScene(e *sky.Entity) {
	idx, ok := s.index[e.Id]
	if !ok {
		return
	}

	s.nodes = slices.Delete(s.nodes, idx, idx+1)
	delete(s.index, e.Id)
	for i := idx; i < len(s.nodes); i++ {
		s.index[s.nodes[i].Id] = i
	}

	for _, fn := range s.onRemove {
		fn(e)
	}
}

func (s *Scene) Len() int {
	return len(s.nodes)
}

// Contains reports whether id is on stage.
func (s *Scene) Contains(id ecs.EntityId) bool {
	_, ok := s.index[id]
	return ok
}

// Nodes returns a snapshot of the live entities in insertion order.
func (s *Scene) Nodes() []*sky.Entity {
	return slices.Clone(s.nodes)
}

// DrawItem is a node with its projected screen placement.
type DrawItem struct {
	Entity *sky.Entity
	Screen Projection
}

// DrawList projects every visible node through cam and orders the result
// from far to near, so that painting in order gives correct occlusion.
func (s *Scene) DrawList(cam *Camera) []DrawItem {
	items := make([]DrawItem, 0, len(s.nodes))
	for _, e := range s.nodes {
		proj, ok := cam.Project(e.WorldPosition())
		if !ok {
			continue
		}
		items = append(items, DrawItem{Entity: e, Screen: proj})
	}

	slices.SortStableFunc(items, func(a, b DrawItem) int {
		switch {
		case a.Screen.Distance > b.Screen.Distance:
			return -1
		case a.Screen.Distance < b.Screen.Distance:
			return 1
		default:
			return 0
		}
	})
	return items
}
