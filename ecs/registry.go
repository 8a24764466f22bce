package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
)

// Registry is an insertion-ordered collection of live entities.
// Lookups by id go through an index; iteration and sweeping follow insertion order.
type Registry[T any] struct {
	ids   []EntityId
	items []*T
	index *intmap.Map[EntityId, *T]
}

// NewRegistry creates an empty registry sized for capacity entities.
func NewRegistry[T any](capacity int) *Registry[T] {
	return &Registry[T]{
		ids:   make([]EntityId, 0, capacity),
		items: make([]*T, 0, capacity),
		index: intmap.New[EntityId, *T](capacity),
	}
}

// Add appends an entity. Adding an id that is already present panics.
func (r *Registry[T]) Add(id EntityId, item *T) {
	if item == nil {
		panic("cannot add nil entity")
	}
	if _, ok := r.index.Get(id); ok {
		panic("entity already registered")
	}

	r.ids = append(r.ids, id)
	r.items = append(r.items, item)
	r.index.Put(id, item)
}

// Get returns the entity for id, or nil if it is not registered.
func (r *Registry[T]) Get(id EntityId) *T {
	item, ok := r.index.Get(id)
	if !ok {
		return nil
	}
	return item
}

// Has reports whether id is registered.
func (r *Registry[T]) Has(id EntityId) bool {
	_, ok := r.index.Get(id)
	return ok
}

// Len returns the number of live entities.
func (r *Registry[T]) Len() int {
	return len(r.ids)
}

// Remove deletes the entity with the given id, preserving the order of the rest.
func (r *Registry[T]) Remove(id EntityId) (*T, bool) {
	item, ok := r.index.Get(id)
	if !ok {
		return nil, false
	}

	idx := slices.Index(r.ids, id)
	r.removeAt(idx)
	return item, true
}

func (r *Registry[T]) removeAt(idx int) {
	r.index.Del(r.ids[idx])
	r.ids = slices.Delete(r.ids, idx, idx+1)
	r.items = slices.Delete(r.items, idx, idx+1)
}

// Sweep visits every entity from the end of the collection backward.
// Entities for which keep returns false are removed before the next visit,
// so removal during the sweep is safe. The relative order of survivors is kept.
func (r *Registry[T]) Sweep(keep func(EntityId, *T) bool) {
	for i := len(r.ids) - 1; i >= 0; i-- {
		if !keep(r.ids[i], r.items[i]) {
			r.removeAt(i)
		}
	}
}

// Iter returns an iterator over entities in insertion order.
func (r *Registry[T]) Iter() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for i := range r.ids {
			if !yield(r.ids[i], r.items[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over just the entities, in insertion order.
func (r *Registry[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, item := range r.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Clear removes every entity.
func (r *Registry[T]) Clear() {
	r.ids = r.ids[:0]
	clear(r.items)
	r.items = r.items[:0]
	r.index.Clear()
}
