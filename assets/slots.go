// Package assets holds asynchronously loaded scene assets behind explicit
// Pending/Loaded slots, so readers never observe a half-loaded value.
package assets

import (
	"math/rand/v2"
	"sync"
)

// SlotState tags the contents of a Slot.
type SlotState uint8

const (
	Pending SlotState = iota
	Loaded
	Failed
)

func (s SlotState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot is a single asset that is either still pending, loaded with a value, or failed.
type Slot[T any] struct {
	State SlotState
	Value T
}

// Get returns the value only when the slot is loaded.
func (s Slot[T]) Get() (T, bool) {
	if s.State != Loaded {
		var zero T
		return zero, false
	}
	return s.Value, true
}

// Slots is a fixed-size set of asset slots filled in by concurrent loaders.
// All methods are safe for concurrent use.
type Slots[T any] struct {
	mu      sync.RWMutex
	slots   []Slot[T]
	settled int
	ready   chan struct{}
}

// NewSlots creates n pending slots.
func NewSlots[T any](n int) *Slots[T] {
	s := &Slots[T]{
		slots: make([]Slot[T], n),
		ready: make(chan struct{}),
	}
	if n == 0 {
		close(s.ready)
	}
	return s
}

func (s *Slots[T]) Len() int {
	return len(s.slots)
}

// Set stores a loaded value in slot i. Only the first Set or Fail for a slot takes effect.
func (s *Slots[T]) Set(i int, value T) bool {
	return s.settle(i, Slot[T]{State: Loaded, Value: value})
}

// Fail marks slot i as permanently unavailable.
func (s *Slots[T]) Fail(i int) bool {
	return s.settle(i, Slot[T]{State: Failed})
}

func (s *Slots[T]) settle(i int, slot Slot[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slots[i].State != Pending {
		return false
	}
	s.slots[i] = slot
	s.settled++
	if s.settled == len(s.slots) {
		close(s.ready)
	}
	return true
}

// Get returns the value of slot i if it is loaded.
func (s *Slots[T]) Get(i int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.slots) {
		var zero T
		return zero, false
	}
	return s.slots[i].Get()
}

// State returns the state of slot i.
func (s *Slots[T]) State(i int) SlotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[i].State
}

// Loaded returns the indices of all loaded slots in ascending order.
func (s *Slots[T]) Loaded() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indices := make([]int, 0, len(s.slots))
	for i, slot := range s.slots {
		if slot.State == Loaded {
			indices = append(indices, i)
		}
	}
	return indices
}

// AllSettled reports whether no slot is pending any more.
func (s *Slots[T]) AllSettled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settled == len(s.slots)
}

// Ready is closed once every slot has settled.
func (s *Slots[T]) Ready() <-chan struct{} {
	return s.ready
}

// Sample picks a uniformly random loaded slot. It returns false when nothing is loaded yet.
func (s *Slots[T]) Sample(rng *rand.Rand) (int, T, bool) {
	loaded := s.Loaded()
	if len(loaded) == 0 {
		var zero T
		return -1, zero, false
	}

	idx := loaded[rng.IntN(len(loaded))]
	value, _ := s.Get(idx)
	return idx, value, true
}
