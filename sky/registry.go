package sky

import (
	"iter"
	"time"

	"github.com/plus3/emotesky/ecs"
	"github.com/sirupsen/logrus"
)

// Boundary is the render side of the registry. It is told when an entity
// enters and leaves the scene.
type Boundary interface {
	AddToScene(e *Entity)
	RemoveFromScene(e *Entity)
}

// RegistryStats summarises registry activity.
type RegistryStats struct {
	Live    int
	ByKind  [numMotionKinds]int
	Spawned uint64
	Evicted uint64
}

// Count returns the number of live entities of kind.
func (s RegistryStats) Count(kind MotionKind) int {
	if kind >= numMotionKinds {
		return 0
	}
	return s.ByKind[kind]
}

// Registry owns the live entities of the scene and advances them every frame.
// It is not safe for concurrent use; only the frame goroutine touches it.
type Registry struct {
	entities *ecs.Registry[Entity]
	serials  ecs.Serials
	boundary Boundary
	log      *logrus.Entry

	spawned uint64
	evicted uint64
}

// NewRegistry creates an empty registry reporting to boundary.
func NewRegistry(boundary Boundary, log *logrus.Entry) *Registry {
	if boundary == nil {
		panic("registry requires a boundary")
	}
	return &Registry{
		entities: ecs.NewRegistry[Entity](256),
		boundary: boundary,
		log:      log,
	}
}

// Add inserts e, assigns its id and adds it to the scene.
// Adding an entity that already belongs to a registry panics.
func (r *Registry) Add(e *Entity) ecs.EntityId {
	if e.registered {
		panic("entity already belongs to a registry")
	}
	if e.Motion.Kind >= numMotionKinds {
		panic("unknown motion kind")
	}
	if e.Lifespan <= 0 {
		e.Lifespan = MinLifespan
	}

	e.Id = r.serials.Next(uint32(e.Motion.Kind))
	e.registered = true
	r.entities.Add(e.Id, e)
	r.spawned++
	r.boundary.AddToScene(e)

	r.log.WithFields(logrus.Fields{
		"id":       e.Id,
		"kind":     e.Motion.Kind,
		"lifespan": e.Lifespan,
	}).Trace("Entity spawned")
	return e.Id
}

// Tick advances every entity to now, from the newest to the oldest.
// Each entity is integrated by dt, then either removed when it has expired
// or has its eased offset recomputed. Survivors keep their relative order.
func (r *Registry) Tick(now time.Duration, dt float64) {
	r.entities.Sweep(func(_ ecs.EntityId, e *Entity) bool {
		e.integrate(dt)
		if e.Expired(now) {
			r.evict(e)
			return false
		}
		e.update(now)
		return true
	})
}

func (r *Registry) evict(e *Entity) {
	e.registered = false
	r.evicted++
	r.boundary.RemoveFromScene(e)
}

// Execute ticks the registry as part of the frame schedule.
func (r *Registry) Execute(frame *ecs.UpdateFrame) {
	r.Tick(frame.Now, frame.DeltaTime)
}

// Despawn removes the entity with id immediately.
func (r *Registry) Despawn(id ecs.EntityId) bool {
	e, ok := r.entities.Remove(id)
	if !ok {
		return false
	}
	r.evict(e)
	return true
}

// Clear removes every entity from the registry and the scene.
func (r *Registry) Clear() {
	for e := range r.entities.Values() {
		r.evict(e)
	}
	r.entities.Clear()
}

func (r *Registry) Len() int {
	return r.entities.Len()
}

// Get returns the live entity with id, or nil.
func (r *Registry) Get(id ecs.EntityId) *Entity {
	return r.entities.Get(id)
}

// All iterates the live entities in insertion order.
func (r *Registry) All() iter.Seq[*Entity] {
	return r.entities.Values()
}

// Stats counts the live entities per kind.
func (r *Registry) Stats() RegistryStats {
	stats := RegistryStats{
		Live:    r.entities.Len(),
		Spawned: r.spawned,
		Evicted: r.evicted,
	}
	for e := range r.entities.Values() {
		stats.ByKind[e.Motion.Kind]++
	}
	return stats
}
