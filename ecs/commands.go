package ecs

// Despawner removes entities by id. It is the target of deferred despawns.
type Despawner interface {
	Despawn(id EntityId) bool
}

// Commands provides a buffer for deferred operations that are executed at the end of a frame.
// This prevents structural changes to entity storage while systems iterate it.
type Commands struct {
	despawns []EntityId
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Defer queues a function to run after all systems have executed.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Despawn queues an entity removal.
func (c *Commands) Despawn(entity EntityId) {
	c.despawns = append(c.despawns, entity)
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.despawns) + len(c.defers)
}

// Flush applies all queued despawns to target, runs deferred functions and
// resets the buffer state. A nil target drops queued despawns.
func (c *Commands) Flush(target Despawner) {
	if target != nil {
		seen := make(map[EntityId]bool, len(c.despawns))
		for _, id := range c.despawns {
			if seen[id] {
				continue
			}
			seen[id] = true
			target.Despawn(id)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.despawns = c.despawns[:0]
	clear(c.defers)
	c.defers = c.defers[:0]
}
