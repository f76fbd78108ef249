package sim

import "sync"

// CommandBuffer buffers structural operations and commits them in one pass.
// Declaring new entities is decoupled from committing them: callers enqueue a
// full component set per entity, and a single Apply materializes everything.
// A queued entity never exists in a partially-composed state.
//
// Enqueue operations are safe to call concurrently from systems running in
// the same batch.
type CommandBuffer struct {
	mu       sync.Mutex
	spawns   []spawnCommand
	destroys []Entity
	defers   []func()
}

type spawnCommand struct {
	components []any
}

// NewCommandBuffer creates an empty command buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Spawn queues an entity creation with its full component set.
func (c *CommandBuffer) Spawn(components ...any) {
	c.mu.Lock()
	c.spawns = append(c.spawns, spawnCommand{components: components})
	c.mu.Unlock()
}

// Destroy queues an entity destruction.
func (c *CommandBuffer) Destroy(e Entity) {
	c.mu.Lock()
	c.destroys = append(c.destroys, e)
	c.mu.Unlock()
}

// Defer queues a function to run after all structural operations commit.
func (c *CommandBuffer) Defer(fn func()) {
	c.mu.Lock()
	c.defers = append(c.defers, fn)
	c.mu.Unlock()
}

// Len returns the number of queued operations.
func (c *CommandBuffer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spawns) + len(c.destroys) + len(c.defers)
}

// Apply commits all queued operations to the store and resets the buffer.
// Destroys run first, then spawns, then deferred functions.
func (c *CommandBuffer) Apply(store *EntityStore) {
	c.mu.Lock()
	destroys := c.destroys
	spawns := c.spawns
	defers := c.defers
	c.destroys = nil
	c.spawns = nil
	c.defers = nil
	c.mu.Unlock()

	for _, e := range destroys {
		store.Destroy(e)
	}
	for _, cmd := range spawns {
		store.Create(cmd.components...)
	}
	for _, fn := range defers {
		fn()
	}
}
