package ecs

import "reflect"

// UpdateFrame is the per-tick context handed to every system: the elapsed
// time since the previous tick, the storage, and the command buffer whose
// contents apply once all systems have run.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(dt float64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  &Commands{},
		Storage:   storage,
	}
}

// Commands buffers structural changes requested while systems are running.
// Queries and views hand out raw component pointers, so a spawn or component
// move mid-tick would relocate memory under a running system; buffered
// operations apply only when the scheduler flushes at the end of the tick.
type Commands struct {
	spawned  [][]any
	dropped  []EntityId
	attached []attachOp
	detached []detachOp
	deferred []func()
}

type attachOp struct {
	target    EntityId
	component any
}

type detachOp struct {
	target   EntityId
	compType reflect.Type
}

// Defer queues an arbitrary function for the flush phase.
func (c *Commands) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

// Spawn queues creation of an entity with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawned = append(c.spawned, components)
}

// Delete queues removal of an entity.
func (c *Commands) Delete(entity EntityId) {
	c.dropped = append(c.dropped, entity)
}

// AddComponent queues attaching a component to an entity.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.attached = append(c.attached, attachOp{target: entity, component: component})
}

// RemoveComponent queues detaching a component type from an entity.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.detached = append(c.detached, detachOp{target: entity, compType: compType})
}

// Flush applies the buffered operations against storage and resets the
// buffer. Deletions win: attach and detach requests aimed at an entity that
// was also deleted this tick are dropped rather than resurrecting it in a
// new archetype. Deferred functions run last, after all structural changes.
func (c *Commands) Flush(storage *Storage) {
	dead := make(map[EntityId]bool, len(c.dropped))
	for _, id := range c.dropped {
		storage.Delete(id)
		dead[id] = true
	}

	for _, op := range c.detached {
		if !dead[op.target] {
			storage.RemoveComponent(op.target, op.compType)
		}
	}

	for _, op := range c.attached {
		if !dead[op.target] {
			storage.AddComponent(op.target, op.component)
		}
	}

	for _, components := range c.spawned {
		storage.Spawn(components...)
	}

	for _, fn := range c.deferred {
		fn()
	}

	c.spawned = c.spawned[:0]
	c.dropped = c.dropped[:0]
	c.attached = c.attached[:0]
	c.detached = c.detached[:0]
	c.deferred = c.deferred[:0]
}
