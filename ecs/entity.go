package ecs

// EntityId addresses an entity by archetype and slot: the archetype id sits
// in the upper 32 bits with the slot index below it. An id is only valid
// until the entity's component set changes, because AddComponent and
// RemoveComponent relocate the entity into a different archetype. Hold an
// EntityRef across structural changes instead.
type EntityId uint64

func NewEntityId(archetypeId uint32, index uint32) EntityId {
	return EntityId(uint64(archetypeId)<<32 | uint64(index))
}

// ArchetypeId is the upper half of the id.
func (e EntityId) ArchetypeId() uint32 {
	return uint32(e >> 32)
}

// Index is the lower half: the entity's slot inside its archetype.
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// EntityRef is a stable handle. Storage rewrites Id and Archetype in place
// whenever the entity moves between archetypes or its archetype compacts, and
// zeroes them on delete, so a ref either resolves to the live entity or to
// nothing. Refs are tracked weakly; an unreferenced ref is simply collected.
type EntityRef struct {
	Id        EntityId
	Archetype *Archetype
}
