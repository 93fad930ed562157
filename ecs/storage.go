package ecs

import (
	"reflect"
	"weak"
)

// Storage owns the archetype tables and singletons for one world. Entities
// live in the archetype matching their exact component set; structural
// changes move them between archetypes.
type Storage struct {
	archetypes map[uint32]*Archetype
	registry   *ComponentRegistry
	singletons map[reflect.Type]*singletonEntry
}

func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// CreateEntityRef returns the stable handle for an entity, reusing the live
// one if a ref for this entity already exists. Returns nil for an id that
// addresses no archetype.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	archetype := s.archetypes[id.ArchetypeId()]
	if archetype == nil {
		return nil
	}

	if weakPtr, ok := archetype.refs.Get(id); ok {
		if ref := weakPtr.Value(); ref != nil {
			return ref
		}
		// The previous ref was collected; drop the dead weak entry.
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the entity's current id, or false if the ref is
// nil or the entity was deleted out from under it.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if ref == nil || ref.Id == 0 {
		return 0, false
	}
	return ref.Id, true
}

// InvalidateEntityRef disconnects a ref from its entity without deleting the
// entity. Reports whether the ref was live.
func (s *Storage) InvalidateEntityRef(ref *EntityRef) bool {
	if ref == nil || ref.Id == 0 {
		return false
	}

	if archetype := s.archetypes[ref.Id.ArchetypeId()]; archetype != nil {
		archetype.refs.Del(ref.Id)
	}

	ref.Id = 0
	ref.Archetype = nil
	return true
}

// GetArchetype looks up the archetype holding exactly the given component
// set, or nil if no entity with that set was ever spawned.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	return s.archetypes[archetypeHash(componentTypes(components))]
}

// GetArchetypeByTypes is GetArchetype for callers that already hold
// reflect.Types. The slice is sorted in place.
func (s *Storage) GetArchetypeByTypes(types []reflect.Type) *Archetype {
	sortTypes(types)
	return s.archetypes[archetypeHash(types)]
}

// CompactAll compacts every archetype, reclaiming slots left behind by
// deletes and archetype moves. EntityRefs stay valid; raw EntityIds held
// outside refs go stale.
func (s *Storage) CompactAll() {
	for _, archetype := range s.archetypes {
		archetype.Compact()
	}
}

// archetypeFor returns the archetype for a sorted type set, creating it on
// first use.
func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := archetypeHash(types)
	archetype, ok := s.archetypes[id]
	if !ok {
		archetype = NewArchetype(id, types, s.registry)
		s.archetypes[id] = archetype
	}
	return archetype
}

// Spawn creates an entity from the given component values and returns its id.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	archetype := s.archetypeFor(componentTypes(components))
	return NewEntityId(archetype.id, archetype.Spawn(components))
}

// Delete removes the entity and zeroes any live ref pointing at it.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.Delete(id.Index())
	}
}

// moveEntity relocates an entity into the archetype for newTypes carrying the
// given component values, rebinds its EntityRef if one is live, and vacates
// the old slot. The component values must be read out of the source archetype
// before this is called; the old slot is zeroed on the way out.
func (s *Storage) moveEntity(from *Archetype, id EntityId, newTypes []reflect.Type, components []any) EntityId {
	to := s.archetypeFor(newTypes)
	weakPtr, hasRef := from.refs.Get(id)

	newId := NewEntityId(to.id, to.Spawn(components))

	if hasRef {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = to
		}
		from.refs.Del(id)
		to.refs.Put(newId, weakPtr)
	}

	from.Delete(id.Index())
	return newId
}

// AddComponent attaches a component, moving the entity to the wider archetype.
// The returned id is the entity's new address; the old id is dead.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	from := s.archetypes[id.ArchetypeId()]

	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	newTypes := make([]reflect.Type, 0, len(from.types)+1)
	newTypes = append(newTypes, from.types...)
	newTypes = append(newTypes, compType)
	sortTypes(newTypes)

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		if typ == compType {
			components = append(components, component)
		} else {
			components = append(components, from.GetComponent(id.Index(), typ))
		}
	}

	return s.moveEntity(from, id, newTypes, components)
}

// RemoveComponent detaches a component type, moving the entity to the
// narrower archetype. Removing the last component deletes the entity and
// returns 0.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) EntityId {
	from := s.archetypes[id.ArchetypeId()]

	newTypes := make([]reflect.Type, 0, len(from.types)-1)
	for _, typ := range from.types {
		if typ != compType {
			newTypes = append(newTypes, typ)
		}
	}

	if len(newTypes) == 0 {
		from.Delete(id.Index())
		return 0
	}

	components := make([]any, 0, len(newTypes))
	for _, typ := range newTypes {
		components = append(components, from.GetComponent(id.Index(), typ))
	}

	return s.moveEntity(from, id, newTypes, components)
}

// GetComponent returns a pointer to the entity's component of the given type
// as an any, or nil. The pointer is valid until the entity's next structural
// change or compaction.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the entity's archetype carries the type.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}
	return archetype.HasComponent(compType)
}

// ComponentReader is the read side of component lookup, satisfied by Storage.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent is a typed convenience over ComponentReader.GetComponent.
// It panics when the entity lacks the component.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	return reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
}
