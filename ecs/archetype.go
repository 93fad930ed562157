package ecs

import (
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

// Archetype is the table for one exact component set: one column per
// component type, rows addressed by slot index. All columns of an archetype
// share slot numbering, so a single index addresses a whole entity. The refs
// map tracks the live EntityRef (weakly) for each entity that asked for one.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []column
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

// NewArchetype builds the table for a sorted type set. Every type must have
// been registered; an unregistered component is a programming error.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]column, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](256),
	}

	for idx, typ := range types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.columns[idx] = factory()
	}

	return a
}

// Spawn writes one component value into each matching column and returns the
// shared slot index. Columns reuse free slots in lockstep, so every column
// lands on the same index.
func (a *Archetype) Spawn(components []any) uint32 {
	var slot int
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}

		for idx, typ := range a.types {
			if typ == compType {
				slot = a.columns[idx].Append(comp)
			}
		}
	}

	return uint32(slot)
}

// GetComponent returns a pointer to the slot's component of the given type as
// an any, or nil when the archetype lacks the type or the slot is empty.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	for i, typ := range a.types {
		if typ == compType {
			return a.columns[i].Get(int(entityIndex))
		}
	}
	return nil
}

// Delete vacates a slot and zeroes the entity's live ref, if any. The slot
// goes onto the free list; surrounding indices are untouched.
func (a *Archetype) Delete(entityIndex uint32) {
	entityId := NewEntityId(a.id, entityIndex)

	if weakPtr, ok := a.refs.Get(entityId); ok {
		if ref := weakPtr.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(entityId)
	}

	for _, col := range a.columns {
		col.Delete(int(entityIndex))
	}
}

func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return slices.Contains(a.types, compType)
}

func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the archetype's sorted component types.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Compact squeezes free slots out of every column and rebinds live
// EntityRefs to the new indices. Columns share slot numbering, so the first
// column's old-to-new mapping stands in for all of them. Raw EntityIds held
// across a compaction go stale.
func (a *Archetype) Compact() {
	if len(a.columns) == 0 {
		return
	}

	remap := a.columns[0].Compact()
	for i := 1; i < len(a.columns); i++ {
		a.columns[i].Compact()
	}

	rebound := make(map[EntityId]weak.Pointer[EntityRef])
	for oldIdx, newIdx := range remap {
		oldId := NewEntityId(a.id, uint32(oldIdx))
		if weakPtr, ok := a.refs.Get(oldId); ok {
			if ref := weakPtr.Value(); ref != nil {
				newId := NewEntityId(a.id, uint32(newIdx))
				ref.Id = newId
				rebound[newId] = weakPtr
			}
			// Dead weak entries are dropped with the rebuild below.
		}
	}

	a.refs.Clear()
	for newId, weakPtr := range rebound {
		a.refs.Put(newId, weakPtr)
	}
}

// Iter yields the id of every live entity in this archetype.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}

		for index := range a.columns[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}

// Count returns the number of live entities.
func (a *Archetype) Count() int {
	if len(a.columns) == 0 {
		return 0
	}
	count := 0
	for range a.columns[0].Iter() {
		count++
	}
	return count
}
