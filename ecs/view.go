package ecs

import (
	"iter"
	"reflect"
	"sort"
	"unsafe"
)

// View projects entities onto a struct of component pointers. T must be a
// struct whose fields are pointers to component types; embedded fields are
// required, named fields may opt out with the `ecs:"optional"` tag. A view
// walks storage live: it sees every structural change the moment it happens,
// unlike Query, which iterates a per-tick snapshot.
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr

	// Archetype id for spawning a T whose optional fields are all set,
	// resolved once.
	cachedArchetypeId *uint32
}

func NewView[T any](storage *Storage) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	types := make([]reflect.Type, 0, structType.NumField())
	optional := make([]bool, 0, structType.NumField())
	fieldOffset := make([]uintptr, 0, structType.NumField())

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		types = append(types, field.Type.Elem())
		fieldOffset = append(fieldOffset, field.Offset)

		// Embedded fields are always required; named fields may carry the tag.
		isOptional := false
		if !field.Anonymous {
			switch tag := field.Tag.Get("ecs"); tag {
			case "":
			case "optional":
				isOptional = true
			default:
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
		}
		optional = append(optional, isOptional)
	}

	return &View[T]{
		storage:     storage,
		types:       types,
		optional:    optional,
		fieldOffset: fieldOffset,
	}
}

// Fill points the struct's fields at the entity's components. Returns false
// when a required component is missing; optional fields are nil'd instead.
// The field writes go through unsafe offsets so the per-entity cost is a few
// pointer stores, with no reflection on the hot path.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok {
		return false
	}

	structPtr := unsafe.Pointer(ptr)
	for i, componentType := range v.types {
		component := archetype.GetComponent(id.Index(), componentType)
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}

	return true
}

// Get returns a populated view struct, or nil when the entity is missing a
// required component.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get through a stable handle; nil when the ref no longer resolves.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	entityId, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(entityId)
}

// matchesArchetype reports whether the archetype carries every required type.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, requiredType := range v.types {
		if v.optional[i] {
			continue
		}
		if !archetype.HasComponent(requiredType) {
			return false
		}
	}
	return true
}

// columnIndices maps each view field to its column within the archetype, -1
// where the archetype lacks the type.
func (v *View[T]) columnIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.types))
	for i, componentType := range v.types {
		indices[i] = -1
		for idx, archetypeType := range archetype.types {
			if archetypeType == componentType {
				indices[i] = idx
				break
			}
		}
	}
	return indices
}

// fillFromColumns is Fill's bulk-iteration twin: the field-to-column mapping
// is resolved once per archetype and reused for every row.
func (v *View[T]) fillFromColumns(resultPtr unsafe.Pointer, archetype *Archetype, slot int, indices []int) bool {
	for i, colIdx := range indices {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		var component any
		if colIdx >= 0 {
			component = archetype.columns[colIdx].Get(slot)
		}
		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = (*iface)(unsafe.Pointer(&component)).data
	}
	return true
}

// Iter yields (id, populated struct) for every entity carrying the required
// components, walking storage live.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for archetypeId, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) || len(archetype.columns) == 0 {
				continue
			}

			indices := v.columnIndices(archetype)
			anchor := archetype.columns[0]

			var result T
			resultPtr := unsafe.Pointer(&result)

			for slot := range anchor.Iter() {
				if !v.fillFromColumns(resultPtr, archetype, slot, indices) {
					continue
				}
				if !yield(NewEntityId(archetypeId, uint32(slot)), result) {
					return
				}
			}
		}
	}
}

// Values yields the populated structs without ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates an entity from the components the view struct's fields point
// at. Nil optional fields are simply omitted; a nil required field panics.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	types := make([]reflect.Type, 0, len(v.types))
	for i, componentType := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)

		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}

		components = append(components, reflect.NewAt(componentType, componentPtr).Elem().Interface())
		types = append(types, componentType)
	}

	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	sort.Sort(&componentSorter{types: types, components: components})

	var archetypeId uint32
	fullSet := len(types) == v.requiredCount()
	if fullSet && v.cachedArchetypeId != nil {
		archetypeId = *v.cachedArchetypeId
	} else {
		archetypeId = archetypeHash(types)
		if fullSet {
			v.cachedArchetypeId = &archetypeId
		}
	}

	archetype, exists := v.storage.archetypes[archetypeId]
	if !exists {
		archetype = NewArchetype(archetypeId, types, v.storage.registry)
		v.storage.archetypes[archetypeId] = archetype
	}

	return NewEntityId(archetypeId, archetype.Spawn(components))
}

// requiredCount is the number of non-optional fields.
func (v *View[T]) requiredCount() int {
	count := 0
	for _, opt := range v.optional {
		if !opt {
			count++
		}
	}
	return count
}

// componentSorter orders a component slice and its type slice together by
// type name, the same order archetype hashing uses.
type componentSorter struct {
	types      []reflect.Type
	components []any
}

func (s *componentSorter) Len() int { return len(s.types) }
func (s *componentSorter) Less(i, j int) bool {
	return s.types[i].String() < s.types[j].String()
}
func (s *componentSorter) Swap(i, j int) {
	s.types[i], s.types[j] = s.types[j], s.types[i]
	s.components[i], s.components[j] = s.components[j], s.components[i]
}
