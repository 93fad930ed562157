package ecs

import (
	"reflect"
	"sort"
	"unsafe"
)

// iface mirrors the runtime layout of an interface value, giving access to
// the data word without an allocation.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// sortTypes orders component types by name. Archetype identity depends on the
// type set, not on the order components were listed, so every path that hashes
// types sorts them first.
func sortTypes(types []reflect.Type) {
	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
}

// componentTypes resolves the concrete component type of each value, sorted.
// Pointers are followed to their element type; container kinds are rejected
// because a component must be a self-contained value.
func componentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := reflect.TypeOf(comp)
		if compType.Kind() == reflect.Ptr {
			compType = compType.Elem()
		}

		switch compType.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}

		types = append(types, compType)
	}
	sortTypes(types)
	return types
}

// archetypeHash folds the runtime type pointers of a sorted type set into a
// 32-bit FNV-1a hash, which becomes the archetype id.
func archetypeHash(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := (*iface)(unsafe.Pointer(&t)).data
		val := uint32(uintptr(ptr))
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uintptr(ptr) >> 32)
		}

		h ^= val
		h *= prime
	}

	return h
}
