package ecs

import (
	"iter"
	"unsafe"
)

// Query is the snapshot-based counterpart to View, meant for system fields.
// Execute captures the matching entities and their component structs once
// per tick, before any system runs; Iter and Values then replay the capture,
// so systems observe a consistent population no matter what structural
// changes earlier passes made. Matching archetypes are cached and refreshed
// only when storage grows a new archetype.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	matched        []*Archetype
	seenArchetypes int

	ids        []EntityId
	items      []T
	snapshotOk bool
}

func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init wires the query to a storage. The scheduler calls this through
// reflection for Query fields on registered systems.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.matched = nil
	q.seenArchetypes = -1
	q.snapshotOk = false
}

// Execute takes this tick's snapshot. The scheduler runs it for every system
// query before the first pass.
func (q *Query[T]) Execute() {
	q.refreshMatches()

	q.ids = q.ids[:0]
	q.items = q.items[:0]

	for _, archetype := range q.matched {
		q.scanArchetype(archetype)
	}

	q.snapshotOk = true
}

// refreshMatches rebuilds the matching-archetype cache when storage has a
// different archetype count than last seen. Archetypes are only ever added,
// so a count check suffices.
func (q *Query[T]) refreshMatches() {
	if len(q.storage.archetypes) == q.seenArchetypes && q.matched != nil {
		return
	}
	q.seenArchetypes = len(q.storage.archetypes)

	q.matched = q.matched[:0]
	for _, archetype := range q.storage.archetypes {
		if q.view.matchesArchetype(archetype) {
			q.matched = append(q.matched, archetype)
		}
	}
}

func (q *Query[T]) scanArchetype(archetype *Archetype) {
	if len(archetype.columns) == 0 {
		return
	}

	indices := q.view.columnIndices(archetype)
	anchor := archetype.columns[0]

	var result T
	resultPtr := unsafe.Pointer(&result)

	for slot := range anchor.Iter() {
		if !q.view.fillFromColumns(resultPtr, archetype, slot, indices) {
			continue
		}
		q.ids = append(q.ids, NewEntityId(archetype.id, uint32(slot)))
		q.items = append(q.items, result)
	}
}

// Iter replays the snapshot as (id, item) pairs. Panics when Execute has not
// run this tick.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.snapshotOk {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.ids {
			if !yield(q.ids[i], q.items[i]) {
				return
			}
		}
	}
}

// Values replays the snapshot's items only.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.snapshotOk {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.items {
			if !yield(q.items[i]) {
				return
			}
		}
	}
}
