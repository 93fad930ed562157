package transform

import "github.com/plus3/tick/ecs"

// Hierarchy links are canonical refs from Storage.CreateEntityRef, so one live
// entity always has one ref instance and links compare by pointer identity.

// hierarchyOf resolves ref and returns the entity's Hierarchy facet, or nil.
func hierarchyOf(storage *ecs.Storage, ref *ecs.EntityRef) *Hierarchy {
	id, ok := storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	comp := storage.GetComponent(id, hierarchyType)
	if comp == nil {
		return nil
	}
	return comp.(*Hierarchy)
}

// ensureHierarchy attaches an empty Hierarchy facet if the entity lacks one.
// The attach moves the entity between archetypes; callers must not hold
// component pointers for it across this call.
func ensureHierarchy(storage *ecs.Storage, ref *ecs.EntityRef) {
	if hierarchyOf(storage, ref) != nil {
		return
	}
	id, ok := storage.ResolveEntityRef(ref)
	if !ok {
		return
	}
	storage.AddComponent(id, Hierarchy{})
}

// SetParent links child at the head of parent's child chain, detaching it
// from any previous parent first. Both entities gain a Hierarchy facet if
// they lack one.
func SetParent(storage *ecs.Storage, child, parent ecs.EntityId) {
	childRef := storage.CreateEntityRef(child)
	parentRef := storage.CreateEntityRef(parent)
	if childRef == nil || parentRef == nil || childRef == parentRef {
		return
	}

	detachRef(storage, childRef)

	// Structural attaches first: they relocate components, and the pointers
	// fetched below must stay valid through the link mutations.
	ensureHierarchy(storage, childRef)
	ensureHierarchy(storage, parentRef)

	ch := hierarchyOf(storage, childRef)
	ph := hierarchyOf(storage, parentRef)

	ch.Parent = parentRef
	ch.NextSibling = ph.FirstChild
	ph.FirstChild = childRef
}

// Detach unlinks the entity from its parent's child chain, leaving it a root.
// Its own children stay attached beneath it.
func Detach(storage *ecs.Storage, child ecs.EntityId) {
	detachRef(storage, storage.CreateEntityRef(child))
}

func detachRef(storage *ecs.Storage, childRef *ecs.EntityRef) {
	ch := hierarchyOf(storage, childRef)
	if ch == nil || ch.Parent == nil {
		return
	}

	if ph := hierarchyOf(storage, ch.Parent); ph != nil {
		if ph.FirstChild == childRef {
			ph.FirstChild = ch.NextSibling
		} else {
			for cur := ph.FirstChild; cur != nil; {
				h := hierarchyOf(storage, cur)
				if h == nil {
					break
				}
				if h.NextSibling == childRef {
					h.NextSibling = ch.NextSibling
					break
				}
				cur = h.NextSibling
			}
		}
	}

	ch.Parent = nil
	ch.NextSibling = nil
}

// Roots returns refs for every forest root: parentless hierarchy nodes plus
// standalone transform entities. Inspector and test convenience.
func Roots(storage *ecs.Storage) []*ecs.EntityRef {
	return collectRoots(storage)
}

// Children returns the entity's child refs in chain order. Mostly a test and
// inspector convenience; propagation walks the chain directly.
func Children(storage *ecs.Storage, id ecs.EntityId) []*ecs.EntityRef {
	h := hierarchyOf(storage, storage.CreateEntityRef(id))
	if h == nil {
		return nil
	}
	var out []*ecs.EntityRef
	for cur := h.FirstChild; cur != nil; {
		out = append(out, cur)
		next := hierarchyOf(storage, cur)
		if next == nil {
			break
		}
		cur = next.NextSibling
	}
	return out
}
