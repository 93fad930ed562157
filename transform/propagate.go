package transform

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/framegraph"
)

// Propagation recomputes cached world matrices from dirty flags, walking each
// tree of the hierarchy forest top-down once per tick. Dirtiness is inherited
// strictly downward: a dirty parent forces every descendant to recompute even
// when the descendant's own local transform is unchanged, because the
// ancestor's composed matrix changed underneath it.
type Propagation struct{}

// Declare registers the pass's data accesses: it reads local transforms,
// consumes dirty markers, and writes world matrices. Any earlier-registered
// system writing the local or dirty tag is ordered ahead of propagation by
// the frame graph's hazard inference.
func (s *Propagation) Declare(b *framegraph.PassBuilder) {
	b.Read(TagLocal)
	b.Write(TagDirty)
	b.Write(TagWorld)
}

// Execute walks every root. Roots are entities with no parent link, entities
// whose parent link no longer resolves, and transform-bearing entities outside
// the hierarchy entirely.
func (s *Propagation) Execute(frame *ecs.UpdateFrame) {
	storage := frame.Storage
	for _, root := range collectRoots(storage) {
		s.update(storage, root, mgl32.Ident4(), false)
	}
}

// collectRoots snapshots the root refs before any traversal runs: marker
// attach/detach during the walk restructures archetypes, so no storage
// iteration may be live while entities are visited.
func collectRoots(storage *ecs.Storage) []*ecs.EntityRef {
	var roots []*ecs.EntityRef

	linked := ecs.NewView[struct{ *Hierarchy }](storage)
	for id, node := range linked.Iter() {
		if node.Hierarchy.Parent != nil {
			if _, alive := storage.ResolveEntityRef(node.Hierarchy.Parent); alive {
				continue
			}
			// Orphaned mid-hierarchy: the parent ref dangles. Traverse it as
			// a root rather than dropping its subtree.
		}
		roots = append(roots, storage.CreateEntityRef(id))
	}

	// Transform-bearing entities with no hierarchy facet are single-node trees.
	standalone := ecs.NewView[struct{ *Local }](storage)
	for id := range standalone.Iter() {
		if storage.HasComponent(id, hierarchyType) {
			continue
		}
		roots = append(roots, storage.CreateEntityRef(id))
	}

	return roots
}

// update visits one entity and then its children. parentWorld is the composed
// matrix above this entity; parentDirty reports whether any ancestor was
// recomputed this tick.
func (s *Propagation) update(storage *ecs.Storage, ref *ecs.EntityRef, parentWorld mgl32.Mat4, parentDirty bool) {
	id, ok := storage.ResolveEntityRef(ref)
	if !ok {
		return
	}

	// Capture the child link before any mutation: clearing markers moves this
	// entity between archetypes, which relocates its Hierarchy facet.
	var firstChild *ecs.EntityRef
	if h := hierarchyOf(storage, ref); h != nil {
		firstChild = h.FirstChild
	}

	localComp := storage.GetComponent(id, localType)
	worldComp := storage.GetComponent(id, worldType)

	childWorld := parentWorld
	childDirty := parentDirty

	if localComp != nil || worldComp != nil {
		selfDirty := storage.HasComponent(id, dirtyType)
		isDirty := selfDirty || parentDirty

		if isDirty {
			localMatrix := mgl32.Ident4()
			if localComp != nil {
				localMatrix = localComp.(*Local).Matrix()
			}
			composed := parentWorld.Mul4(localMatrix)

			// Write through the pointer before the structural marker ops
			// below relocate the component.
			if worldComp != nil {
				worldComp.(*World).Matrix = composed
			}
			childWorld = composed

			if selfDirty {
				id = storage.RemoveComponent(id, dirtyType)
			}
			if !storage.HasComponent(id, updatedType) {
				storage.AddComponent(id, Updated{})
			}
		} else if worldComp != nil {
			childWorld = worldComp.(*World).Matrix
		} else if localComp != nil {
			// No cache to reuse: compose on the fly so descendants still see
			// this entity's local transform.
			childWorld = parentWorld.Mul4(localComp.(*Local).Matrix())
		}

		childDirty = isDirty
	}
	// Entities lacking both facets are pure hierarchy nodes: nothing to
	// recompute, but the subtree beneath them is still visited with the
	// inherited matrix and dirtiness unchanged.

	// Fetch each child's next-sibling link before descending into it: the
	// child's subtree may restructure during its visit, but every sibling
	// present at the start of the walk must still be reached.
	for childRef := firstChild; childRef != nil; {
		var next *ecs.EntityRef
		if h := hierarchyOf(storage, childRef); h != nil {
			next = h.NextSibling
		}
		s.update(storage, childRef, childWorld, childDirty)
		childRef = next
	}
}
