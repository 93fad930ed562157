package transform_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/transform"
)

func refIDs(t *testing.T, storage *ecs.Storage, refs []*ecs.EntityRef) []ecs.EntityId {
	t.Helper()
	ids := make([]ecs.EntityId, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, idOf(t, storage, ref))
	}
	return ids
}

func TestSetParentLinksAtChainHead(t *testing.T) {
	storage := newStorage()

	parent := spawnNode(storage, mgl32.Vec3{}, false)
	a := spawnNode(storage, mgl32.Vec3{1, 0, 0}, false)
	b := spawnNode(storage, mgl32.Vec3{2, 0, 0}, false)

	transform.SetParent(storage, idOf(t, storage, a), idOf(t, storage, parent))
	transform.SetParent(storage, idOf(t, storage, b), idOf(t, storage, parent))

	// Newest child sits at the head of the sibling chain.
	children := transform.Children(storage, idOf(t, storage, parent))
	assert.Equal(t,
		[]ecs.EntityId{idOf(t, storage, b), idOf(t, storage, a)},
		refIDs(t, storage, children))
}

func TestDetachUnlinksMiddleSibling(t *testing.T) {
	storage := newStorage()

	parent := spawnNode(storage, mgl32.Vec3{}, false)
	a := spawnNode(storage, mgl32.Vec3{1, 0, 0}, false)
	b := spawnNode(storage, mgl32.Vec3{2, 0, 0}, false)
	c := spawnNode(storage, mgl32.Vec3{3, 0, 0}, false)
	for _, child := range []*ecs.EntityRef{a, b, c} {
		transform.SetParent(storage, idOf(t, storage, child), idOf(t, storage, parent))
	}

	// Chain is c, b, a; unlink the middle entry.
	transform.Detach(storage, idOf(t, storage, b))

	children := transform.Children(storage, idOf(t, storage, parent))
	assert.Equal(t,
		[]ecs.EntityId{idOf(t, storage, c), idOf(t, storage, a)},
		refIDs(t, storage, children))
}

func TestReparentMovesBetweenChains(t *testing.T) {
	storage := newStorage()

	first := spawnNode(storage, mgl32.Vec3{}, false)
	second := spawnNode(storage, mgl32.Vec3{}, false)
	child := spawnNode(storage, mgl32.Vec3{5, 0, 0}, false)

	transform.SetParent(storage, idOf(t, storage, child), idOf(t, storage, first))
	transform.SetParent(storage, idOf(t, storage, child), idOf(t, storage, second))

	assert.Empty(t, transform.Children(storage, idOf(t, storage, first)))
	assert.Equal(t,
		[]ecs.EntityId{idOf(t, storage, child)},
		refIDs(t, storage, transform.Children(storage, idOf(t, storage, second))))
}

func TestLinksSurviveMarkerMoves(t *testing.T) {
	storage := newStorage()

	parent := spawnNode(storage, mgl32.Vec3{}, false)
	child := spawnNode(storage, mgl32.Vec3{1, 0, 0}, false)
	transform.SetParent(storage, idOf(t, storage, child), idOf(t, storage, parent))

	// Marker attach/detach moves both entities across archetypes; the
	// ref-based links must keep resolving afterwards.
	transform.MarkDirty(storage, idOf(t, storage, parent))
	transform.MarkDirty(storage, idOf(t, storage, child))
	propagateOnce(t, storage)
	transform.ClearUpdated(storage, idOf(t, storage, parent))
	transform.ClearUpdated(storage, idOf(t, storage, child))

	children := transform.Children(storage, idOf(t, storage, parent))
	assert.Equal(t, []ecs.EntityId{idOf(t, storage, child)}, refIDs(t, storage, children))
}

func TestDetachWithoutParentIsNoop(t *testing.T) {
	storage := newStorage()

	node := spawnNode(storage, mgl32.Vec3{}, false)
	transform.Detach(storage, idOf(t, storage, node)) // no hierarchy facet at all

	transform.SetParent(storage, idOf(t, storage, node), idOf(t, storage, node))
	assert.Empty(t, transform.Children(storage, idOf(t, storage, node)), "self-parenting is rejected")
}
