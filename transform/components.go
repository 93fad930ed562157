// Package transform provides hierarchical transform propagation over the ECS:
// local position/rotation/scale facets, parent/child links, and the systems
// that recompute cached world matrices from dirty flags each tick.
package transform

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/tick/ecs"
)

// Resource tags declared by the transform systems. The frame graph only ever
// compares tags for overlap; these strings carry no meaning beyond identity.
const (
	TagLocal = "transform.local"
	TagDirty = "transform.dirty"
	TagWorld = "transform.world"
)

// Local is an entity's transform relative to its parent.
// The zero value has a zero rotation and scale; use NewLocal for identity.
type Local struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewLocal returns an identity local transform.
func NewLocal() Local {
	return Local{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes translation, rotation and scale into a 4x4 matrix, in that
// order (scale applied first).
func (l *Local) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(l.Position.X(), l.Position.Y(), l.Position.Z()).
		Mul4(l.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(l.Scale.X(), l.Scale.Y(), l.Scale.Z()))
}

// World caches an entity's composed world matrix. Propagation recomputes it
// whenever the entity or any ancestor was dirty this tick.
type World struct {
	Matrix mgl32.Mat4
}

// NewWorld returns a world facet initialized to identity.
func NewWorld() World {
	return World{Matrix: mgl32.Ident4()}
}

// Hierarchy links an entity into the transform forest: one parent reference
// and a singly linked sibling chain anchored at the parent's FirstChild.
// Links are stable EntityRefs, never raw ids, so marker attach/detach moving
// an entity between archetypes can never dangle a link.
type Hierarchy struct {
	Parent      *ecs.EntityRef
	FirstChild  *ecs.EntityRef
	NextSibling *ecs.EntityRef
}

// Dirty marks an entity whose cached world matrix is stale. Mutators attach
// it; propagation consumes and detaches it the tick it recomputes the entity,
// whether the dirtiness was its own or inherited from a parent.
type Dirty struct{}

// Updated marks an entity whose world matrix was recomputed this tick, for
// downstream consumers. Propagation only asserts it; clearing it between
// ticks is the consumer's job (see ClearUpdated).
type Updated struct{}

// Spin drives a constant rotation about a fixed axis, in degrees per second.
type Spin struct {
	Axis  mgl32.Vec3
	Speed float32
}

var (
	localType     = reflect.TypeFor[Local]()
	worldType     = reflect.TypeFor[World]()
	hierarchyType = reflect.TypeFor[Hierarchy]()
	dirtyType     = reflect.TypeFor[Dirty]()
	updatedType   = reflect.TypeFor[Updated]()
	spinType      = reflect.TypeFor[Spin]()
)

// RegisterComponents registers every transform component type.
func RegisterComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Local](r)
	ecs.RegisterComponent[World](r)
	ecs.RegisterComponent[Hierarchy](r)
	ecs.RegisterComponent[Dirty](r)
	ecs.RegisterComponent[Updated](r)
	ecs.RegisterComponent[Spin](r)
}

// MarkDirty attaches the Dirty marker unless already present and returns the
// entity's current id (marker attach moves the entity between archetypes).
func MarkDirty(storage *ecs.Storage, id ecs.EntityId) ecs.EntityId {
	if storage.HasComponent(id, dirtyType) {
		return id
	}
	return storage.AddComponent(id, Dirty{})
}

// IsDirty reports whether the entity currently carries the Dirty marker.
func IsDirty(storage *ecs.Storage, id ecs.EntityId) bool {
	return storage.HasComponent(id, dirtyType)
}

// IsUpdated reports whether the entity currently carries the Updated marker.
func IsUpdated(storage *ecs.Storage, id ecs.EntityId) bool {
	return storage.HasComponent(id, updatedType)
}

// ClearUpdated detaches the Updated marker if present and returns the
// entity's current id. Consumers call this between ticks after reacting to
// recomputed world matrices.
func ClearUpdated(storage *ecs.Storage, id ecs.EntityId) ecs.EntityId {
	if !storage.HasComponent(id, updatedType) {
		return id
	}
	return storage.RemoveComponent(id, updatedType)
}
