package transform

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/framegraph"
)

// Spinner rotates every entity carrying Local and Spin facets at the facet's
// configured angular speed, then re-asserts the Dirty marker so propagation
// recomputes the entity this same tick. Register drivers before Propagation;
// the declared write hazards on the local and dirty tags then keep this pass
// ahead of it no matter how many unrelated passes sit between them.
type Spinner struct {
	Entities ecs.Query[struct {
		*Local
		*Spin
	}]
}

func (s *Spinner) Declare(b *framegraph.PassBuilder) {
	b.Write(TagLocal)
	b.Write(TagDirty)
}

func (s *Spinner) Execute(frame *ecs.UpdateFrame) {
	dt := float32(frame.DeltaTime)

	// Mutate through the query snapshot first and mark afterwards: attaching
	// Dirty moves an entity between archetypes, which must not happen while
	// component pointers from the snapshot are still being written.
	var touched []ecs.EntityId
	for id, item := range s.Entities.Iter() {
		if item.Spin.Axis == (mgl32.Vec3{}) {
			continue
		}

		// Delta applied by left-multiplication: the rotation advances in the
		// parent frame, not around the entity's own transformed axis.
		delta := mgl32.QuatRotate(mgl32.DegToRad(item.Spin.Speed*dt), item.Spin.Axis.Normalize())
		item.Local.Rotation = delta.Mul(item.Local.Rotation).Normalize()

		touched = append(touched, id)
	}

	for _, id := range touched {
		MarkDirty(frame.Storage, id)
	}
}
