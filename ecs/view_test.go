package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/tick/ecs"
)

func TestViewRequiredAndOptionalFields(t *testing.T) {
	type row struct {
		*Body
		Label *Label `ecs:"optional"`
	}
	storage := newTestStorage()

	plain := storage.Spawn(Body{Mass: 1})
	labeled := storage.Spawn(Body{Mass: 2}, Label{Value: "tug"})
	orbitOnly := storage.Spawn(Orbit{})

	view := ecs.NewView[row](storage)

	got := view.Get(plain)
	assert.NotNil(t, got)
	assert.Nil(t, got.Label, "missing optional component yields a nil field")

	got = view.Get(labeled)
	assert.Equal(t, "tug", got.Label.Value)

	assert.Nil(t, view.Get(orbitOnly), "missing required component fails the view")
}

func TestViewIterSpansArchetypes(t *testing.T) {
	storage := newTestStorage()
	storage.Spawn(Body{Mass: 1})
	storage.Spawn(Body{Mass: 2}, Orbit{})
	storage.Spawn(Orbit{})

	view := ecs.NewView[struct{ *Body }](storage)

	var total float32
	count := 0
	for _, row := range view.Iter() {
		total += row.Body.Mass
		count++
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, float32(3), total)
}

func TestViewWritesThroughPointers(t *testing.T) {
	storage := newTestStorage()
	id := storage.Spawn(Body{Mass: 4})

	view := ecs.NewView[struct{ *Body }](storage)
	for row := range view.Values() {
		row.Body.Mass *= 2
	}

	assert.Equal(t, float32(8), view.Get(id).Body.Mass)
}

func TestViewGetRefFollowsMoves(t *testing.T) {
	storage := newTestStorage()

	id := storage.Spawn(Body{Mass: 6})
	ref := storage.CreateEntityRef(id)
	storage.AddComponent(id, Docked{})

	view := ecs.NewView[struct{ *Body }](storage)
	got := view.GetRef(ref)
	assert.NotNil(t, got)
	assert.Equal(t, float32(6), got.Body.Mass)

	assert.Nil(t, view.GetRef(nil))
}

func TestViewSpawn(t *testing.T) {
	type row struct {
		*Body
		Label *Label `ecs:"optional"`
	}
	storage := newTestStorage()
	view := ecs.NewView[row](storage)

	t.Run("omits nil optional fields", func(t *testing.T) {
		id := view.Spawn(row{Body: &Body{Mass: 9}})
		assert.Equal(t, float32(9), ecs.ReadComponent[Body](storage, id).Mass)
		assert.Equal(t, id.ArchetypeId(), storage.GetArchetype(Body{}).ID())
	})

	t.Run("includes set optional fields", func(t *testing.T) {
		id := view.Spawn(row{Body: &Body{}, Label: &Label{Value: "lander"}})
		assert.Equal(t, "lander", ecs.ReadComponent[Label](storage, id).Value)
	})

	t.Run("panics on nil required field", func(t *testing.T) {
		assert.Panics(t, func() { view.Spawn(row{Label: &Label{}}) })
	})
}

func TestViewConstructionMisuse(t *testing.T) {
	storage := newTestStorage()

	assert.Panics(t, func() { ecs.NewView[int](storage) })
	assert.Panics(t, func() { ecs.NewView[struct{ Body Body }](storage) })
	assert.Panics(t, func() {
		ecs.NewView[struct {
			Body *Body `ecs:"bogus"`
		}](storage)
	})
}
