package main

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/transform"
)

// The spinner and propagation move every touched entity between archetypes
// before the sampler runs, so the sampler must see post-move ids. A sampler
// working from a pre-tick snapshot would clear markers on recycled slots and
// leave the real ones set.
func TestSamplerClearsMarkersAfterArchetypeMoves(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	transform.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	fb := &forestBuilder{
		storage: storage,
		rng:     rand.New(rand.NewSource(7)),
		fanout:  2,
	}
	for i := 0; i < 4; i++ {
		fb.spawnTree(nil, 2)
	}

	sampler := newWorldSampler(storage)
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&transform.Spinner{})
	scheduler.Register(&transform.Propagation{})
	scheduler.Register(sampler)

	assert.NoError(t, scheduler.Once(0.016))

	assert.Positive(t, sampler.sampled, "spinning trees produce world updates every tick")

	leftover := ecs.NewView[struct{ *transform.Updated }](storage)
	for id := range leftover.Iter() {
		t.Errorf("entity %x still carries an update marker after sampling", uint64(id))
	}
}

func TestSamplerCountsEveryRecomputedNode(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	transform.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	// One spinning root with two plain children: the root's dirty flag is
	// inherited, so all three worlds recompute and all three get sampled.
	root := storage.CreateEntityRef(storage.Spawn(transform.NewLocal(), transform.NewWorld(), transform.Spin{
		Axis:  mgl32.Vec3{0, 1, 0},
		Speed: 90,
	}))
	for i := 0; i < 2; i++ {
		child := storage.CreateEntityRef(storage.Spawn(transform.NewLocal(), transform.NewWorld()))
		childId, _ := storage.ResolveEntityRef(child)
		rootId, _ := storage.ResolveEntityRef(root)
		transform.SetParent(storage, childId, rootId)
	}

	sampler := newWorldSampler(storage)
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&transform.Spinner{})
	scheduler.Register(&transform.Propagation{})
	scheduler.Register(sampler)

	assert.NoError(t, scheduler.Once(0.016))
	assert.EqualValues(t, 3, sampler.sampled)
}
