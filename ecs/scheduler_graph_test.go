package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/tick/ecs"
	"github.com/plus3/tick/framegraph"
)

type traceLog struct {
	trace *[]string
}

type mutatorSystem struct {
	traceLog
}

func (s *mutatorSystem) Declare(b *framegraph.PassBuilder) {
	b.Write("world.state")
}

func (s *mutatorSystem) Execute(frame *ecs.UpdateFrame) {
	*s.trace = append(*s.trace, "mutator")
}

type consumerSystem struct {
	traceLog
}

func (s *consumerSystem) Declare(b *framegraph.PassBuilder) {
	b.Read("world.state")
}

func (s *consumerSystem) Execute(frame *ecs.UpdateFrame) {
	*s.trace = append(*s.trace, "consumer")
}

type idleSystem struct{}

func (s *idleSystem) Execute(frame *ecs.UpdateFrame) {}

type cyclicASystem struct{}

func (s *cyclicASystem) Declare(b *framegraph.PassBuilder) {
	b.Write("t1")
	b.WaitFor("s2")
}

func (s *cyclicASystem) Execute(frame *ecs.UpdateFrame) {}

type cyclicBSystem struct{}

func (s *cyclicBSystem) Declare(b *framegraph.PassBuilder) {
	b.Read("t1")
	b.Signal("s2")
}

func (s *cyclicBSystem) Execute(frame *ecs.UpdateFrame) {}

func TestSchedulerOrdersByDeclaredHazards(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	scheduler := ecs.NewScheduler(storage)

	var trace []string

	// A system with no declarations sits between the conflicting pair; the
	// write hazard must still hold across it.
	scheduler.Register(&mutatorSystem{traceLog{trace: &trace}})
	scheduler.Register(&idleSystem{})
	scheduler.Register(&consumerSystem{traceLog{trace: &trace}})

	assert.NoError(t, scheduler.Once(0.016))
	assert.Equal(t, []string{"mutator", "consumer"}, trace)

	order, err := scheduler.Order()
	assert.NoError(t, err)
	assert.Equal(t, []string{"mutatorSystem", "idleSystem", "consumerSystem"}, order)
}

func TestSchedulerSurfacesCycleFromDeclarations(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	scheduler := ecs.NewScheduler(storage)

	scheduler.Register(&cyclicASystem{})
	scheduler.Register(&cyclicBSystem{})

	err := scheduler.Once(0.016)
	assert.ErrorIs(t, err, framegraph.ErrCycle)

	var cycleErr *framegraph.CycleError
	assert.ErrorAs(t, err, &cycleErr)
	assert.ElementsMatch(t, []string{"cyclicASystem", "cyclicBSystem"}, cycleErr.Members)
}

func TestSchedulerLevelsSplitConflictingSystems(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	scheduler := ecs.NewScheduler(storage)

	var trace []string
	scheduler.Register(&mutatorSystem{traceLog{trace: &trace}})
	scheduler.Register(&consumerSystem{traceLog{trace: &trace}})

	levels, err := scheduler.Levels()
	assert.NoError(t, err)
	assert.Equal(t, [][]string{{"mutatorSystem"}, {"consumerSystem"}}, levels)
}

func TestSchedulerDisambiguatesDuplicateSystemTypes(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	scheduler := ecs.NewScheduler(storage)

	var trace []string
	scheduler.Register(&consumerSystem{traceLog{trace: &trace}})
	scheduler.Register(&consumerSystem{traceLog{trace: &trace}})

	assert.NoError(t, scheduler.Once(0.016))
	assert.Equal(t, []string{"consumer", "consumer"}, trace)

	order, err := scheduler.Order()
	assert.NoError(t, err)
	assert.Equal(t, []string{"consumerSystem", "consumerSystem#2"}, order)
}

func TestSchedulerRecompilesWhenSystemSetChanges(t *testing.T) {
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	scheduler := ecs.NewScheduler(storage)

	var trace []string
	scheduler.Register(&mutatorSystem{traceLog{trace: &trace}})
	assert.NoError(t, scheduler.Once(0.016))
	assert.Equal(t, []string{"mutator"}, trace)

	scheduler.Register(&consumerSystem{traceLog{trace: &trace}})
	trace = trace[:0]
	assert.NoError(t, scheduler.Once(0.016))

	assert.Equal(t, []string{"mutator", "consumer"}, trace)
}
