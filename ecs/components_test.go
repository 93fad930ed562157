package ecs_test

import "github.com/plus3/tick/ecs"

// Components for a small orbital simulation: enough shapes to exercise
// single- and multi-component archetypes, marker components, and primitive
// component types.
type Body struct {
	Mass float32
}

type Orbit struct {
	Radius float32
	Phase  float32
}

type Label struct {
	Value string
}

type Docked struct{}

type Fuel float32

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Body](registry)
	ecs.RegisterComponent[Orbit](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[Docked](registry)
	ecs.RegisterComponent[Fuel](registry)
	return registry
}

func newTestStorage() *ecs.Storage {
	return ecs.NewStorage(newTestRegistry())
}
