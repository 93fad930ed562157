package ecs

import "github.com/plus3/tick/framegraph"

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// Declarer is implemented by systems that declare the resource tags they read
// and write, and any signal dependencies, for the scheduler's frame graph.
// The graph orders conflicting systems by hazard instead of by registration.
// Systems that declare nothing keep plain registration order.
type Declarer interface {
	Declare(b *framegraph.PassBuilder)
}
