// Package framegraph schedules per-frame work. Passes declare the resource
// tags they read and write; the graph infers hazard edges from overlapping
// declarations, compiles a deterministic execution order, and runs each pass's
// deferred action in that order.
package framegraph

import "slices"

type pass struct {
	name    string
	index   int // registration order, the deterministic tie-breaker
	reads   []string
	writes  []string
	waits   []string
	emits   string
	execute func()
}

func (p *pass) writesTag(tag string) bool {
	return slices.Contains(p.writes, tag)
}

func (p *pass) touchesTag(tag string) bool {
	return slices.Contains(p.reads, tag) || slices.Contains(p.writes, tag)
}

// Graph owns a set of registered passes and, once compiled, an immutable
// execution order over them. The zero value is not usable; construct with New.
//
// Lifecycle: AddPass while uncompiled, Compile once, Execute any number of
// times, Reset to return to the registration phase.
type Graph struct {
	passes []*pass
	byName map[string]*pass

	order    []int   // compiled linear order, by pass index
	levels   [][]int // compiled levels, by pass index
	compiled bool
}

// New creates an empty frame graph.
func New() *Graph {
	return &Graph{
		byName: make(map[string]*pass),
	}
}

// AddPass registers a named pass. The build callback is invoked immediately
// against a fresh PassBuilder to collect declarations; execute is the deferred
// work run during Execute. A nil build registers a pass with no declarations.
//
// Duplicate names and registration after Compile fail with a
// ConfigurationError; on failure the graph is unchanged.
func (g *Graph) AddPass(name string, build func(*PassBuilder), execute func()) error {
	if g.compiled {
		return configf("cannot register pass %q on a compiled graph; Reset first", name)
	}
	if name == "" {
		return configf("pass name is required")
	}
	if _, exists := g.byName[name]; exists {
		return configf("duplicate pass name: %q", name)
	}

	p := &pass{
		name:    name,
		index:   len(g.passes),
		execute: execute,
	}

	if build != nil {
		b := &PassBuilder{pass: p}
		build(b)
		b.sealed = true
	}

	g.passes = append(g.passes, p)
	g.byName[name] = p
	return nil
}

// Len returns the number of registered passes.
func (g *Graph) Len() int { return len(g.passes) }

// Compiled reports whether the graph currently holds a compiled order.
func (g *Graph) Compiled() bool { return g.compiled }

// Compile derives dependency edges from the registered declarations and fixes
// a deterministic execution order.
//
// Edges: pass A registered before pass B gets an edge A->B when they share a
// resource tag and at least one of them writes it (read/read never conflicts).
// Independently of registration order, an emitter gets an edge to every pass
// waiting on its signal.
//
// On a cycle Compile fails with a *CycleError naming the passes on one witness
// cycle, and no compiled order is produced. Compiling an already-compiled
// graph without Reset fails with a PreconditionError.
func (g *Graph) Compile() error {
	if g.compiled {
		return preconditionf("Compile called on a compiled graph; Reset first")
	}

	outgoing, incoming, indeg := g.buildEdges()

	order := topoOrder(outgoing, indeg)
	if len(order) != len(g.passes) {
		members := findCycle(len(g.passes), outgoing)
		names := make([]string, 0, len(members))
		for _, idx := range members {
			names = append(names, g.passes[idx].name)
		}
		return &CycleError{Members: names}
	}

	g.order = order
	g.levels = computeLevels(order, incoming)
	g.compiled = true
	return nil
}

// buildEdges derives the hazard and signal edge set as adjacency lists keyed
// by pass index. Outgoing lists come out sorted ascending.
func (g *Graph) buildEdges() (outgoing, incoming [][]int, indeg []int) {
	n := len(g.passes)
	outgoing = make([][]int, n)
	incoming = make([][]int, n)
	indeg = make([]int, n)

	seen := make(map[[2]int]struct{})
	addEdge := func(from, to int) {
		key := [2]int{from, to}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		outgoing[from] = append(outgoing[from], to)
		incoming[to] = append(incoming[to], from)
		indeg[to]++
	}

	// Resource hazards: earlier registration wins the edge direction.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.conflicts(g.passes[i], g.passes[j]) {
				addEdge(i, j)
			}
		}
	}

	// Signal edges: emitter before waiter, regardless of registration order.
	for i, emitter := range g.passes {
		if emitter.emits == "" {
			continue
		}
		for j, waiter := range g.passes {
			if i == j {
				continue
			}
			if slices.Contains(waiter.waits, emitter.emits) {
				addEdge(i, j)
			}
		}
	}

	for i := range outgoing {
		slices.Sort(outgoing[i])
	}
	for i := range incoming {
		slices.Sort(incoming[i])
	}
	return outgoing, incoming, indeg
}

// conflicts reports whether two passes share a tag that at least one writes.
func (g *Graph) conflicts(a, b *pass) bool {
	for _, tag := range a.writes {
		if b.touchesTag(tag) {
			return true
		}
	}
	for _, tag := range b.writes {
		if slices.Contains(a.reads, tag) {
			return true
		}
	}
	return false
}

// Execute invokes each pass's deferred action strictly in compiled order.
// It requires a prior successful Compile and may be called repeatedly against
// the same compiled order.
func (g *Graph) Execute() error {
	if !g.compiled {
		return preconditionf("Execute requires a successful Compile")
	}
	for _, idx := range g.order {
		if fn := g.passes[idx].execute; fn != nil {
			fn()
		}
	}
	return nil
}

// Reset discards all passes and any compiled order, returning the graph to an
// empty registration phase.
func (g *Graph) Reset() {
	g.passes = g.passes[:0]
	clear(g.byName)
	g.order = nil
	g.levels = nil
	g.compiled = false
}

// Order returns the pass names in compiled execution order, or nil if the
// graph is not compiled.
func (g *Graph) Order() []string {
	if !g.compiled {
		return nil
	}
	names := make([]string, 0, len(g.order))
	for _, idx := range g.order {
		names = append(names, g.passes[idx].name)
	}
	return names
}

// Levels returns the compiled levels: maximal groups of passes with no edges
// between any pair, ordered front to back. Same-level passes are mutually
// non-conflicting on every declared tag, so a parallel dispatcher may run a
// level's passes concurrently. Returns nil if the graph is not compiled.
func (g *Graph) Levels() [][]string {
	if !g.compiled {
		return nil
	}
	out := make([][]string, len(g.levels))
	for depth, members := range g.levels {
		names := make([]string, 0, len(members))
		for _, idx := range members {
			names = append(names, g.passes[idx].name)
		}
		out[depth] = names
	}
	return out
}
