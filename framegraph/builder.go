package framegraph

import "slices"

// PassBuilder collects a pass's declared data accesses and signal dependencies.
// It is handed to the build callback of Graph.AddPass and is only valid until
// that callback returns; the declarations it records are fixed from then on.
//
// Tags and signal names are opaque to the graph. Only overlap between
// declarations matters, never what a tag means.
type PassBuilder struct {
	pass   *pass
	sealed bool
}

// Read declares that the pass reads the given resource tag.
func (b *PassBuilder) Read(tag string) {
	b.active()
	if !slices.Contains(b.pass.reads, tag) {
		b.pass.reads = append(b.pass.reads, tag)
	}
}

// Write declares that the pass writes the given resource tag.
func (b *PassBuilder) Write(tag string) {
	b.active()
	if !slices.Contains(b.pass.writes, tag) {
		b.pass.writes = append(b.pass.writes, tag)
	}
}

// WaitFor declares that the pass must run after any pass emitting the named
// signal. Signals order passes the hazard inference cannot see.
func (b *PassBuilder) WaitFor(signal string) {
	b.active()
	if !slices.Contains(b.pass.waits, signal) {
		b.pass.waits = append(b.pass.waits, signal)
	}
}

// Signal declares the signal name this pass emits. A pass emits at most one
// signal; calling Signal again replaces the previous name.
func (b *PassBuilder) Signal(name string) {
	b.active()
	b.pass.emits = name
}

func (b *PassBuilder) active() {
	if b.sealed {
		panic("framegraph: PassBuilder used outside its build callback")
	}
}
