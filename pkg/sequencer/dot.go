package sequencer

import (
	"fmt"
	"strings"
)

// Dot renders the graph in Graphviz DOT form.
//
// The first line is "digraph G {" and the last line is exactly "}"
// with no trailing newline. Each edge produces one line of the form
// "  pred -> succ;" and each isolated step (no edges in either
// direction) one line of the form "  step;". Edge lines come first,
// ordered by pred insertion position, followed by isolated-step lines
// in insertion order.
//
// Labels are emitted verbatim; callers should use DOT-safe
// identifiers.
func (s *Sequencer) Dot() string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	for _, pred := range s.order {
		for _, succ := range s.succs[pred] {
			fmt.Fprintf(&b, "  %s -> %s;\n", pred, succ)
		}
	}
	for _, step := range s.order {
		if s.isolated(step) {
			fmt.Fprintf(&b, "  %s;\n", step)
		}
	}
	b.WriteString("}")
	return b.String()
}
