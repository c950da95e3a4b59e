// Package emit renders a built method CFG into two fixed output forms:
// DOT text (one digraph block per method, to stdout) and the EDG binary
// layout (appended to graph.edg). The writing style — open once, write,
// wrap errors — follows the output-writing packages common across this
// codebase's history, generalized from JSON/asm-text artifacts to this
// project's two graph formats.
package emit

import (
	"fmt"
	"io"

	"dexcfg/internal/cfgbuild"
)

// WriteDOT writes one `digraph { … }` block for the method rooted at entry.
// The traversal is depth-first from entry, visited set keyed by node
// identity (pointer equality — two nodes are the same identity iff they
// are the same *Node, since Nodes are never copied out of their arena).
// Successors are visited left-first, so a given graph always produces
// byte-identical text.
func WriteDOT(w io.Writer, entry *cfgbuild.Node) error {
	if entry == nil {
		_, err := fmt.Fprint(w, "digraph {\n}\n")
		return err
	}
	if _, err := fmt.Fprintf(w, "digraph {\n  label=\"0x%x\";\n", entry.BaseAddr); err != nil {
		return err
	}

	visited := make(map[*cfgbuild.Node]bool)
	var walk func(n *cfgbuild.Node) error
	walk = func(n *cfgbuild.Node) error {
		if visited[n] {
			return nil
		}
		visited[n] = true
		if _, err := fmt.Fprintf(w, "  \"0x%x\"[label=\"%s\"];\n", n.BaseAddr, n.Kind); err != nil {
			return err
		}
		for _, succ := range n.Successors {
			if _, err := fmt.Fprintf(w, "  \"0x%x\" -> \"0x%x\";\n", n.BaseAddr, succ.BaseAddr); err != nil {
				return err
			}
		}
		for _, succ := range n.Successors {
			if err := walk(succ); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(entry); err != nil {
		return fmt.Errorf("emit: write dot: %w", err)
	}
	_, err := fmt.Fprint(w, "}\n")
	return err
}
