package emit

import (
	"encoding/binary"
	"fmt"
	"io"

	"dexcfg/internal/cfgbuild"
)

// edgMagic is the 8-byte, unterminated EDG file magic.
var edgMagic = [8]byte{'G', 'R', 'A', 'P', 'H', 'B', 'I', 'N'}

// edgEdge is one (parent, child) base_addr pair.
type edgEdge struct {
	u, v uint64
}

// EDGWriter accumulates nodes and edges for one run and serializes them in
// a single pass when Flush is called. graph.edg is opened once per run
// rather than per method — callers collect every method's nodes/edges
// across the whole DEX into one EDGWriter, then Flush once, appending a
// single node block and a single edge block.
type EDGWriter struct {
	nodes []*cfgbuild.Node
	edges []edgEdge
	seen  map[*cfgbuild.Node]bool
}

// NewEDGWriter returns an empty accumulator.
func NewEDGWriter() *EDGWriter {
	return &EDGWriter{seen: make(map[*cfgbuild.Node]bool)}
}

// AddMethod walks every node reachable from entry (the same DFS the DOT
// emitter performs) and records its node entry plus its outgoing edges.
// Nodes already added by a prior AddMethod call (after callgraph.Link, a
// CALL edge makes the callee's nodes reachable from the caller's entry too)
// are not re-added.
func (w *EDGWriter) AddMethod(entry *cfgbuild.Node) {
	if entry == nil {
		return
	}
	var walk func(n *cfgbuild.Node)
	walk = func(n *cfgbuild.Node) {
		if w.seen[n] {
			return
		}
		w.seen[n] = true
		w.nodes = append(w.nodes, n)
		for _, succ := range n.Successors {
			w.edges = append(w.edges, edgEdge{u: n.BaseAddr, v: succ.BaseAddr})
		}
		for _, succ := range n.Successors {
			walk(succ)
		}
	}
	walk(entry)
}

// Flush writes the magic, node block, and edge block to w in that order.
// It is safe to call at most once per EDGWriter.
func (w *EDGWriter) Flush(out io.Writer) error {
	if _, err := out.Write(edgMagic[:]); err != nil {
		return fmt.Errorf("emit: write edg magic: %w", err)
	}

	if err := binary.Write(out, binary.LittleEndian, uint32(len(w.nodes))); err != nil {
		return fmt.Errorf("emit: write edg node count: %w", err)
	}
	for _, n := range w.nodes {
		if err := writeNodeRecord(out, n); err != nil {
			return err
		}
	}

	for _, e := range w.edges {
		if err := writeEdgeRecord(out, e); err != nil {
			return err
		}
	}
	return nil
}

func writeNodeRecord(out io.Writer, n *cfgbuild.Node) error {
	if _, err := out.Write([]byte{'n'}); err != nil {
		return fmt.Errorf("emit: write edg node tag: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, n.BaseAddr); err != nil {
		return fmt.Errorf("emit: write edg node base_addr: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, uint32(n.Kind)); err != nil {
		return fmt.Errorf("emit: write edg node control_kind: %w", err)
	}
	return nil
}

func writeEdgeRecord(out io.Writer, e edgEdge) error {
	if _, err := out.Write([]byte{'e'}); err != nil {
		return fmt.Errorf("emit: write edg edge tag: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, e.u); err != nil {
		return fmt.Errorf("emit: write edg edge u: %w", err)
	}
	if err := binary.Write(out, binary.LittleEndian, e.v); err != nil {
		return fmt.Errorf("emit: write edg edge v: %w", err)
	}
	return nil
}
