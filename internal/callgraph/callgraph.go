// Package callgraph builds a whole-DEX call graph from per-method CFGs and
// converts those CFGs into lattice's graph types for the auxiliary render
// verb. It is the direct generalization of an ARM64 FuncInfo/BuildCallGraph
// shape to Dalvik methods: a CALL node's resolved dex.MethodInfo stands in
// for an ARM64 disassembler's resolved branch-target name.
package callgraph

import (
	"github.com/zboralski/lattice"

	"dexcfg/internal/cfgbuild"
	"dexcfg/internal/opcode"
)

// MethodInfo holds the data needed to build a call graph and CFG entry for
// one method.
type MethodInfo struct {
	Name string
	CFG  cfgbuild.MethodCFG
}

// Link builds a MethodInfo → entry-node map keyed by callee identity
// across every CFG passed in, then appends the callee's entry node to each
// CALL node's Successors when the callee is one of the methods built in
// this same run. This is the single exclusive mutation pass over every
// method's nodes — callers must not invoke Link concurrently with CFG
// construction.
func Link(methods []MethodInfo) {
	entryByKey := make(map[string]*cfgbuild.Node, len(methods))
	for _, m := range methods {
		if m.CFG.Entry == nil {
			continue
		}
		entryByKey[m.Name] = m.CFG.Entry
	}

	for _, m := range methods {
		for _, n := range m.CFG.Nodes {
			if n.Kind != opcode.CALL || n.CalledMethodInfo == nil {
				continue
			}
			entry, ok := entryByKey[n.CalledMethodInfo.Key()]
			if !ok {
				continue
			}
			n.Successors = append(n.Successors, entry)
		}
	}
}

// BuildCallGraph constructs a lattice.Graph from linked methods: one node
// per method, one edge per CALL node whose callee resolved. Callees
// outside the DEX file still produce an edge here, since BuildCallGraph is
// a display aid and not bound by the linker's same-file restriction; Link
// is what enforces that restriction for actual CFG successors.
func BuildCallGraph(methods []MethodInfo) *lattice.Graph {
	g := &lattice.Graph{}
	for _, m := range methods {
		g.Nodes = append(g.Nodes, m.Name)
		for _, n := range m.CFG.Nodes {
			if n.CalledMethodInfo == nil {
				continue
			}
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: m.Name,
				Callee: n.CalledMethodInfo.Key(),
			})
		}
	}
	g.Dedup()
	return g
}
