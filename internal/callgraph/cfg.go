package callgraph

import (
	"github.com/zboralski/lattice"

	"dexcfg/internal/cfgbuild"
)

// BuildCFG converts a set of built method CFGs into a lattice.CFGGraph for
// the auxiliary render verb. Unlike the tool's own exact-syntax DOT (emit
// package), this view is rendered by lattice/render.DOTCFG and is free to
// take lattice's own shape: one lattice.BasicBlock per Node (Dalvik
// instructions don't merge into multi-instruction basic blocks the way an
// ARM64 leader/partition pass would), addressed by InternOffset.
func BuildCFG(methods []MethodInfo) *lattice.CFGGraph {
	cg := &lattice.CFGGraph{}
	for _, m := range methods {
		cg.Funcs = append(cg.Funcs, convertMethodCFG(m.Name, m.CFG))
	}
	return cg
}

// BuildFuncCFG converts a single method's CFG, also returning its node
// count so callers can skip trivial (single-node) methods the way the
// teacher's BuildFuncCFG returns nblocks for the same filtering purpose.
func BuildFuncCFG(name string, cfg cfgbuild.MethodCFG) (*lattice.FuncCFG, int) {
	return convertMethodCFG(name, cfg), len(cfg.Nodes)
}

func convertMethodCFG(name string, cfg cfgbuild.MethodCFG) *lattice.FuncCFG {
	blockID := make(map[int]int, len(cfg.Nodes))
	for i, n := range cfg.Nodes {
		blockID[n.InternOffset] = i
	}

	lcfg := &lattice.FuncCFG{Name: name}
	for i, n := range cfg.Nodes {
		lb := &lattice.BasicBlock{
			ID:    i,
			Start: n.InternOffset,
			End:   n.InternOffset + n.Size,
			Term:  len(n.Successors) == 0,
		}
		for _, succ := range n.Successors {
			id, ok := blockID[succ.InternOffset]
			if !ok {
				continue
			}
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: id})
		}
		if n.CalledMethodInfo != nil {
			lb.Calls = append(lb.Calls, lattice.CallSite{
				Offset: n.InternOffset,
				Callee: n.CalledMethodInfo.Key(),
			})
		}
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}
