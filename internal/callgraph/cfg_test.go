package callgraph

import (
	"testing"

	"github.com/zboralski/lattice/render"

	"dexcfg/internal/cfgbuild"
	"dexcfg/internal/dex"
	"dexcfg/internal/opcode"
)

// method builds a one-method MethodCFG by hand, successors already wired,
// the way BuildMethodCFG would leave them. Tests at this layer care about
// the lattice conversion, not clustering, so they bypass cfgbuild.BuildNodes.
func method(name string, nodes []*cfgbuild.Node) MethodInfo {
	var entry *cfgbuild.Node
	if len(nodes) > 0 {
		entry = nodes[0]
	}
	return MethodInfo{Name: name, CFG: cfgbuild.MethodCFG{Entry: entry, Nodes: nodes}}
}

func callNode(offset int, callee dex.MethodInfo) *cfgbuild.Node {
	mi := callee
	return &cfgbuild.Node{InternOffset: offset, Size: 3, Kind: opcode.CALL, CalledMethodInfo: &mi}
}

func TestBuildCFG_DOTOutput(t *testing.T) {
	// entry (n0): invoke Foo.bar, if-eqz → n2 else n1
	// n1: invoke Baz.qux, goto n3
	// n2: invoke Quux.run, return-void
	// n3: return-void
	n0 := callNode(0, dex.MethodInfo{ClassDescriptor: "LFoo;", Name: "bar"})
	n1 := callNode(3, dex.MethodInfo{ClassDescriptor: "LBaz;", Name: "qux"})
	n2 := callNode(6, dex.MethodInfo{ClassDescriptor: "LQuux;", Name: "run"})
	n3 := &cfgbuild.Node{InternOffset: 9, Size: 1, Kind: opcode.RET}

	n0.Kind = opcode.IF
	n0.Size = 2
	n0.Successors = []*cfgbuild.Node{n1, n2}
	n1.Successors = []*cfgbuild.Node{n3}

	methods := []MethodInfo{method("LMyClass;.myMethod", []*cfgbuild.Node{n0, n1, n2, n3})}

	cg := BuildCFG(methods)
	if len(cg.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(cg.Funcs))
	}
	f := cg.Funcs[0]
	if f.Name != "LMyClass;.myMethod" {
		t.Errorf("func name = %q", f.Name)
	}
	if len(f.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(f.Blocks))
	}

	b0 := f.Blocks[0]
	if len(b0.Calls) != 1 || b0.Calls[0].Callee != "LFoo;->bar" {
		t.Errorf("b0 calls = %+v", b0.Calls)
	}
	if len(b0.Succs) != 2 {
		t.Errorf("b0 succs = %+v", b0.Succs)
	}

	b2 := f.Blocks[2]
	if !b2.Term {
		t.Error("n2 (return) should be terminal")
	}

	dot := render.DOTCFG(cg, "dexcfg lattice example")
	if dot == "" {
		t.Error("expected non-empty DOT output")
	}
}

func TestBuildCallGraph_DOTOutput(t *testing.T) {
	logger := dex.MethodInfo{ClassDescriptor: "LLogger;", Name: "log"}
	methods := []MethodInfo{
		method("Lmain;.main", []*cfgbuild.Node{
			callNode(0, dex.MethodInfo{ClassDescriptor: "LFoo;", Name: "init"}),
			callNode(3, dex.MethodInfo{ClassDescriptor: "LBar;", Name: "run"}),
		}),
		method("LFoo;.init", []*cfgbuild.Node{callNode(0, logger)}),
		method("LBar;.run", []*cfgbuild.Node{callNode(0, logger)}),
		method("LLogger;.log", nil),
	}

	cg := BuildCallGraph(methods)
	if len(cg.Nodes) != 4 {
		t.Errorf("expected 4 nodes, got %d", len(cg.Nodes))
	}

	dot := render.DOT(cg, "dexcfg call graph example")
	if dot == "" {
		t.Error("expected non-empty DOT output")
	}
}

func TestLink_SameFileEdge(t *testing.T) {
	callee := &cfgbuild.Node{InternOffset: 0, Size: 1, Kind: opcode.RET}
	calleeInfo := dex.MethodInfo{ClassDescriptor: "LFoo;", Name: "bar"}
	caller := callNode(0, calleeInfo)

	// The callee's MethodInfo entry must be keyed by its own Key(), the same
	// identity a CALL node's CalledMethodInfo.Key() is compared against —
	// not an arbitrary display string, so this test actually exercises the
	// lookup Link performs.
	methods := []MethodInfo{
		method("Lmain;.main", []*cfgbuild.Node{caller}),
		method(calleeInfo.Key(), []*cfgbuild.Node{callee}),
	}
	Link(methods)

	if len(caller.Successors) != 1 || caller.Successors[0] != callee {
		t.Fatalf("expected caller linked to callee entry, got %+v", caller.Successors)
	}
}

func TestLink_UnresolvedCalleeSkipped(t *testing.T) {
	caller := callNode(0, dex.MethodInfo{ClassDescriptor: "LOutside;", Name: "missing"})
	methods := []MethodInfo{method("Lmain;.main", []*cfgbuild.Node{caller})}
	Link(methods)

	if len(caller.Successors) != 0 {
		t.Fatalf("expected no successor for out-of-file callee, got %+v", caller.Successors)
	}
}
