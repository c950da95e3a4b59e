package cfgbuild

import (
	"dexcfg/internal/diag"
	"dexcfg/internal/opcode"
)

// MethodCFG is one method's built control-flow graph.
type MethodCFG struct {
	Entry *Node // the node at InternOffset 0, or nil for an empty method
	Nodes []*Node
}

// cluster is a maximal run of sequential nodes ending at a control
// transfer (IF/JMP/SWITCH/RET). THROW and CALL do not terminate a cluster.
type cluster struct {
	head *Node
}

// BuildMethodCFG fills in Successors for every node in nodes (ordered by
// InternOffset). nodes must be the method's full arena — the returned
// MethodCFG's Successors point into it.
func BuildMethodCFG(nodes []*Node, d *diag.Diags, methodName string) MethodCFG {
	if len(nodes) == 0 {
		return MethodCFG{}
	}

	offsetToNode := make(map[int]*Node, len(nodes))
	for _, n := range nodes {
		offsetToNode[n.InternOffset] = n
	}

	// Step 1: clustering + intra-cluster fallthrough linking.
	var clusters []cluster
	var current []*Node
	for _, n := range nodes {
		if len(current) > 0 {
			prev := current[len(current)-1]
			prev.Successors = append(prev.Successors, n)
		}
		current = append(current, n)
		if isClusterTerminator(n.Kind) {
			clusters = append(clusters, cluster{head: current[0]})
			current = nil
		}
	}
	if len(current) > 0 {
		clusters = append(clusters, cluster{head: current[0]})
	}

	headByOffset := make(map[int]*Node, len(clusters))
	for _, c := range clusters {
		headByOffset[c.head.InternOffset] = c.head
	}

	for _, n := range nodes {
		switch n.Kind {
		case opcode.IF:
			installIFEdges(n, headByOffset, d, methodName)
		case opcode.JMP:
			installJMPEdges(n, offsetToNode, d, methodName)
		case opcode.SWITCH:
			installSwitchEdges(n, headByOffset)
		}
	}

	return MethodCFG{Entry: offsetToNode[0], Nodes: nodes}
}

func isClusterTerminator(k opcode.ControlKind) bool {
	switch k {
	case opcode.IF, opcode.JMP, opcode.SWITCH, opcode.RET:
		return true
	default:
		return false
	}
}

// installIFEdges installs fall-through first, then the false-branch
// target. The "false"-branch naming is preserved even though edges are
// otherwise unordered in use.
func installIFEdges(t *Node, headByOffset map[int]*Node, d *diag.Diags, methodName string) {
	if head, ok := headByOffset[t.InternOffset+t.Size]; ok {
		t.Successors = append(t.Successors, head)
	}
	if len(t.BranchTargets) == 0 {
		return
	}
	if head, ok := headByOffset[t.BranchTargets[0]]; ok {
		t.Successors = append(t.Successors, head)
	} else {
		d.Addf(methodName, uint32(t.InternOffset), diag.KindUnresolved, "if target %d has no cluster", t.BranchTargets[0])
	}
}

// installJMPEdges matches on any node's InternOffset, not just cluster
// heads, tolerating a goto landing mid-cluster. InternOffset is unique per
// node, so this degenerates to a single map lookup rather than an explicit
// scan of every cluster.
func installJMPEdges(t *Node, offsetToNode map[int]*Node, d *diag.Diags, methodName string) {
	if len(t.BranchTargets) == 0 {
		return
	}
	if target, ok := offsetToNode[t.BranchTargets[0]]; ok {
		t.Successors = append(t.Successors, target)
	} else {
		d.Addf(methodName, uint32(t.InternOffset), diag.KindUnresolved, "goto target %d has no node", t.BranchTargets[0])
	}
}

// installSwitchEdges installs payload targets in order, then at most one
// fall-through successor, found as the unique cluster whose head offset is
// neither the switch's own offset nor any listed target. A sounder
// alternative using InternOffset+Size would be more precise, but this
// heuristic is preserved as-is to match observed behavior.
func installSwitchEdges(t *Node, headByOffset map[int]*Node) {
	seen := map[int]bool{t.InternOffset: true}
	for _, target := range t.BranchTargets {
		seen[target] = true
		if head, ok := headByOffset[target]; ok {
			t.Successors = append(t.Successors, head)
		}
	}

	var candidate *Node
	ambiguous := false
	for off, head := range headByOffset {
		if seen[off] {
			continue
		}
		if candidate != nil {
			ambiguous = true
			break
		}
		candidate = head
	}
	if candidate != nil && !ambiguous {
		t.Successors = append(t.Successors, candidate)
	}
}
