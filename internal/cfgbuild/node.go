// Package cfgbuild reconstructs one method's intra-procedural control-flow
// graph from its decoded instruction stream: node construction, switch
// payload expansion, and the clustering/edge-installation pipeline. It is
// the direct generalization of a three-pass (leaders / partition /
// successors) CFG-building algorithm from a fixed-width ARM64 instruction
// stream to Dalvik's variable-width one.
package cfgbuild

import (
	"fmt"

	"dexcfg/internal/decode"
	"dexcfg/internal/dex"
	"dexcfg/internal/diag"
	"dexcfg/internal/opcode"
)

// Node is the central CFG entity: one decoded instruction plus its
// resolved control-flow successors.
type Node struct {
	BaseAddr     uint64 // absolute byte offset within the mapped DEX image
	InternOffset int    // code-unit offset from the method's code start
	Size         int    // width, code units
	Opcode       opcode.Opcode
	Kind         opcode.ControlKind

	CalledMethodInfo *dex.MethodInfo // populated only when Kind == CALL

	// BranchTargets are method-relative code-unit offsets: one element for
	// IF (the false/taken target) and JMP (the goto target), the ordered
	// case-target list for SWITCH (after payload expansion), empty
	// otherwise. Before ExpandSwitchPayloads runs, a SWITCH node's single
	// element is its payload's address, not yet a case target.
	BranchTargets []int

	Successors []*Node
}

// BuildNodes decodes every instruction in one method's code item into a
// Node, in address order. The returned slice is the method's arena —
// callers must not grow it after this call returns, since Successors
// stores pointers into it. opts.MaxMethodLength, when non-zero, caps the
// number of decoded (non-payload) instructions; a method over the cap
// aborts the same way a decode error does, rather than building an
// unbounded node arena for a hostile or corrupt code item.
func BuildNodes(ci *dex.CodeItem, file *dex.File, d *diag.Diags, methodName string, opts diag.Options) ([]*Node, error) {
	insns := ci.Insns
	var decoded []decode.Inst
	var offsets []int

	idx := 0
	for idx < len(insns) {
		inst, err := decode.Decode(insns, idx)
		if err != nil {
			d.Addf(methodName, uint32(idx), diag.KindZeroWidth, "%v", err)
			return nil, fmt.Errorf("cfgbuild: abort method %s: %w", methodName, err)
		}
		if !inst.IsPayload {
			if opts.MaxMethodLength > 0 && len(decoded) >= opts.MaxMethodLength {
				d.Addf(methodName, uint32(idx), diag.KindMethodTooLong,
					"method exceeds max length of %d instructions", opts.MaxMethodLength)
				return nil, fmt.Errorf("cfgbuild: abort method %s: exceeds max length of %d instructions",
					methodName, opts.MaxMethodLength)
			}
			decoded = append(decoded, inst)
			offsets = append(offsets, idx)
		}
		idx += inst.Width
	}

	nodes := make([]*Node, len(decoded))
	for i, inst := range decoded {
		n := &Node{
			InternOffset: offsets[i],
			Size:         inst.Width,
			Opcode:       inst.Opcode,
			Kind:         opcode.Classify(inst.Opcode),
			BaseAddr:     uint64(ci.CodeStart) + uint64(offsets[i]*2),
		}
		switch n.Kind {
		case opcode.IF, opcode.JMP:
			if inst.HasBranch {
				n.BranchTargets = []int{offsets[i] + int(inst.BranchDisp)}
			}
		case opcode.SWITCH:
			if inst.HasBranch {
				// Payload address, not yet expanded.
				n.BranchTargets = []int{offsets[i] + int(inst.BranchDisp)}
			}
		case opcode.CALL:
			if inst.HasMethodIdx {
				if mi, ok := resolveCallee(file, inst.MethodIdx); ok {
					n.CalledMethodInfo = &mi
				} else {
					d.Addf(methodName, uint32(offsets[i]), diag.KindLookupFailure,
						"invoke method_idx %d out of range", inst.MethodIdx)
				}
			}
		}
		nodes[i] = n
	}
	return nodes, nil
}

// resolveCallee looks up a method_id index through the DEX reader,
// returning ok=false for an out-of-range index rather than erroring —
// the CALL node simply gains no inter-procedural edge. It goes through
// File.MethodInfoByIdx, the same resolution path used to build every
// method actually processed, so a CALL node's CalledMethodInfo.Key()
// lines up with the callee's own Key() whenever the callee is defined in
// this file — a hand-rolled copy here previously skipped decodeDescriptor
// and could never match.
func resolveCallee(file *dex.File, methodIdx uint32) (dex.MethodInfo, bool) {
	return file.MethodInfoByIdx(methodIdx)
}
