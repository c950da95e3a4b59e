package cfgbuild

import (
	"dexcfg/internal/decode"
	"dexcfg/internal/diag"
	"dexcfg/internal/opcode"
)

// ExpandSwitchPayloads resolves every SWITCH node's payload address (set by
// BuildNodes) into the ordered list of method-relative case-target offsets.
// A payload whose identifying signature doesn't match 0x0100/0x0200 is
// fatal for that switch only: its BranchTargets becomes empty and the rest
// of the method is still emitted.
func ExpandSwitchPayloads(nodes []*Node, insns []uint16, d *diag.Diags, methodName string) {
	for _, n := range nodes {
		if n.Kind != opcode.SWITCH || len(n.BranchTargets) != 1 {
			continue
		}
		payloadOffset := n.BranchTargets[0]
		payload, err := decode.DecodeSwitchPayload(insns, payloadOffset)
		if err != nil {
			d.Addf(methodName, uint32(n.InternOffset), diag.KindBadPayload, "%v", err)
			n.BranchTargets = nil
			continue
		}
		targets := make([]int, len(payload.Targets))
		for i, rel := range payload.Targets {
			// Payload-listed offsets are relative to the switch
			// instruction itself, for both packed and sparse payloads.
			targets[i] = n.InternOffset + int(rel)
		}
		n.BranchTargets = targets
	}
}
