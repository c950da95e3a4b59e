package decode

import "fmt"

// payloadSize reads the `size` field shared by packed-switch-payload and
// sparse-switch-payload (second code unit, immediately after the
// identifying signature).
func payloadSize(insns []uint16, idx int, kind PayloadKind) (int, bool) {
	if idx+1 >= len(insns) {
		return 0, false
	}
	_ = kind
	return int(insns[idx+1]), true
}

// fillArrayDataSize reads fill-array-data-payload's element_width (code
// unit 1) and size (code units 2-3, as a uint32).
func fillArrayDataSize(insns []uint16, idx int) (size, elemWidth int, ok bool) {
	if idx+3 >= len(insns) {
		return 0, 0, false
	}
	elemWidth = int(insns[idx+1])
	size = int(uint32(insns[idx+2]) | uint32(insns[idx+3])<<16)
	return size, elemWidth, true
}

// SwitchPayload is the decoded content of a packed- or sparse-switch
// payload.
type SwitchPayload struct {
	Packed   bool // true = packed-switch-payload (0x0100), false = sparse (0x0200)
	Size     int
	FirstKey int32    // packed only
	Keys     []int32  // sparse only, parallel to Targets
	Targets  []int32  // relative offsets (to the switch instruction's own address)
}

// DecodeSwitchPayload decodes the payload at code-unit offset payloadIdx.
// It returns an error if the payload's identifying signature does not
// match 0x0100/0x0200 — a fatal condition for the owning switch only.
func DecodeSwitchPayload(insns []uint16, payloadIdx int) (SwitchPayload, error) {
	if payloadIdx < 0 || payloadIdx >= len(insns) {
		return SwitchPayload{}, fmt.Errorf("decode: switch payload index %d out of range", payloadIdx)
	}
	sig := insns[payloadIdx]
	switch sig {
	case packedSwitchSig:
		return decodePackedSwitchPayload(insns, payloadIdx)
	case sparseSwitchSig:
		return decodeSparseSwitchPayload(insns, payloadIdx)
	default:
		return SwitchPayload{}, fmt.Errorf("decode: bad switch payload signature 0x%04x at %d", sig, payloadIdx)
	}
}

func decodePackedSwitchPayload(insns []uint16, idx int) (SwitchPayload, error) {
	if idx+3 >= len(insns) {
		return SwitchPayload{}, fmt.Errorf("decode: truncated packed-switch payload header at %d", idx)
	}
	size := int(insns[idx+1])
	firstKey := int32(uint32(insns[idx+2]) | uint32(insns[idx+3])<<16)
	base := idx + 4
	if base+size*2 > len(insns) {
		return SwitchPayload{}, fmt.Errorf("decode: truncated packed-switch targets at %d", idx)
	}
	targets := make([]int32, size)
	for i := 0; i < size; i++ {
		off := base + i*2
		targets[i] = int32(uint32(insns[off]) | uint32(insns[off+1])<<16)
	}
	return SwitchPayload{Packed: true, Size: size, FirstKey: firstKey, Targets: targets}, nil
}

func decodeSparseSwitchPayload(insns []uint16, idx int) (SwitchPayload, error) {
	if idx+1 >= len(insns) {
		return SwitchPayload{}, fmt.Errorf("decode: truncated sparse-switch payload header at %d", idx)
	}
	size := int(insns[idx+1])
	keysBase := idx + 2
	targetsBase := keysBase + size*2
	if targetsBase+size*2 > len(insns) {
		return SwitchPayload{}, fmt.Errorf("decode: truncated sparse-switch tables at %d", idx)
	}
	keys := make([]int32, size)
	targets := make([]int32, size)
	for i := 0; i < size; i++ {
		ko := keysBase + i*2
		keys[i] = int32(uint32(insns[ko]) | uint32(insns[ko+1])<<16)
		to := targetsBase + i*2
		targets[i] = int32(uint32(insns[to]) | uint32(insns[to+1])<<16)
	}
	return SwitchPayload{Packed: false, Size: size, Keys: keys, Targets: targets}, nil
}
