package dex

// CodeItem mirrors the leading fields of code_item: the parts the CFG
// pipeline needs (register/argument counts, and the instruction stream
// itself). try_item / encoded_catch_handler data that follows the
// instruction array is not parsed: exception-handler edges are an explicit
// Non-goal.
type CodeItem struct {
	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16
	TriesSize     uint16
	DebugInfoOff  uint32
	InsnsSize     uint32 // code units (16-bit words)
	Insns         []uint16

	// CodeStart is the absolute byte offset of Insns[0] within the mapped
	// DEX image, used to compute Node.base_addr.
	CodeStart uint32
}

const codeItemHeaderSize = 16 // 4*uint16 + 2*uint32

// parseCodeItem decodes the code_item at the given absolute file offset.
func (f *File) parseCodeItem(off uint32) (*CodeItem, bool) {
	if uint64(off)+codeItemHeaderSize > uint64(len(f.image)) {
		return nil, false
	}
	ci := &CodeItem{
		RegistersSize: f.u16(off),
		InsSize:       f.u16(off + 2),
		OutsSize:      f.u16(off + 4),
		TriesSize:     f.u16(off + 6),
		DebugInfoOff:  f.u32(off + 8),
		InsnsSize:     f.u32(off + 12),
	}
	insnsOff := off + codeItemHeaderSize
	ci.CodeStart = insnsOff

	n := int(ci.InsnsSize)
	if uint64(insnsOff)+uint64(n)*2 > uint64(len(f.image)) {
		// Truncated code item: return what fits rather than panicking;
		// the decoder will hit a bounds/width error on the missing tail.
		n = (len(f.image) - int(insnsOff)) / 2
		if n < 0 {
			n = 0
		}
	}
	ci.Insns = make([]uint16, n)
	for i := 0; i < n; i++ {
		ci.Insns[i] = f.u16(insnsOff + uint32(i*2))
	}
	return ci, true
}
