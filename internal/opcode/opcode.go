// Package opcode provides the closed Dalvik opcode table: equality,
// per-opcode instruction format (for width/operand decoding), and the
// control-kind classification the CFG constructor dispatches on.
package opcode

// Opcode is a single Dalvik opcode byte (0x00-0xFF, with gaps the real
// instruction set leaves unused). Only equality and classification are
// required of it.
type Opcode uint8

// Named opcodes referenced directly by the classifier and by tests. This is
// not the full 256-entry set — Dalvik leaves many values unused — but every
// opcode the classifier or decoder needs to recognize by name is listed
// here; everything else is handled by range checks in Format/Classify.
const (
	Nop                 Opcode = 0x00
	MoveResult          Opcode = 0x0a
	MoveResultWide      Opcode = 0x0b
	MoveResultObject    Opcode = 0x0c
	MoveException       Opcode = 0x0d
	ReturnVoid          Opcode = 0x0e
	Return              Opcode = 0x0f
	ReturnWide          Opcode = 0x10
	ReturnObject        Opcode = 0x11
	ConstString         Opcode = 0x1a
	ConstStringJumbo    Opcode = 0x1b
	NewInstance         Opcode = 0x22
	NewArray            Opcode = 0x23
	FilledNewArray      Opcode = 0x24
	FilledNewArrayRange Opcode = 0x25
	FillArrayData       Opcode = 0x26
	Throw               Opcode = 0x27
	Goto                Opcode = 0x28
	Goto16              Opcode = 0x29
	Goto32              Opcode = 0x2a
	PackedSwitch        Opcode = 0x2b
	SparseSwitch        Opcode = 0x2c
	IfEq                Opcode = 0x32
	IfNe                Opcode = 0x33
	IfLt                Opcode = 0x34
	IfGe                Opcode = 0x35
	IfGt                Opcode = 0x36
	IfLe                Opcode = 0x37
	IfEqz               Opcode = 0x38
	IfNez               Opcode = 0x39
	IfLtz               Opcode = 0x3a
	IfGez               Opcode = 0x3b
	IfGtz               Opcode = 0x3c
	IfLez               Opcode = 0x3d
	InvokeVirtual       Opcode = 0x6e
	InvokeSuper         Opcode = 0x6f
	InvokeDirect        Opcode = 0x70
	InvokeStatic        Opcode = 0x71
	InvokeInterface     Opcode = 0x72
	InvokeVirtualRange  Opcode = 0x74
	InvokeSuperRange    Opcode = 0x75
	InvokeDirectRange   Opcode = 0x76
	InvokeStaticRange   Opcode = 0x77
	InvokeInterfaceRange Opcode = 0x78
	InvokePolymorphic    Opcode = 0xfa
	InvokePolymorphicRange Opcode = 0xfb
	InvokeCustom           Opcode = 0xfc
	InvokeCustomRange      Opcode = 0xfd
)

// Payload pseudo-instruction signatures: the low byte of the
// code unit at a payload's address is always 0x00 (the nop opcode); the
// high byte distinguishes the three payload kinds.
const (
	PackedSwitchSignature Opcode = 0x01 // code unit 0x0100
	SparseSwitchSignature Opcode = 0x02 // code unit 0x0200
	FillArrayDataSignature Opcode = 0x03 // code unit 0x0300
)
