package opcode

// Format names a fixed Dalvik instruction encoding shape. The decoder uses
// it to determine width (for ordinary opcodes — payload pseudo-instructions
// are sniffed before this table is ever consulted) and which fields are
// meaningful.
type Format string

const (
	Fmt10x Format = "10x"
	Fmt12x Format = "12x"
	Fmt11n Format = "11n"
	Fmt11x Format = "11x"
	Fmt10t Format = "10t"
	Fmt20t Format = "20t"
	Fmt22x Format = "22x"
	Fmt21t Format = "21t"
	Fmt21s Format = "21s"
	Fmt21h Format = "21h"
	Fmt21c Format = "21c"
	Fmt23x Format = "23x"
	Fmt22b Format = "22b"
	Fmt22t Format = "22t"
	Fmt22s Format = "22s"
	Fmt22c Format = "22c"
	Fmt30t Format = "30t"
	Fmt31i Format = "31i"
	Fmt31c Format = "31c"
	Fmt31t Format = "31t"
	Fmt32x Format = "32x"
	Fmt35c Format = "35c"
	Fmt3rc Format = "3rc"
	Fmt45cc Format = "45cc"
	Fmt4rcc Format = "4rcc"
	Fmt51l Format = "51l"
)

// Width returns the instruction width in 16-bit code units for a given
// format. Payload pseudo-instructions are not formats and are never passed
// here (their width is computed from the payload header instead).
func (fmt_ Format) Width() int {
	switch fmt_ {
	case Fmt10x, Fmt12x, Fmt11n, Fmt11x, Fmt10t:
		return 1
	case Fmt20t, Fmt22x, Fmt21t, Fmt21s, Fmt21h, Fmt21c, Fmt23x, Fmt22b, Fmt22t, Fmt22s, Fmt22c:
		return 2
	case Fmt30t, Fmt32x, Fmt31i, Fmt31c, Fmt31t, Fmt35c, Fmt3rc:
		return 3
	case Fmt45cc, Fmt4rcc:
		return 4
	case Fmt51l:
		return 5
	default:
		return 0
	}
}

// IsBranchFormat reports whether the format carries a method-relative
// branch displacement field (the "t"-format family).
func (fmt_ Format) IsBranchFormat() bool {
	switch fmt_ {
	case Fmt10t, Fmt20t, Fmt21t, Fmt22t, Fmt30t, Fmt31t:
		return true
	default:
		return false
	}
}

// IsInvokeFormat reports whether the format carries a referenced method
// index (the 35c/3rc invoke formats, plus the newer 45cc/4rcc
// invoke-polymorphic formats which share the same method_idx slot).
func (fmt_ Format) IsInvokeFormat() bool {
	switch fmt_ {
	case Fmt35c, Fmt3rc, Fmt45cc, Fmt4rcc:
		return true
	default:
		return false
	}
}

// FormatOf returns the instruction format for a (non-payload) opcode, using
// the closed ranges of the public Dalvik opcode table. Unused/reserved
// byte values fall back to Fmt10x with Width() 1 — they classify as SEQ
// (see Classify) and are otherwise inert.
func FormatOf(op Opcode) Format {
	switch {
	case op == 0x00:
		return Fmt10x
	case op == 0x01, op == 0x04, op == 0x07, op == 0x21:
		return Fmt12x
	case op == 0x02, op == 0x05, op == 0x08:
		return Fmt22x
	case op == 0x03, op == 0x06, op == 0x09:
		return Fmt32x
	case op >= 0x0a && op <= 0x0d, op == 0x0f, op == 0x10, op == 0x11, op == 0x1d, op == 0x1e, op == 0x27:
		return Fmt11x
	case op == 0x0e:
		return Fmt10x
	case op == 0x12:
		return Fmt11n
	case op == 0x13, op == 0x16:
		return Fmt21s
	case op == 0x14, op == 0x17:
		return Fmt31i
	case op == 0xfe, op == 0xff:
		return Fmt21c
	case op == 0x15, op == 0x19:
		return Fmt21h
	case op == 0x18:
		return Fmt51l
	case op == 0x1a, op == 0x1c, op == 0x1f, op == 0x22:
		return Fmt21c
	case op == 0x1b:
		return Fmt31c
	case op == 0x20, op == 0x23:
		return Fmt22c
	case op == FilledNewArray:
		return Fmt35c
	case op == FilledNewArrayRange:
		return Fmt3rc
	case op == FillArrayData, op == PackedSwitch, op == SparseSwitch:
		return Fmt31t
	case op == Goto:
		return Fmt10t
	case op == Goto16:
		return Fmt20t
	case op == Goto32:
		return Fmt30t
	case op >= 0x2d && op <= 0x31: // cmpkind
		return Fmt23x
	case op >= IfEq && op <= IfLe: // if-test
		return Fmt22t
	case op >= IfEqz && op <= IfLez: // if-testz
		return Fmt21t
	case op >= 0x44 && op <= 0x51: // arrayop
		return Fmt23x
	case op >= 0x52 && op <= 0x5f: // iinstanceop
		return Fmt22c
	case op >= 0x60 && op <= 0x6d: // sstaticop
		return Fmt21c
	case op >= InvokeVirtual && op <= InvokeInterface: // invoke-kind
		return Fmt35c
	case op >= InvokeVirtualRange && op <= InvokeInterfaceRange: // invoke-kind/range
		return Fmt3rc
	case op >= 0x7b && op <= 0x8f: // unop
		return Fmt12x
	case op >= 0x90 && op <= 0xaf: // binop
		return Fmt23x
	case op >= 0xb0 && op <= 0xcf: // binop/2addr
		return Fmt12x
	case op >= 0xd0 && op <= 0xd7: // binop/lit16
		return Fmt22s
	case op >= 0xd8 && op <= 0xe2: // binop/lit8
		return Fmt22b
	case op == InvokePolymorphic:
		return Fmt45cc
	case op == InvokePolymorphicRange:
		return Fmt4rcc
	case op == InvokeCustom:
		return Fmt35c
	case op == InvokeCustomRange:
		return Fmt3rc
	default:
		return Fmt10x
	}
}
