package opcode

import "testing"

func TestClassify_Total(t *testing.T) {
	cases := []struct {
		op   Opcode
		want ControlKind
	}{
		{Nop, SEQ},
		{IfEq, IF},
		{IfLez, IF},
		{InvokeVirtual, CALL},
		{InvokeInterfaceRange, CALL},
		{InvokeCustomRange, CALL},
		{NewInstance, NEW},
		{FilledNewArrayRange, NEW},
		{Goto, JMP},
		{Goto32, JMP},
		{PackedSwitch, SWITCH},
		{SparseSwitch, SWITCH},
		{Throw, THROW},
		{ReturnVoid, RET},
		{ReturnObject, RET},
		{0xfe, SEQ}, // const-method-handle: not classified as anything special
	}
	for _, c := range cases {
		if got := Classify(c.op); got != c.want {
			t.Errorf("Classify(0x%02x) = %v, want %v", byte(c.op), got, c.want)
		}
	}
}

func TestControlKind_String(t *testing.T) {
	if IF.String() != "IF" || SWITCH.String() != "SWITCH" {
		t.Errorf("String() mismatch: %q %q", IF.String(), SWITCH.String())
	}
}

func TestFormatOf_Widths(t *testing.T) {
	cases := []struct {
		op        Opcode
		wantWidth int
	}{
		{Nop, 1},
		{Goto, 1},
		{Goto16, 2},
		{Goto32, 3},
		{IfEq, 2},
		{IfEqz, 2},
		{InvokeVirtual, 3},
		{InvokeVirtualRange, 3},
		{InvokePolymorphic, 4},
		{InvokePolymorphicRange, 4},
		{0x18, 5}, // const-wide
	}
	for _, c := range cases {
		f := FormatOf(c.op)
		if w := f.Width(); w != c.wantWidth {
			t.Errorf("FormatOf(0x%02x).Width() = %d, want %d", byte(c.op), w, c.wantWidth)
		}
	}
}

func TestFormatOf_BranchAndInvokeClassification(t *testing.T) {
	if !FormatOf(Goto).IsBranchFormat() {
		t.Error("goto should be a branch format")
	}
	if FormatOf(Nop).IsBranchFormat() {
		t.Error("nop should not be a branch format")
	}
	if !FormatOf(InvokeVirtual).IsInvokeFormat() {
		t.Error("invoke-virtual should be an invoke format")
	}
	if !FormatOf(InvokeStaticRange).IsInvokeFormat() {
		t.Error("invoke-static/range should be an invoke format")
	}
}
