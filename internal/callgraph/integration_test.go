package callgraph

import (
	"bytes"
	"encoding/binary"
	"testing"

	"dexcfg/internal/cfgbuild"
	"dexcfg/internal/dex"
	"dexcfg/internal/diag"
	"dexcfg/internal/opcode"
)

// buildSyntheticDex hand-assembles a minimal two-class DEX image: LMain;
// declares a static method "call" whose body invoke-statics LOther;'s
// static method "target", which just returns. Every table (strings,
// type_ids, proto_ids, method_ids, class_defs, class_data_item, code_item)
// is laid out the way dex.Open would read it off disk, so resolving the
// invoke-static's method_idx exercises the real string/type tables instead
// of a hand-wired test shortcut.
func buildSyntheticDex(t *testing.T) []byte {
	t.Helper()

	uleb := func(v uint64) []byte {
		var out []byte
		for {
			b := byte(v & 0x7f)
			v >>= 7
			if v != 0 {
				b |= 0x80
			}
			out = append(out, b)
			if v == 0 {
				break
			}
		}
		return out
	}

	strTab := []string{"LMain;", "LOther;", "V", "call", "target"}

	const headerSize = 112
	var body bytes.Buffer
	body.Write(make([]byte, headerSize))

	stringIdsOff := body.Len()
	body.Write(make([]byte, len(strTab)*4))

	typeIdsOff := body.Len()
	body.Write(make([]byte, 3*4))

	protoIdsOff := body.Len()
	body.Write(make([]byte, 12))

	methodIdsOff := body.Len()
	body.Write(make([]byte, 2*8))

	classDefsOff := body.Len()
	body.Write(make([]byte, 2*32))

	strOffs := make([]int, len(strTab))
	for i, s := range strTab {
		strOffs[i] = body.Len()
		body.Write(uleb(uint64(len(s))))
		body.WriteString(s)
		body.WriteByte(0)
	}

	writeU16 := func(v uint16) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		body.Write(b[:])
	}
	writeU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		body.Write(b[:])
	}

	// LMain;->call()V: invoke-static {}, LOther;->target()V; return-void
	callerCodeOff := body.Len()
	writeU16(1) // registers_size
	writeU16(0) // ins_size
	writeU16(1) // outs_size
	writeU16(0) // tries_size
	writeU32(0) // debug_info_off
	writeU32(4) // insns_size (code units)
	writeU16(uint16(opcode.InvokeStatic))
	writeU16(1) // method_idx = 1 (target)
	writeU16(0) // packed arg registers, unused (argc 0)
	writeU16(uint16(opcode.ReturnVoid))

	// LOther;->target()V: return-void
	targetCodeOff := body.Len()
	writeU16(0)
	writeU16(0)
	writeU16(0)
	writeU16(0)
	writeU32(0)
	writeU32(1)
	writeU16(uint16(opcode.ReturnVoid))

	mainClassDataOff := body.Len()
	body.Write(uleb(0)) // static_fields_size
	body.Write(uleb(0)) // instance_fields_size
	body.Write(uleb(1)) // direct_methods_size
	body.Write(uleb(0)) // virtual_methods_size
	body.Write(uleb(0)) // method_idx_diff (absolute 0, first entry)
	body.Write(uleb(0x9))
	body.Write(uleb(uint64(callerCodeOff)))

	otherClassDataOff := body.Len()
	body.Write(uleb(0))
	body.Write(uleb(0))
	body.Write(uleb(1))
	body.Write(uleb(0))
	body.Write(uleb(1)) // method_idx_diff (absolute 1, first entry in this list)
	body.Write(uleb(0x9))
	body.Write(uleb(uint64(targetCodeOff)))

	image := body.Bytes()
	putU16 := func(off int, v uint16) { binary.LittleEndian.PutUint16(image[off:], v) }
	putU32 := func(off int, v uint32) { binary.LittleEndian.PutUint32(image[off:], v) }

	for i, off := range strOffs {
		putU32(stringIdsOff+i*4, uint32(off))
	}
	putU32(typeIdsOff+0*4, 0) // type 0 -> "LMain;"
	putU32(typeIdsOff+1*4, 1) // type 1 -> "LOther;"
	putU32(typeIdsOff+2*4, 2) // type 2 -> "V"

	putU32(protoIdsOff+0, 2) // shorty_idx -> "V"
	putU32(protoIdsOff+4, 2) // return_type_idx -> type 2 ("V")
	putU32(protoIdsOff+8, 0) // parameters_off (none)

	putU16(methodIdsOff+0, 0) // method 0: class_idx -> LMain;
	putU16(methodIdsOff+2, 0) // proto_idx
	putU32(methodIdsOff+4, 3) // name_idx -> "call"
	putU16(methodIdsOff+8, 1) // method 1: class_idx -> LOther;
	putU16(methodIdsOff+10, 0)
	putU32(methodIdsOff+12, 4) // name_idx -> "target"

	writeClassDef := func(off int, classIdx, classDataOff uint32) {
		putU32(off+0, classIdx)
		putU32(off+4, 0)
		putU32(off+8, 0)
		putU32(off+12, 0)
		putU32(off+16, 0)
		putU32(off+20, 0)
		putU32(off+24, classDataOff)
		putU32(off+28, 0)
	}
	writeClassDef(classDefsOff, 0, uint32(mainClassDataOff))
	writeClassDef(classDefsOff+32, 1, uint32(otherClassDataOff))

	magic := []byte{0x64, 0x65, 0x78, 0x0a, 0x30, 0x33, 0x35, 0x00}
	copy(image[0:8], magic)
	putU32(32, uint32(len(image)))   // file_size
	putU32(36, uint32(headerSize))   // header_size
	putU32(40, 0x12345678)           // endian_tag
	putU32(44, 0)                    // link_size
	putU32(48, 0)                    // link_off
	putU32(52, 0)                    // map_off
	putU32(56, uint32(len(strTab)))  // string_ids_size
	putU32(60, uint32(stringIdsOff)) // string_ids_off
	putU32(64, 3)                    // type_ids_size
	putU32(68, uint32(typeIdsOff))   // type_ids_off
	putU32(72, 1)                    // proto_ids_size
	putU32(76, uint32(protoIdsOff))  // proto_ids_off
	putU32(80, 0)                    // field_ids_size
	putU32(84, 0)                    // field_ids_off
	putU32(88, 2)                    // method_ids_size
	putU32(92, uint32(methodIdsOff)) // method_ids_off
	putU32(96, 2)                    // class_defs_size
	putU32(100, uint32(classDefsOff))
	putU32(104, 0) // data_size
	putU32(108, 0) // data_off

	putU32(8, adler32For(image[12:]))
	return image
}

// adler32For mirrors the DEX header checksum algorithm so this synthetic
// image passes File.VerifyChecksum like a real one would.
func adler32For(data []byte) uint32 {
	const modAdler = 65521
	var a, b uint32 = 1, 0
	for _, c := range data {
		a = (a + uint32(c)) % modAdler
		b = (b + a) % modAdler
	}
	return (b << 16) | a
}

// TestLink_RealDexFileInterproceduralEdge drives the full pipeline
// (dex.NewFile -> Classes/DirectMethods/CodeItem -> cfgbuild.BuildNodes ->
// cfgbuild.BuildMethodCFG -> Link) over a hand-built two-class DEX image,
// proving the caller's CALL node ends up wired to the callee's entry node
// through the real method-identity tables, not a test-only shortcut.
func TestLink_RealDexFileInterproceduralEdge(t *testing.T) {
	image := buildSyntheticDex(t)
	f, err := dex.NewFile(image)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.VerifyChecksum(); err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}

	d := &diag.Diags{}
	var methods []MethodInfo
	for _, class := range f.Classes() {
		for _, m := range class.DirectMethods() {
			ci, ok := m.CodeItem()
			if !ok {
				t.Fatalf("%s: missing code item", m.Info.Key())
			}
			name := m.Info.Key()
			nodes, err := cfgbuild.BuildNodes(ci, f, d, name, diag.Options{})
			if err != nil {
				t.Fatalf("BuildNodes(%s): %v", name, err)
			}
			cfgbuild.ExpandSwitchPayloads(nodes, ci.Insns, d, name)
			mcfg := cfgbuild.BuildMethodCFG(nodes, d, name)
			methods = append(methods, MethodInfo{Name: name, CFG: mcfg})
		}
	}
	if d.Len() != 0 {
		t.Fatalf("unexpected diags: %+v", d.Items())
	}
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d: %+v", len(methods), methods)
	}

	Link(methods)

	var caller, callee *MethodInfo
	for i := range methods {
		switch methods[i].Name {
		case "Main->call()void":
			caller = &methods[i]
		case "Other->target()void":
			callee = &methods[i]
		}
	}
	if caller == nil || callee == nil {
		t.Fatalf("expected Main->call()void and Other->target()void among %+v", methods)
	}

	entry := caller.CFG.Entry
	if entry.Kind != opcode.CALL {
		t.Fatalf("caller entry kind = %v, want CALL", entry.Kind)
	}
	if entry.CalledMethodInfo == nil || entry.CalledMethodInfo.Key() != callee.Name {
		t.Fatalf("CalledMethodInfo = %+v, want key %q", entry.CalledMethodInfo, callee.Name)
	}

	var linked bool
	for _, s := range entry.Successors {
		if s == callee.CFG.Entry {
			linked = true
		}
	}
	if !linked {
		t.Fatalf("expected caller's CALL node linked to callee's entry node, got successors %+v", entry.Successors)
	}
}
