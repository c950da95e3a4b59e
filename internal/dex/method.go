package dex

import "strings"

// MethodInfo is the identity of a method within a DEX file. Two
// MethodInfos are equal iff their MethodIdx values are equal; ordering is
// by MethodIdx.
type MethodInfo struct {
	MethodIdx       uint32
	ClassIdx        uint32
	ProtoIdx        uint32
	NameIdx         uint32
	ClassDescriptor string
	Name            string
	Signature       string
}

// Equal reports whether two MethodInfos name the same method.
func (m MethodInfo) Equal(o MethodInfo) bool { return m.MethodIdx == o.MethodIdx }

// Less orders MethodInfos by MethodIdx.
func (m MethodInfo) Less(o MethodInfo) bool { return m.MethodIdx < o.MethodIdx }

// Key returns a stable identity string for cross-method lookups (the
// inter-procedural linker's MethodInfo → entry-node map).
func (m MethodInfo) Key() string {
	return m.ClassDescriptor + "->" + m.Name + m.Signature
}

func (f *File) readProtoIDs() []ProtoIDItem {
	n := int(f.header.ProtoIdsSize)
	out := make([]ProtoIDItem, n)
	base := f.header.ProtoIdsOff
	for i := 0; i < n; i++ {
		off := base + uint32(i*12)
		out[i] = ProtoIDItem{
			ShortyIdx:        f.u32(off),
			ReturnTypeIdx:    f.u32(off + 4),
			ParametersOffset: f.u32(off + 8),
		}
	}
	return out
}

func (f *File) readFieldIDs() []FieldIDItem {
	n := int(f.header.FieldIdsSize)
	out := make([]FieldIDItem, n)
	base := f.header.FieldIdsOff
	for i := 0; i < n; i++ {
		off := base + uint32(i*8)
		out[i] = FieldIDItem{
			ClassIdx: f.u16(off),
			TypeIdx:  f.u16(off + 2),
			NameIdx:  f.u32(off + 4),
		}
	}
	return out
}

func (f *File) readMethodIDs() []MethodIDItem {
	n := int(f.header.MethodIdsSize)
	out := make([]MethodIDItem, n)
	base := f.header.MethodIdsOff
	for i := 0; i < n; i++ {
		off := base + uint32(i*8)
		out[i] = MethodIDItem{
			ClassIdx: f.u16(off),
			ProtoIdx: f.u16(off + 2),
			NameIdx:  f.u32(off + 4),
		}
	}
	return out
}

// MethodIDItem resolves a method_id index to its raw {classIdx, protoIdx,
// nameIdx} triple. ok is false when idx is out of range.
func (f *File) MethodIDItem(idx uint32) (MethodIDItem, bool) {
	if idx >= uint32(len(f.methodIDs)) {
		return MethodIDItem{}, false
	}
	return f.methodIDs[idx], true
}

// typeListParamDescriptors reads a type_list at the given offset (0 means
// "no parameters") and returns each parameter's decoded type name.
func (f *File) typeListParamDescriptors(off uint32) []string {
	if off == 0 {
		return nil
	}
	size := f.u32(off)
	out := make([]string, 0, size)
	for i := uint32(0); i < size; i++ {
		typeIdx := uint32(f.u16(off + 4 + i*2))
		desc, ok := f.TypeDescriptorByTypeID(typeIdx)
		if !ok {
			out = append(out, "?")
			continue
		}
		out = append(out, decodeDescriptor(desc))
	}
	return out
}

// CopyMethodSignature builds a "(params)ret" signature string for the
// method identified by mi, in the style of MethodIdItem.String() in the
// reference DEX parsers in this pack.
func (f *File) CopyMethodSignature(mi MethodIDItem) (string, bool) {
	if uint32(mi.ProtoIdx) >= uint32(len(f.protoIDs)) {
		return "", false
	}
	proto := f.protoIDs[mi.ProtoIdx]
	retDesc, ok := f.TypeDescriptorByTypeID(proto.ReturnTypeIdx)
	if !ok {
		return "", false
	}
	params := f.typeListParamDescriptors(proto.ParametersOffset)
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(strings.Join(params, ", "))
	b.WriteByte(')')
	b.WriteString(decodeDescriptor(retDesc))
	return b.String(), true
}

// MethodInfoByIdx builds a fully-resolved MethodInfo for a method_id index,
// decoding ClassDescriptor through the same decodeDescriptor pass
// CopyMethodSignature uses for parameter/return types. This is the single
// path for turning a raw method_idx into a MethodInfo — both class-method
// enumeration (classMethods, below) and CALL-site callee resolution
// (cfgbuild.resolveCallee) must go through it so that two MethodInfos
// naming the same method always produce the same Key(). ok is false when
// idx is out of range.
func (f *File) MethodInfoByIdx(methodIdx uint32) (MethodInfo, bool) {
	mi := MethodInfo{MethodIdx: methodIdx}
	item, ok := f.MethodIDItem(methodIdx)
	if !ok {
		return mi, false
	}
	mi.ClassIdx = uint32(item.ClassIdx)
	mi.ProtoIdx = uint32(item.ProtoIdx)
	mi.NameIdx = item.NameIdx
	if desc, ok := f.TypeDescriptorByTypeID(mi.ClassIdx); ok {
		mi.ClassDescriptor = decodeDescriptor(desc)
	}
	if name, ok := f.StringByID(mi.NameIdx); ok {
		mi.Name = name
	}
	if sig, ok := f.CopyMethodSignature(item); ok {
		mi.Signature = sig
	}
	return mi, true
}

// Class wraps a class_def_item with iteration over its methods.
type Class struct {
	Def  ClassDef
	file *File
}

// Classes returns every class defined in the DEX file, in file order.
func (f *File) Classes() []Class {
	out := make([]Class, len(f.classDefs))
	for i, c := range f.classDefs {
		out[i] = Class{Def: c, file: f}
	}
	return out
}

// Method is one method belonging to a class, with its code item offset.
type Method struct {
	Info    MethodInfo
	codeOff uint32
	file    *File
}

// CodeItem returns the method's parsed code item. ok is false for
// abstract/native methods (code_off == 0).
func (m Method) CodeItem() (*CodeItem, bool) {
	if m.codeOff == 0 {
		return nil, false
	}
	return m.file.parseCodeItem(m.codeOff)
}

// DirectMethods returns the class's direct (static/private/constructor)
// methods, decoded from its class_data_item.
func (c Class) DirectMethods() []Method {
	direct, _ := c.file.classMethods(c.Def)
	return direct
}

// VirtualMethods returns the class's virtual (overridable instance)
// methods, decoded from its class_data_item.
func (c Class) VirtualMethods() []Method {
	_, virtual := c.file.classMethods(c.Def)
	return virtual
}

// classMethods walks the class_data_item encoded at Def.ClassDataOff,
// skipping field entries (not needed for CFG reconstruction) to reach the
// direct and virtual method lists. Method indices are delta-encoded from
// the start of each list, per dex-format.html#encoded-method.
func (f *File) classMethods(c ClassDef) (direct, virtual []Method) {
	if c.ClassDataOff == 0 {
		return nil, nil
	}
	off := c.ClassDataOff
	var staticFieldsSize, instanceFieldsSize, directMethodsSize, virtualMethodsSize uint64
	staticFieldsSize, off = f.uleb128(off)
	instanceFieldsSize, off = f.uleb128(off)
	directMethodsSize, off = f.uleb128(off)
	virtualMethodsSize, off = f.uleb128(off)

	for i := uint64(0); i < staticFieldsSize+instanceFieldsSize; i++ {
		_, off = f.uleb128(off) // field_idx_diff
		_, off = f.uleb128(off) // access_flags
	}

	readMethodList := func(count uint64) []Method {
		var list []Method
		var methodIdx uint64
		for i := uint64(0); i < count; i++ {
			var diff, codeOffset uint64
			diff, off = f.uleb128(off)
			if i == 0 {
				methodIdx = diff
			} else {
				methodIdx += diff
			}
			_, off = f.uleb128(off) // access_flags
			codeOffset, off = f.uleb128(off)
			info, _ := f.MethodInfoByIdx(uint32(methodIdx))
			list = append(list, Method{
				Info:    info,
				codeOff: uint32(codeOffset),
				file:    f,
			})
		}
		return list
	}

	direct = readMethodList(directMethodsSize)
	virtual = readMethodList(virtualMethodsSize)
	return direct, virtual
}
