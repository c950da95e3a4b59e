package dex

// NewTestFileWithMethod builds a minimal in-memory File whose method_id at
// index methodIdx names the given method (lower indices hold zero-valued
// entries), for exercising method-resolution code paths without a real DEX
// image on disk. Proto's parameter list is empty; returnDescriptor is the
// method's return-type descriptor only (e.g. "V", "I").
func NewTestFileWithMethod(methodIdx uint32, classDescriptor, name, returnDescriptor string) *File {
	f := &File{
		strings:   []string{classDescriptor, name, returnDescriptor},
		typeIDs:   []uint32{0, 2}, // type_id 0 -> classDescriptor, type_id 1 -> returnDescriptor
		protoIDs:  []ProtoIDItem{{ReturnTypeIdx: 1}},
		methodIDs: make([]MethodIDItem, methodIdx+1),
	}
	f.methodIDs[methodIdx] = MethodIDItem{ClassIdx: 0, ProtoIdx: 0, NameIdx: 1}
	return f
}
