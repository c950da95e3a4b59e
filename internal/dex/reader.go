package dex

import (
	"fmt"
	"os"
)

// File is a fully-loaded DEX image plus its decoded constant-pool tables.
//
// The mapped DEX image is modeled here as a plain byte slice read in full
// via os.ReadFile (read the whole file, then index into an in-memory
// buffer) rather than an actual mmap syscall — simpler, and sufficient
// since DEX files are small relative to address space.
type File struct {
	image []byte
	header Header

	strings   []string // string_id -> decoded string (string table, §constant-pool)
	typeIDs   []uint32 // type_id -> string_id of its descriptor
	protoIDs  []ProtoIDItem
	fieldIDs  []FieldIDItem
	methodIDs []MethodIDItem
	classDefs []ClassDef
}

// ProtoIDItem mirrors proto_id_item.
type ProtoIDItem struct {
	ShortyIdx        uint32
	ReturnTypeIdx    uint32
	ParametersOffset uint32
}

// FieldIDItem mirrors field_id_item.
type FieldIDItem struct {
	ClassIdx uint16
	TypeIdx  uint16
	NameIdx  uint32
}

// MethodIDItem mirrors method_id_item.
type MethodIDItem struct {
	ClassIdx uint16
	ProtoIdx uint16
	NameIdx  uint32
}

// ClassDef mirrors class_def_item.
type ClassDef struct {
	ClassIdx        uint32
	AccessFlags     uint32
	SuperclassIdx   uint32
	InterfacesOff   uint32
	SourceFileIdx   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

// Open reads path fully into memory and validates its header.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dex: open %s: %w", path, err)
	}
	return NewFile(data)
}

// NewFile validates and indexes an already-loaded DEX image.
func NewFile(image []byte) (*File, error) {
	h, err := unpackHeader(image)
	if err != nil {
		return nil, err
	}
	f := &File{image: image, header: h}
	f.strings = f.readStrings()
	f.typeIDs = f.readTypeIDs()
	f.protoIDs = f.readProtoIDs()
	f.fieldIDs = f.readFieldIDs()
	f.methodIDs = f.readMethodIDs()
	f.classDefs = f.readClassDefs()
	return f, nil
}

// BaseAddr is the absolute offset of the mapped image's first byte. It is
// always 0 for this in-memory reader; it exists so that Node.base_addr can
// be computed the same way a true mmap-backed reader would compute it.
func (f *File) BaseAddr() uint32 { return 0 }

func (f *File) MethodIdsSize() uint32 { return f.header.MethodIdsSize }
func (f *File) FieldIdsSize() uint32  { return f.header.FieldIdsSize }
func (f *File) ClassDefsSize() uint32 { return f.header.ClassDefsSize }
func (f *File) Checksum() uint32      { return f.header.Checksum }

// ClassDefs returns every class_def_item in file order.
func (f *File) ClassDefs() []ClassDef { return f.classDefs }

func (f *File) readClassDefs() []ClassDef {
	n := int(f.header.ClassDefsSize)
	out := make([]ClassDef, 0, n)
	off := f.header.ClassDefsOff
	for i := 0; i < n; i++ {
		var c ClassDef
		c.ClassIdx = f.u32(off)
		c.AccessFlags = f.u32(off + 4)
		c.SuperclassIdx = f.u32(off + 8)
		c.InterfacesOff = f.u32(off + 12)
		c.SourceFileIdx = f.u32(off + 16)
		c.AnnotationsOff = f.u32(off + 20)
		c.ClassDataOff = f.u32(off + 24)
		c.StaticValuesOff = f.u32(off + 28)
		out = append(out, c)
		off += 32
	}
	return out
}
