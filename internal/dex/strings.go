package dex

import "encoding/binary"

// u32 reads a little-endian uint32 at the given absolute image offset.
func (f *File) u32(off uint32) uint32 {
	if uint64(off)+4 > uint64(len(f.image)) {
		return 0
	}
	return binary.LittleEndian.Uint32(f.image[off : off+4])
}

// u16 reads a little-endian uint16 at the given absolute image offset.
func (f *File) u16(off uint32) uint16 {
	if uint64(off)+2 > uint64(len(f.image)) {
		return 0
	}
	return binary.LittleEndian.Uint16(f.image[off : off+2])
}

// uleb128 decodes an unsigned LEB128 value starting at off, returning the
// decoded value and the offset of the byte following it.
func (f *File) uleb128(off uint32) (uint64, uint32) {
	var result uint64
	var shift uint
	for {
		if int(off) >= len(f.image) {
			return result, off
		}
		b := f.image[off]
		off++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, off
}

// readStrings decodes the string_ids table: a sorted array of offsets into
// the data section, each pointing at a ULEB128 length followed by that many
// MUTF-8 bytes (DEX "modified" UTF-8, see dex-format.html#mutf-8).
func (f *File) readStrings() []string {
	n := int(f.header.StringIdsSize)
	out := make([]string, n)
	base := f.header.StringIdsOff
	for i := 0; i < n; i++ {
		strOff := f.u32(base + uint32(i*4))
		out[i] = f.readMUTF8(strOff)
	}
	return out
}

// readMUTF8 reads the ULEB128 char-count-prefixed string at off and decodes
// it as MUTF-8. Dalvik byte-for-byte MUTF-8 overlaps with standard UTF-8 for
// the code points DEX method/class names and signatures actually use, so a
// byte-length read (rather than a full MUTF-8 decoder) is sufficient here;
// embedded NUL/supplementary-plane surrogate pairs are not expected in
// identifiers and are passed through unchanged.
func (f *File) readMUTF8(off uint32) string {
	charCount, dataOff := f.uleb128(off)
	_ = charCount // MUTF-8 char count, not byte count; we scan for the terminator instead
	start := dataOff
	end := dataOff
	for int(end) < len(f.image) && f.image[end] != 0 {
		end++
	}
	return string(f.image[start:end])
}

// StringByID returns the decoded string for a string_id index.
func (f *File) StringByID(idx uint32) (string, bool) {
	if idx >= uint32(len(f.strings)) {
		return "", false
	}
	return f.strings[idx], true
}

// readTypeIDs decodes the type_ids table: each entry is a uint32 string_id
// naming the type's descriptor.
func (f *File) readTypeIDs() []uint32 {
	n := int(f.header.TypeIdsSize)
	out := make([]uint32, n)
	base := f.header.TypeIdsOff
	for i := 0; i < n; i++ {
		out[i] = f.u32(base + uint32(i*4))
	}
	return out
}

// TypeDescriptorByTypeID resolves a type_id index to its raw descriptor
// string (e.g. "Landroid/app/Activity;" or "I").
func (f *File) TypeDescriptorByTypeID(idx uint32) (string, bool) {
	if idx >= uint32(len(f.typeIDs)) {
		return "", false
	}
	return f.StringByID(f.typeIDs[idx])
}

// decodeDescriptor converts a raw DEX type descriptor to a readable type
// name, following the rules in dex-format.html#typedescriptor.
func decodeDescriptor(d string) string {
	dims := 0
	pos := 0
	var c byte
	for pos = 0; pos < len(d); pos++ {
		c = d[pos]
		if c != '[' {
			break
		}
		dims++
	}

	var base string
	switch c {
	case 'L':
		base = d[pos+1:]
		if len(base) > 0 && base[len(base)-1] == ';' {
			base = base[:len(base)-1]
		}
		base = replaceAll(base, '/', '.')
	case 'B':
		base = "byte"
	case 'C':
		base = "char"
	case 'D':
		base = "double"
	case 'F':
		base = "float"
	case 'I':
		base = "int"
	case 'J':
		base = "long"
	case 'S':
		base = "short"
	case 'Z':
		base = "boolean"
	case 'V':
		base = "void"
	default:
		return d
	}
	for i := 0; i < dims; i++ {
		base += "[]"
	}
	return base
}

func replaceAll(s string, from, to byte) string {
	b := []byte(s)
	for i := range b {
		if b[i] == from {
			b[i] = to
		}
	}
	return string(b)
}
