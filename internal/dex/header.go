// Package dex provides read-only access to a Dalvik Executable (DEX) file:
// its header, constant-pool tables, class/method iteration, and code items.
//
// It is the external collaborator the CFG reconstruction pipeline builds
// on: well-typed accessors over the DEX container, with no opinion on
// control flow.
//
// Layout decoding follows the Android DEX format:
// https://source.android.com/devices/tech/dalvik/dex-format.html
package dex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const headerSize = 112

var (
	fileMagic = [8]byte{0x64, 0x65, 0x78, 0x0a, 0x30, 0x33, 0x35, 0x00} // "dex\n035\0"

	// ErrNotDEX is returned when the magic bytes do not match a DEX file.
	ErrNotDEX = errors.New("dex: not a DEX file")
	// ErrTruncated is returned when the file is too short to hold its header.
	ErrTruncated = errors.New("dex: file truncated")
	// ErrChecksum is returned by VerifyChecksum on a mismatch.
	ErrChecksum = errors.New("dex: checksum mismatch")
)

// Header mirrors the DEX header_item exactly (little-endian, fixed layout).
// Upper-case fields allow population via binary.Read into the struct.
type Header struct {
	Magic         [8]byte
	Checksum      uint32
	Sha1Sig       [20]byte
	FileSize      uint32
	HeaderSize    uint32
	EndianTag     uint32
	LinkSize      uint32
	LinkOff       uint32
	MapOff        uint32
	StringIdsSize uint32
	StringIdsOff  uint32
	TypeIdsSize   uint32
	TypeIdsOff    uint32
	ProtoIdsSize  uint32
	ProtoIdsOff   uint32
	FieldIdsSize  uint32
	FieldIdsOff   uint32
	MethodIdsSize uint32
	MethodIdsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
	DataSize      uint32
	DataOff       uint32
}

const endianConstant = 0x12345678

func unpackHeader(image []byte) (Header, error) {
	var h Header
	if len(image) < headerSize {
		return h, ErrTruncated
	}
	if !bytes.Equal(image[:8], fileMagic[:]) {
		return h, ErrNotDEX
	}
	if err := binary.Read(bytes.NewReader(image[:headerSize]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("dex: decode header: %w", err)
	}
	if h.EndianTag != endianConstant {
		return h, fmt.Errorf("dex: unsupported endian tag 0x%x", h.EndianTag)
	}
	return h, nil
}

// VerifyChecksum recomputes the adler32 checksum over the file contents
// following the checksum field (offset 12 through end of file) and compares
// it against the header's recorded checksum. Callers decide whether a
// mismatch is fatal (see the -i flag in the CLI).
func (f *File) VerifyChecksum() error {
	sum := adler32(f.image[12:])
	if sum != f.header.Checksum {
		return fmt.Errorf("%w: have 0x%08x want 0x%08x", ErrChecksum, sum, f.header.Checksum)
	}
	return nil
}

// adler32 matches the algorithm the DEX format specifies for its header
// checksum (RFC 1950), implemented locally to avoid taking a dependency on
// compress/... for a single 4-line rolling sum.
func adler32(data []byte) uint32 {
	const modAdler = 65521
	var a, b uint32 = 1, 0
	for _, c := range data {
		a = (a + uint32(c)) % modAdler
		b = (b + a) % modAdler
	}
	return (b << 16) | a
}
