package codec

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the size of the fixed file header in bytes.
	HeaderSize = 20
	// DefaultMagic is the tag of the classic DBC variant.
	DefaultMagic = "WDBC"
)

// Header is the fixed DBC file header.
type Header struct {
	Magic           string
	RecordCount     int
	FieldCount      int
	RecordSize      int
	StringTableSize int
}

// ReadHeader parses the header at the start of buf. It only checks that the
// header is present and its counts are non-negative; the magic tag is checked
// by Validate.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, &FormatError{Msg: fmt.Sprintf("file is %d bytes, header needs %d", len(buf), HeaderSize)}
	}

	h := Header{
		Magic:           string(buf[0:4]),
		RecordCount:     int(int32(binary.LittleEndian.Uint32(buf[4:8]))),
		FieldCount:      int(binary.LittleEndian.Uint32(buf[8:12])),
		RecordSize:      int(int32(binary.LittleEndian.Uint32(buf[12:16]))),
		StringTableSize: int(int32(binary.LittleEndian.Uint32(buf[16:20]))),
	}

	switch {
	case h.RecordCount < 0:
		return Header{}, &FormatError{Msg: fmt.Sprintf("negative record count %d", h.RecordCount)}
	case h.RecordSize < 0:
		return Header{}, &FormatError{Msg: fmt.Sprintf("negative record size %d", h.RecordSize)}
	case h.StringTableSize < 0:
		return Header{}, &FormatError{Msg: fmt.Sprintf("negative string table size %d", h.StringTableSize)}
	}
	return h, nil
}

// Validate checks the magic tag.
func (h Header) Validate(magic string) error {
	if magic == "" {
		magic = DefaultMagic
	}
	if h.Magic != magic {
		return &FormatError{Want: magic, Got: h.Magic}
	}
	return nil
}

// StringTableOffset returns the absolute offset of the string table.
func (h Header) StringTableOffset() int {
	return HeaderSize + h.RecordCount*h.RecordSize
}
