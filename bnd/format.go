package bnd

import (
	"github.com/maidenless/sl2edit/utils"
)

const Magic = "BND4"

// Declared sizes asserted during parsing.
const (
	headerSize = 0x40
)

// Format flag bits, valid after normalization by resolveFormat. They decide
// which optional fields every entry header carries.
const (
	FormatIDs         = 0x02
	FormatNames1      = 0x04
	FormatNames2      = 0x08
	FormatLongOffsets = 0x10
	FormatCompression = 0x20
)

// Header is the fixed 0x40-byte container header.
type Header struct {
	Unk04        bool
	Unk05        bool
	BigEndian    bool
	BitBigEndian bool
	EntryCount   int32
	Version      string
	EntrySize    int64
	DataStart    int64
	Unicode      bool
	RawFormat    byte
	Format       byte
	Extended     byte
}

func (h *Header) HasIDs() bool         { return h.Format&FormatIDs != 0 }
func (h *Header) HasNames() bool       { return h.Format&(FormatNames1|FormatNames2) != 0 }
func (h *Header) HasLongOffsets() bool { return h.Format&FormatLongOffsets != 0 }
func (h *Header) HasCompression() bool { return h.Format&FormatCompression != 0 }

// resolveFormat normalizes the raw format byte. Reversal is skipped for
// bit-big-endian containers and for the 0x01-without-0x80 legacy pattern,
// every other combination stores the flags bit-reversed.
func resolveFormat(raw byte, bitBigEndian bool) byte {
	if bitBigEndian || (raw&0x01) != 0 && (raw&0x80) == 0 {
		return raw
	}
	return utils.ReverseBits(raw)
}

// EntryHeader describes one entry of the container's table. Optional
// fields are present only per the header's format flags.
type EntryHeader struct {
	Flags            byte
	CompressedSize   int64
	UncompressedSize *int64
	DataOffset       int64
	ID               *int32
	Name             *string
}

// Entry pairs an EntryHeader with a view of its raw bytes inside the
// source buffer. The slice is never copied until a mutation needs it.
type Entry struct {
	EntryHeader
	Data []byte
}
