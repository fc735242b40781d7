// Package bnd parses BND4 archive containers: a fixed header, a table of
// entry headers whose field widths depend on the container's format flags,
// and per-entry raw payloads located by absolute offsets.
//
// Only the field combinations observed in save containers are supported.
// Entries are never decompressed: observed files store payloads as-is even
// when the uncompressed-size field is present.
package bnd

import (
	"github.com/pkg/errors"

	"github.com/maidenless/sl2edit/utils"
)

var (
	ErrBadMagic           = errors.New("not a BND4 container")
	ErrUnknownTableFormat = errors.New("unknown entry table format")
)

// NonUnicodeNamePlaceholder marks entry names this parser refuses to
// guess a byte encoding for. No supported file exercises that path.
const NonUnicodeNamePlaceholder = "<unsupported non-unicode name>"

// Container is the parsed top-level archive. It is a read-only view:
// mutation operations copy the backing buffer and re-parse.
type Container struct {
	Header  Header
	Entries []Entry

	buf []byte
}

// Buf returns the buffer the container was parsed from.
func (c *Container) Buf() []byte {
	return c.buf
}

// Parse reads a whole container file buffer. It fails without producing a
// partial Container.
func Parse(buf []byte) (*Container, error) {
	cur := utils.NewCursor(buf)

	magic, err := cur.ReadFixedString(4)
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, errors.Wrapf(ErrBadMagic, "magic %q", magic)
	}

	h, err := parseHeader(cur)
	if err != nil {
		return nil, err
	}

	c := &Container{Header: *h, buf: buf}
	c.Entries = make([]Entry, h.EntryCount)
	for i := range c.Entries {
		eh, err := parseEntryHeader(cur, h, buf)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		c.Entries[i].EntryHeader = *eh
	}

	// Slice payloads only after the whole table is read: the table and the
	// data regions do not interleave.
	for i := range c.Entries {
		e := &c.Entries[i]
		data, err := sliceData(cur, e.DataOffset, e.CompressedSize)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d data", i)
		}
		e.Data = data
	}

	return c, nil
}

func parseHeader(cur *utils.Cursor) (*Header, error) {
	var h Header
	var err error

	if h.Unk04, err = cur.ReadBool(); err != nil {
		return nil, err
	}
	if h.Unk05, err = cur.ReadBool(); err != nil {
		return nil, err
	}
	if err = cur.Skip(3); err != nil {
		return nil, err
	}
	if h.BigEndian, err = cur.ReadBool(); err != nil {
		return nil, err
	}
	bitLittleEndian, err := cur.ReadBool()
	if err != nil {
		return nil, err
	}
	h.BitBigEndian = !bitLittleEndian
	if err = cur.Skip(1); err != nil {
		return nil, err
	}

	if h.EntryCount, err = cur.ReadI32(); err != nil {
		return nil, err
	}
	if h.EntryCount < 0 {
		return nil, errors.Wrapf(ErrUnknownTableFormat, "entry count %d", h.EntryCount)
	}
	declaredSize, err := cur.ReadI64()
	if err != nil {
		return nil, err
	}
	if declaredSize != headerSize {
		return nil, errors.Wrapf(ErrUnknownTableFormat, "header size 0x%x", declaredSize)
	}
	if h.Version, err = cur.ReadFixedString(8); err != nil {
		return nil, err
	}
	if h.EntrySize, err = cur.ReadI64(); err != nil {
		return nil, err
	}
	if h.DataStart, err = cur.ReadI64(); err != nil {
		return nil, err
	}
	if h.Unicode, err = cur.ReadBool(); err != nil {
		return nil, err
	}
	if h.RawFormat, err = cur.ReadU8(); err != nil {
		return nil, err
	}
	if h.Extended, err = cur.ReadU8(); err != nil {
		return nil, err
	}
	if err = cur.Seek(headerSize); err != nil {
		return nil, err
	}

	h.Format = resolveFormat(h.RawFormat, h.BitBigEndian)
	return &h, nil
}

func parseEntryHeader(cur *utils.Cursor, h *Header, buf []byte) (*EntryHeader, error) {
	var e EntryHeader
	var err error

	if e.Flags, err = cur.ReadU8(); err != nil {
		return nil, err
	}
	if err = cur.Skip(3); err != nil {
		return nil, err
	}
	sentinel, err := cur.ReadI32()
	if err != nil {
		return nil, err
	}
	if sentinel != -1 {
		return nil, errors.Wrapf(ErrUnknownTableFormat, "sentinel 0x%x", sentinel)
	}

	if e.CompressedSize, err = cur.ReadI64(); err != nil {
		return nil, err
	}
	if h.HasCompression() {
		size, err := cur.ReadI64()
		if err != nil {
			return nil, err
		}
		e.UncompressedSize = &size
	}

	if h.HasLongOffsets() {
		if e.DataOffset, err = cur.ReadI64(); err != nil {
			return nil, err
		}
	} else {
		off, err := cur.ReadI32()
		if err != nil {
			return nil, err
		}
		e.DataOffset = int64(off)
	}

	if h.HasIDs() {
		id, err := cur.ReadI32()
		if err != nil {
			return nil, err
		}
		e.ID = &id
	}

	if h.HasNames() {
		nameOffset, err := cur.ReadI32()
		if err != nil {
			return nil, err
		}
		name, err := resolveName(buf, int(nameOffset), h)
		if err != nil {
			return nil, err
		}
		e.Name = &name
	}

	// A resolved format of exactly 0x04 is its own shape: a numeric id and
	// a discarded field trail the general-purpose fields.
	if h.Format == FormatNames1 {
		id, err := cur.ReadI32()
		if err != nil {
			return nil, err
		}
		if e.ID == nil {
			e.ID = &id
		}
		if _, err := cur.ReadI32(); err != nil {
			return nil, err
		}
	}

	return &e, nil
}

func resolveName(buf []byte, nameOffset int, h *Header) (string, error) {
	if !h.Unicode {
		return NonUnicodeNamePlaceholder, nil
	}
	return utils.DecodeUTF16Z(buf, nameOffset, h.BigEndian)
}

func sliceData(cur *utils.Cursor, offset, size int64) ([]byte, error) {
	if offset < 0 || size < 0 {
		return nil, errors.Wrapf(utils.ErrOutOfBounds, "data at 0x%x size 0x%x", offset, size)
	}
	if err := cur.Seek(int(offset)); err != nil {
		return nil, err
	}
	return cur.ReadBytes(int(size))
}
