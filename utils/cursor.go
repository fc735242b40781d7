package utils

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrOutOfBounds is returned when a read, skip or seek would pass the end
// of the underlying buffer.
var ErrOutOfBounds = errors.New("read out of buffer bounds")

// Cursor is a sequential reader over an immutable byte buffer with a
// mutable position. It never grows, copies or mutates the buffer.
// Multi-byte reads are little-endian.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

func (c *Cursor) Pos() int { return c.pos }

func (c *Cursor) Len() int { return len(c.buf) }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, errors.Wrapf(ErrOutOfBounds, "take 0x%x at 0x%x of 0x%x", n, c.pos, len(c.buf))
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadBytes returns a view of the next n bytes, not a copy.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(n)
}

func (c *Cursor) ReadU8() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadBool() (bool, error) {
	b, err := c.ReadU8()
	return b != 0, err
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadI32() (int32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (c *Cursor) ReadI64() (int64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ReadFixedString reads n raw bytes as an ASCII string, padding included.
func (c *Cursor) ReadFixedString(n int) (string, error) {
	b, err := c.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return errors.Wrapf(ErrOutOfBounds, "seek 0x%x of 0x%x", pos, len(c.buf))
	}
	c.pos = pos
	return nil
}
