package utils

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func utf16Endianness(bigEndian bool) unicode.Endianness {
	if bigEndian {
		return unicode.BigEndian
	}
	return unicode.LittleEndian
}

// DecodeUTF16 decodes bs as UTF-16 without a BOM in the given endianness.
// Embedded NUL code units survive decoding, use TrimPadding on fixed-size
// string fields.
func DecodeUTF16(bs []byte, bigEndian bool) (string, error) {
	dec := unicode.UTF16(utf16Endianness(bigEndian), unicode.IgnoreBOM).NewDecoder()
	s, _, err := transform.Bytes(dec, bs)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to decode utf16")
	}
	return string(s), nil
}

// DecodeUTF16Z decodes the NUL-terminated UTF-16 string starting at off.
func DecodeUTF16Z(buf []byte, off int, bigEndian bool) (string, error) {
	if off < 0 || off >= len(buf) {
		return "", errors.Wrapf(ErrOutOfBounds, "string at 0x%x of 0x%x", off, len(buf))
	}
	for i := off; i+1 < len(buf); i += 2 {
		if buf[i] == 0 && buf[i+1] == 0 {
			return DecodeUTF16(buf[off:i], bigEndian)
		}
	}
	return "", errors.Wrapf(ErrOutOfBounds, "unterminated utf16 string at 0x%x", off)
}

func EncodeUTF16(s string, bigEndian bool) ([]byte, error) {
	enc := unicode.UTF16(utf16Endianness(bigEndian), unicode.IgnoreBOM).NewEncoder()
	bs, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to encode utf16")
	}
	return bs, nil
}

// TrimPadding strips NUL padding and surrounding whitespace from a
// fixed-size string field.
func TrimPadding(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}

// ReverseBits mirrors the bits of b: bit 0 of the input becomes bit 7 of
// the output.
func ReverseBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = r<<1 | (b>>i)&1
	}
	return r
}
