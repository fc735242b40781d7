package bnd

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maidenless/sl2edit/utils"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		raw          byte
		bitBigEndian bool
		want         byte
	}{
		// Bit-big-endian containers store flags as-is.
		{0x74, true, 0x74},
		{0x04, true, 0x04},
		// 0x01 set without 0x80 skips reversal too.
		{0x21, false, 0x21},
		// Everything else is stored bit-reversed.
		{0x2E, false, 0x74},
		{0x85, false, 0xA1},
		{0x00, false, 0x00},
	}
	for _, test := range tests {
		assert.Equalf(t, test.want, resolveFormat(test.raw, test.bitBigEndian),
			"resolveFormat(%#.2x, %v)", test.raw, test.bitBigEndian)
	}
}

type testEntry struct {
	flags byte
	name  string
	id    int32
	data  []byte
}

type testContainer struct {
	rawFormat    byte
	bitBigEndian bool
	unicode      bool
	entries      []testEntry
}

// build lays out a container the way the parser expects to find it:
// header, entry table, name table, then the data regions.
func (tc *testContainer) build(t *testing.T) []byte {
	t.Helper()

	format := resolveFormat(tc.rawFormat, tc.bitBigEndian)

	entrySize := 1 + 3 + 4 + 8
	if format&FormatCompression != 0 {
		entrySize += 8
	}
	if format&FormatLongOffsets != 0 {
		entrySize += 8
	} else {
		entrySize += 4
	}
	if format&FormatIDs != 0 {
		entrySize += 4
	}
	if format&(FormatNames1|FormatNames2) != 0 {
		entrySize += 4
	}
	if format == FormatNames1 {
		entrySize += 8
	}

	namesOffset := headerSize + entrySize*len(tc.entries)
	names := &bytes.Buffer{}
	nameOffsets := make([]int, len(tc.entries))
	for i, e := range tc.entries {
		nameOffsets[i] = namesOffset + names.Len()
		if tc.unicode {
			encoded, err := utils.EncodeUTF16(e.name, false)
			require.NoError(t, err)
			names.Write(encoded)
			names.Write([]byte{0, 0})
		} else {
			names.WriteString(e.name)
			names.WriteByte(0)
		}
	}

	dataOffset := namesOffset + names.Len()
	dataOffsets := make([]int, len(tc.entries))
	data := &bytes.Buffer{}
	for i, e := range tc.entries {
		dataOffsets[i] = dataOffset + data.Len()
		data.Write(e.data)
	}

	out := &bytes.Buffer{}
	out.WriteString(Magic)
	out.Write([]byte{0, 0, 0, 0, 0, 0}) // unk04, unk05, padding, big-endian
	if tc.bitBigEndian {
		out.WriteByte(0)
	} else {
		out.WriteByte(1)
	}
	out.WriteByte(0)
	binary.Write(out, binary.LittleEndian, int32(len(tc.entries)))
	binary.Write(out, binary.LittleEndian, int64(headerSize))
	out.WriteString("00000001")
	binary.Write(out, binary.LittleEndian, int64(entrySize))
	binary.Write(out, binary.LittleEndian, int64(dataOffset))
	if tc.unicode {
		out.WriteByte(1)
	} else {
		out.WriteByte(0)
	}
	out.WriteByte(tc.rawFormat)
	out.WriteByte(0)
	out.Write(make([]byte, headerSize-out.Len()))

	for i, e := range tc.entries {
		out.WriteByte(e.flags)
		out.Write([]byte{0, 0, 0})
		binary.Write(out, binary.LittleEndian, int32(-1))
		binary.Write(out, binary.LittleEndian, int64(len(e.data)))
		if format&FormatCompression != 0 {
			binary.Write(out, binary.LittleEndian, int64(len(e.data)))
		}
		if format&FormatLongOffsets != 0 {
			binary.Write(out, binary.LittleEndian, int64(dataOffsets[i]))
		} else {
			binary.Write(out, binary.LittleEndian, int32(dataOffsets[i]))
		}
		if format&FormatIDs != 0 {
			binary.Write(out, binary.LittleEndian, e.id)
		}
		if format&(FormatNames1|FormatNames2) != 0 {
			binary.Write(out, binary.LittleEndian, int32(nameOffsets[i]))
		}
		if format == FormatNames1 {
			binary.Write(out, binary.LittleEndian, e.id)
			binary.Write(out, binary.LittleEndian, int32(0))
		}
	}

	out.Write(names.Bytes())
	out.Write(data.Bytes())
	return out.Bytes()
}

func TestParseBadMagic(t *testing.T) {
	_, err := Parse([]byte("DCX\x00rest-of-the-file"))
	assert.True(t, errors.Is(err, ErrBadMagic), "err=%v", err)

	_, err = Parse([]byte("BN"))
	assert.True(t, errors.Is(err, utils.ErrOutOfBounds), "err=%v", err)
}

func TestParseLongOffsetsWithNames(t *testing.T) {
	tc := &testContainer{
		rawFormat: 0x2E, // reverses to 0x74
		unicode:   true,
		entries: []testEntry{
			{flags: 0x40, name: "USER_DATA00", data: []byte("slot zero payload")},
			{flags: 0x40, name: "USER_DATA01", data: []byte("slot one")},
		},
	}
	c, err := Parse(tc.build(t))
	require.NoError(t, err)

	assert.Equal(t, byte(0x74), c.Header.Format)
	assert.True(t, c.Header.HasCompression())
	assert.True(t, c.Header.HasLongOffsets())
	assert.True(t, c.Header.HasNames())
	assert.False(t, c.Header.HasIDs())
	assert.Equal(t, "00000001", c.Header.Version)

	require.Len(t, c.Entries, 2)
	e := &c.Entries[0]
	require.NotNil(t, e.Name)
	assert.Equal(t, "USER_DATA00", *e.Name)
	require.NotNil(t, e.UncompressedSize)
	assert.Equal(t, int64(len("slot zero payload")), *e.UncompressedSize)
	assert.Nil(t, e.ID)
	assert.Equal(t, []byte("slot zero payload"), e.Data)
	assert.Equal(t, []byte("slot one"), c.Entries[1].Data)
}

func TestParseShortOffsetsWithIDs(t *testing.T) {
	tc := &testContainer{
		rawFormat:    0x02, // ids, 32-bit offsets, no names
		bitBigEndian: true,
		unicode:      true,
		entries: []testEntry{
			{flags: 0x40, id: 7001, data: []byte("payload")},
		},
	}
	c, err := Parse(tc.build(t))
	require.NoError(t, err)

	e := &c.Entries[0]
	assert.Nil(t, e.Name)
	assert.Nil(t, e.UncompressedSize)
	require.NotNil(t, e.ID)
	assert.Equal(t, int32(7001), *e.ID)
	assert.Equal(t, []byte("payload"), e.Data)
}

func TestParseNames1SpecialShape(t *testing.T) {
	// A resolved format of exactly 0x04 carries a trailing id and a
	// discarded field after the general-purpose fields.
	tc := &testContainer{
		rawFormat:    0x04,
		bitBigEndian: true,
		unicode:      true,
		entries: []testEntry{
			{flags: 0x40, name: "USER_DATA03", id: 3, data: []byte("x")},
		},
	}
	c, err := Parse(tc.build(t))
	require.NoError(t, err)

	e := &c.Entries[0]
	require.NotNil(t, e.Name)
	assert.Equal(t, "USER_DATA03", *e.Name)
	require.NotNil(t, e.ID)
	assert.Equal(t, int32(3), *e.ID)
	assert.Equal(t, []byte("x"), e.Data)
}

func TestParseNonUnicodeNamePlaceholder(t *testing.T) {
	tc := &testContainer{
		rawFormat:    0x04,
		bitBigEndian: true,
		unicode:      false,
		entries: []testEntry{
			{flags: 0x40, name: "USER_DATA00", data: []byte("x")},
		},
	}
	c, err := Parse(tc.build(t))
	require.NoError(t, err)

	require.NotNil(t, c.Entries[0].Name)
	assert.Equal(t, NonUnicodeNamePlaceholder, *c.Entries[0].Name)
}

func TestParseSentinelMismatch(t *testing.T) {
	tc := &testContainer{
		rawFormat: 0x2E,
		unicode:   true,
		entries:   []testEntry{{flags: 0x40, name: "USER_DATA00", data: []byte("x")}},
	}
	buf := tc.build(t)
	binary.LittleEndian.PutUint32(buf[headerSize+4:], 0) // clobber the -1 sentinel

	_, err := Parse(buf)
	assert.True(t, errors.Is(err, ErrUnknownTableFormat), "err=%v", err)
}

func TestParseDeclaredHeaderSizeMismatch(t *testing.T) {
	tc := &testContainer{
		rawFormat: 0x2E,
		unicode:   true,
		entries:   []testEntry{{flags: 0x40, name: "USER_DATA00", data: []byte("x")}},
	}
	buf := tc.build(t)
	binary.LittleEndian.PutUint64(buf[0x10:], 0xFFFFFFFFFFFFFFFF)

	_, err := Parse(buf)
	assert.True(t, errors.Is(err, ErrUnknownTableFormat), "err=%v", err)
}

func TestParseTruncatedData(t *testing.T) {
	tc := &testContainer{
		rawFormat: 0x2E,
		unicode:   true,
		entries:   []testEntry{{flags: 0x40, name: "USER_DATA00", data: []byte("payload")}},
	}
	buf := tc.build(t)
	_, err := Parse(buf[:len(buf)-3])
	assert.True(t, errors.Is(err, utils.ErrOutOfBounds), "err=%v", err)
}

func TestParseLeavesNoPartialContainer(t *testing.T) {
	tc := &testContainer{
		rawFormat: 0x2E,
		unicode:   true,
		entries: []testEntry{
			{flags: 0x40, name: "USER_DATA00", data: []byte("first")},
			{flags: 0x40, name: "USER_DATA01", data: []byte("second")},
		},
	}
	buf := tc.build(t)
	c, err := Parse(buf[:len(buf)-1]) // second entry's data cut short
	assert.Nil(t, c)
	assert.Error(t, err)
}
