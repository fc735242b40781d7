// Package savetest builds synthetic, checksum-consistent save containers
// for tests. The layout mirrors observed files: twelve entries, ten slot
// windows, the save-headers section and the general-data region at their
// fixed offsets, with the entry name table parked past the data regions.
package savetest

import (
	"encoding/binary"
	"fmt"

	"github.com/maidenless/sl2edit/save"
	"github.com/maidenless/sl2edit/utils"
)

const (
	// FileSize leaves room for the name table behind the data regions.
	FileSize    = 0x1BA0800
	namesOffset = 0x1BA0400

	entryCount      = 12
	entryHeaderSize = 0x24

	// Stats block geometry used when planting characters.
	attrStride     = 4
	levelProbe     = 44
	levelBias      = 79
	hpFirstOffset  = -44
	fpFirstOffset  = -32
	stmFirstOffset = -16

	// DefaultStatsOrigin is where WriteCharacter plants the stats block
	// inside the slot's save data.
	DefaultStatsOrigin = 256
)

// NewContainer returns a parseable, fully digested container with ten
// empty slots.
func NewContainer() []byte {
	buf := make([]byte, FileSize)

	copy(buf[0:], "BND4")
	buf[0x0A] = 1 // bit-little-endian: format byte is stored reversed
	binary.LittleEndian.PutUint32(buf[0x0C:], entryCount)
	binary.LittleEndian.PutUint64(buf[0x10:], 0x40)
	copy(buf[0x18:], "00000001")
	binary.LittleEndian.PutUint64(buf[0x20:], entryHeaderSize)
	binary.LittleEndian.PutUint64(buf[0x28:], save.SlotChecksumBase)
	buf[0x30] = 1    // unicode names
	buf[0x31] = 0x2E // reverses to 0x74: compression, long offsets, names
	buf[0x32] = 4

	pos := 0x40
	for i := 0; i < entryCount; i++ {
		var offset, size int
		switch {
		case i < save.SlotCount:
			offset = save.SlotChecksumBase + i*save.SlotStride
			size = save.SlotStride
		case i == save.SlotCount:
			offset = save.HeadersSectionChecksumOffset
			size = save.HeadersSectionLength + save.ChecksumLength
		default:
			offset = save.GeneralDataChecksumOffset
			size = save.GeneralDataLength + save.ChecksumLength
		}

		buf[pos] = 0x40
		binary.LittleEndian.PutUint32(buf[pos+4:], 0xFFFFFFFF)
		binary.LittleEndian.PutUint64(buf[pos+8:], uint64(size))
		binary.LittleEndian.PutUint64(buf[pos+16:], uint64(size))
		binary.LittleEndian.PutUint64(buf[pos+24:], uint64(offset))

		nameOffset := namesOffset + i*32
		binary.LittleEndian.PutUint32(buf[pos+32:], uint32(nameOffset))
		name, err := utils.EncodeUTF16(fmt.Sprintf("%s%02d", save.EntryNamePrefix, i), false)
		if err != nil {
			panic(err)
		}
		copy(buf[nameOffset:], name)

		pos += entryHeaderSize
	}

	if err := save.RecalculateChecksums(buf); err != nil {
		panic(err)
	}
	return buf
}

// WriteCharacter plants a character into slot index: summary record,
// active flag and a locatable stats block with table-derived resource
// pools. sum(attrs) must equal level+79 for the locator to accept the
// block. Call save.RecalculateChecksums afterwards.
func WriteCharacter(buf []byte, index int, name string, level, seconds int32, attrs save.Attributes) {
	so := save.SummaryTableOffset + index*save.SummaryRecordLength
	encoded, err := utils.EncodeUTF16(name, false)
	if err != nil {
		panic(err)
	}
	if len(encoded) > save.SummaryNameLength {
		panic(fmt.Sprintf("name %q too long", name))
	}
	copy(buf[so:so+save.SummaryNameLength], encoded)
	binary.LittleEndian.PutUint32(buf[so+0x22:], uint32(level))
	binary.LittleEndian.PutUint32(buf[so+0x26:], uint32(seconds))
	buf[save.ActiveFlagsOffset+index] = 1

	origin := save.SlotChecksumBase + index*save.SlotStride + save.ChecksumLength + DefaultStatsOrigin
	for a := 0; a < save.AttrCount; a++ {
		buf[origin+a*attrStride] = attrs[a]
	}
	binary.LittleEndian.PutUint16(buf[origin+levelProbe:], uint16(level))

	hp := save.HPForVigor(attrs[save.AttrVigor])
	fp := save.FPForMind(attrs[save.AttrMind])
	stamina := save.StaminaForEndurance(attrs[save.AttrEndurance])
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint16(buf[origin+hpFirstOffset+i*4:], hp)
		binary.LittleEndian.PutUint16(buf[origin+fpFirstOffset+i*4:], fp)
		binary.LittleEndian.PutUint16(buf[origin+stmFirstOffset+i*4:], stamina)
	}
}
