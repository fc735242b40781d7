// Package save locates character slots inside a parsed BND4 save
// container, decodes their summary records and stat blocks, and performs
// checksum-consistent mutations. Every mutating operation copies the
// input buffer, patches the copy and re-digests it; the input is never
// touched.
package save

import (
	"encoding/binary"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/maidenless/sl2edit/bnd"
	"github.com/maidenless/sl2edit/utils"
)

// EmptySlotName labels slots whose summary record holds no character name.
const EmptySlotName = "<empty slot>"

// SummaryRecord is the decoded view of one fixed-size summary blob from
// the save-headers section. Raw keeps the undecoded bytes so slot copies
// can move the record wholesale.
type SummaryRecord struct {
	Raw            []byte
	CharacterName  string
	CharacterLevel int32
	SecondsPlayed  int32
}

// DecodeSummary decodes a SummaryRecordLength-sized blob. The character
// name is UTF-16 in the container's endianness.
func DecodeSummary(raw []byte, bigEndian bool) (SummaryRecord, error) {
	if len(raw) != SummaryRecordLength {
		return SummaryRecord{}, errors.Wrapf(utils.ErrOutOfBounds,
			"summary record size 0x%x, want 0x%x", len(raw), SummaryRecordLength)
	}

	name, err := utils.DecodeUTF16(raw[:SummaryNameLength], bigEndian)
	if err != nil {
		return SummaryRecord{}, err
	}
	name = utils.TrimPadding(name)
	if name == "" {
		name = EmptySlotName
	}

	return SummaryRecord{
		Raw:            raw,
		CharacterName:  name,
		CharacterLevel: int32(binary.LittleEndian.Uint32(raw[summaryLevelOffset:])),
		SecondsPlayed:  int32(binary.LittleEndian.Uint32(raw[summarySecondsOffset:])),
	}, nil
}

// Slot is one character save position: the matching container entry's
// payload split into digest and save data, plus the fixed-position
// summary record and active flag for its index.
type Slot struct {
	Index    int
	Active   bool
	Summary  SummaryRecord
	Checksum []byte
	Data     []byte

	// Absolute offset of the entry payload (digest included) inside the
	// container buffer. -1 for slots decoded from portable blobs.
	entryOffset int64
}

// Slots extracts the save slots from a parsed container. Entries whose
// name does not match the prefix, carries no index in [0,9] or is absent
// are skipped, not failed.
func Slots(c *bnd.Container) ([]Slot, error) {
	buf := c.Buf()
	slots := make([]Slot, 0, SlotCount)
	seen := make(map[int]bool)

	for i := range c.Entries {
		e := &c.Entries[i]
		index, ok := slotIndex(e)
		if !ok {
			continue
		}
		if seen[index] {
			return nil, errors.Errorf("duplicate slot index %d", index)
		}
		seen[index] = true

		slot, err := extractSlotAt(buf, e, index, c.Header.BigEndian)
		if err != nil {
			return nil, errors.Wrapf(err, "slot %d", index)
		}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots, nil
}

func slotIndex(e *bnd.Entry) (int, bool) {
	if e.Name == nil || !strings.HasPrefix(*e.Name, EntryNamePrefix) {
		return 0, false
	}
	index, err := strconv.Atoi(strings.TrimPrefix(*e.Name, EntryNamePrefix))
	if err != nil || index < 0 || index >= SlotCount {
		return 0, false
	}
	return index, true
}

func extractSlotAt(buf []byte, e *bnd.Entry, index int, bigEndian bool) (Slot, error) {
	if len(e.Data) < ChecksumLength {
		return Slot{}, errors.Wrapf(utils.ErrOutOfBounds,
			"entry payload 0x%x shorter than digest", len(e.Data))
	}

	// Summary record and active flag live in the fixed save-headers
	// section of the full buffer, not inside the entry's own data.
	summaryOffset := SummaryTableOffset + index*SummaryRecordLength
	if summaryOffset+SummaryRecordLength > len(buf) || ActiveFlagsOffset+index >= len(buf) {
		return Slot{}, errors.Wrapf(utils.ErrOutOfBounds, "headers section truncated")
	}

	summary, err := DecodeSummary(buf[summaryOffset:summaryOffset+SummaryRecordLength], bigEndian)
	if err != nil {
		return Slot{}, err
	}

	return Slot{
		Index:       index,
		Active:      buf[ActiveFlagsOffset+index] != 0,
		Summary:     summary,
		Checksum:    e.Data[:ChecksumLength],
		Data:        e.Data[ChecksumLength:],
		entryOffset: e.DataOffset,
	}, nil
}

// FindSlot returns the slot with the given index, or nil.
func FindSlot(slots []Slot, index int) *Slot {
	for i := range slots {
		if slots[i].Index == index {
			return &slots[i]
		}
	}
	return nil
}
