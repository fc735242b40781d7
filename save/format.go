package save

// Fixed layout constants of supported save containers. None of these are
// discovered at runtime: the slot windows, the summary table and the
// digest regions all sit at the same offsets in every observed file.
const (
	SlotCount = 10

	// Save slot entries are named EntryNamePrefix followed by the decimal
	// slot index. Higher-indexed entries hold shared data, not slots.
	EntryNamePrefix = "USER_DATA"

	// Every digest in the container is a 16-byte MD5, stored immediately
	// before the region it covers. Entry payloads start with one.
	ChecksumLength = 16

	// Character slot windows. Slot i's digest is at SlotChecksumBase +
	// i*SlotStride, its SlotDataLength bytes of save data follow.
	SlotChecksumBase = 0x300
	SlotDataLength   = 0x280000
	SlotStride       = SlotDataLength + ChecksumLength

	// Compare window used when deciding whether a freshly computed slot
	// digest needs to be stored. Deliberately kept distinct from
	// ChecksumLength, matching the behavior proven against real files.
	slotDigestCompareLength = 15

	// Save-headers section: active flags and summary records, covered by
	// their own digest.
	HeadersSectionChecksumOffset = 0x19003A0
	HeadersSectionOffset         = 0x19003B0
	HeadersSectionLength         = 0x60000

	// One active-flag byte per slot index.
	ActiveFlagsOffset = 0x1901D04

	// Summary records: one fixed-size record per slot index, independent
	// of the entries' own data offsets.
	SummaryTableOffset   = 0x1901D0E
	SummaryRecordLength  = 0x24C
	SummaryNameLength    = 34
	summaryLevelOffset   = 0x22
	summarySecondsOffset = 0x26

	// Trailing general-data region.
	GeneralDataChecksumOffset = 0x19603B0
	GeneralDataOffset         = 0x19603C0
	GeneralDataLength         = 0x240000
)

func slotChecksumOffset(index int) int {
	return SlotChecksumBase + index*SlotStride
}

func slotDataOffset(index int) int {
	return slotChecksumOffset(index) + ChecksumLength
}
