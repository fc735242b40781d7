package save

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/maidenless/sl2edit/bnd"
	"github.com/maidenless/sl2edit/utils"
)

// ErrStatsNotFound means the locator exhausted its search space. Empty
// slots legitimately have no stats block, callers treat this as "no stats
// available" rather than a failure.
var ErrStatsNotFound = errors.New("stats block not found")

// The stats block has no declared offset anywhere in the format; it is
// located by scanning the slot's save data for a window that satisfies
// both predicates below.
const (
	statsScanLimit   = 120000
	statsScanMargin  = 50
	statsLevelOffset = 44

	// sum(attributes) always exceeds the character level by this bias.
	levelAttrBias = 79

	attributeStride = 4

	godModeResourceValue = 60000
)

// Attribute indices, in block order. Not reorderable.
const (
	AttrVigor = iota
	AttrMind
	AttrEndurance
	AttrStrength
	AttrDexterity
	AttrIntelligence
	AttrFaith
	AttrArcane
	AttrCount
)

type Attributes [AttrCount]uint8

func (a Attributes) Sum() int {
	sum := 0
	for _, v := range a {
		sum += int(v)
	}
	return sum
}

// Level is the character level implied by an attribute spread.
func (a Attributes) Level() int {
	return a.Sum() - levelAttrBias
}

// StatsBlock is the located character-attribute region of a slot. The
// resource triples (current, max, base) sit at fixed negative offsets
// from the block origin.
type StatsBlock struct {
	Offset     int
	Attributes Attributes
	Level      uint16
	HP         [3]uint16
	FP         [3]uint16
	Stamina    [3]uint16
}

// Resource triple offsets relative to the block origin.
var (
	hpOffsets      = [3]int{-44, -40, -36}
	fpOffsets      = [3]int{-32, -28, -24}
	staminaOffsets = [3]int{-16, -12, -8}
)

// LocateStats scans a slot's save data for its stats block. The earliest
// offset satisfying both predicates wins; this tie-break is load-bearing
// and must not change.
func LocateStats(data []byte, headerLevel int32) (int, error) {
	limit := len(data) - statsScanMargin
	if limit > statsScanLimit {
		limit = statsScanLimit
	}

	want := int(headerLevel) + levelAttrBias
	for i := 0; i < limit; i++ {
		sum := 0
		for a := 0; a < AttrCount; a++ {
			sum += int(data[i+a*attributeStride])
		}
		if sum != want {
			continue
		}
		if binary.LittleEndian.Uint16(data[i+statsLevelOffset:]) != uint16(headerLevel) {
			continue
		}
		return i, nil
	}
	return 0, errors.Wrapf(ErrStatsNotFound, "header level %d", headerLevel)
}

func readStatsBlock(data []byte, origin int) (*StatsBlock, error) {
	// The HP triple extends furthest back from the origin.
	if origin+hpOffsets[0] < 0 || origin+statsLevelOffset+2 > len(data) {
		return nil, errors.Wrapf(utils.ErrOutOfBounds, "stats block at 0x%x", origin)
	}

	b := &StatsBlock{Offset: origin}
	for a := 0; a < AttrCount; a++ {
		b.Attributes[a] = data[origin+a*attributeStride]
	}
	b.Level = binary.LittleEndian.Uint16(data[origin+statsLevelOffset:])
	for i := 0; i < 3; i++ {
		b.HP[i] = binary.LittleEndian.Uint16(data[origin+hpOffsets[i]:])
		b.FP[i] = binary.LittleEndian.Uint16(data[origin+fpOffsets[i]:])
		b.Stamina[i] = binary.LittleEndian.Uint16(data[origin+staminaOffsets[i]:])
	}
	return b, nil
}

// GetStats parses the container buffer and reads the stats block of the
// slot at slotIndex. Returns ErrStatsNotFound when the slot has none.
func GetStats(buf []byte, slotIndex int) (*StatsBlock, error) {
	c, err := bnd.Parse(buf)
	if err != nil {
		return nil, err
	}
	slots, err := Slots(c)
	if err != nil {
		return nil, err
	}
	slot := FindSlot(slots, slotIndex)
	if slot == nil {
		return nil, errors.Errorf("no save entry for slot %d", slotIndex)
	}

	origin, err := LocateStats(slot.Data, slot.Summary.CharacterLevel)
	if err != nil {
		return nil, err
	}
	return readStatsBlock(slot.Data, origin)
}

// StatsOptions control how SetStats treats the derived resource pools.
type StatsOptions struct {
	// GodMode forces every resource value to godModeResourceValue.
	GodMode bool
	// CustomAttributes recomputes the resource triples from the new
	// vigor/mind/endurance via the progression tables.
	CustomAttributes bool
}

// SetStats writes a new attribute spread into the slot's stats block and
// keeps every derived field consistent: the block's own level, the level
// mirrored in the slot's summary record, optionally the resource pools,
// and finally all container digests. The input buffer is copied, never
// mutated.
func SetStats(buf []byte, slotIndex int, attrs Attributes, opts StatsOptions) ([]byte, error) {
	c, err := bnd.Parse(buf)
	if err != nil {
		return nil, err
	}
	slots, err := Slots(c)
	if err != nil {
		return nil, err
	}
	slot := FindSlot(slots, slotIndex)
	if slot == nil {
		return nil, errors.Errorf("no save entry for slot %d", slotIndex)
	}

	origin, err := LocateStats(slot.Data, slot.Summary.CharacterLevel)
	if err != nil {
		return nil, err
	}
	if _, err := readStatsBlock(slot.Data, origin); err != nil {
		return nil, err
	}

	out := make([]byte, len(buf))
	copy(out, buf)

	// Absolute origin of the stats block inside the container buffer.
	abs := int(slot.entryOffset) + ChecksumLength + origin

	level := attrs.Level()
	for a := 0; a < AttrCount; a++ {
		out[abs+a*attributeStride] = attrs[a]
	}
	binary.LittleEndian.PutUint16(out[abs+statsLevelOffset:], uint16(level))

	mirror := SummaryTableOffset + slotIndex*SummaryRecordLength + summaryLevelOffset
	binary.LittleEndian.PutUint32(out[mirror:], uint32(level))

	switch {
	case opts.GodMode:
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint16(out[abs+hpOffsets[i]:], godModeResourceValue)
			binary.LittleEndian.PutUint16(out[abs+fpOffsets[i]:], godModeResourceValue)
			binary.LittleEndian.PutUint16(out[abs+staminaOffsets[i]:], godModeResourceValue)
		}
	case opts.CustomAttributes:
		hp := HPForVigor(attrs[AttrVigor])
		fp := FPForMind(attrs[AttrMind])
		stamina := StaminaForEndurance(attrs[AttrEndurance])
		for i := 0; i < 3; i++ {
			binary.LittleEndian.PutUint16(out[abs+hpOffsets[i]:], hp)
			binary.LittleEndian.PutUint16(out[abs+fpOffsets[i]:], fp)
			binary.LittleEndian.PutUint16(out[abs+staminaOffsets[i]:], stamina)
		}
	}

	if err := RecalculateChecksums(out); err != nil {
		return nil, err
	}
	return out, nil
}
