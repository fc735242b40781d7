package save_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maidenless/sl2edit/bnd"
	"github.com/maidenless/sl2edit/save"
	"github.com/maidenless/sl2edit/save/savetest"
)

func TestLocateStatsSoundness(t *testing.T) {
	// Attributes summing to 79 imply header level 0, so the level probe
	// at +44 must also read 0. The zeroed payload in front of the block
	// never sums to 79, so the first match is the planted origin itself.
	const origin = 300
	data := make([]byte, 4096)
	attrs := [8]byte{10, 10, 10, 10, 10, 10, 10, 9}
	for a, v := range attrs {
		data[origin+a*4] = v
	}

	got, err := save.LocateStats(data, 0)
	require.NoError(t, err)
	assert.Equal(t, origin, got)
}

func TestLocateStatsEarliestOffsetWins(t *testing.T) {
	// Two valid blocks: the scan must report the lower offset.
	data := make([]byte, 8192)
	for _, origin := range []int{500, 2000} {
		for a := 0; a < 8; a++ {
			data[origin+a*4] = 13
		}
		binary.LittleEndian.PutUint16(data[origin+44:], 104-79)
	}
	got, err := save.LocateStats(data, 104-79)
	require.NoError(t, err)
	assert.Equal(t, 500, got)
}

func TestLocateStatsNotFound(t *testing.T) {
	_, err := save.LocateStats(make([]byte, 4096), 25)
	assert.True(t, errors.Is(err, save.ErrStatsNotFound), "err=%v", err)

	// Buffers below the scan margin have no candidate windows at all.
	_, err = save.LocateStats(make([]byte, 10), 0)
	assert.True(t, errors.Is(err, save.ErrStatsNotFound), "err=%v", err)
}

func TestGetStats(t *testing.T) {
	buf := newTarnishedContainer(t)

	stats, err := save.GetStats(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, savetest.DefaultStatsOrigin, stats.Offset)
	assert.Equal(t, tarnishedAttrs, stats.Attributes)
	assert.Equal(t, uint16(25), stats.Level)
	assert.Equal(t, 25, stats.Attributes.Level())

	hp := save.HPForVigor(tarnishedAttrs[save.AttrVigor])
	fp := save.FPForMind(tarnishedAttrs[save.AttrMind])
	stamina := save.StaminaForEndurance(tarnishedAttrs[save.AttrEndurance])
	assert.Equal(t, [3]uint16{hp, hp, hp}, stats.HP)
	assert.Equal(t, [3]uint16{fp, fp, fp}, stats.FP)
	assert.Equal(t, [3]uint16{stamina, stamina, stamina}, stats.Stamina)
}

func TestGetStatsEmptySlot(t *testing.T) {
	buf := newTarnishedContainer(t)
	_, err := save.GetStats(buf, 0)
	assert.True(t, errors.Is(err, save.ErrStatsNotFound), "err=%v", err)
}

func TestSetStatsLevelConsistency(t *testing.T) {
	buf := newTarnishedContainer(t)
	before := make([]byte, len(buf))
	copy(before, buf)

	attrs := save.Attributes{40, 20, 30, 25, 18, 9, 12, 8} // sum 162, level 83
	out, err := save.SetStats(buf, 3, attrs, save.StatsOptions{})
	require.NoError(t, err)

	// Copy-on-write: the input buffer is untouched.
	assert.True(t, bytes.Equal(before, buf))

	c, err := bnd.Parse(out)
	require.NoError(t, err)
	slots, err := save.Slots(c)
	require.NoError(t, err)
	slot3 := save.FindSlot(slots, 3)
	require.NotNil(t, slot3)
	assert.Equal(t, int32(83), slot3.Summary.CharacterLevel)

	stats, err := save.GetStats(out, 3)
	require.NoError(t, err)
	assert.Equal(t, attrs, stats.Attributes)
	assert.Equal(t, uint16(83), stats.Level)

	// Plain option set leaves the resource pools alone.
	assert.Equal(t, save.HPForVigor(tarnishedAttrs[save.AttrVigor]), stats.HP[0])
}

func TestSetStatsCustomAttributes(t *testing.T) {
	buf := newTarnishedContainer(t)

	attrs := save.Attributes{60, 40, 35, 20, 20, 10, 10, 10} // sum 205, level 126
	out, err := save.SetStats(buf, 3, attrs, save.StatsOptions{CustomAttributes: true})
	require.NoError(t, err)

	stats, err := save.GetStats(out, 3)
	require.NoError(t, err)
	hp := save.HPForVigor(60)
	fp := save.FPForMind(40)
	stamina := save.StaminaForEndurance(35)
	assert.Equal(t, [3]uint16{hp, hp, hp}, stats.HP)
	assert.Equal(t, [3]uint16{fp, fp, fp}, stats.FP)
	assert.Equal(t, [3]uint16{stamina, stamina, stamina}, stats.Stamina)
}

func TestSetStatsGodMode(t *testing.T) {
	buf := newTarnishedContainer(t)

	attrs := save.Attributes{99, 99, 99, 99, 99, 99, 99, 99}
	out, err := save.SetStats(buf, 3, attrs, save.StatsOptions{GodMode: true})
	require.NoError(t, err)

	stats, err := save.GetStats(out, 3)
	require.NoError(t, err)
	assert.Equal(t, uint16(99*8-79), stats.Level)
	want := [3]uint16{60000, 60000, 60000}
	assert.Equal(t, want, stats.HP)
	assert.Equal(t, want, stats.FP)
	assert.Equal(t, want, stats.Stamina)
}

func TestSetStatsRewritesChecksums(t *testing.T) {
	buf := newTarnishedContainer(t)
	out, err := save.SetStats(buf, 3, save.Attributes{20, 20, 20, 20, 20, 20, 20, 20}, save.StatsOptions{})
	require.NoError(t, err)

	// A second digest pass must change nothing.
	again := make([]byte, len(out))
	copy(again, out)
	require.NoError(t, save.RecalculateChecksums(again))
	assert.True(t, bytes.Equal(out, again))
}

func TestAttributeTablesClamp(t *testing.T) {
	assert.Equal(t, save.HPForVigor(99), save.HPForVigor(200))
	assert.Equal(t, save.FPForMind(99), save.FPForMind(150))
	assert.Equal(t, save.StaminaForEndurance(99), save.StaminaForEndurance(255))
	assert.Equal(t, uint16(300), save.HPForVigor(1))
	assert.Equal(t, uint16(300), save.HPForVigor(0))
	assert.Equal(t, uint16(2100), save.HPForVigor(99))
	assert.Equal(t, uint16(450), save.FPForMind(99))
	assert.Equal(t, uint16(170), save.StaminaForEndurance(99))
}
