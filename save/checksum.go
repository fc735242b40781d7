package save

import (
	"bytes"
	"crypto/md5"

	"github.com/pkg/errors"

	"github.com/maidenless/sl2edit/utils"
)

// patchDigest recomputes the MD5 of buf[regionOffset:regionOffset+length]
// and stores it at digestOffset. With compare set, the stored digest is
// left alone when its compare window already matches; skipping the write
// is an optimization, overwriting unconditionally would be equally
// correct.
func patchDigest(buf []byte, digestOffset, regionOffset, length int, compare bool) error {
	if digestOffset < 0 || digestOffset+ChecksumLength > len(buf) ||
		regionOffset < 0 || regionOffset+length > len(buf) {
		return errors.Wrapf(utils.ErrOutOfBounds,
			"digest at 0x%x over [0x%x:0x%x] of 0x%x", digestOffset, regionOffset, regionOffset+length, len(buf))
	}

	sum := md5.Sum(buf[regionOffset : regionOffset+length])
	if compare && bytes.Equal(buf[digestOffset:digestOffset+slotDigestCompareLength], sum[:slotDigestCompareLength]) {
		return nil
	}
	copy(buf[digestOffset:digestOffset+ChecksumLength], sum[:])
	return nil
}

// RecalculateChecksums rewrites every digest of a freshly mutated
// container buffer, in place, in fixed order: the ten slot windows, then
// the save-headers section, then the general-data region. The regions do
// not nest; if they ever do, children must be digested before parents.
func RecalculateChecksums(buf []byte) error {
	for i := 0; i < SlotCount; i++ {
		if err := patchDigest(buf, slotChecksumOffset(i), slotDataOffset(i), SlotDataLength, true); err != nil {
			return errors.Wrapf(err, "slot %d", i)
		}
	}
	if err := patchDigest(buf, HeadersSectionChecksumOffset, HeadersSectionOffset, HeadersSectionLength, false); err != nil {
		return errors.Wrapf(err, "headers section")
	}
	if err := patchDigest(buf, GeneralDataChecksumOffset, GeneralDataOffset, GeneralDataLength, false); err != nil {
		return errors.Wrapf(err, "general data")
	}
	return nil
}
