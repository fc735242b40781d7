package save

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/maidenless/sl2edit/bnd"
)

var (
	ErrTargetSlotNotFound   = errors.New("target slot not found")
	ErrDecompressionFailure = errors.New("portable slot blob is corrupt")
)

// Portable blobs are deflated at a fixed level; they are written once and
// read many times.
const portableCompressionLevel = zlib.BestCompression

// CopySlot writes src's digest, save data, summary record and active flag
// into the slot at targetIndex of targetBuf, re-digests the affected slot
// window and the headers section, and returns the result as a new buffer.
// targetBuf is never mutated; callers persist the result and re-parse.
func CopySlot(src Slot, targetBuf []byte, targetIndex int) ([]byte, error) {
	c, err := bnd.Parse(targetBuf)
	if err != nil {
		return nil, err
	}
	slots, err := Slots(c)
	if err != nil {
		return nil, err
	}
	target := FindSlot(slots, targetIndex)
	if target == nil {
		return nil, errors.Wrapf(ErrTargetSlotNotFound, "index %d", targetIndex)
	}
	if len(src.Data) != len(target.Data) {
		return nil, errors.Errorf("slot size mismatch: 0x%x vs 0x%x", len(src.Data), len(target.Data))
	}

	out := make([]byte, len(targetBuf))
	copy(out, targetBuf)

	offset := int(target.entryOffset)
	copy(out[offset:], src.Checksum)
	copy(out[offset+ChecksumLength:], src.Data)

	summaryOffset := SummaryTableOffset + targetIndex*SummaryRecordLength
	copy(out[summaryOffset:summaryOffset+SummaryRecordLength], src.Summary.Raw)
	out[ActiveFlagsOffset+targetIndex] = 1

	if err := patchDigest(out, slotChecksumOffset(targetIndex), slotDataOffset(targetIndex), SlotDataLength, true); err != nil {
		return nil, errors.Wrapf(err, "slot %d", targetIndex)
	}
	if err := patchDigest(out, HeadersSectionChecksumOffset, HeadersSectionOffset, HeadersSectionLength, false); err != nil {
		return nil, errors.Wrapf(err, "headers section")
	}
	return out, nil
}

// ExtractInfo reports portable blob sizes.
type ExtractInfo struct {
	RawSize        int
	CompressedSize int
}

func (i ExtractInfo) Ratio() float64 {
	if i.RawSize == 0 {
		return 0
	}
	return float64(i.CompressedSize) / float64(i.RawSize)
}

// ExtractSlot serializes a slot into a portable compressed blob: the
// deflated concatenation of summary record, digest and save data, with no
// additional header.
func ExtractSlot(slot Slot) ([]byte, ExtractInfo, error) {
	rawSize := len(slot.Summary.Raw) + len(slot.Checksum) + len(slot.Data)

	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, portableCompressionLevel)
	if err != nil {
		return nil, ExtractInfo{}, errors.Wrapf(err, "Failed to create compressor")
	}
	for _, part := range [][]byte{slot.Summary.Raw, slot.Checksum, slot.Data} {
		if _, err := zw.Write(part); err != nil {
			return nil, ExtractInfo{}, errors.Wrapf(err, "Failed to compress slot")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, ExtractInfo{}, errors.Wrapf(err, "Failed to compress slot")
	}

	return out.Bytes(), ExtractInfo{RawSize: rawSize, CompressedSize: out.Len()}, nil
}

// ImportSlot decodes a portable blob back into a Slot. The result carries
// no index or active flag; CopySlot places it into a container. Portable
// blobs always come from little-endian containers.
func ImportSlot(blob []byte) (Slot, error) {
	zr, err := zlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return Slot{}, errors.Wrapf(ErrDecompressionFailure, "%v", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return Slot{}, errors.Wrapf(ErrDecompressionFailure, "%v", err)
	}
	if len(raw) < SummaryRecordLength+ChecksumLength {
		return Slot{}, errors.Wrapf(ErrDecompressionFailure, "decompressed size 0x%x", len(raw))
	}

	summary, err := DecodeSummary(raw[:SummaryRecordLength], false)
	if err != nil {
		return Slot{}, err
	}

	return Slot{
		Index:       -1,
		Summary:     summary,
		Checksum:    raw[SummaryRecordLength : SummaryRecordLength+ChecksumLength],
		Data:        raw[SummaryRecordLength+ChecksumLength:],
		entryOffset: -1,
	}, nil
}
