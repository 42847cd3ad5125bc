// Package hevc contains the small amount of H.265 bitstream handling needed
// to store HEVC coded images in HEIF: NAL unit framing, SPS parsing for the
// decoder configuration record, and depth representation SEI messages.
package hevc

import (
	"encoding/binary"

	"github.com/gogpu/heif/heiferr"
)

// NAL unit types used by HEIF.
const (
	NALVPS       uint8 = 32
	NALSPS       uint8 = 33
	NALPPS       uint8 = 34
	NALPrefixSEI uint8 = 39
	NALSuffixSEI uint8 = 40
)

// UnitType returns the nal_unit_type of a NAL unit with its two byte header.
func UnitType(nal []byte) uint8 {
	if len(nal) == 0 {
		return 0xff
	}
	return (nal[0] >> 1) & 0x3f
}

// IsParameterSet reports whether t is a VPS, SPS or PPS type. Those units
// belong in the hvcC box rather than in the item payload.
func IsParameterSet(t uint8) bool {
	return t >= NALVPS && t <= NALPPS
}

// SplitAnnexB splits a byte stream framed with 00 00 01 start codes into NAL
// units. Bytes before the first start code and trailing zero bytes of each
// unit are dropped.
func SplitAnnexB(data []byte) [][]byte {
	var units [][]byte
	start := -1
	zeros := 0
	for i, c := range data {
		switch {
		case c == 0:
			zeros++
			continue
		case c == 1 && zeros >= 2:
			if start >= 0 {
				units = appendUnit(units, data[start:i-zeros])
			}
			start = i + 1
		}
		zeros = 0
	}
	if start >= 0 && start < len(data) {
		units = appendUnit(units, data[start:])
	}
	return units
}

func appendUnit(units [][]byte, nal []byte) [][]byte {
	for len(nal) > 0 && nal[len(nal)-1] == 0 {
		nal = nal[:len(nal)-1]
	}
	if len(nal) == 0 {
		return units
	}
	return append(units, nal)
}

// AppendLengthPrefixed appends nal preceded by its 4 byte big-endian size.
func AppendLengthPrefixed(dst, nal []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(nal)))
	return append(dst, nal...)
}

// SplitLengthPrefixed splits a stream of 4 byte size prefixed NAL units.
func SplitLengthPrefixed(data []byte) ([][]byte, error) {
	var units [][]byte
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, heiferr.New(heiferr.InvalidInput, heiferr.EndOfData,
				"insufficient data for NAL size")
		}
		size := binary.BigEndian.Uint32(data)
		data = data[4:]
		if uint64(size) > uint64(len(data)) {
			return nil, heiferr.New(heiferr.InvalidInput, heiferr.EndOfData,
				"NAL size exceeds remaining data")
		}
		units = append(units, data[:size])
		data = data[size:]
	}
	return units, nil
}

// RBSP removes emulation prevention bytes (00 00 03) from a NAL unit.
func RBSP(nal []byte) []byte {
	out := make([]byte, 0, len(nal))
	zeros := 0
	for _, c := range nal {
		if zeros >= 2 && c == 3 {
			zeros = 0
			continue
		}
		if c == 0 {
			zeros++
		} else {
			zeros = 0
		}
		out = append(out, c)
	}
	return out
}

// EscapeRBSP inserts emulation prevention bytes so the payload cannot
// contain a start code.
func EscapeRBSP(rbsp []byte) []byte {
	out := make([]byte, 0, len(rbsp)+len(rbsp)/64)
	zeros := 0
	for _, c := range rbsp {
		if zeros >= 2 && c <= 3 {
			out = append(out, 3)
			zeros = 0
		}
		if c == 0 {
			zeros++
		} else {
			zeros = 0
		}
		out = append(out, c)
	}
	return out
}
