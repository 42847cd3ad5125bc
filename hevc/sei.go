package hevc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DepthRepresentationType is depth_representation_type from the depth
// representation information SEI message.
type DepthRepresentationType uint8

const (
	DepthUniformInverseZ DepthRepresentationType = iota
	DepthUniformDisparity
	DepthUniformZ
	DepthNonuniformDisparity
)

func (t DepthRepresentationType) String() string {
	switch t {
	case DepthUniformInverseZ:
		return "uniform inverse Z"
	case DepthUniformDisparity:
		return "uniform disparity"
	case DepthUniformZ:
		return "uniform Z"
	case DepthNonuniformDisparity:
		return "nonuniform disparity"
	}
	return fmt.Sprintf("DepthRepresentationType(%d)", uint8(t))
}

// DepthRepresentationInfo describes how depth samples map to distances.
type DepthRepresentationInfo struct {
	Version uint8

	HasZNear bool
	HasZFar  bool
	HasDMin  bool
	HasDMax  bool

	ZNear float64
	ZFar  float64
	DMin  float64
	DMax  float64

	RepresentationType     DepthRepresentationType
	DisparityReferenceView uint32
}

const seiDepthRepresentationInfo = 177

// ParseDepthRepresentationInfo decodes the SEI messages stored after the
// auxiliary type URN of a depth image. It returns nil without error when no
// depth representation message is present or the length field is out of
// range.
//
// Layout: a 4 byte total length, then one 4 byte size prefixed SEI NAL unit.
// Only the first unit and single byte SEI headers are examined.
func ParseDepthRepresentationInfo(data []byte) (*DepthRepresentationInfo, error) {
	if len(data) < 4 {
		return nil, nil
	}
	total := binary.BigEndian.Uint32(data)
	if uint64(total) > uint64(len(data)-4) || len(data) < 4+4+4 {
		return nil, nil
	}

	nal := data[8:]
	typ := UnitType(nal)
	if typ != NALPrefixSEI && typ != NALSuffixSEI {
		return nil, nil
	}
	payloadType := nal[2]
	if payloadType != seiDepthRepresentationInfo {
		return nil, nil
	}

	return readDepthRepresentationInfo(newBitReader(RBSP(nal[4:])))
}

func readDepthRepresentationInfo(r *bitReader) (*DepthRepresentationInfo, error) {
	info := &DepthRepresentationInfo{Version: 1}

	var err error
	flag := func() bool {
		if err != nil {
			return false
		}
		var b bool
		b, err = r.readFlag()
		return b
	}

	info.HasZNear = flag()
	info.HasZFar = flag()
	info.HasDMin = flag()
	info.HasDMax = flag()
	if err != nil {
		return nil, err
	}

	repType, err := r.readUE()
	if err != nil {
		return nil, fmt.Errorf("hevc: invalid depth representation type: %w", err)
	}
	if repType > 3 {
		return nil, fmt.Errorf("hevc: depth representation type %d out of range", repType)
	}
	info.RepresentationType = DepthRepresentationType(repType)

	if info.HasDMin || info.HasDMax {
		view, err := r.readUE()
		if err != nil {
			return nil, fmt.Errorf("hevc: invalid disparity reference view: %w", err)
		}
		if view > 31 {
			return nil, fmt.Errorf("hevc: disparity reference view %d out of range", view)
		}
		info.DisparityReferenceView = view
	}

	for _, e := range []struct {
		present bool
		dst     *float64
	}{
		{info.HasZNear, &info.ZNear},
		{info.HasZFar, &info.ZFar},
		{info.HasDMin, &info.DMin},
		{info.HasDMax, &info.DMax},
	} {
		if !e.present {
			continue
		}
		v, err := readDepthElement(r)
		if err != nil {
			return nil, err
		}
		*e.dst = v
	}

	return info, nil
}

// readDepthElement reads a sign/exponent/mantissa coded value.
func readDepthElement(r *bitReader) (float64, error) {
	sign, err := r.readBits(1)
	if err != nil {
		return 0, err
	}
	exponent, err := r.readBits(7)
	if err != nil {
		return 0, err
	}
	lenMinus1, err := r.readBits(5)
	if err != nil {
		return 0, err
	}
	mantissaLen := int(lenMinus1) + 1
	if exponent == 127 {
		return 0, fmt.Errorf("hevc: depth representation exponent 127 is reserved")
	}
	mantissa, err := r.readBits(mantissaLen)
	if err != nil {
		return 0, err
	}

	var v float64
	if exponent > 0 {
		v = math.Pow(2, float64(exponent)-31) * (1 + float64(mantissa)/math.Pow(2, float64(mantissaLen)))
	} else {
		v = math.Pow(2, -float64(30+mantissaLen)) * float64(mantissa)
	}
	if sign == 1 {
		v = -v
	}
	return v, nil
}
