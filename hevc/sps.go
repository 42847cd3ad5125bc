package hevc

import (
	"fmt"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
)

// SPS holds the sequence parameter set fields needed to fill an hvcC
// configuration and the image extents.
type SPS struct {
	ProfileSpace              uint8
	Tier                      bool
	ProfileIDC                uint8
	ProfileCompatibilityFlags uint32
	ConstraintIndicatorFlags  uint64 // 48 bits
	LevelIDC                  uint8

	ChromaFormatIDC     uint8
	SeparateColourPlane bool
	PicWidth            uint32
	PicHeight           uint32

	ConformanceWindow bool
	ConfWinLeft       uint32
	ConfWinRight      uint32
	ConfWinTop        uint32
	ConfWinBottom     uint32

	BitDepthLuma   uint8
	BitDepthChroma uint8
}

func (s *SPS) subWidth() uint32 {
	if s.ChromaFormatIDC == 1 || s.ChromaFormatIDC == 2 {
		return 2
	}
	return 1
}

func (s *SPS) subHeight() uint32 {
	if s.ChromaFormatIDC == 1 {
		return 2
	}
	return 1
}

// Width returns the luma width after the conformance window is applied.
func (s *SPS) Width() int {
	return int(s.PicWidth - s.subWidth()*(s.ConfWinLeft+s.ConfWinRight))
}

// Height returns the luma height after the conformance window is applied.
func (s *SPS) Height() int {
	return int(s.PicHeight - s.subHeight()*(s.ConfWinTop+s.ConfWinBottom))
}

// Configure copies the profile, chroma and bit depth fields into c.
func (s *SPS) Configure(c *box.HvcCConfig) {
	c.ConfigurationVersion = 1
	c.GeneralProfileSpace = s.ProfileSpace
	c.GeneralTierFlag = s.Tier
	c.GeneralProfileIDC = s.ProfileIDC
	c.GeneralProfileCompatibilityFlags = s.ProfileCompatibilityFlags
	c.GeneralConstraintIndicatorFlags = s.ConstraintIndicatorFlags
	c.GeneralLevelIDC = s.LevelIDC
	c.ChromaFormat = s.ChromaFormatIDC
	c.BitDepthLuma = s.BitDepthLuma
	c.BitDepthChroma = s.BitDepthChroma
	c.NumTemporalLayers = 1
	c.TemporalIDNested = true
}

// ParseSPS parses a complete SPS NAL unit, header included.
// Parsing stops after the bit depth fields.
func ParseSPS(nal []byte) (*SPS, error) {
	if UnitType(nal) != NALSPS {
		return nil, fmt.Errorf("hevc: NAL unit type %d is not an SPS", UnitType(nal))
	}
	if len(nal) < 3 {
		return nil, heiferr.New(heiferr.InvalidInput, heiferr.EndOfData, "SPS NAL unit too short")
	}
	r := newBitReader(RBSP(nal[2:]))
	s := &SPS{}

	var err error
	read := func(n int) uint32 {
		if err != nil {
			return 0
		}
		var v uint32
		v, err = r.readBits(n)
		return v
	}
	ue := func() uint32 {
		if err != nil {
			return 0
		}
		var v uint32
		v, err = r.readUE()
		return v
	}

	read(4) // sps_video_parameter_set_id
	maxSubLayersMinus1 := int(read(3))
	read(1) // sps_temporal_id_nesting_flag

	// profile_tier_level(1, maxSubLayersMinus1)
	s.ProfileSpace = uint8(read(2))
	s.Tier = read(1) == 1
	s.ProfileIDC = uint8(read(5))
	s.ProfileCompatibilityFlags = read(32)
	s.ConstraintIndicatorFlags = uint64(read(16))<<32 | uint64(read(32))
	s.LevelIDC = uint8(read(8))

	profilePresent := make([]bool, maxSubLayersMinus1)
	levelPresent := make([]bool, maxSubLayersMinus1)
	for i := range maxSubLayersMinus1 {
		profilePresent[i] = read(1) == 1
		levelPresent[i] = read(1) == 1
	}
	if maxSubLayersMinus1 > 0 {
		for i := maxSubLayersMinus1; i < 8; i++ {
			read(2)
		}
	}
	for i := range maxSubLayersMinus1 {
		if profilePresent[i] {
			read(32)
			read(32)
			read(24)
		}
		if levelPresent[i] {
			read(8)
		}
	}

	ue() // sps_seq_parameter_set_id
	s.ChromaFormatIDC = uint8(ue())
	if s.ChromaFormatIDC == 3 {
		s.SeparateColourPlane = read(1) == 1
	}
	s.PicWidth = ue()
	s.PicHeight = ue()
	s.ConformanceWindow = read(1) == 1
	if s.ConformanceWindow {
		s.ConfWinLeft = ue()
		s.ConfWinRight = ue()
		s.ConfWinTop = ue()
		s.ConfWinBottom = ue()
	}
	s.BitDepthLuma = uint8(ue() + 8)
	s.BitDepthChroma = uint8(ue() + 8)

	if err != nil {
		return nil, fmt.Errorf("hevc: parse SPS: %w", err)
	}
	if s.ChromaFormatIDC > 3 {
		return nil, fmt.Errorf("hevc: invalid chroma_format_idc %d", s.ChromaFormatIDC)
	}
	return s, nil
}

// Marshal writes s as an SPS NAL unit with a single temporal sub-layer.
// The unit ends after the bit depth fields, so it carries what ParseSPS
// reads but is not a complete parameter set for a conforming decoder.
func (s *SPS) Marshal() []byte {
	var w bitWriter
	w.writeBits(0, 4) // sps_video_parameter_set_id
	w.writeBits(0, 3) // sps_max_sub_layers_minus1
	w.writeBits(1, 1) // sps_temporal_id_nesting_flag

	w.writeBits(uint32(s.ProfileSpace), 2)
	w.writeFlag(s.Tier)
	w.writeBits(uint32(s.ProfileIDC), 5)
	w.writeBits(s.ProfileCompatibilityFlags, 32)
	w.writeBits(uint32(s.ConstraintIndicatorFlags>>32), 16)
	w.writeBits(uint32(s.ConstraintIndicatorFlags), 32)
	w.writeBits(uint32(s.LevelIDC), 8)

	w.writeUE(0) // sps_seq_parameter_set_id
	w.writeUE(uint32(s.ChromaFormatIDC))
	if s.ChromaFormatIDC == 3 {
		w.writeFlag(s.SeparateColourPlane)
	}
	w.writeUE(s.PicWidth)
	w.writeUE(s.PicHeight)
	w.writeFlag(s.ConformanceWindow)
	if s.ConformanceWindow {
		w.writeUE(s.ConfWinLeft)
		w.writeUE(s.ConfWinRight)
		w.writeUE(s.ConfWinTop)
		w.writeUE(s.ConfWinBottom)
	}
	w.writeUE(uint32(s.BitDepthLuma) - 8)
	w.writeUE(uint32(s.BitDepthChroma) - 8)
	w.writeTrailingBits()

	nal := []byte{NALSPS << 1, 1}
	return append(nal, EscapeRBSP(w.buf)...)
}
