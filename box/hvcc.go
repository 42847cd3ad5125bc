package box

// HvcCConfig is the fixed part of an HEVC decoder configuration record.
type HvcCConfig struct {
	ConfigurationVersion             uint8
	GeneralProfileSpace              uint8
	GeneralTierFlag                  bool
	GeneralProfileIDC                uint8
	GeneralProfileCompatibilityFlags uint32
	GeneralConstraintIndicatorFlags  uint64 // 48 bits
	GeneralLevelIDC                  uint8
	MinSpatialSegmentationIDC        uint16
	ParallelismType                  uint8
	ChromaFormat                     uint8 // 0 monochrome, 1 4:2:0, 2 4:2:2, 3 4:4:4
	BitDepthLuma                     uint8
	BitDepthChroma                   uint8
	AvgFrameRate                     uint16
	ConstantFrameRate                uint8
	NumTemporalLayers                uint8
	TemporalIDNested                 bool
}

// NALArray groups parameter set units of one NAL unit type.
type NALArray struct {
	Complete    bool
	NALUnitType uint8
	Units       [][]byte
}

// HvcC is the HEVC decoder configuration property. It carries the
// VPS, SPS and PPS units needed before the first slice.
type HvcC struct {
	Config HvcCConfig
	Arrays []NALArray
}

// NewHvcC returns an empty configuration with version 1 and 8-bit 4:2:0
// defaults.
func NewHvcC() *HvcC {
	return &HvcC{Config: HvcCConfig{
		ConfigurationVersion: 1,
		ChromaFormat:         1,
		BitDepthLuma:         8,
		BitDepthChroma:       8,
	}}
}

// AppendNAL adds a parameter set unit to the array of its NAL unit type,
// creating the array if needed.
func (h *HvcC) AppendNAL(nal []byte) {
	if len(nal) == 0 {
		return
	}
	typ := (nal[0] >> 1) & 0x3f
	for i := range h.Arrays {
		if h.Arrays[i].NALUnitType == typ {
			h.Arrays[i].Units = append(h.Arrays[i].Units, nal)
			return
		}
	}
	h.Arrays = append(h.Arrays, NALArray{Complete: true, NALUnitType: typ, Units: [][]byte{nal}})
}

// Headers returns all parameter set units in storage order.
func (h *HvcC) Headers() [][]byte {
	var out [][]byte
	for _, a := range h.Arrays {
		out = append(out, a.Units...)
	}
	return out
}

func parseHvcC(data []byte) (*HvcC, error) {
	r := newReader(data, "hvcC")
	h := &HvcC{}
	c := &h.Config
	c.ConfigurationVersion = r.u8()
	b := r.u8()
	c.GeneralProfileSpace = b >> 6
	c.GeneralTierFlag = b&0x20 != 0
	c.GeneralProfileIDC = b & 0x1f
	c.GeneralProfileCompatibilityFlags = r.u32()
	c.GeneralConstraintIndicatorFlags = uint64(r.u16())<<32 | uint64(r.u32())
	c.GeneralLevelIDC = r.u8()
	c.MinSpatialSegmentationIDC = r.u16() & 0x0fff
	c.ParallelismType = r.u8() & 0x03
	c.ChromaFormat = r.u8() & 0x03
	c.BitDepthLuma = r.u8()&0x07 + 8
	c.BitDepthChroma = r.u8()&0x07 + 8
	c.AvgFrameRate = r.u16()
	b = r.u8()
	c.ConstantFrameRate = b >> 6
	c.NumTemporalLayers = (b >> 3) & 0x07
	c.TemporalIDNested = b&0x04 != 0

	numArrays := int(r.u8())
	for range numArrays {
		if r.err != nil {
			break
		}
		b := r.u8()
		a := NALArray{Complete: b&0x80 != 0, NALUnitType: b & 0x3f}
		n := int(r.u16())
		for range n {
			size := int(r.u16())
			a.Units = append(a.Units, r.bytes(size))
		}
		h.Arrays = append(h.Arrays, a)
	}
	if r.err != nil {
		return nil, r.err
	}
	return h, nil
}

func marshalHvcC(h *HvcC) []byte {
	var w writer
	c := &h.Config
	w.u8(c.ConfigurationVersion)
	b := c.GeneralProfileSpace<<6 | c.GeneralProfileIDC&0x1f
	if c.GeneralTierFlag {
		b |= 0x20
	}
	w.u8(b)
	w.u32(c.GeneralProfileCompatibilityFlags)
	w.u16(uint16(c.GeneralConstraintIndicatorFlags >> 32))
	w.u32(uint32(c.GeneralConstraintIndicatorFlags))
	w.u8(c.GeneralLevelIDC)
	w.u16(0xf000 | c.MinSpatialSegmentationIDC&0x0fff)
	w.u8(0xfc | c.ParallelismType&0x03)
	w.u8(0xfc | c.ChromaFormat&0x03)
	w.u8(0xf8 | (c.BitDepthLuma-8)&0x07)
	w.u8(0xf8 | (c.BitDepthChroma-8)&0x07)
	w.u16(c.AvgFrameRate)
	b = c.ConstantFrameRate<<6 | (c.NumTemporalLayers&0x07)<<3 | 3 // lengthSizeMinusOne
	if c.TemporalIDNested {
		b |= 0x04
	}
	w.u8(b)
	w.u8(uint8(len(h.Arrays)))
	for _, a := range h.Arrays {
		b := a.NALUnitType & 0x3f
		if a.Complete {
			b |= 0x80
		}
		w.u8(b)
		w.u16(uint16(len(a.Units)))
		for _, u := range a.Units {
			w.u16(uint16(len(u)))
			w.raw(u)
		}
	}
	return w.buf
}
