package hevc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
)

func TestSplitAnnexB(t *testing.T) {
	stream := []byte{
		0, 0, 0, 1, 0x40, 0x01, 0xaa, // VPS, 4 byte start code
		0, 0, 1, 0x42, 0x01, 0xbb, 0x00, // SPS with trailing zero
		0, 0, 1, 0x26, 0x01, 0xcc, 0xdd, // slice
	}

	units := SplitAnnexB(stream)
	want := [][]byte{
		{0x40, 0x01, 0xaa},
		{0x42, 0x01, 0xbb},
		{0x26, 0x01, 0xcc, 0xdd},
	}
	if len(units) != len(want) {
		t.Fatalf("SplitAnnexB() returned %d units, want %d", len(units), len(want))
	}
	for i := range want {
		if !bytes.Equal(units[i], want[i]) {
			t.Errorf("unit %d = %x, want %x", i, units[i], want[i])
		}
	}
	if UnitType(units[0]) != NALVPS || UnitType(units[1]) != NALSPS {
		t.Errorf("unit types = %d, %d", UnitType(units[0]), UnitType(units[1]))
	}
	if !IsParameterSet(UnitType(units[1])) || IsParameterSet(UnitType(units[2])) {
		t.Error("IsParameterSet() misclassified units")
	}
}

func TestSplitLengthPrefixed(t *testing.T) {
	var stream []byte
	stream = AppendLengthPrefixed(stream, []byte{1, 2, 3})
	stream = AppendLengthPrefixed(stream, []byte{4})

	units, err := SplitLengthPrefixed(stream)
	if err != nil {
		t.Fatalf("SplitLengthPrefixed() error = %v", err)
	}
	if len(units) != 2 || !bytes.Equal(units[1], []byte{4}) {
		t.Errorf("SplitLengthPrefixed() = %x", units)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"short size", []byte{0, 0, 1}},
		{"short payload", []byte{0, 0, 0, 5, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitLengthPrefixed(tt.data)
			if !errors.Is(err, heiferr.ErrEndOfData) {
				t.Errorf("error = %v, want %v", err, heiferr.ErrEndOfData)
			}
		})
	}
}

func TestEmulationPrevention(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x03, 0xff}
	escaped := EscapeRBSP(raw)
	for i := 0; i+2 < len(escaped); i++ {
		if escaped[i] == 0 && escaped[i+1] == 0 && escaped[i+2] <= 2 {
			t.Fatalf("escaped stream contains start code prefix at %d: %x", i, escaped)
		}
	}
	if got := RBSP(escaped); !bytes.Equal(got, raw) {
		t.Errorf("RBSP(EscapeRBSP(x)) = %x, want %x", got, raw)
	}
}

func TestSPSMarshalParse(t *testing.T) {
	tests := []struct {
		name   string
		sps    SPS
		width  int
		height int
	}{
		{
			name:  "4:2:0 with conformance window",
			sps:   SPS{ProfileIDC: 1, LevelIDC: 93, ChromaFormatIDC: 1, PicWidth: 512, PicHeight: 512, ConformanceWindow: true, ConfWinRight: 3, ConfWinBottom: 1, BitDepthLuma: 8, BitDepthChroma: 8},
			width: 506, height: 510,
		},
		{
			name:  "4:4:4 10 bit",
			sps:   SPS{ProfileIDC: 4, LevelIDC: 120, ChromaFormatIDC: 3, PicWidth: 64, PicHeight: 48, BitDepthLuma: 10, BitDepthChroma: 10},
			width: 64, height: 48,
		},
		{
			name:  "monochrome",
			sps:   SPS{ProfileIDC: 4, ChromaFormatIDC: 0, PicWidth: 1, PicHeight: 1, BitDepthLuma: 8, BitDepthChroma: 8},
			width: 1, height: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSPS(tt.sps.Marshal())
			if err != nil {
				t.Fatalf("ParseSPS() error = %v", err)
			}
			if *got != tt.sps {
				t.Errorf("ParseSPS() = %+v, want %+v", *got, tt.sps)
			}
			if got.Width() != tt.width || got.Height() != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", got.Width(), got.Height(), tt.width, tt.height)
			}

			var cfg box.HvcCConfig
			got.Configure(&cfg)
			if cfg.ChromaFormat != tt.sps.ChromaFormatIDC || cfg.BitDepthLuma != tt.sps.BitDepthLuma {
				t.Errorf("Configure() = %+v", cfg)
			}
		})
	}
}

func TestParseSPSRejectsOtherUnits(t *testing.T) {
	if _, err := ParseSPS([]byte{0x40, 0x01, 0x00}); err == nil {
		t.Error("ParseSPS(VPS) succeeded")
	}
	sps := (&SPS{ChromaFormatIDC: 1, PicWidth: 8, PicHeight: 8, BitDepthLuma: 8, BitDepthChroma: 8}).Marshal()
	if _, err := ParseSPS(sps[:8]); err == nil {
		t.Error("ParseSPS(truncated) succeeded")
	}
}

func TestParseSPSShortUnit(t *testing.T) {
	for _, nal := range [][]byte{{0x42}, {0x42, 0x01}} {
		_, err := ParseSPS(nal)
		if !errors.Is(err, heiferr.ErrEndOfData) {
			t.Errorf("ParseSPS(%x) error = %v, want ErrEndOfData", nal, err)
		}
	}
}

// depthSEI builds the auxC subtype payload carrying one depth
// representation SEI message.
func depthSEI(build func(w *bitWriter)) []byte {
	var w bitWriter
	build(&w)
	w.writeTrailingBits()

	nal := []byte{NALPrefixSEI << 1, 1, seiDepthRepresentationInfo, byte(len(w.buf))}
	nal = append(nal, EscapeRBSP(w.buf)...)

	var out []byte
	out = binary.BigEndian.AppendUint32(out, uint32(4+len(nal)))
	return AppendLengthPrefixed(out, nal)
}

func TestParseDepthRepresentationInfo(t *testing.T) {
	data := depthSEI(func(w *bitWriter) {
		w.writeFlag(true)  // z_near
		w.writeFlag(true)  // z_far
		w.writeFlag(false) // d_min
		w.writeFlag(false) // d_max
		w.writeUE(uint32(DepthUniformZ))
		// z_near = 2^(32-31) * (1 + 0) = 2
		w.writeBits(0, 1)
		w.writeBits(32, 7)
		w.writeBits(0, 5)
		w.writeBits(0, 1)
		// z_far = -(2^(33-31) * (1 + 1/2)) = -6
		w.writeBits(1, 1)
		w.writeBits(33, 7)
		w.writeBits(0, 5)
		w.writeBits(1, 1)
	})

	info, err := ParseDepthRepresentationInfo(data)
	if err != nil {
		t.Fatalf("ParseDepthRepresentationInfo() error = %v", err)
	}
	if info == nil {
		t.Fatal("ParseDepthRepresentationInfo() = nil")
	}
	if info.RepresentationType != DepthUniformZ {
		t.Errorf("RepresentationType = %v, want %v", info.RepresentationType, DepthUniformZ)
	}
	if !info.HasZNear || math.Abs(info.ZNear-2) > 1e-9 {
		t.Errorf("ZNear = %v (present %v), want 2", info.ZNear, info.HasZNear)
	}
	if !info.HasZFar || math.Abs(info.ZFar+6) > 1e-9 {
		t.Errorf("ZFar = %v (present %v), want -6", info.ZFar, info.HasZFar)
	}
	if info.HasDMin || info.HasDMax {
		t.Error("unexpected disparity values")
	}
}

func TestParseDepthRepresentationInfoIgnoresOtherData(t *testing.T) {
	if info, err := ParseDepthRepresentationInfo(nil); info != nil || err != nil {
		t.Errorf("empty input = %v, %v", info, err)
	}
	if info, err := ParseDepthRepresentationInfo([]byte{0xff, 0xff, 0xff, 0xff, 0}); info != nil || err != nil {
		t.Errorf("bad length = %v, %v", info, err)
	}

	bad := depthSEI(func(w *bitWriter) {
		w.writeBits(0, 4)
		w.writeUE(7)
	})
	if _, err := ParseDepthRepresentationInfo(bad); err == nil {
		t.Error("representation type 7 accepted")
	}
}
