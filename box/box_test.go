package box

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/heif/heiferr"
)

// =============================================================================
// Grid
// =============================================================================

func TestParseGrid(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Grid
		wantErr error
	}{
		{
			name: "16 bit fields",
			data: []byte{0, 0, 1, 2, 0x04, 0x00, 0x03, 0x00},
			want: Grid{Rows: 2, Columns: 3, OutputWidth: 1024, OutputHeight: 768},
		},
		{
			name: "32 bit fields",
			data: []byte{0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 16},
			want: Grid{Rows: 1, Columns: 1, OutputWidth: 65536, OutputHeight: 16},
		},
		{
			name:    "too short",
			data:    []byte{0, 0, 1, 1, 0, 1, 0},
			wantErr: heiferr.ErrInvalidGridData,
		},
		{
			name:    "32 bit truncated",
			data:    []byte{0, 1, 1, 1, 0, 0, 0, 1, 0, 0},
			wantErr: heiferr.ErrInvalidGridData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGrid(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseGrid() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseGrid() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGridMarshal(t *testing.T) {
	for _, g := range []Grid{
		{Rows: 2, Columns: 2, OutputWidth: 1024, OutputHeight: 1024},
		{Rows: 256, Columns: 1, OutputWidth: 70000, OutputHeight: 20},
	} {
		got, err := ParseGrid(g.Marshal())
		if err != nil {
			t.Fatalf("ParseGrid(Marshal()) error = %v", err)
		}
		if got != g {
			t.Errorf("ParseGrid(Marshal()) = %+v, want %+v", got, g)
		}
	}
}

// =============================================================================
// Overlay
// =============================================================================

func TestParseOverlay(t *testing.T) {
	data := []byte{
		0, 0, // version, flags
		0xff, 0xff, 0x80, 0x00, 0x00, 0x00, 0xff, 0xff, // background
		0x01, 0x00, 0x00, 0x80, // 256 x 128
		0x00, 0x10, 0xff, 0xf0, // (16, -16)
		0x00, 0x00, 0x00, 0x00, // (0, 0)
	}

	o, err := ParseOverlay(data, 2)
	if err != nil {
		t.Fatalf("ParseOverlay() error = %v", err)
	}
	if o.Width != 256 || o.Height != 128 {
		t.Errorf("canvas = %dx%d, want 256x128", o.Width, o.Height)
	}
	if o.BackgroundColor != [4]uint16{0xffff, 0x8000, 0, 0xffff} {
		t.Errorf("BackgroundColor = %v", o.BackgroundColor)
	}
	if len(o.Offsets) != 2 || o.Offsets[0] != (Offset{16, -16}) {
		t.Errorf("Offsets = %v", o.Offsets)
	}

	if _, err := ParseOverlay(data, 3); !errors.Is(err, heiferr.ErrInvalidOverlayData) {
		t.Errorf("ParseOverlay(too many images) error = %v, want %v", err, heiferr.ErrInvalidOverlayData)
	}

	bad := append([]byte{1}, data[1:]...)
	if _, err := ParseOverlay(bad, 2); !errors.Is(err, heiferr.ErrUnsupportedDataVersion) {
		t.Errorf("ParseOverlay(version 1) error = %v, want %v", err, heiferr.ErrUnsupportedDataVersion)
	}
}

func TestOverlayMarshalLargeOffsets(t *testing.T) {
	o := Overlay{
		BackgroundColor: [4]uint16{1, 2, 3, 4},
		Width:           100,
		Height:          100,
		Offsets:         []Offset{{X: -40000, Y: 5}},
	}
	got, err := ParseOverlay(o.Marshal(), 1)
	if err != nil {
		t.Fatalf("ParseOverlay() error = %v", err)
	}
	if got.Flags&1 == 0 {
		t.Error("expected 32 bit field flag")
	}
	if got.Offsets[0] != o.Offsets[0] {
		t.Errorf("offset = %v, want %v", got.Offsets[0], o.Offsets[0])
	}
}

// =============================================================================
// Properties
// =============================================================================

func TestClapRounding(t *testing.T) {
	tests := []struct {
		name                     string
		clap                     Clap
		w, h                     int
		left, right, top, bottom int
	}{
		{
			name: "centered crop",
			clap: Clap{NewFraction(100, 1), NewFraction(50, 1), NewFraction(0, 1), NewFraction(0, 1)},
			w:    200, h: 100,
			left: 50, right: 149, top: 25, bottom: 74,
		},
		{
			name: "offset crop",
			clap: Clap{NewFraction(10, 1), NewFraction(10, 1), NewFraction(-5, 1), NewFraction(5, 1)},
			w:    40, h: 40,
			left: 10, right: 19, top: 20, bottom: 29,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clap.Left(tt.w); got != tt.left {
				t.Errorf("Left() = %d, want %d", got, tt.left)
			}
			if got := tt.clap.Right(tt.w); got != tt.right {
				t.Errorf("Right() = %d, want %d", got, tt.right)
			}
			if got := tt.clap.Top(tt.h); got != tt.top {
				t.Errorf("Top() = %d, want %d", got, tt.top)
			}
			if got := tt.clap.Bottom(tt.h); got != tt.bottom {
				t.Errorf("Bottom() = %d, want %d", got, tt.bottom)
			}
		})
	}
}

func TestPropertyMarshalParse(t *testing.T) {
	hvcc := NewHvcC()
	hvcc.Config.GeneralProfileIDC = 1
	hvcc.Config.GeneralLevelIDC = 90
	hvcc.AppendNAL([]byte{0x40, 0x01, 0xaa})
	hvcc.AppendNAL([]byte{0x42, 0x01, 0xbb, 0xcc})

	props := []Property{
		Ispe{Width: 640, Height: 480},
		Irot{Angle: 270},
		Imir{Axis: MirrorHorizontal},
		Clap{NewFraction(3, 2), NewFraction(7, 1), NewFraction(-1, 2), NewFraction(0, 1)},
		Pixi{BitsPerChannel: []uint8{8, 8, 8}},
		AuxC{AuxType: "urn:mpeg:hevc:2015:auxid:1"},
		Colr{Profile: &NclxProfile{ColourPrimaries: 1, TransferCharacteristics: 13, MatrixCoefficients: 6, FullRange: true}},
	}

	for _, p := range props {
		t.Run(p.BoxType(), func(t *testing.T) {
			raw := MarshalProperty(p)
			if string(raw[4:8]) != p.BoxType() {
				t.Fatalf("box type = %q, want %q", raw[4:8], p.BoxType())
			}
			got, err := ParseProperty(p.BoxType(), raw[8:])
			if err != nil {
				t.Fatalf("ParseProperty() error = %v", err)
			}
			if !bytes.Equal(MarshalProperty(got), raw) {
				t.Errorf("re-marshal differs for %T", p)
			}
		})
	}

	raw := MarshalProperty(hvcc)
	got, err := ParseProperty("hvcC", raw[8:])
	if err != nil {
		t.Fatalf("ParseProperty(hvcC) error = %v", err)
	}
	h := got.(*HvcC)
	if h.Config.GeneralLevelIDC != 90 || h.Config.ChromaFormat != 1 || h.Config.BitDepthLuma != 8 {
		t.Errorf("hvcC config = %+v", h.Config)
	}
	if len(h.Headers()) != 2 || !bytes.Equal(h.Headers()[1], []byte{0x42, 0x01, 0xbb, 0xcc}) {
		t.Errorf("hvcC headers = %x", h.Headers())
	}
}

func TestParsePropertyErrors(t *testing.T) {
	if _, err := ParseProperty("pixi", []byte{0, 0, 0, 0, 3, 8}); !errors.Is(err, heiferr.ErrInvalidPixiBox) {
		t.Errorf("truncated pixi error = %v", err)
	}
	if _, err := ParseProperty("ispe", []byte{0, 0, 0, 0, 1}); !errors.Is(err, heiferr.ErrEndOfData) {
		t.Errorf("truncated ispe error = %v", err)
	}
	p, err := ParseProperty("zzzz", []byte{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if u, ok := p.(Unknown); !ok || u.Type != "zzzz" {
		t.Errorf("ParseProperty(unknown) = %#v", p)
	}
}
