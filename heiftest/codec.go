// Package heiftest provides a lossless stand-in HEVC codec and image
// helpers for tests.
//
// The codec frames raw planes in the NAL units a real encoder emits (VPS,
// SPS, PPS and one IDR slice), so container and graph code see the same
// unit sequence as with libheif. It is not an HEVC codec: the slice payload
// is the uncompressed planes.
package heiftest

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gogpu/heif"
	"github.com/gogpu/heif/hevc"
	"github.com/gogpu/heif/pixel"
)

// nalIDR is IDR_N_LP.
const nalIDR uint8 = 20

var (
	vpsUnit = []byte{hevc.NALVPS << 1, 1, 0x0c, 0x01, 0xff, 0xff}
	ppsUnit = []byte{hevc.NALPPS << 1, 1, 0xc1, 0x72, 0xb4}
)

// Plugin is both a decoder and an encoder plugin for CompressionHEVC.
type Plugin struct {
	// Priority is returned by SupportsFormat; 0 means 100.
	Priority int

	decodes atomic.Int64
	encodes atomic.Int64
}

// New returns a Plugin with the default priority.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string { return "heiftest" }

func (p *Plugin) SupportsFormat(f heif.CompressionFormat) int {
	if f != heif.CompressionHEVC {
		return 0
	}
	if p.Priority > 0 {
		return p.Priority
	}
	return 100
}

func (p *Plugin) CompressionFormat() heif.CompressionFormat { return heif.CompressionHEVC }

func (p *Plugin) NewDecoder() (heif.Decoder, error) {
	return &decoder{plugin: p}, nil
}

func (p *Plugin) NewEncoder() (heif.EncoderHandle, error) {
	return &encoder{plugin: p}, nil
}

// Decodes returns how many images the plugin has decoded.
func (p *Plugin) Decodes() int { return int(p.decodes.Load()) }

// Encodes returns how many images the plugin has encoded.
func (p *Plugin) Encodes() int { return int(p.encodes.Load()) }

// planeOrder lists the planes carried by the slice payload.
func planeOrder(chroma pixel.Chroma) []pixel.Channel {
	if chroma == pixel.ChromaMonochrome {
		return []pixel.Channel{pixel.ChannelY}
	}
	return []pixel.Channel{pixel.ChannelY, pixel.ChannelCb, pixel.ChannelCr}
}

// =============================================================================
// Encoder
// =============================================================================

type encoder struct {
	plugin *Plugin
	units  [][]byte
}

// QueryInputColorspace keeps YCbCr and monochrome input and asks for 4:2:0
// YCbCr otherwise.
func (e *encoder) QueryInputColorspace(cs pixel.Colorspace, chroma pixel.Chroma) (pixel.Colorspace, pixel.Chroma) {
	switch {
	case cs == pixel.ColorspaceMonochrome || chroma == pixel.ChromaMonochrome:
		return pixel.ColorspaceMonochrome, pixel.ChromaMonochrome
	case cs == pixel.ColorspaceYCbCr:
		return cs, chroma
	}
	return pixel.ColorspaceYCbCr, pixel.Chroma420
}

func (e *encoder) Encode(img *pixel.Image, _ heif.InputClass) error {
	lumaDepth := img.BitDepth(pixel.ChannelY)
	if lumaDepth < 8 {
		return fmt.Errorf("heiftest: luma plane missing or below 8 bits (%d)", lumaDepth)
	}
	chromaDepth := lumaDepth
	if img.Chroma() != pixel.ChromaMonochrome {
		chromaDepth = img.BitDepth(pixel.ChannelCb)
		if chromaDepth < 8 {
			return fmt.Errorf("heiftest: chroma plane missing or below 8 bits (%d)", chromaDepth)
		}
	}

	sps := hevc.SPS{
		ProfileIDC:                1,
		ProfileCompatibilityFlags: 0x60000000,
		LevelIDC:                  90,
		ChromaFormatIDC:           img.Chroma().FormatIDC(),
		PicWidth:                  uint32(img.Width()),
		PicHeight:                 uint32(img.Height()),
		BitDepthLuma:              uint8(lumaDepth),
		BitDepthChroma:            uint8(chromaDepth),
	}

	var raw []byte
	for _, ch := range planeOrder(img.Chroma()) {
		p, ok := img.Plane(ch)
		if !ok {
			return fmt.Errorf("heiftest: image has no %v plane", ch)
		}
		for y := range p.Height {
			raw = append(raw, p.Row(y)...)
		}
	}
	raw = append(raw, 0x80) // rbsp_stop_one_bit

	slice := append([]byte{nalIDR << 1, 1}, hevc.EscapeRBSP(raw)...)
	e.units = [][]byte{vpsUnit, sps.Marshal(), ppsUnit, slice}
	e.plugin.encodes.Add(1)
	return nil
}

func (e *encoder) NextData() ([]byte, error) {
	if len(e.units) == 0 {
		return nil, io.EOF
	}
	u := e.units[0]
	e.units = e.units[1:]
	return u, nil
}

func (e *encoder) Close() error {
	e.units = nil
	return nil
}

// =============================================================================
// Decoder
// =============================================================================

type decoder struct {
	plugin *Plugin
	data   []byte
}

func (d *decoder) PushData(data []byte) error {
	d.data = append(d.data, data...)
	return nil
}

func (d *decoder) DecodeImage() (*pixel.Image, error) {
	units, err := hevc.SplitLengthPrefixed(d.data)
	if err != nil {
		return nil, err
	}

	var (
		sps     *hevc.SPS
		payload []byte
	)
	for _, u := range units {
		switch hevc.UnitType(u) {
		case hevc.NALSPS:
			if sps, err = hevc.ParseSPS(u); err != nil {
				return nil, err
			}
		case nalIDR:
			if len(u) < 2 {
				return nil, hevc.ErrTruncated
			}
			payload = hevc.RBSP(u[2:])
		}
	}
	if sps == nil {
		return nil, errors.New("heiftest: no SPS before the slice")
	}
	if len(payload) == 0 || payload[len(payload)-1] != 0x80 {
		return nil, errors.New("heiftest: missing or unterminated slice")
	}
	payload = payload[:len(payload)-1]

	chroma := pixel.ChromaFromFormatIDC(sps.ChromaFormatIDC)
	cs := pixel.ColorspaceYCbCr
	if chroma == pixel.ChromaMonochrome {
		cs = pixel.ColorspaceMonochrome
	}
	w, h := sps.Width(), sps.Height()
	img := pixel.New(w, h, cs, chroma)
	for _, ch := range planeOrder(chroma) {
		depth := int(sps.BitDepthLuma)
		if ch.IsChroma() {
			depth = int(sps.BitDepthChroma)
		}
		if err := img.AddPlane(ch, w, h, depth); err != nil {
			return nil, err
		}
		p, _ := img.Plane(ch)
		n := p.Width * p.BytesPerSample()
		for y := range p.Height {
			if len(payload) < n {
				return nil, hevc.ErrTruncated
			}
			copy(p.Row(y), payload[:n])
			payload = payload[n:]
		}
	}
	d.plugin.decodes.Add(1)
	return img, nil
}

func (d *decoder) Close() error {
	d.data = nil
	return nil
}

// =============================================================================
// Failing plugin
// =============================================================================

// FailingPlugin decodes nothing: every DecodeImage call returns Err.
type FailingPlugin struct {
	Err error
}

func (p FailingPlugin) Name() string { return "heiftest-failing" }

func (p FailingPlugin) SupportsFormat(f heif.CompressionFormat) int {
	if f == heif.CompressionHEVC {
		return 1
	}
	return 0
}

func (p FailingPlugin) NewDecoder() (heif.Decoder, error) {
	return failingDecoder(p), nil
}

type failingDecoder FailingPlugin

func (failingDecoder) PushData([]byte) error                { return nil }
func (d failingDecoder) DecodeImage() (*pixel.Image, error) { return nil, d.Err }
func (failingDecoder) Close() error                         { return nil }
