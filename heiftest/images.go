package heiftest

import (
	"fmt"
	"io"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/container"
	"github.com/gogpu/heif/hevc"
	"github.com/gogpu/heif/pixel"
)

// Pattern returns an 8 bit image whose samples depend on position, plane
// and seed, so that two patterns with different seeds never match.
// Monochrome chroma gives a monochrome image, anything else YCbCr.
func Pattern(width, height int, chroma pixel.Chroma, seed byte) *pixel.Image {
	cs := pixel.ColorspaceYCbCr
	if chroma == pixel.ChromaMonochrome {
		cs = pixel.ColorspaceMonochrome
	}
	img, err := pixel.NewWithPlanes(width, height, cs, chroma, 8)
	if err != nil {
		panic(fmt.Sprintf("heiftest: %v", err))
	}
	for i, ch := range planeOrder(chroma) {
		p, _ := img.Plane(ch)
		for y := range p.Height {
			row := p.Row(y)
			for x := range row {
				row[x] = byte(x+3*y) ^ seed + byte(i*85)
			}
		}
	}
	return img
}

// WithAlpha adds an 8 bit alpha plane to img, filled with a pattern
// derived from seed, and returns img.
func WithAlpha(img *pixel.Image, seed byte) *pixel.Image {
	if err := img.AddPlane(pixel.ChannelAlpha, img.Width(), img.Height(), 8); err != nil {
		panic(fmt.Sprintf("heiftest: %v", err))
	}
	p, _ := img.Plane(pixel.ChannelAlpha)
	for y := range p.Height {
		row := p.Row(y)
		for x := range row {
			row[x] = byte(2*x+y) + seed
		}
	}
	return img
}

// AddCodedImage encodes img with the stand-in codec and stores it as a new
// visible hvc1 item of s. The hvcC and ispe properties are set from the SPS
// the encoder emits.
func AddCodedImage(s *container.Store, img *pixel.Image) (container.ItemID, error) {
	enc := &encoder{plugin: New()}
	if err := enc.Encode(img, 0); err != nil {
		return 0, err
	}

	id := s.NewImageItem("hvc1")
	for {
		nal, err := enc.NextData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if hevc.UnitType(nal) == hevc.NALSPS {
			sps, err := hevc.ParseSPS(nal)
			if err != nil {
				return 0, err
			}
			cfg, err := s.CodecConfiguration(id)
			if err != nil {
				return 0, err
			}
			sps.Configure(&cfg)
			if err := s.SetCodecConfiguration(id, cfg); err != nil {
				return 0, err
			}
			s.SetSpatialExtent(id, uint32(sps.Width()), uint32(sps.Height()))
		}
		if hevc.IsParameterSet(hevc.UnitType(nal)) {
			err = s.AppendConfigurationUnit(id, nal)
		} else {
			err = s.AppendPayload(id, nal, true)
		}
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

// AddGrid stores a rows x columns grid item over tiles, which must be in
// row-major order. The tiles are hidden.
func AddGrid(s *container.Store, rows, columns int, width, height uint32, tiles []container.ItemID) container.ItemID {
	id := s.NewImageItem("grid")
	g := box.Grid{Rows: rows, Columns: columns, OutputWidth: width, OutputHeight: height}
	_ = s.AppendPayload(id, g.Marshal(), false)
	s.SetSpatialExtent(id, width, height)
	s.AddReference(id, "dimg", tiles)
	for _, t := range tiles {
		s.SetHidden(t, true)
	}
	return id
}

// AddOverlay stores an iovl item compositing refs at the given offsets.
func AddOverlay(s *container.Store, o box.Overlay, refs []container.ItemID) container.ItemID {
	id := s.NewImageItem("iovl")
	_ = s.AppendPayload(id, o.Marshal(), false)
	s.SetSpatialExtent(id, o.Width, o.Height)
	s.AddReference(id, "dimg", refs)
	return id
}
