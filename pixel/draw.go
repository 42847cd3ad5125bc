package pixel

import (
	"github.com/gogpu/heif/heiferr"
)

// FillRGB16 fills the R, G, B and Alpha planes that exist with the given
// 16 bit values, scaled down to each plane's bit depth.
func (img *Image) FillRGB16(r, g, b, a uint16) error {
	if img.colorspace != ColorspaceRGB {
		return heiferr.New(heiferr.UsageError, heiferr.InvalidParameterValue,
			"FillRGB16 needs an RGB image")
	}
	for _, f := range [...]struct {
		ch Channel
		v  uint16
	}{{ChannelR, r}, {ChannelG, g}, {ChannelB, b}, {ChannelAlpha, a}} {
		p, ok := img.planes[f.ch]
		if !ok {
			continue
		}
		fillPlane(p, f.v>>(16-p.BitDepth))
	}
	return nil
}

// Overlay draws src onto img with its top-left corner at (dx, dy). Only
// channels present in both images are drawn. When src has an alpha plane,
// its samples blend src over img.
//
// Both images must use the same colorspace and 4:4:4 or RGB planes of equal
// bit depth. An src lying entirely outside img is reported as
// OverlayImageOutsideOfCanvas and leaves img unchanged.
func (img *Image) Overlay(src *Image, dx, dy int) error {
	alpha, hasAlpha := src.planes[ChannelAlpha]

	// Clip once against the canvas; all overlaid planes share the geometry.
	inX0, inY0 := max(0, -dx), max(0, -dy)
	inX1, inY1 := min(src.width, img.width-dx), min(src.height, img.height-dy)
	if inX0 >= inX1 || inY0 >= inY1 {
		return heiferr.New(heiferr.InvalidInput, heiferr.OverlayImageOutsideOfCanvas,
			"Overlay image outside of canvas area")
	}

	for ch, in := range src.planes {
		if ch == ChannelAlpha {
			continue
		}
		out, ok := img.planes[ch]
		if !ok {
			continue
		}
		if in.BitDepth != out.BitDepth {
			return heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedColorConversion,
				"overlay bit depth %d does not match canvas bit depth %d", in.BitDepth, out.BitDepth)
		}
		x1 := min(inX1, in.Width, out.Width-dx)
		y1 := min(inY1, in.Height, out.Height-dy)
		if inX0 >= x1 || inY0 >= y1 {
			continue
		}

		if !hasAlpha || alpha.BitDepth != in.BitDepth {
			bps := in.BytesPerSample()
			for y := inY0; y < y1; y++ {
				srcRow := in.Row(y)[inX0*bps : x1*bps]
				dstRow := out.Row(y + dy)
				copy(dstRow[(inX0+dx)*bps:], srcRow)
			}
			continue
		}

		maxVal := uint32(1)<<in.BitDepth - 1
		for y := inY0; y < y1; y++ {
			for x := inX0; x < x1; x++ {
				a := uint32(alpha.sample(x, y))
				s := uint32(in.sample(x, y))
				d := uint32(out.sample(x+dx, y+dy))
				out.setSample(x+dx, y+dy, uint16((s*a+d*(maxVal-a)+maxVal/2)/maxVal))
			}
		}
	}
	return nil
}
