package pixel

import (
	"fmt"
	"image"
	"image/color"
)

// ToImage copies img into a standard library image.
//
// 8 bit YCbCr maps to *image.YCbCr (or *image.NYCbCrA with alpha),
// monochrome to *image.Gray or *image.Gray16, RGB to *image.NRGBA or
// *image.NRGBA64. Other layouts must be converted first.
func (img *Image) ToImage() (image.Image, error) {
	rect := image.Rect(0, 0, img.width, img.height)

	switch {
	case img.colorspace == ColorspaceYCbCr && img.chroma != ChromaMonochrome:
		ratio, ok := subsampleRatio(img.chroma)
		if !ok || img.BitDepth(ChannelY) != 8 {
			return nil, fmt.Errorf("pixel: no standard image for %d bit %v", img.BitDepth(ChannelY), img.chroma)
		}
		var ycc *image.YCbCr
		var out image.Image
		if img.HasAlpha() {
			a := image.NewNYCbCrA(rect, ratio)
			copyPlane(a.A, a.AStride, img.planes[ChannelAlpha])
			ycc, out = &a.YCbCr, a
		} else {
			ycc = image.NewYCbCr(rect, ratio)
			out = ycc
		}
		copyPlane(ycc.Y, ycc.YStride, img.planes[ChannelY])
		copyPlane(ycc.Cb, ycc.CStride, img.planes[ChannelCb])
		copyPlane(ycc.Cr, ycc.CStride, img.planes[ChannelCr])
		return out, nil

	case img.colorspace == ColorspaceMonochrome || img.colorspace == ColorspaceYCbCr:
		y, ok := img.planes[ChannelY]
		if !ok {
			return nil, ErrMissingPlane
		}
		if img.HasAlpha() {
			rgb, err := Convert(img, ColorspaceRGB, Chroma444)
			if err != nil {
				return nil, err
			}
			return rgb.ToImage()
		}
		if y.BitDepth <= 8 {
			g := image.NewGray(rect)
			copyPlane(g.Pix, g.Stride, y)
			return g, nil
		}
		g := image.NewGray16(rect)
		for py := range img.height {
			for px := range img.width {
				g.SetGray16(px, py, color.Gray16{Y: scaleTo16(y.sample(px, py), y.BitDepth)})
			}
		}
		return g, nil

	case img.colorspace == ColorspaceRGB:
		r, g, b := img.planes[ChannelR], img.planes[ChannelG], img.planes[ChannelB]
		if r == nil || g == nil || b == nil {
			return nil, ErrMissingPlane
		}
		a := img.planes[ChannelAlpha]
		if r.BitDepth == 8 {
			out := image.NewNRGBA(rect)
			for y := range img.height {
				for x := range img.width {
					c := color.NRGBA{R: uint8(r.sample(x, y)), G: uint8(g.sample(x, y)), B: uint8(b.sample(x, y)), A: 0xff}
					if a != nil {
						c.A = uint8(a.sample(x, y))
					}
					out.SetNRGBA(x, y, c)
				}
			}
			return out, nil
		}
		out := image.NewNRGBA64(rect)
		for y := range img.height {
			for x := range img.width {
				c := color.NRGBA64{
					R: scaleTo16(r.sample(x, y), r.BitDepth),
					G: scaleTo16(g.sample(x, y), g.BitDepth),
					B: scaleTo16(b.sample(x, y), b.BitDepth),
					A: 0xffff,
				}
				if a != nil {
					c.A = scaleTo16(a.sample(x, y), a.BitDepth)
				}
				out.SetNRGBA64(x, y, c)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("pixel: no standard image for %v %v", img.colorspace, img.chroma)
}

// FromImage copies a standard library image into a planar image.
// *image.YCbCr with 4:2:0, 4:2:2 or 4:4:4 sampling and *image.Gray keep their
// layout; everything else becomes 8 bit RGB, with an alpha plane unless the
// image is opaque.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidDimensions
	}

	switch s := src.(type) {
	case *image.YCbCr:
		if chroma, ok := chromaOf(s.SubsampleRatio); ok {
			out, err := NewWithPlanes(w, h, ColorspaceYCbCr, chroma, 8)
			if err != nil {
				return nil, err
			}
			yOff := s.YOffset(b.Min.X, b.Min.Y)
			cOff := s.COffset(b.Min.X, b.Min.Y)
			fromPlane(out.planes[ChannelY], s.Y[yOff:], s.YStride)
			fromPlane(out.planes[ChannelCb], s.Cb[cOff:], s.CStride)
			fromPlane(out.planes[ChannelCr], s.Cr[cOff:], s.CStride)
			return out, nil
		}
	case *image.Gray:
		out, err := NewWithPlanes(w, h, ColorspaceMonochrome, ChromaMonochrome, 8)
		if err != nil {
			return nil, err
		}
		fromPlane(out.planes[ChannelY], s.Pix[s.PixOffset(b.Min.X, b.Min.Y):], s.Stride)
		return out, nil
	}

	out, err := NewWithPlanes(w, h, ColorspaceRGB, Chroma444, 8)
	if err != nil {
		return nil, err
	}
	r, g, bl := out.planes[ChannelR], out.planes[ChannelG], out.planes[ChannelB]
	alpha := make([]byte, w*h)
	opaque := true
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			off := y*r.Stride + x
			r.Data[off], g.Data[off], bl.Data[off] = c.R, c.G, c.B
			alpha[y*w+x] = c.A
			if c.A != 0xff {
				opaque = false
			}
		}
	}
	if !opaque {
		if err := out.AddPlane(ChannelAlpha, w, h, 8); err != nil {
			return nil, err
		}
		copy(out.planes[ChannelAlpha].Data, alpha)
	}
	return out, nil
}

func subsampleRatio(c Chroma) (image.YCbCrSubsampleRatio, bool) {
	switch c {
	case Chroma420:
		return image.YCbCrSubsampleRatio420, true
	case Chroma422:
		return image.YCbCrSubsampleRatio422, true
	case Chroma444:
		return image.YCbCrSubsampleRatio444, true
	}
	return 0, false
}

func chromaOf(r image.YCbCrSubsampleRatio) (Chroma, bool) {
	switch r {
	case image.YCbCrSubsampleRatio420:
		return Chroma420, true
	case image.YCbCrSubsampleRatio422:
		return Chroma422, true
	case image.YCbCrSubsampleRatio444:
		return Chroma444, true
	}
	return ChromaUndefined, false
}

// copyPlane copies an 8 bit plane into a standard library pixel buffer.
func copyPlane(dst []byte, stride int, p *Plane) {
	for y := range p.Height {
		off := y * stride
		if off >= len(dst) {
			return
		}
		copy(dst[off:], p.Row(y))
	}
}

func fromPlane(p *Plane, src []byte, stride int) {
	for y := range p.Height {
		off := y * stride
		if off >= len(src) {
			return
		}
		copy(p.Row(y), src[off:])
	}
}

func scaleTo16(v uint16, bitDepth int) uint16 {
	if bitDepth >= 16 {
		return v
	}
	top := uint32(1)<<bitDepth - 1
	return uint16(uint32(v) * 0xffff / top)
}
