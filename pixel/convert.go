package pixel

import (
	"image/color"

	"github.com/gogpu/heif/heiferr"
)

// Convert returns img in the requested colorspace and chroma. The alpha
// plane, if any, is carried over. YCbCr uses full range BT.601
// coefficients, as in JFIF.
//
// Only 8 bit images are converted. When img already matches, it is returned
// unchanged.
func Convert(img *Image, cs Colorspace, chroma Chroma) (*Image, error) {
	if cs == ColorspaceUndefined {
		cs = img.colorspace
	}
	if chroma == ChromaUndefined {
		chroma = img.chroma
	}
	if cs == img.colorspace && chroma == img.chroma {
		return img, nil
	}

	for ch, p := range img.planes {
		if p.BitDepth != 8 {
			return nil, heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedColorConversion,
				"cannot convert %d bit %v plane", p.BitDepth, ch)
		}
	}

	var (
		out *Image
		err error
	)
	switch {
	case cs == ColorspaceRGB && chroma == Chroma444:
		out, err = toRGB(img)
	case cs == ColorspaceYCbCr && chroma != ChromaMonochrome:
		out, err = toYCbCr(img, chroma)
	case cs == ColorspaceMonochrome || (cs == ColorspaceYCbCr && chroma == ChromaMonochrome):
		out, err = toMonochrome(img, cs)
	default:
		err = unsupportedConversion(img, cs, chroma)
	}
	if err != nil {
		return nil, err
	}

	if img.HasAlpha() {
		if err := out.CopyPlaneFrom(img, ChannelAlpha, ChannelAlpha); err != nil {
			return nil, err
		}
	}
	out.profile = img.profile
	return out, nil
}

func unsupportedConversion(img *Image, cs Colorspace, chroma Chroma) error {
	return heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedColorConversion,
		"no conversion from %v %v to %v %v", img.colorspace, img.chroma, cs, chroma)
}

// chromaAt returns the Cb and Cr samples covering luma position (x, y).
func chromaAt(img *Image, cb, cr *Plane, x, y int) (uint8, uint8) {
	sh, sv := img.chroma.Subsampling()
	cx, cy := min(x/sh, cb.Width-1), min(y/sv, cb.Height-1)
	return cb.Data[cy*cb.Stride+cx], cr.Data[cy*cr.Stride+cx]
}

func toRGB(img *Image) (*Image, error) {
	out, err := NewWithPlanes(img.width, img.height, ColorspaceRGB, Chroma444, 8)
	if err != nil {
		return nil, err
	}
	r, g, b := out.planes[ChannelR], out.planes[ChannelG], out.planes[ChannelB]

	yp, ok := img.planes[ChannelY]
	if !ok || (img.colorspace != ColorspaceYCbCr && img.colorspace != ColorspaceMonochrome) {
		return nil, unsupportedConversion(img, ColorspaceRGB, Chroma444)
	}
	cb, hasCb := img.planes[ChannelCb]
	cr, hasCr := img.planes[ChannelCr]
	gray := img.colorspace == ColorspaceMonochrome || img.chroma == ChromaMonochrome || !hasCb || !hasCr

	for y := range img.height {
		for x := range img.width {
			lum := yp.Data[min(y, yp.Height-1)*yp.Stride+min(x, yp.Width-1)]
			off := y*r.Stride + x
			if gray {
				r.Data[off], g.Data[off], b.Data[off] = lum, lum, lum
				continue
			}
			u, v := chromaAt(img, cb, cr, x, y)
			r.Data[off], g.Data[off], b.Data[off] = color.YCbCrToRGB(lum, u, v)
		}
	}
	return out, nil
}

func toYCbCr(img *Image, chroma Chroma) (*Image, error) {
	out, err := NewWithPlanes(img.width, img.height, ColorspaceYCbCr, chroma, 8)
	if err != nil {
		return nil, err
	}
	yo, cbo, cro := out.planes[ChannelY], out.planes[ChannelCb], out.planes[ChannelCr]

	// Full resolution Cb/Cr, averaged down to the target layout below.
	full := make([][2]uint8, img.width*img.height)

	switch img.colorspace {
	case ColorspaceRGB:
		r, g, b := img.planes[ChannelR], img.planes[ChannelG], img.planes[ChannelB]
		if r == nil || g == nil || b == nil || img.chroma != Chroma444 {
			return nil, unsupportedConversion(img, ColorspaceYCbCr, chroma)
		}
		for y := range img.height {
			for x := range img.width {
				off := y*r.Stride + x
				lum, u, v := color.RGBToYCbCr(r.Data[off], g.Data[off], b.Data[off])
				yo.Data[y*yo.Stride+x] = lum
				full[y*img.width+x] = [2]uint8{u, v}
			}
		}
	case ColorspaceYCbCr, ColorspaceMonochrome:
		yp := img.planes[ChannelY]
		if yp == nil {
			return nil, unsupportedConversion(img, ColorspaceYCbCr, chroma)
		}
		cb, cr := img.planes[ChannelCb], img.planes[ChannelCr]
		for y := range img.height {
			copy(yo.Row(y), yp.Row(y))
			for x := range img.width {
				if cb == nil || cr == nil {
					full[y*img.width+x] = [2]uint8{128, 128}
					continue
				}
				u, v := chromaAt(img, cb, cr, x, y)
				full[y*img.width+x] = [2]uint8{u, v}
			}
		}
	default:
		return nil, unsupportedConversion(img, ColorspaceYCbCr, chroma)
	}

	sh, sv := chroma.Subsampling()
	for cy := range cbo.Height {
		for cx := range cbo.Width {
			var su, sv2, n int
			for dy := range sv {
				for dx := range sh {
					x, y := cx*sh+dx, cy*sv+dy
					if x >= img.width || y >= img.height {
						continue
					}
					c := full[y*img.width+x]
					su += int(c[0])
					sv2 += int(c[1])
					n++
				}
			}
			cbo.Data[cy*cbo.Stride+cx] = uint8((su + n/2) / n)
			cro.Data[cy*cro.Stride+cx] = uint8((sv2 + n/2) / n)
		}
	}
	return out, nil
}

func toMonochrome(img *Image, cs Colorspace) (*Image, error) {
	out, err := NewWithPlanes(img.width, img.height, cs, ChromaMonochrome, 8)
	if err != nil {
		return nil, err
	}
	yo := out.planes[ChannelY]

	switch img.colorspace {
	case ColorspaceRGB:
		r, g, b := img.planes[ChannelR], img.planes[ChannelG], img.planes[ChannelB]
		if r == nil || g == nil || b == nil {
			return nil, unsupportedConversion(img, cs, ChromaMonochrome)
		}
		for y := range img.height {
			for x := range img.width {
				off := y*r.Stride + x
				lum, _, _ := color.RGBToYCbCr(r.Data[off], g.Data[off], b.Data[off])
				yo.Data[y*yo.Stride+x] = lum
			}
		}
	case ColorspaceYCbCr, ColorspaceMonochrome:
		yp := img.planes[ChannelY]
		if yp == nil {
			return nil, unsupportedConversion(img, cs, ChromaMonochrome)
		}
		for y := range img.height {
			copy(yo.Row(y), yp.Row(y))
		}
	default:
		return nil, unsupportedConversion(img, cs, ChromaMonochrome)
	}
	return out, nil
}
