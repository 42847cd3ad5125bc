package pixel

import (
	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
)

// RotateCCW returns the image rotated counter-clockwise by angle degrees
// (0, 90, 180 or 270). Angle 0 returns img itself.
func (img *Image) RotateCCW(angle int) (*Image, error) {
	switch angle {
	case 0:
		return img, nil
	case 90, 180, 270:
	default:
		return nil, heiferr.Newf(heiferr.UsageError, heiferr.InvalidParameterValue,
			"rotation angle %d is not a multiple of 90", angle)
	}
	if angle != 180 && img.chroma == Chroma422 {
		return nil, heiferr.New(heiferr.UnsupportedFeature, heiferr.Unspecified,
			"rotating 4:2:2 images by 90 or 270 degrees is not supported")
	}

	w, h := img.width, img.height
	if angle != 180 {
		w, h = h, w
	}
	out := New(w, h, img.colorspace, img.chroma)
	out.profile = img.profile

	for ch, in := range img.planes {
		pw, ph := in.Width, in.Height
		if angle != 180 {
			pw, ph = ph, pw
		}
		dst, err := newPlane(pw, ph, in.BitDepth)
		if err != nil {
			return nil, err
		}
		rotatePlane(dst, in, angle)
		out.planes[ch] = dst
	}
	return out, nil
}

func rotatePlane(dst, src *Plane, angle int) {
	bps := src.BytesPerSample()
	for y := range src.Height {
		row := src.Row(y)
		for x := range src.Width {
			var ox, oy int
			switch angle {
			case 90:
				ox, oy = y, src.Width-1-x
			case 180:
				ox, oy = src.Width-1-x, src.Height-1-y
			case 270:
				ox, oy = src.Height-1-y, x
			}
			off := oy*dst.Stride + ox*bps
			copy(dst.Data[off:off+bps], row[x*bps:(x+1)*bps])
		}
	}
}

// Mirror flips the image in place.
func (img *Image) Mirror(axis box.MirrorAxis) {
	for _, p := range img.planes {
		if axis == box.MirrorHorizontal {
			mirrorRows(p)
		} else {
			mirrorColumns(p)
		}
	}
}

func mirrorRows(p *Plane) {
	tmp := make([]byte, p.Width*p.BytesPerSample())
	for top, bottom := 0, p.Height-1; top < bottom; top, bottom = top+1, bottom-1 {
		a, b := p.Row(top), p.Row(bottom)
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

func mirrorColumns(p *Plane) {
	bps := p.BytesPerSample()
	for y := range p.Height {
		row := p.Row(y)
		for l, r := 0, p.Width-1; l < r; l, r = l+1, r-1 {
			for i := range bps {
				row[l*bps+i], row[r*bps+i] = row[r*bps+i], row[l*bps+i]
			}
		}
	}
}

// Crop returns the region [left, right] x [top, bottom], bounds inclusive.
// The bounds must lie inside the image.
func (img *Image) Crop(left, right, top, bottom int) (*Image, error) {
	if left < 0 || top < 0 || right >= img.width || bottom >= img.height || left > right || top > bottom {
		return nil, heiferr.Newf(heiferr.UsageError, heiferr.InvalidParameterValue,
			"crop rectangle (%d,%d)-(%d,%d) outside %dx%d image", left, top, right, bottom, img.width, img.height)
	}

	w := right - left + 1
	h := bottom - top + 1
	out := New(w, h, img.colorspace, img.chroma)
	out.profile = img.profile

	for ch, in := range img.planes {
		sh, sv := 1, 1
		if ch.IsChroma() {
			sh, sv = img.chroma.Subsampling()
		}
		pw, ph := planeSize(w, h, img.chroma, ch)
		dst, err := newPlane(pw, ph, in.BitDepth)
		if err != nil {
			return nil, err
		}

		x0, y0 := left/sh, top/sv
		n := min(pw, in.Width-x0)
		bps := in.BytesPerSample()
		for y := range min(ph, in.Height-y0) {
			src := in.Row(y0 + y)[x0*bps : (x0+n)*bps]
			copy(dst.Row(y), src)
		}
		out.planes[ch] = dst
	}
	return out, nil
}
