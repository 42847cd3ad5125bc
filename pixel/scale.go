package pixel

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleNearestNeighbor returns the image resampled to width x height by
// nearest neighbor selection. Chroma planes keep the image's subsampling.
func (img *Image) ScaleNearestNeighbor(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	out := New(width, height, img.colorspace, img.chroma)
	out.profile = img.profile

	for ch, in := range img.planes {
		pw, ph := planeSize(width, height, img.chroma, ch)
		dst, err := newPlane(pw, ph, in.BitDepth)
		if err != nil {
			return nil, err
		}
		if in.BytesPerSample() == 1 {
			scalePlane8(dst, in)
		} else {
			scalePlane16(dst, in)
		}
		out.planes[ch] = dst
	}
	return out, nil
}

// gray views an 8 bit plane as an *image.Gray without copying.
func (p *Plane) gray() *image.Gray {
	return &image.Gray{Pix: p.Data, Stride: p.Stride, Rect: image.Rect(0, 0, p.Width, p.Height)}
}

func scalePlane8(dst, src *Plane) {
	d := dst.gray()
	draw.NearestNeighbor.Scale(d, d.Bounds(), src.gray(), src.gray().Bounds(), draw.Src, nil)
}

func scalePlane16(dst, src *Plane) {
	for y := range dst.Height {
		sy := y * src.Height / dst.Height
		for x := range dst.Width {
			dst.setSample(x, y, src.sample(x*src.Width/dst.Width, sy))
		}
	}
}
