package heif

import (
	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/pixel"
)

// applyTransforms applies the irot, imir and clap properties of an image in
// property order.
func applyTransforms(img *pixel.Image, props []box.Property) (*pixel.Image, error) {
	for _, p := range props {
		var err error
		switch p := p.(type) {
		case box.Irot:
			img, err = img.RotateCCW(p.Angle)
		case box.Imir:
			img.Mirror(p.Axis)
		case box.Clap:
			img, err = cropToCleanAperture(img, p)
		}
		if err != nil {
			return nil, err
		}
	}
	return img, nil
}

// cropToCleanAperture crops img to clap, clamping the aperture to the image.
func cropToCleanAperture(img *pixel.Image, clap box.Clap) (*pixel.Image, error) {
	w, h := img.Width(), img.Height()
	if !clap.Width.IsValid() || !clap.Height.IsValid() ||
		!clap.HorizOffset.IsValid() || !clap.VertOffset.IsValid() {
		return nil, heiferr.New(heiferr.InvalidInput, heiferr.InvalidCleanAperture,
			"clean aperture with zero denominator")
	}

	left := max(clap.Left(w), 0)
	right := min(clap.Right(w), w-1)
	top := max(clap.Top(h), 0)
	bottom := min(clap.Bottom(h), h-1)

	if left >= right || top >= bottom {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidCleanAperture,
			"clean aperture (%d,%d)-(%d,%d) is empty for a %dx%d image", left, top, right, bottom, w, h)
	}
	return img.Crop(left, right, top, bottom)
}
