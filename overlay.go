package heif

import (
	"errors"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/pixel"
)

// decodeOverlay composites the images an iovl item references onto an
// 8 bit RGB canvas filled with the background color.
func (c *Context) decodeOverlay(id ItemID, opts *DecodingOptions, chain []ItemID) (*pixel.Image, error) {
	data, err := c.store.CompressedPayload(id)
	if err != nil {
		return nil, err
	}
	refs := c.store.ReferencesOfType(id, refDerivedImage)
	overlay, err := box.ParseOverlay(data, len(refs))
	if err != nil {
		return nil, err
	}
	if len(overlay.Offsets) != len(refs) {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidOverlayData,
			"overlay %d has %d offsets for %d images", id, len(overlay.Offsets), len(refs))
	}

	width, height := int(overlay.Width), int(overlay.Height)
	if err := c.checkLimits(width, height); err != nil {
		return nil, err
	}

	canvas, err := pixel.NewWithPlanes(width, height, pixel.ColorspaceRGB, pixel.Chroma444, 8)
	if err != nil {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidOverlayData,
			"overlay %d canvas %dx%d: %v", id, width, height, err)
	}
	bg := overlay.BackgroundColor
	if err := canvas.FillRGB16(bg[0], bg[1], bg[2], bg[3]); err != nil {
		return nil, err
	}
	if profile := c.profileOf(id); profile != nil {
		canvas.SetColorProfile(profile)
	}

	for i, ref := range refs {
		img, err := c.decodeImage(ref, opts, chain)
		if err != nil {
			return nil, err
		}
		rgb, err := pixel.Convert(img, pixel.ColorspaceRGB, pixel.Chroma444)
		if err != nil {
			return nil, heiferr.Wrap(heiferr.UnsupportedFeature, heiferr.UnsupportedColorConversion, err)
		}

		off := overlay.Offsets[i]
		err = canvas.Overlay(rgb, int(off.X), int(off.Y))
		if errors.Is(err, heiferr.ErrOverlayImageOutsideOfCanvas) {
			c.log.Warn("heif: overlay image outside of canvas",
				"overlay", id, "image", ref, "x", off.X, "y", off.Y)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return canvas, nil
}
