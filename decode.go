package heif

import (
	"slices"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/pixel"
)

// DecodeImage decodes the image id, attaches its alpha channel and applies
// its transformations unless opts says otherwise. A nil opts uses the
// defaults.
func (c *Context) DecodeImage(id ItemID, opts *DecodingOptions) (*pixel.Image, error) {
	if opts == nil {
		opts = &DecodingOptions{}
	}
	if _, err := c.Image(id); err != nil {
		return nil, err
	}
	return c.decodeImage(id, opts, nil)
}

// DecodeImageAs decodes like DecodeImage and converts the result to cs and
// chroma. Undefined values keep what the decoder produced.
func (c *Context) DecodeImageAs(id ItemID, cs pixel.Colorspace, chroma pixel.Chroma, opts *DecodingOptions) (*pixel.Image, error) {
	img, err := c.DecodeImage(id, opts)
	if err != nil {
		return nil, err
	}
	return pixel.Convert(img, cs, chroma)
}

// decodeImage is the single entry point of every decode, nested ones
// included. chain lists the items currently being decoded above id.
func (c *Context) decodeImage(id ItemID, opts *DecodingOptions, chain []ItemID) (*pixel.Image, error) {
	if slices.Contains(chain, id) {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidDerivedImage,
			"item %d is derived from itself", id)
	}
	if len(chain) >= c.opts.maxDepth {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidDerivedImage,
			"derivation chain at item %d is deeper than %d", id, c.opts.maxDepth)
	}
	// Clip forces a copy, so parallel tiles never share a backing array.
	chain = append(slices.Clip(chain), id)

	info, ok := c.store.ItemInfo(id)
	if !ok {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
			"item %d does not exist", id)
	}

	var (
		img *pixel.Image
		err error
	)
	switch info.Type {
	case ItemTypeHEVC:
		img, err = c.decodeCoded(id, CompressionHEVC)
	case ItemTypeGrid:
		img, err = c.decodeGrid(id, opts, chain)
	case ItemTypeIdentity:
		img, err = c.decodeIdentical(id, opts, chain)
	case ItemTypeOverlay:
		img, err = c.decodeOverlay(id, opts, chain)
	default:
		err = heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedImageType,
			"cannot decode item %d of type %q", id, info.Type)
	}
	if err != nil {
		return nil, err
	}

	if img, err = c.attachAlpha(id, img, opts, chain); err != nil {
		return nil, err
	}
	if opts.IgnoreTransformations {
		return img, nil
	}
	return applyTransforms(img, c.store.Properties(id))
}

// decodeCoded runs the coded payload of id through a decoder plugin.
func (c *Context) decodeCoded(id ItemID, format CompressionFormat) (*pixel.Image, error) {
	plugin, err := c.decoderFor(format)
	if err != nil {
		return nil, err
	}
	data, err := c.store.CompressedPayload(id)
	if err != nil {
		return nil, err
	}

	dec, err := plugin.NewDecoder()
	if err != nil {
		return nil, pluginError(heiferr.DecoderPluginError, plugin.Name(), err)
	}
	defer dec.Close()

	if err := dec.PushData(data); err != nil {
		return nil, pluginError(heiferr.DecoderPluginError, plugin.Name(), err)
	}
	img, err := dec.DecodeImage()
	if err != nil {
		return nil, pluginError(heiferr.DecoderPluginError, plugin.Name(), err)
	}
	if img == nil {
		return nil, heiferr.Newf(heiferr.DecoderPluginError, heiferr.Unspecified,
			"%s returned no image for item %d", plugin.Name(), id)
	}
	if profile := c.profileOf(id); profile != nil && img.ColorProfile() == nil {
		img.SetColorProfile(profile)
	}
	return img, nil
}

func (c *Context) profileOf(id ItemID) box.ColorProfile {
	if img, ok := c.images[id]; ok {
		return img.profile
	}
	return nil
}

// attachAlpha decodes the alpha image of id, if any, and moves its luma
// plane into the alpha plane of img. An alpha image of a different size is
// scaled to fit.
func (c *Context) attachAlpha(id ItemID, img *pixel.Image, opts *DecodingOptions, chain []ItemID) (*pixel.Image, error) {
	rec, ok := c.images[id]
	if !ok || rec.alpha == 0 {
		return img, nil
	}
	alpha, err := c.decodeImage(rec.alpha, opts, chain)
	if err != nil {
		return nil, err
	}
	if alpha.Width() != img.Width() || alpha.Height() != img.Height() {
		if alpha, err = alpha.ScaleNearestNeighbor(img.Width(), img.Height()); err != nil {
			return nil, err
		}
	}
	if err := img.TransferPlaneFrom(alpha, pixel.ChannelY, pixel.ChannelAlpha); err != nil {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
			"alpha image %d: %v", rec.alpha, err)
	}
	return img, nil
}

// LumaBitsPerPixel returns the luma bit depth of the coded image behind id.
func (c *Context) LumaBitsPerPixel(id ItemID) (int, error) {
	cfg, err := c.codedConfiguration(id)
	if err != nil {
		return 0, err
	}
	return int(cfg.BitDepthLuma), nil
}

// ChromaBitsPerPixel returns the chroma bit depth of the coded image behind
// id.
func (c *Context) ChromaBitsPerPixel(id ItemID) (int, error) {
	cfg, err := c.codedConfiguration(id)
	if err != nil {
		return 0, err
	}
	return int(cfg.BitDepthChroma), nil
}

func (c *Context) codedConfiguration(id ItemID) (box.HvcCConfig, error) {
	child, err := c.NonVirtualChild(id)
	if err != nil {
		return box.HvcCConfig{}, err
	}
	for _, p := range c.store.Properties(child) {
		if h, ok := p.(*box.HvcC); ok {
			return h.Config, nil
		}
	}
	return box.HvcCConfig{}, heiferr.Newf(heiferr.InvalidInput, heiferr.NoHvcCBox,
		"no hvcC property in item %d", child)
}
