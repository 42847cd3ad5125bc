package heif

import (
	"errors"
	"io"
	"slices"

	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/hevc"
	"github.com/gogpu/heif/pixel"
)

// Encoder wraps an EncoderPlugin. The plugin handle is created on first use
// and shared by every image encoded through the Encoder.
type Encoder struct {
	plugin EncoderPlugin
	handle EncoderHandle
}

// NewEncoder returns an Encoder for p.
func NewEncoder(p EncoderPlugin) (*Encoder, error) {
	if p == nil {
		return nil, heiferr.New(heiferr.UsageError, heiferr.InvalidParameterValue, "encoder plugin must not be nil")
	}
	return &Encoder{plugin: p}, nil
}

func (e *Encoder) Name() string                         { return e.plugin.Name() }
func (e *Encoder) CompressionFormat() CompressionFormat { return e.plugin.CompressionFormat() }

func (e *Encoder) open() (EncoderHandle, error) {
	if e.handle != nil {
		return e.handle, nil
	}
	h, err := e.plugin.NewEncoder()
	if err != nil {
		return nil, pluginError(heiferr.EncoderPluginError, e.plugin.Name(), err)
	}
	e.handle = h
	return h, nil
}

// Close releases the plugin handle, if one was created.
func (e *Encoder) Close() error {
	if e.handle == nil {
		return nil
	}
	err := e.handle.Close()
	e.handle = nil
	return err
}

// EncodeImage encodes img as a new hvc1 item and returns its Image. Normal
// images become top-level images, and the first one becomes the primary
// image unless one is set already. A nil opts uses NewEncodingOptions.
func (c *Context) EncodeImage(img *pixel.Image, enc *Encoder, opts *EncodingOptions, class InputClass) (*Image, error) {
	if img == nil || enc == nil {
		return nil, heiferr.New(heiferr.UsageError, heiferr.InvalidParameterValue, "image and encoder are required")
	}
	if opts == nil {
		opts = NewEncodingOptions()
	}
	if f := enc.CompressionFormat(); f != CompressionHEVC {
		return nil, heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedCodec,
			"cannot store %v images", f)
	}
	w, err := c.writer()
	if err != nil {
		return nil, err
	}
	handle, err := enc.open()
	if err != nil {
		return nil, err
	}

	id := w.NewImageItem(ItemTypeHEVC)
	node := newImage(id, ItemTypeHEVC)
	c.images[id] = node

	input := img
	if cs, chroma := handle.QueryInputColorspace(img.Colorspace(), img.Chroma()); cs != img.Colorspace() || chroma != img.Chroma() {
		if input, err = pixel.Convert(img, cs, chroma); err != nil {
			return nil, err
		}
	}
	node.width, node.height = input.Width(), input.Height()
	node.ispeWidth, node.ispeHeight = node.width, node.height

	if p := img.ColorProfile(); p != nil {
		w.SetColorProfile(id, p)
		node.profile = p
	}

	if opts.SaveAlphaChannel && img.HasAlpha() {
		if err := c.encodeAlpha(w, node, img, enc, opts); err != nil {
			return nil, err
		}
	}

	c.log.Debug("heif: encoding image", "item", id, "encoder", enc.Name(),
		"width", node.width, "height", node.height, "class", int(class))

	if err := handle.Encode(input, class); err != nil {
		return nil, pluginError(heiferr.EncoderPluginError, enc.Name(), err)
	}
	for {
		nal, err := handle.NextData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, pluginError(heiferr.EncoderPluginError, enc.Name(), err)
		}
		if err := c.addCodedUnit(w, node, nal); err != nil {
			return nil, err
		}
	}

	if class == InputClassNormal {
		c.addTopLevel(node)
	}
	return node, nil
}

// encodeAlpha stores the alpha plane of img as a monochrome auxiliary image
// of master.
func (c *Context) encodeAlpha(w StoreWriter, master *Image, img *pixel.Image, enc *Encoder, opts *EncodingOptions) error {
	alpha := pixel.New(img.Width(), img.Height(), pixel.ColorspaceMonochrome, pixel.ChromaMonochrome)
	if err := alpha.CopyPlaneFrom(img, pixel.ChannelAlpha, pixel.ChannelY); err != nil {
		return err
	}
	aux, err := c.EncodeImage(alpha, enc, opts, InputClassAlpha)
	if err != nil {
		return err
	}
	w.AddReference(aux.id, refAuxiliary, []ItemID{master.id})
	w.SetAuxType(aux.id, auxTypeAlphaHEVC)
	aux.alphaOf = master.id
	master.alpha = aux.id
	return nil
}

// addCodedUnit files one NAL unit: parameter sets go to hvcC, where an SPS
// also updates the configuration and ispe; everything else is item data.
func (c *Context) addCodedUnit(w StoreWriter, node *Image, nal []byte) error {
	t := hevc.UnitType(nal)
	if t == hevc.NALSPS {
		sps, err := hevc.ParseSPS(nal)
		if err != nil {
			return heiferr.Wrap(heiferr.InvalidInput, heiferr.Unspecified, err)
		}
		cfg, err := w.CodecConfiguration(node.id)
		if err != nil {
			return err
		}
		sps.Configure(&cfg)
		if err := w.SetCodecConfiguration(node.id, cfg); err != nil {
			return err
		}
		if err := c.checkLimits(sps.Width(), sps.Height()); err != nil {
			return err
		}
		w.SetSpatialExtent(node.id, uint32(sps.Width()), uint32(sps.Height()))
		node.width, node.height = sps.Width(), sps.Height()
		node.ispeWidth, node.ispeHeight = node.width, node.height
	}
	if hevc.IsParameterSet(t) {
		return w.AppendConfigurationUnit(node.id, nal)
	}
	return w.AppendPayload(node.id, nal, true)
}

// addTopLevel lists node as a top-level image and makes it primary if
// there is no primary image yet.
func (c *Context) addTopLevel(node *Image) {
	c.topLevel = append(c.topLevel, node.id)
	if c.primary == 0 {
		_ = c.SetPrimaryItem(node.id)
	}
}

// EncodeThumbnail scales img so that its longer side equals bbox and encodes
// it. Images that already fit return (nil, nil). The thumbnail still has to
// be linked with AssignThumbnail.
func (c *Context) EncodeThumbnail(img *pixel.Image, enc *Encoder, opts *EncodingOptions, bbox int) (*Image, error) {
	w, h := img.Width(), img.Height()
	if w <= bbox && h <= bbox {
		return nil, nil
	}

	var tw, th int
	if w > h {
		tw, th = bbox, h*bbox/w
	} else {
		tw, th = w*bbox/h, bbox
	}
	tw &^= 1
	th &^= 1
	if tw <= 0 || th <= 0 {
		return nil, heiferr.Newf(heiferr.UsageError, heiferr.InvalidParameterValue,
			"thumbnail of %dx%d image in a %d pixel box is empty", w, h, bbox)
	}

	scaled, err := img.ScaleNearestNeighbor(tw, th)
	if err != nil {
		return nil, err
	}
	return c.EncodeImage(scaled, enc, opts, InputClassThumbnail)
}

// AssignThumbnail records thumb as a thumbnail of master.
func (c *Context) AssignThumbnail(master, thumb *Image) error {
	if master == nil || thumb == nil || master.id == thumb.id {
		return heiferr.New(heiferr.UsageError, heiferr.InvalidParameterValue, "invalid thumbnail assignment")
	}
	w, err := c.writer()
	if err != nil {
		return err
	}
	w.AddReference(thumb.id, refThumbnail, []ItemID{master.id})
	thumb.thumbnailOf = master.id
	master.thumbnails = append(master.thumbnails, thumb.id)
	c.removeTopLevel(thumb.id)
	return nil
}

func (c *Context) removeTopLevel(id ItemID) {
	if i := slices.Index(c.topLevel, id); i >= 0 {
		c.topLevel = slices.Delete(c.topLevel, i, i+1)
	}
}

// AddPreencodedHEVCImage stores an HEVC Annex-B stream as a new top-level
// hvc1 item without re-encoding it.
func (c *Context) AddPreencodedHEVCImage(annexB []byte) (*Image, error) {
	units := hevc.SplitAnnexB(annexB)
	if len(units) == 0 {
		return nil, heiferr.New(heiferr.UsageError, heiferr.InvalidParameterValue, "no NAL units in stream")
	}
	w, err := c.writer()
	if err != nil {
		return nil, err
	}

	id := w.NewImageItem(ItemTypeHEVC)
	node := newImage(id, ItemTypeHEVC)
	c.images[id] = node
	for _, nal := range units {
		if err := c.addCodedUnit(w, node, nal); err != nil {
			return nil, err
		}
	}
	c.addTopLevel(node)
	return node, nil
}
