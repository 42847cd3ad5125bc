//go:build libheif

package libheif

import (
	"fmt"

	"github.com/gogpu/heif"
	"github.com/gogpu/heif/pixel"
	lh "github.com/strukturag/libheif/go/heif"
)

// Plugin decodes HEVC images with libheif.
type Plugin struct{}

// Register adds a Plugin to the global decoder registry.
func Register() error {
	return heif.RegisterDecoderPlugin(Plugin{})
}

// Version returns the version of the linked libheif.
func Version() string { return lh.GetVersion() }

func (Plugin) Name() string { return "libheif " + lh.GetVersion() }

func (Plugin) SupportsFormat(f heif.CompressionFormat) int {
	if f == heif.CompressionHEVC {
		return 50
	}
	return 0
}

func (Plugin) NewDecoder() (heif.Decoder, error) {
	return &decoder{}, nil
}

type decoder struct {
	data []byte
}

func (d *decoder) PushData(data []byte) error {
	d.data = append(d.data, data...)
	return nil
}

func (d *decoder) DecodeImage() (*pixel.Image, error) {
	file, err := wrapBitstream(d.data)
	if err != nil {
		return nil, err
	}

	ctx, err := lh.NewContext()
	if err != nil {
		return nil, err
	}
	if err := ctx.ReadFromMemory(file); err != nil {
		return nil, err
	}
	handle, err := ctx.GetPrimaryImageHandle()
	if err != nil {
		return nil, err
	}
	img, err := handle.DecodeImage(lh.ColorspaceUndefined, lh.ChromaUndefined, nil)
	if err != nil {
		return nil, err
	}
	heif.Logger().Debug("libheif: decoded image",
		"width", handle.GetWidth(), "height", handle.GetHeight(), "bytes", len(d.data))
	return toPixel(img)
}

func (d *decoder) Close() error {
	d.data = nil
	return nil
}

// toPixel copies the planes of a planar libheif image.
func toPixel(img *lh.Image) (*pixel.Image, error) {
	var (
		cs       pixel.Colorspace
		channels []lh.Channel
	)
	chroma, ok := chromaOf(img.GetChromaFormat())
	if !ok {
		return nil, fmt.Errorf("libheif: unsupported chroma %d", img.GetChromaFormat())
	}
	switch img.GetColorspace() {
	case lh.ColorspaceYCbCr:
		cs = pixel.ColorspaceYCbCr
		channels = []lh.Channel{lh.ChannelY, lh.ChannelCb, lh.ChannelCr}
	case lh.ColorspaceMonochrome:
		cs = pixel.ColorspaceMonochrome
		channels = []lh.Channel{lh.ChannelY}
	default:
		return nil, fmt.Errorf("libheif: unsupported colorspace %d", img.GetColorspace())
	}

	w, h := img.GetWidth(lh.ChannelY), img.GetHeight(lh.ChannelY)
	out := pixel.New(w, h, cs, chroma)
	for _, ch := range channels {
		access, err := img.GetPlane(ch)
		if err != nil {
			return nil, fmt.Errorf("libheif: channel %d: %w", ch, err)
		}
		out.SetPlane(channelOf(ch), &pixel.Plane{
			Width:    img.GetWidth(ch),
			Height:   img.GetHeight(ch),
			BitDepth: img.GetBitsPerPixel(ch),
			Stride:   access.Stride,
			Data:     access.Plane,
		})
	}
	return out, nil
}

func chromaOf(c lh.Chroma) (pixel.Chroma, bool) {
	switch c {
	case lh.ChromaMonochrome:
		return pixel.ChromaMonochrome, true
	case lh.Chroma420:
		return pixel.Chroma420, true
	case lh.Chroma422:
		return pixel.Chroma422, true
	case lh.Chroma444:
		return pixel.Chroma444, true
	}
	return pixel.ChromaUndefined, false
}

func channelOf(c lh.Channel) pixel.Channel {
	switch c {
	case lh.ChannelCb:
		return pixel.ChannelCb
	case lh.ChannelCr:
		return pixel.ChannelCr
	}
	return pixel.ChannelY
}
