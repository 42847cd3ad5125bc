package heif

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/pixel"
)

// CompressionFormat identifies a codec.
type CompressionFormat int

const (
	CompressionUndefined CompressionFormat = iota
	CompressionHEVC
	CompressionAVC
	CompressionJPEG
	CompressionAV1
)

func (f CompressionFormat) String() string {
	switch f {
	case CompressionHEVC:
		return "HEVC"
	case CompressionAVC:
		return "AVC"
	case CompressionJPEG:
		return "JPEG"
	case CompressionAV1:
		return "AV1"
	}
	return "undefined"
}

// InputClass tells an encoder what role the image plays, so it can pick
// suitable quality settings.
type InputClass int

const (
	InputClassNormal InputClass = iota
	InputClassAlpha
	InputClassDepth
	InputClassThumbnail
)

// DecoderPlugin creates decoders for one or more compression formats.
type DecoderPlugin interface {
	Name() string

	// SupportsFormat returns a priority for format, or 0 if the plugin
	// cannot decode it. The plugin with the highest priority is used.
	SupportsFormat(format CompressionFormat) int

	NewDecoder() (Decoder, error)
}

// Decoder decodes one image from the data pushed into it.
type Decoder interface {
	// PushData adds coded data. For HEVC, every NAL unit carries a 4 byte
	// big endian length prefix.
	PushData(data []byte) error

	DecodeImage() (*pixel.Image, error)

	Close() error
}

// EncoderPlugin creates encoders for a single compression format.
type EncoderPlugin interface {
	Name() string
	CompressionFormat() CompressionFormat
	NewEncoder() (EncoderHandle, error)
}

// EncoderHandle is one encoder instance. It may encode several images in
// turn; each Encode call is followed by NextData calls until io.EOF.
type EncoderHandle interface {
	// QueryInputColorspace returns the colorspace and chroma the encoder
	// wants for an input image in cs and chroma.
	QueryInputColorspace(cs pixel.Colorspace, chroma pixel.Chroma) (pixel.Colorspace, pixel.Chroma)

	Encode(img *pixel.Image, class InputClass) error

	// NextData returns the next coded unit, without start code or length
	// prefix, or io.EOF when the image is complete.
	NextData() ([]byte, error)

	Close() error
}

var (
	pluginMu       sync.RWMutex
	decoderPlugins []DecoderPlugin
)

// RegisterDecoderPlugin makes p available to every Context.
func RegisterDecoderPlugin(p DecoderPlugin) error {
	if p == nil {
		return errors.New("heif: decoder plugin must not be nil")
	}
	pluginMu.Lock()
	decoderPlugins = append(decoderPlugins, p)
	pluginMu.Unlock()
	return nil
}

// DecoderPlugins returns the globally registered decoder plugins.
func DecoderPlugins() []DecoderPlugin {
	pluginMu.RLock()
	defer pluginMu.RUnlock()
	return append([]DecoderPlugin(nil), decoderPlugins...)
}

// decoderFor picks the plugin with the highest priority for format.
func (c *Context) decoderFor(format CompressionFormat) (DecoderPlugin, error) {
	var (
		best     DecoderPlugin
		priority int
	)
	for _, p := range slices.Concat(c.opts.decoders, DecoderPlugins()) {
		if prio := p.SupportsFormat(format); prio > priority {
			best, priority = p, prio
		}
	}
	if best == nil {
		return nil, heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedCodec,
			"no decoder plugin for %v", format)
	}
	c.log.Debug("heif: selected decoder", "plugin", best.Name(), "format", format.String(), "priority", priority)
	return best, nil
}

// pluginError classifies an error returned by a plugin. Errors that are
// already *heiferr.Error pass through unchanged.
func pluginError(code heiferr.Code, name string, err error) error {
	var he *heiferr.Error
	if errors.As(err, &he) {
		return err
	}
	return heiferr.Wrap(code, heiferr.Unspecified, fmt.Errorf("%s: %w", name, err))
}
