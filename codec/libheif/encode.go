//go:build libheif

package libheif

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gogpu/heif"
	"github.com/gogpu/heif/pixel"
	lh "github.com/strukturag/libheif/go/heif"
)

// EncoderPlugin encodes HEVC images with the first HEVC encoder libheif
// provides, usually x265.
type EncoderPlugin struct {
	// Quality is the lossy quality from 0 to 100.
	Quality int
	// Lossless asks the encoder for lossless coding and overrides Quality.
	Lossless bool
}

// NewEncoderPlugin returns an EncoderPlugin with quality 50.
func NewEncoderPlugin() *EncoderPlugin {
	return &EncoderPlugin{Quality: 50}
}

func (p *EncoderPlugin) Name() string { return "libheif " + lh.GetVersion() }

func (p *EncoderPlugin) CompressionFormat() heif.CompressionFormat { return heif.CompressionHEVC }

func (p *EncoderPlugin) NewEncoder() (heif.EncoderHandle, error) {
	return &encoder{quality: p.Quality, lossless: p.Lossless}, nil
}

type encoder struct {
	quality  int
	lossless bool
	units    [][]byte
}

// QueryInputColorspace asks for 8 bit 4:2:0 YCbCr, or monochrome for
// monochrome input, the layouts the binding can hand to libheif.
func (e *encoder) QueryInputColorspace(cs pixel.Colorspace, chroma pixel.Chroma) (pixel.Colorspace, pixel.Chroma) {
	if cs == pixel.ColorspaceMonochrome || chroma == pixel.ChromaMonochrome {
		return pixel.ColorspaceMonochrome, pixel.ChromaMonochrome
	}
	return pixel.ColorspaceYCbCr, pixel.Chroma420
}

func (e *encoder) Encode(img *pixel.Image, _ heif.InputClass) error {
	src, err := withoutAlpha(img).ToImage()
	if err != nil {
		return err
	}
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
	default:
		return fmt.Errorf("libheif: cannot encode %T", src)
	}

	lossless := lh.LosslessModeDisabled
	if e.lossless {
		lossless = lh.LosslessModeEnabled
	}
	ctx, err := lh.EncodeFromImage(src, lh.CompressionHEVC, e.quality, lossless, lh.LoggingLevelNone)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "heif-*.heic")
	if err != nil {
		return err
	}
	name := f.Name()
	defer os.Remove(name)
	if err := f.Close(); err != nil {
		return err
	}
	if err := ctx.WriteToFile(name); err != nil {
		return err
	}
	file, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	e.units, err = unitsOfPrimary(file)
	if err != nil {
		return err
	}
	heif.Logger().Debug("libheif: encoded image",
		"width", img.Width(), "height", img.Height(), "units", len(e.units), "bytes", len(file))
	return nil
}

func (e *encoder) NextData() ([]byte, error) {
	if len(e.units) == 0 {
		return nil, io.EOF
	}
	u := e.units[0]
	e.units = e.units[1:]
	return u, nil
}

func (e *encoder) Close() error {
	e.units = nil
	return nil
}

// withoutAlpha returns img, or a copy without its alpha plane.
func withoutAlpha(img *pixel.Image) *pixel.Image {
	if !img.HasAlpha() {
		return img
	}
	out := pixel.New(img.Width(), img.Height(), img.Colorspace(), img.Chroma())
	for _, ch := range img.Channels() {
		if ch != pixel.ChannelAlpha {
			_ = out.CopyPlaneFrom(img, ch, ch)
		}
	}
	return out
}
