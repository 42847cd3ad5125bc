// Command heifconvert converts between HEIF and PNG, JPEG or WebP.
//
//	heifconvert [-id N] [-fit WxH] [-quality Q] IN.heic OUT.{png,jpg,webp}
//	heifconvert [-quality Q] [-lossless] [-thumb N] IN.{png,jpg} OUT.heic
//
// Both directions need the libheif codec; build with -tags libheif.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/gogpu/heif"
	"github.com/gogpu/heif/pixel"
)

type config struct {
	id       heif.ItemID
	fit      string
	quality  int
	lossless bool
	thumb    int
	raw      bool
}

func main() {
	var (
		id  = flag.Uint("id", 0, "item id to decode (default: primary image)")
		cfg config
	)
	flag.StringVar(&cfg.fit, "fit", "", "scale down to fit WxH, keeping the aspect ratio")
	flag.IntVar(&cfg.quality, "quality", 90, "JPEG, lossy WebP and HEVC quality")
	flag.BoolVar(&cfg.lossless, "lossless", false, "lossless HEVC coding")
	flag.IntVar(&cfg.thumb, "thumb", 0, "add a thumbnail fitting an NxN box when encoding HEIF")
	flag.BoolVar(&cfg.raw, "raw", false, "ignore rotation, mirroring and cropping")
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: heifconvert [flags] IN OUT")
		flag.PrintDefaults()
		os.Exit(2)
	}
	cfg.id = heif.ItemID(*id)
	in, out := flag.Arg(0), flag.Arg(1)

	var err error
	if isHEIF(out) {
		err = toHEIF(in, out, cfg)
	} else {
		err = fromHEIF(in, out, cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func isHEIF(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

// fromHEIF decodes one image of in and writes it to out.
func fromHEIF(in, out string, cfg config) error {
	if err := registerDecoder(); err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	ctx := heif.NewContext(heif.WithDecodingThreads(0))
	if err := ctx.LoadFile(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	item := cfg.id
	if item == 0 {
		primary, err := ctx.PrimaryImage()
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		item = primary.ID()
	}

	decoded, err := ctx.DecodeImage(item, &heif.DecodingOptions{IgnoreTransformations: cfg.raw})
	if err != nil {
		return fmt.Errorf("decode image %d: %w", item, err)
	}
	img, err := decoded.ToImage()
	if err != nil {
		return fmt.Errorf("decode image %d: %w", item, err)
	}

	if cfg.fit != "" {
		var w, h int
		if _, err := fmt.Sscanf(cfg.fit, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("invalid -fit %q, want WxH", cfg.fit)
		}
		img = imaging.Fit(img, w, h, imaging.Lanczos)
	}

	if err := writeFile(out, func(w io.Writer) error { return encode(w, out, img, cfg.quality) }); err != nil {
		return err
	}
	log.Printf("image %d saved to %s (%dx%d)", item, out, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// toHEIF encodes the image in in as the primary image of a new HEIF file.
func toHEIF(in, out string, cfg config) error {
	plugin, err := newEncoderPlugin(cfg.quality, cfg.lossless)
	if err != nil {
		return err
	}
	src, err := imaging.Open(in, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	img, err := pixel.FromImage(src)
	if err != nil {
		return err
	}

	enc, err := heif.NewEncoder(plugin)
	if err != nil {
		return err
	}
	defer enc.Close()

	ctx := heif.NewContext()
	primary, err := ctx.EncodeImage(img, enc, nil, heif.InputClassNormal)
	if err != nil {
		return err
	}
	if cfg.thumb > 0 {
		thumb, err := ctx.EncodeThumbnail(img, enc, nil, cfg.thumb)
		if err != nil {
			return err
		}
		if thumb != nil {
			if err := ctx.AssignThumbnail(primary, thumb); err != nil {
				return err
			}
		}
	}

	if err := writeFile(out, func(w io.Writer) error {
		_, err := ctx.WriteTo(w)
		return err
	}); err != nil {
		return err
	}
	log.Printf("%s saved to %s (%dx%d)", in, out, primary.Width(), primary.Height())
	return nil
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

// encode writes img in the format named by the extension of name.
func encode(w io.Writer, name string, img image.Image, quality int) error {
	if strings.EqualFold(filepath.Ext(name), ".webp") {
		return webp.Encode(w, img, &webp.Options{Lossless: quality >= 100, Quality: float32(quality)})
	}
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return err
	}
	switch format {
	case imaging.PNG, imaging.JPEG:
		return imaging.Encode(w, img, format, imaging.JPEGQuality(quality))
	}
	return fmt.Errorf("unsupported output format %v", format)
}
