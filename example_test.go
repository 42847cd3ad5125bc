package heif_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/gogpu/heif"
	"github.com/gogpu/heif/heiftest"
	"github.com/gogpu/heif/pixel"
)

func Example() {
	codec := heiftest.New()

	// Encode a 4:2:0 image into a new file.
	out := heif.NewContext()
	enc, err := heif.NewEncoder(codec)
	if err != nil {
		log.Fatal(err)
	}
	defer enc.Close()
	if _, err := out.EncodeImage(heiftest.Pattern(64, 48, pixel.Chroma420, 0), enc, nil, heif.InputClassNormal); err != nil {
		log.Fatal(err)
	}
	var file bytes.Buffer
	if _, err := out.WriteTo(&file); err != nil {
		log.Fatal(err)
	}

	// Read it back and decode the primary image.
	in := heif.NewContext(heif.WithDecoderPlugin(codec))
	if err := in.LoadFile(bytes.NewReader(file.Bytes())); err != nil {
		log.Fatal(err)
	}
	primary, err := in.PrimaryImage()
	if err != nil {
		log.Fatal(err)
	}
	img, err := in.DecodeImage(primary.ID(), nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%dx%d %v\n", img.Width(), img.Height(), img.Chroma())
	// Output:
	// 64x48 4:2:0
}

func ExampleContext_DecodeImageAs() {
	codec := heiftest.New()
	ctx := heif.NewContext(heif.WithDecoderPlugin(codec))
	enc, _ := heif.NewEncoder(codec)
	defer enc.Close()

	src, err := ctx.EncodeImage(heiftest.Pattern(32, 32, pixel.Chroma444, 7), enc, nil, heif.InputClassNormal)
	if err != nil {
		log.Fatal(err)
	}
	rgb, err := ctx.DecodeImageAs(src.ID(), pixel.ColorspaceRGB, pixel.Chroma444, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rgb.Colorspace() == pixel.ColorspaceRGB, rgb.Width())
	// Output:
	// true 32
}
