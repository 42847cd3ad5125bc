// Command heifinfo prints the image graph of a HEIF file.
//
//	heifinfo [-v] [-crosscheck] FILE
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/heif"
)

func main() {
	var (
		verbose    = flag.Bool("v", false, "log graph construction")
		crosscheck = flag.Bool("crosscheck", false, "compare the graph with libheif (needs -tags libheif)")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: heifinfo [-v] [-crosscheck] FILE")
		os.Exit(2)
	}
	if *verbose {
		heif.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	name := flag.Arg(0)
	data, err := os.ReadFile(name)
	if err != nil {
		log.Fatal(err)
	}
	ctx := heif.NewContext()
	if err := ctx.LoadFile(bytes.NewReader(data)); err != nil {
		log.Fatalf("%s: %v", name, err)
	}

	p := message.NewPrinter(language.English)
	p.Printf("%s: %d bytes\n", name, len(data))
	if err := describe(os.Stdout, p, ctx); err != nil {
		log.Fatal(err)
	}

	if *crosscheck {
		if err := crossCheck(ctx, data); err != nil {
			log.Fatalf("crosscheck: %v", err)
		}
		fmt.Println("crosscheck: libheif agrees")
	}
}

func describe(w io.Writer, p *message.Printer, ctx *heif.Context) error {
	for _, img := range ctx.TopLevelImages() {
		if err := describeImage(w, p, ctx, img, ""); err != nil {
			return err
		}
	}
	return nil
}

func describeImage(w io.Writer, p *message.Printer, ctx *heif.Context, img *heif.Image, indent string) error {
	var flags []string
	if img.IsPrimary() {
		flags = append(flags, "primary")
	}
	if img.ColorProfile() != nil {
		flags = append(flags, "colr="+img.ColorProfile().ProfileType())
	}
	fmt.Fprintf(w, "%simage %d (%s) %s", indent, img.ID(), img.ItemType(),
		p.Sprintf("%dx%d", img.Width(), img.Height()))
	if len(flags) > 0 {
		fmt.Fprintf(w, " [%s]", strings.Join(flags, ", "))
	}
	fmt.Fprintln(w)

	if luma, err := ctx.LumaBitsPerPixel(img.ID()); err == nil {
		chroma, _ := ctx.ChromaBitsPerPixel(img.ID())
		fmt.Fprintf(w, "%s  bit depth: luma %d, chroma %d\n", indent, luma, chroma)
	}

	if id, ok := img.AlphaImage(); ok {
		fmt.Fprintf(w, "%s  alpha: image %d\n", indent, id)
	}
	if id, ok := img.DepthImage(); ok {
		fmt.Fprintf(w, "%s  depth: image %d\n", indent, id)
		if d, err := ctx.Image(id); err == nil && d.DepthRepresentationInfo() != nil {
			fmt.Fprintf(w, "%s    representation: %v\n", indent, d.DepthRepresentationInfo().RepresentationType)
		}
	}
	for _, id := range img.Thumbnails() {
		thumb, err := ctx.Image(id)
		if err != nil {
			return err
		}
		if err := describeImage(w, p, ctx, thumb, indent+"  thumbnail: "); err != nil {
			return err
		}
	}
	for _, m := range img.Metadata() {
		p.Fprintf(w, "%s  metadata %d: %s %s, %d bytes\n", indent, m.ItemID, m.ItemType, m.ContentType, len(m.Data))
		if m.ItemType == "Exif" {
			describeExif(w, indent+"    ", m.Data)
		}
	}
	return nil
}

// describeExif prints a few tags of an Exif item. The item starts with
// the offset of the TIFF header.
func describeExif(w io.Writer, indent string, data []byte) {
	if len(data) < 4 {
		return
	}
	off := binary.BigEndian.Uint32(data)
	if uint64(off)+4 > uint64(len(data)) {
		fmt.Fprintf(w, "%sinvalid TIFF header offset %d\n", indent, off)
		return
	}
	x, err := exif.Decode(bytes.NewReader(data[4+off:]))
	if err != nil {
		fmt.Fprintf(w, "%sexif: %v\n", indent, err)
		return
	}
	for _, field := range []exif.FieldName{exif.Make, exif.Model, exif.DateTimeOriginal, exif.Orientation} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s%s: %s\n", indent, field, strings.Trim(tag.String(), `"`))
	}
}
