// Package heif interprets HEIF and HEIC containers and reconstructs the
// images they describe.
//
// # Overview
//
// A HEIF file stores images as items: coded images, tiled grids, overlays
// and identity derivations, linked by typed references (thumbnail, alpha or
// depth auxiliary, derived image, content description). A Context loads
// those items from a Store, builds the image graph, and decodes any image
// into a planar [pixel.Image] with its rotation, mirror and clean aperture
// applied. The same Context encodes pixel images back into new items through
// a pluggable HEVC encoder, with an optional alpha auxiliary image, a scaled
// thumbnail and Exif or XMP metadata.
//
// # Quick Start
//
//	import "github.com/gogpu/heif"
//
//	ctx := heif.NewContext(heif.WithDecoderPlugin(myDecoder))
//	if err := ctx.LoadFile(f); err != nil {
//	    return err
//	}
//	primary, err := ctx.PrimaryImage()
//	if err != nil {
//	    return err
//	}
//	img, err := ctx.DecodeImage(primary.ID(), nil)
//
// # Codecs
//
// Entropy coding is delegated to plugins implementing [DecoderPlugin] and
// [EncoderPlugin]. The codec/libheif package adapts libheif when built with
// the libheif tag; the heiftest package provides a lossless reference codec
// for tests.
//
// # Errors
//
// Every failure is a [*heiferr.Error] carrying a code and a subcode. Use
// errors.Is with the sentinels of package heiferr to classify them.
//
// # Concurrency
//
// Grid tiles can be decoded in parallel, see [WithDecodingThreads]. A
// Context itself is not safe for concurrent use.
package heif
