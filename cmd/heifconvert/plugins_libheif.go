//go:build libheif

package main

import (
	"github.com/gogpu/heif"
	"github.com/gogpu/heif/codec/libheif"
)

func registerDecoder() error {
	return libheif.Register()
}

func newEncoderPlugin(quality int, lossless bool) (heif.EncoderPlugin, error) {
	return &libheif.EncoderPlugin{Quality: quality, Lossless: lossless}, nil
}
