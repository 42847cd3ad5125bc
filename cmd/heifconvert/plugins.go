//go:build !libheif

package main

import (
	"errors"

	"github.com/gogpu/heif"
)

var errNoCodec = errors.New("heifconvert was built without a codec; rebuild with -tags libheif")

func registerDecoder() error {
	return errNoCodec
}

func newEncoderPlugin(int, bool) (heif.EncoderPlugin, error) {
	return nil, errNoCodec
}
