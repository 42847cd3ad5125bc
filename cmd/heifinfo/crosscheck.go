//go:build !libheif

package main

import (
	"errors"

	"github.com/gogpu/heif"
)

func crossCheck(*heif.Context, []byte) error {
	return errors.New("heifinfo was built without the libheif tag")
}
