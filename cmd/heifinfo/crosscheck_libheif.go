//go:build libheif

package main

import (
	"fmt"
	"slices"

	lh "github.com/strukturag/libheif/go/heif"

	"github.com/gogpu/heif"
)

// crossCheck compares the top-level images, the primary image and the
// image sizes with what libheif reports for the same file.
func crossCheck(ctx *heif.Context, data []byte) error {
	ref, err := lh.NewContext()
	if err != nil {
		return err
	}
	if err := ref.ReadFromMemory(data); err != nil {
		return err
	}

	var ours []int
	for _, id := range ctx.TopLevelImageIDs() {
		ours = append(ours, int(id))
	}
	theirs := ref.GetListOfTopLevelImageIDs()
	slices.Sort(ours)
	slices.Sort(theirs)
	if !slices.Equal(ours, theirs) {
		return fmt.Errorf("top-level images %v, libheif %v", ours, theirs)
	}

	primary, err := ctx.PrimaryImage()
	if err != nil {
		return err
	}
	refPrimary, err := ref.GetPrimaryImageID()
	if err != nil {
		return err
	}
	if int(primary.ID()) != refPrimary {
		return fmt.Errorf("primary image %d, libheif %d", primary.ID(), refPrimary)
	}

	for _, img := range ctx.TopLevelImages() {
		h, err := ref.GetImageHandle(int(img.ID()))
		if err != nil {
			return err
		}
		if h.GetWidth() != img.Width() || h.GetHeight() != img.Height() {
			return fmt.Errorf("image %d is %dx%d, libheif %dx%d",
				img.ID(), img.Width(), img.Height(), h.GetWidth(), h.GetHeight())
		}
		if h.GetNumberOfThumbnails() != len(img.Thumbnails()) {
			return fmt.Errorf("image %d has %d thumbnails, libheif %d",
				img.ID(), len(img.Thumbnails()), h.GetNumberOfThumbnails())
		}
		_, hasAlpha := img.AlphaImage()
		if h.HasAlphaChannel() != hasAlpha {
			return fmt.Errorf("image %d alpha %v, libheif %v", img.ID(), hasAlpha, h.HasAlphaChannel())
		}
	}
	return nil
}
