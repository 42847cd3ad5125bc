package heif

import (
	"slices"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/hevc"
)

// Image is one image item of the graph. Relations to other images are
// item ids; look them up with Context.Image.
//
// Images are owned by their Context and replaced wholesale when a new file
// is loaded.
type Image struct {
	id       ItemID
	itemType string
	primary  bool

	width, height         int
	ispeWidth, ispeHeight int
	profile               box.ColorProfile

	alpha, depth ItemID

	thumbnailOf ItemID
	alphaOf     ItemID
	depthOf     ItemID

	thumbnails []ItemID
	metadata   []*ImageMetadata
	depthInfo  *hevc.DepthRepresentationInfo
}

// ImageMetadata is a metadata item attached to an image by a content
// description reference.
type ImageMetadata struct {
	ItemID      ItemID
	ItemType    string
	ContentType string
	Data        []byte
}

func newImage(id ItemID, itemType string) *Image {
	return &Image{id: id, itemType: itemType}
}

func (img *Image) ID() ItemID       { return img.id }
func (img *Image) ItemType() string { return img.itemType }
func (img *Image) IsPrimary() bool  { return img.primary }

// Width returns the width after rotation and clean aperture.
func (img *Image) Width() int { return img.width }

// Height returns the height after rotation and clean aperture.
func (img *Image) Height() int { return img.height }

// IspeWidth returns the width declared by the spatial extent property,
// before any transformation.
func (img *Image) IspeWidth() int  { return img.ispeWidth }
func (img *Image) IspeHeight() int { return img.ispeHeight }

// ColorProfile returns the attached color profile or nil.
func (img *Image) ColorProfile() box.ColorProfile { return img.profile }

// AlphaImage returns the id of the alpha auxiliary image.
func (img *Image) AlphaImage() (ItemID, bool) { return img.alpha, img.alpha != 0 }

// DepthImage returns the id of the depth auxiliary image.
func (img *Image) DepthImage() (ItemID, bool) { return img.depth, img.depth != 0 }

// ThumbnailOf returns the id of the image this one is a thumbnail of.
func (img *Image) ThumbnailOf() (ItemID, bool) { return img.thumbnailOf, img.thumbnailOf != 0 }

// AlphaOf returns the id of the image this one is the alpha channel of.
func (img *Image) AlphaOf() (ItemID, bool) { return img.alphaOf, img.alphaOf != 0 }

// DepthOf returns the id of the image this one is the depth channel of.
func (img *Image) DepthOf() (ItemID, bool) { return img.depthOf, img.depthOf != 0 }

// IsThumbnail reports whether the image is a thumbnail of another image.
func (img *Image) IsThumbnail() bool { return img.thumbnailOf != 0 }

// Thumbnails returns the thumbnail ids in reference order.
func (img *Image) Thumbnails() []ItemID { return slices.Clone(img.thumbnails) }

// Metadata returns the attached metadata items.
func (img *Image) Metadata() []*ImageMetadata { return slices.Clone(img.metadata) }

// MetadataOfType returns the attached metadata items of the given item type.
func (img *Image) MetadataOfType(itemType string) []*ImageMetadata {
	var out []*ImageMetadata
	for _, m := range img.metadata {
		if m.ItemType == itemType {
			out = append(out, m)
		}
	}
	return out
}

// DepthRepresentationInfo returns the depth representation parsed from the
// auxiliary type of a depth image, or nil.
func (img *Image) DepthRepresentationInfo() *hevc.DepthRepresentationInfo {
	return img.depthInfo
}
