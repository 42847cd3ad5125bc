package heif

import (
	"bytes"
	"encoding/binary"

	"github.com/gogpu/heif/heiferr"
)

var (
	tiffHeaderBE = []byte("MM\x00*")
	tiffHeaderLE = []byte("II*\x00")
)

// AddExifMetadata attaches an Exif block to master. data may start with
// anything before the TIFF header, such as an "Exif\0\0" marker; the
// header offset is stored in front of the payload.
func (c *Context) AddExifMetadata(master *Image, data []byte) error {
	offset := tiffHeaderOffset(data)
	if offset < 0 {
		return heiferr.New(heiferr.UsageError, heiferr.InvalidParameterValue,
			"could not find the TIFF header in Exif metadata")
	}
	payload := binary.BigEndian.AppendUint32(make([]byte, 0, 4+len(data)), uint32(offset))
	payload = append(payload, data...)
	return c.AddGenericMetadata(master, payload, ItemTypeExif, "")
}

// tiffHeaderOffset returns the position of the first big or little endian
// TIFF header in data, or -1.
func tiffHeaderOffset(data []byte) int {
	for i := 0; i+4 <= len(data); i++ {
		if bytes.HasPrefix(data[i:], tiffHeaderBE) || bytes.HasPrefix(data[i:], tiffHeaderLE) {
			return i
		}
	}
	return -1
}

// AddXMPMetadata attaches an XMP packet to master.
func (c *Context) AddXMPMetadata(master *Image, data []byte) error {
	return c.AddGenericMetadata(master, data, ItemTypeMIME, contentTypeXMP)
}

// AddGenericMetadata stores data as a hidden item of itemType that
// describes master. contentType is only recorded when not empty.
func (c *Context) AddGenericMetadata(master *Image, data []byte, itemType, contentType string) error {
	if master == nil || !c.IsImage(master.id) {
		return heiferr.New(heiferr.UsageError, heiferr.NonexistingItemReferenced,
			"metadata needs an image of this context")
	}
	w, err := c.writer()
	if err != nil {
		return err
	}

	id := w.NewHiddenMetadataItem(itemType)
	if contentType != "" {
		w.SetContentType(id, contentType)
	}
	w.AddReference(id, refContentDescr, []ItemID{master.id})
	if err := w.AppendPayload(id, data, false); err != nil {
		return err
	}

	master.metadata = append(master.metadata, &ImageMetadata{
		ItemID:      id,
		ItemType:    itemType,
		ContentType: contentType,
		Data:        bytes.Clone(data),
	})
	return nil
}
