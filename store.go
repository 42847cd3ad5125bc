package heif

import (
	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/container"
	"github.com/gogpu/heif/heiferr"
)

// Item table types shared with package container.
type (
	ItemID    = container.ItemID
	ItemInfo  = container.ItemInfo
	Reference = container.Reference
)

// Error is the error value returned by all heif operations.
type Error = heiferr.Error

// Item types with a meaning to the image graph.
const (
	ItemTypeHEVC     = "hvc1"
	ItemTypeGrid     = "grid"
	ItemTypeIdentity = "iden"
	ItemTypeOverlay  = "iovl"
	ItemTypeExif     = "Exif"
	ItemTypeMIME     = "mime"
)

// Reference types.
const (
	refThumbnail    = "thmb"
	refAuxiliary    = "auxl"
	refDerivedImage = "dimg"
	refContentDescr = "cdsc"
)

// Auxiliary image types.
const (
	auxTypeAlphaAVC  = "urn:mpeg:avc:2015:auxid:1"
	auxTypeAlphaHEVC = "urn:mpeg:hevc:2015:auxid:1"
	auxTypeDepthHEVC = "urn:mpeg:hevc:2015:auxid:2"
)

const contentTypeXMP = "application/rdf+xml"

// Store gives read access to the item tables of a HEIF file.
//
// A Store must allow concurrent reads; grid tiles are decoded in parallel.
type Store interface {
	// ItemIDs returns all item ids in declaration order.
	ItemIDs() []ItemID
	ItemInfo(id ItemID) (ItemInfo, bool)
	// PrimaryItemID returns the id named by the primary item box, or 0.
	PrimaryItemID() ItemID
	ReferencesFrom(id ItemID) []Reference
	ReferencesOfType(id ItemID, refType string) []ItemID
	Properties(id ItemID) []box.Property
	// CompressedPayload returns the data of id ready for a decoder. For
	// coded items the configuration units come first; every unit carries a
	// 4 byte length prefix. Items without data return ErrNoItemData.
	CompressedPayload(id ItemID) ([]byte, error)
	ContentType(id ItemID) string
}

// StoreWriter is a Store that new items can be added to.
type StoreWriter interface {
	Store

	NewImageItem(itemType string) ItemID
	NewHiddenMetadataItem(itemType string) ItemID
	AddReference(from ItemID, refType string, to []ItemID)
	CodecConfiguration(id ItemID) (box.HvcCConfig, error)
	SetCodecConfiguration(id ItemID, cfg box.HvcCConfig) error
	AppendConfigurationUnit(id ItemID, nal []byte) error
	AppendPayload(id ItemID, data []byte, lengthPrefixed bool) error
	SetColorProfile(id ItemID, p box.ColorProfile)
	SetAuxType(id ItemID, auxType string)
	SetSpatialExtent(id ItemID, width, height uint32)
	SetContentType(id ItemID, contentType string)
	SetPrimaryItemID(id ItemID)
}

var _ StoreWriter = (*container.Store)(nil)
