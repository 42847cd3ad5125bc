package heif

import (
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/pixel"
)

func isDerivedType(itemType string) bool {
	return itemType == ItemTypeGrid || itemType == ItemTypeIdentity || itemType == ItemTypeOverlay
}

// decodeIdentical decodes the single image an iden item refers to.
func (c *Context) decodeIdentical(id ItemID, opts *DecodingOptions, chain []ItemID) (*pixel.Image, error) {
	refs := c.store.ReferencesOfType(id, refDerivedImage)
	if len(refs) != 1 {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.MissingGridImages,
			"iden item %d has %d references, want 1", id, len(refs))
	}
	return c.decodeImage(refs[0], opts, chain)
}

// NonVirtualChild follows the first derived image reference of grid, iden
// and iovl items until it reaches a coded item, and returns that item.
// Cycles and chains longer than the configured derivation depth fail with
// an InvalidDerivedImage error.
func (c *Context) NonVirtualChild(id ItemID) (ItemID, error) {
	visited := make(map[ItemID]bool)
	for {
		info, ok := c.store.ItemInfo(id)
		if !ok {
			return 0, heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
				"item %d does not exist", id)
		}
		if !isDerivedType(info.Type) {
			return id, nil
		}
		if visited[id] {
			return 0, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidDerivedImage,
				"derivation cycle through item %d", id)
		}
		if len(visited) >= c.opts.maxDepth {
			return 0, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidDerivedImage,
				"derivation chain at item %d is deeper than %d", id, c.opts.maxDepth)
		}
		visited[id] = true

		refs := c.store.ReferencesOfType(id, refDerivedImage)
		if len(refs) == 0 {
			return 0, heiferr.Newf(heiferr.InvalidInput, heiferr.NoItemData,
				"derived item %d references no image", id)
		}
		id = refs[0]
	}
}
