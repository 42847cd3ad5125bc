package heif

import (
	"log/slog"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/hevc"
)

// graph is the result of one successful build.
type graph struct {
	images   map[ItemID]*Image
	topLevel []ItemID
	primary  ItemID
}

func isImageType(itemType string) bool {
	switch itemType {
	case ItemTypeHEVC, ItemTypeGrid, ItemTypeIdentity, ItemTypeOverlay:
		return true
	}
	return false
}

// buildGraph creates one Image per image item of s and links thumbnails,
// auxiliary images, properties and metadata.
func buildGraph(s Store, o contextOptions, log *slog.Logger) (*graph, error) {
	g := &graph{images: make(map[ItemID]*Image)}

	var (
		order         []ItemID
		primaryIsGrid bool
	)
	topLevel := make(map[ItemID]bool)
	primaryID := s.PrimaryItemID()

	for _, id := range s.ItemIDs() {
		info, ok := s.ItemInfo(id)
		if !ok {
			log.Warn("heif: skipping item without item info", "item", id)
			continue
		}
		if !isImageType(info.Type) {
			continue
		}
		img := newImage(id, info.Type)
		g.images[id] = img
		order = append(order, id)
		if info.Hidden {
			continue
		}
		topLevel[id] = true
		if id == primaryID {
			img.primary = true
			g.primary = id
			primaryIsGrid = info.Type == ItemTypeGrid
		}
	}

	if g.primary == 0 {
		return nil, heiferr.New(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
			"'pitm' box references a non-existing image")
	}

	if err := g.linkReferences(s, order, topLevel, log); err != nil {
		return nil, err
	}

	for _, id := range order {
		img := g.images[id]
		props := s.Properties(id)
		if img.itemType == ItemTypeHEVC && !hasHvcC(props) {
			return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.NoHvcCBox, "no hvcC property in hvc1 item %d", id)
		}
		if err := g.applyProperties(img, props, o, primaryIsGrid); err != nil {
			return nil, err
		}
	}

	if err := g.attachMetadata(s); err != nil {
		return nil, err
	}

	for _, id := range order {
		if topLevel[id] {
			g.topLevel = append(g.topLevel, id)
		}
	}
	log.Debug("heif: built image graph",
		"images", len(g.images), "top_level", len(g.topLevel), "primary", g.primary)
	return g, nil
}

func hasHvcC(props []box.Property) bool {
	for _, p := range props {
		if _, ok := p.(*box.HvcC); ok {
			return true
		}
	}
	return false
}

// linkReferences walks the thmb and auxl references of every image.
func (g *graph) linkReferences(s Store, order []ItemID, topLevel map[ItemID]bool, log *slog.Logger) error {
	// Thumbnail sources are collected first so that "thumbnail of a
	// thumbnail" does not depend on item order.
	isThumbnail := make(map[ItemID]bool)
	for _, id := range order {
		if len(s.ReferencesOfType(id, refThumbnail)) > 0 {
			isThumbnail[id] = true
		}
	}

	for _, id := range order {
		img := g.images[id]
		for _, ref := range s.ReferencesFrom(id) {
			switch ref.Type {
			case refThumbnail:
				if len(ref.To) != 1 {
					return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
						"thumbnail %d has %d references, want 1", id, len(ref.To))
				}
				to := ref.To[0]
				if to == id {
					return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
						"recursive thumbnail image detected at item %d", id)
				}
				master, ok := g.images[to]
				if !ok {
					return heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
						"thumbnail %d references non-existing image %d", id, to)
				}
				if isThumbnail[to] {
					return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
						"thumbnail %d references another thumbnail %d", id, to)
				}
				img.thumbnailOf = to
				master.thumbnails = append(master.thumbnails, id)
				delete(topLevel, id)

			case refAuxiliary:
				if err := g.linkAuxiliary(s, img, ref, log); err != nil {
					return err
				}
				delete(topLevel, id)
			}
		}
	}
	return nil
}

func (g *graph) linkAuxiliary(s Store, img *Image, ref Reference, log *slog.Logger) error {
	var auxC *box.AuxC
	for _, p := range s.Properties(img.id) {
		if a, ok := p.(box.AuxC); ok {
			auxC = &a
			break
		}
	}
	if auxC == nil {
		return heiferr.Newf(heiferr.InvalidInput, heiferr.AuxiliaryImageTypeUnspecified,
			"no auxC property for auxiliary image %d", img.id)
	}

	if len(ref.To) != 1 {
		return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
			"auxiliary image %d has %d references, want 1", img.id, len(ref.To))
	}
	to := ref.To[0]
	if to == img.id {
		return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
			"recursive auxiliary image detected at item %d", img.id)
	}
	master, ok := g.images[to]
	if !ok {
		return heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
			"auxiliary image %d references non-existing image %d", img.id, to)
	}

	switch auxC.AuxType {
	case auxTypeAlphaAVC, auxTypeAlphaHEVC:
		img.alphaOf = to
		master.alpha = img.id
	case auxTypeDepthHEVC:
		img.depthOf = to
		master.depth = img.id
		info, err := hevc.ParseDepthRepresentationInfo(auxC.Subtypes)
		if err != nil {
			log.Warn("heif: ignoring depth representation SEI", "item", img.id, "err", err)
		}
		img.depthInfo = info
	default:
		log.Debug("heif: unhandled auxiliary type", "item", img.id, "type", auxC.AuxType)
	}
	return nil
}

// applyProperties sets resolution and color profile from the properties of
// one image, in property order.
func (g *graph) applyProperties(img *Image, props []box.Property, o contextOptions, primaryIsGrid bool) error {
	haveIspe := false
	for _, p := range props {
		switch p := p.(type) {
		case box.Ispe:
			w, h := int(p.Width), int(p.Height)
			if err := checkLimits(o, w, h); err != nil {
				return err
			}
			img.width, img.height = w, h
			img.ispeWidth, img.ispeHeight = w, h
			haveIspe = true
		case box.Clap:
			if haveIspe {
				img.width, img.height = p.RoundedWidth(), p.RoundedHeight()
			}
		case box.Irot:
			if p.Angle == 90 || p.Angle == 270 {
				img.width, img.height = img.height, img.width
			}
		case box.Colr:
			img.profile = p.Profile
			g.donateProfile(img, primaryIsGrid)
		}
	}
	return nil
}

// donateProfile gives the profile of the first ordinary image that has one
// to a grid primary. Grid items rarely carry a colr property themselves,
// while their tiles do. A colr on the grid itself is kept.
func (g *graph) donateProfile(img *Image, primaryIsGrid bool) {
	if !primaryIsGrid || img.primary || img.alphaOf != 0 || img.depthOf != 0 {
		return
	}
	primary := g.images[g.primary]
	if primary.profile == nil {
		primary.profile = img.profile
	}
}

// attachMetadata creates an ImageMetadata record for every item described
// by a cdsc reference.
func (g *graph) attachMetadata(s Store) error {
	for _, id := range s.ItemIDs() {
		var (
			refs  []ItemID
			found bool
		)
		for _, ref := range s.ReferencesFrom(id) {
			if ref.Type == refContentDescr {
				found = true
				refs = append(refs, ref.To...)
			}
		}
		if !found {
			continue
		}
		if len(refs) == 0 {
			return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
				"metadata item %d references no image", id)
		}
		if len(refs) > 1 {
			return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified,
				"metadata item %d references %d images, want 1", id, len(refs))
		}
		master, ok := g.images[refs[0]]
		if !ok {
			return heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
				"metadata item %d references non-existing image %d", id, refs[0])
		}

		info, _ := s.ItemInfo(id)
		data, err := s.CompressedPayload(id)
		if err != nil {
			return err
		}
		master.metadata = append(master.metadata, &ImageMetadata{
			ItemID:      id,
			ItemType:    info.Type,
			ContentType: s.ContentType(id),
			Data:        data,
		})
	}
	return nil
}
