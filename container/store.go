// Package container holds the item, reference and property tables of a HEIF
// file in memory. It reads them from a file with go4.org/media/heif/bmff and
// writes them back as ftyp, meta and mdat boxes.
package container

import (
	"slices"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/hevc"
)

// ItemID identifies an item within one file. Zero is never a valid id.
type ItemID uint32

// ItemInfo is the item information entry of one item.
type ItemInfo struct {
	ID          ItemID
	Type        string
	Name        string
	ContentType string
	Hidden      bool
}

// Reference is one typed edge group of the item reference box.
type Reference struct {
	Type string
	From ItemID
	To   []ItemID
}

type item struct {
	info  ItemInfo
	props []box.Property
	data  []byte
	// hasData is set once the item has a location, even an empty one.
	hasData bool
}

// Store is an in-memory HEIF item table.
//
// A Store may be read from several goroutines at once. Writes must not run
// concurrently with anything else.
type Store struct {
	items   map[ItemID]*item
	order   []ItemID
	primary ItemID
	refs    []Reference
	nextID  ItemID
}

// New returns an empty store.
func New() *Store {
	return &Store{
		items:  make(map[ItemID]*item),
		nextID: 1,
	}
}

// ItemIDs returns all item ids in declaration order.
func (s *Store) ItemIDs() []ItemID {
	return slices.Clone(s.order)
}

// ItemInfo returns the item information entry of id.
func (s *Store) ItemInfo(id ItemID) (ItemInfo, bool) {
	it, ok := s.items[id]
	if !ok {
		return ItemInfo{}, false
	}
	return it.info, true
}

// PrimaryItemID returns the id declared by the primary item box, or 0.
func (s *Store) PrimaryItemID() ItemID {
	return s.primary
}

// ReferencesFrom returns every reference group whose source is id.
func (s *Store) ReferencesFrom(id ItemID) []Reference {
	var out []Reference
	for _, r := range s.refs {
		if r.From == id {
			out = append(out, Reference{Type: r.Type, From: r.From, To: slices.Clone(r.To)})
		}
	}
	return out
}

// ReferencesOfType returns the targets of all references of type refType
// from id, in declaration order.
func (s *Store) ReferencesOfType(id ItemID, refType string) []ItemID {
	var out []ItemID
	for _, r := range s.refs {
		if r.From == id && r.Type == refType {
			out = append(out, r.To...)
		}
	}
	return out
}

// Properties returns the properties associated with id, in association
// order.
func (s *Store) Properties(id ItemID) []box.Property {
	it, ok := s.items[id]
	if !ok {
		return nil
	}
	return slices.Clone(it.props)
}

// ContentType returns the MIME content type of a "mime" item.
func (s *Store) ContentType(id ItemID) string {
	if it, ok := s.items[id]; ok {
		return it.info.ContentType
	}
	return ""
}

// ItemData returns the raw payload of id as stored in the file.
func (s *Store) ItemData(id ItemID) ([]byte, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
			"item %d does not exist", id)
	}
	if !it.hasData {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.NoItemData, "item %d has no data", id)
	}
	return it.data, nil
}

// CompressedPayload returns the data of id ready for a decoder. For hvc1
// items the parameter sets from hvcC come first, each with a 4 byte length
// prefix, followed by the item data. Other items return their raw data.
func (s *Store) CompressedPayload(id ItemID) ([]byte, error) {
	data, err := s.ItemData(id)
	if err != nil {
		return nil, err
	}
	it := s.items[id]
	if it.info.Type != "hvc1" {
		return data, nil
	}

	hvcc := findHvcC(it.props)
	if hvcc == nil {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.NoHvcCBox, "item %d has no hvcC property", id)
	}
	var out []byte
	for _, nal := range hvcc.Headers() {
		out = hevc.AppendLengthPrefixed(out, nal)
	}
	return append(out, data...), nil
}

func findHvcC(props []box.Property) *box.HvcC {
	for _, p := range props {
		if h, ok := p.(*box.HvcC); ok {
			return h
		}
	}
	return nil
}

// =============================================================================
// Writing
// =============================================================================

func (s *Store) newItem(itemType string, hidden bool) *item {
	id := s.nextID
	s.nextID++
	it := &item{info: ItemInfo{ID: id, Type: itemType, Hidden: hidden}}
	s.items[id] = it
	s.order = append(s.order, id)
	return it
}

// addItem registers an item read from a file under its own id.
func (s *Store) addItem(info ItemInfo) *item {
	it := &item{info: info}
	s.items[info.ID] = it
	s.order = append(s.order, info.ID)
	if info.ID >= s.nextID {
		s.nextID = info.ID + 1
	}
	return it
}

// NewImageItem creates a visible item of the given type. hvc1 items start
// with an empty 8 bit 4:2:0 hvcC property.
func (s *Store) NewImageItem(itemType string) ItemID {
	it := s.newItem(itemType, false)
	if itemType == "hvc1" {
		it.props = append(it.props, box.NewHvcC())
	}
	return it.info.ID
}

// NewHiddenMetadataItem creates a hidden item of the given type.
func (s *Store) NewHiddenMetadataItem(itemType string) ItemID {
	return s.newItem(itemType, true).info.ID
}

// SetHidden sets the hidden flag of id.
func (s *Store) SetHidden(id ItemID, hidden bool) {
	if it, ok := s.items[id]; ok {
		it.info.Hidden = hidden
	}
}

// SetPrimaryItemID declares id as the primary item.
func (s *Store) SetPrimaryItemID(id ItemID) {
	s.primary = id
}

// AddReference adds a reference group from one item to the given targets.
func (s *Store) AddReference(from ItemID, refType string, to []ItemID) {
	s.refs = append(s.refs, Reference{Type: refType, From: from, To: slices.Clone(to)})
}

// AddProperty associates p with id.
func (s *Store) AddProperty(id ItemID, p box.Property) {
	if it, ok := s.items[id]; ok {
		it.props = append(it.props, p)
	}
}

// replaceProperty swaps the first property of p's type for p, or appends
// p if there is none.
func (s *Store) replaceProperty(id ItemID, p box.Property) {
	it, ok := s.items[id]
	if !ok {
		return
	}
	for i, old := range it.props {
		if old.BoxType() == p.BoxType() {
			it.props[i] = p
			return
		}
	}
	it.props = append(it.props, p)
}

func (s *Store) hvcC(id ItemID) (*box.HvcC, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, heiferr.Newf(heiferr.UsageError, heiferr.InvalidParameterValue, "item %d does not exist", id)
	}
	h := findHvcC(it.props)
	if h == nil {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.NoHvcCBox, "item %d has no hvcC property", id)
	}
	return h, nil
}

// SetCodecConfiguration replaces the fixed fields of the hvcC property of
// id. The parameter set arrays are kept.
func (s *Store) SetCodecConfiguration(id ItemID, cfg box.HvcCConfig) error {
	h, err := s.hvcC(id)
	if err != nil {
		return err
	}
	h.Config = cfg
	return nil
}

// CodecConfiguration returns the fixed fields of the hvcC property of id.
func (s *Store) CodecConfiguration(id ItemID) (box.HvcCConfig, error) {
	h, err := s.hvcC(id)
	if err != nil {
		return box.HvcCConfig{}, err
	}
	return h.Config, nil
}

// AppendConfigurationUnit adds a parameter set unit to the hvcC property
// of id.
func (s *Store) AppendConfigurationUnit(id ItemID, nal []byte) error {
	h, err := s.hvcC(id)
	if err != nil {
		return err
	}
	h.AppendNAL(slices.Clone(nal))
	return nil
}

// AppendPayload appends data to the item data of id, preceded by a 4 byte
// big endian length when lengthPrefixed is set.
func (s *Store) AppendPayload(id ItemID, data []byte, lengthPrefixed bool) error {
	it, ok := s.items[id]
	if !ok {
		return heiferr.Newf(heiferr.UsageError, heiferr.InvalidParameterValue, "item %d does not exist", id)
	}
	if lengthPrefixed {
		it.data = hevc.AppendLengthPrefixed(it.data, data)
	} else {
		it.data = append(it.data, data...)
	}
	it.hasData = true
	return nil
}

// SetColorProfile sets the colr property of id.
func (s *Store) SetColorProfile(id ItemID, p box.ColorProfile) {
	if p == nil {
		return
	}
	s.replaceProperty(id, box.Colr{Profile: p})
}

// SetAuxType sets the auxC property of id.
func (s *Store) SetAuxType(id ItemID, auxType string) {
	s.replaceProperty(id, box.AuxC{AuxType: auxType})
}

// SetSpatialExtent sets the ispe property of id.
func (s *Store) SetSpatialExtent(id ItemID, width, height uint32) {
	s.replaceProperty(id, box.Ispe{Width: width, Height: height})
}

// SetContentType sets the MIME content type of id.
func (s *Store) SetContentType(id ItemID, contentType string) {
	if it, ok := s.items[id]; ok {
		it.info.ContentType = contentType
	}
}
