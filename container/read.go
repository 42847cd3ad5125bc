package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"

	"go4.org/media/heif/bmff"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
)

// ReadOption configures Read.
type ReadOption func(*readOptions)

type readOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for diagnostics while reading. By default
// nothing is logged.
func WithLogger(l *slog.Logger) ReadOption {
	return func(o *readOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Read parses the ftyp and meta boxes of a HEIF file and loads the data of
// every located item.
//
// Items using data references other than the file itself are not
// supported.
func Read(r io.ReaderAt, opts ...ReadOption) (*Store, error) {
	o := readOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	sr := io.NewSectionReader(r, 0, math.MaxInt64)
	bmr := bmff.NewReader(sr)

	pbox, err := bmr.ReadAndParseBox(bmff.TypeFtyp)
	if err != nil {
		return nil, invalid(err)
	}
	if ft := pbox.(*bmff.FileTypeBox); !supportedBrand(ft) {
		return nil, heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedImageType,
			"no heic or mif1 brand in %q", ft.MajorBrand)
	}

	pbox, err = bmr.ReadAndParseBox(bmff.TypeMeta)
	if err != nil {
		return nil, invalid(err)
	}
	meta := pbox.(*bmff.MetaBox)

	var (
		iinf *bmff.ItemInfoBox
		iloc *bmff.ItemLocationBox
		iprp *bmff.ItemPropertiesBox
		pitm *bmff.PrimaryItemBox
		iref []byte
		idat []byte
	)
	for _, child := range meta.Children {
		// iref and idat are decoded here; older bmff releases have no parser
		// for them.
		switch child.Type().String() {
		case "iref":
			if iref, err = io.ReadAll(child.Body()); err != nil {
				return nil, invalid(err)
			}
			continue
		case "idat":
			if idat, err = io.ReadAll(child.Body()); err != nil {
				return nil, invalid(err)
			}
			continue
		}

		cbox, err := child.Parse()
		if errors.Is(err, bmff.ErrUnknownBox) {
			o.logger.Debug("container: skipping meta child", "type", child.Type().String())
			continue
		}
		if err != nil {
			return nil, invalid(err)
		}
		switch v := cbox.(type) {
		case *bmff.ItemInfoBox:
			iinf = v
		case *bmff.ItemLocationBox:
			iloc = v
		case *bmff.ItemPropertiesBox:
			iprp = v
		case *bmff.PrimaryItemBox:
			pitm = v
		}
	}
	if iinf == nil {
		return nil, heiferr.New(heiferr.InvalidInput, heiferr.Unspecified, "no iinf box")
	}

	s := New()
	for _, ie := range iinf.ItemInfos {
		s.addItem(ItemInfo{
			ID:          ItemID(ie.ItemID),
			Type:        ie.ItemType,
			Name:        ie.Name,
			ContentType: ie.ContentType,
			Hidden:      ie.Flags&1 != 0,
		})
	}
	if pitm != nil {
		s.primary = ItemID(pitm.ItemID)
	}

	if iref != nil {
		refs, err := parseIref(iref)
		if err != nil {
			return nil, err
		}
		s.refs = refs
	}

	if iprp != nil {
		if err := s.readProperties(iprp, o.logger); err != nil {
			return nil, err
		}
	}

	if iloc != nil {
		for _, loc := range iloc.Items {
			it, ok := s.items[ItemID(loc.ItemID)]
			if !ok {
				o.logger.Warn("container: location for item without infe", "item", loc.ItemID)
				continue
			}
			data, err := readExtents(sr, idat, loc)
			if err != nil {
				return nil, err
			}
			it.data = data
			it.hasData = true
		}
	}

	o.logger.Debug("container: read meta",
		"items", len(s.order), "references", len(s.refs), "primary", s.primary)
	return s, nil
}

func invalid(err error) error {
	return heiferr.Newf(heiferr.InvalidInput, heiferr.Unspecified, "%v", err)
}

func supportedBrand(ft *bmff.FileTypeBox) bool {
	brands := append([]string{ft.MajorBrand}, ft.Compatible...)
	for _, b := range brands {
		switch b {
		case "heic", "heix", "mif1":
			return true
		}
	}
	return false
}

func (s *Store) readProperties(iprp *bmff.ItemPropertiesBox, log *slog.Logger) error {
	var props []box.Property
	if iprp.PropertyContainer != nil {
		for _, b := range iprp.PropertyContainer.Properties {
			body, err := io.ReadAll(b.Body())
			if err != nil {
				return invalid(err)
			}
			p, err := box.ParseProperty(b.Type().String(), body)
			if err != nil {
				return err
			}
			props = append(props, p)
		}
	}

	for _, assoc := range iprp.Associations {
		for _, entry := range assoc.Entries {
			it, ok := s.items[ItemID(entry.ItemID)]
			if !ok {
				log.Warn("container: properties for item without infe", "item", entry.ItemID)
				continue
			}
			for _, a := range entry.Associations {
				if a.Index == 0 {
					continue
				}
				if int(a.Index) > len(props) {
					return heiferr.Newf(heiferr.InvalidInput, heiferr.NonexistingItemReferenced,
						"item %d references property %d of %d", entry.ItemID, a.Index, len(props))
				}
				it.props = append(it.props, props[a.Index-1])
			}
		}
	}
	return nil
}

// parseIref decodes the body of an item reference box.
func parseIref(data []byte) ([]Reference, error) {
	short := heiferr.New(heiferr.InvalidInput, heiferr.EndOfData, "iref box truncated")
	if len(data) < 4 {
		return nil, short
	}
	idSize := 2
	if data[0] == 1 {
		idSize = 4
	}
	readID := func(b []byte) ItemID {
		if idSize == 4 {
			return ItemID(binary.BigEndian.Uint32(b))
		}
		return ItemID(binary.BigEndian.Uint16(b))
	}

	var refs []Reference
	rest := data[4:]
	for len(rest) > 0 {
		if len(rest) < 8 {
			return nil, short
		}
		size := int(binary.BigEndian.Uint32(rest))
		if size < 8+idSize+2 || size > len(rest) {
			return nil, short
		}
		body := rest[8:size]
		ref := Reference{Type: string(rest[4:8]), From: readID(body)}
		body = body[idSize:]
		n := int(binary.BigEndian.Uint16(body))
		body = body[2:]
		if len(body) < n*idSize {
			return nil, short
		}
		for i := range n {
			ref.To = append(ref.To, readID(body[i*idSize:]))
		}
		refs = append(refs, ref)
		rest = rest[size:]
	}
	return refs, nil
}

// readExtents concatenates the extents of loc. File extents are read through
// a section bounded by the extent, so the buffer only grows as data arrives
// and a length past the end of the file fails without a large allocation.
func readExtents(r io.ReaderAt, idat []byte, loc bmff.ItemLocationBoxEntry) ([]byte, error) {
	var out bytes.Buffer
	for _, ext := range loc.Extents {
		off := loc.BaseOffset + ext.Offset
		if off < loc.BaseOffset {
			return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.EndOfData,
				"item %d extent offset overflows", loc.ItemID)
		}
		switch loc.ConstructionMethod {
		case 0:
			if off > math.MaxInt64 || ext.Length > math.MaxInt64-off {
				return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.EndOfData,
					"item %d extent at %d exceeds file", loc.ItemID, off)
			}
			sec := io.NewSectionReader(r, int64(off), int64(ext.Length))
			if n, err := io.CopyN(&out, sec, int64(ext.Length)); err != nil {
				return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.EndOfData,
					"item %d extent at %d: read %d of %d bytes: %v", loc.ItemID, off, n, ext.Length, err)
			}
		case 1:
			size := uint64(len(idat))
			if ext.Length > size || off > size-ext.Length {
				return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.EndOfData,
					"item %d extent exceeds idat box", loc.ItemID)
			}
			out.Write(idat[off : off+ext.Length])
		default:
			return nil, heiferr.Newf(heiferr.UnsupportedFeature, heiferr.Unspecified,
				"item %d uses construction method %d", loc.ItemID, loc.ConstructionMethod)
		}
	}
	if out.Len() == 0 {
		return nil, nil
	}
	return out.Bytes(), nil
}
