package container

import (
	"encoding/binary"
	"io"

	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
)

// essentialProperties must be understood by a reader to display the item.
var essentialProperties = map[string]bool{
	"hvcC": true,
	"irot": true,
	"imir": true,
	"clap": true,
}

// WriteTo writes the store as a HEIF file: ftyp, meta and one mdat box
// holding the data of every item.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	for _, id := range s.order {
		if id > 0xffff {
			return 0, heiferr.Newf(heiferr.UsageError, heiferr.InvalidParameterValue,
				"item id %d does not fit a version 0 box", id)
		}
	}

	ftyp := s.ftyp()

	// The meta box size does not depend on the offsets written into iloc,
	// so a first pass measures it.
	meta := s.meta(0)
	dataStart := uint32(len(ftyp) + len(meta) + 8)
	meta = s.meta(dataStart)

	var mdat []byte
	for _, id := range s.order {
		mdat = append(mdat, s.items[id].data...)
	}

	out := make([]byte, 0, len(ftyp)+len(meta)+8+len(mdat))
	out = append(out, ftyp...)
	out = append(out, meta...)
	out = box.AppendBox(out, "mdat", mdat)
	n, err := w.Write(out)
	return int64(n), err
}

func (s *Store) ftyp() []byte {
	var body []byte
	body = append(body, "heic"...)
	body = binary.BigEndian.AppendUint32(body, 0)
	body = append(body, "mif1heic"...)
	return box.AppendBox(nil, "ftyp", body)
}

// meta builds the meta box with item data located from dataStart on.
func (s *Store) meta(dataStart uint32) []byte {
	var body []byte

	hdlr := make([]byte, 4, 32)
	hdlr = append(hdlr, "pict"...)
	hdlr = append(hdlr, make([]byte, 12)...)
	hdlr = append(hdlr, 0)
	body = box.AppendFullBox(body, "hdlr", 0, 0, hdlr)

	if s.primary != 0 {
		body = box.AppendFullBox(body, "pitm", 0, 0, binary.BigEndian.AppendUint16(nil, uint16(s.primary)))
	}

	body = append(body, s.iinf()...)
	if len(s.refs) > 0 {
		body = append(body, s.iref()...)
	}
	body = append(body, s.iprp()...)
	body = append(body, s.iloc(dataStart)...)
	return box.AppendFullBox(nil, "meta", 0, 0, body)
}

func (s *Store) iinf() []byte {
	body := binary.BigEndian.AppendUint16(nil, uint16(len(s.order)))
	for _, id := range s.order {
		info := s.items[id].info
		var infe []byte
		infe = binary.BigEndian.AppendUint16(infe, uint16(id))
		infe = binary.BigEndian.AppendUint16(infe, 0)
		infe = append(infe, fourCC(info.Type)...)
		infe = append(infe, info.Name...)
		infe = append(infe, 0)
		if info.Type == "mime" {
			infe = append(infe, info.ContentType...)
			infe = append(infe, 0)
		}
		var flags uint32
		if info.Hidden {
			flags = 1
		}
		body = box.AppendFullBox(body, "infe", 2, flags, infe)
	}
	return box.AppendFullBox(nil, "iinf", 0, 0, body)
}

func (s *Store) iref() []byte {
	var body []byte
	for _, r := range s.refs {
		var ref []byte
		ref = binary.BigEndian.AppendUint16(ref, uint16(r.From))
		ref = binary.BigEndian.AppendUint16(ref, uint16(len(r.To)))
		for _, to := range r.To {
			ref = binary.BigEndian.AppendUint16(ref, uint16(to))
		}
		body = box.AppendBox(body, fourCC(r.Type), ref)
	}
	return box.AppendFullBox(nil, "iref", 0, 0, body)
}

// iprp writes every distinct property once into ipco and associates items
// with them by index.
func (s *Store) iprp() []byte {
	var (
		ipco    []byte
		index   = make(map[string]int)
		indices = make(map[ItemID][]int)
	)
	for _, id := range s.order {
		for _, p := range s.items[id].props {
			enc := box.MarshalProperty(p)
			i, ok := index[string(enc)]
			if !ok {
				ipco = append(ipco, enc...)
				i = len(index) + 1
				index[string(enc)] = i
			}
			indices[id] = append(indices[id], i)
		}
	}

	var flags uint32
	if len(index) > 127 {
		flags = 1
	}
	var ipma []byte
	var entries uint32
	for _, id := range s.order {
		if len(indices[id]) > 0 {
			entries++
		}
	}
	ipma = binary.BigEndian.AppendUint32(ipma, entries)
	for _, id := range s.order {
		idx := indices[id]
		if len(idx) == 0 {
			continue
		}
		ipma = binary.BigEndian.AppendUint16(ipma, uint16(id))
		ipma = append(ipma, uint8(len(idx)))
		for n, i := range idx {
			essential := essentialProperties[s.items[id].props[n].BoxType()]
			if flags&1 != 0 {
				v := uint16(i)
				if essential {
					v |= 0x8000
				}
				ipma = binary.BigEndian.AppendUint16(ipma, v)
				continue
			}
			v := uint8(i)
			if essential {
				v |= 0x80
			}
			ipma = append(ipma, v)
		}
	}

	body := box.AppendBox(nil, "ipco", ipco)
	body = box.AppendFullBox(body, "ipma", 0, flags, ipma)
	return box.AppendBox(nil, "iprp", body)
}

// iloc writes version 1 with 4 byte offsets and lengths and one extent per
// item.
func (s *Store) iloc(dataStart uint32) []byte {
	var located []ItemID
	for _, id := range s.order {
		if s.items[id].hasData {
			located = append(located, id)
		}
	}

	body := []byte{0x44, 0x00}
	body = binary.BigEndian.AppendUint16(body, uint16(len(located)))
	offset := dataStart
	for _, id := range s.order {
		it := s.items[id]
		if !it.hasData {
			continue
		}
		body = binary.BigEndian.AppendUint16(body, uint16(id))
		body = binary.BigEndian.AppendUint16(body, 0) // construction method
		body = binary.BigEndian.AppendUint16(body, 0) // data reference index
		body = binary.BigEndian.AppendUint16(body, 1)
		body = binary.BigEndian.AppendUint32(body, offset)
		body = binary.BigEndian.AppendUint32(body, uint32(len(it.data)))
		offset += uint32(len(it.data))
	}
	return box.AppendFullBox(nil, "iloc", 1, 0, body)
}

// fourCC pads or truncates s to four bytes.
func fourCC(s string) string {
	return (s + "    ")[:4]
}
