package box

import (
	"github.com/gogpu/heif/heiferr"
)

// ParseProperty decodes the body of a property box. body starts right after
// the 8 byte box header; for full boxes it includes version and flags.
// Box types this package does not model are returned as Unknown.
func ParseProperty(boxType string, body []byte) (Property, error) {
	switch boxType {
	case "ispe":
		r := newReader(body, boxType)
		r.u32() // version, flags
		p := Ispe{Width: r.u32(), Height: r.u32()}
		return p, r.err
	case "irot":
		r := newReader(body, boxType)
		return Irot{Angle: int(r.u8()&0x03) * 90}, r.err
	case "imir":
		r := newReader(body, boxType)
		return Imir{Axis: MirrorAxis(r.u8() & 0x01)}, r.err
	case "clap":
		return parseClap(body)
	case "colr":
		return parseColr(body)
	case "pixi":
		r := newReader(body, boxType)
		r.u32()
		n := int(r.u8())
		p := Pixi{BitsPerChannel: r.bytes(n)}
		if r.err != nil {
			return nil, heiferr.New(heiferr.InvalidInput, heiferr.InvalidPixiBox, "pixi box truncated")
		}
		return p, nil
	case "hvcC":
		return parseHvcC(body)
	case "auxC":
		r := newReader(body, boxType)
		r.u32()
		p := AuxC{AuxType: r.cstring()}
		p.Subtypes = r.rest()
		return p, r.err
	}
	return Unknown{Type: boxType, Data: append([]byte(nil), body...)}, nil
}

func parseClap(body []byte) (Property, error) {
	r := newReader(body, "clap")
	next := func() Fraction {
		num := int32(r.u32())
		den := int32(r.u32())
		return Fraction{num, den}
	}
	c := Clap{Width: next(), Height: next(), HorizOffset: next(), VertOffset: next()}
	if r.err != nil {
		return nil, r.err
	}
	if !c.Width.IsValid() || !c.Height.IsValid() || !c.HorizOffset.IsValid() || !c.VertOffset.IsValid() {
		return nil, heiferr.New(heiferr.InvalidInput, heiferr.InvalidCleanAperture, "zero denominator in clap box")
	}
	return c, nil
}

func parseColr(body []byte) (Property, error) {
	r := newReader(body, "colr")
	typ := string(r.bytes(4))
	if r.err != nil {
		return nil, r.err
	}
	switch typ {
	case "nclx":
		p := &NclxProfile{
			ColourPrimaries:         r.u16(),
			TransferCharacteristics: r.u16(),
			MatrixCoefficients:      r.u16(),
		}
		p.FullRange = r.u8()&0x80 != 0
		return Colr{Profile: p}, r.err
	case "prof", "rICC":
		return Colr{Profile: &RawProfile{Type: typ, Data: r.rest()}}, nil
	}
	return Unknown{Type: "colr", Data: append([]byte(nil), body...)}, nil
}

// MarshalProperty encodes p as a complete box, header included.
func MarshalProperty(p Property) []byte {
	var w writer
	switch p := p.(type) {
	case Ispe:
		w.u32(p.Width)
		w.u32(p.Height)
		return AppendFullBox(nil, "ispe", 0, 0, w.buf)
	case Irot:
		w.u8(uint8(p.Angle/90) & 0x03)
	case Imir:
		w.u8(uint8(p.Axis) & 0x01)
	case Clap:
		for _, f := range [...]Fraction{p.Width, p.Height, p.HorizOffset, p.VertOffset} {
			w.u32(uint32(f.Num))
			w.u32(uint32(f.Den))
		}
	case Colr:
		switch prof := p.Profile.(type) {
		case *NclxProfile:
			w.raw([]byte("nclx"))
			w.u16(prof.ColourPrimaries)
			w.u16(prof.TransferCharacteristics)
			w.u16(prof.MatrixCoefficients)
			if prof.FullRange {
				w.u8(0x80)
			} else {
				w.u8(0)
			}
		case *RawProfile:
			w.raw([]byte(prof.Type))
			w.raw(prof.Data)
		}
	case Pixi:
		w.u8(uint8(len(p.BitsPerChannel)))
		w.raw(p.BitsPerChannel)
		return AppendFullBox(nil, "pixi", 0, 0, w.buf)
	case *HvcC:
		w.raw(marshalHvcC(p))
	case AuxC:
		w.cstring(p.AuxType)
		w.raw(p.Subtypes)
		return AppendFullBox(nil, "auxC", 0, 0, w.buf)
	case Unknown:
		w.raw(p.Data)
	}
	return AppendBox(nil, p.BoxType(), w.buf)
}
