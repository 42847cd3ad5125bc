package box

import (
	"encoding/binary"

	"github.com/gogpu/heif/heiferr"
)

// Offset is the position of one overlay input on the canvas.
type Offset struct {
	X, Y int32
}

// Overlay describes an iovl derived image.
type Overlay struct {
	Version         uint8
	Flags           uint8
	BackgroundColor [4]uint16 // R, G, B, A
	Width           uint32
	Height          uint32
	Offsets         []Offset
}

// ParseOverlay decodes the item payload of an overlay image that references
// numImages inputs.
func ParseOverlay(data []byte, numImages int) (Overlay, error) {
	if len(data) < 2 {
		return Overlay{}, heiferr.New(heiferr.InvalidInput, heiferr.InvalidOverlayData,
			"Overlay image data incomplete")
	}

	o := Overlay{Version: data[0], Flags: data[1]}
	if o.Version != 0 {
		return Overlay{}, heiferr.Newf(heiferr.UnsupportedFeature, heiferr.UnsupportedDataVersion,
			"Overlay image data version %d is not implemented yet", o.Version)
	}

	fieldLen := 2
	if o.Flags&1 != 0 {
		fieldLen = 4
	}

	need := 2 + 4*2 + 2*fieldLen + numImages*2*fieldLen
	if len(data) < need {
		return Overlay{}, heiferr.New(heiferr.InvalidInput, heiferr.InvalidOverlayData,
			"Overlay image data incomplete")
	}

	pos := 2
	for i := range o.BackgroundColor {
		o.BackgroundColor[i] = binary.BigEndian.Uint16(data[pos:])
		pos += 2
	}

	field := func() uint32 {
		var v uint32
		if fieldLen == 4 {
			v = binary.BigEndian.Uint32(data[pos:])
		} else {
			v = uint32(binary.BigEndian.Uint16(data[pos:]))
		}
		pos += fieldLen
		return v
	}
	signed := func() int32 {
		v := field()
		if fieldLen == 2 {
			return int32(int16(v))
		}
		return int32(v)
	}

	o.Width = field()
	o.Height = field()
	o.Offsets = make([]Offset, numImages)
	for i := range o.Offsets {
		o.Offsets[i].X = signed()
		o.Offsets[i].Y = signed()
	}

	return o, nil
}

// Marshal encodes the overlay, choosing 32 bit fields when any value needs them.
func (o Overlay) Marshal() []byte {
	large := o.Width > 0xffff || o.Height > 0xffff
	for _, off := range o.Offsets {
		if off.X != int32(int16(off.X)) || off.Y != int32(int16(off.Y)) {
			large = true
		}
	}
	flags := o.Flags &^ 1
	if large {
		flags |= 1
	}
	out := []byte{0, flags}
	for _, c := range o.BackgroundColor {
		out = binary.BigEndian.AppendUint16(out, c)
	}
	put := func(v uint32) {
		if large {
			out = binary.BigEndian.AppendUint32(out, v)
		} else {
			out = binary.BigEndian.AppendUint16(out, uint16(v))
		}
	}
	put(o.Width)
	put(o.Height)
	for _, off := range o.Offsets {
		put(uint32(off.X))
		put(uint32(off.Y))
	}
	return out
}
