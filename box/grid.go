package box

import (
	"encoding/binary"

	"github.com/gogpu/heif/heiferr"
)

// Grid describes a grid derived image: Rows x Columns tiles assembled into an
// OutputWidth x OutputHeight canvas.
type Grid struct {
	Rows         int
	Columns      int
	OutputWidth  uint32
	OutputHeight uint32
}

// ParseGrid decodes the item payload of a grid image.
//
// Layout: version(8) flags(8) rows_minus_one(8) columns_minus_one(8) then
// output width and height, each 16 bits, or 32 bits when flags&1 is set.
func ParseGrid(data []byte) (Grid, error) {
	if len(data) < 8 {
		return Grid{}, heiferr.New(heiferr.InvalidInput, heiferr.InvalidGridData,
			"Less than 8 bytes of data")
	}

	flags := data[1]
	g := Grid{
		Rows:    int(data[2]) + 1,
		Columns: int(data[3]) + 1,
	}

	if flags&1 != 0 {
		if len(data) < 12 {
			return Grid{}, heiferr.New(heiferr.InvalidInput, heiferr.InvalidGridData,
				"Grid image data incomplete")
		}
		g.OutputWidth = binary.BigEndian.Uint32(data[4:])
		g.OutputHeight = binary.BigEndian.Uint32(data[8:])
	} else {
		g.OutputWidth = uint32(binary.BigEndian.Uint16(data[4:]))
		g.OutputHeight = uint32(binary.BigEndian.Uint16(data[6:]))
	}

	return g, nil
}

// Marshal encodes the grid, choosing 32 bit fields only when needed.
func (g Grid) Marshal() []byte {
	large := g.OutputWidth > 0xffff || g.OutputHeight > 0xffff
	var flags byte
	if large {
		flags = 1
	}
	out := []byte{0, flags, byte(g.Rows - 1), byte(g.Columns - 1)}
	if large {
		out = binary.BigEndian.AppendUint32(out, g.OutputWidth)
		out = binary.BigEndian.AppendUint32(out, g.OutputHeight)
	} else {
		out = binary.BigEndian.AppendUint16(out, uint16(g.OutputWidth))
		out = binary.BigEndian.AppendUint16(out, uint16(g.OutputHeight))
	}
	return out
}

// TileCount returns Rows*Columns.
func (g Grid) TileCount() int { return g.Rows * g.Columns }
