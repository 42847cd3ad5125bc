package heif

import (
	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/internal/parallel"
	"github.com/gogpu/heif/pixel"
)

// tilePlacement is the position of one grid tile on the output canvas.
type tilePlacement struct {
	id   ItemID
	x, y int
}

// decodeGrid assembles a grid image from its tiles. Tiles are decoded
// through the context's pool; each one writes a disjoint region of the
// output planes.
func (c *Context) decodeGrid(id ItemID, opts *DecodingOptions, chain []ItemID) (*pixel.Image, error) {
	data, err := c.store.CompressedPayload(id)
	if err != nil {
		return nil, err
	}
	grid, err := box.ParseGrid(data)
	if err != nil {
		return nil, err
	}

	tiles := c.store.ReferencesOfType(id, refDerivedImage)
	if len(tiles) != grid.TileCount() {
		return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.MissingGridImages,
			"grid %d has %d tile references, want %dx%d", id, len(tiles), grid.Rows, grid.Columns)
	}
	for _, tile := range tiles {
		if !c.IsImage(tile) {
			return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.MissingGridImages,
				"grid %d references %d, which is not an image", id, tile)
		}
	}

	chroma, err := c.tileChroma(id, tiles)
	if err != nil {
		return nil, err
	}

	width, height := int(grid.OutputWidth), int(grid.OutputHeight)
	if err := c.checkLimits(width, height); err != nil {
		return nil, err
	}

	out, err := c.newGridCanvas(id, width, height, chroma)
	if err != nil {
		return nil, err
	}

	placements, err := c.placeTiles(id, grid, tiles)
	if err != nil {
		return nil, err
	}

	c.log.Debug("heif: decoding grid",
		"item", id, "rows", grid.Rows, "columns", grid.Columns, "threads", c.opts.threads)

	pool := parallel.NewPool(c.opts.threads)
	for _, t := range placements {
		err := pool.Go(func() error {
			tile, err := c.decodeImage(t.id, opts, chain)
			if err != nil {
				return err
			}
			return pasteTile(out, tile, t.x, t.y)
		})
		if err != nil {
			break
		}
	}
	if err := pool.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// tileChroma returns the chroma format shared by all tiles, read from the
// hvcC of each tile's coded image.
func (c *Context) tileChroma(id ItemID, tiles []ItemID) (pixel.Chroma, error) {
	var chroma pixel.Chroma
	for i, tile := range tiles {
		cfg, err := c.codedConfiguration(tile)
		if err != nil {
			return 0, err
		}
		tc := pixel.ChromaFromFormatIDC(cfg.ChromaFormat)
		if i == 0 {
			chroma = tc
		} else if tc != chroma {
			return 0, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidGridData,
				"grid %d mixes %v and %v tiles", id, chroma, tc)
		}
	}
	return chroma, nil
}

// newGridCanvas allocates the grid output. Bit depths come from the grid's
// pixi property when there is one.
func (c *Context) newGridCanvas(id ItemID, width, height int, chroma pixel.Chroma) (*pixel.Image, error) {
	lumaDepth, chromaDepth := 8, 8
	for _, p := range c.store.Properties(id) {
		pixi, ok := p.(box.Pixi)
		if !ok {
			continue
		}
		need := 3
		if chroma == pixel.ChromaMonochrome {
			need = 1
		}
		if len(pixi.BitsPerChannel) < need {
			return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidPixiBox,
				"pixi of grid %d lists %d channels, want %d", id, len(pixi.BitsPerChannel), need)
		}
		lumaDepth = int(pixi.BitsPerChannel[0])
		if need == 3 {
			chromaDepth = int(pixi.BitsPerChannel[1])
		}
	}

	cs := pixel.ColorspaceYCbCr
	if chroma == pixel.ChromaMonochrome {
		cs = pixel.ColorspaceMonochrome
	}
	out := pixel.New(width, height, cs, chroma)
	if err := out.AddPlane(pixel.ChannelY, width, height, lumaDepth); err != nil {
		return nil, err
	}
	if chroma != pixel.ChromaMonochrome {
		for _, ch := range []pixel.Channel{pixel.ChannelCb, pixel.ChannelCr} {
			if err := out.AddPlane(ch, width, height, chromaDepth); err != nil {
				return nil, err
			}
		}
	}
	if profile := c.profileOf(id); profile != nil {
		out.SetColorProfile(profile)
	}
	return out, nil
}

// placeTiles computes tile origins in row-major order. A tile's width
// advances x; the last tile of a row gives the row height.
func (c *Context) placeTiles(id ItemID, grid box.Grid, tiles []ItemID) ([]tilePlacement, error) {
	placements := make([]tilePlacement, 0, len(tiles))
	y := 0
	for row := range grid.Rows {
		x, rowHeight := 0, 0
		for col := range grid.Columns {
			tile := c.images[tiles[row*grid.Columns+col]]
			if tile.width <= 0 || tile.height <= 0 {
				return nil, heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidGridData,
					"tile %d of grid %d has no size", tile.id, id)
			}
			placements = append(placements, tilePlacement{id: tile.id, x: x, y: y})
			x += tile.width
			rowHeight = tile.height
		}
		y += rowHeight
	}
	return placements, nil
}

// pasteTile copies the planes of tile into out at (x0, y0), clipped to the
// output. Chroma positions are divided by the subsampling factors.
func pasteTile(out, tile *pixel.Image, x0, y0 int) error {
	if tile.Chroma() != out.Chroma() {
		return heiferr.Newf(heiferr.InvalidInput, heiferr.WrongTileImageChromaFormat,
			"tile chroma %v does not match grid chroma %v", tile.Chroma(), out.Chroma())
	}
	if x0 >= out.Width() || y0 >= out.Height() {
		return heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidGridData,
			"tile at (%d,%d) lies outside the %dx%d grid", x0, y0, out.Width(), out.Height())
	}

	sh, sv := out.Chroma().Subsampling()
	for _, ch := range tile.Channels() {
		dst, ok := out.Plane(ch)
		if !ok {
			continue
		}
		src, _ := tile.Plane(ch)
		if src.BitDepth != dst.BitDepth {
			return heiferr.Newf(heiferr.InvalidInput, heiferr.InvalidGridData,
				"%d bit tile in %d bit grid", src.BitDepth, dst.BitDepth)
		}

		px, py := x0, y0
		if ch.IsChroma() {
			px, py = x0/sh, y0/sv
		}
		w := min(src.Width, dst.Width-px)
		h := min(src.Height, dst.Height-py)
		bps := src.BytesPerSample()
		for y := range h {
			copy(dst.Row(py + y)[px*bps:], src.Row(y)[:w*bps])
		}
	}
	return nil
}
