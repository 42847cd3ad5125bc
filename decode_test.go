package heif_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/heif"
	"github.com/gogpu/heif/box"
	"github.com/gogpu/heif/container"
	"github.com/gogpu/heif/heiferr"
	"github.com/gogpu/heif/heiftest"
	"github.com/gogpu/heif/pixel"
)

func decode(t *testing.T, ctx *heif.Context, id heif.ItemID, opts *heif.DecodingOptions) *pixel.Image {
	t.Helper()
	img, err := ctx.DecodeImage(id, opts)
	if err != nil {
		t.Fatalf("DecodeImage(%d) = %v", id, err)
	}
	return img
}

// assertSamePlanes fails unless got and want carry identical samples in
// every plane of want.
func assertSamePlanes(t *testing.T, got, want *pixel.Image) {
	t.Helper()
	if got.Width() != want.Width() || got.Height() != want.Height() {
		t.Fatalf("size = %dx%d, want %dx%d", got.Width(), got.Height(), want.Width(), want.Height())
	}
	if got.Chroma() != want.Chroma() {
		t.Fatalf("chroma = %v, want %v", got.Chroma(), want.Chroma())
	}
	for _, ch := range want.Channels() {
		g, ok := got.Plane(ch)
		if !ok {
			t.Errorf("missing %v plane", ch)
			continue
		}
		w, _ := want.Plane(ch)
		if !bytes.Equal(g.Data, w.Data) {
			t.Errorf("%v plane differs", ch)
		}
	}
}

// assertRegion fails unless the plane ch of out holds the plane ch of tile
// at (x0, y0), in plane coordinates.
func assertRegion(t *testing.T, out, tile *pixel.Image, ch pixel.Channel, x0, y0 int) {
	t.Helper()
	dst, _ := out.Plane(ch)
	src, _ := tile.Plane(ch)
	for y := range src.Height {
		if !bytes.Equal(dst.Row(y0 + y)[x0:x0+src.Width], src.Row(y)) {
			t.Errorf("%v plane row %d of tile at (%d,%d) differs", ch, y, x0, y0)
			return
		}
	}
}

// =============================================================================
// Coded images
// =============================================================================

func TestDecodeCodedImage(t *testing.T) {
	for _, chroma := range []pixel.Chroma{pixel.Chroma420, pixel.Chroma422, pixel.Chroma444, pixel.ChromaMonochrome} {
		t.Run(chroma.String(), func(t *testing.T) {
			want := heiftest.Pattern(30, 20, chroma, 7)
			s := container.New()
			id, err := heiftest.AddCodedImage(s, want)
			if err != nil {
				t.Fatal(err)
			}
			s.SetPrimaryItemID(id)

			ctx, p := load(t, s)
			assertSamePlanes(t, decode(t, ctx, id, nil), want)
			if p.Decodes() != 1 {
				t.Errorf("Decodes() = %d, want 1", p.Decodes())
			}
		})
	}
}

func TestDecodeWithoutPlugin(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 16, 16, pixel.Chroma420, 1)
	s.SetPrimaryItemID(id)

	ctx := heif.NewContext()
	if err := ctx.Load(s); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.DecodeImage(id, nil); !errors.Is(err, heiferr.ErrUnsupportedCodec) {
		t.Errorf("DecodeImage() = %v, want UnsupportedCodec", err)
	}
}

func TestDecoderErrorIsWrapped(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 16, 16, pixel.Chroma420, 1)
	s.SetPrimaryItemID(id)

	boom := errors.New("boom")
	ctx := heif.NewContext(heif.WithDecoderPlugin(heiftest.FailingPlugin{Err: boom}))
	if err := ctx.Load(s); err != nil {
		t.Fatal(err)
	}
	_, err := ctx.DecodeImage(id, nil)
	if !errors.Is(err, heiferr.ErrDecoderPlugin) {
		t.Errorf("DecodeImage() = %v, want DecoderPluginError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("DecodeImage() = %v, want the plugin error in the chain", err)
	}
}

func TestDecoderPriority(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 16, 16, pixel.Chroma420, 1)
	s.SetPrimaryItemID(id)

	// The failing plugin has priority 1, so the stand-in codec wins.
	good := heiftest.New()
	ctx := heif.NewContext(
		heif.WithDecoderPlugin(heiftest.FailingPlugin{Err: errors.New("unused")}),
		heif.WithDecoderPlugin(good),
	)
	if err := ctx.Load(s); err != nil {
		t.Fatal(err)
	}
	decode(t, ctx, id, nil)
	if good.Decodes() != 1 {
		t.Errorf("Decodes() = %d, want 1", good.Decodes())
	}
}

func TestDecodeImageAs(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 16, 16, pixel.ChromaMonochrome, 3)
	s.SetPrimaryItemID(id)
	ctx, _ := load(t, s)

	img, err := ctx.DecodeImageAs(id, pixel.ColorspaceRGB, pixel.Chroma444, nil)
	if err != nil {
		t.Fatalf("DecodeImageAs() = %v", err)
	}
	if img.Colorspace() != pixel.ColorspaceRGB {
		t.Fatalf("colorspace = %v, want RGB", img.Colorspace())
	}
	want := heiftest.Pattern(16, 16, pixel.ChromaMonochrome, 3)
	for _, pt := range [][2]int{{0, 0}, {5, 9}, {15, 15}} {
		r, _ := img.Sample(pixel.ChannelR, pt[0], pt[1])
		y, _ := want.Sample(pixel.ChannelY, pt[0], pt[1])
		if r != y {
			t.Errorf("R at %v = %d, want %d", pt, r, y)
		}
	}
}

// =============================================================================
// Transformations and alpha
// =============================================================================

func TestDecodeRotation(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 64, 48, pixel.Chroma420, 1)
	s.AddProperty(id, box.Irot{Angle: 90})
	s.SetPrimaryItemID(id)
	ctx, _ := load(t, s)

	img := decode(t, ctx, id, nil)
	if img.Width() != 48 || img.Height() != 64 {
		t.Errorf("rotated size = %dx%d, want 48x64", img.Width(), img.Height())
	}

	raw := decode(t, ctx, id, &heif.DecodingOptions{IgnoreTransformations: true})
	if raw.Width() != 64 || raw.Height() != 48 {
		t.Errorf("untransformed size = %dx%d, want 64x48", raw.Width(), raw.Height())
	}
}

func TestDecodeMirror(t *testing.T) {
	const w, h = 16, 8
	tests := []struct {
		name   string
		axis   box.MirrorAxis
		source func(x, y int) (int, int)
	}{
		{"vertical axis swaps left and right", box.MirrorVertical, func(x, y int) (int, int) { return w - 1 - x, y }},
		{"horizontal axis swaps top and bottom", box.MirrorHorizontal, func(x, y int) (int, int) { return x, h - 1 - y }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := container.New()
			id := addImage(t, s, w, h, pixel.Chroma444, 9)
			s.AddProperty(id, box.Imir{Axis: tt.axis})
			s.SetPrimaryItemID(id)
			ctx, _ := load(t, s)

			img := decode(t, ctx, id, nil)
			if img.Width() != w || img.Height() != h {
				t.Fatalf("mirrored size = %dx%d, want %dx%d", img.Width(), img.Height(), w, h)
			}
			src := heiftest.Pattern(w, h, pixel.Chroma444, 9)
			for _, ch := range []pixel.Channel{pixel.ChannelY, pixel.ChannelCb} {
				for y := range h {
					for x := range w {
						sx, sy := tt.source(x, y)
						got, _ := img.Sample(ch, x, y)
						want, _ := src.Sample(ch, sx, sy)
						if got != want {
							t.Fatalf("%v(%d,%d) = %d, want source (%d,%d) = %d", ch, x, y, got, sx, sy, want)
						}
					}
				}
			}

			raw := decode(t, ctx, id, &heif.DecodingOptions{IgnoreTransformations: true})
			assertSamePlanes(t, raw, src)
		})
	}
}

func TestDecodeCleanAperture(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 64, 48, pixel.Chroma444, 5)
	s.AddProperty(id, box.Clap{
		Width:       box.NewFraction(32, 1),
		Height:      box.NewFraction(24, 1),
		HorizOffset: box.NewFraction(0, 1),
		VertOffset:  box.NewFraction(0, 1),
	})
	s.SetPrimaryItemID(id)
	ctx, _ := load(t, s)

	img := decode(t, ctx, id, nil)
	if img.Width() != 32 || img.Height() != 24 {
		t.Fatalf("cropped size = %dx%d, want 32x24", img.Width(), img.Height())
	}
	src := heiftest.Pattern(64, 48, pixel.Chroma444, 5)
	got, _ := img.Sample(pixel.ChannelY, 0, 0)
	want, _ := src.Sample(pixel.ChannelY, 16, 12)
	if got != want {
		t.Errorf("Y(0,0) = %d, want source Y(16,12) = %d", got, want)
	}
}

func TestDecodeDegenerateCleanAperture(t *testing.T) {
	s := container.New()
	id := addImage(t, s, 64, 48, pixel.Chroma420, 1)
	s.AddProperty(id, box.Clap{
		Width:       box.NewFraction(1, 1),
		Height:      box.NewFraction(1, 1),
		HorizOffset: box.NewFraction(0, 1),
		VertOffset:  box.NewFraction(0, 1),
	})
	s.SetPrimaryItemID(id)
	ctx, _ := load(t, s)

	if _, err := ctx.DecodeImage(id, nil); !errors.Is(err, heiferr.ErrInvalidCleanAperture) {
		t.Errorf("DecodeImage() = %v, want InvalidCleanAperture", err)
	}
}

func TestDecodeAttachesAlpha(t *testing.T) {
	tests := []struct {
		name             string
		alphaW, alphaH   int
		ignoreTransforms bool
	}{
		{"same size", 32, 24, false},
		{"same size untransformed", 32, 24, true},
		{"scaled", 16, 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := container.New()
			master := addImage(t, s, 32, 24, pixel.Chroma420, 1)
			alpha := addImage(t, s, tt.alphaW, tt.alphaH, pixel.ChromaMonochrome, 9)
			s.SetPrimaryItemID(master)
			s.AddReference(alpha, "auxl", []heif.ItemID{master})
			s.SetAuxType(alpha, "urn:mpeg:hevc:2015:auxid:1")
			ctx, _ := load(t, s)

			img := decode(t, ctx, master, &heif.DecodingOptions{IgnoreTransformations: tt.ignoreTransforms})
			a, ok := img.Plane(pixel.ChannelAlpha)
			if !ok {
				t.Fatal("no alpha plane")
			}
			if a.Width != 32 || a.Height != 24 {
				t.Errorf("alpha plane = %dx%d, want 32x24", a.Width, a.Height)
			}
			if tt.alphaW == 32 {
				want, _ := heiftest.Pattern(32, 24, pixel.ChromaMonochrome, 9).Plane(pixel.ChannelY)
				if !bytes.Equal(a.Data, want.Data) {
					t.Error("alpha plane differs from the alpha image")
				}
			}
		})
	}
}

// =============================================================================
// Grids
// =============================================================================

func TestDecodeGrid(t *testing.T) {
	for _, tt := range []struct {
		name    string
		threads int
	}{{"sequential", 1}, {"parallel", 4}} {
		t.Run(tt.name, func(t *testing.T) {
			s := container.New()
			tiles := make([]*pixel.Image, 4)
			ids := make([]heif.ItemID, 4)
			for i := range tiles {
				tiles[i] = heiftest.Pattern(512, 512, pixel.Chroma420, byte(10*i+1))
				id, err := heiftest.AddCodedImage(s, tiles[i])
				if err != nil {
					t.Fatal(err)
				}
				ids[i] = id
			}
			grid := heiftest.AddGrid(s, 2, 2, 1024, 1024, ids)
			s.SetPrimaryItemID(grid)

			ctx, p := load(t, s, heif.WithDecodingThreads(tt.threads))
			out := decode(t, ctx, grid, nil)
			if out.Width() != 1024 || out.Height() != 1024 || out.Chroma() != pixel.Chroma420 {
				t.Fatalf("grid = %dx%d %v, want 1024x1024 4:2:0", out.Width(), out.Height(), out.Chroma())
			}
			for i, tile := range tiles {
				x, y := 512*(i%2), 512*(i/2)
				assertRegion(t, out, tile, pixel.ChannelY, x, y)
				assertRegion(t, out, tile, pixel.ChannelCb, x/2, y/2)
				assertRegion(t, out, tile, pixel.ChannelCr, x/2, y/2)
			}
			if p.Decodes() != 4 {
				t.Errorf("Decodes() = %d, want 4", p.Decodes())
			}
			if got := ctx.TopLevelImageIDs(); len(got) != 1 || got[0] != grid {
				t.Errorf("TopLevelImageIDs() = %v, want only the grid", got)
			}
		})
	}
}

func TestDecodeGridClipsPartialTiles(t *testing.T) {
	s := container.New()
	var ids []heif.ItemID
	for i := range 4 {
		ids = append(ids, addImage(t, s, 16, 16, pixel.Chroma444, byte(i)))
	}
	grid := heiftest.AddGrid(s, 2, 2, 24, 20, ids)
	s.SetPrimaryItemID(grid)
	ctx, _ := load(t, s)

	out := decode(t, ctx, grid, nil)
	if out.Width() != 24 || out.Height() != 20 {
		t.Fatalf("grid = %dx%d, want 24x20", out.Width(), out.Height())
	}
	got, _ := out.Sample(pixel.ChannelY, 23, 19)
	want, _ := heiftest.Pattern(16, 16, pixel.Chroma444, 3).Sample(pixel.ChannelY, 7, 3)
	if got != want {
		t.Errorf("Y(23,19) = %d, want %d", got, want)
	}
}

func TestDecodeGridErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T, s *container.Store) heif.ItemID
		opts  []heif.Option
		want  error
	}{
		{
			name: "reference count",
			build: func(t *testing.T, s *container.Store) heif.ItemID {
				var ids []heif.ItemID
				for i := range 3 {
					ids = append(ids, addImage(t, s, 8, 8, pixel.Chroma420, byte(i)))
				}
				return heiftest.AddGrid(s, 2, 2, 16, 16, ids)
			},
			want: heiferr.ErrMissingGridImages,
		},
		{
			name: "tile chroma mismatch",
			build: func(t *testing.T, s *container.Store) heif.ItemID {
				ids := []heif.ItemID{
					addImage(t, s, 8, 8, pixel.Chroma420, 1),
					addImage(t, s, 8, 8, pixel.Chroma444, 2),
				}
				return heiftest.AddGrid(s, 1, 2, 16, 8, ids)
			},
			want: heiferr.ErrInvalidGridData,
		},
		{
			name: "tile outside grid",
			build: func(t *testing.T, s *container.Store) heif.ItemID {
				ids := []heif.ItemID{
					addImage(t, s, 16, 16, pixel.Chroma420, 1),
					addImage(t, s, 16, 16, pixel.Chroma420, 2),
				}
				return heiftest.AddGrid(s, 1, 2, 16, 16, ids)
			},
			want: heiferr.ErrInvalidGridData,
		},
		{
			name: "output above limit",
			build: func(t *testing.T, s *container.Store) heif.ItemID {
				tile := addImage(t, s, 8, 8, pixel.Chroma420, 1)
				return addRawGrid(s, box.Grid{Rows: 1, Columns: 1, OutputWidth: 8, OutputHeight: 65}, tile)
			},
			opts: []heif.Option{heif.WithMaxImageSize(64, 64)},
			want: heiferr.ErrSecurityLimitExceeded,
		},
		{
			name: "pixi too short",
			build: func(t *testing.T, s *container.Store) heif.ItemID {
				tile := addImage(t, s, 8, 8, pixel.Chroma420, 1)
				grid := heiftest.AddGrid(s, 1, 1, 8, 8, []heif.ItemID{tile})
				s.AddProperty(grid, box.Pixi{BitsPerChannel: []uint8{8}})
				return grid
			},
			want: heiferr.ErrInvalidPixiBox,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := container.New()
			grid := tt.build(t, s)
			s.SetPrimaryItemID(grid)
			ctx, _ := load(t, s, tt.opts...)

			if _, err := ctx.DecodeImage(grid, nil); !errors.Is(err, tt.want) {
				t.Errorf("DecodeImage() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeGridTileFailure(t *testing.T) {
	s := container.New()
	var ids []heif.ItemID
	for i := range 4 {
		ids = append(ids, addImage(t, s, 8, 8, pixel.Chroma420, byte(i)))
	}
	grid := heiftest.AddGrid(s, 2, 2, 16, 16, ids)
	s.SetPrimaryItemID(grid)

	boom := errors.New("tile failed")
	ctx := heif.NewContext(heif.WithDecoderPlugin(heiftest.FailingPlugin{Err: boom}), heif.WithDecodingThreads(3))
	if err := ctx.Load(s); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.DecodeImage(grid, nil); !errors.Is(err, boom) {
		t.Errorf("DecodeImage() = %v, want the tile error", err)
	}
}

// addRawGrid stores a grid item without an ispe property.
func addRawGrid(s *container.Store, g box.Grid, tiles ...heif.ItemID) heif.ItemID {
	id := s.NewImageItem("grid")
	_ = s.AppendPayload(id, g.Marshal(), false)
	s.AddReference(id, "dimg", tiles)
	for _, tile := range tiles {
		s.SetHidden(tile, true)
	}
	return id
}

// =============================================================================
// Derived images
// =============================================================================

func TestDecodeIdentity(t *testing.T) {
	s := container.New()
	want := heiftest.Pattern(16, 16, pixel.Chroma420, 4)
	coded, err := heiftest.AddCodedImage(s, want)
	if err != nil {
		t.Fatal(err)
	}
	s.SetHidden(coded, true)
	iden := s.NewImageItem("iden")
	s.AddReference(iden, "dimg", []heif.ItemID{coded})
	s.SetPrimaryItemID(iden)
	ctx, _ := load(t, s)

	assertSamePlanes(t, decode(t, ctx, iden, nil), want)
	if child, err := ctx.NonVirtualChild(iden); err != nil || child != coded {
		t.Errorf("NonVirtualChild() = %d, %v, want %d", child, err, coded)
	}
	if bits, err := ctx.LumaBitsPerPixel(iden); err != nil || bits != 8 {
		t.Errorf("LumaBitsPerPixel() = %d, %v, want 8", bits, err)
	}
}

func TestDerivationCycle(t *testing.T) {
	s := container.New()
	a := s.NewImageItem("iden")
	b := s.NewImageItem("iden")
	s.AddReference(a, "dimg", []heif.ItemID{b})
	s.AddReference(b, "dimg", []heif.ItemID{a})
	s.SetPrimaryItemID(a)
	ctx, _ := load(t, s)

	if _, err := ctx.DecodeImage(a, nil); !errors.Is(err, heiferr.ErrInvalidDerivedImage) {
		t.Errorf("DecodeImage() = %v, want InvalidDerivedImage", err)
	}
	if _, err := ctx.NonVirtualChild(a); !errors.Is(err, heiferr.ErrInvalidDerivedImage) {
		t.Errorf("NonVirtualChild() = %v, want InvalidDerivedImage", err)
	}
}

func TestDerivationDepthLimit(t *testing.T) {
	s := container.New()
	next := addImage(t, s, 8, 8, pixel.Chroma420, 1)
	for range 4 {
		iden := s.NewImageItem("iden")
		s.AddReference(iden, "dimg", []heif.ItemID{next})
		next = iden
	}
	s.SetPrimaryItemID(next)

	shallow, _ := load(t, s, heif.WithMaxDerivationDepth(3))
	if _, err := shallow.DecodeImage(next, nil); !errors.Is(err, heiferr.ErrInvalidDerivedImage) {
		t.Errorf("DecodeImage() with depth 3 = %v, want InvalidDerivedImage", err)
	}
	if _, err := shallow.NonVirtualChild(next); !errors.Is(err, heiferr.ErrInvalidDerivedImage) {
		t.Errorf("NonVirtualChild() with depth 3 = %v, want InvalidDerivedImage", err)
	}

	deep, _ := load(t, s)
	decode(t, deep, next, nil)
}

func TestNonVirtualChildWithoutReference(t *testing.T) {
	s := container.New()
	iden := s.NewImageItem("iden")
	s.SetPrimaryItemID(iden)
	ctx, _ := load(t, s)

	if _, err := ctx.NonVirtualChild(iden); !errors.Is(err, heiferr.ErrNoItemData) {
		t.Errorf("NonVirtualChild() = %v, want NoItemData", err)
	}
}

// =============================================================================
// Overlays
// =============================================================================

func TestDecodeOverlay(t *testing.T) {
	s := container.New()
	inside := addImage(t, s, 8, 8, pixel.ChromaMonochrome, 2)
	outside := addImage(t, s, 8, 8, pixel.ChromaMonochrome, 3)
	ov := heiftest.AddOverlay(s, box.Overlay{
		BackgroundColor: [4]uint16{0xffff, 0, 0x8000, 0xffff},
		Width:           32,
		Height:          32,
		Offsets:         []box.Offset{{X: 4, Y: 6}, {X: 100, Y: -50}},
	}, []heif.ItemID{inside, outside})
	s.SetPrimaryItemID(ov)
	ctx, _ := load(t, s)

	img := decode(t, ctx, ov, nil)
	if img.Colorspace() != pixel.ColorspaceRGB || img.Width() != 32 || img.Height() != 32 {
		t.Fatalf("overlay = %v %dx%d, want RGB 32x32", img.Colorspace(), img.Width(), img.Height())
	}

	bg := []struct {
		ch   pixel.Channel
		want uint16
	}{{pixel.ChannelR, 0xff}, {pixel.ChannelG, 0}, {pixel.ChannelB, 0x80}}
	for _, c := range bg {
		if got, _ := img.Sample(c.ch, 0, 0); got != c.want {
			t.Errorf("background %v = %d, want %d", c.ch, got, c.want)
		}
	}

	src := heiftest.Pattern(8, 8, pixel.ChromaMonochrome, 2)
	for _, pt := range [][2]int{{0, 0}, {7, 7}, {3, 5}} {
		want, _ := src.Sample(pixel.ChannelY, pt[0], pt[1])
		got, _ := img.Sample(pixel.ChannelG, pt[0]+4, pt[1]+6)
		if got != want {
			t.Errorf("G at %v = %d, want %d", pt, got, want)
		}
	}
}

func TestDecodeOverlayErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload func(refs int) []byte
		opts    []heif.Option
		want    error
	}{
		{
			name: "unsupported version",
			payload: func(int) []byte {
				return append([]byte{1, 0}, make([]byte, 20)...)
			},
			want: heiferr.ErrUnsupportedDataVersion,
		},
		{
			name: "truncated",
			payload: func(int) []byte {
				return []byte{0, 0, 0, 0}
			},
			want: heiferr.ErrInvalidOverlayData,
		},
		{
			name: "canvas above limit",
			payload: func(refs int) []byte {
				return box.Overlay{Width: 8, Height: 65, Offsets: make([]box.Offset, refs)}.Marshal()
			},
			opts: []heif.Option{heif.WithMaxImageSize(64, 64)},
			want: heiferr.ErrSecurityLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := container.New()
			ref := addImage(t, s, 8, 8, pixel.ChromaMonochrome, 1)
			ov := s.NewImageItem("iovl")
			_ = s.AppendPayload(ov, tt.payload(1), false)
			s.AddReference(ov, "dimg", []heif.ItemID{ref})
			s.SetPrimaryItemID(ov)
			ctx, _ := load(t, s, tt.opts...)

			if _, err := ctx.DecodeImage(ov, nil); !errors.Is(err, tt.want) {
				t.Errorf("DecodeImage() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeUnknownImage(t *testing.T) {
	s := container.New()
	s.SetPrimaryItemID(addImage(t, s, 8, 8, pixel.Chroma420, 1))
	ctx, _ := load(t, s)

	if _, err := ctx.DecodeImage(500, nil); heiferr.CodeOf(err) != heiferr.UsageError {
		t.Errorf("DecodeImage(500) = %v, want a usage error", err)
	}
}
