// Package pixel provides planar images as produced by HEIF decoders: a
// colorspace, a chroma layout and a set of independently sized planes.
//
// Samples of up to 8 bits use one byte. Deeper samples use two bytes in
// little-endian order.
package pixel

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/heif/box"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("pixel: invalid dimensions")

	// ErrInvalidBitDepth is returned for bit depths outside 1..16.
	ErrInvalidBitDepth = errors.New("pixel: invalid bit depth")

	// ErrMissingPlane is returned when an operation needs a plane the image lacks.
	ErrMissingPlane = errors.New("pixel: missing plane")
)

// Colorspace identifies how the planes of an image are interpreted.
type Colorspace uint8

const (
	ColorspaceUndefined Colorspace = iota
	ColorspaceYCbCr
	ColorspaceRGB
	ColorspaceMonochrome
)

func (c Colorspace) String() string {
	switch c {
	case ColorspaceYCbCr:
		return "YCbCr"
	case ColorspaceRGB:
		return "RGB"
	case ColorspaceMonochrome:
		return "monochrome"
	}
	return "undefined"
}

// Chroma is the chroma sampling layout.
type Chroma uint8

const (
	ChromaUndefined Chroma = iota
	ChromaMonochrome
	Chroma420
	Chroma422
	Chroma444
)

func (c Chroma) String() string {
	switch c {
	case ChromaMonochrome:
		return "4:0:0"
	case Chroma420:
		return "4:2:0"
	case Chroma422:
		return "4:2:2"
	case Chroma444:
		return "4:4:4"
	}
	return "undefined"
}

// Subsampling returns the horizontal and vertical chroma subsampling factors.
func (c Chroma) Subsampling() (h, v int) {
	switch c {
	case Chroma420:
		return 2, 2
	case Chroma422:
		return 2, 1
	}
	return 1, 1
}

// ChromaFromFormatIDC maps an HEVC chroma_format_idc to a Chroma.
func ChromaFromFormatIDC(idc uint8) Chroma {
	switch idc {
	case 0:
		return ChromaMonochrome
	case 1:
		return Chroma420
	case 2:
		return Chroma422
	case 3:
		return Chroma444
	}
	return ChromaUndefined
}

// FormatIDC is the inverse of ChromaFromFormatIDC.
func (c Chroma) FormatIDC() uint8 {
	switch c {
	case ChromaMonochrome:
		return 0
	case Chroma422:
		return 2
	case Chroma444:
		return 3
	}
	return 1
}

// Channel names a plane.
type Channel uint8

const (
	ChannelY Channel = iota
	ChannelCb
	ChannelCr
	ChannelR
	ChannelG
	ChannelB
	ChannelAlpha
)

var channelNames = [...]string{"Y", "Cb", "Cr", "R", "G", "B", "Alpha"}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return fmt.Sprintf("Channel(%d)", uint8(c))
}

// IsChroma reports whether c is subsampled with the image chroma.
func (c Channel) IsChroma() bool {
	return c == ChannelCb || c == ChannelCr
}

// Plane is one channel of an image.
type Plane struct {
	Width    int
	Height   int
	BitDepth int
	Stride   int
	Data     []byte
}

// BytesPerSample returns 1 for bit depths up to 8 and 2 above.
func (p *Plane) BytesPerSample() int {
	return (p.BitDepth + 7) / 8
}

// Row returns the samples of row y.
func (p *Plane) Row(y int) []byte {
	off := y * p.Stride
	return p.Data[off : off+p.Width*p.BytesPerSample()]
}

func newPlane(w, h, bitDepth int) (*Plane, error) {
	if w <= 0 || h <= 0 {
		return nil, ErrInvalidDimensions
	}
	if bitDepth < 1 || bitDepth > 16 {
		return nil, ErrInvalidBitDepth
	}
	stride := w * ((bitDepth + 7) / 8)
	return &Plane{
		Width:    w,
		Height:   h,
		BitDepth: bitDepth,
		Stride:   stride,
		Data:     make([]byte, stride*h),
	}, nil
}

// Image is a planar image.
//
// Image is not safe for concurrent writes to the same plane region. Disjoint
// regions may be written concurrently.
type Image struct {
	width      int
	height     int
	colorspace Colorspace
	chroma     Chroma
	planes     map[Channel]*Plane
	profile    box.ColorProfile
}

// New returns an image without planes.
func New(width, height int, cs Colorspace, chroma Chroma) *Image {
	return &Image{
		width:      width,
		height:     height,
		colorspace: cs,
		chroma:     chroma,
		planes:     make(map[Channel]*Plane),
	}
}

// NewWithPlanes returns an image with every plane its colorspace and chroma
// require, all at bitDepth and zero filled.
func NewWithPlanes(width, height int, cs Colorspace, chroma Chroma, bitDepth int) (*Image, error) {
	img := New(width, height, cs, chroma)
	var channels []Channel
	switch cs {
	case ColorspaceRGB:
		channels = []Channel{ChannelR, ChannelG, ChannelB}
	case ColorspaceMonochrome:
		channels = []Channel{ChannelY}
	case ColorspaceYCbCr:
		channels = []Channel{ChannelY}
		if chroma != ChromaMonochrome {
			channels = append(channels, ChannelCb, ChannelCr)
		}
	default:
		return nil, fmt.Errorf("pixel: cannot allocate planes for %v colorspace", cs)
	}
	for _, ch := range channels {
		if err := img.AddPlane(ch, width, height, bitDepth); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (img *Image) Width() int             { return img.width }
func (img *Image) Height() int            { return img.height }
func (img *Image) Colorspace() Colorspace { return img.colorspace }
func (img *Image) Chroma() Chroma         { return img.chroma }

// ColorProfile returns the attached color profile or nil.
func (img *Image) ColorProfile() box.ColorProfile { return img.profile }

// SetColorProfile attaches a color profile.
func (img *Image) SetColorProfile(p box.ColorProfile) { img.profile = p }

// PlaneSize returns the size of channel ch for an image of this size and
// chroma. Cb and Cr are subsampled, rounding up.
func (img *Image) PlaneSize(ch Channel) (w, h int) {
	return planeSize(img.width, img.height, img.chroma, ch)
}

func planeSize(width, height int, chroma Chroma, ch Channel) (w, h int) {
	if !ch.IsChroma() {
		return width, height
	}
	sh, sv := chroma.Subsampling()
	return (width + sh - 1) / sh, (height + sv - 1) / sv
}

// AddPlane allocates a zeroed plane. For Cb and Cr, width and height are the
// luma dimensions and are subsampled according to the image chroma.
func (img *Image) AddPlane(ch Channel, width, height, bitDepth int) error {
	w, h := planeSize(width, height, img.chroma, ch)
	p, err := newPlane(w, h, bitDepth)
	if err != nil {
		return err
	}
	img.planes[ch] = p
	return nil
}

// SetPlane installs p as channel ch, replacing any existing plane.
func (img *Image) SetPlane(ch Channel, p *Plane) {
	img.planes[ch] = p
}

// Plane returns the plane of channel ch.
func (img *Image) Plane(ch Channel) (*Plane, bool) {
	p, ok := img.planes[ch]
	return p, ok
}

// HasChannel reports whether a plane exists for ch.
func (img *Image) HasChannel(ch Channel) bool {
	_, ok := img.planes[ch]
	return ok
}

// HasAlpha reports whether the image has an alpha plane.
func (img *Image) HasAlpha() bool { return img.HasChannel(ChannelAlpha) }

// Channels returns the channels present, in Channel order.
func (img *Image) Channels() []Channel {
	chans := make([]Channel, 0, len(img.planes))
	for ch := range img.planes {
		chans = append(chans, ch)
	}
	slices.Sort(chans)
	return chans
}

// BitDepth returns the bit depth of channel ch, or 0 if it does not exist.
func (img *Image) BitDepth(ch Channel) int {
	if p, ok := img.planes[ch]; ok {
		return p.BitDepth
	}
	return 0
}

// FillPlane allocates channel ch and sets every sample to value.
func (img *Image) FillPlane(ch Channel, value uint16, width, height, bitDepth int) error {
	if err := img.AddPlane(ch, width, height, bitDepth); err != nil {
		return err
	}
	fillPlane(img.planes[ch], value)
	return nil
}

func fillPlane(p *Plane, value uint16) {
	if p.BytesPerSample() == 1 {
		row := p.Data[:p.Width]
		for i := range row {
			row[i] = byte(value)
		}
	} else {
		row := p.Data[:p.Width*2]
		for i := 0; i < len(row); i += 2 {
			row[i] = byte(value)
			row[i+1] = byte(value >> 8)
		}
	}
	first := p.Row(0)
	for y := 1; y < p.Height; y++ {
		copy(p.Row(y), first)
	}
}

// CopyPlaneFrom copies channel src of other into channel dst of img.
func (img *Image) CopyPlaneFrom(other *Image, src, dst Channel) error {
	p, ok := other.planes[src]
	if !ok {
		return fmt.Errorf("%w: %v", ErrMissingPlane, src)
	}
	cp := &Plane{Width: p.Width, Height: p.Height, BitDepth: p.BitDepth, Stride: p.Stride}
	cp.Data = slices.Clone(p.Data)
	img.planes[dst] = cp
	return nil
}

// TransferPlaneFrom moves channel src of other into channel dst of img.
// other loses the plane.
func (img *Image) TransferPlaneFrom(other *Image, src, dst Channel) error {
	p, ok := other.planes[src]
	if !ok {
		return fmt.Errorf("%w: %v", ErrMissingPlane, src)
	}
	delete(other.planes, src)
	img.planes[dst] = p
	return nil
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	out := New(img.width, img.height, img.colorspace, img.chroma)
	out.profile = img.profile
	for ch := range img.planes {
		_ = out.CopyPlaneFrom(img, ch, ch)
	}
	return out
}

// sample reads the sample at (x, y).
func (p *Plane) sample(x, y int) uint16 {
	if p.BytesPerSample() == 1 {
		return uint16(p.Data[y*p.Stride+x])
	}
	off := y*p.Stride + 2*x
	return uint16(p.Data[off]) | uint16(p.Data[off+1])<<8
}

// setSample writes the sample at (x, y).
func (p *Plane) setSample(x, y int, v uint16) {
	if p.BytesPerSample() == 1 {
		p.Data[y*p.Stride+x] = byte(v)
		return
	}
	off := y*p.Stride + 2*x
	p.Data[off] = byte(v)
	p.Data[off+1] = byte(v >> 8)
}

// Sample returns the sample at (x, y) of channel ch.
func (img *Image) Sample(ch Channel, x, y int) (uint16, bool) {
	p, ok := img.planes[ch]
	if !ok || x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return 0, false
	}
	return p.sample(x, y), true
}

// SetSample sets the sample at (x, y) of channel ch. Out of range writes are
// ignored.
func (img *Image) SetSample(ch Channel, x, y int, v uint16) {
	p, ok := img.planes[ch]
	if !ok || x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return
	}
	p.setSample(x, y, v)
}
