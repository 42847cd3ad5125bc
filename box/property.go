// Package box holds the item property records and derived-image geometry
// records found in a HEIF meta box, together with their binary codecs.
//
// Property is a closed set: every implementation lives in this package and
// consumers dispatch on it with a type switch.
package box

import "fmt"

// Property is an item property attached to an image through ipma.
type Property interface {
	// BoxType returns the four character code of the property box.
	BoxType() string

	property()
}

// Ispe is the image spatial extents property.
type Ispe struct {
	Width  uint32
	Height uint32
}

// Irot rotates an image counter-clockwise by Angle degrees
// (one of 0, 90, 180, 270).
type Irot struct {
	Angle int
}

// MirrorAxis selects the axis an Imir property mirrors about.
type MirrorAxis uint8

const (
	// MirrorVertical mirrors about the vertical axis (left and right swap).
	MirrorVertical MirrorAxis = 0

	// MirrorHorizontal mirrors about the horizontal axis (top and bottom swap).
	MirrorHorizontal MirrorAxis = 1
)

func (a MirrorAxis) String() string {
	if a == MirrorHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Imir is the image mirroring property.
type Imir struct {
	Axis MirrorAxis
}

// Clap is the clean aperture property. All values are rational.
type Clap struct {
	Width       Fraction
	Height      Fraction
	HorizOffset Fraction
	VertOffset  Fraction
}

// Colr carries the color profile of an image.
type Colr struct {
	Profile ColorProfile
}

// Pixi lists the bit depth of every channel.
type Pixi struct {
	BitsPerChannel []uint8
}

// AuxC names the type of an auxiliary image. Subtypes holds any payload that
// follows the type URN, such as depth representation SEI messages.
type AuxC struct {
	AuxType  string
	Subtypes []byte
}

// Unknown preserves a property box this package does not interpret.
type Unknown struct {
	Type string
	Data []byte
}

func (Ispe) BoxType() string      { return "ispe" }
func (Irot) BoxType() string      { return "irot" }
func (Imir) BoxType() string      { return "imir" }
func (Clap) BoxType() string      { return "clap" }
func (Colr) BoxType() string      { return "colr" }
func (Pixi) BoxType() string      { return "pixi" }
func (*HvcC) BoxType() string     { return "hvcC" }
func (AuxC) BoxType() string      { return "auxC" }
func (u Unknown) BoxType() string { return u.Type }

func (Ispe) property()    {}
func (Irot) property()    {}
func (Imir) property()    {}
func (Clap) property()    {}
func (Colr) property()    {}
func (Pixi) property()    {}
func (*HvcC) property()   {}
func (AuxC) property()    {}
func (Unknown) property() {}

// ColorProfile is either an *NclxProfile or a *RawProfile.
type ColorProfile interface {
	// ProfileType returns "nclx", "prof" or "rICC".
	ProfileType() string

	colorProfile()
}

// NclxProfile is an enumerated color description.
type NclxProfile struct {
	ColourPrimaries         uint16
	TransferCharacteristics uint16
	MatrixCoefficients      uint16
	FullRange               bool
}

// RawProfile is an embedded ICC profile.
type RawProfile struct {
	Type string
	Data []byte
}

func (*NclxProfile) ProfileType() string  { return "nclx" }
func (p *RawProfile) ProfileType() string { return p.Type }

func (*NclxProfile) colorProfile() {}
func (*RawProfile) colorProfile()  {}

// Left returns the first column inside the clean aperture of an image of
// the given width. The result is not clamped.
func (c Clap) Left(imageWidth int) int {
	pcX := c.HorizOffset.Add(NewFraction(int32(imageWidth-1), 2))
	return pcX.Sub(c.Width.SubInt(1).DivInt(2)).RoundDown()
}

// Right returns the last column (inclusive) inside the clean aperture.
func (c Clap) Right(imageWidth int) int {
	return c.Width.SubInt(1).AddInt(c.Left(imageWidth)).Round()
}

// Top returns the first row inside the clean aperture.
func (c Clap) Top(imageHeight int) int {
	pcY := c.VertOffset.Add(NewFraction(int32(imageHeight-1), 2))
	return pcY.Sub(c.Height.SubInt(1).DivInt(2)).RoundDown()
}

// Bottom returns the last row (inclusive) inside the clean aperture.
func (c Clap) Bottom(imageHeight int) int {
	return c.Height.SubInt(1).AddInt(c.Top(imageHeight)).Round()
}

// RoundedWidth returns the clean aperture width rounded to whole pixels.
func (c Clap) RoundedWidth() int { return c.Width.Round() }

// RoundedHeight returns the clean aperture height rounded to whole pixels.
func (c Clap) RoundedHeight() int { return c.Height.Round() }

func (c Clap) String() string {
	return fmt.Sprintf("clap %v x %v offset %v,%v", c.Width, c.Height, c.HorizOffset, c.VertOffset)
}
