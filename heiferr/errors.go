// Package heiferr defines the error taxonomy shared by every heif package.
//
// Each failure carries a coarse Code, a finer Subcode and a human readable
// message. Errors compare equal under errors.Is when their code and subcode
// match, so callers test against the sentinel values declared here:
//
//	if errors.Is(err, heiferr.ErrSecurityLimitExceeded) {
//	    // image is too large
//	}
package heiferr

import (
	"errors"
	"fmt"
)

// Code classifies an error.
type Code int

const (
	// Ok is the zero Code. It never appears in a returned error.
	Ok Code = iota

	// InvalidInput reports a malformed or inconsistent file.
	InvalidInput

	// UnsupportedFeature reports a valid construct this module cannot handle.
	UnsupportedFeature

	// MemoryAllocationError reports a size limit violation.
	MemoryAllocationError

	// UsageError reports an invalid API call.
	UsageError

	// DecoderPluginError reports a failure inside a decoder plugin.
	DecoderPluginError

	// EncoderPluginError reports a failure inside an encoder plugin.
	EncoderPluginError
)

var codeNames = [...]string{
	Ok:                    "Ok",
	InvalidInput:          "Invalid input",
	UnsupportedFeature:    "Unsupported feature",
	MemoryAllocationError: "Memory allocation error",
	UsageError:            "Usage error",
	DecoderPluginError:    "Decoder plugin generated an error",
	EncoderPluginError:    "Encoder plugin generated an error",
}

// String returns a human readable name for the code.
func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Subcode refines a Code.
type Subcode int

const (
	Unspecified Subcode = iota
	EndOfData
	NoHvcCBox
	NoIrefBox
	NoItemData
	NonexistingItemReferenced
	MissingGridImages
	InvalidGridData
	InvalidPixiBox
	InvalidOverlayData
	OverlayImageOutsideOfCanvas
	InvalidCleanAperture
	InvalidDerivedImage
	AuxiliaryImageTypeUnspecified
	WrongTileImageChromaFormat
	SecurityLimitExceeded
	UnsupportedColorConversion
	UnsupportedCodec
	UnsupportedDataVersion
	InvalidParameterValue
	NoOrInvalidPrimaryItem
	UnsupportedImageType
)

var subcodeNames = [...]string{
	Unspecified:                   "Unspecified",
	EndOfData:                     "Unexpected end of file",
	NoHvcCBox:                     "No 'hvcC' box",
	NoIrefBox:                     "No 'iref' box",
	NoItemData:                    "No item data",
	NonexistingItemReferenced:     "Non-existing item ID referenced",
	MissingGridImages:             "Missing grid images",
	InvalidGridData:               "Invalid grid data",
	InvalidPixiBox:                "Invalid pixi box",
	InvalidOverlayData:            "Invalid overlay data",
	OverlayImageOutsideOfCanvas:   "Overlay image outside of canvas area",
	InvalidCleanAperture:          "Invalid clean-aperture specification",
	InvalidDerivedImage:           "Invalid derived image",
	AuxiliaryImageTypeUnspecified: "Auxiliary image type not specified",
	WrongTileImageChromaFormat:    "Wrong tile image chroma format",
	SecurityLimitExceeded:         "Security limit exceeded",
	UnsupportedColorConversion:    "Unsupported color conversion",
	UnsupportedCodec:              "Unsupported codec",
	UnsupportedDataVersion:        "Unsupported data version",
	InvalidParameterValue:         "Invalid parameter value",
	NoOrInvalidPrimaryItem:        "No or invalid primary item",
	UnsupportedImageType:          "Unsupported image type",
}

// String returns a human readable name for the subcode.
func (s Subcode) String() string {
	if s >= 0 && int(s) < len(subcodeNames) {
		return subcodeNames[s]
	}
	return fmt.Sprintf("Subcode(%d)", int(s))
}

// Error is the error value returned by heif operations.
type Error struct {
	Code    Code
	Subcode Subcode
	Message string

	// Err is the underlying cause, typically an error returned by a codec
	// plugin.
	Err error
}

// New returns an error with the given classification and message.
func New(code Code, sub Subcode, msg string) *Error {
	return &Error{Code: code, Subcode: sub, Message: msg}
}

// Newf is like New but formats the message.
func Newf(code Code, sub Subcode, format string, args ...any) *Error {
	return &Error{Code: code, Subcode: sub, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with the given classification whose cause is err.
func Wrap(code Code, sub Subcode, err error) *Error {
	return &Error{Code: code, Subcode: sub, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("heif: %s: %s", e.Code, e.Subcode)
	}
	return fmt.Sprintf("heif: %s: %s: %s", e.Code, e.Subcode, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code and subcode.
// The message does not take part in the comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Subcode == t.Subcode
}

// Sentinel values for errors.Is.
var (
	ErrEndOfData                     = &Error{Code: InvalidInput, Subcode: EndOfData}
	ErrNoHvcCBox                     = &Error{Code: InvalidInput, Subcode: NoHvcCBox}
	ErrNoIrefBox                     = &Error{Code: InvalidInput, Subcode: NoIrefBox}
	ErrNoItemData                    = &Error{Code: InvalidInput, Subcode: NoItemData}
	ErrNonexistingItemReferenced     = &Error{Code: InvalidInput, Subcode: NonexistingItemReferenced}
	ErrMissingGridImages             = &Error{Code: InvalidInput, Subcode: MissingGridImages}
	ErrInvalidGridData               = &Error{Code: InvalidInput, Subcode: InvalidGridData}
	ErrInvalidPixiBox                = &Error{Code: InvalidInput, Subcode: InvalidPixiBox}
	ErrInvalidOverlayData            = &Error{Code: InvalidInput, Subcode: InvalidOverlayData}
	ErrOverlayImageOutsideOfCanvas   = &Error{Code: InvalidInput, Subcode: OverlayImageOutsideOfCanvas}
	ErrInvalidCleanAperture          = &Error{Code: InvalidInput, Subcode: InvalidCleanAperture}
	ErrInvalidDerivedImage           = &Error{Code: InvalidInput, Subcode: InvalidDerivedImage}
	ErrAuxiliaryImageTypeUnspecified = &Error{Code: InvalidInput, Subcode: AuxiliaryImageTypeUnspecified}
	ErrWrongTileImageChromaFormat    = &Error{Code: InvalidInput, Subcode: WrongTileImageChromaFormat}
	ErrInvalidInputParameterValue    = &Error{Code: InvalidInput, Subcode: InvalidParameterValue}
	ErrSecurityLimitExceeded         = &Error{Code: MemoryAllocationError, Subcode: SecurityLimitExceeded}
	ErrUnsupportedColorConversion    = &Error{Code: UnsupportedFeature, Subcode: UnsupportedColorConversion}
	ErrUnsupportedCodec              = &Error{Code: UnsupportedFeature, Subcode: UnsupportedCodec}
	ErrUnsupportedDataVersion        = &Error{Code: UnsupportedFeature, Subcode: UnsupportedDataVersion}
	ErrUnsupportedImageType          = &Error{Code: UnsupportedFeature, Subcode: UnsupportedImageType}
	ErrInvalidParameterValue         = &Error{Code: UsageError, Subcode: InvalidParameterValue}
	ErrNoOrInvalidPrimaryItem        = &Error{Code: UsageError, Subcode: NoOrInvalidPrimaryItem}
	ErrDecoderPlugin                 = &Error{Code: DecoderPluginError, Subcode: Unspecified}
	ErrEncoderPlugin                 = &Error{Code: EncoderPluginError, Subcode: Unspecified}
)

// CodeOf returns the Code of the first *Error in err's chain, or Ok if
// there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Ok
}
