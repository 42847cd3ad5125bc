package heif

import (
	"log/slog"
	"runtime"
)

// Default limits applied by NewContext.
const (
	DefaultMaxImageWidth      = 32768
	DefaultMaxImageHeight     = 32768
	DefaultMaxDerivationDepth = 32
)

// Option configures a Context during creation.
//
// Example:
//
//	// Default limits, sequential tile decoding
//	ctx := heif.NewContext()
//
//	// Decode grid tiles on all CPUs and reject images above 8K
//	ctx := heif.NewContext(
//	    heif.WithDecodingThreads(0),
//	    heif.WithMaxImageSize(8192, 8192),
//	)
type Option func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	maxWidth  int
	maxHeight int
	threads   int
	maxDepth  int
	logger    *slog.Logger
	decoders  []DecoderPlugin
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		maxWidth:  DefaultMaxImageWidth,
		maxHeight: DefaultMaxImageHeight,
		threads:   1,
		maxDepth:  DefaultMaxDerivationDepth,
	}
}

// WithMaxImageSize sets the largest width and height an image may declare.
// Larger images fail with a SecurityLimitExceeded error during graph
// construction and when grids or overlays are assembled.
func WithMaxImageSize(width, height int) Option {
	return func(o *contextOptions) {
		if width > 0 {
			o.maxWidth = width
		}
		if height > 0 {
			o.maxHeight = height
		}
	}
}

// WithDecodingThreads sets how many grid tiles are decoded at once.
// 1 decodes tiles sequentially on the calling goroutine; 0 or less uses
// GOMAXPROCS.
func WithDecodingThreads(n int) Option {
	return func(o *contextOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.threads = n
	}
}

// WithMaxDerivationDepth bounds how many grid, iden or iovl items may be
// chained before decoding gives up with an InvalidDerivedImage error.
func WithMaxDerivationDepth(n int) Option {
	return func(o *contextOptions) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithLogger sets the logger of the Context. Without it the package logger
// from SetLogger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *contextOptions) {
		o.logger = l
	}
}

// WithDecoderPlugin adds a decoder plugin visible only to this Context.
// Context plugins are consulted before globally registered ones and win
// ties in priority.
func WithDecoderPlugin(p DecoderPlugin) Option {
	return func(o *contextOptions) {
		if p != nil {
			o.decoders = append(o.decoders, p)
		}
	}
}

// DecodingOptions controls a single decode call. A nil *DecodingOptions
// means the defaults.
type DecodingOptions struct {
	// IgnoreTransformations skips the rotation, mirror and clean aperture
	// properties. The alpha channel is still attached.
	IgnoreTransformations bool
}

// EncodingOptions controls a single encode call. Use
// NewEncodingOptions for the defaults.
type EncodingOptions struct {
	// SaveAlphaChannel stores an alpha plane as an auxiliary image.
	SaveAlphaChannel bool
}

// NewEncodingOptions returns the default encoding options.
func NewEncodingOptions() *EncodingOptions {
	return &EncodingOptions{SaveAlphaChannel: true}
}
