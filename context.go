package heif

import (
	"io"
	"log/slog"
	"slices"

	"github.com/gogpu/heif/container"
	"github.com/gogpu/heif/heiferr"
)

// Context holds the image graph of one HEIF file and the Store it was
// built from.
//
// A Context is not safe for concurrent use. Grid decoding may use several
// goroutines internally, see WithDecodingThreads.
type Context struct {
	store Store
	opts  contextOptions
	log   *slog.Logger

	images   map[ItemID]*Image
	topLevel []ItemID
	primary  ItemID
}

// NewContext returns a Context with an empty in-memory store, ready for
// encoding. Load or LoadFile replace the store.
func NewContext(opts ...Option) *Context {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	log := options.logger
	if log == nil {
		log = Logger()
	}
	return &Context{
		store:  container.New(),
		opts:   options,
		log:    log,
		images: make(map[ItemID]*Image),
	}
}

// LoadFile reads a HEIF file with package container and builds its image
// graph.
func (c *Context) LoadFile(r io.ReaderAt) error {
	s, err := container.Read(r, container.WithLogger(c.log))
	if err != nil {
		c.reset()
		return err
	}
	return c.Load(s)
}

// Load builds the image graph from s. The previous graph is dropped first;
// if building fails the Context is left with an empty graph.
func (c *Context) Load(s Store) error {
	c.reset()
	c.store = s

	g, err := buildGraph(s, c.opts, c.log)
	if err != nil {
		return err
	}
	c.images = g.images
	c.topLevel = g.topLevel
	c.primary = g.primary
	return nil
}

func (c *Context) reset() {
	c.images = make(map[ItemID]*Image)
	c.topLevel = nil
	c.primary = 0
}

// Store returns the Store backing the Context.
func (c *Context) Store() Store {
	return c.store
}

// WriteTo serializes the Context's store. The store must implement
// io.WriterTo, as container.Store does.
func (c *Context) WriteTo(w io.Writer) (int64, error) {
	wt, ok := c.store.(io.WriterTo)
	if !ok {
		return 0, heiferr.New(heiferr.UsageError, heiferr.Unspecified, "store cannot be serialized")
	}
	return wt.WriteTo(w)
}

// writer returns the store as a StoreWriter.
func (c *Context) writer() (StoreWriter, error) {
	w, ok := c.store.(StoreWriter)
	if !ok {
		return nil, heiferr.New(heiferr.UsageError, heiferr.Unspecified, "store is read only")
	}
	return w, nil
}

// IsImage reports whether id is an image of the graph.
func (c *Context) IsImage(id ItemID) bool {
	_, ok := c.images[id]
	return ok
}

// Image returns the image with the given id.
func (c *Context) Image(id ItemID) (*Image, error) {
	img, ok := c.images[id]
	if !ok {
		return nil, heiferr.Newf(heiferr.UsageError, heiferr.NonexistingItemReferenced,
			"item %d is not an image", id)
	}
	return img, nil
}

// PrimaryImage returns the primary image.
func (c *Context) PrimaryImage() (*Image, error) {
	if c.primary == 0 {
		return nil, heiferr.New(heiferr.UsageError, heiferr.NoOrInvalidPrimaryItem, "no primary image")
	}
	return c.images[c.primary], nil
}

// TopLevelImageIDs returns the ids of all images that are not thumbnails or
// auxiliary images and not hidden, in item order.
func (c *Context) TopLevelImageIDs() []ItemID {
	return slices.Clone(c.topLevel)
}

// TopLevelImages returns the images listed by TopLevelImageIDs.
func (c *Context) TopLevelImages() []*Image {
	out := make([]*Image, 0, len(c.topLevel))
	for _, id := range c.topLevel {
		out = append(out, c.images[id])
	}
	return out
}

// SetPrimaryItem makes id the primary image. The change is also recorded in
// the store when it is writable.
func (c *Context) SetPrimaryItem(id ItemID) error {
	img, ok := c.images[id]
	if !ok {
		return heiferr.Newf(heiferr.UsageError, heiferr.NoOrInvalidPrimaryItem,
			"item %d is not an image", id)
	}
	if old, ok := c.images[c.primary]; ok {
		old.primary = false
	}
	img.primary = true
	c.primary = id
	if w, err := c.writer(); err == nil {
		w.SetPrimaryItemID(id)
	}
	return nil
}

// checkLimits rejects sizes above the configured maximum.
func (c *Context) checkLimits(width, height int) error {
	return checkLimits(c.opts, width, height)
}

func checkLimits(o contextOptions, width, height int) error {
	if width > o.maxWidth || height > o.maxHeight {
		return heiferr.Newf(heiferr.MemoryAllocationError, heiferr.SecurityLimitExceeded,
			"image size %dx%d exceeds the maximum of %dx%d", width, height, o.maxWidth, o.maxHeight)
	}
	return nil
}
