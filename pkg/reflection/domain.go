// Package reflection answers questions about the types, functions and
// variables of a compiled program by reading its DWARF debugging information.
//
// A Domain owns the debugging information of one binary. Every handle it
// hands out (Type, Member, Function, Variable) is a small value naming an
// entry by offset; handles are revalidated on each call and fail with
// ErrInvalidHandle once the Domain is closed.
package reflection

import (
	"debug/dwarf"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/VasilisMylonas/libreflect/pkg/debuginfo"
)

// DefaultCacheSize is the number of name lookups a Domain remembers.
const DefaultCacheSize = 256

type options struct {
	logger    zerolog.Logger
	cacheSize int
}

// Option configures a Domain.
type Option func(*options)

// WithLogger sets the logger used by the domain and its container.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCacheSize sets how many name lookups are cached. Zero disables the
// cache.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:    zerolog.Nop(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type lookupKey struct {
	class EntryClass
	name  string
}

// Domain is the loaded debugging information of one binary.
type Domain struct {
	id     uuid.UUID
	c      *debuginfo.Container
	logger zerolog.Logger
	cache  *lru.Cache[lookupKey, dwarf.Offset]
	closed atomic.Bool
}

// Load opens the binary at path and loads its debugging information.
func Load(path string, opts ...Option) (*Domain, error) {
	if path == "" {
		return nil, newError("Load", ErrNullArgument)
	}
	o := buildOptions(opts)

	c, err := debuginfo.Open(path, debuginfo.WithLogger(o.logger))
	if err != nil {
		switch {
		case errors.Is(err, debuginfo.ErrOpen):
			return nil, newNamedError("Load", path, fmt.Errorf("%w: %w", ErrCannotOpenFile, err))
		default:
			return nil, newNamedError("Load", path, fmt.Errorf("%w: %w", ErrCannotParseDebugInfo, err))
		}
	}

	d, err := newDomain(c, o)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return d, nil
}

// NewDomain wraps an already opened container. The domain takes ownership of
// c and closes it on Close.
func NewDomain(c *debuginfo.Container, opts ...Option) (*Domain, error) {
	if c == nil {
		return nil, newError("NewDomain", ErrNullArgument)
	}
	return newDomain(c, buildOptions(opts))
}

// FromDWARF builds a domain over parsed DWARF data. Such a domain has no
// image, so globals cannot be dumped from it.
func FromDWARF(data *dwarf.Data, opts ...Option) (*Domain, error) {
	if data == nil {
		return nil, newError("FromDWARF", ErrNullArgument)
	}
	o := buildOptions(opts)
	c, err := debuginfo.New(data, debuginfo.WithLogger(o.logger))
	if err != nil {
		return nil, newError("FromDWARF", fmt.Errorf("%w: %w", ErrCannotParseDebugInfo, err))
	}
	return newDomain(c, o)
}

func newDomain(c *debuginfo.Container, o options) (*Domain, error) {
	d := &Domain{
		id: uuid.New(),
		c:  c,
	}
	d.logger = o.logger.With().
		Str("component", "reflection").
		Str("domain", d.id.String()).
		Logger()

	if o.cacheSize > 0 {
		cache, err := lru.New[lookupKey, dwarf.Offset](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create lookup cache: %w", err)
		}
		d.cache = cache
	}

	stats := c.Stats()
	d.logger.Debug().
		Int("units", stats.Units).
		Int("entries", stats.Entries).
		Int("cache_size", o.cacheSize).
		Msg("Reflection domain ready")

	return d, nil
}

// Close releases the domain's debugging information. Handles obtained from
// the domain fail with ErrInvalidHandle afterwards. Closing twice is a no-op.
func (d *Domain) Close() error {
	if d == nil {
		return newError("Close", ErrNullArgument)
	}
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if d.cache != nil {
		d.cache.Purge()
	}
	d.logger.Debug().Msg("Reflection domain closed")
	return d.c.Close()
}

// ID returns the identifier of the domain, unique per load.
func (d *Domain) ID() uuid.UUID {
	return d.id
}

// Container returns the debugging information the domain was built on.
func (d *Domain) Container() *debuginfo.Container {
	return d.c
}

// Closed reports whether Close has been called.
func (d *Domain) Closed() bool {
	return d.closed.Load()
}

func (d *Domain) check(op string) error {
	if d == nil {
		return newError(op, ErrNullArgument)
	}
	if d.closed.Load() {
		return newError(op, ErrInvalidHandle)
	}
	return nil
}
