package debuginfo

import (
	"debug/dwarf"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

var (
	// ErrOpen is returned when the binary cannot be opened or read.
	ErrOpen = errors.New("could not open file")
	// ErrParse is returned when the binary carries no readable debugging info.
	ErrParse = errors.New("could not read debugging info")
)

// Location is the source position an entry was declared at.
type Location struct {
	File   string
	Line   int
	Column int
}

// Stats summarizes the indexed debug tree.
type Stats struct {
	Units   int
	Entries int
}

type node struct {
	entry    *dwarf.Entry
	unit     dwarf.Offset
	parent   dwarf.Offset
	root     bool
	index    int // position among the parent's children
	children []dwarf.Offset
}

// Container owns the parsed debugging information of one binary.
//
// The entry tree is indexed once at construction and is read-only afterwards,
// so a Container may be queried from several goroutines.
type Container struct {
	logger      zerolog.Logger
	path        string
	format      ExecutableFormat
	size        int64
	fingerprint uint64
	data        *dwarf.Data
	closer      io.Closer
	image       *Image

	units []dwarf.Offset
	nodes map[dwarf.Offset]*node

	filesMu sync.Mutex
	files   map[dwarf.Offset][]*dwarf.LineFile
}

type options struct {
	logger zerolog.Logger
}

// Option configures a Container.
type Option func(*options)

// WithLogger sets the logger used by the container.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open opens the binary at path and indexes its DWARF debugging information.
// ELF, Mach-O and PE files are supported.
func Open(path string, opts ...Option) (*Container, error) {
	o := buildOptions(opts)

	//nolint:gosec // G304: path is supplied by the caller on purpose.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	c, err := openFile(f, path, o)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

func openFile(f *os.File, path string, o options) (*Container, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	h := xxh3.New()
	if _, err := io.Copy(h, io.NewSectionReader(f, 0, info.Size())); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	format, err := DetectFormat(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	var (
		data  *dwarf.Data
		image *Image
	)

	switch format {
	case FormatELF:
		ef, err := elf.NewFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse ELF file %s: %v", ErrParse, path, err)
		}
		if data, err = ef.DWARF(); err != nil {
			return nil, fmt.Errorf("%w: failed to extract DWARF from ELF file %s: %v", ErrParse, path, err)
		}
		image = imageFromELF(ef)

	case FormatMachO:
		mf, err := macho.NewFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse Mach-O file %s: %v", ErrParse, path, err)
		}
		if data, err = mf.DWARF(); err != nil {
			return nil, fmt.Errorf("%w: failed to extract DWARF from Mach-O file %s: %v", ErrParse, path, err)
		}
		image = imageFromMachO(mf)

	case FormatPE:
		pf, err := pe.NewFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse PE file %s: %v", ErrParse, path, err)
		}
		if data, err = pf.DWARF(); err != nil {
			return nil, fmt.Errorf("%w: failed to extract DWARF from PE file %s: %v", ErrParse, path, err)
		}
		image = imageFromPE(pf)

	default:
		return nil, fmt.Errorf("%w: unsupported executable format: %s", ErrParse, format)
	}

	c, err := newContainer(data, o)
	if err != nil {
		return nil, err
	}
	c.path = path
	c.format = format
	c.size = info.Size()
	c.fingerprint = h.Sum64()
	c.closer = f
	c.image = image

	c.logger.Info().
		Str("binary", path).
		Str("format", format.String()).
		Int("units", len(c.units)).
		Int("entries", len(c.nodes)).
		Msg("Loaded debugging information")

	return c, nil
}

// New wraps already parsed DWARF data. The returned container has no backing
// file and no image.
func New(data *dwarf.Data, opts ...Option) (*Container, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil DWARF data", ErrParse)
	}
	return newContainer(data, buildOptions(opts))
}

func newContainer(data *dwarf.Data, o options) (*Container, error) {
	c := &Container{
		logger: o.logger.With().Str("component", "debuginfo").Logger(),
		data:   data,
		nodes:  make(map[dwarf.Offset]*node),
		files:  make(map[dwarf.Offset][]*dwarf.LineFile),
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return c, nil
}

func isUnitTag(tag dwarf.Tag) bool {
	switch tag {
	case dwarf.TagCompileUnit, dwarf.TagPartialUnit, dwarf.TagTypeUnit, dwarf.TagSkeletonUnit:
		return true
	}
	return false
}

// index walks every entry once, recording parent/children relations.
func (c *Container) index() error {
	r := c.data.Reader()
	var parents []dwarf.Offset

	for {
		e, err := r.Next()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		if e == nil {
			break
		}

		if e.Tag == 0 {
			if len(parents) > 0 {
				parents = parents[:len(parents)-1]
			}
			continue
		}

		// Tolerate units whose child list is not null-terminated.
		if isUnitTag(e.Tag) {
			parents = parents[:0]
		}

		n := &node{entry: e}
		if len(parents) == 0 {
			n.root = true
			n.unit = e.Offset
			c.units = append(c.units, e.Offset)
		} else {
			p := c.nodes[parents[len(parents)-1]]
			n.parent = p.entry.Offset
			n.unit = p.unit
			n.index = len(p.children)
			p.children = append(p.children, e.Offset)
		}
		c.nodes[e.Offset] = n

		if e.Children {
			parents = append(parents, e.Offset)
		}
	}

	c.logger.Debug().
		Int("units", len(c.units)).
		Int("entries", len(c.nodes)).
		Msg("Indexed debug entries")

	return nil
}

// Close releases the underlying file, if any.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// Path returns the path the container was opened from.
func (c *Container) Path() string {
	return c.path
}

// Format returns the executable format of the backing file.
func (c *Container) Format() ExecutableFormat {
	return c.format
}

// Size returns the size in bytes of the backing file.
func (c *Container) Size() int64 {
	return c.size
}

// Fingerprint returns the xxh3 hash of the backing file.
func (c *Container) Fingerprint() uint64 {
	return c.fingerprint
}

// Data returns the underlying DWARF data.
func (c *Container) Data() *dwarf.Data {
	return c.data
}

// Image returns the allocated sections of the backing file, or nil when the
// container was built from in-memory DWARF data.
func (c *Container) Image() *Image {
	return c.image
}

// Stats returns counts over the indexed tree.
func (c *Container) Stats() Stats {
	return Stats{Units: len(c.units), Entries: len(c.nodes)}
}

// Units returns the offsets of the top-level unit entries in .debug_info order.
func (c *Container) Units() []dwarf.Offset {
	out := make([]dwarf.Offset, len(c.units))
	copy(out, c.units)
	return out
}

// Has reports whether off addresses an entry of this container.
func (c *Container) Has(off dwarf.Offset) bool {
	_, ok := c.nodes[off]
	return ok
}

// Entry returns the entry at off.
func (c *Container) Entry(off dwarf.Offset) (*dwarf.Entry, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return nil, false
	}
	return n.entry, true
}

// Tag returns the tag of the entry at off.
func (c *Container) Tag(off dwarf.Offset) (dwarf.Tag, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return 0, false
	}
	return n.entry.Tag, true
}

// Name returns the name attribute of the entry at off.
func (c *Container) Name(off dwarf.Offset) (string, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return "", false
	}
	name, ok := n.entry.Val(dwarf.AttrName).(string)
	return name, ok
}

// Children returns the immediate children of the entry at off in sibling
// order. The returned slice must not be modified.
func (c *Container) Children(off dwarf.Offset) []dwarf.Offset {
	n, ok := c.nodes[off]
	if !ok {
		return nil
	}
	return n.children
}

// Parent returns the parent of the entry at off. Units have no parent.
func (c *Container) Parent(off dwarf.Offset) (dwarf.Offset, bool) {
	n, ok := c.nodes[off]
	if !ok || n.root {
		return 0, false
	}
	return n.parent, true
}

// NextSibling returns the entry following off under the same parent.
func (c *Container) NextSibling(off dwarf.Offset) (dwarf.Offset, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return 0, false
	}

	var siblings []dwarf.Offset
	if n.root {
		for i, u := range c.units {
			if u == off && i+1 < len(c.units) {
				return c.units[i+1], true
			}
		}
		return 0, false
	}

	siblings = c.nodes[n.parent].children
	if n.index+1 >= len(siblings) {
		return 0, false
	}
	return siblings[n.index+1], true
}

// Attr returns the attribute field of the entry at off.
func (c *Container) Attr(off dwarf.Offset, attr dwarf.Attr) (*dwarf.Field, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return nil, false
	}
	f := n.entry.AttrField(attr)
	return f, f != nil
}

// Ref resolves a reference attribute of the entry at off to the entry it
// points at.
func (c *Container) Ref(off dwarf.Offset, attr dwarf.Attr) (dwarf.Offset, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return 0, false
	}
	target, ok := n.entry.Val(attr).(dwarf.Offset)
	if !ok || !c.Has(target) {
		return 0, false
	}
	return target, true
}

// DeclLocation returns where the entry at off was declared.
func (c *Container) DeclLocation(off dwarf.Offset) (Location, bool) {
	n, ok := c.nodes[off]
	if !ok {
		return Location{}, false
	}

	line, hasLine := n.entry.Val(dwarf.AttrDeclLine).(int64)
	if !hasLine {
		return Location{}, false
	}

	loc := Location{Line: int(line)}
	if col, ok := n.entry.Val(dwarf.AttrDeclColumn).(int64); ok {
		loc.Column = int(col)
	}
	if idx, ok := n.entry.Val(dwarf.AttrDeclFile).(int64); ok {
		files := c.unitFiles(n.unit)
		if idx >= 0 && idx < int64(len(files)) && files[idx] != nil {
			loc.File = files[idx].Name
		}
	}
	return loc, true
}

func (c *Container) unitFiles(unit dwarf.Offset) []*dwarf.LineFile {
	c.filesMu.Lock()
	defer c.filesMu.Unlock()

	if files, ok := c.files[unit]; ok {
		return files
	}

	var files []*dwarf.LineFile
	if lr, err := c.data.LineReader(c.nodes[unit].entry); err == nil && lr != nil {
		files = lr.Files()
	} else if err != nil {
		c.logger.Debug().Err(err).Uint32("unit", uint32(unit)).Msg("No line table for unit")
	}
	c.files[unit] = files
	return files
}
