package debuginfo

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnmapped is returned when an address falls outside every allocated
// section of the image.
var ErrUnmapped = errors.New("address not mapped by image")

// Mach-O section types that occupy no file space.
const (
	machoSectionTypeMask     = 0xff
	machoZeroFill            = 0x1
	machoGBZeroFill          = 0xc
	machoThreadLocalZeroFill = 0x12
)

type section struct {
	name string
	addr uint64
	size uint64
	zero bool
	load func() ([]byte, error)

	once sync.Once
	data []byte
	err  error
}

func (s *section) bytes() ([]byte, error) {
	s.once.Do(func() {
		data, err := s.load()
		if err != nil {
			s.err = fmt.Errorf("failed to read section %s: %w", s.name, err)
			return
		}
		// Pad sections whose virtual size exceeds their file size.
		if uint64(len(data)) < s.size {
			data = append(data, make([]byte, s.size-uint64(len(data)))...)
		}
		s.data = data[:s.size]
	})
	return s.data, s.err
}

func (s *section) contains(addr uint64) bool {
	return addr >= s.addr && addr-s.addr < s.size
}

// Image is a read-only view of a binary's allocated sections, addressed by
// virtual address. It reads the initial contents of global data as laid out
// by the linker.
type Image struct {
	sections []*section
}

func newImage(sections []*section) *Image {
	sort.Slice(sections, func(i, j int) bool { return sections[i].addr < sections[j].addr })
	return &Image{sections: sections}
}

func (m *Image) find(addr uint64) (*section, bool) {
	i := sort.Search(len(m.sections), func(i int) bool {
		s := m.sections[i]
		return s.addr+s.size > addr
	})
	if i < len(m.sections) && m.sections[i].contains(addr) {
		return m.sections[i], true
	}
	return nil, false
}

// Sections returns the names of the mapped sections in address order.
func (m *Image) Sections() []string {
	names := make([]string, 0, len(m.sections))
	for _, s := range m.sections {
		names = append(names, s.name)
	}
	return names
}

// Read returns n bytes starting at addr. The range must lie within a single
// section.
func (m *Image) Read(addr uint64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid read size %d", n)
	}
	s, ok := m.find(addr)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnmapped, addr)
	}
	off := addr - s.addr
	if off+uint64(n) > s.size {
		return nil, fmt.Errorf("%w: 0x%x+%d crosses the end of %s", ErrUnmapped, addr, n, s.name)
	}
	if s.zero {
		return make([]byte, n), nil
	}
	data, err := s.bytes()
	if err != nil {
		return nil, err
	}
	return data[off : off+uint64(n)], nil
}

// CString returns the NUL-terminated byte sequence starting at addr, without
// the terminator.
func (m *Image) CString(addr uint64) ([]byte, error) {
	s, ok := m.find(addr)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnmapped, addr)
	}
	if s.zero {
		return []byte{}, nil
	}
	data, err := s.bytes()
	if err != nil {
		return nil, err
	}
	rest := data[addr-s.addr:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return nil, fmt.Errorf("unterminated string at 0x%x in %s", addr, s.name)
	}
	return rest[:end], nil
}

func imageFromELF(f *elf.File) *Image {
	var sections []*section
	for _, s := range f.Sections {
		if s.Flags&elf.SHF_ALLOC == 0 || s.Flags&elf.SHF_TLS != 0 || s.Size == 0 {
			continue
		}
		sections = append(sections, &section{
			name: s.Name,
			addr: s.Addr,
			size: s.Size,
			zero: s.Type == elf.SHT_NOBITS,
			load: s.Data,
		})
	}
	return newImage(sections)
}

func imageFromMachO(f *macho.File) *Image {
	var sections []*section
	for _, s := range f.Sections {
		if s.Size == 0 {
			continue
		}
		var zero bool
		switch s.Flags & machoSectionTypeMask {
		case machoZeroFill, machoGBZeroFill, machoThreadLocalZeroFill:
			zero = true
		}
		sections = append(sections, &section{
			name: s.Seg + "," + s.Name,
			addr: s.Addr,
			size: s.Size,
			zero: zero,
			load: s.Data,
		})
	}
	return newImage(sections)
}

func imageFromPE(f *pe.File) *Image {
	var base uint64
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		base = uint64(oh.ImageBase)
	case *pe.OptionalHeader64:
		base = oh.ImageBase
	}

	var sections []*section
	for _, s := range f.Sections {
		size := uint64(s.VirtualSize)
		if size == 0 {
			size = uint64(s.Size)
		}
		if size == 0 {
			continue
		}
		sections = append(sections, &section{
			name: s.Name,
			addr: base + uint64(s.VirtualAddress),
			size: size,
			zero: s.Size == 0,
			load: s.Data,
		})
	}
	return newImage(sections)
}
