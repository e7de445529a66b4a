package testutil

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// ELFSection is one section of a crafted ELF file.
type ELFSection struct {
	Name  string
	Type  elf.SectionType
	Flags elf.SectionFlag
	Addr  uint64
	Data  []byte
	// Size overrides len(Data) for SHT_NOBITS sections.
	Size uint64
}

// DataSection returns a writable allocated section mapped at addr.
func DataSection(name string, addr uint64, data []byte) ELFSection {
	return ELFSection{
		Name:  name,
		Type:  elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		Addr:  addr,
		Data:  data,
	}
}

// BSSSection returns a zero-filled allocated section mapped at addr.
func BSSSection(name string, addr, size uint64) ELFSection {
	return ELFSection{
		Name:  name,
		Type:  elf.SHT_NOBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		Addr:  addr,
		Size:  size,
	}
}

// DebugSections returns the .debug_abbrev and .debug_info sections encoded
// by b.
func DebugSections(b *DWARFBuilder) []ELFSection {
	abbrev, info := b.Sections()
	return []ELFSection{
		{Name: ".debug_abbrev", Type: elf.SHT_PROGBITS, Data: abbrev},
		{Name: ".debug_info", Type: elf.SHT_PROGBITS, Data: info},
	}
}

const (
	elfHeaderSize  = 64
	elfSectionSize = 64
)

func align8(n int) int {
	return (n + 7) &^ 7
}

// BuildELF lays out a little-endian ELF64 executable holding the given
// sections. It has no program headers; debug/elf only needs section headers.
func BuildELF(sections ...ELFSection) []byte {
	var shstrtab bytes.Buffer
	shstrtab.WriteByte(0)

	nameOff := make([]uint32, len(sections))
	for i, s := range sections {
		nameOff[i] = uint32(shstrtab.Len())
		shstrtab.WriteString(s.Name)
		shstrtab.WriteByte(0)
	}
	shstrtabName := uint32(shstrtab.Len())
	shstrtab.WriteString(".shstrtab")
	shstrtab.WriteByte(0)

	var body bytes.Buffer
	body.Write(make([]byte, elfHeaderSize))

	headers := []elf.Section64{{}}
	for i, s := range sections {
		body.Write(make([]byte, align8(body.Len())-body.Len()))
		off := body.Len()
		size := uint64(len(s.Data))
		if s.Type == elf.SHT_NOBITS {
			size = s.Size
		} else {
			body.Write(s.Data)
		}
		headers = append(headers, elf.Section64{
			Name:      nameOff[i],
			Type:      uint32(s.Type),
			Flags:     uint64(s.Flags),
			Addr:      s.Addr,
			Off:       uint64(off),
			Size:      size,
			Addralign: 1,
		})
	}

	strOff := body.Len()
	body.Write(shstrtab.Bytes())
	headers = append(headers, elf.Section64{
		Name:      shstrtabName,
		Type:      uint32(elf.SHT_STRTAB),
		Off:       uint64(strOff),
		Size:      uint64(shstrtab.Len()),
		Addralign: 1,
	})

	body.Write(make([]byte, align8(body.Len())-body.Len()))
	shoff := body.Len()
	for _, h := range headers {
		_ = binary.Write(&body, binary.LittleEndian, h)
	}

	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	hdr := elf.Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(shoff),
		Ehsize:    elfHeaderSize,
		Shentsize: elfSectionSize,
		Shnum:     uint16(len(headers)),
		Shstrndx:  uint16(len(headers) - 1),
	}

	out := body.Bytes()
	var hb bytes.Buffer
	_ = binary.Write(&hb, binary.LittleEndian, hdr)
	copy(out, hb.Bytes())
	return out
}

// WriteELF writes a crafted ELF file into a temporary directory and returns
// its path.
func WriteELF(t *testing.T, sections ...ELFSection) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reflected.elf")
	if err := os.WriteFile(path, BuildELF(sections...), 0o600); err != nil {
		t.Fatalf("failed to write ELF file: %v", err)
	}
	return path
}
