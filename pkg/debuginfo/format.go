package debuginfo

import (
	"fmt"
	"io"
	"os"
)

// ExecutableFormat represents the container format of a binary.
type ExecutableFormat int

const (
	FormatUnknown ExecutableFormat = iota
	FormatELF                      // Linux, FreeBSD, etc.
	FormatPE                       // Windows
	FormatMachO                    // macOS, iOS
)

// String returns a human-readable name for the executable format.
func (f ExecutableFormat) String() string {
	switch f {
	case FormatELF:
		return "ELF"
	case FormatPE:
		return "PE"
	case FormatMachO:
		return "Mach-O"
	default:
		return "Unknown"
	}
}

// DetectFormat determines the executable format by examining magic bytes.
func DetectFormat(r io.ReaderAt) (ExecutableFormat, error) {
	magic := make([]byte, 4)
	if _, err := r.ReadAt(magic, 0); err != nil {
		return FormatUnknown, fmt.Errorf("failed to read magic bytes: %w", err)
	}

	switch {
	case magic[0] == 0x7f && magic[1] == 'E' && magic[2] == 'L' && magic[3] == 'F':
		return FormatELF, nil
	case magic[0] == 'M' && magic[1] == 'Z':
		return FormatPE, nil
	case (magic[0] == 0xfe && magic[1] == 0xed && magic[2] == 0xfa && magic[3] == 0xce) || // 32-bit big endian
		(magic[0] == 0xce && magic[1] == 0xfa && magic[2] == 0xed && magic[3] == 0xfe) || // 32-bit little endian
		(magic[0] == 0xfe && magic[1] == 0xed && magic[2] == 0xfa && magic[3] == 0xcf) || // 64-bit big endian
		(magic[0] == 0xcf && magic[1] == 0xfa && magic[2] == 0xed && magic[3] == 0xfe): // 64-bit little endian
		return FormatMachO, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown executable format, magic bytes: %x", magic)
	}
}

// DetectExecutableFormat opens filename and determines its executable format.
func DetectExecutableFormat(filename string) (ExecutableFormat, error) {
	//nolint:gosec // G304: path is supplied by the caller on purpose.
	file, err := os.Open(filename)
	if err != nil {
		return FormatUnknown, err
	}
	defer file.Close()

	return DetectFormat(file)
}
