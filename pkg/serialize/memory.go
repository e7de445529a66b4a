package serialize

import (
	"errors"
	"fmt"
	"unsafe"
)

// Memory is an address space the encoder reads objects from. Addresses are
// native pointers of the process that produced the debugging information.
type Memory interface {
	// Read returns n bytes starting at addr.
	Read(addr uint64, n int) ([]byte, error)
	// CString returns the NUL-terminated byte sequence at addr, without the
	// terminator.
	CString(addr uint64) ([]byte, error)
}

// localMemory reads the memory of the current process. It keeps the root
// object reachable for the duration of an Encode call.
type localMemory struct {
	root unsafe.Pointer
}

// LocalMemory returns a Memory over the current process, rooted at obj. The
// caller guarantees that every pointer reachable from obj is valid.
func LocalMemory(obj unsafe.Pointer) Memory {
	return &localMemory{root: obj}
}

//go:nocheckptr
func (m *localMemory) Read(addr uint64, n int) ([]byte, error) {
	if addr == 0 {
		return nil, fmt.Errorf("read of %d bytes at null address", n)
	}
	if n < 0 {
		return nil, fmt.Errorf("invalid read size %d", n)
	}
	//nolint:govet // addr comes from the reflected object graph.
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n), nil
}

//go:nocheckptr
func (m *localMemory) CString(addr uint64) ([]byte, error) {
	if addr == 0 {
		return nil, errors.New("string at null address")
	}
	//nolint:govet // addr comes from the reflected object graph.
	p := unsafe.Pointer(uintptr(addr))
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return unsafe.Slice((*byte)(p), n), nil
}
