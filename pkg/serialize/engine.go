// Package serialize renders objects described by reflection types as text.
//
// The Encoder walks an object guided only by its type: builtins and enums
// become leaves, pointers are followed (C strings are dereferenced as text,
// null pointers print as 0), and structs expand member by member in
// declaration order. Output is streamed to the writer as the walk goes; on
// error the partial output must be discarded.
package serialize

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

var (
	// ErrUnsupported is returned for types and leaves that cannot be
	// rendered: arrays, unions, subroutines and unusual scalar encodings.
	ErrUnsupported = errors.New("unsupported type")
	// ErrDepthExceeded is returned when nesting exceeds the encoder's maximum
	// depth, typically because of a pointer cycle.
	ErrDepthExceeded = errors.New("maximum depth exceeded")
	// ErrUnknownFormat is returned by FormatByName.
	ErrUnknownFormat = errors.New("unknown format")
)

// DefaultMaxDepth is the nesting limit of a new Encoder.
const DefaultMaxDepth = 64

const (
	ptrSize = int(unsafe.Sizeof(uintptr(0)))
	// Enums are rendered as a C int.
	enumSize = 4
)

// Encoder writes objects to an output stream in one format. An Encoder is not
// safe for concurrent use; create one per goroutine.
type Encoder struct {
	w        io.Writer
	f        Format
	logger   zerolog.Logger
	maxDepth int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger used by the encoder.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger.With().Str("component", "serialize").Logger()
	}
}

// WithMaxDepth bounds how deeply structs and pointers may nest.
func WithMaxDepth(depth int) Option {
	return func(e *Encoder) {
		e.maxDepth = depth
	}
}

// NewEncoder returns an encoder writing to w in format f.
func NewEncoder(w io.Writer, f Format, opts ...Option) *Encoder {
	e := &Encoder{
		w:        w,
		f:        f,
		logger:   zerolog.Nop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes the object at obj, an object of type t in the current process.
func (e *Encoder) Encode(obj unsafe.Pointer, t reflection.Type) error {
	if obj == nil {
		return fmt.Errorf("serialize: %w: nil object", reflection.ErrNullArgument)
	}
	return e.EncodeAt(LocalMemory(obj), uint64(uintptr(obj)), t)
}

// EncodeAt writes the object of type t found at addr in mem.
func (e *Encoder) EncodeAt(mem Memory, addr uint64, t reflection.Type) error {
	if e.w == nil || e.f == nil || mem == nil {
		return fmt.Errorf("serialize: %w: encoder has no writer, format or memory", reflection.ErrNullArgument)
	}
	if t.IsZero() {
		return fmt.Errorf("serialize: %w: zero type", reflection.ErrNullArgument)
	}

	e.logger.Debug().
		Uint64("addr", addr).
		Uint32("type", uint32(t.Offset())).
		Msg("Encoding object")

	w := walker{e: e, mem: mem}
	if err := w.walk(addr, t, 0); err != nil {
		return fmt.Errorf("serialize %s: %w", w.where(), err)
	}
	return nil
}

// Serialize writes the object at obj of type t to w in format f.
func Serialize(w io.Writer, f Format, obj unsafe.Pointer, t reflection.Type) error {
	return NewEncoder(w, f).Encode(obj, t)
}

// Marshal returns the rendering of the object at obj of type t in format f.
func Marshal(f Format, obj unsafe.Pointer, t reflection.Type) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, f, obj, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// walker holds the state of one EncodeAt call.
type walker struct {
	e   *Encoder
	mem Memory
	// path is the chain of member names leading to the current value.
	path []string
}

func (w *walker) where() string {
	if len(w.path) == 0 {
		return "<root>"
	}
	return "." + strings.Join(w.path, ".")
}

func (w *walker) walk(addr uint64, t reflection.Type, depth int) error {
	if depth > w.e.maxDepth {
		return fmt.Errorf("%w (%d)", ErrDepthExceeded, w.e.maxDepth)
	}

	t, err := t.Peel()
	if err != nil {
		return err
	}
	kind, err := t.Kind()
	if err != nil {
		return err
	}

	switch kind {
	case reflection.KindBuiltin:
		return w.builtin(addr, t)
	case reflection.KindEnum:
		return w.leaf(addr, reflection.ReprInt, enumSize)
	case reflection.KindPointer:
		return w.pointer(addr, t, depth)
	case reflection.KindStruct:
		return w.structure(addr, t, depth)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, kind)
}

func (w *walker) builtin(addr uint64, t reflection.Type) error {
	repr, err := t.Repr()
	if err != nil {
		return err
	}
	size, err := t.Size()
	if err != nil {
		return err
	}
	return w.leaf(addr, repr, int(size))
}

func (w *walker) leaf(addr uint64, repr reflection.Repr, size int) error {
	raw, err := w.mem.Read(addr, size)
	if err != nil {
		return err
	}
	return w.e.f.Leaf(w.e.w, Leaf{Repr: repr, Size: size, Raw: raw})
}

func (w *walker) pointer(addr uint64, t reflection.Type, depth int) error {
	raw, err := w.mem.Read(addr, ptrSize)
	if err != nil {
		return err
	}
	var target uint64
	if ptrSize == 8 {
		target = binary.NativeEndian.Uint64(raw)
	} else {
		target = uint64(binary.NativeEndian.Uint32(raw))
	}

	if target == 0 {
		return w.e.f.Leaf(w.e.w, Leaf{Repr: reflection.ReprPointer, Size: ptrSize, Raw: raw})
	}

	if t.IsCString() {
		s, err := w.mem.CString(target)
		if err != nil {
			return err
		}
		return w.e.f.Leaf(w.e.w, Leaf{Repr: reflection.ReprString, Size: ptrSize, Raw: raw, Str: s})
	}

	elem, err := t.Elem()
	if errors.Is(err, reflection.ErrNoData) {
		// void* has nothing to follow.
		return w.e.f.Leaf(w.e.w, Leaf{Repr: reflection.ReprPointer, Size: ptrSize, Raw: raw})
	}
	if err != nil {
		return err
	}
	return w.walk(target, elem, depth+1)
}

type member struct {
	name string
	off  uint64
	typ  reflection.Type
}

func (w *walker) structure(addr uint64, t reflection.Type, depth int) error {
	name, err := t.Name()
	if err != nil && !errors.Is(err, reflection.ErrNoData) {
		return err
	}

	handles, err := t.Members()
	if err != nil {
		return err
	}
	members := make([]member, len(handles))
	for i, h := range handles {
		if members[i].name, err = h.Name(); err != nil {
			return err
		}
		off, err := h.Offset()
		if err != nil {
			return fmt.Errorf("member %s: %w", members[i].name, err)
		}
		members[i].off = uint64(off)
		if members[i].typ, err = h.Type(); err != nil {
			return fmt.Errorf("member %s: %w", members[i].name, err)
		}
	}

	if w.e.logger.GetLevel() <= zerolog.TraceLevel {
		w.e.logger.Trace().
			Str("struct", name).
			Int("members", len(members)).
			Str("path", w.where()).
			Msg("Encoding struct")
	}

	f, out := w.e.f, w.e.w
	if err := f.BeginStruct(out, name); err != nil {
		return err
	}
	for i, m := range members {
		if err := f.BeginMember(out, m.name); err != nil {
			return err
		}
		w.path = append(w.path, m.name)
		if err := w.walk(addr+m.off, m.typ, depth+1); err != nil {
			return err
		}
		w.path = w.path[:len(w.path)-1]
		if err := f.EndMember(out, m.name, i == len(members)-1); err != nil {
			return err
		}
	}
	return f.EndStruct(out, name)
}
