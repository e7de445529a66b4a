package serialize

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"strconv"

	"github.com/VasilisMylonas/libreflect/pkg/reflection"
)

// Leaf is a scalar value handed to a Format.
type Leaf struct {
	Repr reflection.Repr
	// Size is the width of the value in bytes.
	Size int
	// Raw holds the Size bytes of the value in native byte order.
	Raw []byte
	// Str holds the dereferenced bytes of a ReprString leaf, without the
	// terminating NUL.
	Str []byte
}

func (l Leaf) unsupported() error {
	return fmt.Errorf("%w: %s leaf of size %d", ErrUnsupported, l.Repr, l.Size)
}

// Int decodes a signed integer of size 1, 2, 4 or 8.
func (l Leaf) Int() (int64, error) {
	if len(l.Raw) < l.Size {
		return 0, l.unsupported()
	}
	switch l.Size {
	case 1:
		return int64(int8(l.Raw[0])), nil
	case 2:
		return int64(int16(binary.NativeEndian.Uint16(l.Raw))), nil
	case 4:
		return int64(int32(binary.NativeEndian.Uint32(l.Raw))), nil
	case 8:
		return int64(binary.NativeEndian.Uint64(l.Raw)), nil
	}
	return 0, l.unsupported()
}

// Uint decodes an unsigned integer of size 1, 2, 4 or 8.
func (l Leaf) Uint() (uint64, error) {
	if len(l.Raw) < l.Size {
		return 0, l.unsupported()
	}
	switch l.Size {
	case 1:
		return uint64(l.Raw[0]), nil
	case 2:
		return uint64(binary.NativeEndian.Uint16(l.Raw)), nil
	case 4:
		return uint64(binary.NativeEndian.Uint32(l.Raw)), nil
	case 8:
		return binary.NativeEndian.Uint64(l.Raw), nil
	}
	return 0, l.unsupported()
}

// Bool reports whether any byte of the value is set.
func (l Leaf) Bool() bool {
	for _, b := range l.Raw {
		if b != 0 {
			return true
		}
	}
	return false
}

// Float decodes a float or double.
func (l Leaf) Float() (float64, error) {
	if len(l.Raw) < l.Size {
		return 0, l.unsupported()
	}
	switch l.Size {
	case 4:
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(l.Raw))), nil
	case 8:
		return math.Float64frombits(binary.NativeEndian.Uint64(l.Raw)), nil
	}
	return 0, l.unsupported()
}

// Text renders the leaf the way printf would: integers in decimal, floats
// with six fixed decimals, characters as themselves and pointers as unsigned
// integers. Strings are returned raw; escaping is up to the format.
func (l Leaf) Text() (string, error) {
	switch l.Repr {
	case reflection.ReprInt:
		v, err := l.Int()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil

	case reflection.ReprUint, reflection.ReprPointer:
		v, err := l.Uint()
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(v, 10), nil

	case reflection.ReprFloat:
		return l.floatText()

	case reflection.ReprBoolean:
		if l.Bool() {
			return "true", nil
		}
		return "false", nil

	case reflection.ReprSChar, reflection.ReprUChar:
		if len(l.Raw) == 0 {
			return "", l.unsupported()
		}
		return string(l.Raw[:1]), nil

	case reflection.ReprString:
		return string(l.Str), nil
	}
	return "", l.unsupported()
}

func (l Leaf) floatText() (string, error) {
	switch l.Size {
	case 4, 8:
		v, err := l.Float()
		if err != nil {
			return "", err
		}
		return formatFloat(v), nil
	}

	if len(l.Raw) < l.Size {
		return "", l.unsupported()
	}
	switch {
	case x87Extended() && (l.Size == 10 || l.Size == 12 || l.Size == 16):
		return formatBig(decodeX87(l.Raw[:10])), nil
	case !x87Extended() && l.Size == 16:
		return formatBig(decodeBinary128(l.Raw[:16])), nil
	}
	return "", l.unsupported()
}

// x87Extended reports whether long double is the 80-bit x87 format.
func x87Extended() bool {
	return runtime.GOARCH == "amd64" || runtime.GOARCH == "386"
}

// bigFloat is a decoded extended-precision value. Inf and NaN are carried
// outside the big.Float, which cannot represent NaN.
type bigFloat struct {
	f   *big.Float
	neg bool
	inf bool
	nan bool
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 0):
		return special(math.Signbit(v), "inf")
	case math.IsNaN(v):
		return special(math.Signbit(v), "nan")
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatBig(v bigFloat) string {
	switch {
	case v.inf:
		return special(v.neg, "inf")
	case v.nan:
		return special(v.neg, "nan")
	}
	return v.f.Text('f', 6)
}

func special(neg bool, s string) string {
	if neg {
		return "-" + s
	}
	return s
}

const (
	extendedBias    = 16383
	extendedMaxExp  = 0x7fff
	x87MantBits     = 63
	binary128Frac   = 112
	binary128HiFrac = 48
)

// decodeX87 decodes an 80-bit x87 extended value: a 64-bit mantissa with an
// explicit integer bit followed by sign and a 15-bit exponent.
func decodeX87(b []byte) bigFloat {
	mant := binary.LittleEndian.Uint64(b[0:8])
	se := binary.LittleEndian.Uint16(b[8:10])
	v := bigFloat{neg: se>>15 == 1}
	exp := int(se & extendedMaxExp)

	if exp == extendedMaxExp {
		if mant<<1 == 0 {
			v.inf = true
		} else {
			v.nan = true
		}
		return v
	}
	if exp == 0 {
		exp = 1
	}

	f := new(big.Float).SetPrec(64).SetUint64(mant)
	f.SetMantExp(f, exp-extendedBias-x87MantBits)
	if v.neg {
		f.Neg(f)
	}
	v.f = f
	return v
}

// decodeBinary128 decodes an IEEE 754 quadruple precision value in native
// byte order.
func decodeBinary128(b []byte) bigFloat {
	var hi, lo uint64
	if bigEndian() {
		hi, lo = binary.BigEndian.Uint64(b[0:8]), binary.BigEndian.Uint64(b[8:16])
	} else {
		lo, hi = binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16])
	}

	v := bigFloat{neg: hi>>63 == 1}
	exp := int(hi >> binary128HiFrac & extendedMaxExp)
	fracHi := hi & (1<<binary128HiFrac - 1)

	if exp == extendedMaxExp {
		if fracHi == 0 && lo == 0 {
			v.inf = true
		} else {
			v.nan = true
		}
		return v
	}

	m := new(big.Int).SetUint64(fracHi)
	m.Lsh(m, 64)
	m.Or(m, new(big.Int).SetUint64(lo))
	if exp == 0 {
		exp = 1
	} else {
		m.SetBit(m, binary128Frac, 1)
	}

	f := new(big.Float).SetPrec(binary128Frac + 1).SetInt(m)
	f.SetMantExp(f, exp-extendedBias-binary128Frac)
	if v.neg {
		f.Neg(f)
	}
	v.f = f
	return v
}

func bigEndian() bool {
	return binary.NativeEndian.Uint16([]byte{0x12, 0x34}) == 0x1234
}
