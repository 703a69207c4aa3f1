package fru

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// maxBits bounds the total width of a BitField so it packs into one uint64.
const maxBits = 64

// BitField is a fixed-width field made of one or more unsigned bit groups.
//
// Groups are packed in declaration order, most significant bits first, and
// the resulting stream is written in little-endian byte order. A field with
// one group holds a Scalar, a field with several groups holds a Tuple.
type BitField struct {
	widths []int
	bits   int
	value  Value
}

// NewBitField declares a field with the given group widths in bits. The
// total width must be a multiple of 8.
func NewBitField(widths ...int) (*BitField, error) {
	if len(widths) == 0 {
		return nil, errors.Wrap(ErrBitLayout, "no bit groups")
	}
	var bits int
	for _, w := range widths {
		if w <= 0 || w > maxBits {
			return nil, errors.Wrapf(ErrBitLayout, "group width %d", w)
		}
		bits += w
	}
	if bits > maxBits {
		return nil, errors.Wrapf(ErrBitLayout, "total width %d exceeds %d bits", bits, maxBits)
	}
	if bits%8 != 0 {
		return nil, errors.Wrapf(ErrBitAlignment, "total width %d", bits)
	}
	f := &BitField{widths: append([]int(nil), widths...), bits: bits}
	if len(widths) == 1 {
		f.value = Scalar(0)
	} else {
		f.value = make(Tuple, len(widths))
	}
	return f, nil
}

// MustBitField is like NewBitField but panics on an invalid layout. It is
// meant for schema declarations.
func MustBitField(widths ...int) *BitField {
	f, err := NewBitField(widths...)
	if err != nil {
		panic(err)
	}
	return f
}

// WithDefault sets the initial value and returns f. It panics if v does not
// fit the layout.
func (f *BitField) WithDefault(v Value) *BitField {
	if err := f.SetValue(v); err != nil {
		panic(err)
	}
	return f
}

// Widths returns the group widths.
func (f *BitField) Widths() []int {
	return append([]int(nil), f.widths...)
}

func (f *BitField) Size() int {
	return f.bits / 8
}

func (f *BitField) Value() Value {
	if t, ok := f.value.(Tuple); ok {
		return t.clone()
	}
	return f.value
}

func (f *BitField) SetValue(v Value) error {
	groups, err := f.groups(v)
	if err != nil {
		return err
	}
	for i, g := range groups {
		if g > mask(f.widths[i]) {
			return errors.Wrapf(ErrValueRange, "%d does not fit in %d bits", g, f.widths[i])
		}
	}
	if len(f.widths) == 1 {
		f.value = Scalar(groups[0])
	} else {
		f.value = Tuple(groups).clone()
	}
	return nil
}

func (f *BitField) groups(v Value) ([]uint64, error) {
	switch x := v.(type) {
	case Scalar:
		if len(f.widths) != 1 {
			return nil, errors.Wrapf(ErrValueShape, "scalar %d for %d bit groups", x, len(f.widths))
		}
		return []uint64{uint64(x)}, nil
	case Tuple:
		if len(x) != len(f.widths) {
			return nil, errors.Wrapf(ErrValueShape, "%d values for %d bit groups", len(x), len(f.widths))
		}
		return x, nil
	default:
		return nil, errors.Wrapf(ErrValueShape, "%v for bit field %s", v, f)
	}
}

func (f *BitField) Serialize() ([]byte, error) {
	groups, err := f.groups(f.value)
	if err != nil {
		return nil, err
	}
	var acc uint64
	for i, w := range f.widths {
		acc = acc<<uint(w) | groups[i]&mask(w)
	}
	out := make([]byte, f.Size())
	for i := range out {
		out[i] = byte(acc >> (8 * uint(i)))
	}
	return out, nil
}

func (f *BitField) Deserialize(buf []byte) ([]byte, error) {
	n := f.Size()
	if len(buf) < n {
		return nil, errors.Wrapf(ErrShortBuffer, "bit field %s needs %d bytes, have %d", f, n, len(buf))
	}
	var acc uint64
	for i, b := range buf[:n] {
		acc |= uint64(b) << (8 * uint(i))
	}
	groups := make([]uint64, len(f.widths))
	for i := len(f.widths) - 1; i >= 0; i-- {
		groups[i] = acc & mask(f.widths[i])
		acc >>= uint(f.widths[i])
	}
	if len(groups) == 1 {
		f.value = Scalar(groups[0])
	} else {
		f.value = Tuple(groups)
	}
	return buf[n:], nil
}

func (f *BitField) Clone() Field {
	c := *f
	c.widths = append([]int(nil), f.widths...)
	c.value = f.Value()
	return &c
}

func (f *BitField) String() string {
	var b strings.Builder
	for _, w := range f.widths {
		fmt.Fprintf(&b, "u%d", w)
	}
	return b.String()
}

func mask(width int) uint64 {
	return uint64(1)<<uint(width) - 1
}
