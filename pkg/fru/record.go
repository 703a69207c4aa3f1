package fru

import (
	"bytes"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Names with record-level accessors.
const (
	AreaLength    = "area_length"
	FormatVersion = "format_version"
)

// DefaultFormatVersion is the version written into new areas.
const DefaultFormatVersion = 1

// alignment is the size unit of an area and of its area_length field.
const alignment = 8

// NamedValue is one entry of a ToDict snapshot.
type NamedValue struct {
	Name  string
	Value Value
}

type accessor int

const (
	schemaAccessor accessor = iota
	areaLengthAccessor
	formatVersionAccessor
)

// Record is one area: a version prologue, the schema fields in order, and a
// padding and checksum epilogue. A Record is not safe for concurrent
// mutation.
type Record struct {
	schema  *Schema
	version *BitField
	fields  []Field
}

func (r *Record) Schema() *Schema { return r.schema }

// Field returns the live field called name.
func (r *Record) Field(name string) (Field, bool) {
	i, ok := r.schema.index[name]
	if !ok {
		return nil, false
	}
	return r.fields[i], true
}

func (r *Record) resolve(name string) (accessor, int, error) {
	if name == FormatVersion {
		return formatVersionAccessor, -1, nil
	}
	i, ok := r.schema.index[name]
	if !ok {
		return 0, -1, errors.Wrapf(ErrUnknownField, "%s has no field %q", r.schema.name, name)
	}
	if name == AreaLength {
		return areaLengthAccessor, i, nil
	}
	return schemaAccessor, i, nil
}

// Contains reports whether name can be read and written.
func (r *Record) Contains(name string) bool {
	_, _, err := r.resolve(name)
	return err == nil
}

// Get returns the value of name. area_length is reported in bytes.
func (r *Record) Get(name string) (Value, error) {
	acc, i, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	switch acc {
	case formatVersionAccessor:
		return Scalar(r.FormatVersion()), nil
	case areaLengthAccessor:
		units, ok := r.fields[i].Value().(Scalar)
		if !ok {
			return nil, errors.Wrapf(ErrValueShape, "%s is not a scalar", AreaLength)
		}
		return units * alignment, nil
	default:
		return r.fields[i].Value(), nil
	}
}

// Set stores v under name. area_length takes bytes and must be a multiple
// of 8.
func (r *Record) Set(name string, v Value) error {
	acc, i, err := r.resolve(name)
	if err != nil {
		return err
	}
	switch acc {
	case formatVersionAccessor:
		s, ok := v.(Scalar)
		if !ok {
			return errors.Wrapf(ErrValueShape, "%s must be a scalar, got %v", FormatVersion, v)
		}
		return r.SetFormatVersion(uint64(s))
	case areaLengthAccessor:
		s, ok := v.(Scalar)
		if !ok {
			return errors.Wrapf(ErrValueShape, "%s must be a scalar, got %v", AreaLength, v)
		}
		if s%alignment != 0 {
			return errors.Wrapf(ErrFieldAlignment, "area length %d", s)
		}
		return errors.Wrap(r.fields[i].SetValue(s/alignment), AreaLength)
	default:
		return errors.Wrap(r.fields[i].SetValue(v), name)
	}
}

// Update applies every entry of values through Set. Either all entries are
// applied or, on error, none are.
func (r *Record) Update(values map[string]Value) error {
	names := make([]string, 0, len(values))
	for name := range values {
		if !r.Contains(name) {
			return errors.Wrapf(ErrUnknownField, "%s has no field %q", r.schema.name, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	staged := r.clone()
	for _, name := range names {
		if err := staged.Set(name, values[name]); err != nil {
			return err
		}
	}
	*r = *staged
	return nil
}

// FormatVersion returns the version nibble of the prologue.
func (r *Record) FormatVersion() uint64 {
	return uint64(r.version.Value().(Tuple)[1])
}

// SetFormatVersion stores v in the prologue and clears the reserved nibble.
func (r *Record) SetFormatVersion(v uint64) error {
	return errors.Wrap(r.version.SetValue(Tuple{0, v}), FormatVersion)
}

// ToDict returns a snapshot of every schema field in schema order.
func (r *Record) ToDict() []NamedValue {
	out := make([]NamedValue, 0, len(r.fields))
	for _, e := range r.schema.entries {
		v, err := r.Get(e.Name)
		if err != nil {
			v = r.fields[r.schema.index[e.Name]].Value()
		}
		out = append(out, NamedValue{Name: e.Name, Value: v})
	}
	return out
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.schema.name)
	b.WriteByte('{')
	for i, nv := range r.ToDict() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(nv.Name)
		b.WriteString(": ")
		b.WriteString(nv.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}

// SizePayload returns the size of the prologue and all fields.
func (r *Record) SizePayload() int {
	n := r.version.Size()
	for _, f := range r.fields {
		n += f.Size()
	}
	return n
}

// SizeTotal returns the serialized size including padding and checksum.
func (r *Record) SizeTotal() int {
	return alignUp(r.SizePayload() + 1)
}

// Serialize updates area_length, if the schema has one, and returns the
// area bytes. The result length is a multiple of 8 and its bytes sum to 0
// modulo 256.
func (r *Record) Serialize() ([]byte, error) {
	total := r.SizeTotal()
	if r.schema.Has(AreaLength) {
		if err := r.Set(AreaLength, Scalar(total)); err != nil {
			return nil, err
		}
	}

	payload, err := r.version.Serialize()
	if err != nil {
		return nil, err
	}
	for i, f := range r.fields {
		b, err := f.Serialize()
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", r.schema.name, r.schema.entries[i].Name)
		}
		payload = append(payload, b...)
	}
	return append(payload, epilogue(payload)...), nil
}

// Deserialize parses one area from the front of buf and returns the bytes
// that follow it. The record is left unchanged on error.
func (r *Record) Deserialize(buf []byte) ([]byte, error) {
	staged := r.clone()
	rest, err := staged.version.Deserialize(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "%s prologue", r.schema.name)
	}
	for i, f := range staged.fields {
		if rest, err = f.Deserialize(rest); err != nil {
			return nil, errors.Wrapf(err, "%s.%s", r.schema.name, r.schema.entries[i].Name)
		}
	}

	payload := buf[:len(buf)-len(rest)]
	want := epilogue(payload)
	got := rest
	if len(got) > len(want) {
		got = got[:len(want)]
	}
	if !bytes.Equal(want, got) {
		return nil, &ChecksumError{Expected: want, Received: append([]byte(nil), got...)}
	}
	*r = *staged
	return rest[len(want):], nil
}

func (r *Record) clone() *Record {
	c := &Record{
		schema:  r.schema,
		version: r.version.Clone().(*BitField),
		fields:  make([]Field, len(r.fields)),
	}
	for i, f := range r.fields {
		c.fields[i] = f.Clone()
	}
	return c
}

// epilogue returns the zero padding that makes len(payload)+1 a multiple of
// 8, followed by the checksum byte.
func epilogue(payload []byte) []byte {
	pad := alignUp(len(payload)+1) - (len(payload) + 1)
	out := make([]byte, pad+1)
	var sum byte
	for _, b := range payload {
		sum += b
	}
	out[pad] = -sum
	return out
}

func alignUp(n int) int {
	return (n + alignment - 1) / alignment * alignment
}
