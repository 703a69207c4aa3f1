package fru

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitField_Serialize(t *testing.T) {
	testCases := []struct {
		name   string
		widths []int
		value  Value
		want   []byte
	}{
		{name: "version prologue", widths: []int{4, 4}, value: Tuple{0, 1}, want: []byte{0x01}},
		{name: "nibbles", widths: []int{4, 4}, value: Tuple{0xa, 0x5}, want: []byte{0xa5}},
		{name: "single byte", widths: []int{8}, value: Scalar(0xab), want: []byte{0xab}},
		{name: "uneven groups", widths: []int{3, 5}, value: Tuple{0b101, 0b00011}, want: []byte{0xa3}},
		{name: "u16 little endian", widths: []int{16}, value: Scalar(0x1234), want: []byte{0x34, 0x12}},
		{name: "u24 little endian", widths: []int{24}, value: Scalar(0x123456), want: []byte{0x56, 0x34, 0x12}},
		{name: "groups across bytes", widths: []int{4, 12}, value: Tuple{0x1, 0x234}, want: []byte{0x34, 0x12}},
		{
			name:   "u64",
			widths: []int{64},
			value:  Scalar(math.MaxUint64),
			want:   []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := MustBitField(tc.widths...)
			require.NoError(t, f.SetValue(tc.value))

			got, err := f.Serialize()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Len(t, got, f.Size())

			parsed := MustBitField(tc.widths...)
			rest, err := parsed.Deserialize(append(got, 0xee))
			require.NoError(t, err)
			assert.Equal(t, []byte{0xee}, rest)
			assert.Equal(t, tc.value, parsed.Value())
		})
	}
}

func TestBitField_Layout(t *testing.T) {
	t.Run("not byte aligned", func(t *testing.T) {
		_, err := NewBitField(4, 3)
		assert.ErrorIs(t, err, ErrBitAlignment)
	})

	t.Run("empty layout", func(t *testing.T) {
		_, err := NewBitField()
		assert.ErrorIs(t, err, ErrBitLayout)
	})

	t.Run("zero width group", func(t *testing.T) {
		_, err := NewBitField(0, 8)
		assert.ErrorIs(t, err, ErrBitLayout)
	})

	t.Run("wider than 64 bits", func(t *testing.T) {
		_, err := NewBitField(32, 40)
		assert.ErrorIs(t, err, ErrBitLayout)
	})

	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() { MustBitField(7) })
	})

	t.Run("defaults to zero", func(t *testing.T) {
		assert.Equal(t, Scalar(0), MustBitField(8).Value())
		assert.Equal(t, Tuple{0, 0}, MustBitField(4, 4).Value())
	})

	t.Run("describes layout", func(t *testing.T) {
		assert.Equal(t, "u4u4", MustBitField(4, 4).String())
		assert.Equal(t, "u24", MustBitField(24).String())
	})
}

func TestBitField_SetValue(t *testing.T) {
	t.Run("group overflow", func(t *testing.T) {
		err := MustBitField(4, 4).SetValue(Tuple{16, 0})
		assert.ErrorIs(t, err, ErrValueRange)
	})

	t.Run("scalar overflow", func(t *testing.T) {
		err := MustBitField(8).SetValue(Scalar(256))
		assert.ErrorIs(t, err, ErrValueRange)
	})

	t.Run("scalar for tuple layout", func(t *testing.T) {
		err := MustBitField(4, 4).SetValue(Scalar(1))
		assert.ErrorIs(t, err, ErrValueShape)
	})

	t.Run("tuple for scalar layout", func(t *testing.T) {
		err := MustBitField(8).SetValue(Tuple{1, 2})
		assert.ErrorIs(t, err, ErrValueShape)
	})

	t.Run("text", func(t *testing.T) {
		err := MustBitField(8).SetValue(Text("1"))
		assert.ErrorIs(t, err, ErrValueShape)
	})

	t.Run("failed set keeps value", func(t *testing.T) {
		f := MustBitField(8).WithDefault(Scalar(7))
		require.Error(t, f.SetValue(Scalar(1000)))
		assert.Equal(t, Scalar(7), f.Value())
	})

	t.Run("tuple is copied", func(t *testing.T) {
		in := Tuple{1, 2}
		f := MustBitField(4, 4)
		require.NoError(t, f.SetValue(in))
		in[0] = 9
		out := f.Value().(Tuple)
		out[1] = 9
		assert.Equal(t, Tuple{1, 2}, f.Value())
	})
}

func TestBitField_Deserialize(t *testing.T) {
	t.Run("short buffer", func(t *testing.T) {
		_, err := MustBitField(16).Deserialize([]byte{0x01})
		assert.ErrorIs(t, err, ErrShortBuffer)
	})

	t.Run("returns remainder", func(t *testing.T) {
		f := MustBitField(8)
		rest, err := f.Deserialize([]byte{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []byte{2, 3}, rest)
		assert.Equal(t, Scalar(1), f.Value())
	})

	t.Run("clone is independent", func(t *testing.T) {
		f := MustBitField(4, 4).WithDefault(Tuple{1, 2})
		c := f.Clone()
		_, err := c.Deserialize([]byte{0x34})
		require.NoError(t, err)
		assert.Equal(t, Tuple{3, 4}, c.Value())
		assert.Equal(t, Tuple{1, 2}, f.Value())
	})
}
