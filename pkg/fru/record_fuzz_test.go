//go:build fuzz
// +build fuzz

package fru

import (
	"bytes"
	"testing"
)

// FuzzRecord_Deserialize feeds arbitrary bytes to an area parser. Whatever
// parses must serialize back to exactly the bytes it consumed.
func FuzzRecord_Deserialize(f *testing.F) {
	schema := MustSchema("Fuzz",
		Entry{Name: "flags", Proto: MustBitField(4, 4)},
		Entry{Name: "manufacturer", Proto: NewStringField(ASCII8Bit)},
		Entry{Name: "part_number", Proto: NewStringField(BCDPlus)},
	)

	f.Add([]byte{0x01, 0, 0, 0, 0, 0, 0, 0xff})
	f.Add([]byte{0x01, 0x12, 0xc2, 0x48, 0x69, 0x41, 0x12, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := schema.New(nil)
		if err != nil {
			t.Fatal(err)
		}
		rest, err := rec.Deserialize(data)
		if err != nil {
			return
		}
		consumed := data[:len(data)-len(rest)]

		out, err := rec.Serialize()
		if err != nil {
			t.Fatalf("Serialize after successful Deserialize failed: %v", err)
		}
		if !bytes.Equal(out, consumed) {
			t.Errorf("re-serialized area differs:\n got % x\nwant % x", out, consumed)
		}
	})
}

// FuzzStringField_RoundTrip checks size consistency for every encoding.
func FuzzStringField_RoundTrip(f *testing.F) {
	f.Add("12", uint8(BCDPlus))
	f.Add("IPMI", uint8(ASCII6Bit))
	f.Add("Hi", uint8(ASCII8Bit))

	f.Fuzz(func(t *testing.T, s string, enc uint8) {
		field := NewStringField(Encoding(enc & 0b11)).WithDefault(s)
		b, err := field.Serialize()
		if err != nil {
			return
		}
		if len(b) != field.Size() {
			t.Fatalf("Size() = %d, serialized %d bytes", field.Size(), len(b))
		}
		parsed := NewStringField(Binary)
		rest, err := parsed.Deserialize(b)
		if err != nil {
			if field.Encoding() == Binary || field.Encoding() == ASCII8Bit {
				return
			}
			t.Fatalf("Deserialize failed: %v", err)
		}
		if len(rest) != 0 {
			t.Fatalf("unexpected remainder % x", rest)
		}
	})
}
