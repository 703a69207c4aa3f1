// Package fru encodes and decodes IPMI FRU information areas.
//
// An area is a fixed sequence of named fields framed by a one-byte version
// prologue and a padding and checksum epilogue. The package provides the two
// field primitives, BitField and StringField, and the Schema and Record types
// that assemble them into a byte-exact, checksum-verified area.
//
// # Area Format
//
//	byte 0:            0000 vvvv   reserved nibble, format version (default 1)
//	bytes 1..N:        schema fields in declared order
//	bytes N+1..N+P:    zero padding so that (N+1+P+1) % 8 == 0
//	byte N+P+1:        checksum, (-sum(bytes 0..N+P)) mod 256
//
// # Fields
//
// A BitField is ceil(bits/8) bytes wide. Its groups are packed most
// significant bit first and the packed value is stored little-endian, so a
// u4u4 field holding (0, 1) is the byte 0x01 and a u24 field holding
// 0x123456 is 56 34 12.
//
// A StringField starts with a header byte, [encoding:2][length:6], followed
// by length bytes of payload in one of four encodings: Binary, BCDPlus,
// ASCII6Bit and ASCII8Bit. Payloads are limited to 63 bytes.
//
// # Usage
//
//	schema := fru.MustSchema("ChassisInfo",
//	    fru.Entry{Name: fru.AreaLength, Proto: fru.MustBitField(8)},
//	    fru.Entry{Name: "chassis_type", Proto: fru.MustBitField(8)},
//	    fru.Entry{Name: "serial_number", Proto: fru.NewStringField(fru.ASCII8Bit)},
//	)
//
//	rec, err := schema.New(map[string]fru.Value{
//	    "chassis_type":  fru.Scalar(0x17),
//	    "serial_number": fru.Text("SN-0001"),
//	})
//	if err != nil {
//	    return err
//	}
//	image, err := rec.Serialize()
//
//	parsed, _ := schema.New(nil)
//	rest, err := parsed.Deserialize(image)
//
// # Error Handling
//
// Every failure is reported synchronously and can be matched with errors.Is
// against the sentinels in this package. A failed Deserialize or Update
// leaves the record untouched.
//
// # Thread Safety
//
// Schemas are immutable and may be shared. Each Record owns its fields; a
// Record must not be mutated from several goroutines at once.
package fru
