package fru

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Encoding is the 2-bit type code in a string field header.
type Encoding uint8

const (
	Binary    Encoding = 0b00
	BCDPlus   Encoding = 0b01
	ASCII6Bit Encoding = 0b10
	ASCII8Bit Encoding = 0b11
)

// maxPayload is the largest payload the 6-bit length can express.
const maxPayload = 0x3f

var encodingNames = [...]string{
	Binary:    "bin",
	BCDPlus:   "bcd_plus",
	ASCII6Bit: "ascii_6bit",
	ASCII8Bit: "ascii_8bit",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// ParseEncoding maps a name such as "bcd_plus" (case insensitive) to its
// Encoding.
func ParseEncoding(name string) (Encoding, error) {
	for i, n := range encodingNames {
		if strings.EqualFold(n, name) {
			return Encoding(i), nil
		}
	}
	return 0, errors.Wrapf(ErrEncodingLookup, "unknown string encoding %q", name)
}

var bcdPlusCodes = map[rune]byte{
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7,
	'8': 8, '9': 9, ' ': 10, '-': 11, '.': 12,
}

const bcdPlusChars = "0123456789 -."

// StringField is a variable-length field: a header byte holding the
// encoding and the payload length, followed by the encoded payload.
//
// Pad characters added by BCD plus and 6-bit ASCII are kept on decode, so
// "1" encoded as BCD plus reads back as "1 ".
type StringField struct {
	encoding Encoding
	value    string
}

// NewStringField returns an empty string field using enc.
func NewStringField(enc Encoding) *StringField {
	return &StringField{encoding: enc & 0b11}
}

// WithDefault sets the initial text and returns f.
func (f *StringField) WithDefault(s string) *StringField {
	f.value = s
	return f
}

func (f *StringField) Encoding() Encoding { return f.encoding }

// SetEncoding changes the encoding used by the next Serialize.
func (f *StringField) SetEncoding(enc Encoding) { f.encoding = enc & 0b11 }

func (f *StringField) Text() string { return f.value }

func (f *StringField) Value() Value { return Text(f.value) }

func (f *StringField) SetValue(v Value) error {
	t, ok := v.(Text)
	if !ok {
		return errors.Wrapf(ErrValueShape, "%v for string field", v)
	}
	f.value = string(t)
	return nil
}

func (f *StringField) Size() int {
	return 1 + payloadSize(f.encoding, len(f.value))
}

func payloadSize(enc Encoding, n int) int {
	switch enc {
	case BCDPlus:
		return (n + 1) / 2
	case ASCII6Bit:
		return (n + 3) / 4 * 3
	default:
		return n
	}
}

func (f *StringField) Serialize() ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	switch f.encoding {
	case BCDPlus:
		payload, err = encodeBCDPlus(f.value)
	case ASCII6Bit:
		payload, err = encode6Bit(f.value)
	default:
		payload = []byte(f.value)
	}
	if err != nil {
		return nil, err
	}
	if len(payload) > maxPayload {
		return nil, errors.Wrapf(ErrEncodingLookup, "%s payload of %d bytes exceeds %d", f.encoding, len(payload), maxPayload)
	}
	out := make([]byte, 0, 1+len(payload))
	out = append(out, byte(f.encoding)<<6|byte(len(payload)))
	return append(out, payload...), nil
}

func (f *StringField) Deserialize(buf []byte) ([]byte, error) {
	if len(buf) < 1 {
		return nil, errors.Wrap(ErrShortBuffer, "missing string header")
	}
	enc := Encoding(buf[0] >> 6)
	n := int(buf[0] & maxPayload)
	if len(buf)-1 < n {
		return nil, errors.Wrapf(ErrShortBuffer, "%s payload needs %d bytes, have %d", enc, n, len(buf)-1)
	}
	payload := buf[1 : 1+n]

	var (
		s   string
		err error
	)
	switch enc {
	case BCDPlus:
		s, err = decodeBCDPlus(payload)
	case ASCII6Bit:
		s, err = decode6Bit(payload)
	default:
		if !utf8.Valid(payload) {
			return nil, errors.Wrapf(ErrTextCodec, "%s payload % x", enc, payload)
		}
		s = string(payload)
	}
	if err != nil {
		return nil, err
	}
	f.encoding = enc
	f.value = s
	return buf[1+n:], nil
}

func (f *StringField) Clone() Field {
	c := *f
	return &c
}

func (f *StringField) String() string {
	return "str(" + f.encoding.String() + ")"
}

func encodeBCDPlus(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		s += " "
	}
	out := make([]byte, 0, len(s)/2)
	var hi byte
	for i, r := range s {
		code, ok := bcdPlusCodes[r]
		if !ok {
			return nil, errors.Wrapf(ErrEncodingLookup, "character %q not representable in bcd_plus", r)
		}
		if i%2 == 0 {
			hi = code
			continue
		}
		out = append(out, hi<<4|code)
	}
	return out, nil
}

func decodeBCDPlus(payload []byte) (string, error) {
	var b strings.Builder
	for _, v := range payload {
		for _, code := range [2]byte{v >> 4, v & 0x0f} {
			if int(code) >= len(bcdPlusChars) {
				return "", errors.Wrapf(ErrEncodingLookup, "bcd_plus code %#x", code)
			}
			b.WriteByte(bcdPlusChars[code])
		}
	}
	return b.String(), nil
}

// encode6Bit packs each chunk of four characters c0..c3 into the 24-bit
// value c0 | c1<<6 | c2<<12 | c3<<18, written little-endian.
func encode6Bit(s string) ([]byte, error) {
	s = strings.ToUpper(s)
	for len(s)%4 != 0 {
		s += " "
	}
	out := make([]byte, 0, len(s)/4*3)
	for i := 0; i < len(s); i += 4 {
		var acc uint32
		for j := 0; j < 4; j++ {
			c := s[i+j]
			if c < 0x20 || c > 0x5f {
				return nil, errors.Wrapf(ErrEncodingLookup, "character %q not representable in ascii_6bit", c)
			}
			acc |= uint32(c-0x20) << (6 * uint(j))
		}
		out = append(out, byte(acc), byte(acc>>8), byte(acc>>16))
	}
	return out, nil
}

func decode6Bit(payload []byte) (string, error) {
	if len(payload)%3 != 0 {
		return "", errors.Wrapf(ErrTextCodec, "ascii_6bit payload of %d bytes is not a multiple of 3", len(payload))
	}
	out := make([]byte, 0, len(payload)/3*4)
	for i := 0; i < len(payload); i += 3 {
		acc := uint32(payload[i]) | uint32(payload[i+1])<<8 | uint32(payload[i+2])<<16
		for j := 0; j < 4; j++ {
			out = append(out, byte(acc>>(6*uint(j))&0x3f)+0x20)
		}
	}
	return string(out), nil
}
