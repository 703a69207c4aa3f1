package fru

// Field is one self-delimiting element of an area.
type Field interface {
	// Size returns the number of bytes Serialize produces.
	Size() int
	// Serialize returns the wire form of the current value.
	Serialize() ([]byte, error)
	// Deserialize consumes a prefix of buf, stores the decoded value and
	// returns the rest of buf.
	Deserialize(buf []byte) ([]byte, error)
	Value() Value
	SetValue(v Value) error
	// Clone returns an independent copy holding the same value.
	Clone() Field
	// String describes the layout, e.g. "u4u4" or "str(ascii_8bit)".
	String() string
}
