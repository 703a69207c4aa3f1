package fru

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Value is the content of a field. It is one of Scalar, Tuple or Text.
type Value interface {
	fmt.Stringer
	isValue()
}

// Scalar is the value of a single-group bit field.
type Scalar uint64

// Tuple is the value of a multi-group bit field, one element per group.
type Tuple []uint64

// Text is the value of a string field.
type Text string

func (Scalar) isValue() {}
func (Tuple) isValue()  {}
func (Text) isValue()   {}

func (s Scalar) String() string { return fmt.Sprintf("%d", uint64(s)) }
func (t Text) String() string   { return fmt.Sprintf("%q", string(t)) }

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (t Tuple) clone() Tuple {
	return append(Tuple(nil), t...)
}

// ValueOf converts an external representation into a Value. Integers become
// a Scalar, lists of integers a Tuple and strings Text.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Scalar:
		return x, nil
	case Tuple:
		return x.clone(), nil
	case Text:
		return x, nil
	case string:
		return Text(x), nil
	case []uint64:
		return Tuple(x).clone(), nil
	case []int:
		t := make(Tuple, len(x))
		for i, e := range x {
			u, err := toUint(e)
			if err != nil {
				return nil, err
			}
			t[i] = u
		}
		return t, nil
	case []any:
		t := make(Tuple, len(x))
		for i, e := range x {
			u, err := toUint(e)
			if err != nil {
				return nil, err
			}
			t[i] = u
		}
		return t, nil
	default:
		u, err := toUint(v)
		if err != nil {
			return nil, err
		}
		return Scalar(u), nil
	}
}

// Native converts a Value into its external representation: uint64 for a
// Scalar, []uint64 for a Tuple and string for Text.
func Native(v Value) any {
	switch x := v.(type) {
	case Scalar:
		return uint64(x)
	case Tuple:
		return []uint64(x.clone())
	case Text:
		return string(x)
	default:
		return nil
	}
}

func toUint(v any) (uint64, error) {
	switch x := v.(type) {
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case int:
		return fromSigned(int64(x))
	case int64:
		return fromSigned(x)
	case int32:
		return fromSigned(int64(x))
	case int16:
		return fromSigned(int64(x))
	case int8:
		return fromSigned(int64(x))
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= 1<<64 {
			return 0, errors.Wrapf(ErrValueRange, "%v is not a non-negative integer", x)
		}
		return uint64(x), nil
	default:
		return 0, errors.Wrapf(ErrValueShape, "unsupported value %v (%T)", v, v)
	}
}

func fromSigned(n int64) (uint64, error) {
	if n < 0 {
		return 0, errors.Wrapf(ErrValueRange, "negative value %d", n)
	}
	return uint64(n), nil
}
