package fru

import (
	"fmt"

	"github.com/pkg/errors"
)

// Layout errors are raised while a field or schema is being declared.
var (
	ErrBitAlignment = errors.New("fru: bit field not aligned to bytes")
	ErrBitLayout    = errors.New("fru: invalid bit field layout")
	ErrSchema       = errors.New("fru: invalid schema")
)

// Value errors are raised by setters and serializers.
var (
	ErrValueRange     = errors.New("fru: value out of range")
	ErrValueShape     = errors.New("fru: value does not match field shape")
	ErrFieldAlignment = errors.New("fru: area length not 64-bit aligned")
	ErrUnknownField   = errors.New("fru: unknown field")
)

// Codec errors are raised while bytes are produced or consumed.
var (
	ErrEncodingLookup    = errors.New("fru: string cannot be encoded")
	ErrTextCodec         = errors.New("fru: payload is not valid text")
	ErrShortBuffer       = errors.New("fru: buffer too short")
	ErrChecksumOrPadding = errors.New("fru: padding or checksum verify error")
)

// ChecksumError reports an epilogue that does not match the payload it
// follows. It matches ErrChecksumOrPadding.
type ChecksumError struct {
	Expected []byte
	Received []byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%v (expected % x, received % x)", ErrChecksumOrPadding, e.Expected, e.Received)
}

// Is makes errors.Is(err, ErrChecksumOrPadding) hold.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumOrPadding
}
