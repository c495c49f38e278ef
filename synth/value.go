// Package synth reinterprets random bytes as integer values.
//
// A Value holds the raw bits of one slot; signed types are read as two's
// complement. Every bit pattern is a legal result, including zero.
package synth

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/typespec"
)

// Value is one synthesized integer.
type Value struct {
	Type typespec.TypeSpec
	bits uint256.Int
}

// Synthesize decodes buf, which must hold exactly t.Width bytes, in the given
// byte order.
func Synthesize(t typespec.TypeSpec, buf []byte, order binary.ByteOrder) (Value, error) {
	if len(buf) != t.Width {
		return Value{}, errors.AssertionFailedf("%s needs %d bytes, got %d", t.Name, t.Width, len(buf))
	}

	be := make([]byte, len(buf))
	copy(be, buf)
	if isLittleEndian(order) {
		for i, j := 0, len(be)-1; i < j; i, j = i+1, j-1 {
			be[i], be[j] = be[j], be[i]
		}
	}

	v := Value{Type: t}
	v.bits.SetBytes(be)
	return v, nil
}

func isLittleEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{1, 0}) == 1
}

// Bits returns a copy of the raw, unsigned bit pattern.
func (v Value) Bits() *uint256.Int {
	return new(uint256.Int).Set(&v.bits)
}

// Negative reports whether the sign bit is set on a signed type.
func (v Value) Negative() bool {
	if !v.Type.Signed {
		return false
	}
	top := new(uint256.Int).Rsh(&v.bits, uint(v.Type.Bits()-1))
	return !top.IsZero()
}

// Big returns the numeric value, negative for signed types with the sign bit set.
func (v Value) Big() *big.Int {
	n := v.bits.ToBig()
	if v.Negative() {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(v.Type.Bits()))
		n.Sub(n, mod)
	}
	return n
}

// Text renders the numeric value in the given base, with a leading '-'
// for negative values and no prefix.
func (v Value) Text(base int) string {
	return v.Big().Text(base)
}

// Uint64 returns the value of an unsigned type up to 64 bits.
func (v Value) Uint64() (uint64, bool) {
	if v.Type.Signed || v.Type.Width > 8 {
		return 0, false
	}
	return v.bits.Uint64(), true
}

// Int64 returns the value of a signed type up to 64 bits.
func (v Value) Int64() (int64, bool) {
	if !v.Type.Signed || v.Type.Width > 8 {
		return 0, false
	}
	n := v.Big()
	return n.Int64(), n.IsInt64()
}
