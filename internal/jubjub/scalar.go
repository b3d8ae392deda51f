// scalar.go - Scalars modulo the Jubjub prime subgroup order.

package jubjub

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
)

// ScalarSize is the length of a serialized scalar.
const ScalarSize = 32

// UniformSize is the input length ScalarFromUniform expects.
const UniformSize = 64

// order is the prime subgroup order. It is a curve constant, not state.
var order = func() *big.Int {
	params := twistededwards.GetEdwardsCurve()
	return new(big.Int).Set(&params.Order)
}()

// Order returns a copy of the prime subgroup order.
func Order() *big.Int {
	return new(big.Int).Set(order)
}

// Scalar is an integer modulo the prime subgroup order.
// The zero value is the scalar 0.
type Scalar struct {
	v big.Int
}

// NewScalar reduces x modulo the subgroup order.
func NewScalar(x *big.Int) Scalar {
	var s Scalar
	s.v.Mod(x, order)
	return s
}

// ScalarFromUint64 returns x as a scalar.
func ScalarFromUint64(x uint64) Scalar {
	return NewScalar(new(big.Int).SetUint64(x))
}

// ScalarOne returns the multiplicative identity.
func ScalarOne() Scalar {
	return ScalarFromUint64(1)
}

// ScalarFromUniform maps 64 little-endian bytes onto the scalar field.
// The input is wide enough that the reduction bias is negligible.
func ScalarFromUniform(b [UniformSize]byte) Scalar {
	return NewScalar(new(big.Int).SetBytes(reversed(b[:])))
}

// ScalarFromBytes decodes a 32-byte little-endian scalar. Non-canonical
// encodings (values >= order) are rejected.
func ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != ScalarSize {
		return Scalar{}, ErrInvalidScalar
	}
	x := new(big.Int).SetBytes(reversed(b))
	if x.Cmp(order) >= 0 {
		return Scalar{}, ErrInvalidScalar
	}
	var s Scalar
	s.v.Set(x)
	return s, nil
}

// Bytes returns the canonical 32-byte little-endian encoding.
func (s Scalar) Bytes() [ScalarSize]byte {
	var out [ScalarSize]byte
	s.v.FillBytes(out[:])
	copy(out[:], reversed(out[:]))
	return out
}

// BigInt returns a copy of the scalar as a big.Int in [0, order).
func (s Scalar) BigInt() *big.Int {
	return new(big.Int).Set(&s.v)
}

// IsZero reports whether s is 0.
func (s Scalar) IsZero() bool {
	return s.v.Sign() == 0
}

// Equal reports whether s and o are the same scalar.
func (s Scalar) Equal(o Scalar) bool {
	return s.v.Cmp(&o.v) == 0
}

// Add returns s + o.
func (s Scalar) Add(o Scalar) Scalar {
	return NewScalar(new(big.Int).Add(&s.v, &o.v))
}

// Sub returns s - o.
func (s Scalar) Sub(o Scalar) Scalar {
	return NewScalar(new(big.Int).Sub(&s.v, &o.v))
}

// Mul returns s * o.
func (s Scalar) Mul(o Scalar) Scalar {
	return NewScalar(new(big.Int).Mul(&s.v, &o.v))
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	return NewScalar(new(big.Int).Neg(&s.v))
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
