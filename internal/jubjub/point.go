// point.go - Jubjub points, canonical encoding and subgroup validation.

package jubjub

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
)

// PointSize is the length of a compressed point.
const PointSize = 32

var (
	// ErrPointNotOnCurve is returned when coordinates do not satisfy the curve equation
	// or a compressed encoding has no valid decompression.
	ErrPointNotOnCurve = errors.New("jubjub: point not on curve")
	// ErrSubgroupCheckFailed is returned for the identity or points outside the prime-order subgroup.
	ErrSubgroupCheckFailed = errors.New("jubjub: point not in prime-order subgroup")
	// ErrInvalidScalar is returned for malformed or non-canonical scalar encodings.
	ErrInvalidScalar = errors.New("jubjub: invalid scalar encoding")
)

// Point is an affine Jubjub point. The zero value is not a valid point; use
// Identity() for the neutral element.
type Point struct {
	p twistededwards.PointAffine
}

// Identity returns the neutral element (0, 1).
func Identity() Point {
	var q Point
	q.p.X.SetZero()
	q.p.Y.SetOne()
	return q
}

// PointFromBytes decodes a compressed point and validates it. The identity
// is rejected.
func PointFromBytes(b []byte) (Point, error) {
	q, err := SubgroupPointFromBytes(b)
	if err != nil {
		return Point{}, err
	}
	if q.IsIdentity() {
		return Point{}, fmt.Errorf("%w: identity", ErrSubgroupCheckFailed)
	}
	return q, nil
}

// SubgroupPointFromBytes decodes a compressed point that must lie in the
// prime-order subgroup. Unlike PointFromBytes it accepts the identity, which
// legitimately appears in ciphertext arithmetic.
func SubgroupPointFromBytes(b []byte) (Point, error) {
	if len(b) != PointSize {
		return Point{}, fmt.Errorf("%w: encoding is %d bytes, want %d", ErrPointNotOnCurve, len(b), PointSize)
	}
	var q Point
	if _, err := q.p.SetBytes(b); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrPointNotOnCurve, err)
	}
	if err := q.checkSubgroup(); err != nil {
		return Point{}, err
	}
	return q, nil
}

// decompress decodes without the subgroup check. Used by the group hash,
// which clears the cofactor afterwards.
func decompress(b []byte) (Point, bool) {
	var q Point
	if _, err := q.p.SetBytes(b); err != nil {
		return Point{}, false
	}
	return q, q.p.IsOnCurve()
}

// Validate checks that p is on the curve, is not the identity and lies in
// the prime-order subgroup.
func (p Point) Validate() error {
	if err := p.checkSubgroup(); err != nil {
		return err
	}
	if p.IsIdentity() {
		return fmt.Errorf("%w: identity", ErrSubgroupCheckFailed)
	}
	return nil
}

func (p Point) checkSubgroup() error {
	if !p.p.IsOnCurve() {
		return ErrPointNotOnCurve
	}
	var q twistededwards.PointAffine
	q.ScalarMultiplication(&p.p, order)
	if !(q.X.IsZero() && q.Y.IsOne()) {
		return ErrSubgroupCheckFailed
	}
	return nil
}

// IsIdentity reports whether p is the neutral element.
func (p Point) IsIdentity() bool {
	return p.p.X.IsZero() && p.p.Y.IsOne()
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	return p.p.Equal(&q.p)
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	var r Point
	r.p.Add(&p.p, &q.p)
	return r
}

// Neg returns -p.
func (p Point) Neg() Point {
	var r Point
	r.p.Neg(&p.p)
	return r
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return p.Add(q.Neg())
}

// Mul returns s·p.
func (p Point) Mul(s Scalar) Point {
	var r Point
	r.p.ScalarMultiplication(&p.p, &s.v)
	return r
}

// MulUint64 returns k·p.
func (p Point) MulUint64(k uint64) Point {
	var r Point
	r.p.ScalarMultiplication(&p.p, new(big.Int).SetUint64(k))
	return r
}

// Bytes returns the canonical compressed encoding.
func (p Point) Bytes() [PointSize]byte {
	return p.p.Bytes()
}

// Coordinates returns the affine coordinates as integers of the BLS12-381
// scalar field, the form circuits consume.
func (p Point) Coordinates() (x, y *big.Int) {
	return p.p.X.BigInt(new(big.Int)), p.p.Y.BigInt(new(big.Int))
}

// String returns the hex encoding of the compressed point.
func (p Point) String() string {
	b := p.Bytes()
	return hex.EncodeToString(b[:])
}
