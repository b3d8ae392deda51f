// ciphertext.go - Additively homomorphic ElGamal over Jubjub.
//
// A balance b encrypted to key PK with randomness r is
//
//	Left  = r·G
//	Right = b·G + r·PK
//
// where G is the ElGamal generator. Component-wise addition of two
// ciphertexts under the same key yields an encryption of the sum of the
// balances under the sum of the randomness.

package elgamal

import (
	"encoding/hex"
	"errors"
	"fmt"

	"zerochain/internal/jubjub"
)

// CiphertextSize is the length of a serialized ciphertext.
const CiphertextSize = 2 * jubjub.PointSize

var (
	// ErrDecryptionFailed is returned when a ciphertext does not decode to a
	// balance in [0, MaxBalance] under the given key.
	ErrDecryptionFailed = errors.New("elgamal: decryption failed")
	// ErrInvalidCiphertext is returned for malformed ciphertext encodings.
	ErrInvalidCiphertext = errors.New("elgamal: invalid ciphertext")
)

// Ciphertext is an encrypted balance.
type Ciphertext struct {
	Left  jubjub.Point
	Right jubjub.Point
}

// Encrypt encrypts balance to recipient under generator g with the given
// randomness. It has no side effects.
func Encrypt(balance uint32, randomness jubjub.Scalar, recipient jubjub.Point, g jubjub.ElGamalGenerator) Ciphertext {
	base := g.Point()
	return Ciphertext{
		Left:  base.Mul(randomness),
		Right: base.MulUint64(uint64(balance)).Add(recipient.Mul(randomness)),
	}
}

// Add returns the component-wise sum of c and o.
func (c Ciphertext) Add(o Ciphertext) Ciphertext {
	return Ciphertext{Left: c.Left.Add(o.Left), Right: c.Right.Add(o.Right)}
}

// Sub returns the component-wise difference of c and o.
func (c Ciphertext) Sub(o Ciphertext) Ciphertext {
	return Ciphertext{Left: c.Left.Sub(o.Left), Right: c.Right.Sub(o.Right)}
}

// Equal reports whether both components match.
func (c Ciphertext) Equal(o Ciphertext) bool {
	return c.Left.Equal(o.Left) && c.Right.Equal(o.Right)
}

// Bytes returns Left || Right in canonical compressed form.
func (c Ciphertext) Bytes() [CiphertextSize]byte {
	var out [CiphertextSize]byte
	l := c.Left.Bytes()
	r := c.Right.Bytes()
	copy(out[:jubjub.PointSize], l[:])
	copy(out[jubjub.PointSize:], r[:])
	return out
}

// CiphertextFromBytes decodes Left || Right. Both points must lie in the
// prime-order subgroup; the identity is allowed.
func CiphertextFromBytes(b []byte) (Ciphertext, error) {
	if len(b) != CiphertextSize {
		return Ciphertext{}, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidCiphertext, len(b), CiphertextSize)
	}
	left, err := jubjub.SubgroupPointFromBytes(b[:jubjub.PointSize])
	if err != nil {
		return Ciphertext{}, fmt.Errorf("%w: left: %w", ErrInvalidCiphertext, err)
	}
	right, err := jubjub.SubgroupPointFromBytes(b[jubjub.PointSize:])
	if err != nil {
		return Ciphertext{}, fmt.Errorf("%w: right: %w", ErrInvalidCiphertext, err)
	}
	return Ciphertext{Left: left, Right: right}, nil
}

func (c Ciphertext) String() string {
	b := c.Bytes()
	return hex.EncodeToString(b[:])
}

// MarshalText encodes the ciphertext as hex.
func (c Ciphertext) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a hex ciphertext.
func (c *Ciphertext) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	v, err := CiphertextFromBytes(b)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
