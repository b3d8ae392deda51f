// randomness.go - Per-encryption randomness and the policy that selects it.
//
// RandomnessSecure draws 32 bytes from a secure source and extends them to
// a uniform scalar. RandomnessFixedForTesting always uses the scalar one:
// equal balances under the same key then encrypt to identical ciphertexts.
// That mode exists only for reproducible genesis fixtures and must never be
// used for user-initiated transfers.

package elgamal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"

	"zerochain/internal/jubjub"
)

// RandomSeedSize is the number of bytes read per encryption.
const RandomSeedSize = 32

const extendPersonalization = "Zerochain_ElGamalExt"

var (
	// ErrRandomSourceUnavailable is returned when secure randomness cannot be
	// obtained. It is never replaced by a weaker source.
	ErrRandomSourceUnavailable = errors.New("elgamal: secure random source unavailable")
	// ErrUnknownRandomnessPolicy is returned for unrecognised policy names.
	ErrUnknownRandomnessPolicy = errors.New("elgamal: unknown randomness policy")
)

// RandomnessPolicy selects how encryption randomness is produced.
type RandomnessPolicy int

const (
	// RandomnessSecure samples fresh randomness per encryption.
	RandomnessSecure RandomnessPolicy = iota
	// RandomnessFixedForTesting uses the scalar one. Genesis fixtures only.
	RandomnessFixedForTesting
)

// ParseRandomnessPolicy maps "secure" or "fixed-for-testing" to a policy.
func ParseRandomnessPolicy(s string) (RandomnessPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "secure":
		return RandomnessSecure, nil
	case "fixed-for-testing", "fixed":
		return RandomnessFixedForTesting, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRandomnessPolicy, s)
	}
}

func (p RandomnessPolicy) String() string {
	switch p {
	case RandomnessSecure:
		return "secure"
	case RandomnessFixedForTesting:
		return "fixed-for-testing"
	default:
		return fmt.Sprintf("RandomnessPolicy(%d)", int(p))
	}
}

// RandomSource hands out a reader for exactly one encryption. The reader is
// owned by that call and released when it returns.
type RandomSource func() (io.Reader, error)

// SystemRandom returns the operating system's secure random source.
func SystemRandom() (io.Reader, error) {
	return rand.Reader, nil
}

// Sample produces randomness for one encryption. Under RandomnessSecure it
// acquires a reader from src (SystemRandom if nil).
func (p RandomnessPolicy) Sample(src RandomSource) (jubjub.Scalar, error) {
	switch p {
	case RandomnessFixedForTesting:
		return jubjub.ScalarOne(), nil
	case RandomnessSecure:
		if src == nil {
			src = SystemRandom
		}
		r, err := src()
		if err != nil {
			return jubjub.Scalar{}, fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
		}
		var seed [RandomSeedSize]byte
		if _, err := io.ReadFull(r, seed[:]); err != nil {
			return jubjub.Scalar{}, fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
		}
		if seed == [RandomSeedSize]byte{} {
			return jubjub.Scalar{}, fmt.Errorf("%w: source returned only zero bytes", ErrRandomSourceUnavailable)
		}
		s := Extend(seed)
		if s.IsZero() {
			return jubjub.Scalar{}, fmt.Errorf("%w: sampled zero scalar", ErrRandomSourceUnavailable)
		}
		return s, nil
	default:
		return jubjub.Scalar{}, fmt.Errorf("%w: %v", ErrUnknownRandomnessPolicy, p)
	}
}

// Extend maps 32 random bytes onto the scalar field through BLAKE2b-512.
func Extend(seed [RandomSeedSize]byte) jubjub.Scalar {
	h, _ := blake2b.New512(nil)
	h.Write([]byte(extendPersonalization))
	h.Write(seed[:])
	var wide [jubjub.UniformSize]byte
	copy(wide[:], h.Sum(nil))
	return jubjub.ScalarFromUniform(wide)
}

// EncryptWithPolicy samples randomness under policy and encrypts.
func EncryptWithPolicy(balance uint32, policy RandomnessPolicy, src RandomSource, recipient jubjub.Point, g jubjub.ElGamalGenerator) (Ciphertext, jubjub.Scalar, error) {
	r, err := policy.Sample(src)
	if err != nil {
		return Ciphertext{}, jubjub.Scalar{}, err
	}
	return Encrypt(balance, r, recipient, g), r, nil
}
