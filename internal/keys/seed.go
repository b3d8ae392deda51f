// seed.go - Root secrets and the label-to-seed expansion rule.
//
// Test identities are named ("Alice", "Bob", ...). A name becomes a seed by
// right-padding it with ASCII spaces to SeedSize bytes, truncating longer
// names. The rule is part of the interface: different padding yields a
// different address.

package keys

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"zerochain/internal/jubjub"
)

// SeedSize is the length of a seed in bytes.
const SeedSize = 32

// seedPad fills the tail of a short label.
const seedPad = ' '

// expandPersonalization domain-separates PRF-expand from other BLAKE2b uses.
const expandPersonalization = "Zerochain_Expand"

var (
	// ErrInvalidSeedLength is returned when a seed is not exactly SeedSize bytes.
	ErrInvalidSeedLength = errors.New("keys: invalid seed length")
	// ErrUnknownScheme is returned when a scheme name is not recognised.
	ErrUnknownScheme = errors.New("keys: unknown key scheme")
)

// Seed is the root secret of one identity. It never leaves the holder.
type Seed [SeedSize]byte

// SeedFromBytes copies b into a Seed. b must be exactly SeedSize bytes.
func SeedFromBytes(b []byte) (Seed, error) {
	var s Seed
	if len(b) != SeedSize {
		return s, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSeedLength, len(b), SeedSize)
	}
	copy(s[:], b)
	return s, nil
}

// SeedFromName expands a human-readable label into a seed by padding it
// with spaces (or truncating it) to SeedSize bytes.
func SeedFromName(name string) Seed {
	var s Seed
	for i := range s {
		s[i] = seedPad
	}
	copy(s[:], name)
	return s
}

// prfExpand derives a uniform scalar from key material and a one-byte
// domain tag.
func prfExpand(key []byte, t byte) jubjub.Scalar {
	h, _ := blake2b.New512(nil)
	h.Write([]byte(expandPersonalization))
	h.Write(key)
	h.Write([]byte{t})
	var wide [jubjub.UniformSize]byte
	copy(wide[:], h.Sum(nil))
	return jubjub.ScalarFromUniform(wide)
}
