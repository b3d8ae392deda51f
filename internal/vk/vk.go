// vk.go - Prepared verifying key blobs.
//
// The blob is opaque here: it is loaded, hashed and packaged, never parsed.
// Structural checks belong to whatever verifies proofs against it.

package vk

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length of Digest's output.
const DigestSize = blake2b.Size256

var (
	// ErrFileNotFound is returned when the verifying key file does not exist.
	ErrFileNotFound = errors.New("vk: verifying key file not found")
	// ErrIO is returned for any other failure reading the verifying key file.
	ErrIO = errors.New("vk: verifying key read failed")
)

// embedded is the fixed development and test vector.
var embedded = [...]byte{0x01}

// PreparedVerifyingKey is an uninterpreted verifying key blob.
type PreparedVerifyingKey []byte

// LoadEmbedded returns a copy of the built-in development key.
func LoadEmbedded() PreparedVerifyingKey {
	out := make(PreparedVerifyingKey, len(embedded))
	copy(out, embedded[:])
	return out
}

// LoadFromPath reads the whole file at path. The bytes are returned unchanged.
func LoadFromPath(path string) (PreparedVerifyingKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}
	return PreparedVerifyingKey(b), nil
}

// Digest returns the BLAKE2b-256 hash of the blob.
func (k PreparedVerifyingKey) Digest() [DigestSize]byte {
	return blake2b.Sum256(k)
}

// Equal reports whether both blobs hold the same bytes.
func (k PreparedVerifyingKey) Equal(o PreparedVerifyingKey) bool {
	return bytes.Equal(k, o)
}

func (k PreparedVerifyingKey) String() string {
	d := k.Digest()
	return fmt.Sprintf("vk(%d bytes, blake2b:%s)", len(k), hex.EncodeToString(d[:8]))
}

// MarshalText encodes the blob as hex.
func (k PreparedVerifyingKey) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(k)), nil
}

// UnmarshalText decodes a hex blob.
func (k *PreparedVerifyingKey) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("vk: invalid hex: %w", err)
	}
	*k = b
	return nil
}

// Source produces the verifying key for a genesis build.
type Source func() (PreparedVerifyingKey, error)

// Embedded is the Source for the built-in development key.
func Embedded() (PreparedVerifyingKey, error) {
	return LoadEmbedded(), nil
}

// SourceFor returns Embedded for an empty path and a file loader otherwise.
func SourceFor(path string) Source {
	if path == "" {
		return Embedded
	}
	return func() (PreparedVerifyingKey, error) {
		return LoadFromPath(path)
	}
}
