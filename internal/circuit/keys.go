// keys.go - Groth16 key generation, persistence, proving and verification.

package circuit

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"zerochain/internal/vk"
)

var (
	// ErrInvalidVerifyingKey is returned when a blob does not parse as a
	// verifying key for Curve.
	ErrInvalidVerifyingKey = errors.New("circuit: invalid verifying key")
	// ErrProofRejected is returned when a proof does not verify.
	ErrProofRejected = errors.New("circuit: proof rejected")
)

// Setup runs the Groth16 setup for ccs.
func Setup(ccs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	return groth16.Setup(ccs)
}

// SaveProvingKey saves a Groth16 proving key to disk.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

// SaveVerifyingKey saves a Groth16 verifying key to disk. The file is a
// valid PreparedVerifyingKey blob.
func SaveVerifyingKey(path string, key groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = key.WriteTo(f)
	return err
}

// LoadProvingKey loads a Groth16 proving key from disk.
func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(Curve)
	_, err = pk.ReadFrom(f)
	return pk, err
}

// SetupOrLoadKeys loads the key pair if both files exist and parse, and
// otherwise runs Setup and writes both files.
func SetupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, pkErr := LoadProvingKey(pkPath)
	blob, vkErr := vk.LoadFromPath(vkPath)
	if pkErr == nil && vkErr == nil {
		key, err := ParseVerifyingKey(blob)
		if err == nil {
			return pk, key, nil
		}
	}
	pk, key, err := Setup(ccs)
	if err != nil {
		return nil, nil, err
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, key); err != nil {
		return nil, nil, err
	}
	return pk, key, nil
}

// MarshalVerifyingKey serializes key into a PreparedVerifyingKey blob.
func MarshalVerifyingKey(key groth16.VerifyingKey) (vk.PreparedVerifyingKey, error) {
	var buf bytes.Buffer
	if _, err := key.WriteTo(&buf); err != nil {
		return nil, err
	}
	return vk.PreparedVerifyingKey(buf.Bytes()), nil
}

// ParseVerifyingKey reads a blob produced by SaveVerifyingKey or
// MarshalVerifyingKey.
func ParseVerifyingKey(blob vk.PreparedVerifyingKey) (groth16.VerifyingKey, error) {
	key := groth16.NewVerifyingKey(Curve)
	if _, err := key.ReadFrom(bytes.NewReader(blob)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVerifyingKey, err)
	}
	return key, nil
}

// Prove proves assignment against ccs.
func Prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, assignment *BalanceCircuit) (groth16.Proof, error) {
	w, err := frontend.NewWitness(assignment, Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("circuit: witness: %w", err)
	}
	return groth16.Prove(ccs, pk, w)
}

// Verify checks proof against the public part of public.
func Verify(proof groth16.Proof, key groth16.VerifyingKey, public *BalanceCircuit) error {
	w, err := frontend.NewWitness(public, Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("circuit: public witness: %w", err)
	}
	if err := groth16.Verify(proof, key, w); err != nil {
		return fmt.Errorf("%w: %v", ErrProofRejected, err)
	}
	return nil
}
