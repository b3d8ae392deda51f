// state.go - Merkle commitment over the genesis balance entries.
//
// Leaves are the serialized entries in input order followed by one leaf
// holding the verifying key digest. Each leaf carries a one-byte kind prefix
// so an entry can never collide with the key leaf.

package genesis

import (
	"encoding/hex"
	"errors"
	"fmt"

	mt "github.com/txaty/go-merkletree"
	"golang.org/x/crypto/blake2b"

	"zerochain/internal/elgamal"
	"zerochain/internal/keys"
	"zerochain/internal/vk"
)

// StateRootSize is the length of a state root.
const StateRootSize = blake2b.Size256

const (
	leafEntry        byte = 0x00
	leafVerifyingKey byte = 0x01
)

// ErrStateRootMismatch is returned when recomputed state does not match a
// recorded root.
var ErrStateRootMismatch = errors.New("genesis: state root mismatch")

// Entry is one encrypted genesis balance.
type Entry struct {
	Address    keys.PkdAddress    `json:"address"`
	Ciphertext elgamal.Ciphertext `json:"ciphertext"`
}

// Serialize implements mt.DataBlock.
func (e Entry) Serialize() ([]byte, error) {
	ct := e.Ciphertext.Bytes()
	out := make([]byte, 0, 1+keys.PkdAddressSize+elgamal.CiphertextSize)
	out = append(out, leafEntry)
	out = append(out, e.Address[:]...)
	out = append(out, ct[:]...)
	return out, nil
}

type keyLeaf [vk.DigestSize]byte

func (k keyLeaf) Serialize() ([]byte, error) {
	return append([]byte{leafVerifyingKey}, k[:]...), nil
}

// StateRoot commits to the entries and verifying key of a genesis.
type StateRoot [StateRootSize]byte

func (r StateRoot) String() string {
	return hex.EncodeToString(r[:])
}

// MarshalText encodes the root as hex.
func (r StateRoot) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a hex root.
func (r *StateRoot) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("genesis: invalid state root: %w", err)
	}
	if len(b) != StateRootSize {
		return fmt.Errorf("genesis: state root is %d bytes, want %d", len(b), StateRootSize)
	}
	copy(r[:], b)
	return nil
}

// InclusionProof shows one entry is committed to by a state root.
type InclusionProof struct {
	Siblings [][]byte `json:"siblings"`
	Path     uint32   `json:"path"`
}

func merkleConfig() *mt.Config {
	return &mt.Config{
		HashFunc: blake2bHash,
		Mode:     mt.ModeTreeBuild,
	}
}

func blake2bHash(data []byte) ([]byte, error) {
	h := blake2b.Sum256(data)
	return h[:], nil
}

func buildTree(entries []Entry, key vk.PreparedVerifyingKey) (*mt.MerkleTree, error) {
	if len(entries) == 0 {
		return nil, ErrNoAccounts
	}
	blocks := make([]mt.DataBlock, 0, len(entries)+1)
	for _, e := range entries {
		blocks = append(blocks, e)
	}
	blocks = append(blocks, keyLeaf(key.Digest()))
	tree, err := mt.New(merkleConfig(), blocks)
	if err != nil {
		return nil, fmt.Errorf("genesis: merkle tree: %w", err)
	}
	return tree, nil
}

// ComputeStateRoot returns the root over entries and key.
func ComputeStateRoot(entries []Entry, key vk.PreparedVerifyingKey) (StateRoot, error) {
	tree, err := buildTree(entries, key)
	if err != nil {
		return StateRoot{}, err
	}
	var root StateRoot
	copy(root[:], tree.Root)
	return root, nil
}

// ProveEntry returns an inclusion proof for Entries[i].
func (g *Genesis) ProveEntry(i int) (*InclusionProof, error) {
	if i < 0 || i >= len(g.Entries) {
		return nil, fmt.Errorf("genesis: entry %d out of range", i)
	}
	tree, err := buildTree(g.Entries, g.VerifyingKey)
	if err != nil {
		return nil, err
	}
	p, err := tree.Proof(g.Entries[i])
	if err != nil {
		return nil, fmt.Errorf("genesis: proof for entry %d: %w", i, err)
	}
	return &InclusionProof{Siblings: p.Siblings, Path: p.Path}, nil
}

// VerifyEntry reports whether p proves e under root.
func VerifyEntry(root StateRoot, e Entry, p *InclusionProof) (bool, error) {
	if p == nil {
		return false, errors.New("genesis: nil inclusion proof")
	}
	return mt.Verify(e, &mt.Proof{Siblings: p.Siblings, Path: p.Path}, root[:], merkleConfig())
}
