// chainspec.go - JSON genesis configuration handed to the runtime.
//
// ChainSpec is the reference Builder: it stores the encrypted balances and
// the verifying key exactly as received and records the state root over
// them. It is persisted as a single indented JSON file.

package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"zerochain/internal/vk"
)

// ChainSpec is the genesis configuration of one chain.
type ChainSpec struct {
	Name              string                  `json:"name"`
	ID                string                  `json:"id"`
	Scheme            string                  `json:"scheme,omitempty"`
	RandomnessPolicy  string                  `json:"randomness_policy,omitempty"`
	EncryptedBalances []Entry                 `json:"encrypted_balances"`
	VerifyingKey      vk.PreparedVerifyingKey `json:"verifying_key"`
	StateRoot         StateRoot               `json:"state_root"`
}

// NewChainSpec returns an empty spec for preset p.
func NewChainSpec(p Preset) *ChainSpec {
	return &ChainSpec{
		Name:              p.Name,
		ID:                p.ID,
		EncryptedBalances: make([]Entry, 0),
	}
}

// BuildGenesis implements Builder.
func (c *ChainSpec) BuildGenesis(entries []Entry, key vk.PreparedVerifyingKey) error {
	root, err := ComputeStateRoot(entries, key)
	if err != nil {
		return err
	}
	c.EncryptedBalances = append(make([]Entry, 0, len(entries)), entries...)
	c.VerifyingKey = append(vk.PreparedVerifyingKey(nil), key...)
	c.StateRoot = root
	return nil
}

// Verify recomputes the state root and compares it with the recorded one.
func (c *ChainSpec) Verify() error {
	root, err := ComputeStateRoot(c.EncryptedBalances, c.VerifyingKey)
	if err != nil {
		return err
	}
	if root != c.StateRoot {
		return fmt.Errorf("%w: recorded %s, computed %s", ErrStateRootMismatch, c.StateRoot, root)
	}
	return nil
}

// Genesis returns the chain spec's contents as a Genesis.
func (c *ChainSpec) Genesis() *Genesis {
	return &Genesis{
		Entries:      c.EncryptedBalances,
		VerifyingKey: c.VerifyingKey,
		StateRoot:    c.StateRoot,
	}
}

// SaveToFile writes the chain spec as indented JSON, overwriting path.
func (c *ChainSpec) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// LoadChainSpecFromFile reads a spec written by SaveToFile. Addresses and
// ciphertexts are validated while decoding.
func LoadChainSpecFromFile(path string) (*ChainSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var c ChainSpec
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("genesis: decode %s: %w", path, err)
	}
	return &c, nil
}
