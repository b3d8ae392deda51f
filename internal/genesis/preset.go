// preset.go - Named chain presets and their endowed accounts.

package genesis

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultEndowment is the starting balance of preset accounts.
const DefaultEndowment uint32 = 100

// ErrUnknownChain is returned for preset names that do not exist.
var ErrUnknownChain = errors.New("genesis: unknown chain preset")

// EndowedNames are the well-known development identities, in order.
var EndowedNames = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Ferdie"}

// Account is a named seed and its starting balance.
type Account struct {
	Name    string `json:"name"`
	Balance uint32 `json:"balance"`
}

// Preset describes a chain and the accounts endowed at genesis.
type Preset struct {
	Name     string
	ID       string
	Accounts []Account
}

// LookupPreset resolves "dev", "local" or "" (local).
func LookupPreset(id string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "dev":
		return Preset{
			Name:     "Development",
			ID:       "dev",
			Accounts: EndowedAccounts(DefaultEndowment, "Alice"),
		}, nil
	case "", "local":
		return Preset{
			Name:     "Local Testnet",
			ID:       "local_testnet",
			Accounts: EndowedAccounts(DefaultEndowment, "Alice", "Bob"),
		}, nil
	default:
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownChain, id)
	}
}

// EndowedAccounts gives each name the same balance. With no names it
// endows every entry of EndowedNames.
func EndowedAccounts(balance uint32, names ...string) []Account {
	if len(names) == 0 {
		names = EndowedNames
	}
	out := make([]Account, len(names))
	for i, n := range names {
		out[i] = Account{Name: n, Balance: balance}
	}
	return out
}
