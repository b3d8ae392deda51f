package genesis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zerochain/internal/elgamal"
	"zerochain/internal/jubjub"
	"zerochain/internal/keys"
	"zerochain/internal/vk"
)

type countingRecorder struct {
	mu       sync.Mutex
	stages   map[string]int
	errors   map[string]int
	accounts int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{stages: map[string]int{}, errors: map[string]int{}}
}

func (r *countingRecorder) RecordStage(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage]++
}

func (r *countingRecorder) RecordError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[kind]++
}

func (r *countingRecorder) RecordAssembly(accounts int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts += accounts
}

func fixedAssembler(opts ...Option) *Assembler {
	return NewAssembler(append([]Option{WithRandomnessPolicy(elgamal.RandomnessFixedForTesting)}, opts...)...)
}

func decryptEntry(t *testing.T, scheme keys.Scheme, name string, e Entry) uint32 {
	t.Helper()
	params := jubjub.MustParams()
	k, err := scheme.Derive(params, keys.SeedFromName(name))
	require.NoError(t, err)
	require.Equal(t, k.Address.Pkd(), e.Address)
	b, err := elgamal.Decrypt(e.Ciphertext, k.ProofGeneration.Bdk, params.ElGamal())
	require.NoError(t, err)
	return b
}

func TestLookupPreset(t *testing.T) {
	dev, err := LookupPreset("dev")
	require.NoError(t, err)
	assert.Equal(t, "Development", dev.Name)
	assert.Equal(t, []Account{{Name: "Alice", Balance: 100}}, dev.Accounts)

	for _, id := range []string{"", "local"} {
		local, err := LookupPreset(id)
		require.NoError(t, err)
		assert.Equal(t, "Local Testnet", local.Name)
		assert.Equal(t, []Account{{"Alice", 100}, {"Bob", 100}}, local.Accounts)
	}

	_, err = LookupPreset("staging")
	assert.ErrorIs(t, err, ErrUnknownChain)

	assert.Len(t, EndowedAccounts(5), len(EndowedNames))
}

func TestAssembleDevelopment(t *testing.T) {
	dev, err := LookupPreset("dev")
	require.NoError(t, err)

	gen, err := fixedAssembler().Assemble(context.Background(), dev.Accounts)
	require.NoError(t, err)
	require.Len(t, gen.Entries, 1)
	assert.True(t, gen.VerifyingKey.Equal(vk.LoadEmbedded()))
	assert.Equal(t, uint32(100), decryptEntry(t, keys.SchemeExpanded, "Alice", gen.Entries[0]))
}

func TestAssemblePreservesOrder(t *testing.T) {
	var accounts []Account
	for i, name := range EndowedNames {
		accounts = append(accounts, Account{Name: name, Balance: uint32(1000 * (i + 1))})
	}
	for _, scheme := range []keys.Scheme{keys.SchemeExpanded, keys.SchemeDirect} {
		t.Run(scheme.String(), func(t *testing.T) {
			gen, err := fixedAssembler(WithScheme(scheme), WithWorkers(4)).Assemble(context.Background(), accounts)
			require.NoError(t, err)
			require.Len(t, gen.Entries, len(accounts))
			for i, acc := range accounts {
				assert.Equal(t, acc.Balance, decryptEntry(t, scheme, acc.Name, gen.Entries[i]))
			}
		})
	}
}

func TestAssembleIsReproducibleWithFixedRandomness(t *testing.T) {
	local, err := LookupPreset("local")
	require.NoError(t, err)

	a, err := fixedAssembler(WithWorkers(1)).Assemble(context.Background(), local.Accounts)
	require.NoError(t, err)
	b, err := fixedAssembler(WithWorkers(8)).Assemble(context.Background(), local.Accounts)
	require.NoError(t, err)

	assert.Equal(t, a.StateRoot, b.StateRoot)
	for i := range a.Entries {
		assert.Equal(t, a.Entries[i].Address, b.Entries[i].Address)
		assert.True(t, a.Entries[i].Ciphertext.Equal(b.Entries[i].Ciphertext))
	}
}

func TestAssembleSecureRandomness(t *testing.T) {
	local, err := LookupPreset("local")
	require.NoError(t, err)

	a, err := NewAssembler().Assemble(context.Background(), local.Accounts)
	require.NoError(t, err)
	b, err := NewAssembler().Assemble(context.Background(), local.Accounts)
	require.NoError(t, err)

	assert.NotEqual(t, a.StateRoot, b.StateRoot)
	assert.False(t, a.Entries[0].Ciphertext.Equal(b.Entries[0].Ciphertext))
	assert.Equal(t, uint32(100), decryptEntry(t, keys.SchemeExpanded, "Bob", b.Entries[1]))
}

func TestAssembleFailures(t *testing.T) {
	ctx := context.Background()
	alice := []Account{{Name: "Alice", Balance: 100}}

	t.Run("no accounts", func(t *testing.T) {
		_, err := NewAssembler().Assemble(ctx, nil)
		assert.ErrorIs(t, err, ErrNoAccounts)
	})

	t.Run("duplicate seed", func(t *testing.T) {
		_, err := NewAssembler().Assemble(ctx, []Account{{"Alice", 1}, {"Alice   ", 2}})
		assert.ErrorIs(t, err, ErrDuplicateAccount)
	})

	t.Run("random source unavailable", func(t *testing.T) {
		rec := newCountingRecorder()
		failing := func() (io.Reader, error) { return nil, errors.New("entropy pool closed") }
		_, err := NewAssembler(WithRandomSource(failing), WithRecorder(rec)).Assemble(ctx, alice)
		assert.ErrorIs(t, err, elgamal.ErrRandomSourceUnavailable)
		assert.Equal(t, 1, rec.errors["randomness"])
	})

	t.Run("zero random source", func(t *testing.T) {
		zeros := func() (io.Reader, error) { return bytes.NewReader(make([]byte, 64)), nil }
		_, err := NewAssembler(WithRandomSource(zeros)).Assemble(ctx, alice)
		assert.ErrorIs(t, err, elgamal.ErrRandomSourceUnavailable)
	})

	t.Run("missing verifying key", func(t *testing.T) {
		src := vk.SourceFor(filepath.Join(t.TempDir(), "absent.vk"))
		_, err := fixedAssembler(WithVerifyingKey(src)).Assemble(ctx, alice)
		assert.ErrorIs(t, err, vk.ErrFileNotFound)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := fixedAssembler(WithScheme(keys.Scheme(7))).Assemble(ctx, alice)
		assert.ErrorIs(t, err, keys.ErrUnknownScheme)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := fixedAssembler().Assemble(cctx, alice)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAssembleRecordsMetrics(t *testing.T) {
	rec := newCountingRecorder()
	local, err := LookupPreset("local")
	require.NoError(t, err)
	_, err = fixedAssembler(WithRecorder(rec)).Assemble(context.Background(), local.Accounts)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.stages[StageDerive])
	assert.Equal(t, 2, rec.stages[StageEncrypt])
	assert.Equal(t, 2, rec.stages[StageSelfCheck])
	assert.Equal(t, 2, rec.accounts)
	assert.Empty(t, rec.errors)
}

type failingBuilder struct{}

func (failingBuilder) BuildGenesis([]Entry, vk.PreparedVerifyingKey) error {
	return errors.New("runtime rejected genesis")
}

func TestChainSpec(t *testing.T) {
	local, err := LookupPreset("local")
	require.NoError(t, err)

	spec := NewChainSpec(local)
	gen, err := fixedAssembler().Build(context.Background(), local.Accounts, spec)
	require.NoError(t, err)
	assert.Equal(t, gen.StateRoot, spec.StateRoot)
	assert.Equal(t, "local_testnet", spec.ID)
	require.NoError(t, spec.Verify())

	path := filepath.Join(t.TempDir(), "chain.json")
	require.NoError(t, spec.SaveToFile(path))
	loaded, err := LoadChainSpecFromFile(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Verify())
	assert.Equal(t, spec.Name, loaded.Name)
	require.Len(t, loaded.EncryptedBalances, 2)
	assert.Equal(t, uint32(100), decryptEntry(t, keys.SchemeExpanded, "Bob", loaded.EncryptedBalances[1]))

	// Reordering entries changes the commitment.
	loaded.EncryptedBalances[0], loaded.EncryptedBalances[1] = loaded.EncryptedBalances[1], loaded.EncryptedBalances[0]
	assert.ErrorIs(t, loaded.Verify(), ErrStateRootMismatch)

	_, err = fixedAssembler().Build(context.Background(), local.Accounts, failingBuilder{})
	assert.Error(t, err)
}

func TestInclusionProofs(t *testing.T) {
	accounts := EndowedAccounts(DefaultEndowment)
	gen, err := fixedAssembler().Assemble(context.Background(), accounts)
	require.NoError(t, err)

	for i, e := range gen.Entries {
		p, err := gen.ProveEntry(i)
		require.NoError(t, err)
		ok, err := VerifyEntry(gen.StateRoot, e, p)
		require.NoError(t, err)
		assert.True(t, ok, "entry %d", i)
	}

	p, err := gen.ProveEntry(0)
	require.NoError(t, err)
	ok, err := VerifyEntry(gen.StateRoot, gen.Entries[1], p)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = gen.ProveEntry(len(gen.Entries))
	assert.Error(t, err)

	_, err = ComputeStateRoot(nil, vk.LoadEmbedded())
	assert.ErrorIs(t, err, ErrNoAccounts)
}
