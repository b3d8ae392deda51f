// assembler.go - Builds the encrypted genesis balance list.
//
// For every account the assembler derives keys from the named seed,
// encrypts the starting balance and decrypts it again with the derived bdk.
// An entry is accepted only if the self-check recovers the intended
// balance. Any failure aborts the whole assembly: a skipped account would
// silently remove funds from genesis state.

package genesis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"zerochain/internal/elgamal"
	"zerochain/internal/jubjub"
	"zerochain/internal/keys"
	"zerochain/internal/vk"
)

var (
	// ErrNoAccounts is returned when there is nothing to assemble.
	ErrNoAccounts = errors.New("genesis: no accounts")
	// ErrDuplicateAccount is returned when two accounts share a name, and
	// therefore an address.
	ErrDuplicateAccount = errors.New("genesis: duplicate account")
	// ErrSelfCheckFailed is returned when a fresh entry does not decrypt to
	// its intended balance.
	ErrSelfCheckFailed = errors.New("genesis: self-check failed")
)

// Stage names reported to a Recorder.
const (
	StageDerive    = "derive"
	StageEncrypt   = "encrypt"
	StageSelfCheck = "self_check"
)

// Recorder receives assembly measurements.
type Recorder interface {
	RecordStage(stage string, d time.Duration)
	RecordError(kind string)
	RecordAssembly(accounts int, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordStage(string, time.Duration) {}
func (nopRecorder) RecordError(string)                {}
func (nopRecorder) RecordAssembly(int, time.Duration) {}

// Builder is the runtime's genesis configuration. It receives the ordered
// entries and the verifying key and nothing else.
type Builder interface {
	BuildGenesis(entries []Entry, key vk.PreparedVerifyingKey) error
}

// Genesis is the assembled initial state.
type Genesis struct {
	Entries      []Entry
	VerifyingKey vk.PreparedVerifyingKey
	StateRoot    StateRoot
}

// Assembler sequences key derivation, encryption and the verifying key
// load. Its configuration is fixed at construction.
type Assembler struct {
	params   *jubjub.Params
	scheme   keys.Scheme
	policy   elgamal.RandomnessPolicy
	random   elgamal.RandomSource
	workers  int
	vkSource vk.Source
	recorder Recorder
	log      zerolog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithParams sets the curve context. Defaults to jubjub.MustParams().
func WithParams(p *jubjub.Params) Option {
	return func(a *Assembler) { a.params = p }
}

// WithScheme pins the key derivation scheme. Defaults to SchemeExpanded.
func WithScheme(s keys.Scheme) Option {
	return func(a *Assembler) { a.scheme = s }
}

// WithRandomnessPolicy sets the encryption randomness policy. Defaults to
// RandomnessSecure.
func WithRandomnessPolicy(p elgamal.RandomnessPolicy) Option {
	return func(a *Assembler) { a.policy = p }
}

// WithRandomSource overrides the secure random source.
func WithRandomSource(src elgamal.RandomSource) Option {
	return func(a *Assembler) { a.random = src }
}

// WithWorkers bounds per-account parallelism. Values below 1 mean one.
func WithWorkers(n int) Option {
	return func(a *Assembler) { a.workers = n }
}

// WithVerifyingKey sets where the verifying key comes from. Defaults to the
// embedded development key.
func WithVerifyingKey(src vk.Source) Option {
	return func(a *Assembler) { a.vkSource = src }
}

// WithRecorder attaches a metrics sink.
func WithRecorder(r Recorder) Option {
	return func(a *Assembler) { a.recorder = r }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

// NewAssembler returns an Assembler with opts applied over the defaults.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		scheme:   keys.SchemeExpanded,
		policy:   elgamal.RandomnessSecure,
		random:   elgamal.SystemRandom,
		workers:  runtime.NumCPU(),
		vkSource: vk.Embedded,
		recorder: nopRecorder{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.params == nil {
		a.params = jubjub.MustParams()
	}
	if a.workers < 1 {
		a.workers = 1
	}
	return a
}

// Assemble builds the genesis for accounts. Entries keep the order of
// accounts regardless of worker scheduling.
func (a *Assembler) Assemble(ctx context.Context, accounts []Account) (*Genesis, error) {
	start := time.Now()
	if err := checkAccounts(accounts); err != nil {
		a.recorder.RecordError(errorKind(err))
		return nil, err
	}
	if a.policy == elgamal.RandomnessFixedForTesting {
		a.log.Warn().Msg("fixed encryption randomness: equal balances produce identical ciphertexts")
	}

	key, err := a.vkSource()
	if err != nil {
		a.recorder.RecordError(errorKind(err))
		return nil, fmt.Errorf("genesis: verifying key: %w", err)
	}
	a.log.Debug().Stringer("vk", key).Msg("verifying key loaded")

	entries := make([]Entry, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, acc := range accounts {
		i, acc := i, acc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := a.assembleOne(acc)
			if err != nil {
				a.recorder.RecordError(errorKind(err))
				return fmt.Errorf("genesis: account %q: %w", acc.Name, err)
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Error().Err(err).Msg("genesis assembly aborted")
		return nil, err
	}

	root, err := ComputeStateRoot(entries, key)
	if err != nil {
		return nil, err
	}
	d := time.Since(start)
	a.recorder.RecordAssembly(len(entries), d)
	a.log.Info().
		Int("accounts", len(entries)).
		Str("scheme", a.scheme.String()).
		Str("randomness", a.policy.String()).
		Stringer("state_root", root).
		Dur("elapsed", d).
		Msg("genesis assembled")

	return &Genesis{Entries: entries, VerifyingKey: key, StateRoot: root}, nil
}

// Build assembles accounts and hands the result to b.
func (a *Assembler) Build(ctx context.Context, accounts []Account, b Builder) (*Genesis, error) {
	gen, err := a.Assemble(ctx, accounts)
	if err != nil {
		return nil, err
	}
	if err := b.BuildGenesis(gen.Entries, gen.VerifyingKey); err != nil {
		return nil, fmt.Errorf("genesis: builder: %w", err)
	}
	return gen, nil
}

func (a *Assembler) assembleOne(acc Account) (Entry, error) {
	t := time.Now()
	k, err := a.scheme.Derive(a.params, keys.SeedFromName(acc.Name))
	if err != nil {
		return Entry{}, err
	}
	a.recorder.RecordStage(StageDerive, time.Since(t))

	t = time.Now()
	gen := a.params.ElGamal()
	ct, _, err := elgamal.EncryptWithPolicy(acc.Balance, a.policy, a.random, k.Encryption.Point(), gen)
	if err != nil {
		return Entry{}, err
	}
	a.recorder.RecordStage(StageEncrypt, time.Since(t))

	t = time.Now()
	got, err := elgamal.Decrypt(ct, k.ProofGeneration.Bdk, gen)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrSelfCheckFailed, err)
	}
	if got != acc.Balance {
		return Entry{}, fmt.Errorf("%w: decrypted %d, want %d", ErrSelfCheckFailed, got, acc.Balance)
	}
	a.recorder.RecordStage(StageSelfCheck, time.Since(t))

	e := Entry{Address: k.Address.Pkd(), Ciphertext: ct}
	a.log.Debug().
		Str("account", acc.Name).
		Stringer("address", e.Address).
		Msg("genesis entry accepted")
	return e, nil
}

func checkAccounts(accounts []Account) error {
	if len(accounts) == 0 {
		return ErrNoAccounts
	}
	seen := make(map[keys.Seed]string, len(accounts))
	for _, acc := range accounts {
		seed := keys.SeedFromName(acc.Name)
		if prev, ok := seen[seed]; ok {
			return fmt.Errorf("%w: %q and %q share a seed", ErrDuplicateAccount, prev, acc.Name)
		}
		seen[seed] = acc.Name
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNoAccounts), errors.Is(err, ErrDuplicateAccount):
		return "accounts"
	case errors.Is(err, ErrSelfCheckFailed):
		return "self_check"
	case errors.Is(err, elgamal.ErrRandomSourceUnavailable):
		return "randomness"
	case errors.Is(err, vk.ErrFileNotFound), errors.Is(err, vk.ErrIO):
		return "verifying_key"
	case errors.Is(err, jubjub.ErrPointNotOnCurve), errors.Is(err, jubjub.ErrSubgroupCheckFailed),
		errors.Is(err, keys.ErrUnknownScheme):
		return "key_derivation"
	default:
		return "other"
	}
}
