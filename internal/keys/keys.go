// keys.go - Key hierarchy and the two derivation schemes.
//
// Two schemes exist and they are not interchangeable: an address derived
// under one scheme is never decryptable with key material from the other.
// A deployment pins exactly one.
//
//	Expanded: seed -> spending key -> expanded spending key (ask, nsk)
//	          -> viewing key (ak, nk) -> ivk -> encryption key ivk·G_elgamal
//	Direct:   seed -> proof generation key (ask, bdk) -> bdk·G_elgamal
//
// In both schemes the balance decryption key bdk is the scalar whose
// multiple of the ElGamal generator is the encryption key.

package keys

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"zerochain/internal/jubjub"
)

// PRF-expand domain tags.
const (
	tagSpendingKey byte = 0x00
	tagAsk         byte = 0x01
	tagNsk         byte = 0x02
	tagDirectAsk   byte = 0x10
	tagDirectBdk   byte = 0x11
)

const crhIvkPersonalization = "Zerochain_CRHivk"

// Scheme selects a key derivation path.
type Scheme int

const (
	// SchemeExpanded derives through an expanded spending key and viewing key.
	SchemeExpanded Scheme = iota + 1
	// SchemeDirect derives the proof generation key straight from the seed.
	SchemeDirect
)

// ParseScheme maps "expanded" or "direct" to a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expanded":
		return SchemeExpanded, nil
	case "direct":
		return SchemeDirect, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

func (s Scheme) String() string {
	switch s {
	case SchemeExpanded:
		return "expanded"
	case SchemeDirect:
		return "direct"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// SpendingKey is the first scalar below the seed in the expanded scheme.
type SpendingKey struct {
	Scalar jubjub.Scalar
}

// ExpandedSpendingKey holds the spend-authorizing and nullifier secrets.
type ExpandedSpendingKey struct {
	Ask jubjub.Scalar
	Nsk jubjub.Scalar
}

// ProofGenerationKey authorizes spends (Ask) and decrypts balances (Bdk).
type ProofGenerationKey struct {
	Ask jubjub.Scalar
	Bdk jubjub.Scalar
}

// ViewingKey is the public half of an expanded spending key.
type ViewingKey struct {
	Ak jubjub.Point
	Nk jubjub.Point
}

// EncryptionKey is the public target of balance encryption.
type EncryptionKey struct {
	point jubjub.Point
}

// Point returns the underlying curve point.
func (k EncryptionKey) Point() jubjub.Point { return k.point }

// Keys is the full hierarchy derived from one seed under one scheme.
// Spending and Viewing are nil under SchemeDirect.
type Keys struct {
	Scheme          Scheme
	Spending        *SpendingKey
	Expanded        *ExpandedSpendingKey
	Viewing         *ViewingKey
	ProofGeneration ProofGenerationKey
	// AuthorizingKey is ak: Ask times the scheme's authorization generator.
	AuthorizingKey jubjub.Point
	Encryption     EncryptionKey
	Address        PaymentAddress
}

// Derive runs the scheme over seed. It is deterministic and keeps no state.
func (s Scheme) Derive(params *jubjub.Params, seed Seed) (*Keys, error) {
	switch s {
	case SchemeExpanded:
		return deriveExpanded(params, seed)
	case SchemeDirect:
		return deriveDirect(params, seed)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownScheme, s)
	}
}

// DeriveAddress is Derive reduced to the payment address.
func (s Scheme) DeriveAddress(params *jubjub.Params, seed Seed) (PaymentAddress, error) {
	k, err := s.Derive(params, seed)
	if err != nil {
		return PaymentAddress{}, err
	}
	return k.Address, nil
}

// NewSpendingKey derives the spending key of the expanded scheme.
func NewSpendingKey(seed Seed) SpendingKey {
	return SpendingKey{Scalar: prfExpand(seed[:], tagSpendingKey)}
}

// Expand derives the expanded spending key.
func (sk SpendingKey) Expand() ExpandedSpendingKey {
	b := sk.Scalar.Bytes()
	return ExpandedSpendingKey{
		Ask: prfExpand(b[:], tagAsk),
		Nsk: prfExpand(b[:], tagNsk),
	}
}

// ViewingKey projects the expanded key onto the spend and nullifier
// generators.
func (e ExpandedSpendingKey) ViewingKey(params *jubjub.Params) (ViewingKey, error) {
	vk := ViewingKey{
		Ak: params.SpendAuth().Point().Mul(e.Ask),
		Nk: params.Nullifier().Point().Mul(e.Nsk),
	}
	if err := checkDerived("ak", e.Ask, vk.Ak); err != nil {
		return ViewingKey{}, err
	}
	if err := checkDerived("nk", e.Nsk, vk.Nk); err != nil {
		return ViewingKey{}, err
	}
	return vk, nil
}

// Ivk is the incoming viewing key: a hash of (ak, nk) reduced to a scalar.
func (vk ViewingKey) Ivk() jubjub.Scalar {
	ak := vk.Ak.Bytes()
	nk := vk.Nk.Bytes()
	h, _ := blake2b.New512(nil)
	h.Write([]byte(crhIvkPersonalization))
	h.Write(ak[:])
	h.Write(nk[:])
	var wide [jubjub.UniformSize]byte
	copy(wide[:], h.Sum(nil))
	return jubjub.ScalarFromUniform(wide)
}

// NewEncryptionKey computes bdk·G_elgamal and validates it.
func NewEncryptionKey(g jubjub.ElGamalGenerator, bdk jubjub.Scalar) (EncryptionKey, error) {
	p := g.Point().Mul(bdk)
	if err := checkDerived("encryption key", bdk, p); err != nil {
		return EncryptionKey{}, err
	}
	return EncryptionKey{point: p}, nil
}

func deriveExpanded(params *jubjub.Params, seed Seed) (*Keys, error) {
	sk := NewSpendingKey(seed)
	expsk := sk.Expand()
	vk, err := expsk.ViewingKey(params)
	if err != nil {
		return nil, err
	}
	ivk := vk.Ivk()
	ek, err := NewEncryptionKey(params.ElGamal(), ivk)
	if err != nil {
		return nil, err
	}
	return &Keys{
		Scheme:          SchemeExpanded,
		Spending:        &sk,
		Expanded:        &expsk,
		Viewing:         &vk,
		ProofGeneration: ProofGenerationKey{Ask: expsk.Ask, Bdk: ivk},
		AuthorizingKey:  vk.Ak,
		Encryption:      ek,
		Address:         PaymentAddress{key: ek},
	}, nil
}

func deriveDirect(params *jubjub.Params, seed Seed) (*Keys, error) {
	pgk := ProofGenerationKey{
		Ask: prfExpand(seed[:], tagDirectAsk),
		Bdk: prfExpand(seed[:], tagDirectBdk),
	}
	ak := params.Diversifier().Point().Mul(pgk.Ask)
	if err := checkDerived("ak", pgk.Ask, ak); err != nil {
		return nil, err
	}
	ek, err := NewEncryptionKey(params.ElGamal(), pgk.Bdk)
	if err != nil {
		return nil, err
	}
	return &Keys{
		Scheme:          SchemeDirect,
		ProofGeneration: pgk,
		AuthorizingKey:  ak,
		Encryption:      ek,
		Address:         PaymentAddress{key: ek},
	}, nil
}

// checkDerived rejects zero scalars and points that fail validation. With a
// sound curve implementation neither happens, but it is checked regardless.
func checkDerived(what string, s jubjub.Scalar, p jubjub.Point) error {
	if s.IsZero() {
		return fmt.Errorf("keys: %s: zero scalar: %w", what, jubjub.ErrSubgroupCheckFailed)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("keys: %s: %w", what, err)
	}
	return nil
}
