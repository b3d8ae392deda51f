// params.go - Read-only curve context and role-scoped fixed generators.
//
// Each generator role has its own type. Functions that need a generator take
// the role type, so handing the diversifier base to the balance cipher (or
// any other cross-role mix-up) fails to compile instead of failing at runtime.

package jubjub

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/twistededwards"
	"golang.org/x/crypto/blake2b"
)

// groupHashPersonalization prefixes every generator derivation.
const groupHashPersonalization = "Zerochain_GroupHash"

// maxGroupHashAttempts bounds the try-and-increment loop. Each attempt
// succeeds with probability about 1/2.
const maxGroupHashAttempts = 256

// Generator role tags. Changing any of these changes every derived key.
const (
	TagSpendAuth   = "Zerochain_SpendAuth"
	TagNullifier   = "Zerochain_Nullifier"
	TagElGamal     = "Zerochain_ElGamal"
	TagDiversifier = "Zerochain_Diversifier"
)

// SpendAuthGenerator is the base for spend-authorizing public keys (ak).
type SpendAuthGenerator struct{ point Point }

// NullifierGenerator is the base for nullifier deriving keys (nk).
type NullifierGenerator struct{ point Point }

// ElGamalGenerator is the base of the balance cipher and of encryption keys.
type ElGamalGenerator struct{ point Point }

// DiversifierGenerator is the authorization base of the direct key scheme.
type DiversifierGenerator struct{ point Point }

// Point returns the generator point.
func (g SpendAuthGenerator) Point() Point { return g.point }

// Point returns the generator point.
func (g NullifierGenerator) Point() Point { return g.point }

// Point returns the generator point.
func (g ElGamalGenerator) Point() Point { return g.point }

// Point returns the generator point.
func (g DiversifierGenerator) Point() Point { return g.point }

// Params is the curve context shared by key derivation and encryption.
// It is immutable after construction and safe for concurrent use.
type Params struct {
	curve       twistededwards.CurveParams
	spendAuth   SpendAuthGenerator
	nullifier   NullifierGenerator
	elGamal     ElGamalGenerator
	diversifier DiversifierGenerator
}

var (
	defaultParams     *Params
	defaultParamsErr  error
	defaultParamsOnce sync.Once
)

// DefaultParams returns the process-wide context, building it on first use.
func DefaultParams() (*Params, error) {
	defaultParamsOnce.Do(func() {
		defaultParams, defaultParamsErr = NewParams()
	})
	return defaultParams, defaultParamsErr
}

// MustParams is DefaultParams for callers that cannot continue without it.
func MustParams() *Params {
	p, err := DefaultParams()
	if err != nil {
		panic(err)
	}
	return p
}

// NewParams builds a fresh context and derives the generator table.
func NewParams() (*Params, error) {
	p := &Params{curve: twistededwards.GetEdwardsCurve()}
	var err error
	if p.spendAuth.point, err = GroupHash(TagSpendAuth); err != nil {
		return nil, err
	}
	if p.nullifier.point, err = GroupHash(TagNullifier); err != nil {
		return nil, err
	}
	if p.elGamal.point, err = GroupHash(TagElGamal); err != nil {
		return nil, err
	}
	if p.diversifier.point, err = GroupHash(TagDiversifier); err != nil {
		return nil, err
	}
	return p, nil
}

// SpendAuth returns the spend-authorization generator.
func (p *Params) SpendAuth() SpendAuthGenerator { return p.spendAuth }

// Nullifier returns the nullifier-key generator.
func (p *Params) Nullifier() NullifierGenerator { return p.nullifier }

// ElGamal returns the balance-encryption generator.
func (p *Params) ElGamal() ElGamalGenerator { return p.elGamal }

// Diversifier returns the direct-scheme authorization generator.
func (p *Params) Diversifier() DiversifierGenerator { return p.diversifier }

// Base returns the curve's standard base point.
func (p *Params) Base() Point {
	return Point{p: p.curve.Base}
}

// GroupHash maps a tag to a prime-order point: hash, decompress, clear the
// cofactor, reject the identity, retry with the next counter on failure.
func GroupHash(tag string) (Point, error) {
	cofactor := twistededwards.GetEdwardsCurve().Cofactor
	var ctr [4]byte
	for i := uint32(0); i < maxGroupHashAttempts; i++ {
		binary.LittleEndian.PutUint32(ctr[:], i)
		h, err := blake2b.New256(nil)
		if err != nil {
			return Point{}, err
		}
		h.Write([]byte(groupHashPersonalization))
		h.Write([]byte(tag))
		h.Write(ctr[:])
		digest := h.Sum(nil)

		candidate, ok := decompress(digest)
		if !ok {
			continue
		}
		var cleared Point
		cleared.p.ScalarMultiplication(&candidate.p, cofactor.BigInt(new(big.Int)))
		if cleared.IsIdentity() {
			continue
		}
		if err := cleared.Validate(); err != nil {
			continue
		}
		return cleared, nil
	}
	return Point{}, fmt.Errorf("jubjub: group hash for %q found no point after %d attempts", tag, maxGroupHashAttempts)
}
