// decrypt.go - Bounded discrete-log search for balance decryption.
//
// Right - bdk·Left equals b·G for the encrypted balance b. Recovering b is a
// discrete log, solved here by baby-step giant-step over [0, MaxBalance]:
// a table of j·G for j < 2^16 and at most 2^16 giant steps of 2^16·G.

package elgamal

import (
	"fmt"
	"math"
	"sync"

	"zerochain/internal/jubjub"
)

// MaxBalance is the largest balance Decrypt can recover.
const MaxBalance = math.MaxUint32

const (
	babySteps  = 1 << 16
	giantSteps = (MaxBalance / babySteps) + 1
)

// Decryptor holds the precomputed baby-step table for one generator.
// It is immutable once built and safe for concurrent use.
type Decryptor struct {
	g     jubjub.ElGamalGenerator
	table map[[jubjub.PointSize]byte]uint16
	giant jubjub.Point
}

// NewDecryptor builds the baby-step table for g.
func NewDecryptor(g jubjub.ElGamalGenerator) *Decryptor {
	base := g.Point()
	table := make(map[[jubjub.PointSize]byte]uint16, babySteps)
	acc := jubjub.Identity()
	for j := 0; j < babySteps; j++ {
		table[acc.Bytes()] = uint16(j)
		acc = acc.Add(base)
	}
	return &Decryptor{g: g, table: table, giant: acc.Neg()}
}

type decryptorEntry struct {
	once sync.Once
	d    *Decryptor
}

var (
	decryptorsMu sync.Mutex
	decryptors   = make(map[[jubjub.PointSize]byte]*decryptorEntry)
)

// DecryptorFor returns the shared Decryptor for g, building it on first use.
func DecryptorFor(g jubjub.ElGamalGenerator) *Decryptor {
	key := g.Point().Bytes()
	decryptorsMu.Lock()
	e, ok := decryptors[key]
	if !ok {
		e = &decryptorEntry{}
		decryptors[key] = e
	}
	decryptorsMu.Unlock()
	e.once.Do(func() { e.d = NewDecryptor(g) })
	return e.d
}

// Decrypt recovers the balance in ct using the balance decryption key bdk.
// It fails with ErrDecryptionFailed when the plaintext is outside
// [0, MaxBalance], which also covers a wrong key.
func (d *Decryptor) Decrypt(ct Ciphertext, bdk jubjub.Scalar) (uint32, error) {
	target := ct.Right.Sub(ct.Left.Mul(bdk))
	for i := uint64(0); i < giantSteps; i++ {
		if j, ok := d.table[target.Bytes()]; ok {
			return uint32(i*babySteps + uint64(j)), nil
		}
		target = target.Add(d.giant)
	}
	return 0, fmt.Errorf("%w: no balance in [0, %d]", ErrDecryptionFailed, uint64(MaxBalance))
}

// Decrypt is DecryptorFor(g).Decrypt(ct, bdk).
func Decrypt(ct Ciphertext, bdk jubjub.Scalar, g jubjub.ElGamalGenerator) (uint32, error) {
	return DecryptorFor(g).Decrypt(ct, bdk)
}
