// address.go - Payment addresses and their on-chain encoding.

package keys

import (
	"encoding/hex"
	"fmt"

	"zerochain/internal/jubjub"
)

// PkdAddressSize is the length of an on-chain account identifier.
const PkdAddressSize = jubjub.PointSize

// PaymentAddress is a validated encryption key used as an account identity.
type PaymentAddress struct {
	key EncryptionKey
}

// EncryptionKey returns the key balances for this address are encrypted to.
func (a PaymentAddress) EncryptionKey() EncryptionKey { return a.key }

// Pkd returns the canonical compressed encoding.
func (a PaymentAddress) Pkd() PkdAddress {
	return PkdAddress(a.key.point.Bytes())
}

// Equal reports whether both addresses carry the same point.
func (a PaymentAddress) Equal(b PaymentAddress) bool {
	return a.key.point.Equal(b.key.point)
}

func (a PaymentAddress) String() string {
	return a.Pkd().String()
}

// PkdAddress is the fixed-size serialized PaymentAddress. Two PkdAddress
// values are equal iff their points are equal, since the encoding is
// canonical.
type PkdAddress [PkdAddressSize]byte

// PkdAddressFromBytes copies b into a PkdAddress and validates the point.
func PkdAddressFromBytes(b []byte) (PkdAddress, error) {
	var a PkdAddress
	if len(b) != PkdAddressSize {
		return a, fmt.Errorf("%w: address is %d bytes", jubjub.ErrPointNotOnCurve, len(b))
	}
	copy(a[:], b)
	if _, err := a.PaymentAddress(); err != nil {
		return PkdAddress{}, err
	}
	return a, nil
}

// PaymentAddress decodes and validates the point.
func (a PkdAddress) PaymentAddress() (PaymentAddress, error) {
	p, err := jubjub.PointFromBytes(a[:])
	if err != nil {
		return PaymentAddress{}, err
	}
	return PaymentAddress{key: EncryptionKey{point: p}}, nil
}

func (a PkdAddress) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText encodes the address as hex.
func (a PkdAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a hex address and validates it.
func (a *PkdAddress) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("keys: invalid address hex: %w", err)
	}
	v, err := PkdAddressFromBytes(b)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
