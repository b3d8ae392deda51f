package keys

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zerochain/internal/jubjub"
)

func TestSeedFromName(t *testing.T) {
	s := SeedFromName("Alice")
	assert.Equal(t, "Alice"+strings.Repeat(" ", 27), string(s[:]))

	long := SeedFromName("a label that is clearly longer than thirty-two bytes")
	assert.Equal(t, "a label that is clearly longer t", string(long[:]))

	_, err := SeedFromBytes([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidSeedLength)

	s2, err := SeedFromBytes(s[:])
	require.NoError(t, err)
	assert.Equal(t, s, s2)
}

func TestParseScheme(t *testing.T) {
	for _, s := range []Scheme{SchemeExpanded, SchemeDirect} {
		got, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseScheme("legacy")
	assert.ErrorIs(t, err, ErrUnknownScheme)

	_, err = Scheme(0).Derive(jubjub.MustParams(), SeedFromName("Alice"))
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestDeriveIsDeterministic(t *testing.T) {
	params := jubjub.MustParams()
	for _, scheme := range []Scheme{SchemeExpanded, SchemeDirect} {
		t.Run(scheme.String(), func(t *testing.T) {
			a1, err := scheme.DeriveAddress(params, SeedFromName("Alice"))
			require.NoError(t, err)
			a2, err := scheme.DeriveAddress(params, SeedFromName("Alice"))
			require.NoError(t, err)
			assert.True(t, a1.Equal(a2))
			assert.Equal(t, a1.Pkd(), a2.Pkd())

			b, err := scheme.DeriveAddress(params, SeedFromName("Bob"))
			require.NoError(t, err)
			assert.False(t, a1.Equal(b))
			assert.NotEqual(t, a1.Pkd(), b.Pkd())
		})
	}
}

func TestSchemesAreNotInterchangeable(t *testing.T) {
	params := jubjub.MustParams()
	seed := SeedFromName("Alice")
	expanded, err := SchemeExpanded.Derive(params, seed)
	require.NoError(t, err)
	direct, err := SchemeDirect.Derive(params, seed)
	require.NoError(t, err)

	assert.False(t, expanded.Address.Equal(direct.Address))
	assert.False(t, expanded.ProofGeneration.Bdk.Equal(direct.ProofGeneration.Bdk))
	assert.False(t, expanded.AuthorizingKey.Equal(direct.AuthorizingKey))
}

func TestKeyHierarchyConsistency(t *testing.T) {
	params := jubjub.MustParams()
	g := params.ElGamal().Point()

	t.Run("expanded", func(t *testing.T) {
		k, err := SchemeExpanded.Derive(params, SeedFromName("Alice"))
		require.NoError(t, err)
		require.NotNil(t, k.Spending)
		require.NotNil(t, k.Expanded)
		require.NotNil(t, k.Viewing)

		assert.True(t, k.Expanded.Ask.Equal(k.ProofGeneration.Ask))
		assert.True(t, k.Viewing.Ivk().Equal(k.ProofGeneration.Bdk))
		assert.True(t, params.SpendAuth().Point().Mul(k.ProofGeneration.Ask).Equal(k.AuthorizingKey))
		assert.True(t, g.Mul(k.ProofGeneration.Bdk).Equal(k.Encryption.Point()))
		assert.True(t, k.Address.EncryptionKey().Point().Equal(k.Encryption.Point()))
	})

	t.Run("direct", func(t *testing.T) {
		k, err := SchemeDirect.Derive(params, SeedFromName("Alice"))
		require.NoError(t, err)
		assert.Nil(t, k.Spending)
		assert.Nil(t, k.Viewing)
		assert.True(t, params.Diversifier().Point().Mul(k.ProofGeneration.Ask).Equal(k.AuthorizingKey))
		assert.True(t, g.Mul(k.ProofGeneration.Bdk).Equal(k.Encryption.Point()))
	})
}

func TestNewEncryptionKeyRejectsZero(t *testing.T) {
	_, err := NewEncryptionKey(jubjub.MustParams().ElGamal(), jubjub.Scalar{})
	assert.ErrorIs(t, err, jubjub.ErrSubgroupCheckFailed)
}

func TestPkdAddressEncoding(t *testing.T) {
	params := jubjub.MustParams()
	addr, err := SchemeExpanded.DeriveAddress(params, SeedFromName("Alice"))
	require.NoError(t, err)
	pkd := addr.Pkd()

	back, err := PkdAddressFromBytes(pkd[:])
	require.NoError(t, err)
	assert.Equal(t, pkd, back)

	decoded, err := pkd.PaymentAddress()
	require.NoError(t, err)
	assert.True(t, decoded.Equal(addr))

	raw, err := json.Marshal(map[string]PkdAddress{"address": pkd})
	require.NoError(t, err)
	var out map[string]PkdAddress
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, pkd, out["address"])

	identity := jubjub.Identity().Bytes()
	_, err = PkdAddressFromBytes(identity[:])
	assert.ErrorIs(t, err, jubjub.ErrSubgroupCheckFailed)

	_, err = PkdAddressFromBytes(pkd[:10])
	assert.ErrorIs(t, err, jubjub.ErrPointNotOnCurve)
}
