package circuit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"zerochain/internal/elgamal"
	"zerochain/internal/jubjub"
	"zerochain/internal/keys"
	"zerochain/internal/vk"
)

func recipient(t *testing.T, name string) jubjub.Point {
	t.Helper()
	addr, err := keys.SchemeExpanded.DeriveAddress(jubjub.MustParams(), keys.SeedFromName(name))
	require.NoError(t, err)
	return addr.EncryptionKey().Point()
}

func TestBalanceCircuit(t *testing.T) {
	params := jubjub.MustParams()
	g := params.ElGamal()
	pk := recipient(t, "Alice")

	t.Run("fixed randomness", func(t *testing.T) {
		assert := test.NewAssert(t)
		r := jubjub.ScalarOne()
		ct := elgamal.Encrypt(100, r, pk, g)
		assert.ProverSucceeded(NewBalanceCircuit(params), Assign(ct, pk, 100, r),
			test.WithCurves(Curve), test.WithBackends(backend.GROTH16))
	})

	t.Run("random scalar", func(t *testing.T) {
		assert := test.NewAssert(t)
		r, err := elgamal.RandomnessSecure.Sample(nil)
		require.NoError(t, err)
		ct := elgamal.Encrypt(elgamal.MaxBalance, r, pk, g)
		assert.ProverSucceeded(NewBalanceCircuit(params), Assign(ct, pk, elgamal.MaxBalance, r),
			test.WithCurves(Curve), test.WithBackends(backend.GROTH16))
	})

	t.Run("wrong balance", func(t *testing.T) {
		assert := test.NewAssert(t)
		r := jubjub.ScalarFromUint64(5)
		ct := elgamal.Encrypt(100, r, pk, g)
		assert.ProverFailed(NewBalanceCircuit(params), Assign(ct, pk, 101, r),
			test.WithCurves(Curve), test.WithBackends(backend.GROTH16))
	})

	t.Run("wrong recipient", func(t *testing.T) {
		assert := test.NewAssert(t)
		r := jubjub.ScalarFromUint64(5)
		ct := elgamal.Encrypt(100, r, pk, g)
		assert.ProverFailed(NewBalanceCircuit(params), Assign(ct, recipient(t, "Bob"), 100, r),
			test.WithCurves(Curve), test.WithBackends(backend.GROTH16))
	})

	t.Run("balance above range", func(t *testing.T) {
		assert := test.NewAssert(t)
		r := jubjub.ScalarFromUint64(5)
		over := uint64(elgamal.MaxBalance) + 1
		ct := elgamal.Ciphertext{
			Left:  g.Point().Mul(r),
			Right: g.Point().MulUint64(over).Add(pk.Mul(r)),
		}
		w := Assign(ct, pk, 0, r)
		w.Balance = over
		assert.ProverFailed(NewBalanceCircuit(params), w,
			test.WithCurves(Curve), test.WithBackends(backend.GROTH16))
	})
}

func TestGroth16KeyFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	params := jubjub.MustParams()
	ccs, err := Compile(params)
	require.NoError(t, err)

	dir := t.TempDir()
	pkPath := filepath.Join(dir, "balance.pk")
	vkPath := filepath.Join(dir, "balance.vk")
	pk, key, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	// Second call loads what the first wrote.
	_, _, err = SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	blob, err := vk.LoadFromPath(vkPath)
	require.NoError(t, err)
	marshalled, err := MarshalVerifyingKey(key)
	require.NoError(t, err)
	require.True(t, blob.Equal(marshalled))

	loaded, err := ParseVerifyingKey(blob)
	require.NoError(t, err)

	alice := recipient(t, "Alice")
	r := jubjub.ScalarOne()
	ct := elgamal.Encrypt(100, r, alice, params.ElGamal())
	proof, err := Prove(ccs, pk, Assign(ct, alice, 100, r))
	require.NoError(t, err)
	require.NoError(t, Verify(proof, loaded, PublicAssignment(ct, alice)))

	other := elgamal.Encrypt(101, r, alice, params.ElGamal())
	require.ErrorIs(t, Verify(proof, loaded, PublicAssignment(other, alice)), ErrProofRejected)
}

func TestParseVerifyingKeyRejectsPlaceholder(t *testing.T) {
	_, err := ParseVerifyingKey(vk.LoadEmbedded())
	require.ErrorIs(t, err, ErrInvalidVerifyingKey)

	_, err = LoadProvingKey(filepath.Join(t.TempDir(), "missing.pk"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
