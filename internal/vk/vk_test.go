package vk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	k := LoadEmbedded()
	assert.Equal(t, PreparedVerifyingKey{0x01}, k)

	// Callers get a copy.
	k[0] = 0xff
	assert.Equal(t, PreparedVerifyingKey{0x01}, LoadEmbedded())
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromPath(filepath.Join(dir, "absent.vk"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFromPath(dir)
		assert.ErrorIs(t, err, ErrIO)
	})

	t.Run("exact bytes", func(t *testing.T) {
		want := make([]byte, 1031)
		for i := range want {
			want[i] = byte(i * 7)
		}
		path := filepath.Join(dir, "key.vk")
		require.NoError(t, os.WriteFile(path, want, 0o600))

		got, err := LoadFromPath(path)
		require.NoError(t, err)
		assert.Len(t, got, len(want))
		assert.Equal(t, want, []byte(got))
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.vk")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		got, err := LoadFromPath(path)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSourceFor(t *testing.T) {
	k, err := SourceFor("")()
	require.NoError(t, err)
	assert.True(t, k.Equal(LoadEmbedded()))

	path := filepath.Join(t.TempDir(), "key.vk")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))
	k, err = SourceFor(path)()
	require.NoError(t, err)
	assert.Equal(t, PreparedVerifyingKey{1, 2, 3}, k)

	_, err = SourceFor(path + ".missing")()
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDigestAndText(t *testing.T) {
	a := PreparedVerifyingKey{1, 2, 3}
	b := PreparedVerifyingKey{1, 2, 4}
	assert.NotEqual(t, a.Digest(), b.Digest())
	assert.Equal(t, a.Digest(), PreparedVerifyingKey{1, 2, 3}.Digest())

	raw, err := json.Marshal(map[string]PreparedVerifyingKey{"vk": a})
	require.NoError(t, err)
	assert.JSONEq(t, `{"vk":"010203"}`, string(raw))

	var out map[string]PreparedVerifyingKey
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, a.Equal(out["vk"]))
}
