package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	key, err := NewKey()
	require.NoError(t, err)
	require.Len(t, key, 64)

	cases := map[string][]byte{
		"json":    []byte(`{"header":["nom"],"records":[]}`),
		"unicode": []byte("Élise Dupont, née à Sète"),
		"empty":   {},
	}
	for name, plaintext := range cases {
		t.Run(name, func(t *testing.T) {
			enc, err := Encrypt(plaintext, key, 1000)
			require.NoError(t, err)
			assert.Greater(t, len(enc), len(plaintext)+saltSize)

			dec, err := Decrypt(enc, key, 1000)
			require.NoError(t, err)
			assert.Equal(t, string(plaintext), string(dec))
		})
	}

	t.Run("wrong key", func(t *testing.T) {
		enc, err := Encrypt([]byte("secret"), key, 1000)
		require.NoError(t, err)

		other, err := NewKey()
		require.NoError(t, err)
		_, err = Decrypt(enc, other, 1000)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Decrypt([]byte("short"), key, 1000)
		assert.Error(t, err)
	})

	t.Run("empty key refused", func(t *testing.T) {
		_, err := Encrypt([]byte("secret"), "", 1000)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestJobID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, JobID("abc"), JobID("abc"))
	assert.NotEqual(t, JobID("abc"), JobID("abd"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", JobID("abc"))
}
