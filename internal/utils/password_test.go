package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash))
	assert.False(t, IsBcryptHash(hash))

	ok, err := VerifyPassword("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais mot de passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordBcryptFallback(t *testing.T) {
	// Comptes créés avant la migration vers Argon2id
	raw, err := bcrypt.GenerateFromPassword([]byte("ancien-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(raw)
	require.True(t, IsBcryptHash(hash))
	require.False(t, IsArgon2Hash(hash))

	ok, err := VerifyPassword("ancien-secret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("autre", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("peu importe", "pas-un-hash")
	assert.Error(t, err)
}
