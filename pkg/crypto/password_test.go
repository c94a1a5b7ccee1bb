package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password")
	require.NoError(t, err)

	assert.NotEqual(t, "password", hash)
	assert.True(t, CheckPassword("password", hash))
	assert.False(t, CheckPassword("wrongpassword", hash))

	again, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")
}

func TestHashPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 100))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("password", "not-a-hash"))
	assert.False(t, BurnCompare("password"))
}
