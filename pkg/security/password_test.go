package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.NoError(t, hasher.Compare(hash, "supersecret"))
	assert.Error(t, hasher.Compare(hash, "wrong-password"))
}

func TestHash_RejectsShortPasswords(t *testing.T) {
	hasher := NewBcryptHasher(4)
	_, err := hasher.Hash("short")
	assert.Error(t, err)
}
