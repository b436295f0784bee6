package crypto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IllTzeko/wombokombo-gameserver/crypto"
)

func TestArgon2idHasher(t *testing.T) {
	// Deliberately cheap parameters, this is a correctness test not a
	// security benchmark.
	hasher := crypto.NewArgon2idHasher(1, 16*1024, 32, 16, 1)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	match, err := hasher.Compare(hash, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = hasher.Compare(hash, "incorrect horse")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2idHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := crypto.NewArgon2idHasher(1, 16*1024, 32, 16, 1)

	a, err := hasher.Hash("same password")
	require.NoError(t, err)
	b, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
