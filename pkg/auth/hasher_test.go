package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/validator"
)

func testHashers() map[string]auth.PasswordHasher {
	return map[string]auth.PasswordHasher{
		"bcrypt": auth.NewBcryptHasher(auth.WithBcryptCost(bcrypt.MinCost)),
		"argon2id": auth.NewArgon2idHasher(auth.WithArgon2Params(auth.Argon2Params{
			Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32,
		})),
	}
}

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			hash, err := h.Hash("longenough1")
			require.NoError(t, err)
			assert.NotEqual(t, "longenough1", hash)

			assert.True(t, h.Verify("longenough1", hash))
			assert.False(t, h.Verify("longenough2", hash))
			assert.False(t, h.Verify("longenough1", "not-a-hash"))
			assert.False(t, h.Verify("longenough1", ""))

			again, err := h.Hash("longenough1")
			require.NoError(t, err)
			assert.NotEqual(t, hash, again, "hashes must be salted")
		})
	}
}

func TestPasswordHasher_WeakPassword(t *testing.T) {
	t.Parallel()

	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, pw := range []string{"", "short1", "alllowercase", "password123"} {
				_, err := h.Hash(pw)
				require.ErrorIs(t, err, auth.ErrWeakPassword, pw)
				assert.NotEmpty(t, validator.ExtractValidationErrors(err), pw)
			}
		})
	}
}

func TestBcryptHasher_LengthLimit(t *testing.T) {
	t.Parallel()

	h := auth.NewBcryptHasher(auth.WithBcryptCost(bcrypt.MinCost))
	_, err := h.Hash(strings.Repeat("a1", 37))
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	h = auth.NewBcryptHasher(
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithBcryptPolicy(validator.PasswordStrengthConfig{MinLength: 4}),
	)
	hash, err := h.Hash("abcd")
	require.NoError(t, err)
	assert.True(t, h.Verify("abcd", hash))
}

func TestArgon2idHasher_Format(t *testing.T) {
	t.Parallel()

	h := auth.NewArgon2idHasher(auth.WithArgon2Params(auth.Argon2Params{
		Time: 2, Memory: 2048, Threads: 2, SaltLen: 8, KeyLen: 16,
	}))
	hash, err := h.Hash("longenough1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=2048,t=2,p=2$"))

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)

	tampered := strings.Join([]string{"", "argon2id", "v=19", "m=2048,t=2,p=0", parts[4], parts[5]}, "$")
	assert.False(t, h.Verify("longenough1", tampered))

	// Hashes with other parameters still verify; parameters are read from the string.
	other := auth.NewArgon2idHasher(auth.WithArgon2Params(auth.DefaultArgon2Params()))
	assert.True(t, other.Verify("longenough1", hash))

	// argon2id allows passwords past the bcrypt limit.
	long := strings.Repeat("a1", 50)
	longHash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(long, longHash))
}
