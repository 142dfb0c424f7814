package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
}

func TestHashPassword_DistinctHashes(t *testing.T) {
	h1, err := HashPassword("samepassword")
	require.NoError(t, err)
	h2, err := HashPassword("samepassword")
	require.NoError(t, err)

	// bcrypt salts every hash, so two hashes of one password differ.
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("samepassword", h1))
	assert.True(t, VerifyPassword("samepassword", h2))
}

func TestVerifyPassword_RejectsVariants(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	variants := []string{
		"sup3rSecret!",  // case change
		"Sup3rSecret",   // truncated
		"Sup3rSecret! ", // trailing space
		" Sup3rSecret!", // leading space
		"",
	}
	for _, v := range variants {
		assert.False(t, VerifyPassword(v, hash), "variant %q must not verify", v)
	}
}

func TestVerifyPassword_GarbageHash(t *testing.T) {
	assert.False(t, VerifyPassword("whatever", "not-a-bcrypt-hash"))
}

func TestCreateAccessToken_RoundTrip(t *testing.T) {
	secret := []byte("test-signing-key")

	token, err := CreateAccessToken("2b1f0a9e-8f09-4b5e-9f94-1f2d3c4b5a6e", time.Hour, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	subject, err := ParseTokenSubject(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "2b1f0a9e-8f09-4b5e-9f94-1f2d3c4b5a6e", subject)
}

func TestParseTokenSubject_WrongKey(t *testing.T) {
	token, err := CreateAccessToken("subject", time.Hour, []byte("key-one"))
	require.NoError(t, err)

	_, err = ParseTokenSubject(token, []byte("key-two"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenSubject_Expired(t *testing.T) {
	token, err := CreateAccessToken("subject", -time.Minute, []byte("key"))
	require.NoError(t, err)

	_, err = ParseTokenSubject(token, []byte("key"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenSubject_EmptySubject(t *testing.T) {
	token, err := CreateAccessToken("", time.Hour, []byte("key"))
	require.NoError(t, err)

	_, err = ParseTokenSubject(token, []byte("key"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenSubject_RejectsOtherAlgorithms(t *testing.T) {
	secret := []byte("key")
	claims := jwt.RegisteredClaims{
		Subject:   "subject",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseTokenSubject(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenSubject_Garbage(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseTokenSubject(tok, []byte("key"))
		assert.True(t, errors.Is(err, ErrInvalidToken), "token %q", tok)
	}
}
