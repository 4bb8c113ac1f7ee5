package jwtinspect

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	str, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return str
}

func TestDecodeReadsClaimsWithoutKey(t *testing.T) {
	str := signedToken(t, Claims{
		Email: "a@b.com",
		Plan:  "pro",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)),
		},
	})

	claims, err := Decode(str)

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "pro", claims.Plan)
	assert.Equal(t, 2027, claims.ExpiresAt.Year())
}

func TestDecodeMalformedToken(t *testing.T) {
	_, err := Decode("not-a-jwt")
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)

	expired := signedToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})
	valid := signedToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	noExp := signedToken(t, Claims{Email: "a@b.com"})

	assert.True(t, Expired(expired, now))
	assert.False(t, Expired(valid, now))
	// Токен без exp и битый токен не считаются истёкшими:
	// решение остаётся за сервером.
	assert.False(t, Expired(noExp, now))
	assert.False(t, Expired("garbage", now))
}
