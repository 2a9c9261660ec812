package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretKey = "test_secret_key_1234567890"

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	for _, userUID := range []string{uuid.NewString(), uuid.NewString()} {
		token, err := maker.GenerateToken(userUID)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := maker.ParseToken(token)
		require.NoError(t, err)

		assert.Equal(t, userUID, claims.UserUID)
		assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
		assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
	}
}

func TestJWTMaker_GenerateToken_InvalidUserUID(t *testing.T) {
	maker := NewJWTMaker(secretKey, time.Minute)

	_, err := maker.GenerateToken("admin")
	assert.ErrorIs(t, err, ErrInvalidUserUID)
}

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken(uuid.NewString())
	require.NoError(t, err)

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "tampered signature",
			token: validToken[:len(validToken)-2] + "xx",
		},
		{
			name: "wrong secret",
			token: signed(t, jwt.SigningMethodHS256, []byte("other_secret"), CustomClaims{
				UserUID:          uuid.NewString(),
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}),
		},
		{
			name: "expired token",
			token: signed(t, jwt.SigningMethodHS256, []byte(secretKey), CustomClaims{
				UserUID:          uuid.NewString(),
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
			}),
		},
		{
			name: "no expiration",
			token: signed(t, jwt.SigningMethodHS256, []byte(secretKey), CustomClaims{
				UserUID: uuid.NewString(),
			}),
		},
		{
			name: "user_uid is not a uuid",
			token: signed(t, jwt.SigningMethodHS256, []byte(secretKey), CustomClaims{
				UserUID:          "admin",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}),
		},
		{
			name: "different signing method",
			token: signed(t, jwt.SigningMethodHS512, []byte(secretKey), CustomClaims{
				UserUID:          uuid.NewString(),
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
