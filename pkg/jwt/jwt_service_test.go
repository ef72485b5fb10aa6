package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucolog/domain"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	token, err := svc.GenerateTokenUser("8f6a3a4e-8d1b-4b59-9d0b-4c1c2f0b7e11")
	require.NoError(t, err)

	id, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "8f6a3a4e-8d1b-4b59-9d0b-4c1c2f0b7e11", id)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("other", time.Hour).GenerateTokenUser("u1")
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute).(*jwtService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := svc.GenerateTokenUser("u1")
	require.NoError(t, err)

	_, err = svc.GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwtUserClaim{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTService_Garbage(t *testing.T) {
	_, err := NewJWTService("secret", time.Hour).GetUserIDByToken("not.a.token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTService_EmptySecretRejectsUnsignedKey(t *testing.T) {
	svc := NewJWTService("", time.Hour)

	claims := jwtUserClaim{
		UserID: "11111111-2222-3333-4444-555555555555",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	require.NoError(t, err)

	_, err = svc.GetUserIDByToken(forged)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	token, err := svc.GenerateTokenUser(claims.UserID)
	require.NoError(t, err)
	id, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, id)

	_, err = NewJWTService("", time.Hour).GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
