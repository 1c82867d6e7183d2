package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	token, err := GenerateToken("user-123", "instructor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "instructor", claims.Role)
}

func TestVerifyTokenTampered(t *testing.T) {
	token, err := GenerateToken("user-123", "student")
	require.NoError(t, err)

	_, err = VerifyToken(token + "xx")
	assert.Error(t, err)

	_, err = VerifyToken("khong.phai.jwt")
	assert.Error(t, err)
}

func TestVerifyTokenExpired(t *testing.T) {
	claims := Claims{
		UserID: "user-123",
		Role:   "student",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	require.NoError(t, err)

	_, err = VerifyToken(signed)
	assert.Error(t, err)
}

func TestVerifyTokenWrongAlgorithm(t *testing.T) {
	// Token ký bằng thuật toán khác bị từ chối
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-123"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = VerifyToken(signed)
	assert.Error(t, err)
}
