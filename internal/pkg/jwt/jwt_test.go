package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret-for-tests", time.Hour)

	token, err := svc.GenerateToken(7, "operator")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.OperatorID)
	assert.Equal(t, "operator", claims.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := New("a", time.Hour).GenerateToken(1, "admin")
	require.NoError(t, err)

	_, err = New("b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	token, err := New("a", -time.Minute).GenerateToken(1, "admin")
	require.NoError(t, err)

	_, err = New("a", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidate_RejectsOtherAlgorithmsAndIssuers(t *testing.T) {
	svc := New("a", time.Hour)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{OperatorID: 1, Role: "admin",
		RegisteredClaims: jwtlib.RegisteredClaims{Issuer: issuer}}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{OperatorID: 1, Role: "admin",
		RegisteredClaims: jwtlib.RegisteredClaims{Issuer: "someone-else"}}).SignedString([]byte("a"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RequiresOperator(t *testing.T) {
	svc := New("a", time.Hour)
	token, err := svc.GenerateToken(0, "viewer")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrNoOperator)
}

func TestValidate_ExpiryUsesClock(t *testing.T) {
	svc := New("a", time.Minute)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	token, err := svc.GenerateToken(3, "operator")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(30 * time.Second) }
	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
