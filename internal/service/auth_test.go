package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register("cook@example.com", "cook", "Ada", "Lovelace", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cook", claims.Username)

	loginToken, err := svc.Login("cook@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register("cook@example.com", "cook", "Ada", "Lovelace", "supersecret")
	require.NoError(t, err)

	_, err = svc.Register("cook@example.com", "cook2", "Grace", "Hopper", "othersecret")
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register("cook@example.com", "cook", "Ada", "Lovelace", "supersecret")
	require.NoError(t, err)

	_, err = svc.Login("cook@example.com", "wrong")
	assert.Error(t, err)

	_, err = svc.Login("nobody@example.com", "supersecret")
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, "test-secret")
	other := NewAuthService(db, "other-secret")

	token, err := svc.Register("cook@example.com", "cook", "Ada", "Lovelace", "supersecret")
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
