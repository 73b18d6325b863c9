package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/pkg/config"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

func authFixture(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(config.AuthConfig{
		PasswordHash: string(hash),
		JWTSecret:    "test_secret",
		Expiration:   time.Hour,
	}, nil, zap.NewNop())
}

func TestAuthLoginAndValidate(t *testing.T) {
	auth := authFixture(t, "hunter2")

	token, err := auth.Login(dto.LoginRequest{Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	claims, err := auth.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
}

func TestAuthLoginRejectsWrongPassword(t *testing.T) {
	auth := authFixture(t, "hunter2")

	_, err := auth.Login(dto.LoginRequest{Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestAuthValidateRejectsGarbage(t *testing.T) {
	auth := authFixture(t, "hunter2")

	_, err := auth.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestAuthDisabledWithoutHash(t *testing.T) {
	auth := NewAuthService(config.AuthConfig{JWTSecret: "x", Expiration: time.Hour}, nil, zap.NewNop())
	assert.False(t, auth.Enabled())

	_, err := auth.Login(dto.LoginRequest{Password: "anything"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
