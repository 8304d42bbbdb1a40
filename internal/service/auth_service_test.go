package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/workorder-api/internal/models"
	"github.com/fleetworks/workorder-api/internal/repository"
	appErrors "github.com/fleetworks/workorder-api/pkg/errors"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewAuthService(store.Users(), NewValidator(), nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "workorder-api",
	})
	require.NoError(t, svc.EnsureBootstrapStaff(context.Background(), "staff@example.com", "changeme"))
	return svc
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newAuthService(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "changeme"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "staff@example.com", res.User.Email)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "staff@example.com", claims.Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "changeme"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRequiresEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Password: "changeme"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceBootstrapIsIdempotent(t *testing.T) {
	svc := newAuthService(t)

	require.NoError(t, svc.EnsureBootstrapStaff(context.Background(), "staff@example.com", "other"))

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "changeme"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}
