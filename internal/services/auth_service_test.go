package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"casasmart/internal/authz"
	"casasmart/internal/models"
	"casasmart/internal/repositories/memstore"
)

const testSecret = "test-secret"

func newAuthService() *AuthService {
	return NewAuthService(memstore.New().Users(), testSecret, time.Hour, zap.NewNop())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	s := newAuthService()
	ctx := context.Background()

	u, err := s.Register(ctx, models.RegisterRequest{
		Email: " Sara@Example.com ", Password: "s3cret-pass", Name: "Sara", Phone: "0598904919",
	})
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", u.Email)
	assert.Equal(t, authz.RoleCustomer, u.RoleID)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	token, logged, err := s.Login(ctx, "SARA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	claims, err := authz.ParseToken([]byte(testSecret), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, authz.RoleCustomer, claims.RoleID)
	assert.Equal(t, "0598904919", claims.Phone)

	_, _, err = s.Login(ctx, "sara@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := s.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, me.Email)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	s := newAuthService()
	ctx := context.Background()
	cases := map[string]models.RegisterRequest{
		"email":    {Email: "not-an-email", Password: "longenough", Phone: "0598904919"},
		"password": {Email: "a@b.co", Password: "short", Phone: "0598904919"},
		"phone":    {Email: "a@b.co", Password: "longenough", Phone: "n/a"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(ctx, req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, name, ve.Field)
		})
	}

	_, err := s.CreateUser(ctx, models.RegisterRequest{Email: "a@b.co", Password: "longenough", Phone: "0598904919"}, 99)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_DuplicateEmail(t *testing.T) {
	s := newAuthService()
	ctx := context.Background()
	req := models.RegisterRequest{Email: "a@b.co", Password: "longenough", Phone: "0598904919"}
	_, err := s.Register(ctx, req)
	require.NoError(t, err)

	req.Email = "A@B.CO"
	_, err = s.Register(ctx, req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	s := newAuthService()
	ctx := context.Background()

	require.NoError(t, s.EnsureAdmin(ctx, "", "", ""))
	require.NoError(t, s.EnsureAdmin(ctx, "admin@casasmart.sa", "admin-pass", ""))
	// повторный старт ничего не меняет
	require.NoError(t, s.EnsureAdmin(ctx, "admin@casasmart.sa", "other-pass", ""))

	_, u, err := s.Login(ctx, "admin@casasmart.sa", "admin-pass")
	require.NoError(t, err)
	assert.True(t, authz.IsAdmin(u.RoleID))
}
