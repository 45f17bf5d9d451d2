package service

import (
	"context"
	"testing"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/config"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc   *authService
	users *stubUserRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 24,
		JWTRefreshHours:    168,
	}
	svc := NewAuthService(users, cfg).(*authService)
	return &authFixture{svc: svc, users: users}
}

// seedUser inserts a user directly; MinCost keeps the hashing fast in tests.
func (f *authFixture) seedUser(t *testing.T, userid, password string, active, isAdmin bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		UserID:       userid,
		Email:        userid + "@example.com",
		FullName:     "Sato Hanako",
		Department:   model.DeptSales,
		PasswordHash: string(hash),
		IsActive:     active,
		IsAdmin:      isAdmin,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	t.Run("issues tokens and records the login time", func(t *testing.T) {
		f := newAuthFixture(t)
		f.seedUser(t, "hanako", "secret-pass", true, false)

		resp, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "secret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, 24*3600, resp.ExpiresIn)
		assert.NotNil(t, resp.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.seedUser(t, "hanako", "secret-pass", true, false)
		_, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "ghost", Password: "secret-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated user cannot log in", func(t *testing.T) {
		f := newAuthFixture(t)
		f.seedUser(t, "hanako", "secret-pass", false, false)
		_, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "secret-pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("round-trip issues a fresh token pair", func(t *testing.T) {
		f := newAuthFixture(t)
		f.seedUser(t, "hanako", "secret-pass", true, false)

		login, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "secret-pass"})
		require.NoError(t, err)

		refreshed, err := f.svc.Refresh(context.Background(), login.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.Equal(t, "hanako", refreshed.User.UserID)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Refresh(context.Background(), "not-a-token")
		assert.Error(t, err)
	})

	t.Run("rejects tokens of deactivated users", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "secret-pass", true, false)

		login, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "secret-pass"})
		require.NoError(t, err)

		require.NoError(t, f.users.SoftDelete(context.Background(), u.ID))
		_, err = f.svc.Refresh(context.Background(), login.RefreshToken)
		assert.Error(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("rejects a wrong current password", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "old-password", true, false)

		err := f.svc.ChangePassword(context.Background(), model.ActorFromUser(u), dto.ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "new-password-1",
		})
		var ve *apierror.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "current_password", ve.Field)
	})

	t.Run("new password takes effect", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "old-password", true, false)

		err := f.svc.ChangePassword(context.Background(), model.ActorFromUser(u), dto.ChangePasswordRequest{
			CurrentPassword: "old-password",
			NewPassword:     "new-password-1",
		})
		require.NoError(t, err)

		_, err = f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "old-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "new-password-1"})
		assert.NoError(t, err)
	})
}

func TestUserManagement(t *testing.T) {
	t.Run("create requires administrator", func(t *testing.T) {
		f := newAuthFixture(t)
		req := dto.CreateUserRequest{UserID: "taro", Email: "taro@example.com", Password: "password-1"}

		_, err := f.svc.CreateUser(context.Background(), member(), req)
		assert.ErrorIs(t, err, apierror.ErrForbidden)

		resp, err := f.svc.CreateUser(context.Background(), admin(), req)
		require.NoError(t, err)
		assert.Equal(t, "taro", resp.UserID)
		assert.True(t, resp.IsActive)
	})

	t.Run("full name is composed from the parts", func(t *testing.T) {
		f := newAuthFixture(t)
		first, last := "Taro", "Yamada"
		resp, err := f.svc.CreateUser(context.Background(), admin(), dto.CreateUserRequest{
			UserID:    "taro",
			Email:     "taro@example.com",
			Password:  "password-1",
			FirstName: &first,
			LastName:  &last,
		})
		require.NoError(t, err)
		assert.Equal(t, "Yamada Taro", resp.FullName)
	})

	t.Run("self-update of profile fields is allowed", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "secret-pass", true, false)

		email := "hanako.sato@example.com"
		resp, err := f.svc.UpdateUser(context.Background(), model.ActorFromUser(u), u.ID, dto.UpdateUserRequest{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, email, resp.Email)
	})

	t.Run("self-update cannot grant privilege flags", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "secret-pass", true, false)

		grant := true
		_, err := f.svc.UpdateUser(context.Background(), model.ActorFromUser(u), u.ID, dto.UpdateUserRequest{IsAdmin: &grant})
		assert.ErrorIs(t, err, apierror.ErrForbidden)
	})

	t.Run("updating another user requires administrator", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "secret-pass", true, false)
		other := f.seedUser(t, "taro", "secret-pass", true, false)

		dept := model.DeptEngineering
		_, err := f.svc.UpdateUser(context.Background(), model.ActorFromUser(u), other.ID, dto.UpdateUserRequest{Department: &dept})
		assert.ErrorIs(t, err, apierror.ErrForbidden)
	})

	t.Run("deactivate and reactivate are admin-gated", func(t *testing.T) {
		f := newAuthFixture(t)
		u := f.seedUser(t, "hanako", "secret-pass", true, false)

		assert.ErrorIs(t, f.svc.DeactivateUser(context.Background(), member(), u.ID), apierror.ErrForbidden)
		require.NoError(t, f.svc.DeactivateUser(context.Background(), admin(), u.ID))

		got, err := f.svc.GetUser(context.Background(), u.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		require.NoError(t, f.svc.ReactivateUser(context.Background(), admin(), u.ID))
		got, err = f.svc.GetUser(context.Background(), u.ID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
	})

	t.Run("inactive users are hidden unless requested", func(t *testing.T) {
		f := newAuthFixture(t)
		f.seedUser(t, "hanako", "secret-pass", true, false)
		f.seedUser(t, "taro", "secret-pass", false, false)

		visible, err := f.svc.ListUsers(context.Background(), false)
		require.NoError(t, err)
		assert.Len(t, visible, 1)

		all, err := f.svc.ListUsers(context.Background(), true)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

// Token expiry honors the configured lifetime.
func TestTokenExpiry(t *testing.T) {
	f := newAuthFixture(t)
	f.seedUser(t, "hanako", "secret-pass", true, false)

	f.svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	login, err := f.svc.Login(context.Background(), dto.LoginRequest{UserID: "hanako", Password: "secret-pass"})
	require.NoError(t, err)

	f.svc.now = time.Now
	// The 24h access token has lapsed; the 168h refresh token has not.
	_, err = f.svc.Refresh(context.Background(), login.AccessToken)
	assert.Error(t, err)
	_, err = f.svc.Refresh(context.Background(), login.RefreshToken)
	assert.NoError(t, err)
}
