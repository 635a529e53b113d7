package service

import (
	"context"
	"testing"

	"papertrade/internal/entity"
	"papertrade/internal/server/config"
	"papertrade/internal/server/dto"
	"papertrade/pkg/jwtauth"
	"papertrade/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(existing ...*entity.User) (AuthService, *fakeUsers) {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Trading.InitialBalance = 1000
	users := newFakeUsers(existing...)
	return NewAuthService(cfg, users, newTestLogger()), users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with starting balance and token", func(t *testing.T) {
		svc, users := newAuthFixture()

		resp, err := svc.Register(ctx, &dto.RegisterRequest{NetID: "Alice99", FirstName: "Alice", LastName: "Stone"})
		require.NoError(t, err)
		assert.Equal(t, "alice99", resp.User.NetID)

		created, err := users.FindByNetID(ctx, "alice99")
		require.NoError(t, err)
		assert.InDelta(t, 1000, created.Balance, 1e-9)
		assert.GreaterOrEqual(t, created.AvatarID, 0)
		assert.LessOrEqual(t, created.AvatarID, 9)

		claims, err := jwtauth.ParseToken(resp.Token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, created.ID, claims.UserID)
		assert.Equal(t, "alice99", claims.NetID)
	})

	t.Run("honors an explicit avatar choice", func(t *testing.T) {
		svc, users := newAuthFixture()

		_, err := svc.Register(ctx, &dto.RegisterRequest{NetID: "bob42", AvatarID: utils.ToPointer(3)})
		require.NoError(t, err)

		created, err := users.FindByNetID(ctx, "bob42")
		require.NoError(t, err)
		assert.Equal(t, 3, created.AvatarID)
	})

	t.Run("avatar zero is a valid explicit choice", func(t *testing.T) {
		svc, users := newAuthFixture()

		_, err := svc.Register(ctx, &dto.RegisterRequest{NetID: "carol7", AvatarID: utils.ToPointer(0)})
		require.NoError(t, err)

		created, err := users.FindByNetID(ctx, "carol7")
		require.NoError(t, err)
		assert.Equal(t, 0, created.AvatarID)
	})

	t.Run("duplicate net id is rejected", func(t *testing.T) {
		svc, _ := newAuthFixture(&entity.User{ID: 1, NetID: "alice99"})
		_, err := svc.Register(ctx, &dto.RegisterRequest{NetID: "alice99"})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("malformed net id is rejected", func(t *testing.T) {
		svc, _ := newAuthFixture()
		for _, bad := range []string{"", "a", "9lice", "has space", "way-too-long-net-id-here"} {
			_, err := svc.Register(ctx, &dto.RegisterRequest{NetID: bad})
			assert.ErrorIs(t, err, ErrValidation, bad)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token and records login time", func(t *testing.T) {
		user := &entity.User{ID: 1, NetID: "alice99", IsActive: true}
		svc, users := newAuthFixture(user)

		resp, err := svc.Login(ctx, "ALICE99")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.False(t, users.users[1].LastLoginAt.IsZero())
	})

	t.Run("unknown net id fails", func(t *testing.T) {
		svc, _ := newAuthFixture()
		_, err := svc.Login(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("disabled account cannot log in", func(t *testing.T) {
		svc, _ := newAuthFixture(&entity.User{ID: 1, NetID: "alice99", IsActive: false})
		_, err := svc.Login(ctx, "alice99")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(&entity.User{ID: 1, NetID: "alice99", Balance: 1234.5, IsActive: true})

	profile, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, profile.Balance, 1e-9)

	_, err = svc.GetProfile(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
