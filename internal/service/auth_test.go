package service

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/ttshop/tyrestore/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &AuthService{DB: db, JWTSecret: []byte("test-jwt"), RefreshSecret: []byte("test-refresh")}

	user, err := svc.Register(ctx, "carol", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "user", user.Role)
	require.NotEqual(t, "s3cret", user.PasswordHash)

	_, err = svc.Register(ctx, "carol", "other")
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.Register(ctx, "", "")
	require.ErrorIs(t, err, ErrValidation)

	tokens, err := svc.Login(ctx, "carol", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims := parseTestToken(t, tokens.AccessToken, "test-jwt")
	require.Equal(t, float64(user.ID), claims["sub"])
	require.Equal(t, "user", claims["role"])

	_, err = svc.Login(ctx, "carol", "wrong")
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.Login(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()
	svc := &AuthService{DB: db, JWTSecret: []byte("test-jwt"), RefreshSecret: []byte("test-refresh")}

	_, err := svc.Register(ctx, "dave", "hunter2")
	require.NoError(t, err)
	tokens, err := svc.Login(ctx, "dave", "hunter2")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The presented token is revoked, replay fails.
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrValidation)
}

func TestEnsureAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := testCtx()

	require.Error(t, EnsureAdmin(ctx, db, "admin", ""))

	require.NoError(t, EnsureAdmin(ctx, db, "admin", "bootpass"))

	var admin models.User
	require.NoError(t, db.Where("role = ?", "admin").First(&admin).Error)
	require.Equal(t, "admin", admin.Username)

	// Idempotent: a second boot does not create another admin, even with a
	// different password.
	require.NoError(t, EnsureAdmin(ctx, db, "admin2", "otherpass"))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", "admin").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func parseTestToken(t *testing.T, raw, secret string) jwt.MapClaims {
	t.Helper()
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}
