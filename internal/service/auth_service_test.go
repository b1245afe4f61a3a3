package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/model"
	"backend/internal/service"
)

func newActiveProfile(email, password string) *model.UserProfile {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &model.UserProfile{
		ID:        uuid.New(),
		AccountID: "acc-" + email,
		Email:     email,
		Password:  string(hash),
		Role:      "user",
		Active:    true,
	}
}

func TestLoginIssuesAccessAndRefreshTokens(t *testing.T) {
	t.Parallel()

	profile := newActiveProfile("lan@corp.example", "s3cret")
	profiles := newStubProfileRepo(profile)
	tokens := newStubTokenRepo()
	svc := service.NewAuthService(profiles, tokens)

	resp, err := svc.Login(context.Background(), service.LoginRequest{Email: "lan@corp.example", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotEmpty(t, resp.RefreshToken)

	stored, ok := tokens.tokens[resp.RefreshToken]
	require.True(t, ok, "refresh token must be persisted")
	assert.Equal(t, profile.ID, stored.ProfileID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	profiles := newStubProfileRepo(newActiveProfile("lan@corp.example", "s3cret"))
	svc := service.NewAuthService(profiles, newStubTokenRepo())

	_, err := svc.Login(context.Background(), service.LoginRequest{Email: "lan@corp.example", Password: "wrong"})
	assert.EqualError(t, err, "invalid email or password")
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	t.Parallel()

	profile := newActiveProfile("lan@corp.example", "s3cret")
	profile.Active = false
	svc := service.NewAuthService(newStubProfileRepo(profile), newStubTokenRepo())

	_, err := svc.Login(context.Background(), service.LoginRequest{Email: "lan@corp.example", Password: "s3cret"})
	assert.EqualError(t, err, "account is deactivated")
}

func TestRefreshTokenRotatesOldToken(t *testing.T) {
	t.Parallel()

	profile := newActiveProfile("lan@corp.example", "s3cret")
	profiles := newStubProfileRepo(profile)
	old := &model.RefreshToken{
		ProfileID: profile.ID,
		Token:     "old-refresh",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tokens := newStubTokenRepo(old)
	svc := service.NewAuthService(profiles, tokens)

	resp, err := svc.RefreshToken(context.Background(), service.RefreshTokenRequest{RefreshToken: "old-refresh"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-refresh", resp.RefreshToken)
	assert.Contains(t, tokens.deleted, "old-refresh", "used refresh token must be consumed")

	_, err = svc.RefreshToken(context.Background(), service.RefreshTokenRequest{RefreshToken: "old-refresh"})
	assert.EqualError(t, err, "invalid refresh token", "a consumed token must not be reusable")
}

func TestRefreshTokenExpired(t *testing.T) {
	t.Parallel()

	profile := newActiveProfile("lan@corp.example", "s3cret")
	tokens := newStubTokenRepo(&model.RefreshToken{
		ProfileID: profile.ID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	svc := service.NewAuthService(newStubProfileRepo(profile), tokens)

	_, err := svc.RefreshToken(context.Background(), service.RefreshTokenRequest{RefreshToken: "stale"})
	assert.EqualError(t, err, "refresh token expired")
	assert.Contains(t, tokens.deleted, "stale")
}

func TestLogoutDeletesRefreshToken(t *testing.T) {
	t.Parallel()

	tokens := newStubTokenRepo(&model.RefreshToken{Token: "live", ExpiresAt: time.Now().Add(time.Hour)})
	svc := service.NewAuthService(newStubProfileRepo(), tokens)

	require.NoError(t, svc.Logout(context.Background(), "live"))
	assert.Empty(t, tokens.tokens)
	require.NoError(t, svc.Logout(context.Background(), ""), "blank token logout is a no-op")
}
