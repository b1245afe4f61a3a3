package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/model"
	"backend/internal/repository"
)

// DTOs for Request validation
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// AuthService handles credential checks and token issuance
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	profiles repository.ProfileRepository
	tokens   repository.RefreshTokenRepository
}

// NewAuthService returns a new instance of AuthService
func NewAuthService(profiles repository.ProfileRepository, tokens repository.RefreshTokenRepository) AuthService {
	return &authService{profiles: profiles, tokens: tokens}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	return []byte(secret)
}

// mintAccessToken signs the HS256 access token carrying the account subject.
func mintAccessToken(profile *model.UserProfile) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   profile.AccountID,
		"email": profile.Email,
		"role":  profile.Role,
		"exp":   time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func (s *authService) issueTokens(ctx context.Context, profile *model.UserProfile) (*TokenResponse, error) {
	accessToken, err := mintAccessToken(profile)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh := &model.RefreshToken{
		ProfileID: profile.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &TokenResponse{Token: accessToken, RefreshToken: refresh.Token}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	profile, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !profile.Active {
		return nil, errors.New("account is deactivated")
	}

	return s.issueTokens(ctx, profile)
}

// RefreshToken rotates the refresh token: the presented token is consumed and
// replaced alongside a fresh access token.
func (s *authService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.tokens.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokens.Delete(ctx, stored.Token)
		return nil, errors.New("refresh token expired")
	}

	profile, err := s.profiles.GetByID(ctx, stored.ProfileID.String())
	if err != nil {
		return nil, errors.New("profile not found")
	}
	if !profile.Active {
		return nil, errors.New("account is deactivated")
	}

	if err := s.tokens.Delete(ctx, stored.Token); err != nil {
		return nil, errors.New("failed to rotate refresh token")
	}

	return s.issueTokens(ctx, profile)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Delete(ctx, refreshToken)
}
