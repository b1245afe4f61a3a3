package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"
)

var ErrUserNotFound = errors.New("user not found")

// UserService is the admin-facing user directory. Everything it returns is
// filtered through the developer-tier visibility mask, so callers below
// developer privilege never see masked accounts, not even by direct id.
type UserService interface {
	ListUsers(ctx context.Context, viewer *model.UserProfile, page, limit int) ([]ProfileResponse, int64, error)
	GetUser(ctx context.Context, viewer *model.UserProfile, profileID string) (*ProfileResponse, error)
	DeactivateUser(ctx context.Context, actor *model.UserProfile, profileID string) error
	ReactivateUser(ctx context.Context, actor *model.UserProfile, profileID string) error
}

type userService struct {
	profiles repository.ProfileRepository
	tokens   repository.RefreshTokenRepository
	audit    repository.AuditRepository
	hub      *websocket.Hub
}

// NewUserService returns a new instance of UserService
func NewUserService(profiles repository.ProfileRepository, tokens repository.RefreshTokenRepository, audit repository.AuditRepository, hub *websocket.Hub) UserService {
	return &userService{profiles: profiles, tokens: tokens, audit: audit, hub: hub}
}

func (s *userService) ListUsers(ctx context.Context, viewer *model.UserProfile, page, limit int) ([]ProfileResponse, int64, error) {
	users, total, err := s.profiles.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]ProfileResponse, 0, len(users))
	var hidden int64
	for i := range users {
		if authz.ShouldHideUserFromView(viewer, &users[i]) {
			hidden++
			continue
		}
		out = append(out, toProfileResponse(&users[i]))
	}
	// The reported total excludes masked rows so pagination stays consistent
	// with what the viewer can actually see.
	return out, total - hidden, nil
}

func (s *userService) GetUser(ctx context.Context, viewer *model.UserProfile, profileID string) (*ProfileResponse, error) {
	target, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	// Masked profiles are reported as absent, not forbidden.
	if authz.ShouldHideUserFromView(viewer, target) {
		return nil, ErrUserNotFound
	}
	resp := toProfileResponse(target)
	return &resp, nil
}

func (s *userService) setActive(ctx context.Context, actor *model.UserProfile, profileID string, active bool, action string) error {
	target, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return ErrUserNotFound
	}
	if authz.ShouldHideUserFromView(actor, target) {
		return ErrUserNotFound
	}

	if err := s.profiles.UpdateFields(ctx, profileID, map[string]interface{}{"active": active}); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if !active {
		// Revoke sessions so a deactivated user cannot refresh back in.
		if err := s.tokens.DeleteForProfile(ctx, profileID); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
	}

	entry := &model.AuditLog{
		Action:     action,
		EntityID:   profileID,
		EntityName: target.DisplayName,
		Details:    fmt.Sprintf(`{"active":%t}`, active),
	}
	if actor != nil {
		id := actor.ID
		entry.ProfileID = &id
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.Publish(websocket.Event{Type: websocket.EventProfileUpdated, AccountID: target.AccountID})
	}
	return nil
}

func (s *userService) DeactivateUser(ctx context.Context, actor *model.UserProfile, profileID string) error {
	return s.setActive(ctx, actor, profileID, false, model.ActionDeactivateProfile)
}

func (s *userService) ReactivateUser(ctx context.Context, actor *model.UserProfile, profileID string) error {
	return s.setActive(ctx, actor, profileID, true, model.ActionReactivateProfile)
}
