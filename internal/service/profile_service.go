package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/session"
	"backend/internal/websocket"
)

// --- DTOs ---

type UpdateProfileRequest struct {
	DisplayName    string `json:"display_name"`
	BranchCode     string `json:"branch_code"`
	DepartmentCode string `json:"department_code"`
}

type CompleteProfileRequest struct {
	DisplayName    string `json:"display_name" binding:"required"`
	ProvinceID     string `json:"province_id" binding:"required"`
	BranchCode     string `json:"branch_code" binding:"required"`
	DepartmentCode string `json:"department_code"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

type UpdateProvincesRequest struct {
	ProvinceIDs []string `json:"province_ids" binding:"required"`
}

type SwitchProvinceRequest struct {
	ProvinceID string `json:"province_id" binding:"required"`
}

type ProfileResponse struct {
	ID                    string             `json:"id"`
	AccountID             string             `json:"account_id"`
	DisplayName           string             `json:"display_name"`
	Email                 string             `json:"email"`
	Role                  string             `json:"role"`
	PermissionOverrides   []string           `json:"permission_overrides"`
	ProvinceID            string             `json:"province_id"`
	AccessibleProvinceIDs []string           `json:"accessible_province_ids"`
	EmployeeInfo          model.EmployeeInfo `json:"employee_info"`
	IsProfileComplete     bool               `json:"is_profile_complete"`
	Active                bool               `json:"active"`
	CreatedAt             string             `json:"created_at"`
}

// MeResponse extends the profile with everything a freshly-loaded client
// shell needs: the effective permission set and the accessible org subsets.
type MeResponse struct {
	Profile              ProfileResponse `json:"profile"`
	Permissions          []string        `json:"permissions"`
	AccessibleProvinces  []string        `json:"accessible_provinces"`
	AccessibleBranches   []string        `json:"accessible_branches"`
	CurrentProvince      string          `json:"current_province"`
	PrivilegeLevel       int             `json:"privilege_level"`
}

// --- Interface ---

type ProfileService interface {
	Me(ctx context.Context, profile *model.UserProfile, currentProvince string) (*MeResponse, error)
	UpdateProfile(ctx context.Context, accountID string, req UpdateProfileRequest) (*ProfileResponse, error)
	CompleteOnboarding(ctx context.Context, accountID, email string, req CompleteProfileRequest) (*ProfileResponse, error)
	UpdateRole(ctx context.Context, actor *model.UserProfile, profileID string, req UpdateRoleRequest) (*ProfileResponse, error)
	UpdatePermissions(ctx context.Context, actor *model.UserProfile, profileID string, req UpdatePermissionsRequest) (*ProfileResponse, error)
	UpdateAccessibleProvinces(ctx context.Context, actor *model.UserProfile, profileID string, req UpdateProvincesRequest) (*ProfileResponse, error)
	ValidateProvinceSwitch(profile *model.UserProfile, provinceID string) error
}

type profileService struct {
	profiles repository.ProfileRepository
	org      repository.OrgRepository
	audit    repository.AuditRepository
	hub      *websocket.Hub
}

// NewProfileService returns a new instance of ProfileService
func NewProfileService(profiles repository.ProfileRepository, org repository.OrgRepository, audit repository.AuditRepository, hub *websocket.Hub) ProfileService {
	return &profileService{profiles: profiles, org: org, audit: audit, hub: hub}
}

// --- Helpers ---

func toProfileResponse(p *model.UserProfile) ProfileResponse {
	overrides := p.PermissionOverrides
	if overrides == nil {
		overrides = []string{}
	}
	accessible := p.AccessibleProvinceIDs
	if accessible == nil {
		accessible = []string{}
	}
	return ProfileResponse{
		ID:                    p.ID.String(),
		AccountID:             p.AccountID,
		DisplayName:           p.DisplayName,
		Email:                 p.Email,
		Role:                  p.Role,
		PermissionOverrides:   overrides,
		ProvinceID:            p.ProvinceID,
		AccessibleProvinceIDs: accessible,
		EmployeeInfo:          p.EmployeeInfo,
		IsProfileComplete:     p.IsProfileComplete,
		Active:                p.Active,
		CreatedAt:             p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// recordAudit serializes details and appends the audit row. Audit failures
// are surfaced: administrative changes must not happen silently.
func (s *profileService) recordAudit(ctx context.Context, actor *model.UserProfile, action, entityID, entityName string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to serialize audit details: %w", err)
	}
	entry := &model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if actor != nil {
		id := actor.ID
		entry.ProfileID = &id
	}
	return s.audit.Log(ctx, entry)
}

func (s *profileService) notifyProfileChanged(accountID string) {
	if s.hub != nil {
		s.hub.Publish(websocket.Event{Type: websocket.EventProfileUpdated, AccountID: accountID})
	}
}

// --- Implementation ---

func (s *profileService) Me(ctx context.Context, profile *model.UserProfile, currentProvince string) (*MeResponse, error) {
	if profile == nil {
		return nil, errors.New("no profile in session")
	}

	provinces, err := s.org.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	branches, err := s.org.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}

	effective := authz.EffectivePermissions(profile)
	perms := make([]string, 0, len(effective))
	for p := range effective {
		perms = append(perms, string(p))
	}

	accessibleProvinces := authz.AccessibleProvinces(profile, provinces)
	provinceIDs := make([]string, 0, len(accessibleProvinces))
	for id := range accessibleProvinces {
		provinceIDs = append(provinceIDs, id)
	}

	accessibleBranches := authz.AccessibleBranches(profile, branches, provinces)
	branchCodes := make([]string, 0, len(accessibleBranches))
	for code := range accessibleBranches {
		branchCodes = append(branchCodes, code)
	}

	if currentProvince == "" {
		currentProvince = profile.ProvinceID
	}

	return &MeResponse{
		Profile:             toProfileResponse(profile),
		Permissions:         perms,
		AccessibleProvinces: provinceIDs,
		AccessibleBranches:  branchCodes,
		CurrentProvince:     currentProvince,
		PrivilegeLevel:      authz.PrivilegeLevel(authz.ParseRole(profile.Role)),
	}, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, accountID string, req UpdateProfileRequest) (*ProfileResponse, error) {
	profile, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil || profile == nil {
		return nil, errors.New("profile not found")
	}

	fields := map[string]interface{}{}
	if req.DisplayName != "" {
		fields["display_name"] = req.DisplayName
	}
	if req.BranchCode != "" {
		fields["employee_branch_code"] = req.BranchCode
	}
	if req.DepartmentCode != "" {
		fields["employee_department_code"] = req.DepartmentCode
	}
	if len(fields) > 0 {
		if err := s.profiles.UpdateFields(ctx, profile.ID.String(), fields); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	updated, err := s.profiles.GetByID(ctx, profile.ID.String())
	if err != nil {
		return nil, errors.New("profile not found")
	}
	s.notifyProfileChanged(accountID)
	resp := toProfileResponse(updated)
	return &resp, nil
}

// CompleteOnboarding persists the guest profile synthesized at first sign-in.
// Until this call, nothing is stored for the account.
func (s *profileService) CompleteOnboarding(ctx context.Context, accountID, email string, req CompleteProfileRequest) (*ProfileResponse, error) {
	provinces, err := s.org.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	if _, ok := provinces[req.ProvinceID]; !ok {
		return nil, fmt.Errorf("unknown province '%s'", req.ProvinceID)
	}

	existing, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile *model.UserProfile
	if existing == nil {
		p := session.DefaultProfile(accountID, email)
		p.DisplayName = req.DisplayName
		p.ProvinceID = req.ProvinceID
		p.EmployeeInfo = model.EmployeeInfo{BranchCode: req.BranchCode, DepartmentCode: req.DepartmentCode}
		p.IsProfileComplete = true
		if err := s.profiles.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		profile = &p
	} else {
		fields := map[string]interface{}{
			"display_name":             req.DisplayName,
			"province_id":              req.ProvinceID,
			"employee_branch_code":     req.BranchCode,
			"employee_department_code": req.DepartmentCode,
			"is_profile_complete":      true,
		}
		if err := s.profiles.UpdateFields(ctx, existing.ID.String(), fields); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		profile, err = s.profiles.GetByID(ctx, existing.ID.String())
		if err != nil {
			return nil, errors.New("profile not found")
		}
	}

	if err := s.recordAudit(ctx, profile, model.ActionCompleteProfile, profile.ID.String(), profile.DisplayName, map[string]interface{}{
		"province_id": req.ProvinceID,
		"branch_code": req.BranchCode,
	}); err != nil {
		return nil, err
	}

	s.notifyProfileChanged(accountID)
	resp := toProfileResponse(profile)
	return &resp, nil
}

// applyOverlay merges an auth overlay onto the stored record and persists the
// merged fields. Field-granular last-write-wins, never a whole-document swap.
func (s *profileService) applyOverlay(ctx context.Context, actor *model.UserProfile, profileID string, overlay *session.AuthOverlay, action string, details map[string]interface{}) (*ProfileResponse, error) {
	target, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, errors.New("profile not found")
	}

	merged := session.Merge(session.ProfileRecord{Base: target, Auth: overlay})

	fields := map[string]interface{}{}
	if overlay.Role != nil {
		fields["role"] = merged.Role
	}
	if overlay.PermissionOverrides != nil {
		fields["permission_overrides"] = merged.PermissionOverrides
	}
	if overlay.AccessibleProvinceIDs != nil {
		fields["accessible_province_ids"] = merged.AccessibleProvinceIDs
	}
	if err := s.profiles.UpdateFields(ctx, profileID, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := s.recordAudit(ctx, actor, action, profileID, target.DisplayName, details); err != nil {
		return nil, err
	}

	s.notifyProfileChanged(target.AccountID)

	updated, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, errors.New("profile not found")
	}
	resp := toProfileResponse(updated)
	return &resp, nil
}

func (s *profileService) UpdateRole(ctx context.Context, actor *model.UserProfile, profileID string, req UpdateRoleRequest) (*ProfileResponse, error) {
	if string(authz.ParseRole(req.Role)) != req.Role {
		return nil, fmt.Errorf("invalid role '%s'", req.Role)
	}
	role := req.Role
	return s.applyOverlay(ctx, actor, profileID, &session.AuthOverlay{Role: &role}, model.ActionChangeRole, map[string]interface{}{
		"role": role,
	})
}

func (s *profileService) UpdatePermissions(ctx context.Context, actor *model.UserProfile, profileID string, req UpdatePermissionsRequest) (*ProfileResponse, error) {
	known := make(map[string]bool, len(authz.AllPermissions))
	for _, p := range authz.AllPermissions {
		known[string(p)] = true
	}
	for _, p := range req.Permissions {
		if !known[p] {
			return nil, fmt.Errorf("unknown permission '%s'", p)
		}
	}

	perms := req.Permissions
	if perms == nil {
		perms = []string{}
	}
	return s.applyOverlay(ctx, actor, profileID, &session.AuthOverlay{PermissionOverrides: perms}, model.ActionChangePermissions, map[string]interface{}{
		"permissions": perms,
	})
}

func (s *profileService) UpdateAccessibleProvinces(ctx context.Context, actor *model.UserProfile, profileID string, req UpdateProvincesRequest) (*ProfileResponse, error) {
	provinces, err := s.org.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	// The accessible set must stay a subset of the known provinces.
	for _, id := range req.ProvinceIDs {
		if _, ok := provinces[id]; !ok {
			return nil, fmt.Errorf("unknown province '%s'", id)
		}
	}

	ids := req.ProvinceIDs
	if ids == nil {
		ids = []string{}
	}
	return s.applyOverlay(ctx, actor, profileID, &session.AuthOverlay{AccessibleProvinceIDs: ids}, model.ActionChangeProvinces, map[string]interface{}{
		"province_ids": ids,
	})
}

// ValidateProvinceSwitch enforces the switch rule for the HTTP API: the
// target must already be accessible. The stored accessible list is never
// touched by switching.
func (s *profileService) ValidateProvinceSwitch(profile *model.UserProfile, provinceID string) error {
	if profile == nil {
		return session.ErrNotAuthenticated
	}
	if !authz.HasProvinceAccess(profile, provinceID) {
		return session.ErrAccessDenied
	}
	return nil
}
