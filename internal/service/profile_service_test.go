package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/model"
	"backend/internal/service"
	"backend/internal/session"
	"backend/internal/websocket"
)

func orgFixture() *stubOrgRepo {
	return &stubOrgRepo{
		provinces: map[string]model.Province{
			"NMA": {ID: "NMA", Name: "North Main", Region: "north", Active: true},
			"SKA": {ID: "SKA", Name: "South Key", Region: "south", Active: true},
		},
		branches: map[string]model.Branch{
			"NMA-01": {Code: "NMA-01", Name: "North 1", ProvinceID: "NMA", Active: true},
			"SKA-01": {Code: "SKA-01", Name: "South 1", ProvinceID: "SKA", Active: true},
		},
		departments: map[string]model.Department{
			"OPS": {Code: "OPS", Name: "Operations", Active: true},
		},
	}
}

func TestCompleteOnboardingCreatesGuestProfile(t *testing.T) {
	t.Parallel()

	profiles := newStubProfileRepo()
	audit := &stubAuditRepo{}
	hub := websocket.NewHub()
	var published []websocket.Event
	hub.Subscribe("acc-new", func(e websocket.Event) { published = append(published, e) })

	svc := service.NewProfileService(profiles, orgFixture(), audit, hub)

	resp, err := svc.CompleteOnboarding(context.Background(), "acc-new", "new@corp.example", service.CompleteProfileRequest{
		DisplayName: "New Hire",
		ProvinceID:  "NMA",
		BranchCode:  "NMA-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "guest", resp.Role, "first-time profiles start as guest")
	assert.True(t, resp.IsProfileComplete)
	assert.Equal(t, "NMA", resp.ProvinceID)
	assert.Empty(t, resp.PermissionOverrides)

	require.Len(t, profiles.created, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionCompleteProfile, audit.entries[0].Action)

	require.Len(t, published, 1)
	assert.Equal(t, websocket.EventProfileUpdated, published[0].Type)
}

func TestCompleteOnboardingRejectsUnknownProvince(t *testing.T) {
	t.Parallel()

	svc := service.NewProfileService(newStubProfileRepo(), orgFixture(), &stubAuditRepo{}, nil)

	_, err := svc.CompleteOnboarding(context.Background(), "acc-new", "new@corp.example", service.CompleteProfileRequest{
		DisplayName: "New Hire",
		ProvinceID:  "ZZZ",
		BranchCode:  "NMA-01",
	})
	assert.ErrorContains(t, err, "unknown province")
}

func TestUpdateRolePersistsAndAudits(t *testing.T) {
	t.Parallel()

	actor := &model.UserProfile{ID: uuid.New(), AccountID: "acc-admin", Role: "super-admin", Active: true}
	target := &model.UserProfile{ID: uuid.New(), AccountID: "acc-target", DisplayName: "Target", Role: "user", Active: true}
	profiles := newStubProfileRepo(target)
	audit := &stubAuditRepo{}
	hub := websocket.NewHub()
	var published []websocket.Event
	hub.Subscribe("acc-target", func(e websocket.Event) { published = append(published, e) })

	svc := service.NewProfileService(profiles, orgFixture(), audit, hub)

	resp, err := svc.UpdateRole(context.Background(), actor, target.ID.String(), service.UpdateRoleRequest{Role: "branch-manager"})
	require.NoError(t, err)
	assert.Equal(t, "branch-manager", resp.Role)
	assert.Equal(t, "branch-manager", profiles.profiles[target.ID.String()].Role)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionChangeRole, audit.entries[0].Action)
	require.NotNil(t, audit.entries[0].ProfileID)
	assert.Equal(t, actor.ID, *audit.entries[0].ProfileID)

	require.Len(t, published, 1, "role changes must notify the affected account")
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	target := &model.UserProfile{ID: uuid.New(), AccountID: "acc-target", Role: "user", Active: true}
	svc := service.NewProfileService(newStubProfileRepo(target), orgFixture(), &stubAuditRepo{}, nil)

	_, err := svc.UpdateRole(context.Background(), nil, target.ID.String(), service.UpdateRoleRequest{Role: "emperor"})
	assert.ErrorContains(t, err, "invalid role")
}

func TestUpdatePermissionsValidatesAgainstCatalog(t *testing.T) {
	t.Parallel()

	target := &model.UserProfile{ID: uuid.New(), AccountID: "acc-target", Role: "user", Active: true}
	profiles := newStubProfileRepo(target)
	svc := service.NewProfileService(profiles, orgFixture(), &stubAuditRepo{}, nil)

	_, err := svc.UpdatePermissions(context.Background(), nil, target.ID.String(), service.UpdatePermissionsRequest{
		Permissions: []string{"galaxy.rule"},
	})
	assert.ErrorContains(t, err, "unknown permission")

	resp, err := svc.UpdatePermissions(context.Background(), nil, target.ID.String(), service.UpdatePermissionsRequest{
		Permissions: []string{"reports.view"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"reports.view"}, resp.PermissionOverrides)
}

func TestUpdateAccessibleProvincesMustBeKnown(t *testing.T) {
	t.Parallel()

	target := &model.UserProfile{ID: uuid.New(), AccountID: "acc-target", Role: "province-manager", Active: true}
	profiles := newStubProfileRepo(target)
	svc := service.NewProfileService(profiles, orgFixture(), &stubAuditRepo{}, nil)

	_, err := svc.UpdateAccessibleProvinces(context.Background(), nil, target.ID.String(), service.UpdateProvincesRequest{
		ProvinceIDs: []string{"NMA", "XXX"},
	})
	assert.ErrorContains(t, err, "unknown province")

	resp, err := svc.UpdateAccessibleProvinces(context.Background(), nil, target.ID.String(), service.UpdateProvincesRequest{
		ProvinceIDs: []string{"NMA", "SKA"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"NMA", "SKA"}, resp.AccessibleProvinceIDs)
}

func TestValidateProvinceSwitch(t *testing.T) {
	t.Parallel()

	svc := service.NewProfileService(newStubProfileRepo(), orgFixture(), &stubAuditRepo{}, nil)

	profile := &model.UserProfile{
		ID:                    uuid.New(),
		Role:                  "province-manager",
		ProvinceID:            "NMA",
		AccessibleProvinceIDs: []string{"NMA", "SKA"},
		Active:                true,
	}

	assert.NoError(t, svc.ValidateProvinceSwitch(profile, "SKA"))
	assert.ErrorIs(t, svc.ValidateProvinceSwitch(profile, "ETO"), session.ErrAccessDenied)
	assert.ErrorIs(t, svc.ValidateProvinceSwitch(nil, "NMA"), session.ErrNotAuthenticated)
}

func TestMeAggregatesPermissionsAndScope(t *testing.T) {
	t.Parallel()

	profile := &model.UserProfile{
		ID:                    uuid.New(),
		AccountID:             "acc-me",
		DisplayName:           "Me",
		Role:                  "branch-manager",
		PermissionOverrides:   []string{"reports.view"},
		ProvinceID:            "NMA",
		AccessibleProvinceIDs: []string{"NMA"},
		EmployeeInfo:          model.EmployeeInfo{BranchCode: "NMA-01"},
		Active:                true,
	}
	svc := service.NewProfileService(newStubProfileRepo(profile), orgFixture(), &stubAuditRepo{}, nil)

	me, err := svc.Me(context.Background(), profile, "")
	require.NoError(t, err)

	assert.Contains(t, me.Permissions, "reports.view", "overrides are part of the effective set")
	assert.ElementsMatch(t, []string{"NMA"}, me.AccessibleProvinces)
	assert.ElementsMatch(t, []string{"NMA-01"}, me.AccessibleBranches, "single-branch roles narrow to the home branch")
	assert.Equal(t, "NMA", me.CurrentProvince, "current province falls back to the home province")
}
