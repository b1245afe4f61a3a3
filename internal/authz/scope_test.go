package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/authz"
	"backend/internal/model"
)

func fixtureProvinces() map[string]model.Province {
	return map[string]model.Province{
		"NMA": {ID: "NMA", Name: "North Mara", Region: "north", Active: true},
		"SKA": {ID: "SKA", Name: "South Kivara", Region: "south", Active: true},
		"ETO": {ID: "ETO", Name: "East Toro", Region: "east", Active: false},
	}
}

func fixtureBranches() map[string]model.Branch {
	return map[string]model.Branch{
		"NMA-01": {Code: "NMA-01", Name: "Mara Central", ProvinceID: "NMA", Active: true},
		"NMA-02": {Code: "NMA-02", Name: "Mara North", ProvinceID: "NMA", Active: false},
		"SKA-01": {Code: "SKA-01", Name: "Kivara Main", ProvinceID: "SKA", Active: true},
		"ETO-01": {Code: "ETO-01", Name: "Toro Depot", ProvinceID: "ETO", Active: true},
	}
}

func TestAccessibleProvinces_FiltersByAccessibleList(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{
		Role:                  "province-manager",
		ProvinceID:            "NMA",
		AccessibleProvinceIDs: []string{"NMA", "SKA"},
	}

	got := authz.AccessibleProvinces(p, fixtureProvinces())
	assert.Len(t, got, 2)
	assert.Contains(t, got, "NMA")
	assert.Contains(t, got, "SKA")
	assert.NotContains(t, got, "ETO")
}

func TestAccessibleProvinces_OrgWideScopeSeesAll(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{Role: "executive", AccessibleProvinceIDs: []string{"NMA"}}

	got := authz.AccessibleProvinces(p, fixtureProvinces())
	assert.Len(t, got, 3, "org-wide scope permission returns every province")
	// Inactive provinces are still visible; deactivation is enforced elsewhere.
	assert.Contains(t, got, "ETO")
}

func TestAccessibleProvinces_HomeProvinceFallback(t *testing.T) {
	t.Parallel()

	// Pre-accessible-list profile: empty list, home province set.
	p := &model.UserProfile{Role: "user", ProvinceID: "NMA"}

	got := authz.AccessibleProvinces(p, fixtureProvinces())
	require.Len(t, got, 1)
	assert.Contains(t, got, "NMA")
}

func TestAccessibleProvinces_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	all := fixtureProvinces()
	p := &model.UserProfile{Role: "user", AccessibleProvinceIDs: []string{"SKA"}}

	first := authz.AccessibleProvinces(p, all)
	second := authz.AccessibleProvinces(p, all)
	assert.Equal(t, first, second)
	assert.Len(t, all, 3, "input map must be untouched")

	assert.Empty(t, authz.AccessibleProvinces(nil, all))
}

func TestAccessibleBranches_SingleBranchRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role string
	}{{"user"}, {"branch-manager"}}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			t.Parallel()
			p := &model.UserProfile{
				Role:                  tt.role,
				ProvinceID:            "NMA",
				AccessibleProvinceIDs: []string{"NMA", "SKA"},
				EmployeeInfo:          model.EmployeeInfo{BranchCode: "NMA-01"},
			}

			got := authz.AccessibleBranches(p, fixtureBranches(), fixtureProvinces())
			require.Len(t, got, 1, "single-branch roles are narrowed to the home branch")
			assert.Contains(t, got, "NMA-01")
		})
	}
}

func TestAccessibleBranches_HomeBranchOutsideAccessibleProvinces(t *testing.T) {
	t.Parallel()

	// A stale assignment can leave the home branch in a province the profile
	// no longer has access to. The province scope wins: the branch selector
	// must stay a subset of the accessible provinces' branches.
	p := &model.UserProfile{
		Role:                  "user",
		ProvinceID:            "SKA",
		AccessibleProvinceIDs: []string{"SKA"},
		EmployeeInfo:          model.EmployeeInfo{BranchCode: "ETO-01"},
	}

	got := authz.AccessibleBranches(p, fixtureBranches(), fixtureProvinces())
	assert.Empty(t, got)
}

func TestAccessibleBranches_ProvinceScopedRoles(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{
		Role:                  "province-manager",
		ProvinceID:            "NMA",
		AccessibleProvinceIDs: []string{"NMA"},
		EmployeeInfo:          model.EmployeeInfo{BranchCode: "NMA-01"},
	}

	got := authz.AccessibleBranches(p, fixtureBranches(), fixtureProvinces())
	assert.Len(t, got, 2)
	assert.Contains(t, got, "NMA-01")
	// Inactive branch of an accessible province is still returned.
	assert.Contains(t, got, "NMA-02")
	assert.NotContains(t, got, "SKA-01")
}

func TestAccessibleBranches_SubsetOfAccessibleProvinces(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{
		Role:                  "executive",
		AccessibleProvinceIDs: []string{"NMA"},
	}

	provinces := authz.AccessibleProvinces(p, fixtureProvinces())
	branches := authz.AccessibleBranches(p, fixtureBranches(), fixtureProvinces())
	for code, b := range branches {
		assert.Contains(t, provinces, b.ProvinceID, "branch %s must belong to an accessible province", code)
	}
}

func TestHasProvinceAccess(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{
		Role:                  "user",
		ProvinceID:            "NMA",
		AccessibleProvinceIDs: []string{"SKA"},
	}

	assert.True(t, authz.HasProvinceAccess(p, "SKA"), "listed province")
	assert.True(t, authz.HasProvinceAccess(p, "NMA"), "home province always passes")
	assert.False(t, authz.HasProvinceAccess(p, "ETO"))
	assert.False(t, authz.HasProvinceAccess(p, ""))
	assert.False(t, authz.HasProvinceAccess(nil, "NMA"))
}

func TestHasProvinceAccess_EmptyListHomeFallback(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{Role: "user", ProvinceID: "NMA"}
	assert.True(t, authz.HasProvinceAccess(p, "NMA"))
}

func TestHasBranchAccess(t *testing.T) {
	t.Parallel()

	branches := fixtureBranches()
	provinces := fixtureProvinces()

	single := &model.UserProfile{
		Role:                  "user",
		AccessibleProvinceIDs: []string{"NMA"},
		EmployeeInfo:          model.EmployeeInfo{BranchCode: "NMA-01"},
	}
	assert.True(t, authz.HasBranchAccess(single, "NMA-01", branches, provinces))
	assert.False(t, authz.HasBranchAccess(single, "NMA-02", branches, provinces), "single-branch role sees only its home branch")

	wide := &model.UserProfile{
		Role:                  "province-manager",
		AccessibleProvinceIDs: []string{"NMA"},
		EmployeeInfo:          model.EmployeeInfo{BranchCode: "NMA-01"},
	}
	assert.True(t, authz.HasBranchAccess(wide, "NMA-02", branches, provinces))
	assert.False(t, authz.HasBranchAccess(wide, "SKA-01", branches, provinces))
	assert.False(t, authz.HasBranchAccess(nil, "NMA-01", branches, provinces))
}

func TestHasDepartmentAccess(t *testing.T) {
	t.Parallel()

	p := &model.UserProfile{
		Role:         "user",
		EmployeeInfo: model.EmployeeInfo{DepartmentCode: "ACC"},
	}

	assert.True(t, authz.HasDepartmentAccess(p, "ACC"))
	assert.False(t, authz.HasDepartmentAccess(p, "HR"), "no hierarchical widening for departments")
	assert.False(t, authz.HasDepartmentAccess(p, ""))
	assert.False(t, authz.HasDepartmentAccess(nil, "ACC"))
}
