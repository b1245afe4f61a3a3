package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/model"
	"backend/internal/service"
)

func TestListProvincesSortedByName(t *testing.T) {
	t.Parallel()

	svc := service.NewOrgService(orgFixture())

	provinces, err := svc.ListProvinces(context.Background())
	require.NoError(t, err)
	require.Len(t, provinces, 2)
	assert.Equal(t, "North Main", provinces[0].Name)
	assert.Equal(t, "South Key", provinces[1].Name)
}

func TestListBranchesFiltersByProvince(t *testing.T) {
	t.Parallel()

	svc := service.NewOrgService(orgFixture())

	branches, err := svc.ListBranches(context.Background(), "NMA")
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "NMA-01", branches[0].Code)

	all, err := svc.ListBranches(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAccessibleSelectorsFollowScope(t *testing.T) {
	t.Parallel()

	svc := service.NewOrgService(orgFixture())
	profile := &model.UserProfile{
		ID:                    uuid.New(),
		Role:                  "province-manager",
		ProvinceID:            "NMA",
		AccessibleProvinceIDs: []string{"NMA"},
		Active:                true,
	}

	provinces, err := svc.AccessibleProvinces(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, provinces, 1)
	assert.Equal(t, "NMA", provinces[0].ID)

	branches, err := svc.AccessibleBranches(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "NMA-01", branches[0].Code)
}

func TestOrgDirectorySnapshots(t *testing.T) {
	t.Parallel()

	repo := orgFixture()
	dir := service.NewOrgDirectory(repo)

	assert.Empty(t, dir.Provinces(), "empty before the first refresh")

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Len(t, dir.Provinces(), 2)
	assert.Len(t, dir.Branches(), 2)

	repo.err = errStubFailure
	assert.Error(t, dir.Refresh(context.Background()))
	assert.Len(t, dir.Provinces(), 2, "a failed refresh keeps the previous snapshot")
}
