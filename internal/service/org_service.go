package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"backend/internal/authz"
	"backend/internal/model"
	"backend/internal/repository"
)

// ProvinceOption and BranchOption are the selector entries rendered by
// province/branch pickers. Inactive entities are included; display-level
// filtering is the caller's concern.
type ProvinceOption struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
	Active bool   `json:"active"`
}

type BranchOption struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ProvinceID string `json:"province_id"`
	Active     bool   `json:"active"`
}

type DepartmentOption struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type OrgService interface {
	ListProvinces(ctx context.Context) ([]ProvinceOption, error)
	ListBranches(ctx context.Context, provinceID string) ([]BranchOption, error)
	ListDepartments(ctx context.Context) ([]DepartmentOption, error)
	AccessibleProvinces(ctx context.Context, profile *model.UserProfile) ([]ProvinceOption, error)
	AccessibleBranches(ctx context.Context, profile *model.UserProfile) ([]BranchOption, error)
}

type orgService struct {
	org repository.OrgRepository
}

// NewOrgService returns a new instance of OrgService
func NewOrgService(org repository.OrgRepository) OrgService {
	return &orgService{org: org}
}

func provinceOptions(provinces map[string]model.Province) []ProvinceOption {
	out := make([]ProvinceOption, 0, len(provinces))
	for _, p := range provinces {
		out = append(out, ProvinceOption{ID: p.ID, Name: p.Name, Region: p.Region, Active: p.Active})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func branchOptions(branches map[string]model.Branch) []BranchOption {
	out := make([]BranchOption, 0, len(branches))
	for _, b := range branches {
		out = append(out, BranchOption{Code: b.Code, Name: b.Name, ProvinceID: b.ProvinceID, Active: b.Active})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (s *orgService) ListProvinces(ctx context.Context) ([]ProvinceOption, error) {
	provinces, err := s.org.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	return provinceOptions(provinces), nil
}

func (s *orgService) ListBranches(ctx context.Context, provinceID string) ([]BranchOption, error) {
	branches, err := s.org.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	if provinceID != "" {
		filtered := make(map[string]model.Branch)
		for code, b := range branches {
			if b.ProvinceID == provinceID {
				filtered[code] = b
			}
		}
		branches = filtered
	}
	return branchOptions(branches), nil
}

func (s *orgService) ListDepartments(ctx context.Context) ([]DepartmentOption, error) {
	departments, err := s.org.Departments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	out := make([]DepartmentOption, 0, len(departments))
	for _, d := range departments {
		out = append(out, DepartmentOption{Code: d.Code, Name: d.Name, Active: d.Active})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AccessibleProvinces narrows the full province list to the caller's scope.
func (s *orgService) AccessibleProvinces(ctx context.Context, profile *model.UserProfile) ([]ProvinceOption, error) {
	provinces, err := s.org.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	return provinceOptions(authz.AccessibleProvinces(profile, provinces)), nil
}

func (s *orgService) AccessibleBranches(ctx context.Context, profile *model.UserProfile) ([]BranchOption, error) {
	provinces, err := s.org.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load provinces: %w", err)
	}
	branches, err := s.org.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load branches: %w", err)
	}
	return branchOptions(authz.AccessibleBranches(profile, branches, provinces)), nil
}

// OrgDirectory is a cached snapshot of the org hierarchy implementing
// session.Directory. The hierarchy changes rarely, so session-level branch
// and province checks read from the last Refresh instead of the database.
type OrgDirectory struct {
	org repository.OrgRepository

	mu        sync.RWMutex
	provinces map[string]model.Province
	branches  map[string]model.Branch
}

func NewOrgDirectory(org repository.OrgRepository) *OrgDirectory {
	return &OrgDirectory{
		org:       org,
		provinces: map[string]model.Province{},
		branches:  map[string]model.Branch{},
	}
}

// Refresh replaces the snapshot. Call at startup and after seeding.
func (d *OrgDirectory) Refresh(ctx context.Context) error {
	provinces, err := d.org.Provinces(ctx)
	if err != nil {
		return fmt.Errorf("failed to load provinces: %w", err)
	}
	branches, err := d.org.Branches(ctx)
	if err != nil {
		return fmt.Errorf("failed to load branches: %w", err)
	}
	d.mu.Lock()
	d.provinces = provinces
	d.branches = branches
	d.mu.Unlock()
	return nil
}

func (d *OrgDirectory) Provinces() map[string]model.Province {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.provinces
}

func (d *OrgDirectory) Branches() map[string]model.Branch {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.branches
}
