package service_test

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"backend/internal/model"
)

// In-memory repository stubs. Each records the writes it receives so tests
// can assert on persistence side effects without a database.

type stubProfileRepo struct {
	profiles map[string]*model.UserProfile // keyed by id
	created  []*model.UserProfile
	err      error
}

func newStubProfileRepo(profiles ...*model.UserProfile) *stubProfileRepo {
	r := &stubProfileRepo{profiles: map[string]*model.UserProfile{}}
	for _, p := range profiles {
		r.profiles[p.ID.String()] = p
	}
	return r
}

func (r *stubProfileRepo) Create(_ context.Context, profile *model.UserProfile) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, profile)
	r.profiles[profile.ID.String()] = profile
	return nil
}

func (r *stubProfileRepo) GetByID(_ context.Context, id string) (*model.UserProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	if p, ok := r.profiles[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProfileRepo) GetByAccountID(_ context.Context, accountID string) (*model.UserProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.profiles {
		if p.AccountID == accountID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *stubProfileRepo) GetByEmail(_ context.Context, email string) (*model.UserProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, p := range r.profiles {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProfileRepo) List(_ context.Context, _, _ int) ([]model.UserProfile, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	out := make([]model.UserProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProfileRepo) Update(_ context.Context, profile *model.UserProfile) error {
	if r.err != nil {
		return r.err
	}
	r.profiles[profile.ID.String()] = profile
	return nil
}

func (r *stubProfileRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	if r.err != nil {
		return r.err
	}
	p, ok := r.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for field, value := range fields {
		switch field {
		case "role":
			p.Role = value.(string)
		case "permission_overrides":
			p.PermissionOverrides = value.([]string)
		case "accessible_province_ids":
			p.AccessibleProvinceIDs = value.([]string)
		case "display_name":
			p.DisplayName = value.(string)
		case "province_id":
			p.ProvinceID = value.(string)
		case "employee_branch_code":
			p.EmployeeInfo.BranchCode = value.(string)
		case "employee_department_code":
			p.EmployeeInfo.DepartmentCode = value.(string)
		case "is_profile_complete":
			p.IsProfileComplete = value.(bool)
		case "active":
			p.Active = value.(bool)
		}
	}
	return nil
}

type stubTokenRepo struct {
	tokens            map[string]*model.RefreshToken
	deleted           []string
	deletedForProfile []string
}

func newStubTokenRepo(tokens ...*model.RefreshToken) *stubTokenRepo {
	r := &stubTokenRepo{tokens: map[string]*model.RefreshToken{}}
	for _, t := range tokens {
		r.tokens[t.Token] = t
	}
	return r
}

func (r *stubTokenRepo) Create(_ context.Context, token *model.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *stubTokenRepo) GetByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	if t, ok := r.tokens[token]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTokenRepo) Delete(_ context.Context, token string) error {
	delete(r.tokens, token)
	r.deleted = append(r.deleted, token)
	return nil
}

func (r *stubTokenRepo) DeleteForProfile(_ context.Context, profileID string) error {
	for k, t := range r.tokens {
		if t.ProfileID.String() == profileID {
			delete(r.tokens, k)
		}
	}
	r.deletedForProfile = append(r.deletedForProfile, profileID)
	return nil
}

func (r *stubTokenRepo) DeleteExpired(_ context.Context) error { return nil }

type stubOrgRepo struct {
	provinces   map[string]model.Province
	branches    map[string]model.Branch
	departments map[string]model.Department
	err         error
}

func (r *stubOrgRepo) Provinces(_ context.Context) (map[string]model.Province, error) {
	return r.provinces, r.err
}

func (r *stubOrgRepo) Branches(_ context.Context) (map[string]model.Branch, error) {
	return r.branches, r.err
}

func (r *stubOrgRepo) Departments(_ context.Context) (map[string]model.Department, error) {
	return r.departments, r.err
}

func (r *stubOrgRepo) GetProvince(_ context.Context, id string) (*model.Province, error) {
	if p, ok := r.provinces[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrgRepo) GetBranch(_ context.Context, code string) (*model.Branch, error) {
	if b, ok := r.branches[code]; ok {
		return &b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubAuditRepo struct {
	entries []model.AuditLog
	err     error
}

func (r *stubAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	return r.entries, int64(len(r.entries)), nil
}

var errStubFailure = errors.New("stub failure")
