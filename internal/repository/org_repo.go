package repository

import (
	"context"

	"gorm.io/gorm"

	"backend/internal/model"
)

// OrgRepository reads the province/branch/department hierarchy. The core only
// filters these collections, never mutates them.
type OrgRepository interface {
	Provinces(ctx context.Context) (map[string]model.Province, error)
	Branches(ctx context.Context) (map[string]model.Branch, error)
	Departments(ctx context.Context) (map[string]model.Department, error)
	GetProvince(ctx context.Context, id string) (*model.Province, error)
	GetBranch(ctx context.Context, code string) (*model.Branch, error)
}

type orgRepository struct {
	db *gorm.DB
}

// NewOrgRepository returns a new instance of OrgRepository
func NewOrgRepository(db *gorm.DB) OrgRepository {
	return &orgRepository{db: db}
}

// Provinces returns the whole collection keyed by province id, the
// already-materialized map shape the scope resolver consumes.
func (r *orgRepository) Provinces(ctx context.Context) (map[string]model.Province, error) {
	var provinces []model.Province
	if err := r.db.WithContext(ctx).Find(&provinces).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Province, len(provinces))
	for _, p := range provinces {
		out[p.ID] = p
	}
	return out, nil
}

func (r *orgRepository) Branches(ctx context.Context) (map[string]model.Branch, error) {
	var branches []model.Branch
	if err := r.db.WithContext(ctx).Find(&branches).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Branch, len(branches))
	for _, b := range branches {
		out[b.Code] = b
	}
	return out, nil
}

func (r *orgRepository) Departments(ctx context.Context) (map[string]model.Department, error) {
	var departments []model.Department
	if err := r.db.WithContext(ctx).Find(&departments).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.Department, len(departments))
	for _, d := range departments {
		out[d.Code] = d
	}
	return out, nil
}

func (r *orgRepository) GetProvince(ctx context.Context, id string) (*model.Province, error) {
	var province model.Province
	if err := r.db.WithContext(ctx).First(&province, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &province, nil
}

func (r *orgRepository) GetBranch(ctx context.Context, code string) (*model.Branch, error) {
	var branch model.Branch
	if err := r.db.WithContext(ctx).First(&branch, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}
