package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"backend/internal/model"
)

// ProfileRepository defines the data access interface for UserProfile records
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.UserProfile) error
	GetByID(ctx context.Context, id string) (*model.UserProfile, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	List(ctx context.Context, page, limit int) ([]model.UserProfile, int64, error)
	Update(ctx context.Context, profile *model.UserProfile) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new instance of ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *model.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByAccountID resolves the profile for an identity-provider account id.
// A missing record returns (nil, nil) so callers can synthesize a guest
// profile instead of treating new accounts as failures.
func (r *profileRepository) GetByAccountID(ctx context.Context, accountID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, page, limit int) ([]model.UserProfile, int64, error) {
	var profiles []model.UserProfile
	var total int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&model.UserProfile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	// Fetch paginated data
	if err := r.db.WithContext(ctx).Offset(offset).Limit(limit).Order("created_at asc").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *model.UserProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// UpdateFields applies a partial-field update. The core never replaces the
// whole document, only merges fields (additive update contract).
func (r *profileRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.UserProfile{}).Where("id = ?", id).Updates(fields).Error
}
