package model

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeInfo pins a profile to its home branch and department.
type EmployeeInfo struct {
	BranchCode     string `gorm:"type:varchar(20)" json:"branch_code"`
	DepartmentCode string `gorm:"type:varchar(20)" json:"department_code"`
}

// UserProfile is the stored identity/business record for an authenticated user.
// Profiles are deactivated, never hard-deleted.
type UserProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID   string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"account_id"` // identity-provider uid
	DisplayName string    `gorm:"type:varchar(255)" json:"display_name"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role        string    `gorm:"type:varchar(50);not null;default:'guest'" json:"role"`

	// PermissionOverrides are additive to the role-derived set, never subtractive.
	PermissionOverrides   []string `gorm:"type:jsonb;serializer:json" json:"permission_overrides"`
	ProvinceID            string   `gorm:"type:varchar(20);index" json:"province_id"` // home province
	AccessibleProvinceIDs []string `gorm:"type:jsonb;serializer:json" json:"accessible_province_ids"`

	EmployeeInfo EmployeeInfo `gorm:"embedded;embeddedPrefix:employee_" json:"employee_info"`

	IsProfileComplete bool `gorm:"default:false" json:"is_profile_complete"`
	Active            bool `gorm:"default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID uuid.UUID   `gorm:"type:uuid;not null;index" json:"profile_id"`
	Profile   UserProfile `gorm:"foreignKey:ProfileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time   `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
