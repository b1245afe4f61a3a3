package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionChangeRole         = "CHANGE_ROLE"
	ActionChangePermissions  = "CHANGE_PERMISSIONS"
	ActionChangeProvinces    = "CHANGE_ACCESSIBLE_PROVINCES"
	ActionCompleteProfile    = "COMPLETE_PROFILE"
	ActionDeactivateProfile  = "DEACTIVATE_PROFILE"
	ActionReactivateProfile  = "REACTIVATE_PROFILE"
	ActionSeedBootstrapAdmin = "SEED_BOOTSTRAP_ADMIN"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID  *uuid.UUID   `gorm:"type:uuid;index" json:"profile_id"` // Nullable gracefully if automated job
	Profile    *UserProfile `gorm:"foreignKey:ProfileID" json:"profile"`
	Action     string       `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string       `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string       `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string       `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time    `gorm:"index" json:"created_at"`
}
