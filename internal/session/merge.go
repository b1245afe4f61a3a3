package session

import (
	"backend/internal/authz"
	"backend/internal/model"
)

// AuthOverlay is the nested auth sub-object a profile record may carry.
// Fields set here take precedence over the base record, field by field
// (last-write-wins at field granularity). Nil pointers and nil slices mean
// "absent", so a partial overlay never clobbers base fields.
type AuthOverlay struct {
	Role                  *string  `json:"role,omitempty"`
	DisplayName           *string  `json:"display_name,omitempty"`
	Email                 *string  `json:"email,omitempty"`
	ProvinceID            *string  `json:"province_id,omitempty"`
	PermissionOverrides   []string `json:"permission_overrides,omitempty"`
	AccessibleProvinceIDs []string `json:"accessible_province_ids,omitempty"`
}

// ProfileRecord is one delivery from the profile subscription. A nil Base
// means no profile record exists for the account yet.
type ProfileRecord struct {
	Base *model.UserProfile
	Auth *AuthOverlay
}

// Merge flattens a record into a usable profile. Missing role defaults to
// guest, missing lists default to empty; this function never fails, whatever
// shape the record arrives in.
func Merge(rec ProfileRecord) model.UserProfile {
	var p model.UserProfile
	if rec.Base != nil {
		p = *rec.Base
	}

	if rec.Auth != nil {
		if rec.Auth.Role != nil {
			p.Role = *rec.Auth.Role
		}
		if rec.Auth.DisplayName != nil {
			p.DisplayName = *rec.Auth.DisplayName
		}
		if rec.Auth.Email != nil {
			p.Email = *rec.Auth.Email
		}
		if rec.Auth.ProvinceID != nil {
			p.ProvinceID = *rec.Auth.ProvinceID
		}
		if rec.Auth.PermissionOverrides != nil {
			p.PermissionOverrides = append([]string(nil), rec.Auth.PermissionOverrides...)
		}
		if rec.Auth.AccessibleProvinceIDs != nil {
			p.AccessibleProvinceIDs = append([]string(nil), rec.Auth.AccessibleProvinceIDs...)
		}
	}

	p.Role = string(authz.ParseRole(p.Role))
	if p.PermissionOverrides == nil {
		p.PermissionOverrides = []string{}
	}
	if p.AccessibleProvinceIDs == nil {
		p.AccessibleProvinceIDs = []string{}
	}
	return p
}

// DefaultProfile synthesizes the minimal guest profile used when an
// authenticated account has no stored record yet. It is not persisted until
// the user completes onboarding.
func DefaultProfile(accountID, email string) model.UserProfile {
	return model.UserProfile{
		AccountID:             accountID,
		Email:                 email,
		Role:                  string(authz.RoleGuest),
		PermissionOverrides:   []string{},
		AccessibleProvinceIDs: []string{},
		IsProfileComplete:     false,
		Active:                true,
	}
}
