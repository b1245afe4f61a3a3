package authz

import "backend/internal/model"

// Pure evaluator functions over a profile snapshot. All of them are total: a
// nil profile is never authorized, never an error.

// EffectivePermissions is the role-derived set unioned with the profile's
// explicit overrides. Overrides only add, never remove, so the base role stays
// meaningful.
func EffectivePermissions(p *model.UserProfile) map[Permission]bool {
	set := make(map[Permission]bool)
	if p == nil {
		return set
	}
	for _, perm := range rolePermissions[ParseRole(p.Role)] {
		set[perm] = true
	}
	for _, perm := range p.PermissionOverrides {
		set[Permission(perm)] = true
	}
	return set
}

// HasPermission reports whether the profile carries the permission, either via
// its role or via an explicit override.
func HasPermission(p *model.UserProfile, perm Permission) bool {
	if p == nil {
		return false
	}
	for _, rp := range rolePermissions[ParseRole(p.Role)] {
		if rp == perm {
			return true
		}
	}
	for _, op := range p.PermissionOverrides {
		if Permission(op) == perm {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the profile carries at least one of perms.
func HasAnyPermission(p *model.UserProfile, perms ...Permission) bool {
	for _, perm := range perms {
		if HasPermission(p, perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the profile carries every one of perms.
func HasAllPermissions(p *model.UserProfile, perms ...Permission) bool {
	if p == nil {
		return false
	}
	for _, perm := range perms {
		if !HasPermission(p, perm) {
			return false
		}
	}
	return true
}

// HasRole reports an exact role match.
func HasRole(p *model.UserProfile, role Role) bool {
	if p == nil {
		return false
	}
	return ParseRole(p.Role) == role
}

// HasAnyRole reports membership of the profile's role in roles.
func HasAnyRole(p *model.UserProfile, roles ...Role) bool {
	if p == nil {
		return false
	}
	r := ParseRole(p.Role)
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPrivilege reports whether the profile is at least as senior as required,
// comparing positions in the role total order (lower level = more privileged).
func HasPrivilege(p *model.UserProfile, required Role) bool {
	if p == nil {
		return false
	}
	return PrivilegeLevel(ParseRole(p.Role)) <= PrivilegeLevel(required)
}

// ShouldHideUserFromView reports whether target must be masked from viewer.
// Developer-tier accounts are visible only to viewers at developer privilege
// or above.
func ShouldHideUserFromView(viewer, target *model.UserProfile) bool {
	if target == nil {
		return false
	}
	if !IsDeveloperTier(ParseRole(target.Role)) {
		return false
	}
	return !HasPrivilege(viewer, RoleDeveloper)
}
