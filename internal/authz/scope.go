package authz

import "backend/internal/model"

// Scope resolver: computes the province/branch/department subsets a profile is
// allowed to see. Inputs are never mutated; inactive entities are still
// returned (visibility is not availability-for-new-transactions — deactivation
// is enforced by the transactional services, not here).

// AccessibleProvinces filters allProvinces down to the profile's accessible
// set. Profiles holding the organization-wide scope permission see everything.
// The home province is always included even when the accessible list lags
// behind the home assignment (onboarding-era profiles must not be locked out).
func AccessibleProvinces(p *model.UserProfile, allProvinces map[string]model.Province) map[string]model.Province {
	out := make(map[string]model.Province)
	if p == nil {
		return out
	}
	if HasPermission(p, PermAllProvinces) {
		for id, prov := range allProvinces {
			out[id] = prov
		}
		return out
	}
	for _, id := range p.AccessibleProvinceIDs {
		if prov, ok := allProvinces[id]; ok {
			out[id] = prov
		}
	}
	if p.ProvinceID != "" {
		if prov, ok := allProvinces[p.ProvinceID]; ok {
			out[p.ProvinceID] = prov
		}
	}
	return out
}

// AccessibleBranches returns the branches whose owning province is accessible
// to the profile. Single-branch roles are narrowed further, to their home
// branch; a home branch whose province is not accessible yields nothing, so
// the result is always a subset of the accessible provinces' branches.
func AccessibleBranches(p *model.UserProfile, allBranches map[string]model.Branch, allProvinces map[string]model.Province) map[string]model.Branch {
	out := make(map[string]model.Branch)
	if p == nil {
		return out
	}
	provinces := AccessibleProvinces(p, allProvinces)
	if IsSingleBranch(ParseRole(p.Role)) {
		home := p.EmployeeInfo.BranchCode
		if home != "" {
			if b, ok := allBranches[home]; ok {
				if _, ok := provinces[b.ProvinceID]; ok {
					out[home] = b
				}
			}
		}
		return out
	}
	for code, b := range allBranches {
		if _, ok := provinces[b.ProvinceID]; ok {
			out[code] = b
		}
	}
	return out
}

// HasProvinceAccess reports whether the profile may see the province. The home
// province always passes, as a defensive OR: accessible lists may lag behind
// home-province assignment during onboarding.
func HasProvinceAccess(p *model.UserProfile, provinceID string) bool {
	if p == nil || provinceID == "" {
		return false
	}
	if p.ProvinceID == provinceID {
		return true
	}
	if HasPermission(p, PermAllProvinces) {
		return true
	}
	for _, id := range p.AccessibleProvinceIDs {
		if id == provinceID {
			return true
		}
	}
	return false
}

// HasBranchAccess reports whether the profile may see the branch: its home
// branch, or any branch of an accessible province (unless role-narrowed to a
// single branch).
func HasBranchAccess(p *model.UserProfile, branchCode string, allBranches map[string]model.Branch, allProvinces map[string]model.Province) bool {
	if p == nil || branchCode == "" {
		return false
	}
	if p.EmployeeInfo.BranchCode == branchCode {
		return true
	}
	_, ok := AccessibleBranches(p, allBranches, allProvinces)[branchCode]
	return ok
}

// HasDepartmentAccess is a plain equality check against the home department.
// Departments are not nested under provinces, so there is no widening.
func HasDepartmentAccess(p *model.UserProfile, departmentCode string) bool {
	if p == nil || departmentCode == "" {
		return false
	}
	return p.EmployeeInfo.DepartmentCode == departmentCode
}
