package domain

// Role is one of the closed set of account roles.
// The set is fixed at compile time; persistence stores the names verbatim.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleUser   Role = "User"
)

// ValidRole reports whether name belongs to the closed role set.
func ValidRole(name Role) bool {
	switch name {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

// NormalizeRoles deduplicates, drops unknown names, and guarantees the base
// role is always present. Every account carries RoleUser at minimum.
func NormalizeRoles(roles []Role) []Role {
	seen := map[Role]bool{RoleUser: true}
	out := []Role{RoleUser}
	for _, r := range roles {
		if !ValidRole(r) || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// HasRole reports membership of want in have.
func HasRole(have []Role, want Role) bool {
	for _, r := range have {
		if r == want {
			return true
		}
	}
	return false
}

// Authorize reports whether the caller's roles intersect the required set.
// Pure predicate; called before every role-gated operation.
func Authorize(have []Role, required ...Role) bool {
	for _, want := range required {
		if HasRole(have, want) {
			return true
		}
	}
	return false
}

// AuthorizeOwnerOrAdmin is the single ownership contract for resource access:
// the caller must own the resource or hold the Admin role.
func AuthorizeOwnerOrAdmin(callerIdentity string, callerRoles []Role, ownerIdentity string) bool {
	if callerIdentity != "" && callerIdentity == ownerIdentity {
		return true
	}
	return HasRole(callerRoles, RoleAdmin)
}
