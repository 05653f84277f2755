package auth

import "sort"

// WildcardPermission is the reserved permission key meaning every permission
// is granted. If it appears anywhere in a resolved set, all checks pass.
const WildcardPermission = "*"

// PermissionSet is a set of opaque permission keys. Keys are compared by
// exact string equality; no namespace-aware matching is performed.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the given keys, ignoring empty strings.
func NewPermissionSet(keys ...string) PermissionSet {
	s := make(PermissionSet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts a key into the set. Empty keys are ignored.
func (s PermissionSet) Add(key string) {
	if key == "" {
		return
	}
	s[key] = struct{}{}
}

// Has reports whether the set grants the given key. The wildcard key
// satisfies every check, including keys never registered anywhere.
func (s PermissionSet) Has(key string) bool {
	if _, ok := s[WildcardPermission]; ok {
		return true
	}
	_, ok := s[key]
	return ok
}

// HasAny reports whether the set grants at least one of the given keys.
// An empty requirement list is satisfied by any non-empty set.
func (s PermissionSet) HasAny(keys ...string) bool {
	if len(keys) == 0 {
		return len(s) > 0
	}
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// Keys returns the permission keys in sorted order.
func (s PermissionSet) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BuildingRef identifies a building a user may access, with its containing
// area name for display.
type BuildingRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Area string `json:"area"`
}

// ResolvedAccess is the derived, non-persisted view of everything reachable
// from an identity key: role names in first-seen order, the union of their
// permission keys, company scopes, and building access grants. It is computed
// fresh per permissions fetch and never cached server-side.
type ResolvedAccess struct {
	IdentityKey string        `json:"identity_key"`
	Roles       []string      `json:"roles"`
	Permissions PermissionSet `json:"-"`
	Companies   []string      `json:"companies"`
	Buildings   []BuildingRef `json:"buildings"`
}

// Provisioned reports whether the identity has any access at all. Zero role
// assignments is the "not provisioned" state, not an error.
func (a ResolvedAccess) Provisioned() bool {
	return len(a.Permissions) > 0
}

// HasBuilding reports whether the identity holds a grant for the building.
func (a ResolvedAccess) HasBuilding(buildingID string) bool {
	for _, b := range a.Buildings {
		if b.ID == buildingID {
			return true
		}
	}
	return false
}
