package rbac

import "strings"

// Checker answers permission questions against a role -> permissions
// table. Permissions are "resource:action"; a trailing "*" grants every
// action under that prefix and a bare "*" grants everything.
type Checker struct {
	RolePermissions map[string][]string
}

// NewChecker uses the practice backend policy when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.RolePermissions[role] {
		if grants(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// CanView decides read access to a learner-owned record. "<resource>:view-all"
// opens every record; "<resource>:view-own" only those where own is true.
func (c *Checker) CanView(role, resource string, own bool) bool {
	if c.Has(role, resource+":view-all") {
		return true
	}
	return own && c.Has(role, resource+":view-own")
}

func grants(pattern, perm string) bool {
	switch {
	case pattern == "*", pattern == perm:
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
