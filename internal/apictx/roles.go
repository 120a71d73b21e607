package apictx

// Well-known roles on the platform.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// HasRole reports whether the context's user holds the given role.
// Anonymous contexts hold no roles. Predicates never error so callers can
// branch instead of fail.
func HasRole(c *Context, role string) bool {
	if c == nil || c.User == nil {
		return false
	}
	for _, r := range c.User.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the roles.
func HasAnyRole(c *Context, roles ...string) bool {
	for _, r := range roles {
		if HasRole(c, r) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether the user holds every one of the roles.
func HasAllRoles(c *Context, roles ...string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if !HasRole(c, r) {
			return false
		}
	}
	return true
}

// IsAdmin reports whether the user is a platform admin.
func IsAdmin(c *Context) bool { return HasRole(c, RoleAdmin) }

// IsInstructor reports whether the user is an instructor.
func IsInstructor(c *Context) bool { return HasRole(c, RoleInstructor) }

// IsStudent reports whether the user is a student.
func IsStudent(c *Context) bool { return HasRole(c, RoleStudent) }
