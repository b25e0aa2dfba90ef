package rbac

import "fmt"

// Role is one of the three fixed access levels. The set is closed: roles are
// not created or edited at runtime, only assigned to users.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee}
}

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// ParseRole converts a stored string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
	return r, nil
}

// Resource is a category of domain object subject to permission checks.
type Resource string

const (
	ResourceUsers     Resource = "users"
	ResourceEmployees Resource = "employees"
	ResourceProjects  Resource = "projects"
	ResourceTasks     Resource = "tasks"
	ResourceSalaries  Resource = "salaries"
)

// Resources lists every known resource kind.
func Resources() []Resource {
	return []Resource{ResourceUsers, ResourceEmployees, ResourceProjects, ResourceTasks, ResourceSalaries}
}

// Valid reports whether the resource is a member of the closed set.
func (r Resource) Valid() bool {
	switch r {
	case ResourceUsers, ResourceEmployees, ResourceProjects, ResourceTasks, ResourceSalaries:
		return true
	}
	return false
}

// Action is a CRUD operation on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actions lists every known action.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// Valid reports whether the action is a member of the closed set.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Identity describes the authenticated caller for a single request. It is
// built from the session when the request comes in and discarded afterwards;
// the role it carries changes only through the admin role-change endpoint.
type Identity struct {
	UserID int64
	Role   Role
}
