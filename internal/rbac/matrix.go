package rbac

import "fmt"

type actionSet map[Action]struct{}

func actions(as ...Action) actionSet {
	set := make(actionSet, len(as))
	for _, a := range as {
		set[a] = struct{}{}
	}
	return set
}

// matrix is the authoritative role → resource → allowed actions table. It is
// assembled once at package init and never written afterwards, so concurrent
// reads need no synchronisation. Every (role, resource) pair is present even
// when it maps to the empty set.
var matrix = map[Role]map[Resource]actionSet{
	RoleAdmin: {
		ResourceUsers:     actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ResourceEmployees: actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ResourceProjects:  actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ResourceTasks:     actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ResourceSalaries:  actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	},
	RoleManager: {
		ResourceUsers:     actions(ActionRead),
		ResourceEmployees: actions(ActionRead),
		ResourceProjects:  actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ResourceTasks:     actions(ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		ResourceSalaries:  actions(ActionRead, ActionUpdate),
	},
	RoleEmployee: {
		ResourceUsers:     actions(),
		ResourceEmployees: actions(ActionRead),
		ResourceProjects:  actions(ActionRead),
		ResourceTasks:     actions(ActionRead, ActionUpdate),
		ResourceSalaries:  actions(ActionRead),
	},
}

func init() {
	// Guard against a partial table sneaking in through a future edit.
	for _, role := range Roles() {
		row, ok := matrix[role]
		if !ok {
			panic(fmt.Sprintf("rbac: matrix missing role %s", role))
		}
		for _, res := range Resources() {
			if _, ok := row[res]; !ok {
				panic(fmt.Sprintf("rbac: matrix missing (%s, %s)", role, res))
			}
		}
	}
}

// HasPermission reports whether the role may perform action on resource.
// Unknown roles, resources or actions are caller bugs and return an error
// rather than a silent deny.
func HasPermission(role Role, resource Resource, action Action) (bool, error) {
	if !role.Valid() {
		return false, fmt.Errorf("rbac: unknown role %q", role)
	}
	if !resource.Valid() {
		return false, fmt.Errorf("rbac: unknown resource %q", resource)
	}
	if !action.Valid() {
		return false, fmt.Errorf("rbac: unknown action %q", action)
	}
	_, ok := matrix[role][resource][action]
	return ok, nil
}

// Allowed is HasPermission for callers that already hold validated enums,
// typically route declarations. It panics on unknown values.
func Allowed(role Role, resource Resource, action Action) bool {
	ok, err := HasPermission(role, resource, action)
	if err != nil {
		panic(err)
	}
	return ok
}
