package rbac

// Self-scope guard. The matrix grants the EMPLOYEE role blanket read on a few
// resources; these checks narrow individually-owned records down to the
// caller. They are pure: ownership is resolved beforehand (see OwnerResolver)
// so the policy can be tested without a database.

// CanAccessEmployeeRecord reports whether the caller may access an employee
// record owned by the given user. ADMIN and MANAGER pass unconditionally,
// EMPLOYEE only for their own record. The employee detail page currently
// exposes no non-directory data outside the salary panel, which is gated by
// CanAccessSalaryRecord; this guard is the contract for any future field that
// must not be visible to other EMPLOYEE callers.
func CanAccessEmployeeRecord(caller Identity, ownerUserID int64) bool {
	if caller.Role != RoleEmployee {
		return true
	}
	return ownerUserID == caller.UserID
}

// CanAccessSalaryRecord reports whether the caller may access a salary record.
// ownerUserID is the user behind the salary's employee, resolved transitively
// (salary → employee → user) before calling.
func CanAccessSalaryRecord(caller Identity, ownerUserID int64) bool {
	if caller.Role != RoleEmployee {
		return true
	}
	return ownerUserID == caller.UserID
}

// CanUpdateTask reports whether the caller may update a task. ADMIN and
// MANAGER may update any task and any field. EMPLOYEE may only touch tasks
// whose assignee resolves to their own user; an unassigned task has no owner
// and is therefore off-limits to the EMPLOYEE role. Field narrowing is a
// separate concern, see UpdatableTaskFields.
func CanUpdateTask(caller Identity, assigneeUserID int64, hasAssignee bool) bool {
	switch caller.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleEmployee:
		return hasAssignee && assigneeUserID == caller.UserID
	}
	return false
}

// Task field names subject to per-role update narrowing.
const (
	TaskFieldTitle       = "title"
	TaskFieldDescription = "description"
	TaskFieldProject     = "project_id"
	TaskFieldStatus      = "status"
	TaskFieldPriority    = "priority"
	TaskFieldAssignee    = "assigned_to"
	TaskFieldDueDate     = "due_date"
)

var allTaskFields = []string{
	TaskFieldTitle,
	TaskFieldDescription,
	TaskFieldProject,
	TaskFieldStatus,
	TaskFieldPriority,
	TaskFieldAssignee,
	TaskFieldDueDate,
}

// UpdatableTaskFields returns the set of task fields the role may mutate.
// EMPLOYEE is limited to the status column; everything else in an update
// payload is dropped for that role. The boolean matrix stays simple and this
// partial-update policy lives here where it can be audited on its own.
func UpdatableTaskFields(role Role) map[string]bool {
	fields := make(map[string]bool, len(allTaskFields))
	switch role {
	case RoleAdmin, RoleManager:
		for _, f := range allTaskFields {
			fields[f] = true
		}
	case RoleEmployee:
		fields[TaskFieldStatus] = true
	}
	return fields
}
