package auth

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Sentinel errors for authorization failures. Callers surface these
// with zero side effects on the target rows.
var (
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrPermissionDenied = errors.New("permission denied")
)

// Permission represents an authorized action
type Permission string

const (
	PermInvite         Permission = "profiles:invite"
	PermManageProfiles Permission = "profiles:manage"
	PermManageProjects Permission = "projects:manage"
	PermEntriesWrite   Permission = "entries:write"
	PermEntriesList    Permission = "entries:list"
	PermApprove        Permission = "entries:approve"
	PermPayrollView    Permission = "payroll:view"
)

// RolePermissions maps roles to allowed permissions
var RolePermissions = map[models.Role][]Permission{
	models.RoleAdmin: {
		PermInvite,
		PermManageProfiles,
		PermManageProjects,
		PermEntriesWrite,
		PermEntriesList,
		PermApprove,
		PermPayrollView,
	},
	models.RoleManager: {
		PermEntriesWrite,
		PermEntriesList,
		PermApprove,
		PermPayrollView,
	},
	models.RoleContractor: {
		PermEntriesWrite,
		PermEntriesList,
		PermPayrollView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role models.Role, perm Permission) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	return slices.Contains(perms, perm)
}

// Policy is the single place role scoping rules live. The API layer
// and the storage layer both consult it, so the two cannot diverge.
type Policy struct{}

// Require checks a coarse permission for the actor's role.
func (Policy) Require(actor *Actor, perm Permission) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !HasPermission(actor.Role, perm) {
		return ErrPermissionDenied
	}
	return nil
}

// CanViewUser reports whether the actor may see entries belonging to
// the target profile. Admins see the whole org, managers their direct
// reports and themselves, contractors only themselves.
func (Policy) CanViewUser(actor *Actor, target *models.Profile) bool {
	if actor == nil || target == nil || actor.OrgID != target.OrgID {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return target.ProfileID == actor.ID || target.IsDirectReportOf(actor.ID)
	default:
		return target.ProfileID == actor.ID
	}
}

// CanEditEntry reports whether the actor may create or modify an entry
// owned by the target profile. Owners edit their own; admins may act
// on anyone's behalf within the org.
func (Policy) CanEditEntry(actor *Actor, ownerID uuid.UUID, ownerOrgID uuid.UUID) bool {
	if actor == nil || actor.OrgID != ownerOrgID {
		return false
	}
	return actor.ID == ownerID || actor.Role == models.RoleAdmin
}

// CanApprove reports whether the actor may approve or reject the
// target profile's submitted entries.
func (Policy) CanApprove(actor *Actor, target *models.Profile) bool {
	if actor == nil || target == nil || actor.OrgID != target.OrgID {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return target.IsDirectReportOf(actor.ID)
	default:
		return false
	}
}

// CanEditRate reports whether the actor may change the target
// profile's hourly rate. Admins anywhere in the org; managers only for
// their direct reports.
func (Policy) CanEditRate(actor *Actor, target *models.Profile) bool {
	if actor == nil || target == nil || actor.OrgID != target.OrgID {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return target.IsDirectReportOf(actor.ID)
	default:
		return false
	}
}
