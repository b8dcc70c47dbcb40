package models

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a profile may see and do within its organization.
type Role string

const (
	RoleAdmin      Role = "admin"      // Full control within the organization
	RoleManager    Role = "manager"    // Approves and views direct reports
	RoleContractor Role = "contractor" // Logs time against assigned projects
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleContractor:
		return true
	}
	return false
}

// CanManage reports whether the role may be referenced as another
// profile's manager.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

// Profile represents a user within an organization.
// Profiles are never hard-deleted; deactivation flips the Active flag.
type Profile struct {
	ProfileID uuid.UUID // UUIDv7
	OrgID     uuid.UUID // UUIDv7, FK to organizations
	Role      Role
	FullName  string
	Email     string

	// HourlyRate is set for contractors only. It is the live rate;
	// time entries carry their own snapshot of it (see TimeEntry).
	HourlyRate *float64

	// ManagerID points at an admin or manager profile in the same org.
	// Never self-referential.
	ManagerID *uuid.UUID

	Active    bool
	Onboarded bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDirectReportOf reports whether the profile's manager is managerID.
func (p *Profile) IsDirectReportOf(managerID uuid.UUID) bool {
	return p.ManagerID != nil && *p.ManagerID == managerID
}
