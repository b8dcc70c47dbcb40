package models

import (
	"time"

	"github.com/google/uuid"
)

// WeekStart is a project's reporting week convention.
type WeekStart string

const (
	WeekStartSunday WeekStart = "sunday"
	WeekStartMonday WeekStart = "monday"
)

// Valid reports whether w is a known week-start convention.
func (w WeekStart) Valid() bool {
	return w == WeekStartSunday || w == WeekStartMonday
}

// Project is a billable body of work time entries are logged against.
// Projects are deactivated rather than deleted.
type Project struct {
	ProjectID uuid.UUID // UUIDv7
	OrgID     uuid.UUID // UUIDv7, FK to organizations
	Name      string
	WeekStart WeekStart
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectMembership joins a profile to a project it may log time
// against. OrgID is denormalized so scoping never needs a join.
type ProjectMembership struct {
	MembershipID uuid.UUID // UUIDv7
	OrgID        uuid.UUID
	ProjectID    uuid.UUID
	ProfileID    uuid.UUID
	Active       bool
	CreatedAt    time.Time
}
