package models

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus is a time entry's position in the approval lifecycle.
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusSubmitted EntryStatus = "submitted"
	EntryStatusApproved  EntryStatus = "approved"
	EntryStatusRejected  EntryStatus = "rejected"
)

// Valid reports whether s is a known entry status.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusDraft, EntryStatusSubmitted, EntryStatusApproved, EntryStatusRejected:
		return true
	}
	return false
}

// Editable reports whether an entry in this status may still be
// modified by its owner. Submitted and approved entries are locked.
func (s EntryStatus) Editable() bool {
	return s == EntryStatusDraft || s == EntryStatusRejected
}

// TimeEntry is one day of work logged by a profile against a project.
//
// HourlyRateSnapshot is copied from the owning profile's live rate on
// every editable save and never touched afterwards, so later rate
// changes cannot rewrite historical payroll.
type TimeEntry struct {
	EntryID uuid.UUID // UUIDv7
	OrgID   uuid.UUID
	UserID  uuid.UUID // FK to profiles

	// ProjectID may be nil while the entry is a draft; submission
	// requires it.
	ProjectID *uuid.UUID

	EntryDate time.Time // date only, UTC midnight
	TimeIn    string    // "15:04" wall clock
	TimeOut   string    // "15:04" wall clock
	LunchHrs  float64
	Mileage   float64
	Notes     string

	Status             EntryStatus
	HourlyRateSnapshot *float64

	ApproverID *uuid.UUID
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Locked reports whether the entry can no longer be edited by its owner.
func (e *TimeEntry) Locked() bool {
	return !e.Status.Editable()
}
