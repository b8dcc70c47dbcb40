package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Wire representations. Dates are "2006-01-02" strings; timestamps are
// RFC 3339.

const dateFormat = "2006-01-02"

type profileView struct {
	ProfileID  uuid.UUID   `json:"profile_id"`
	OrgID      uuid.UUID   `json:"org_id"`
	Role       models.Role `json:"role"`
	FullName   string      `json:"full_name"`
	Email      string      `json:"email"`
	HourlyRate *float64    `json:"hourly_rate,omitempty"`
	ManagerID  *uuid.UUID  `json:"manager_id,omitempty"`
	Active     bool        `json:"active"`
	Onboarded  bool        `json:"onboarded"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func newProfileView(p *models.Profile) profileView {
	return profileView{
		ProfileID:  p.ProfileID,
		OrgID:      p.OrgID,
		Role:       p.Role,
		FullName:   p.FullName,
		Email:      p.Email,
		HourlyRate: p.HourlyRate,
		ManagerID:  p.ManagerID,
		Active:     p.Active,
		Onboarded:  p.Onboarded,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func newProfileViews(profiles []*models.Profile) []profileView {
	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, newProfileView(p))
	}
	return views
}

type projectView struct {
	ProjectID uuid.UUID        `json:"project_id"`
	OrgID     uuid.UUID        `json:"org_id"`
	Name      string           `json:"name"`
	WeekStart models.WeekStart `json:"week_start"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"created_at"`
}

func newProjectView(p *models.Project) projectView {
	return projectView{
		ProjectID: p.ProjectID,
		OrgID:     p.OrgID,
		Name:      p.Name,
		WeekStart: p.WeekStart,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}

func newProjectViews(projects []*models.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newProjectView(p))
	}
	return views
}

type entryView struct {
	EntryID            uuid.UUID          `json:"entry_id"`
	UserID             uuid.UUID          `json:"user_id"`
	ProjectID          *uuid.UUID         `json:"project_id,omitempty"`
	EntryDate          string             `json:"entry_date"`
	TimeIn             string             `json:"time_in,omitempty"`
	TimeOut            string             `json:"time_out,omitempty"`
	LunchHrs           float64            `json:"lunch_hrs"`
	Mileage            float64            `json:"mileage"`
	Notes              string             `json:"notes,omitempty"`
	Status             models.EntryStatus `json:"status"`
	HourlyRateSnapshot *float64           `json:"hourly_rate_snapshot,omitempty"`
	ApproverID         *uuid.UUID         `json:"approver_id,omitempty"`
	ApprovedAt         *time.Time         `json:"approved_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func newEntryView(e *models.TimeEntry) entryView {
	return entryView{
		EntryID:            e.EntryID,
		UserID:             e.UserID,
		ProjectID:          e.ProjectID,
		EntryDate:          e.EntryDate.Format(dateFormat),
		TimeIn:             e.TimeIn,
		TimeOut:            e.TimeOut,
		LunchHrs:           e.LunchHrs,
		Mileage:            e.Mileage,
		Notes:              e.Notes,
		Status:             e.Status,
		HourlyRateSnapshot: e.HourlyRateSnapshot,
		ApproverID:         e.ApproverID,
		ApprovedAt:         e.ApprovedAt,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func newEntryViews(entries []*models.TimeEntry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newEntryView(e))
	}
	return views
}

type affectedResponse struct {
	Affected int64 `json:"affected"`
}
