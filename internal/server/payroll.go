package server

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/timesheet"
)

// PayrollService sums approved hours against rate snapshots. Entries
// come through the scoped list, so a contractor never totals another
// contractor's pay and a manager never totals outside their team.
type PayrollService struct {
	entries  store.TimeEntryStore
	profiles store.ProfileStore
	projects store.ProjectStore
}

// NewPayrollService creates a new payroll aggregator.
func NewPayrollService(entries store.TimeEntryStore, profiles store.ProfileStore, projects store.ProjectStore) *PayrollService {
	return &PayrollService{
		entries:  entries,
		profiles: profiles,
		projects: projects,
	}
}

// PayrollFilter restricts the aggregation. Statuses defaults to
// approved only; the rest are optional.
type PayrollFilter struct {
	From      time.Time
	To        time.Time
	Statuses  []models.EntryStatus
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
}

// ContractorTotal is one contractor's rollup. Rate is the snapshot
// shared by every included entry; RateMixed flags a rate change inside
// the range, in which case Rate holds the last snapshot seen.
type ContractorTotal struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Hours     float64   `json:"hours"`
	Rate      float64   `json:"rate"`
	RateMixed bool      `json:"rate_mixed"`
	Pay       float64   `json:"pay"`
}

// ProjectTotal is one project's rollup. No rate: a project mixes
// contractors.
type ProjectTotal struct {
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
	Hours     float64   `json:"hours"`
	Pay       float64   `json:"pay"`
}

// PayrollReport is the aggregator output. Both slices are sorted by
// name. Empty slices are a valid result for a range with no matching
// entries.
type PayrollReport struct {
	ByContractor []ContractorTotal `json:"by_contractor"`
	ByProject    []ProjectTotal    `json:"by_project"`
}

// Aggregate computes the payroll report for the actor's visible
// entries within the filter.
func (s *PayrollService) Aggregate(ctx context.Context, actor *auth.Actor, filter PayrollFilter) (*PayrollReport, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, validationf("date range end precedes start")
	}

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []models.EntryStatus{models.EntryStatusApproved}
	}

	entries, err := s.entries.List(ctx, scopeFor(actor), store.ListEntriesOptions{
		From:      filter.From,
		To:        filter.To,
		Statuses:  statuses,
		UserID:    filter.UserID,
		ProjectID: filter.ProjectID,
	})
	if err != nil {
		return nil, err
	}

	names, err := s.profileNames(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	projectNames, err := s.projectNames(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}

	byContractor := make(map[uuid.UUID]*ContractorTotal)
	byProject := make(map[uuid.UUID]*ProjectTotal)

	for _, e := range entries {
		hours := entryHours(e)

		rate := 0.0
		if e.HourlyRateSnapshot != nil {
			rate = *e.HourlyRateSnapshot
		}
		pay := hours * rate

		ct, ok := byContractor[e.UserID]
		if !ok {
			ct = &ContractorTotal{UserID: e.UserID, Name: names[e.UserID], Rate: rate}
			byContractor[e.UserID] = ct
		} else if ct.Rate != rate {
			ct.RateMixed = true
			ct.Rate = rate
		}
		ct.Hours += hours
		ct.Pay += pay

		// Entries without a project only show up in the contractor
		// rollup. Normal flow never approves one, but old data can.
		if e.ProjectID != nil {
			pt, ok := byProject[*e.ProjectID]
			if !ok {
				pt = &ProjectTotal{ProjectID: *e.ProjectID, Name: projectNames[*e.ProjectID]}
				byProject[*e.ProjectID] = pt
			}
			pt.Hours += hours
			pt.Pay += pay
		}
	}

	report := &PayrollReport{
		ByContractor: make([]ContractorTotal, 0, len(byContractor)),
		ByProject:    make([]ProjectTotal, 0, len(byProject)),
	}
	for _, ct := range byContractor {
		ct.Hours = timesheet.Round2(ct.Hours)
		ct.Pay = timesheet.Round2(ct.Pay)
		report.ByContractor = append(report.ByContractor, *ct)
	}
	for _, pt := range byProject {
		pt.Hours = timesheet.Round2(pt.Hours)
		pt.Pay = timesheet.Round2(pt.Pay)
		report.ByProject = append(report.ByProject, *pt)
	}

	sort.Slice(report.ByContractor, func(i, j int) bool {
		return report.ByContractor[i].Name < report.ByContractor[j].Name
	})
	sort.Slice(report.ByProject, func(i, j int) bool {
		return report.ByProject[i].Name < report.ByProject[j].Name
	})

	return report, nil
}

// entryHours computes an entry's worked hours, treating unparseable
// clock values as zero worked time.
func entryHours(e *models.TimeEntry) float64 {
	hours, err := timesheet.ComputeHours(e.TimeIn, e.TimeOut, e.LunchHrs)
	if err != nil {
		return 0
	}
	return hours
}

func (s *PayrollService) profileNames(ctx context.Context, orgID uuid.UUID) (map[uuid.UUID]string, error) {
	profiles, err := s.profiles.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for _, p := range profiles {
		names[p.ProfileID] = p.FullName
	}
	return names, nil
}

func (s *PayrollService) projectNames(ctx context.Context, orgID uuid.UUID) (map[uuid.UUID]string, error) {
	projects, err := s.projects.ListByOrg(ctx, orgID, false)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		names[p.ProjectID] = p.Name
	}
	return names, nil
}
