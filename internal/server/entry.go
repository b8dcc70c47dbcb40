package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/timesheet"
)

// EntryService owns the time entry lifecycle: creation and edits while
// draft or rejected, and the batch week submit. The hourly rate
// snapshot is stamped on every editable save; from submission onward
// it is frozen.
type EntryService struct {
	entries     store.TimeEntryStore
	profiles    store.ProfileStore
	memberships *MembershipService
	policy      auth.Policy
}

// NewEntryService creates a new entry service.
func NewEntryService(entries store.TimeEntryStore, profiles store.ProfileStore, memberships *MembershipService) *EntryService {
	return &EntryService{
		entries:     entries,
		profiles:    profiles,
		memberships: memberships,
	}
}

// EntryInput carries the editable fields of a time entry.
type EntryInput struct {
	UserID    *uuid.UUID // defaults to the actor; admins may set it
	ProjectID *uuid.UUID
	EntryDate time.Time
	TimeIn    string
	TimeOut   string
	LunchHrs  float64
	Mileage   float64
	Notes     string
}

// Create validates input, stamps the rate snapshot from the owner's
// live rate, and persists a new draft entry.
func (s *EntryService) Create(ctx context.Context, actor *auth.Actor, input EntryInput) (*models.TimeEntry, error) {
	owner, err := s.resolveOwner(ctx, actor, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validateInput(ctx, owner, &input); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &models.TimeEntry{
		EntryID:            uuid.Must(uuid.NewV7()),
		OrgID:              actor.OrgID,
		UserID:             owner.ProfileID,
		ProjectID:          input.ProjectID,
		EntryDate:          timesheet.Midnight(input.EntryDate),
		TimeIn:             input.TimeIn,
		TimeOut:            input.TimeOut,
		LunchHrs:           input.LunchHrs,
		Mileage:            input.Mileage,
		Notes:              input.Notes,
		Status:             models.EntryStatusDraft,
		HourlyRateSnapshot: owner.HourlyRate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("entry_id", entry.EntryID.String()).
		Str("user_id", entry.UserID.String()).
		Msg("created time entry")

	return entry, nil
}

// Update rewrites an editable entry. A rejected entry returns to
// draft; locked entries fail with the store's locked error and are
// left untouched.
func (s *EntryService) Update(ctx context.Context, actor *auth.Actor, entryID uuid.UUID, input EntryInput) (*models.TimeEntry, error) {
	entry, err := s.entries.Get(ctx, actor.OrgID, entryID)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanEditEntry(actor, entry.UserID, entry.OrgID) {
		return nil, auth.ErrPermissionDenied
	}
	if entry.Locked() {
		return nil, store.ErrEntryLocked
	}

	owner, err := s.profiles.Get(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, owner, &input); err != nil {
		return nil, err
	}

	entry.ProjectID = input.ProjectID
	entry.EntryDate = timesheet.Midnight(input.EntryDate)
	entry.TimeIn = input.TimeIn
	entry.TimeOut = input.TimeOut
	entry.LunchHrs = input.LunchHrs
	entry.Mileage = input.Mileage
	entry.Notes = input.Notes
	entry.Status = models.EntryStatusDraft
	// Drafts track the live rate until submission freezes it.
	entry.HourlyRateSnapshot = owner.HourlyRate

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Get returns a single entry if the actor may see its owner.
func (s *EntryService) Get(ctx context.Context, actor *auth.Actor, entryID uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.entries.Get(ctx, actor.OrgID, entryID)
	if err != nil {
		return nil, err
	}

	owner, err := s.profiles.Get(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanViewUser(actor, owner) {
		return nil, store.ErrEntryNotFound
	}

	return entry, nil
}

// List returns the entries visible to the actor, filtered by opts.
func (s *EntryService) List(ctx context.Context, actor *auth.Actor, opts store.ListEntriesOptions) ([]*models.TimeEntry, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
		return nil, validationf("date range end precedes start")
	}

	return s.entries.List(ctx, scopeFor(actor), opts)
}

// Delete removes an entry outright. Admin only.
func (s *EntryService) Delete(ctx context.Context, actor *auth.Actor, entryID uuid.UUID) error {
	if err := s.policy.Require(actor, auth.PermManageProfiles); err != nil {
		return err
	}
	return s.entries.Delete(ctx, actor.OrgID, entryID)
}

// SubmitWeekInput identifies one user's reporting week. WeekStart is
// the project week convention; callers pass the project's setting and
// it defaults to sunday.
type SubmitWeekInput struct {
	UserID    uuid.UUID // defaults to the actor
	WeekOf    time.Time // any date inside the target week
	WeekStart models.WeekStart
}

// SubmitWeek moves all of the user's draft and rejected entries in the
// target week to submitted, atomically. Every entry must carry a
// project reference; an empty week is a validation error.
func (s *EntryService) SubmitWeek(ctx context.Context, actor *auth.Actor, input SubmitWeekInput) (int64, error) {
	if actor == nil {
		return 0, auth.ErrUnauthenticated
	}
	userID := input.UserID
	if userID == uuid.Nil {
		userID = actor.ID
	}
	owner, err := s.resolveOwner(ctx, actor, &userID)
	if err != nil {
		return 0, err
	}

	if input.WeekOf.IsZero() {
		return 0, validationf("week_of date is required")
	}
	weekStart := input.WeekStart
	if weekStart == "" {
		weekStart = models.WeekStartSunday
	}
	if !weekStart.Valid() {
		return 0, validationf("unknown week start %q", input.WeekStart)
	}

	start, end := timesheet.WeekBounds(input.WeekOf, weekStart)

	editable := []models.EntryStatus{models.EntryStatusDraft, models.EntryStatusRejected}
	pending, err := s.entries.List(ctx, store.Scope{
		ActorID:    owner.ProfileID,
		ActorOrgID: owner.OrgID,
		ActorRole:  models.RoleContractor, // own rows only
	}, store.ListEntriesOptions{From: start, To: end, Statuses: editable})
	if err != nil {
		return 0, err
	}

	if len(pending) == 0 {
		return 0, ErrNothingToSubmit
	}
	for _, e := range pending {
		if e.ProjectID == nil {
			return 0, validationf("entry on %s has no project", e.EntryDate.Format("2006-01-02"))
		}
	}

	affected, err := s.entries.TransitionWeek(ctx, store.WeekTransition{
		OrgID:          owner.OrgID,
		UserID:         owner.ProfileID,
		WeekStart:      start,
		WeekEnd:        end,
		From:           editable,
		To:             models.EntryStatusSubmitted,
		RequireProject: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to submit week: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", owner.ProfileID.String()).
		Time("week_start", start).
		Int64("entries", affected).
		Msg("week submitted")

	return affected, nil
}

// resolveOwner loads and authorizes the profile an entry operation
// acts on behalf of.
func (s *EntryService) resolveOwner(ctx context.Context, actor *auth.Actor, userID *uuid.UUID) (*models.Profile, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}

	ownerID := actor.ID
	if userID != nil && *userID != uuid.Nil {
		ownerID = *userID
	}

	owner, err := s.profiles.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanEditEntry(actor, owner.ProfileID, owner.OrgID) {
		return nil, auth.ErrPermissionDenied
	}
	if !owner.Active {
		return nil, validationf("profile is deactivated")
	}

	return owner, nil
}

// validateInput checks the editable fields and the project reference.
func (s *EntryService) validateInput(ctx context.Context, owner *models.Profile, input *EntryInput) error {
	if input.EntryDate.IsZero() {
		return validationf("entry date is required")
	}
	if input.LunchHrs < 0 {
		return validationf("lunch hours cannot be negative")
	}
	if input.Mileage < 0 {
		return validationf("mileage cannot be negative")
	}
	if input.TimeIn != "" || input.TimeOut != "" {
		if _, err := timesheet.ComputeHours(input.TimeIn, input.TimeOut, input.LunchHrs); err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, err)
		}
	}

	if input.ProjectID != nil {
		ok, err := s.memberships.CanLogAgainst(ctx, owner, *input.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return validationf("no access to project")
		}
	}

	return nil
}

func scopeFor(actor *auth.Actor) store.Scope {
	return store.Scope{
		ActorID:    actor.ID,
		ActorOrgID: actor.OrgID,
		ActorRole:  actor.Role,
	}
}
