package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Sentinel errors for time entry store operations
var (
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrEntryLocked is returned when a write targets an entry whose
	// status is submitted or approved. The write has no effect.
	ErrEntryLocked = errors.New("time entry is locked")
)

// Scope carries the acting user's role-derived visibility. Every read
// goes through it; implementations compile it into their filtering so
// application code and storage cannot disagree about who sees what.
//
//   - admin: all entries in ActorOrgID
//   - manager: entries of profiles managed by ActorID, plus their own
//   - contractor: only the actor's own entries
type Scope struct {
	ActorID    uuid.UUID
	ActorOrgID uuid.UUID
	ActorRole  models.Role
}

// ListEntriesOptions specifies filters for listing time entries.
// Zero-value fields are ignored.
type ListEntriesOptions struct {
	From      time.Time // inclusive entry_date lower bound
	To        time.Time // inclusive entry_date upper bound
	Statuses  []models.EntryStatus
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
}

// WeekTransition describes an atomic status change over one user's
// entries within one reporting week. Only entries currently in one of
// the From statuses move; the rest are untouched. Approver fields are
// written on approval and cleared otherwise.
type WeekTransition struct {
	OrgID     uuid.UUID
	UserID    uuid.UUID
	WeekStart time.Time // inclusive
	WeekEnd   time.Time // inclusive
	From      []models.EntryStatus
	To        models.EntryStatus

	// RequireProject excludes entries without a project reference.
	// Set on submission, where a project is a precondition; an entry
	// saved project-less between the caller's validation and the
	// transition must stay behind rather than slip through.
	RequireProject bool

	// Approver metadata, set when To is approved.
	ApproverID *uuid.UUID
	ApprovedAt *time.Time
}

// TimeEntryStore defines the interface for time entry storage.
type TimeEntryStore interface {
	// Create persists a new entry. The caller stamps the rate
	// snapshot before calling.
	Create(ctx context.Context, entry *models.TimeEntry) error

	// Get retrieves an entry by ID within an organization.
	// Returns ErrEntryNotFound if it doesn't exist.
	Get(ctx context.Context, orgID, entryID uuid.UUID) (*models.TimeEntry, error)

	// Update rewrites an editable entry. The update is conditional on
	// the stored status still being draft or rejected; a locked entry
	// returns ErrEntryLocked and changes nothing.
	Update(ctx context.Context, entry *models.TimeEntry) error

	// Delete removes an entry outright. Administrative use only.
	Delete(ctx context.Context, orgID, entryID uuid.UUID) error

	// List returns entries visible under scope, filtered by opts,
	// ordered by entry date ascending. An empty result is a valid
	// outcome, not an error.
	List(ctx context.Context, scope Scope, opts ListEntriesOptions) ([]*models.TimeEntry, error)

	// TransitionWeek applies tr atomically and returns the number of
	// entries that moved. All-or-nothing: a late failure leaves every
	// row unchanged. Zero rows is not an error; it is how a repeated
	// approval of an already-resolved week comes back as a no-op.
	TransitionWeek(ctx context.Context, tr WeekTransition) (int64, error)
}
