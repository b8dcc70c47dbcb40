package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// TimeEntryStore implements store.TimeEntryStore using in-memory
// storage. It needs the profile store to resolve manager scopes the
// same way the SQL subquery does.
type TimeEntryStore struct {
	mu sync.RWMutex

	entries  map[uuid.UUID]*models.TimeEntry
	profiles *ProfileStore
}

// NewTimeEntryStore creates a new in-memory time entry store.
func NewTimeEntryStore(profiles *ProfileStore) *TimeEntryStore {
	return &TimeEntryStore{
		entries:  make(map[uuid.UUID]*models.TimeEntry),
		profiles: profiles,
	}
}

// Create persists a new entry.
func (s *TimeEntryStore) Create(ctx context.Context, entry *models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries[entry.EntryID] = &clone

	return nil
}

// Get retrieves an entry by ID within an organization.
func (s *TimeEntryStore) Get(ctx context.Context, orgID, entryID uuid.UUID) (*models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[entryID]
	if !exists || entry.OrgID != orgID {
		return nil, store.ErrEntryNotFound
	}

	clone := *entry
	return &clone, nil
}

// Update rewrites an editable entry. Locked entries are left untouched.
func (s *TimeEntryStore) Update(ctx context.Context, entry *models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.entries[entry.EntryID]
	if !exists || existing.OrgID != entry.OrgID {
		return store.ErrEntryNotFound
	}
	if !existing.Status.Editable() {
		return store.ErrEntryLocked
	}

	clone := *entry
	clone.UpdatedAt = time.Now()
	s.entries[entry.EntryID] = &clone

	return nil
}

// Delete removes an entry outright.
func (s *TimeEntryStore) Delete(ctx context.Context, orgID, entryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[entryID]
	if !exists || entry.OrgID != orgID {
		return store.ErrEntryNotFound
	}

	delete(s.entries, entryID)
	return nil
}

// List returns entries visible under scope, filtered and ordered by
// entry date ascending.
func (s *TimeEntryStore) List(ctx context.Context, scope store.Scope, opts store.ListEntriesOptions) ([]*models.TimeEntry, error) {
	visible, err := s.visibleUserIDs(ctx, scope)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*models.TimeEntry
	for _, e := range s.entries {
		if e.OrgID != scope.ActorOrgID {
			continue
		}
		if visible != nil && !visible[e.UserID] {
			continue
		}
		if !matchesOptions(e, opts) {
			continue
		}
		clone := *e
		entries = append(entries, &clone)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].EntryDate.Equal(entries[j].EntryDate) {
			return entries[i].EntryDate.Before(entries[j].EntryDate)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries, nil
}

// visibleUserIDs resolves the scope to a user id set. A nil set means
// no per-user restriction (admin).
func (s *TimeEntryStore) visibleUserIDs(ctx context.Context, scope store.Scope) (map[uuid.UUID]bool, error) {
	switch scope.ActorRole {
	case models.RoleAdmin:
		return nil, nil
	case models.RoleManager:
		reports, err := s.profiles.ListDirectReports(ctx, scope.ActorID)
		if err != nil {
			return nil, err
		}
		visible := map[uuid.UUID]bool{scope.ActorID: true}
		for _, r := range reports {
			visible[r.ProfileID] = true
		}
		return visible, nil
	default:
		return map[uuid.UUID]bool{scope.ActorID: true}, nil
	}
}

func matchesOptions(e *models.TimeEntry, opts store.ListEntriesOptions) bool {
	if !opts.From.IsZero() && e.EntryDate.Before(opts.From) {
		return false
	}
	if !opts.To.IsZero() && e.EntryDate.After(opts.To) {
		return false
	}
	if len(opts.Statuses) > 0 {
		found := false
		for _, status := range opts.Statuses {
			if e.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if opts.UserID != nil && e.UserID != *opts.UserID {
		return false
	}
	if opts.ProjectID != nil && (e.ProjectID == nil || *e.ProjectID != *opts.ProjectID) {
		return false
	}
	return true
}

// TransitionWeek applies tr atomically under the store lock.
func (s *TimeEntryStore) TransitionWeek(ctx context.Context, tr store.WeekTransition) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := make(map[models.EntryStatus]bool, len(tr.From))
	for _, status := range tr.From {
		from[status] = true
	}

	now := time.Now()
	var affected int64
	for _, e := range s.entries {
		if e.OrgID != tr.OrgID || e.UserID != tr.UserID {
			continue
		}
		if e.EntryDate.Before(tr.WeekStart) || e.EntryDate.After(tr.WeekEnd) {
			continue
		}
		if !from[e.Status] {
			continue
		}
		if tr.RequireProject && e.ProjectID == nil {
			continue
		}

		e.Status = tr.To
		e.ApproverID = tr.ApproverID
		e.ApprovedAt = tr.ApprovedAt
		e.UpdatedAt = now
		affected++
	}

	return affected, nil
}
