package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

type emailKey struct {
	orgID uuid.UUID
	email string
}

// ProfileStore implements store.ProfileStore using in-memory storage.
type ProfileStore struct {
	mu sync.RWMutex

	profiles        map[uuid.UUID]*models.Profile
	profilesByEmail map[emailKey]*models.Profile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles:        make(map[uuid.UUID]*models.Profile),
		profilesByEmail: make(map[emailKey]*models.Profile),
	}
}

func profileEmailKey(orgID uuid.UUID, email string) emailKey {
	return emailKey{orgID: orgID, email: strings.ToLower(email)}
}

// Create creates a new profile in memory.
func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ProfileID]; exists {
		return store.ErrProfileAlreadyExists
	}
	key := profileEmailKey(profile.OrgID, profile.Email)
	if _, exists := s.profilesByEmail[key]; exists {
		return store.ErrProfileAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *profile
	s.profiles[profile.ProfileID] = &clone
	s.profilesByEmail[key] = &clone

	return nil
}

// Get retrieves a profile by ID.
func (s *ProfileStore) Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[profileID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	clone := *profile
	return &clone, nil
}

// GetByEmail retrieves a profile by email within an organization.
func (s *ProfileStore) GetByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profilesByEmail[profileEmailKey(orgID, email)]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	clone := *profile
	return &clone, nil
}

// Update updates an existing profile.
func (s *ProfileStore) Update(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.profiles[profile.ProfileID]
	if !exists {
		return store.ErrProfileNotFound
	}

	clone := *profile
	clone.UpdatedAt = time.Now()

	delete(s.profilesByEmail, profileEmailKey(existing.OrgID, existing.Email))
	s.profiles[profile.ProfileID] = &clone
	s.profilesByEmail[profileEmailKey(clone.OrgID, clone.Email)] = &clone

	return nil
}

// ListByOrg returns all profiles in an organization, newest first.
func (s *ProfileStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var profiles []*models.Profile
	for _, p := range s.profiles {
		if p.OrgID == orgID {
			clone := *p
			profiles = append(profiles, &clone)
		}
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})

	return profiles, nil
}

// ListDirectReports returns the profiles managed by managerID.
func (s *ProfileStore) ListDirectReports(ctx context.Context, managerID uuid.UUID) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reports []*models.Profile
	for _, p := range s.profiles {
		if p.IsDirectReportOf(managerID) {
			clone := *p
			reports = append(reports, &clone)
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	return reports, nil
}
