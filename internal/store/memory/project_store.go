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

type membershipKey struct {
	projectID uuid.UUID
	profileID uuid.UUID
}

// ProjectStore implements store.ProjectStore using in-memory storage.
type ProjectStore struct {
	mu sync.RWMutex

	projects    map[uuid.UUID]*models.Project
	memberships map[membershipKey]*models.ProjectMembership
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects:    make(map[uuid.UUID]*models.Project),
		memberships: make(map[membershipKey]*models.ProjectMembership),
	}
}

// Create creates a new project in memory.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ProjectID]; exists {
		return store.ErrProjectAlreadyExists
	}

	clone := *project
	s.projects[project.ProjectID] = &clone

	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[projectID]
	if !exists {
		return nil, store.ErrProjectNotFound
	}

	clone := *project
	return &clone, nil
}

// Update updates an existing project.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ProjectID]; !exists {
		return store.ErrProjectNotFound
	}

	clone := *project
	clone.UpdatedAt = time.Now()
	s.projects[project.ProjectID] = &clone

	return nil
}

// ListByOrg returns projects in an organization.
func (s *ProjectStore) ListByOrg(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var projects []*models.Project
	for _, p := range s.projects {
		if p.OrgID != orgID {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		clone := *p
		projects = append(projects, &clone)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Name < projects[j].Name
	})

	return projects, nil
}

// AddMembership grants a profile access to a project, reactivating a
// deactivated membership if one exists.
func (s *ProjectStore) AddMembership(ctx context.Context, membership *models.ProjectMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[membership.ProjectID]; !exists {
		return store.ErrProjectNotFound
	}

	key := membershipKey{projectID: membership.ProjectID, profileID: membership.ProfileID}
	if existing, exists := s.memberships[key]; exists {
		if existing.Active {
			return store.ErrMembershipAlreadyExists
		}
		existing.Active = true
		return nil
	}

	clone := *membership
	clone.Active = true
	s.memberships[key] = &clone

	return nil
}

// RemoveMembership deactivates a membership.
func (s *ProjectStore) RemoveMembership(ctx context.Context, projectID, profileID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey{projectID: projectID, profileID: profileID}
	membership, exists := s.memberships[key]
	if !exists || !membership.Active {
		return store.ErrMembershipNotFound
	}

	membership.Active = false
	return nil
}

// ListMemberships returns a profile's active memberships.
func (s *ProjectStore) ListMemberships(ctx context.Context, profileID uuid.UUID) ([]*models.ProjectMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []*models.ProjectMembership
	for _, m := range s.memberships {
		if m.ProfileID == profileID && m.Active {
			clone := *m
			memberships = append(memberships, &clone)
		}
	}

	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].CreatedAt.Before(memberships[j].CreatedAt)
	})

	return memberships, nil
}
