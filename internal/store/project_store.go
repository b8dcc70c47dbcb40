package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Sentinel errors for project store operations
var (
	ErrProjectNotFound         = errors.New("project not found")
	ErrProjectAlreadyExists    = errors.New("project already exists")
	ErrMembershipNotFound      = errors.New("project membership not found")
	ErrMembershipAlreadyExists = errors.New("project membership already exists")
)

// ProjectStore defines the interface for project and membership
// storage operations. Projects and memberships are deactivated, not
// deleted.
type ProjectStore interface {
	// Create creates a new project.
	Create(ctx context.Context, project *models.Project) error

	// Get retrieves a project by ID.
	// Returns ErrProjectNotFound if the project doesn't exist.
	Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	// Update updates an existing project (rename, deactivate, change
	// week convention).
	Update(ctx context.Context, project *models.Project) error

	// ListByOrg returns projects in an organization, optionally only
	// active ones.
	ListByOrg(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*models.Project, error)

	// AddMembership grants a profile access to a project. Re-adding a
	// deactivated membership reactivates it.
	AddMembership(ctx context.Context, membership *models.ProjectMembership) error

	// RemoveMembership deactivates a profile's membership on a project.
	// Returns ErrMembershipNotFound if no active membership exists.
	RemoveMembership(ctx context.Context, projectID, profileID uuid.UUID) error

	// ListMemberships returns a profile's active memberships.
	ListMemberships(ctx context.Context, profileID uuid.UUID) ([]*models.ProjectMembership, error)
}
