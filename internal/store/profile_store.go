package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Sentinel errors for profile store operations
var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

// ProfileStore defines the interface for profile storage operations.
// Profiles are soft-deactivated via the Active flag, never deleted:
// historical time entries must keep resolving to their owner.
type ProfileStore interface {
	// Create creates a new profile.
	// Returns ErrProfileAlreadyExists if the id or the (org, email)
	// pair is already taken.
	Create(ctx context.Context, profile *models.Profile) error

	// Get retrieves a profile by ID.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)

	// GetByEmail retrieves a profile by email within an organization.
	GetByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.Profile, error)

	// Update updates an existing profile.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Update(ctx context.Context, profile *models.Profile) error

	// ListByOrg returns all profiles in an organization, newest first.
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Profile, error)

	// ListDirectReports returns the profiles whose manager_id equals
	// managerID.
	ListDirectReports(ctx context.Context, managerID uuid.UUID) ([]*models.Profile, error)
}
