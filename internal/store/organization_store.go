// Package store defines the storage interfaces the engine runs
// against, with in-memory and PostgreSQL implementations in
// subpackages. Role scoping is part of the storage contract: scoped
// reads and conditional transitions are enforced here, not just in
// application code.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage
// operations. Organizations are tenants; they are created once and
// never mutated or deleted.
type OrganizationStore interface {
	// Create creates a new organization.
	// Returns ErrOrganizationAlreadyExists on an id or name collision.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// GetByName retrieves an organization by name. Used by bootstrap
	// seeding to stay idempotent.
	GetByName(ctx context.Context, name string) (*models.Organization, error)
}
