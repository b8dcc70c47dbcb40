package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// ProjectStore implements store.ProjectStore using PostgreSQL.
type ProjectStore struct {
	pool *pgxpool.Pool
}

// NewProjectStore creates a new PostgreSQL-backed project store.
func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{
		pool: pool,
	}
}

// Create creates a new project in the database.
func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (
			project_id, org_id, name, week_start, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.pool.Exec(ctx, query,
		project.ProjectID,
		project.OrgID,
		project.Name,
		project.WeekStart,
		project.Active,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProjectAlreadyExists
		}
		return fmt.Errorf("failed to create project: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("project_id", project.ProjectID.String()).
		Str("name", project.Name).
		Msg("Created project")

	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	query := `
		SELECT project_id, org_id, name, week_start, active, created_at, updated_at
		FROM projects
		WHERE project_id = $1
	`

	var p models.Project
	err := s.pool.QueryRow(ctx, query, projectID).Scan(
		&p.ProjectID,
		&p.OrgID,
		&p.Name,
		&p.WeekStart,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", mapPostgresError(err))
	}

	return &p, nil
}

// Update updates an existing project.
func (s *ProjectStore) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects SET
			name = $2,
			week_start = $3,
			active = $4,
			updated_at = $5
		WHERE project_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		project.ProjectID,
		project.Name,
		project.WeekStart,
		project.Active,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}

	return nil
}

// ListByOrg returns projects in an organization, name order.
func (s *ProjectStore) ListByOrg(ctx context.Context, orgID uuid.UUID, activeOnly bool) ([]*models.Project, error) {
	query := `
		SELECT project_id, org_id, name, week_start, active, created_at, updated_at
		FROM projects
		WHERE org_id = $1 AND ($2 = FALSE OR active)
		ORDER BY name ASC
	`

	rows, err := s.pool.Query(ctx, query, orgID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		err := rows.Scan(
			&p.ProjectID,
			&p.OrgID,
			&p.Name,
			&p.WeekStart,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// AddMembership grants a profile access to a project. Re-adding a
// deactivated membership reactivates it in place.
func (s *ProjectStore) AddMembership(ctx context.Context, membership *models.ProjectMembership) error {
	query := `
		INSERT INTO project_memberships (
			membership_id, org_id, project_id, profile_id, active, created_at
		) VALUES (
			$1, $2, $3, $4, TRUE, $5
		)
		ON CONFLICT (project_id, profile_id)
		DO UPDATE SET active = TRUE
	`

	_, err := s.pool.Exec(ctx, query,
		membership.MembershipID,
		membership.OrgID,
		membership.ProjectID,
		membership.ProfileID,
		membership.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrProjectNotFound
		}
		return fmt.Errorf("failed to add membership: %w", mapPostgresError(err))
	}

	return nil
}

// RemoveMembership deactivates a profile's membership on a project.
func (s *ProjectStore) RemoveMembership(ctx context.Context, projectID, profileID uuid.UUID) error {
	query := `
		UPDATE project_memberships
		SET active = FALSE
		WHERE project_id = $1 AND profile_id = $2 AND active
	`

	result, err := s.pool.Exec(ctx, query, projectID, profileID)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrMembershipNotFound
	}

	return nil
}

// ListMemberships returns a profile's active memberships.
func (s *ProjectStore) ListMemberships(ctx context.Context, profileID uuid.UUID) ([]*models.ProjectMembership, error) {
	query := `
		SELECT membership_id, org_id, project_id, profile_id, active, created_at
		FROM project_memberships
		WHERE profile_id = $1 AND active
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var memberships []*models.ProjectMembership
	for rows.Next() {
		var m models.ProjectMembership
		err := rows.Scan(
			&m.MembershipID,
			&m.OrgID,
			&m.ProjectID,
			&m.ProfileID,
			&m.Active,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}

	return memberships, nil
}
