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

const profileColumns = `
	profile_id, org_id, role, full_name, email, hourly_rate,
	manager_id, active, onboarded, created_at, updated_at
`

// ProfileStore implements store.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a new PostgreSQL-backed profile store.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{
		pool: pool,
	}
}

// Create creates a new profile in the database.
func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (
			profile_id, org_id, role, full_name, email, hourly_rate,
			manager_id, active, onboarded, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, lower($5), $6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.pool.Exec(ctx, query,
		profile.ProfileID,
		profile.OrgID,
		profile.Role,
		profile.FullName,
		profile.Email,
		profile.HourlyRate,
		profile.ManagerID,
		profile.Active,
		profile.Onboarded,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("profile_id", profile.ProfileID.String()).
		Str("role", string(profile.Role)).
		Msg("Created profile")

	return nil
}

// Get retrieves a profile by ID.
func (s *ProfileStore) Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE profile_id = $1`
	return scanProfile(s.pool.QueryRow(ctx, query, profileID))
}

// GetByEmail retrieves a profile by email within an organization.
func (s *ProfileStore) GetByEmail(ctx context.Context, orgID uuid.UUID, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE org_id = $1 AND email = lower($2)`
	return scanProfile(s.pool.QueryRow(ctx, query, orgID, email))
}

// Update updates an existing profile.
func (s *ProfileStore) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE profiles SET
			role = $2,
			full_name = $3,
			email = lower($4),
			hourly_rate = $5,
			manager_id = $6,
			active = $7,
			onboarded = $8,
			updated_at = $9
		WHERE profile_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		profile.ProfileID,
		profile.Role,
		profile.FullName,
		profile.Email,
		profile.HourlyRate,
		profile.ManagerID,
		profile.Active,
		profile.Onboarded,
		profile.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to update profile: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrProfileNotFound
	}

	return nil
}

// ListByOrg returns all profiles in an organization, newest first.
func (s *ProfileStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE org_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// ListDirectReports returns the profiles whose manager_id equals managerID.
func (s *ProfileStore) ListDirectReports(ctx context.Context, managerID uuid.UUID) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE manager_id = $1 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct reports: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ProfileID,
		&p.OrgID,
		&p.Role,
		&p.FullName,
		&p.Email,
		&p.HourlyRate,
		&p.ManagerID,
		&p.Active,
		&p.Onboarded,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", mapPostgresError(err))
	}
	return &p, nil
}

func scanProfiles(rows pgx.Rows) ([]*models.Profile, error) {
	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}
