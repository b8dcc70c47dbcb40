package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

const entryColumns = `
	entry_id, org_id, user_id, project_id, entry_date, time_in, time_out,
	lunch_hours, mileage, notes, status, hourly_rate_snapshot,
	approver_id, approved_at, created_at, updated_at
`

// TimeEntryStore implements store.TimeEntryStore using PostgreSQL.
//
// Scoping is part of every read query and status transitions are
// conditional updates, so the database enforces the same rules the
// application layer checks. A racing second approval simply matches
// zero rows.
type TimeEntryStore struct {
	pool *pgxpool.Pool
}

// NewTimeEntryStore creates a new PostgreSQL-backed time entry store.
func NewTimeEntryStore(pool *pgxpool.Pool) *TimeEntryStore {
	return &TimeEntryStore{
		pool: pool,
	}
}

// Create persists a new entry.
func (s *TimeEntryStore) Create(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		INSERT INTO time_entries (
			entry_id, org_id, user_id, project_id, entry_date, time_in, time_out,
			lunch_hours, mileage, notes, status, hourly_rate_snapshot,
			approver_id, approved_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := s.pool.Exec(ctx, query,
		entry.EntryID,
		entry.OrgID,
		entry.UserID,
		entry.ProjectID,
		entry.EntryDate,
		entry.TimeIn,
		entry.TimeOut,
		entry.LunchHrs,
		entry.Mileage,
		entry.Notes,
		entry.Status,
		entry.HourlyRateSnapshot,
		entry.ApproverID,
		entry.ApprovedAt,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrEntryNotFound
		}
		return fmt.Errorf("failed to create time entry: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("entry_id", entry.EntryID.String()).
		Str("user_id", entry.UserID.String()).
		Msg("Created time entry")

	return nil
}

// Get retrieves an entry by ID within an organization.
func (s *TimeEntryStore) Get(ctx context.Context, orgID, entryID uuid.UUID) (*models.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE org_id = $1 AND entry_id = $2`

	entry, err := scanEntry(s.pool.QueryRow(ctx, query, orgID, entryID))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Update rewrites an editable entry. The stored status is checked in
// the UPDATE itself; a locked entry matches zero rows and is reported
// as ErrEntryLocked.
func (s *TimeEntryStore) Update(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		UPDATE time_entries SET
			project_id = $3,
			entry_date = $4,
			time_in = $5,
			time_out = $6,
			lunch_hours = $7,
			mileage = $8,
			notes = $9,
			status = $10,
			hourly_rate_snapshot = $11,
			updated_at = NOW()
		WHERE org_id = $1
		  AND entry_id = $2
		  AND status IN ('draft', 'rejected')
	`

	result, err := s.pool.Exec(ctx, query,
		entry.OrgID,
		entry.EntryID,
		entry.ProjectID,
		entry.EntryDate,
		entry.TimeIn,
		entry.TimeOut,
		entry.LunchHrs,
		entry.Mileage,
		entry.Notes,
		entry.Status,
		entry.HourlyRateSnapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing entry from a locked one.
		if _, err := s.Get(ctx, entry.OrgID, entry.EntryID); err != nil {
			return err
		}
		return store.ErrEntryLocked
	}

	return nil
}

// Delete removes an entry outright. Administrative use only.
func (s *TimeEntryStore) Delete(ctx context.Context, orgID, entryID uuid.UUID) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM time_entries WHERE org_id = $1 AND entry_id = $2`, orgID, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrEntryNotFound
	}

	log.Info().
		Str("entry_id", entryID.String()).
		Msg("Deleted time entry")

	return nil
}

// List returns entries visible under scope, filtered by opts, ordered
// by entry date ascending.
func (s *TimeEntryStore) List(ctx context.Context, scope store.Scope, opts store.ListEntriesOptions) ([]*models.TimeEntry, error) {
	query := `SELECT ` + entryColumns + `
		FROM time_entries
		WHERE org_id = $1
	`
	args := []any{scope.ActorOrgID}

	// Role scoping, mirrored by auth.Policy. Admins see the org;
	// managers see direct reports plus themselves; everyone else
	// sees only their own rows.
	switch scope.ActorRole {
	case models.RoleAdmin:
		// no user restriction
	case models.RoleManager:
		args = append(args, scope.ActorID)
		query += fmt.Sprintf(`  AND (user_id = $%d OR user_id IN (
			SELECT profile_id FROM profiles WHERE manager_id = $%d
		))
		`, len(args), len(args))
	default:
		args = append(args, scope.ActorID)
		query += fmt.Sprintf("  AND user_id = $%d\n", len(args))
	}

	if !opts.From.IsZero() {
		args = append(args, opts.From)
		query += fmt.Sprintf("  AND entry_date >= $%d\n", len(args))
	}
	if !opts.To.IsZero() {
		args = append(args, opts.To)
		query += fmt.Sprintf("  AND entry_date <= $%d\n", len(args))
	}
	if len(opts.Statuses) > 0 {
		statuses := make([]string, len(opts.Statuses))
		for i, status := range opts.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		query += fmt.Sprintf("  AND status = ANY($%d)\n", len(args))
	}
	if opts.UserID != nil {
		args = append(args, *opts.UserID)
		query += fmt.Sprintf("  AND user_id = $%d\n", len(args))
	}
	if opts.ProjectID != nil {
		args = append(args, *opts.ProjectID)
		query += fmt.Sprintf("  AND project_id = $%d\n", len(args))
	}

	query += "ORDER BY entry_date ASC, created_at ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// TransitionWeek moves one user's entries within one week from the
// given statuses to the target status. A single conditional UPDATE
// makes the batch atomic and the operation idempotent: re-running it
// against an already-resolved week matches zero rows.
func (s *TimeEntryStore) TransitionWeek(ctx context.Context, tr store.WeekTransition) (int64, error) {
	from := make([]string, len(tr.From))
	for i, status := range tr.From {
		from[i] = string(status)
	}

	query := `
		UPDATE time_entries SET
			status = $1,
			approver_id = $2,
			approved_at = $3,
			updated_at = NOW()
		WHERE org_id = $4
		  AND user_id = $5
		  AND entry_date BETWEEN $6 AND $7
		  AND status = ANY($8)
	`
	if tr.RequireProject {
		query += "  AND project_id IS NOT NULL\n"
	}

	result, err := s.pool.Exec(ctx, query,
		tr.To,
		tr.ApproverID,
		tr.ApprovedAt,
		tr.OrgID,
		tr.UserID,
		tr.WeekStart,
		tr.WeekEnd,
		from,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to transition week: %w", mapPostgresError(err))
	}

	affected := result.RowsAffected()

	log.Debug().
		Str("user_id", tr.UserID.String()).
		Str("to", string(tr.To)).
		Int64("affected", affected).
		Msg("Week transition applied")

	return affected, nil
}

func scanEntry(row pgx.Row) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := row.Scan(
		&e.EntryID,
		&e.OrgID,
		&e.UserID,
		&e.ProjectID,
		&e.EntryDate,
		&e.TimeIn,
		&e.TimeOut,
		&e.LunchHrs,
		&e.Mileage,
		&e.Notes,
		&e.Status,
		&e.HourlyRateSnapshot,
		&e.ApproverID,
		&e.ApprovedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan time entry: %w", mapPostgresError(err))
	}
	return &e, nil
}
