package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/timesheet"
)

// ApprovalService resolves one user's submitted week to approved or
// rejected. Authorization precedes the transition; the transition
// itself is one atomic batch, and re-running it against an already
// resolved week affects zero rows.
type ApprovalService struct {
	entries  store.TimeEntryStore
	profiles store.ProfileStore
	policy   auth.Policy
}

// NewApprovalService creates a new approval service.
func NewApprovalService(entries store.TimeEntryStore, profiles store.ProfileStore) *ApprovalService {
	return &ApprovalService{
		entries:  entries,
		profiles: profiles,
	}
}

// WeekRequest identifies the target user's reporting week.
type WeekRequest struct {
	UserID    uuid.UUID
	WeekOf    time.Time
	WeekStart models.WeekStart // defaults to sunday
}

// ApproveWeek approves every submitted entry in the target week.
// Returns the number of entries that moved; zero means the week was
// already resolved, which is a no-op, not an error.
func (s *ApprovalService) ApproveWeek(ctx context.Context, actor *auth.Actor, req WeekRequest) (int64, error) {
	target, start, end, err := s.authorize(ctx, actor, req)
	if err != nil {
		return 0, err
	}

	approvedAt := time.Now()
	affected, err := s.entries.TransitionWeek(ctx, store.WeekTransition{
		OrgID:      target.OrgID,
		UserID:     target.ProfileID,
		WeekStart:  start,
		WeekEnd:    end,
		From:       []models.EntryStatus{models.EntryStatusSubmitted},
		To:         models.EntryStatusApproved,
		ApproverID: &actor.ID,
		ApprovedAt: &approvedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to approve week: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", target.ProfileID.String()).
		Str("approver_id", actor.ID.String()).
		Time("week_start", start).
		Int64("entries", affected).
		Msg("week approved")

	return affected, nil
}

// RejectWeek sends every submitted entry in the target week back to
// its owner for editing. Approver fields are cleared.
func (s *ApprovalService) RejectWeek(ctx context.Context, actor *auth.Actor, req WeekRequest) (int64, error) {
	target, start, end, err := s.authorize(ctx, actor, req)
	if err != nil {
		return 0, err
	}

	affected, err := s.entries.TransitionWeek(ctx, store.WeekTransition{
		OrgID:     target.OrgID,
		UserID:    target.ProfileID,
		WeekStart: start,
		WeekEnd:   end,
		From:      []models.EntryStatus{models.EntryStatusSubmitted},
		To:        models.EntryStatusRejected,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reject week: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("user_id", target.ProfileID.String()).
		Str("approver_id", actor.ID.String()).
		Time("week_start", start).
		Int64("entries", affected).
		Msg("week rejected")

	return affected, nil
}

// authorize validates the request and checks the actor may approve for
// the target user. Nothing is written when it fails.
func (s *ApprovalService) authorize(ctx context.Context, actor *auth.Actor, req WeekRequest) (*models.Profile, time.Time, time.Time, error) {
	var zero time.Time

	if actor == nil {
		return nil, zero, zero, auth.ErrUnauthenticated
	}
	if req.UserID == uuid.Nil {
		return nil, zero, zero, validationf("user id is required")
	}
	if req.WeekOf.IsZero() {
		return nil, zero, zero, validationf("week_of date is required")
	}

	weekStart := req.WeekStart
	if weekStart == "" {
		weekStart = models.WeekStartSunday
	}
	if !weekStart.Valid() {
		return nil, zero, zero, validationf("unknown week start %q", req.WeekStart)
	}

	target, err := s.profiles.Get(ctx, req.UserID)
	if err != nil {
		return nil, zero, zero, err
	}
	if !s.policy.CanApprove(actor, target) {
		return nil, zero, zero, auth.ErrPermissionDenied
	}

	start, end := timesheet.WeekBounds(req.WeekOf, weekStart)
	return target, start, end, nil
}
