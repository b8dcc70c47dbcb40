package server

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// InviteService creates profiles on behalf of an admin. Mail delivery
// and identity-provider onboarding happen elsewhere; this only records
// the profile and its project access.
type InviteService struct {
	profiles store.ProfileStore
	projects store.ProjectStore
	policy   auth.Policy
}

// NewInviteService creates a new invite service.
func NewInviteService(profiles store.ProfileStore, projects store.ProjectStore) *InviteService {
	return &InviteService{
		profiles: profiles,
		projects: projects,
	}
}

// InviteInput is the invite request payload.
type InviteInput struct {
	Email      string
	FullName   string
	Role       models.Role
	HourlyRate *float64
	ManagerID  *uuid.UUID
	ProjectIDs []uuid.UUID
}

// Invite creates a profile and optional project memberships. Admin
// only. Hourly rate is accepted for contractors and nothing else.
func (s *InviteService) Invite(ctx context.Context, actor *auth.Actor, input InviteInput) (*models.Profile, error) {
	if err := s.policy.Require(actor, auth.PermInvite); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationf("a valid email is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, validationf("full name is required")
	}
	if !input.Role.Valid() {
		return nil, validationf("unknown role %q", input.Role)
	}

	if input.HourlyRate != nil {
		if input.Role != models.RoleContractor {
			return nil, validationf("hourly rate is only valid for contractors")
		}
		if *input.HourlyRate < 0 {
			return nil, validationf("hourly rate cannot be negative")
		}
	}

	if input.ManagerID != nil {
		manager, err := s.profiles.Get(ctx, *input.ManagerID)
		if err != nil {
			return nil, err
		}
		if manager.OrgID != actor.OrgID {
			return nil, validationf("manager is outside the organization")
		}
		if !manager.Role.CanManage() {
			return nil, validationf("manager must hold an admin or manager role")
		}
	}

	for _, projectID := range input.ProjectIDs {
		project, err := s.projects.Get(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project.OrgID != actor.OrgID {
			return nil, store.ErrProjectNotFound
		}
		if !project.Active {
			return nil, validationf("project %q is not active", project.Name)
		}
	}

	now := time.Now()
	profile := &models.Profile{
		ProfileID:  uuid.Must(uuid.NewV7()),
		OrgID:      actor.OrgID,
		Role:       input.Role,
		FullName:   strings.TrimSpace(input.FullName),
		Email:      email,
		HourlyRate: input.HourlyRate,
		ManagerID:  input.ManagerID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	for _, projectID := range input.ProjectIDs {
		err := s.projects.AddMembership(ctx, &models.ProjectMembership{
			MembershipID: uuid.Must(uuid.NewV7()),
			OrgID:        actor.OrgID,
			ProjectID:    projectID,
			ProfileID:    profile.ProfileID,
			Active:       true,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("profile_id", profile.ProfileID.String()).
		Str("role", string(profile.Role)).
		Int("projects", len(input.ProjectIDs)).
		Msg("profile invited")

	return profile, nil
}
