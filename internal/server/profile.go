package server

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// ProfileService applies the field-level mutation rules for profiles:
// admins edit anything, managers edit their reports' rate, users edit
// their own name and onboarding marker. Rate changes never touch
// existing time entries; snapshots are the entries' own.
type ProfileService struct {
	profiles store.ProfileStore
	policy   auth.Policy
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles store.ProfileStore) *ProfileService {
	return &ProfileService{
		profiles: profiles,
	}
}

// Get returns a profile if the actor may see it.
func (s *ProfileService) Get(ctx context.Context, actor *auth.Actor, profileID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanViewUser(actor, profile) {
		return nil, store.ErrProfileNotFound
	}
	return profile, nil
}

// List returns the profiles visible to the actor: the whole org for
// admins, direct reports plus self for managers, self for contractors.
func (s *ProfileService) List(ctx context.Context, actor *auth.Actor) ([]*models.Profile, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}

	switch actor.Role {
	case models.RoleAdmin:
		return s.profiles.ListByOrg(ctx, actor.OrgID)
	case models.RoleManager:
		reports, err := s.profiles.ListDirectReports(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		self, err := s.profiles.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return append(reports, self), nil
	default:
		self, err := s.profiles.Get(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return []*models.Profile{self}, nil
	}
}

// UpdateProfileInput carries the mutable profile fields. Nil means
// "leave unchanged". RateSet distinguishes clearing the rate from not
// touching it.
type UpdateProfileInput struct {
	FullName   *string
	Role       *models.Role
	HourlyRate *float64
	RateSet    bool
	ManagerID  *uuid.UUID
	ManagerSet bool
	Active     *bool
	Onboarded  *bool
}

// Update applies the role-gated mutation rules and persists the
// result.
func (s *ProfileService) Update(ctx context.Context, actor *auth.Actor, profileID uuid.UUID, input UpdateProfileInput) (*models.Profile, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}

	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.OrgID != actor.OrgID {
		return nil, store.ErrProfileNotFound
	}

	isSelf := actor.ID == profileID
	isAdmin := actor.Role == models.RoleAdmin

	if input.FullName != nil {
		if !isAdmin && !isSelf {
			return nil, auth.ErrPermissionDenied
		}
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, validationf("full name cannot be empty")
		}
		profile.FullName = name
	}

	if input.Onboarded != nil {
		if !isAdmin && !isSelf {
			return nil, auth.ErrPermissionDenied
		}
		profile.Onboarded = *input.Onboarded
	}

	if input.RateSet {
		if !s.policy.CanEditRate(actor, profile) {
			return nil, auth.ErrPermissionDenied
		}
		if input.HourlyRate != nil {
			if profile.Role != models.RoleContractor {
				return nil, validationf("hourly rate is only valid for contractors")
			}
			if *input.HourlyRate < 0 {
				return nil, validationf("hourly rate cannot be negative")
			}
		}
		profile.HourlyRate = input.HourlyRate
	}

	if input.Role != nil {
		if !isAdmin {
			return nil, auth.ErrPermissionDenied
		}
		if !input.Role.Valid() {
			return nil, validationf("unknown role %q", *input.Role)
		}
		if profile.Role.CanManage() && !input.Role.CanManage() {
			reports, err := s.profiles.ListDirectReports(ctx, profile.ProfileID)
			if err != nil {
				return nil, err
			}
			if len(reports) > 0 {
				return nil, validationf("profile still manages %d direct reports, reassign them first", len(reports))
			}
		}
		profile.Role = *input.Role
		if profile.Role != models.RoleContractor {
			profile.HourlyRate = nil
		}
	}

	if input.ManagerSet {
		if !isAdmin {
			return nil, auth.ErrPermissionDenied
		}
		if input.ManagerID != nil {
			if *input.ManagerID == profileID {
				return nil, validationf("a profile cannot manage itself")
			}
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
		profile.ManagerID = input.ManagerID
	}

	if input.Active != nil {
		if !isAdmin {
			return nil, auth.ErrPermissionDenied
		}
		profile.Active = *input.Active
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Deactivate soft-deletes a profile. Admin only; entries stay.
func (s *ProfileService) Deactivate(ctx context.Context, actor *auth.Actor, profileID uuid.UUID) error {
	if err := s.policy.Require(actor, auth.PermManageProfiles); err != nil {
		return err
	}

	inactive := false
	_, err := s.Update(ctx, actor, profileID, UpdateProfileInput{Active: &inactive})
	return err
}
