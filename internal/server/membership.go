package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// MembershipService resolves which projects a profile may log time
// against. Admins and managers act org-wide; contractors need an
// active membership on an active project.
type MembershipService struct {
	projects store.ProjectStore
}

// NewMembershipService creates a new membership resolver.
func NewMembershipService(projects store.ProjectStore) *MembershipService {
	return &MembershipService{
		projects: projects,
	}
}

// Resolve returns the projects the actor may log time against. An
// empty result is a valid "no access" outcome, not an error; callers
// surface it to the user instead of treating it as success.
func (s *MembershipService) Resolve(ctx context.Context, actor *auth.Actor) ([]*models.Project, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}

	if actor.Role.CanManage() {
		return s.projects.ListByOrg(ctx, actor.OrgID, true)
	}

	memberships, err := s.projects.ListMemberships(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve memberships: %w", err)
	}

	var projects []*models.Project
	for _, m := range memberships {
		project, err := s.projects.Get(ctx, m.ProjectID)
		if err != nil {
			if errors.Is(err, store.ErrProjectNotFound) {
				continue
			}
			return nil, err
		}
		if project.Active && project.OrgID == actor.OrgID {
			projects = append(projects, project)
		}
	}

	return projects, nil
}

// CanLogAgainst reports whether the owner profile may log time on the
// given project. Used when entries are created or repointed.
func (s *MembershipService) CanLogAgainst(ctx context.Context, owner *models.Profile, projectID uuid.UUID) (bool, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return false, nil
		}
		return false, err
	}
	if !project.Active || project.OrgID != owner.OrgID {
		return false, nil
	}

	if owner.Role.CanManage() {
		return true, nil
	}

	memberships, err := s.projects.ListMemberships(ctx, owner.ProfileID)
	if err != nil {
		return false, err
	}
	for _, m := range memberships {
		if m.ProjectID == projectID {
			return true, nil
		}
	}

	return false, nil
}
