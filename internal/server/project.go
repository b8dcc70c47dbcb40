package server

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// ProjectService is the admin surface for projects and memberships.
type ProjectService struct {
	projects store.ProjectStore
	profiles store.ProfileStore
	policy   auth.Policy
}

// NewProjectService creates a new project service.
func NewProjectService(projects store.ProjectStore, profiles store.ProfileStore) *ProjectService {
	return &ProjectService{
		projects: projects,
		profiles: profiles,
	}
}

// CreateProjectInput is the new-project payload.
type CreateProjectInput struct {
	Name      string
	WeekStart models.WeekStart
}

// Create makes a new active project. Admin only.
func (s *ProjectService) Create(ctx context.Context, actor *auth.Actor, input CreateProjectInput) (*models.Project, error) {
	if err := s.policy.Require(actor, auth.PermManageProjects); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationf("project name is required")
	}

	weekStart := input.WeekStart
	if weekStart == "" {
		weekStart = models.WeekStartSunday
	}
	if !weekStart.Valid() {
		return nil, validationf("unknown week start %q", input.WeekStart)
	}

	now := time.Now()
	project := &models.Project{
		ProjectID: uuid.Must(uuid.NewV7()),
		OrgID:     actor.OrgID,
		Name:      name,
		WeekStart: weekStart,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Deactivate retires a project. Existing entries keep their reference.
func (s *ProjectService) Deactivate(ctx context.Context, actor *auth.Actor, projectID uuid.UUID) error {
	if err := s.policy.Require(actor, auth.PermManageProjects); err != nil {
		return err
	}

	project, err := s.getOrgProject(ctx, actor, projectID)
	if err != nil {
		return err
	}

	project.Active = false
	return s.projects.Update(ctx, project)
}

// AddMember grants a profile access to a project. Admin only.
func (s *ProjectService) AddMember(ctx context.Context, actor *auth.Actor, projectID, profileID uuid.UUID) error {
	if err := s.policy.Require(actor, auth.PermManageProjects); err != nil {
		return err
	}

	if _, err := s.getOrgProject(ctx, actor, projectID); err != nil {
		return err
	}
	profile, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return err
	}
	if profile.OrgID != actor.OrgID {
		return store.ErrProfileNotFound
	}

	return s.projects.AddMembership(ctx, &models.ProjectMembership{
		MembershipID: uuid.Must(uuid.NewV7()),
		OrgID:        actor.OrgID,
		ProjectID:    projectID,
		ProfileID:    profileID,
		Active:       true,
		CreatedAt:    time.Now(),
	})
}

// RemoveMember revokes a profile's access to a project. Admin only.
func (s *ProjectService) RemoveMember(ctx context.Context, actor *auth.Actor, projectID, profileID uuid.UUID) error {
	if err := s.policy.Require(actor, auth.PermManageProjects); err != nil {
		return err
	}

	if _, err := s.getOrgProject(ctx, actor, projectID); err != nil {
		return err
	}

	return s.projects.RemoveMembership(ctx, projectID, profileID)
}

func (s *ProjectService) getOrgProject(ctx context.Context, actor *auth.Actor, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OrgID != actor.OrgID {
		return nil, store.ErrProjectNotFound
	}
	return project, nil
}
