// Package bootstrap seeds an organization from a declarative file.
// Seeding is idempotent: existing organizations, profiles, and
// projects are reused, so re-running against a live store is safe.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// Stores holds the store handles seeding writes through.
type Stores struct {
	Organizations store.OrganizationStore
	Profiles      store.ProfileStore
	Projects      store.ProjectStore
}

// Result reports what a seed run created versus reused.
type Result struct {
	OrgID           uuid.UUID
	CreatedProfiles int
	CreatedProjects int
}

// Seed applies the config to the stores.
func Seed(ctx context.Context, cfg *SeedConfig, stores Stores) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx)

	org, err := ensureOrganization(ctx, stores.Organizations, cfg.Organization)
	if err != nil {
		return nil, err
	}
	result := &Result{OrgID: org.OrgID}

	projectIDs := make(map[string]uuid.UUID, len(cfg.Projects))
	existing, err := stores.Projects.ListByOrg(ctx, org.OrgID, false)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		projectIDs[p.Name] = p.ProjectID
	}

	for _, seed := range cfg.Projects {
		if _, ok := projectIDs[seed.Name]; ok {
			continue
		}
		weekStart := seed.WeekStart
		if weekStart == "" {
			weekStart = models.WeekStartSunday
		}
		project := &models.Project{
			ProjectID: uuid.Must(uuid.NewV7()),
			OrgID:     org.OrgID,
			Name:      seed.Name,
			WeekStart: weekStart,
			Active:    true,
			CreatedAt: time.Now(),
		}
		if err := stores.Projects.Create(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to create project %q: %w", seed.Name, err)
		}
		projectIDs[seed.Name] = project.ProjectID
		result.CreatedProjects++
		log.Info().Str("project", seed.Name).Msg("project created")
	}

	admin := cfg.Admin
	admin.Role = models.RoleAdmin
	adminProfile, created, err := ensureProfile(ctx, stores, org.OrgID, admin, nil, projectIDs)
	if err != nil {
		return nil, err
	}
	if created {
		result.CreatedProfiles++
	}

	for _, seed := range cfg.Profiles {
		var managerID *uuid.UUID
		switch seed.ManagerEmail {
		case "":
		case admin.Email:
			managerID = &adminProfile.ProfileID
		default:
			manager, err := stores.Profiles.GetByEmail(ctx, org.OrgID, seed.ManagerEmail)
			if err != nil {
				return nil, fmt.Errorf("manager %q: %w", seed.ManagerEmail, err)
			}
			if !manager.Role.CanManage() {
				return nil, fmt.Errorf("manager %q must hold an admin or manager role", seed.ManagerEmail)
			}
			managerID = &manager.ProfileID
		}

		_, created, err := ensureProfile(ctx, stores, org.OrgID, seed, managerID, projectIDs)
		if err != nil {
			return nil, err
		}
		if created {
			result.CreatedProfiles++
		}
	}

	log.Info().
		Str("organization", cfg.Organization).
		Int("profiles", result.CreatedProfiles).
		Int("projects", result.CreatedProjects).
		Msg("seed applied")

	return result, nil
}

func ensureOrganization(ctx context.Context, orgs store.OrganizationStore, name string) (*models.Organization, error) {
	org, err := orgs.GetByName(ctx, name)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, store.ErrOrganizationNotFound) {
		return nil, err
	}

	org = &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

func ensureProfile(ctx context.Context, stores Stores, orgID uuid.UUID, seed SeedProfile, managerID *uuid.UUID, projectIDs map[string]uuid.UUID) (*models.Profile, bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))

	profile, err := stores.Profiles.GetByEmail(ctx, orgID, email)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, store.ErrProfileNotFound) {
		return nil, false, err
	}

	role := seed.Role
	if role == "" {
		role = models.RoleContractor
	}

	now := time.Now()
	profile = &models.Profile{
		ProfileID:  uuid.Must(uuid.NewV7()),
		OrgID:      orgID,
		Role:       role,
		FullName:   seed.FullName,
		Email:      email,
		HourlyRate: seed.HourlyRate,
		ManagerID:  managerID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := stores.Profiles.Create(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("failed to create profile %q: %w", email, err)
	}

	for _, name := range seed.Projects {
		err := stores.Projects.AddMembership(ctx, &models.ProjectMembership{
			MembershipID: uuid.Must(uuid.NewV7()),
			OrgID:        orgID,
			ProjectID:    projectIDs[name],
			ProfileID:    profile.ProfileID,
			Active:       true,
			CreatedAt:    now,
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to add %q to project %q: %w", email, name, err)
		}
	}

	return profile, true, nil
}
