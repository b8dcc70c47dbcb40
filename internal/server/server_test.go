package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store/memory"
)

type testEnv struct {
	orgID    uuid.UUID
	admin    *models.Profile
	manager  *models.Profile
	worker   *models.Profile // direct report of manager, rate 50
	outsider *models.Profile // contractor with no manager
	project  *models.Project

	profiles *memory.ProfileStore
	projects *memory.ProjectStore
	entries  *memory.TimeEntryStore

	svc *Services
}

func rate(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		orgID:    uuid.Must(uuid.NewV7()),
		profiles: memory.NewProfileStore(),
		projects: memory.NewProjectStore(),
	}
	env.entries = memory.NewTimeEntryStore(env.profiles)

	env.svc = NewServices(Stores{
		Organizations: memory.NewOrganizationStore(),
		Profiles:      env.profiles,
		Projects:      env.projects,
		Entries:       env.entries,
	})

	newProfile := func(role models.Role, hourlyRate *float64, managerID *uuid.UUID) *models.Profile {
		p := &models.Profile{
			ProfileID:  uuid.Must(uuid.NewV7()),
			OrgID:      env.orgID,
			Role:       role,
			FullName:   string(role) + " " + uuid.NewString()[:8],
			Email:      uuid.NewString() + "@example.com",
			HourlyRate: hourlyRate,
			ManagerID:  managerID,
			Active:     true,
			CreatedAt:  time.Now(),
		}
		require.NoError(t, env.profiles.Create(ctx, p))
		return p
	}

	env.admin = newProfile(models.RoleAdmin, nil, nil)
	env.manager = newProfile(models.RoleManager, nil, nil)
	env.worker = newProfile(models.RoleContractor, rate(50), &env.manager.ProfileID)
	env.outsider = newProfile(models.RoleContractor, rate(40), nil)

	env.project = &models.Project{
		ProjectID: uuid.Must(uuid.NewV7()),
		OrgID:     env.orgID,
		Name:      "interior remodel",
		WeekStart: models.WeekStartSunday,
		Active:    true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, env.projects.Create(ctx, env.project))

	for _, p := range []*models.Profile{env.worker, env.outsider} {
		require.NoError(t, env.projects.AddMembership(ctx, &models.ProjectMembership{
			MembershipID: uuid.Must(uuid.NewV7()),
			OrgID:        env.orgID,
			ProjectID:    env.project.ProjectID,
			ProfileID:    p.ProfileID,
			Active:       true,
			CreatedAt:    time.Now(),
		}))
	}

	return env
}

func (env *testEnv) actorFor(p *models.Profile) *auth.Actor {
	return &auth.Actor{ID: p.ProfileID, OrgID: p.OrgID, Role: p.Role, ManagerID: p.ManagerID}
}

func (env *testEnv) newWorkerEntry(t *testing.T, entryDate time.Time) *models.TimeEntry {
	t.Helper()
	entry, err := env.svc.Entries.Create(context.Background(), env.actorFor(env.worker), EntryInput{
		ProjectID: &env.project.ProjectID,
		EntryDate: entryDate,
		TimeIn:    "09:00",
		TimeOut:   "17:00",
		LunchHrs:  0.5,
	})
	require.NoError(t, err)
	return entry
}

func TestEntryCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("snapshot stamped from live rate", func(t *testing.T) {
		entry := env.newWorkerEntry(t, day(24))
		require.Equal(t, models.EntryStatusDraft, entry.Status)
		require.NotNil(t, entry.HourlyRateSnapshot)
		require.Equal(t, 50.0, *entry.HourlyRateSnapshot)
	})

	t.Run("rejects project without membership", func(t *testing.T) {
		other := &models.Project{
			ProjectID: uuid.Must(uuid.NewV7()),
			OrgID:     env.orgID,
			Name:      "roofing",
			WeekStart: models.WeekStartMonday,
			Active:    true,
		}
		require.NoError(t, env.projects.Create(ctx, other))

		_, err := env.svc.Entries.Create(ctx, env.actorFor(env.worker), EntryInput{
			ProjectID: &other.ProjectID,
			EntryDate: day(24),
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("manager may log on any active project", func(t *testing.T) {
		_, err := env.svc.Entries.Create(ctx, env.actorFor(env.manager), EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "08:00",
			TimeOut:   "12:00",
		})
		require.NoError(t, err)
	})

	t.Run("contractor cannot create for someone else", func(t *testing.T) {
		_, err := env.svc.Entries.Create(ctx, env.actorFor(env.worker), EntryInput{
			UserID:    &env.outsider.ProfileID,
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
		})
		require.ErrorIs(t, err, auth.ErrPermissionDenied)
	})

	t.Run("admin may create on a contractor's behalf", func(t *testing.T) {
		entry, err := env.svc.Entries.Create(ctx, env.actorFor(env.admin), EntryInput{
			UserID:    &env.outsider.ProfileID,
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "10:00",
			TimeOut:   "14:00",
		})
		require.NoError(t, err)
		require.Equal(t, env.outsider.ProfileID, entry.UserID)
		require.Equal(t, 40.0, *entry.HourlyRateSnapshot)
	})

	t.Run("malformed clock time is a validation error", func(t *testing.T) {
		_, err := env.svc.Entries.Create(ctx, env.actorFor(env.worker), EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "nine",
			TimeOut:   "17:00",
		})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestSubmitWeek(t *testing.T) {
	ctx := context.Background()

	t.Run("batches draft entries in week", func(t *testing.T) {
		env := newTestEnv(t)
		env.newWorkerEntry(t, day(24))
		env.newWorkerEntry(t, day(25))
		env.newWorkerEntry(t, day(31)) // next week, untouched

		affected, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{
			WeekOf: day(26),
		})
		require.NoError(t, err)
		require.Equal(t, int64(2), affected)

		entries, err := env.svc.Entries.List(ctx, env.actorFor(env.worker), store.ListEntriesOptions{
			Statuses: []models.EntryStatus{models.EntryStatusDraft},
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, day(31), entries[0].EntryDate)
	})

	t.Run("entry without project blocks the week", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Entries.Create(ctx, env.actorFor(env.worker), EntryInput{
			EntryDate: day(24),
			TimeIn:    "09:00",
			TimeOut:   "17:00",
		})
		require.NoError(t, err)

		_, err = env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty week is a validation error", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.ErrorIs(t, err, ErrNothingToSubmit)
	})

	t.Run("resubmits rejected entries", func(t *testing.T) {
		env := newTestEnv(t)
		env.newWorkerEntry(t, day(24))

		_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.NoError(t, err)

		_, err = env.svc.Approvals.RejectWeek(ctx, env.actorFor(env.manager), WeekRequest{
			UserID: env.worker.ProfileID, WeekOf: day(24),
		})
		require.NoError(t, err)

		affected, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.NoError(t, err)
		require.Equal(t, int64(1), affected)
	})
}

func TestEntryLocking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	entry := env.newWorkerEntry(t, day(24))

	_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
	require.NoError(t, err)

	t.Run("submitted entry cannot be edited", func(t *testing.T) {
		_, err := env.svc.Entries.Update(ctx, env.actorFor(env.worker), entry.EntryID, EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "08:00",
			TimeOut:   "18:00",
		})
		require.ErrorIs(t, err, store.ErrEntryLocked)
	})

	t.Run("approved entry cannot be edited", func(t *testing.T) {
		_, err := env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.manager), WeekRequest{
			UserID: env.worker.ProfileID, WeekOf: day(24),
		})
		require.NoError(t, err)

		_, err = env.svc.Entries.Update(ctx, env.actorFor(env.worker), entry.EntryID, EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "08:00",
			TimeOut:   "18:00",
		})
		require.ErrorIs(t, err, store.ErrEntryLocked)
	})

	t.Run("rejected entry becomes editable again", func(t *testing.T) {
		other := env.newWorkerEntry(t, day(25))
		_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(25)})
		require.NoError(t, err)
		_, err = env.svc.Approvals.RejectWeek(ctx, env.actorFor(env.manager), WeekRequest{
			UserID: env.worker.ProfileID, WeekOf: day(25),
		})
		require.NoError(t, err)

		updated, err := env.svc.Entries.Update(ctx, env.actorFor(env.worker), other.EntryID, EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(25),
			TimeIn:    "08:00",
			TimeOut:   "16:00",
			LunchHrs:  1,
		})
		require.NoError(t, err)
		require.Equal(t, models.EntryStatusDraft, updated.Status)
	})
}

func TestApproveWeek(t *testing.T) {
	ctx := context.Background()

	t.Run("approves all submitted entries, idempotently", func(t *testing.T) {
		env := newTestEnv(t)
		env.newWorkerEntry(t, day(24))
		env.newWorkerEntry(t, day(25))
		_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.NoError(t, err)

		req := WeekRequest{UserID: env.worker.ProfileID, WeekOf: day(24)}
		affected, err := env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.manager), req)
		require.NoError(t, err)
		require.Equal(t, int64(2), affected)

		// Second approval of the same week is a zero-row no-op.
		affected, err = env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.manager), req)
		require.NoError(t, err)
		require.Zero(t, affected)

		// A late reject of the resolved week changes nothing either;
		// nothing is left in submitted.
		affected, err = env.svc.Approvals.RejectWeek(ctx, env.actorFor(env.manager), req)
		require.NoError(t, err)
		require.Zero(t, affected)

		entries, err := env.svc.Entries.List(ctx, env.actorFor(env.admin), store.ListEntriesOptions{
			Statuses: []models.EntryStatus{models.EntryStatusSubmitted},
		})
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("manager cannot approve outside their reports", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Entries.Create(ctx, env.actorFor(env.outsider), EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "09:00",
			TimeOut:   "17:00",
		})
		require.NoError(t, err)
		_, err = env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.outsider), SubmitWeekInput{WeekOf: day(24)})
		require.NoError(t, err)

		_, err = env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.manager), WeekRequest{
			UserID: env.outsider.ProfileID, WeekOf: day(24),
		})
		require.ErrorIs(t, err, auth.ErrPermissionDenied)

		// Statuses unchanged.
		entries, err := env.svc.Entries.List(ctx, env.actorFor(env.admin), store.ListEntriesOptions{
			UserID: &env.outsider.ProfileID,
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, models.EntryStatusSubmitted, entries[0].Status)
	})

	t.Run("contractor cannot approve", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.worker), WeekRequest{
			UserID: env.worker.ProfileID, WeekOf: day(24),
		})
		require.ErrorIs(t, err, auth.ErrPermissionDenied)
	})
}

func TestVisibilityScoping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.newWorkerEntry(t, day(24))
	_, err := env.svc.Entries.Create(ctx, env.actorFor(env.outsider), EntryInput{
		ProjectID: &env.project.ProjectID,
		EntryDate: day(24),
		TimeIn:    "09:00",
		TimeOut:   "17:00",
	})
	require.NoError(t, err)

	t.Run("contractor sees only their own entries", func(t *testing.T) {
		entries, err := env.svc.Entries.List(ctx, env.actorFor(env.worker), store.ListEntriesOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		for _, e := range entries {
			require.Equal(t, env.worker.ProfileID, e.UserID)
		}
	})

	t.Run("manager sees reports but not strangers", func(t *testing.T) {
		entries, err := env.svc.Entries.List(ctx, env.actorFor(env.manager), store.ListEntriesOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		for _, e := range entries {
			require.NotEqual(t, env.outsider.ProfileID, e.UserID)
		}
	})

	t.Run("admin sees everything in org", func(t *testing.T) {
		entries, err := env.svc.Entries.List(ctx, env.actorFor(env.admin), store.ListEntriesOptions{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})
}

func TestPayrollAggregation(t *testing.T) {
	ctx := context.Background()

	t.Run("approved week scenario", func(t *testing.T) {
		env := newTestEnv(t)
		env.newWorkerEntry(t, day(24)) // 09:00-17:00, 0.5h lunch, rate 50

		_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.NoError(t, err)
		_, err = env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.manager), WeekRequest{
			UserID: env.worker.ProfileID, WeekOf: day(24),
		})
		require.NoError(t, err)

		report, err := env.svc.Payroll.Aggregate(ctx, env.actorFor(env.admin), PayrollFilter{
			From: day(23), To: day(29),
		})
		require.NoError(t, err)
		require.Len(t, report.ByContractor, 1)

		ct := report.ByContractor[0]
		require.Equal(t, env.worker.ProfileID, ct.UserID)
		require.Equal(t, 7.5, ct.Hours)
		require.Equal(t, 50.0, ct.Rate)
		require.False(t, ct.RateMixed)
		require.Equal(t, 375.0, ct.Pay)

		require.Len(t, report.ByProject, 1)
		require.Equal(t, env.project.ProjectID, report.ByProject[0].ProjectID)
		require.Equal(t, 7.5, report.ByProject[0].Hours)
		require.Equal(t, 375.0, report.ByProject[0].Pay)
	})

	t.Run("snapshot immune to later rate change", func(t *testing.T) {
		env := newTestEnv(t)
		env.newWorkerEntry(t, day(24))
		_, err := env.svc.Entries.SubmitWeek(ctx, env.actorFor(env.worker), SubmitWeekInput{WeekOf: day(24)})
		require.NoError(t, err)
		_, err = env.svc.Approvals.ApproveWeek(ctx, env.actorFor(env.manager), WeekRequest{
			UserID: env.worker.ProfileID, WeekOf: day(24),
		})
		require.NoError(t, err)

		_, err = env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.worker.ProfileID, UpdateProfileInput{
			HourlyRate: rate(100), RateSet: true,
		})
		require.NoError(t, err)

		report, err := env.svc.Payroll.Aggregate(ctx, env.actorFor(env.admin), PayrollFilter{
			From: day(23), To: day(29),
		})
		require.NoError(t, err)
		require.Len(t, report.ByContractor, 1)
		require.Equal(t, 50.0, report.ByContractor[0].Rate)
		require.Equal(t, 375.0, report.ByContractor[0].Pay)
	})

	t.Run("draft rate change before submit is picked up", func(t *testing.T) {
		env := newTestEnv(t)
		entry := env.newWorkerEntry(t, day(24))

		_, err := env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.worker.ProfileID, UpdateProfileInput{
			HourlyRate: rate(60), RateSet: true,
		})
		require.NoError(t, err)

		updated, err := env.svc.Entries.Update(ctx, env.actorFor(env.worker), entry.EntryID, EntryInput{
			ProjectID: &env.project.ProjectID,
			EntryDate: day(24),
			TimeIn:    "09:00",
			TimeOut:   "17:00",
			LunchHrs:  0.5,
		})
		require.NoError(t, err)
		require.Equal(t, 60.0, *updated.HourlyRateSnapshot)
	})

	t.Run("empty range is a valid empty report", func(t *testing.T) {
		env := newTestEnv(t)
		report, err := env.svc.Payroll.Aggregate(ctx, env.actorFor(env.admin), PayrollFilter{
			From: day(1), To: day(7),
		})
		require.NoError(t, err)
		require.Empty(t, report.ByContractor)
		require.Empty(t, report.ByProject)
	})

	t.Run("mixed snapshots are flagged", func(t *testing.T) {
		env := newTestEnv(t)
		env.newWorkerEntry(t, day(24))

		_, err := env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.worker.ProfileID, UpdateProfileInput{
			HourlyRate: rate(60), RateSet: true,
		})
		require.NoError(t, err)
		env.newWorkerEntry(t, day(25)) // snapshot 60

		report, err := env.svc.Payroll.Aggregate(ctx, env.actorFor(env.admin), PayrollFilter{
			From:     day(23),
			To:       day(29),
			Statuses: []models.EntryStatus{models.EntryStatusDraft},
		})
		require.NoError(t, err)
		require.Len(t, report.ByContractor, 1)
		require.True(t, report.ByContractor[0].RateMixed)
		require.Equal(t, 7.5*50+7.5*60, report.ByContractor[0].Pay)
	})

	t.Run("invalid date range", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Payroll.Aggregate(ctx, env.actorFor(env.admin), PayrollFilter{
			From: day(29), To: day(23),
		})
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestMembershipResolver(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("contractor resolves to membership projects", func(t *testing.T) {
		projects, err := env.svc.Memberships.Resolve(ctx, env.actorFor(env.worker))
		require.NoError(t, err)
		require.Len(t, projects, 1)
		require.Equal(t, env.project.ProjectID, projects[0].ProjectID)
	})

	t.Run("contractor with no memberships resolves empty", func(t *testing.T) {
		lone := &models.Profile{
			ProfileID: uuid.Must(uuid.NewV7()),
			OrgID:     env.orgID,
			Role:      models.RoleContractor,
			FullName:  "lone",
			Email:     "lone@example.com",
			Active:    true,
		}
		require.NoError(t, env.profiles.Create(ctx, lone))

		projects, err := env.svc.Memberships.Resolve(ctx, env.actorFor(lone))
		require.NoError(t, err)
		require.Empty(t, projects)
	})

	t.Run("manager resolves to all active org projects", func(t *testing.T) {
		inactive := &models.Project{
			ProjectID: uuid.Must(uuid.NewV7()),
			OrgID:     env.orgID,
			Name:      "mothballed",
			WeekStart: models.WeekStartSunday,
			Active:    false,
		}
		require.NoError(t, env.projects.Create(ctx, inactive))

		projects, err := env.svc.Memberships.Resolve(ctx, env.actorFor(env.manager))
		require.NoError(t, err)
		for _, p := range projects {
			require.True(t, p.Active)
		}
	})

	t.Run("deactivated project drops out of contractor set", func(t *testing.T) {
		require.NoError(t, env.svc.Projects.Deactivate(ctx, env.actorFor(env.admin), env.project.ProjectID))

		projects, err := env.svc.Memberships.Resolve(ctx, env.actorFor(env.worker))
		require.NoError(t, err)
		require.Empty(t, projects)
	})
}

func TestInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("admin invites contractor with memberships", func(t *testing.T) {
		env := newTestEnv(t)
		profile, err := env.svc.Invites.Invite(ctx, env.actorFor(env.admin), InviteInput{
			Email:      "New.Hire@Example.com",
			FullName:   "New Hire",
			Role:       models.RoleContractor,
			HourlyRate: rate(55),
			ManagerID:  &env.manager.ProfileID,
			ProjectIDs: []uuid.UUID{env.project.ProjectID},
		})
		require.NoError(t, err)
		require.Equal(t, "new.hire@example.com", profile.Email)
		require.True(t, profile.Active)
		require.False(t, profile.Onboarded)

		memberships, err := env.projects.ListMemberships(ctx, profile.ProfileID)
		require.NoError(t, err)
		require.Len(t, memberships, 1)
	})

	t.Run("manager cannot invite", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Invites.Invite(ctx, env.actorFor(env.manager), InviteInput{
			Email: "x@example.com", FullName: "X", Role: models.RoleContractor,
		})
		require.ErrorIs(t, err, auth.ErrPermissionDenied)
	})

	t.Run("rate on non-contractor is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Invites.Invite(ctx, env.actorFor(env.admin), InviteInput{
			Email: "m@example.com", FullName: "M", Role: models.RoleManager, HourlyRate: rate(80),
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("manager reference must be able to manage", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Invites.Invite(ctx, env.actorFor(env.admin), InviteInput{
			Email:     "y@example.com",
			FullName:  "Y",
			Role:      models.RoleContractor,
			ManagerID: &env.worker.ProfileID,
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("project in another org is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		foreign := &models.Project{
			ProjectID: uuid.Must(uuid.NewV7()),
			OrgID:     uuid.Must(uuid.NewV7()),
			Name:      "someone else's build",
			WeekStart: models.WeekStartSunday,
			Active:    true,
		}
		require.NoError(t, env.projects.Create(ctx, foreign))

		_, err := env.svc.Invites.Invite(ctx, env.actorFor(env.admin), InviteInput{
			Email:      "tenant@example.com",
			FullName:   "Tenant Test",
			Role:       models.RoleContractor,
			ProjectIDs: []uuid.UUID{foreign.ProjectID},
		})
		require.ErrorIs(t, err, store.ErrProjectNotFound)

		// Validation precedes any write; no profile exists.
		_, err = env.profiles.GetByEmail(ctx, env.orgID, "tenant@example.com")
		require.ErrorIs(t, err, store.ErrProfileNotFound)
	})

	t.Run("inactive project is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, env.svc.Projects.Deactivate(ctx, env.actorFor(env.admin), env.project.ProjectID))

		_, err := env.svc.Invites.Invite(ctx, env.actorFor(env.admin), InviteInput{
			Email:      "late@example.com",
			FullName:   "Late Join",
			Role:       models.RoleContractor,
			ProjectIDs: []uuid.UUID{env.project.ProjectID},
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Invites.Invite(ctx, env.actorFor(env.admin), InviteInput{
			Email: env.worker.Email, FullName: "Dup", Role: models.RoleContractor,
		})
		require.ErrorIs(t, err, store.ErrProfileAlreadyExists)
	})
}

func TestProfileUpdateRules(t *testing.T) {
	ctx := context.Background()

	t.Run("manager edits direct report rate", func(t *testing.T) {
		env := newTestEnv(t)
		updated, err := env.svc.Profiles.Update(ctx, env.actorFor(env.manager), env.worker.ProfileID, UpdateProfileInput{
			HourlyRate: rate(65), RateSet: true,
		})
		require.NoError(t, err)
		require.Equal(t, 65.0, *updated.HourlyRate)
	})

	t.Run("manager cannot edit a stranger's rate", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Profiles.Update(ctx, env.actorFor(env.manager), env.outsider.ProfileID, UpdateProfileInput{
			HourlyRate: rate(65), RateSet: true,
		})
		require.ErrorIs(t, err, auth.ErrPermissionDenied)
	})

	t.Run("user edits own name but not role", func(t *testing.T) {
		env := newTestEnv(t)
		name := "Wren Ellis"
		updated, err := env.svc.Profiles.Update(ctx, env.actorFor(env.worker), env.worker.ProfileID, UpdateProfileInput{
			FullName: &name,
		})
		require.NoError(t, err)
		require.Equal(t, name, updated.FullName)

		role := models.RoleAdmin
		_, err = env.svc.Profiles.Update(ctx, env.actorFor(env.worker), env.worker.ProfileID, UpdateProfileInput{
			Role: &role,
		})
		require.ErrorIs(t, err, auth.ErrPermissionDenied)
	})

	t.Run("rate on non-contractor rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.manager.ProfileID, UpdateProfileInput{
			HourlyRate: rate(80), RateSet: true,
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("demotion with direct reports is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		role := models.RoleContractor
		_, err := env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.manager.ProfileID, UpdateProfileInput{
			Role: &role,
		})
		require.ErrorIs(t, err, ErrValidation)

		p, err := env.profiles.Get(ctx, env.manager.ProfileID)
		require.NoError(t, err)
		require.Equal(t, models.RoleManager, p.Role)

		// Reassigning the report clears the way.
		_, err = env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.worker.ProfileID, UpdateProfileInput{
			ManagerID: &env.admin.ProfileID, ManagerSet: true,
		})
		require.NoError(t, err)

		updated, err := env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.manager.ProfileID, UpdateProfileInput{
			Role: &role,
		})
		require.NoError(t, err)
		require.Equal(t, models.RoleContractor, updated.Role)
	})

	t.Run("self-managing is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Profiles.Update(ctx, env.actorFor(env.admin), env.manager.ProfileID, UpdateProfileInput{
			ManagerID: &env.manager.ProfileID, ManagerSet: true,
		})
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("deactivation is admin only and reversible in store", func(t *testing.T) {
		env := newTestEnv(t)
		require.ErrorIs(t,
			env.svc.Profiles.Deactivate(ctx, env.actorFor(env.manager), env.worker.ProfileID),
			auth.ErrPermissionDenied)

		require.NoError(t, env.svc.Profiles.Deactivate(ctx, env.actorFor(env.admin), env.worker.ProfileID))
		p, err := env.profiles.Get(ctx, env.worker.ProfileID)
		require.NoError(t, err)
		require.False(t, p.Active)
	})
}
