package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/server"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store/memory"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type apiFixture struct {
	handler  http.Handler
	admin    *models.Profile
	worker   *models.Profile
	project  *models.Project
	profiles *memory.ProfileStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	orgID := uuid.Must(uuid.NewV7())
	profiles := memory.NewProfileStore()
	projects := memory.NewProjectStore()
	entries := memory.NewTimeEntryStore(profiles)

	svc := server.NewServices(server.Stores{
		Organizations: memory.NewOrganizationStore(),
		Profiles:      profiles,
		Projects:      projects,
		Entries:       entries,
	})

	rate := 50.0
	admin := &models.Profile{
		ProfileID: uuid.Must(uuid.NewV7()),
		OrgID:     orgID,
		Role:      models.RoleAdmin,
		FullName:  "Org Admin",
		Email:     "admin@example.com",
		Active:    true,
	}
	require.NoError(t, profiles.Create(ctx, admin))

	worker := &models.Profile{
		ProfileID:  uuid.Must(uuid.NewV7()),
		OrgID:      orgID,
		Role:       models.RoleContractor,
		FullName:   "Wren Ellis",
		Email:      "wren@example.com",
		HourlyRate: &rate,
		Active:     true,
	}
	require.NoError(t, profiles.Create(ctx, worker))

	project := &models.Project{
		ProjectID: uuid.Must(uuid.NewV7()),
		OrgID:     orgID,
		Name:      "interior remodel",
		WeekStart: models.WeekStartSunday,
		Active:    true,
	}
	require.NoError(t, projects.Create(ctx, project))
	require.NoError(t, projects.AddMembership(ctx, &models.ProjectMembership{
		MembershipID: uuid.Must(uuid.NewV7()),
		OrgID:        orgID,
		ProjectID:    project.ProjectID,
		ProfileID:    worker.ProfileID,
		Active:       true,
	}))

	mux := NewHandler(svc).Routes()

	return &apiFixture{
		handler:  auth.Middleware(testSecret)(mux),
		admin:    admin,
		worker:   worker,
		project:  project,
		profiles: profiles,
	}
}

func (f *apiFixture) tokenFor(t *testing.T, p *models.Profile) string {
	t.Helper()
	token, err := auth.SignActor(testSecret, &auth.Actor{
		ID:        p.ProfileID,
		OrgID:     p.OrgID,
		Role:      p.Role,
		ManagerID: p.ManagerID,
	}, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(t *testing.T, p *models.Profile, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	if p != nil {
		r.Header.Set("Authorization", "Bearer "+f.tokenFor(t, p))
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func TestEntryEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("create returns draft with snapshot", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodPost, "/v1/entries", map[string]any{
			"project_id": f.project.ProjectID,
			"entry_date": "2026-08-24",
			"time_in":    "09:00",
			"time_out":   "17:00",
			"lunch_hrs":  0.5,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var view entryView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, models.EntryStatusDraft, view.Status)
		require.Equal(t, "2026-08-24", view.EntryDate)
		require.NotNil(t, view.HourlyRateSnapshot)
		require.Equal(t, 50.0, *view.HourlyRateSnapshot)
	})

	t.Run("bad date is a 400", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodPost, "/v1/entries", map[string]any{
			"entry_date": "24/08/2026",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing token is a 401", func(t *testing.T) {
		w := f.do(t, nil, http.MethodGet, "/v1/entries", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("list respects status filter", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodGet, "/v1/entries?status=draft&from=2026-08-23&to=2026-08-29", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var views []entryView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		require.Len(t, views, 1)
	})

	t.Run("unknown status filter is a 400", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodGet, "/v1/entries?status=pending", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWeekEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, f.worker, http.MethodPost, "/v1/entries", map[string]any{
		"project_id": f.project.ProjectID,
		"entry_date": "2026-08-24",
		"time_in":    "09:00",
		"time_out":   "17:00",
		"lunch_hrs":  0.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created entryView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("submit then edit conflicts", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodPost, "/v1/weeks/submit", map[string]any{
			"week_of": "2026-08-24",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp affectedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, int64(1), resp.Affected)

		w = f.do(t, f.worker, http.MethodPatch, "/v1/entries/"+created.EntryID.String(), map[string]any{
			"project_id": f.project.ProjectID,
			"entry_date": "2026-08-24",
			"time_in":    "08:00",
			"time_out":   "18:00",
		})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("contractor cannot approve", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodPost, "/v1/weeks/approve", map[string]any{
			"user_id": f.worker.ProfileID,
			"week_of": "2026-08-24",
		})
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin approves", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodPost, "/v1/weeks/approve", map[string]any{
			"user_id": f.worker.ProfileID,
			"week_of": "2026-08-24",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp affectedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, int64(1), resp.Affected)
	})

	t.Run("payroll reflects the approved week", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodGet, "/v1/payroll?from=2026-08-23&to=2026-08-29", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var report server.PayrollReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		require.Len(t, report.ByContractor, 1)
		require.Equal(t, 7.5, report.ByContractor[0].Hours)
		require.Equal(t, 375.0, report.ByContractor[0].Pay)
	})

	t.Run("payroll export is CSV", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodGet, "/v1/payroll/export?from=2026-08-23&to=2026-08-29", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "text/csv", w.Header().Get("Content-Type"))

		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.Len(t, lines, 2)
		require.Contains(t, lines[1], "Wren Ellis")
		require.Contains(t, lines[1], "375.00")
	})
}

func TestProfileEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("invite", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodPost, "/v1/invite", map[string]any{
			"email":       "new@example.com",
			"full_name":   "New Hire",
			"role":        "contractor",
			"hourly_rate": 42.5,
			"project_ids": []uuid.UUID{f.project.ProjectID},
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var view profileView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, "new@example.com", view.Email)
		require.NotNil(t, view.HourlyRate)
		require.Equal(t, 42.5, *view.HourlyRate)
	})

	t.Run("duplicate invite conflicts", func(t *testing.T) {
		body := map[string]any{
			"email":     "dup@example.com",
			"full_name": "Dup",
			"role":      "contractor",
		}
		w := f.do(t, f.admin, http.MethodPost, "/v1/invite", body)
		require.Equal(t, http.StatusCreated, w.Code)
		w = f.do(t, f.admin, http.MethodPost, "/v1/invite", body)
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodGet, "/v1/profiles/me", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var view profileView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, f.worker.ProfileID, view.ProfileID)
	})

	t.Run("contractor cannot view stranger", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodGet, "/v1/profiles/"+f.admin.ProfileID.String(), nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rate patch", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodPatch, "/v1/profiles/"+f.worker.ProfileID.String(), map[string]any{
			"hourly_rate": 60,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var view profileView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, 60.0, *view.HourlyRate)
	})

	t.Run("deactivate", func(t *testing.T) {
		w := f.do(t, f.admin, http.MethodDelete, "/v1/profiles/"+f.worker.ProfileID.String(), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		p, err := f.profiles.Get(context.Background(), f.worker.ProfileID)
		require.NoError(t, err)
		require.False(t, p.Active)
	})
}

func TestProjectEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("create requires admin", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodPost, "/v1/projects", map[string]any{"name": "roofing"})
		require.Equal(t, http.StatusForbidden, w.Code)

		w = f.do(t, f.admin, http.MethodPost, "/v1/projects", map[string]any{
			"name":       "roofing",
			"week_start": "monday",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var view projectView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		require.Equal(t, models.WeekStartMonday, view.WeekStart)
	})

	t.Run("contractor listing is membership scoped", func(t *testing.T) {
		w := f.do(t, f.worker, http.MethodGet, "/v1/projects", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var views []projectView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
		require.Len(t, views, 1)
		require.Equal(t, f.project.ProjectID, views[0].ProjectID)
	})

	t.Run("member add and remove", func(t *testing.T) {
		base := "/v1/projects/" + f.project.ProjectID.String() + "/members/" + f.admin.ProfileID.String()
		w := f.do(t, f.admin, http.MethodPost, base, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
		w = f.do(t, f.admin, http.MethodDelete, base, nil)
		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	Healthz(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
