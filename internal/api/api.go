// Package api exposes the engine over a JSON HTTP surface. Handlers
// bind requests, resolve the actor from the context, and delegate all
// rules to the server package; nothing here re-checks permissions.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/auth"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/export"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/server"
	"github.com/kapoorritesh1111-create/timesheet-v2/internal/store"
)

// Handler holds the engine services the routes dispatch to.
type Handler struct {
	svc *server.Services
}

// NewHandler creates a new API handler over the engine services.
func NewHandler(svc *server.Services) *Handler {
	return &Handler{svc: svc}
}

// Routes registers every authenticated route on a fresh mux. The
// health endpoint is registered separately by the caller so it can
// bypass authentication.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/invite", h.invite)

	mux.HandleFunc("GET /v1/profiles", h.listProfiles)
	mux.HandleFunc("GET /v1/profiles/me", h.getSelf)
	mux.HandleFunc("GET /v1/profiles/{id}", h.getProfile)
	mux.HandleFunc("PATCH /v1/profiles/{id}", h.updateProfile)
	mux.HandleFunc("DELETE /v1/profiles/{id}", h.deactivateProfile)

	mux.HandleFunc("POST /v1/projects", h.createProject)
	mux.HandleFunc("GET /v1/projects", h.listProjects)
	mux.HandleFunc("DELETE /v1/projects/{id}", h.deactivateProject)
	mux.HandleFunc("POST /v1/projects/{id}/members/{profileID}", h.addMember)
	mux.HandleFunc("DELETE /v1/projects/{id}/members/{profileID}", h.removeMember)

	mux.HandleFunc("POST /v1/entries", h.createEntry)
	mux.HandleFunc("GET /v1/entries", h.listEntries)
	mux.HandleFunc("GET /v1/entries/{id}", h.getEntry)
	mux.HandleFunc("PATCH /v1/entries/{id}", h.updateEntry)
	mux.HandleFunc("DELETE /v1/entries/{id}", h.deleteEntry)

	mux.HandleFunc("POST /v1/weeks/submit", h.submitWeek)
	mux.HandleFunc("POST /v1/weeks/approve", h.approveWeek)
	mux.HandleFunc("POST /v1/weeks/reject", h.rejectWeek)

	mux.HandleFunc("GET /v1/payroll", h.payroll)
	mux.HandleFunc("GET /v1/payroll/export", h.payrollExport)

	return mux
}

// Healthz reports liveness. It carries no auth and no state.
func Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", server.ErrValidation)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q, want YYYY-MM-DD", server.ErrValidation, value)
	}
	return d, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s", server.ErrValidation, name)
	}
	return id, nil
}

// --- profiles ---

type inviteRequest struct {
	Email      string      `json:"email"`
	FullName   string      `json:"full_name"`
	Role       models.Role `json:"role"`
	HourlyRate *float64    `json:"hourly_rate,omitempty"`
	ManagerID  *uuid.UUID  `json:"manager_id,omitempty"`
	ProjectIDs []uuid.UUID `json:"project_ids,omitempty"`
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.svc.Invites.Invite(r.Context(), auth.ActorFromContext(r.Context()), server.InviteInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		ManagerID:  req.ManagerID,
		ProjectIDs: req.ProjectIDs,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProfileView(profile))
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.Profiles.List(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProfileViews(profiles))
}

func (h *Handler) getSelf(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	if actor == nil {
		respondError(w, r, auth.ErrUnauthenticated)
		return
	}
	profile, err := h.svc.Profiles.Get(r.Context(), actor, actor.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProfileView(profile))
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	profile, err := h.svc.Profiles.Get(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProfileView(profile))
}

type updateProfileRequest struct {
	FullName   *string      `json:"full_name,omitempty"`
	Role       *models.Role `json:"role,omitempty"`
	HourlyRate *float64     `json:"hourly_rate,omitempty"`
	RateSet    bool         `json:"rate_set,omitempty"`
	ManagerID  *uuid.UUID   `json:"manager_id,omitempty"`
	ManagerSet bool         `json:"manager_set,omitempty"`
	Active     *bool        `json:"active,omitempty"`
	Onboarded  *bool        `json:"onboarded,omitempty"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	profile, err := h.svc.Profiles.Update(r.Context(), auth.ActorFromContext(r.Context()), id, server.UpdateProfileInput{
		FullName:   req.FullName,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		RateSet:    req.RateSet || req.HourlyRate != nil,
		ManagerID:  req.ManagerID,
		ManagerSet: req.ManagerSet || req.ManagerID != nil,
		Active:     req.Active,
		Onboarded:  req.Onboarded,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProfileView(profile))
}

func (h *Handler) deactivateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.svc.Profiles.Deactivate(r.Context(), auth.ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- projects ---

type createProjectRequest struct {
	Name      string           `json:"name"`
	WeekStart models.WeekStart `json:"week_start,omitempty"`
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	project, err := h.svc.Projects.Create(r.Context(), auth.ActorFromContext(r.Context()), server.CreateProjectInput{
		Name:      req.Name,
		WeekStart: req.WeekStart,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProjectView(project))
}

// listProjects returns the projects the actor can log time against:
// memberships for contractors, the whole active org for the rest.
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Memberships.Resolve(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newProjectViews(projects))
}

func (h *Handler) deactivateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.svc.Projects.Deactivate(r.Context(), auth.ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	profileID, err := pathUUID(r, "profileID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.svc.Projects.AddMember(r.Context(), auth.ActorFromContext(r.Context()), projectID, profileID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	profileID, err := pathUUID(r, "profileID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.svc.Projects.RemoveMember(r.Context(), auth.ActorFromContext(r.Context()), projectID, profileID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- entries ---

type entryRequest struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	ProjectID *uuid.UUID `json:"project_id,omitempty"`
	EntryDate string     `json:"entry_date"`
	TimeIn    string     `json:"time_in,omitempty"`
	TimeOut   string     `json:"time_out,omitempty"`
	LunchHrs  float64    `json:"lunch_hrs,omitempty"`
	Mileage   float64    `json:"mileage,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func (r entryRequest) toInput() (server.EntryInput, error) {
	entryDate, err := parseDate(r.EntryDate)
	if err != nil {
		return server.EntryInput{}, err
	}
	return server.EntryInput{
		UserID:    r.UserID,
		ProjectID: r.ProjectID,
		EntryDate: entryDate,
		TimeIn:    r.TimeIn,
		TimeOut:   r.TimeOut,
		LunchHrs:  r.LunchHrs,
		Mileage:   r.Mileage,
		Notes:     r.Notes,
	}, nil
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	entry, err := h.svc.Entries.Create(r.Context(), auth.ActorFromContext(r.Context()), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newEntryView(entry))
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req entryRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(w, r, err)
		return
	}
	entry, err := h.svc.Entries.Update(r.Context(), auth.ActorFromContext(r.Context()), id, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newEntryView(entry))
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	entry, err := h.svc.Entries.Get(r.Context(), auth.ActorFromContext(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newEntryView(entry))
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.svc.Entries.Delete(r.Context(), auth.ActorFromContext(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listEntryOptions binds the query string filters for entry listing.
func listEntryOptions(r *http.Request) (store.ListEntriesOptions, error) {
	var opts store.ListEntriesOptions
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return opts, err
		}
		opts.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return opts, err
		}
		opts.To = d
	}
	for _, v := range q["status"] {
		status := models.EntryStatus(v)
		if !status.Valid() {
			return opts, fmt.Errorf("%w: unknown status %q", server.ErrValidation, v)
		}
		opts.Statuses = append(opts.Statuses, status)
	}
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, fmt.Errorf("%w: bad user_id", server.ErrValidation)
		}
		opts.UserID = &id
	}
	if v := q.Get("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return opts, fmt.Errorf("%w: bad project_id", server.ErrValidation)
		}
		opts.ProjectID = &id
	}
	return opts, nil
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	opts, err := listEntryOptions(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	entries, err := h.svc.Entries.List(r.Context(), auth.ActorFromContext(r.Context()), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newEntryViews(entries))
}

// --- week lifecycle ---

type weekRequest struct {
	UserID    uuid.UUID        `json:"user_id,omitempty"`
	WeekOf    string           `json:"week_of"`
	WeekStart models.WeekStart `json:"week_start,omitempty"`
}

func (h *Handler) submitWeek(w http.ResponseWriter, r *http.Request) {
	var req weekRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	weekOf, err := parseDate(req.WeekOf)
	if err != nil {
		respondError(w, r, err)
		return
	}
	affected, err := h.svc.Entries.SubmitWeek(r.Context(), auth.ActorFromContext(r.Context()), server.SubmitWeekInput{
		UserID:    req.UserID,
		WeekOf:    weekOf,
		WeekStart: req.WeekStart,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, affectedResponse{Affected: affected})
}

func (h *Handler) approveWeek(w http.ResponseWriter, r *http.Request) {
	h.resolveWeek(w, r, h.svc.Approvals.ApproveWeek)
}

func (h *Handler) rejectWeek(w http.ResponseWriter, r *http.Request) {
	h.resolveWeek(w, r, h.svc.Approvals.RejectWeek)
}

func (h *Handler) resolveWeek(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, actor *auth.Actor, req server.WeekRequest) (int64, error)) {
	var req weekRequest
	if err := decode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	weekOf, err := parseDate(req.WeekOf)
	if err != nil {
		respondError(w, r, err)
		return
	}
	affected, err := resolve(r.Context(), auth.ActorFromContext(r.Context()), server.WeekRequest{
		UserID:    req.UserID,
		WeekOf:    weekOf,
		WeekStart: req.WeekStart,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, affectedResponse{Affected: affected})
}

// --- payroll ---

func payrollFilter(r *http.Request) (server.PayrollFilter, error) {
	var filter server.PayrollFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.To = d
	}
	for _, v := range q["status"] {
		status := models.EntryStatus(v)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown status %q", server.ErrValidation, v)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("%w: bad user_id", server.ErrValidation)
		}
		filter.UserID = &id
	}
	if v := q.Get("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("%w: bad project_id", server.ErrValidation)
		}
		filter.ProjectID = &id
	}
	return filter, nil
}

func (h *Handler) payroll(w http.ResponseWriter, r *http.Request) {
	filter, err := payrollFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	report, err := h.svc.Payroll.Aggregate(r.Context(), auth.ActorFromContext(r.Context()), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// payrollExport streams the report as CSV. The group parameter picks
// the rollup: contractor (default) or project.
func (h *Handler) payrollExport(w http.ResponseWriter, r *http.Request) {
	filter, err := payrollFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	group := r.URL.Query().Get("group")
	if group == "" {
		group = "contractor"
	}
	if group != "contractor" && group != "project" {
		respondError(w, r, fmt.Errorf("%w: unknown group %q", server.ErrValidation, group))
		return
	}

	report, err := h.svc.Payroll.Aggregate(r.Context(), auth.ActorFromContext(r.Context()), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payroll.csv"`)
	if group == "project" {
		err = export.WriteProjectCSV(w, report)
	} else {
		err = export.WriteContractorCSV(w, report)
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("csv export failed")
	}
}
