package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmoni-hris/harmoni-hris/internal/platform/httpx"
	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
)

// ProjectOption fills the board's project filter.
type ProjectOption struct {
	ID   int64
	Name string
}

// ProjectDirectory lists projects for the filter dropdown. The projects
// module implements it behind an adapter.
type ProjectDirectory interface {
	ProjectOptions(ctx context.Context, caller rbac.Identity) ([]ProjectOption, error)
}

// Column is one lane of the board.
type Column struct {
	Status Status
	Label  string
	Tasks  []Task
}

var columnLabels = map[Status]string{
	StatusTodo:       "Belum dikerjakan",
	StatusInProgress: "Sedang dikerjakan",
	StatusDone:       "Selesai",
}

// Handler manages the task board endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	projects  ProjectDirectory
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, projects ProjectDirectory, templates *view.Engine, csrf *shared.CSRFManager, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, projects: projects, templates: templates, csrf: csrf, rbac: mw}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceTasks, rbac.ActionRead))
		r.Get("/", h.board)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceTasks, rbac.ActionCreate))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceTasks, rbac.ActionUpdate))
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
		r.Post("/{id}/status", h.updateStatus)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceTasks, rbac.ActionDelete))
		r.Post("/{id}/delete", h.delete)
	})
}

type formErrors map[string]string

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	projectID, _ := strconv.ParseInt(r.URL.Query().Get("project"), 10, 64)

	list, err := h.service.List(r.Context(), caller, ListFilters{ProjectID: projectID})
	if err != nil {
		h.logger.Error("list tasks failed", slog.Any("error", err))
		h.render(w, r, "pages/tasks/board.html", map[string]any{
			"Columns":   nil,
			"Projects":  nil,
			"ProjectID": projectID,
			"Errors":    formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}

	var options []ProjectOption
	if h.projects != nil {
		options, err = h.projects.ProjectOptions(r.Context(), caller)
		if err != nil {
			h.logger.Error("list project options failed", slog.Any("error", err))
		}
	}

	h.render(w, r, "pages/tasks/board.html", map[string]any{
		"Columns":   groupColumns(list),
		"Projects":  options,
		"ProjectID": projectID,
		"Errors":    formErrors{},
	}, http.StatusOK)
}

func groupColumns(list []Task) []Column {
	byStatus := make(map[Status][]Task, len(columnLabels))
	for _, t := range list {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}
	columns := make([]Column, 0, len(columnLabels))
	for _, status := range Statuses() {
		columns = append(columns, Column{Status: status, Label: columnLabels[status], Tasks: byStatus[status]})
	}
	return columns
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/tasks/form.html", map[string]any{
		"Task":       Task{},
		"Form":       TaskForm{Status: string(StatusTodo), Priority: string(PriorityMedium)},
		"CanEditAll": true,
		"Errors":     formErrors{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	form := formFromRequest(r)
	task, errs := parseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/tasks/form.html", map[string]any{
			"Task":       Task{},
			"Form":       form,
			"CanEditAll": true,
			"Errors":     formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), caller, task); err != nil {
		h.logger.Error("create task failed", slog.Any("error", err))
		h.render(w, r, "pages/tasks/form.html", map[string]any{
			"Task":       Task{},
			"Form":       form,
			"CanEditAll": true,
			"Errors":     formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/tasks", "success", "Tugas berhasil dibuat")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	task, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.redirectWithFlash(w, r, "/tasks", "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/tasks/form.html", map[string]any{
		"Task":       task,
		"Form":       formFromTask(task),
		"CanEditAll": canEditAll(caller),
		"Errors":     formErrors{},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := formFromRequest(r)
	var input UpdateInput
	if canEditAll(caller) {
		task, errs := parseForm(form)
		if len(errs) > 0 {
			h.render(w, r, "pages/tasks/form.html", map[string]any{
				"Task":       Task{ID: id},
				"Form":       form,
				"CanEditAll": true,
				"Errors":     formErrors(errs),
			}, http.StatusBadRequest)
			return
		}
		input = UpdateInput{
			Title:       task.Title,
			Description: task.Description,
			ProjectID:   task.ProjectID,
			Status:      task.Status,
			Priority:    task.Priority,
			AssignedTo:  task.AssignedTo,
			DueDate:     task.DueDate,
		}
	} else {
		input = UpdateInput{Status: Status(form.Status)}
	}
	if err := h.service.Update(r.Context(), caller, id, input); err != nil {
		h.logger.Error("update task failed", slog.Int64("task_id", id), slog.Any("error", err))
		h.render(w, r, "pages/tasks/form.html", map[string]any{
			"Task":       Task{ID: id},
			"Form":       form,
			"CanEditAll": canEditAll(caller),
			"Errors":     formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/tasks", "success", "Tugas diperbarui")
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	status := Status(r.PostFormValue("status"))
	if err := h.service.UpdateStatus(r.Context(), caller, id, status); err != nil {
		h.logger.Warn("update task status rejected",
			slog.Int64("task_id", id),
			slog.String("status", string(status)),
			slog.Any("error", err))
		if errors.Is(err, errValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Validation", shared.UserSafeMessage(err))
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.logger.Error("delete task failed", slog.Int64("task_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/tasks", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/tasks", "success", "Tugas dihapus")
}

func canEditAll(caller rbac.Identity) bool {
	return rbac.UpdatableTaskFields(caller.Role)[rbac.TaskFieldTitle]
}

func formFromRequest(r *http.Request) TaskForm {
	return TaskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		ProjectID:   r.PostFormValue("project_id"),
		Status:      r.PostFormValue("status"),
		Priority:    r.PostFormValue("priority"),
		AssignedTo:  r.PostFormValue("assigned_to"),
		DueDate:     r.PostFormValue("due_date"),
	}
}

func formFromTask(t Task) TaskForm {
	form := TaskForm{
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   strconv.FormatInt(t.ProjectID, 10),
		Status:      string(t.Status),
		Priority:    string(t.Priority),
	}
	if t.AssignedTo != nil {
		form.AssignedTo = strconv.FormatInt(*t.AssignedTo, 10)
	}
	if !t.DueDate.IsZero() {
		form.DueDate = t.DueDate.Format("2006-01-02")
	}
	return form
}

func parseForm(form TaskForm) (Task, map[string]string) {
	errs := make(map[string]string)
	t := Task{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Status:      Status(form.Status),
		Priority:    Priority(form.Priority),
	}
	if t.Title == "" {
		errs["Title"] = "Judul wajib diisi"
	}
	projectID, err := strconv.ParseInt(strings.TrimSpace(form.ProjectID), 10, 64)
	if err != nil || projectID <= 0 {
		errs["ProjectID"] = "Proyek tidak valid"
	} else {
		t.ProjectID = projectID
	}
	if !t.Status.Valid() {
		errs["Status"] = "Status tidak dikenal"
	}
	if !t.Priority.Valid() {
		errs["Priority"] = "Prioritas tidak dikenal"
	}
	if strings.TrimSpace(form.AssignedTo) != "" {
		assignee, err := strconv.ParseInt(strings.TrimSpace(form.AssignedTo), 10, 64)
		if err != nil || assignee <= 0 {
			errs["AssignedTo"] = "ID karyawan tidak valid"
		} else {
			t.AssignedTo = &assignee
		}
	}
	if strings.TrimSpace(form.DueDate) != "" {
		due, err := time.Parse("2006-01-02", form.DueDate)
		if err != nil {
			errs["DueDate"] = "Format tanggal tidak valid"
		} else {
			t.DueDate = due
		}
	}
	if len(errs) > 0 {
		return Task{}, errs
	}
	return t, nil
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	var caller *rbac.Identity
	if id, ok := rbac.IdentityFromContext(r.Context()); ok {
		caller = &id
	}
	viewData := view.TemplateData{Title: "Papan Tugas", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Caller: caller, Data: data}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
