package projects

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
)

const defaultPageSize = 20

// Handler manages project endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, rbac: mw}
}

// MountRoutes registers project routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceProjects, rbac.ActionRead))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceProjects, rbac.ActionCreate))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceProjects, rbac.ActionUpdate))
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceProjects, rbac.ActionDelete))
		r.Post("/{id}/delete", h.delete)
	})
}

type formErrors map[string]string

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	filters := ListFilters{
		Status: Status(r.URL.Query().Get("status")),
		Page:   pageParam(r),
		Limit:  defaultPageSize,
	}
	if filters.Status != "" && !filters.Status.Valid() {
		filters.Status = ""
	}
	list, total, err := h.service.List(r.Context(), caller, filters)
	if err != nil {
		h.logger.Error("list projects failed", slog.Any("error", err))
		h.render(w, r, "pages/projects/list.html", map[string]any{
			"Projects": nil,
			"PageNav":  shared.PageNav{},
			"Errors":   formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	nav := shared.PageNav{
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
		Query:      r.URL.RawQuery,
	}
	h.render(w, r, "pages/projects/list.html", map[string]any{
		"Projects": list,
		"PageNav":  nav,
		"Errors":   formErrors{},
	}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/projects/form.html", map[string]any{
		"Project": Project{},
		"Form":    ProjectForm{Status: string(StatusActive)},
		"Errors":  formErrors{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	form := formFromRequest(r)
	project, errs := parseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/projects/form.html", map[string]any{
			"Project": Project{},
			"Form":    form,
			"Errors":  formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), caller, project); err != nil {
		h.logger.Error("create project failed", slog.Any("error", err))
		h.render(w, r, "pages/projects/form.html", map[string]any{
			"Project": Project{},
			"Form":    form,
			"Errors":  formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/projects", "success", "Proyek berhasil dibuat")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	project, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.redirectWithFlash(w, r, "/projects", "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/projects/form.html", map[string]any{
		"Project": project,
		"Form":    formFromProject(project),
		"Errors":  formErrors{},
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
	project, errs := parseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/projects/form.html", map[string]any{
			"Project": Project{ID: id},
			"Form":    form,
			"Errors":  formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), caller, id, project); err != nil {
		h.logger.Error("update project failed", slog.Int64("project_id", id), slog.Any("error", err))
		h.render(w, r, "pages/projects/form.html", map[string]any{
			"Project": Project{ID: id},
			"Form":    form,
			"Errors":  formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/projects", "success", "Proyek diperbarui")
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
		h.logger.Error("delete project failed", slog.Int64("project_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/projects", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/projects", "success", "Proyek dihapus")
}

func formFromRequest(r *http.Request) ProjectForm {
	return ProjectForm{
		Code:        r.PostFormValue("code"),
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Status:      r.PostFormValue("status"),
		ManagerID:   r.PostFormValue("manager_id"),
	}
}

func formFromProject(p Project) ProjectForm {
	form := ProjectForm{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
	}
	if p.ManagerID != nil {
		form.ManagerID = strconv.FormatInt(*p.ManagerID, 10)
	}
	return form
}

func parseForm(form ProjectForm) (Project, map[string]string) {
	errs := make(map[string]string)
	p := Project{
		Code:        strings.TrimSpace(form.Code),
		Name:        strings.TrimSpace(form.Name),
		Description: strings.TrimSpace(form.Description),
		Status:      Status(form.Status),
	}
	if p.Code == "" {
		errs["Code"] = "Kode wajib diisi"
	}
	if p.Name == "" {
		errs["Name"] = "Nama wajib diisi"
	}
	if !p.Status.Valid() {
		errs["Status"] = "Status tidak dikenal"
	}
	if strings.TrimSpace(form.ManagerID) != "" {
		managerID, err := strconv.ParseInt(strings.TrimSpace(form.ManagerID), 10, 64)
		if err != nil || managerID <= 0 {
			errs["ManagerID"] = "ID manajer tidak valid"
		} else {
			p.ManagerID = &managerID
		}
	}
	if len(errs) > 0 {
		return Project{}, errs
	}
	return p, nil
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
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
	viewData := view.TemplateData{Title: "Proyek", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Caller: caller, Data: data}
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
