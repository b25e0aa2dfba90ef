package employees

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
)

const defaultPageSize = 20

// SalaryEntry is the slice of salary data shown on the employee detail page.
type SalaryEntry struct {
	EffectiveDate time.Time
	Amount        float64
	Note          string
}

// SalaryHistory provides the salary panel for the detail page. The salaries
// module implements it behind an adapter so this package stays decoupled
// from salary storage.
type SalaryHistory interface {
	HistoryForEmployee(ctx context.Context, caller rbac.Identity, employeeID int64) ([]SalaryEntry, error)
}

// Handler manages the employee directory endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	salaries  SalaryHistory
	templates *view.Engine
	csrf      *shared.CSRFManager
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance. salaries may be nil; the detail page
// then omits the salary panel entirely.
func NewHandler(logger *slog.Logger, service *Service, salaries SalaryHistory, templates *view.Engine, csrf *shared.CSRFManager, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, salaries: salaries, templates: templates, csrf: csrf, rbac: mw}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceEmployees, rbac.ActionRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.detail)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceEmployees, rbac.ActionCreate))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceEmployees, rbac.ActionUpdate))
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceEmployees, rbac.ActionDelete))
		r.Post("/{id}/delete", h.delete)
	})
}

type formErrors map[string]string

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	filters := ListFilters{
		Search:  r.URL.Query().Get("q"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
		Page:    pageParam(r),
		Limit:   defaultPageSize,
	}
	list, total, err := h.service.List(r.Context(), caller, filters)
	if err != nil {
		h.logger.Error("list employees failed", slog.Any("error", err))
		h.render(w, r, "pages/employees/list.html", map[string]any{
			"Employees": nil,
			"Search":    filters.Search,
			"PageNav":   shared.PageNav{},
			"Errors":    formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	nav := shared.PageNav{
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
		Query:      r.URL.RawQuery,
	}
	h.render(w, r, "pages/employees/list.html", map[string]any{
		"Employees": list,
		"Search":    filters.Search,
		"PageNav":   nav,
		"Errors":    formErrors{},
	}, http.StatusOK)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	emp, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.logger.Error("get employee failed", slog.Int64("employee_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/employees", "error", shared.UserSafeMessage(err))
		return
	}
	// The salary panel is scoped separately: a denied caller still sees the
	// employee record, just without the panel.
	var salaries []SalaryEntry
	if h.salaries != nil {
		salaries, err = h.salaries.HistoryForEmployee(r.Context(), caller, emp.ID)
		if err != nil && !errors.Is(err, shared.ErrForbidden) {
			h.logger.Error("load salary history failed", slog.Int64("employee_id", id), slog.Any("error", err))
			salaries = nil
		}
	}
	h.render(w, r, "pages/employees/detail.html", map[string]any{
		"Employee": emp,
		"Salaries": salaries,
	}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/employees/form.html", map[string]any{
		"Employee": Employee{},
		"Form":     EmployeeForm{},
		"Errors":   formErrors{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	form := formFromRequest(r)
	emp, errs := ParseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/employees/form.html", map[string]any{
			"Employee": Employee{},
			"Form":     form,
			"Errors":   formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	created, err := h.service.Create(r.Context(), caller, emp)
	if err != nil {
		h.logger.Error("create employee failed", slog.Any("error", err))
		h.render(w, r, "pages/employees/form.html", map[string]any{
			"Employee": Employee{},
			"Form":     form,
			"Errors":   formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/employees/"+strconv.FormatInt(created.ID, 10), "success", "Karyawan berhasil ditambahkan")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	emp, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.redirectWithFlash(w, r, "/employees", "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/employees/form.html", map[string]any{
		"Employee": emp,
		"Form":     formFromEmployee(emp),
		"Errors":   formErrors{},
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
	emp, errs := ParseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/employees/form.html", map[string]any{
			"Employee": Employee{ID: id},
			"Form":     form,
			"Errors":   formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), caller, id, emp); err != nil {
		h.logger.Error("update employee failed", slog.Int64("employee_id", id), slog.Any("error", err))
		h.render(w, r, "pages/employees/form.html", map[string]any{
			"Employee": Employee{ID: id},
			"Form":     form,
			"Errors":   formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/employees/"+strconv.FormatInt(id, 10), "success", "Data karyawan diperbarui")
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
		h.logger.Error("delete employee failed", slog.Int64("employee_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/employees", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/employees", "success", "Karyawan dihapus")
}

func formFromRequest(r *http.Request) EmployeeForm {
	return EmployeeForm{
		NIK:        r.PostFormValue("nik"),
		Name:       r.PostFormValue("name"),
		Position:   r.PostFormValue("position"),
		Department: r.PostFormValue("department"),
		Phone:      r.PostFormValue("phone"),
		HireDate:   r.PostFormValue("hire_date"),
		UserID:     r.PostFormValue("user_id"),
	}
}

func formFromEmployee(emp Employee) EmployeeForm {
	form := EmployeeForm{
		NIK:        emp.NIK,
		Name:       emp.Name,
		Position:   emp.Position,
		Department: emp.Department,
		Phone:      emp.Phone,
		HireDate:   emp.HireDate.Format("2006-01-02"),
	}
	if emp.UserID != nil {
		form.UserID = strconv.FormatInt(*emp.UserID, 10)
	}
	return form
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
	viewData := view.TemplateData{Title: "Karyawan", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Caller: caller, Data: data}
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
