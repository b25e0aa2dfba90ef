package salaries

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
)

const defaultPageSize = 20

// Handler manages salary endpoints.
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

// MountRoutes registers salary routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceSalaries, rbac.ActionRead))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceSalaries, rbac.ActionCreate))
		r.Get("/new", h.showCreateForm)
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceSalaries, rbac.ActionUpdate))
		r.Get("/{id}/edit", h.showEditForm)
		r.Post("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceSalaries, rbac.ActionDelete))
		r.Post("/{id}/delete", h.delete)
	})
}

type formErrors map[string]string

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	filters := ListFilters{Page: pageParam(r), Limit: defaultPageSize}
	if employeeID, err := strconv.ParseInt(r.URL.Query().Get("employee"), 10, 64); err == nil && employeeID > 0 {
		filters.EmployeeID = employeeID
	}
	list, total, err := h.service.List(r.Context(), caller, filters)
	if err != nil {
		h.logger.Error("list salaries failed", slog.Any("error", err))
		h.render(w, r, "pages/salaries/list.html", map[string]any{
			"Salaries": nil,
			"PageNav":  shared.PageNav{},
			"Errors":   formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	nav := shared.PageNav{
		Pagination: shared.NewPagination(filters.Page, filters.Limit, total),
		Query:      r.URL.RawQuery,
	}
	h.render(w, r, "pages/salaries/list.html", map[string]any{
		"Salaries": list,
		"PageNav":  nav,
		"Errors":   formErrors{},
	}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	form := SalaryForm{}
	if employeeID := r.URL.Query().Get("employee"); employeeID != "" {
		form.EmployeeID = employeeID
	}
	h.render(w, r, "pages/salaries/form.html", map[string]any{
		"Salary": Salary{},
		"Form":   form,
		"Errors": formErrors{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller, _ := rbac.IdentityFromContext(r.Context())
	form := formFromRequest(r)
	salary, errs := parseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/salaries/form.html", map[string]any{
			"Salary": Salary{},
			"Form":   form,
			"Errors": formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	if _, err := h.service.Create(r.Context(), caller, salary); err != nil {
		h.logger.Error("create salary failed", slog.Any("error", err))
		h.render(w, r, "pages/salaries/form.html", map[string]any{
			"Salary": Salary{},
			"Form":   form,
			"Errors": formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/salaries", "success", "Catatan gaji ditambahkan")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	salary, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.redirectWithFlash(w, r, "/salaries", "error", shared.UserSafeMessage(err))
		return
	}
	h.render(w, r, "pages/salaries/form.html", map[string]any{
		"Salary": salary,
		"Form":   formFromSalary(salary),
		"Errors": formErrors{},
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
	salary, errs := parseForm(form)
	if len(errs) > 0 {
		h.render(w, r, "pages/salaries/form.html", map[string]any{
			"Salary": Salary{ID: id},
			"Form":   form,
			"Errors": formErrors(errs),
		}, http.StatusBadRequest)
		return
	}
	if err := h.service.Update(r.Context(), caller, id, salary); err != nil {
		h.logger.Error("update salary failed", slog.Int64("salary_id", id), slog.Any("error", err))
		h.render(w, r, "pages/salaries/form.html", map[string]any{
			"Salary": Salary{ID: id},
			"Form":   form,
			"Errors": formErrors{"general": shared.UserSafeMessage(err)},
		}, statusFor(err))
		return
	}
	h.redirectWithFlash(w, r, "/salaries", "success", "Catatan gaji diperbarui")
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
		h.logger.Error("delete salary failed", slog.Int64("salary_id", id), slog.Any("error", err))
		h.redirectWithFlash(w, r, "/salaries", "error", shared.UserSafeMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/salaries", "success", "Catatan gaji dihapus")
}

func formFromRequest(r *http.Request) SalaryForm {
	return SalaryForm{
		EmployeeID:    r.PostFormValue("employee_id"),
		Amount:        r.PostFormValue("amount"),
		EffectiveDate: r.PostFormValue("effective_date"),
		Note:          r.PostFormValue("note"),
	}
}

func formFromSalary(s Salary) SalaryForm {
	return SalaryForm{
		EmployeeID:    strconv.FormatInt(s.EmployeeID, 10),
		Amount:        strconv.FormatFloat(s.Amount, 'f', -1, 64),
		EffectiveDate: s.EffectiveDate.Format("2006-01-02"),
		Note:          s.Note,
	}
}

func parseForm(form SalaryForm) (Salary, map[string]string) {
	errs := make(map[string]string)
	s := Salary{Note: strings.TrimSpace(form.Note)}

	employeeID, err := strconv.ParseInt(strings.TrimSpace(form.EmployeeID), 10, 64)
	if err != nil || employeeID <= 0 {
		errs["EmployeeID"] = "ID karyawan tidak valid"
	} else {
		s.EmployeeID = employeeID
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(form.Amount), 64)
	if err != nil || amount <= 0 {
		errs["Amount"] = "Jumlah harus lebih dari nol"
	} else {
		s.Amount = amount
	}
	if form.EffectiveDate == "" {
		errs["EffectiveDate"] = "Tanggal berlaku wajib diisi"
	} else {
		effective, err := time.Parse("2006-01-02", form.EffectiveDate)
		if err != nil {
			errs["EffectiveDate"] = "Format tanggal tidak valid"
		} else {
			s.EffectiveDate = effective
		}
	}
	if len(errs) > 0 {
		return Salary{}, errs
	}
	return s, nil
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
	viewData := view.TemplateData{Title: "Gaji", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Caller: caller, Data: data}
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
