package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
)

// Handler renders the home dashboard.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// Home renders the dashboard cards.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	caller, ok := rbac.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	summary, err := h.service.Summarize(r.Context(), caller)
	if err != nil {
		h.logger.Error("dashboard summary failed", slog.Any("error", err))
	}
	h.render(w, r, summary)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, summary Summary) {
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
	viewData := view.TemplateData{Title: "Dasbor", CSRFToken: csrfToken, Flash: flash, CurrentPath: r.URL.Path, Caller: caller, Data: summary}
	if err := h.templates.Render(w, "pages/home.html", viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err))
	}
}
