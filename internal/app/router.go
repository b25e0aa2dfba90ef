package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/harmoni-hris/harmoni-hris/internal/auth"
	"github.com/harmoni-hris/harmoni-hris/internal/dashboard"
	"github.com/harmoni-hris/harmoni-hris/internal/employees"
	"github.com/harmoni-hris/harmoni-hris/internal/observability"
	"github.com/harmoni-hris/harmoni-hris/internal/platform/httpx"
	"github.com/harmoni-hris/harmoni-hris/internal/projects"
	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/salaries"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/tasks"
	"github.com/harmoni-hris/harmoni-hris/internal/users"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
	"github.com/harmoni-hris/harmoni-hris/jobs"
	"github.com/harmoni-hris/harmoni-hris/report"
	"github.com/harmoni-hris/harmoni-hris/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	UsersHandler     *users.Handler
	EmployeesHandler *employees.Handler
	ProjectsHandler  *projects.Handler
	TasksHandler     *tasks.Handler
	SalariesHandler  *salaries.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
	RBACMiddleware   rbac.Middleware
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Harmoni defaults. Every protected
// group runs behind Authenticate; the per-resource permission checks live in
// each module's MountRoutes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Landing page for unauthenticated users
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:     "Harmoni HRIS",
			CSRFToken: csrfToken,
			Flash:     flash,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		params.RBACMiddleware.Authenticate(http.HandlerFunc(params.DashboardHandler.Home)).ServeHTTP(w, r)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Authenticate)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/employees", params.EmployeesHandler.MountRoutes)
		r.Route("/projects", params.ProjectsHandler.MountRoutes)
		r.Route("/tasks", params.TasksHandler.MountRoutes)
		r.Route("/salaries", params.SalariesHandler.MountRoutes)
		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// browsers keep assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
