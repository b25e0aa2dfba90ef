package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/harmoni-hris/harmoni-hris/internal/app"
	"github.com/harmoni-hris/harmoni-hris/internal/auth"
	"github.com/harmoni-hris/harmoni-hris/internal/dashboard"
	"github.com/harmoni-hris/harmoni-hris/internal/employees"
	"github.com/harmoni-hris/harmoni-hris/internal/observability"
	"github.com/harmoni-hris/harmoni-hris/internal/platform/cache"
	"github.com/harmoni-hris/harmoni-hris/internal/platform/db"
	"github.com/harmoni-hris/harmoni-hris/internal/projects"
	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/salaries"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/tasks"
	"github.com/harmoni-hris/harmoni-hris/internal/users"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
	"github.com/harmoni-hris/harmoni-hris/jobs"
	"github.com/harmoni-hris/harmoni-hris/report"
)

// salaryHistoryAdapter feeds the employee detail page's salary panel from the
// salaries service so the employees package stays decoupled from it.
type salaryHistoryAdapter struct {
	service *salaries.Service
}

func (a salaryHistoryAdapter) HistoryForEmployee(ctx context.Context, caller rbac.Identity, employeeID int64) ([]employees.SalaryEntry, error) {
	history, err := a.service.ListForEmployee(ctx, caller, employeeID)
	if err != nil {
		return nil, err
	}
	entries := make([]employees.SalaryEntry, 0, len(history))
	for _, s := range history {
		entries = append(entries, employees.SalaryEntry{
			EffectiveDate: s.EffectiveDate,
			Amount:        s.Amount,
			Note:          s.Note,
		})
	}
	return entries, nil
}

// projectOptionsAdapter fills the task board's project filter.
type projectOptionsAdapter struct {
	service *projects.Service
}

func (a projectOptionsAdapter) ProjectOptions(ctx context.Context, caller rbac.Identity) ([]tasks.ProjectOption, error) {
	list, _, err := a.service.List(ctx, caller, projects.ListFilters{})
	if err != nil {
		return nil, err
	}
	options := make([]tasks.ProjectOption, 0, len(list))
	for _, p := range list {
		options = append(options, tasks.ProjectOption{ID: p.ID, Name: p.Name})
	}
	return options, nil
}

// rosterAdapter feeds the PDF roster export from the employee directory.
type rosterAdapter struct {
	service *employees.Service
}

func (a rosterAdapter) Roster(ctx context.Context, caller rbac.Identity) ([]report.RosterRow, error) {
	list, _, err := a.service.List(ctx, caller, employees.ListFilters{SortBy: "name"})
	if err != nil {
		return nil, err
	}
	rows := make([]report.RosterRow, 0, len(list))
	for _, e := range list {
		rows = append(rows, report.RosterRow{
			NIK:        e.NIK,
			Name:       e.Name,
			Position:   e.Position,
			Department: e.Department,
			HireDate:   e.HireDate,
		})
	}
	return rows, nil
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "harmoni_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	usersRepo := users.NewRepository(dbpool)
	rbacMiddleware := rbac.Middleware{Roles: usersRepo, Logger: logger}
	ownerResolver := rbac.NewOwnerResolver(dbpool)

	usersService := users.NewService(usersRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, templates, csrfManager, rbacMiddleware)

	salariesRepo := salaries.NewRepository(dbpool)
	salariesService := salaries.NewService(salariesRepo, ownerResolver, auditLogger)
	salariesHandler := salaries.NewHandler(logger, salariesService, templates, csrfManager, rbacMiddleware)

	employeesRepo := employees.NewRepository(dbpool)
	employeesService := employees.NewService(employeesRepo, auditLogger)
	employeesHandler := employees.NewHandler(logger, employeesService, salaryHistoryAdapter{service: salariesService}, templates, csrfManager, rbacMiddleware)

	projectsRepo := projects.NewRepository(dbpool)
	projectsService := projects.NewService(projectsRepo, auditLogger)
	projectsHandler := projects.NewHandler(logger, projectsService, templates, csrfManager, rbacMiddleware)

	tasksRepo := tasks.NewRepository(dbpool)
	tasksService := tasks.NewService(tasksRepo, ownerResolver, auditLogger)
	tasksHandler := tasks.NewHandler(logger, tasksService, projectOptionsAdapter{service: projectsService}, templates, csrfManager, rbacMiddleware)

	dashboardService := dashboard.NewService(dbpool)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates, csrfManager)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, rosterAdapter{service: employeesService}, logger, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		UsersHandler:     usersHandler,
		EmployeesHandler: employeesHandler,
		ProjectsHandler:  projectsHandler,
		TasksHandler:     tasksHandler,
		SalariesHandler:  salariesHandler,
		ReportHandler:    reportHandler,
		JobHandler:       jobHandler,
		RBACMiddleware:   rbacMiddleware,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
