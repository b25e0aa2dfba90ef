package view_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
	"github.com/harmoni-hris/harmoni-hris/internal/shared"
	"github.com/harmoni-hris/harmoni-hris/internal/view"
)

func TestNewEngine(t *testing.T) {
	engine, err := view.NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderDashboard(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	caller := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}
	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/home.html", view.TemplateData{
		Title:       "Dasbor",
		CurrentPath: "/",
		Caller:      &caller,
		Data: struct {
			Headcount      int
			ActiveProjects int
			OpenTasks      int
			MyTasks        int
		}{Headcount: 12, ActiveProjects: 3, OpenTasks: 9, MyTasks: 2},
	})

	require.NoError(t, err)
	body := res.Body.String()
	assert.Contains(t, body, "Dasbor")
	assert.Contains(t, body, "Karyawan aktif")
	assert.Contains(t, body, "12")
}

func TestRenderSalaryListFormatsRupiah(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	caller := rbac.Identity{UserID: 1, Role: rbac.RoleAdmin}
	type row struct {
		ID            int64
		EmployeeName  string
		EffectiveDate time.Time
		Amount        float64
		Note          string
	}
	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/salaries/list.html", view.TemplateData{
		Title:       "Riwayat Gaji",
		CSRFToken:   "token",
		CurrentPath: "/salaries",
		Caller:      &caller,
		Data: map[string]any{
			"Errors": map[string]string{},
			"Salaries": []row{
				{ID: 1, EmployeeName: "Budi Santoso", EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 17500000, Note: "Penyesuaian pasar"},
			},
			"PageNav": shared.PageNav{Pagination: shared.NewPagination(1, 20, 1)},
		},
	})

	require.NoError(t, err)
	body := res.Body.String()
	assert.Contains(t, body, "Budi Santoso")
	assert.Contains(t, body, "01 Jan 2024")
	assert.Contains(t, body, "17.500.000", "amounts should use Indonesian digit grouping")
}

func TestRenderLandingWithoutCaller(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/landing.html", view.TemplateData{Title: "Harmoni", CurrentPath: "/welcome"})

	require.NoError(t, err)
	assert.Contains(t, res.Body.String(), "Harmoni")
}
