package report

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harmoni-hris/harmoni-hris/internal/rbac"
)

// RosterRow is one employee line in the exported roster.
type RosterRow struct {
	NIK        string
	Name       string
	Position   string
	Department string
	HireDate   time.Time
}

// RosterSource lists the roster for export. The employees module implements
// it behind an adapter.
type RosterSource interface {
	Roster(ctx context.Context, caller rbac.Identity) ([]RosterRow, error)
}

// Handler serves PDF exports rendered through Gotenberg.
type Handler struct {
	client *Client
	roster RosterSource
	logger *slog.Logger
	rbac   rbac.Middleware
}

// NewHandler constructs the report handler.
func NewHandler(client *Client, roster RosterSource, logger *slog.Logger, mw rbac.Middleware) *Handler {
	return &Handler{client: client, roster: roster, logger: logger, rbac: mw}
}

// MountRoutes attaches report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ResourceEmployees, rbac.ActionRead))
		r.Get("/roster.pdf", h.rosterPDF)
	})
}

func (h *Handler) rosterPDF(w http.ResponseWriter, r *http.Request) {
	caller, _ := rbac.IdentityFromContext(r.Context())
	rows, err := h.roster.Roster(r.Context(), caller)
	if err != nil {
		h.logger.Error("load roster", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), rosterHTML(rows))
	if err != nil {
		h.logger.Error("render roster pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="daftar-karyawan.pdf"`)
	_, _ = w.Write(pdf)
}

func rosterHTML(rows []RosterRow) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>
		body { font-family: sans-serif; font-size: 12px; }
		h1 { font-size: 18px; }
		table { width: 100%; border-collapse: collapse; }
		th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
	</style></head><body>`)
	b.WriteString("<h1>Daftar Karyawan</h1>")
	fmt.Fprintf(&b, "<p>Dicetak %s</p>", time.Now().Format("2 January 2006"))
	b.WriteString("<table><thead><tr><th>NIK</th><th>Nama</th><th>Posisi</th><th>Departemen</th><th>Tanggal Masuk</th></tr></thead><tbody>")
	for _, row := range rows {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(row.NIK),
			html.EscapeString(row.Name),
			html.EscapeString(row.Position),
			html.EscapeString(row.Department),
			row.HireDate.Format("02-01-2006"))
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}
