// Package audithttp serves the audit timeline pages.
package audithttp

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jumph/jumph/internal/audit"
	"github.com/jumph/jumph/internal/shared"
	"github.com/jumph/jumph/internal/view"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 50
	maxDateRangeHours = 24 * 366
	dateLayout        = "2006-01-02"
)

// TimelineService defines the read contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error)
	Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error)
}

// Handler serves audit timeline requests.
type Handler struct {
	logger    *slog.Logger
	service   TimelineService
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler builds an audit Handler.
func NewHandler(logger *slog.Logger, service TimelineService, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// TimelinePage is the view model of pages/audit_timeline.html.
type TimelinePage struct {
	Filters   audit.TimelineFilters
	Rows      []audit.TimelineRow
	Paging    audit.PagingInfo
	Query     url.Values
	ExportURL string
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "load audit timeline", err)
		return
	}

	query := url.Values{}
	for k, v := range r.URL.Query() {
		if k != "page" {
			query[k] = v
		}
	}
	data := view.TemplateData{
		Title:       "Audit timeline",
		CurrentPath: r.URL.Path,
		Data: TimelinePage{
			Filters:   filters,
			Rows:      result.Rows,
			Paging:    result.Paging,
			Query:     query,
			ExportURL: "/audit/export.csv?" + query.Encode(),
		},
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		data.CSRFToken, _ = h.csrf.EnsureToken(sess)
		data.Flashes = sess.PopFlashes()
	}
	if err := h.templates.Render(w, http.StatusOK, "pages/audit_timeline.html", data); err != nil {
		h.handleServerError(w, "render audit timeline", err)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "export audit timeline", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	_ = writer.Write([]string{"occurred_at", "action", "entity", "entity_id", "code", "name"})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.At.UTC().Format(time.RFC3339),
			row.Action,
			row.Entity,
			row.EntityID,
			metaString(row.Meta, "code"),
			metaString(row.Meta, "name"),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

type validationError struct {
	field string
}

func (e validationError) Error() string {
	return "invalid filter: " + e.field
}

func parseFilters(q url.Values) (audit.TimelineFilters, error) {
	filters := audit.TimelineFilters{
		Entity:   strings.TrimSpace(q.Get("entity")),
		EntityID: strings.TrimSpace(q.Get("entity_id")),
		Action:   strings.TrimSpace(q.Get("action")),
		Page:     1,
		PageSize: defaultPageSize,
	}
	var err error
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if filters.From, err = time.Parse(dateLayout, v); err != nil {
			return audit.TimelineFilters{}, validationError{field: "from"}
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := time.Parse(dateLayout, v)
		if err != nil {
			return audit.TimelineFilters{}, validationError{field: "to"}
		}
		// The to date is inclusive.
		filters.To = to.Add(24 * time.Hour)
	}
	if !filters.From.IsZero() && !filters.To.IsZero() {
		if !filters.From.Before(filters.To) || filters.To.Sub(filters.From) > maxDateRangeHours*time.Hour {
			return audit.TimelineFilters{}, validationError{field: "range"}
		}
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page <= 0 || page-1 > math.MaxInt32/maxPageSize {
			return audit.TimelineFilters{}, validationError{field: "page"}
		}
		filters.Page = page
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return audit.TimelineFilters{}, validationError{field: "page_size"}
		}
		filters.PageSize = min(size, maxPageSize)
	}
	return filters, nil
}

func metaString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
