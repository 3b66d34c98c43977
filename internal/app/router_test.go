package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumph/jumph/internal/audit"
	audithttp "github.com/jumph/jumph/internal/audit/http"
	"github.com/jumph/jumph/internal/client/company"
	"github.com/jumph/jumph/internal/observability"
	"github.com/jumph/jumph/internal/shared"
	"github.com/jumph/jumph/internal/view"
)

type memoryCompanies struct {
	items map[int64]company.Company
}

func (m *memoryCompanies) Find(ctx context.Context, id int64) (company.Company, error) {
	c, ok := m.items[id]
	if !ok {
		return company.Company{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryCompanies) Create(ctx context.Context, c *company.Company) error {
	c.ID = int64(len(m.items) + 1)
	m.items[c.ID] = *c
	return nil
}

func (m *memoryCompanies) Update(ctx context.Context, c *company.Company) error {
	m.items[c.ID] = *c
	return nil
}

func (m *memoryCompanies) Delete(ctx context.Context, c company.Company) error {
	delete(m.items, c.ID)
	return nil
}

func (m *memoryCompanies) PaginatedResults(ctx context.Context, criteria company.FilterCriteria, page, pageSize int) (company.Page, error) {
	var items []company.Company
	for _, c := range m.items {
		items = append(items, c)
	}
	return company.Page{Items: items, Pagination: shared.NewPagination(page, pageSize, len(items))}, nil
}

type emptyTimeline struct{}

func (emptyTimeline) Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error) {
	return audit.Result{Paging: audit.PagingInfo{Page: filters.Page}}, nil
}

func (emptyTimeline) Export(ctx context.Context, filters audit.TimelineFilters) ([]audit.TimelineRow, error) {
	return nil, nil
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestRouter(t *testing.T) (http.Handler, *memoryCompanies) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)
	sessions := shared.NewSessionManager(client, "test_session", "sessionsecret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	store := &memoryCompanies{items: map[int64]company.Company{}}
	handler := company.NewHandler(logger, store, store, store, company.NewDispatcher(logger), shared.FlashMessenger{}, templates, csrf)

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         &Config{AppEnv: "test", RateLimitPerMinute: 1000},
		Templates:      templates,
		SessionManager: sessions,
		CSRFManager:    csrf,
		CompanyHandler: handler,
		AuditHandler:   audithttp.NewHandler(logger, emptyTimeline{}, templates, csrf),
		Metrics:        observability.NewMetrics(),
	})
	return router, store
}

func TestRouterHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouterServesStaticAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	css := httptest.NewRecorder()
	router.ServeHTTP(css, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, css.Code)
	assert.Equal(t, "public, max-age=3600", css.Header().Get("Cache-Control"))

	metrics := httptest.NewRecorder()
	router.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metrics.Code)
}

func TestRouterRejectsPostWithoutCSRFToken(t *testing.T) {
	router, store := newTestRouter(t)

	form := url.Values{"name": {"Acme"}, "code": {"ACME"}}
	req := httptest.NewRequest(http.MethodPost, "/clients/companies/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, store.items)
}

func TestRouterCreateCompanyFlow(t *testing.T) {
	router, store := newTestRouter(t)

	formPage := httptest.NewRecorder()
	router.ServeHTTP(formPage, httptest.NewRequest(http.MethodGet, "/clients/companies/add", nil))
	require.Equal(t, http.StatusOK, formPage.Code)
	match := csrfInput.FindStringSubmatch(formPage.Body.String())
	require.Len(t, match, 2, "csrf token not rendered")
	cookies := formPage.Result().Cookies()
	require.NotEmpty(t, cookies)

	form := url.Values{"name": {"Acme"}, "code": {"ACME"}, "csrf_token": {match[1]}}
	post := httptest.NewRequest(http.MethodPost, "/clients/companies/add", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		post.AddCookie(c)
	}
	created := httptest.NewRecorder()
	router.ServeHTTP(created, post)

	require.Equal(t, http.StatusSeeOther, created.Code)
	assert.Equal(t, "/clients/companies", created.Header().Get("Location"))
	require.Len(t, store.items, 1)
	assert.Equal(t, "Acme", store.items[1].Name)

	overview := httptest.NewRequest(http.MethodGet, "/clients/companies", nil)
	for _, c := range cookies {
		overview.AddCookie(c)
	}
	listed := httptest.NewRecorder()
	router.ServeHTTP(listed, overview)
	assert.Equal(t, http.StatusOK, listed.Code)
	assert.Contains(t, listed.Body.String(), "Company created!")
}

func TestRouterSetsSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestRouterMountsAuditTimeline(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit?entity=company&entity_id=1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No audit entries found.")
}
