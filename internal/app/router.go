package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	audithttp "github.com/jumph/jumph/internal/audit/http"
	"github.com/jumph/jumph/internal/client/company"
	"github.com/jumph/jumph/internal/observability"
	"github.com/jumph/jumph/internal/platform/httpx"
	"github.com/jumph/jumph/internal/shared"
	"github.com/jumph/jumph/internal/view"
	"github.com/jumph/jumph/jobs"
	"github.com/jumph/jumph/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	CompanyHandler *company.Handler
	AuditHandler   *audithttp.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// Probes and static assets bypass sessions, CSRF and rate limiting.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
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

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			data := view.TemplateData{Title: "Jumph", CurrentPath: r.URL.Path}
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				data.CSRFToken, _ = params.CSRFManager.EnsureToken(sess)
				data.Flashes = sess.PopFlashes()
			}
			if err := params.Templates.Render(w, http.StatusOK, "pages/home.html", data); err != nil {
				params.Logger.Error("render home", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		})

		if params.CompanyHandler != nil {
			r.Route(company.Prefix, params.CompanyHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Group(params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}

// staticCacheHandler lets browsers cache embedded assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
