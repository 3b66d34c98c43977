package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/jumph/jumph/internal/shared"
	"github.com/jumph/jumph/internal/view"
)

// Success notices shown after a completed mutation.
const (
	MsgCreated = "Company created!"
	MsgUpdated = "Company updated!"
	MsgDeleted = "Company deleted!"

	// MsgDuplicateCode is shown on the code field when another company uses it.
	MsgDuplicateCode = "Another company already uses this code."
)

// Resolver loads the company addressed by a request path.
type Resolver interface {
	Find(ctx context.Context, id int64) (Company, error)
}

// CompanyManager performs company mutations.
type CompanyManager interface {
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, c Company) error
}

// AlertMessenger queues user-facing notices for the next rendered page.
type AlertMessenger interface {
	Success(ctx context.Context, message string) error
}

// Response is the outcome of a handler action: either a page to render or a
// redirect, plus any success notices to deliver with it.
type Response struct {
	Status   int
	Template string
	Title    string
	Data     map[string]any
	Redirect string
	Alerts   []string
}

// Handler serves the company pages of the client area.
type Handler struct {
	logger    *slog.Logger
	companies Resolver
	manager   CompanyManager
	filter    FilterService
	events    EventPublisher
	alerts    AlertMessenger
	templates *view.Engine
	csrf      *shared.CSRFManager
	validate  *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(
	logger *slog.Logger,
	companies Resolver,
	manager CompanyManager,
	filter FilterService,
	events EventPublisher,
	alerts AlertMessenger,
	templates *view.Engine,
	csrf *shared.CSRFManager,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		companies: companies,
		manager:   manager,
		filter:    filter,
		events:    events,
		alerts:    alerts,
		templates: templates,
		csrf:      csrf,
		validate:  NewValidator(),
	}
}

// Overview lists companies matching the query filter, PageSize per page.
func (h *Handler) Overview(ctx context.Context, query url.Values) (Response, error) {
	filterForm := BindFilterForm(query)
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	companies, err := h.filter.PaginatedResults(ctx, filterForm.Criteria(), page, PageSize)
	if err != nil {
		return Response{}, err
	}
	filterQuery := url.Values{}
	for k, v := range query {
		if k != "page" {
			filterQuery[k] = v
		}
	}
	return Response{
		Status:   http.StatusOK,
		Template: "pages/company_overview.html",
		Title:    "Companies",
		Data: map[string]any{
			"FilterForm": filterForm,
			"Companies":  companies,
			"Query":      filterQuery,
			"Routes":     Routes{},
		},
	}, nil
}

// View shows a single company.
func (h *Handler) View(ctx context.Context, id int64) (Response, error) {
	company, err := h.companies.Find(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status:   http.StatusOK,
		Template: "pages/company_view.html",
		Title:    company.Name,
		Data: map[string]any{
			"Company": company,
			"Routes":  Routes{},
		},
	}, nil
}

// Add shows the empty company form and creates the company on a valid POST.
func (h *Handler) Add(ctx context.Context, method string, values url.Values) (Response, error) {
	var company Company
	form := NewForm(company)
	if method == http.MethodPost {
		form.Bind(values)
		if form.Validate(h.validate) {
			form.Apply(&company)
			err := h.manager.Create(ctx, &company)
			if errors.Is(err, ErrDuplicateCode) {
				form.Errors["code"] = MsgDuplicateCode
				return h.formResponse(method, "Add company", Routes{}.Add(), company, form), nil
			}
			if err != nil {
				return Response{}, err
			}
			if err := h.events.Publish(ctx, NewEvent(EventCreateCompany, company)); err != nil {
				return Response{}, fmt.Errorf("publish %s: %w", EventCreateCompany, err)
			}
			return h.redirectToOverview(MsgCreated), nil
		}
	}
	return h.formResponse(method, "Add company", Routes{}.Add(), company, form), nil
}

// Edit shows the form for an existing company and saves it on a valid POST.
func (h *Handler) Edit(ctx context.Context, id int64, method string, values url.Values) (Response, error) {
	company, err := h.companies.Find(ctx, id)
	if err != nil {
		return Response{}, err
	}
	form := NewForm(company)
	if method == http.MethodPost {
		form.Bind(values)
		if form.Validate(h.validate) {
			form.Apply(&company)
			err := h.manager.Update(ctx, &company)
			if errors.Is(err, ErrDuplicateCode) {
				form.Errors["code"] = MsgDuplicateCode
				return h.formResponse(method, "Edit company", Routes{}.Edit(company.ID), company, form), nil
			}
			if err != nil {
				return Response{}, err
			}
			if err := h.events.Publish(ctx, NewEvent(EventUpdateCompany, company)); err != nil {
				return Response{}, fmt.Errorf("publish %s: %w", EventUpdateCompany, err)
			}
			return h.redirectToOverview(MsgUpdated), nil
		}
	}
	return h.formResponse(method, "Edit company", Routes{}.Edit(company.ID), company, form), nil
}

// Delete removes the company without further confirmation.
func (h *Handler) Delete(ctx context.Context, id int64) (Response, error) {
	company, err := h.companies.Find(ctx, id)
	if err != nil {
		return Response{}, err
	}
	if err := h.manager.Delete(ctx, company); err != nil {
		return Response{}, err
	}
	if err := h.events.Publish(ctx, NewEvent(EventDeleteCompany, company)); err != nil {
		return Response{}, fmt.Errorf("publish %s: %w", EventDeleteCompany, err)
	}
	return h.redirectToOverview(MsgDeleted), nil
}

func (h *Handler) redirectToOverview(alert string) Response {
	return Response{
		Status:   http.StatusSeeOther,
		Redirect: Routes{}.Overview(),
		Alerts:   []string{alert},
	}
}

func (h *Handler) formResponse(method, title, action string, company Company, form *Form) Response {
	status := http.StatusOK
	if method == http.MethodPost && !form.Valid() {
		status = http.StatusUnprocessableEntity
	}
	return Response{
		Status:   status,
		Template: "pages/company_form.html",
		Title:    title,
		Data: map[string]any{
			"CompanyForm": form,
			"Company":     company,
			"Action":      action,
			"Routes":      Routes{},
		},
	}
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Overview(r.Context(), r.URL.Query())
	h.respond(w, r, resp, err)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(r)
	if !ok {
		h.respond(w, r, Response{}, shared.ErrNotFound)
		return
	}
	resp, err := h.View(r.Context(), id)
	h.respond(w, r, resp, err)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	resp, err := h.Add(r.Context(), r.Method, r.PostForm)
	h.respond(w, r, resp, err)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(r)
	if !ok {
		h.respond(w, r, Response{}, shared.ErrNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	resp, err := h.Edit(r.Context(), id, r.Method, r.PostForm)
	h.respond(w, r, resp, err)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(r)
	if !ok {
		h.respond(w, r, Response{}, shared.ErrNotFound)
		return
	}
	// CSRFMiddleware passes GET through, so a GET delete carries the token in
	// its query string.
	if r.Method == http.MethodGet {
		token := r.URL.Query().Get(shared.CSRFFormField)
		if err := h.csrf.VerifyToken(shared.SessionFromContext(r.Context()), token); err != nil {
			h.logger.Warn("csrf validation failed", "path", r.URL.Path, "error", err)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
	}
	resp, err := h.Delete(r.Context(), id)
	h.respond(w, r, resp, err)
}

// respond delivers alerts before the redirect so they land in the session
// that the redirect response commits.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, resp Response, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for _, msg := range resp.Alerts {
		if err := h.alerts.Success(r.Context(), msg); err != nil {
			h.fail(w, r, fmt.Errorf("queue alert: %w", err))
			return
		}
	}
	if resp.Redirect != "" {
		http.Redirect(w, r, resp.Redirect, resp.Status)
		return
	}
	h.render(w, r, resp.Template, resp.Title, resp.Data, resp.Status)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		h.render(w, r, "pages/not_found.html", "Not found", nil, http.StatusNotFound)
		return
	}
	h.logger.Error("company request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	h.render(w, r, "pages/error.html", "Something went wrong", nil, http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var (
		csrfToken string
		flashes   []shared.FlashMessage
	)
	if sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(sess)
		flashes = sess.PopFlashes()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, status, template, viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", template)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func companyID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "companyId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
