package company

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jumph/jumph/internal/shared"
)

// PageSize is the number of companies shown per overview page.
const PageSize = 15

var sortColumns = map[string]string{
	"name":       "name",
	"code":       "code",
	"city":       "city",
	"created_at": "created_at",
}

// FilterForm carries the overview filter fields as submitted in the query string.
type FilterForm struct {
	Name    string
	City    string
	Country string
	Sort    string
	Dir     string
}

// FilterCriteria is the normalised filter handed to a FilterService.
type FilterCriteria struct {
	Name    string
	City    string
	Country string
	SortBy  string
	SortDir string
}

// Page is one page of companies plus its pagination metadata.
type Page struct {
	Items      []Company
	Pagination shared.Pagination
}

// FilterService returns filtered, paginated companies.
type FilterService interface {
	PaginatedResults(ctx context.Context, criteria FilterCriteria, page, pageSize int) (Page, error)
}

// BindFilterForm reads the filter from query values. It never fails: unknown
// sort keys fall back to name, unknown directions to ascending.
func BindFilterForm(values url.Values) FilterForm {
	form := FilterForm{
		Name:    clean(values.Get("name")),
		City:    clean(values.Get("city")),
		Country: strings.ToUpper(clean(values.Get("country"))),
		Sort:    strings.ToLower(strings.TrimSpace(values.Get("sort"))),
		Dir:     strings.ToLower(strings.TrimSpace(values.Get("dir"))),
	}
	if _, ok := sortColumns[form.Sort]; !ok {
		form.Sort = "name"
	}
	if form.Dir != shared.SortDesc {
		form.Dir = shared.SortAsc
	}
	return form
}

// Criteria converts the bound form into filter criteria.
func (f FilterForm) Criteria() FilterCriteria {
	return FilterCriteria{
		Name:    f.Name,
		City:    f.City,
		Country: f.Country,
		SortBy:  f.Sort,
		SortDir: f.Dir,
	}
}

// Active reports whether any narrowing field is set.
func (f FilterForm) Active() bool {
	return f.Name != "" || f.City != "" || f.Country != ""
}

// Filter is the repository-backed FilterService.
type Filter struct {
	repo Repository
}

// NewFilter constructs a Filter.
func NewFilter(repo Repository) *Filter {
	return &Filter{repo: repo}
}

// PaginatedResults loads the requested page. Pages past the end yield no items.
func (f *Filter) PaginatedResults(ctx context.Context, criteria FilterCriteria, page, pageSize int) (Page, error) {
	p := shared.NewPagination(page, pageSize, 0)
	items, total, err := f.repo.Search(ctx, criteria, p.PerPage, p.Offset())
	if err != nil {
		return Page{}, fmt.Errorf("filter companies: %w", err)
	}
	return Page{Items: items, Pagination: shared.NewPagination(p.Page, p.PerPage, total)}, nil
}
