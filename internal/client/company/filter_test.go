package company_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumph/jumph/internal/client/company"
)

type searchCall struct {
	criteria company.FilterCriteria
	limit    int
	offset   int
}

// memoryRepository is an in-memory company.Repository.
type memoryRepository struct {
	items    []company.Company
	searches []searchCall
	err      error
	nextID   int64
}

func (m *memoryRepository) Get(ctx context.Context, id int64) (company.Company, error) {
	for _, c := range m.items {
		if c.ID == id {
			return c, nil
		}
	}
	return company.Company{}, errors.New("not found")
}

func (m *memoryRepository) Search(ctx context.Context, criteria company.FilterCriteria, limit, offset int) ([]company.Company, int, error) {
	m.searches = append(m.searches, searchCall{criteria: criteria, limit: limit, offset: offset})
	if m.err != nil {
		return nil, 0, m.err
	}
	if offset >= len(m.items) {
		return nil, len(m.items), nil
	}
	end := offset + limit
	if end > len(m.items) {
		end = len(m.items)
	}
	return m.items[offset:end], len(m.items), nil
}

func (m *memoryRepository) Create(ctx context.Context, c company.Company) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	c.ID = m.nextID
	m.items = append(m.items, c)
	return c.ID, nil
}

func (m *memoryRepository) Update(ctx context.Context, c company.Company) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = c
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memoryRepository) Delete(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func seededRepository(n int) *memoryRepository {
	repo := &memoryRepository{}
	for i := 0; i < n; i++ {
		_, _ = repo.Create(context.Background(), company.Company{Name: "Company", Code: "C"})
	}
	return repo
}

func TestBindFilterFormDefaults(t *testing.T) {
	form := company.BindFilterForm(url.Values{"sort": {"password"}, "dir": {"sideways"}})

	assert.Equal(t, "name", form.Sort)
	assert.Equal(t, "asc", form.Dir)
	assert.False(t, form.Active())
}

func TestBindFilterFormCriteria(t *testing.T) {
	form := company.BindFilterForm(url.Values{"city": {" Utrecht "}, "sort": {"CITY"}, "dir": {"DESC"}})

	assert.True(t, form.Active())
	assert.Equal(t, company.FilterCriteria{City: "Utrecht", SortBy: "city", SortDir: "desc"}, form.Criteria())
}

func TestFilterPaginatedResults(t *testing.T) {
	repo := seededRepository(32)
	filter := company.NewFilter(repo)
	criteria := company.FilterCriteria{Name: "Comp", SortBy: "name", SortDir: "asc"}

	page, err := filter.PaginatedResults(context.Background(), criteria, 3, company.PageSize)
	require.NoError(t, err)

	require.Len(t, repo.searches, 1)
	assert.Equal(t, searchCall{criteria: criteria, limit: 15, offset: 30}, repo.searches[0])
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Pagination.Page)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 32, page.Pagination.Total)
	assert.True(t, page.Pagination.HasPrev())
	assert.False(t, page.Pagination.HasNext())
}

func TestFilterPageBeyondEndIsEmpty(t *testing.T) {
	repo := seededRepository(4)
	filter := company.NewFilter(repo)

	page, err := filter.PaginatedResults(context.Background(), company.FilterCriteria{}, 9, company.PageSize)
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Equal(t, 4, page.Pagination.Total)
}

func TestFilterWrapsRepositoryError(t *testing.T) {
	repo := &memoryRepository{err: errors.New("timeout")}
	filter := company.NewFilter(repo)

	_, err := filter.PaginatedResults(context.Background(), company.FilterCriteria{}, 1, company.PageSize)
	assert.ErrorContains(t, err, "filter companies: timeout")
}
