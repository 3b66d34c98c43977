package audit

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	// ExportLimit caps the rows returned by Export.
	ExportLimit = 10000
)

// WindowParams are the query arguments of a timeline window. Invalid
// (NULL) values disable the corresponding filter.
type WindowParams struct {
	Entity     pgtype.Text
	EntityID   pgtype.Text
	Action     pgtype.Text
	FromAt     pgtype.Timestamptz
	ToAt       pgtype.Timestamptz
	OffsetRows int32
	LimitRows  int32
}

// Repository queries audit_logs.
type Repository interface {
	TimelineWindow(ctx context.Context, arg WindowParams) ([]TimelineRow, error)
}

// Service coordinates timeline reads.
type Service struct {
	repo Repository
}

// NewService builds a timeline Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of matching entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	// OFFSET is an int32 query argument.
	if lastPage := math.MaxInt32/pageSize + 1; page > lastPage {
		page = lastPage
	}
	params := windowParams(filters)
	params.OffsetRows = int32((page - 1) * pageSize)
	params.LimitRows = int32(pageSize + 1)
	rows, err := s.repo.TimelineWindow(ctx, params)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns every matching entry up to ExportLimit.
func (s *Service) Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	params := windowParams(filters)
	params.LimitRows = ExportLimit
	return s.repo.TimelineWindow(ctx, params)
}

func windowParams(filters TimelineFilters) WindowParams {
	return WindowParams{
		Entity:   optionalText(filters.Entity),
		EntityID: optionalText(filters.EntityID),
		Action:   optionalText(filters.Action),
		FromAt:   toPgTime(filters.From),
		ToAt:     toPgTime(filters.To),
	}
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}
