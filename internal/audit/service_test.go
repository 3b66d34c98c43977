package audit

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type stubTimelineRepo struct {
	rows     []TimelineRow
	lastCall WindowParams
}

func (s *stubTimelineRepo) TimelineWindow(ctx context.Context, arg WindowParams) ([]TimelineRow, error) {
	s.lastCall = arg
	if int(arg.LimitRows) < len(s.rows) {
		return s.rows[:arg.LimitRows], nil
	}
	return s.rows, nil
}

func mockRow(ts, action, entityID string) TimelineRow {
	at, _ := time.Parse(time.RFC3339, ts)
	return TimelineRow{At: at, Action: action, Entity: "company", EntityID: entityID}
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{
		mockRow("2024-03-10T10:00:00Z", "UPDATE_COMPANY", "1"),
		mockRow("2024-03-09T09:00:00Z", "UPDATE_COMPANY", "1"),
		mockRow("2024-03-08T08:00:00Z", "CREATE_COMPANY", "1"),
	}}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Entity: "company", EntityID: " 1 ", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext || result.Paging.NextPage != 2 {
		t.Fatalf("unexpected paging: %+v", result.Paging)
	}
	if repo.lastCall.LimitRows != 3 || repo.lastCall.OffsetRows != 0 {
		t.Fatalf("unexpected window: limit %d offset %d", repo.lastCall.LimitRows, repo.lastCall.OffsetRows)
	}
	if repo.lastCall.EntityID != (pgtype.Text{String: "1", Valid: true}) {
		t.Fatalf("expected trimmed entity id filter, got %+v", repo.lastCall.EntityID)
	}
	if repo.lastCall.Action.Valid || repo.lastCall.FromAt.Valid {
		t.Fatalf("expected unset filters to be NULL: %+v", repo.lastCall)
	}
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 3, PageSize: 500})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.PageSize != maxPageSize || result.Paging.PrevPage != 2 {
		t.Fatalf("unexpected paging: %+v", result.Paging)
	}
	if repo.lastCall.OffsetRows != int32(2*maxPageSize) {
		t.Fatalf("expected offset %d, got %d", 2*maxPageSize, repo.lastCall.OffsetRows)
	}
}

func TestServiceTimelineOffsetFitsInt32(t *testing.T) {
	for _, filters := range []TimelineFilters{
		{Page: 200000000, PageSize: 20},
		{Page: math.MaxInt, PageSize: maxPageSize},
		{Page: math.MaxInt},
	} {
		repo := &stubTimelineRepo{}
		result, err := NewService(repo).Timeline(context.Background(), filters)
		if err != nil {
			t.Fatalf("timeline: %v", err)
		}
		if repo.lastCall.OffsetRows < 0 {
			t.Fatalf("page %d: negative offset %d", filters.Page, repo.lastCall.OffsetRows)
		}
		want := int64(result.Paging.Page-1) * int64(result.Paging.PageSize)
		if want > math.MaxInt32 || int64(repo.lastCall.OffsetRows) != want {
			t.Fatalf("page %d: offset %d does not match page %d", filters.Page, repo.lastCall.OffsetRows, result.Paging.Page)
		}
	}
}

func TestServiceExportUsesLimit(t *testing.T) {
	repo := &stubTimelineRepo{rows: []TimelineRow{mockRow("2024-03-10T10:00:00Z", "DELETE_COMPANY", "4")}}
	svc := NewService(repo)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows, err := svc.Export(context.Background(), TimelineFilters{From: from})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if repo.lastCall.LimitRows != ExportLimit {
		t.Fatalf("expected export limit, got %d", repo.lastCall.LimitRows)
	}
	if !repo.lastCall.FromAt.Valid || !repo.lastCall.FromAt.Time.Equal(from) {
		t.Fatalf("expected from bound, got %+v", repo.lastCall.FromAt)
	}
}

func TestServiceWithoutRepository(t *testing.T) {
	if _, err := NewService(nil).Timeline(context.Background(), TimelineFilters{}); err == nil {
		t.Fatalf("expected error")
	}
}
