// Package audit reads back the audit trail that the worker records for
// company lifecycle events.
package audit

import "time"

// TimelineFilters narrows the audit timeline. Zero values mean no bound.
type TimelineFilters struct {
	Entity   string
	EntityID string
	Action   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// TimelineRow is one audit_logs entry.
type TimelineRow struct {
	At       time.Time
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
}

// PagingInfo holds simple forward/backward paging state.
type PagingInfo struct {
	Page     int
	HasNext  bool
	PageSize int
	PrevPage int
	NextPage int
}

// Result wraps a page of timeline rows.
type Result struct {
	Rows   []TimelineRow
	Paging PagingInfo
}
