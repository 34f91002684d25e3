// Package common holds the request plumbing shared by the application services:
// list queries, date handling and event publishing.
package common

import (
	"strings"
	"time"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// ListQuery carries the paging and sorting parameters every list endpoint accepts
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,max=50"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search   string `form:"search" binding:"omitempty,max=100"`
}

// Filter converts the query into a normalized domain filter
func (q ListQuery) Filter() shared.Filter {
	f := shared.DefaultFilter()
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		f.OrderDir = strings.ToLower(q.OrderDir)
	}
	f.Search = strings.TrimSpace(q.Search)
	f.Normalize()
	return f
}

// DateRange is an inclusive date filter taken from the query string
type DateRange struct {
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// Apply copies the range onto f. The upper bound covers the whole day.
func (r DateRange) Apply(f *shared.Filter) error {
	if r.DateFrom != nil && r.DateTo != nil && r.DateTo.Before(*r.DateFrom) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "date_to cannot be before date_from")
	}
	if r.DateFrom != nil {
		from := StartOfDay(*r.DateFrom)
		f.DateFrom = &from
	}
	if r.DateTo != nil {
		to := EndOfDay(*r.DateTo)
		f.DateTo = &to
	}
	return nil
}

// SetFilter stores a non-empty value under key
func SetFilter(f *shared.Filter, key string, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	f.Filters[key] = value
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthRange returns the first and last instant of the month containing t
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	from := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
