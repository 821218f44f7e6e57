package entity

import "math"

// SortField names a column admin listings can be ordered by.
type SortField string

const (
	SortByCreatedAt    SortField = "createdAt"
	SortByClicks       SortField = "clicks"
	SortByLastAccessed SortField = "lastAccessed"
	SortByOriginalURL  SortField = "originalUrl"
	SortByShortCode    SortField = "shortCode"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByClicks, SortByLastAccessed, SortByOriginalURL, SortByShortCode:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of an admin listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListParams selects a page of active URLs.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder SortOrder
}

// Normalize fills zero or out-of-range values with defaults.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	// Keeps Offset from overflowing.
	if maxPage := math.MaxInt/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}
	if !p.SortBy.Valid() {
		p.SortBy = SortByCreatedAt
	}
	if p.SortOrder != SortAsc && p.SortOrder != SortDesc {
		p.SortOrder = SortDesc
	}
	return p
}

// Offset returns the number of records preceding the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Totals aggregates active URLs.
type Totals struct {
	URLs         int64 // URLs is the number of active records.
	Clicks       int64 // Clicks is the sum of clicks across active records.
	CreatedSince int64 // CreatedSince counts active records created at or after the requested instant.
}

// URLPage is one page of an admin listing.
type URLPage struct {
	URLs        []*URL
	Page        int
	Limit       int
	Total       int64
	TotalPages  int
	TotalClicks int64
}

// Summary holds the admin dashboard statistics.
type Summary struct {
	TotalURLs   int64
	TotalClicks int64
	TodayURLs   int64
	TopURLs     []*URL
	RecentURLs  []*URL
}
