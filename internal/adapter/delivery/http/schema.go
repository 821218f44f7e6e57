package http

import (
	"strings"
	"time"

	"github.com/vadimbarashkov/shortly/internal/entity"
)

type shortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,max=2048,public_url"`
}

type shortenResponse struct {
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	ShortURL    string    `json:"shortUrl"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toShortenResponse(baseURL string, url *entity.URL) shortenResponse {
	return shortenResponse{
		OriginalURL: url.OriginalURL,
		ShortCode:   url.ShortCode,
		ShortURL:    shortURL(baseURL, url.ShortCode),
		Clicks:      url.Clicks,
		CreatedAt:   url.CreatedAt,
	}
}

func shortURL(baseURL, shortCode string) string {
	return strings.TrimRight(baseURL, "/") + "/" + shortCode
}

type analyticsResponse struct {
	OriginalURL  string     `json:"originalUrl"`
	ShortCode    string     `json:"shortCode"`
	Clicks       int64      `json:"clicks"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed *time.Time `json:"lastAccessed"`
}

func toAnalyticsResponse(url *entity.URL) analyticsResponse {
	return analyticsResponse{
		OriginalURL:  url.OriginalURL,
		ShortCode:    url.ShortCode,
		Clicks:       url.Clicks,
		CreatedAt:    url.CreatedAt,
		LastAccessed: url.LastAccessed,
	}
}

// adminURL is the listing row shown to administrators.
type adminURL struct {
	ID           int64      `json:"id"`
	OriginalURL  string     `json:"originalUrl"`
	ShortCode    string     `json:"shortCode"`
	Clicks       int64      `json:"clicks"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastAccessed *time.Time `json:"lastAccessed"`
	CreatedBy    string     `json:"createdBy"`
	IsActive     bool       `json:"isActive"`
}

func toAdminURLs(urls []*entity.URL) []adminURL {
	res := make([]adminURL, 0, len(urls))
	for _, u := range urls {
		res = append(res, adminURL{
			ID:           u.ID,
			OriginalURL:  u.OriginalURL,
			ShortCode:    u.ShortCode,
			Clicks:       u.Clicks,
			CreatedAt:    u.CreatedAt,
			LastAccessed: u.LastAccessed,
			CreatedBy:    u.CreatedBy,
			IsActive:     u.IsActive,
		})
	}
	return res
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type listStats struct {
	TotalClicks int64 `json:"totalClicks"`
}

type listURLsResponse struct {
	URLs       []adminURL `json:"urls"`
	Pagination pagination `json:"pagination"`
	Stats      listStats  `json:"stats"`
}

func toListURLsResponse(page *entity.URLPage) listURLsResponse {
	return listURLsResponse{
		URLs: toAdminURLs(page.URLs),
		Pagination: pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
		Stats: listStats{
			TotalClicks: page.TotalClicks,
		},
	}
}

type statsResponse struct {
	TotalURLs   int64      `json:"totalUrls"`
	TotalClicks int64      `json:"totalClicks"`
	TodayURLs   int64      `json:"todayUrls"`
	TopURLs     []adminURL `json:"topUrls"`
	RecentURLs  []adminURL `json:"recentUrls"`
}

func toStatsResponse(s *entity.Summary) statsResponse {
	return statsResponse{
		TotalURLs:   s.TotalURLs,
		TotalClicks: s.TotalClicks,
		TodayURLs:   s.TodayURLs,
		TopURLs:     toAdminURLs(s.TopURLs),
		RecentURLs:  toAdminURLs(s.RecentURLs),
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
