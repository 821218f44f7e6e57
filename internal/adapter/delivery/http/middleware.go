package http

import (
	"crypto/subtle"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortly/pkg/ratelimit"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

const (
	// AdminKeyHeader carries the admin secret. Loggers should hide it.
	AdminKeyHeader = "X-Admin-Key"
	adminKeyQuery  = "adminKey"
)

// clientIP returns the caller address without its port. Forwarding headers are
// only reflected when middleware.RealIP is installed.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// liftAdminKey moves the adminKey query parameter into the AdminKeyHeader and
// removes it from the URL, so the secret never reaches the request log.
// It must run before the request logger.
func liftAdminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(adminKeyQuery) {
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get(AdminKeyHeader) == "" {
			r.Header.Set(AdminKeyHeader, q.Get(adminKeyQuery))
		}

		q.Del(adminKeyQuery)
		r.URL.RawQuery = q.Encode()
		r.RequestURI = r.URL.RequestURI()

		next.ServeHTTP(w, r)
	})
}

// adminAuth rejects requests that do not carry the configured secret.
// An empty secret locks the admin API entirely.
func adminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AdminKeyHeader)

			if secret == "" || key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				response.Render(w, r, response.UnauthorizedResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit counts requests per client IP. Limiter failures let the request through.
func rateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	const op = "adapter.delivery.http.rateLimit"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				httplog.LogEntrySetField(r.Context(), "op", slog.StringValue(op))
				httplog.LogEntrySetField(r.Context(), "rate_limit_err", slog.AnyValue(err))

				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				response.Render(w, r, response.TooManyRequestsResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
