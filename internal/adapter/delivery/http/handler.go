package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortly/internal/entity"
	"github.com/vadimbarashkov/shortly/pkg/metrics"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

// maxShortenBodyBytes fits a 2048-character URL even when every character is escaped.
const maxShortenBodyBytes = 16 << 10

// shortCodePattern matches the nanoid URL-safe alphabet.
var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	response.Render(w, r, response.SuccessResponse(http.StatusOK, "", healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	}))
}

type urlUseCase interface {
	ShortenURL(ctx context.Context, originalURL, createdBy string) (*entity.URL, bool, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.URL, error)
	GetURLStats(ctx context.Context, shortCode string) (*entity.URL, error)
}

type metricsRecorder interface {
	URLShortened()
	Redirect(result string)
}

type urlHandler struct {
	useCase  urlUseCase
	validate *validator.Validate
	baseURL  string
	metrics  metricsRecorder
}

func newURLHandler(useCase urlUseCase, validate *validator.Validate, baseURL string, recorder metricsRecorder) *urlHandler {
	return &urlHandler{
		useCase:  useCase,
		validate: validate,
		baseURL:  baseURL,
		metrics:  recorder,
	}
}

func (h *urlHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.shortenURL"

	var req shortenRequest

	body := http.MaxBytesReader(w, r.Body, maxShortenBodyBytes)

	if err := render.DecodeJSON(body, &req); err != nil {
		var maxBytesErr *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			response.Render(w, r, response.EmptyRequestBodyResponse)
			return
		case errors.As(err, &maxBytesErr):
			response.Render(w, r, response.RequestTooLargeResponse)
			return
		}

		response.Render(w, r, response.InvalidRequestBodyResponse)
		return
	}

	req.OriginalURL = strings.TrimSpace(req.OriginalURL)

	if err := h.validate.Struct(req); err != nil {
		response.Render(w, r, response.ValidationErrorResponse(err))
		return
	}

	url, created, err := h.useCase.ShortenURL(r.Context(), req.OriginalURL, clientIP(r))
	if err != nil {
		logError(r, op, err)
		response.Render(w, r, response.ServerErrorResponse)
		return
	}

	if !created {
		response.Render(w, r, response.SuccessResponse(http.StatusOK, "URL already shortened.", toShortenResponse(h.baseURL, url)))
		return
	}

	h.metrics.URLShortened()
	response.Render(w, r, response.SuccessResponse(http.StatusCreated, "URL shortened successfully.", toShortenResponse(h.baseURL, url)))
}

func (h *urlHandler) redirect(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.redirect"

	shortCode := chi.URLParam(r, "shortCode")
	if !shortCodePattern.MatchString(shortCode) {
		h.metrics.Redirect(metrics.RedirectNotFound)
		response.Render(w, r, response.URLNotFoundResponse)
		return
	}

	url, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			h.metrics.Redirect(metrics.RedirectNotFound)
			response.Render(w, r, response.URLNotFoundResponse)
			return
		}

		h.metrics.Redirect(metrics.RedirectError)
		logError(r, op, err)
		response.Render(w, r, response.ServerErrorResponse)
		return
	}

	h.metrics.Redirect(metrics.RedirectFound)
	http.Redirect(w, r, url.OriginalURL, http.StatusMovedPermanently)
}

func (h *urlHandler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.urlHandler.getAnalytics"

	shortCode := chi.URLParam(r, "shortCode")
	if !shortCodePattern.MatchString(shortCode) {
		response.Render(w, r, response.URLNotFoundResponse)
		return
	}

	url, err := h.useCase.GetURLStats(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			response.Render(w, r, response.URLNotFoundResponse)
			return
		}

		logError(r, op, err)
		response.Render(w, r, response.ServerErrorResponse)
		return
	}

	response.Render(w, r, response.SuccessResponse(http.StatusOK, "", toAnalyticsResponse(url)))
}

// logError attaches an internal error to the request log entry. It never reaches the client.
func logError(r *http.Request, op string, err error) {
	httplog.LogEntrySetField(r.Context(), "op", slog.StringValue(op))
	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
}
