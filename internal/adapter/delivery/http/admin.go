package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vadimbarashkov/shortly/internal/entity"
	"github.com/vadimbarashkov/shortly/pkg/response"
)

type adminUseCase interface {
	ListURLs(ctx context.Context, params entity.ListParams) (*entity.URLPage, error)
	GetStats(ctx context.Context) (*entity.Summary, error)
	DeactivateURL(ctx context.Context, id int64) error
}

type adminHandler struct {
	useCase adminUseCase
}

func newAdminHandler(useCase adminUseCase) *adminHandler {
	return &adminHandler{useCase: useCase}
}

// listParams reads paging and ordering from the query. Unparsable values fall back to defaults.
func listParams(r *http.Request) entity.ListParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return entity.ListParams{
		Page:      page,
		Limit:     limit,
		SortBy:    entity.SortField(q.Get("sortBy")),
		SortOrder: entity.SortOrder(q.Get("sortOrder")),
	}
}

func (h *adminHandler) listURLs(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.adminHandler.listURLs"

	page, err := h.useCase.ListURLs(r.Context(), listParams(r))
	if err != nil {
		logError(r, op, err)
		response.Render(w, r, response.ServerErrorResponse)
		return
	}

	response.Render(w, r, response.SuccessResponse(http.StatusOK, "", toListURLsResponse(page)))
}

func (h *adminHandler) deactivateURL(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.adminHandler.deactivateURL"

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		response.Render(w, r, response.BadRequestResponse("URL id must be a positive integer."))
		return
	}

	if err := h.useCase.DeactivateURL(r.Context(), id); err != nil {
		if errors.Is(err, entity.ErrURLNotFound) {
			response.Render(w, r, response.URLNotFoundResponse)
			return
		}

		logError(r, op, err)
		response.Render(w, r, response.ServerErrorResponse)
		return
	}

	response.Render(w, r, response.SuccessResponse(http.StatusOK, "URL deleted successfully."))
}

func (h *adminHandler) getStats(w http.ResponseWriter, r *http.Request) {
	const op = "adapter.delivery.http.adminHandler.getStats"

	summary, err := h.useCase.GetStats(r.Context())
	if err != nil {
		logError(r, op, err)
		response.Render(w, r, response.ServerErrorResponse)
		return
	}

	response.Render(w, r, response.SuccessResponse(http.StatusOK, "", toStatsResponse(summary)))
}
