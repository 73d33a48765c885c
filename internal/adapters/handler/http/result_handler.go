package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/classpoll/internal/core/domain"
	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

type ResultHandler struct {
	service ports.ResultService
}

func NewResultHandler(service ports.ResultService) *ResultHandler {
	return &ResultHandler{
		service: service,
	}
}

// GetPollResult godoc
// @Summary      Archived result of one finalized poll
// @Tags         results
// @Produce      json
// @Param        id   path      int  true  "Poll ID"
// @Success      200
// @Failure      400
// @Failure      404
// @Router       /polls/{id}/result [get]
func (h *ResultHandler) GetPollResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetPollResult(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, "invalid poll id", http.StatusBadRequest)
			return
		}
		if errors.Is(err, domain.ErrPollNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListSessionResults godoc
// @Summary      Archived results of every finalized poll in a session
// @Tags         results
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200
// @Router       /sessions/{id}/results [get]
func (h *ResultHandler) ListSessionResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListSessionResults(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
