package history

import (
	"net/http"

	"github.com/festflow/festflow/internal/transport"
	"github.com/festflow/festflow/pkg/logger"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

// ListSeries names the past events with spend data on file.
func (h *Handler) ListSeries(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.SeriesNames()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list series")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"series": names})
}

// GetSeries returns one past event's cumulative spend curve.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	points, err := h.Service.Series(name)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to load series")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"series": name,
		"points": points,
	})
}
