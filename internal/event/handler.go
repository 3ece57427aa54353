package event

import (
	"net/http"

	"github.com/festflow/festflow/internal/transport"
	"github.com/festflow/festflow/pkg/logger"
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

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.List()
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
