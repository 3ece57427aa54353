package report

import (
	"net/http"
	"strconv"

	"github.com/festflow/festflow/internal/transport"
	"github.com/festflow/festflow/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Build(eventID int64) (*FinancialReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

// GetFinancialReport returns the event's final accounting. Route-level
// authorization restricts this to the treasurer.
func (h *Handler) GetFinancialReport(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid event ID")
		return
	}

	rep, err := h.Service.Build(eventID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rep)
}
