package user

import (
	"encoding/json"
	"net/http"

	"github.com/festflow/festflow/internal"
	"github.com/festflow/festflow/internal/transport"
	"github.com/festflow/festflow/pkg/logger"
)

type ServiceAPI interface {
	GetByUsername(username string) (*User, error)
	Usernames() ([]string, error)
	UpdatePayoutID(actor User, dto UpdatePayoutDTO) error
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

// ListUsernames returns every known username. The login form uses it to
// offer a picker, so it is mounted outside the authenticated group.
func (h *Handler) ListUsernames(w http.ResponseWriter, r *http.Request) {
	names, err := h.Service.Usernames()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{"usernames": names})
}

// GetCurrentUser returns the authenticated user's directory entry.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	username := internal.UsernameFromContext(r.Context())
	if username == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByUsername(username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

// UpdatePayout changes the caller's own payout handle.
func (h *Handler) UpdatePayout(w http.ResponseWriter, r *http.Request) {
	username := internal.UsernameFromContext(r.Context())
	if username == "" {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	actor, err := h.Service.GetByUsername(username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto UpdatePayoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdatePayoutID(*actor, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
