package advance

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/festflow/festflow/internal/auth"
	"github.com/festflow/festflow/internal/transport"
	"github.com/festflow/festflow/internal/user"
	"github.com/festflow/festflow/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Request(actor user.User, dto RequestAdvanceDTO) (*Advance, error)
	Approve(advanceID int64, actor user.User) error
	Reject(advanceID int64, actor user.User, reason string) error
	MarkPaid(advanceID int64, actor user.User, transactionID string) error
	Close(advanceID int64, actor user.User, receiptURL string) error
	AddComment(advanceID int64, actor user.User, text string) error
	GetByID(advanceID int64) (*Advance, error)
	ForRequester(actor user.User, limit, offset int) ([]*Advance, error)
	PendingForRole(actor user.User, limit, offset int) ([]*Advance, error)
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

func (h *Handler) RequestAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RequestAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RequestAdvance: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adv, err := h.Service.Request(*actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, adv)
}

func (h *Handler) GetAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := h.advanceID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	adv, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, adv)
}

// MyAdvances lists the caller's own requests.
func (h *Handler) MyAdvances(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	advances, err := h.Service.ForRequester(*actor, limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list advances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"advances": advances,
		"limit":    limit,
		"offset":   offset,
	})
}

// PendingAdvances lists the review queue for the caller's role.
func (h *Handler) PendingAdvances(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := pagination(r)
	advances, err := h.Service.PendingForRole(*actor, limit, offset)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list pending advances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"advances": advances,
		"count":    len(advances),
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) ApproveAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.advanceID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	if err := h.Service.Approve(id, *actor); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) RejectAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.advanceID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	var dto RejectAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Reject(id, *actor, dto.Reason); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) PayAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.advanceID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	var dto MarkPaidDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.MarkPaid(id, *actor, dto.TransactionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "paid"})
}

func (h *Handler) CloseAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.advanceID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	var dto CloseAdvanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Close(id, *actor, dto.ReceiptURL); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := h.advanceID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid advance ID")
		return
	}

	var dto CommentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.AddComment(id, *actor, dto.Text); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{"status": "commented"})
}

func (h *Handler) advanceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
