package upload

import (
	"io"
	"net/http"

	"github.com/festflow/festflow/internal/transport"
	"github.com/festflow/festflow/pkg/logger"
)

// maxUploadBytes bounds receipt and quote uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// Store is the persistence surface the handler needs.
type Store interface {
	Save(originalName string, r io.Reader) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Store:       store,
	}
}

// Upload accepts a multipart file and returns the URL it will be
// served from.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name, err := h.Store.Save(header.Filename, file)
	if err != nil {
		h.Logger.Error("failed to store upload", "error", err, "filename", header.Filename)
		h.WriteError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"filename": name,
		"url":      "/uploads/" + name,
	})
}
