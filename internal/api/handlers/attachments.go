package handlers

import (
	"net/http"

	"github.com/hugh/orgbook/internal/api/dto"
	"github.com/hugh/orgbook/internal/attachments"
)

type AttachmentHandler struct {
	store *attachments.Store
}

func NewAttachmentHandler(store *attachments.Store) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// Get handles GET /api/v1/attachments/{id}, streaming the payload with its
// stored MIME type.
func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid attachment ID"})
		return
	}

	attachment, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", attachment.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(attachment.Data)
}
