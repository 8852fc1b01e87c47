package http

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/mresitgokce1/inventory-multi-brand-api/internal/storage"
	apperrors "github.com/mresitgokce1/inventory-multi-brand-api/pkg/errors"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/httputil"
)

// MediaHandler streams processed product images out of storage.
type MediaHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewMediaHandler creates a new media HTTP handler.
func NewMediaHandler(store storage.Storage, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{storage: store, logger: logger}
}

// Serve handles GET /media/*. Malformed or unknown keys read as 404; the
// key never touches the filesystem unvalidated.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !storage.ValidKey(key) {
		httputil.WriteError(w, r, apperrors.NotFoundMessage("file not found"), h.logger)
		return
	}

	file, err := h.storage.Open(r.Context(), key)
	if err != nil {
		httputil.WriteError(w, r, apperrors.NotFoundMessage("file not found"), h.logger)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := io.Copy(w, file); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream media file",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
