package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	blob, err := h.assets.Open(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Printf("stream asset id=%s: %v", chi.URLParam(r, "assetID"), err)
	}
}
