// internal/app/features/catalog/upload.go
package catalog

import (
	"context"
	"net/http"

	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
)

// handleUpload accepts a multipart image (field "image") and returns the
// stored path. The client then references the path from a create or update.
func (h *Handler) handleUpload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(limits.MaxUploadSize); err != nil {
			httpapi.Fail(w, http.StatusBadRequest, "Could not parse upload")
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			httpapi.Fail(w, http.StatusBadRequest, "Missing image file")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !media.AllowedType(contentType) {
			httpapi.Fail(w, http.StatusBadRequest, "Unsupported image type")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
		defer cancel()

		info, err := h.Media.UploadImage(ctx, kind, header.Filename, file, header.Size, contentType)
		if err != nil {
			httpapi.ServerError(w, h.Log, kind+".upload", err)
			return
		}
		httpapi.OK(w, map[string]string{"path": info.Path})
	}
}
