// internal/app/features/products/upload.go
package products

import (
	"context"
	"net/http"

	"github.com/thrivewell/thrivehub/internal/app/system/httpapi"
	"github.com/thrivewell/thrivehub/internal/app/system/limits"
	"github.com/thrivewell/thrivehub/internal/app/system/media"
	"github.com/thrivewell/thrivehub/internal/app/system/timeouts"
)

// HandleUploadImage handles POST /products/{id}/image (multipart form,
// field "image"). The stored path is appended to the product's image list.
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httpapi.PathID(r, "id")
	if !ok {
		httpapi.NotFound(w, "Product not found")
		return
	}

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

	if _, err := h.Store.GetByID(ctx, id); err != nil {
		httpapi.NotFound(w, "Product not found")
		return
	}

	info, err := h.Media.UploadImage(ctx, "products", header.Filename, file, header.Size, contentType)
	if err != nil {
		httpapi.ServerError(w, h.Log, "products.upload", err)
		return
	}

	p, err := h.Store.AddImagePath(ctx, id, info.Path)
	if err != nil {
		httpapi.ServerError(w, h.Log, "products.upload", err)
		return
	}
	httpapi.OK(w, p)
}
