// internal/app/system/media/media.go

// Package media stores uploaded images for toys, products, recipes, and the
// gallery. Files go through waffle's storage backend so local disk and S3
// stay interchangeable.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// allowedTypes are the content types accepted for image uploads.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadInfo contains metadata about an uploaded file.
type UploadInfo struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// Uploader writes media files under a per-kind prefix.
type Uploader struct {
	store storage.Store
}

func NewUploader(store storage.Store) *Uploader {
	return &Uploader{store: store}
}

// Store returns the underlying storage backend.
func (u *Uploader) Store() storage.Store { return u.store }

// AllowedType reports whether the content type is an accepted image type.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}

// UploadImage stores an image with a unique path and returns upload info.
// The path is generated as: <kind>/YYYY/MM/uuid-filename.
func (u *Uploader) UploadImage(ctx context.Context, kind, filename string, reader io.Reader, size int64, contentType string) (UploadInfo, error) {
	if !AllowedType(contentType) {
		return UploadInfo{}, fmt.Errorf("unsupported content type %q", contentType)
	}

	now := time.Now().UTC()
	dateDir := fmt.Sprintf("%s/%04d/%02d", kind, now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := u.store.Put(ctx, path, reader, opts); err != nil {
		return UploadInfo{}, fmt.Errorf("failed to upload file: %w", err)
	}

	return UploadInfo{
		Path:        path,
		FileName:    filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// SignedURL returns a time-limited download URL for a stored file.
func (u *Uploader) SignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	return u.store.PresignedURL(ctx, path, &storage.PresignOptions{
		Expires: expires,
	})
}

// sanitizeFilename removes or replaces characters that could be problematic
// in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return strings.ToLower(string(result))
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
