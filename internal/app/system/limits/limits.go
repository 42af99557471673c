// internal/app/system/limits/limits.go
package limits

// Request body size limits. These keep oversized requests from exhausting
// memory before validation runs.
const (
	// MaxJSONBody is the cap for JSON request bodies.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxUploadSize is the cap for multipart media uploads (toy, product,
	// gallery images).
	MaxUploadSize = 10 << 20 // 10 MB

	// MaxBulkReturnItems bounds one bulk-return request.
	MaxBulkReturnItems = 100
)
