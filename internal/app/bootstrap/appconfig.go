// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS). AppConfig is everything specific to ThriveHub: database connection,
// auth token signing, the mail relay, and file storage.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// SiteName appears in outbound email and API metadata.
	SiteName string

	// AuthKey signs API bearer tokens (must be strong in production).
	AuthKey string

	// Mail relay configuration. A blank relay URL disables outbound mail.
	MailRelayURL    string
	MailRelayAPIKey string
	MailFrom        string
	MailFromName    string

	// StaffNotifyEmail receives staff alerts such as damaged returns.
	// Blank disables them.
	StaffNotifyEmail string

	// File storage configuration
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving stored files (e.g., "/files")

	// Base URL used in email links
	BaseURL string
}
