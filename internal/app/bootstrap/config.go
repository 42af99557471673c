// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ThriveHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_key, etc.
//   - Environment variables: THRIVEHUB_MONGO_URI, THRIVEHUB_AUTH_KEY, etc.
//   - Command-line flags: --mongo_uri, --auth_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "thrive_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "site_name", Default: "ThriveWell Clinic", Desc: "Site name used in email and API metadata"},

	{Name: "auth_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "API token signing key (must be strong in production)"},

	// Mail relay configuration. A blank relay URL disables outbound mail.
	{Name: "mail_relay_url", Default: "", Desc: "HTTP mail relay base URL (blank disables outbound mail)"},
	{Name: "mail_relay_api_key", Default: "", Desc: "HTTP mail relay API key"},
	{Name: "mail_from", Default: "noreply@thrivewell.clinic", Desc: "From email address"},
	{Name: "mail_from_name", Default: "ThriveWell Clinic", Desc: "From display name"},
	{Name: "staff_notify_email", Default: "", Desc: "Address for staff alerts such as damaged returns (blank disables them)"},

	// File storage configuration
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving stored files"},

	// Base URL for email links
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, THRIVEHUB_* for app), and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "THRIVEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SiteName: appValues.String("site_name"),

		AuthKey: appValues.String("auth_key"),

		MailRelayURL:    appValues.String("mail_relay_url"),
		MailRelayAPIKey: appValues.String("mail_relay_api_key"),
		MailFrom:        appValues.String("mail_from"),
		MailFromName:    appValues.String("mail_from_name"),

		StaffNotifyEmail: appValues.String("staff_notify_email"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backends are built.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AuthKey == "" {
		return fmt.Errorf("auth_key must not be empty")
	}

	if appCfg.MailRelayURL != "" && appCfg.MailRelayAPIKey == "" {
		return fmt.Errorf("mail_relay_api_key is required when mail_relay_url is set")
	}

	return nil
}
