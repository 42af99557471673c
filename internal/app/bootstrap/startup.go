// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/thrivewell/thrivehub/internal/app/system/mailer"
	"go.uber.org/zap"
)

// buildMailSender returns the relay client, or a no-op sender when no relay
// is configured.
func buildMailSender(appCfg AppConfig, logger *zap.Logger) mailer.Sender {
	if appCfg.MailRelayURL == "" {
		logger.Warn("mail relay not configured, outbound mail disabled")
		return &mailer.NopSender{}
	}
	from := appCfg.MailFromName + " <" + appCfg.MailFrom + ">"
	return mailer.NewHTTPSender(appCfg.MailRelayURL, appCfg.MailRelayAPIKey, from, logger)
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return nil
}
