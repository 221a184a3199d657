// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/enidea/slack-clone/internal/app/system/auditlog"
	"github.com/enidea/slack-clone/internal/domain/models"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the app.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SLACKCLONE_MONGO_URI, SLACKCLONE_STORE_BACKEND, etc.
//   - Command-line flags: --mongo_uri, --store_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Remote store backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "slack_clone", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size (default: 5)"},
	{Name: "poll_interval", Default: "2s", Desc: "Listener poll interval when change streams are unavailable"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "slackclone-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL for the OAuth callback"},

	{Name: "invite_ttl", Default: models.InviteTTL.String(), Desc: "Invite code lifetime (e.g., 168h)"},
	{Name: "join_rate_limit", Default: 10, Desc: "Invite redemption attempts per client IP per window"},
	{Name: "join_rate_window", Default: "1m", Desc: "Window for join_rate_limit"},

	{Name: "audit_log", Default: "log", Desc: "Audit events for sign-in and membership: 'log' or 'off'"},

	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document store operations"},
	{Name: "timeout_medium", Default: "15s", Desc: "Timeout for multi-step workflows"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// SLACKCLONE_* environment variables, and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SLACKCLONE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		PollInterval:     appValues.Duration("poll_interval", 2*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		BaseURL:            strings.TrimRight(appValues.String("base_url"), "/"),

		InviteTTL:      appValues.Duration("invite_ttl", models.InviteTTL),
		JoinRateLimit:  appValues.Int("join_rate_limit"),
		JoinRateWindow: appValues.Duration("join_rate_window", time.Minute),

		AuditLog: strings.ToLower(strings.TrimSpace(appValues.String("audit_log"))),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 15*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is only checked when the mongo backend is selected, so
// the memory backend runs without any database configuration.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required for the mongo backend")
		}
	case BackendMemory:
		logger.Warn("memory store backend selected; data is lost on exit")
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendMemory, appCfg.StoreBackend)
	}

	if appCfg.InviteTTL <= 0 {
		return fmt.Errorf("invite_ttl must be positive, got %s", appCfg.InviteTTL)
	}
	if appCfg.JoinRateLimit <= 0 || appCfg.JoinRateWindow <= 0 {
		return fmt.Errorf("join_rate_limit and join_rate_window must be positive")
	}
	if appCfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", appCfg.PollInterval)
	}
	if appCfg.AuditLog != auditlog.ModeLog && appCfg.AuditLog != auditlog.ModeOff {
		return fmt.Errorf("audit_log must be %q or %q, got %q", auditlog.ModeLog, auditlog.ModeOff, appCfg.AuditLog)
	}
	if appCfg.GoogleClientID == "" || appCfg.GoogleClientSecret == "" {
		logger.Warn("Google OAuth not configured; sign-in is disabled")
	}
	return nil
}
