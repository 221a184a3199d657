// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, and CORS. Everything
// below is specific to the sync engine and the HTTP adapter in front of it.
type AppConfig struct {
	// StoreBackend selects the remote store: "mongo" or "memory".
	// The memory backend keeps everything in process and is lost on exit.
	StoreBackend string

	// MongoDB connection configuration (mongo backend only)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// PollInterval is how often a listener re-reads its query when the
	// server has no change streams (standalone mongod).
	PollInterval time.Duration

	// Session cookie carrying the OAuth state
	SessionKey    string
	SessionName   string
	SessionDomain string

	// Google OAuth; sign-in is disabled when either is blank
	GoogleClientID     string
	GoogleClientSecret string

	// BaseURL is where the OAuth callback is served (e.g. http://localhost:8080)
	BaseURL string

	// InviteTTL is how long a generated invite code stays valid.
	InviteTTL time.Duration

	// Invite redemption attempts allowed per client IP per window
	JoinRateLimit  int
	JoinRateWindow time.Duration

	// AuditLog is "log" or "off".
	AuditLog string

	// Store operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}
