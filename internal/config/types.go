package config

// Config is the root configuration for the ingest service.
type Config struct {
	// Listen is the bind address of the ingest HTTP server.
	Listen string `yaml:"listen"`

	Log    LogConfig    `yaml:"log"`
	Ingest IngestConfig `yaml:"ingest"`
	Auth   AuthConfig   `yaml:"auth"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (default INFO).
	Level string `yaml:"level"`

	// Format is "json" (default) or "console".
	Format string `yaml:"format"`
}

// IngestConfig describes the ingest endpoint.
type IngestConfig struct {
	// Path is the URL path of the ingest endpoint (default "/ingest").
	Path string `yaml:"path"`

	// MaxBodySize is the body size limit, e.g. "1MB" or "262144" (default 1MB).
	MaxBodySize string `yaml:"max_body_size"`
}

// AuthConfig holds the shared-secret material and protocol tuning. Secrets
// are normally supplied via ${ENV_VAR} references, never inline.
type AuthConfig struct {
	// APIKey is the opaque key publishers send in x-api-key.
	APIKey string `yaml:"api_key"`

	// SharedSecret keys the HMAC over timestamp+body.
	SharedSecret string `yaml:"shared_secret"`

	// MaxSkewMS is the symmetric freshness window in milliseconds
	// (default 300000, five minutes).
	MaxSkewMS int64 `yaml:"max_skew_ms"`

	// ReplayGuard toggles signature-reuse tracking (default true).
	ReplayGuard *bool `yaml:"replay_guard"`
}

// Defaults.
const (
	DefaultListen     = "127.0.0.1:8085"
	DefaultIngestPath = "/ingest"
	DefaultMaxSkewMS  = 300000
)
