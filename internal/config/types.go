package config

import (
	"net"
	"path/filepath"
	"strconv"
)

// DefaultSecretKey is the placeholder secret used when SECRET_KEY is unset.
// It must be overridden in production.
const DefaultSecretKey = "default_secret_key_change_in_production"

// Settings is the process-wide configuration. It is loaded once at startup
// and never mutated afterwards, so it is safe to share across goroutines.
type Settings struct {
	APIHost  string `yaml:"api_host" json:"api_host"`
	APIPort  int    `yaml:"api_port" json:"api_port"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// APIKey is the shared secret callers present in X-API-KEY.
	APIKey    string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`

	// AuthEnabled reports whether X-API-KEY is enforced.
	AuthEnabled bool `yaml:"auth_enabled" json:"auth_enabled"`
	// AuthImplicit is true when AUTH_ENABLED was not set and AuthEnabled
	// was derived from the presence of API_KEY.
	AuthImplicit bool `yaml:"auth_implicit" json:"auth_implicit"`

	// SignatureHeader enables HMAC-SHA256 body signatures keyed with
	// SecretKey when non-empty.
	SignatureHeader string `yaml:"signature_header,omitempty" json:"signature_header,omitempty"`

	// MaxBodySize is the request body limit in bytes.
	MaxBodySize int64 `yaml:"max_body_size" json:"max_body_size"`

	Log LogSettings `yaml:"log" json:"log"`
}

// LogSettings configures the rotating request log.
type LogSettings struct {
	Dir        string `yaml:"dir" json:"dir"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
}

// Listen returns the host:port address the HTTP server binds to.
func (s Settings) Listen() string {
	return net.JoinHostPort(s.APIHost, strconv.Itoa(s.APIPort))
}

// LogPath returns the full path of the active request log file.
func (l LogSettings) LogPath() string {
	return filepath.Join(l.Dir, l.File)
}

// Default values
const (
	DefaultAPIHost       = "0.0.0.0"
	DefaultAPIPort       = 8000
	DefaultLogLevel      = "info"
	DefaultLogDir        = "logs"
	DefaultLogFile       = "webhooks.log"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 5
	DefaultMaxBodySize   = 1048576 // 1 MB
)
