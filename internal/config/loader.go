package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present in the working directory.
const DefaultEnvFile = ".env"

// ErrInvalidSettings is wrapped by every validation failure returned from Load.
var ErrInvalidSettings = errors.New("invalid settings")

var logLevels = map[string]bool{
	"critical": true,
	"error":    true,
	"warning":  true,
	"warn":     true,
	"info":     true,
	"debug":    true,
	"trace":    true,
}

// Load builds Settings from the environment, layered over an optional
// dotenv file. Real environment variables take precedence over the file.
// An empty envFile or a missing file is not an error.
func Load(envFile string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", strconv.Itoa(DefaultAPIPort))
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("max_body_size", "1MB")
	v.SetDefault("log_dir", DefaultLogDir)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_max_size_mb", strconv.Itoa(DefaultLogMaxSizeMB))
	v.SetDefault("log_max_backups", strconv.Itoa(DefaultLogMaxBackups))

	// Keys without defaults must be bound explicitly for AutomaticEnv to see them.
	for _, key := range []string{"api_key", "auth_enabled", "signature_header"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", strings.ToUpper(key), err)
		}
	}
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read env file %s: %w", envFile, err)
			}
		}
	}

	s := &Settings{
		APIHost:         strings.TrimSpace(v.GetString("api_host")),
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		APIKey:          v.GetString("api_key"),
		SecretKey:       v.GetString("secret_key"),
		SignatureHeader: strings.TrimSpace(v.GetString("signature_header")),
		Log: LogSettings{
			Dir:  v.GetString("log_dir"),
			File: v.GetString("log_file"),
		},
	}

	var err error
	if s.APIPort, err = parseInt(v, "api_port"); err != nil {
		return nil, err
	}
	if s.Log.MaxSizeMB, err = parseInt(v, "log_max_size_mb"); err != nil {
		return nil, err
	}
	if s.Log.MaxBackups, err = parseInt(v, "log_max_backups"); err != nil {
		return nil, err
	}
	if s.MaxBodySize, err = ParseSize(v.GetString("max_body_size")); err != nil {
		return nil, fmt.Errorf("%w: MAX_BODY_SIZE %q: %v", ErrInvalidSettings, v.GetString("max_body_size"), err)
	}

	if raw := strings.TrimSpace(v.GetString("auth_enabled")); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: AUTH_ENABLED %q is not a boolean", ErrInvalidSettings, raw)
		}
		s.AuthEnabled = enabled
	} else {
		s.AuthEnabled = s.APIKey != ""
		s.AuthImplicit = true
	}

	if err := validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidSettings, strings.ToUpper(key), raw)
	}
	return n, nil
}

func validate(s *Settings) error {
	if s.APIPort < 1 || s.APIPort > 65535 {
		return fmt.Errorf("%w: API_PORT %d out of range", ErrInvalidSettings, s.APIPort)
	}
	if !logLevels[s.LogLevel] {
		return fmt.Errorf("%w: LOG_LEVEL %q (want one of critical, error, warning, info, debug, trace)", ErrInvalidSettings, s.LogLevel)
	}
	if s.AuthEnabled && s.APIKey == "" {
		return fmt.Errorf("%w: AUTH_ENABLED is true but API_KEY is empty", ErrInvalidSettings)
	}
	if s.SignatureHeader != "" && s.SecretKey == "" {
		return fmt.Errorf("%w: SIGNATURE_HEADER requires SECRET_KEY", ErrInvalidSettings)
	}
	if s.Log.Dir == "" || s.Log.File == "" {
		return fmt.Errorf("%w: LOG_DIR and LOG_FILE must be set", ErrInvalidSettings)
	}
	if s.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("%w: LOG_MAX_SIZE_MB must be positive", ErrInvalidSettings)
	}
	if s.Log.MaxBackups < 0 {
		return fmt.Errorf("%w: LOG_MAX_BACKUPS must not be negative", ErrInvalidSettings)
	}
	return nil
}
