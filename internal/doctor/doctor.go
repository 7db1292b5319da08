// Package doctor checks receiver settings before the server starts.
package doctor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattjoyce/sapwebhooks/internal/config"
)

// minAPIKeyLength is the shortest API key that does not draw a warning.
const minAPIKeyLength = 16

// Result holds the outcome of a validation run.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Issue describes a single validation error or warning.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
}

// Doctor validates loaded settings.
type Doctor struct {
	s *config.Settings
}

// New creates a Doctor for s.
func New(s *config.Settings) *Doctor {
	return &Doctor{s: s}
}

// Validate runs all checks and returns a result.
func (d *Doctor) Validate() *Result {
	r := &Result{Valid: true}

	d.validateServer(r)
	d.validateAuth(r)
	d.validateSignature(r)
	d.validateLogSink(r)
	d.warnExposure(r)

	r.Valid = len(r.Errors) == 0
	return r
}

func (d *Doctor) addError(r *Result, category, field, msg string) {
	r.Errors = append(r.Errors, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) addWarning(r *Result, category, field, msg string) {
	r.Warnings = append(r.Warnings, Issue{Category: category, Field: field, Message: msg})
}

func (d *Doctor) validateServer(r *Result) {
	if d.s.APIPort < 1 || d.s.APIPort > 65535 {
		d.addError(r, "server", "API_PORT", fmt.Sprintf("port %d out of range 1-65535", d.s.APIPort))
	}
	if d.s.MaxBodySize <= 0 {
		d.addError(r, "server", "MAX_BODY_SIZE", "max body size must be positive")
	}
}

// validateAuth checks the API key settings.
func (d *Doctor) validateAuth(r *Result) {
	switch {
	case d.s.AuthEnabled && d.s.APIKey == "":
		d.addError(r, "auth", "API_KEY", "authentication enabled but API_KEY is empty")
	case !d.s.AuthEnabled && d.s.AuthImplicit:
		d.addWarning(r, "auth", "API_KEY", "API_KEY not set; authentication is disabled")
	case !d.s.AuthEnabled:
		d.addWarning(r, "auth", "AUTH_ENABLED", "authentication explicitly disabled")
	}

	if d.s.AuthEnabled && d.s.AuthImplicit {
		d.addWarning(r, "auth", "AUTH_ENABLED", "authentication inferred from API_KEY; set AUTH_ENABLED explicitly")
	}
	if d.s.APIKey != "" && len(d.s.APIKey) < minAPIKeyLength {
		d.addWarning(r, "auth", "API_KEY", fmt.Sprintf("API_KEY is shorter than %d characters", minAPIKeyLength))
	}
}

func (d *Doctor) validateSignature(r *Result) {
	if d.s.SignatureHeader == "" {
		if d.s.UsesDefaultSecret() {
			d.addWarning(r, "secret", "SECRET_KEY", "SECRET_KEY is the built-in default")
		}
		return
	}
	if d.s.SecretKey == "" {
		d.addError(r, "secret", "SECRET_KEY", "SIGNATURE_HEADER is set but SECRET_KEY is empty")
		return
	}
	if d.s.UsesDefaultSecret() {
		d.addError(r, "secret", "SECRET_KEY", "signatures enabled with the built-in default SECRET_KEY")
	}
}

// validateLogSink checks the request log can be written.
func (d *Doctor) validateLogSink(r *Result) {
	l := d.s.Log
	if l.Dir == "" {
		d.addError(r, "log", "LOG_DIR", "LOG_DIR is required")
		return
	}
	if l.File == "" {
		d.addError(r, "log", "LOG_FILE", "LOG_FILE is required")
	}
	if strings.ContainsRune(l.File, filepath.Separator) {
		d.addError(r, "log", "LOG_FILE", fmt.Sprintf("LOG_FILE %q must be a file name, not a path", l.File))
	}
	if l.MaxSizeMB <= 0 {
		d.addError(r, "log", "LOG_MAX_SIZE_MB", "LOG_MAX_SIZE_MB must be positive")
	}
	if l.MaxBackups < 0 {
		d.addError(r, "log", "LOG_MAX_BACKUPS", "LOG_MAX_BACKUPS must not be negative")
	}
	if l.MaxBackups == 0 {
		d.addWarning(r, "log", "LOG_MAX_BACKUPS", "LOG_MAX_BACKUPS 0 keeps every rotated request log")
	}

	info, err := os.Stat(l.Dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		d.addWarning(r, "log", "LOG_DIR", fmt.Sprintf("%s does not exist and will be created", l.Dir))
	case err != nil:
		d.addError(r, "log", "LOG_DIR", fmt.Sprintf("cannot stat %s: %v", l.Dir, err))
	case !info.IsDir():
		d.addError(r, "log", "LOG_DIR", fmt.Sprintf("%s is not a directory", l.Dir))
	default:
		probe, err := os.CreateTemp(l.Dir, ".doctor-*")
		if err != nil {
			d.addError(r, "log", "LOG_DIR", fmt.Sprintf("%s is not writable: %v", l.Dir, err))
			return
		}
		name := probe.Name()
		_ = probe.Close()
		_ = os.Remove(name)
	}
}

// warnExposure flags an unauthenticated receiver on all interfaces.
func (d *Doctor) warnExposure(r *Result) {
	if d.s.AuthEnabled {
		return
	}
	if d.s.APIHost == "0.0.0.0" || d.s.APIHost == "::" || d.s.APIHost == "" {
		d.addWarning(r, "server", "API_HOST",
			fmt.Sprintf("listening on all interfaces (%q) without authentication", d.s.APIHost))
	}
}

// FormatHuman returns a human-readable validation report.
func FormatHuman(r *Result) string {
	var b strings.Builder

	if r.Valid && len(r.Warnings) == 0 {
		b.WriteString("Configuration valid.\n")
		return b.String()
	}

	if r.Valid && len(r.Warnings) > 0 {
		b.WriteString("Configuration valid")
		fmt.Fprintf(&b, " (%d warning(s))\n", len(r.Warnings))
	}

	if !r.Valid {
		fmt.Fprintf(&b, "Configuration invalid (%d error(s), %d warning(s))\n", len(r.Errors), len(r.Warnings))
	}

	for _, e := range r.Errors {
		if e.Field != "" {
			fmt.Fprintf(&b, "  ERROR [%s] %s: %s\n", e.Category, e.Field, e.Message)
		} else {
			fmt.Fprintf(&b, "  ERROR [%s] %s\n", e.Category, e.Message)
		}
	}
	for _, w := range r.Warnings {
		if w.Field != "" {
			fmt.Fprintf(&b, "  WARN  [%s] %s: %s\n", w.Category, w.Field, w.Message)
		} else {
			fmt.Fprintf(&b, "  WARN  [%s] %s\n", w.Category, w.Message)
		}
	}

	return b.String()
}

// FormatJSON returns the result as indented JSON.
func FormatJSON(r *Result) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
