package doctor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattjoyce/sapwebhooks/internal/config"
)

func validSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		APIHost:     "127.0.0.1",
		APIPort:     8000,
		LogLevel:    "info",
		APIKey:      "nL/jnMd+IHCTk8M1vZPGgA==",
		SecretKey:   "a-real-secret",
		AuthEnabled: true,
		MaxBodySize: config.DefaultMaxBodySize,
		Log: config.LogSettings{
			Dir:        t.TempDir(),
			File:       "webhooks.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

func TestValidate_ValidSettings(t *testing.T) {
	t.Parallel()
	r := New(validSettings(t)).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got: %v", r.Warnings)
	}
}

func TestValidate_AuthEnabledWithoutKey(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.APIKey = ""
	r := New(s).Validate()
	if r.Valid {
		t.Fatal("expected invalid")
	}
	assertHasError(t, r, "auth", "API_KEY is empty")
}

func TestValidate_ImplicitlyDisabledAuth(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.APIKey = ""
	s.AuthEnabled = false
	s.AuthImplicit = true
	s.APIHost = "0.0.0.0"
	r := New(s).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got: %v", r.Errors)
	}
	assertHasWarning(t, r, "auth", "authentication is disabled")
	assertHasWarning(t, r, "server", "without authentication")
}

func TestValidate_ExplicitlyDisabledAuth(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.AuthEnabled = false
	r := New(s).Validate()
	assertHasWarning(t, r, "auth", "explicitly disabled")
}

func TestValidate_ImplicitlyEnabledAuth(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.AuthImplicit = true
	r := New(s).Validate()
	if !r.Valid {
		t.Fatalf("expected valid, got: %v", r.Errors)
	}
	assertHasWarning(t, r, "auth", "set AUTH_ENABLED explicitly")
}

func TestValidate_ShortAPIKey(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.APIKey = "short"
	assertHasWarning(t, New(s).Validate(), "auth", "shorter than")
}

func TestValidate_DefaultSecret(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.SecretKey = config.DefaultSecretKey
	r := New(s).Validate()
	if !r.Valid {
		t.Fatalf("expected valid without signatures, got: %v", r.Errors)
	}
	assertHasWarning(t, r, "secret", "built-in default")

	s.SignatureHeader = "X-Signature"
	r = New(s).Validate()
	if r.Valid {
		t.Fatal("expected invalid with signatures on the default secret")
	}
	assertHasError(t, r, "secret", "built-in default")
}

func TestValidate_SignatureWithoutSecret(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.SignatureHeader = "X-Signature"
	s.SecretKey = ""
	assertHasError(t, New(s).Validate(), "secret", "SECRET_KEY is empty")
}

func TestValidate_ServerFields(t *testing.T) {
	t.Parallel()
	s := validSettings(t)
	s.APIPort = 70000
	s.MaxBodySize = 0
	r := New(s).Validate()
	assertHasError(t, r, "server", "out of range")
	assertHasError(t, r, "server", "max body size")
}

func TestValidate_LogSink(t *testing.T) {
	t.Parallel()

	t.Run("missing dir is created later", func(t *testing.T) {
		s := validSettings(t)
		s.Log.Dir = filepath.Join(s.Log.Dir, "not-yet")
		r := New(s).Validate()
		if !r.Valid {
			t.Fatalf("expected valid, got: %v", r.Errors)
		}
		assertHasWarning(t, r, "log", "will be created")
	})

	t.Run("dir is a file", func(t *testing.T) {
		s := validSettings(t)
		file := filepath.Join(s.Log.Dir, "plain")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		s.Log.Dir = file
		assertHasError(t, New(s).Validate(), "log", "not a directory")
	})

	t.Run("file with separator", func(t *testing.T) {
		s := validSettings(t)
		s.Log.File = "nested/webhooks.log"
		assertHasError(t, New(s).Validate(), "log", "must be a file name")
	})

	t.Run("bad rotation", func(t *testing.T) {
		s := validSettings(t)
		s.Log.MaxSizeMB = 0
		s.Log.MaxBackups = -1
		r := New(s).Validate()
		assertHasError(t, r, "log", "LOG_MAX_SIZE_MB")
		assertHasError(t, r, "log", "LOG_MAX_BACKUPS")
	})

	t.Run("no backups", func(t *testing.T) {
		s := validSettings(t)
		s.Log.MaxBackups = 0
		assertHasWarning(t, New(s).Validate(), "log", "keeps every rotated")
	})

	t.Run("probe file removed", func(t *testing.T) {
		s := validSettings(t)
		New(s).Validate()
		entries, err := os.ReadDir(s.Log.Dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected empty log dir after check, got %d entries", len(entries))
		}
	})
}

func TestFormatHuman(t *testing.T) {
	t.Parallel()

	if got := FormatHuman(&Result{Valid: true}); got != "Configuration valid.\n" {
		t.Fatalf("unexpected output: %q", got)
	}

	r := &Result{
		Valid:    false,
		Errors:   []Issue{{Category: "auth", Field: "API_KEY", Message: "empty"}},
		Warnings: []Issue{{Category: "secret", Message: "default"}},
	}
	out := FormatHuman(r)
	if !strings.Contains(out, "Configuration invalid (1 error(s), 1 warning(s))") {
		t.Errorf("missing summary line: %q", out)
	}
	if !strings.Contains(out, "ERROR [auth] API_KEY: empty") {
		t.Errorf("missing error line: %q", out)
	}
	if !strings.Contains(out, "WARN  [secret] default") {
		t.Errorf("missing warning line: %q", out)
	}
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()
	out, err := FormatJSON(&Result{Valid: true, Warnings: []Issue{{Category: "auth", Message: "m"}}})
	if err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	var decoded Result
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !decoded.Valid || len(decoded.Warnings) != 1 {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
}

func assertHasError(t *testing.T, r *Result, category, substring string) {
	t.Helper()
	for _, e := range r.Errors {
		if e.Category == category && strings.Contains(e.Message, substring) {
			return
		}
	}
	t.Fatalf("expected error with category=%q containing %q, got: %v", category, substring, r.Errors)
}

func assertHasWarning(t *testing.T, r *Result, category, substring string) {
	t.Helper()
	for _, w := range r.Warnings {
		if w.Category == category && strings.Contains(w.Message, substring) {
			return
		}
	}
	t.Fatalf("expected warning with category=%q containing %q, got: %v", category, substring, r.Warnings)
}
