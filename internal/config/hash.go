package config

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintBytes is how much of the BLAKE3 digest is shown.
const fingerprintBytes = 8

// Fingerprint returns a short, non-reversible BLAKE3 identifier for a secret
// so operators can compare keys across hosts without printing them.
// An empty secret yields an empty fingerprint.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := blake3.Sum256([]byte(secret))
	return "blake3:" + hex.EncodeToString(sum[:fingerprintBytes])
}

// Redacted returns a copy of s with secrets replaced by their fingerprints.
func (s Settings) Redacted() Settings {
	out := s
	out.APIKey = Fingerprint(s.APIKey)
	out.SecretKey = Fingerprint(s.SecretKey)
	return out
}

// UsesDefaultSecret reports whether SECRET_KEY was left at its placeholder.
func (s Settings) UsesDefaultSecret() bool {
	return s.SecretKey == DefaultSecretKey
}
