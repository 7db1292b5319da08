package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrBadSignature is returned for any signature failure. It carries no
// detail about why verification failed.
var ErrBadSignature = errors.New("webhook signature verification failed")

const signaturePrefix = "sha256="

// Signer computes and checks HMAC-SHA256 signatures over request bodies.
// A Signer with an empty header is disabled.
type Signer struct {
	header string
	secret []byte
}

// NewSigner returns a Signer reading signatures from header, keyed with secret.
func NewSigner(header, secret string) *Signer {
	return &Signer{header: header, secret: []byte(secret)}
}

// Enabled reports whether bodies must be signed.
func (s *Signer) Enabled() bool { return s != nil && s.header != "" }

// Header returns the header name that carries the signature.
func (s *Signer) Header() string { return s.header }

// Sign returns the "sha256=<hex>" signature of body.
func (s *Signer) Sign(body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against body using a constant-time comparison.
// Both "sha256=<hex>" and bare hex are accepted.
func (s *Signer) Verify(body []byte, signature string) error {
	if len(s.secret) == 0 || signature == "" {
		return ErrBadSignature
	}

	actual, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), actual) {
		return ErrBadSignature
	}
	return nil
}
