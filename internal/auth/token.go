package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TokenTTL is the validity window of an edit token.
const TokenTTL = 30 * 24 * time.Hour

// ErrNoSecret is returned when token operations are attempted with no
// shared secret configured. In that state editing is globally disabled.
var ErrNoSecret = errors.New("edit secret not configured")

// Payload is the signed token body. Timestamps are Unix milliseconds.
type Payload struct {
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// Issue builds a signed edit token valid for TokenTTL from now.
// The token is body.sig where body is base64url(JSON payload) and sig is
// base64url(HMAC-SHA256(body, secret)); both halves are cookie-safe.
func Issue(secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	p := Payload{
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(TokenTTL).UnixMilli(),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	body := base64.RawURLEncoding.EncodeToString(raw)
	return body + "." + sign(body, secret), nil
}

// Verify checks the signature and expiry of a token. It reports false for
// any malformed, tampered, or expired token, and always when no secret is
// configured.
func Verify(token, secret string, now time.Time) (Payload, bool) {
	if secret == "" {
		return Payload{}, false
	}
	body, sig, found := strings.Cut(token, ".")
	if !found || body == "" || sig == "" {
		return Payload{}, false
	}
	expected := sign(body, secret)
	if len(expected) != len(sig) {
		return Payload{}, false
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return Payload{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, false
	}
	if p.ExpiresAt == 0 {
		return Payload{}, false
	}
	if now.UnixMilli() > p.ExpiresAt {
		return Payload{}, false
	}
	return p, true
}

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
