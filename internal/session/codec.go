// Package session implements the stateless session lifecycle: an
// authenticated-encryption codec that turns an AuthSession into a
// self-contained cookie token, and a store that binds the codec to the
// HTTP cookie protocol.
//
// The encoded cookie is the only persisted form of session state. There
// is no server-side session table, so the integrity of the token is the
// entire trust boundary: a tampered cookie must be indistinguishable from
// garbage, never accepted as a degraded-but-valid session.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/vasilisgee/api-doci/internal/domain"
)

// =============================================================================
// Token Format
// =============================================================================

const (
	// tokenVersion tags the cookie format. Decoding rejects any other value,
	// which lets a future format change invalidate old cookies cleanly.
	tokenVersion = "v1"

	// nonceLength is the AES-GCM nonce size in bytes.
	nonceLength = 12

	// tagLength is the AES-GCM authentication tag size in bytes.
	tagLength = 16

	// tokenSegments is the exact segment count of a well-formed token:
	// version.nonce.tag.ciphertext
	tokenSegments = 4

	tokenDelimiter = "."
)

// =============================================================================
// Codec
// =============================================================================

// Codec encrypts and decrypts session records using AES-256-GCM.
//
// The 32-byte key is derived by hashing the configured secret, so any
// string secret yields a valid key. A fresh random nonce is generated per
// encode; nonces are never reused under the same key.
type Codec struct {
	key [sha256.Size]byte
}

// NewCodec creates a Codec from the configured session secret.
func NewCodec(secret string) *Codec {
	return &Codec{key: sha256.Sum256([]byte(secret))}
}

// Encode serializes and encrypts a session into a cookie-safe token.
//
// Token layout: "v1.<nonce>.<tag>.<ciphertext>" with each binary segment
// in unpadded URL-safe base64, so the whole value is valid in a cookie.
func (c *Codec) Encode(session domain.AuthSession) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	// Seal appends the tag to the ciphertext; the token keeps them as
	// separate segments.
	sealed := gcm.Seal(nil, nonce, payload, nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	return strings.Join([]string{
		tokenVersion,
		base64.RawURLEncoding.EncodeToString(nonce),
		base64.RawURLEncoding.EncodeToString(tag),
		base64.RawURLEncoding.EncodeToString(ciphertext),
	}, tokenDelimiter), nil
}

// Decode parses and decrypts a token back into a session.
//
// Returns (session, true) only when every check passes: segment count,
// version tag, nonce and tag lengths, GCM authentication, JSON shape.
// Any failure returns (zero, false): malformed or tampered cookies are
// never partially trusted and never produce an error past this boundary.
func (c *Codec) Decode(token string) (domain.AuthSession, bool) {
	var zero domain.AuthSession

	parts := strings.Split(token, tokenDelimiter)
	if len(parts) != tokenSegments || parts[0] != tokenVersion {
		return zero, false
	}

	nonce, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) != nonceLength {
		return zero, false
	}
	tag, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil || len(tag) != tagLength {
		return zero, false
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return zero, false
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return zero, false
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return zero, false
	}

	sealed := append(ciphertext, tag...)
	payload, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return zero, false
	}

	session, ok := parseSession(payload)
	if !ok {
		return zero, false
	}
	return session, true
}

// parseSession unmarshals decrypted bytes and validates the record schema.
// Every required field must be present with the correct type.
func parseSession(payload []byte) (domain.AuthSession, bool) {
	var zero domain.AuthSession

	// Decode into a raw map first so that missing string fields can be
	// distinguished from empty ones and wrong types are rejected.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return zero, false
	}

	requiredStrings := []string{"token", "sessionId", "applicationName", "username"}
	for _, field := range requiredStrings {
		value, present := raw[field]
		if !present {
			return zero, false
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return zero, false
		}
	}

	activity, present := raw["lastActivityAt"]
	if !present {
		return zero, false
	}
	var ms int64
	if err := json.Unmarshal(activity, &ms); err != nil {
		return zero, false
	}

	userRaw, present := raw["user"]
	if !present {
		return zero, false
	}
	var user map[string]json.RawMessage
	if err := json.Unmarshal(userRaw, &user); err != nil || user == nil {
		return zero, false
	}
	for _, field := range []string{"name", "email", "username"} {
		value, ok := user[field]
		if !ok {
			return zero, false
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return zero, false
		}
	}

	var session domain.AuthSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return zero, false
	}
	return session, true
}
