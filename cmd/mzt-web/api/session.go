package api

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "mzt_session"

const sessionKeyInfo = "mzt-web session cookie v1"

// Sessions issues and verifies signed session cookies. A session is an
// opaque owner ID; sequences belong to the session that created them.
type Sessions struct {
	key []byte
}

// NewSessions derives the signing key from secret. An empty secret uses a
// random one, so sessions do not survive a restart.
func NewSessions(secret string) (*Sessions, error) {
	ikm := []byte(secret)
	if secret == "" {
		ikm = make([]byte, 32)
		if _, err := rand.Read(ikm); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(sessionKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	return &Sessions{key: key}, nil
}

func (s *Sessions) sign(owner string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(owner))
	return owner + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s *Sessions) verify(value string) (string, bool) {
	owner, _, ok := strings.Cut(value, ".")
	if !ok || owner == "" {
		return "", false
	}
	if !hmac.Equal([]byte(s.sign(owner)), []byte(value)) {
		return "", false
	}
	return owner, true
}

// Lookup returns the owner of a valid session cookie on req.
func (s *Sessions) Lookup(req *http.Request) (string, bool) {
	c, err := req.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	return s.verify(c.Value)
}

// Owner returns the request's session owner, starting a new session and
// setting its cookie when the request carries none.
func (s *Sessions) Owner(w http.ResponseWriter, req *http.Request) string {
	if owner, ok := s.Lookup(req); ok {
		return owner
	}

	owner := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.sign(owner),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return owner
}
