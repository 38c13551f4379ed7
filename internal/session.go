package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

// Session holds the authenticated state for one login: the bearer token, the
// user identity, and the backend-issued chat session id that threads multiple
// chat turns into one conversation. It is passed explicitly to every
// authenticated operation; there is no package-global token state.
type Session struct {
	mu sync.Mutex

	AccessToken   string `yaml:"access_token"`
	UserID        string `yaml:"user_id"`
	Name          string `yaml:"name,omitempty"`
	Email         string `yaml:"email,omitempty"`
	ChatSessionID string `yaml:"chat_session_id,omitempty"`
}

// NewSession builds a session from a login response. The user id and expiry
// live in the token's claims; the backend owns signature verification, the
// client only introspects.
func NewSession(accessToken, name, email string) (*Session, error) {
	s := &Session{
		AccessToken: accessToken,
		Name:        name,
		Email:       email,
	}

	claims, err := parseClaims(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read token claims: %w", err)
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		s.UserID = sub
	}
	if s.UserID == "" {
		return nil, fmt.Errorf("token has no user id (sub claim)")
	}

	return s, nil
}

// Token returns the current bearer token, or "" after logout.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AccessToken
}

// User returns the current user id, or "" after logout.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UserID
}

// ChatSession returns the backend-issued chat session id, if any.
func (s *Session) ChatSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ChatSessionID
}

// SetChatSession stores a backend-issued chat session id for subsequent
// chat turns.
func (s *Session) SetChatSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ChatSessionID = id
}

// Clear is the logout hook: it wipes the token, user id, and chat session id
// so no subsequent call can reuse the prior session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AccessToken = ""
	s.UserID = ""
	s.Name = ""
	s.Email = ""
	s.ChatSessionID = ""
}

// Expired reports whether the bearer token carries an exp claim in the past.
// Tokens without an exp claim are treated as live.
func (s *Session) Expired() bool {
	token := s.Token()
	if token == "" {
		return true
	}
	claims, err := parseClaims(token)
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	return claims, nil
}

// sessionFile is where the session survives between invocations.
func sessionFile(dataDir string) string {
	return filepath.Join(dataDir, "session.yaml")
}

// SaveSession writes the session to the data directory.
func SaveSession(s *Session, dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	s.mu.Lock()
	data, err := yaml.Marshal(s)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// The file holds a bearer token; keep it private to the user.
	return os.WriteFile(sessionFile(dataDir), data, 0600)
}

// LoadSession reads a previously saved session. Returns nil (no error) when
// no session file exists.
func LoadSession(dataDir string) (*Session, error) {
	data, err := os.ReadFile(sessionFile(dataDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// RemoveSession deletes the saved session file, if present.
func RemoveSession(dataDir string) error {
	err := os.Remove(sessionFile(dataDir))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
