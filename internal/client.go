package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Error kinds callers branch on. Transport failures are wrapped with %w and
// reach callers as-is; these cover the non-2xx and breaker cases.
var (
	// ErrUnauthorized is returned for 401/403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned when the chat breaker is open and calls are
	// short-circuited without touching the network.
	ErrUnavailable = errors.New("chat backend unavailable")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// Client calls the remote tutoring backend. Every request except login
// carries the session's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds a client for the given backend and session.
func NewClient(baseURL string, timeout time.Duration, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: session,
		breaker: newChatBreaker(),
	}
}

// newChatBreaker guards the two chat endpoints. Registration stays outside
// the breaker: its failure must stay user-visible, while chat degrades to
// the offline responder.
func newChatBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Chat-API",
		MaxRequests: 3,
		Interval:    time.Second * 10,
		Timeout:     time.Second * 30,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			LogWarn("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

// LoginResponse is the body of a successful code exchange.
type LoginResponse struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// Login exchanges an authorization code for tokens. Unauthenticated.
func (c *Client) Login(ctx context.Context, code string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login/", map[string]string{"code": code}, &out, false)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access token")
	}
	return &out, nil
}

// RegistrationResult is what the registration endpoint returns on success.
// The backend runs the matcher as part of registration, so a successful
// response carries the assigned tutor.
type RegistrationResult struct {
	TutorID   string `json:"tutor_id"`
	TutorName string `json:"tutor_name"`
}

// RegisterStudent submits the full student profile and returns the match
// result. Failures here are surfaced to the caller; the match flow decides
// which ones abort and which degrade to the fallback tutor.
func (c *Client) RegisterStudent(ctx context.Context, student *Student) (*RegistrationResult, error) {
	var out RegistrationResult
	path := "/api/students/" + student.StudentID
	if err := c.doJSON(ctx, http.MethodPut, path, student, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStudents returns the registered students for the tutor roster.
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	var out []Student
	if err := c.doJSON(ctx, http.MethodGet, "/api/students", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
}

// StudentChat sends one turn to the student-facing chatbot endpoint.
func (c *Client) StudentChat(ctx context.Context, studentID, message, subject string) (string, error) {
	body := map[string]string{
		"message": message,
		"subject": subject,
	}
	path := fmt.Sprintf("/api/chat/%s/chatbot", studentID)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var resp chatResponse
		if err := c.doJSON(ctx, http.MethodPost, path, body, &resp, true); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", mapBreakerErr(err)
	}

	resp := out.(chatResponse)
	if resp.Response == "" {
		return "", fmt.Errorf("chat response missing response text")
	}
	return resp.Response, nil
}

// TutorChatRequest is one turn of the tutor-facing chat.
type TutorChatRequest struct {
	Message       string `json:"message"`
	Subject       string `json:"subject"`
	TutorID       string `json:"tutor_id,omitempty"`
	ClassMaterial string `json:"class_material,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
}

// TutorChat sends one turn to the tutor chat endpoint. The session id from
// the session object is attached so the backend threads the conversation,
// and any returned session id is stored back for the next turn.
func (c *Client) TutorChat(ctx context.Context, studentID string, req TutorChatRequest) (string, error) {
	if req.Subject == "" {
		req.Subject = "General"
	}
	if req.SessionID == "" {
		req.SessionID = c.session.ChatSession()
	}
	path := fmt.Sprintf("/api/chat/%s/chat", studentID)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var resp chatResponse
		if err := c.doJSON(ctx, http.MethodPost, path, req, &resp, true); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", mapBreakerErr(err)
	}

	resp := out.(chatResponse)
	if resp.SessionID != "" {
		c.session.SetChatSession(resp.SessionID)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("chat response missing response text")
	}
	return resp.Response, nil
}

// FetchStudyPlan retrieves the study plan payload for a student. The body is
// returned raw; the summary endpoint answers either a structured plan or a
// free-text block, and DecodeStudyPlan sorts that out.
func (c *Client) FetchStudyPlan(ctx context.Context, studentID string) ([]byte, error) {
	path := fmt.Sprintf("/api/chat/%s/summary", studentID)
	return c.doRaw(ctx, http.MethodGet, path, nil, true)
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRaw(ctx, http.MethodGet, "/api/health", nil, false)
	return err
}

func mapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// doJSON performs a request with a JSON body and decodes a JSON response.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	data, err := c.doRaw(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// doRaw performs a request and returns the response body after the status
// check. Non-2xx becomes *StatusError (ErrUnauthorized for 401/403).
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}, authed bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.session.Token()
		if token == "" {
			return nil, fmt.Errorf("%w: no session token, run login first", ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	LogDebug("%s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, strings.TrimSpace(string(data)))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return data, nil
}
