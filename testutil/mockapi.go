package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockAPI is an httptest-backed stand-in for the tutoring backend. Handlers
// are registered per method+path prefix; unregistered routes answer 404.
type MockAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

// RecordedRequest captures one request the mock saw.
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

// NewMockAPI starts a mock backend. It is shut down via t.Cleanup.
func NewMockAPI(t *testing.T) *MockAPI {
	t.Helper()
	m := &MockAPI{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(m.dispatch))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the mock backend's base URL.
func (m *MockAPI) URL() string {
	return m.Server.URL
}

// Handle registers a handler for a method and path prefix, e.g.
// Handle("POST", "/api/chat/", fn).
func (m *MockAPI) Handle(method, pathPrefix string, fn http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method+" "+pathPrefix] = fn
}

// RespondJSON registers a handler that always answers the given status and
// JSON body.
func (m *MockAPI) RespondJSON(method, pathPrefix string, status int, body interface{}) {
	m.Handle(method, pathPrefix, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

// Requests returns a copy of every request seen so far.
func (m *MockAPI) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or nil if none arrived.
func (m *MockAPI) LastRequest() *RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

func (m *MockAPI) dispatch(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	var fn http.HandlerFunc
	for key, h := range m.handlers {
		parts := strings.SplitN(key, " ", 2)
		if parts[0] == r.Method && strings.HasPrefix(r.URL.Path, parts[1]) {
			fn = h
			break
		}
	}
	m.mu.Unlock()

	if fn == nil {
		http.NotFound(w, r)
		return
	}
	fn(w, r)
}
