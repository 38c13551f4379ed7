package internal_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/owlandlion/access-cli/internal"
	"github.com/owlandlion/access-cli/testutil"
)

func newTestClient(t *testing.T, api *testutil.MockAPI) (*internal.Client, *internal.Session) {
	t.Helper()
	session := &internal.Session{AccessToken: "test-token", UserID: "user-1"}
	return internal.NewClient(api.URL(), 5*time.Second, session), session
}

func TestClientLogin(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("POST", "/api/login/", http.StatusOK, map[string]string{
		"email":        "alex@example.edu",
		"name":         "Alex Chen",
		"access_token": "issued-token",
	})

	client := internal.NewClient(api.URL(), 5*time.Second, &internal.Session{})
	resp, err := client.Login(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken != "issued-token" || resp.Name != "Alex Chen" {
		t.Errorf("Login() = %+v, want issued token and name", resp)
	}

	req := api.LastRequest()
	if req.Auth != "" {
		t.Errorf("login request carried Authorization %q, want none", req.Auth)
	}
	if !strings.Contains(string(req.Body), `"code":"auth-code"`) {
		t.Errorf("login body = %s, want the code", req.Body)
	}
}

func TestClientLogin_MissingToken(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("POST", "/api/login/", http.StatusOK, map[string]string{"email": "a@b.c"})

	client := internal.NewClient(api.URL(), 5*time.Second, &internal.Session{})
	if _, err := client.Login(context.Background(), "code"); err == nil {
		t.Error("Login() succeeded without an access token in the response")
	}
}

func TestClientRegisterStudent(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("PUT", "/api/students/", http.StatusOK, map[string]string{
		"tutor_id":   "T1",
		"tutor_name": "Jane Doe",
	})

	client, _ := newTestClient(t, api)
	student := testutil.SampleStudent()

	result, err := client.RegisterStudent(context.Background(), student)
	if err != nil {
		t.Fatalf("RegisterStudent() error = %v", err)
	}
	if result.TutorID != "T1" || result.TutorName != "Jane Doe" {
		t.Errorf("RegisterStudent() = %+v, want T1/Jane Doe", result)
	}

	req := api.LastRequest()
	if req.Method != "PUT" || req.Path != "/api/students/student-001" {
		t.Errorf("request = %s %s, want PUT /api/students/student-001", req.Method, req.Path)
	}
	if req.Auth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want the bearer token", req.Auth)
	}
	if !strings.Contains(string(req.Body), `"primary_disability":"Dyslexia"`) {
		t.Errorf("request body missing profile fields: %s", req.Body)
	}
}

func TestClientListStudents(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("GET", "/api/students", http.StatusOK, []map[string]string{
		{"student_id": "s1", "display_name": "Alex"},
		{"student_id": "s2", "display_name": "Sam"},
	})

	client, _ := newTestClient(t, api)
	students, err := client.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents() error = %v", err)
	}
	if len(students) != 2 || students[0].StudentID != "s1" || students[1].DisplayName != "Sam" {
		t.Errorf("ListStudents() = %+v", students)
	}
}

func TestClientStudentChat(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("POST", "/api/chat/s1/chatbot", http.StatusOK, map[string]string{
		"response": "You'll be matched automatically.",
	})

	client, _ := newTestClient(t, api)
	reply, err := client.StudentChat(context.Background(), "s1", "How does matching work?", "General")
	if err != nil {
		t.Fatalf("StudentChat() error = %v", err)
	}
	if reply != "You'll be matched automatically." {
		t.Errorf("StudentChat() = %q", reply)
	}

	req := api.LastRequest()
	if !strings.Contains(string(req.Body), `"subject":"General"`) {
		t.Errorf("chat body = %s, want the subject", req.Body)
	}
}

func TestClientTutorChat_SessionThreading(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("POST", "/api/chat/s1/chat", http.StatusOK, map[string]string{
		"response":   "They need extended time.",
		"session_id": "conv-7",
	})

	client, session := newTestClient(t, api)

	if _, err := client.TutorChat(context.Background(), "s1", internal.TutorChatRequest{Message: "first"}); err != nil {
		t.Fatalf("TutorChat() error = %v", err)
	}
	if session.ChatSession() != "conv-7" {
		t.Errorf("ChatSession() = %q after first turn, want conv-7 stored back", session.ChatSession())
	}

	if _, err := client.TutorChat(context.Background(), "s1", internal.TutorChatRequest{Message: "second"}); err != nil {
		t.Fatalf("second TutorChat() error = %v", err)
	}
	req := api.LastRequest()
	if !strings.Contains(string(req.Body), `"session_id":"conv-7"`) {
		t.Errorf("second turn body = %s, want the threaded session id", req.Body)
	}
}

func TestClientUnauthorized(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("GET", "/api/students", http.StatusUnauthorized, map[string]string{"detail": "nope"})

	client, _ := newTestClient(t, api)
	_, err := client.ListStudents(context.Background())
	if !errors.Is(err, internal.ErrUnauthorized) {
		t.Errorf("ListStudents() error = %v, want ErrUnauthorized", err)
	}
}

func TestClientStatusError(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("PUT", "/api/students/", http.StatusInternalServerError, map[string]string{"detail": "boom"})

	client, _ := newTestClient(t, api)
	_, err := client.RegisterStudent(context.Background(), testutil.SampleStudent())

	var statusErr *internal.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("RegisterStudent() error = %v, want *StatusError", err)
	}
	if statusErr.Status != http.StatusInternalServerError {
		t.Errorf("StatusError.Status = %d, want 500", statusErr.Status)
	}
}

func TestClientNoToken(t *testing.T) {
	api := testutil.NewMockAPI(t)
	client := internal.NewClient(api.URL(), 5*time.Second, &internal.Session{})

	_, err := client.ListStudents(context.Background())
	if !errors.Is(err, internal.ErrUnauthorized) {
		t.Errorf("ListStudents() without a token = %v, want ErrUnauthorized", err)
	}
	if len(api.Requests()) != 0 {
		t.Error("request reached the backend without a token")
	}
}

func TestClientBreakerOpens(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("POST", "/api/chat/", http.StatusInternalServerError, map[string]string{"detail": "down"})

	client, _ := newTestClient(t, api)

	// Three consecutive failures trip the breaker.
	for i := 0; i < 3; i++ {
		if _, err := client.StudentChat(context.Background(), "s1", "hello", "General"); err == nil {
			t.Fatalf("StudentChat() call %d succeeded, want failure", i+1)
		}
	}

	_, err := client.StudentChat(context.Background(), "s1", "hello", "General")
	if !errors.Is(err, internal.ErrUnavailable) {
		t.Fatalf("StudentChat() with open breaker = %v, want ErrUnavailable", err)
	}
	if got := len(api.Requests()); got != 3 {
		t.Errorf("backend saw %d requests, want 3 (fourth short-circuited)", got)
	}
}

func TestClientHealth(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("GET", "/api/health", http.StatusOK, map[string]string{"status": "ok"})

	client := internal.NewClient(api.URL(), 5*time.Second, &internal.Session{})
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestClientFetchStudyPlan(t *testing.T) {
	api := testutil.NewMockAPI(t)
	api.RespondJSON("GET", "/api/chat/s1/summary", http.StatusOK, map[string]string{
		"summary": "Overview\nIntro here.",
	})

	client, _ := newTestClient(t, api)
	body, err := client.FetchStudyPlan(context.Background(), "s1")
	if err != nil {
		t.Fatalf("FetchStudyPlan() error = %v", err)
	}

	plan, err := internal.DecodeStudyPlan(body)
	if err != nil {
		t.Fatalf("DecodeStudyPlan() error = %v", err)
	}
	if plan.Overview != "Intro here." {
		t.Errorf("Overview = %q, want the parsed summary", plan.Overview)
	}
}
