package authflow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type recordingNavigator struct {
	routes chan string
}

func newRecordingNavigator() *recordingNavigator {
	return &recordingNavigator{routes: make(chan string, 8)}
}

func (n *recordingNavigator) Replace(route string) {
	select {
	case n.routes <- route:
	default:
	}
}

func (n *recordingNavigator) wait(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-n.routes:
		if got != want {
			t.Fatalf("navigated to %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no navigation to %q", want)
	}
}

func (n *recordingNavigator) expectNone(t *testing.T) {
	t.Helper()
	select {
	case got := <-n.routes:
		t.Fatalf("unexpected navigation to %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

// plannerStub is a minimal stand-in for the planner auth service. One
// password is accepted; everything else is a 401.
type plannerStub struct {
	password   string
	unverified bool
	delay      time.Duration
	loginCalls atomic.Int64
	registered atomic.Int64
	taskCalls  atomic.Int64
	revoked    atomic.Int64
}

func (p *plannerStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		p.loginCalls.Add(1)
		if p.delay > 0 {
			time.Sleep(p.delay)
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if p.unverified {
			writeDetail(w, http.StatusForbidden, "Email not verified")
			return
		}
		if r.PostForm.Get("password") != p.password {
			writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-ok",
			"refresh_token": "refresh-ok",
		})
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		p.registered.Add(1)
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "taken@planner.com" {
			writeDetail(w, http.StatusBadRequest, "An account with this email already exists. Please sign in instead.")
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "created"})
	})
	mux.HandleFunc("/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "If the email exists, a reset link was sent"})
	})
	mux.HandleFunc("/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Token != "good-token" {
			writeDetail(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "password updated"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != "refresh-ok" {
			writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "access-rotated",
			"refresh_token": "refresh-rotated",
		})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		p.revoked.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		p.taskCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer access-ok" {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "title": "Plan sprint"}})
	})
	return mux
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// newTestController builds a controller against a stub service with test
// friendly delays. The stub server is torn down with the test.
func newTestController(t *testing.T, stub *plannerStub, mutate ...func(*Builder)) (*Controller, *recordingNavigator) {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	cfg := defaultConfig()
	cfg.Service.BaseURL = srv.URL
	cfg.UX.LoginRedirectDelay = 10 * time.Millisecond
	cfg.UX.SignupResetDelay = 10 * time.Millisecond
	cfg.Lockout.TickInterval = 5 * time.Millisecond

	nav := newRecordingNavigator()
	b := New().WithConfig(cfg).WithNavigator(nav).WithMetricsEnabled(true)
	for _, m := range mutate {
		m(b)
	}

	c, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c, nav
}
