package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/video-stream/subreflow/internal/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestAuthMiddleware(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret")
	token, err := jwtSvc.GenerateToken(7, "alice", "editor")
	if err != nil {
		t.Fatal(err)
	}

	var seen *auth.Claims
	h := AuthMiddleware(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d; want %d", rec.Code, tt.want)
			}
		})
	}
	if seen == nil || seen.UserID != 7 || seen.Username != "alice" {
		t.Errorf("claims = %+v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret")
	h := AuthMiddleware(jwtSvc)(RequireRole("admin")(okHandler()))

	for role, want := range map[string]int{"admin": http.StatusOK, "viewer": http.StatusForbidden} {
		token, _ := jwtSvc.GenerateToken(1, "u", role)
		req := httptest.NewRequest(http.MethodPut, "/api/settings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %s: status = %d; want %d", role, rec.Code, want)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }
	h := rl.Handler(okHandler())

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do("1.1.1.1") != 200 || do("1.1.1.1") != 200 {
		t.Fatal("first two requests should pass")
	}
	if code := do("1.1.1.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d", code)
	}
	if do("2.2.2.2") != 200 {
		t.Error("other IPs have their own bucket")
	}
	now = now.Add(2 * time.Minute)
	if do("1.1.1.1") != 200 {
		t.Error("bucket should reset after the window")
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		n, err := r.Body.Read(buf)
		for err == nil {
			var m int
			m, err = r.Body.Read(buf[n:])
			n += m
		}
		if n > 4 {
			t.Errorf("read %d bytes past the limit", n)
		}
		if !strings.Contains(err.Error(), "too large") {
			t.Errorf("err = %v", err)
		}
	}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	h.ServeHTTP(httptest.NewRecorder(), req)
}

func TestLoggerSkipsHealth(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(okHandler())

	for _, path := range []string{"/api/health", "/api/files/search"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries; want 1", len(entries))
	}
	if got := entries[0].ContextMap()["path"]; got != "/api/files/search" {
		t.Errorf("path = %v", got)
	}
	if got := entries[0].ContextMap()["status"]; got != int64(200) {
		t.Errorf("status = %v (%T)", got, got)
	}
}
