package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mind-engage/certprep/internal/exam"
	"github.com/mind-engage/certprep/internal/rbac"
)

type fakeLearners map[string]exam.Learner

func (f fakeLearners) GetLearner(_ context.Context, id string) (exam.Learner, error) {
	if l, ok := f[id]; ok {
		return l, nil
	}
	return exam.Learner{}, exam.ErrAccountNotFound
}

func TestLoginIssuesParsableToken(t *testing.T) {
	a := NewAuthService("test-secret")
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	learners := fakeLearners{"ada": {ID: "u1", Username: "ada", PasswordHash: hash, Role: "learner"}}

	rec := httptest.NewRecorder()
	LoginHandler(a, learners).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"ada","password":"hunter2"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	c, err := a.Parse(out["access_token"])
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Subject != "u1" || c.Role != "learner" {
		t.Fatalf("unexpected claims %+v", c)
	}

	rec = httptest.NewRecorder()
	LoginHandler(a, learners).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"ada","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	var sub, role string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub = SubjectFromContext(r.Context())
		role = rbac.RoleFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer, got %d", rec.Code)
	}

	other, _ := NewAuthService("other-secret").IssueJWT("u1", "learner")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign signature, got %d", rec.Code)
	}

	tok, _ := a.IssueJWT("u1", "admin")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || sub != "u1" || role != "admin" {
		t.Fatalf("expected pass-through with claims, got %d %q %q", rec.Code, sub, role)
	}
}

func TestSubjectFromContext(t *testing.T) {
	if got := SubjectFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty subject, got %q", got)
	}
	if got := SubjectFromContext(WithSubject(context.Background(), "u2")); got != "u2" {
		t.Fatalf("got %q", got)
	}
}
