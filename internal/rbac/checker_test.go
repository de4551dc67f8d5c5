package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerWildcards(t *testing.T) {
	c := NewChecker(map[string][]string{
		"learner": {"attempt:*", "exam:view"},
		"admin":   {"*"},
	})
	if !c.Has("learner", "attempt:submit") {
		t.Fatalf("prefix wildcard should match")
	}
	if c.Has("learner", "exam:create") {
		t.Fatalf("learner must not create exams")
	}
	if !c.Has("admin", "exam:create") {
		t.Fatalf("admin has everything")
	}
	if c.Has("ghost", "exam:view") {
		t.Fatalf("unknown role has nothing")
	}
	if !c.Any("learner", "exam:create", "exam:view") || c.Any("learner", "exam:create", "enrollment:grant") {
		t.Fatalf("Any mismatch")
	}
}

func TestCanView(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role string
		own  bool
		want bool
	}{
		{"learner", true, true},
		{"learner", false, false},
		{"admin", false, true},
		{"", true, false},
	}
	for _, tc := range cases {
		if got := c.CanView(tc.role, "attempt", tc.own); got != tc.want {
			t.Fatalf("CanView(%q, own=%v) = %v, want %v", tc.role, tc.own, got, tc.want)
		}
	}
}

func TestRequireAny(t *testing.T) {
	h := RequireAny("attempt:view-own", "attempt:view-all")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/attempts", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing role: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(context.Background(), "learner")))
	if rec.Code != http.StatusOK {
		t.Fatalf("learner: expected 200, got %d", rec.Code)
	}
}

func TestRequire(t *testing.T) {
	h := Require("exam:create")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/exams", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(context.Background(), "learner")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(context.Background(), "admin")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
