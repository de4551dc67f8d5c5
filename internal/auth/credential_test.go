package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestWellFormed(t *testing.T) {
	cases := map[string]bool{
		"":                  false,
		"abc":               false,
		"a.b":               false,
		"a.b.c":             true,
		" a.b.c ":           true,
		"a..c":              false,
		"a.b.c.d":           false,
		"header.payload.":   false,
		"eyJ.eyJ.signature": true,
	}
	for tok, want := range cases {
		if got := WellFormed(tok); got != want {
			t.Fatalf("WellFormed(%q) = %v, want %v", tok, got, want)
		}
	}
}

func TestSubject(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "learner-7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got := Subject(tok); got != "learner-7" {
		t.Fatalf("got %q", got)
	}
	if got := Subject("a.b.c"); got != "" {
		t.Fatalf("garbage token should have no subject, got %q", got)
	}
}

func TestFileCredentials(t *testing.T) {
	ctx := context.Background()
	fc := NewFileCredentials(filepath.Join(t.TempDir(), "session", "token"))

	tok, err := fc.Token(ctx)
	if err != nil || tok != "" {
		t.Fatalf("missing file should read as empty: %q %v", tok, err)
	}
	if err := fc.Save("a.b.c\n"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if tok, _ := fc.Token(ctx); tok != "a.b.c" {
		t.Fatalf("got %q", tok)
	}
	if err := fc.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := fc.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if tok, _ := fc.Token(ctx); tok != "" {
		t.Fatalf("expected cleared token, got %q", tok)
	}
}

func TestMemoryCredentials(t *testing.T) {
	mc := NewMemoryCredentials("x.y.z")
	if tok, _ := mc.Token(context.Background()); tok != "x.y.z" {
		t.Fatalf("got %q", tok)
	}
	_ = mc.Clear(context.Background())
	if tok, _ := mc.Token(context.Background()); tok != "" {
		t.Fatalf("got %q", tok)
	}
}
