package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsPGUniqueViolation(t *testing.T) {
	if !IsPGUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
	if IsPGUniqueViolation(&pgconn.PgError{Code: "42501"}) {
		t.Error("42501 is not a unique violation")
	}
	if IsPGUniqueViolation(errors.New("plain")) {
		t.Error("plain error is not a unique violation")
	}
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsPGUniqueViolation(wrapped) {
		t.Error("wrapped pg error should be detected")
	}
}

func TestIsPGPermissionDenied(t *testing.T) {
	if !IsPGPermissionDenied(&pgconn.PgError{Code: "42501"}) {
		t.Error("42501 should be permission denied")
	}
	if IsPGPermissionDenied(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 is not permission denied")
	}
}

func TestIndexHint(t *testing.T) {
	err := errors.New(`The query requires an index. You can create it here: https://console.example.com/project/x/indexes?create=abc`)
	link, ok := IndexHint(err)
	if !ok {
		t.Fatal("expected index hint")
	}
	if link != "https://console.example.com/project/x/indexes?create=abc" {
		t.Errorf("link: got %q", link)
	}

	link, ok = IndexHint(errors.New("query requires an index"))
	if !ok {
		t.Fatal("marker without link should still be detected")
	}
	if link != "" {
		t.Errorf("expected empty link, got %q", link)
	}

	if _, ok := IndexHint(errors.New("connection refused")); ok {
		t.Error("unrelated error should not be an index hint")
	}
	if _, ok := IndexHint(nil); ok {
		t.Error("nil error should not be an index hint")
	}
}
