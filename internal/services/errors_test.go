package services_test

import (
	"errors"
	"testing"

	"runarr/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "resolver", "match issue", "issue 7 absent", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound marker, got %v", err)
	}
	want := "not found: resolver: match issue: issue 7 absent"
	if err.Error() != want {
		t.Fatalf("unexpected message %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := services.Wrap(services.ErrTransport, "catalog", "search", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("nil marker should default to ErrTransport, got %v", err)
	}
}

func TestWrapMarkersAreDistinct(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "config", "validate", "", nil)
	if errors.Is(err, services.ErrTransport) || errors.Is(err, services.ErrCacheCorrupt) {
		t.Fatalf("configuration marker matched an unrelated sentinel: %v", err)
	}
}
