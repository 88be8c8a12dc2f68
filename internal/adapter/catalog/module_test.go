package catalog

import (
	"io"
	"log/slog"
	"testing"

	"github.com/polkiloo/storefront/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{CatalogAddress: "http://example.com"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := newClient(clientParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}

	if _, err := newClient(clientParams{Config: &config.Config{CatalogAddress: "relative"}, Logger: logger}); err == nil {
		t.Fatal("expected error for relative address")
	}
}
