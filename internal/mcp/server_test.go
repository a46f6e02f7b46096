package mcp

import (
	"testing"

	"github.com/mdsect/mdsect/internal/search"
)

func TestCreateServer(t *testing.T) {
	cfg := ServerConfig{
		Name:    "test-server",
		Version: "1.0.0",
	}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created")
	}
}

func TestCreateServer_EmptyConfig(t *testing.T) {
	cfg := ServerConfig{}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created even with empty config")
	}
}

func TestCreateServer_WithoutSearchService(t *testing.T) {
	cfg := ServerConfig{
		Name:      "test-server",
		Version:   "1.0.0",
		SearchSvc: nil,
	}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created without search service")
	}
}

func TestCreateServer_WithSearchService(t *testing.T) {
	svc, err := search.NewService(t.TempDir(), 20)
	if err != nil {
		t.Fatalf("Failed to create search service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Failed to close service: %v", err)
		}
	}()

	cfg := ServerConfig{
		Name:      "test-server",
		Version:   "1.0.0",
		SearchSvc: svc,
	}

	server := CreateServer(cfg)
	if server == nil {
		t.Fatal("Expected server to be created with search service")
	}

	// The MCP SDK doesn't expose a way to list registered tools,
	// so we just verify the server was created successfully.
}
