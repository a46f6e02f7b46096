package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdsect/mdsect/internal/config"
	"github.com/mdsect/mdsect/internal/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"
)

// noopValidate is a no-op validation function for tests
func noopValidate(*config.Settings) error {
	return nil
}

func testSettings(indexDir string) *config.Settings {
	return &config.Settings{
		Transport: "stdio",
		Auth:      config.AuthSettings{Type: config.AuthTypeNone},
		Index: config.IndexSettings{
			Depth:       -1,
			Extensions:  []string{"md", "markdown"},
			MaxFileSize: 2 * 1024 * 1024,
			Parallelism: 4,
			Pretty:      false,
		},
		Search: config.SearchSettings{IndexDir: indexDir, MaxResults: 20},
	}
}

func paramsFor(settings *config.Settings, stdout *bytes.Buffer) RunParams {
	return RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return settings, nil
		},
		ValidSettings: noopValidate,
		Stdout:        stdout,
	}
}

func TestRunIndex_WritesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "# Title\n\nSome text.\n\n## Sub\n```sh\necho hi\n```\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var stdout bytes.Buffer
	params := paramsFor(testSettings(""), &stdout)

	if err := RunIndex(context.Background(), params, nil, []string{path}); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}

	var elements []domain.DocumentElement
	if err := json.Unmarshal(stdout.Bytes(), &elements); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(elements) != 2 {
		t.Fatalf("got %d sections, want 2", len(elements))
	}
	if elements[0].Header != "Title" || elements[1].Header != "Sub" {
		t.Errorf("headers = %q, %q", elements[0].Header, elements[1].Header)
	}
	if elements[0].FilePath != path {
		t.Errorf("file_path = %q, want %q", elements[0].FilePath, path)
	}
	if len(elements[1].CodeBlocks) != 1 || elements[1].CodeBlocks[0] != "echo hi" {
		t.Errorf("code_blocks = %v", elements[1].CodeBlocks)
	}
}

func TestRunIndex_MissingInputsReportedTogether(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "ok.md")
	if err := os.WriteFile(existing, []byte("# Hi\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var stdout bytes.Buffer
	params := paramsFor(testSettings(""), &stdout)

	missingA := filepath.Join(dir, "a.md")
	missingB := filepath.Join(dir, "b.md")
	err := RunIndex(context.Background(), params, nil, []string{existing, missingA, missingB})
	if err == nil {
		t.Fatal("Expected error for missing inputs")
	}
	if !strings.Contains(err.Error(), missingA) || !strings.Contains(err.Error(), missingB) {
		t.Errorf("Expected both missing paths in error, got: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("Expected no output on failure, got: %s", stdout.String())
	}
}

func TestRunIndex_BuildsSearchIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n\nbody\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	indexDir := filepath.Join(dir, "idx")
	var stdout bytes.Buffer
	params := paramsFor(testSettings(indexDir), &stdout)

	if err := RunIndex(context.Background(), params, nil, []string{path}); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(indexDir, "sections.bleve")); err != nil {
		t.Errorf("Expected persisted section index, stat err = %v", err)
	}
}

func TestRunIndex_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	var stdout bytes.Buffer
	params := paramsFor(testSettings(""), &stdout)

	if err := RunIndex(context.Background(), params, nil, []string{dir}); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}

	if strings.TrimSpace(stdout.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got: %s", stdout.String())
	}
}

func TestRunSearch_NoIndex(t *testing.T) {
	var stdout bytes.Buffer
	params := paramsFor(testSettings(t.TempDir()), &stdout)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterSearchFlags(flags)

	err := RunSearch(context.Background(), params, flags, "anything")
	if err == nil {
		t.Fatal("Expected error when no index exists")
	}
	if !strings.Contains(err.Error(), "no section index") {
		t.Errorf("Expected 'no section index' in error, got: %v", err)
	}
}

func TestRunSearch_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "# Install\n\nRun the installer.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	indexDir := filepath.Join(dir, "idx")
	var indexOut bytes.Buffer
	if err := RunIndex(context.Background(), paramsFor(testSettings(indexDir), &indexOut), nil, []string{path}); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}

	var stdout bytes.Buffer
	params := paramsFor(testSettings(indexDir), &stdout)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterSearchFlags(flags)

	if err := RunSearch(context.Background(), params, flags, "installer"); err != nil {
		t.Fatalf("RunSearch failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Install") {
		t.Errorf("Expected matching section in output, got: %s", stdout.String())
	}
}

func TestRunServe_ErrorCases(t *testing.T) {
	tests := []struct {
		name           string
		params         RunParams
		wantErrContain string
	}{
		{
			name: "LoadSettings error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return nil, errors.New("settings error")
				},
				ValidSettings: noopValidate,
			},
			wantErrContain: "failed to load settings",
		},
		{
			name: "ValidSettings error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return &config.Settings{Transport: "sse"}, nil
				},
				ValidSettings: func(*config.Settings) error {
					return errors.New("validation error")
				},
			},
			wantErrContain: "invalid configuration",
		},
		{
			name: "CreateServer error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return &config.Settings{Transport: "sse"}, nil
				},
				ValidSettings: noopValidate,
				CreateServer: func(*config.Settings, string) (*mcp.Server, func(), error) {
					return nil, nil, errors.New("create server error")
				},
			},
			wantErrContain: "create server error",
		},
		{
			name: "StartSSEServer error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return &config.Settings{Transport: "sse"}, nil
				},
				ValidSettings: noopValidate,
				CreateServer: func(*config.Settings, string) (*mcp.Server, func(), error) {
					return nil, nil, nil
				},
				StartSSEServer: func(*mcp.Server, *config.Settings) error {
					return errors.New("sse start error")
				},
			},
			wantErrContain: "sse start error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunServe(context.Background(), tt.params, nil, "test")
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErrContain)
			}
			if !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErrContain, err.Error())
			}
		})
	}
}

func TestRunServe_Cleanup(t *testing.T) {
	cleanupCalled := false
	params := RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return &config.Settings{Transport: "sse"}, nil
		},
		ValidSettings: noopValidate,
		CreateServer: func(*config.Settings, string) (*mcp.Server, func(), error) {
			return nil, func() { cleanupCalled = true }, nil
		},
		StartSSEServer: func(*mcp.Server, *config.Settings) error {
			return errors.New("intentional error to trigger cleanup")
		},
	}

	_ = RunServe(context.Background(), params, nil, "test")

	if !cleanupCalled {
		t.Error("Cleanup was not called")
	}
}

func TestDefaultRunParams(t *testing.T) {
	params := DefaultRunParams()

	if params.LoadSettings == nil {
		t.Error("LoadSettings is nil")
	}
	if params.ValidSettings == nil {
		t.Error("ValidSettings is nil")
	}
	if params.Stdout == nil {
		t.Error("Stdout is nil")
	}
	if params.StartSSEServer == nil {
		t.Error("StartSSEServer is nil")
	}
	if params.CreateServer == nil {
		t.Error("CreateServer is nil")
	}
}

func TestRunServe_StdioWithCustomTransport(t *testing.T) {
	transportUsed := false
	customTransport := &mockTransport{
		connectCalled: &transportUsed,
	}

	params := RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return &config.Settings{Transport: "stdio"}, nil
		},
		ValidSettings: noopValidate,
		CreateServer: func(*config.Settings, string) (*mcp.Server, func(), error) {
			impl := &mcp.Implementation{Name: "test", Version: "1.0"}
			server := mcp.NewServer(impl, nil)
			return server, nil, nil
		},
		CustomIOTransport: customTransport,
	}

	// Use a cancelled context to avoid hanging
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = RunServe(ctx, params, nil, "test")

	if !transportUsed {
		t.Error("Custom transport Connect was not called")
	}
}

func TestCreateMCPServer_NoIndex(t *testing.T) {
	settings := testSettings(t.TempDir())

	server, cleanup, err := CreateMCPServer(settings, "test")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if server == nil {
		t.Error("Expected server to be created even without an index")
	}
	if cleanup != nil {
		cleanup()
	}
}

// mockTransport implements mcp.Transport for testing
type mockTransport struct {
	connectCalled *bool
}

func (m *mockTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	if m.connectCalled != nil {
		*m.connectCalled = true
	}
	return nil, errors.New("mock transport - no real connection")
}
