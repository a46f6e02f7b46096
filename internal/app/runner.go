package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mdsect/mdsect/internal/config"
	"github.com/mdsect/mdsect/internal/docs"
	mcputil "github.com/mdsect/mdsect/internal/mcp"
	"github.com/mdsect/mdsect/internal/search"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the run functions
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	Stdout            io.Writer
	StartSSEServer    func(*mcp.Server, *config.Settings) error
	CreateServer      func(*config.Settings, string) (*mcp.Server, func(), error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:   config.LoadSettingsWithFlags,
		ValidSettings:  config.ValidateSettings,
		Stdout:         os.Stdout,
		StartSSEServer: StartSSEServer,
		CreateServer:   CreateMCPServer,
	}
}

// loadValidatedSettings loads and validates settings, then configures logging.
// Logging always goes to stderr so stdout stays clean for JSON output and
// the stdio transport.
func loadValidatedSettings(params RunParams, flags *pflag.FlagSet) (*config.Settings, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	return settings, nil
}

// RunIndex sectionizes the given input paths and writes the aggregated
// section index to stdout as JSON. When an index directory is configured,
// the persisted search index is rebuilt as well.
func RunIndex(ctx context.Context, params RunParams, flags *pflag.FlagSet, inputs []string) error {
	settings, err := loadValidatedSettings(params, flags)
	if err != nil {
		return err
	}

	// All missing inputs are reported together so a single run surfaces
	// every bad path.
	var missing []string
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			missing = append(missing, input)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("input paths do not exist: %s", strings.Join(missing, ", "))
	}

	filter := docs.NewFileFilter(settings.Index.Extensions, settings.Index.MaxFileSize)
	walker := docs.NewWalker(filter, settings.Index.Depth)

	paths, err := walker.Discover(inputs)
	if err != nil {
		return fmt.Errorf("failed to discover markdown files: %w", err)
	}
	slog.Info("Discovered markdown files", "count", len(paths))

	aggregator := docs.NewAggregator(settings.Index.Parallelism)
	index, err := aggregator.AggregatePaths(ctx, paths)
	if err != nil {
		return err
	}

	if settings.Search.IndexDir != "" {
		svc, err := search.NewService(settings.Search.IndexDir, settings.Search.MaxResults)
		if err != nil {
			return fmt.Errorf("failed to create search service: %w", err)
		}
		defer func() {
			if err := svc.Close(); err != nil {
				slog.Error("Failed to close search service", "error", err)
			}
		}()

		if _, err := svc.Build(ctx, index, inputs); err != nil {
			return fmt.Errorf("failed to build section index: %w", err)
		}
	}

	return WriteIndex(params.Stdout, index, settings.Index.Pretty)
}

// RunSearch queries the persisted section index and prints matches to stdout
func RunSearch(ctx context.Context, params RunParams, flags *pflag.FlagSet, query string) error {
	settings, err := loadValidatedSettings(params, flags)
	if err != nil {
		return err
	}

	svc, err := search.NewService(settings.Search.IndexDir, settings.Search.MaxResults)
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Error("Failed to close search service", "error", err)
		}
	}()

	if err := svc.Open(); err != nil {
		return fmt.Errorf("no section index found, run the indexing command first: %w", err)
	}

	file, _ := flags.GetString("file")
	language, _ := flags.GetString("language")
	level, _ := flags.GetInt("level")

	results, err := svc.Query(search.SearchArgument{
		Query:    query,
		File:     file,
		Language: language,
		Level:    level,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	_, err = fmt.Fprintln(params.Stdout, search.FormatResults(results, query))
	return err
}

// RunServe starts the MCP server exposing the section index tools
func RunServe(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := loadValidatedSettings(params, flags)
	if err != nil {
		return err
	}

	slog.Info("Starting markdown section server", "version", version)
	config.Log(settings)

	mcpServer, cleanup, err := params.CreateServer(settings, version)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if settings.Transport == "stdio" {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return mcpServer.Run(ctx, transport)
	}

	slog.Info("Starting SSE server", "host", settings.Host, "port", settings.Port)
	return params.StartSSEServer(mcpServer, settings)
}

// CreateMCPServer creates the MCP server with registered tools
func CreateMCPServer(settings *config.Settings, version string) (*mcp.Server, func(), error) {
	svc, err := search.NewService(settings.Search.IndexDir, settings.Search.MaxResults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search service: %w", err)
	}

	// A missing index is not fatal: the tools report it until a build runs
	if err := svc.Open(); err != nil {
		slog.Warn("Section index not available, build one first", "error", err)
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			slog.Error("Failed to close search service", "error", err)
		}
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:      "mdsect",
		Version:   version,
		SearchSvc: svc,
	})

	return server, cleanup, nil
}
