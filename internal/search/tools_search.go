package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/mdsect/mdsect/internal/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchArgument defines section search parameters.
type SearchArgument struct {
	Query    string `json:"query" jsonschema_description:"Search query (supports wildcards and phrases)"`
	File     string `json:"file,omitempty" jsonschema_description:"Filter by originating file path"`
	Language string `json:"language,omitempty" jsonschema_description:"Filter by code block language tag (e.g. go, rust)"`
	Level    int    `json:"level,omitempty" jsonschema_description:"Filter by heading level (1-6)"`
}

// Query executes a section search against the open index.
func (s *Service) Query(args SearchArgument) (*bleve.SearchResult, error) {
	index, err := s.Index()
	if err != nil {
		return nil, err
	}

	searchReq := bleve.NewSearchRequest(buildQuery(args))
	searchReq.Size = s.maxResults
	searchReq.Fields = []string{
		domain.SectionFieldFilePath,
		domain.SectionFieldHeader,
		domain.SectionFieldLevel,
		domain.SectionFieldContent,
	}
	searchReq.Highlight = bleve.NewHighlight()
	searchReq.Highlight.AddField(domain.SectionFieldContent)

	return index.Search(searchReq)
}

// buildQuery constructs a Bleve query from search arguments. Header matches
// outrank content matches; filters narrow with conjunctions.
func buildQuery(args SearchArgument) query.Query {
	contentQuery := bleve.NewMatchQuery(args.Query)
	contentQuery.SetField(domain.SectionFieldContent)

	headerQuery := bleve.NewMatchQuery(args.Query)
	headerQuery.SetField(domain.SectionFieldHeader)
	headerQuery.SetBoost(3.0)

	searchQuery := query.Query(bleve.NewDisjunctionQuery(contentQuery, headerQuery))

	if args.File == "" && args.Language == "" && args.Level == 0 {
		return searchQuery
	}

	must := []query.Query{searchQuery}

	if args.File != "" {
		fileQuery := bleve.NewTermQuery(args.File)
		fileQuery.SetField(domain.SectionFieldFilePath)
		must = append(must, fileQuery)
	}

	if args.Language != "" {
		langQuery := bleve.NewTermQuery(strings.TrimPrefix(args.Language, "."))
		langQuery.SetField(domain.SectionFieldLanguages)
		must = append(must, langQuery)
	}

	if args.Level > 0 {
		level := float64(args.Level)
		inclusive := true
		levelQuery := bleve.NewNumericRangeInclusiveQuery(&level, &level, &inclusive, &inclusive)
		levelQuery.SetField(domain.SectionFieldLevel)
		must = append(must, levelQuery)
	}

	return bleve.NewConjunctionQuery(must...)
}

// FormatResults renders Bleve results as markdown for tool output and the CLI.
func FormatResults(results *bleve.SearchResult, queryStr string) string {
	if results.Total == 0 {
		return fmt.Sprintf("No sections found for query: %s", queryStr)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d sections for '%s':\n\n", results.Total, queryStr))

	for i, hit := range results.Hits {
		filePath, _ := hit.Fields[domain.SectionFieldFilePath].(string)
		header, _ := hit.Fields[domain.SectionFieldHeader].(string)
		level, _ := hit.Fields[domain.SectionFieldLevel].(float64)

		sb.WriteString(fmt.Sprintf("### %d. %s — %s (level %d)\n", i+1, filePath, header, int(level)))
		sb.WriteString(fmt.Sprintf("**Score**: %.4f\n\n", hit.Score))

		if fragments, ok := hit.Fragments[domain.SectionFieldContent]; ok && len(fragments) > 0 {
			sb.WriteString("```\n")
			for _, fragment := range fragments {
				sb.WriteString(fragment)
				sb.WriteString("\n")
			}
			sb.WriteString("```\n")
		}

		sb.WriteString("\n")
	}

	if results.Total > uint64(len(results.Hits)) {
		sb.WriteString(fmt.Sprintf("... and %d more sections\n", results.Total-uint64(len(results.Hits))))
	}

	return sb.String()
}

// SearchHandler handles the section search MCP tool.
type SearchHandler struct {
	service *Service
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service *Service) *SearchHandler {
	return &SearchHandler{service: service}
}

// Handle executes the search and returns formatted results.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgument) (*mcp.CallToolResult, any, error) {
	if !h.service.IsReady() {
		return toolError("Search is not available: no section index is open. Build one with the indexer first."), nil, nil
	}

	if strings.TrimSpace(args.Query) == "" {
		return toolError("Query cannot be empty"), nil, nil
	}

	results, err := h.service.Query(args)
	if err != nil {
		return toolError(fmt.Sprintf("Search failed: %s", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatResults(results, args.Query)},
		},
	}, nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *SearchHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_sections",
		Description: "Search indexed markdown sections using full-text search",
	}
}

// RegisterSearchTool registers the search tool with an MCP server.
func RegisterSearchTool(server *mcp.Server, service *Service) {
	handler := NewSearchHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

// toolError wraps a message as a failed tool result.
func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
