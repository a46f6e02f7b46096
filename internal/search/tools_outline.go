package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/mdsect/mdsect/internal/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OutlineArgument defines outline parameters.
type OutlineArgument struct {
	File string `json:"file" jsonschema_description:"File path as recorded in the index"`
}

// Outline returns the sections of one indexed file in document order.
func (s *Service) Outline(file string) (*bleve.SearchResult, error) {
	index, err := s.Index()
	if err != nil {
		return nil, err
	}

	fileQuery := bleve.NewTermQuery(file)
	fileQuery.SetField(domain.SectionFieldFilePath)

	req := bleve.NewSearchRequest(fileQuery)
	req.Size = s.maxResults
	if state, ok := s.manifest.GetFileState(file); ok && state.Sections > req.Size {
		req.Size = state.Sections
	}
	req.Fields = []string{
		domain.SectionFieldHeader,
		domain.SectionFieldLevel,
		domain.SectionFieldOrdinal,
	}
	req.SortBy([]string{domain.SectionFieldOrdinal})

	return index.Search(req)
}

// FormatOutline renders an outline result as an indented section listing.
func FormatOutline(results *bleve.SearchResult, file string) string {
	if results.Total == 0 {
		return fmt.Sprintf("No indexed sections for file: %s", file)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s — %d sections:\n\n", file, results.Total))

	for _, hit := range results.Hits {
		header, _ := hit.Fields[domain.SectionFieldHeader].(string)
		level, _ := hit.Fields[domain.SectionFieldLevel].(float64)

		indent := strings.Repeat("  ", max(int(level)-1, 0))
		sb.WriteString(fmt.Sprintf("%s- %s (level %d)\n", indent, header, int(level)))
	}

	return sb.String()
}

// OutlineHandler handles the file outline MCP tool.
type OutlineHandler struct {
	service *Service
}

// NewOutlineHandler creates a new outline handler.
func NewOutlineHandler(service *Service) *OutlineHandler {
	return &OutlineHandler{service: service}
}

// Handle returns the ordered section outline of one indexed file.
func (h *OutlineHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args OutlineArgument) (*mcp.CallToolResult, any, error) {
	if !h.service.IsReady() {
		return toolError("Outline is not available: no section index is open. Build one with the indexer first."), nil, nil
	}

	if strings.TrimSpace(args.File) == "" {
		return toolError("File cannot be empty"), nil, nil
	}

	results, err := h.service.Outline(args.File)
	if err != nil {
		return toolError(fmt.Sprintf("Outline failed: %s", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatOutline(results, args.File)},
		},
	}, nil, nil
}

// GetToolDefinition returns the MCP tool definition.
func (h *OutlineHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "outline_file",
		Description: "List the heading outline of an indexed markdown file in document order",
	}
}

// RegisterOutlineTool registers the outline tool with an MCP server.
func RegisterOutlineTool(server *mcp.Server, service *Service) {
	handler := NewOutlineHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
