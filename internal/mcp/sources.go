package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/julesmcp/internal/format"
	"github.com/joescharf/julesmcp/internal/jules"
)

const noSourcesText = `No repositories connected to Jules.

To connect repositories:
1. Visit https://jules.google.com
2. Click 'Connect to GitHub account'
3. Authorize and install the Jules GitHub app
4. Select the repositories Jules may access

Then run jules_list_sources again.`

// jules_list_sources
func (s *Server) listSourcesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_list_sources",
		mcp.WithDescription("List all GitHub repositories connected to Jules. You must install the Jules GitHub app at https://jules.google.com before repositories appear here."),
		mcp.WithNumber("pageSize", mcp.Description("Number of sources per page")),
		mcp.WithString("pageToken", mcp.Description("Token for pagination to get next page")),
		mcp.WithString("filter", mcp.Description("Optional AIP-160 filter expression")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleListSources
}

func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.api.ListSources(ctx, jules.ListSourcesParams{
		PageSize:  request.GetInt("pageSize", 0),
		PageToken: request.GetString("pageToken", ""),
		Filter:    request.GetString("filter", ""),
	})
	if err != nil {
		return s.toolError("jules_list_sources", "listing sources", err, ""), nil
	}

	if len(list.Sources) == 0 {
		return mcp.NewToolResultText(noSourcesText), nil
	}

	entries := make([]string, len(list.Sources))
	for i := range list.Sources {
		entries[i] = format.SourceEntry(&list.Sources[i])
	}

	text := fmt.Sprintf("Connected repositories (%d):\n\n%s", len(list.Sources), strings.Join(entries, "\n\n"))
	if list.NextPageToken != "" {
		text += "\n\nMore results available. Use pageToken: " + list.NextPageToken
	}
	return mcp.NewToolResultText(text), nil
}

// jules_get_source
func (s *Server) getSourceTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_get_source",
		mcp.WithDescription("Get details about a connected repository, including its branches. Accepts a bare source id such as github/owner/repo or a full sources/... name."),
		mcp.WithString("sourceId", mcp.Required(), mcp.Description("Source id or resource name")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleGetSource
}

func (s *Server) handleGetSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("sourceId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	src, err := s.api.GetSource(ctx, id)
	if err != nil {
		return s.toolError("jules_get_source", "getting source", err,
			"Common issues:\n- Repository not connected to Jules (run jules_list_sources)\n- Invalid source id\n- Repository access was revoked"), nil
	}
	return mcp.NewToolResultText(format.SourceDetail(src)), nil
}
