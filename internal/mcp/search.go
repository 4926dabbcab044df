package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/julesmcp/internal/format"
	"github.com/joescharf/julesmcp/internal/jules"
)

const julesHomeURL = "https://jules.google.com"

type searchResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type fetchMetadata struct {
	SourceType string `json:"sourceType"`
	Owner      string `json:"owner,omitempty"`
	Repo       string `json:"repo,omitempty"`
}

type fetchDocument struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	URL      string        `json:"url"`
	Metadata fetchMetadata `json:"metadata"`
}

// search
func (s *Server) searchTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("search",
		mcp.WithDescription("Search connected Jules sources. Returns a JSON object with a results array of {id, title, url}."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, passed to the sources filter")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleSearch
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")

	list, err := s.api.ListSources(ctx, jules.ListSourcesParams{Filter: query})
	if err != nil {
		s.log.Warn().Str("tool", "search").Err(err).Msg("tool call failed")
		res := mcp.NewToolResultText(`{"results":[]}`)
		res.IsError = true
		return res, nil
	}

	out := searchResponse{Results: make([]searchResult, 0, len(list.Sources))}
	for i := range list.Sources {
		src := &list.Sources[i]
		out.Results = append(out.Results, searchResult{
			ID:    src.ID,
			Title: orDefault(src.Name, src.ID),
			URL:   orDefault(format.SourceURL(src), julesHomeURL),
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// fetch
func (s *Server) fetchTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("fetch",
		mcp.WithDescription("Fetch a Jules source by id as a JSON document {id, title, text, url, metadata}."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Source id or sources/... name")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleFetch
}

func (s *Server) handleFetch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	src, err := s.api.GetSource(ctx, id)
	if err != nil {
		return s.toolError("fetch", "fetching document", err, ""), nil
	}

	doc := fetchDocument{
		ID:       src.ID,
		Title:    orDefault(src.Name, src.ID),
		URL:      orDefault(format.SourceURL(src), julesHomeURL),
		Metadata: fetchMetadata{SourceType: "unknown"},
	}
	doc.Text = fmt.Sprintf("Source ID: %s\nName: %s", src.ID, src.Name)
	if r := src.GitHubRepo; r != nil {
		doc.Text += fmt.Sprintf("\nGitHub: %s/%s", r.Owner, r.Repo)
		doc.Metadata = fetchMetadata{SourceType: "github", Owner: r.Owner, Repo: r.Repo}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal document: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
