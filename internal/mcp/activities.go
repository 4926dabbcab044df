package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/julesmcp/internal/format"
	"github.com/joescharf/julesmcp/internal/jules"
)

// jules_get_activity
func (s *Server) getActivityTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_get_activity",
		mcp.WithDescription("Get a single activity of a Jules session, including its plan, messages and artifacts."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID the activity belongs to")),
		mcp.WithString("activityId", mcp.Required(), mcp.Description("Activity ID")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleGetActivity
}

func (s *Server) handleGetActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	activityID, err := request.RequireString("activityId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a, err := s.api.GetActivity(ctx, id, activityID)
	if err != nil {
		return s.toolError("jules_get_activity", "getting activity", err, ""), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Activity %s of session %s:\n\n%s", activityID, id, format.Activity(a, ""))), nil
}

// jules_list_activities
func (s *Server) listActivitiesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_list_activities",
		mcp.WithDescription("Get the activity log of a Jules session. Activities include plan generation, progress updates, messages, and completion events."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID to get activities for")),
		mcp.WithNumber("limit", mcp.DefaultNumber(10), mcp.Description("Number of activities to retrieve")),
		mcp.WithString("pageToken", mcp.Description("Token for pagination to get next page")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleListActivities
}

func (s *Server) handleListActivities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := s.api.ListActivities(ctx, id, jules.PageParams{
		PageSize:  request.GetInt("limit", 10),
		PageToken: request.GetString("pageToken", ""),
	})
	if err != nil {
		return s.toolError("jules_list_activities", "listing activities", err, ""), nil
	}

	if len(list.Activities) == 0 {
		return mcp.NewToolResultText("No activities found for this session. The session may be just starting."), nil
	}

	text := fmt.Sprintf("Activities for session %s (%d):\n\n%s", id, len(list.Activities), format.Activities(list.Activities))
	if list.NextPageToken != "" {
		text += "\n\nMore activities available. Use pageToken: " + list.NextPageToken
	}
	return mcp.NewToolResultText(text), nil
}
