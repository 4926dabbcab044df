package mcp

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/joescharf/julesmcp/internal/format"
	"github.com/joescharf/julesmcp/internal/jules"
)

const titlePromptChars = 50

// jules_create_session
func (s *Server) createSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_create_session",
		mcp.WithDescription("Start a new asynchronous coding task with Jules. Provide a detailed task description and the repository to work on. Jules runs in an isolated cloud VM and typically completes tasks in 5-60 minutes depending on complexity."),
		mcp.WithString("repoOwner", mcp.Required(), mcp.Description("GitHub repository owner (username or organization)")),
		mcp.WithString("repoName", mcp.Required(), mcp.Description("GitHub repository name")),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Detailed task description - be specific about what needs to be done")),
		mcp.WithString("branch", mcp.DefaultString("main"), mcp.Description("Starting branch name")),
		mcp.WithString("automationMode",
			mcp.Enum(string(jules.AutomationModeUnspecified), string(jules.AutomationModeAutoCreatePR)),
			mcp.Description("Explicit automation mode. AUTOMATION_MODE_UNSPECIFIED disables automatic pull requests.")),
		mcp.WithBoolean("autoApprove", mcp.DefaultBool(true), mcp.Description("Automatically approve the execution plan. Set false to approve manually with jules_approve_plan")),
		mcp.WithBoolean("autoCreatePR", mcp.DefaultBool(true), mcp.Description("Automatically create a pull request when the task completes")),
		mcp.WithString("title", mcp.Description("Optional custom title for the session")),
		mcp.WithDestructiveHintAnnotation(false),
	)
	return tool, s.handleCreateSession
}

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	owner, err := request.RequireString("repoOwner")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repo, err := request.RequireString("repoName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch := request.GetString("branch", "main")
	autoApprove := request.GetBool("autoApprove", true)
	autoCreatePR := request.GetBool("autoCreatePR", true)
	explicit := jules.AutomationMode(request.GetString("automationMode", ""))

	title := request.GetString("title", "")
	if title == "" {
		title = repo + ": " + truncate(prompt, titlePromptChars)
	}

	fullPrompt := prompt
	if s.cfg != nil && s.cfg.PromptPrefix != "" {
		fullPrompt = s.cfg.PromptPrefix + "\n\n" + prompt
	}

	req := &jules.CreateSessionRequest{
		Prompt: fullPrompt,
		SourceContext: jules.SourceContext{
			Source:            jules.GitHubSourceName(owner, repo),
			GitHubRepoContext: &jules.GitHubRepoContext{StartingBranch: branch},
		},
		Title:               title,
		RequirePlanApproval: !autoApprove,
		AutomationMode:      jules.ResolveAutomationMode(explicit, autoCreatePR),
	}

	session, err := s.api.CreateSession(ctx, req)
	if err != nil {
		return s.toolError("jules_create_session", "creating session", err,
			"Common issues:\n- Repository not connected to Jules (run jules_list_sources)\n- Invalid repository owner/name\n- Branch does not exist"), nil
	}

	id := session.ID
	if id == "" {
		id = jules.SessionIDFromName(session.Name)
	}

	automation := "none (no automatic pull request)"
	if req.AutomationMode != "" {
		automation = string(req.AutomationMode)
	}
	approval := "automatic"
	if !autoApprove {
		approval = "manual"
	}

	var b strings.Builder
	b.WriteString("Session created successfully!\n\n")
	fmt.Fprintf(&b, "Session ID: %s\n", id)
	fmt.Fprintf(&b, "Title: %s\n", orDefault(session.Title, title))
	fmt.Fprintf(&b, "Repository: %s/%s\n", owner, repo)
	fmt.Fprintf(&b, "Branch: %s\n", branch)
	fmt.Fprintf(&b, "State: %s\n", stateText(session.State))
	fmt.Fprintf(&b, "Automation: %s\n", automation)
	fmt.Fprintf(&b, "Plan approval: %s\n", approval)
	if !autoApprove {
		b.WriteString("\nThe plan must be approved with jules_approve_plan before Jules starts coding.\n")
	}
	b.WriteString("\nJules is now working asynchronously in an isolated cloud VM.\n")
	fmt.Fprintf(&b, "Use jules_get_status with session ID %q to check progress.", id)
	return mcp.NewToolResultText(b.String()), nil
}

// jules_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_list_sessions",
		mcp.WithDescription("List your Jules sessions with their current states. Useful for finding session IDs or checking on multiple tasks."),
		mcp.WithNumber("pageSize", mcp.DefaultNumber(10), mcp.Description("Number of sessions per page")),
		mcp.WithString("pageToken", mcp.Description("Token for pagination to get next page")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.api.ListSessions(ctx, jules.PageParams{
		PageSize:  request.GetInt("pageSize", 10),
		PageToken: request.GetString("pageToken", ""),
	})
	if err != nil {
		return s.toolError("jules_list_sessions", "listing sessions", err, ""), nil
	}

	if len(list.Sessions) == 0 {
		return mcp.NewToolResultText("No sessions found. Create one with jules_create_session."), nil
	}

	entries := make([]string, len(list.Sessions))
	for i := range list.Sessions {
		entries[i] = format.SessionEntry(i+1, &list.Sessions[i])
	}

	text := fmt.Sprintf("Your Jules sessions (%d):\n\n%s", len(list.Sessions), strings.Join(entries, "\n\n"))
	if list.NextPageToken != "" {
		text += "\n\nMore results available. Use pageToken: " + list.NextPageToken
	}
	return mcp.NewToolResultText(text), nil
}

// jules_get_status
func (s *Server) getStatusTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_get_status",
		mcp.WithDescription("Check the current status and recent activity of a Jules session. Use this to poll for progress and completion. Sessions typically take 5-60 minutes to complete."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID (bare id or sessions/<id>)")),
		mcp.WithNumber("includeActivities", mcp.DefaultNumber(3), mcp.Description("Number of recent activities to include")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleGetStatus
}

func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := request.GetInt("includeActivities", 3)

	var (
		session    *jules.Session
		activities []jules.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.api.GetSession(gctx, id)
		return err
	})
	if n > 0 {
		g.Go(func() error {
			list, err := s.api.ListActivities(gctx, id, jules.PageParams{PageSize: n})
			if err != nil {
				return err
			}
			activities = list.Activities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.toolError("jules_get_status", "getting session status", err, ""), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", orDefault(session.Title, "Untitled"))
	fmt.Fprintf(&b, "ID: %s\n", orDefault(session.ID, id))
	fmt.Fprintf(&b, "State: %s\n", stateText(session.State))
	fmt.Fprintf(&b, "Prompt: %s\n", session.Prompt)
	fmt.Fprintf(&b, "URL: %s\n", format.SessionURL(session))

	if pr := session.PullRequest(); pr != nil {
		b.WriteString("\nPull Request:\n")
		b.WriteString(format.PullRequest(pr, "  "))
	}

	switch {
	case n <= 0:
	case len(activities) > 0:
		if len(activities) > n {
			activities = activities[:n]
		}
		fmt.Fprintf(&b, "\nRecent activity (%d):\n\n", len(activities))
		b.WriteString(format.Activities(activities))
	default:
		b.WriteString("\nNo activities yet - the session is starting up.")
	}

	if guide := statusGuidance(session.State); guide != "" {
		b.WriteString("\n\n" + guide)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// statusGuidance tells the caller what to do next for a state.
func statusGuidance(state jules.SessionState) string {
	switch {
	case state == jules.StateAwaitingPlanApproval:
		return "Session is awaiting plan approval. Review the plan with jules_list_activities, then call jules_approve_plan to proceed."
	case jules.RequiresUserAction(state):
		return "Jules is waiting for your feedback. Reply with jules_send_message."
	case jules.IsActiveState(state):
		return "Session still running. Poll again in 10-30 seconds for updates."
	case state == jules.StateCompleted:
		return "Session complete! Use jules_get_session_output for the results."
	case jules.IsTerminalState(state):
		return "Session ended without completing. Use jules_list_activities to see what happened."
	default:
		return ""
	}
}

// jules_send_message
func (s *Server) sendMessageTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_send_message",
		mcp.WithDescription("Send a follow-up message or instruction to a running Jules session. Jules will respond in the next activity, which you can see with jules_list_activities or jules_get_status."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID to send the message to")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message or instruction to send to Jules")),
		mcp.WithDestructiveHintAnnotation(false),
	)
	return tool, s.handleSendMessage
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.api.SendMessage(ctx, id, msg); err != nil {
		return s.toolError("jules_send_message", "sending message", err, ""), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message sent successfully to session %s.\n\n"+
		"Jules will respond in the next activity. Use jules_list_activities or jules_get_status to see the response.", id)), nil
}

// jules_approve_plan
func (s *Server) approvePlanTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_approve_plan",
		mcp.WithDescription("Approve the execution plan of a session that was created with autoApprove=false and is awaiting plan approval."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID whose plan should be approved")),
		mcp.WithDestructiveHintAnnotation(false),
	)
	return tool, s.handleApprovePlan
}

func (s *Server) handleApprovePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.api.ApprovePlan(ctx, id); err != nil {
		return s.toolError("jules_approve_plan", "approving plan", err,
			"Note: this only works for sessions created with autoApprove=false that are in state AWAITING_PLAN_APPROVAL."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Plan approved for session %s.\n\n"+
		"Jules will now execute the task. Use jules_get_status to monitor progress.", id)), nil
}

// jules_get_session_output
func (s *Server) getSessionOutputTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_get_session_output",
		mcp.WithDescription("Get the results of a completed session, including the pull request and suggested commit message."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID of a completed session")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleGetSessionOutput
}

func (s *Server) handleGetSessionOutput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := s.api.GetSession(ctx, id)
	if err != nil {
		return s.toolError("jules_get_session_output", "getting session output", err, ""), nil
	}

	if session.State != jules.StateCompleted {
		return mcp.NewToolResultText(fmt.Sprintf("Session %s is not yet completed.\n\n"+
			"Current state: %s\n\n"+
			"Use jules_get_status to monitor progress until the state is COMPLETED.", id, stateText(session.State))), nil
	}

	pr := session.PullRequest()
	commitMsg := ""
	if cs := session.ChangeSet(); cs != nil && cs.GitPatch != nil {
		commitMsg = cs.GitPatch.SuggestedCommitMessage
	}

	var b strings.Builder
	if pr == nil {
		b.WriteString("Session completed but no pull request was created.\n\n")
		fmt.Fprintf(&b, "Title: %s\n", orDefault(session.Title, "Untitled"))
		fmt.Fprintf(&b, "Prompt: %s\n", session.Prompt)
		fmt.Fprintf(&b, "Outputs: %d\n", len(session.Outputs))
		fmt.Fprintf(&b, "Session URL: %s\n", format.SessionURL(session))
		if commitMsg != "" {
			fmt.Fprintf(&b, "Suggested commit message: %s\n", commitMsg)
		}
		b.WriteString("\nThis may be expected if the task didn't require code changes, " +
			"or if automationMode was not set to AUTO_CREATE_PR.")
		return mcp.NewToolResultText(b.String()), nil
	}

	b.WriteString("Session Output:\n\n")
	fmt.Fprintf(&b, "Session: %s\n", orDefault(session.Title, "Untitled"))
	fmt.Fprintf(&b, "State: %s\n\n", stateText(session.State))
	b.WriteString("Pull Request:\n")
	b.WriteString(format.PullRequest(pr, "  "))
	if commitMsg != "" {
		fmt.Fprintf(&b, "\nSuggested commit message: %s\n", commitMsg)
	}
	b.WriteString("\nVisit the PR URL to review changes and merge when ready.")
	return mcp.NewToolResultText(b.String()), nil
}

// jules_delete_session
func (s *Server) deleteSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_delete_session",
		mcp.WithDescription("Permanently delete a Jules session. This cannot be undone."),
		mcp.WithString("sessionId", mcp.Required(), mcp.Description("Session ID to delete")),
		mcp.WithDestructiveHintAnnotation(true),
	)
	return tool, s.handleDeleteSession
}

func (s *Server) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionIDArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.api.DeleteSession(ctx, id); err != nil {
		return s.toolError("jules_delete_session", "deleting session", err, ""), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted permanently.", id)), nil
}

// stateText renders "Label (RAW)" for known states and the raw value
// otherwise.
func stateText(state jules.SessionState) string {
	label := state.Label()
	if label == string(state) {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, state)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
