// Package format renders Jules API objects as the plain text returned by
// the MCP tools.
package format

import (
	"fmt"
	"strings"

	"github.com/joescharf/julesmcp/internal/jules"
)

// Activity renders one activity. Every line starts with prefix.
func Activity(a *jules.Activity, prefix string) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, prefix+fmt.Sprintf(format, args...))
	}

	add("[%s] %s", orDefault(a.Originator, "unknown"), orDefault(a.Time(), "no timestamp"))

	if a.Description != "" {
		add("  Description: %s", a.Description)
	}

	switch a.Kind {
	case jules.KindPlanGenerated:
		add("  Plan generated:")
		var plan *jules.Plan
		if a.PlanGenerated != nil {
			plan = a.PlanGenerated.Plan
		}
		if plan != nil {
			if plan.Description != "" {
				add("  - Description: %s", plan.Description)
			}
			if len(plan.Steps) > 0 {
				add("  - Steps:")
				for i, step := range plan.Steps {
					add("    %d. %s", i+1, step.Step)
					if step.Description != "" {
						add("       %s", step.Description)
					}
				}
			}
		}
	case jules.KindPlanApproved:
		planID := ""
		if a.PlanApproved != nil {
			planID = a.PlanApproved.PlanID
		}
		add("  Plan approved (ID: %s)", orDefault(planID, "unknown"))
	case jules.KindUserMessaged:
		msg := ""
		if a.UserMessaged != nil {
			msg = a.UserMessaged.UserMessage
		}
		add("  User message: %s", msg)
	case jules.KindAgentMessaged:
		msg := ""
		if a.AgentMessaged != nil {
			msg = a.AgentMessaged.AgentMessage
		}
		add("  Agent message: %s", msg)
	case jules.KindProgressUpdated:
		var title, desc string
		if p := a.ProgressUpdated; p != nil {
			title, desc = p.Title, p.Description
		}
		if title != "" {
			add("  Progress update: %s", title)
		} else {
			add("  Progress update")
		}
		if desc != "" {
			add("    %s", desc)
		}
	case jules.KindSessionCompleted:
		add("  Session completed successfully")
	case jules.KindSessionFailed:
		add("  Session failed")
		if a.SessionFailed != nil && a.SessionFailed.Reason != "" {
			add("  Reason: %s", a.SessionFailed.Reason)
		}
	default:
		add("  Activity recorded")
	}

	if len(a.Artifacts) > 0 {
		add("  Artifacts (%d):", len(a.Artifacts))
		for i, art := range a.Artifacts {
			n := i + 1
			switch {
			case art.ChangeSet != nil:
				msg := ""
				if art.ChangeSet.GitPatch != nil {
					msg = art.ChangeSet.GitPatch.SuggestedCommitMessage
				}
				if msg != "" {
					add("    %d. Code changes: \"%s\"", n, msg)
				} else {
					add("    %d. Code changes", n)
				}
			case art.BashOutput != nil:
				add("    %d. Command output: %s", n, orDefault(art.BashOutput.Command, "unknown"))
				if art.BashOutput.ExitCode != nil {
					add("       Exit code: %d", *art.BashOutput.ExitCode)
				}
			case art.Media != nil:
				add("    %d. Media: %s", n, orDefault(art.Media.MimeType, "unknown"))
			default:
				add("    %d. Attachment", n)
			}
		}
	}

	return strings.Join(lines, "\n")
}

// Activities renders a numbered list of activities separated by blank
// lines.
func Activities(list []jules.Activity) string {
	parts := make([]string, len(list))
	for i := range list {
		parts[i] = fmt.Sprintf("%d. ", i+1) + strings.TrimPrefix(Activity(&list[i], "   "), "   ")
	}
	return strings.Join(parts, "\n\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
