package format

import (
	"fmt"
	"strings"

	"github.com/joescharf/julesmcp/internal/jules"
)

const sessionWebURL = "https://jules.google.com/session/"

// SessionEntry renders one session as the n-th list item.
func SessionEntry(n int, s *jules.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", n, orDefault(s.Title, "Untitled"))
	fmt.Fprintf(&b, "   ID: %s\n", s.ID)
	fmt.Fprintf(&b, "   State: %s\n", s.State.Label())
	fmt.Fprintf(&b, "   Created: %s", orDefault(s.CreateTime, "unknown"))
	if pr := s.PullRequest(); pr != nil {
		fmt.Fprintf(&b, "\n   PR: %s", pr.URL)
	}
	return b.String()
}

// SessionURL returns the web URL of a session, falling back to the
// canonical Jules URL built from its id or, failing that, its name.
func SessionURL(s *jules.Session) string {
	if s.URL != "" {
		return s.URL
	}
	id := s.ID
	if id == "" {
		id = jules.SessionIDFromName(s.Name)
	}
	return sessionWebURL + id
}

// PullRequest renders the pull request block used by status and output
// reports.
func PullRequest(pr *jules.PullRequest, indent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sURL: %s\n", indent, pr.URL)
	fmt.Fprintf(&b, "%sTitle: %s\n", indent, pr.Title)
	if pr.Number > 0 {
		fmt.Fprintf(&b, "%sNumber: #%d\n", indent, pr.Number)
	}
	if pr.HeadRef != "" || pr.BaseRef != "" {
		fmt.Fprintf(&b, "%sBranch: %s -> %s\n", indent, orDefault(pr.HeadRef, "?"), orDefault(pr.BaseRef, "?"))
	}
	if pr.Description != "" {
		fmt.Fprintf(&b, "%sDescription: %s\n", indent, pr.Description)
	}
	return b.String()
}
