package format

import (
	"fmt"
	"strings"

	"github.com/joescharf/julesmcp/internal/jules"
)

func visibility(r *jules.GitHubRepo) string {
	if r.IsPrivate {
		return "Private"
	}
	return "Public"
}

func branchNames(r *jules.GitHubRepo) string {
	if len(r.Branches) == 0 {
		return "none listed"
	}
	names := make([]string, len(r.Branches))
	for i, b := range r.Branches {
		names[i] = b.DisplayName
	}
	return strings.Join(names, ", ")
}

func defaultBranch(r *jules.GitHubRepo) string {
	if r.DefaultBranch == nil || r.DefaultBranch.DisplayName == "" {
		return "unknown"
	}
	return r.DefaultBranch.DisplayName
}

// SourceEntry renders one source as a list item.
func SourceEntry(s *jules.Source) string {
	r := s.GitHubRepo
	if r == nil {
		return fmt.Sprintf("- %s (%s)", s.Name, s.ID)
	}
	return fmt.Sprintf("- %s/%s (%s)\n  Default branch: %s\n  Branches: %s\n  Source name: %s",
		r.Owner, r.Repo, visibility(r), defaultBranch(r), branchNames(r), s.Name)
}

// SourceDetail renders a single source for get-source.
func SourceDetail(s *jules.Source) string {
	r := s.GitHubRepo
	if r == nil {
		return fmt.Sprintf("Source found but no GitHub repository information available.\n\nSource ID: %s\nSource name: %s",
			s.ID, s.Name)
	}

	var b strings.Builder
	b.WriteString("GitHub Repository Source:\n\n")
	fmt.Fprintf(&b, "Owner: %s\n", r.Owner)
	fmt.Fprintf(&b, "Repository: %s\n", r.Repo)
	fmt.Fprintf(&b, "Visibility: %s\n", visibility(r))
	fmt.Fprintf(&b, "Default branch: %s\n", defaultBranch(r))
	fmt.Fprintf(&b, "Available branches: %s\n\n", branchNames(r))
	fmt.Fprintf(&b, "Source ID: %s\n", s.ID)
	fmt.Fprintf(&b, "Source name: %s", s.Name)
	return b.String()
}

// SourceURL is the browsable URL of a GitHub-backed source, or "" when
// the source carries no repository.
func SourceURL(s *jules.Source) string {
	if s.GitHubRepo == nil {
		return ""
	}
	return "https://github.com/" + s.GitHubRepo.Owner + "/" + s.GitHubRepo.Repo
}
