package format

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/julesmcp/internal/jules"
)

func activity(t *testing.T, body string) *jules.Activity {
	t.Helper()
	var a jules.Activity
	require.NoError(t, json.Unmarshal([]byte(body), &a))
	return &a
}

func TestActivity_PlanStepsInOrder(t *testing.T) {
	a := activity(t, `{
		"originator": "agent",
		"createTime": "2025-01-01T00:00:00Z",
		"planGenerated": {"plan": {"description": "Fix it", "steps": [
			{"step": "Read the code", "description": "look around"},
			{"step": "Write the fix"}
		]}}
	}`)

	out := Activity(a, "")
	stepLine := regexp.MustCompile(`(?m)^    \d+\. `)
	steps := stepLine.FindAllString(out, -1)
	require.Len(t, steps, 2)

	first := strings.Index(out, "1. Read the code")
	second := strings.Index(out, "2. Write the fix")
	assert.True(t, first >= 0 && second > first, out)
	assert.Contains(t, out, "[agent] 2025-01-01T00:00:00Z")
	assert.Contains(t, out, "  - Description: Fix it")
	assert.Contains(t, out, "       look around")
}

func TestActivity_Fallback(t *testing.T) {
	a := activity(t, `{"name":"sessions/1/activities/2"}`)

	out := Activity(a, "")
	assert.Equal(t, "[unknown] no timestamp\n  Activity recorded", out)
	assert.NotContains(t, out, "Plan")
	assert.NotContains(t, out, "message")
}

func TestActivity_ArtifactCount(t *testing.T) {
	a := activity(t, `{
		"agentMessaged": {"agentMessage": "done"},
		"artifacts": [
			{"changeSet": {"gitPatch": {"suggestedCommitMessage": "fix: bug"}}},
			{"bashOutput": {"command": "go test ./...", "exitCode": 0}},
			{"media": {"mimeType": "image/png"}}
		]
	}`)

	out := Activity(a, "> ")
	assert.Contains(t, out, "> [unknown] no timestamp")
	assert.Contains(t, out, "> "+"  Agent message: done")
	assert.Contains(t, out, "Artifacts (3):")
	assert.Contains(t, out, `1. Code changes: "fix: bug"`)
	assert.Contains(t, out, "2. Command output: go test ./...")
	assert.Contains(t, out, "Exit code: 0")
	assert.Contains(t, out, "3. Media: image/png")

	for _, line := range strings.Split(out, "\n") {
		assert.True(t, strings.HasPrefix(line, "> "), line)
	}
}

func TestActivity_Variants(t *testing.T) {
	tests := []struct {
		body string
		want []string
	}{
		{`{"planApproved":{}}`, []string{"Plan approved (ID: unknown)"}},
		{`{"userMessaged":{"userMessage":"hi"}}`, []string{"User message: hi"}},
		{`{"progressUpdated":{"title":"Building","description":"go build"}}`, []string{"Progress update: Building", "\n    go build"}},
		{`{"progressUpdated":{}}`, []string{"  Progress update"}},
		{`{"sessionCompleted":{}}`, []string{"Session completed successfully"}},
		{`{"sessionFailed":{"reason":"tests failed"}}`, []string{"Session failed", "Reason: tests failed"}},
		{`{"description":"note","sessionCompleted":{}}`, []string{"  Description: note"}},
	}
	for _, tt := range tests {
		out := Activity(activity(t, tt.body), "")
		for _, w := range tt.want {
			assert.Contains(t, out, w, tt.body)
		}
	}
}

func TestActivity_KindWithoutPayload(t *testing.T) {
	tests := []struct {
		kind jules.ActivityKind
		want string
	}{
		{jules.KindPlanGenerated, "Plan generated:"},
		{jules.KindPlanApproved, "Plan approved (ID: unknown)"},
		{jules.KindUserMessaged, "User message: "},
		{jules.KindAgentMessaged, "Agent message: "},
		{jules.KindProgressUpdated, "  Progress update"},
		{jules.KindSessionFailed, "Session failed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var out string
			require.NotPanics(t, func() { out = Activity(&jules.Activity{Kind: tt.kind}, "") })
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestActivities_Numbered(t *testing.T) {
	var list jules.ActivityList
	require.NoError(t, json.Unmarshal([]byte(`{"activities":[{"sessionCompleted":{}},{"userMessaged":{"userMessage":"x"}}]}`), &list))

	out := Activities(list.Activities)
	assert.True(t, strings.HasPrefix(out, "1. [unknown]"), out)
	assert.Contains(t, out, "\n\n2. [unknown]")
	assert.Contains(t, out, "     Session completed successfully")
}

func TestSourceEntry(t *testing.T) {
	s := &jules.Source{
		Name: "sources/github/o/r",
		ID:   "github/o/r",
		GitHubRepo: &jules.GitHubRepo{
			Owner: "o", Repo: "r", IsPrivate: true,
			DefaultBranch: &jules.Branch{DisplayName: "main"},
			Branches:      []jules.Branch{{DisplayName: "main"}, {DisplayName: "dev"}},
		},
	}
	out := SourceEntry(s)
	assert.Contains(t, out, "- o/r (Private)")
	assert.Contains(t, out, "Default branch: main")
	assert.Contains(t, out, "Branches: main, dev")
	assert.Contains(t, out, "Source name: sources/github/o/r")

	assert.Equal(t, "- sources/x (x)", SourceEntry(&jules.Source{Name: "sources/x", ID: "x"}))
}

func TestSourceDetail(t *testing.T) {
	out := SourceDetail(&jules.Source{Name: "n", ID: "i", GitHubRepo: &jules.GitHubRepo{Owner: "o", Repo: "r"}})
	assert.Contains(t, out, "Owner: o")
	assert.Contains(t, out, "Visibility: Public")
	assert.Contains(t, out, "Available branches: none listed")

	out = SourceDetail(&jules.Source{Name: "n", ID: "i"})
	assert.Contains(t, out, "no GitHub repository information")
}

func TestSessionEntry(t *testing.T) {
	s := &jules.Session{
		ID:    "42",
		State: jules.StateInProgress,
		Outputs: []jules.SessionOutput{
			{ChangeSet: &jules.ChangeSet{}},
			{PullRequest: &jules.PullRequest{URL: "https://github.com/o/r/pull/7"}},
		},
	}
	out := SessionEntry(3, s)
	assert.Contains(t, out, "3. Untitled")
	assert.Contains(t, out, "State: In progress")
	assert.Contains(t, out, "Created: unknown")
	assert.Contains(t, out, "PR: https://github.com/o/r/pull/7")
}

func TestSessionURL(t *testing.T) {
	assert.Equal(t, "https://jules.google.com/session/9", SessionURL(&jules.Session{ID: "9"}))
	assert.Equal(t, "u", SessionURL(&jules.Session{ID: "9", URL: "u"}))
	assert.Equal(t, "https://jules.google.com/session/s9", SessionURL(&jules.Session{Name: "sessions/s9"}))
}
