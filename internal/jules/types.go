package jules

import "encoding/json"

// Branch is a GitHub branch reference.
type Branch struct {
	DisplayName string `json:"displayName"`
}

// GitHubRepo describes the repository behind a source.
type GitHubRepo struct {
	Owner         string   `json:"owner"`
	Repo          string   `json:"repo"`
	IsPrivate     bool     `json:"isPrivate,omitempty"`
	DefaultBranch *Branch  `json:"defaultBranch,omitempty"`
	Branches      []Branch `json:"branches,omitempty"`
}

// Source is a repository connected to Jules.
type Source struct {
	Name       string      `json:"name"`
	ID         string      `json:"id"`
	GitHubRepo *GitHubRepo `json:"githubRepo,omitempty"`
}

// SourceList is one page of sources.
type SourceList struct {
	Sources       []Source `json:"sources,omitempty"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// GitHubRepoContext selects the starting branch of a session.
type GitHubRepoContext struct {
	StartingBranch string `json:"startingBranch,omitempty"`
}

// SourceContext binds a session to a source.
type SourceContext struct {
	Source            string             `json:"source"`
	GitHubRepoContext *GitHubRepoContext `json:"githubRepoContext,omitempty"`
}

// PullRequest is a pull request opened by a session.
type PullRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Number      int    `json:"number,omitempty"`
	BaseRef     string `json:"baseRef,omitempty"`
	HeadRef     string `json:"headRef,omitempty"`
}

// GitPatch is a unified diff produced by the agent.
type GitPatch struct {
	UnidiffPatch           string `json:"unidiffPatch,omitempty"`
	BaseCommitID           string `json:"baseCommitId,omitempty"`
	SuggestedCommitMessage string `json:"suggestedCommitMessage,omitempty"`
}

// ChangeSet groups a patch with the source it applies to.
type ChangeSet struct {
	Source   string    `json:"source,omitempty"`
	GitPatch *GitPatch `json:"gitPatch,omitempty"`
}

// SessionOutput is one result entry of a session.
type SessionOutput struct {
	PullRequest *PullRequest `json:"pullRequest,omitempty"`
	ChangeSet   *ChangeSet   `json:"changeSet,omitempty"`
}

// Session is one asynchronous unit of agent work.
type Session struct {
	Name                string          `json:"name,omitempty"`
	ID                  string          `json:"id"`
	Title               string          `json:"title,omitempty"`
	Prompt              string          `json:"prompt"`
	State               SessionState    `json:"state"`
	URL                 string          `json:"url,omitempty"`
	SourceContext       *SourceContext  `json:"sourceContext,omitempty"`
	CreateTime          string          `json:"createTime,omitempty"`
	UpdateTime          string          `json:"updateTime,omitempty"`
	Outputs             []SessionOutput `json:"outputs,omitempty"`
	RequirePlanApproval bool            `json:"requirePlanApproval,omitempty"`
	AutomationMode      AutomationMode  `json:"automationMode,omitempty"`
}

// PullRequest returns the first pull request found across all outputs.
func (s *Session) PullRequest() *PullRequest {
	for _, o := range s.Outputs {
		if o.PullRequest != nil {
			return o.PullRequest
		}
	}
	return nil
}

// ChangeSet returns the first change set found across all outputs.
func (s *Session) ChangeSet() *ChangeSet {
	for _, o := range s.Outputs {
		if o.ChangeSet != nil {
			return o.ChangeSet
		}
	}
	return nil
}

// SessionList is one page of sessions.
type SessionList struct {
	Sessions      []Session `json:"sessions,omitempty"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Prompt              string         `json:"prompt"`
	SourceContext       SourceContext  `json:"sourceContext"`
	Title               string         `json:"title,omitempty"`
	RequirePlanApproval bool           `json:"requirePlanApproval,omitempty"`
	AutomationMode      AutomationMode `json:"automationMode,omitempty"`
}

// SendMessageRequest is the body of POST /sessions/{id}:sendMessage.
type SendMessageRequest struct {
	Prompt string `json:"prompt"`
}

// BashOutput is a command run by the agent.
type BashOutput struct {
	Command  string `json:"command,omitempty"`
	Output   string `json:"output,omitempty"`
	ExitCode *int   `json:"exitCode,omitempty"`
}

// Media is an inline media attachment.
type Media struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Artifact is an attachment on an activity.
type Artifact struct {
	ChangeSet  *ChangeSet  `json:"changeSet,omitempty"`
	BashOutput *BashOutput `json:"bashOutput,omitempty"`
	Media      *Media      `json:"media,omitempty"`
}

// PlanStep is one step of a generated plan.
type PlanStep struct {
	Step        string `json:"step"`
	Description string `json:"description,omitempty"`
}

// Plan is the execution plan proposed by the agent.
type Plan struct {
	Steps       []PlanStep `json:"steps,omitempty"`
	Description string     `json:"description,omitempty"`
}

type PlanGenerated struct {
	Plan *Plan `json:"plan,omitempty"`
}

type PlanApproved struct {
	PlanID string `json:"planId,omitempty"`
}

type UserMessaged struct {
	UserMessage string `json:"userMessage,omitempty"`
}

type AgentMessaged struct {
	AgentMessage string `json:"agentMessage,omitempty"`
}

type ProgressUpdated struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type SessionCompleted struct{}

type SessionFailed struct {
	Reason string `json:"reason,omitempty"`
}

// ActivityKind says which payload an activity carries.
type ActivityKind string

const (
	KindUnknown          ActivityKind = ""
	KindPlanGenerated    ActivityKind = "planGenerated"
	KindPlanApproved     ActivityKind = "planApproved"
	KindUserMessaged     ActivityKind = "userMessaged"
	KindAgentMessaged    ActivityKind = "agentMessaged"
	KindProgressUpdated  ActivityKind = "progressUpdated"
	KindSessionCompleted ActivityKind = "sessionCompleted"
	KindSessionFailed    ActivityKind = "sessionFailed"
)

// Activity is a single event in a session timeline. Kind is set once at
// decode time from whichever payload is present.
type Activity struct {
	Name        string     `json:"name"`
	ID          string     `json:"id,omitempty"`
	Timestamp   string     `json:"timestamp,omitempty"`
	CreateTime  string     `json:"createTime,omitempty"`
	Originator  string     `json:"originator,omitempty"`
	Description string     `json:"description,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`

	PlanGenerated    *PlanGenerated    `json:"planGenerated,omitempty"`
	PlanApproved     *PlanApproved     `json:"planApproved,omitempty"`
	UserMessaged     *UserMessaged     `json:"userMessaged,omitempty"`
	AgentMessaged    *AgentMessaged    `json:"agentMessaged,omitempty"`
	ProgressUpdated  *ProgressUpdated  `json:"progressUpdated,omitempty"`
	SessionCompleted *SessionCompleted `json:"sessionCompleted,omitempty"`
	SessionFailed    *SessionFailed    `json:"sessionFailed,omitempty"`

	Kind ActivityKind `json:"-"`
}

// UnmarshalJSON decodes the activity and fixes its Kind.
func (a *Activity) UnmarshalJSON(data []byte) error {
	type plain Activity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Activity(p)
	a.Kind = a.classify()
	return nil
}

// classify applies the payload precedence order.
func (a *Activity) classify() ActivityKind {
	switch {
	case a.PlanGenerated != nil:
		return KindPlanGenerated
	case a.PlanApproved != nil:
		return KindPlanApproved
	case a.UserMessaged != nil:
		return KindUserMessaged
	case a.AgentMessaged != nil:
		return KindAgentMessaged
	case a.ProgressUpdated != nil:
		return KindProgressUpdated
	case a.SessionCompleted != nil:
		return KindSessionCompleted
	case a.SessionFailed != nil:
		return KindSessionFailed
	default:
		return KindUnknown
	}
}

// Time returns createTime, falling back to timestamp.
func (a *Activity) Time() string {
	if a.CreateTime != "" {
		return a.CreateTime
	}
	return a.Timestamp
}

// ActivityList is one page of activities.
type ActivityList struct {
	Activities    []Activity `json:"activities,omitempty"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// ListSourcesParams are the optional query parameters of GET /sources.
type ListSourcesParams struct {
	PageSize  int
	PageToken string
	Filter    string
}

// PageParams are the pagination query parameters shared by list calls.
type PageParams struct {
	PageSize  int
	PageToken string
}
