package transport

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/joescharf/julesmcp/internal/config"
	"github.com/joescharf/julesmcp/internal/jules"
	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

// stubAPI answers every call with a fixed fixture.
type stubAPI struct{}

var widgets = jules.Source{
	Name:       "sources/github/acme/widgets",
	ID:         "github/acme/widgets",
	GitHubRepo: &jules.GitHubRepo{Owner: "acme", Repo: "widgets"},
}

func (stubAPI) ListSources(context.Context, jules.ListSourcesParams) (*jules.SourceList, error) {
	return &jules.SourceList{Sources: []jules.Source{widgets}}, nil
}

func (stubAPI) GetSource(context.Context, string) (*jules.Source, error) {
	src := widgets
	return &src, nil
}

func (stubAPI) CreateSession(_ context.Context, req *jules.CreateSessionRequest) (*jules.Session, error) {
	return &jules.Session{ID: "s1", Name: "sessions/s1", Title: req.Title}, nil
}

func (stubAPI) ListSessions(context.Context, jules.PageParams) (*jules.SessionList, error) {
	return &jules.SessionList{}, nil
}

func (stubAPI) GetSession(_ context.Context, id string) (*jules.Session, error) {
	return &jules.Session{ID: id, Name: "sessions/" + id, State: jules.StateInProgress}, nil
}

func (stubAPI) SendMessage(context.Context, string, string) error { return nil }

func (stubAPI) GetActivity(_ context.Context, _, activityID string) (*jules.Activity, error) {
	return &jules.Activity{ID: activityID}, nil
}

func (stubAPI) ListActivities(context.Context, string, jules.PageParams) (*jules.ActivityList, error) {
	return &jules.ActivityList{}, nil
}

func (stubAPI) ApprovePlan(context.Context, string) error   { return nil }
func (stubAPI) DeleteSession(context.Context, string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		APIKey:    "test-key",
		BaseURL:   config.DefaultBaseURL,
		Transport: config.TransportDurable,
		HTTP:      config.HTTPConfig{Port: 0},
	}
}

func testTools(t *testing.T) *julesmcp.Server {
	t.Helper()
	return julesmcp.NewServer(stubAPI{}, testConfig(), julesmcp.WithVersion("1.2.3"))
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }
