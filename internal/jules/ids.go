package jules

import "strings"

const (
	sessionPrefix = "sessions/"
	sourcePrefix  = "sources/"
)

// NormalizeSessionID accepts either a bare id or a "sessions/<id>" resource
// name and returns the bare id. Deeper paths keep only the segment after
// "sessions/". The result is stable under repeated application.
func NormalizeSessionID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, sessionPrefix) {
		return strings.TrimSpace(strings.Split(id, "/")[1])
	}
	return id
}

// SourcePath returns the resource path for a source id without doubling
// the "sources/" prefix.
func SourcePath(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, sourcePrefix) {
		return id
	}
	return sourcePrefix + id
}

// GitHubSourceName is the source resource name of a GitHub repository.
func GitHubSourceName(owner, repo string) string {
	return sourcePrefix + "github/" + owner + "/" + repo
}

// lastSegment returns the part of a resource name after its final slash.
func lastSegment(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// SessionIDFromName derives a session id from a resource name such as
// "sessions/123".
func SessionIDFromName(name string) string {
	return lastSegment(name)
}
