package jules

// SessionState is the upstream lifecycle state of a session.
type SessionState string

const (
	StateUnspecified          SessionState = "STATE_UNSPECIFIED"
	StateQueued               SessionState = "QUEUED"
	StatePlanning             SessionState = "PLANNING"
	StateAwaitingPlanApproval SessionState = "AWAITING_PLAN_APPROVAL"
	StateAwaitingUserFeedback SessionState = "AWAITING_USER_FEEDBACK"
	StateInProgress           SessionState = "IN_PROGRESS"
	StatePaused               SessionState = "PAUSED"
	StateCompleted            SessionState = "COMPLETED"
	StateFailed               SessionState = "FAILED"
	StateCancelled            SessionState = "CANCELLED"
)

type stateClass int

const (
	classNone stateClass = iota
	classActive
	classNeedsUser
	classTerminal
)

type stateEntry struct {
	label string
	class stateClass
}

// stateInfo is the single source for labels and classification.
var stateInfo = map[SessionState]stateEntry{
	StateUnspecified:          {"Unspecified", classNone},
	StateQueued:               {"Queued", classActive},
	StatePlanning:             {"Planning", classActive},
	StateAwaitingPlanApproval: {"Awaiting plan approval", classNeedsUser},
	StateAwaitingUserFeedback: {"Awaiting user feedback", classNeedsUser},
	StateInProgress:           {"In progress", classActive},
	StatePaused:               {"Paused", classNone},
	StateCompleted:            {"Completed", classTerminal},
	StateFailed:               {"Failed", classTerminal},
	StateCancelled:            {"Cancelled", classTerminal},
}

// AllStates returns every known state in lifecycle order.
func AllStates() []SessionState {
	return []SessionState{
		StateUnspecified,
		StateQueued,
		StatePlanning,
		StateAwaitingPlanApproval,
		StateAwaitingUserFeedback,
		StateInProgress,
		StatePaused,
		StateCompleted,
		StateFailed,
		StateCancelled,
	}
}

// TranslateState returns the display label of state, or state itself when
// it is not a known value.
func TranslateState(state string) string {
	if e, ok := stateInfo[SessionState(state)]; ok {
		return e.label
	}
	return state
}

// Label is TranslateState for a typed state.
func (s SessionState) Label() string { return TranslateState(string(s)) }

// IsActiveState reports whether the agent is still working.
func IsActiveState(state SessionState) bool { return stateInfo[state].class == classActive }

// RequiresUserAction reports whether the session waits on the user.
func RequiresUserAction(state SessionState) bool { return stateInfo[state].class == classNeedsUser }

// IsTerminalState reports whether the session has finished for good.
func IsTerminalState(state SessionState) bool { return stateInfo[state].class == classTerminal }
