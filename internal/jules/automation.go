package jules

// AutomationMode controls whether a pull request is opened on completion.
type AutomationMode string

const (
	AutomationModeUnspecified  AutomationMode = "AUTOMATION_MODE_UNSPECIFIED"
	AutomationModeAutoCreatePR AutomationMode = "AUTO_CREATE_PR"
)

// ResolveAutomationMode combines the explicit mode with the legacy
// autoCreatePR flag. An empty explicit mode means the caller did not pick
// one. The unspecified sentinel is an explicit opt-out and yields "".
// Otherwise PR creation is on unless the legacy flag is false.
func ResolveAutomationMode(explicit AutomationMode, autoCreatePR bool) AutomationMode {
	if explicit == AutomationModeUnspecified {
		return ""
	}
	if explicit == AutomationModeAutoCreatePR || autoCreatePR {
		return AutomationModeAutoCreatePR
	}
	return ""
}
