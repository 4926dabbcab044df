package jules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveAutomationMode(t *testing.T) {
	tests := []struct {
		name         string
		explicit     AutomationMode
		autoCreatePR bool
		want         AutomationMode
	}{
		{"unspecified wins over legacy true", AutomationModeUnspecified, true, ""},
		{"unspecified wins over legacy false", AutomationModeUnspecified, false, ""},
		{"explicit create wins over legacy false", AutomationModeAutoCreatePR, false, AutomationModeAutoCreatePR},
		{"default is create", "", true, AutomationModeAutoCreatePR},
		{"legacy false opts out", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAutomationMode(tt.explicit, tt.autoCreatePR))
		})
	}
}
