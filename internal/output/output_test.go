package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestMessages_Routing(t *testing.T) {
	tests := []struct {
		name   string
		emit   func(u *UI)
		want   string
		stderr bool
	}{
		{"info", func(u *UI) { u.Info("hello %s", "world") }, "hello world", false},
		{"success", func(u *UI) { u.Success("done %d", 42) }, "done 42", false},
		{"warning", func(u *UI) { u.Warning("careful %s", "now") }, "careful now", true},
		{"error", func(u *UI) { u.Error("failed %s", "badly") }, "failed badly", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, out, errOut := newTestUI()
			tt.emit(u)
			if tt.stderr {
				assert.Contains(t, errOut.String(), tt.want)
				assert.Empty(t, out.String())
			} else {
				assert.Contains(t, out.String(), tt.want)
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestVerboseLog(t *testing.T) {
	u, out, _ := newTestUI()
	u.VerboseLog("hidden")
	assert.Empty(t, out.String())

	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestDryRunMsg(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRunMsg("would create %s", "file")
	assert.Empty(t, errOut.String())

	u.DryRun = true
	u.DryRunMsg("would create %s", "file")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would create file")
}

func TestStderr_KeepsStdoutClean(t *testing.T) {
	u, out, errOut := newTestUI()
	u.Verbose = true

	s := u.Stderr()
	s.Info("serving")
	s.VerboseLog("detail")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "serving")
	assert.Contains(t, errOut.String(), "detail")
	assert.Same(t, out, u.Out, "original UI is unchanged")
}

func TestColorHelpers(t *testing.T) {
	for _, f := range []func(string) string{Cyan, Green, Yellow, Red} {
		assert.Contains(t, f("test"), "test")
	}
}

func TestAccessColor(t *testing.T) {
	assert.Contains(t, AccessColor("read-only"), "read-only")
	assert.Contains(t, AccessColor("write"), "write")
	assert.Contains(t, AccessColor("destructive"), "destructive")
	assert.Equal(t, "other", AccessColor("other"))
}

func TestSetting(t *testing.T) {
	u, out, _ := newTestUI()
	u.Setting("transport", "stdio", "(default)")
	assert.Contains(t, out.String(), "transport")
	assert.Contains(t, out.String(), "stdio")
	assert.Contains(t, out.String(), "(default)")
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Tool", "Access"})
	require.NotNil(t, table)

	require.NoError(t, table.Append([]string{"jules_list_sources", "read-only"}))
	require.NoError(t, table.Append([]string{"jules_delete_session", "destructive"}))
	require.NoError(t, table.Render())

	result := out.String()
	assert.Contains(t, result, "jules_list_sources")
	assert.Contains(t, result, "jules_delete_session")
}
