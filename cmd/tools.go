package cmd

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
	"github.com/joescharf/julesmcp/internal/output"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered MCP tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Listing needs no credential.
		tools := julesmcp.NewServer(nil, nil, julesmcp.WithVersion(buildVersion))
		return toolsRun(tools)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func toolsRun(tools *julesmcp.Server) error {
	table := ui.Table([]string{"Tool", "Access", "Description"})
	for _, st := range tools.Tools() {
		desc := st.Tool.Description
		if !verbose && len(desc) > 72 {
			desc = desc[:69] + "..."
		}
		if err := table.Append([]string{st.Tool.Name, accessColumn(st.Tool), desc}); err != nil {
			return err
		}
	}
	return table.Render()
}

func accessColumn(t mcp.Tool) string {
	a := t.Annotations
	switch {
	case a.ReadOnlyHint != nil && *a.ReadOnlyHint:
		return output.AccessColor("read-only")
	case a.DestructiveHint != nil && *a.DestructiveHint:
		return output.AccessColor("destructive")
	default:
		return output.AccessColor("write")
	}
}
