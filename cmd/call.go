package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	julesmcp "github.com/joescharf/julesmcp/internal/mcp"
)

var callJSON bool

// errToolFailed makes the process exit non-zero after the result is printed.
var errToolFailed = errors.New("tool reported an error")

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-args]",
	Short: "Invoke one tool and print its result",
	Long: `Invoke a single tool with JSON arguments and print the text it returns.

Example:
  julesmcp call jules_get_status '{"sessionId":"1234567890"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, tools, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		raw := ""
		if len(args) == 2 {
			raw = args[1]
		}
		return callRun(cmd.Context(), tools, ui.Out, args[0], raw)
	},
}

func init() {
	callCmd.Flags().BoolVar(&callJSON, "json", false, "Print the raw result envelope as JSON")
	rootCmd.AddCommand(callCmd)
}

func callRun(ctx context.Context, tools *julesmcp.Server, out io.Writer, name, rawArgs string) error {
	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return fmt.Errorf("parse arguments: %w", err)
		}
	}

	if dryRun {
		ui.DryRunMsg("Would call %s with %v", name, args)
		return nil
	}

	res, err := tools.Call(ctx, name, args)
	if err != nil {
		return err
	}

	if callJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		for _, c := range res.Content {
			if text, ok := c.(mcp.TextContent); ok {
				fmt.Fprintln(out, text.Text)
			}
		}
	}

	if res.IsError {
		return errToolFailed
	}
	return nil
}
