package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// UI writes human-facing CLI text. Status lines go to Out, problems to
// ErrOut.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

// Stderr returns a copy that keeps every line off stdout, for commands
// whose stdout carries protocol frames.
func (u *UI) Stderr() *UI {
	c := *u
	c.Out = u.ErrOut
	return &c
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	errorPrefix   = color.New(color.FgHiRed).Sprint("✗")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  →")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	red           = color.New(color.FgHiRed).SprintFunc()
	faint         = color.New(color.Faint).SprintFunc()
)

func Cyan(s string) string   { return cyan(s) }
func Green(s string) string  { return green(s) }
func Yellow(s string) string { return yellow(s) }
func Red(s string) string    { return red(s) }

// AccessColor colors a tool access class: read-only, write or destructive.
func AccessColor(access string) string {
	switch strings.ToLower(access) {
	case "read-only":
		return green(access)
	case "write":
		return yellow(access)
	case "destructive":
		return red(access)
	default:
		return access
	}
}

func line(w io.Writer, prefix, format string, a []any) {
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

func (u *UI) Info(format string, a ...any)    { line(u.Out, infoPrefix, format, a) }
func (u *UI) Success(format string, a ...any) { line(u.Out, successPrefix, format, a) }
func (u *UI) Warning(format string, a ...any) { line(u.ErrOut, warningPrefix, format, a) }
func (u *UI) Error(format string, a ...any)   { line(u.ErrOut, errorPrefix, format, a) }

// VerboseLog prints only with --verbose.
func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		line(u.Out, verbosePrefix, format, a)
	}
}

// DryRunMsg prints only with --dry-run.
func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Setting prints one configuration key with its value and source.
func (u *UI) Setting(key string, value any, source string) {
	fmt.Fprintf(u.Out, "  %-18s %v  %s\n", key, value, faint(source))
}

// Table returns a borderless, left-aligned table writing to Out.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
