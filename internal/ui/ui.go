package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/protocol"
)

// Output is where status lines go. Colors are dropped automatically when it
// is not a terminal.
var Output io.Writer = color.Error

var (
	boldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	cyan      = color.New(color.FgCyan).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	white     = color.New(color.FgHiWhite).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

// Banner prints the startup banner.
//
//	 tea v0.1.0
func Banner(version string) {
	fmt.Fprintf(Output, "\n  %s %s\n", boldCyan("tea"), dim("v"+version))
}

// KeyValue prints a labeled line:  ▸ label  value
func KeyValue(label, value string) {
	fmt.Fprintf(Output, "  %s %-11s %s\n", cyan("▸"), dim(label), white(value))
}

// Info prints an info line:  ● message
func Info(format string, a ...any) {
	fmt.Fprintf(Output, "  %s %s\n", cyan("●"), fmt.Sprintf(format, a...))
}

// Success prints a success line:  ✔ message
func Success(format string, a ...any) {
	fmt.Fprintf(Output, "  %s %s\n", green("✔"), fmt.Sprintf(format, a...))
}

// Warn prints a warning line:  ▲ message
func Warn(format string, a ...any) {
	fmt.Fprintf(Output, "  %s %s\n", yellow("▲"), fmt.Sprintf(format, a...))
}

// Error prints an error line:  ✖ message
func Error(format string, a ...any) {
	fmt.Fprintf(Output, "  %s %s\n", red("✖"), fmt.Sprintf(format, a...))
}

// Separator prints a dim horizontal line.
func Separator() {
	fmt.Fprintf(Output, "  %s\n", dim(strings.Repeat("─", 48)))
}

// Dim wraps text in dim style (for use in other formatted output).
func Dim(text string) string {
	return dim(text)
}

// State prints a controller state:
//
//	 ● Sleep     prevented
//	 ▸ Screen    KeepScreenOn
func State(st protocol.StatePayload) {
	sleep := dim("allowed")
	if st.Awake {
		sleep = boldGreen("prevented")
	}
	fmt.Fprintf(Output, "  %s %-11s %s\n", cyan("●"), dim("Sleep"), sleep)
	KeyValue("Screen", describeMode(st.Mode))
	if !st.AllowScreenOffSupported {
		KeyValue("Platform", "AllowScreenOff unavailable")
	}
	fmt.Fprintf(Output, "  %s\n", dim(st.Tooltip))
}

func describeMode(m power.ScreenMode) string {
	if m.ShouldKeepDisplayOn() {
		return "on (" + m.String() + ")"
	}
	return "may sleep (" + m.String() + ")"
}

// NoColor disables colored output.
func NoColor() {
	color.NoColor = true
}
