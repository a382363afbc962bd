// Package render formats dsm results for the terminal and for report files.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// DisableColor turns off ANSI colors for all output.
func DisableColor() { color.NoColor = true }

// Banner prints the program banner.
func Banner(w io.Writer, version string) {
	fmt.Fprintln(w, bold(cyan("Docker Service Manager"))+" "+faint(version))
	fmt.Fprintln(w, faint(strings.Repeat("=", 40)))
}

// Success prints a completed action.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, green("✓ ")+fmt.Sprintf(format, args...))
}

// Warn prints something the user should look at.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, yellow("! ")+fmt.Sprintf(format, args...))
}

// Failure prints a failed action.
func Failure(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, red("✖ ")+fmt.Sprintf(format, args...))
}

// Notice prints a highlighted one-line notice, e.g. the demo mode warning.
func Notice(w io.Writer, msg string) {
	fmt.Fprintln(w, bold(yellow(msg)))
}

// Heading prints a section heading.
func Heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold(title))
}

func severity(s string) string {
	label := "[" + strings.ToUpper(s) + "]"
	switch strings.ToLower(s) {
	case "high":
		return red(label)
	case "medium":
		return yellow(label)
	default:
		return cyan(label)
	}
}

// title upper-cases the first letter of each word.
func title(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
