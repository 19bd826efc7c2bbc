package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter renders one kind of CLI content. It colours the text when the
// terminal allows it and falls back to plain decorations otherwise.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func newFormatter(prefix, suffix string, attrs ...color.Attribute) Formatter {
	return Formatter{color: color.New(attrs...), prefix: prefix, suffix: suffix}
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprint formats the arguments like fmt.Sprint.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor honours NO_COLOR (https://no-color.org/) as well as fatih/color's
// own terminal detection.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Code formats runnable commands. `backticks` without colour.
	Code = newFormatter("`", "`", color.FgYellow)

	// Path formats file and directory paths.
	Path = newFormatter("", "", color.FgYellow)

	// Flag formats CLI flags such as --dry-run.
	Flag = newFormatter("", "", color.FgYellow)

	// Success, Error, Warning and Info colour status markers.
	Success = newFormatter("", "", color.FgGreen)
	Error   = newFormatter("", "", color.FgRed)
	Warning = newFormatter("", "", color.FgYellow)
	Info    = newFormatter("", "", color.FgCyan)

	// Highlight formats user values like titles and emails. 'quotes' without colour.
	Highlight = newFormatter("'", "'", color.FgCyan)

	// Muted formats secondary text such as record ids. (parentheses) without colour.
	Muted = newFormatter("(", ")", color.FgHiBlack)

	// Session formats transfer session ids.
	Session = newFormatter("", "", color.FgMagenta, color.Bold)

	// Secret formats a value the user must copy exactly, such as a
	// generated password. It is never decorated so it can be pasted as is.
	Secret = newFormatter("", "", color.FgHiWhite, color.Bold)
)
