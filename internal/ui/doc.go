// Package ui provides semantic text formatting for CLI output.
//
// This package defines formatters for different types of content (code,
// paths, errors, etc.) that render appropriately based on terminal
// capabilities. When colors are available, content is colorized. When
// NO_COLOR is set or the terminal doesn't support colors, text-based
// decorations (backticks, quotes) are used instead.
//
// # Semantic Formatters
//
// Use the appropriate formatter for the content type:
//
//	ui.Code.Sprint("tact backup export")    // Commands and code
//	ui.Path.Sprint("backup.zip")            // File paths
//	ui.Success.Sprint("✓")                  // Success indicators
//	ui.Error.Sprint("✗")                    // Error indicators
//	ui.Warning.Sprint("[dry-run]")          // Warnings
//	ui.Info.Sprint("→")                     // Informational hints
//	ui.Highlight.Sprint("abc12345")         // User values
//	ui.Muted.Sprint("optional")             // De-emphasized text
//	ui.Session.Sprint("k3x9q2ab")           // Transfer session ids
//	ui.Secret.Sprint(password)              // Values to copy verbatim
//
// Bar, Bytes and Plural format transfer progress and sizes.
//
// # Color Behavior
//
// Colors are disabled when:
//   - NO_COLOR environment variable is set (any value)
//   - Terminal doesn't support colors (TERM=dumb, not a TTY)
//
// When colors are disabled, formatters apply text decorations:
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - Muted: (parentheses)
//   - Others: no decoration (self-evident from context)
package ui
