// Package output provides shared CLI output formatting with text and
// JSON modes. Text mode prints "PREFIX message" lines with a styled
// prefix; JSON mode prints one object per line for machine parsing.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	jsonMode bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var prefixStyles = map[string]lipgloss.Style{
	"OK":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	"DONE": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	"GET":  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	"SKIP": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	"ERR":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
}

// SetJSONMode switches all subsequent output to JSON objects
func SetJSONMode(enabled bool) {
	jsonMode = enabled
}

// JSONMode reports whether JSON output is enabled
func JSONMode() bool {
	return jsonMode
}

// Emit prints a status line: "PREFIX message" in text mode, or a
// {"status": ..., "message": ...} object in JSON mode.
func Emit(prefix, message string) {
	EmitData(prefix, message, nil)
}

// EmitData is Emit with extra key/value pairs merged into the JSON
// object. The extra data is dropped in text mode.
func EmitData(prefix, message string, data map[string]any) {
	if jsonMode {
		obj := map[string]any{
			"status":  strings.ToLower(prefix),
			"message": message,
		}
		for k, v := range data {
			obj[k] = v
		}
		line, _ := json.Marshal(obj)
		fmt.Fprintln(stdout, string(line))
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", styledPrefix(prefix), message)
}

// EmitJSON prints v as indented JSON regardless of mode
func EmitJSON(v any) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// EmitError prints an error line to stderr
func EmitError(message string) {
	if jsonMode {
		line, _ := json.Marshal(map[string]any{
			"status":  "error",
			"message": message,
		})
		fmt.Fprintln(stderr, string(line))
		return
	}
	fmt.Fprintf(stderr, "%s %s\n", styledPrefix("ERR"), message)
}

// Progress prints an unstyled progress note to stderr in text mode.
// JSON mode suppresses it so stdout stays machine-parseable.
func Progress(format string, args ...any) {
	if jsonMode {
		return
	}
	fmt.Fprintf(stderr, format+"\n", args...)
}

func styledPrefix(prefix string) string {
	if style, ok := prefixStyles[prefix]; ok {
		return style.Render(prefix)
	}
	return prefix
}
