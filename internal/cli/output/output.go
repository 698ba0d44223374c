// Package output renders CLI results as styled text or JSON depending
// on the output mode and whether stdout is a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how results are rendered.
type Mode string

const (
	// ModeAuto picks text for terminals and plain text for pipes.
	ModeAuto Mode = "auto"
	// ModeText renders human-readable text, styled on a terminal.
	ModeText Mode = "text"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Muted:   lipgloss.NewStyle().Faint(true),
	}
}

// Renderer writes results to out and diagnostics to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styled bool
	styles Styles
}

// NewRenderer creates a renderer, detecting TTY state from out.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state, for
// tests and callers that already know.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" || mode == ModeAuto {
		mode = ModeText
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styled: isTTY && mode == ModeText && termenv.EnvColorProfile() != termenv.Ascii,
		styles: newStyles(),
	}
}

// Mode returns the active output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// JSONMode reports whether results should be emitted as JSON.
func (r *Renderer) JSONMode() bool { return r.mode == ModeJSON }

// Out returns the result writer, for table renderers.
func (r *Renderer) Out() io.Writer { return r.out }

// Styles returns the style set when styling is active, or zero-value
// pass-through styles otherwise.
func (r *Renderer) Styles() Styles {
	if r.styled {
		return r.styles
	}
	return Styles{}
}

func (r *Renderer) render(w io.Writer, style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.styled {
		msg = style.Render(msg)
	}
	_, _ = fmt.Fprintln(w, msg)
}

// Info prints a plain informational line.
func (r *Renderer) Info(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// Title prints a bold heading line.
func (r *Renderer) Title(format string, args ...any) {
	r.render(r.out, r.styles.Title, format, args...)
}

// Success prints a confirmation line.
func (r *Renderer) Success(format string, args ...any) {
	r.render(r.out, r.styles.Success, format, args...)
}

// Warning prints a warning to errOut.
func (r *Renderer) Warning(format string, args ...any) {
	r.render(r.errOut, r.styles.Warning, format, args...)
}

// Error prints an error to errOut.
func (r *Renderer) Error(format string, args ...any) {
	r.render(r.errOut, r.styles.Error, format, args...)
}

// Lines prints each line as-is.
func (r *Renderer) Lines(lines []string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(r.out, line)
	}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
