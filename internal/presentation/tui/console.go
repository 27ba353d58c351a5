// Package tui renders operator-facing output: process log blocks, status lines and
// the run summary.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Console writes to stdout-like destinations. It is safe for concurrent use.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
	render  func(string) (string, error)
}

// NewConsole writes to f, with colours and markdown rendering when f is a terminal.
func NewConsole(f *os.File) *Console {
	if !term.IsTerminal(int(f.Fd())) {
		return NewPlainConsole(f)
	}
	return &Console{
		out:     f,
		profile: termenv.NewOutput(f).Profile,
		render:  NewRenderer(),
	}
}

// NewPlainConsole writes uncoloured text to w and skips the markdown summary.
func NewPlainConsole(w io.Writer) *Console {
	return &Console{out: w, profile: termenv.Ascii}
}

// LogBlock echoes a finished process's combined log under a labelled banner.
func (c *Console) LogBlock(label, log string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, formatBlock(c.profile, label, log))
}

// Status prints a one-line outcome.
func (c *Console) Status(state domain.State, message string) {
	icon, color := statusStyle(state)
	line := message
	if icon != "" {
		line = icon + "  " + message
	}
	if c.profile != termenv.Ascii && color != "" {
		line = termenv.String(line).Foreground(c.profile.Color(color)).String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

func statusStyle(state domain.State) (icon, color string) {
	switch state {
	case domain.StateValid:
		return "🎉", "#4ade80"
	case domain.StateInvalid:
		return "⚠️", "#facc15"
	case domain.StateSolveFailed:
		return "❌", "#f87171"
	}
	return "", ""
}

// Summary renders the report as markdown. It prints nothing on a plain console.
func (c *Console) Summary(report domain.RunReport) {
	if c.render == nil {
		return
	}
	out, err := c.render(SummaryMarkdown(report))
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, out)
}

// SummaryMarkdown describes a run as a small markdown document.
func SummaryMarkdown(r domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Run `%s`\n\n", r.ID)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Domain | `%s` |\n", r.Domain)
	fmt.Fprintf(&b, "| Problem | `%s` |\n", r.Problem)
	fmt.Fprintf(&b, "| Outcome | **%s** (exit %d) |\n", r.State, r.ExitCode)
	fmt.Fprintf(&b, "| Duration | %s |\n", r.Duration().Round(time.Millisecond))
	if r.TimedOut {
		b.WriteString("| Solver | timed out |\n")
	}
	if r.SolveFailure != "" {
		fmt.Fprintf(&b, "| Failure | %s |\n", r.SolveFailure)
	}
	if lines := r.Plan.Lines(); len(lines) > 0 {
		fmt.Fprintf(&b, "\n### Plan (%d steps)\n\n```\n%s\n```\n", len(lines), strings.Join(lines, "\n"))
	}
	return b.String()
}
