package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

const ruleWidth = 62

// banner renders the "── SOLVER LOG ─────" header for a log block.
func banner(p termenv.Profile, label string) string {
	title := "── " + strings.ToUpper(label) + " LOG "
	pad := ruleWidth - len([]rune(title))
	if pad < 3 {
		pad = 3
	}
	line := title + strings.Repeat("─", pad)
	if p == termenv.Ascii {
		return line
	}
	return termenv.String(line).Foreground(p.Color(labelColor(label))).Bold().String()
}

func rule(p termenv.Profile) string {
	line := strings.Repeat("─", ruleWidth)
	if p == termenv.Ascii {
		return line
	}
	return termenv.String(line).Faint().String()
}

func labelColor(label string) string {
	switch label {
	case "solver":
		return "#818cf8"
	case "validator":
		return "#c084fc"
	}
	return "#a78bfa"
}

// formatBlock frames log between a banner and a closing rule.
func formatBlock(p termenv.Profile, label, log string) string {
	return fmt.Sprintf("%s\n%s\n%s\n", banner(p, label), strings.TrimRight(log, " \t\r\n"), rule(p))
}
