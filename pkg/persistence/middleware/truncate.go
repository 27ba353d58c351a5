package middleware

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
)

type truncateMiddleware struct {
	passthrough
	max int
}

// NewTruncateMiddleware keeps at most maxBytes of each log, dropping the head.
// The end of a solver log is where the verdict is. The truncation marker counts
// against maxBytes; when it does not fit, the bare tail is kept. maxBytes <= 0
// disables it.
func NewTruncateMiddleware(maxBytes int) Middleware {
	return func(next ports.ReportStore) ports.ReportStore {
		if maxBytes <= 0 {
			return next
		}
		return &truncateMiddleware{passthrough: passthrough{next: next}, max: maxBytes}
	}
}

func (m *truncateMiddleware) Save(ctx context.Context, report domain.RunReport) error {
	report.SolverLog = tail(report.SolverLog, m.max)
	report.ValidatorLog = tail(report.ValidatorLog, m.max)
	return m.next.Save(ctx, report)
}

func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	keep := max
	for {
		cut := runeCut(s, len(s)-keep)
		marker := fmt.Sprintf("[... %d bytes truncated ...]\n", cut)
		if len(marker)+len(s)-cut <= max {
			return marker + s[cut:]
		}
		if keep = max - len(marker); keep <= 0 {
			return s[runeCut(s, len(s)-max):]
		}
	}
}

// runeCut moves i forward to the next rune boundary.
func runeCut(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
