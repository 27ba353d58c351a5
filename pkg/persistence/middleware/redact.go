package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

type redactMiddleware struct {
	passthrough
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks every match of the patterns in the solver and validator
// logs before they are persisted. Invalid patterns are reported up front.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ReportStore) ports.ReportStore {
		return &redactMiddleware{passthrough: passthrough{next: next}, patterns: patterns}
	}, nil
}

// Save masks a copy; the caller's report is left as is.
func (m *redactMiddleware) Save(ctx context.Context, report domain.RunReport) error {
	report.SolverLog = m.mask(report.SolverLog)
	report.ValidatorLog = m.mask(report.ValidatorLog)
	return m.next.Save(ctx, report)
}

func (m *redactMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
