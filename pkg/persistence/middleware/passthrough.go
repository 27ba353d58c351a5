package middleware

import (
	"context"

	"github.com/aretw0/plancheck/pkg/domain"
)

func (p passthrough) Load(ctx context.Context, runID string) (domain.RunReport, error) {
	return p.next.Load(ctx, runID)
}

func (p passthrough) Delete(ctx context.Context, runID string) error {
	return p.next.Delete(ctx, runID)
}

func (p passthrough) List(ctx context.Context) ([]string, error) {
	return p.next.List(ctx)
}
