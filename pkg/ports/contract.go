package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newReport := func(id string) domain.RunReport {
		return domain.RunReport{
			ID:         id,
			Domain:     "domain.pddl",
			Problem:    "p01.pddl",
			State:      domain.StateValid,
			ExitCode:   domain.ExitValid,
			Plan:       domain.NewPlan("(pick-up a)\n(stack a b)\n"),
			Valid:      true,
			SolverLog:  "search exit code: 0",
			StartedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			FinishedAt: time.Date(2025, 1, 2, 3, 4, 7, 0, time.UTC),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		report := newReport(runID)

		err := store.Save(ctx, report)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.State, loaded.State)
		assert.Equal(t, report.ExitCode, loaded.ExitCode)
		assert.Equal(t, report.Plan.Text, loaded.Plan.Text)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
		assert.Equal(t, 2*time.Second, loaded.Duration())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newReport(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, newReport(id1))
		_ = store.Save(ctx, newReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
