package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/plancheck/pkg/adapters/file"
	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/aretw0/plancheck/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements ReportStore
var _ ports.ReportStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunReportStoreContract(t, store)
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "run-1", State: domain.StateInvalid}))
	require.NoError(t, store.Save(ctx, domain.RunReport{ID: "run-1", State: domain.StateValid}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1.json", entries[0].Name())

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateValid, loaded.State)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileStore_EmptyID(t *testing.T) {
	store := file.New(t.TempDir())
	assert.Error(t, store.Save(context.Background(), domain.RunReport{}))
	_, err := store.Load(context.Background(), "")
	assert.Error(t, err)
}
