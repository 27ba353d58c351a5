// Package workspace manages the filesystem artifacts of a pipeline run.
//
// A Workspace is the working directory handed to the solver. It owns the solver's
// output artifact (deleted before every solver run and again after it has been read)
// and the temporary plan files given to the validator.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/plancheck/pkg/domain"
)

// DefaultArtifact is the file name the solver writes its plan to.
const DefaultArtifact = "plan"

// Workspace is an isolated directory for one pipeline at a time.
type Workspace struct {
	dir      string
	artifact string
	owned    bool
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithArtifact overrides the solver artifact file name.
func WithArtifact(name string) Option {
	return func(w *Workspace) {
		if name != "" {
			w.artifact = name
		}
	}
}

// New uses dir (created if missing) as the workspace. Close leaves it in place.
func New(dir string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace dir: %w", err)
	}
	return newWorkspace(abs, false, opts), nil
}

// NewTemp creates a fresh temporary workspace that Close removes.
func NewTemp(pattern string, opts ...Option) (*Workspace, error) {
	if pattern == "" {
		pattern = "plancheck-*"
	}
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp workspace: %w", err)
	}
	return newWorkspace(dir, true, opts), nil
}

func newWorkspace(dir string, owned bool, opts []Option) *Workspace {
	w := &Workspace{dir: dir, artifact: DefaultArtifact, owned: owned}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the absolute workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// ArtifactPath is where the solver is expected to leave its plan.
func (w *Workspace) ArtifactPath() string {
	return filepath.Join(w.dir, w.artifact)
}

// ClearArtifact removes a stale artifact. A missing file is not an error.
func (w *Workspace) ClearArtifact() error {
	if err := os.Remove(w.ArtifactPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear artifact: %w", err)
	}
	return nil
}

// RecoverPlan reads the artifact if it exists and is non-empty, then deletes it.
// The artifact is deleted on every path, so a later run can never read it again.
func (w *Workspace) RecoverPlan() (domain.Plan, bool, error) {
	path := w.ArtifactPath()

	var (
		plan    domain.Plan
		ok      bool
		readErr error
	)
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode().IsRegular() && info.Size() > 0:
		data, err := os.ReadFile(path)
		if err != nil {
			readErr = fmt.Errorf("failed to read artifact: %w", err)
			break
		}
		plan, ok = domain.NewPlan(string(data)), len(data) > 0
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		readErr = fmt.Errorf("failed to stat artifact: %w", err)
	}

	if err := w.ClearArtifact(); err != nil && readErr == nil {
		readErr = err
	}
	return plan, ok, readErr
}

// WithPlanFile writes plan to a temporary file inside the workspace, calls fn with
// its path and removes the file afterwards, whatever fn returns (or if it panics).
func (w *Workspace) WithPlanFile(plan domain.Plan, fn func(path string) error) error {
	f, err := os.CreateTemp(w.dir, "plan_tmp-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create plan file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(plan.Text); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close plan file: %w", err)
	}

	return fn(path)
}

// Close removes the directory if the workspace created it.
func (w *Workspace) Close() error {
	if !w.owned {
		return nil
	}
	return os.RemoveAll(w.dir)
}
