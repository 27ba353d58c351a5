// Package testutils provides fake external tools for exercising the pipeline
// against real processes.
package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// FrontEnd describes the behaviour of a fake planutils front-end.
type FrontEnd struct {
	// Plan is written to ./plan by the solver. Empty means no artifact.
	Plan string
	// SolverHangs makes the solver ignore SIGTERM and sleep far past any deadline.
	SolverHangs bool
	// SolverLog is printed by the solver on stderr.
	SolverLog string

	// ValidatorLog is printed by the validator on stdout.
	ValidatorLog string
	// ValidatorExit is the validator's exit status.
	ValidatorExit int
}

// SkipUnlessPOSIX skips tests that need sh and POSIX process groups.
func SkipUnlessPOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skip on windows: fake tools are shell scripts")
	}
}

// WriteScript writes an executable sh script named name into dir.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)
	require.NoError(t, err, "failed to write script %s", name)
	return path
}

// InstallFrontEnd writes a fake planutils into a temp bin dir, prepends it to PATH
// and returns the bin dir. Every call is appended to <bin>/calls.log.
func InstallFrontEnd(t *testing.T, fe FrontEnd) string {
	t.Helper()
	SkipUnlessPOSIX(t)

	bin := t.TempDir()
	calls := filepath.Join(bin, "calls.log")

	var solver strings.Builder
	if fe.SolverLog != "" {
		fmt.Fprintf(&solver, "cat >&2 <<'LOG_EOF'\n%s\nLOG_EOF\n", fe.SolverLog)
	}
	if fe.SolverHangs {
		solver.WriteString("trap '' TERM\nsleep 60\n")
	}
	if fe.Plan != "" {
		fmt.Fprintf(&solver, "cat > plan <<'PLAN_EOF'\n%sPLAN_EOF\n", ensureNewline(fe.Plan))
	}

	var validator strings.Builder
	validator.WriteString("echo \"Checking plan: $6\"\ncat \"$6\"\n")
	if fe.ValidatorLog != "" {
		fmt.Fprintf(&validator, "cat <<'LOG_EOF'\n%s\nLOG_EOF\n", fe.ValidatorLog)
	}
	fmt.Fprintf(&validator, "exit %d\n", fe.ValidatorExit)

	script := fmt.Sprintf(`echo "$2" >> %q
case "$2" in
dual-bfws-ffparser)
%s;;
val)
%s;;
*)
echo "unknown package $2" >&2
exit 64
;;
esac
`, calls, solver.String(), validator.String())

	WriteScript(t, bin, "planutils", script)
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	return bin
}

// HidePlanutils points PATH at an empty directory so that planutils cannot be resolved.
func HidePlanutils(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", t.TempDir())
}

// Calls returns the packages the fake front-end was invoked with, in order.
func Calls(t *testing.T, bin string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(bin, "calls.log"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Fields(string(data))
}

// WriteInputs creates placeholder domain and problem files and returns their paths.
func WriteInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	domainPath := filepath.Join(dir, "domain.pddl")
	problemPath := filepath.Join(dir, "p01.pddl")
	require.NoError(t, os.WriteFile(domainPath, []byte("(define (domain blocksworld))\n"), 0o644))
	require.NoError(t, os.WriteFile(problemPath, []byte("(define (problem p01) (:domain blocksworld))\n"), 0o644))
	return domainPath, problemPath
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
