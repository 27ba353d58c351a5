package process

import (
	"os/exec"

	"github.com/aretw0/plancheck/pkg/domain"
)

// LookPath resolves name on PATH. A missing command yields an error matching
// domain.ErrToolMissing.
func LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", domain.ToolMissingError(name)
	}
	return path, nil
}
