package plancheck

import "github.com/aretw0/plancheck/pkg/solver"

// Version is the plancheck release, overridden at build time with
// -ldflags "-X github.com/aretw0/plancheck.Version=...".
var Version = "0.3.0"

// DefaultTimeLimit is the solver deadline used when none is configured.
const DefaultTimeLimit = solver.DefaultTimeLimit
