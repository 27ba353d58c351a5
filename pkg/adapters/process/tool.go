package process

import (
	"strings"
	"time"

	"github.com/aretw0/plancheck/pkg/domain"
)

// Tool describes how to call an external tool. Args may reference placeholders
// such as {domain}, {problem} and {plan}, replaced at invocation time.
type Tool struct {
	Command   string        `yaml:"command" json:"command" toml:"command" mapstructure:"command"`
	Args      []string      `yaml:"args" json:"args" toml:"args" mapstructure:"args"`
	TimeLimit time.Duration `yaml:"time_limit" json:"time_limit" toml:"time_limit" mapstructure:"time_limit"`
}

// Invocation expands the placeholders and builds the call.
func (t Tool) Invocation(label, dir string, vars map[string]string) domain.Invocation {
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = expand(arg, vars)
	}
	return domain.Invocation{
		Label:     label,
		Command:   t.Command,
		Args:      args,
		TimeLimit: t.TimeLimit,
		Dir:       dir,
	}
}

func expand(arg string, vars map[string]string) string {
	if !strings.Contains(arg, "{") {
		return arg
	}
	for k, v := range vars {
		arg = strings.ReplaceAll(arg, "{"+k+"}", v)
	}
	return arg
}
