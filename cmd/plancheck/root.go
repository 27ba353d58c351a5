package main

import (
	"fmt"
	"os"

	"github.com/aretw0/plancheck/internal/cli"
	"github.com/aretw0/plancheck/internal/config"
	"github.com/aretw0/plancheck/internal/logging"
	"github.com/aretw0/plancheck/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// exitUsage is returned for malformed command lines. It stays clear of 1 and 2, which
// carry the check verdict.
const exitUsage = 64

// exitCode is set by the command that ran.
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "plancheck <domain> <problem>",
	Short: "Solve a planning problem under a time limit and validate the plan",
	Long: `plancheck runs the planner on a domain/problem pair with a hard deadline, then
hands the plan to the validator.

Exit codes: 0 the plan is valid, 1 no plan (tool missing, timeout or solver failure),
2 the plan failed validation.

Settings come from plancheck.yaml/.json/.toml in the working directory, the file named
by PLANCHECK_CONFIG, and PLANCHECK_* environment variables.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			exitCode = 1
			return
		}
		logger, err := logging.FromLevelName(cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			exitCode = 1
			return
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		exitCode = cli.RunCheck(ctx, cli.CheckOptions{
			Config:      cfg,
			DomainPath:  args[0],
			ProblemPath: args[1],
			Console:     tui.NewConsole(os.Stdout),
			Stdout:      os.Stdout,
			Logger:      logger,
		})
	},
}

// Execute runs the command line and exits with the verdict.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, rootCmd.UsageString())
		os.Exit(exitUsage)
	}
	os.Exit(exitCode)
}
