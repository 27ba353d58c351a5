package main

import (
	"fmt"
	"os"

	"github.com/aretw0/plancheck/internal/cli"
	"github.com/aretw0/plancheck/internal/config"
	"github.com/aretw0/plancheck/internal/logging"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run checks over HTTP and expose reports and metrics",
	Long: `Starts an HTTP server (http.addr, PLANCHECK_HTTP_ADDR) with:

  POST   /checks         run a check, body {"domain": "...", "problem": "..."}
  GET    /reports        list stored run IDs
  GET    /reports/{id}   fetch a run report
  DELETE /reports/{id}   delete a run report
  GET    /metrics        Prometheus metrics
  GET    /healthz        liveness`,
	Args: cobra.NoArgs,
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

		if err := cli.Serve(ctx, cli.ServeOptions{Config: cfg, Stdout: os.Stdout, Logger: logger}); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			exitCode = 1
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
