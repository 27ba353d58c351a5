package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/plancheck"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of plancheck",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plancheck version %s\n", strings.TrimSpace(plancheck.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
