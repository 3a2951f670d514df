package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyzmat/marketplace/internal/infrastructure/seed"
)

var seedCheckCmd = &cobra.Command{
	Use:   "seed-check <file>",
	Short: "Validate a seed fixture without starting the server",
	Long: `Parse a seed YAML file and report every broken reference or unknown
enumeration value.

Examples:
  marketplace seed-check configs/seed.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSeedCheck,
}

func runSeedCheck(cmd *cobra.Command, args []string) error {
	f, err := seed.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d users, %d jobs, %d reports\n",
		args[0], len(f.Users), len(f.Jobs), len(f.Reports))
	return nil
}
