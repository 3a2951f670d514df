// Package main is the marketplace server binary.
//
// @title                       Kyzmat Marketplace API
// @version                     1.0
// @description                 Freelance marketplace for Kyrgyzstan: jobs, chat, notifications and moderation.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/kyzmat/marketplace/docs"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Freelance marketplace API server",
	Long: `marketplace serves the jobs, chat, notification and moderation API.

Configuration is read from the environment (PORT, JWT_SECRET, STORAGE_DRIVER,
MONGO_URI, REDIS_ENABLED, SEED_FILE, ...).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCheckCmd)
	rootCmd.AddCommand(versionCmd)
}
