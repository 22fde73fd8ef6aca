package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptlab/aoai/internal/azureai"
	"github.com/promptlab/aoai/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "aoai",
	Short: "Azure OpenAI client for the command line",
	Long: `aoai talks to an Azure OpenAI deployment configured entirely through
environment variables, optionally loaded from a local .env file at startup.

Run 'aoai config' to see which variables are consulted and where each
effective value comes from.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without sending requests")
}

func initConfig() {
	// BindEnv with two names mirrors the deployment variable fallback:
	// the primary is consulted first, empty values are ignored.
	_ = viper.BindEnv("api_key", azureai.EnvAPIKey)
	_ = viper.BindEnv("api_version", azureai.EnvAPIVersion)
	_ = viper.BindEnv("endpoint", azureai.EnvEndpoint)
	_ = viper.BindEnv("deployment", azureai.EnvDeployment, azureai.EnvDeploymentAlt)

	viper.SetDefault("api_version", azureai.DefaultAPIVersion)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}
