package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	serverURL string
	apiKey    string
)

var rootCmd = &cobra.Command{
	Use:   "sanhedrin",
	Short: "Deliberation orchestrator",
	Long: `Sanhedrin fans a task out to a panel of independent judging agents,
collects their verdicts, and reduces them to a single ruling under a
configurable consensus policy.

Run 'sanhedrin serve' to start the HTTP server, then submit tasks with
'sanhedrin submit' or POST /v1/deliberations directly.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: sanhedrin.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8000", "Sanhedrin server URL for client commands")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for client commands (default: $SANHEDRIN_API_KEY)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(versionCmd)
}

func clientKey() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv("SANHEDRIN_API_KEY")
}
