// Package cmd provides the CLI commands for the Haivler client.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/config"
)

var cfgFile string
var sessionFilePath string

var rootCmd = &cobra.Command{
	Use:   "haivler",
	Short: "Haivler - image-sharing feed client",
	Long: `Haivler is a command-line client for the Haivler image-sharing feed.

Register an account, log in, browse the feed, post images with captions,
react (like/dislike), and comment, all against a configurable backend.

Quick start:
  1. haivler register --username alice --email a@example.com --password secret123
  2. haivler login --username alice --password secret123
  3. haivler feed

Configuration:
  Config is loaded from haivler.yaml in the current directory or
  $HOME/.haivler/. Run "haivler config init" to write a default file.

  Environment variables can override config values with the HAIVLER_ prefix.
  Example: HAIVLER_API_BASE_URL=https://haivler.example.com

Sessions:
  A successful login stores the bearer token in a session file
  ($HOME/.haivler/session.json) that expires after 3 hours. Any request
  the backend answers with 401 ends the session; log in again.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./haivler.yaml)")
	rootCmd.PersistentFlags().StringVar(&sessionFilePath, "session", "", "path to session file (default: <data_dir>/session.json)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
