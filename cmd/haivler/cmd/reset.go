package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/config"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the stored session",
	Long: `Remove the stored session file and its lock/temp leftovers.

Equivalent to logout, plus cleanup of anything a crashed run may have
left behind next to the session file.

Examples:
  # Remove the session (interactive confirmation)
  haivler reset

  # Remove without prompting
  haivler reset --force`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	sessionPath := sessionFilePath
	if sessionPath == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		sessionPath = cfg.SessionFile()
	}

	targets := []string{
		sessionPath,
		sessionPath + ".lock",
		sessionPath + ".tmp",
	}

	var existing []string
	for _, t := range targets {
		if _, err := os.Stat(t); err == nil {
			existing = append(existing, t)
		}
	}

	if len(existing) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to reset: no session files found.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "The following will be removed:")
	for _, t := range existing {
		fmt.Fprintf(os.Stderr, "  - %s\n", t)
	}

	if !resetForce {
		fmt.Fprint(os.Stderr, "\nProceed? [y/N] ")
		var answer string
		fmt.Scanln(&answer) //nolint:errcheck // interactive prompt, error irrelevant
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	var errCount int
	for _, t := range existing {
		if err := os.Remove(t); err != nil {
			fmt.Fprintf(os.Stderr, "  ERROR removing %s: %v\n", t, err)
			errCount++
		} else {
			fmt.Fprintf(os.Stderr, "  Removed %s\n", t)
		}
	}

	if errCount > 0 {
		return fmt.Errorf("%d file(s) could not be removed", errCount)
	}

	fmt.Fprintln(os.Stderr, "\nReset complete.")
	return nil
}
