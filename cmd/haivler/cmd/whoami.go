package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	user := a.session.CurrentUser()
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("%s (id %d)\n", user.Username, user.ID)
	fmt.Printf("  Email:        %s\n", user.Email)
	if user.AvatarURL != "" {
		fmt.Printf("  Avatar:       %s\n", user.AvatarURL)
	}
	fmt.Printf("  Member since: %s\n", user.CreatedAt.Format("2006-01-02"))
	return nil
}
