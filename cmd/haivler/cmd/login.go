package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/api"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a session token",
	Long: `Log in to the Haivler backend.

On success the bearer token is stored in the session file, valid for
3 hours. Credentials are submitted form-encoded, as the backend requires
for this endpoint.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if loginUsername == "" {
		fmt.Print("Username: ")
		fmt.Scanln(&loginUsername) //nolint:errcheck // interactive prompt
	}
	if loginPassword == "" {
		fmt.Print("Password: ")
		fmt.Scanln(&loginPassword) //nolint:errcheck // interactive prompt
	}

	user, err := a.session.Login(ctx, api.Credentials{
		Username: loginUsername,
		Password: loginPassword,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}
