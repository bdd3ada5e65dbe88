package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/api"
)

var (
	registerUsername string
	registerEmail    string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a new Haivler account.

Registering does not log you in; run "haivler login" afterwards.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	user, err := a.session.Register(ctx, api.Registration{
		Username: registerUsername,
		Email:    registerEmail,
		Password: registerPassword,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Account created for %s. Run \"haivler login\" to sign in.\n", user.Username)
	return nil
}
