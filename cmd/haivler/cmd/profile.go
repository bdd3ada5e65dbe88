package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivler/haivler-cli/internal/api"
)

var (
	profileEmail     string
	profilePassword  string
	profileAvatarURL string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch and show your profile from the server",
	RunE:  runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update profile fields.

Only the flags you pass are sent; everything else is left untouched.`,
	RunE: runProfileUpdate,
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "new email address")
	profileUpdateCmd.Flags().StringVar(&profilePassword, "password", "", "new password")
	profileUpdateCmd.Flags().StringVar(&profileAvatarURL, "avatar-url", "", "new avatar URL")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.requireAuth(); err != nil {
		return err
	}

	user, err := a.client.UserProfile(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s (id %d)\n", user.Username, user.ID)
	fmt.Printf("  Email:        %s\n", user.Email)
	if user.AvatarURL != "" {
		fmt.Printf("  Avatar:       %s\n", user.AvatarURL)
	}
	fmt.Printf("  Member since: %s\n", user.CreatedAt.Format("2006-01-02"))
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.requireAuth(); err != nil {
		return err
	}

	// Only fields the user decided to change go on the wire.
	var update api.ProfileUpdate
	changed := false
	if cmd.Flags().Changed("email") {
		update.Email = profileEmail
		changed = true
	}
	if cmd.Flags().Changed("password") {
		update.Password = profilePassword
		changed = true
	}
	if cmd.Flags().Changed("avatar-url") {
		update.AvatarURL = profileAvatarURL
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to update: pass --email, --password, or --avatar-url")
	}

	user, err := a.client.UpdateUserProfile(ctx, update)
	if err != nil {
		return err
	}

	// The server has already persisted the change; replace the cached
	// record wholesale.
	a.session.UpdateUser(user)

	fmt.Println("Profile updated.")
	return nil
}
